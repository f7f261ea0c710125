package tracker

import (
	rws "github.com/davidfrivas/RandomWalkSeq"
)

type (
	// Action describes a user action that can be performed on the model, which
	// can be initiated by calling the Do() method. It is usually initiated by a
	// button press, a menu item or a key. Action advertises whether it is
	// enabled, so UI can e.g. gray out buttons when the underlying action is not
	// allowed. The underlying Doer can optionally implement the Enabler
	// interface to decide if the action is enabled or not; if it does not
	// implement the Enabler interface, the action is always allowed.
	Action struct {
		doer Doer
	}

	// Doer is an interface that defines a single Do() method, which is called
	// when an action is performed.
	Doer interface {
		Do()
	}

	// Enabler is an interface that defines a single Enabled() method, which
	// is used by the UI to check if UI Action/Bool/Int etc. is enabled or not.
	Enabler interface {
		Enabled() bool
	}

	enabledDoer struct{ Doer }
)

// Action methods

func MakeAction(doer Doer) Action {
	return Action{doer: doer}
}

// MakeEnabledAction makes an action that is always enabled, even if the doer
// implements Enabler.
func MakeEnabledAction(doer Doer) Action {
	return Action{doer: enabledDoer{doer}}
}

func (a Action) Do() {
	e, ok := a.doer.(Enabler)
	if ok && !e.Enabled() {
		return
	}
	if a.doer != nil {
		a.doer.Do()
	}
}

func (a Action) Enabled() bool {
	if a.doer == nil {
		return false // no doer, not allowed
	}
	e, ok := a.doer.(Enabler)
	if !ok {
		return true // not enabler, always allowed
	}
	return e.Enabled()
}

// randomize
type randomize Model

// Randomize generates a new pattern with the algorithm selected by
// Algorithm(). The enabled flags of the steps are kept.
func (m *Model) Randomize() Action { return MakeAction((*randomize)(m)) }
func (m *randomize) Do() {
	defer (*Model)(m).change("Randomize", MajorChange)()
	m.player.Randomize(rws.Algorithm(m.d.Algorithm))
}

// transposeUp
type transposeUp Model

func (m *Model) TransposeUp() Action { return MakeAction((*transposeUp)(m)) }
func (m *transposeUp) Enabled() bool {
	return rws.RootRange.Contains(m.player.Root() + 12)
}
func (m *transposeUp) Do() {
	defer (*Model)(m).change("TransposeUp", MajorChange)()
	m.player.TransposeUp()
}

// transposeDown
type transposeDown Model

func (m *Model) TransposeDown() Action { return MakeAction((*transposeDown)(m)) }
func (m *transposeDown) Enabled() bool {
	return rws.RootRange.Contains(m.player.Root() - 12)
}
func (m *transposeDown) Do() {
	defer (*Model)(m).change("TransposeDown", MajorChange)()
	m.player.TransposeDown()
}

// mono
type mono Model

// Mono sets every step to the root note.
func (m *Model) Mono() Action { return MakeAction((*mono)(m)) }
func (m *mono) Enabled() bool {
	for _, s := range m.player.Pattern() {
		if s.Value != 0 {
			return true
		}
	}
	return false
}
func (m *mono) Do() {
	defer (*Model)(m).change("Mono", MajorChange)()
	m.player.Mono()
}

// startStop
type startStop Model

func (m *Model) StartStop() Action { return MakeAction((*startStop)(m)) }
func (m *startStop) Do()           { m.player.StartStop() }

// enableAllSteps
type enableAllSteps Model

// EnableAllSteps turns every step back on without leaving manual step mode.
func (m *Model) EnableAllSteps() Action { return MakeAction((*enableAllSteps)(m)) }
func (m *enableAllSteps) Enabled() bool {
	for _, s := range m.player.Pattern() {
		if !s.Enabled {
			return true
		}
	}
	return false
}
func (m *enableAllSteps) Do() {
	defer (*Model)(m).change("EnableAllSteps", MajorChange)()
	for i := range rws.NumSteps {
		m.player.SetStepEnabled(i, true)
	}
}

// quit
type requestQuit Model

// RequestQuit quits, unless there are unsaved changes, in which case a
// QuitChanges dialog is opened instead.
func (m *Model) RequestQuit() Action { return MakeEnabledAction((*requestQuit)(m)) }
func (m *requestQuit) Do() {
	if !m.quitted {
		if m.d.ChangedSinceSave {
			m.dialog = QuitChanges
			return
		}
		m.quitted = true
	}
}

type forceQuit Model

func (m *Model) ForceQuit() Action { return MakeEnabledAction((*forceQuit)(m)) }
func (m *forceQuit) Do()           { m.quitted = true }

type cancel Model

// Cancel closes the open dialog.
func (m *Model) Cancel() Action { return MakeEnabledAction((*cancel)(m)) }
func (m *cancel) Do()           { m.dialog = NoDialog }
