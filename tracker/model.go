package tracker

import (
	"encoding/json"
	"os"

	rws "github.com/davidfrivas/RandomWalkSeq"
)

// Model implements the mutable state of the sequencer editors, on top of the
// Player. It is owned by the GUI goroutine, while the Player is driven by the
// audio goroutine; the Player does its own locking, so the model can call its
// setters directly. What the model adds is everything the Player does not
// need for sequencing: undo history, file paths, dialogs, alerts and the
// MIDI output selection.
type (
	// modelData is the part of the model that gets saved to the recovery
	// file.
	modelData struct {
		State                rws.State
		Algorithm            int
		FilePath             string
		ChangedSinceSave     bool
		RecoveryFilePath     string
		ChangedSinceRecovery bool
	}

	Model struct {
		d      modelData
		player *Player
		broker *Broker

		alerts []Alert
		midi   midiState

		dialog        Dialog
		quitted       bool
		hostTransport bool

		prevUndoKind string
		undoStack    []rws.State
		redoStack    []rws.State
	}

	Dialog int

	ChangeSeverity int
)

const (
	NoDialog Dialog = iota
	OpenFileExplorer
	SaveAsExplorer
	QuitChanges
	QuitSaveExplorer
	ExportMIDIExplorer
)

const (
	// MajorChange always gets its own undo step.
	MajorChange ChangeSeverity = iota
	// MinorChange is merged with the previous change of the same kind, so
	// dragging a slider is undone in one step.
	MinorChange
)

const maxUndo = 64

// NewModel creates a model editing the given player. If a recovery file
// exists at recoveryFilePath, the document in it replaces the one in the
// player.
func NewModel(broker *Broker, player *Player, midiContext MIDIContext, recoveryFilePath string) *Model {
	m := &Model{broker: broker, player: player}
	if midiContext == nil {
		midiContext = NullMIDIContext{}
	}
	m.midi.context = midiContext
	m.d.Algorithm = int(player.Algorithm())
	m.d.RecoveryFilePath = recoveryFilePath
	if recoveryFilePath != "" {
		if bytes2, err := os.ReadFile(recoveryFilePath); err == nil {
			var data modelData
			if json.Unmarshal(bytes2, &data) == nil {
				m.d = data
				m.d.RecoveryFilePath = recoveryFilePath
				player.Restore(data.State)
			}
		}
	}
	m.MIDI().Refresh().Do()
	return m
}

func (m *Model) Player() *Player { return m.player }
func (m *Model) Broker() *Broker { return m.broker }

// Snapshot is a consistent copy of the player state for drawing.
func (m *Model) Snapshot() PlayerSnapshot { return m.player.Snapshot() }

func (m *Model) Dialog() Dialog         { return m.dialog }
func (m *Model) Quitted() bool          { return m.quitted }
func (m *Model) ChangedSinceSave() bool { return m.d.ChangedSinceSave }

// SetHostTransport tells whether a host reports its tempo and transport, as
// the plugin host does. Host sync can only be toggled when it does.
func (m *Model) SetHostTransport(available bool) {
	m.hostTransport = available
	if !available {
		m.player.SetSyncToHost(false)
	}
}

// ProcessMsg handles a message sent to the model by the other goroutines.
func (m *Model) ProcessMsg(msg MsgToModel) {
	if msg.HasAlert {
		m.Alerts().AddAlert(msg.Alert)
	}
	switch e := msg.Data.(type) {
	case func():
		e()
	}
}

// change records the document before a modification. The returned function
// is meant to be deferred: it pushes the recorded document to the undo stack
// if the modification changed anything.
func (m *Model) change(kind string, severity ChangeSeverity) func() {
	before := m.player.Document()
	return func() {
		if m.player.Document() == before {
			return
		}
		if severity == MajorChange || kind != m.prevUndoKind {
			m.undoStack = pushUndo(m.undoStack, before)
		}
		m.prevUndoKind = kind
		if severity == MajorChange {
			m.prevUndoKind = ""
		}
		m.redoStack = m.redoStack[:0]
		m.d.ChangedSinceSave = true
		m.d.ChangedSinceRecovery = true
	}
}

func pushUndo(stack []rws.State, s rws.State) []rws.State {
	stack = append(stack, s)
	if len(stack) > maxUndo {
		stack = stack[len(stack)-maxUndo:]
	}
	return stack
}
