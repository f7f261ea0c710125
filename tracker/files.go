package tracker

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	rws "github.com/davidfrivas/RandomWalkSeq"
)

// OpenFile returns an Action to show the file open dialog.
func (m *Model) OpenFile() Action { return MakeEnabledAction((*openFile)(m)) }

type openFile Model

func (m *openFile) Do() { m.dialog = OpenFileExplorer }

// SaveFile returns an Action to save to the current file, or to ask for a
// file name if there is none yet.
func (m *Model) SaveFile() Action { return MakeEnabledAction((*saveFile)(m)) }

type saveFile Model

func (m *saveFile) Do() {
	if m.d.FilePath == "" {
		m.dialog = SaveAsExplorer
		return
	}
	f, err := os.Create(m.d.FilePath)
	if err != nil {
		(*Model)(m).Alerts().Add("Error creating file: "+err.Error(), Error)
		return
	}
	(*Model)(m).WriteState(f)
}

// SaveFileAs returns an Action to show the save dialog.
func (m *Model) SaveFileAs() Action { return MakeEnabledAction((*saveFileAs)(m)) }

type saveFileAs Model

func (m *saveFileAs) Do() { m.dialog = SaveAsExplorer }

// ExportMIDI returns an Action to ask for the name of a standard MIDI file
// to render the loop into.
func (m *Model) ExportMIDI() Action { return MakeEnabledAction((*exportMIDI)(m)) }

type exportMIDI Model

func (m *exportMIDI) Do() { m.dialog = ExportMIDIExplorer }

// SaveBeforeQuit is offered by the QuitChanges dialog.
func (m *Model) SaveBeforeQuit() Action { return MakeEnabledAction((*saveBeforeQuit)(m)) }

type saveBeforeQuit Model

func (m *saveBeforeQuit) Do() { m.dialog = QuitSaveExplorer }

// DiscardAndQuit is offered by the QuitChanges dialog.
func (m *Model) DiscardAndQuit() Action { return MakeEnabledAction((*discardAndQuit)(m)) }

type discardAndQuit Model

func (m *discardAndQuit) Do() {
	m.dialog = NoDialog
	m.quitted = true
}

// ReadState reads a state file from r and closes it. Both the enveloped
// format and plain YAML are accepted. Data that is not a state document at
// all leaves the sequencer untouched.
func (m *Model) ReadState(r io.ReadCloser) {
	m.dialog = NoDialog
	b, err := io.ReadAll(r)
	if cerr := r.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		m.Alerts().Add(fmt.Sprintf("Error reading a state file: %v", err), Error)
		return
	}
	current := m.player.Document()
	s, err := rws.DecodeState(b, current)
	if errors.Is(err, rws.ErrStateTag) {
		m.Alerts().Add(fmt.Sprintf("Not a state file: %v", err), Error)
		return
	}
	if err != nil {
		m.Alerts().Add(fmt.Sprintf("The state file is damaged, using defaults: %v", err), Warning)
	}
	done := m.change("ReadState", MajorChange)
	m.player.Restore(s)
	done()
	if f, ok := r.(*os.File); ok {
		m.d.FilePath = f.Name()
		m.d.ChangedSinceSave = false
	}
}

// WriteState writes the state to w and closes it. Files with a .yml or .yaml
// extension get plain YAML, everything else the enveloped format the plugin
// stores in host projects.
func (m *Model) WriteState(w io.WriteCloser) {
	quitAfter := m.dialog == QuitSaveExplorer
	m.dialog = NoDialog
	path := ""
	if f, ok := w.(*os.File); ok {
		path = f.Name()
	}
	var contents []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		contents, err = rws.MarshalStateYAML(m.player.Document())
	default:
		contents, err = rws.MarshalState(m.player.Document())
	}
	if err != nil {
		m.Alerts().Add(fmt.Sprintf("Error marshaling a state file: %v", err), Error)
		return
	}
	if _, err := w.Write(contents); err != nil {
		m.Alerts().Add(fmt.Sprintf("Error writing to file: %v", err), Error)
		return
	}
	if err := w.Close(); err != nil {
		m.Alerts().Add(fmt.Sprintf("Error closing the state file: %v", err), Error)
		return
	}
	if path != "" {
		m.d.FilePath = path
		m.d.ChangedSinceSave = false
		m.Alerts().AddNamed("Saved", "Saved "+filepath.Base(path), Info)
	}
	if quitAfter {
		m.quitted = true
	}
}

// LoadFile opens path and reads the state from it.
func (m *Model) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot open state file: %w", err)
	}
	m.ReadState(f)
	return nil
}
