package tui_test

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	rws "github.com/davidfrivas/RandomWalkSeq"
	"github.com/davidfrivas/RandomWalkSeq/config"
	"github.com/davidfrivas/RandomWalkSeq/tracker"
	"github.com/davidfrivas/RandomWalkSeq/tracker/tui"
)

func newTestModel(t *testing.T) tui.Model {
	t.Helper()
	player := tracker.NewPlayer(rand.New(rand.NewSource(1)))
	player.Prepare(44100)
	model := tracker.NewModel(tracker.NewBroker(), player, tracker.NullMIDIContext{}, "")
	m := tui.NewModel(model, config.Default().UI)
	m.DefaultPath = filepath.Join(t.TempDir(), "pattern.rwsq")
	return m
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+e":
		return tea.KeyMsg{Type: tea.KeyCtrlE}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func press(m tui.Model, keys ...string) (tui.Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(keyMsg(k))
		m = next.(tui.Model)
	}
	return m, cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestKeysEditTheStepUnderTheCursor(t *testing.T) {
	m := newTestModel(t)
	m.Model.StepValue(0).Set(0)
	m.Model.StepValue(1).Set(0)
	m, _ = press(m, "l", "k", "k")
	if got := m.Model.Player().StepValue(1); got != 2 {
		t.Errorf("expected step 1 raised to 2, got %d", got)
	}
	m, _ = press(m, "h", "j")
	if got := m.Model.Player().StepValue(0); got != -1 {
		t.Errorf("expected step 0 lowered to -1, got %d", got)
	}
	if !m.Model.ChangedSinceSave() {
		t.Errorf("edits should mark the state changed")
	}
}

func TestSpaceStartsAndStops(t *testing.T) {
	m := newTestModel(t)
	m, _ = press(m, " ")
	if !m.Model.Player().Playing() {
		t.Fatalf("space did not start the player")
	}
	m, _ = press(m, " ")
	if m.Model.Player().Playing() {
		t.Errorf("space did not stop the player")
	}
}

func TestParamsAreSelectedAndAdjusted(t *testing.T) {
	m := newTestModel(t)
	density := m.Model.Player().Density()
	m, _ = press(m, "tab", "-")
	if got := m.Model.Player().Density(); got != density-1 {
		t.Errorf("expected density %d, got %d", density-1, got)
	}
	// density does nothing in manual mode
	m, _ = press(m, "M", "+")
	if got := m.Model.Player().Density(); got != density-1 {
		t.Errorf("density changed in manual mode: %d", got)
	}
}

func TestQuitAsksAboutUnsavedChanges(t *testing.T) {
	m := newTestModel(t)
	m, cmd := press(m, "q")
	if !isQuit(cmd) {
		t.Fatalf("expected to quit right away with nothing changed")
	}
	m = newTestModel(t)
	m, cmd = press(m, "r", "q")
	if isQuit(cmd) || m.Model.Dialog() != tracker.QuitChanges {
		t.Fatalf("expected the quit dialog, got %v", m.Model.Dialog())
	}
	if !strings.Contains(m.View(), "Save changes") {
		t.Errorf("the quit dialog is not shown")
	}
	m, cmd = press(m, "esc")
	if isQuit(cmd) || m.Model.Dialog() != tracker.NoDialog {
		t.Fatalf("esc should cancel quitting")
	}
	m, _ = press(m, "q")
	m, cmd = press(m, "y")
	if !isQuit(cmd) {
		t.Fatalf("saving from the quit dialog should quit")
	}
	if _, err := os.Stat(m.DefaultPath); err != nil {
		t.Errorf("state not saved: %v", err)
	}
}

func TestSaveAndExportWriteNextToEachOther(t *testing.T) {
	m := newTestModel(t)
	m, _ = press(m, "ctrl+s", "ctrl+e")
	if got := m.Model.FilePath().Value(); got != m.DefaultPath {
		t.Errorf("expected the file path %q, got %q", m.DefaultPath, got)
	}
	data, err := os.ReadFile(m.DefaultPath)
	if err != nil {
		t.Fatalf("state not saved: %v", err)
	}
	s, err := rws.DecodeState(data, rws.State{})
	if err != nil || s != m.Model.Player().Document() {
		t.Errorf("saved state does not match: %v", err)
	}
	mid := strings.TrimSuffix(m.DefaultPath, ".rwsq") + ".mid"
	if _, err := os.Stat(mid); err != nil {
		t.Errorf("MIDI file not exported: %v", err)
	}
	if m.Model.Dialog() != tracker.NoDialog {
		t.Errorf("a dialog was left open: %v", m.Model.Dialog())
	}
}

func TestViewShowsTheNotes(t *testing.T) {
	m := newTestModel(t)
	snap := m.Model.Snapshot()
	view := m.View()
	for _, i := range []int{0, 5, 15} {
		name := rws.NoteName(int(rws.NoteFor(snap.Params.Root, snap.Pattern[i].Value)))
		if !strings.Contains(view, name) {
			t.Errorf("note %s of step %d missing from the view", name, i)
		}
	}
}
