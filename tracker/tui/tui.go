// Package tui is a terminal editor for the sequencer, for when there is no
// window system, or no wish for one.
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	rws "github.com/davidfrivas/RandomWalkSeq"
	"github.com/davidfrivas/RandomWalkSeq/config"
	"github.com/davidfrivas/RandomWalkSeq/debug"
	"github.com/davidfrivas/RandomWalkSeq/smfexport"
	"github.com/davidfrivas/RandomWalkSeq/tracker"
	"github.com/davidfrivas/RandomWalkSeq/version"
)

type (
	// Model is the bubbletea model of the editor. The bubbletea event loop
	// is the only goroutine touching the tracker model.
	Model struct {
		Model *tracker.Model
		Theme *Theme

		// DefaultPath is where the state is saved when no file has been
		// opened or saved yet.
		DefaultPath string

		cursor    int
		param     int
		refresh   time.Duration
		sinceSave time.Duration
		quitting  bool
	}

	param struct {
		name  string
		value func(*tracker.Model) tracker.Int
	}

	tickMsg  time.Time
	modelMsg tracker.MsgToModel
	closeMsg struct{}
)

const recoveryInterval = 30 * time.Second

var params = []param{
	{"rate", (*tracker.Model).Rate},
	{"density", (*tracker.Model).Density},
	{"offset", (*tracker.Model).Offset},
	{"gate", (*tracker.Model).GatePercent},
	{"root", (*tracker.Model).Root},
	{"bpm", (*tracker.Model).InternalBPM},
	{"algorithm", (*tracker.Model).Algorithm},
	{"midi out", func(m *tracker.Model) tracker.Int { return m.MIDI().Output() }},
}

func NewModel(model *tracker.Model, ui config.UIConfig) Model {
	if ui.RefreshHz <= 0 {
		ui = config.Default().UI
	}
	return Model{
		Model:       model,
		Theme:       NewTheme(),
		DefaultPath: "pattern.rwsq",
		refresh:     ui.RefreshInterval(),
	}
}

func listenForModel(b *tracker.Broker) tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-b.ToModel:
			return modelMsg(msg)
		case <-b.CloseGUI:
			return closeMsg{}
		}
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(listenForModel(m.Model.Broker()), m.tick())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		debug.Log("tui", "key %q", msg.String())
		if m.Model.Dialog() == tracker.QuitChanges {
			m.quitDialogKey(msg.String())
		} else {
			m.key(msg.String())
		}
		m.runDialog()
		if m.Model.Quitted() {
			return m.quit()
		}
	case tickMsg:
		m.Model.Alerts().Update(m.refresh)
		m.sinceSave += m.refresh
		if m.sinceSave >= recoveryInterval {
			m.sinceSave = 0
			if err := m.Model.History().SaveRecovery(); err != nil {
				debug.Log("tui", "saving recovery failed: %v", err)
			}
		}
		return m, m.tick()
	case modelMsg:
		m.Model.ProcessMsg(tracker.MsgToModel(msg))
		return m, listenForModel(m.Model.Broker())
	case closeMsg:
		m.Model.ForceQuit().Do()
		return m.quit()
	}
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	if err := m.Model.History().SaveRecovery(); err != nil {
		debug.Log("tui", "saving recovery failed: %v", err)
	}
	return m, tea.Quit
}

func (m *Model) key(k string) {
	t := m.Model
	switch k {
	case "q", "ctrl+c":
		t.RequestQuit().Do()
	case "h", "left":
		m.cursor = (m.cursor + rws.NumSteps - 1) % rws.NumSteps
	case "l", "right":
		m.cursor = (m.cursor + 1) % rws.NumSteps
	case "k", "up":
		t.StepValue(m.cursor).Add(1)
	case "j", "down":
		t.StepValue(m.cursor).Add(-1)
	case "K", "shift+up":
		t.TransposeUp().Do()
	case "J", "shift+down":
		t.TransposeDown().Do()
	case " ":
		t.StartStop().Do()
	case "e":
		if b := t.StepEnabled(m.cursor); b.Enabled() {
			b.Toggle()
		}
	case "a":
		t.EnableAllSteps().Do()
	case "r":
		t.Randomize().Do()
	case "m":
		t.Mono().Do()
	case "M":
		t.ManualStepMode().Toggle()
	case "s":
		if b := t.SyncToHost(); b.Enabled() {
			b.Toggle()
		}
	case "tab":
		m.param = (m.param + 1) % len(params)
	case "shift+tab":
		m.param = (m.param + len(params) - 1) % len(params)
	case "+", "=", "-", "_":
		delta := 1
		if k == "-" || k == "_" {
			delta = -1
		}
		if v := params[m.param].value(t); v.Enabled() {
			v.Add(delta)
		}
	case "1", "2", "3", "4":
		t.Algorithm().Set(int(k[0] - '1'))
	case "u", "ctrl+z":
		t.History().Undo().Do()
	case "U", "ctrl+y":
		t.History().Redo().Do()
	case "ctrl+s":
		t.SaveFile().Do()
	case "ctrl+e":
		t.ExportMIDI().Do()
	case "ctrl+o":
		t.OpenFile().Do()
	}
}

func (m *Model) quitDialogKey(k string) {
	switch k {
	case "y":
		m.Model.SaveBeforeQuit().Do()
	case "n":
		m.Model.DiscardAndQuit().Do()
	case "esc", "ctrl+c":
		m.Model.Cancel().Do()
	}
}

// runDialog does what the file dialogs of the window editor do, without
// asking: the state goes to the current file or DefaultPath and the MIDI
// export next to it.
func (m *Model) runDialog() {
	t := m.Model
	switch t.Dialog() {
	case tracker.SaveAsExplorer, tracker.QuitSaveExplorer:
		f, err := os.Create(m.savePath())
		if err != nil {
			t.Alerts().Add(fmt.Sprintf("Error creating file: %v", err), tracker.Error)
			t.Cancel().Do()
			return
		}
		t.WriteState(f)
	case tracker.ExportMIDIExplorer:
		t.Cancel().Do()
		path := m.savePath()
		path = strings.TrimSuffix(path, filepath.Ext(path)) + ".mid"
		if err := smfexport.WriteFile(path, t.Player().Document(), smfexport.DefaultLoops); err != nil {
			t.Alerts().Add(fmt.Sprintf("Error exporting MIDI: %v", err), tracker.Error)
			return
		}
		t.Alerts().AddNamed("Saved", "Exported "+filepath.Base(path), tracker.Info)
	case tracker.OpenFileExplorer:
		t.Cancel().Do()
		t.Alerts().Add("Give the file to open on the command line", tracker.Warning)
	}
}

func (m *Model) savePath() string {
	if p := m.Model.FilePath().Value(); p != "" {
		return p
	}
	return m.DefaultPath
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	th := m.Theme
	snap := m.Model.Snapshot()

	playState := "stop"
	if snap.Playing {
		playState = "play"
	}
	sync := ""
	if snap.SyncToHost {
		sync = " sync"
	}
	mode := "auto"
	if snap.Params.ManualStepMode {
		mode = "manual"
	}
	header := th.Header.Render(fmt.Sprintf("%s  %s  %.1fbpm  step:%02d  %s%s",
		version.Title(""), playState, snap.BPM, snap.ActualStep+1, mode, sync))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(m.viewSteps(snap))
	out.WriteString("\n\n")
	out.WriteString(m.viewParams())
	out.WriteString("\n\n")
	if m.Model.Dialog() == tracker.QuitChanges {
		out.WriteString(th.Dialog.Render("Save changes before quitting? y: save  n: discard  esc: cancel"))
		out.WriteString("\n")
	}
	for _, a := range m.Model.Alerts().Iterate {
		style := th.Info
		switch a.Priority {
		case tracker.Warning:
			style = th.Warning
		case tracker.Error:
			style = th.Error
		}
		out.WriteString(style.Render(a.Message))
		out.WriteString("\n")
	}
	out.WriteString(th.Dim.Render("h/l:step  j/k:pitch  J/K:octave  e:toggle  space:play  r:randomize  m:mono  M:manual  tab,+/-:param  u/U:undo/redo  ctrl+s:save  ctrl+e:export  q:quit"))
	return out.String()
}

func (m Model) viewSteps(snap tracker.PlayerSnapshot) string {
	th := m.Theme
	inLoop := snap.InLoop()
	var bars, notes, marks []string
	for i, step := range snap.Pattern {
		style := th.Step
		switch {
		case !inLoop[i]:
			style = th.Outside
		case snap.Params.ManualStepMode && !step.Enabled:
			style = th.Off
		}
		if snap.Playing && i == snap.ActualStep {
			style = th.Playhead
		}
		if i == m.cursor {
			style = style.Inherit(th.Cursor)
		}
		level := (step.Value - rws.MinStepValue) * (len(barGlyphs) - 1) / (rws.MaxStepValue - rws.MinStepValue)
		bars = append(bars, style.Render(strings.Repeat(string(barGlyphs[level]), 3)+" "))
		name := rws.NoteName(int(rws.NoteFor(snap.Params.Root, step.Value)))
		if snap.Params.ManualStepMode && !step.Enabled {
			name = "·"
		}
		notes = append(notes, style.Render(fmt.Sprintf("%-4s", name)))
		mark := "    "
		if i == m.cursor {
			mark = "^   "
		}
		marks = append(marks, th.Dim.Render(mark))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		strings.Join(bars, ""),
		strings.Join(notes, ""),
		strings.Join(marks, ""),
	)
}

func (m Model) viewParams() string {
	th := m.Theme
	var cells []string
	for i, p := range params {
		v := p.value(m.Model)
		text := fmt.Sprintf("%s: %s", p.name, v.String())
		style := th.Param
		if !v.Enabled() {
			style = th.Dim
		}
		if i == m.param {
			style = th.Selected
		}
		cells = append(cells, style.Render(text))
	}
	return strings.Join(cells, "  ")
}

// Run runs the editor in the terminal until the user quits.
func Run(model Model) error {
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	close(model.Model.Broker().FinishedGUI)
	return err
}
