package gioui

import (
	"fmt"
	"image"
	"io"
	"path/filepath"
	"strings"
	"time"

	"gioui.org/app"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"gioui.org/x/explorer"
	"golang.org/x/exp/shiny/materialdesign/icons"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	rws "github.com/davidfrivas/RandomWalkSeq"
	"github.com/davidfrivas/RandomWalkSeq/config"
	"github.com/davidfrivas/RandomWalkSeq/smfexport"
	"github.com/davidfrivas/RandomWalkSeq/tracker"
	"github.com/davidfrivas/RandomWalkSeq/version"
)

type (
	// Tracker is the editor window of the sequencer.
	Tracker struct {
		Theme      *Theme
		PopupAlert *PopupAlert
		Steps      *StepGrid
		QuitDialog *Dialog
		Explorer   *explorer.Explorer
		Exploring  bool

		Rate, Density, Offset, Gate, Root, BPM *IntSlider
		MIDIOutput                             *IntSlider
		Manual, Sync                           *BoolSwitch
		Algorithm                              widget.Enum

		PlayBtn                                 *BoolClickable
		RandomizeBtn, MonoBtn, UpBtn, DownBtn   *ActionClickable
		EnableAllBtn, UndoBtn, RedoBtn, OpenBtn *ActionClickable
		SaveBtn, SaveAsBtn, ExportBtn           *ActionClickable

		ui             config.UIConfig
		titleCaser     cases.Caser
		filePathString tracker.String

		*tracker.Model
	}

	C = layout.Context
	D = layout.Dimensions
)

func NewTracker(model *tracker.Model, ui config.UIConfig) *Tracker {
	if ui.RefreshHz <= 0 || ui.Width <= 0 || ui.Height <= 0 {
		ui = config.Default().UI
	}
	t := &Tracker{
		Theme:      NewTheme(),
		PopupAlert: NewPopupAlert(model.Alerts()),
		Steps:      NewStepGrid(model),
		QuitDialog: NewDialog(model.SaveBeforeQuit(), model.DiscardAndQuit(), model.Cancel()),

		Rate:       NewIntSlider(model.Rate()),
		Density:    NewIntSlider(model.Density()),
		Offset:     NewIntSlider(model.Offset()),
		Gate:       NewIntSlider(model.GatePercent()),
		Root:       NewIntSlider(model.Root()),
		BPM:        NewIntSlider(model.InternalBPM()),
		MIDIOutput: NewIntSlider(model.MIDI().Output()),
		Manual:     NewBoolSwitch(model.ManualStepMode()),
		Sync:       NewBoolSwitch(model.SyncToHost()),

		PlayBtn:      NewBoolClickable(model.Playing()),
		RandomizeBtn: NewActionClickable(model.Randomize()),
		MonoBtn:      NewActionClickable(model.Mono()),
		UpBtn:        NewActionClickable(model.TransposeUp()),
		DownBtn:      NewActionClickable(model.TransposeDown()),
		EnableAllBtn: NewActionClickable(model.EnableAllSteps()),
		UndoBtn:      NewActionClickable(model.History().Undo()),
		RedoBtn:      NewActionClickable(model.History().Redo()),
		OpenBtn:      NewActionClickable(model.OpenFile()),
		SaveBtn:      NewActionClickable(model.SaveFile()),
		SaveAsBtn:    NewActionClickable(model.SaveFileAs()),
		ExportBtn:    NewActionClickable(model.ExportMIDI()),

		ui:             ui,
		titleCaser:     cases.Title(language.English),
		filePathString: model.FilePath(),

		Model: model,
	}
	return t
}

// Main runs the window until the user quits. The window is recreated if it
// gets destroyed while quitting is not possible, e.g. when running as a
// plugin.
func (t *Tracker) Main() {
	recoveryTicker := time.NewTicker(time.Second * 30)
	refreshTicker := time.NewTicker(t.ui.RefreshInterval())
	var ops op.Ops
	titlePath := ""
	var lastRevision uint64
	lastStep := -1
	for !t.Quitted() {
		w := t.newWindow()
		w.Option(app.Title(titleFromPath(titlePath)))
		t.Explorer = explorer.NewExplorer(w)
		acks := make(chan struct{})
		events := make(chan event.Event)
		go func() {
			for {
				ev := w.Event()
				events <- ev
				<-acks
				if _, ok := ev.(app.DestroyEvent); ok {
					return
				}
			}
		}()
	F:
		for {
			select {
			case e := <-t.Broker().ToModel:
				t.ProcessMsg(e)
				w.Invalidate()
			case <-t.Broker().CloseGUI:
				t.ForceQuit().Do()
				w.Perform(system.ActionClose)
			case <-refreshTicker.C:
				// the player is also edited by the audio goroutine and the host
				if rev, step := t.Player().Revision(), t.Player().CurrentStep(); rev != lastRevision || step != lastStep {
					lastRevision, lastStep = rev, step
					w.Invalidate()
				}
			case e := <-events:
				switch e := e.(type) {
				case app.DestroyEvent:
					if canQuit {
						t.RequestQuit().Do()
					}
					acks <- struct{}{}
					break F // this window is done, we need to create a new one
				case app.FrameEvent:
					if titlePath != t.filePathString.Value() {
						titlePath = t.filePathString.Value()
						w.Option(app.Title(titleFromPath(titlePath)))
					}
					gtx := app.NewContext(&ops, e)
					t.Layout(gtx)
					e.Frame(gtx.Ops)
					if t.Quitted() {
						w.Perform(system.ActionClose)
					}
				}
				acks <- struct{}{}
			case <-recoveryTicker.C:
				t.History().SaveRecovery()
			}
		}
	}
	recoveryTicker.Stop()
	refreshTicker.Stop()
	t.History().SaveRecovery()
	close(t.Broker().FinishedGUI)
}

func (t *Tracker) newWindow() *app.Window {
	w := new(app.Window)
	w.Option(app.Size(unit.Dp(t.ui.Width), unit.Dp(t.ui.Height)))
	return w
}

func titleFromPath(path string) string {
	if path == "" {
		return version.Title("")
	}
	return fmt.Sprintf("%s - %s", version.Title(""), path)
}

func (t *Tracker) Layout(gtx C) {
	defer clip.Rect(image.Rectangle{Max: gtx.Constraints.Max}).Push(gtx.Ops).Pop()
	paint.Fill(gtx.Ops, t.Theme.Material.Bg)
	event.Op(gtx.Ops, t)

	snap := t.Snapshot()
	layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx C) D { return t.layoutToolbar(gtx, snap) }),
		layout.Flexed(1, func(gtx C) D { return t.Steps.Layout(gtx, t.Theme, snap) }),
		layout.Rigid(t.layoutParams),
	)
	t.PopupAlert.Layout(gtx, t.Theme)
	t.showDialog(gtx)
	for {
		ev, ok := gtx.Event(
			key.Filter{Name: "", Optional: key.ModAlt | key.ModCommand | key.ModShift | key.ModShortcut | key.ModSuper},
		)
		if !ok {
			break
		}
		if e, ok := ev.(key.Event); ok {
			t.KeyEvent(e)
		}
	}
}

func (t *Tracker) layoutToolbar(gtx C, snap tracker.PlayerSnapshot) D {
	th := t.Theme
	status := fmt.Sprintf("%.1f bpm  step %d/%d", snap.BPM, snap.CurrentStep+1, rws.LoopLength(snap.Params.Density, snap.Params.ManualStepMode))
	if snap.SyncToHost {
		status += "  host sync"
	}
	return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
		layout.Rigid(ToggleIcon(gtx, th, t.PlayBtn, icons.AVPlayArrow, icons.AVStop, makeHint("Start", " (%s)", "StartStop"), makeHint("Stop", " (%s)", "StartStop"))),
		layout.Rigid(ActionIcon(gtx, th, t.RandomizeBtn, icons.AVShuffle, makeHint("Randomize", " (%s)", "Randomize"))),
		layout.Rigid(ActionIcon(gtx, th, t.MonoBtn, icons.EditorShowChart, makeHint("Mono", " (%s)", "Mono"))),
		layout.Rigid(ActionIcon(gtx, th, t.UpBtn, icons.NavigationArrowUpward, makeHint("Octave up", " (%s)", "TransposeUp"))),
		layout.Rigid(ActionIcon(gtx, th, t.DownBtn, icons.NavigationArrowDownward, makeHint("Octave down", " (%s)", "TransposeDown"))),
		layout.Rigid(ActionIcon(gtx, th, t.EnableAllBtn, icons.ActionDoneAll, makeHint("Enable all steps", " (%s)", "EnableAllSteps"))),
		layout.Rigid(ActionIcon(gtx, th, t.UndoBtn, icons.ContentUndo, makeHint("Undo", " (%s)", "Undo"))),
		layout.Rigid(ActionIcon(gtx, th, t.RedoBtn, icons.ContentRedo, makeHint("Redo", " (%s)", "Redo"))),
		layout.Rigid(ActionIcon(gtx, th, t.OpenBtn, icons.FileFolderOpen, makeHint("Open", " (%s)", "OpenFile"))),
		layout.Rigid(ActionIcon(gtx, th, t.SaveBtn, icons.ContentSave, makeHint("Save", " (%s)", "SaveFile"))),
		layout.Rigid(ActionButton(gtx, th, t.SaveAsBtn, "Save as").Layout),
		layout.Rigid(ActionButton(gtx, th, t.ExportBtn, "Export MIDI").Layout),
		layout.Flexed(1, func(gtx C) D {
			return layout.E.Layout(gtx, func(gtx C) D {
				return layout.UniformInset(unit.Dp(8)).Layout(gtx, Label(th, status, mediumEmphasisTextColor))
			})
		}),
	)
}

func (t *Tracker) layoutParams(gtx C) D {
	th := t.Theme
	if t.Algorithm.Update(gtx) {
		if alg, err := rws.ParseAlgorithm(t.Algorithm.Value); err == nil {
			t.Model.Algorithm().Set(int(alg))
		}
	}
	t.Algorithm.Value = rws.Algorithm(t.Model.Algorithm().Value()).String()
	column := func(rows ...layout.Widget) layout.FlexChild {
		return layout.Flexed(1, func(gtx C) D {
			children := make([]layout.FlexChild, len(rows))
			for i, r := range rows {
				children[i] = layout.Rigid(r)
			}
			return layout.UniformInset(unit.Dp(6)).Layout(gtx, func(gtx C) D {
				return layout.Flex{Axis: layout.Vertical}.Layout(gtx, children...)
			})
		})
	}
	slider := func(s *IntSlider, label string) layout.Widget {
		return func(gtx C) D { return s.Layout(gtx, th, label) }
	}
	toggle := func(s *BoolSwitch, label string) layout.Widget {
		return func(gtx C) D { return s.Layout(gtx, th, label) }
	}
	algorithms := make([]layout.FlexChild, rws.NumAlgorithms)
	for i := range rws.NumAlgorithms {
		name := rws.Algorithm(i).String()
		algorithms[i] = layout.Rigid(material.RadioButton(th.Material, &t.Algorithm, name, t.titleCaser.String(name)).Layout)
	}
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx C) D {
			return layout.Flex{Axis: layout.Horizontal}.Layout(gtx,
				column(slider(t.Rate, "Rate"), slider(t.Density, "Density"), slider(t.Offset, "Offset"), slider(t.Gate, "Gate")),
				column(slider(t.Root, "Root"), slider(t.BPM, "Tempo"), toggle(t.Manual, "Manual steps"), toggle(t.Sync, "Host sync")),
			)
		}),
		layout.Rigid(func(gtx C) D {
			return layout.UniformInset(unit.Dp(6)).Layout(gtx, func(gtx C) D {
				return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
					append([]layout.FlexChild{layout.Rigid(func(gtx C) D {
						gtx.Constraints.Min.X = gtx.Dp(sliderLabelWidth)
						return Label(th, "Pattern", highEmphasisTextColor)(gtx)
					})}, algorithms...)...,
				)
			})
		}),
		layout.Rigid(func(gtx C) D {
			return layout.UniformInset(unit.Dp(6)).Layout(gtx, slider(t.MIDIOutput, "MIDI out"))
		}),
	)
}

func (t *Tracker) showDialog(gtx C) {
	if t.Exploring {
		return
	}
	switch t.Dialog() {
	case tracker.QuitChanges:
		dialog := ConfirmDialog(t.Theme, t.QuitDialog, "Save changes?", "Your changes will be lost if you don't save them.", "Save", "Don't save")
		dialog.Layout(gtx)
	case tracker.OpenFileExplorer:
		t.explorerChooseFile(t.ReadState, ".rwsq", ".yml", ".yaml")
	case tracker.SaveAsExplorer, tracker.QuitSaveExplorer:
		filename := t.filePathString.Value()
		if filename == "" {
			filename = "pattern.rwsq"
		}
		t.explorerCreateFile(t.WriteState, filename)
	case tracker.ExportMIDIExplorer:
		filename := "pattern.mid"
		if p := t.filePathString.Value(); p != "" {
			filename = strings.TrimSuffix(filepath.Base(p), filepath.Ext(p)) + ".mid"
		}
		t.explorerCreateFile(t.writeMIDI, filename)
	}
}

func (t *Tracker) writeMIDI(w io.WriteCloser) {
	t.Cancel().Do()
	err := smfexport.Write(w, t.Player().Document(), smfexport.DefaultLoops)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		t.Alerts().Add(err.Error(), tracker.Error)
		return
	}
	t.Alerts().AddNamed("Exported", "Exported the loop as a MIDI file", tracker.Info)
}

func (t *Tracker) explorerChooseFile(success func(io.ReadCloser), extensions ...string) {
	t.Exploring = true
	go func() {
		file, err := t.Explorer.ChooseFile(extensions...)
		t.Broker().ToModel <- tracker.MsgToModel{Data: func() {
			t.Exploring = false
			if err == nil {
				success(file)
			} else {
				t.Cancel().Do()
				if err != explorer.ErrUserDecline {
					t.Alerts().Add(err.Error(), tracker.Error)
				}
			}
		}}
	}()
}

func (t *Tracker) explorerCreateFile(success func(io.WriteCloser), filename string) {
	t.Exploring = true
	go func() {
		file, err := t.Explorer.CreateFile(filename)
		t.Broker().ToModel <- tracker.MsgToModel{Data: func() {
			t.Exploring = false
			if err == nil {
				success(file)
			} else {
				t.Cancel().Do()
				if err != explorer.ErrUserDecline {
					t.Alerts().Add(err.Error(), tracker.Error)
				}
			}
		}}
	}()
}
