package gioui

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gioui.org/io/key"
	"gopkg.in/yaml.v2"

	rws "github.com/davidfrivas/RandomWalkSeq"
	"github.com/davidfrivas/RandomWalkSeq/config"
)

type (
	KeyAction string

	KeyBinding struct {
		Key                                        string
		Shortcut, Ctrl, Command, Shift, Alt, Super bool
		Action                                     string
	}
)

var keyBindingMap = map[key.Event]string{}
var keyActionMap = map[KeyAction]string{} // holds an informative string of the first key bound to an action

//go:embed keybindings.yml
var defaultKeyBindingsYaml []byte

func loadDefaultKeyBindings() []KeyBinding {
	var keyBindings []KeyBinding
	err := yaml.UnmarshalStrict(defaultKeyBindingsYaml, &keyBindings)
	if err != nil {
		panic(fmt.Errorf("failed to unmarshal keybindings: %w", err))
	}
	return keyBindings
}

// loadCustomKeyBindings reads keybindings.yml from the config dir. Its
// bindings are applied after the defaults; an empty action unbinds a key.
func loadCustomKeyBindings() []KeyBinding {
	dir, err := config.Dir()
	if err != nil {
		return nil
	}
	b, err := os.ReadFile(filepath.Join(dir, "keybindings.yml"))
	if err != nil {
		return nil
	}
	var keyBindings []KeyBinding
	if err := yaml.Unmarshal(b, &keyBindings); err != nil {
		return nil
	}
	return keyBindings
}

func init() {
	bindKeys(append(loadDefaultKeyBindings(), loadCustomKeyBindings()...))
}

func bindKeys(keyBindings []KeyBinding) {
	for _, kb := range keyBindings {
		var mods key.Modifiers
		if kb.Shortcut {
			mods |= key.ModShortcut
		}
		if kb.Ctrl {
			mods |= key.ModCtrl
		}
		if kb.Command {
			mods |= key.ModCommand
		}
		if kb.Shift {
			mods |= key.ModShift
		}
		if kb.Alt {
			mods |= key.ModAlt
		}
		if kb.Super {
			mods |= key.ModSuper
		}
		keyEvent := key.Event{Name: key.Name(kb.Key), Modifiers: mods, State: key.Press}
		if action, ok := keyBindingMap[keyEvent]; ok {
			delete(keyActionMap, KeyAction(action))
		}
		if kb.Action == "" {
			delete(keyBindingMap, keyEvent)
			continue
		}
		keyBindingMap[keyEvent] = kb.Action
		modString := strings.ReplaceAll(mods.String(), "-", "+")
		text := kb.Key
		if modString != "" {
			text = modString + "+" + text
		}
		keyActionMap[KeyAction(kb.Action)] = text
	}
}

func makeHint(hint, format, action string) string {
	if keyActionMap[KeyAction(action)] != "" {
		return hint + fmt.Sprintf(format, keyActionMap[KeyAction(action)])
	}
	return hint
}

// KeyEvent handles a key event that no widget took.
func (t *Tracker) KeyEvent(e key.Event) {
	if e.State != key.Press {
		return
	}
	action, ok := keyBindingMap[key.Event{Name: e.Name, Modifiers: e.Modifiers, State: key.Press}]
	if !ok {
		return
	}
	sel := t.Steps.Selected
	switch action {
	case "StartStop":
		t.StartStop().Do()
	case "Randomize":
		t.Randomize().Do()
	case "Mono":
		t.Mono().Do()
	case "TransposeUp":
		t.TransposeUp().Do()
	case "TransposeDown":
		t.TransposeDown().Do()
	case "EnableAllSteps":
		t.EnableAllSteps().Do()
	case "ToggleStep":
		if b := t.StepEnabled(sel); b.Enabled() {
			b.Toggle()
		}
	case "PreviousStep":
		t.Steps.Selected = (sel + rws.NumSteps - 1) % rws.NumSteps
	case "NextStep":
		t.Steps.Selected = (sel + 1) % rws.NumSteps
	case "StepUp":
		t.StepValue(sel).Add(1)
	case "StepDown":
		t.StepValue(sel).Add(-1)
	case "AlgorithmRandomWalk":
		t.Model.Algorithm().Set(int(rws.RandomWalk))
	case "AlgorithmAscending":
		t.Model.Algorithm().Set(int(rws.Ascending))
	case "AlgorithmDescending":
		t.Model.Algorithm().Set(int(rws.Descending))
	case "AlgorithmArpeggio":
		t.Model.Algorithm().Set(int(rws.Arpeggio))
	case "Undo":
		t.History().Undo().Do()
	case "Redo":
		t.History().Redo().Do()
	case "OpenFile":
		t.OpenFile().Do()
	case "SaveFile":
		t.SaveFile().Do()
	case "SaveFileAs":
		t.SaveFileAs().Do()
	case "ExportMIDI":
		t.ExportMIDI().Do()
	case "Quit":
		if canQuit {
			t.RequestQuit().Do()
		}
	}
}
