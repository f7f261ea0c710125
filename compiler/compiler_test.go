package compiler_test

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	rws "github.com/davidfrivas/RandomWalkSeq"
	"github.com/davidfrivas/RandomWalkSeq/compiler"
)

func testState() rws.State {
	s := rws.DefaultState()
	s.Params.Density = 4
	s.Params.Offset = 14
	s.Params.Gate = 1
	for i := range s.Pattern {
		s.Pattern[i].Value = i - 8
	}
	return s
}

func TestFormats(t *testing.T) {
	com, err := compiler.New("", "")
	if err != nil {
		t.Fatalf("could not create compiler: %v", err)
	}
	if got, expected := com.Formats(), []string{"go", "h", "txt"}; !reflect.DeepEqual(got, expected) {
		t.Errorf("got formats %v, expected %v", got, expected)
	}
}

func TestLoopFollowsOffset(t *testing.T) {
	m := compiler.NewStateMacros(testState(), "", "")
	var indices []int
	for _, s := range m.Loop() {
		indices = append(indices, s.Index)
	}
	if expected := []int{14, 15, 0, 1}; !reflect.DeepEqual(indices, expected) {
		t.Errorf("got loop %v, expected %v", indices, expected)
	}
	if first := m.Loop()[0]; first.Note != 72+6 || first.NoteName() != "F#5" {
		t.Errorf("unexpected first step %+v", first)
	}
}

func TestHeaderExport(t *testing.T) {
	com, err := compiler.New("", "random walk")
	if err != nil {
		t.Fatalf("could not create compiler: %v", err)
	}
	out, err := com.State(testState(), "h")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	h := out[".h"]
	for _, expected := range []string{
		"#define RANDOM_WALK_LOOP_LENGTH 4",
		"#define RANDOM_WALK_GATE 1.000f",
		"random_walk_notes[RANDOM_WALK_LOOP_LENGTH] = {78, 79, 64, 65};",
	} {
		if !strings.Contains(h, expected) {
			t.Errorf("header lacks %q:\n%s", expected, h)
		}
	}
}

func TestManualModeRestsInExports(t *testing.T) {
	s := testState()
	s.Params.ManualStepMode = true
	s.Params.Offset = 0
	s.Pattern[1].Enabled = false
	com, err := compiler.New("seq", "")
	if err != nil {
		t.Fatalf("could not create compiler: %v", err)
	}
	out, err := com.State(s)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected all three formats, got %v", len(out))
	}
	if !strings.Contains(out[".go"], "package seq") || !strings.Contains(out[".go"], "{65, 98, true},") {
		t.Errorf("go export lacks the rest:\n%s", out[".go"])
	}
	lines := strings.Split(out[".txt"], "\n")
	if len(lines) < 4 || !strings.HasSuffix(lines[3], "--") {
		t.Errorf("expected the second step line to be a rest:\n%s", out[".txt"])
	}
	if !strings.Contains(out[".h"], "pattern_velocities[PATTERN_LOOP_LENGTH] = {100, 0,") {
		t.Errorf("header velocities lack the rest:\n%s", out[".h"])
	}
}

func TestUnknownFormat(t *testing.T) {
	com, err := compiler.New("", "")
	if err != nil {
		t.Fatalf("could not create compiler: %v", err)
	}
	if _, err := com.State(testState(), "asm"); err == nil {
		t.Errorf("expected an error for a format with no template")
	}
}

func TestCustomTemplates(t *testing.T) {
	dir := t.TempDir()
	tmpl := `{{range .Loop}}{{.Note}} {{end}}`
	if err := os.WriteFile(filepath.Join(dir, "state.csv.tmpl"), []byte(tmpl), 0644); err != nil {
		t.Fatal(err)
	}
	com, err := compiler.NewFromTemplates("", "", dir)
	if err != nil {
		t.Fatalf("could not create compiler: %v", err)
	}
	out, err := com.State(testState(), "csv")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if out[".csv"] != "78 79 64 65 " {
		t.Errorf("unexpected output %q", out[".csv"])
	}
}
