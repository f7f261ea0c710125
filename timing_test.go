package randomwalkseq_test

import (
	"math"
	"testing"

	rws "github.com/davidfrivas/RandomWalkSeq"
)

func TestStepDuration(t *testing.T) {
	for _, c := range []struct {
		sampleRate, bpm float64
		rate            int
		want            float64
	}{
		{44100, 120, 6, 22050},
		{44100, 120, 0, 22050. / 32},
		{44100, 120, 4, 22050. / 3},
		{44100, 120, 9, 88200},
		{48000, 60, 3, 12000},
		{44100, 120, 42, 88200},
		{44100, 0, 6, 0},
		{44100, -10, 6, 0},
		{0, 120, 6, 0},
		{44100, math.NaN(), 6, 0},
		{math.Inf(1), 120, 6, 0},
	} {
		got := rws.StepDuration(c.sampleRate, c.bpm, c.rate)
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("StepDuration(%v, %v, %v) = %v, expected %v", c.sampleRate, c.bpm, c.rate, got, c.want)
		}
	}
}

func TestActualStepIndexInRange(t *testing.T) {
	for density := 1; density <= rws.NumSteps; density++ {
		for _, manual := range []bool{false, true} {
			loop := rws.LoopLength(density, manual)
			for offset := 0; offset < rws.NumSteps; offset++ {
				for step := 0; step < loop; step++ {
					if i := rws.ActualStepIndex(step, offset); i < 0 || i >= rws.NumSteps {
						t.Fatalf("ActualStepIndex(%d, %d) = %d", step, offset, i)
					}
				}
			}
		}
	}
	if i := rws.ActualStepIndex(-1, 0); i != rws.NumSteps-1 {
		t.Errorf("negative step should wrap, got %d", i)
	}
}

func TestLoopLength(t *testing.T) {
	if got := rws.LoopLength(5, false); got != 5 {
		t.Errorf("density loop: got %d", got)
	}
	if got := rws.LoopLength(5, true); got != rws.NumSteps {
		t.Errorf("manual loop: got %d", got)
	}
	if got := rws.LoopLength(0, false); got != 1 {
		t.Errorf("zero density should loop one step, got %d", got)
	}
}

func TestVelocity(t *testing.T) {
	for value, want := range map[int]byte{0: 80, 1: 83, 6: 95, -6: 95, 12: 110, -12: 110, 100: 127} {
		if got := rws.Velocity(value); got != want {
			t.Errorf("Velocity(%d) = %d, expected %d", value, got, want)
		}
	}
}

func TestNoteFor(t *testing.T) {
	if got := rws.NoteFor(60, -12); got != 48 {
		t.Errorf("NoteFor(60, -12) = %d", got)
	}
	if got := rws.NoteFor(120, 12); got != 127 {
		t.Errorf("NoteFor(120, 12) = %d, expected it clamped to 127", got)
	}
}

func TestBPMChanged(t *testing.T) {
	if rws.BPMChanged(120, 120.005) {
		t.Errorf("a change below epsilon should not count")
	}
	if !rws.BPMChanged(120, 120.5) {
		t.Errorf("a change above epsilon should count")
	}
}
