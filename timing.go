package randomwalkseq

import "math"

// RateTable gives the length of one step in beats, indexed by the rate
// parameter.
var RateTable = [...]float64{1. / 32, 1. / 16, 1. / 8, 1. / 4, 1. / 3, 1. / 2, 1, 2, 3, 4}

var rateNames = [len(RateTable)]string{"1/32", "1/16", "1/8", "1/4", "1/3", "1/2", "1", "2", "3", "4"}

const NumRates = len(RateTable)

// BPMEpsilon is the smallest tempo change that restarts the position within
// the current step.
const BPMEpsilon = 0.01

func RateName(rate int) string {
	if rate < 0 || rate >= NumRates {
		return "?"
	}
	return rateNames[rate] + " beat"
}

// SamplesPerBeat returns 0 for non-positive or non-finite input, so callers
// can treat the result as "not running".
func SamplesPerBeat(bpm, sampleRate float64) float64 {
	if !(bpm > 0) || !(sampleRate > 0) || math.IsInf(bpm, 0) || math.IsInf(sampleRate, 0) {
		return 0
	}
	return 60 / bpm * sampleRate
}

// StepDuration returns the length of one step in samples. It is 0 whenever
// the timing is degenerate.
func StepDuration(sampleRate, bpm float64, rate int) float64 {
	rate = max(min(rate, NumRates-1), 0)
	return SamplesPerBeat(bpm, sampleRate) * RateTable[rate]
}

// BPMChanged reports whether the tempo moved far enough to invalidate the
// position within a step.
func BPMChanged(oldBPM, newBPM float64) bool {
	return math.Abs(oldBPM-newBPM) > BPMEpsilon
}

// LoopLength is the number of steps the step counter cycles through.
func LoopLength(density int, manual bool) int {
	if manual {
		return NumSteps
	}
	return max(min(density, NumSteps), 1)
}

// ActualStepIndex maps the loop position to the pattern index after offset
// rotation. The result is always in [0, NumSteps).
func ActualStepIndex(currentStep, offset int) int {
	i := (currentStep + offset) % NumSteps
	if i < 0 {
		i += NumSteps
	}
	return i
}

// Velocity grows with the distance from the root: 80 at the root, 110 an
// octave away.
func Velocity(value int) byte {
	v := 80 + int(math.Round(30*math.Abs(float64(value))/12))
	return byte(max(min(v, 127), 1))
}

// NoteFor returns the MIDI note for a pitch offset, kept within 0..127.
func NoteFor(root, value int) byte {
	return byte(max(min(root+value, 127), 0))
}
