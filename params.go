package randomwalkseq

import "math"

type (
	// Params are the user-facing sequencer parameters, everything that is
	// saved with the state apart from the pattern.
	Params struct {
		Rate           int
		Density        int
		Offset         int
		Gate           float64
		Root           int
		ManualStepMode bool
		InternalBPM    float64
	}

	IntRange struct {
		Min, Max int
	}

	FloatRange struct {
		Min, Max float64
	}
)

var (
	RateRange    = IntRange{0, NumRates - 1}
	DensityRange = IntRange{1, NumSteps}
	OffsetRange  = IntRange{0, NumSteps - 1}
	RootRange    = IntRange{12, 120}
	GateRange    = FloatRange{0.1, 1.0}
	BPMRange     = FloatRange{30, 300}
)

// DefaultParams are the values a freshly created sequencer starts with.
func DefaultParams() Params {
	return Params{
		Rate:        3,
		Density:     8,
		Offset:      0,
		Gate:        0.5,
		Root:        72,
		InternalBPM: 120,
	}
}

// StateDefaultParams are the fallbacks for fields missing from a loaded
// state document.
func StateDefaultParams() Params {
	return Params{
		Rate:        1,
		Density:     16,
		Offset:      0,
		Gate:        0.5,
		Root:        72,
		InternalBPM: 120,
	}
}

func (r IntRange) Clamp(value int) int {
	return max(min(value, r.Max), r.Min)
}

func (r IntRange) Contains(value int) bool {
	return value >= r.Min && value <= r.Max
}

// Clamp maps NaN to Min.
func (r FloatRange) Clamp(value float64) float64 {
	if math.IsNaN(value) {
		return r.Min
	}
	return math.Max(math.Min(value, r.Max), r.Min)
}

// Clamped returns a copy of the parameters with every field in range.
func (p Params) Clamped() Params {
	p.Rate = RateRange.Clamp(p.Rate)
	p.Density = DensityRange.Clamp(p.Density)
	p.Offset = OffsetRange.Clamp(p.Offset)
	p.Gate = GateRange.Clamp(p.Gate)
	p.Root = RootRange.Clamp(p.Root)
	p.InternalBPM = BPMRange.Clamp(p.InternalBPM)
	return p
}
