package randomwalkseq

import (
	"fmt"
	"strconv"
)

type (
	// Rand is the source of randomness for pattern generation. *math/rand.Rand
	// satisfies it; tests pass a seeded one.
	Rand interface {
		Intn(n int) int
		Float64() float64
	}

	// Algorithm selects how Generate fills a pattern.
	Algorithm int
)

const (
	RandomWalk Algorithm = iota
	Ascending
	Descending
	Arpeggio

	NumAlgorithms = int(Arpeggio) + 1
)

var algorithmNames = [NumAlgorithms]string{"random walk", "ascending", "descending", "arpeggio"}

func (a Algorithm) String() string {
	if a < 0 || int(a) >= NumAlgorithms {
		return "algorithm(" + strconv.Itoa(int(a)) + ")"
	}
	return algorithmNames[a]
}

// ParseAlgorithm accepts either the algorithm index or its name.
func ParseAlgorithm(s string) (Algorithm, error) {
	if i, err := strconv.Atoi(s); err == nil && i >= 0 && i < NumAlgorithms {
		return Algorithm(i), nil
	}
	for i, n := range algorithmNames {
		if n == s {
			return Algorithm(i), nil
		}
	}
	return 0, fmt.Errorf("unknown pattern algorithm %q", s)
}

// Generate returns NumSteps pitch offsets in [MinStepValue, MaxStepValue]
// using the given algorithm. Unknown algorithms fall back to RandomWalk.
func Generate(alg Algorithm, rnd Rand) [NumSteps]int {
	switch alg {
	case Ascending:
		return drift(-6, 1, rnd)
	case Descending:
		return drift(6, -1, rnd)
	case Arpeggio:
		return arpeggio(rnd)
	default:
		return randomWalk(rnd)
	}
}

const (
	walkRange        = MaxStepValue
	walkMaxJump      = 7
	walkStayProb     = 0.05
	walkBigJumpProb  = 0.25
	walkBreakProb    = 0.1
	walkResetProb    = 0.05
	walkReflectProb  = 0.7
	walkReverseProb  = 0.7
	walkTurnProb     = 0.4
	walkMaxStraights = 3
)

func randomWalk(rnd Rand) (seq [NumSteps]int) {
	value := rnd.Intn(2*walkRange+1) - walkRange
	seq[0] = value
	prevDir, straight := 0, 0
	for i := 1; i < NumSteps; i++ {
		switch {
		case rnd.Float64() < walkResetProb:
			value = rnd.Intn(2*walkRange+1) - walkRange
			prevDir, straight = 0, 0
		case rnd.Float64() < walkBreakProb || straight > walkMaxStraights:
			if prevDir == 0 {
				prevDir = randomSign(rnd)
			} else {
				prevDir = -prevDir
			}
			value += prevDir * (3 + rnd.Intn(9))
			straight = 0
		case rnd.Float64() < walkStayProb:
			straight = 0
		default:
			var dir int
			if straight >= 2 && rnd.Float64() < walkReverseProb {
				dir = -prevDir
			} else if rnd.Float64() < walkTurnProb {
				dir = -prevDir
			} else if prevDir != 0 {
				dir = prevDir
			} else {
				dir = randomSign(rnd)
			}
			value += dir * walkStepSize(rnd)
			if dir == prevDir {
				straight++
			} else {
				prevDir, straight = dir, 1
			}
		}
		// soft boundaries: usually reflect back into range, sometimes clamp
		if value > walkRange || value < -walkRange {
			bound := walkRange
			if value < 0 {
				bound = -walkRange
			}
			if rnd.Float64() < walkReflectProb {
				value = 2*bound - value
				prevDir = -prevDir
			} else {
				value = bound
			}
		}
		seq[i] = ClampStepValue(value)
	}
	breakStraightRuns(&seq, rnd)
	addOctaveAccents(&seq, rnd)
	return seq
}

func walkStepSize(rnd Rand) int {
	if rnd.Float64() < walkBigJumpProb {
		return 4 + rnd.Intn(walkMaxJump)
	}
	switch r := rnd.Float64(); {
	case r < 0.5:
		return 1
	case r < 0.8:
		return 2
	default:
		return 3 + rnd.Intn(walkMaxJump-2)
	}
}

// breakStraightRuns finds three steps moving with the same nonzero interval
// and bends the following step, either back or by a third.
func breakStraightRuns(seq *[NumSteps]int, rnd Rand) {
	for i := 2; i < NumSteps-1; i++ {
		d1 := seq[i] - seq[i-1]
		d2 := seq[i-1] - seq[i-2]
		if d1 != d2 || d1 == 0 {
			continue
		}
		if rnd.Intn(2) == 0 {
			seq[i+1] = seq[i] - d1
		} else {
			seq[i+1] = ClampStepValue(seq[i] + 3*randomSign(rnd))
		}
		i++
	}
}

func addOctaveAccents(seq *[NumSteps]int, rnd Rand) {
	n := 1 + rnd.Intn(2)
	for range n {
		pos := 2 + rnd.Intn(NumSteps-3)
		v := seq[pos] + 12*randomSign(rnd)
		if v >= MinStepValue && v <= MaxStepValue {
			seq[pos] = v
		}
	}
}

// drift moves by dir on 80% of the steps and against it otherwise.
func drift(start, dir int, rnd Rand) (seq [NumSteps]int) {
	value := start
	for i := range seq {
		if rnd.Float64() < 0.2 {
			value -= dir
		} else {
			value += dir
		}
		value = ClampStepValue(value)
		seq[i] = value
	}
	return seq
}

var arpeggioIntervals = [...]int{0, 4, 7, 12}

func arpeggio(rnd Rand) (seq [NumSteps]int) {
	for i := range seq {
		v := arpeggioIntervals[rnd.Intn(len(arpeggioIntervals))]
		if rnd.Float64() < 0.3 && v > 0 {
			v -= 12
		}
		seq[i] = v
	}
	return seq
}

func randomSign(rnd Rand) int {
	if rnd.Intn(2) == 0 {
		return 1
	}
	return -1
}
