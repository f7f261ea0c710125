//go:build !cgo

package cmd

import (
	"github.com/davidfrivas/RandomWalkSeq/tracker"
)

func NewMIDIContext() tracker.MIDIContext {
	// rtmidi needs cgo, so there are no outputs to offer
	return tracker.NullMIDIContext{}
}
