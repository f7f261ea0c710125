//go:build cgo

package cmd

import (
	"github.com/davidfrivas/RandomWalkSeq/tracker"
	"github.com/davidfrivas/RandomWalkSeq/tracker/gomidi"
)

func NewMIDIContext() tracker.MIDIContext {
	return gomidi.NewContext()
}
