package oto_test

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/davidfrivas/RandomWalkSeq/oto"
)

func TestFloatBufferTo32BitLE(t *testing.T) {
	in := []float32{0, 0.5, -0.25, 2, -3}
	expected := []float32{0, 0.5, -0.25, 1, -1}
	out := oto.FloatBufferTo32BitLE(in, nil)
	if len(out) != 4*len(in) {
		t.Fatalf("expected %d bytes, got %d", 4*len(in), len(out))
	}
	for i, e := range expected {
		got := math.Float32frombits(binary.LittleEndian.Uint32(out[4*i:]))
		if got != e {
			t.Errorf("sample %d: got %v, expected %v", i, got, e)
		}
	}
}

func TestFloatBufferTo32BitLEReusesCapacity(t *testing.T) {
	buf := make([]byte, 0, 64)
	out := oto.FloatBufferTo32BitLE(make([]float32, 16), buf)
	if &out[0] != &buf[:1][0] {
		t.Errorf("expected the output to reuse the buffer")
	}
}
