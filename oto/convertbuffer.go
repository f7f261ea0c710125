package oto

import (
	"encoding/binary"
	"math"
)

// FloatBufferTo32BitLE appends buff to out as 32-bit little-endian floats.
// Values are clipped to [-1, 1].
func FloatBufferTo32BitLE(buff []float32, out []byte) []byte {
	for _, v := range buff {
		v = max(min(v, 1), -1)
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
	}
	return out
}
