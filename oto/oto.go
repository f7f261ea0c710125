// Package oto drives the sequencer clock from an audio device. The
// sequencer makes no sound; the device only paces the blocks, the same way a
// plugin host does, so the standalone editors keep sample accurate timing.
package oto

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/viterin/vek/vek32"
)

type (
	OtoContext struct {
		context    *oto.Context
		sampleRate int
		latency    time.Duration
	}

	// OtoOutput is a playing stream of silence. Each block pulled by the
	// device is handed to the process function first.
	OtoOutput struct {
		player    *oto.Player
		reader    *clockReader
		closeOnce sync.Once
	}

	// ProcessFunc is called for each block of frames, with the wall clock
	// time when the first frame of the block is heard.
	ProcessFunc func(frames int, heard time.Time)

	clockReader struct {
		process    ProcessFunc
		sampleRate int
		latency    time.Duration
		floats     []float32
	}
)

const (
	channelCount   = 2
	bytesPerFrame  = channelCount * 4
	defaultLatency = 20 * time.Millisecond
	// maxBlockFrames splits large reads, so events are scheduled with no
	// more than this much jitter.
	maxBlockFrames = 512
)

// NewContext opens the default audio device. The latency is the buffer
// size of the device. It blocks until the device is ready.
func NewContext(sampleRate int, latency time.Duration) (*OtoContext, error) {
	if latency <= 0 {
		latency = defaultLatency
	}
	context, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channelCount,
		Format:       oto.FormatFloat32LE,
		BufferSize:   latency,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return &OtoContext{context: context, sampleRate: sampleRate, latency: latency}, nil
}

func (c *OtoContext) SampleRate() int { return c.sampleRate }

// Play starts pulling blocks from the device and calls process for each.
func (c *OtoContext) Play(process ProcessFunc) *OtoOutput {
	r := &clockReader{
		process:    process,
		sampleRate: c.sampleRate,
		latency:    c.latency,
	}
	p := c.context.NewPlayer(r)
	p.Play()
	return &OtoOutput{player: p, reader: r}
}

func (c *OtoContext) Suspend() error {
	if err := c.context.Suspend(); err != nil {
		return fmt.Errorf("cannot suspend oto context: %w", err)
	}
	return nil
}

// Close disposes of resources
func (o *OtoOutput) Close() error {
	var err error
	o.closeOnce.Do(func() {
		o.player.Pause()
		if e := o.player.Close(); e != nil {
			err = fmt.Errorf("cannot close oto player: %w", e)
		}
	})
	return err
}

func (r *clockReader) Read(p []byte) (int, error) {
	frames := len(p) / bytesPerFrame
	heard := time.Now().Add(r.latency)
	n := 0
	for done := 0; done < frames; {
		block := min(frames-done, maxBlockFrames)
		at := heard.Add(time.Duration(done) * time.Second / time.Duration(r.sampleRate))
		r.process(block, at)
		r.floats = vek32.Zeros_Into(r.floats, block*channelCount)
		n += len(FloatBufferTo32BitLE(r.floats, p[n:n]))
		done += block
	}
	return n, nil
}
