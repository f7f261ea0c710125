package tracker

import (
	"sync"
	"time"

	rws "github.com/davidfrivas/RandomWalkSeq"
)

type (
	// Broker is the centralized message broker of the sequencer. It is used
	// to communicate between the audio goroutine, the MIDI dispatcher and the
	// model owned by the GUI goroutine. Each recipient has its own channel.
	// Additionally, the broker has a sync.Pool of MIDI blocks, from which the
	// audio goroutine can get and return blocks to pass events around without
	// allocating new memory every time.
	//
	// For closing goroutines, the broker has two channels for each goroutine:
	// CloseXXX and FinishedXXX. The CloseXXX channel has a capacity of 1, so
	// you can always send a empty message (struct{}{}) to it without blocking.
	// If the channel is already full, that means someone else has already
	// requested its closure and the goroutine is already closing, so dropping
	// the message is fine. Then, FinishedXXX is used to signal that a goroutine
	// has succesfully closed and cleaned up. Nothing is ever sent to the
	// channel, it is only closed. You can wait until the goroutines is done
	// closing with "<- FinishedXXX", which for avoiding deadlocks can be
	// combined with a timeout:
	//    select {
	//      case <-FinishedXXX:
	//      case <-time.After(3 * time.Second):
	//    }
	Broker struct {
		ToModel      chan MsgToModel
		ToDispatcher chan any
		ToGUI        chan any

		CloseDispatcher chan struct{}
		CloseGUI        chan struct{}

		FinishedDispatcher chan struct{}
		FinishedGUI        chan struct{}

		blockPool sync.Pool
	}

	// MsgToModel is a message sent to the model. Alerts raised by other
	// goroutines are not boxed; all the infrequently passed messages are
	// boxed in Data. A func() in Data gets executed in the model goroutine.
	MsgToModel struct {
		HasAlert bool
		Alert    Alert

		Data any
	}

	// MIDIBlock is the MIDI output of one processed audio block. Time is the
	// wall clock time when frame 0 of the block is heard.
	MIDIBlock struct {
		Time       time.Time
		SampleRate float64
		Events     []rws.MIDIEvent
	}
)

func NewBroker() *Broker {
	return &Broker{
		ToModel:            make(chan MsgToModel, 1024),
		ToDispatcher:       make(chan any, 1024),
		ToGUI:              make(chan any, 1024),
		CloseDispatcher:    make(chan struct{}, 1),
		CloseGUI:           make(chan struct{}, 1),
		FinishedDispatcher: make(chan struct{}),
		FinishedGUI:        make(chan struct{}),
		blockPool:          sync.Pool{New: func() any { return &MIDIBlock{} }},
	}
}

// GetMIDIBlock returns a MIDI block from the pool. The block is guaranteed to
// have no events. After using the block, it should be returned to the pool
// with PutMIDIBlock.
func (b *Broker) GetMIDIBlock() *MIDIBlock {
	return b.blockPool.Get().(*MIDIBlock)
}

// PutMIDIBlock returns a MIDI block to the pool. The events are truncated
// (but capacity kept) before returning it to the pool.
func (b *Broker) PutMIDIBlock(block *MIDIBlock) {
	block.Events = block.Events[:0]
	b.blockPool.Put(block)
}

// SendMIDI hands the events of a processed block to the dispatcher. It never
// blocks, so it is safe to call from the audio goroutine; if the dispatcher
// is lagging behind, the block is dropped and false returned.
func (b *Broker) SendMIDI(t time.Time, sampleRate float64, events []rws.MIDIEvent) bool {
	if len(events) == 0 {
		return true
	}
	block := b.GetMIDIBlock()
	block.Time = t
	block.SampleRate = sampleRate
	block.Events = append(block.Events, events...)
	if !TrySend(b.ToDispatcher, any(block)) {
		b.PutMIDIBlock(block)
		return false
	}
	return true
}

// TrySend is a helper function to send a value to a channel if it is not full.
// It is guaranteed to be non-blocking. Return true if the value was sent, false
// otherwise.
func TrySend[T any](c chan<- T, v T) bool {
	select {
	case c <- v:
	default:
		return false
	}
	return true
}

// TimeoutReceive is a helper function to block until a value is received from a
// channel, or timing out after t. ok will be false if the timeout occurred or
// if the channel is closed.
func TimeoutReceive[T any](c <-chan T, t time.Duration) (v T, ok bool) {
	select {
	case v, ok = <-c:
		return v, ok
	case <-time.After(t):
		return v, false
	}
}
