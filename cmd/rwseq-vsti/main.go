//go:build plugin

package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	rws "github.com/davidfrivas/RandomWalkSeq"
	"github.com/davidfrivas/RandomWalkSeq/cmd"
	"github.com/davidfrivas/RandomWalkSeq/config"
	"github.com/davidfrivas/RandomWalkSeq/debug"
	"github.com/davidfrivas/RandomWalkSeq/tracker"
	"github.com/davidfrivas/RandomWalkSeq/tracker/gioui"
	"github.com/davidfrivas/RandomWalkSeq/version"
	"pipelined.dev/audio/vst2"
)

const (
	pluginID      = int32('R')<<24 | int32('W')<<16 | int32('S')<<8 | int32('Q')
	pluginVersion = int32(100)
)

// VSTIProcessContext reports the host transport to the player.
type VSTIProcessContext struct {
	events []rws.MIDIEvent
	host   vst2.Host
}

func (c *VSTIProcessContext) BPM() (bpm float64, ok bool) {
	timeInfo := c.host.GetTimeInfo(vst2.TempoValid)
	if timeInfo == nil || timeInfo.Flags&vst2.TempoValid == 0 || timeInfo.Tempo == 0 {
		return 0, false
	}
	return timeInfo.Tempo, true
}

func (c *VSTIProcessContext) Playing() (playing bool, ok bool) {
	timeInfo := c.host.GetTimeInfo(0)
	if timeInfo == nil {
		return false, false
	}
	return timeInfo.Flags&vst2.TransportPlaying != 0, true
}

func init() {
	vst2.PluginAllocator = func(h vst2.Host) (vst2.Plugin, vst2.Dispatcher) {
		cfg := config.Load()
		if cfg.YmlError != nil {
			debug.Log("config", "ignoring the user config: %v", cfg.YmlError)
		}
		recoveryFile := ""
		randBytes := make([]byte, 16)
		if _, err := rand.Read(randBytes); err == nil {
			recoveryFile = cmd.RecoveryFile("rwseq-vsti-recovery-" + hex.EncodeToString(randBytes))
		}
		broker := tracker.NewBroker()
		midiContext := cmd.NewMIDIContext()
		player := cmd.NewPlayer(cfg.Sequencer)
		player.SetSyncToHost(cfg.Sequencer.SyncToHost)
		model := tracker.NewModel(broker, player, midiContext, recoveryFile)
		model.SetHostTransport(true)
		go tracker.NewDispatcher(broker, nil).Run()
		model.MIDI().OpenByPrefix(cfg.MIDI.Output, cfg.MIDI.TakeFirst)
		t := gioui.NewTracker(model, cfg.UI)
		go t.Main()
		context := VSTIProcessContext{host: h}
		var events []rws.MIDIEvent
		var sampleRate float64
		return vst2.Plugin{
				UniqueID:       pluginID,
				Version:        pluginVersion,
				InputChannels:  0,
				OutputChannels: 2,
				Name:           version.Name,
				Vendor:         "davidfrivas",
				Category:       vst2.PluginCategorySynth,
				Flags:          vst2.PluginIsSynth,
				ProcessFloatFunc: func(in, out vst2.FloatBuffer) {
					heard := time.Now()
					if rate := float64(h.GetSampleRate()); rate > 0 && rate != sampleRate {
						sampleRate = rate
						player.Prepare(rate)
					}
					events = player.Process(events[:0], out.Frames, context.events, &context)
					broker.SendMIDI(heard, sampleRate, events)
					context.events = context.events[:0]
					// the sequencer makes no sound of its own
					clear(out.Channel(0))
					clear(out.Channel(1))
				},
			}, vst2.Dispatcher{
				CanDoFunc: func(pcds vst2.PluginCanDoString) vst2.CanDoResponse {
					switch pcds {
					case vst2.PluginCanReceiveEvents, vst2.PluginCanReceiveMIDIEvent, vst2.PluginCanReceiveTimeInfo:
						return vst2.YesCanDo
					}
					return vst2.NoCanDo
				},
				ProcessEventsFunc: func(ev *vst2.EventsPtr) {
					for i := 0; i < ev.NumEvents(); i++ {
						if v, ok := ev.Event(i).(*vst2.MIDIEvent); ok {
							context.events = append(context.events, rws.MIDIEvent{Frame: int(v.DeltaFrames), Data: v.Data})
						}
					}
				},
				CloseFunc: func() {
					broker.CloseGUI <- struct{}{}
					select {
					case <-broker.FinishedGUI:
					case <-time.After(3 * time.Second):
						debug.Log("vsti", "the GUI did not finish")
					}
					player.Release()
					broker.CloseDispatcher <- struct{}{}
					select {
					case <-broker.FinishedDispatcher:
					case <-time.After(3 * time.Second):
						debug.Log("vsti", "the MIDI dispatcher did not finish")
					}
					midiContext.Close()
					model.History().RemoveRecovery()
				},
				GetChunkFunc: func(isPreset bool) []byte {
					data, err := player.State()
					if err != nil {
						debug.Log("vsti", "saving state failed: %v", err)
						return nil
					}
					return data
				},
				SetChunkFunc: func(data []byte, isPreset bool) {
					if _, err := player.LoadState(data); err != nil {
						if errors.Is(err, rws.ErrStateTag) {
							debug.Log("vsti", "ignoring foreign state chunk: %v", err)
						} else {
							debug.Log("vsti", "state chunk damaged, using defaults: %v", err)
						}
					}
				},
			}
	}
}

func main() {}
