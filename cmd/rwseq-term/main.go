package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	rws "github.com/davidfrivas/RandomWalkSeq"
	"github.com/davidfrivas/RandomWalkSeq/cmd"
	"github.com/davidfrivas/RandomWalkSeq/config"
	"github.com/davidfrivas/RandomWalkSeq/debug"
	"github.com/davidfrivas/RandomWalkSeq/oto"
	"github.com/davidfrivas/RandomWalkSeq/tracker"
	"github.com/davidfrivas/RandomWalkSeq/tracker/tui"
	"github.com/davidfrivas/RandomWalkSeq/version"
)

var midiOutput = flag.String("midi-output", "", "open the MIDI output matching device name prefix, overriding the config")
var debugFlag = flag.Bool("debug", false, "write a debug log to the config dir")
var versionFlag = flag.Bool("v", false, "print version")

func main() {
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	// the terminal belongs to the editor, so diagnostics go to the debug log
	if *debugFlag {
		if err := debug.Enable(); err != nil {
			log.Fatal(err)
		}
		defer debug.Disable()
	}
	cfg := config.Load()
	if cfg.YmlError != nil {
		log.Printf("ignoring the user config: %v", cfg.YmlError)
	}
	audioContext, err := oto.NewContext(cfg.Audio.SampleRate, cfg.Audio.Latency())
	if err != nil {
		log.Fatal(err)
	}
	broker := tracker.NewBroker()
	midiContext := cmd.NewMIDIContext()
	player := cmd.NewPlayer(cfg.Sequencer)
	model := tracker.NewModel(broker, player, midiContext, cmd.RecoveryFile("rwseq-term-recovery"))
	model.SetHostTransport(false)
	go tracker.NewDispatcher(broker, nil).Run()

	outputPrefix, takeFirst := cfg.MIDI.Output, cfg.MIDI.TakeFirst
	if *midiOutput != "" {
		outputPrefix, takeFirst = *midiOutput, false
	}
	model.MIDI().OpenByPrefix(outputPrefix, takeFirst)
	if a := flag.Args(); len(a) > 0 {
		if err := model.LoadFile(a[0]); err != nil {
			log.Print(err)
		}
	}

	sampleRate := float64(audioContext.SampleRate())
	player.Prepare(sampleRate)
	events := make([]rws.MIDIEvent, 0, 16)
	audioCloser := audioContext.Play(func(frames int, heard time.Time) {
		events = player.Process(events[:0], frames, nil, tracker.NullPlayerProcessContext{})
		if !broker.SendMIDI(heard, sampleRate, events) {
			debug.LogEvery(100, "audio", "dropped a MIDI block")
		}
	})

	runErr := tui.Run(tui.NewModel(model, cfg.UI))
	audioCloser.Close()
	player.Release()
	broker.CloseDispatcher <- struct{}{}
	select {
	case <-broker.FinishedDispatcher:
	case <-time.After(3 * time.Second):
		log.Print("timeout waiting for the MIDI dispatcher to finish")
	}
	midiContext.Close()
	if runErr != nil {
		log.Fatal(runErr)
	}
}
