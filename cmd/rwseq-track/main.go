package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"gioui.org/app"
	rws "github.com/davidfrivas/RandomWalkSeq"
	"github.com/davidfrivas/RandomWalkSeq/cmd"
	"github.com/davidfrivas/RandomWalkSeq/config"
	"github.com/davidfrivas/RandomWalkSeq/oto"
	"github.com/davidfrivas/RandomWalkSeq/tracker"
	"github.com/davidfrivas/RandomWalkSeq/tracker/gioui"
	"github.com/davidfrivas/RandomWalkSeq/version"
)

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to `file`")
var memprofile = flag.String("memprofile", "", "write memory profile to `file`")
var midiOutput = flag.String("midi-output", "", "open the MIDI output matching device name prefix, overriding the config")
var versionFlag = flag.Bool("v", false, "print version")

func main() {
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	cfg := config.Load()
	if cfg.YmlError != nil {
		log.Printf("ignoring the user config: %v", cfg.YmlError)
	}
	var f *os.File
	if *cpuprofile != "" {
		var err error
		f, err = os.Create(*cpuprofile)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
	}
	audioContext, err := oto.NewContext(cfg.Audio.SampleRate, cfg.Audio.Latency())
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	broker := tracker.NewBroker()
	midiContext := cmd.NewMIDIContext()
	player := cmd.NewPlayer(cfg.Sequencer)
	model := tracker.NewModel(broker, player, midiContext, cmd.RecoveryFile("rwseq-track-recovery"))
	// standalone, there is no host to follow
	model.SetHostTransport(false)
	go tracker.NewDispatcher(broker, nil).Run()

	outputPrefix, takeFirst := cfg.MIDI.Output, cfg.MIDI.TakeFirst
	if isFlagPassed("midi-output") {
		outputPrefix, takeFirst = *midiOutput, false
	}
	model.MIDI().OpenByPrefix(outputPrefix, takeFirst)

	if a := flag.Args(); len(a) > 0 {
		if err := model.LoadFile(a[0]); err != nil {
			log.Print(err)
		}
	}

	player.Prepare(float64(audioContext.SampleRate()))
	sampleRate := float64(audioContext.SampleRate())
	events := make([]rws.MIDIEvent, 0, 16)
	audioCloser := audioContext.Play(func(frames int, heard time.Time) {
		events = player.Process(events[:0], frames, nil, tracker.NullPlayerProcessContext{})
		broker.SendMIDI(heard, sampleRate, events)
	})

	trackerUi := gioui.NewTracker(model, cfg.UI)
	go func() {
		trackerUi.Main()
		audioCloser.Close()
		player.Release()
		// the dispatcher turns off the sounding notes and closes the output
		broker.CloseDispatcher <- struct{}{}
		select {
		case <-broker.FinishedDispatcher:
		case <-time.After(3 * time.Second):
			log.Print("timeout waiting for the MIDI dispatcher to finish")
		}
		midiContext.Close()
		if *cpuprofile != "" {
			pprof.StopCPUProfile()
			f.Close()
		}
		if *memprofile != "" {
			f, err := os.Create(*memprofile)
			if err != nil {
				log.Fatal("could not create memory profile: ", err)
			}
			defer f.Close()
			runtime.GC()
			if err := pprof.WriteHeapProfile(f); err != nil {
				log.Fatal("could not write memory profile: ", err)
			}
		}
		os.Exit(0)
	}()
	app.Main()
}

func isFlagPassed(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}
