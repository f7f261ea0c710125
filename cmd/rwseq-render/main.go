package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	rws "github.com/davidfrivas/RandomWalkSeq"
	"github.com/davidfrivas/RandomWalkSeq/cmd"
	"github.com/davidfrivas/RandomWalkSeq/smfexport"
	"github.com/davidfrivas/RandomWalkSeq/version"
)

func main() {
	help := flag.Bool("h", false, "Show help.")
	directory := flag.String("o", "", "Directory where to output all files. The directory and its parents are created if needed. By default, everything is placed in the same directory where the original state file is.")
	loops := flag.Int("loops", smfexport.DefaultLoops, "How many times the loop is played into the file.")
	bpm := flag.Float64("bpm", 0, "Tempo of the rendering. By default, the internal tempo of the state.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if flag.NArg() == 0 || *help {
		flag.Usage()
		os.Exit(0)
	}
	process := func(filename string) error {
		state, err := cmd.ReadStateFile(filename)
		if errors.Is(err, rws.ErrStateTag) {
			return err
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v: %v\n", filename, err)
		}
		if *bpm > 0 {
			state.Params.InternalBPM = rws.BPMRange.Clamp(*bpm)
		}
		dir, name := filepath.Split(filename)
		if *directory != "" {
			dir = *directory
			if err := os.MkdirAll(dir, os.ModePerm); err != nil {
				return fmt.Errorf("could not create output directory %v: %v", dir, err)
			}
		}
		out := filepath.Join(dir, strings.TrimSuffix(name, filepath.Ext(name))+".mid")
		if err := smfexport.WriteFile(out, state, *loops); err != nil {
			return fmt.Errorf("could not render %v: %v", out, err)
		}
		return nil
	}
	retval := 0
	for _, param := range flag.Args() {
		if err := process(param); err != nil {
			fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", param, err)
			retval = 1
		}
	}
	os.Exit(retval)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "%s\nRenders .rwsq or .yml state files into standard MIDI files.\nUsage: %s [flags] [path ...]\n", version.Title("renderer"), os.Args[0])
	flag.PrintDefaults()
}
