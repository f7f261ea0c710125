package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	rws "github.com/davidfrivas/RandomWalkSeq"
	"github.com/davidfrivas/RandomWalkSeq/cmd"
	"github.com/davidfrivas/RandomWalkSeq/compiler"
	"github.com/davidfrivas/RandomWalkSeq/version"
)

func main() {
	safe := flag.Bool("n", false, "Never overwrite files; if file already exists and would be overwritten, give an error.")
	list := flag.Bool("l", false, "Do not write files; just list files that would change instead.")
	stdout := flag.Bool("s", false, "Do not write files; write to standard output instead.")
	help := flag.Bool("h", false, "Show help.")
	yamlOut := flag.Bool("y", false, "Output the state as a plain .yml file instead of compiling.")
	tmplDir := flag.String("t", "", "When compiling, use the templates in this directory instead of the standard templates.")
	outPath := flag.String("o", "", "Directory or filename where to write compiled code. Extension is ignored. Directory and its parents are created if needed. By default, everything is placed in the working directory.")
	extensionsOut := flag.String("e", "", "Output only the compiled files with these comma separated extensions. For example: h,go")
	pkg := flag.String("pkg", "main", "Package name used in the .go output.")
	name := flag.String("name", "pattern", "Identifier prefix used in the compiled code.")
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
	var comp *compiler.Compiler
	var err error
	if *tmplDir != "" {
		comp, err = compiler.NewFromTemplates(*pkg, *name, *tmplDir)
	} else {
		comp, err = compiler.New(*pkg, *name)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating compiler: %v\n", err)
		os.Exit(1)
	}
	var formats []string
	if *extensionsOut != "" {
		formats = strings.Split(*extensionsOut, ",")
	}
	output := func(filename string, extension string, contents []byte) error {
		if *stdout {
			fmt.Print(string(contents))
			return nil
		}
		_, name := filepath.Split(filename)
		var dir string
		if *outPath != "" {
			// check if it's an already existing directory and the user just forgot trailing slash
			if info, err := os.Stat(*outPath); err == nil && info.IsDir() {
				dir = *outPath
			} else {
				outdir, outname := filepath.Split(*outPath)
				if outdir != "" {
					dir = outdir
				}
				if outname != "" {
					name = outname
				}
			}
		}
		if dir == "" {
			var err error
			dir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("could not get working directory, specify the output directory explicitly: %v", err)
			}
		}
		name = strings.TrimSuffix(name, filepath.Ext(name)) + extension
		f := filepath.Join(dir, name)
		original, err := os.ReadFile(f)
		if err == nil {
			if bytes.Equal(original, contents) {
				return nil // no need to update
			}
			if !*list && *safe {
				return fmt.Errorf("file %v would be overwritten by compiler", f)
			}
		}
		if *list {
			fmt.Println(f)
			return nil
		}
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("could not create output directory %v: %v", dir, err)
		}
		if err := os.WriteFile(f, contents, 0644); err != nil {
			return fmt.Errorf("could not write file %v: %v", f, err)
		}
		return nil
	}
	process := func(filename string) error {
		state, err := cmd.ReadStateFile(filename)
		if errors.Is(err, rws.ErrStateTag) {
			return err
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v: %v\n", filename, err)
		}
		if *yamlOut {
			yamlState, err := rws.MarshalStateYAML(state)
			if err != nil {
				return fmt.Errorf("could not marshal the state as yaml file: %v", err)
			}
			if err := output(filename, ".yml", yamlState); err != nil {
				return fmt.Errorf("error outputting yaml file: %v", err)
			}
			return nil
		}
		compiled, err := comp.State(state, formats...)
		if err != nil {
			return fmt.Errorf("compiling state failed: %v", err)
		}
		for extension, code := range compiled {
			if err := output(filename, extension, []byte(code)); err != nil {
				return fmt.Errorf("error outputting %v file: %v", extension, err)
			}
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
	fmt.Fprintf(os.Stderr, "%s\nInput .rwsq or .yml state files, outputs the loop as code (formats: .h, .go, .txt).\nUsage: %s [flags] [path ...]\n", version.Title("compiler"), os.Args[0])
	flag.PrintDefaults()
}
