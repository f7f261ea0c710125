// Package config holds the settings shared by the commands. The defaults
// are embedded; the user can override any of them with a config.yml in the
// RandomWalkSeq directory of the user config dir.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	rws "github.com/davidfrivas/RandomWalkSeq"
	"github.com/davidfrivas/RandomWalkSeq/version"
	"gopkg.in/yaml.v2"
)

type (
	Config struct {
		Audio     AudioConfig
		MIDI      MIDIConfig `yaml:"midi"`
		UI        UIConfig   `yaml:"ui"`
		Sequencer SequencerConfig

		// YmlError is the error reading the user config file, if it
		// exists but could not be parsed.
		YmlError error `yaml:"-"`
	}

	AudioConfig struct {
		SampleRate int
		LatencyMs  int
	}

	MIDIConfig struct {
		// Output is the prefix of the MIDI output opened at start.
		Output    string
		TakeFirst bool
	}

	UIConfig struct {
		RefreshHz int
		Width     int
		Height    int
	}

	SequencerConfig struct {
		SyncToHost bool
		Algorithm  string
		// Seed of the pattern generator. 0 seeds from the clock.
		Seed int64
	}
)

const fileName = "config.yml"

//go:embed config.yml
var defaultConfigYaml []byte

func Default() Config {
	var config Config
	if err := yaml.UnmarshalStrict(defaultConfigYaml, &config); err != nil {
		panic(fmt.Errorf("failed to unmarshal default config: %w", err))
	}
	return config
}

// Dir is the directory of the user config file, recovery files and the
// debug log.
func Dir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, version.Name), nil
}

// Load returns the defaults overridden by the user config file. A missing
// file is not an error; a broken one is reported in YmlError.
func Load() Config {
	config := Default()
	dir, err := Dir()
	if err != nil {
		return config
	}
	if err := config.ReadFile(filepath.Join(dir, fileName)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		config.YmlError = err
	}
	return config
}

// ReadFile overrides the settings present in the file. The settings are
// validated after reading, invalid ones reverting to the defaults.
func (c *Config) ReadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return c.Read(b)
}

func (c *Config) Read(b []byte) error {
	override := *c
	if err := yaml.UnmarshalStrict(b, &override); err != nil {
		return fmt.Errorf("config %s: %w", fileName, err)
	}
	def := Default()
	if override.Audio.SampleRate <= 0 {
		override.Audio.SampleRate = def.Audio.SampleRate
	}
	if override.Audio.LatencyMs <= 0 {
		override.Audio.LatencyMs = def.Audio.LatencyMs
	}
	if override.UI.RefreshHz <= 0 {
		override.UI.RefreshHz = def.UI.RefreshHz
	}
	if override.UI.Width <= 0 || override.UI.Height <= 0 {
		override.UI.Width, override.UI.Height = def.UI.Width, def.UI.Height
	}
	if _, err := rws.ParseAlgorithm(override.Sequencer.Algorithm); err != nil {
		override.Sequencer.Algorithm = def.Sequencer.Algorithm
		*c = override
		return fmt.Errorf("config %s: %w", fileName, err)
	}
	*c = override
	return nil
}

func (a AudioConfig) Latency() time.Duration {
	return time.Duration(a.LatencyMs) * time.Millisecond
}

func (s SequencerConfig) InitialAlgorithm() rws.Algorithm {
	alg, err := rws.ParseAlgorithm(s.Algorithm)
	if err != nil {
		return rws.RandomWalk
	}
	return alg
}

// RefreshInterval is how often the editors poll the sequencer for changes.
func (u UIConfig) RefreshInterval() time.Duration {
	return time.Second / time.Duration(u.RefreshHz)
}
