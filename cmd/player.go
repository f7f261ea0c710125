package cmd

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	rws "github.com/davidfrivas/RandomWalkSeq"
	"github.com/davidfrivas/RandomWalkSeq/config"
	"github.com/davidfrivas/RandomWalkSeq/tracker"
)

// NewPlayer creates a player whose generator is seeded and whose first
// pattern is generated as configured.
func NewPlayer(s config.SequencerConfig) *tracker.Player {
	seed := s.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	player := tracker.NewPlayer(rand.New(rand.NewSource(seed)))
	if alg := s.InitialAlgorithm(); alg != rws.RandomWalk {
		player.Randomize(alg)
	}
	return player
}

// RecoveryFile returns the path of a recovery file in the config dir, or
// an empty string if there is no config dir.
func RecoveryFile(name string) string {
	dir, err := config.Dir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, name)
}

// ReadStateFile reads a state file in either format. A damaged document
// still yields a usable state, with the error as a warning; a file that is
// not a state document at all is an error wrapping rws.ErrStateTag.
func ReadStateFile(path string) (rws.State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return rws.State{}, fmt.Errorf("could not read file %v: %w", path, err)
	}
	return rws.DecodeState(data, rws.DefaultState())
}
