package randomwalkseq

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// State is everything that gets saved with a host project or preset.
type State struct {
	Params  Params
	Pattern Pattern
}

// StateTag is the top-level key of the state document.
const StateTag = "RandomWalkSequencerState"

var stateMagic = [4]byte{'R', 'W', 'S', 'Q'}

// ErrStateTag is returned when data is not a state document at all. The
// current state must then be kept as is.
var ErrStateTag = errors.New("not a " + StateTag + " document")

type (
	stateDocument struct {
		State stateFields `yaml:"RandomWalkSequencerState"`
	}

	stateFields struct {
		Rate           int         `yaml:"rate"`
		Density        int         `yaml:"density"`
		Offset         int         `yaml:"offset"`
		Gate           float64     `yaml:"gate"`
		Root           int         `yaml:"root"`
		ManualStepMode bool        `yaml:"manualStepMode"`
		InternalBPM    float64     `yaml:"internalBpm"`
		Sequence       []stateStep `yaml:"sequence"`
	}

	stateStep struct {
		Step    int  `yaml:"step"`
		Value   int  `yaml:"value"`
		Enabled bool `yaml:"enabled"`
	}
)

// DefaultState is what a state document with no usable fields decodes to.
func DefaultState() State {
	return State{Params: StateDefaultParams(), Pattern: DefaultPattern()}
}

// MarshalState encodes the state as YAML wrapped in a small binary envelope:
// four magic bytes, the little-endian payload length, then the payload.
func MarshalState(s State) ([]byte, error) {
	payload, err := MarshalStateYAML(s)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.Grow(len(stateMagic) + 4 + len(payload))
	buf.Write(stateMagic[:])
	binary.Write(&buf, binary.LittleEndian, uint32(len(payload)))
	buf.Write(payload)
	return buf.Bytes(), nil
}

// MarshalStateYAML encodes the state document without the envelope, for
// files meant to be read and edited by people.
func MarshalStateYAML(s State) ([]byte, error) {
	doc := stateDocument{State: stateFields{
		Rate:           s.Params.Rate,
		Density:        s.Params.Density,
		Offset:         s.Params.Offset,
		Gate:           s.Params.Gate,
		Root:           s.Params.Root,
		ManualStepMode: s.Params.ManualStepMode,
		InternalBPM:    s.Params.InternalBPM,
		Sequence:       make([]stateStep, NumSteps),
	}}
	for i, step := range s.Pattern {
		doc.State.Sequence[i] = stateStep{Step: i, Value: step.Value, Enabled: step.Enabled}
	}
	payload, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("cannot marshal state: %w", err)
	}
	return payload, nil
}

// UnmarshalState decodes a state document. If the data is not a state
// document (bad envelope, or the top-level tag is missing), current is
// returned unchanged together with an error wrapping ErrStateTag. Otherwise
// every field that is missing or cannot be decoded falls back to
// DefaultState, and values are clamped to their ranges; an error is returned
// only when the payload is not valid YAML, in which case the result is
// DefaultState.
func UnmarshalState(data []byte, current State) (State, error) {
	payload, err := unwrapState(data)
	if err != nil {
		return current, err
	}
	return UnmarshalStateYAML(payload, current)
}

// UnmarshalStateYAML is UnmarshalState for a payload without the envelope.
func UnmarshalStateYAML(payload []byte, current State) (State, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(payload, &root); err != nil {
		return DefaultState(), fmt.Errorf("cannot parse state: %w", err)
	}
	fields, ok := stateMapping(&root)
	if !ok {
		return current, fmt.Errorf("missing top-level key %s: %w", StateTag, ErrStateTag)
	}
	ret := DefaultState()
	for i := 0; i+1 < len(fields.Content); i += 2 {
		decodeStateField(fields.Content[i].Value, fields.Content[i+1], &ret)
	}
	ret.Params = ret.Params.Clamped()
	return ret, nil
}

// DecodeState accepts both the enveloped document and a bare YAML payload,
// as found in hand-written files.
func DecodeState(data []byte, current State) (State, error) {
	if IsEnveloped(data) {
		return UnmarshalState(data, current)
	}
	return UnmarshalStateYAML(data, current)
}

// IsEnveloped reports whether data starts like a MarshalState result.
func IsEnveloped(data []byte) bool {
	return len(data) >= len(stateMagic) && bytes.Equal(data[:len(stateMagic)], stateMagic[:])
}

func unwrapState(data []byte) ([]byte, error) {
	if len(data) < len(stateMagic)+4 || !bytes.Equal(data[:len(stateMagic)], stateMagic[:]) {
		return nil, fmt.Errorf("bad envelope: %w", ErrStateTag)
	}
	n := binary.LittleEndian.Uint32(data[len(stateMagic):])
	payload := data[len(stateMagic)+4:]
	if uint64(n) > uint64(len(payload)) {
		return nil, fmt.Errorf("truncated payload (%d of %d bytes): %w", len(payload), n, ErrStateTag)
	}
	return payload[:n], nil
}

func stateMapping(root *yaml.Node) (*yaml.Node, bool) {
	doc := root
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return nil, false
	}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		if doc.Content[i].Value == StateTag {
			if v := doc.Content[i+1]; v.Kind == yaml.MappingNode {
				return v, true
			}
			return &yaml.Node{Kind: yaml.MappingNode}, true
		}
	}
	return nil, false
}

// decodeStateField leaves s untouched when the value has the wrong type.
func decodeStateField(key string, value *yaml.Node, s *State) {
	switch key {
	case "rate":
		decodeInto(value, &s.Params.Rate)
	case "density":
		decodeInto(value, &s.Params.Density)
	case "offset":
		decodeInto(value, &s.Params.Offset)
	case "gate":
		decodeInto(value, &s.Params.Gate)
	case "root":
		decodeInto(value, &s.Params.Root)
	case "manualStepMode":
		decodeInto(value, &s.Params.ManualStepMode)
	case "internalBpm":
		decodeInto(value, &s.Params.InternalBPM)
	case "sequence":
		if value.Kind != yaml.SequenceNode {
			return
		}
		for _, item := range value.Content {
			decodeStep(item, &s.Pattern)
		}
	}
}

func decodeStep(item *yaml.Node, p *Pattern) {
	if item.Kind != yaml.MappingNode {
		return
	}
	index := -1
	step := Step{Enabled: true}
	for i := 0; i+1 < len(item.Content); i += 2 {
		v := item.Content[i+1]
		switch item.Content[i].Value {
		case "step":
			decodeInto(v, &index)
		case "value":
			decodeInto(v, &step.Value)
		case "enabled":
			decodeInto(v, &step.Enabled)
		}
	}
	if index < 0 || index >= NumSteps {
		return
	}
	step.Value = ClampStepValue(step.Value)
	p[index] = step
}

func decodeInto[T any](n *yaml.Node, target *T) {
	var v T
	if err := n.Decode(&v); err == nil {
		*target = v
	}
}
