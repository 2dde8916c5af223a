package scene

import (
	"fmt"

	"github.com/poserig/combokeys/internal/curve"
	"github.com/poserig/combokeys/internal/rig"
)

// Evaluate runs every synthesized channel against the current scene
// state: drivers produce channel inputs, response curves map them to
// outputs, and outputs land back in the scene (weight-array elements
// first, then the shape key values combining them).
//
// Muted channels are evaluated but write nothing.
func (s *Scene) Evaluate() error {
	keys := s.ChannelKeys()

	// Weight elements feed the combination channels, so they settle first.
	for _, key := range keys {
		if key.Index < 0 {
			continue
		}
		if err := s.evaluateChannel(key); err != nil {
			return err
		}
	}
	for _, key := range keys {
		if key.Index >= 0 {
			continue
		}
		if err := s.evaluateChannel(key); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scene) evaluateChannel(key rig.ChannelKey) error {
	ch := s.channels[key]
	if !ch.HasDriver {
		return nil
	}

	input, err := s.driverValue(ch.Driver)
	if err != nil {
		return fmt.Errorf("channel %s[%d]: %w", key.Path, key.Index, err)
	}

	output := input
	if len(ch.Keyframes) > 0 {
		output = curve.Evaluate(ch.Keyframes, ch.Mode, input)
	}
	if ch.Muted {
		return nil
	}

	if key.Index >= 0 {
		name, _, ok := parseIndexedArrayChannel(key)
		if !ok {
			return fmt.Errorf("channel %s: not an indexed property", key.Path)
		}
		arr := s.weights[name]
		if key.Index < len(arr) {
			arr[key.Index] = output
		}
		return nil
	}

	if name, ok := parseShapeKeyPath(key.Path); ok {
		if _, exists := s.shapeKeys[name]; exists {
			s.shapeKeys[name] = output
		}
		return nil
	}
	return fmt.Errorf("channel %s: unknown output", key.Path)
}

// parseIndexedArrayChannel resolves a weight-element channel key, whose
// path is the bare bracketed array name with the element in Index.
func parseIndexedArrayChannel(key rig.ChannelKey) (string, int, bool) {
	name, ok := parseBracketedName(key.Path)
	if !ok {
		return "", 0, false
	}
	return name, key.Index, true
}

// driverValue reduces a driver's bindings to the channel input.
func (s *Scene) driverValue(d rig.ScriptedDriver) (float64, error) {
	switch d.Type {
	case rig.DriverMin, rig.DriverMax:
		var out float64
		for i, b := range d.Bindings {
			v, _ := s.Resolve(b.Value)
			if i == 0 || (d.Type == rig.DriverMin && v < out) || (d.Type == rig.DriverMax && v > out) {
				out = v
			}
		}
		return out, nil

	default:
		env := make(map[string]float64, len(d.Bindings))
		for _, b := range d.Bindings {
			v, _ := s.Resolve(b.Value)
			env[b.Name] = v
		}
		return EvalExpression(d.Expression, env)
	}
}
