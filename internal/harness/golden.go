package harness

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"golang.org/x/text/unicode/norm"

	"github.com/poserig/combokeys/internal/curve"
	"github.com/poserig/combokeys/internal/rig"
)

// StateSnapshot captures the synthesized state of a scenario run in a
// deterministic, diffable form. Weight-array identifiers are random per
// run, so they are remapped to stable per-target aliases ("csk_00",
// "csk_01", ...) before serialization; names pass through NFC so byte
// comparison is stable across differently composed input.
type StateSnapshot struct {
	Scenario     string               `json:"scenario"`
	ShapeKeys    map[string]float64   `json:"shape_keys"`
	WeightArrays map[string][]float64 `json:"weight_arrays"`
	Channels     []ChannelSnapshot    `json:"channels"`
}

// ChannelSnapshot is one synthesized channel in a state snapshot.
type ChannelSnapshot struct {
	Path          string            `json:"path"`
	Index         int               `json:"index"`
	Extrapolation string            `json:"extrapolation"`
	DriverType    string            `json:"driver_type,omitempty"`
	Expression    string            `json:"expression,omitempty"`
	Bindings      []BindingSnapshot `json:"bindings,omitempty"`
	Muted         bool              `json:"muted"`
	Keyframes     []curve.Keyframe  `json:"keyframes"`
}

// BindingSnapshot is one driver binding in a state snapshot.
type BindingSnapshot struct {
	Name  string         `json:"name"`
	Value map[string]any `json:"value"`
}

// Snapshot builds the canonical state snapshot of a result.
func Snapshot(result *Result) *StateSnapshot {
	canon := identifierAliases(result.Manager)

	snap := &StateSnapshot{
		Scenario:     result.Scenario.Name,
		ShapeKeys:    map[string]float64{},
		WeightArrays: map[string][]float64{},
	}

	for _, name := range result.Scene.ShapeKeys() {
		snap.ShapeKeys[norm.NFC.String(name)] = result.Scene.ShapeKey(name)
	}
	for _, name := range result.Scene.WeightArrayNames() {
		snap.WeightArrays[canon(name)] = result.Scene.WeightArray(name)
	}

	for _, key := range result.Scene.ChannelKeys() {
		ch, ok := result.Scene.Channel(key)
		if !ok {
			continue
		}
		cs := ChannelSnapshot{
			Path:          canon(key.Path),
			Index:         key.Index,
			Extrapolation: string(ch.Mode),
			Muted:         ch.Muted,
			Keyframes:     ch.Keyframes,
		}
		if ch.HasDriver {
			cs.DriverType = string(ch.Driver.Type)
			cs.Expression = ch.Driver.Expression
			for _, b := range ch.Driver.Bindings {
				cs.Bindings = append(cs.Bindings, BindingSnapshot{
					Name:  b.Name,
					Value: describeDescriptor(b.Value, canon),
				})
			}
		}
		snap.Channels = append(snap.Channels, cs)
	}
	return snap
}

// identifierAliases maps each target's random weight-array name to a
// stable alias in target-list order. The returned function rewrites any
// occurrence inside a string, which covers both bare array names and
// the paths that quote them.
func identifierAliases(m *rig.Manager) func(string) string {
	replacements := make([]string, 0, len(m.Targets())*2)
	for i, t := range m.Targets() {
		real := rig.WeightArrayName(t.Identifier())
		replacements = append(replacements, real, fmt.Sprintf("csk_%02d", i))
	}
	replacer := strings.NewReplacer(replacements...)
	return func(s string) string {
		return norm.NFC.String(replacer.Replace(s))
	}
}

func describeDescriptor(d rig.Descriptor, canon func(string) string) map[string]any {
	switch v := d.(type) {
	case rig.ShapeKeyValue:
		out := map[string]any{"type": "shape_key", "shape_key": canon(v.ShapeKey)}
		if v.Object != "" {
			out["object"] = canon(v.Object)
		}
		return out
	case rig.PropertyValue:
		out := map[string]any{"type": "property", "id_type": string(v.IDType), "path": canon(v.Path)}
		if v.Object != "" {
			out["object"] = canon(v.Object)
		}
		return out
	case rig.TransformValue:
		out := map[string]any{
			"type":          "transform",
			"object":        canon(v.Object),
			"channel":       string(v.Channel),
			"space":         string(v.Space),
			"rotation_mode": string(v.RotationMode),
		}
		if v.Bone != "" {
			out["bone"] = canon(v.Bone)
		}
		return out
	case rig.RotationDifferenceValue:
		return map[string]any{
			"type": "rotation_diff",
			"a":    describeEndpoint(v.A, canon),
			"b":    describeEndpoint(v.B, canon),
		}
	case rig.LocationDifferenceValue:
		return map[string]any{
			"type": "loc_diff",
			"a":    describeEndpoint(v.A, canon),
			"b":    describeEndpoint(v.B, canon),
		}
	default:
		return map[string]any{"type": fmt.Sprintf("%T", d)}
	}
}

func describeEndpoint(e rig.TransformEndpoint, canon func(string) string) map[string]any {
	out := map[string]any{"object": canon(e.Object), "space": string(e.Space)}
	if e.Bone != "" {
		out["bone"] = canon(e.Bone)
	}
	return out
}

// RunWithGolden executes a scenario and compares its state snapshot
// against a golden file in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Assertion failures inside the scenario fail the test before the
// golden comparison runs.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	for _, failure := range result.Failures {
		t.Errorf("%s: %s", scenario.Name, failure)
	}

	data, err := json.MarshalIndent(Snapshot(result), "", "  ")
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)

	return result, nil
}
