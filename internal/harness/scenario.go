package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario: a rig document to build,
// a sequence of mutation steps to apply, and assertions on the resulting
// channels and scene state.
type Scenario struct {
	// Name uniquely identifies this scenario. Doubles as the golden
	// file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Document is the path to the CUE rig document to compile and
	// build. Relative paths resolve against the scenario file location.
	Document string `yaml:"document"`

	// Steps are applied in order after the document is built.
	Steps []Step `yaml:"steps,omitempty"`

	// Assertions validate the final channels and scene state.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one mutation applied to the scene or the rig. Which fields
// are meaningful depends on the op.
type Step struct {
	// Op names the mutation. See the Op* constants.
	Op string `yaml:"op"`

	// Target names the shape key target the op acts on.
	Target string `yaml:"target,omitempty"`

	// Driver and Variable index into the target's driver and the
	// driver's variable lists.
	Driver   *int `yaml:"driver,omitempty"`
	Variable *int `yaml:"variable,omitempty"`

	// Name addresses a shape key, property, or falloff preset.
	Name string `yaml:"name,omitempty"`

	// Text carries a string argument: new names, modes, metrics.
	Text string `yaml:"text,omitempty"`

	// Object and Bone address a scene transform.
	Object string `yaml:"object,omitempty"`
	Bone   string `yaml:"bone,omitempty"`

	// Value carries a scalar argument, Values a vector one.
	Value  float64   `yaml:"value,omitempty"`
	Values []float64 `yaml:"values,omitempty"`

	// On carries a boolean argument (mute, clamp).
	On bool `yaml:"on,omitempty"`
}

// Step op constants.
const (
	// Scene mutations.
	OpSetShapeKey = "set_shape_key"
	OpSetProperty = "set_property"
	OpSetLocation = "set_location"
	OpSetRotation = "set_rotation"
	OpSetScale    = "set_scale"
	OpEvaluate    = "evaluate"

	// Target mutations.
	OpSetGoal      = "set_goal"
	OpSetRadius    = "set_radius"
	OpSetClamp     = "set_clamp"
	OpSetMode      = "set_mode"
	OpSetMute      = "set_mute"
	OpSetFalloff   = "set_falloff"
	OpRenameTarget = "rename_target"
	OpRemoveTarget = "remove_target"

	// Driver mutations.
	OpSetMetric             = "set_metric"
	OpSetPrecision          = "set_precision"
	OpAddDriver             = "add_driver"
	OpAddDriverFromShapeKey = "add_driver_from_shape_key"
	OpRemoveDriver          = "remove_driver"

	// Variable mutations.
	OpAddVariable     = "add_variable"
	OpRemoveVariable  = "remove_variable"
	OpSetVariablePose = "set_variable_pose"
	OpSetVariableRest = "set_variable_rest"
	OpSetVariableName = "set_variable_name"
	OpCapturePose     = "capture_pose"
	OpCaptureRest     = "capture_rest"
	OpCopyVariables   = "copy_variables"
	OpPasteVariables  = "paste_variables"
)

// Assertion validates one aspect of the final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "expression": a channel's scripted expression matches Expect
	// - "driver_type": a channel's driver type matches Expect
	// - "shape_key": a shape key's value matches Value within Tolerance
	// - "weights": a target's weight array matches Values
	// - "keyframe_anchor": a driver curve's end keyframe x matches Value
	// - "muted": a target channel's mute flag matches On
	Type string `yaml:"type"`

	// Target names the shape key target. Used by every type except
	// shape_key.
	Target string `yaml:"target,omitempty"`

	// Driver indexes the target's driver list. Nil addresses the
	// target's own combination channel.
	Driver *int `yaml:"driver,omitempty"`

	// Name is the shape key name (shape_key).
	Name string `yaml:"name,omitempty"`

	// Expect is the expected string (expression, driver_type).
	Expect string `yaml:"expect,omitempty"`

	// Value is the expected scalar, compared within Tolerance.
	Value     float64 `yaml:"value,omitempty"`
	Tolerance float64 `yaml:"tolerance,omitempty"`

	// Values is the expected weight array (weights).
	Values []float64 `yaml:"values,omitempty"`

	// On is the expected flag (muted).
	On bool `yaml:"on,omitempty"`
}

// Assertion type constants.
const (
	AssertExpression     = "expression"
	AssertDriverType     = "driver_type"
	AssertShapeKey       = "shape_key"
	AssertWeights        = "weights"
	AssertKeyframeAnchor = "keyframe_anchor"
	AssertMuted          = "muted"
)

// LoadScenario reads and parses a scenario YAML file. The document path
// is resolved relative to the scenario file. Returns an error if the
// file is malformed, contains unknown fields (typos), or is missing
// required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Document != "" && !filepath.IsAbs(scenario.Document) {
		scenario.Document = filepath.Join(filepath.Dir(path), scenario.Document)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Document == "" {
		return fmt.Errorf("document is required")
	}
	if _, err := os.Stat(s.Document); os.IsNotExist(err) {
		return fmt.Errorf("document file not found: %s", s.Document)
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if step.Op == "" {
			return fmt.Errorf("steps[%d]: op is required", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertExpression, AssertDriverType:
		if a.Target == "" {
			return fmt.Errorf("assertions[%d]: target is required for %s", index, a.Type)
		}
		if a.Expect == "" {
			return fmt.Errorf("assertions[%d]: expect is required for %s", index, a.Type)
		}
	case AssertShapeKey:
		if a.Name == "" {
			return fmt.Errorf("assertions[%d]: name is required for shape_key", index)
		}
	case AssertWeights:
		if a.Target == "" {
			return fmt.Errorf("assertions[%d]: target is required for weights", index)
		}
		if a.Values == nil {
			return fmt.Errorf("assertions[%d]: values is required for weights", index)
		}
	case AssertKeyframeAnchor:
		if a.Target == "" {
			return fmt.Errorf("assertions[%d]: target is required for keyframe_anchor", index)
		}
	case AssertMuted:
		if a.Target == "" {
			return fmt.Errorf("assertions[%d]: target is required for muted", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
