// Package harness runs YAML conformance scenarios against the engine: a
// CUE rig document is compiled and built, mutation steps are replayed
// through the public API, and the resulting channels and scene state are
// checked by assertions and golden snapshots.
package harness

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/poserig/combokeys/internal/compiler"
	"github.com/poserig/combokeys/internal/curve"
	"github.com/poserig/combokeys/internal/metric"
	"github.com/poserig/combokeys/internal/rig"
	"github.com/poserig/combokeys/internal/scene"
)

// Result holds the final state of a scenario run plus any assertion
// failures. Failures are collected, not short-circuited, so one run
// reports everything that is wrong.
type Result struct {
	Scenario *Scenario
	Scene    *scene.Scene
	Manager  *rig.Manager
	Failures []string
}

// Passed reports whether every assertion held.
func (r *Result) Passed() bool { return len(r.Failures) == 0 }

// runner carries the mutable state of one scenario execution.
type runner struct {
	scene   *scene.Scene
	manager *rig.Manager
	buffer  rig.VariableBuffer
}

// Run builds the scenario's document, applies its steps, and evaluates
// its assertions. An error means the run itself could not proceed;
// assertion failures land in the result instead.
func Run(scenario *Scenario) (*Result, error) {
	doc, err := loadDocument(scenario.Document)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	sc, m := compiler.Build(doc)
	r := &runner{scene: sc, manager: m}

	for i, step := range scenario.Steps {
		if err := r.apply(step); err != nil {
			return nil, fmt.Errorf("scenario %s: steps[%d] (%s): %w", scenario.Name, i, step.Op, err)
		}
	}

	result := &Result{Scenario: scenario, Scene: sc, Manager: m}
	for i, assertion := range scenario.Assertions {
		if failure := r.check(assertion); failure != "" {
			result.Failures = append(result.Failures, fmt.Sprintf("assertions[%d]: %s", i, failure))
		}
	}
	return result, nil
}

// loadDocument compiles and validates the CUE document at path. The
// document struct is expected under the top-level "document" field.
func loadDocument(path string) (*compiler.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile document: %w", err)
	}

	doc, err := compiler.CompileDocument(v.LookupPath(cue.ParsePath("document")))
	if err != nil {
		return nil, fmt.Errorf("compile document: %w", err)
	}
	return doc, nil
}

func (r *runner) apply(step Step) error {
	switch step.Op {
	case OpSetShapeKey:
		r.scene.SetShapeKey(step.Name, step.Value)
		return nil
	case OpSetProperty:
		obj := r.scene.Object(step.Object)
		if obj == nil {
			return fmt.Errorf("unknown object %q", step.Object)
		}
		obj.Properties[step.Name] = step.Value
		return nil
	case OpSetLocation, OpSetRotation, OpSetScale:
		return r.setTransform(step)
	case OpEvaluate:
		return r.scene.Evaluate()

	case OpSetGoal:
		t, err := r.target(step.Target)
		if err != nil {
			return err
		}
		t.SetGoal(step.Value)
		return nil
	case OpSetRadius:
		t, err := r.target(step.Target)
		if err != nil {
			return err
		}
		t.SetRadius(step.Value)
		return nil
	case OpSetClamp:
		t, err := r.target(step.Target)
		if err != nil {
			return err
		}
		t.SetClamp(step.On)
		return nil
	case OpSetMode:
		t, err := r.target(step.Target)
		if err != nil {
			return err
		}
		mode := rig.ActivationMode(step.Text)
		if !mode.Valid() {
			return fmt.Errorf("unknown mode %q", step.Text)
		}
		t.SetMode(mode)
		return nil
	case OpSetMute:
		t, err := r.target(step.Target)
		if err != nil {
			return err
		}
		t.SetMute(step.On)
		return nil
	case OpSetFalloff:
		t, err := r.target(step.Target)
		if err != nil {
			return err
		}
		switch step.Text {
		case "smooth":
			t.SetFalloff(curve.Smooth())
		case "linear":
			t.SetFalloff(curve.Linear())
		default:
			return fmt.Errorf("unknown falloff %q", step.Text)
		}
		return nil
	case OpRenameTarget:
		t, err := r.target(step.Target)
		if err != nil {
			return err
		}
		t.SetName(step.Text)
		return nil
	case OpRemoveTarget:
		index := r.manager.Find(step.Target)
		if index < 0 {
			return fmt.Errorf("unknown target %q", step.Target)
		}
		return r.manager.RemoveTarget(index)

	case OpSetMetric:
		d, err := r.driver(step.Target, step.Driver)
		if err != nil {
			return err
		}
		kind := metric.Kind(step.Text)
		if !kind.Valid() {
			return fmt.Errorf("unknown metric %q", step.Text)
		}
		d.SetMetric(kind)
		return nil
	case OpSetPrecision:
		d, err := r.driver(step.Target, step.Driver)
		if err != nil {
			return err
		}
		d.SetPrecision(int(step.Value))
		return nil
	case OpAddDriver:
		t, err := r.target(step.Target)
		if err != nil {
			return err
		}
		t.AddDriver(step.Text)
		return nil
	case OpAddDriverFromShapeKey:
		t, err := r.target(step.Target)
		if err != nil {
			return err
		}
		t.AddDriverFromShapeKey(step.Text)
		return nil
	case OpRemoveDriver:
		t, err := r.target(step.Target)
		if err != nil {
			return err
		}
		if step.Driver == nil {
			return fmt.Errorf("driver index is required")
		}
		return t.RemoveDriver(*step.Driver)

	case OpAddVariable:
		d, err := r.driver(step.Target, step.Driver)
		if err != nil {
			return err
		}
		d.AddVariable()
		return nil
	case OpRemoveVariable:
		d, err := r.driver(step.Target, step.Driver)
		if err != nil {
			return err
		}
		if step.Variable == nil {
			return fmt.Errorf("variable index is required")
		}
		return d.RemoveVariable(*step.Variable)
	case OpSetVariablePose:
		v, err := r.variable(step.Target, step.Driver, step.Variable)
		if err != nil {
			return err
		}
		v.SetPose(step.Value)
		return nil
	case OpSetVariableRest:
		v, err := r.variable(step.Target, step.Driver, step.Variable)
		if err != nil {
			return err
		}
		v.SetRest(step.Value)
		return nil
	case OpSetVariableName:
		v, err := r.variable(step.Target, step.Driver, step.Variable)
		if err != nil {
			return err
		}
		v.SetName(step.Text)
		return nil
	case OpCapturePose:
		v, err := r.variable(step.Target, step.Driver, step.Variable)
		if err != nil {
			return err
		}
		v.CapturePose()
		return nil
	case OpCaptureRest:
		v, err := r.variable(step.Target, step.Driver, step.Variable)
		if err != nil {
			return err
		}
		v.CaptureRest()
		return nil
	case OpCopyVariables:
		d, err := r.driver(step.Target, step.Driver)
		if err != nil {
			return err
		}
		r.buffer.Copy(d)
		return nil
	case OpPasteVariables:
		d, err := r.driver(step.Target, step.Driver)
		if err != nil {
			return err
		}
		return r.buffer.Paste(d)

	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
}

func (r *runner) setTransform(step Step) error {
	obj := r.scene.Object(step.Object)
	if obj == nil {
		return fmt.Errorf("unknown object %q", step.Object)
	}

	loc := &obj.Location
	rot := &obj.Rotation
	scl := &obj.Scale
	if step.Bone != "" {
		bone := obj.Bones[step.Bone]
		if bone == nil {
			return fmt.Errorf("unknown bone %q on object %q", step.Bone, step.Object)
		}
		loc, rot, scl = &bone.Location, &bone.Rotation, &bone.Scale
	}

	switch step.Op {
	case OpSetRotation:
		if len(step.Values) != 4 {
			return fmt.Errorf("%s needs 4 values, got %d", step.Op, len(step.Values))
		}
		copy(rot[:], step.Values)
		*rot = rot.Normalize()
	default:
		if len(step.Values) != 3 {
			return fmt.Errorf("%s needs 3 values, got %d", step.Op, len(step.Values))
		}
		if step.Op == OpSetLocation {
			copy(loc[:], step.Values)
		} else {
			copy(scl[:], step.Values)
		}
	}
	return nil
}

func (r *runner) target(name string) (*rig.Target, error) {
	index := r.manager.Find(name)
	if index < 0 {
		return nil, fmt.Errorf("unknown target %q", name)
	}
	return r.manager.Targets()[index], nil
}

func (r *runner) driver(targetName string, index *int) (*rig.Driver, error) {
	t, err := r.target(targetName)
	if err != nil {
		return nil, err
	}
	i := 0
	if index != nil {
		i = *index
	}
	drivers := t.Drivers()
	if i < 0 || i >= len(drivers) {
		return nil, fmt.Errorf("target %q has no driver %d", targetName, i)
	}
	return drivers[i], nil
}

func (r *runner) variable(targetName string, driverIndex, variableIndex *int) (*rig.Variable, error) {
	d, err := r.driver(targetName, driverIndex)
	if err != nil {
		return nil, err
	}
	i := 0
	if variableIndex != nil {
		i = *variableIndex
	}
	variables := d.Variables()
	if i < 0 || i >= len(variables) {
		return nil, fmt.Errorf("driver has no variable %d", i)
	}
	return variables[i], nil
}
