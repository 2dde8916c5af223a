package rig

import (
	"fmt"

	"github.com/poserig/combokeys/internal/curve"
	"github.com/poserig/combokeys/internal/expr"
	"github.com/poserig/combokeys/internal/metric"
)

// ActivationMode selects how a target combines its driver weights.
type ActivationMode string

const (
	ModeMultiply ActivationMode = "multiply"
	ModeMin      ActivationMode = "min"
	ModeMax      ActivationMode = "max"
	ModeAverage  ActivationMode = "average"
)

// Valid reports whether m is a known activation mode.
func (m ActivationMode) Valid() bool {
	switch m {
	case ModeMultiply, ModeMin, ModeMax, ModeAverage:
		return true
	}
	return false
}

// Axis names one transform axis for swing and twist drivers.
type Axis string

const (
	AxisX Axis = "x"
	AxisY Axis = "y"
	AxisZ Axis = "z"
)

// Target drives one combination shape key. Its drivers each write a
// weight-array element; the target combines those weights, shapes the
// result through its falloff, and writes the shape key's value channel.
type Target struct {
	manager *Manager

	identifier string
	name       string
	mute       bool
	goal       float64
	radius     float64
	clamp      bool
	mode       ActivationMode
	falloff    curve.Falloff

	drivers     []*Driver
	activeIndex int
}

func newTarget(m *Manager, name string) *Target {
	return &Target{
		manager:    m,
		identifier: NewIdentifier(),
		name:       name,
		goal:       1,
		radius:     1,
		clamp:      true,
		mode:       ModeMultiply,
		falloff:    curve.Linear(),
	}
}

// Identifier is the stable key for every host artifact the target owns.
// It survives renames.
func (t *Target) Identifier() string { return t.identifier }

func (t *Target) Name() string         { return t.name }
func (t *Target) Mute() bool           { return t.mute }
func (t *Target) Goal() float64        { return t.goal }
func (t *Target) Radius() float64      { return t.radius }
func (t *Target) Clamp() bool          { return t.clamp }
func (t *Target) Mode() ActivationMode { return t.mode }

func (t *Target) Falloff() curve.Falloff { return t.falloff }
func (t *Target) Drivers() []*Driver     { return t.drivers }

// ActiveDriverIndex is UI state: which driver list-level operations act
// on by default.
func (t *Target) ActiveDriverIndex() int { return t.activeIndex }

func (t *Target) SetActiveDriverIndex(index int) {
	if index >= 0 {
		t.activeIndex = index
	}
}

// ActiveDriver returns the driver at the active index, or nil.
func (t *Target) ActiveDriver() *Driver {
	if t.activeIndex < len(t.drivers) {
		return t.drivers[t.activeIndex]
	}
	return nil
}

// IsValid reports whether the target names a shape key that exists on
// the host. Invalid targets keep all their configuration but synthesize
// nothing.
func (t *Target) IsValid() bool {
	return t.name != "" && t.manager.host.Shapes != nil && t.manager.host.Shapes.HasShapeKey(t.name)
}

// DataPath is the host channel path of the driven shape key value, or
// "" for an unnamed target.
func (t *Target) DataPath() string {
	if t.name == "" {
		return ""
	}
	return shapeKeyDataPath(t.name)
}

func shapeKeyDataPath(name string) string {
	return fmt.Sprintf("key_blocks[%q].value", name)
}

func (t *Target) channelKey() ChannelKey {
	return ChannelKey{Path: t.DataPath(), Index: -1}
}

// SetName repoints the target at another shape key. Synthesized state on
// the previous key's channel is removed so a stale curve cannot keep
// driving it; the new channel is only written if the new name is valid.
func (t *Target) SetName(name string) {
	previous := t.name
	if previous == name {
		return
	}
	t.name = name
	if previous != "" {
		t.manager.host.Channel.Remove(ChannelKey{Path: shapeKeyDataPath(previous), Index: -1})
	}
	t.Update()
}

// SetMute suspends or resumes the synthesized channel without touching
// its configuration.
func (t *Target) SetMute(mute bool) {
	t.mute = mute
	t.DriverUpdate()
}

// SetGoal sets the shape key value reached at full activation.
func (t *Target) SetGoal(goal float64) {
	t.goal = goal
	t.FCurveUpdate()
}

// SetRadius sets how much of the activation range the falloff spans,
// measured back from full activation.
func (t *Target) SetRadius(radius float64) {
	t.radius = radius
	t.FCurveUpdate()
}

// SetClamp selects whether activation outside the falloff range holds
// the end values or extrapolates through them.
func (t *Target) SetClamp(clamp bool) {
	t.clamp = clamp
	t.FCurveUpdate()
}

// SetMode changes how driver weights combine.
func (t *Target) SetMode(mode ActivationMode) {
	t.mode = mode
	t.Update()
}

// SetFalloff replaces the easing curve.
func (t *Target) SetFalloff(f curve.Falloff) {
	t.falloff = f
	t.FCurveUpdate()
}

// FCurveUpdate rewrites the shape key's value channel with the falloff
// remapped onto the activation and goal ranges. No-op while invalid.
func (t *Target) FCurveUpdate() {
	if !t.IsValid() {
		return
	}
	kfs, mode := t.falloff.ToBezier(
		curve.Vec2{1 - t.radius, 1},
		curve.Vec2{0, t.goal},
		!t.clamp,
	)
	t.manager.host.Channel.SetKeyframes(t.channelKey(), kfs, mode)
}

// DriverUpdate rewrites the combination driver on the shape key's value
// channel: one symbol per weight-array element, reduced per the
// activation mode. No-op while invalid.
func (t *Target) DriverUpdate() {
	if !t.IsValid() {
		return
	}

	names := make([]string, len(t.drivers))
	bindings := make([]Binding, len(t.drivers))
	for i := range t.drivers {
		name := fmt.Sprintf("d%d", i)
		names[i] = name
		bindings[i] = Binding{
			Name: name,
			Value: PropertyValue{
				IDType: IDMesh,
				Path:   fmt.Sprintf("[%q][%d]", WeightArrayName(t.identifier), i),
			},
		}
	}

	d := ScriptedDriver{Bindings: bindings}
	switch t.mode {
	case ModeMin:
		d.Type = DriverMin
	case ModeMax:
		d.Type = DriverMax
	case ModeAverage:
		d.Type = DriverScripted
		d.Expression = expr.Mean(names)
	default:
		d.Type = DriverScripted
		d.Expression = expr.Product(names)
	}

	key := t.channelKey()
	t.manager.host.Channel.SetDriver(key, d)
	t.manager.host.Channel.SetMuted(key, t.mute)
}

// Update runs the full synthesis pass, curve first.
func (t *Target) Update() {
	t.FCurveUpdate()
	t.DriverUpdate()
}

// rewriteWeights resizes the weight array to the driver count, zeroing
// every element. Live drivers repopulate it on their next evaluation.
func (t *Target) rewriteWeights() {
	t.manager.host.Weights.SetWeightArray(WeightArrayName(t.identifier), make([]float64, len(t.drivers)))
}

func (t *Target) uniquifyDriverName(base string) string {
	return Uniquify(base, func(candidate string) bool {
		for _, d := range t.drivers {
			if d.name == candidate {
				return true
			}
		}
		return false
	})
}

// addDriver appends an empty driver at the next weight-array element and
// resizes the array. Callers populate variables before synthesizing.
func (t *Target) addDriver(name string) *Driver {
	d := newDriver(t, t.uniquifyDriverName(name), len(t.drivers))
	t.drivers = append(t.drivers, d)
	t.rewriteWeights()
	return d
}

// AddDriver appends a driver with no variables.
func (t *Target) AddDriver(name string) *Driver {
	d := t.addDriver(name)
	d.Update()
	t.Update()
	return d
}

// AddDriverFromShapeKey appends a driver seeded from another shape key:
// one variable reading that key, pose captured from its current value.
func (t *Target) AddDriverFromShapeKey(key string) *Driver {
	d := t.addDriver(key)

	v := newVariable(d)
	v.targets[0].shapeKey = key
	if t.manager.host.Shapes != nil {
		if value, ok := t.manager.host.Shapes.ShapeKeyValue(key); ok {
			v.pose = value
		}
	}
	v.syncTargets()
	d.variables = append(d.variables, v)

	d.Update()
	t.Update()
	return d
}

// AddPropertyDriver appends a driver with one variable reading an
// arbitrary property path, pose captured from its current value.
func (t *Target) AddPropertyDriver(name string, idType IDType, object, path string) *Driver {
	d := t.addDriver(name)
	v := t.transformVariable(d, "var", KindSingleProp, func(r *TargetRef) {
		r.idType = idType
		r.object = object
		r.dataPath = path
	})
	d.variables = append(d.variables, v)
	d.Update()
	t.Update()
	return d
}

// AddLocationDriver appends a Euclidean driver over the selected
// location axes of an object or bone, poses captured live.
func (t *Target) AddLocationDriver(name, object, bone string, space TransformSpace, axes [3]bool) *Driver {
	return t.addAxisDriver(name, object, bone, space, axes, [3]TransformChannel{LocX, LocY, LocZ}, RotationAuto, metric.Euclidean)
}

// AddScaleDriver appends a Euclidean driver over the selected scale axes.
func (t *Target) AddScaleDriver(name, object, bone string, space TransformSpace, axes [3]bool) *Driver {
	return t.addAxisDriver(name, object, bone, space, axes, [3]TransformChannel{ScaleX, ScaleY, ScaleZ}, RotationAuto, metric.Euclidean)
}

// AddRotationDriver appends a rotation driver. RotationQuaternion reads
// all four quaternion channels under the quaternion metric; any other
// mode reads the selected euler channels under the absolute metric.
// Swing and twist rotations have their own constructors.
func (t *Target) AddRotationDriver(name, object, bone string, space TransformSpace, mode RotationMode, axes [3]bool) *Driver {
	if mode == RotationQuaternion {
		d := t.addDriver(name)
		d.kind = metric.Quaternion
		channels := [4]TransformChannel{RotW, RotX, RotY, RotZ}
		for i, symbol := range [4]string{"w", "x", "y", "z"} {
			ch := channels[i]
			v := t.transformVariable(d, symbol, KindTransforms, func(r *TargetRef) {
				r.object = object
				r.bone = bone
				r.space = space
				r.channel = ch
				r.rotation = RotationQuaternion
			})
			d.variables = append(d.variables, v)
		}
		d.Update()
		t.Update()
		return d
	}
	return t.addAxisDriver(name, object, bone, space, axes, [3]TransformChannel{RotX, RotY, RotZ}, mode, metric.Absolute)
}

// AddSwingDriver appends a driver reading the swing angle that aims the
// given axis.
func (t *Target) AddSwingDriver(name, object, bone string, space TransformSpace, axis Axis) *Driver {
	return t.swingTwistDriver(name, object, bone, space, axis, RotW)
}

// AddTwistDriver appends a driver reading the twist angle around the
// given axis.
func (t *Target) AddTwistDriver(name, object, bone string, space TransformSpace, axis Axis) *Driver {
	return t.swingTwistDriver(name, object, bone, space, axis, rotChannel(axis))
}

func (t *Target) swingTwistDriver(name, object, bone string, space TransformSpace, axis Axis, channel TransformChannel) *Driver {
	d := t.addDriver(name)
	v := t.transformVariable(d, string(axis), KindTransforms, func(r *TargetRef) {
		r.object = object
		r.bone = bone
		r.space = space
		r.channel = channel
		r.rotation = RotationMode("swing_twist_" + string(axis))
	})
	d.variables = append(d.variables, v)
	d.Update()
	t.Update()
	return d
}

func rotChannel(axis Axis) TransformChannel {
	switch axis {
	case AxisY:
		return RotY
	case AxisZ:
		return RotZ
	default:
		return RotX
	}
}

func (t *Target) addAxisDriver(name, object, bone string, space TransformSpace, axes [3]bool, channels [3]TransformChannel, mode RotationMode, kind metric.Kind) *Driver {
	d := t.addDriver(name)
	d.kind = kind
	for i, symbol := range [3]string{"x", "y", "z"} {
		if !axes[i] {
			continue
		}
		ch := channels[i]
		v := t.transformVariable(d, symbol, KindTransforms, func(r *TargetRef) {
			r.object = object
			r.bone = bone
			r.space = space
			r.channel = ch
			r.rotation = mode
		})
		d.variables = append(d.variables, v)
	}
	d.Update()
	t.Update()
	return d
}

// transformVariable builds a variable with its single target configured
// and the pose captured from the live value. No synthesis is triggered;
// the caller owns the update.
func (t *Target) transformVariable(d *Driver, name string, kind VariableKind, configure func(*TargetRef)) *Variable {
	v := newVariable(d)
	v.name = name
	v.kind = kind
	configure(v.targets[0])
	v.syncTargets()
	v.pose = v.Value()
	return v
}

// RemoveDriver removes the driver at index, drops its channel, resizes
// the weight array, and re-synthesizes the combination. On a bad index
// nothing changes.
//
// Surviving drivers keep their storage slot: array indices are assigned
// at creation and never compacted, so a driver past the shrunk array
// simply stops contributing until the array grows again.
func (t *Target) RemoveDriver(index int) error {
	if index < 0 || index >= len(t.drivers) {
		return ErrIndexOutOfRange
	}

	removed := t.drivers[index]
	t.manager.host.Channel.Remove(removed.channelKey())
	t.drivers = append(t.drivers[:index], t.drivers[index+1:]...)
	t.rewriteWeights()
	t.Update()
	return nil
}

// MoveDriver reorders the driver list. Ordering is presentational;
// weight-array elements stay where they are.
func (t *Target) MoveDriver(from, to int) error {
	if from < 0 || from >= len(t.drivers) || to < 0 || to >= len(t.drivers) {
		return ErrIndexOutOfRange
	}
	if from == to {
		return nil
	}
	d := t.drivers[from]
	t.drivers = append(t.drivers[:from], t.drivers[from+1:]...)
	t.drivers = append(t.drivers[:to], append([]*Driver{d}, t.drivers[to:]...)...)
	return nil
}

// removeHostState drops every host artifact the target owns.
func (t *Target) removeHostState() {
	for _, d := range t.drivers {
		t.manager.host.Channel.Remove(d.channelKey())
	}
	if t.name != "" {
		t.manager.host.Channel.Remove(t.channelKey())
	}
	t.manager.host.Weights.RemoveWeightArray(WeightArrayName(t.identifier))
}
