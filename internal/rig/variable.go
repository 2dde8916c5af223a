package rig

import "fmt"

// VariableKind selects what a driver variable reads from the host.
type VariableKind string

const (
	KindShapeKey     VariableKind = "shape_key"
	KindSingleProp   VariableKind = "single_prop"
	KindTransforms   VariableKind = "transforms"
	KindRotationDiff VariableKind = "rotation_diff"
	KindLocationDiff VariableKind = "loc_diff"
)

// Valid reports whether k is a known variable kind.
func (k VariableKind) Valid() bool {
	switch k {
	case KindShapeKey, KindSingleProp, KindTransforms, KindRotationDiff, KindLocationDiff:
		return true
	}
	return false
}

// TargetCount is the number of reference targets the kind requires:
// two for the difference kinds, one for everything else.
func (k VariableKind) TargetCount() int {
	if k == KindRotationDiff || k == KindLocationDiff {
		return 2
	}
	return 1
}

// TargetRef is one reference target of a variable: which host datum the
// variable reads. Which fields are meaningful depends on the variable
// kind. Every mutation re-synthesizes the owning driver.
type TargetRef struct {
	variable *Variable

	idType   IDType
	object   string
	bone     string
	dataPath string
	shapeKey string
	channel  TransformChannel
	space    TransformSpace
	rotation RotationMode
}

func newTargetRef(v *Variable) *TargetRef {
	return &TargetRef{
		variable: v,
		idType:   IDObject,
		channel:  LocX,
		space:    SpaceWorld,
		rotation: RotationAuto,
	}
}

func (r *TargetRef) IDType() IDType                     { return r.idType }
func (r *TargetRef) Object() string                     { return r.object }
func (r *TargetRef) Bone() string                       { return r.bone }
func (r *TargetRef) DataPath() string                   { return r.dataPath }
func (r *TargetRef) ShapeKey() string                   { return r.shapeKey }
func (r *TargetRef) TransformChannel() TransformChannel { return r.channel }
func (r *TargetRef) TransformSpace() TransformSpace     { return r.space }
func (r *TargetRef) RotationMode() RotationMode         { return r.rotation }

func (r *TargetRef) SetIDType(v IDType) { r.idType = v; r.variable.update() }
func (r *TargetRef) SetObject(v string) { r.object = v; r.variable.update() }
func (r *TargetRef) SetBone(v string)   { r.bone = v; r.variable.update() }

func (r *TargetRef) SetDataPath(v string) { r.dataPath = v; r.variable.update() }
func (r *TargetRef) SetShapeKey(v string) { r.shapeKey = v; r.variable.update() }

func (r *TargetRef) SetTransformChannel(v TransformChannel) { r.channel = v; r.variable.update() }
func (r *TargetRef) SetTransformSpace(v TransformSpace)     { r.space = v; r.variable.update() }
func (r *TargetRef) SetRotationMode(v RotationMode)         { r.rotation = v; r.variable.update() }

// Variable is one input channel of a driver, pairing a live host value
// with its recorded rest and pose samples.
type Variable struct {
	driver *Driver

	name    string
	kind    VariableKind
	rest    float64
	pose    float64
	targets []*TargetRef
}

func newVariable(d *Driver) *Variable {
	v := &Variable{
		driver: d,
		name:   "var",
		kind:   KindShapeKey,
		rest:   0,
		pose:   1,
	}
	v.syncTargets()
	return v
}

func (v *Variable) Name() string       { return v.name }
func (v *Variable) Kind() VariableKind { return v.kind }
func (v *Variable) Rest() float64      { return v.rest }
func (v *Variable) Pose() float64      { return v.pose }

// Targets returns the reference targets. Length is fixed by the kind.
func (v *Variable) Targets() []*TargetRef { return v.targets }

// SetName renames the variable's expression symbol.
func (v *Variable) SetName(name string) {
	v.name = name
	v.update()
}

// SetKind changes what the variable reads, resizing its targets to the
// kind's arity.
func (v *Variable) SetKind(kind VariableKind) {
	v.kind = kind
	v.update()
}

func (v *Variable) SetRest(value float64) {
	v.rest = value
	v.update()
}

func (v *Variable) SetPose(value float64) {
	v.pose = value
	v.update()
}

// CaptureRest samples the live value into the rest slot.
func (v *Variable) CaptureRest() { v.SetRest(v.Value()) }

// CapturePose samples the live value into the pose slot.
func (v *Variable) CapturePose() { v.SetPose(v.Value()) }

// Value resolves the variable's current live value. Anything the host
// cannot resolve reads as zero.
func (v *Variable) Value() float64 {
	host := v.driver.target.manager.host
	if host.Values == nil {
		return 0
	}
	value, ok := host.Values.Resolve(v.Descriptor())
	if !ok {
		return 0
	}
	return value
}

// Descriptor builds the value-source descriptor the host binds the
// variable's symbol to.
func (v *Variable) Descriptor() Descriptor {
	t := v.targets[0]
	switch v.kind {
	case KindSingleProp:
		return PropertyValue{IDType: t.idType, Object: t.object, Path: t.dataPath}
	case KindTransforms:
		return TransformValue{
			Object:       t.object,
			Bone:         t.bone,
			Channel:      t.channel,
			Space:        t.space,
			RotationMode: t.rotation,
		}
	case KindRotationDiff:
		return RotationDifferenceValue{A: t.endpoint(), B: v.targets[1].endpoint()}
	case KindLocationDiff:
		return LocationDifferenceValue{A: t.endpoint(), B: v.targets[1].endpoint()}
	default: // KindShapeKey
		return ShapeKeyValue{Object: t.object, ShapeKey: t.shapeKey}
	}
}

func (r *TargetRef) endpoint() TransformEndpoint {
	return TransformEndpoint{Object: r.object, Bone: r.bone, Space: r.space}
}

// update reconciles derived target state with the kind and re-synthesizes
// the owning driver.
func (v *Variable) update() {
	v.syncTargets()
	v.driver.Update()
}

func (v *Variable) syncTargets() {
	want := v.kind.TargetCount()
	for len(v.targets) < want {
		v.targets = append(v.targets, newTargetRef(v))
	}
	v.targets = v.targets[:want]

	// A shape-key reference always reads through the key datablock; the
	// data path is derived, never user-set.
	if v.kind == KindShapeKey {
		t := v.targets[0]
		t.idType = IDKey
		t.dataPath = fmt.Sprintf("key_blocks[%q].value", t.shapeKey)
	}
}
