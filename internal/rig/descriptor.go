package rig

// IDType narrows which datablock a property path resolves against.
type IDType string

const (
	IDObject   IDType = "object"
	IDMesh     IDType = "mesh"
	IDArmature IDType = "armature"
	IDKey      IDType = "key"
)

// TransformChannel selects one scalar out of an object or bone transform.
type TransformChannel string

const (
	LocX   TransformChannel = "loc_x"
	LocY   TransformChannel = "loc_y"
	LocZ   TransformChannel = "loc_z"
	RotW   TransformChannel = "rot_w"
	RotX   TransformChannel = "rot_x"
	RotY   TransformChannel = "rot_y"
	RotZ   TransformChannel = "rot_z"
	ScaleX TransformChannel = "scale_x"
	ScaleY TransformChannel = "scale_y"
	ScaleZ TransformChannel = "scale_z"
)

// TransformSpace selects the evaluation space for transform channels.
type TransformSpace string

const (
	SpaceWorld TransformSpace = "world"
	SpaceLocal TransformSpace = "local"
)

// RotationMode selects how rotation channels are decomposed.
type RotationMode string

const (
	RotationAuto       RotationMode = "auto"
	RotationXYZ        RotationMode = "xyz"
	RotationXZY        RotationMode = "xzy"
	RotationYXZ        RotationMode = "yxz"
	RotationYZX        RotationMode = "yzx"
	RotationZXY        RotationMode = "zxy"
	RotationZYX        RotationMode = "zyx"
	RotationQuaternion RotationMode = "quaternion"

	// Swing-twist modes decompose the rotation around one axis. Reading a
	// rotation W channel under one of these yields the swing angle; reading
	// the matching axis channel yields the twist angle.
	RotationSwingTwistX RotationMode = "swing_twist_x"
	RotationSwingTwistY RotationMode = "swing_twist_y"
	RotationSwingTwistZ RotationMode = "swing_twist_z"
)

// Descriptor is the sealed union of variable-value sources handed to a
// ValueSource. A missing object, bone, shape key, or path resolves to
// absence, never to an error.
type Descriptor interface {
	descriptor()
}

// ShapeKeyValue reads the value of a named shape key on an object's mesh.
type ShapeKeyValue struct {
	Object   string
	ShapeKey string
}

func (ShapeKeyValue) descriptor() {}

// PropertyValue reads an arbitrary scalar property path on a datablock.
type PropertyValue struct {
	IDType IDType
	Object string
	Path   string
}

func (PropertyValue) descriptor() {}

// TransformValue reads one transform channel of an object or bone.
type TransformValue struct {
	Object       string
	Bone         string
	Channel      TransformChannel
	Space        TransformSpace
	RotationMode RotationMode
}

func (TransformValue) descriptor() {}

// TransformEndpoint names one side of a two-target difference.
type TransformEndpoint struct {
	Object string
	Bone   string
	Space  TransformSpace
}

// RotationDifferenceValue reads the angle between two transforms.
type RotationDifferenceValue struct {
	A TransformEndpoint
	B TransformEndpoint
}

func (RotationDifferenceValue) descriptor() {}

// LocationDifferenceValue reads the distance between two transforms.
type LocationDifferenceValue struct {
	A TransformEndpoint
	B TransformEndpoint
}

func (LocationDifferenceValue) descriptor() {}
