package scene

import (
	"math"
	"strconv"
	"strings"

	"github.com/poserig/combokeys/internal/quat"
	"github.com/poserig/combokeys/internal/rig"
)

// Resolve implements rig.ValueSource. Anything that does not exist in
// the scene reports ok=false; the engine reads absence as zero.
func (s *Scene) Resolve(d rig.Descriptor) (float64, bool) {
	switch d := d.(type) {
	case rig.ShapeKeyValue:
		return s.ShapeKeyValue(d.ShapeKey)

	case rig.PropertyValue:
		return s.resolveProperty(d)

	case rig.TransformValue:
		loc, rot, scale, ok := s.transform(d.Object, d.Bone, d.Space)
		if !ok {
			return 0, false
		}
		order := d.RotationMode
		if order == rig.RotationAuto {
			order = rig.RotationMode(s.rotationOrder(d.Object))
		}
		return transformChannelValue(d.Channel, order, loc, rot, scale), true

	case rig.RotationDifferenceValue:
		_, ra, _, okA := s.transform(d.A.Object, d.A.Bone, d.A.Space)
		_, rb, _, okB := s.transform(d.B.Object, d.B.Bone, d.B.Space)
		if !okA || !okB {
			return 0, false
		}
		return quat.Difference(ra, rb), true

	case rig.LocationDifferenceValue:
		la, _, _, okA := s.transform(d.A.Object, d.A.Bone, d.A.Space)
		lb, _, _, okB := s.transform(d.B.Object, d.B.Bone, d.B.Space)
		if !okA || !okB {
			return 0, false
		}
		dx, dy, dz := la[0]-lb[0], la[1]-lb[1], la[2]-lb[2]
		return math.Sqrt(dx*dx + dy*dy + dz*dz), true
	}
	return 0, false
}

func (s *Scene) resolveProperty(d rig.PropertyValue) (float64, bool) {
	if name, ok := parseShapeKeyPath(d.Path); ok {
		return s.ShapeKeyValue(name)
	}

	if name, index, ok := parseIndexedProperty(d.Path); ok {
		arr, exists := s.weights[name]
		if !exists || index < 0 || index >= len(arr) {
			return 0, false
		}
		return arr[index], true
	}

	obj := s.objects[d.Object]
	if obj == nil {
		return 0, false
	}
	name := d.Path
	if bracketed, ok := parseBracketedName(d.Path); ok {
		name = bracketed
	}
	v, ok := obj.Properties[name]
	return v, ok
}

// parseShapeKeyPath matches `key_blocks["Name"].value`.
func parseShapeKeyPath(path string) (string, bool) {
	rest, found := strings.CutPrefix(path, "key_blocks[")
	if !found {
		return "", false
	}
	quoted, found := strings.CutSuffix(rest, "].value")
	if !found {
		return "", false
	}
	name, err := strconv.Unquote(quoted)
	if err != nil {
		return "", false
	}
	return name, true
}

// parseIndexedProperty matches `["name"][index]`.
func parseIndexedProperty(path string) (string, int, bool) {
	open := strings.LastIndexByte(path, '[')
	if open <= 0 || !strings.HasSuffix(path, "]") {
		return "", 0, false
	}
	index, err := strconv.Atoi(path[open+1 : len(path)-1])
	if err != nil {
		return "", 0, false
	}
	name, ok := parseBracketedName(path[:open])
	if !ok {
		return "", 0, false
	}
	return name, index, true
}

// parseBracketedName matches `["name"]`.
func parseBracketedName(path string) (string, bool) {
	rest, found := strings.CutPrefix(path, "[")
	if !found {
		return "", false
	}
	quoted, found := strings.CutSuffix(rest, "]")
	if !found {
		return "", false
	}
	name, err := strconv.Unquote(quoted)
	if err != nil {
		return "", false
	}
	return name, true
}

func (s *Scene) rotationOrder(object string) string {
	if obj := s.objects[object]; obj != nil && obj.RotationOrder != "" {
		return obj.RotationOrder
	}
	return "xyz"
}

// transform resolves the posed transform of an object or one of its
// bones. Bones in world space compose with their owning object.
func (s *Scene) transform(object, bone string, space rig.TransformSpace) (Vec3, quat.Quat, Vec3, bool) {
	obj := s.objects[object]
	if obj == nil {
		return Vec3{}, quat.Quat{}, Vec3{}, false
	}
	if bone == "" {
		return obj.Location, obj.Rotation, obj.Scale, true
	}

	b := obj.Bones[bone]
	if b == nil {
		return Vec3{}, quat.Quat{}, Vec3{}, false
	}
	if space == rig.SpaceLocal {
		return b.Location, b.Rotation, b.Scale, true
	}

	scaled := Vec3{
		obj.Scale[0] * b.Location[0],
		obj.Scale[1] * b.Location[1],
		obj.Scale[2] * b.Location[2],
	}
	loc := Vec3(quat.Rotate(obj.Rotation, scaled))
	loc[0] += obj.Location[0]
	loc[1] += obj.Location[1]
	loc[2] += obj.Location[2]

	rot := quat.Mul(obj.Rotation, b.Rotation)
	scale := Vec3{
		obj.Scale[0] * b.Scale[0],
		obj.Scale[1] * b.Scale[1],
		obj.Scale[2] * b.Scale[2],
	}
	return loc, rot, scale, true
}

func transformChannelValue(ch rig.TransformChannel, mode rig.RotationMode, loc Vec3, rot quat.Quat, scale Vec3) float64 {
	switch ch {
	case rig.LocX:
		return loc[0]
	case rig.LocY:
		return loc[1]
	case rig.LocZ:
		return loc[2]
	case rig.ScaleX:
		return scale[0]
	case rig.ScaleY:
		return scale[1]
	case rig.ScaleZ:
		return scale[2]
	}
	return rotationChannelValue(ch, mode, rot)
}

func rotationChannelValue(ch rig.TransformChannel, mode rig.RotationMode, rot quat.Quat) float64 {
	if mode == rig.RotationQuaternion {
		switch ch {
		case rig.RotW:
			return rot[0]
		case rig.RotX:
			return rot[1]
		case rig.RotY:
			return rot[2]
		case rig.RotZ:
			return rot[3]
		}
		return 0
	}

	if axis, ok := swingTwistAxis(mode); ok {
		// W reads the swing aiming the axis; the axis channel reads the
		// twist around it. Other channels have no meaning in this mode.
		if ch == rig.RotW {
			return quat.SwingAngle(rot, axis)
		}
		if axisChannel(axis) == ch {
			return quat.TwistAngle(rot, axis)
		}
		return 0
	}

	x, y, z := quat.ToEuler(rot, string(mode))
	switch ch {
	case rig.RotX:
		return x
	case rig.RotY:
		return y
	case rig.RotZ:
		return z
	}
	return 0
}

func axisChannel(axis int) rig.TransformChannel {
	switch axis {
	case 1:
		return rig.RotY
	case 2:
		return rig.RotZ
	default:
		return rig.RotX
	}
}

func swingTwistAxis(mode rig.RotationMode) (int, bool) {
	switch mode {
	case rig.RotationSwingTwistX:
		return 0, true
	case rig.RotationSwingTwistY:
		return 1, true
	case rig.RotationSwingTwistZ:
		return 2, true
	}
	return 0, false
}
