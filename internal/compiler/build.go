package compiler

import (
	"github.com/poserig/combokeys/internal/curve"
	"github.com/poserig/combokeys/internal/metric"
	"github.com/poserig/combokeys/internal/quat"
	"github.com/poserig/combokeys/internal/rig"
	"github.com/poserig/combokeys/internal/scene"
)

// Build realizes a document: the scene first, then a manager whose
// targets are created through the same API interactive edits use, so
// the synthesized channels come out identical.
func Build(doc *Document) (*scene.Scene, *rig.Manager) {
	sc := BuildScene(doc.Scene)
	return sc, BuildManager(doc, sc.Host())
}

// BuildScene constructs the scene state a document starts from.
func BuildScene(spec SceneSpec) *scene.Scene {
	sc := scene.New()
	for name, value := range spec.ShapeKeys {
		sc.SetShapeKey(name, value)
	}
	for name, objSpec := range spec.Objects {
		obj := sc.AddObject(name)
		if objSpec.Location != nil {
			obj.Location = scene.Vec3(*objSpec.Location)
		}
		if objSpec.Rotation != nil {
			obj.Rotation = quat.Quat(*objSpec.Rotation).Normalize()
		}
		if objSpec.RotationOrder != "" {
			obj.RotationOrder = objSpec.RotationOrder
		}
		if objSpec.Scale != nil {
			obj.Scale = scene.Vec3(*objSpec.Scale)
		}
		for prop, value := range objSpec.Properties {
			obj.Properties[prop] = value
		}
		for boneName, boneSpec := range objSpec.Bones {
			bone := obj.AddBone(boneName)
			if boneSpec.Location != nil {
				bone.Location = scene.Vec3(*boneSpec.Location)
			}
			if boneSpec.Rotation != nil {
				bone.Rotation = quat.Quat(*boneSpec.Rotation).Normalize()
			}
			if boneSpec.Scale != nil {
				bone.Scale = scene.Vec3(*boneSpec.Scale)
			}
		}
	}
	return sc
}

// BuildManager constructs the manager over an already-built host.
func BuildManager(doc *Document, host rig.Host) *rig.Manager {
	m := rig.New(host)
	for _, targetSpec := range doc.Targets {
		buildTarget(m, targetSpec)
	}
	return m
}

func buildTarget(m *rig.Manager, spec TargetSpec) {
	t := m.AddTarget(spec.Name)
	if spec.Mode != "" {
		t.SetMode(rig.ActivationMode(spec.Mode))
	}
	if spec.Goal != nil {
		t.SetGoal(*spec.Goal)
	}
	if spec.Radius != nil {
		t.SetRadius(*spec.Radius)
	}
	if spec.Clamp != nil {
		t.SetClamp(*spec.Clamp)
	}
	if f, ok := buildFalloff(spec); ok {
		t.SetFalloff(f)
	}
	for _, driverSpec := range spec.Drivers {
		buildDriver(t, driverSpec)
	}
	if spec.Mute {
		t.SetMute(true)
	}
}

func buildFalloff(spec TargetSpec) (curve.Falloff, bool) {
	if len(spec.FalloffPoints) > 0 {
		points := make([]curve.Point, len(spec.FalloffPoints))
		for i, p := range spec.FalloffPoints {
			points[i] = curve.Point{
				Co:          curve.Vec2(p.Co),
				HandleLeft:  curve.Vec2(p.HandleLeft),
				HandleRight: curve.Vec2(p.HandleRight),
				HandleType:  curve.HandleFree,
			}
		}
		return curve.Falloff{Points: points}, true
	}
	if spec.Falloff == "smooth" {
		return curve.Smooth(), true
	}
	return curve.Falloff{}, false
}

func buildDriver(t *rig.Target, spec DriverSpec) {
	name := spec.Name
	if name == "" {
		name = t.Name()
	}
	d := t.AddDriver(name)
	if spec.Metric != "" {
		d.SetMetric(metric.Kind(spec.Metric))
	}
	if spec.Precision != nil {
		d.SetPrecision(*spec.Precision)
	}
	for _, variableSpec := range spec.Variables {
		buildVariable(d, variableSpec)
	}
}

func buildVariable(d *rig.Driver, spec VariableSpec) {
	v := d.AddVariable()
	if spec.Name != "" {
		v.SetName(spec.Name)
	}
	if spec.Kind != "" {
		v.SetKind(rig.VariableKind(spec.Kind))
	}
	v.SetRest(spec.Rest)

	refs := v.Targets()
	for i, refSpec := range spec.Targets {
		if i >= len(refs) {
			break
		}
		buildTargetRef(refs[i], refSpec)
	}

	// An explicit pose wins; otherwise the live scene value at build
	// time is the recorded pose.
	if spec.Pose != nil {
		v.SetPose(*spec.Pose)
	} else {
		v.CapturePose()
	}
}

func buildTargetRef(r *rig.TargetRef, spec TargetRefSpec) {
	if spec.IDType != "" {
		r.SetIDType(rig.IDType(spec.IDType))
	}
	if spec.Object != "" {
		r.SetObject(spec.Object)
	}
	if spec.Bone != "" {
		r.SetBone(spec.Bone)
	}
	if spec.DataPath != "" {
		r.SetDataPath(spec.DataPath)
	}
	if spec.ShapeKey != "" {
		r.SetShapeKey(spec.ShapeKey)
	}
	if spec.Channel != "" {
		r.SetTransformChannel(rig.TransformChannel(spec.Channel))
	}
	if spec.Space != "" {
		r.SetTransformSpace(rig.TransformSpace(spec.Space))
	}
	if spec.RotationMode != "" {
		r.SetRotationMode(rig.RotationMode(spec.RotationMode))
	}
}
