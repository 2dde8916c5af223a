package scene

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poserig/combokeys/internal/expr"
	"github.com/poserig/combokeys/internal/metric"
	"github.com/poserig/combokeys/internal/quat"
	"github.com/poserig/combokeys/internal/rig"
)

func TestEvalExpression(t *testing.T) {
	env := map[string]float64{"var0": 0.5, "var1": 2, "z": -3}

	tests := []struct {
		expr string
		want float64
	}{
		{"1.0", 1},
		{"fabs(var0-1.0)", 0.5},
		{"sqrt(pow(var1-3.0,2.0)+pow(var0-0.5,2.0))", 1},
		{"(fabs(var0-1.0)+fabs(var1-0.5))/2.0", 1},
		{"pow(z--1.0,2.0)", 4},
		{"clamp(var1,-1.0,1.0)", 1},
		{"acos(clamp(var1,-1.0,1.0))/pi", 0},
		{"var0*var1", 1},
		{"-var0+1.0", 0.5},
	}
	for _, tc := range tests {
		got, err := EvalExpression(tc.expr, env)
		require.NoError(t, err, tc.expr)
		assert.InDelta(t, tc.want, got, 1e-9, tc.expr)
	}
}

func TestEvalExpression_Errors(t *testing.T) {
	cases := []string{
		"nope",
		"1.0/0.0",
		"fabs(1.0,2.0)",
		"min(1.0,2.0)",
		"1.0+",
		"1.0 2.0",
		"sqrt(-1.0)",
	}
	for _, src := range cases {
		_, err := EvalExpression(src, nil)
		assert.Error(t, err, src)
	}
}

// The scripted expression and the numeric metric must agree when every
// symbol reads its recorded pose value.
func TestExpressionMatchesMetricAtPose(t *testing.T) {
	poses := []float64{0.25, -1.5, 0.875}
	precision := 6

	for _, kind := range []metric.Kind{metric.Absolute, metric.Euclidean, metric.Quaternion} {
		symbols := make([]expr.Symbol, len(poses))
		pairs := make([]metric.Pair, len(poses))
		env := map[string]float64{}
		for i, pose := range poses {
			name := fmt.Sprintf("var%d", i)
			rounded := metric.Round(pose, precision)
			symbols[i] = expr.Symbol{Name: name, Literal: metric.Literal(pose, precision)}
			pairs[i] = metric.Pair{Rest: rounded, Pose: rounded}
			env[name] = rounded
		}

		got, err := EvalExpression(expr.Distance(kind, symbols), env)
		require.NoError(t, err, kind)

		// Every live value at its pose literal: distance from pose is the
		// metric of identical pairs.
		assert.InDelta(t, metric.Distance(pairs, kind), got, 1e-9, kind)
	}
}

func TestExprSymbols(t *testing.T) {
	assert.Equal(t, []string{"var0", "var1"},
		exprSymbols("sqrt(pow(var0-3.0,2.0)+pow(var1-4.0,2.0))"))
	assert.Equal(t, []string{"w", "x", "y", "z"},
		exprSymbols("acos((2.0*pow(clamp(w*1.0+x*0.0+y*0.0+z*0.0,-1.0,1.0),2.0))-1.0)/pi"))
	assert.Empty(t, exprSymbols("1.0"))
}

func TestResolve_ShapeKeyAndProperties(t *testing.T) {
	s := New()
	s.SetShapeKey("JawOpen", 0.4)
	obj := s.AddObject("Cube")
	obj.Properties["influence"] = 0.9
	s.SetWeightArray("csk_abc", []float64{0.1, 0.2})

	v, ok := s.Resolve(rig.ShapeKeyValue{ShapeKey: "JawOpen"})
	require.True(t, ok)
	assert.Equal(t, 0.4, v)

	_, ok = s.Resolve(rig.ShapeKeyValue{ShapeKey: "Missing"})
	assert.False(t, ok)

	v, ok = s.Resolve(rig.PropertyValue{IDType: rig.IDKey, Path: `key_blocks["JawOpen"].value`})
	require.True(t, ok)
	assert.Equal(t, 0.4, v)

	v, ok = s.Resolve(rig.PropertyValue{IDType: rig.IDMesh, Path: `["csk_abc"][1]`})
	require.True(t, ok)
	assert.Equal(t, 0.2, v)

	_, ok = s.Resolve(rig.PropertyValue{IDType: rig.IDMesh, Path: `["csk_abc"][9]`})
	assert.False(t, ok)

	v, ok = s.Resolve(rig.PropertyValue{IDType: rig.IDObject, Object: "Cube", Path: `["influence"]`})
	require.True(t, ok)
	assert.Equal(t, 0.9, v)

	_, ok = s.Resolve(rig.PropertyValue{IDType: rig.IDObject, Object: "Gone", Path: `["influence"]`})
	assert.False(t, ok)
}

func TestResolve_TransformChannels(t *testing.T) {
	s := New()
	obj := s.AddObject("Cube")
	obj.Location = Vec3{1, 2, 3}
	obj.Scale = Vec3{2, 2, 2}
	obj.Rotation = quat.AxisAngle(2, 0.5)

	read := func(ch rig.TransformChannel, mode rig.RotationMode) float64 {
		v, ok := s.Resolve(rig.TransformValue{Object: "Cube", Channel: ch, Space: rig.SpaceWorld, RotationMode: mode})
		require.True(t, ok)
		return v
	}

	assert.Equal(t, 2.0, read(rig.LocY, rig.RotationAuto))
	assert.Equal(t, 2.0, read(rig.ScaleX, rig.RotationAuto))

	// Euler read in the object's own order.
	assert.InDelta(t, 0.5, read(rig.RotZ, rig.RotationAuto), 1e-9)
	assert.InDelta(t, 0, read(rig.RotX, rig.RotationXYZ), 1e-9)

	// Quaternion components.
	assert.InDelta(t, math.Cos(0.25), read(rig.RotW, rig.RotationQuaternion), 1e-9)
	assert.InDelta(t, math.Sin(0.25), read(rig.RotZ, rig.RotationQuaternion), 1e-9)

	// Swing-twist around z: a pure z rotation is all twist.
	assert.InDelta(t, 0.5, read(rig.RotZ, rig.RotationSwingTwistZ), 1e-9)
	assert.InDelta(t, 0, read(rig.RotW, rig.RotationSwingTwistZ), 1e-9)

	_, ok := s.Resolve(rig.TransformValue{Object: "Gone", Channel: rig.LocX})
	assert.False(t, ok)
}

func TestResolve_BoneSpaces(t *testing.T) {
	s := New()
	arm := s.AddObject("Armature")
	arm.Location = Vec3{10, 0, 0}
	bone := arm.AddBone("head")
	bone.Location = Vec3{0, 1, 0}

	local, ok := s.Resolve(rig.TransformValue{Object: "Armature", Bone: "head", Channel: rig.LocX, Space: rig.SpaceLocal})
	require.True(t, ok)
	assert.Equal(t, 0.0, local)

	world, ok := s.Resolve(rig.TransformValue{Object: "Armature", Bone: "head", Channel: rig.LocX, Space: rig.SpaceWorld})
	require.True(t, ok)
	assert.Equal(t, 10.0, world)

	_, ok = s.Resolve(rig.TransformValue{Object: "Armature", Bone: "tail", Channel: rig.LocX})
	assert.False(t, ok)
}

func TestResolve_Differences(t *testing.T) {
	s := New()
	s.AddObject("A")
	b := s.AddObject("B")
	b.Location = Vec3{3, 4, 0}
	b.Rotation = quat.AxisAngle(0, 0.6)

	ep := func(name string) rig.TransformEndpoint {
		return rig.TransformEndpoint{Object: name, Space: rig.SpaceWorld}
	}

	dist, ok := s.Resolve(rig.LocationDifferenceValue{A: ep("A"), B: ep("B")})
	require.True(t, ok)
	assert.InDelta(t, 5, dist, 1e-9)

	angle, ok := s.Resolve(rig.RotationDifferenceValue{A: ep("A"), B: ep("B")})
	require.True(t, ok)
	assert.InDelta(t, 0.6, angle, 1e-9)

	_, ok = s.Resolve(rig.LocationDifferenceValue{A: ep("A"), B: ep("Gone")})
	assert.False(t, ok)
}

// Combination reductions over live weights 0.2, 0.4, 0.6.
func TestEvaluate_CombinationReductions(t *testing.T) {
	build := func(mode rig.DriverType, expression string) *Scene {
		s := New()
		s.SetShapeKey("Smile", 0)
		s.SetWeightArray("csk_t", []float64{0.2, 0.4, 0.6})

		bindings := make([]rig.Binding, 3)
		for i := range bindings {
			bindings[i] = rig.Binding{
				Name:  fmt.Sprintf("d%d", i),
				Value: rig.PropertyValue{IDType: rig.IDMesh, Path: fmt.Sprintf(`["csk_t"][%d]`, i)},
			}
		}
		s.SetDriver(rig.ChannelKey{Path: `key_blocks["Smile"].value`, Index: -1}, rig.ScriptedDriver{
			Type:       mode,
			Expression: expression,
			Bindings:   bindings,
		})
		return s
	}

	s := build(rig.DriverScripted, "(d0+d1+d2)/3.0")
	require.NoError(t, s.Evaluate())
	assert.InDelta(t, 0.4, s.ShapeKey("Smile"), 1e-9)

	s = build(rig.DriverScripted, "d0*d1*d2")
	require.NoError(t, s.Evaluate())
	assert.InDelta(t, 0.048, s.ShapeKey("Smile"), 1e-9)

	s = build(rig.DriverMax, "")
	require.NoError(t, s.Evaluate())
	assert.InDelta(t, 0.6, s.ShapeKey("Smile"), 1e-9)

	s = build(rig.DriverMin, "")
	require.NoError(t, s.Evaluate())
	assert.InDelta(t, 0.2, s.ShapeKey("Smile"), 1e-9)
}

// Full pipeline: manager synthesis into the scene, then evaluation back
// out of it.
func TestEvaluate_EndToEnd(t *testing.T) {
	s := New()
	s.SetShapeKey("Smile", 0)
	s.SetShapeKey("JawOpen", 0.5)

	m := rig.New(s.Host())
	tgt := m.AddTarget("Smile")
	tgt.AddDriverFromShapeKey("JawOpen")

	// At the recorded pose the target reaches its goal.
	require.NoError(t, s.Evaluate())
	weights := s.WeightArray(rig.WeightArrayName(tgt.Identifier()))
	require.Len(t, weights, 1)
	assert.InDelta(t, 1.0, weights[0], 1e-6)
	assert.InDelta(t, 1.0, s.ShapeKey("Smile"), 1e-6)

	// Away from the pose the activation collapses to zero.
	s.SetShapeKey("JawOpen", 0)
	require.NoError(t, s.Evaluate())
	assert.InDelta(t, 0.0, s.WeightArray(rig.WeightArrayName(tgt.Identifier()))[0], 1e-6)
	assert.InDelta(t, 0.0, s.ShapeKey("Smile"), 1e-6)

	// In between, activation is strictly inside (0, 1).
	s.SetShapeKey("JawOpen", 0.25)
	require.NoError(t, s.Evaluate())
	got := s.ShapeKey("Smile")
	assert.Greater(t, got, 0.0)
	assert.Less(t, got, 1.0)
}

func TestEvaluate_MutedWritesNothing(t *testing.T) {
	s := New()
	s.SetShapeKey("Smile", 0.3)
	s.SetShapeKey("JawOpen", 0.5)

	m := rig.New(s.Host())
	tgt := m.AddTarget("Smile")
	tgt.AddDriverFromShapeKey("JawOpen")
	tgt.SetMute(true)

	require.NoError(t, s.Evaluate())
	assert.Equal(t, 0.3, s.ShapeKey("Smile"))
}

func TestEvaluate_GoalAndRadius(t *testing.T) {
	s := New()
	s.SetShapeKey("Smile", 0)
	s.SetShapeKey("JawOpen", 0.5)

	m := rig.New(s.Host())
	tgt := m.AddTarget("Smile")
	tgt.AddDriverFromShapeKey("JawOpen")
	tgt.SetGoal(2)

	s.SetShapeKey("JawOpen", 0.5)
	require.NoError(t, s.Evaluate())
	assert.InDelta(t, 2.0, s.ShapeKey("Smile"), 1e-6)
}
