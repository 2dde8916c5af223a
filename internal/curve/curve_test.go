package curve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponse_AnchorScaling(t *testing.T) {
	kfs := Response(0.75)
	require.Len(t, kfs, 2)

	assert.Equal(t, Vec2{0, 1}, kfs[0].Co)
	assert.Equal(t, Vec2{0.75, 0}, kfs[1].Co)

	// Handles scale with the anchor so the shape is preserved.
	assert.Equal(t, Vec2{-0.25, 1}, kfs[0].HandleLeft)
	assert.Equal(t, Vec2{0.75 * 0.25, 0.75}, kfs[0].HandleRight)
	assert.Equal(t, Vec2{0.75 * 0.75, 0.25}, kfs[1].HandleLeft)
	assert.Equal(t, Vec2{0.75 * 1.25, 0}, kfs[1].HandleRight)

	for _, kf := range kfs {
		assert.Equal(t, HandleFree, kf.HandleLeftType)
		assert.Equal(t, HandleFree, kf.HandleRightType)
	}
}

func TestResponse_ZeroAnchor(t *testing.T) {
	// Pose identical to rest collapses the curve onto x=0. Degenerate but
	// well-defined: both keyframes at the same x.
	kfs := Response(0)
	assert.Equal(t, Vec2{0, 1}, kfs[0].Co)
	assert.Equal(t, Vec2{0, 0}, kfs[1].Co)
}

func TestDefaultResponse(t *testing.T) {
	kfs := DefaultResponse()
	require.Len(t, kfs, 2)
	assert.Equal(t, Vec2{0, 1}, kfs[0].Co)
	assert.Equal(t, Vec2{1, 0}, kfs[1].Co)
	assert.Equal(t, Vec2{0.25, 0.75}, kfs[0].HandleRight)
	assert.Equal(t, Vec2{1.25, 0}, kfs[1].HandleRight)

	// Byte-identical across calls (idempotent synthesis).
	assert.Equal(t, kfs, DefaultResponse())
}

func TestEvaluate_Endpoints(t *testing.T) {
	kfs := Response(0.5)
	assert.InDelta(t, 1.0, Evaluate(kfs, ExtrapolationConstant, 0), 1e-9)
	assert.InDelta(t, 0.0, Evaluate(kfs, ExtrapolationConstant, 0.5), 1e-9)
}

func TestEvaluate_Monotone(t *testing.T) {
	kfs := Response(1)
	prev := 1.0
	for x := 0.0; x <= 1.0; x += 0.05 {
		y := Evaluate(kfs, ExtrapolationConstant, x)
		assert.LessOrEqual(t, y, prev+1e-9, "curve must fall monotonically at x=%v", x)
		prev = y
	}
}

func TestEvaluate_ConstantExtrapolation(t *testing.T) {
	kfs := Response(0.5)
	assert.InDelta(t, 1.0, Evaluate(kfs, ExtrapolationConstant, -2), 1e-9)
	assert.InDelta(t, 0.0, Evaluate(kfs, ExtrapolationConstant, 3), 1e-9)
}

func TestFalloffLinear_Evaluate(t *testing.T) {
	f := Linear()
	for _, x := range []float64{0, 0.25, 0.5, 0.75, 1} {
		assert.InDelta(t, x, f.Evaluate(x), 1e-6)
	}
}

func TestFalloffToBezier_Remap(t *testing.T) {
	f := Linear()
	kfs, mode := f.ToBezier(Vec2{0.5, 1}, Vec2{0, 2}, false)
	require.Len(t, kfs, 2)

	assert.Equal(t, ExtrapolationConstant, mode)
	assert.Equal(t, Vec2{0.5, 0}, kfs[0].Co)
	assert.Equal(t, Vec2{1, 2}, kfs[1].Co)

	// Handles are remapped through the same transform as the points.
	assert.Equal(t, Vec2{0.5 + 0.25*0.5, 0.5}, kfs[0].HandleRight)

	// Exported handles are always free.
	assert.Equal(t, HandleFree, kfs[0].HandleLeftType)
	assert.Equal(t, HandleFree, kfs[1].HandleRightType)
}

func TestFalloffToBezier_ClampVersusExtrapolate(t *testing.T) {
	f := Linear()

	// radius 0.5, goal 2.0: domain [0.5, 1] -> [0, 2], slope 4.
	clamped, clampMode := f.ToBezier(Vec2{0.5, 1}, Vec2{0, 2}, false)
	open, openMode := f.ToBezier(Vec2{0.5, 1}, Vec2{0, 2}, true)

	assert.Equal(t, ExtrapolationConstant, clampMode)
	assert.Equal(t, ExtrapolationLinear, openMode)

	// Inside the domain both behave identically.
	assert.InDelta(t, 1.0, Evaluate(clamped, clampMode, 0.75), 1e-6)
	assert.InDelta(t, 1.0, Evaluate(open, openMode, 0.75), 1e-6)

	// Below the domain: hold flat versus continue the line.
	assert.InDelta(t, 0.0, Evaluate(clamped, clampMode, 0.25), 1e-9)
	assert.InDelta(t, -1.0, Evaluate(open, openMode, 0.25), 1e-6)

	// Above the domain.
	assert.InDelta(t, 2.0, Evaluate(clamped, clampMode, 1.25), 1e-9)
	assert.InDelta(t, 3.0, Evaluate(open, openMode, 1.25), 1e-6)
}

func TestFalloffSmooth_EasesEnds(t *testing.T) {
	f := Smooth()
	assert.InDelta(t, 0, f.Evaluate(0), 1e-9)
	assert.InDelta(t, 1, f.Evaluate(1), 1e-9)

	// Ease-in: slower than linear near 0; ease-out: closer to 1 near the end.
	assert.Less(t, f.Evaluate(0.1), 0.1)
	assert.Greater(t, f.Evaluate(0.9), 0.9)
}

func TestEvaluate_DegenerateInputs(t *testing.T) {
	assert.Zero(t, Evaluate(nil, ExtrapolationConstant, 0.5))

	single := []Keyframe{{Co: Vec2{0, 0.7}}}
	assert.Equal(t, 0.7, Evaluate(single, ExtrapolationLinear, 12))
}
