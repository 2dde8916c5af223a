// Package curve builds and evaluates the bezier keyframe representations the
// engine writes into the host's animation-curve store: the 2-keyframe
// response curve mapping distance-from-pose to activation weight, and the
// falloff curve remapped onto a target's radius/goal range.
package curve

import "math"

// HandleType describes how a keyframe handle behaves in the host editor.
// Synthesized curves always use free handles; the host must not re-smooth
// what the engine writes.
type HandleType string

const (
	HandleFree    HandleType = "free"
	HandleAligned HandleType = "aligned"
	HandleVector  HandleType = "vector"
	HandleAuto    HandleType = "auto"
)

// Extrapolation describes curve behavior outside the keyframed range.
type Extrapolation string

const (
	// ExtrapolationConstant holds the end keyframe value.
	ExtrapolationConstant Extrapolation = "constant"

	// ExtrapolationLinear continues along the end handle direction.
	ExtrapolationLinear Extrapolation = "linear"
)

// Vec2 is a point in curve space.
type Vec2 [2]float64

// Keyframe is one bezier control point as written to the host curve store.
type Keyframe struct {
	Co              Vec2       `json:"co"`
	HandleLeft      Vec2       `json:"handle_left"`
	HandleRight     Vec2       `json:"handle_right"`
	HandleLeftType  HandleType `json:"handle_left_type"`
	HandleRightType HandleType `json:"handle_right_type"`
}

// Evaluate samples a bezier keyframe sequence at x.
//
// Keyframes must be ordered by Co[0]. Outside the keyframed range the
// extrapolation mode decides between holding the end value and continuing
// along the end handle direction.
func Evaluate(keyframes []Keyframe, extrapolation Extrapolation, x float64) float64 {
	if len(keyframes) == 0 {
		return 0
	}
	if len(keyframes) == 1 {
		return keyframes[0].Co[1]
	}

	first := keyframes[0]
	last := keyframes[len(keyframes)-1]

	if x < first.Co[0] {
		if extrapolation == ExtrapolationLinear {
			return extrapolate(first.Co, first.HandleLeft, x)
		}
		return first.Co[1]
	}
	if x > last.Co[0] {
		if extrapolation == ExtrapolationLinear {
			return extrapolate(last.Co, last.HandleRight, x)
		}
		return last.Co[1]
	}

	for i := 0; i < len(keyframes)-1; i++ {
		a, b := keyframes[i], keyframes[i+1]
		if x > b.Co[0] {
			continue
		}
		return evalSegment(a, b, x)
	}
	return last.Co[1]
}

// extrapolate continues the line from an end keyframe through its outward
// handle. A degenerate handle (zero x offset) holds the keyframe value.
func extrapolate(co, handle Vec2, x float64) float64 {
	dx := handle[0] - co[0]
	if math.Abs(dx) < 1e-9 {
		return co[1]
	}
	slope := (handle[1] - co[1]) / dx
	return co[1] + slope*(x-co[0])
}

// evalSegment evaluates the cubic bezier between adjacent keyframes at x.
// The inner control points are clamped into the segment's x span so the
// x(t) polynomial stays monotonic and the bisection below converges.
func evalSegment(a, b Keyframe, x float64) float64 {
	x0, y0 := a.Co[0], a.Co[1]
	x3, y3 := b.Co[0], b.Co[1]
	if x3-x0 < 1e-12 {
		return y3
	}

	x1 := clampX(a.HandleRight[0], x0, x3)
	x2 := clampX(b.HandleLeft[0], x0, x3)
	y1 := a.HandleRight[1]
	y2 := b.HandleLeft[1]

	t := solveT(x0, x1, x2, x3, x)
	return bezier(y0, y1, y2, y3, t)
}

// solveT finds t in [0,1] with x(t) == x by bisection. 48 halvings put the
// error well below float32 keyframe resolution.
func solveT(x0, x1, x2, x3, x float64) float64 {
	lo, hi := 0.0, 1.0
	for i := 0; i < 48; i++ {
		mid := (lo + hi) / 2
		if bezier(x0, x1, x2, x3, mid) < x {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

func bezier(p0, p1, p2, p3, t float64) float64 {
	u := 1 - t
	return u*u*u*p0 + 3*u*u*t*p1 + 3*u*t*t*p2 + t*t*t*p3
}

func clampX(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
