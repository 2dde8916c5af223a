// Package metric computes the scalar "distance from pose" for a combination
// shape key driver. A driver records, per variable, the value the channel has
// at rest and the value it has in the target pose; the metric collapses those
// pairs into one non-negative scalar.
//
// All functions are pure. The same pairs and kind always produce the same
// distance, which is what lets curve and expression synthesis stay
// byte-identical across re-runs.
package metric

import (
	"math"
	"strconv"
	"strings"
)

// Kind selects how variable pairs are collapsed into a distance.
type Kind string

const (
	// Absolute is the mean absolute difference across all pairs.
	Absolute Kind = "absolute"

	// Euclidean is the L2 distance across all pairs.
	Euclidean Kind = "euclidean"

	// Quaternion treats the pairs as a unit-quaternion dot product and
	// returns the normalized rotation angle in [0, 1].
	//
	// The formula consumes whatever arity it is given; callers are expected
	// to supply exactly 4 pairs (w, x, y, z). Arity is deliberately not
	// enforced here.
	Quaternion Kind = "quaternion"
)

// Valid reports whether k is a known metric kind.
func (k Kind) Valid() bool {
	switch k {
	case Absolute, Euclidean, Quaternion:
		return true
	}
	return false
}

// Rounding precision bounds for pose-value literals.
const (
	MinPrecision = 3
	MaxPrecision = 28
)

// Pair is one variable's (rest, pose) sample.
type Pair struct {
	Rest float64
	Pose float64
}

// Distance computes the distance-at-pose anchor for the given pairs.
//
// An empty pair list returns 0; the caller decides what "no constraint"
// means (the curve synthesizer substitutes a fixed default curve).
func Distance(pairs []Pair, kind Kind) float64 {
	if len(pairs) == 0 {
		return 0
	}

	switch kind {
	case Euclidean:
		var sum float64
		for _, p := range pairs {
			d := p.Rest - p.Pose
			sum += d * d
		}
		return math.Sqrt(sum)

	case Quaternion:
		var dot float64
		for _, p := range pairs {
			dot += p.Rest * p.Pose
		}
		dot = Clamp(dot, -1, 1)
		return math.Acos(2*dot*dot-1) / math.Pi

	default: // Absolute
		var sum float64
		for _, p := range pairs {
			sum += math.Abs(p.Rest - p.Pose)
		}
		return sum / float64(len(pairs))
	}
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Round rounds v to the given number of decimal places.
func Round(v float64, precision int) float64 {
	scale := math.Pow(10, float64(precision))
	return math.Round(v*scale) / scale
}

// Literal formats v rounded to precision as a decimal literal for the
// scripted-expression grammar. The result always carries a decimal point
// ("1.0", not "1") so the host evaluator treats it as a float.
func Literal(v float64, precision int) string {
	s := strconv.FormatFloat(Round(v, precision), 'f', -1, 64)
	if !strings.ContainsAny(s, ".") {
		s += ".0"
	}
	return s
}

// FloatLiteral formats n as a float literal ("2.0" for 2). Used for the
// divisor in mean expressions.
func FloatLiteral(n int) string {
	return strconv.FormatFloat(float64(n), 'f', 1, 64)
}
