package curve

// Point is one falloff control point in normalized [0,1]x[0,1] space.
type Point struct {
	Co          Vec2       `json:"co" yaml:"co"`
	HandleLeft  Vec2       `json:"handle_left" yaml:"handle_left"`
	HandleRight Vec2       `json:"handle_right" yaml:"handle_right"`
	HandleType  HandleType `json:"handle_type" yaml:"handle_type"`
}

// Falloff is a target's easing curve in normalized space. It is independent
// of any driver metric: it remaps the combined activation weight into the
// target's final goal range.
type Falloff struct {
	Points []Point `json:"points" yaml:"points"`
}

// Linear returns the default falloff: the identity line.
func Linear() Falloff {
	return Falloff{Points: []Point{
		{
			Co:          Vec2{0, 0},
			HandleLeft:  Vec2{-0.25, -0.25},
			HandleRight: Vec2{0.25, 0.25},
			HandleType:  HandleVector,
		},
		{
			Co:          Vec2{1, 1},
			HandleLeft:  Vec2{0.75, 0.75},
			HandleRight: Vec2{1.25, 1.25},
			HandleType:  HandleVector,
		},
	}}
}

// Smooth returns an ease-in-out falloff with flat end tangents.
func Smooth() Falloff {
	return Falloff{Points: []Point{
		{
			Co:          Vec2{0, 0},
			HandleLeft:  Vec2{-0.25, 0},
			HandleRight: Vec2{0.25, 0},
			HandleType:  HandleAuto,
		},
		{
			Co:          Vec2{1, 1},
			HandleLeft:  Vec2{0.75, 1},
			HandleRight: Vec2{1.25, 1},
			HandleType:  HandleAuto,
		},
	}}
}

// Evaluate samples the falloff in normalized space. Outside [0,1] the end
// segments continue linearly; clamping is an export-time concern.
func (f Falloff) Evaluate(x float64) float64 {
	return Evaluate(f.export(), ExtrapolationLinear, x)
}

// export converts control points to keyframes without remapping.
func (f Falloff) export() []Keyframe {
	kfs := make([]Keyframe, len(f.Points))
	for i, p := range f.Points {
		kfs[i] = Keyframe{
			Co:              p.Co,
			HandleLeft:      p.HandleLeft,
			HandleRight:     p.HandleRight,
			HandleLeftType:  HandleFree,
			HandleRightType: HandleFree,
		}
	}
	return kfs
}

// ToBezier exports the falloff as a keyframe sequence remapped onto the
// given x and y ranges, plus the extrapolation mode the channel should use.
//
// With extrapolate false the channel holds its endpoint values outside the
// x range; with extrapolate true the end segments continue along their
// handle directions. Handle types degrade to free: the host must not
// re-smooth synthesized output.
func (f Falloff) ToBezier(xRange, yRange Vec2, extrapolate bool) ([]Keyframe, Extrapolation) {
	x0, x1 := xRange[0], xRange[1]
	y0, y1 := yRange[0], yRange[1]
	dx := x1 - x0
	dy := y1 - y0

	remap := func(v Vec2) Vec2 {
		return Vec2{x0 + v[0]*dx, y0 + v[1]*dy}
	}

	kfs := make([]Keyframe, len(f.Points))
	for i, p := range f.Points {
		kfs[i] = Keyframe{
			Co:              remap(p.Co),
			HandleLeft:      remap(p.HandleLeft),
			HandleRight:     remap(p.HandleRight),
			HandleLeftType:  HandleFree,
			HandleRightType: HandleFree,
		}
	}

	mode := ExtrapolationConstant
	if extrapolate {
		mode = ExtrapolationLinear
	}
	return kfs, mode
}
