package curve

// Response builds the per-driver response curve: exactly two free-handle
// bezier keyframes mapping current distance-from-pose to activation weight,
// 1.0 at distance 0 and 0.0 at the anchor distance.
//
// Handles are scaled with the anchor so the curve keeps its shape when the
// anchor moves. Resynthesis with the same anchor is byte-identical.
func Response(anchor float64) []Keyframe {
	return []Keyframe{
		{
			Co:              Vec2{0, 1},
			HandleLeft:      Vec2{-0.25, 1},
			HandleRight:     Vec2{anchor * 0.25, 0.75},
			HandleLeftType:  HandleFree,
			HandleRightType: HandleFree,
		},
		{
			Co:              Vec2{anchor, 0},
			HandleLeft:      Vec2{anchor * 0.75, 0.25},
			HandleRight:     Vec2{anchor * 1.25, 0},
			HandleLeftType:  HandleFree,
			HandleRightType: HandleFree,
		},
	}
}

// DefaultResponse is the fixed curve written for a driver with no variables:
// a full-range falloff from (0,1) to (1,0) with no real metric behind it.
func DefaultResponse() []Keyframe {
	return []Keyframe{
		{
			Co:              Vec2{0, 1},
			HandleLeft:      Vec2{-0.25, 1},
			HandleRight:     Vec2{0.25, 0.75},
			HandleLeftType:  HandleFree,
			HandleRightType: HandleFree,
		},
		{
			Co:              Vec2{1, 0},
			HandleLeft:      Vec2{0.75, 0.25},
			HandleRight:     Vec2{1.25, 0},
			HandleLeftType:  HandleFree,
			HandleRightType: HandleFree,
		},
	}
}
