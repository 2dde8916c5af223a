package harness

import (
	"fmt"
	"math"

	"github.com/poserig/combokeys/internal/rig"
	"github.com/poserig/combokeys/internal/scene"
)

// defaultTolerance is used when an assertion does not set its own.
const defaultTolerance = 1e-9

// check evaluates one assertion against the final state. The empty
// string means the assertion held; anything else is the failure text.
func (r *runner) check(a Assertion) string {
	switch a.Type {
	case AssertExpression:
		ch, failure := r.lookupChannel(a)
		if failure != "" {
			return failure
		}
		if ch.Driver.Expression != a.Expect {
			return fmt.Sprintf("expression = %q, expected %q", ch.Driver.Expression, a.Expect)
		}
		return ""

	case AssertDriverType:
		ch, failure := r.lookupChannel(a)
		if failure != "" {
			return failure
		}
		if string(ch.Driver.Type) != a.Expect {
			return fmt.Sprintf("driver type = %q, expected %q", ch.Driver.Type, a.Expect)
		}
		return ""

	case AssertShapeKey:
		got := r.scene.ShapeKey(a.Name)
		if !withinTolerance(got, a.Value, a.Tolerance) {
			return fmt.Sprintf("shape key %q = %v, expected %v", a.Name, got, a.Value)
		}
		return ""

	case AssertWeights:
		t, err := r.target(a.Target)
		if err != nil {
			return err.Error()
		}
		got := r.scene.WeightArray(rig.WeightArrayName(t.Identifier()))
		if len(got) != len(a.Values) {
			return fmt.Sprintf("weights = %v, expected %v", got, a.Values)
		}
		for i := range got {
			if !withinTolerance(got[i], a.Values[i], a.Tolerance) {
				return fmt.Sprintf("weights[%d] = %v, expected %v", i, got[i], a.Values[i])
			}
		}
		return ""

	case AssertKeyframeAnchor:
		ch, failure := r.lookupChannel(a)
		if failure != "" {
			return failure
		}
		if len(ch.Keyframes) == 0 {
			return "channel has no keyframes"
		}
		got := ch.Keyframes[len(ch.Keyframes)-1].Co[0]
		if !withinTolerance(got, a.Value, a.Tolerance) {
			return fmt.Sprintf("anchor = %v, expected %v", got, a.Value)
		}
		return ""

	case AssertMuted:
		ch, failure := r.lookupChannel(a)
		if failure != "" {
			return failure
		}
		if ch.Muted != a.On {
			return fmt.Sprintf("muted = %v, expected %v", ch.Muted, a.On)
		}
		return ""

	default:
		return fmt.Sprintf("unknown assertion type %q", a.Type)
	}
}

// lookupChannel resolves the channel an assertion addresses: a driver's
// weight-element channel when Driver is set, otherwise the target's own
// combination channel.
func (r *runner) lookupChannel(a Assertion) (*scene.Channel, string) {
	t, err := r.target(a.Target)
	if err != nil {
		return nil, err.Error()
	}

	var key rig.ChannelKey
	if a.Driver != nil {
		d, err := r.driver(a.Target, a.Driver)
		if err != nil {
			return nil, err.Error()
		}
		key = rig.ChannelKey{Path: rig.WeightArrayPath(t.Identifier()), Index: d.ArrayIndex()}
	} else {
		key = rig.ChannelKey{Path: t.DataPath(), Index: -1}
	}

	ch, ok := r.scene.Channel(key)
	if !ok {
		return nil, fmt.Sprintf("no channel at %s[%d]", key.Path, key.Index)
	}
	return ch, ""
}

func withinTolerance(got, want, tolerance float64) bool {
	if tolerance == 0 {
		tolerance = defaultTolerance
	}
	return math.Abs(got-want) <= tolerance
}
