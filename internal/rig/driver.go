package rig

import (
	"github.com/poserig/combokeys/internal/curve"
	"github.com/poserig/combokeys/internal/expr"
	"github.com/poserig/combokeys/internal/metric"
)

// DefaultPrecision is the rounding applied to pose literals unless the
// driver says otherwise.
const DefaultPrecision = 6

// Driver activates one weight-array element of a target: its response
// curve maps the distance expression's output onto [0,1].
//
// Every mutation re-synthesizes host state. FCurveUpdate rebuilds the
// response keyframes, DriverUpdate rebuilds the scripted expression and
// its bindings; both are idempotent.
type Driver struct {
	target *Target

	name       string
	kind       metric.Kind
	precision  int
	arrayIndex int
	variables  []*Variable
}

func newDriver(t *Target, name string, index int) *Driver {
	return &Driver{
		target:     t,
		name:       name,
		kind:       metric.Absolute,
		precision:  DefaultPrecision,
		arrayIndex: index,
	}
}

func (d *Driver) Name() string        { return d.name }
func (d *Driver) Metric() metric.Kind { return d.kind }
func (d *Driver) Precision() int      { return d.precision }

// ArrayIndex is the weight-array element this driver writes. It is
// assigned at creation and never changes; removing a sibling shrinks the
// array without renumbering the survivors.
func (d *Driver) ArrayIndex() int { return d.arrayIndex }

func (d *Driver) Variables() []*Variable { return d.variables }

// SetName renames the driver, suffixing to stay unique among its
// siblings. The name is display state only; no synthesis depends on it.
func (d *Driver) SetName(name string) {
	d.name = Uniquify(name, func(candidate string) bool {
		for _, sibling := range d.target.drivers {
			if sibling != d && sibling.name == candidate {
				return true
			}
		}
		return false
	})
}

// SetMetric changes the distance metric. Both the response curve and the
// expression depend on it, so both are re-synthesized.
func (d *Driver) SetMetric(kind metric.Kind) {
	d.kind = kind
	d.Update()
}

// SetPrecision changes pose-literal rounding, clamped to the supported
// range.
func (d *Driver) SetPrecision(precision int) {
	if precision < metric.MinPrecision {
		precision = metric.MinPrecision
	}
	if precision > metric.MaxPrecision {
		precision = metric.MaxPrecision
	}
	d.precision = precision
	d.Update()
}

// AddVariable appends a fresh shape-key variable and re-synthesizes.
func (d *Driver) AddVariable() *Variable {
	v := newVariable(d)
	d.variables = append(d.variables, v)
	d.Update()
	return v
}

// RemoveVariable removes the variable at index. On a bad index the
// driver is left unchanged.
func (d *Driver) RemoveVariable(index int) error {
	if index < 0 || index >= len(d.variables) {
		return ErrIndexOutOfRange
	}
	d.variables = append(d.variables[:index], d.variables[index+1:]...)
	d.Update()
	return nil
}

// Distance is the metric distance between the recorded rest and pose
// samples, with poses rounded at the driver's precision. It anchors the
// response curve.
func (d *Driver) Distance() float64 {
	pairs := make([]metric.Pair, len(d.variables))
	for i, v := range d.variables {
		pairs[i] = metric.Pair{Rest: v.rest, Pose: metric.Round(v.pose, d.precision)}
	}
	return metric.Distance(pairs, d.kind)
}

func (d *Driver) channelKey() ChannelKey {
	return ChannelKey{
		Path:  WeightArrayPath(d.target.identifier),
		Index: d.arrayIndex,
	}
}

// FCurveUpdate rewrites the response curve on the driver's weight-array
// channel: full weight at zero distance, falling to zero at the recorded
// pose distance. With no variables a fixed unit-span curve stands in.
func (d *Driver) FCurveUpdate() {
	var kfs []curve.Keyframe
	if len(d.variables) == 0 {
		kfs = curve.DefaultResponse()
	} else {
		kfs = curve.Response(d.Distance())
	}
	d.target.manager.host.Channel.SetKeyframes(d.channelKey(), kfs, curve.ExtrapolationConstant)
}

// DriverUpdate rewrites the scripted distance expression and rebinds
// every variable symbol to its value source.
func (d *Driver) DriverUpdate() {
	symbols := make([]expr.Symbol, len(d.variables))
	bindings := make([]Binding, len(d.variables))
	for i, v := range d.variables {
		symbols[i] = expr.Symbol{
			Name:    v.name,
			Literal: metric.Literal(v.pose, d.precision),
		}
		bindings[i] = Binding{Name: v.name, Value: v.Descriptor()}
	}

	d.target.manager.host.Channel.SetDriver(d.channelKey(), ScriptedDriver{
		Type:       DriverScripted,
		Expression: expr.Distance(d.kind, symbols),
		Bindings:   bindings,
	})
}

// Update runs the full synthesis pass, curve first.
func (d *Driver) Update() {
	d.FCurveUpdate()
	d.DriverUpdate()
}
