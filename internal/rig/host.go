package rig

import (
	"github.com/poserig/combokeys/internal/curve"
)

// ChannelKey addresses one animation channel on the host. Index is the
// array element for indexed properties and -1 for plain scalar paths.
type ChannelKey struct {
	Path  string
	Index int
}

// DriverType selects how the host reduces driver variables to a value.
type DriverType string

const (
	DriverScripted DriverType = "scripted"
	DriverMin      DriverType = "min"
	DriverMax      DriverType = "max"
)

// Binding attaches one named symbol to the value source it reads.
type Binding struct {
	Name  string
	Value Descriptor
}

// ScriptedDriver is the full synthesized configuration of one channel
// driver: how to reduce its bindings, and for scripted reduction, the
// expression over their names.
type ScriptedDriver struct {
	Type       DriverType
	Expression string
	Bindings   []Binding
}

// ValueSource resolves descriptors against live host state. Absent
// objects, bones, keys, or paths report ok=false; callers treat absence
// as zero.
type ValueSource interface {
	Resolve(d Descriptor) (value float64, ok bool)
}

// ChannelStore receives synthesized animation state. Writes replace any
// prior configuration of the channel wholesale and never fail: the engine
// owns every channel it touches. Remove is tolerant of absent channels.
type ChannelStore interface {
	SetKeyframes(key ChannelKey, kfs []curve.Keyframe, mode curve.Extrapolation)
	SetDriver(key ChannelKey, d ScriptedDriver)
	SetMuted(key ChannelKey, muted bool)
	Remove(key ChannelKey)
}

// ShapeKeySet reports the shape keys available on the host mesh.
type ShapeKeySet interface {
	HasShapeKey(name string) bool
	ShapeKeyValue(name string) (float64, bool)
}

// WeightArrayStore owns the per-target weight arrays the synthesized
// drivers write into. Set replaces the whole array; Remove is tolerant.
type WeightArrayStore interface {
	SetWeightArray(name string, values []float64)
	RemoveWeightArray(name string)
}

// Host bundles the capabilities a manager needs from its surroundings.
type Host struct {
	Values  ValueSource
	Channel ChannelStore
	Shapes  ShapeKeySet
	Weights WeightArrayStore
}
