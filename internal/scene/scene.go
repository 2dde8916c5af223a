// Package scene is an in-memory host for the rig engine: a small scene
// graph of objects, bones, shape keys, and custom properties, plus the
// animation channels the engine synthesizes into. It implements every
// capability in rig.Host and can evaluate the synthesized channels end
// to end, which is what the test harness and CLI drive.
package scene

import (
	"sort"

	"github.com/poserig/combokeys/internal/curve"
	"github.com/poserig/combokeys/internal/quat"
	"github.com/poserig/combokeys/internal/rig"
)

// Vec3 is a 3-component vector.
type Vec3 [3]float64

// Bone is a posed bone, local to its owning object.
type Bone struct {
	Location Vec3
	Rotation quat.Quat
	Scale    Vec3
}

// Object is one scene object with a transform, optional bones, and
// scalar custom properties.
type Object struct {
	Location Vec3
	Rotation quat.Quat

	// RotationOrder is the euler order used when a channel reads the
	// rotation in "auto" mode.
	RotationOrder string

	Scale      Vec3
	Bones      map[string]*Bone
	Properties map[string]float64
}

// AddBone adds a bone at rest and returns it.
func (o *Object) AddBone(name string) *Bone {
	if o.Bones == nil {
		o.Bones = map[string]*Bone{}
	}
	b := &Bone{Rotation: quat.Identity(), Scale: Vec3{1, 1, 1}}
	o.Bones[name] = b
	return b
}

// Channel is the evaluated state of one animation channel: the response
// keyframes and the driver configuration the engine wrote to it.
type Channel struct {
	Keyframes []curve.Keyframe
	Mode      curve.Extrapolation
	Driver    rig.ScriptedDriver
	HasDriver bool
	Muted     bool
}

// Scene holds one host mesh (its shape keys and weight arrays) and any
// number of scene objects driver variables can read.
type Scene struct {
	objects   map[string]*Object
	shapeKeys map[string]float64
	weights   map[string][]float64
	channels  map[rig.ChannelKey]*Channel
}

// New returns an empty scene.
func New() *Scene {
	return &Scene{
		objects:   map[string]*Object{},
		shapeKeys: map[string]float64{},
		weights:   map[string][]float64{},
		channels:  map[rig.ChannelKey]*Channel{},
	}
}

// Host bundles the scene's capabilities for a rig manager.
func (s *Scene) Host() rig.Host {
	return rig.Host{Values: s, Channel: s, Shapes: s, Weights: s}
}

// AddObject adds an object at rest and returns it.
func (s *Scene) AddObject(name string) *Object {
	o := &Object{
		Rotation:      quat.Identity(),
		RotationOrder: "xyz",
		Scale:         Vec3{1, 1, 1},
		Properties:    map[string]float64{},
	}
	s.objects[name] = o
	return o
}

// Object returns the named object, or nil.
func (s *Scene) Object(name string) *Object { return s.objects[name] }

// SetShapeKey creates or updates a shape key on the host mesh.
func (s *Scene) SetShapeKey(name string, value float64) { s.shapeKeys[name] = value }

// ShapeKey returns a shape key's current value.
func (s *Scene) ShapeKey(name string) float64 { return s.shapeKeys[name] }

// ShapeKeys returns the shape key names in sorted order.
func (s *Scene) ShapeKeys() []string {
	names := make([]string, 0, len(s.shapeKeys))
	for name := range s.shapeKeys {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasShapeKey implements rig.ShapeKeySet.
func (s *Scene) HasShapeKey(name string) bool {
	_, ok := s.shapeKeys[name]
	return ok
}

// ShapeKeyValue implements rig.ShapeKeySet.
func (s *Scene) ShapeKeyValue(name string) (float64, bool) {
	v, ok := s.shapeKeys[name]
	return v, ok
}

// SetWeightArray implements rig.WeightArrayStore.
func (s *Scene) SetWeightArray(name string, values []float64) { s.weights[name] = values }

// RemoveWeightArray implements rig.WeightArrayStore.
func (s *Scene) RemoveWeightArray(name string) { delete(s.weights, name) }

// WeightArray returns the named weight array, or nil.
func (s *Scene) WeightArray(name string) []float64 { return s.weights[name] }

// WeightArrayNames returns the weight array names in sorted order.
func (s *Scene) WeightArrayNames() []string {
	names := make([]string, 0, len(s.weights))
	for name := range s.weights {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetKeyframes implements rig.ChannelStore.
func (s *Scene) SetKeyframes(key rig.ChannelKey, kfs []curve.Keyframe, mode curve.Extrapolation) {
	ch := s.channel(key)
	ch.Keyframes = kfs
	ch.Mode = mode
}

// SetDriver implements rig.ChannelStore.
func (s *Scene) SetDriver(key rig.ChannelKey, d rig.ScriptedDriver) {
	ch := s.channel(key)
	ch.Driver = d
	ch.HasDriver = true
}

// SetMuted implements rig.ChannelStore.
func (s *Scene) SetMuted(key rig.ChannelKey, muted bool) {
	s.channel(key).Muted = muted
}

// Remove implements rig.ChannelStore.
func (s *Scene) Remove(key rig.ChannelKey) {
	delete(s.channels, key)
}

func (s *Scene) channel(key rig.ChannelKey) *Channel {
	ch, ok := s.channels[key]
	if !ok {
		ch = &Channel{}
		s.channels[key] = ch
	}
	return ch
}

// Channel returns the synthesized state of one channel.
func (s *Scene) Channel(key rig.ChannelKey) (*Channel, bool) {
	ch, ok := s.channels[key]
	return ch, ok
}

// ChannelKeys returns every synthesized channel key, sorted by path then
// index, so traversal is deterministic.
func (s *Scene) ChannelKeys() []rig.ChannelKey {
	keys := make([]rig.ChannelKey, 0, len(s.channels))
	for key := range s.channels {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Path != keys[j].Path {
			return keys[i].Path < keys[j].Path
		}
		return keys[i].Index < keys[j].Index
	})
	return keys
}
