// Package compiler turns a CUE rig document into a live scene and
// manager. A document describes two things: the scene state (shape
// keys, objects, bones, properties) and the corrective targets built
// over it. Compilation decodes and validates; building replays the
// document through the engine's public API so every channel is
// synthesized exactly as interactive edits would have left it.
package compiler

import "fmt"

// Document is the decoded form of one rig document.
type Document struct {
	Scene   SceneSpec    `json:"scene"`
	Targets []TargetSpec `json:"targets" validate:"dive"`
}

// SceneSpec is the scene state a document starts from.
type SceneSpec struct {
	ShapeKeys map[string]float64    `json:"shape_keys"`
	Objects   map[string]ObjectSpec `json:"objects" validate:"dive"`
}

// ObjectSpec is one scene object. Nil transform fields keep the rest
// pose.
type ObjectSpec struct {
	Location      *[3]float64         `json:"location"`
	Rotation      *[4]float64         `json:"rotation"`
	RotationOrder string              `json:"rotation_order" validate:"omitempty,oneof=xyz xzy yxz yzx zxy zyx"`
	Scale         *[3]float64         `json:"scale"`
	Properties    map[string]float64  `json:"properties"`
	Bones         map[string]BoneSpec `json:"bones" validate:"dive"`
}

// BoneSpec is one posed bone, local to its object.
type BoneSpec struct {
	Location *[3]float64 `json:"location"`
	Rotation *[4]float64 `json:"rotation"`
	Scale    *[3]float64 `json:"scale"`
}

// TargetSpec is one corrective target. Name is the driven shape key.
type TargetSpec struct {
	Name          string       `json:"name" validate:"required"`
	Mode          string       `json:"mode" validate:"omitempty,oneof=multiply min max average"`
	Goal          *float64     `json:"goal" validate:"omitempty,gte=0,lte=10"`
	Radius        *float64     `json:"radius" validate:"omitempty,gte=0,lte=1"`
	Clamp         *bool        `json:"clamp"`
	Mute          bool         `json:"mute"`
	Falloff       string       `json:"falloff" validate:"omitempty,oneof=linear smooth"`
	FalloffPoints []PointSpec  `json:"falloff_points" validate:"omitempty,min=2,dive"`
	Drivers       []DriverSpec `json:"drivers" validate:"dive"`
}

// PointSpec is one custom falloff control point in normalized space.
type PointSpec struct {
	Co          [2]float64 `json:"co"`
	HandleLeft  [2]float64 `json:"handle_left"`
	HandleRight [2]float64 `json:"handle_right"`
}

// DriverSpec is one driver of a target.
type DriverSpec struct {
	Name      string         `json:"name"`
	Metric    string         `json:"metric" validate:"omitempty,oneof=absolute euclidean quaternion"`
	Precision *int           `json:"precision" validate:"omitempty,gte=3,lte=28"`
	Variables []VariableSpec `json:"variables" validate:"dive"`
}

// VariableSpec is one driver variable. A nil pose means "capture from
// the live scene once the scene is built", which lets a document record
// the pose implicitly through scene state.
type VariableSpec struct {
	Name    string          `json:"name"`
	Kind    string          `json:"kind" validate:"omitempty,oneof=shape_key single_prop transforms rotation_diff loc_diff"`
	Rest    float64         `json:"rest"`
	Pose    *float64        `json:"pose"`
	Targets []TargetRefSpec `json:"targets" validate:"omitempty,max=2,dive"`
}

// TargetRefSpec is one reference target of a variable. Which fields
// matter depends on the variable kind.
type TargetRefSpec struct {
	IDType       string `json:"id_type" validate:"omitempty,oneof=object mesh armature key"`
	Object       string `json:"object"`
	Bone         string `json:"bone"`
	DataPath     string `json:"data_path"`
	ShapeKey     string `json:"shape_key"`
	Channel      string `json:"channel" validate:"omitempty,oneof=loc_x loc_y loc_z rot_w rot_x rot_y rot_z scale_x scale_y scale_z"`
	Space        string `json:"space" validate:"omitempty,oneof=world local"`
	RotationMode string `json:"rotation_mode" validate:"omitempty,oneof=auto xyz xzy yxz yzx zxy zyx quaternion swing_twist_x swing_twist_y swing_twist_z"`
}

// Warning is a non-fatal finding from validation.
type Warning struct {
	Field   string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Field, w.Message)
}

// Warnings reports configurations that compile and build but are
// unlikely to mean what the author intended. The quaternion metric is
// defined over four paired components; with any other variable count it
// still evaluates, just not as a rotation distance.
func (d *Document) Warnings() []Warning {
	var warnings []Warning
	for ti, t := range d.Targets {
		for di, drv := range t.Drivers {
			if drv.Metric == "quaternion" && len(drv.Variables) != 4 {
				warnings = append(warnings, Warning{
					Field: fmt.Sprintf("targets[%d].drivers[%d]", ti, di),
					Message: fmt.Sprintf("quaternion metric expects 4 variables, got %d",
						len(drv.Variables)),
				})
			}
		}
	}
	return warnings
}
