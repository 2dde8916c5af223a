package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/poserig/combokeys/internal/compiler"
	"github.com/poserig/combokeys/internal/curve"
	"github.com/poserig/combokeys/internal/rig"
)

// marshalJSON serializes v without HTML escaping so stored text matches
// what an inspection tool prints. Map keys come out sorted, which keeps
// stored documents byte-stable across saves.
func marshalJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

func marshalDocument(doc *compiler.Document) (string, error) {
	s, err := marshalJSON(doc)
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}
	return s, nil
}

func unmarshalDocument(data string) (*compiler.Document, error) {
	doc := &compiler.Document{}
	if err := json.Unmarshal([]byte(data), doc); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	return doc, nil
}

func marshalKeyframes(kfs []curve.Keyframe) (string, error) {
	s, err := marshalJSON(kfs)
	if err != nil {
		return "", fmt.Errorf("marshal keyframes: %w", err)
	}
	return s, nil
}

func unmarshalKeyframes(data string) ([]curve.Keyframe, error) {
	if data == "" || data == "null" {
		return nil, nil
	}
	var kfs []curve.Keyframe
	if err := json.Unmarshal([]byte(data), &kfs); err != nil {
		return nil, fmt.Errorf("unmarshal keyframes: %w", err)
	}
	return kfs, nil
}

// taggedBinding is the stored form of a driver binding. The descriptor
// union needs an explicit type tag to round-trip through JSON.
type taggedBinding struct {
	Name string          `json:"name"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	descShapeKey     = "shape_key"
	descProperty     = "property"
	descTransform    = "transform"
	descRotationDiff = "rotation_diff"
	descLocationDiff = "loc_diff"
)

func marshalBindings(bindings []rig.Binding) (string, error) {
	tagged := make([]taggedBinding, len(bindings))
	for i, b := range bindings {
		var tag string
		switch b.Value.(type) {
		case rig.ShapeKeyValue:
			tag = descShapeKey
		case rig.PropertyValue:
			tag = descProperty
		case rig.TransformValue:
			tag = descTransform
		case rig.RotationDifferenceValue:
			tag = descRotationDiff
		case rig.LocationDifferenceValue:
			tag = descLocationDiff
		default:
			return "", fmt.Errorf("marshal bindings: unknown descriptor %T", b.Value)
		}
		data, err := json.Marshal(b.Value)
		if err != nil {
			return "", fmt.Errorf("marshal bindings: %w", err)
		}
		tagged[i] = taggedBinding{Name: b.Name, Type: tag, Data: data}
	}

	s, err := marshalJSON(tagged)
	if err != nil {
		return "", fmt.Errorf("marshal bindings: %w", err)
	}
	return s, nil
}

func unmarshalBindings(data string) ([]rig.Binding, error) {
	if data == "" || data == "null" {
		return nil, nil
	}
	var tagged []taggedBinding
	if err := json.Unmarshal([]byte(data), &tagged); err != nil {
		return nil, fmt.Errorf("unmarshal bindings: %w", err)
	}

	bindings := make([]rig.Binding, len(tagged))
	for i, tb := range tagged {
		value, err := unmarshalDescriptor(tb.Type, tb.Data)
		if err != nil {
			return nil, fmt.Errorf("unmarshal bindings: %w", err)
		}
		bindings[i] = rig.Binding{Name: tb.Name, Value: value}
	}
	return bindings, nil
}

func unmarshalDescriptor(tag string, data json.RawMessage) (rig.Descriptor, error) {
	switch tag {
	case descShapeKey:
		var v rig.ShapeKeyValue
		return v, json.Unmarshal(data, &v)
	case descProperty:
		var v rig.PropertyValue
		return v, json.Unmarshal(data, &v)
	case descTransform:
		var v rig.TransformValue
		return v, json.Unmarshal(data, &v)
	case descRotationDiff:
		var v rig.RotationDifferenceValue
		return v, json.Unmarshal(data, &v)
	case descLocationDiff:
		var v rig.LocationDifferenceValue
		return v, json.Unmarshal(data, &v)
	default:
		return nil, fmt.Errorf("unknown descriptor type %q", tag)
	}
}

func marshalFloats(values []float64) (string, error) {
	if values == nil {
		values = []float64{}
	}
	s, err := marshalJSON(values)
	if err != nil {
		return "", fmt.Errorf("marshal floats: %w", err)
	}
	return s, nil
}

func unmarshalFloats(data string) ([]float64, error) {
	var values []float64
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil, fmt.Errorf("unmarshal floats: %w", err)
	}
	return values, nil
}
