package compiler

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileString(t *testing.T, src string) cue.Value {
	t.Helper()
	v := cuecontext.New().CompileString(src)
	require.NoError(t, v.Err())
	return v.LookupPath(cue.ParsePath("document"))
}

func TestCompileDocumentBasic(t *testing.T) {
	v := compileString(t, `
		document: {
			scene: {
				shape_keys: {
					Smile:   0.0
					JawOpen: 0.5
				}
				objects: Armature: {
					location: [0.0, 1.0, 0.0]
					bones: head: {
						rotation: [1.0, 0.0, 0.0, 0.0]
					}
				}
			}
			targets: [{
				name: "Smile"
				mode: "average"
				goal: 2.0
				drivers: [{
					name:      "JawOpen"
					metric:    "euclidean"
					precision: 4
					variables: [{
						name: "jaw"
						pose: 0.5
						targets: [{ shape_key: "JawOpen" }]
					}]
				}]
			}]
		}
	`)

	doc, err := CompileDocument(v)
	require.NoError(t, err)

	assert.Equal(t, 0.5, doc.Scene.ShapeKeys["JawOpen"])
	require.Contains(t, doc.Scene.Objects, "Armature")
	require.NotNil(t, doc.Scene.Objects["Armature"].Location)
	assert.Equal(t, [3]float64{0, 1, 0}, *doc.Scene.Objects["Armature"].Location)

	require.Len(t, doc.Targets, 1)
	target := doc.Targets[0]
	assert.Equal(t, "Smile", target.Name)
	assert.Equal(t, "average", target.Mode)
	require.NotNil(t, target.Goal)
	assert.Equal(t, 2.0, *target.Goal)

	require.Len(t, target.Drivers, 1)
	driver := target.Drivers[0]
	assert.Equal(t, "euclidean", driver.Metric)
	require.NotNil(t, driver.Precision)
	assert.Equal(t, 4, *driver.Precision)

	require.Len(t, driver.Variables, 1)
	variable := driver.Variables[0]
	assert.Equal(t, "jaw", variable.Name)
	require.NotNil(t, variable.Pose)
	assert.Equal(t, 0.5, *variable.Pose)
	require.Len(t, variable.Targets, 1)
	assert.Equal(t, "JawOpen", variable.Targets[0].ShapeKey)
}

func TestCompileDocumentMissingTargetName(t *testing.T) {
	v := compileString(t, `
		document: {
			targets: [{ mode: "multiply" }]
		}
	`)

	_, err := CompileDocument(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "targets[0].name")
	assert.Contains(t, err.Error(), "required")
}

func TestCompileDocumentGoalOutOfRange(t *testing.T) {
	v := compileString(t, `
		document: {
			targets: [{ name: "Smile", goal: 12.0 }]
		}
	`)

	_, err := CompileDocument(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "targets[0].goal")
	assert.Contains(t, err.Error(), "<= 10")
}

func TestCompileDocumentPrecisionOutOfRange(t *testing.T) {
	v := compileString(t, `
		document: {
			targets: [{
				name: "Smile"
				drivers: [{ precision: 2 }]
			}]
		}
	`)

	_, err := CompileDocument(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "precision")
	assert.Contains(t, err.Error(), ">= 3")
}

func TestCompileDocumentUnknownMetric(t *testing.T) {
	v := compileString(t, `
		document: {
			targets: [{
				name: "Smile"
				drivers: [{ metric: "manhattan" }]
			}]
		}
	`)

	_, err := CompileDocument(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "metric")
	assert.Contains(t, err.Error(), "one of")
}

func TestCompileDocumentDecodeMismatch(t *testing.T) {
	v := compileString(t, `
		document: {
			targets: [{ name: "Smile", goal: "high" }]
		}
	`)

	_, err := CompileDocument(v)
	require.Error(t, err)
}

func TestQuaternionArityWarning(t *testing.T) {
	v := compileString(t, `
		document: {
			targets: [{
				name: "Smile"
				drivers: [{
					metric: "quaternion"
					variables: [{ name: "w" }]
				}]
			}]
		}
	`)

	doc, err := CompileDocument(v)
	require.NoError(t, err)

	warnings := doc.Warnings()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Field, "targets[0].drivers[0]")
	assert.Contains(t, warnings[0].Message, "4 variables")
}

func TestQuaternionArityNoWarningAtFour(t *testing.T) {
	v := compileString(t, `
		document: {
			targets: [{
				name: "Smile"
				drivers: [{
					metric: "quaternion"
					variables: [
						{ name: "w" }, { name: "x" }, { name: "y" }, { name: "z" },
					]
				}]
			}]
		}
	`)

	doc, err := CompileDocument(v)
	require.NoError(t, err)
	assert.Empty(t, doc.Warnings())
}
