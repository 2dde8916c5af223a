package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvalRestPose(t *testing.T) {
	path := writeDocument(t, validDocument)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewEvalCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "JawOpen = 0")
	assert.Contains(t, output, "Smile = 0")
}

func TestEvalWithOverride(t *testing.T) {
	path := writeDocument(t, validDocument)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewEvalCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path, "--set", "JawOpen=1.0"})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   EvalResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.InDelta(t, 1.0, resp.Data.ShapeKeys["JawOpen"], 1e-9)
	assert.InDelta(t, 1.0, resp.Data.ShapeKeys["Smile"], 1e-6)
}

func TestEvalBadOverride(t *testing.T) {
	path := writeDocument(t, validDocument)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewEvalCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path, "--set", "JawOpen"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "name=value")
}

func TestParseOverride(t *testing.T) {
	name, value, err := parseOverride("JawOpen=0.5")
	require.NoError(t, err)
	assert.Equal(t, "JawOpen", name)
	assert.Equal(t, 0.5, value)

	_, _, err = parseOverride("=0.5")
	require.Error(t, err)

	_, _, err = parseOverride("JawOpen=abc")
	require.Error(t, err)
}
