package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScenario drops a scenario and its document next to each other in
// a temp dir and returns the scenario path.
func writeScenario(t *testing.T, scenario string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "doc.cue"), []byte(validDocument), 0644))
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scenario), 0644))
	return path
}

func TestRunPassingScenario(t *testing.T) {
	path := writeScenario(t, `
name: jaw-drives-smile
description: Raising the driving shape key raises the target.
document: doc.cue
steps:
  - op: set_shape_key
    name: JawOpen
    value: 1.0
  - op: evaluate
assertions:
  - type: shape_key
    name: Smile
    value: 1.0
    tolerance: 1.0e-6
`)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewRunCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "✓ jaw-drives-smile")
}

func TestRunFailingScenario(t *testing.T) {
	path := writeScenario(t, `
name: wrong-expectation
description: A deliberately wrong expression expectation fails.
document: doc.cue
assertions:
  - type: expression
    target: Smile
    driver: 0
    expect: fabs(var-2.0)
`)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewRunCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string    `json:"status"`
		Data   RunResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.False(t, resp.Data.Passed)
	require.Len(t, resp.Data.Failures, 1)
	assert.Contains(t, resp.Data.Failures[0], "fabs(var-2.0)")
}

func TestRunMissingScenario(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewRunCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"/nonexistent/scenario.yaml"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), ErrCodeScenarioFailed)
}
