package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", name))
	require.NoError(t, err)
	return scenario
}

// TestScenarioConformance runs every checked-in scenario and requires
// all of its assertions to hold.
func TestScenarioConformance(t *testing.T) {
	names := []string{
		"basic_corrective.yaml",
		"combination_multiply.yaml",
		"combination_average.yaml",
		"combination_max.yaml",
		"falloff_remap.yaml",
		"precision_rounding.yaml",
		"rename_restore.yaml",
		"copy_paste.yaml",
	}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			scenario := loadTestScenario(t, name)
			result, err := Run(scenario)
			require.NoError(t, err)
			for _, failure := range result.Failures {
				t.Error(failure)
			}
		})
	}
}

func TestRunReportsAllFailures(t *testing.T) {
	scenario := loadTestScenario(t, "basic_corrective.yaml")
	scenario.Assertions = []Assertion{
		{Type: AssertExpression, Target: "Smile", Expect: "wrong"},
		{Type: AssertShapeKey, Name: "Smile", Value: 42},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Passed())
	assert.Len(t, result.Failures, 2)
}

func TestRunUnknownOp(t *testing.T) {
	scenario := loadTestScenario(t, "basic_corrective.yaml")
	scenario.Steps = []Step{{Op: "frobnicate"}}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frobnicate")
}

func TestRunUnknownTarget(t *testing.T) {
	scenario := loadTestScenario(t, "basic_corrective.yaml")
	scenario.Steps = []Step{{Op: OpSetGoal, Target: "Nope", Value: 2}}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown target "Nope"`)
}

func TestPasteEmptyBufferFails(t *testing.T) {
	scenario := loadTestScenario(t, "copy_paste.yaml")
	scenario.Steps = []Step{{Op: OpPasteVariables, Target: "Frown"}}

	_, err := Run(scenario)
	require.Error(t, err)
}
