package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicCorrectiveGolden(t *testing.T) {
	scenario := loadTestScenario(t, "basic_corrective.yaml")
	result, err := RunWithGolden(t, scenario)
	require.NoError(t, err)
	assert.True(t, result.Passed())
}

// TestSnapshotIsDeterministic builds the same scenario twice and checks
// the snapshots match despite the random weight-array identifiers.
func TestSnapshotIsDeterministic(t *testing.T) {
	scenario := loadTestScenario(t, "basic_corrective.yaml")

	r1, err := Run(scenario)
	require.NoError(t, err)
	r2, err := Run(scenario)
	require.NoError(t, err)

	assert.Equal(t, Snapshot(r1), Snapshot(r2))
}

func TestSnapshotAliasesIdentifiers(t *testing.T) {
	scenario := loadTestScenario(t, "copy_paste.yaml")
	result, err := Run(scenario)
	require.NoError(t, err)

	snap := Snapshot(result)
	_, hasFirst := snap.WeightArrays["csk_00"]
	_, hasSecond := snap.WeightArrays["csk_01"]
	assert.True(t, hasFirst)
	assert.True(t, hasSecond)
}
