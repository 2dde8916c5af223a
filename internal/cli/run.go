package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/poserig/combokeys/internal/harness"
)

// RunResult reports the outcome of one scenario run.
type RunResult struct {
	Scenario string   `json:"scenario"`
	Passed   bool     `json:"passed"`
	Failures []string `json:"failures,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a conformance scenario against a live rig",
		Long: `Load a YAML scenario, build its rig document, apply the scripted
steps, and check every assertion. Exits non-zero when any assertion
fails.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(rootOpts, args[0], cmd)
		},
	}
}

func runScenario(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		_ = formatter.Error(ErrCodeScenarioFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "loading scenario", err)
	}

	formatter.VerboseLog("scenario %q: %d step(s), %d assertion(s)",
		scenario.Name, len(scenario.Steps), len(scenario.Assertions))

	result, err := harness.Run(scenario)
	if err != nil {
		_ = formatter.Error(ErrCodeScenarioFailed, err.Error(), nil)
		return WrapExitError(ExitFailure, "running scenario", err)
	}

	report := RunResult{
		Scenario: scenario.Name,
		Passed:   result.Passed(),
		Failures: result.Failures,
	}

	if formatter.Format == "json" {
		if err := formatter.Success(report); err != nil {
			return err
		}
	} else if report.Passed {
		fmt.Fprintf(formatter.Writer, "✓ %s: %d assertion(s) passed\n", scenario.Name, len(scenario.Assertions))
	} else {
		fmt.Fprintf(formatter.Writer, "✗ %s: %d failure(s)\n", scenario.Name, len(report.Failures))
		for _, f := range report.Failures {
			fmt.Fprintf(formatter.Writer, "  %s\n", f)
		}
	}

	if !report.Passed {
		return NewExitError(ExitFailure, fmt.Sprintf("%d assertion(s) failed", len(report.Failures)))
	}
	return nil
}
