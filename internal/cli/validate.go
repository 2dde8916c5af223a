package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ValidationResult holds validation results for JSON output.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Targets  int      `json:"targets"`
	Drivers  int      `json:"drivers"`
	Warnings []string `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <document.cue>",
		Short: "Validate a rig document without building it",
		Long: `Validate a CUE rig document: schema decoding, range constraints,
and enum fields. Reports non-fatal warnings such as quaternion drivers
with a variable count other than four.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	doc, loadErr := LoadDocument(path)
	if loadErr != nil {
		_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
		return NewExitError(exitCodeFor(loadErr), loadErr.Error())
	}

	result := ValidationResult{Valid: true, Targets: len(doc.Targets)}
	for _, t := range doc.Targets {
		result.Drivers += len(t.Drivers)
	}
	for _, w := range doc.Warnings() {
		result.Warnings = append(result.Warnings, w.String())
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ %s: %d target(s), %d driver(s)\n", path, result.Targets, result.Drivers)
	for _, w := range result.Warnings {
		fmt.Fprintf(formatter.Writer, "  warning: %s\n", w)
	}
	return nil
}

// exitCodeFor maps load errors onto exit codes: malformed documents are
// validation failures, everything else is a command error.
func exitCodeFor(err *LoadError) int {
	switch err.Code {
	case ErrCodeCompileFailed, ErrCodeInvalidDoc:
		return ExitFailure
	default:
		return ExitCommandError
	}
}
