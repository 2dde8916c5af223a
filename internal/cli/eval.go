package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/poserig/combokeys/internal/compiler"
)

// EvalResult holds the evaluated shape key state for JSON output.
type EvalResult struct {
	ShapeKeys map[string]float64 `json:"shape_keys"`
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	var overrides []string

	cmd := &cobra.Command{
		Use:   "eval <document.cue>",
		Short: "Build a document, evaluate the drivers, and print shape keys",
		Long: `Build a rig document into a live scene, apply any --set shape key
overrides, run one driver evaluation pass, and print the resulting
shape key values.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(rootOpts, args[0], overrides, cmd)
		},
	}

	cmd.Flags().StringArrayVar(&overrides, "set", nil, "shape key override as name=value (repeatable)")

	return cmd
}

func runEval(opts *RootOptions, path string, overrides []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	doc, loadErr := LoadDocument(path)
	if loadErr != nil {
		_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
		return NewExitError(exitCodeFor(loadErr), loadErr.Error())
	}

	sc, _ := compiler.Build(doc)

	for _, o := range overrides {
		name, value, err := parseOverride(o)
		if err != nil {
			_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
			return NewExitError(ExitCommandError, err.Error())
		}
		sc.SetShapeKey(name, value)
	}

	formatter.VerboseLog("evaluating %d channel(s)", len(sc.ChannelKeys()))
	if err := sc.Evaluate(); err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitFailure, "evaluation failed", err)
	}

	result := EvalResult{ShapeKeys: map[string]float64{}}
	for _, name := range sc.ShapeKeys() {
		result.ShapeKeys[name] = sc.ShapeKey(name)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	for _, name := range sc.ShapeKeys() {
		fmt.Fprintf(formatter.Writer, "%s = %g\n", name, sc.ShapeKey(name))
	}
	return nil
}

// parseOverride splits a --set argument into its shape key name and
// value.
func parseOverride(s string) (string, float64, error) {
	name, raw, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return "", 0, fmt.Errorf("invalid --set %q: expected name=value", s)
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid --set %q: %v", s, err)
	}
	return name, value, nil
}
