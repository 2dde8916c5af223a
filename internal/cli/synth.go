package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/poserig/combokeys/internal/compiler"
	"github.com/poserig/combokeys/internal/rig"
	"github.com/poserig/combokeys/internal/scene"
)

// SynthResult describes every channel the engine synthesized for a
// document.
type SynthResult struct {
	Targets []SynthTarget `json:"targets"`
}

// SynthTarget is one target's synthesized state.
type SynthTarget struct {
	Name       string        `json:"name"`
	Valid      bool          `json:"valid"`
	Mode       string        `json:"mode"`
	Goal       float64       `json:"goal"`
	Radius     float64       `json:"radius"`
	Clamp      bool          `json:"clamp"`
	Mute       bool          `json:"mute"`
	DriverType string        `json:"driver_type,omitempty"`
	Expression string        `json:"expression,omitempty"`
	Drivers    []SynthDriver `json:"drivers"`
}

// SynthDriver is one driver's synthesized state.
type SynthDriver struct {
	Name       string  `json:"name"`
	Metric     string  `json:"metric"`
	Precision  int     `json:"precision"`
	ArrayIndex int     `json:"array_index"`
	Variables  int     `json:"variables"`
	Expression string  `json:"expression"`
	Anchor     float64 `json:"anchor"`
}

// NewSynthCommand creates the synth command.
func NewSynthCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "synth <document.cue>",
		Short: "Build a document and show the synthesized channels",
		Long: `Build a rig document and print every synthesized channel: driver
response curves with their distance expressions, and the combination
channel of each target.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSynth(rootOpts, args[0], cmd)
		},
	}
}

func runSynth(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	doc, loadErr := LoadDocument(path)
	if loadErr != nil {
		_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
		return NewExitError(exitCodeFor(loadErr), loadErr.Error())
	}

	sc, m := compiler.Build(doc)
	result := synthResult(sc, m)

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	for _, t := range result.Targets {
		marker := "✓"
		if !t.Valid {
			marker = "✗"
		}
		fmt.Fprintf(formatter.Writer, "%s %s  mode=%s goal=%g radius=%g clamp=%v\n",
			marker, t.Name, t.Mode, t.Goal, t.Radius, t.Clamp)
		if t.Expression != "" {
			fmt.Fprintf(formatter.Writer, "    combination: %s\n", t.Expression)
		} else if t.DriverType != "" {
			fmt.Fprintf(formatter.Writer, "    combination: native %s\n", t.DriverType)
		}
		for _, d := range t.Drivers {
			fmt.Fprintf(formatter.Writer, "    [%d] %s  metric=%s precision=%d anchor=%g\n",
				d.ArrayIndex, d.Name, d.Metric, d.Precision, d.Anchor)
			fmt.Fprintf(formatter.Writer, "        %s\n", d.Expression)
		}
	}
	return nil
}

func synthResult(sc *scene.Scene, m *rig.Manager) SynthResult {
	var result SynthResult
	for _, t := range m.Targets() {
		st := SynthTarget{
			Name:    t.Name(),
			Valid:   t.IsValid(),
			Mode:    string(t.Mode()),
			Goal:    t.Goal(),
			Radius:  t.Radius(),
			Clamp:   t.Clamp(),
			Mute:    t.Mute(),
			Drivers: []SynthDriver{},
		}

		if ch, ok := sc.Channel(rig.ChannelKey{Path: t.DataPath(), Index: -1}); ok && ch.HasDriver {
			st.DriverType = string(ch.Driver.Type)
			st.Expression = ch.Driver.Expression
		}

		for _, d := range t.Drivers() {
			sd := SynthDriver{
				Name:       d.Name(),
				Metric:     string(d.Metric()),
				Precision:  d.Precision(),
				ArrayIndex: d.ArrayIndex(),
				Variables:  len(d.Variables()),
				Anchor:     d.Distance(),
			}
			key := rig.ChannelKey{Path: rig.WeightArrayPath(t.Identifier()), Index: d.ArrayIndex()}
			if ch, ok := sc.Channel(key); ok && ch.HasDriver {
				sd.Expression = ch.Driver.Expression
			}
			st.Drivers = append(st.Drivers, sd)
		}
		result.Targets = append(result.Targets, st)
	}
	return result
}
