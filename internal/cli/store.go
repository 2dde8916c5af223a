package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/poserig/combokeys/internal/compiler"
	"github.com/poserig/combokeys/internal/store"
)

// SaveResult reports a completed snapshot save.
type SaveResult struct {
	Name     string `json:"name"`
	Targets  int    `json:"targets"`
	Channels int    `json:"channels"`
}

// ListResult lists saved rig names.
type ListResult struct {
	Rigs []string `json:"rigs"`
}

// ShowResult summarizes one stored snapshot.
type ShowResult struct {
	Name      string             `json:"name"`
	SavedAt   string             `json:"saved_at"`
	Targets   int                `json:"targets"`
	Channels  []ShowChannel      `json:"channels"`
	ShapeKeys map[string]float64 `json:"shape_keys"`
}

// ShowChannel is one stored channel in a show listing.
type ShowChannel struct {
	Path       string `json:"path"`
	Index      int    `json:"index"`
	DriverType string `json:"driver_type,omitempty"`
	Expression string `json:"expression,omitempty"`
	Muted      bool   `json:"muted"`
}

// NewSaveCommand creates the save command.
func NewSaveCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath, name string

	cmd := &cobra.Command{
		Use:   "save <document.cue>",
		Short: "Build a document and save the rig snapshot to a database",
		Long: `Build a rig document and write the resulting snapshot (document,
synthesized channels, weight arrays, and shape keys) to a SQLite
database. Saving under an existing name replaces the previous
snapshot.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSave(rootOpts, args[0], dbPath, name, cmd)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "combokeys.db", "snapshot database path")
	cmd.Flags().StringVar(&name, "name", "", "snapshot name (defaults to the document basename)")

	return cmd
}

func runSave(opts *RootOptions, path, dbPath, name string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))

	doc, loadErr := LoadDocument(path)
	if loadErr != nil {
		_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
		return NewExitError(exitCodeFor(loadErr), loadErr.Error())
	}

	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), ".cue")
	}

	slog.Info("opening database", "path", dbPath)
	st, err := store.Open(dbPath)
	if err != nil {
		_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "opening store", err)
	}
	defer st.Close()

	sc, _ := compiler.Build(doc)
	slog.Debug("document built", "targets", len(doc.Targets), "channels", len(sc.ChannelKeys()))
	if err := st.SaveSnapshot(cmd.Context(), name, doc, sc); err != nil {
		_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "saving snapshot", err)
	}
	slog.Info("snapshot saved", "name", name)

	result := SaveResult{Name: name, Targets: len(doc.Targets), Channels: len(sc.ChannelKeys())}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ saved %q: %d target(s), %d channel(s)\n", result.Name, result.Targets, result.Channels)
	return nil
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List saved rig snapshots",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, dbPath, cmd)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "combokeys.db", "snapshot database path")

	return cmd
}

func runList(opts *RootOptions, dbPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	st, err := store.Open(dbPath)
	if err != nil {
		_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "opening store", err)
	}
	defer st.Close()

	names, err := st.List(cmd.Context())
	if err != nil {
		_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "listing snapshots", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(ListResult{Rigs: names})
	}
	if len(names) == 0 {
		fmt.Fprintln(formatter.Writer, "no saved rigs")
		return nil
	}
	for _, n := range names {
		fmt.Fprintln(formatter.Writer, n)
	}
	return nil
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:           "show <name>",
		Short:         "Show a saved rig snapshot",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(rootOpts, dbPath, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "combokeys.db", "snapshot database path")

	return cmd
}

func runShow(opts *RootOptions, dbPath, name string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	st, err := store.Open(dbPath)
	if err != nil {
		_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "opening store", err)
	}
	defer st.Close()

	snap, err := st.LoadSnapshot(cmd.Context(), name)
	if errors.Is(err, store.ErrNotFound) {
		msg := fmt.Sprintf("no saved rig %q", name)
		_ = formatter.Error(ErrCodeNotFound, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}
	if err != nil {
		_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "loading snapshot", err)
	}

	result := showResult(snap)
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "%s  saved %s\n", result.Name, result.SavedAt)
	fmt.Fprintf(formatter.Writer, "  %d target(s), %d channel(s)\n", result.Targets, len(result.Channels))
	for _, ch := range result.Channels {
		muted := ""
		if ch.Muted {
			muted = "  (muted)"
		}
		if ch.Expression != "" {
			fmt.Fprintf(formatter.Writer, "  %s[%d]: %s %s%s\n", ch.Path, ch.Index, ch.DriverType, ch.Expression, muted)
		} else {
			fmt.Fprintf(formatter.Writer, "  %s[%d]%s\n", ch.Path, ch.Index, muted)
		}
	}
	return nil
}

func showResult(snap *store.Snapshot) ShowResult {
	result := ShowResult{
		Name:      snap.Name,
		SavedAt:   snap.SavedAt,
		Targets:   len(snap.Document.Targets),
		Channels:  []ShowChannel{},
		ShapeKeys: snap.ShapeKeys,
	}
	for _, ch := range snap.Channels {
		result.Channels = append(result.Channels, ShowChannel{
			Path:       ch.Key.Path,
			Index:      ch.Key.Index,
			DriverType: string(ch.Driver.Type),
			Expression: ch.Driver.Expression,
			Muted:      ch.Muted,
		})
	}
	return result
}
