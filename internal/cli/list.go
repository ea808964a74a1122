package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/pybuild/internal/store"
	"github.com/roach88/pybuild/internal/target"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Database string
	Snapshot string // snapshot id; empty means latest
	Kind     string // optional kind filter
}

// ListResult is the JSON payload of the list command.
type ListResult struct {
	Snapshot store.Snapshot `json:"snapshot"`
	Targets  []TargetView   `json:"targets"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the targets of a catalog snapshot",
		Long: `List the targets recorded by pybuild index, ordered by address.

Without --snapshot the most recent snapshot is used.

Example:
  pybuild list --db ./pybuild.db
  pybuild list --db ./pybuild.db --kind python_thrift_library`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Snapshot, "snapshot", "", "snapshot id (default: latest)")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "only list targets of this kind")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.Kind != "" && !target.ValidKinds[target.Kind(opts.Kind)] {
		return outputCompileError(formatter, ErrCodeGeneric, fmt.Sprintf("unknown target kind %q", opts.Kind), nil)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return outputCompileError(formatter, ErrCodeStoreFailed, fmt.Sprintf("opening database: %v", err), nil)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var snap store.Snapshot
	if opts.Snapshot != "" {
		snap, err = st.ReadSnapshot(ctx, opts.Snapshot)
	} else {
		snap, err = st.LatestSnapshot(ctx)
	}
	if errors.Is(err, store.ErrNotFound) {
		return outputCompileError(formatter, ErrCodeNotFound, err.Error(), nil)
	}
	if err != nil {
		return outputCompileError(formatter, ErrCodeStoreFailed, err.Error(), nil)
	}
	formatter.VerboseLog("Reading snapshot %s (seq %d)", snap.ID, snap.Seq)

	var targets []*target.Target
	if opts.Kind != "" {
		targets, err = st.ListTargetsByKind(ctx, snap.ID, target.Kind(opts.Kind))
	} else {
		targets, err = st.ListTargets(ctx, snap.ID)
	}
	if err != nil {
		return outputCompileError(formatter, ErrCodeStoreFailed, err.Error(), nil)
	}

	result := ListResult{Snapshot: snap, Targets: make([]TargetView, 0, len(targets))}
	for _, t := range targets {
		view, err := NewTargetView(t)
		if err != nil {
			return outputCompileError(formatter, ErrCodeGeneric, err.Error(), nil)
		}
		result.Targets = append(result.Targets, view)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "Snapshot %s (seq %d): %d target(s)\n\n", snap.ID, snap.Seq, len(result.Targets))
	for i, t := range targets {
		writeTargetText(formatter.Writer, t, result.Targets[i].Fingerprint)
		fmt.Fprintln(formatter.Writer)
	}
	return nil
}
