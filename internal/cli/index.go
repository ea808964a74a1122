package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/pybuild/internal/compiler"
	"github.com/roach88/pybuild/internal/store"
)

// IndexOptions holds flags for the index command.
type IndexOptions struct {
	*RootOptions
	Database string

	// IDGenerator allows overriding the snapshot id generator (for testing).
	// If nil, the store default (UUIDv7) is used.
	IDGenerator store.IDGenerator
}

// NewIndexCommand creates the index command.
func NewIndexCommand(rootOpts *RootOptions) *cobra.Command {
	return newIndexCommand(&IndexOptions{RootOptions: rootOpts})
}

func newIndexCommand(opts *IndexOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index <build-root>",
		Short: "Record a snapshot of the build root in the catalog",
		Long: `Compile and validate the BUILD files under a build root, then write
every target to the SQLite catalog as one snapshot.

The database is created if it doesn't exist. Nothing is written when
compilation or validation fails.

Example:
  pybuild index --db ./pybuild.db ./src
  pybuild index --db /tmp/catalog.db . --verbose`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runIndex(opts *IndexOptions, root string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	// Configure logging based on verbose flag
	logLevel := slog.LevelWarn
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	}))

	logger.Info("loading build root", "root", root)
	loadResult, loadErrors := LoadTargets(root, LoadModeCollectAll)
	if loadResult == nil || len(loadErrors) > 0 {
		if len(loadErrors) == 1 || loadResult == nil {
			code, message := parseCompileError(loadErrors[0])
			return outputCompileError(formatter, code, message, nil)
		}
		return outputCompileErrors(formatter, loadErrors)
	}
	logger.Info("build root loaded", "files", loadResult.FileCount, "targets", len(loadResult.Targets))

	if errs := compiler.Validate(loadResult.Targets); len(errs) > 0 {
		return outputValidationErrors(formatter, ValidationResult{
			TargetCount: len(loadResult.Targets),
			Errors:      errs,
		})
	}
	for _, w := range compiler.AnalyzeCycles(loadResult.Targets) {
		logger.Warn("dependency cycle", "path", w.Path)
	}

	// Open database (create if not exists)
	logger.Info("opening database", "path", opts.Database)
	st, err := store.Open(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeStoreFailed, fmt.Sprintf("opening database: %v", err), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()
	if opts.IDGenerator != nil {
		st.SetIDGenerator(opts.IDGenerator)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		absRoot = root
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	snap, err := st.WriteSnapshot(ctx, absRoot, loadResult.Targets)
	if err != nil {
		_ = formatter.Error(ErrCodeStoreFailed, fmt.Sprintf("writing snapshot: %v", err), nil)
		return WrapExitError(ExitCommandError, "failed to write snapshot", err)
	}
	logger.Info("snapshot written", "id", snap.ID, "seq", snap.Seq, "targets", snap.TargetCount)

	if formatter.Format == "json" {
		return formatter.Success(snap)
	}

	fmt.Fprintf(formatter.Writer, "✓ Indexed %d target(s)\n", snap.TargetCount)
	fmt.Fprintf(formatter.Writer, "  Snapshot: %s (seq %d)\n", snap.ID, snap.Seq)
	fmt.Fprintf(formatter.Writer, "  Database: %s\n", opts.Database)
	return nil
}
