package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/pybuild/internal/compiler"
	"github.com/roach88/pybuild/internal/target"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompilationResult holds the compiled target declarations.
type CompilationResult struct {
	Targets []target.Declaration `json:"targets"`
}

// CompilationStats holds summary statistics.
type CompilationStats struct {
	FileCount         int
	TargetCount       int
	ThriftTargetCount int
	PythonTargetCount int
	TotalSources      int
	TotalDependencies int
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <build-root>",
		Short: "Compile BUILD files to target declarations",
		Long: `Compile the BUILD.cue and BUILD.yaml files under a build root.

Every declared target is constructed and checked, and the resulting
declarations are printed or written as JSON.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, root string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	// Use shared loader with collect-all mode
	loadResult, loadErrors := LoadTargets(root, LoadModeCollectAll)

	// Handle load errors (directory not found, no files, etc.)
	if loadResult == nil && len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return outputCompileError(formatter, loadErr.Code, loadErr.Message, nil)
		}
		return outputCompileError(formatter, ErrCodeGeneric, loadErrors[0].Error(), nil)
	}

	formatter.VerboseLog("Found %d BUILD file(s) in %s", loadResult.FileCount, root)
	for _, t := range loadResult.Targets {
		formatter.VerboseLog("Compiled %s", t)
	}

	errs := loadErrors
	for _, ve := range compiler.Validate(loadResult.Targets) {
		errs = append(errs, ve)
	}
	if len(errs) > 0 {
		return outputCompileErrors(formatter, errs)
	}

	result := &CompilationResult{Targets: make([]target.Declaration, 0, len(loadResult.Targets))}
	for _, t := range loadResult.Targets {
		result.Targets = append(result.Targets, t.Declaration())
	}

	stats := calculateStats(loadResult)

	// Write to file if --output specified
	if opts.Output != "" {
		if err := writeDeclarationsToFile(result, opts.Output); err != nil {
			return outputCompileError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
	}

	return outputCompileSuccess(formatter, loadResult.Targets, result, stats, opts.Output)
}

// calculateStats computes summary statistics from a load result.
func calculateStats(result *LoadResult) CompilationStats {
	stats := CompilationStats{
		FileCount:   result.FileCount,
		TargetCount: len(result.Targets),
	}

	for _, t := range result.Targets {
		switch t.Kind() {
		case target.KindPythonThriftLibrary:
			stats.ThriftTargetCount++
		case target.KindPythonLibrary:
			stats.PythonTargetCount++
		}
		stats.TotalSources += len(t.Sources())
		stats.TotalDependencies += len(t.Dependencies())
	}

	return stats
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, targets []*target.Target, result *CompilationResult, stats CompilationStats, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	// Human-readable text output
	fmt.Fprintf(formatter.Writer, "✓ Compiled %d target(s) from %d BUILD file(s)\n\n",
		stats.TargetCount, stats.FileCount)

	if len(targets) > 0 {
		fmt.Fprintln(formatter.Writer, "Targets:")
		for _, t := range targets {
			line := fmt.Sprintf("  %s: %d source(s), %d dependency(ies)",
				t, len(t.Sources()), len(t.Dependencies()))
			if v := t.ThriftVersion(); v != "" {
				line += ", thrift " + v
			}
			fmt.Fprintln(formatter.Writer, line)
		}
		fmt.Fprintln(formatter.Writer)
	}

	if outputFile != "" {
		fmt.Fprintf(formatter.Writer, "Wrote declarations to %s\n", outputFile)
	}

	return nil
}

// outputCompileError outputs a single compilation error.
func outputCompileError(formatter *OutputFormatter, code, message string, details interface{}) error {
	_ = formatter.Error(code, message, details)
	// Compilation errors are command-level errors (exit code 2)
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message), nil)
}

// outputCompileErrors outputs multiple compilation errors.
func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	if formatter.Format == "json" {
		// JSON format - use CLIResponse with first error
		cliErrors := make([]CLIError, len(errs))
		for i, err := range errs {
			code, message := parseCompileError(err)
			cliErrors[i] = CLIError{
				Code:    code,
				Message: message,
			}
		}

		if err := formatter.Failure(cliErrors[0], cliErrors); err != nil {
			return err
		}

		// Compilation errors are command-level errors (exit code 2)
		return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Compilation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		code, message := parseCompileError(err)
		var loadErr *LoadError
		if errors.As(err, &loadErr) && loadErr.File != "" {
			if loadErr.Line > 0 {
				fmt.Fprintf(formatter.Writer, "%s:%d\n", loadErr.File, loadErr.Line)
			} else {
				fmt.Fprintln(formatter.Writer, loadErr.File)
			}
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", code, message)
	}

	// Compilation errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
}

// parseCompileError extracts error code and message from an error.
func parseCompileError(err error) (string, string) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return compiler.CodeForField(compileErr.Field), compileErr.Message
	}
	var validationErr compiler.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Code, validationErr.Message
	}
	return ErrCodeGeneric, err.Error()
}

// writeDeclarationsToFile writes the compilation result to a file.
func writeDeclarationsToFile(result *CompilationResult, filename string) error {
	// Indented for readability; canonical JSON without indentation is
	// used only for fingerprints.
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling declarations: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}
