package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/pybuild/internal/target"
)

// TargetView is the output form of one target: its declaration plus
// fingerprint.
type TargetView struct {
	Address     string             `json:"address"`
	Fingerprint string             `json:"fingerprint"`
	Declaration target.Declaration `json:"declaration"`
}

// NewTargetView builds the output form of t.
func NewTargetView(t *target.Target) (TargetView, error) {
	fp, err := t.Fingerprint()
	if err != nil {
		return TargetView{}, err
	}
	return TargetView{
		Address:     t.Address().String(),
		Fingerprint: fp,
		Declaration: t.Declaration(),
	}, nil
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <build-root> <address>",
		Short: "Show one target and its fingerprint",
		Long: `Load the BUILD files under a build root and print one target.

The address uses the usual forms: path/to:name, //path/to:name,
//:name for the root, or path/to for the target named after its
directory.

Example:
  pybuild show . src/thrift/svc:svc
  pybuild show --format json . //:thrift_lib`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(rootOpts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runShow(opts *RootOptions, root, ref string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	addr, err := target.ParseAddress("", ref)
	if err != nil {
		return outputCompileError(formatter, ErrCodeNotFound, err.Error(), nil)
	}

	loadResult, loadErrors := LoadTargets(root, LoadModeCollectAll)
	if loadResult == nil && len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return outputCompileError(formatter, loadErr.Code, loadErr.Message, nil)
		}
		return outputCompileError(formatter, ErrCodeGeneric, loadErrors[0].Error(), nil)
	}

	var found *target.Target
	for _, t := range loadResult.Targets {
		if t.Address() == addr {
			found = t
			break
		}
	}
	if found == nil {
		// A broken BUILD file may be the reason the target is missing.
		if len(loadErrors) > 0 {
			return outputCompileErrors(formatter, loadErrors)
		}
		return outputCompileError(formatter, ErrCodeNotFound, fmt.Sprintf("target %s not found in %s", addr, root), nil)
	}
	for _, err := range loadErrors {
		formatter.VerboseLog("Ignoring load error: %v", err)
	}

	view, err := NewTargetView(found)
	if err != nil {
		return outputCompileError(formatter, ErrCodeGeneric, fmt.Sprintf("fingerprint %s: %v", addr, err), nil)
	}

	if formatter.Format == "json" {
		return formatter.Success(view)
	}

	writeTargetText(formatter.Writer, found, view.Fingerprint)
	return nil
}

// writeTargetText prints a target in the human-readable layout shared by
// show and list.
func writeTargetText(w io.Writer, t *target.Target, fingerprint string) {
	fmt.Fprintln(w, t)
	fmt.Fprintf(w, "  fingerprint:    %s\n", fingerprint)
	fmt.Fprintf(w, "  sources:        %s\n", joinOrNone(t.Sources()))
	fmt.Fprintf(w, "  resources:      %s\n", joinOrNone(t.Resources()))

	deps := make([]string, 0, len(t.Dependencies()))
	for _, d := range t.Dependencies() {
		deps = append(deps, d.String())
	}
	fmt.Fprintf(w, "  dependencies:   %s\n", joinOrNone(deps))

	if _, ok := t.Thrift(); ok {
		v := t.ThriftVersion()
		if v == "" {
			v = "(default)"
		}
		fmt.Fprintf(w, "  thrift_version: %s\n", v)
	}
	if p := t.Provides(); p != nil {
		fmt.Fprintf(w, "  provides:       %s %s\n", p.Name, p.Version)
	}
	if ex := t.Exclusives(); ex != nil {
		keys := make([]string, 0, len(ex))
		for k := range ex {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, k+"="+ex[k])
		}
		fmt.Fprintf(w, "  exclusives:     %s\n", joinOrNone(pairs))
	}
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}
