package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/pybuild/internal/compiler"
	"github.com/roach88/pybuild/internal/target"
)

// BUILD file names recognized by the loader, in the order they are read
// within one directory.
var BuildFileNames = []string{"BUILD.cue", "BUILD.yaml", "BUILD.yml"}

// LoadMode controls how errors are handled during declaration loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the targets loaded from a build root.
type LoadResult struct {
	Root      string
	Targets   []*target.Target
	Files     []string // BUILD files read, relative to Root
	FileCount int
}

// LoadError represents an error that occurred during declaration loading.
type LoadError struct {
	Code    string
	Message string
	File    string
	Line    int
}

func (e *LoadError) Error() string {
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s: %s", e.File, e.Line, e.Code, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("%s: %s: %s", e.File, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadTargets finds every BUILD file under root and compiles its targets.
// The spec path of each target is the BUILD file's directory relative to
// root, slash-separated; the root itself has the empty spec path.
//
// A nil result means the root could not be scanned at all.
func LoadTargets(root string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(root)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("build root not found: %s", root)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing build root: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", root)}}
	}

	files, err := FindBuildFiles(root)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning build root: %v", err)}}
	}
	if len(files) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no BUILD files found in %s", root)}}
	}

	result := &LoadResult{Root: root, FileCount: len(files)}
	ctx := cuecontext.New()

	var errs []error
	for _, rel := range files {
		result.Files = append(result.Files, rel)

		specPath := filepath.ToSlash(filepath.Dir(rel))
		if specPath == "." {
			specPath = ""
		}

		data, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			errs = append(errs, &LoadError{Code: ErrCodeLoadFailed, Message: err.Error(), File: rel})
			if mode == LoadModeFailFast {
				return result, errs
			}
			continue
		}

		var targets []*target.Target
		var fileErrs []error
		if filepath.Ext(rel) == ".cue" {
			v := ctx.CompileBytes(data, cue.Filename(rel))
			targets, fileErrs = compiler.CompileFile(v, specPath)
		} else {
			targets, fileErrs = compiler.CompileYAML(data, rel, specPath)
		}

		result.Targets = append(result.Targets, targets...)
		for _, fe := range fileErrs {
			errs = append(errs, convertCompileError(fe, rel))
			if mode == LoadModeFailFast {
				return result, errs
			}
		}
	}

	return result, errs
}

// FindBuildFiles walks root and returns the paths of all BUILD files,
// relative to root and sorted. Directories starting with a dot are skipped.
func FindBuildFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !isBuildFile(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	sort.Strings(files)
	return files, err
}

func isBuildFile(name string) bool {
	for _, n := range BuildFileNames {
		if n == name {
			return true
		}
	}
	return false
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, file string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		f, line := compileErr.Position()
		if f == "" {
			f = file
		}
		return &LoadError{
			Code:    compiler.CodeForField(compileErr.Field),
			Message: compileErr.Message,
			File:    f,
			Line:    line,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: err.Error(),
		File:    file,
	}
}

// Error code constants - unified across all CLI commands.
// Declaration codes (E1xx) come from the compiler package.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No BUILD files found
	ErrCodeLoadFailed  = "E004" // BUILD file read failed
	ErrCodeNotFound    = "E005" // Path or target not found
	ErrCodeStoreFailed = "E006" // Catalog open/read/write failed
	ErrCodeWriteFailed = "E007" // File write error
)
