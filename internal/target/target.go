package target

import (
	"fmt"
	"maps"
	"slices"
)

// Kind names a target type as written in BUILD files.
type Kind string

const (
	KindPythonLibrary       Kind = "python_library"
	KindPythonThriftLibrary Kind = "python_thrift_library"
)

// ValidKinds defines the kinds a declaration may use.
var ValidKinds = map[Kind]bool{
	KindPythonLibrary:       true,
	KindPythonThriftLibrary: true,
}

// Extension is a sealed interface holding the kind-specific part of a target.
// Only PythonLibrary and ThriftLibrary implement it.
type Extension interface {
	kind() Kind
	sources() []string
}

// PythonLibrary is the extension for plain python_library targets.
type PythonLibrary struct {
	Sources []string
}

func (PythonLibrary) kind() Kind          { return KindPythonLibrary }
func (p PythonLibrary) sources() []string { return p.Sources }

// ThriftLibrary is the extension for python_thrift_library targets.
// Sources are Thrift IDL files. An empty ThriftVersion means the
// code generator picks its default toolchain.
type ThriftLibrary struct {
	Sources       []string
	ThriftVersion string
}

func (ThriftLibrary) kind() Kind          { return KindPythonThriftLibrary }
func (t ThriftLibrary) sources() []string { return t.Sources }

// Common holds the optional arguments shared by every target kind.
// The zero value of each field is its default:
//   - SpecPath: "" (the build root)
//   - Resources, Dependencies: empty
//   - Provides: nil (no artifact)
//   - Exclusives: nil (absent)
type Common struct {
	SpecPath     string
	Resources    []string
	Dependencies []Dependency
	Provides     *Artifact
	Exclusives   map[string]string
}

// ThriftLibraryOptions are the optional arguments of NewPythonThriftLibrary.
// Sources defaults to empty; ThriftVersion defaults to unset ("").
type ThriftLibraryOptions struct {
	Common
	Sources       []string
	ThriftVersion string
}

// PythonLibraryOptions are the optional arguments of NewPythonLibrary.
type PythonLibraryOptions struct {
	Common
	Sources []string
}

// Target is one declared build target.
// Construct with NewPythonThriftLibrary or NewPythonLibrary; the zero value
// is not a usable target.
type Target struct {
	address      Address
	resources    []string
	dependencies []Dependency
	provides     *Artifact
	exclusives   map[string]string
	ext          Extension
}

// NewPythonThriftLibrary declares a python_thrift_library target.
// It performs no I/O and does not inspect ThriftVersion, Provides or
// Exclusives. The only error is an *InvalidArgumentError from the shared
// name, spec path and dependency checks. Dependencies are stored in the
// normalized form ParseDependency would produce.
func NewPythonThriftLibrary(name string, opts ThriftLibraryOptions) (*Target, error) {
	return newTarget(name, opts.Common, ThriftLibrary{
		Sources:       cloneStrings(opts.Sources),
		ThriftVersion: opts.ThriftVersion,
	})
}

// NewPythonLibrary declares a python_library target.
func NewPythonLibrary(name string, opts PythonLibraryOptions) (*Target, error) {
	return newTarget(name, opts.Common, PythonLibrary{
		Sources: cloneStrings(opts.Sources),
	})
}

// newTarget is the shared initializer every kind delegates to.
func newTarget(name string, c Common, ext Extension) (*Target, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	specPath, err := cleanSpecPath(c.SpecPath)
	if err != nil {
		return nil, err
	}
	deps := make([]Dependency, len(c.Dependencies))
	for i, dep := range c.Dependencies {
		if deps[i], err = dep.normalize(); err != nil {
			return nil, err
		}
	}

	return &Target{
		address:      Address{SpecPath: specPath, Name: name},
		resources:    cloneStrings(c.Resources),
		dependencies: deps,
		provides:     c.Provides.clone(),
		exclusives:   maps.Clone(c.Exclusives),
		ext:          ext,
	}, nil
}

// cloneStrings copies s, mapping nil to an empty slice so accessors never
// have to distinguish "absent" from "empty" for ordered collections.
func cloneStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}

// Name returns the target name.
func (t *Target) Name() string { return t.address.Name }

// SpecPath returns the directory of the declaring BUILD file.
func (t *Target) SpecPath() string { return t.address.SpecPath }

// Address returns the target's identity within the build root.
func (t *Target) Address() Address { return t.address }

// Kind returns the target kind.
func (t *Target) Kind() Kind { return t.ext.kind() }

// Extension returns the kind-specific part of the target.
// The returned value is a copy.
func (t *Target) Extension() Extension {
	switch ext := t.ext.(type) {
	case ThriftLibrary:
		ext.Sources = slices.Clone(ext.Sources)
		return ext
	case PythonLibrary:
		ext.Sources = slices.Clone(ext.Sources)
		return ext
	}
	return t.ext
}

// Thrift returns the thrift extension when the target is a
// python_thrift_library.
func (t *Target) Thrift() (ThriftLibrary, bool) {
	ext, ok := t.Extension().(ThriftLibrary)
	return ext, ok
}

// Sources returns the declared source paths in declaration order.
func (t *Target) Sources() []string { return slices.Clone(t.ext.sources()) }

// Resources returns the declared resource paths in declaration order.
func (t *Target) Resources() []string { return slices.Clone(t.resources) }

// Dependencies returns the declared dependencies in declaration order.
func (t *Target) Dependencies() []Dependency {
	if t.dependencies == nil {
		return []Dependency{}
	}
	return slices.Clone(t.dependencies)
}

// ThriftVersion returns the requested thrift toolchain version, or "" when
// unset or when the target is not a thrift library.
func (t *Target) ThriftVersion() string {
	if ext, ok := t.ext.(ThriftLibrary); ok {
		return ext.ThriftVersion
	}
	return ""
}

// Provides returns a copy of the provided artifact, or nil when absent.
func (t *Target) Provides() *Artifact { return t.provides.clone() }

// Exclusives returns a copy of the exclusives tags, or nil when absent.
func (t *Target) Exclusives() map[string]string { return maps.Clone(t.exclusives) }

// Equal reports whether two targets have the same identity.
// Identity is the address; field contents are not compared.
func (t *Target) Equal(other *Target) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.address == other.address
}

// String returns e.g. "python_thrift_library(src/thrift:svc)".
func (t *Target) String() string {
	return fmt.Sprintf("%s(%s)", t.Kind(), t.address)
}
