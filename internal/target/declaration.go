package target

import (
	"fmt"
	"maps"
	"slices"
)

// Declaration is the serializable form of a Target.
// Dependencies use their textual form (see ParseDependency).
type Declaration struct {
	Kind          Kind              `json:"kind"`
	SpecPath      string            `json:"spec_path"`
	Name          string            `json:"name"`
	Sources       []string          `json:"sources"`
	Resources     []string          `json:"resources"`
	Dependencies  []string          `json:"dependencies"`
	ThriftVersion string            `json:"thrift_version,omitempty"`
	Provides      *Artifact         `json:"provides,omitempty"`
	Exclusives    map[string]string `json:"exclusives,omitempty"`
}

// Declaration returns the serializable form of t.
func (t *Target) Declaration() Declaration {
	deps := make([]string, len(t.dependencies))
	for i, d := range t.dependencies {
		deps[i] = d.String()
	}
	return Declaration{
		Kind:          t.Kind(),
		SpecPath:      t.address.SpecPath,
		Name:          t.address.Name,
		Sources:       t.Sources(),
		Resources:     t.Resources(),
		Dependencies:  deps,
		ThriftVersion: t.ThriftVersion(),
		Provides:      t.Provides(),
		Exclusives:    t.Exclusives(),
	}
}

// FromDeclaration rebuilds a Target, running the same constructor
// checks as a fresh declaration.
func FromDeclaration(d Declaration) (*Target, error) {
	deps := make([]Dependency, 0, len(d.Dependencies))
	for _, ref := range d.Dependencies {
		dep, err := ParseDependency(d.SpecPath, ref)
		if err != nil {
			return nil, fmt.Errorf("%s:%s: %w", d.SpecPath, d.Name, err)
		}
		deps = append(deps, dep)
	}

	common := Common{
		SpecPath:     d.SpecPath,
		Resources:    slices.Clone(d.Resources),
		Dependencies: deps,
		Provides:     d.Provides.clone(),
		Exclusives:   maps.Clone(d.Exclusives),
	}

	switch d.Kind {
	case KindPythonThriftLibrary:
		return NewPythonThriftLibrary(d.Name, ThriftLibraryOptions{
			Common:        common,
			Sources:       d.Sources,
			ThriftVersion: d.ThriftVersion,
		})
	case KindPythonLibrary:
		if d.ThriftVersion != "" {
			return nil, invalid("thrift_version", d.ThriftVersion, "only python_thrift_library targets take a thrift_version")
		}
		return NewPythonLibrary(d.Name, PythonLibraryOptions{
			Common:  common,
			Sources: d.Sources,
		})
	default:
		return nil, invalid("kind", string(d.Kind), "unknown target kind")
	}
}
