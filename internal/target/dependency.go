package target

import "strings"

// RequirementPrefix marks a dependency reference as an external package
// requirement rather than a target address.
const RequirementPrefix = "pip:"

// DependencyKind tags a Dependency.
type DependencyKind string

const (
	// DependencyTarget refers to another declared target.
	DependencyTarget DependencyKind = "target"

	// DependencyRequirement refers to an external package (egg, wheel, sdist).
	DependencyRequirement DependencyKind = "requirement"
)

// Dependency is a "depends-on" edge from a target to another target or
// to an external package requirement.
type Dependency struct {
	Kind        DependencyKind
	Address     Address // set when Kind == DependencyTarget
	Requirement string  // set when Kind == DependencyRequirement
}

// TargetDependency builds a dependency on another target.
func TargetDependency(addr Address) Dependency {
	return Dependency{Kind: DependencyTarget, Address: addr}
}

// RequirementDependency builds a dependency on an external package,
// e.g. RequirementDependency("thrift==0.9.1").
func RequirementDependency(requirement string) Dependency {
	return Dependency{Kind: DependencyRequirement, Requirement: requirement}
}

// ParseDependency parses the textual form used in BUILD files.
// "pip:<requirement>" is a requirement; anything else is an address
// resolved against relativeTo.
func ParseDependency(relativeTo, ref string) (Dependency, error) {
	if req, ok := strings.CutPrefix(ref, RequirementPrefix); ok {
		req = strings.TrimSpace(req)
		if req == "" {
			return Dependency{}, invalid("dependency", ref, "requirement is empty")
		}
		return RequirementDependency(req), nil
	}
	addr, err := ParseAddress(relativeTo, ref)
	if err != nil {
		return Dependency{}, err
	}
	return TargetDependency(addr), nil
}

// String renders the dependency in its textual form. Root addresses and
// addresses that would read as a requirement ("pip:name") are anchored
// with "//" so the text parses back to the same dependency from any spec
// path.
func (d Dependency) String() string {
	if d.Kind == DependencyRequirement {
		return RequirementPrefix + d.Requirement
	}
	s := d.Address.String()
	if d.Address.SpecPath == "" || strings.HasPrefix(s, RequirementPrefix) {
		return "//" + s
	}
	return s
}

// normalize applies the ParseDependency rules to a dependency built by
// hand, so its textual form parses back to an equal value.
func (d Dependency) normalize() (Dependency, error) {
	switch d.Kind {
	case DependencyRequirement:
		req := strings.TrimSpace(d.Requirement)
		if req == "" {
			return Dependency{}, invalid("dependency", d.Requirement, "requirement is empty")
		}
		return RequirementDependency(req), nil
	case DependencyTarget:
		specPath, err := cleanSpecPath(d.Address.SpecPath)
		if err != nil {
			return Dependency{}, err
		}
		if err := checkName(d.Address.Name); err != nil {
			return Dependency{}, err
		}
		return TargetDependency(Address{SpecPath: specPath, Name: d.Address.Name}), nil
	}
	return Dependency{}, invalid("dependency", string(d.Kind), "unknown dependency kind")
}
