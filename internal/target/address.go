package target

import (
	"path"
	"strings"
	"unicode"
)

// Address identifies a target within a build root.
// SpecPath is the directory of the declaring BUILD file, relative to the
// build root ("" for the root itself).
type Address struct {
	SpecPath string `json:"spec_path"`
	Name     string `json:"name"`
}

// String renders the address as "spec/path:name" (":name" at the root).
func (a Address) String() string {
	return a.SpecPath + ":" + a.Name
}

// ParseAddress parses a target reference.
//
// Accepted forms:
//
//	path/to:name   explicit spec path and name
//	:name          name in relativeTo
//	//path/to:name root-anchored (same as path/to:name)
//	//:name        name at the build root
//	path/to        name defaults to the last path element
func ParseAddress(relativeTo, ref string) (Address, error) {
	if strings.TrimSpace(ref) == "" {
		return Address{}, invalid("address", ref, "reference is empty")
	}

	anchored := strings.HasPrefix(ref, "//")
	body := strings.TrimPrefix(ref, "//")

	var specPath, name string
	if i := strings.LastIndex(body, ":"); i >= 0 {
		specPath, name = body[:i], body[i+1:]
		if specPath == "" && !anchored {
			specPath = relativeTo
		}
	} else {
		specPath = strings.TrimSuffix(body, "/")
		if specPath == "" {
			return Address{}, invalid("address", ref, "reference has neither a path nor a name")
		}
		name = path.Base(specPath)
	}

	cleaned, err := cleanSpecPath(specPath)
	if err != nil {
		return Address{}, err
	}
	if err := checkName(name); err != nil {
		return Address{}, err
	}
	return Address{SpecPath: cleaned, Name: name}, nil
}

// checkName enforces the only constraints placed on a target name.
func checkName(name string) error {
	if name == "" {
		return invalid("name", name, "name is required")
	}
	if strings.ContainsAny(name, ":/") {
		return invalid("name", name, "name must not contain ':' or '/'")
	}
	if name == "." || name == ".." {
		return invalid("name", name, "name must not be '.' or '..'")
	}
	if strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		return invalid("name", name, "name must not contain whitespace")
	}
	return nil
}

// cleanSpecPath normalizes a spec path and rejects ones escaping the root.
func cleanSpecPath(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	if strings.HasPrefix(p, "/") {
		return "", invalid("spec_path", p, "spec path must be relative to the build root")
	}
	if strings.Contains(p, ":") {
		return "", invalid("spec_path", p, "spec path must not contain ':'")
	}
	cleaned := path.Clean(p)
	if cleaned == "." {
		return "", nil
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", invalid("spec_path", p, "spec path must not leave the build root")
	}
	return cleaned, nil
}
