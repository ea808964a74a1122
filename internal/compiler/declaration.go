package compiler

import (
	"errors"
	"fmt"
	"slices"

	"cuelang.org/go/cue"

	"github.com/roach88/pybuild/internal/target"
)

// Fields accepted by every kind, plus the thrift-only thrift_version.
var (
	commonFields = []string{"sources", "resources", "dependencies", "provides", "exclusives"}
	thriftFields = []string{"thrift_version"}
)

// allowedFields returns the declaration fields a kind accepts.
func allowedFields(kind target.Kind) []string {
	if kind == target.KindPythonThriftLibrary {
		return append(slices.Clone(commonFields), thriftFields...)
	}
	return commonFields
}

// CompileFile compiles every target declared in a BUILD.cue value.
// The value is a struct keyed by kind, then by target name:
//
//	python_thrift_library: svc: {
//		sources: ["svc.thrift"]
//		thrift_version: "0.9"
//	}
//
// All errors are collected; targets that compiled are returned alongside them.
func CompileFile(v cue.Value, specPath string) ([]*target.Target, []error) {
	if err := v.Err(); err != nil {
		return nil, []error{formatCUEError(err)}
	}

	iter, err := v.Fields()
	if err != nil {
		return nil, []error{formatCUEError(err)}
	}

	var targets []*target.Target
	var errs []error
	for iter.Next() {
		kind := target.Kind(iter.Label())
		if !target.ValidKinds[kind] {
			errs = append(errs, &CompileError{
				Field:   "kind",
				Message: fmt.Sprintf("unknown target kind %q", kind),
				Pos:     iter.Value().Pos(),
			})
			continue
		}

		targetIter, err := iter.Value().Fields()
		if err != nil {
			errs = append(errs, formatCUEError(err))
			continue
		}
		for targetIter.Next() {
			t, err := CompileTarget(kind, targetIter.Label(), targetIter.Value(), specPath)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			targets = append(targets, t)
		}
	}

	return targets, errs
}

// CompileTarget compiles one target body.
// Unknown fields are errors so a misspelled option never silently falls
// back to its default.
func CompileTarget(kind target.Kind, name string, v cue.Value, specPath string) (*target.Target, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if v.IncompleteKind() != cue.StructKind {
		return nil, &CompileError{
			Field:   "type",
			Message: fmt.Sprintf("target %q must be a struct", name),
			Pos:     v.Pos(),
		}
	}

	allowed := allowedFields(kind)
	fieldIter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for fieldIter.Next() {
		if !slices.Contains(allowed, fieldIter.Label()) {
			return nil, &CompileError{
				Field:   "field",
				Message: fmt.Sprintf("unknown field %q for %s", fieldIter.Label(), kind),
				Pos:     fieldIter.Value().Pos(),
			}
		}
	}

	decl := target.Declaration{
		Kind:     kind,
		SpecPath: specPath,
		Name:     name,
	}

	if decl.Sources, err = optionalStringList(v, "sources"); err != nil {
		return nil, err
	}
	if decl.Resources, err = optionalStringList(v, "resources"); err != nil {
		return nil, err
	}
	if decl.Dependencies, err = optionalStringList(v, "dependencies"); err != nil {
		return nil, err
	}
	if decl.ThriftVersion, err = optionalString(v, "thrift_version"); err != nil {
		return nil, err
	}
	if decl.Provides, err = parseProvides(v); err != nil {
		return nil, err
	}

	exclVal := v.LookupPath(cue.ParsePath("exclusives"))
	if exclVal.Exists() {
		excl, err := stringMap(exclVal)
		if err != nil {
			return nil, err
		}
		decl.Exclusives = excl
	}

	t, err := target.FromDeclaration(decl)
	if err != nil {
		return nil, declarationError(err, v)
	}
	return t, nil
}

// declarationError attaches the target's position to constructor errors.
func declarationError(err error, v cue.Value) error {
	var ie *target.InvalidArgumentError
	if errors.As(err, &ie) {
		return &CompileError{
			Field:   ie.Field,
			Message: ie.Error(),
			Pos:     v.Pos(),
		}
	}
	return &CompileError{Field: "target", Message: err.Error(), Pos: v.Pos()}
}

// parseProvides accepts either an artifact name or a struct:
//
//	provides: "svc-thrift"
//	provides: { name: "svc-thrift", version: "1.2.0", metadata: { license: "Apache-2.0" } }
func parseProvides(v cue.Value) (*target.Artifact, error) {
	pv := v.LookupPath(cue.ParsePath("provides"))
	if !pv.Exists() {
		return nil, nil
	}

	if name, err := pv.String(); err == nil {
		return &target.Artifact{Name: name}, nil
	}

	if pv.IncompleteKind() != cue.StructKind {
		return nil, &CompileError{
			Field:   "provides",
			Message: "provides must be a string or a struct with a name field",
			Pos:     pv.Pos(),
		}
	}

	art := &target.Artifact{}
	var err error
	if art.Name, err = optionalString(pv, "name"); err != nil {
		return nil, err
	}
	if art.Version, err = optionalString(pv, "version"); err != nil {
		return nil, err
	}
	metaVal := pv.LookupPath(cue.ParsePath("metadata"))
	if metaVal.Exists() {
		if art.Metadata, err = stringMap(metaVal); err != nil {
			return nil, err
		}
	}
	return art, nil
}

// optionalString returns the string at field, or "" when absent.
func optionalString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", &CompileError{
			Field:   "type",
			Message: fmt.Sprintf("%s must be a string", field),
			Pos:     fv.Pos(),
		}
	}
	return s, nil
}

// optionalStringList returns the list of strings at field, or nil when absent.
func optionalStringList(v cue.Value, field string) ([]string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return nil, nil
	}

	iter, err := fv.List()
	if err != nil {
		return nil, &CompileError{
			Field:   "type",
			Message: fmt.Sprintf("%s must be a list of strings", field),
			Pos:     fv.Pos(),
		}
	}

	out := []string{}
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{
				Field:   "type",
				Message: fmt.Sprintf("%s must be a list of strings", field),
				Pos:     iter.Value().Pos(),
			}
		}
		out = append(out, s)
	}
	return out, nil
}

// stringMap reads a struct of string values.
func stringMap(v cue.Value) (map[string]string, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, &CompileError{
			Field:   "type",
			Message: "expected a struct of strings",
			Pos:     v.Pos(),
		}
	}

	m := make(map[string]string)
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{
				Field:   "type",
				Message: fmt.Sprintf("value of %q must be a string", iter.Label()),
				Pos:     iter.Value().Pos(),
			}
		}
		m[iter.Label()] = s
	}
	return m, nil
}
