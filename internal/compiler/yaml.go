package compiler

import (
	"errors"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/pybuild/internal/target"
)

// yamlTarget is one entry of a BUILD.yaml targets list.
type yamlTarget struct {
	Type          string            `yaml:"type"`
	Name          string            `yaml:"name"`
	Sources       []string          `yaml:"sources"`
	Resources     []string          `yaml:"resources"`
	Dependencies  []string          `yaml:"dependencies"`
	ThriftVersion string            `yaml:"thrift_version"`
	Provides      *yamlArtifact     `yaml:"provides"`
	Exclusives    map[string]string `yaml:"exclusives"`
}

type yamlArtifact struct {
	Name     string            `yaml:"name"`
	Version  string            `yaml:"version"`
	Metadata map[string]string `yaml:"metadata"`
}

// UnmarshalYAML accepts either an artifact name or a mapping, matching
// the two forms BUILD.cue takes.
func (a *yamlArtifact) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		a.Name = node.Value
		return nil
	case yaml.MappingNode:
		type plain yamlArtifact
		return node.Decode((*plain)(a))
	}
	return &CompileError{
		Field:   "provides",
		Message: "provides must be a string or a mapping with a name field",
		Line:    node.Line,
	}
}

// CompileYAML compiles a BUILD.yaml document:
//
//	targets:
//	  - type: python_thrift_library
//	    name: svc
//	    sources: [svc.thrift]
//	    thrift_version: "0.9"
//
// Errors are collected per target and carry the file name and line.
func CompileYAML(data []byte, filename, specPath string) ([]*target.Target, []error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, []error{&CompileError{Field: "yaml", Message: err.Error(), File: filename}}
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, []error{&CompileError{Field: "yaml", Message: "document must be a mapping with a targets list", File: filename, Line: root.Line}}
	}

	var list *yaml.Node
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i]
		if key.Value != "targets" {
			return nil, []error{&CompileError{Field: "field", Message: fmt.Sprintf("unknown top-level field %q", key.Value), File: filename, Line: key.Line}}
		}
		list = root.Content[i+1]
	}
	if list == nil {
		return nil, nil
	}
	if list.Kind != yaml.SequenceNode {
		return nil, []error{&CompileError{Field: "type", Message: "targets must be a list", File: filename, Line: list.Line}}
	}

	var targets []*target.Target
	var errs []error
	for _, item := range list.Content {
		t, err := compileYAMLTarget(item, filename, specPath)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		targets = append(targets, t)
	}
	return targets, errs
}

func compileYAMLTarget(node *yaml.Node, filename, specPath string) (*target.Target, error) {
	posErr := func(field, msg string, line int) error {
		return &CompileError{Field: field, Message: msg, File: filename, Line: line}
	}

	if node.Kind != yaml.MappingNode {
		return nil, posErr("type", "target entry must be a mapping", node.Line)
	}

	var yt yamlTarget
	if err := node.Decode(&yt); err != nil {
		var ce *CompileError
		if errors.As(err, &ce) {
			return nil, posErr(ce.Field, ce.Message, ce.Line)
		}
		return nil, posErr("type", err.Error(), node.Line)
	}

	kind := target.Kind(yt.Type)
	if !target.ValidKinds[kind] {
		return nil, posErr("kind", fmt.Sprintf("unknown target kind %q", yt.Type), node.Line)
	}

	allowed := append([]string{"type", "name"}, allowedFields(kind)...)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		if !slices.Contains(allowed, key.Value) {
			return nil, posErr("field", fmt.Sprintf("unknown field %q for %s", key.Value, kind), key.Line)
		}
	}

	decl := target.Declaration{
		Kind:          kind,
		SpecPath:      specPath,
		Name:          yt.Name,
		Sources:       yt.Sources,
		Resources:     yt.Resources,
		Dependencies:  yt.Dependencies,
		ThriftVersion: yt.ThriftVersion,
		Exclusives:    yt.Exclusives,
	}
	if yt.Provides != nil {
		decl.Provides = &target.Artifact{
			Name:     yt.Provides.Name,
			Version:  yt.Provides.Version,
			Metadata: yt.Provides.Metadata,
		}
	}

	t, err := target.FromDeclaration(decl)
	if err != nil {
		var ie *target.InvalidArgumentError
		if errors.As(err, &ie) {
			return nil, posErr(ie.Field, ie.Error(), node.Line)
		}
		return nil, posErr("target", err.Error(), node.Line)
	}
	return t, nil
}
