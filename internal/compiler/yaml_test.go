package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pybuild/internal/target"
)

func TestCompileYAML(t *testing.T) {
	data := []byte(`
targets:
  - type: python_thrift_library
    name: svc
    sources: [svc.thrift]
    thrift_version: "0.9"
    dependencies: [":base", "pip:thrift==0.9.1"]
    provides:
      name: svc-thrift
      version: "1.0"
    exclusives:
      thrift: "0.9"
  - type: python_library
    name: base
`)

	targets, errs := CompileYAML(data, "BUILD.yaml", "src/py")
	require.Empty(t, errs)
	require.Len(t, targets, 2)

	svc := targets[0]
	assert.Equal(t, target.Address{SpecPath: "src/py", Name: "svc"}, svc.Address())
	assert.Equal(t, []string{"svc.thrift"}, svc.Sources())
	assert.Equal(t, "0.9", svc.ThriftVersion())
	assert.Equal(t, []target.Dependency{
		target.TargetDependency(target.Address{SpecPath: "src/py", Name: "base"}),
		target.RequirementDependency("thrift==0.9.1"),
	}, svc.Dependencies())
	assert.Equal(t, "svc-thrift", svc.Provides().Name)
	assert.Equal(t, map[string]string{"thrift": "0.9"}, svc.Exclusives())

	base := targets[1]
	assert.Equal(t, target.KindPythonLibrary, base.Kind())
	assert.Empty(t, base.Sources())
	assert.Nil(t, base.Provides())
	assert.Nil(t, base.Exclusives())
}

func TestCompileYAMLErrors(t *testing.T) {
	data := []byte(`targets:
  - type: python_thrift_library
    name: ok
  - type: cc_library
    name: nope
  - type: python_thrift_library
    name: typo
    thrift_verison: "0.9"
  - type: python_thrift_library
`)

	targets, errs := CompileYAML(data, "BUILD.yaml", "")
	require.Len(t, targets, 1)
	require.Len(t, errs, 3)

	var ce *CompileError
	require.ErrorAs(t, errs[0], &ce)
	assert.Equal(t, "kind", ce.Field)
	assert.Equal(t, 4, ce.Line)

	require.ErrorAs(t, errs[1], &ce)
	assert.Equal(t, "field", ce.Field)
	assert.Equal(t, 8, ce.Line)

	require.ErrorAs(t, errs[2], &ce)
	assert.Equal(t, "name", ce.Field)
	assert.Equal(t, "BUILD.yaml", ce.File)
}

func TestCompileYAMLMalformed(t *testing.T) {
	_, errs := CompileYAML([]byte("targets: [\n"), "BUILD.yaml", "")
	require.Len(t, errs, 1)

	_, errs = CompileYAML([]byte("- a\n- b\n"), "BUILD.yaml", "")
	require.Len(t, errs, 1)

	_, errs = CompileYAML([]byte("rules: []\n"), "BUILD.yaml", "")
	require.Len(t, errs, 1)

	targets, errs := CompileYAML([]byte(""), "BUILD.yaml", "")
	assert.Empty(t, targets)
	assert.Empty(t, errs)
}

func TestCompileYAMLProvidesForms(t *testing.T) {
	data := []byte(`targets:
  - type: python_thrift_library
    name: short
    provides: svc-thrift
  - type: python_thrift_library
    name: long
    provides:
      name: svc-thrift
      version: "1.2.0"
  - type: python_thrift_library
    name: bad
    provides: [svc-thrift]
`)

	targets, errs := CompileYAML(data, "BUILD.yaml", "src/thrift")
	require.Len(t, targets, 2)
	require.Len(t, errs, 1)

	assert.Equal(t, &target.Artifact{Name: "svc-thrift"}, targets[0].Provides())
	assert.Equal(t, &target.Artifact{Name: "svc-thrift", Version: "1.2.0"}, targets[1].Provides())

	var ce *CompileError
	require.ErrorAs(t, errs[0], &ce)
	assert.Equal(t, "provides", ce.Field)
	assert.Equal(t, "BUILD.yaml", ce.File)
	assert.Equal(t, 13, ce.Line)
}
