package target

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPythonThriftLibraryScenario(t *testing.T) {
	tgt, err := NewPythonThriftLibrary("thrift_lib", ThriftLibraryOptions{
		Sources:       []string{"svc.thrift"},
		ThriftVersion: "0.9",
	})
	require.NoError(t, err)

	assert.Equal(t, "thrift_lib", tgt.Name())
	assert.Equal(t, []string{"svc.thrift"}, tgt.Sources())
	assert.Equal(t, "0.9", tgt.ThriftVersion())
	assert.Empty(t, tgt.Resources())
	assert.Empty(t, tgt.Dependencies())
	assert.Nil(t, tgt.Provides())
	assert.Nil(t, tgt.Exclusives())
	assert.Equal(t, KindPythonThriftLibrary, tgt.Kind())
}

func TestNewPythonThriftLibraryBare(t *testing.T) {
	tgt, err := NewPythonThriftLibrary("bare", ThriftLibraryOptions{})
	require.NoError(t, err)

	assert.Equal(t, "bare", tgt.Name())
	assert.Equal(t, "", tgt.SpecPath())
	assert.NotNil(t, tgt.Sources())
	assert.Empty(t, tgt.Sources())
	assert.NotNil(t, tgt.Resources())
	assert.Empty(t, tgt.Resources())
	assert.NotNil(t, tgt.Dependencies())
	assert.Empty(t, tgt.Dependencies())
	assert.Equal(t, "", tgt.ThriftVersion())
	assert.Nil(t, tgt.Provides())
	assert.Nil(t, tgt.Exclusives())
}

func TestNewPythonThriftLibraryPreservesOrder(t *testing.T) {
	sources := []string{"z.thrift", "a.thrift", "m/b.thrift", "a.thrift"}
	resources := []string{"keys/pub.pem", "templates/base.mustache"}

	tgt, err := NewPythonThriftLibrary("ordered", ThriftLibraryOptions{
		Common:  Common{Resources: resources},
		Sources: sources,
	})
	require.NoError(t, err)

	assert.Equal(t, sources, tgt.Sources())
	assert.Equal(t, resources, tgt.Resources())
}

func TestNewPythonThriftLibraryCopiesInputs(t *testing.T) {
	sources := []string{"svc.thrift"}
	exclusives := map[string]string{"thrift": "0.9"}
	provides := &Artifact{Name: "svc", Metadata: map[string]string{"license": "Apache-2.0"}}

	tgt, err := NewPythonThriftLibrary("svc", ThriftLibraryOptions{
		Common:  Common{Exclusives: exclusives, Provides: provides},
		Sources: sources,
	})
	require.NoError(t, err)

	sources[0] = "mutated.thrift"
	exclusives["thrift"] = "0.5"
	provides.Metadata["license"] = "MIT"

	assert.Equal(t, []string{"svc.thrift"}, tgt.Sources())
	assert.Equal(t, map[string]string{"thrift": "0.9"}, tgt.Exclusives())
	assert.Equal(t, "Apache-2.0", tgt.Provides().Metadata["license"])

	// Mutating accessor results must not leak back either.
	tgt.Sources()[0] = "again.thrift"
	tgt.Exclusives()["thrift"] = "0.1"
	tgt.Provides().Name = "other"
	assert.Equal(t, []string{"svc.thrift"}, tgt.Sources())
	assert.Equal(t, "0.9", tgt.Exclusives()["thrift"])
	assert.Equal(t, "svc", tgt.Provides().Name)
}

func TestNewPythonThriftLibraryEmptyExclusivesPresent(t *testing.T) {
	tgt, err := NewPythonThriftLibrary("svc", ThriftLibraryOptions{
		Common: Common{Exclusives: map[string]string{}},
	})
	require.NoError(t, err)

	assert.NotNil(t, tgt.Exclusives())
	assert.Empty(t, tgt.Exclusives())
}

func TestNewPythonThriftLibraryInvalidName(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"colon", "a:b"},
		{"slash", "a/b"},
		{"space", "thrift lib"},
		{"tab", "thrift\tlib"},
		{"dot", "."},
		{"dot dot", ".."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPythonThriftLibrary(tt.input, ThriftLibraryOptions{})
			require.Error(t, err)
			assert.True(t, IsInvalidArgument(err))

			var ie *InvalidArgumentError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, "name", ie.Field)
		})
	}
}

func TestNewPythonThriftLibraryInvalidSpecPath(t *testing.T) {
	for _, p := range []string{"/abs/path", "../outside", "a/../../b", "a:b"} {
		_, err := NewPythonThriftLibrary("svc", ThriftLibraryOptions{Common: Common{SpecPath: p}})
		require.Error(t, err, p)

		var ie *InvalidArgumentError
		require.ErrorAs(t, err, &ie)
		assert.Equal(t, "spec_path", ie.Field)
	}
}

func TestNewPythonThriftLibraryInvalidDependency(t *testing.T) {
	tests := []struct {
		name  string
		dep   Dependency
		field string
	}{
		{"empty requirement", RequirementDependency(""), "dependency"},
		{"blank requirement", RequirementDependency("  "), "dependency"},
		{"zero address", TargetDependency(Address{}), "name"},
		{"dot name", TargetDependency(Address{SpecPath: "src", Name: ".."}), "name"},
		{"escaping spec path", TargetDependency(Address{SpecPath: "../x", Name: "lib"}), "spec_path"},
		{"unknown kind", Dependency{Kind: "egg"}, "dependency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPythonThriftLibrary("svc", ThriftLibraryOptions{
				Common: Common{Dependencies: []Dependency{tt.dep}},
			})
			var ie *InvalidArgumentError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, tt.field, ie.Field)
		})
	}
}

func TestNewPythonThriftLibraryNormalizesDependencies(t *testing.T) {
	tests := []struct {
		name string
		dep  Dependency
		want Dependency
	}{
		{"trimmed requirement", RequirementDependency(" thrift "), RequirementDependency("thrift")},
		{"cleaned spec path", TargetDependency(Address{SpecPath: "a/../b", Name: "x"}), TargetDependency(Address{SpecPath: "b", Name: "x"})},
		{"dot spec path", TargetDependency(Address{SpecPath: ".", Name: "x"}), TargetDependency(Address{Name: "x"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tgt, err := NewPythonThriftLibrary("svc", ThriftLibraryOptions{
				Common: Common{Dependencies: []Dependency{tt.dep}},
			})
			require.NoError(t, err)
			assert.Equal(t, []Dependency{tt.want}, tgt.Dependencies())

			rebuilt, err := FromDeclaration(tgt.Declaration())
			require.NoError(t, err)
			assert.Equal(t, tgt.MustFingerprint(), rebuilt.MustFingerprint())
		})
	}
}

func TestNewPythonThriftLibraryDoesNotValidateThriftFields(t *testing.T) {
	tgt, err := NewPythonThriftLibrary("svc", ThriftLibraryOptions{
		Common: Common{
			Provides:   &Artifact{},
			Exclusives: map[string]string{"": ""},
		},
		Sources:       []string{"does/not/exist.thrift"},
		ThriftVersion: "not a version!",
	})
	require.NoError(t, err)
	assert.Equal(t, "not a version!", tgt.ThriftVersion())
}

func TestSameNameDifferentExclusives(t *testing.T) {
	a, err := NewPythonThriftLibrary("svc", ThriftLibraryOptions{
		Common: Common{Exclusives: map[string]string{"thrift": "0.5"}},
	})
	require.NoError(t, err)
	b, err := NewPythonThriftLibrary("svc", ThriftLibraryOptions{
		Common: Common{Exclusives: map[string]string{"thrift": "0.9"}},
	})
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.NotEqual(t, a.MustFingerprint(), b.MustFingerprint())
}

func TestSpecPathCleaned(t *testing.T) {
	tgt, err := NewPythonThriftLibrary("svc", ThriftLibraryOptions{Common: Common{SpecPath: "src/./thrift/"}})
	require.NoError(t, err)
	assert.Equal(t, "src/thrift", tgt.SpecPath())
	assert.Equal(t, Address{SpecPath: "src/thrift", Name: "svc"}, tgt.Address())

	root, err := NewPythonThriftLibrary("svc", ThriftLibraryOptions{Common: Common{SpecPath: "."}})
	require.NoError(t, err)
	assert.Equal(t, "", root.SpecPath())
}

func TestTargetString(t *testing.T) {
	tgt, err := NewPythonThriftLibrary("svc", ThriftLibraryOptions{Common: Common{SpecPath: "src/thrift"}})
	require.NoError(t, err)
	assert.Equal(t, "python_thrift_library(src/thrift:svc)", tgt.String())

	lib, err := NewPythonLibrary("util", PythonLibraryOptions{})
	require.NoError(t, err)
	assert.Equal(t, "python_library(:util)", lib.String())
}

func TestTargetEqual(t *testing.T) {
	a, _ := NewPythonThriftLibrary("svc", ThriftLibraryOptions{Common: Common{SpecPath: "src"}})
	b, _ := NewPythonLibrary("svc", PythonLibraryOptions{Common: Common{SpecPath: "src"}})
	c, _ := NewPythonThriftLibrary("svc", ThriftLibraryOptions{Common: Common{SpecPath: "other"}})

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))

	var nilTarget *Target
	assert.True(t, nilTarget.Equal(nil))
}

func TestThriftExtension(t *testing.T) {
	tgt, err := NewPythonThriftLibrary("svc", ThriftLibraryOptions{
		Sources:       []string{"svc.thrift"},
		ThriftVersion: "0.9",
	})
	require.NoError(t, err)

	ext, ok := tgt.Thrift()
	require.True(t, ok)
	assert.Equal(t, "0.9", ext.ThriftVersion)
	assert.Equal(t, []string{"svc.thrift"}, ext.Sources)

	ext.Sources[0] = "changed.thrift"
	assert.Equal(t, []string{"svc.thrift"}, tgt.Sources())

	lib, err := NewPythonLibrary("util", PythonLibraryOptions{Sources: []string{"util.py"}})
	require.NoError(t, err)
	_, ok = lib.Thrift()
	assert.False(t, ok)
	assert.Equal(t, "", lib.ThriftVersion())
	assert.IsType(t, PythonLibrary{}, lib.Extension())
}

func TestUnknownDependencyKindRejected(t *testing.T) {
	_, err := NewPythonThriftLibrary("svc", ThriftLibraryOptions{
		Common: Common{Dependencies: []Dependency{{Kind: "egg"}}},
	})
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))
}
