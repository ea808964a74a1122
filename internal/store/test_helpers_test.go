package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/pybuild/internal/target"
)

// createTestStore creates a new store in a temp dir with fixed snapshot ids.
func createTestStore(t *testing.T, ids ...string) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	if len(ids) > 0 {
		s.SetIDGenerator(NewFixedGenerator(ids...))
	}
	return s
}

// createTestThrift creates a thrift target with a few populated fields.
func createTestThrift(t *testing.T, specPath, name, version string) *target.Target {
	t.Helper()
	tgt, err := target.NewPythonThriftLibrary(name, target.ThriftLibraryOptions{
		Common: target.Common{
			SpecPath:     specPath,
			Resources:    []string{"README.md"},
			Dependencies: []target.Dependency{target.RequirementDependency("thrift==" + version)},
			Exclusives:   map[string]string{"thrift": version},
		},
		Sources:       []string{name + ".thrift"},
		ThriftVersion: version,
	})
	require.NoError(t, err)
	return tgt
}

func createTestLibrary(t *testing.T, specPath, name string) *target.Target {
	t.Helper()
	tgt, err := target.NewPythonLibrary(name, target.PythonLibraryOptions{
		Common:  target.Common{SpecPath: specPath},
		Sources: []string{name + ".py"},
	})
	require.NoError(t, err)
	return tgt
}
