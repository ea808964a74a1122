package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pybuild/internal/target"
)

func TestLatestSnapshot_Empty(t *testing.T) {
	s := createTestStore(t)

	_, err := s.LatestSnapshot(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := s.ListSnapshots(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestReadTarget_NotFound(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t, "s1")

	_, err := s.WriteSnapshot(ctx, "root", nil)
	require.NoError(t, err)

	_, err = s.ReadTarget(ctx, "s1", target.Address{SpecPath: "src", Name: "nope"})
	assert.ErrorIs(t, err, ErrNotFound)

	targets, err := s.ListTargets(ctx, "s1")
	require.NoError(t, err)
	assert.NotNil(t, targets)
	assert.Empty(t, targets)
}

func TestListTargetsByKind(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t, "s1")

	_, err := s.WriteSnapshot(ctx, "root", []*target.Target{
		createTestThrift(t, "b", "svc", "0.9"),
		createTestLibrary(t, "a", "util"),
		createTestThrift(t, "a", "svc", "0.9"),
	})
	require.NoError(t, err)

	thrift, err := s.ListTargetsByKind(ctx, "s1", target.KindPythonThriftLibrary)
	require.NoError(t, err)
	require.Len(t, thrift, 2)
	assert.Equal(t, "a:svc", thrift[0].Address().String())
	assert.Equal(t, "b:svc", thrift[1].Address().String())

	libs, err := s.ListTargetsByKind(ctx, "s1", target.KindPythonLibrary)
	require.NoError(t, err)
	require.Len(t, libs, 1)
}

func TestFindByFingerprint(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t, "s1", "s2", "s3")

	svc := createTestThrift(t, "src", "svc", "0.9")
	changed := createTestThrift(t, "src", "svc", "0.5")

	for _, set := range [][]*target.Target{{svc}, {changed}, {svc}} {
		_, err := s.WriteSnapshot(ctx, "root", set)
		require.NoError(t, err)
	}

	ids, err := s.FindByFingerprint(ctx, svc.MustFingerprint())
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s3"}, ids)

	ids, err = s.FindByFingerprint(ctx, "0000")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestReadTarget_FingerprintMismatch(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t, "s1")

	svc := createTestThrift(t, "src", "svc", "0.9")
	_, err := s.WriteSnapshot(ctx, "root", []*target.Target{svc})
	require.NoError(t, err)

	_, err = s.DB().Exec(`UPDATE targets SET fingerprint = 'tampered'`)
	require.NoError(t, err)

	_, err = s.ReadTarget(ctx, "s1", svc.Address())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fingerprint mismatch")
}
