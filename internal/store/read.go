package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/pybuild/internal/target"
)

// LatestSnapshot returns the snapshot with the highest seq.
// Returns ErrNotFound if the catalog is empty.
func (s *Store) LatestSnapshot(ctx context.Context) (Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, root, target_count, tool_version, schema_version
		FROM snapshots
		ORDER BY seq DESC
		LIMIT 1
	`)
	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("latest snapshot: %w", ErrNotFound)
	}
	return snap, err
}

// ReadSnapshot returns a snapshot by id.
// Returns ErrNotFound if it does not exist.
func (s *Store) ReadSnapshot(ctx context.Context, id string) (Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, root, target_count, tool_version, schema_version
		FROM snapshots
		WHERE id = ?
	`, id)
	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("snapshot %s: %w", id, ErrNotFound)
	}
	return snap, err
}

// ListSnapshots returns all snapshots ordered by seq ascending.
// Returns an empty slice (not nil) if there are none.
func (s *Store) ListSnapshots(ctx context.Context) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, root, target_count, tool_version, schema_version
		FROM snapshots
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := []Snapshot{}
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return snapshots, nil
}

// ReadTarget returns one target of a snapshot.
// Returns ErrNotFound if the snapshot has no target at addr.
func (s *Store) ReadTarget(ctx context.Context, snapshotID string, addr target.Address) (*target.Target, error) {
	var decl, fp string
	err := s.db.QueryRowContext(ctx, `
		SELECT declaration, fingerprint
		FROM targets
		WHERE snapshot_id = ? AND address = ?
	`, snapshotID, addr.String()).Scan(&decl, &fp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("target %s in snapshot %s: %w", addr, snapshotID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read target: %w", err)
	}
	return unmarshalDeclaration(decl, fp)
}

// ListTargets returns every target of a snapshot ordered by address.
// Returns an empty slice (not nil) if the snapshot has no targets.
func (s *Store) ListTargets(ctx context.Context, snapshotID string) ([]*target.Target, error) {
	return s.listTargets(ctx, `
		SELECT declaration, fingerprint
		FROM targets
		WHERE snapshot_id = ?
		ORDER BY address COLLATE BINARY ASC
	`, snapshotID)
}

// ListTargetsByKind is like ListTargets restricted to one kind.
func (s *Store) ListTargetsByKind(ctx context.Context, snapshotID string, kind target.Kind) ([]*target.Target, error) {
	return s.listTargets(ctx, `
		SELECT declaration, fingerprint
		FROM targets
		WHERE snapshot_id = ? AND kind = ?
		ORDER BY address COLLATE BINARY ASC
	`, snapshotID, string(kind))
}

// FindByFingerprint returns the ids of snapshots holding a target with the
// given fingerprint, oldest first.
func (s *Store) FindByFingerprint(ctx context.Context, fingerprint string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.snapshot_id
		FROM targets t
		JOIN snapshots s ON s.id = t.snapshot_id
		WHERE t.fingerprint = ?
		ORDER BY s.seq ASC
	`, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("query fingerprint: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan snapshot id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fingerprint matches: %w", err)
	}
	return ids, nil
}

func (s *Store) listTargets(ctx context.Context, query string, args ...any) ([]*target.Target, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query targets: %w", err)
	}
	defer rows.Close()

	targets := []*target.Target{}
	for rows.Next() {
		var decl, fp string
		if err := rows.Scan(&decl, &fp); err != nil {
			return nil, fmt.Errorf("scan target: %w", err)
		}
		t, err := unmarshalDeclaration(decl, fp)
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate targets: %w", err)
	}
	return targets, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (Snapshot, error) {
	var snap Snapshot
	err := row.Scan(&snap.ID, &snap.Seq, &snap.Root, &snap.TargetCount, &snap.ToolVersion, &snap.SchemaVersion)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Snapshot{}, err
		}
		return Snapshot{}, fmt.Errorf("scan snapshot: %w", err)
	}
	return snap, nil
}
