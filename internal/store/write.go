package store

import (
	"context"
	"fmt"

	"github.com/roach88/pybuild/internal/target"
)

// Snapshot describes one catalog write of a loaded declaration set.
type Snapshot struct {
	ID            string `json:"id"`
	Seq           int64  `json:"seq"`
	Root          string `json:"root"`
	TargetCount   int    `json:"target_count"`
	ToolVersion   string `json:"tool_version"`
	SchemaVersion string `json:"schema_version"`
}

// WriteSnapshot stores all targets under a new snapshot in one transaction.
// The snapshot seq is one past the highest existing seq.
//
// Addresses must be unique within targets; a duplicate fails the whole
// write and nothing is stored.
func (s *Store) WriteSnapshot(ctx context.Context, root string, targets []*target.Target) (Snapshot, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("write snapshot: %w", err)
	}
	defer tx.Rollback()

	var lastSeq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM snapshots`).Scan(&lastSeq); err != nil {
		return Snapshot{}, fmt.Errorf("write snapshot: read seq: %w", err)
	}

	snap := Snapshot{
		ID:            s.ids.Generate(),
		Seq:           lastSeq + 1,
		Root:          root,
		TargetCount:   len(targets),
		ToolVersion:   target.ToolVersion,
		SchemaVersion: target.SchemaVersion,
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, seq, root, target_count, tool_version, schema_version)
		VALUES (?, ?, ?, ?, ?, ?)
	`, snap.ID, snap.Seq, snap.Root, snap.TargetCount, snap.ToolVersion, snap.SchemaVersion)
	if err != nil {
		return Snapshot{}, fmt.Errorf("write snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO targets (snapshot_id, address, spec_path, name, kind, fingerprint, declaration)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("write snapshot: %w", err)
	}
	defer stmt.Close()

	for _, t := range targets {
		decl, fp, err := marshalDeclaration(t)
		if err != nil {
			return Snapshot{}, fmt.Errorf("write snapshot: %w", err)
		}
		_, err = stmt.ExecContext(ctx,
			snap.ID,
			t.Address().String(),
			t.SpecPath(),
			t.Name(),
			string(t.Kind()),
			fp,
			decl,
		)
		if err != nil {
			return Snapshot{}, fmt.Errorf("write snapshot: target %s: %w", t.Address(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Snapshot{}, fmt.Errorf("write snapshot: commit: %w", err)
	}
	return snap, nil
}

// DeleteSnapshot removes a snapshot and its targets.
// Returns ErrNotFound if the snapshot does not exist.
func (s *Store) DeleteSnapshot(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete snapshot %s: %w", id, ErrNotFound)
	}
	return nil
}
