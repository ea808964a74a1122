package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/pybuild/internal/target"
)

// marshalDeclaration converts a target to canonical JSON TEXT for storage
// and returns it with the target's fingerprint.
func marshalDeclaration(t *target.Target) (string, string, error) {
	data, err := target.MarshalCanonical(t.Declaration())
	if err != nil {
		return "", "", fmt.Errorf("marshal declaration %s: %w", t.Address(), err)
	}
	fp, err := t.Fingerprint()
	if err != nil {
		return "", "", err
	}
	return string(data), fp, nil
}

// unmarshalDeclaration rebuilds a target from its stored declaration and
// checks it against the stored fingerprint.
func unmarshalDeclaration(data, fingerprint string) (*target.Target, error) {
	var decl target.Declaration
	if err := json.Unmarshal([]byte(data), &decl); err != nil {
		return nil, fmt.Errorf("unmarshal declaration: %w", err)
	}

	t, err := target.FromDeclaration(decl)
	if err != nil {
		return nil, fmt.Errorf("rebuild declaration: %w", err)
	}

	got, err := t.Fingerprint()
	if err != nil {
		return nil, err
	}
	if got != fingerprint {
		return nil, fmt.Errorf("fingerprint mismatch for %s: stored %s, computed %s", t.Address(), fingerprint, got)
	}
	return t, nil
}
