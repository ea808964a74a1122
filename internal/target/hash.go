package target

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainTarget is the domain prefix for target fingerprints.
// The version suffix allows the encoding to change later.
const DomainTarget = "pybuild/target/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint returns the content address of the target's declaration.
// Two targets with equal declarations share a fingerprint regardless of
// how their maps were populated.
func (t *Target) Fingerprint() (string, error) {
	canonical, err := MarshalCanonical(t.Declaration())
	if err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", t.address, err)
	}
	return hashWithDomain(DomainTarget, canonical), nil
}

// MustFingerprint is like Fingerprint but panics on error.
// Declarations only hold strings, so this cannot fail for a constructed target.
func (t *Target) MustFingerprint() string {
	fp, err := t.Fingerprint()
	if err != nil {
		panic(err)
	}
	return fp
}
