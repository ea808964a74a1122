package target

import "maps"

// Artifact describes the publishable package a target provides.
// Nothing here is validated; the publishing step owns that.
type Artifact struct {
	Name     string            `json:"name"`
	Version  string            `json:"version,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// clone returns a deep copy, or nil for a nil artifact.
func (a *Artifact) clone() *Artifact {
	if a == nil {
		return nil
	}
	c := *a
	c.Metadata = maps.Clone(a.Metadata)
	return &c
}
