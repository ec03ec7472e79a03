// Package sink holds the places rendered artifacts can go: memory (tests and
// tools), the filesystem, a staleness check against the filesystem, and a
// stream for piping.
package sink

import (
	"sort"
	"sync"

	"github.com/teranos/minigen/engine"
	"github.com/teranos/minigen/errors"
)

// MemorySink keeps artifacts in memory. Replaying an identical artifact is a
// no-op; the same identity with different text is ErrConflict.
type MemorySink struct {
	mu        sync.Mutex
	artifacts map[string]engine.Artifact
}

// NewMemorySink creates an empty sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{artifacts: make(map[string]engine.Artifact)}
}

func (s *MemorySink) Write(a engine.Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.artifacts[a.ID]; ok {
		if prev.Text != a.Text || prev.Path != a.Path {
			return errors.Wrapf(errors.ErrConflict, "artifact %s", a.ID)
		}
		return nil
	}
	s.artifacts[a.ID] = a
	return nil
}

// Get returns an artifact by identity.
func (s *MemorySink) Get(id string) (engine.Artifact, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.artifacts[id]
	return a, ok
}

// Artifacts returns every artifact sorted by identity.
func (s *MemorySink) Artifacts() []engine.Artifact {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]engine.Artifact, 0, len(s.artifacts))
	for _, a := range s.artifacts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of artifacts.
func (s *MemorySink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.artifacts)
}
