package engine

import (
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teranos/minigen/decl"
	"github.com/teranos/minigen/logger"
)

// Session is the state of one multi-round run for one compilation. It owns
// every declaration and unit of the run; nothing is shared across sessions.
type Session struct {
	ID string

	table    *KindTable
	round    int
	finished bool

	decls   map[string]*decl.Declaration
	keys    map[string]Key
	ignored map[string]bool
	units   map[Key]*Unit

	// artifacts maps written artifact IDs to their paths, paths maps each
	// claimed path to the unit that owns it.
	artifacts map[string]string
	paths     map[string]Key

	log *zap.SugaredLogger
}

// NewSession starts an empty session over a kind table.
func NewSession(table *KindTable) *Session {
	id := uuid.NewString()
	return &Session{
		ID:        id,
		table:     table,
		decls:     make(map[string]*decl.Declaration),
		keys:      make(map[string]Key),
		ignored:   make(map[string]bool),
		units:     make(map[Key]*Unit),
		artifacts: make(map[string]string),
		paths:     make(map[string]Key),
		log:       logger.ChildLogger(logger.ComponentLogger("engine.session"), logger.FieldSessionID, id),
	}
}

// Round returns the number of rounds ingested so far.
func (s *Session) Round() int { return s.round }

// Finished reports whether the final round was ingested.
func (s *Session) Finished() bool { return s.finished }

// Table returns the session's kind table.
func (s *Session) Table() *KindTable { return s.table }

// Declaration returns an ingested declaration by identity.
func (s *Session) Declaration(id string) (*decl.Declaration, bool) {
	d, ok := s.decls[id]
	return d, ok
}

// Unit returns a unit by key.
func (s *Session) Unit(key Key) (*Unit, bool) {
	u, ok := s.units[key]
	return u, ok
}

// Units returns every unit sorted by key.
func (s *Session) Units() []*Unit {
	out := make([]*Unit, 0, len(s.units))
	for _, u := range s.units {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Pending reports whether any unit is still waiting to be generated.
func (s *Session) Pending() bool {
	for _, u := range s.units {
		if !u.Sealed && !u.halted {
			return true
		}
	}
	return false
}

// Written reports whether an artifact identity was already handed to the sink.
func (s *Session) Written(artifactID string) bool {
	_, ok := s.artifacts[artifactID]
	return ok
}

// claimPaths reserves artifact paths for a unit. It returns the first path
// already owned by a different unit, or "" when every path was claimed.
func (s *Session) claimPaths(key Key, arts []Artifact) (string, Key) {
	for _, a := range arts {
		if owner, ok := s.paths[a.Path]; ok && owner != key {
			return a.Path, owner
		}
	}
	for _, a := range arts {
		s.paths[a.Path] = key
	}
	return "", ""
}

func (s *Session) markWritten(a Artifact) {
	s.artifacts[a.ID] = a.Path
}
