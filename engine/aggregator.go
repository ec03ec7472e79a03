package engine

import (
	"github.com/teranos/minigen/decl"
	"github.com/teranos/minigen/errors"
)

// ErrLateMember is returned by Assign when the target unit was already generated.
var ErrLateMember = errors.New("unit already generated")

// Assign places a declaration into its unit, creating the unit on first use,
// and returns the unit key. The session stores its own copy of d.
//
// Assigning an identity twice returns the original key without adding a
// second member.
func (s *Session) Assign(d *decl.Declaration) (Key, error) {
	if err := d.Validate(); err != nil {
		return "", err
	}
	if key, ok := s.keys[d.ID]; ok {
		return key, nil
	}
	b, ok := s.table.Lookup(d.Annotation.Name)
	if !ok {
		return "", errors.Wrapf(errors.ErrUnknownKind, "annotation %q", d.Annotation.Name)
	}

	key := MakeKey(b.Kind.Name, b.Kind.KeyRule.Anchor(d))
	u, ok := s.units[key]
	if !ok {
		u = newUnit(key, b.Kind)
		s.units[key] = u
	}
	if u.Sealed || u.halted {
		return key, errors.Wrapf(ErrLateMember, "%s into %s", d.ID, key)
	}

	stored := d.Clone()
	s.decls[d.ID] = stored
	s.keys[d.ID] = key
	u.add(b.Role, stored)
	return key, nil
}
