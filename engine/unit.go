package engine

import (
	"sort"

	"github.com/teranos/minigen/decl"
)

// Member is one declaration playing a role in a unit.
type Member struct {
	Role string
	Decl *decl.Declaration
}

// Unit is a generation unit: every declaration sharing one key.
type Unit struct {
	Key    Key
	Kind   *Kind
	Anchor string

	// Terminal is set by the final-round flush: no more members will come.
	Terminal bool
	// Sealed is set once the unit was validated (and rendered when valid).
	Sealed bool

	members []Member
	ids     map[string]bool
	halted  bool
}

func newUnit(key Key, kind *Kind) *Unit {
	return &Unit{
		Key:    key,
		Kind:   kind,
		Anchor: key.Anchor(),
		ids:    make(map[string]bool),
	}
}

// add inserts a member keeping (role order, ID) order. It returns false when
// the declaration identity is already a member.
func (u *Unit) add(role string, d *decl.Declaration) bool {
	if u.ids[d.ID] {
		return false
	}
	u.ids[d.ID] = true
	m := Member{Role: role, Decl: d}
	i := sort.Search(len(u.members), func(i int) bool { return u.less(m, u.members[i]) })
	u.members = append(u.members, Member{})
	copy(u.members[i+1:], u.members[i:])
	u.members[i] = m
	return true
}

func (u *Unit) less(a, b Member) bool {
	ra, rb := u.Kind.roleIndex(a.Role), u.Kind.roleIndex(b.Role)
	if ra != rb {
		return ra < rb
	}
	return a.Decl.ID < b.Decl.ID
}

// Members returns all members in (role order, ID) order.
func (u *Unit) Members() []Member {
	out := make([]Member, len(u.members))
	copy(out, u.members)
	return out
}

// Len returns the number of members.
func (u *Unit) Len() int {
	return len(u.members)
}

// Role returns the declarations playing the named role, sorted by ID.
func (u *Unit) Role(name string) []*decl.Declaration {
	var out []*decl.Declaration
	for _, m := range u.members {
		if m.Role == name {
			out = append(out, m.Decl)
		}
	}
	return out
}

// First returns the first declaration in the named role, or nil.
func (u *Unit) First(role string) *decl.Declaration {
	for _, m := range u.members {
		if m.Role == role {
			return m.Decl
		}
	}
	return nil
}

// Has reports whether a declaration identity is a member.
func (u *Unit) Has(id string) bool {
	return u.ids[id]
}

// MissingRoles returns the required roles with no member.
func (u *Unit) MissingRoles() []string {
	var missing []string
	for _, r := range u.Kind.RequiredRoles() {
		if u.First(r) == nil {
			missing = append(missing, r)
		}
	}
	return missing
}

// Complete reports whether every required role has at least one member.
// It depends only on the current members.
func (u *Unit) Complete() bool {
	return len(u.MissingRoles()) == 0
}

// AnchorDecl returns the member whose qualified name is the anchor, or nil.
func (u *Unit) AnchorDecl() *decl.Declaration {
	for _, m := range u.members {
		if m.Decl.QualifiedName() == u.Anchor {
			return m.Decl
		}
	}
	return nil
}

// Package returns the package generated files belong to: the anchor's
// package when the anchor is a member, otherwise the first member's.
func (u *Unit) Package() decl.Package {
	if d := u.AnchorDecl(); d != nil {
		return d.Package
	}
	if len(u.members) > 0 {
		return u.members[0].Decl.Package
	}
	return decl.Package{}
}

// Location returns a representative location for unit-level diagnostics.
func (u *Unit) Location() decl.Location {
	if d := u.AnchorDecl(); d != nil {
		return d.Location
	}
	if len(u.members) > 0 {
		return u.members[0].Decl.Location
	}
	return decl.Location{}
}

// snapshot copies the unit so validation results never alias live state.
// Declarations are shared; they are immutable once ingested.
func (u *Unit) snapshot() *Unit {
	c := &Unit{
		Key:      u.Key,
		Kind:     u.Kind,
		Anchor:   u.Anchor,
		Terminal: u.Terminal,
		Sealed:   u.Sealed,
		members:  u.Members(),
		ids:      make(map[string]bool, len(u.ids)),
	}
	for id := range u.ids {
		c.ids[id] = true
	}
	return c
}

// NewUnit builds a detached unit from members, for tests and tools that
// validate or render outside a session.
func NewUnit(kind *Kind, key Key, members ...Member) *Unit {
	u := newUnit(key, kind)
	for _, m := range members {
		u.add(m.Role, m.Decl)
	}
	return u
}
