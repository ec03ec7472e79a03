package engine

import (
	"sort"
	"strings"

	"github.com/teranos/minigen/decl"
	"github.com/teranos/minigen/errors"
)

// SealPolicy decides when a unit is validated and rendered.
type SealPolicy string

const (
	// SealFinal waits for the final round. Members may keep arriving until then.
	SealFinal SealPolicy = "final"
	// SealComplete generates as soon as every required role is present.
	// Members arriving afterwards are rejected as late.
	SealComplete SealPolicy = "complete"
)

// RoleSpec describes one role a declaration can play in a unit.
type RoleSpec struct {
	Name string
	// Annotation binds declarations carrying it to this role.
	Annotation string
	Required   bool
	// Many allows several members in the role; otherwise it is singular.
	Many bool

	// Shape constraints checked by the validator.
	Elements []decl.ElementKind
	Concrete bool
	Exported bool
}

func (r RoleSpec) allows(k decl.ElementKind) bool {
	if len(r.Elements) == 0 {
		return true
	}
	for _, e := range r.Elements {
		if e == k {
			return true
		}
	}
	return false
}

// Kind is one generation kind: the roles that make up a unit, how members
// find their unit, extra validation rules, and how a validated unit renders.
type Kind struct {
	Name    string
	Roles   []RoleSpec
	KeyRule KeyRule
	Seal    SealPolicy

	// Reactive kinds want to observe every round, even with nothing pending.
	Reactive bool
	// ForbidSelfReference reports members whose signature mentions the
	// unit's anchor type.
	ForbidSelfReference bool

	Rules    []Rule
	Renderer Renderer
}

// Role returns the named role.
func (k *Kind) Role(name string) (RoleSpec, bool) {
	for _, r := range k.Roles {
		if r.Name == name {
			return r, true
		}
	}
	return RoleSpec{}, false
}

// RequiredRoles returns required role names in declaration order.
func (k *Kind) RequiredRoles() []string {
	var out []string
	for _, r := range k.Roles {
		if r.Required {
			out = append(out, r.Name)
		}
	}
	return out
}

// OptionalRoles returns optional role names in declaration order.
func (k *Kind) OptionalRoles() []string {
	var out []string
	for _, r := range k.Roles {
		if !r.Required {
			out = append(out, r.Name)
		}
	}
	return out
}

func (k *Kind) roleIndex(name string) int {
	for i, r := range k.Roles {
		if r.Name == name {
			return i
		}
	}
	return len(k.Roles)
}

// Validate checks the kind definition itself.
func (k *Kind) Validate() error {
	if k == nil {
		return errors.NewKindTableError("nil kind")
	}
	if k.Name == "" || strings.ContainsAny(k.Name, ": \t#") {
		return errors.NewKindTableError("kind name %q must be non-empty without ':', '#' or spaces", k.Name)
	}
	if len(k.Roles) == 0 {
		return errors.NewKindTableError("kind %s declares no roles", k.Name)
	}
	if len(k.RequiredRoles()) == 0 {
		return errors.NewKindTableError("kind %s needs at least one required role", k.Name)
	}
	seen := make(map[string]bool)
	for _, r := range k.Roles {
		if r.Name == "" {
			return errors.NewKindTableError("kind %s has a role without a name", k.Name)
		}
		if r.Annotation == "" {
			return errors.NewKindTableError("kind %s role %s is not bound to an annotation", k.Name, r.Name)
		}
		if seen[r.Name] {
			return errors.NewKindTableError("kind %s declares role %s twice", k.Name, r.Name)
		}
		seen[r.Name] = true
	}
	switch k.Seal {
	case "", SealFinal, SealComplete:
	default:
		return errors.NewKindTableError("kind %s: unknown seal policy %q", k.Name, k.Seal)
	}
	if err := k.KeyRule.Validate(); err != nil {
		return errors.Wrapf(err, "kind %s", k.Name)
	}
	if k.Renderer == nil {
		return errors.NewKindTableError("kind %s has no renderer", k.Name)
	}
	return nil
}

func (k *Kind) sealPolicy() SealPolicy {
	if k.Seal == "" {
		return SealFinal
	}
	return k.Seal
}

// Binding is what an annotation resolves to.
type Binding struct {
	Kind *Kind
	Role string
}

// KindTable maps annotation identity to a kind and role.
type KindTable struct {
	kinds    map[string]*Kind
	bindings map[string]Binding
}

// NewKindTable builds a table from kinds, rejecting invalid kinds, duplicate
// kind names and annotations bound twice.
func NewKindTable(kinds ...*Kind) (*KindTable, error) {
	t := &KindTable{
		kinds:    make(map[string]*Kind),
		bindings: make(map[string]Binding),
	}
	for _, k := range kinds {
		if err := t.Register(k); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Register adds one kind.
func (t *KindTable) Register(k *Kind) error {
	if err := k.Validate(); err != nil {
		return err
	}
	if _, dup := t.kinds[k.Name]; dup {
		return errors.NewKindTableError("kind %s registered twice", k.Name)
	}
	for _, r := range k.Roles {
		if prev, dup := t.bindings[r.Annotation]; dup {
			return errors.NewKindTableError("annotation %s bound to both %s.%s and %s.%s",
				r.Annotation, prev.Kind.Name, prev.Role, k.Name, r.Name)
		}
	}
	t.kinds[k.Name] = k
	for _, r := range k.Roles {
		t.bindings[r.Annotation] = Binding{Kind: k, Role: r.Name}
	}
	return nil
}

// Lookup resolves an annotation name.
func (t *KindTable) Lookup(annotation string) (Binding, bool) {
	b, ok := t.bindings[annotation]
	return b, ok
}

// Kind returns a kind by name.
func (t *KindTable) Kind(name string) (*Kind, bool) {
	k, ok := t.kinds[name]
	return k, ok
}

// Kinds returns all kinds sorted by name.
func (t *KindTable) Kinds() []*Kind {
	out := make([]*Kind, 0, len(t.kinds))
	for _, k := range t.kinds {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Annotations returns every bound annotation name, sorted.
func (t *KindTable) Annotations() []string {
	out := make([]string, 0, len(t.bindings))
	for a := range t.bindings {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// Reactive reports whether any kind is reactive.
func (t *KindTable) Reactive() bool {
	for _, k := range t.kinds {
		if k.Reactive {
			return true
		}
	}
	return false
}

// Len returns the number of kinds.
func (t *KindTable) Len() int {
	return len(t.kinds)
}
