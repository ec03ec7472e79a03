package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/minigen/decl"
	"github.com/teranos/minigen/errors"
)

func TestParseKeyRule(t *testing.T) {
	tests := []struct {
		in      string
		want    KeyRule
		wantErr bool
	}{
		{in: "self", want: KeyRule{Name: KeySelf}},
		{in: " enclosing ", want: KeyRule{Name: KeyEnclosing}},
		{in: "package", want: KeyRule{Name: KeyPackage}},
		{in: "global", want: KeyRule{Name: KeyGlobal}},
		{in: "param:store", want: KeyRule{Name: KeyParam, Param: "store"}},
		{in: "param", wantErr: true},
		{in: "self:x", wantErr: true},
		{in: "sibling", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKeyRule(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errors.ErrInvalidKindTable))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.String(), got.String())
		})
	}
}

func TestKeyRuleAnchor(t *testing.T) {
	method := methodDecl("Counter", "OnReset", "reducer", 1)
	fn := &decl.Declaration{
		ID: testPkg + ".reduce", Name: "reduce", Element: decl.ElementFunc, Package: pkg(),
		Annotation: decl.Annotation{Name: "reducer", Params: map[string]decl.Value{"store": decl.String("Counter")}},
	}
	qualifiedByPkgName := fn.Clone()
	qualifiedByPkgName.Annotation.Params["store"] = decl.String("app.Counter")
	fullyQualified := fn.Clone()
	fullyQualified.Annotation.Params["store"] = decl.String("example.com/other.Counter")
	typ := typeDecl("Counter", "store", 1)

	tests := []struct {
		name string
		rule KeyRule
		d    *decl.Declaration
		want string
	}{
		{"self method", KeyRule{Name: KeySelf}, method, testPkg + ".Counter.OnReset"},
		{"enclosing method", KeyRule{Name: KeyEnclosing}, method, testPkg + ".Counter"},
		{"enclosing type is itself", KeyRule{Name: KeyEnclosing}, typ, testPkg + ".Counter"},
		{"package", KeyRule{Name: KeyPackage}, method, testPkg},
		{"global", KeyRule{Name: KeyGlobal}, method, GlobalAnchor},
		{"param bare name", KeyRule{Name: KeyParam, Param: "store"}, fn, testPkg + ".Counter"},
		{"param package name", KeyRule{Name: KeyParam, Param: "store"}, qualifiedByPkgName, testPkg + ".Counter"},
		{"param qualified", KeyRule{Name: KeyParam, Param: "store"}, fullyQualified, "example.com/other.Counter"},
		{"param falls back to enclosing", KeyRule{Name: KeyParam, Param: "store"}, method, testPkg + ".Counter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rule.Anchor(tt.d))
		})
	}
}

func TestKeyParts(t *testing.T) {
	k := MakeKey("store", "example.com/app.Counter")
	assert.Equal(t, "store", k.Kind())
	assert.Equal(t, "example.com/app.Counter", k.Anchor())
	assert.Equal(t, "store:example.com/app.Counter#go", ArtifactID(k, "go"))
}

func TestKindTable(t *testing.T) {
	table := newTable(t, widgetKind())

	b, ok := table.Lookup("part")
	require.True(t, ok)
	assert.Equal(t, "widget", b.Kind.Name)
	assert.Equal(t, "member", b.Role)

	_, ok = table.Lookup("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"part", "widget"}, table.Annotations())
	assert.Equal(t, []string{"definition"}, widgetKind().RequiredRoles())
	assert.Equal(t, []string{"member"}, widgetKind().OptionalRoles())
	assert.False(t, table.Reactive())
	assert.Equal(t, 1, table.Len())
}

func TestKindTableRejectsConflicts(t *testing.T) {
	_, err := NewKindTable(widgetKind(), widgetKind())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "registered twice")

	other := widgetKind()
	other.Name = "gadget"
	_, err = NewKindTable(widgetKind(), other)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bound to both")
	assert.True(t, errors.Is(err, errors.ErrInvalidKindTable))
}

func TestKindValidate(t *testing.T) {
	mutate := func(fn func(k *Kind)) error {
		k := widgetKind()
		fn(k)
		return k.Validate()
	}
	assert.NoError(t, mutate(func(*Kind) {}))
	assert.Error(t, mutate(func(k *Kind) { k.Name = "" }))
	assert.Error(t, mutate(func(k *Kind) { k.Name = "a:b" }))
	assert.Error(t, mutate(func(k *Kind) { k.Roles = nil }))
	assert.Error(t, mutate(func(k *Kind) { k.Roles[0].Required = false }))
	assert.Error(t, mutate(func(k *Kind) { k.Roles[1].Name = "definition" }))
	assert.Error(t, mutate(func(k *Kind) { k.Roles[1].Annotation = "" }))
	assert.Error(t, mutate(func(k *Kind) { k.Seal = "eventually" }))
	assert.Error(t, mutate(func(k *Kind) { k.KeyRule = KeyRule{Name: "nope"} }))
	assert.Error(t, mutate(func(k *Kind) { k.Renderer = nil }))
}
