package decl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		raw  string
		want Value
	}{
		{"100", Int(100)},
		{"-3", Int(-3)},
		{"true", Bool(true)},
		{"false", Bool(false)},
		{"Counter", String("Counter")},
		{"1.5", String("1.5")},
		{"", String("")},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseValue(tt.raw))
		})
	}
}

func TestAnnotationParams(t *testing.T) {
	a := Annotation{Name: "reducer", Params: map[string]Value{
		"priority": Int(5),
		"store":    String("Counter"),
		"pure":     Bool(true),
	}}

	p, ok := a.IntParam("priority", 100)
	assert.True(t, ok)
	assert.Equal(t, int64(5), p)

	p, ok = a.IntParam("missing", 100)
	assert.True(t, ok)
	assert.Equal(t, int64(100), p)

	_, ok = a.IntParam("store", 100)
	assert.False(t, ok, "string parameter is not an integer")

	assert.Equal(t, "Counter", a.StringParam("store", ""))
	assert.Equal(t, "x", a.StringParam("nope", "x"))
	assert.True(t, a.BoolParam("pure", false))
	assert.Equal(t, []string{"priority", "pure", "store"}, a.ParamNames())
	assert.Equal(t, "reducer priority=5 pure=true store=Counter", a.String())
}

func TestAnnotationStringQuotes(t *testing.T) {
	a := Annotation{Name: "doc", Params: map[string]Value{"title": String("two words")}}
	assert.Equal(t, `doc title="two words"`, a.String())
}

func TestTypeRefExpr(t *testing.T) {
	state := TypeRef{PkgPath: "example.com/app", PkgName: "app", Name: "State"}
	store := TypeRef{
		PkgPath: "github.com/teranos/minigen/flux",
		PkgName: "flux",
		Name:    "Store",
		Pointer: true,
		Args:    []TypeRef{state},
	}

	assert.Equal(t, "*flux.Store[State]", store.Expr("example.com/app"))
	assert.Equal(t, "*flux.Store[app.State]", store.Expr("example.com/other"))
	assert.Equal(t, "*github.com/teranos/minigen/flux.Store[example.com/app.State]", store.String())
	assert.Equal(t, []string{"github.com/teranos/minigen/flux"}, store.Imports("example.com/app"))
	assert.True(t, store.References("example.com/app.State"))
	assert.False(t, store.References("example.com/app.Other"))
}

func TestTypeRefWildcard(t *testing.T) {
	assert.Equal(t, "any", TypeRef{Wildcard: true}.String())
	nested := TypeRef{Name: "List", PkgPath: "p", Args: []TypeRef{{Name: "T", Wildcard: true}}}
	assert.True(t, nested.HasWildcard())
	assert.False(t, nested.Base().Args[0].IsZero())
}

func TestDeclarationClone(t *testing.T) {
	d := &Declaration{
		ID:         "example.com/app.Counter",
		Name:       "Counter",
		Element:    ElementType,
		Annotation: Annotation{Name: "store", Params: map[string]Value{"state": String("State")}},
		Members:    []Field{{Name: "count", Type: TypeRef{Name: "int"}}},
		Embeds:     []Embed{{Type: TypeRef{Name: "Base", Args: []TypeRef{{Name: "X"}}}, Depth: 1}},
	}

	c := d.Clone()
	c.Annotation.Params["state"] = String("Other")
	c.Members[0].Name = "changed"
	c.Embeds[0].Type.Args[0].Name = "Y"

	assert.Equal(t, "State", d.Annotation.StringParam("state", ""))
	assert.Equal(t, "count", d.Members[0].Name)
	assert.Equal(t, "X", d.Embeds[0].Type.Args[0].Name)
}

func TestDeclarationQualifiedName(t *testing.T) {
	top := &Declaration{Name: "Counter", Package: Package{Path: "example.com/app"}}
	method := &Declaration{Name: "OnReset", Enclosing: "example.com/app.Counter"}
	assert.Equal(t, "example.com/app.Counter", top.QualifiedName())
	assert.Equal(t, "example.com/app.Counter.OnReset", method.QualifiedName())
}

func TestDeclarationValidate(t *testing.T) {
	require.Error(t, (*Declaration)(nil).Validate())
	require.Error(t, (&Declaration{Name: "x"}).Validate())
	require.Error(t, (&Declaration{ID: "x"}).Validate())
	require.Error(t, (&Declaration{ID: "x", Annotation: Annotation{Name: "a"}}).Validate())
	require.NoError(t, (&Declaration{ID: "x", Element: ElementFunc, Annotation: Annotation{Name: "a"}}).Validate())
}

func TestParseElementKind(t *testing.T) {
	k, err := ParseElementKind("Method")
	require.NoError(t, err)
	assert.Equal(t, ElementMethod, k)

	_, err = ParseElementKind("module")
	assert.Error(t, err)
}

func TestTypeRefExprQualified(t *testing.T) {
	ref := TypeRef{
		PkgPath: "example.com/shipping/model", PkgName: "model", Name: "Box", Slice: true,
		Args: []TypeRef{{PkgPath: "example.com/app", PkgName: "app", Name: "Item"}, {Name: "int"}},
	}
	q := func(path string) string {
		if path == "example.com/app" {
			return ""
		}
		return "model2"
	}
	assert.Equal(t, "[]model2.Box[Item, int]", ref.ExprQualified(q))
	assert.Equal(t, "[]model.Box[Item, int]", ref.Expr("example.com/app"))
}
