package host

import (
	"go/ast"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/minigen/decl"
)

func TestParseDirective(t *testing.T) {
	tests := []struct {
		line string
		want decl.Annotation
	}{
		{"//mini:action", decl.Annotation{Name: "action"}},
		{"//mini:reducer priority=10 store=Counter", decl.Annotation{Name: "reducer", Params: map[string]decl.Value{
			"priority": decl.Int(10), "store": decl.String("Counter"),
		}}},
		{`//mini:route path="/users/{id}" method=GET`, decl.Annotation{Name: "route", Params: map[string]decl.Value{
			"path": decl.String("/users/{id}"), "method": decl.String("GET"),
		}}},
		{`//mini:tag id="42" cached`, decl.Annotation{Name: "tag", Params: map[string]decl.Value{
			"id": decl.String("42"), "cached": decl.Bool(true),
		}}},
		{"//mini:flag on=false", decl.Annotation{Name: "flag", Params: map[string]decl.Value{"on": decl.Bool(false)}}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok, err := ParseDirective(tt.line)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDirectiveIgnoresOtherComments(t *testing.T) {
	for _, line := range []string{"// mini:action", "//go:generate minigen", "// Counter holds state."} {
		_, ok, err := ParseDirective(line)
		assert.NoError(t, err, line)
		assert.False(t, ok, line)
	}
}

func TestParseDirectiveErrors(t *testing.T) {
	for _, line := range []string{
		"//mini:",
		`//mini:route path="/users`,
		"//mini:reducer priority=1 priority=2",
		"//mini:reducer =5",
		"//mini:bad!name",
	} {
		_, ok, err := ParseDirective(line)
		assert.True(t, ok, line)
		assert.Error(t, err, line)
	}
}

func TestDirectives(t *testing.T) {
	doc := &ast.CommentGroup{List: []*ast.Comment{
		{Slash: 10, Text: "// Counter holds the count."},
		{Slash: 40, Text: "//mini:store"},
		{Slash: 60, Text: "//mini:reducer priority=x=1 ="},
		{Slash: 90, Text: "//mini:action"},
	}}
	dirs, errs := Directives(doc)
	require.Len(t, dirs, 2)
	assert.Equal(t, "store", dirs[0].Annotation.Name)
	assert.EqualValues(t, 40, dirs[0].Pos)
	assert.Equal(t, "action", dirs[1].Annotation.Name)
	require.Len(t, errs, 1)
	assert.EqualValues(t, 60, errs[0].Pos)

	dirs, errs = Directives(nil)
	assert.Empty(t, dirs)
	assert.Empty(t, errs)
}
