package flux

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/minigen/decl"
	"github.com/teranos/minigen/diag"
	"github.com/teranos/minigen/engine"
	"github.com/teranos/minigen/sink"
)

const appPath = "example.com/app"

var app = decl.Package{Path: appPath, Name: "app", Dir: "/src/app"}

func ref(name string) decl.TypeRef {
	return decl.TypeRef{PkgPath: appPath, PkgName: "app", Name: name}
}

func at(line int) decl.Location {
	return decl.Location{File: "/src/app/counter.go", Line: line, Column: 1}
}

func action(name string, line int, embeds ...decl.Embed) *decl.Declaration {
	return &decl.Declaration{
		ID: appPath + "." + name, Name: name, Element: decl.ElementType, Package: app,
		Annotation: decl.Annotation{Name: ActionAnnotation}, Exported: true,
		Type: ref(name), Embeds: embeds, Location: at(line),
	}
}

func counterStore() *decl.Declaration {
	store := decl.TypeRef{PkgPath: RuntimePath, PkgName: "flux", Name: "Store", Args: []decl.TypeRef{ref("CounterState")}}
	return &decl.Declaration{
		ID: appPath + ".Counter", Name: "Counter", Element: decl.ElementType, Package: app,
		Annotation: decl.Annotation{Name: StoreAnnotation}, Exported: true, Type: ref("Counter"),
		Members:  []decl.Field{{Name: "Store", Type: store, Embedded: true}},
		Location: at(10),
	}
}

func method(name string, line int, params []decl.Field, results []decl.Field, ann map[string]decl.Value) *decl.Declaration {
	return &decl.Declaration{
		ID: appPath + ".Counter." + name, Name: name, Element: decl.ElementMethod, Package: app,
		Enclosing: appPath + ".Counter", Exported: true,
		Annotation: decl.Annotation{Name: ReducerAnnotation, Params: ann},
		Params:     params, Results: results, Location: at(line),
	}
}

func field(name string, t decl.TypeRef) decl.Field { return decl.Field{Name: name, Type: t} }

func run(t *testing.T, opts engine.RenderOptions, decls ...*decl.Declaration) (*sink.MemorySink, []diag.Diagnostic) {
	t.Helper()
	table, err := engine.NewKindTable(Kinds()...)
	require.NoError(t, err)
	bag := diag.NewBag(0)
	out := sink.NewMemorySink()
	eng := engine.New(table, engine.Config{Reporter: diag.BagReporter{Bag: bag}, Sink: out, Render: opts})
	_, err = eng.ProcessRound(decls, true)
	require.NoError(t, err)
	return out, bag.Items()
}

func validReducers() []*decl.Declaration {
	increment := method("OnIncrement", 20,
		[]decl.Field{field("s", ref("CounterState")), field("a", ref("Increment"))},
		[]decl.Field{field("", ref("CounterState"))},
		map[string]decl.Value{"priority": decl.Int(10)})
	reset := method("OnReset", 30, []decl.Field{field("a", ref("Reset"))}, nil, nil)
	logRef := ref("Log")
	logRef.Pointer = true
	audit := &decl.Declaration{
		ID: appPath + ".Audit", Name: "Audit", Element: decl.ElementFunc, Package: app, Exported: true,
		Annotation: decl.Annotation{Name: ReducerAnnotation, Params: map[string]decl.Value{"store": decl.String("Counter")}},
		Params:     []decl.Field{field("a", logRef)},
		Location:   at(40),
	}
	return []*decl.Declaration{increment, reset, audit}
}

func TestActionsTable(t *testing.T) {
	base := decl.Embed{Type: ref("Base"), Depth: 1}
	root := decl.Embed{Type: ref("Root"), Depth: 2}
	out, diags := run(t, engine.DefaultRenderOptions(),
		action("Increment", 1, root, base),
		action("Reset", 5),
	)
	require.Empty(t, diags)

	art, ok := out.Get(string(engine.MakeKey(ActionsKind, appPath)) + "#go")
	require.True(t, ok)
	assert.Equal(t, "/src/app/"+ActionsFile, art.Path)
	assert.Contains(t, art.Text, engine.DefaultHeader)
	assert.Contains(t, art.Text, "package app\n")
	assert.Contains(t, art.Text, "import (\n\t\"reflect\"\n)\n")
	assert.Contains(t, art.Text,
		"{reflect.TypeFor[Increment](), reflect.TypeFor[Base](), reflect.TypeFor[Root](), reflect.TypeFor[any]()},")
	assert.Contains(t, art.Text, "{reflect.TypeFor[Reset](), reflect.TypeFor[any]()},")
}

func TestActionsImportEmbeddedPackages(t *testing.T) {
	ext := decl.Embed{Type: decl.TypeRef{PkgPath: "example.com/shared/events", PkgName: "events", Name: "Event"}, Depth: 1}
	out, diags := run(t, engine.DefaultRenderOptions(), action("Saved", 1, ext))
	require.Empty(t, diags)

	arts := out.Artifacts()
	require.Len(t, arts, 1)
	assert.Contains(t, arts[0].Text, "\"reflect\"\n\n\t\"example.com/shared/events\"\n")
	assert.Contains(t, arts[0].Text, "reflect.TypeFor[events.Event]()")
}

func TestActionsAliasPackagesWithTheSameName(t *testing.T) {
	billing := decl.Embed{Type: decl.TypeRef{PkgPath: "example.com/billing/model", PkgName: "model", Name: "Event"}, Depth: 1}
	shipping := decl.Embed{Type: decl.TypeRef{PkgPath: "example.com/shipping/model", PkgName: "model", Name: "Event"}, Depth: 1}
	out, diags := run(t, engine.DefaultRenderOptions(), action("Billed", 1, billing), action("Shipped", 5, shipping))
	require.Empty(t, diags)

	arts := out.Artifacts()
	require.Len(t, arts, 1)
	text := arts[0].Text
	assert.Contains(t, text, "\t\"example.com/billing/model\"\n")
	assert.Contains(t, text, "\tmodel2 \"example.com/shipping/model\"\n")
	assert.Contains(t, text, "{reflect.TypeFor[Billed](), reflect.TypeFor[model.Event](), reflect.TypeFor[any]()},")
	assert.Contains(t, text, "{reflect.TypeFor[Shipped](), reflect.TypeFor[model2.Event](), reflect.TypeFor[any]()},")
}

func TestImportSetAliases(t *testing.T) {
	s := newImports(appPath, "io", RuntimePath)
	assert.Equal(t, "flux2", s.add("example.com/other/flux", "flux"))
	assert.Equal(t, "flux", s.qualify(RuntimePath))
	assert.Equal(t, "io2", s.add("example.com/io", ""))
	assert.Equal(t, "io2", s.add("example.com/io", "io"), "a package keeps its first identifier")
	assert.Empty(t, s.qualify(appPath))

	store := decl.TypeRef{PkgPath: "example.com/other/flux", PkgName: "flux", Name: "Store",
		Args: []decl.TypeRef{ref("CounterState")}, Pointer: true}
	assert.Equal(t, "*flux2.Store[CounterState]", s.expr(store))
}

func TestGenericActionRejected(t *testing.T) {
	generic := action("Boxed", 3)
	generic.Type.Args = []decl.TypeRef{{Name: "T", Wildcard: true}}
	out, diags := run(t, engine.DefaultRenderOptions(), generic)

	assert.Zero(t, out.Len())
	require.Len(t, diags, 1)
	assert.Equal(t, diag.ShapeViolation, diags[0].Code)
	assert.Contains(t, diags[0].Message, "generic")
}

func TestStoreReducers(t *testing.T) {
	decls := append(validReducers(), counterStore())
	out, diags := run(t, engine.DefaultRenderOptions(), decls...)
	require.Empty(t, diags)
	require.Equal(t, 1, out.Len(), "docs are off by default")

	art, ok := out.Get(string(engine.MakeKey(StoreKind, appPath+".Counter")) + "#go")
	require.True(t, ok)
	assert.Equal(t, "/src/app/counter_reducers_gen.go", art.Path)
	assert.Contains(t, art.Text, "import (\n\t\"io\"\n\n\t\"github.com/teranos/minigen/flux\"\n)\n")
	assert.Contains(t, art.Text, `func (s *Counter) SubscribeReducers(d *flux.Dispatcher) io.Closer {
	return flux.NewCompositeCloser(
		flux.Subscribe(d, 100, func(a *Log) { Audit(a) }),
		flux.Subscribe(d, 10, func(a Increment) { s.SetState(s.OnIncrement(s.State(), a)) }),
		flux.Subscribe(d, 100, func(a Reset) { s.OnReset(a) }),
	)
}
`)
}

func TestStoreDocs(t *testing.T) {
	opts := engine.DefaultRenderOptions()
	opts.Docs = true
	decls := append(validReducers(), counterStore())
	out, diags := run(t, opts, decls...)
	require.Empty(t, diags)

	doc, ok := out.Get(string(engine.MakeKey(StoreKind, appPath+".Counter")) + "#doc")
	require.True(t, ok)
	assert.Equal(t, "/src/app/counter_reducers.md", doc.Path)
	assert.Equal(t, "# Counter reducers\n\n"+
		"Store `example.com/app.Counter` holds `CounterState`. Reducers run in priority order, lowest first.\n\n"+
		"| Priority | Action | Reducer | Kind | Source |\n"+
		"|---:|---|---|---|---|\n"+
		"| 10 | `Increment` | `OnIncrement` | pure | counter.go:20 |\n"+
		"| 100 | `*Log` | `Audit` | impure | counter.go:40 |\n"+
		"| 100 | `Reset` | `OnReset` | impure | counter.go:30 |\n", doc.Text)
}

func TestStoreStateFromParam(t *testing.T) {
	c := counterStore()
	c.Members = nil
	c.Annotation.Params = map[string]decl.Value{"state": decl.String("app.CounterState")}
	rs := validReducers()[1:]
	out, diags := run(t, engine.DefaultRenderOptions(), append(rs, c)...)
	require.Empty(t, diags, "impure reducers never touch the state")
	assert.Equal(t, 1, out.Len())
}

func TestStoreStateParamMatchingEmbed(t *testing.T) {
	c := counterStore()
	c.Annotation.Params = map[string]decl.Value{"state": decl.String("CounterState")}
	out, diags := run(t, engine.DefaultRenderOptions(), append(validReducers(), c)...)
	require.Empty(t, diags)
	assert.Equal(t, 1, out.Len())
}

func TestPureReducerNeedsEmbeddedStore(t *testing.T) {
	c := counterStore()
	c.Members = []decl.Field{{Name: "state", Type: ref("CounterState")}}
	c.Annotation.Params = map[string]decl.Value{"state": decl.String("CounterState")}
	out, diags := run(t, engine.DefaultRenderOptions(), append(validReducers(), c)...)

	assert.Zero(t, out.Len(), "SetState would not compile")
	require.Len(t, diags, 1)
	assert.Equal(t, diag.ShapeViolation, diags[0].Code)
	assert.Contains(t, diags[0].Message, "does not embed flux.Store[CounterState]")
	require.Len(t, diags[0].Notes, 1)
	assert.Equal(t, 20, diags[0].Notes[0].Location.Line)
}

func TestPromotedStoreEmbed(t *testing.T) {
	c := counterStore()
	c.Members = []decl.Field{{Name: "Base", Type: ref("Base"), Embedded: true}}
	c.Embeds = []decl.Embed{
		{Type: ref("Base"), Depth: 1},
		{Type: decl.TypeRef{PkgPath: RuntimePath, PkgName: "flux", Name: "Store", Args: []decl.TypeRef{ref("CounterState")}}, Depth: 2},
	}
	out, diags := run(t, engine.DefaultRenderOptions(), append(validReducers(), c)...)
	require.Empty(t, diags)
	assert.Equal(t, 1, out.Len())
}

func TestStoreRules(t *testing.T) {
	state := ref("CounterState")
	tests := []struct {
		name    string
		mutate  func(c *decl.Declaration, rs []*decl.Declaration)
		code    diag.Code
		message string
	}{
		{
			name:    "no state type",
			mutate:  func(c *decl.Declaration, _ []*decl.Declaration) { c.Members = nil },
			code:    diag.ShapeViolation,
			message: "has no state type",
		},
		{
			name: "state parameter disagrees with embed",
			mutate: func(c *decl.Declaration, _ []*decl.Declaration) {
				c.Annotation.Params = map[string]decl.Value{"state": decl.String("OtherState")}
			},
			code:    diag.ShapeViolation,
			message: "embeds flux.Store[example.com/app.CounterState]",
		},
		{
			name: "wrong state parameter",
			mutate: func(_ *decl.Declaration, rs []*decl.Declaration) {
				rs[0].Params[0] = field("s", decl.TypeRef{Name: "int"})
			},
			code:    diag.ShapeViolation,
			message: "takes int as state, expected example.com/app.CounterState",
		},
		{
			name: "wrong result",
			mutate: func(_ *decl.Declaration, rs []*decl.Declaration) {
				rs[0].Results = []decl.Field{field("", decl.TypeRef{Name: "error"})}
			},
			code:    diag.ShapeViolation,
			message: "returns error",
		},
		{
			name: "impure with two parameters",
			mutate: func(_ *decl.Declaration, rs []*decl.Declaration) {
				rs[1].Params = []decl.Field{field("s", state), field("a", ref("Reset"))}
			},
			code:    diag.ShapeViolation,
			message: "exactly one action parameter",
		},
		{
			name: "wildcard action",
			mutate: func(_ *decl.Declaration, rs []*decl.Declaration) {
				rs[1].Params = []decl.Field{field("a", decl.TypeRef{Wildcard: true})}
			},
			code:    diag.ShapeViolation,
			message: "must be a concrete type",
		},
		{
			name: "bad priority",
			mutate: func(_ *decl.Declaration, rs []*decl.Declaration) {
				rs[0].Annotation.Params["priority"] = decl.String("high")
			},
			code:    diag.ShapeViolation,
			message: "must be an integer",
		},
		{
			name:    "unexported reducer",
			mutate:  func(_ *decl.Declaration, rs []*decl.Declaration) { rs[1].Exported = false },
			code:    diag.ShapeViolation,
			message: "must be exported",
		},
		{
			name: "reducer takes its store",
			mutate: func(_ *decl.Declaration, rs []*decl.Declaration) {
				ptr := ref("Counter")
				ptr.Pointer = true
				rs[1].Params = []decl.Field{field("c", ptr)}
			},
			code:    diag.CyclicReference,
			message: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := counterStore()
			rs := validReducers()
			tt.mutate(c, rs)
			out, diags := run(t, engine.DefaultRenderOptions(), append(rs, c)...)

			assert.Zero(t, out.Len())
			require.NotEmpty(t, diags)
			var found bool
			for _, d := range diags {
				if d.Code == tt.code && strings.Contains(d.Message, tt.message) {
					found = true
				}
			}
			assert.True(t, found, "want %s containing %q, got %v", tt.code, tt.message, diags)
		})
	}
}

func TestReducerWithoutStoreIsIncomplete(t *testing.T) {
	orphan := &decl.Declaration{
		ID: appPath + ".Log", Name: "Log", Element: decl.ElementFunc, Package: app, Exported: true,
		Annotation: decl.Annotation{Name: ReducerAnnotation},
		Params:     []decl.Field{field("a", ref("Reset"))},
		Location:   at(50),
	}
	out, diags := run(t, engine.DefaultRenderOptions(), orphan)
	assert.Zero(t, out.Len())
	require.Len(t, diags, 1)
	assert.Equal(t, diag.IncompleteUnit, diags[0].Code)
}

func TestReducerMethodOfAnotherType(t *testing.T) {
	rs := validReducers()
	rs[1].Annotation.Params = map[string]decl.Value{"store": decl.String("Counter")}
	rs[1].Enclosing = appPath + ".Other"
	rs[1].ID = appPath + ".Other.OnReset"
	out, diags := run(t, engine.DefaultRenderOptions(), append(rs, counterStore())...)
	assert.Zero(t, out.Len())
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "is a method of example.com/app.Other")
}

func TestParseTypeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"State", "example.com/app.State"},
		{"*State", "*example.com/app.State"},
		{"app.State", "example.com/app.State"},
		{"example.com/other.State", "example.com/other.State"},
		{"int", "int"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseTypeName(tt.in, app).String(), tt.in)
	}
	assert.Equal(t, "other", parseTypeName("example.com/other.State", app).PkgName)
}
