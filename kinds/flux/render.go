package flux

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/teranos/minigen/decl"
	"github.com/teranos/minigen/engine"
	"github.com/teranos/minigen/internal/util"
)

// ActionsFile is the file the actions kind writes into each package.
const ActionsFile = "zz_actions_gen.go"

// importSet collects imports for a generated file and gives every package
// a unique identifier: the first package with a given name keeps it, later
// ones are aliased name2, name3 and so on.
type importSet struct {
	from  string
	paths map[string]string // path -> identifier
	taken map[string]string // identifier -> path
}

func newImports(from string, std ...string) *importSet {
	s := &importSet{from: from, paths: make(map[string]string), taken: make(map[string]string)}
	for _, p := range std {
		s.add(p, path.Base(p))
	}
	return s
}

// add registers a package and returns its identifier.
func (s *importSet) add(pkgPath, name string) string {
	if id, ok := s.paths[pkgPath]; ok {
		return id
	}
	if name == "" {
		name = path.Base(pkgPath)
	}
	id := name
	for n := 2; s.taken[id] != ""; n++ {
		id = fmt.Sprintf("%s%d", name, n)
	}
	s.paths[pkgPath] = id
	s.taken[id] = pkgPath
	return id
}

func (s *importSet) addType(t decl.TypeRef) {
	if t.PkgPath != "" && t.PkgPath != s.from {
		s.add(t.PkgPath, t.PkgName)
	}
	for _, a := range t.Args {
		s.addType(a)
	}
}

// qualify is the decl.Qualifier for the file: types of the file's own
// package stay unqualified.
func (s *importSet) qualify(pkgPath string) string {
	if pkgPath == s.from {
		return ""
	}
	return s.paths[pkgPath]
}

func (s *importSet) expr(t decl.TypeRef) string {
	return t.ExprQualified(s.qualify)
}

func (s *importSet) write(b *strings.Builder) {
	paths := make([]string, 0, len(s.paths))
	for p := range s.paths {
		paths = append(paths, p)
	}
	// Standard library first, then a blank line, then everything else.
	sort.Slice(paths, func(i, j int) bool {
		si, sj := isStd(paths[i]), isStd(paths[j])
		if si != sj {
			return si
		}
		return paths[i] < paths[j]
	})
	b.WriteString("import (\n")
	for i, p := range paths {
		if i > 0 && isStd(paths[i-1]) && !isStd(p) {
			b.WriteString("\n")
		}
		if id := s.paths[p]; id != path.Base(p) {
			fmt.Fprintf(b, "\t%s %q\n", id, p)
		} else {
			fmt.Fprintf(b, "\t%q\n", p)
		}
	}
	b.WriteString(")\n\n")
}

func isStd(p string) bool {
	first, _, _ := strings.Cut(p, "/")
	return !strings.Contains(first, ".")
}

// renderActions writes the action type table: each action maps to itself,
// then its embedded types by depth, then any.
func renderActions(u *engine.Unit, _ engine.RenderOptions) ([]engine.Output, error) {
	pkg := u.Package()
	imports := newImports(pkg.Path, "reflect")

	var chains [][]decl.TypeRef
	for _, d := range u.Role("action") {
		self := d.Type
		if self.IsZero() {
			self = decl.TypeRef{PkgPath: d.Package.Path, PkgName: d.Package.Name, Name: d.Name}
		}
		chain := []decl.TypeRef{self}
		embeds := append([]decl.Embed(nil), d.Embeds...)
		sort.SliceStable(embeds, func(i, j int) bool { return embeds[i].Depth < embeds[j].Depth })
		for _, e := range embeds {
			chain = append(chain, e.Type)
		}
		for _, t := range chain {
			imports.addType(t)
		}
		chains = append(chains, chain)
	}

	var entries strings.Builder
	for _, chain := range chains {
		fmt.Fprintf(&entries, "\treflect.TypeFor[%s](): {", imports.expr(chain[0]))
		for _, t := range chain {
			fmt.Fprintf(&entries, "reflect.TypeFor[%s](), ", imports.expr(t))
		}
		entries.WriteString("reflect.TypeFor[any]()},\n")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "package %s\n\n", pkg.Name)
	imports.write(&b)
	b.WriteString("// ActionTypes maps each action type to the types it is dispatched as.\n")
	b.WriteString("var ActionTypes = map[reflect.Type][]reflect.Type{\n")
	b.WriteString(entries.String())
	b.WriteString("}\n")

	return []engine.Output{{Suffix: "go", File: ActionsFile, Text: b.String()}}, nil
}

// reducer is one reducer member, read for rendering.
type reducer struct {
	decl     *decl.Declaration
	pure     bool
	action   decl.TypeRef
	priority int64
}

func reducers(u *engine.Unit) []reducer {
	var out []reducer
	for _, d := range u.Role("reducer") {
		p, _ := d.Annotation.IntParam("priority", DefaultPriority)
		out = append(out, reducer{
			decl:     d,
			pure:     len(d.Results) == 1,
			action:   d.Params[len(d.Params)-1].Type,
			priority: p,
		})
	}
	return out
}

// call renders the reducer invocation for store variable s and action a.
func (r reducer) call(imports *importSet) string {
	target := r.decl.Name
	if r.decl.Element == decl.ElementMethod {
		target = "s." + r.decl.Name
	} else if id := imports.qualify(r.decl.Package.Path); id != "" {
		target = id + "." + r.decl.Name
	}
	if r.pure {
		return "s.SetState(" + target + "(s.State(), a))"
	}
	return target + "(a)"
}

func (r reducer) kind() string {
	if r.pure {
		return "pure"
	}
	return "impure"
}

// renderStore writes SubscribeReducers for the store and, with docs
// enabled, a markdown table of its reducers.
func renderStore(u *engine.Unit, opts engine.RenderOptions) ([]engine.Output, error) {
	c := u.First("container")
	pkg := c.Package
	base := util.ToSnakeCase(c.Name)
	rs := reducers(u)

	imports := newImports(pkg.Path, "io", RuntimePath)
	for _, r := range rs {
		imports.addType(r.action)
		if r.decl.Element == decl.ElementFunc && r.decl.Package.Path != pkg.Path {
			imports.add(r.decl.Package.Path, r.decl.Package.Name)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "package %s\n\n", pkg.Name)
	imports.write(&b)
	fmt.Fprintf(&b, "// SubscribeReducers subscribes the reducers of %s to d. Closing the\n", c.Name)
	b.WriteString("// result removes every subscription.\n")
	fmt.Fprintf(&b, "func (s *%s) SubscribeReducers(d *flux.Dispatcher) io.Closer {\n", c.Name)
	b.WriteString("\treturn flux.NewCompositeCloser(\n")
	for _, r := range rs {
		fmt.Fprintf(&b, "\t\tflux.Subscribe(d, %d, func(a %s) { %s }),\n", r.priority, imports.expr(r.action), r.call(imports))
	}
	b.WriteString("\t)\n}\n")

	out := []engine.Output{{Suffix: "go", File: base + "_reducers_gen.go", Text: b.String()}}
	if opts.Docs {
		out = append(out, engine.Output{Suffix: "doc", File: base + "_reducers.md", Text: storeDoc(u, c, rs)})
	}
	return out, nil
}

func storeDoc(u *engine.Unit, c *decl.Declaration, rs []reducer) string {
	state, _ := stateType(c)
	sorted := append([]reducer(nil), rs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].priority < sorted[j].priority })

	var b strings.Builder
	fmt.Fprintf(&b, "# %s reducers\n\n", c.Name)
	fmt.Fprintf(&b, "Store `%s` holds `%s`. Reducers run in priority order, lowest first.\n\n", u.Anchor, state.Expr(c.Package.Path))
	b.WriteString("| Priority | Action | Reducer | Kind | Source |\n")
	b.WriteString("|---:|---|---|---|---|\n")
	for _, r := range sorted {
		fmt.Fprintf(&b, "| %d | `%s` | `%s` | %s | %s:%d |\n",
			r.priority, r.action.Expr(c.Package.Path), r.decl.Name, r.kind(),
			filepath.Base(r.decl.Location.File), r.decl.Location.Line)
	}
	return b.String()
}
