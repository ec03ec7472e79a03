package host

import (
	"go/ast"
	"go/token"
	"go/types"
	"sort"

	"golang.org/x/tools/go/packages"

	"github.com/teranos/minigen/decl"
	"github.com/teranos/minigen/diag"
)

// PackageDecls holds the declarations extracted from one package.
type PackageDecls struct {
	Package decl.Package
	Decls   []*decl.Declaration
	// Diagnostics are malformed directives and load problems.
	Diagnostics []diag.Diagnostic
}

// extractor turns one loaded package into declarations.
type extractor struct {
	pkg  *packages.Package
	info decl.Package
	out  *PackageDecls
}

func extract(p *packages.Package) *PackageDecls {
	info := decl.Package{Path: p.PkgPath, Name: p.Name, Dir: packageDir(p)}
	x := &extractor{pkg: p, info: info, out: &PackageDecls{Package: info}}

	for _, e := range p.Errors {
		x.out.Diagnostics = append(x.out.Diagnostics, loadDiagnostic(e))
	}
	if p.TypesInfo == nil {
		return x.out
	}
	for _, f := range p.Syntax {
		if ast.IsGenerated(f) {
			continue
		}
		x.file(f)
	}
	sort.Slice(x.out.Decls, func(i, j int) bool { return x.out.Decls[i].ID < x.out.Decls[j].ID })
	return x.out
}

func packageDir(p *packages.Package) string {
	if p.Dir != "" {
		return p.Dir
	}
	for _, files := range [][]string{p.GoFiles, p.CompiledGoFiles} {
		if len(files) > 0 {
			return dirOf(files[0])
		}
	}
	return ""
}

func loadDiagnostic(e packages.Error) diag.Diagnostic {
	loc := parsePos(e.Pos)
	return diag.New(diag.SevWarning, diag.PackageLoadError, loc, "%s", e.Msg)
}

func (x *extractor) file(f *ast.File) {
	for _, d := range f.Decls {
		switch d := d.(type) {
		case *ast.GenDecl:
			x.genDecl(d)
		case *ast.FuncDecl:
			x.funcDecl(d)
		}
	}
}

// docFor picks a spec's own doc comment, falling back to the declaration's
// when the declaration has a single unparenthesised spec.
func docFor(gd *ast.GenDecl, own *ast.CommentGroup) *ast.CommentGroup {
	if own != nil {
		return own
	}
	if !gd.Lparen.IsValid() {
		return gd.Doc
	}
	return nil
}

func (x *extractor) genDecl(gd *ast.GenDecl) {
	for _, spec := range gd.Specs {
		switch s := spec.(type) {
		case *ast.TypeSpec:
			x.typeSpec(s, docFor(gd, s.Doc))
		case *ast.ValueSpec:
			element := decl.ElementVar
			if gd.Tok == token.CONST {
				element = decl.ElementConst
			}
			for _, name := range s.Names {
				obj := x.pkg.TypesInfo.Defs[name]
				if obj == nil {
					continue
				}
				x.emit(docFor(gd, s.Doc), &decl.Declaration{
					Name:     name.Name,
					Element:  element,
					Exported: name.IsExported(),
					Type:     typeRef(obj.Type()),
					Location: x.position(name.Pos()),
				})
			}
		}
	}
}

func (x *extractor) typeSpec(s *ast.TypeSpec, doc *ast.CommentGroup) {
	obj, ok := x.pkg.TypesInfo.Defs[s.Name].(*types.TypeName)
	if !ok {
		return
	}
	d := &decl.Declaration{
		Name:     s.Name.Name,
		Element:  decl.ElementType,
		Exported: s.Name.IsExported(),
		Type:     typeRef(obj.Type()),
		Location: x.position(s.Name.Pos()),
	}
	if st, ok := obj.Type().Underlying().(*types.Struct); ok {
		for i := 0; i < st.NumFields(); i++ {
			f := st.Field(i)
			d.Members = append(d.Members, decl.Field{Name: f.Name(), Type: typeRef(f.Type()), Embedded: f.Embedded()})
		}
		d.Embeds = embeds(st)
	}
	x.emit(doc, d)

	// Annotated struct fields.
	astStruct, ok := s.Type.(*ast.StructType)
	if !ok || astStruct.Fields == nil {
		return
	}
	owner := x.info.Path + "." + s.Name.Name
	for _, field := range astStruct.Fields.List {
		if field.Doc == nil {
			continue
		}
		for _, name := range field.Names {
			obj := x.pkg.TypesInfo.Defs[name]
			if obj == nil {
				continue
			}
			x.emit(field.Doc, &decl.Declaration{
				Name:      name.Name,
				Element:   decl.ElementField,
				Enclosing: owner,
				Exported:  name.IsExported(),
				Type:      typeRef(obj.Type()),
				Location:  x.position(name.Pos()),
			})
		}
	}
}

func (x *extractor) funcDecl(fd *ast.FuncDecl) {
	obj, ok := x.pkg.TypesInfo.Defs[fd.Name].(*types.Func)
	if !ok {
		return
	}
	sig, ok := obj.Type().(*types.Signature)
	if !ok {
		return
	}
	d := &decl.Declaration{
		Name:     fd.Name.Name,
		Element:  decl.ElementFunc,
		Exported: fd.Name.IsExported(),
		Params:   fields(sig.Params()),
		Results:  fields(sig.Results()),
		Location: x.position(fd.Name.Pos()),
	}
	if recv := sig.Recv(); recv != nil {
		d.Element = decl.ElementMethod
		r := typeRef(recv.Type())
		d.Enclosing = r.QualifiedName()
	}
	x.emit(fd.Doc, d)
}

// emit fills in identity and package, one declaration per directive.
// Elements with several directives get IDs of the form element@annotation.
func (x *extractor) emit(doc *ast.CommentGroup, base *decl.Declaration) {
	dirs, errs := Directives(doc)
	for _, e := range errs {
		x.out.Diagnostics = append(x.out.Diagnostics,
			diag.New(diag.SevError, diag.MalformedDirective, x.position(e.Pos), "%v", e.Err))
	}
	if len(dirs) == 0 {
		return
	}
	base.Package = x.info
	qualified := base.QualifiedName()
	for _, dir := range dirs {
		d := base.Clone()
		d.Annotation = dir.Annotation
		d.ID = qualified
		if len(dirs) > 1 {
			d.ID = qualified + "@" + dir.Annotation.Name
		}
		x.out.Decls = append(x.out.Decls, d)
	}
}

func (x *extractor) position(pos token.Pos) decl.Location {
	p := x.pkg.Fset.Position(pos)
	return decl.Location{File: p.Filename, Line: p.Line, Column: p.Column}
}

func fields(t *types.Tuple) []decl.Field {
	if t == nil || t.Len() == 0 {
		return nil
	}
	out := make([]decl.Field, t.Len())
	for i := 0; i < t.Len(); i++ {
		v := t.At(i)
		out[i] = decl.Field{Name: v.Name(), Type: typeRef(v.Type())}
	}
	return out
}

// embeds lists the named types reachable through embedding, breadth first,
// with their depth. A type reachable twice keeps its shallowest depth.
func embeds(st *types.Struct) []decl.Embed {
	var out []decl.Embed
	seen := make(map[string]bool)
	level := []*types.Struct{st}
	for depth := 1; len(level) > 0; depth++ {
		var next []*types.Struct
		for _, s := range level {
			for i := 0; i < s.NumFields(); i++ {
				f := s.Field(i)
				if !f.Embedded() {
					continue
				}
				ref := typeRef(f.Type())
				key := ref.String()
				if seen[key] {
					continue
				}
				seen[key] = true
				out = append(out, decl.Embed{Type: ref, Depth: depth})
				t := f.Type()
				if p, ok := t.(*types.Pointer); ok {
					t = p.Elem()
				}
				if inner, ok := t.Underlying().(*types.Struct); ok {
					next = append(next, inner)
				}
			}
		}
		level = next
	}
	return out
}

// typeRef converts a go/types type into a host-neutral reference.
func typeRef(t types.Type) decl.TypeRef {
	t = types.Unalias(t)
	switch t := t.(type) {
	case *types.Pointer:
		r := typeRef(t.Elem())
		r.Pointer = true
		return r
	case *types.Slice:
		r := typeRef(t.Elem())
		r.Slice = true
		return r
	case *types.Named:
		obj := t.Obj()
		r := decl.TypeRef{Name: obj.Name()}
		if obj.Pkg() != nil {
			r.PkgPath = obj.Pkg().Path()
			r.PkgName = obj.Pkg().Name()
		}
		if args := t.TypeArgs(); args != nil && args.Len() > 0 {
			for i := 0; i < args.Len(); i++ {
				r.Args = append(r.Args, typeRef(args.At(i)))
			}
		} else if params := t.TypeParams(); params != nil {
			for i := 0; i < params.Len(); i++ {
				r.Args = append(r.Args, decl.TypeRef{Name: params.At(i).Obj().Name(), Wildcard: true})
			}
		}
		return r
	case *types.TypeParam:
		return decl.TypeRef{Name: t.Obj().Name(), Wildcard: true}
	case *types.Interface:
		if t.Empty() {
			return decl.TypeRef{Wildcard: true}
		}
	case *types.Basic:
		return decl.TypeRef{Name: t.Name()}
	}
	return decl.TypeRef{Name: types.TypeString(t, func(p *types.Package) string { return p.Name() })}
}
