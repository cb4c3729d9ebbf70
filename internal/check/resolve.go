package check

import (
	"github.com/panaflexx/gel2/internal/classes"
	"github.com/panaflexx/gel2/internal/diag"
	"github.com/panaflexx/gel2/internal/lang/ast"
	"github.com/panaflexx/gel2/internal/types"
)

// ResolveFile implements the resolve phase of spec §2's data flow: "a
// resolve pass binds type names" and (per §3 "Lifecycle") "resolve binds
// parent pointers and adds default constructors where absent". It must run
// after every class in the whole program has been declared (parent names
// may forward-reference classes declared in another file), so callers
// first call DeclareClasses for every parsed file, then ResolveFile for
// each.
func DeclareClasses(reg *classes.Registry, sink *diag.Sink, file *ast.File) {
	for _, cd := range file.Classes {
		_, err := reg.Declare(cd.Name, cd.Parent, cd.Mods.Has(ast.ModAbstract), cd.Mods.Has(ast.ModExtern), cd.Mods.Has(ast.ModPublic))
		if err != nil {
			sink.Errorf(cd.NamePos, "%s", err)
		}
	}
}

// ResolveFile binds every member's type and, for methods/ctors/properties/
// indexers, attaches the syntax node that checkMethodLike will later walk
// to build a CFG. Default constructors are added where a class declares
// none (spec §3).
func ResolveFile(reg *classes.Registry, sink *diag.Sink, file *ast.File) {
	for _, cd := range file.Classes {
		c, ok := reg.Lookup(cd.Name)
		if !ok {
			continue // already reported by DeclareClasses
		}
		resolveClassMembers(reg, sink, c, cd)
	}
}

func resolveClassMembers(reg *classes.Registry, sink *diag.Sink, c *types.Class, cd *ast.ClassDecl) {
	for _, f := range cd.Fields {
		t := ResolveType(reg, sink, f.Type)
		reg.AddMember(c, &classes.Member{Kind: classes.KindField, Name: f.Name, Mods: f.Mods, Pos: f.NamePos, Type: t, Decl: f})
	}
	for _, cf := range cd.Consts {
		t := ResolveType(reg, sink, cf.Type)
		reg.AddMember(c, &classes.Member{Kind: classes.KindConstField, Name: cf.Name, Mods: cf.Mods, Pos: cf.NamePos, Type: t, Decl: cf})
	}
	for _, md := range cd.Methods {
		t := resolveResultType(reg, sink, md.Result)
		m := &classes.Member{
			Kind: classes.KindMethod, Name: md.Name, Mods: md.Mods, Pos: md.NamePos,
			Type: t, Params: resolveParams(reg, sink, md.Params), Decl: md,
			IsOverride: md.Mods.Has(ast.ModOverride),
		}
		if m.IsOverride {
			wireOverride(reg, c, m)
		}
		reg.AddMember(c, m)
	}
	for _, ct := range cd.Ctors {
		m := &classes.Member{Kind: classes.KindCtor, Name: cd.Name, Mods: ct.Mods, Pos: ct.NamePos,
			Params: resolveParams(reg, sink, ct.Params), Decl: ct}
		reg.AddMember(c, m)
	}
	if len(cd.Ctors) == 0 {
		// spec §3 "resolve ... adds default constructors where absent".
		reg.AddMember(c, &classes.Member{Kind: classes.KindCtor, Name: cd.Name, Pos: cd.NamePos, Mods: ast.ModPublic})
	}
	for _, pd := range cd.Props {
		t := ResolveType(reg, sink, pd.Type)
		reg.AddMember(c, &classes.Member{Kind: classes.KindProperty, Name: pd.Name, Mods: pd.Mods, Pos: pd.NamePos, Type: t, Decl: pd})
	}
	for _, ix := range cd.Indexers {
		t := ResolveType(reg, sink, ix.Type)
		reg.AddMember(c, &classes.Member{
			Kind: classes.KindIndexer, Name: "this", Mods: ix.Mods, Pos: ix.NamePos, Type: t,
			Params: []classes.Param{{Name: ix.Key.Name, Type: ResolveType(reg, sink, ix.Key.Type)}},
			Decl:   ix,
		})
	}
}

// wireOverride finds the nearest ancestor method of the same name/arity
// and links m.Overrides to it (spec §4.1 "resolution always targets the
// declared, not overriding, member"; §4.4 needs this link for virtual
// dispatch in method-destroys).
func wireOverride(reg *classes.Registry, c *types.Class, m *classes.Member) {
	if c.Parent == nil {
		return
	}
	for _, cand := range reg.AllMembersNamed(c.Parent, m.Name) {
		if cand.Kind == classes.KindMethod && len(cand.Params) == len(m.Params) {
			m.Overrides = cand
			return
		}
	}
}

func resolveParams(reg *classes.Registry, sink *diag.Sink, params []*ast.Param) []classes.Param {
	out := make([]classes.Param, len(params))
	for i, p := range params {
		out[i] = classes.Param{Name: p.Name, Type: ResolveType(reg, sink, p.Type), Mode: p.Mode}
	}
	return out
}

func resolveResultType(reg *classes.Registry, sink *diag.Sink, te *ast.TypeExpr) types.Type {
	if te == nil || te.Name == "void" {
		return &types.Void{}
	}
	return ResolveType(reg, sink, te)
}

// ResolveType binds a syntactic TypeExpr to a resolved types.Type (spec §2
// "a resolve pass binds type names").
func ResolveType(reg *classes.Registry, sink *diag.Sink, te *ast.TypeExpr) types.Type {
	if te == nil {
		return &types.Void{}
	}
	if te.IsArray {
		elem := ResolveType(reg, sink, te.Elem)
		var arr types.Type = &types.Array{Elem: elem}
		if te.Owning {
			return &types.Owning{Elem: arr}
		}
		return arr
	}
	base := resolveBasicOrClass(reg, sink, te)
	if te.Owning {
		if !types.IsReference(base) {
			sink.Errorf(te.NamePos, "only reference types may be wrapped in an owning annotation, got %q", te.Name)
			return base
		}
		return &types.Owning{Elem: base}
	}
	return base
}

func resolveBasicOrClass(reg *classes.Registry, sink *diag.Sink, te *ast.TypeExpr) types.Type {
	switch te.Name {
	case "void":
		return &types.Void{}
	case "bool":
		return &types.Basic{Kind: types.Bool}
	case "char":
		return &types.Basic{Kind: types.Char}
	case "int":
		return &types.Basic{Kind: types.Int}
	case "float":
		return &types.Basic{Kind: types.Float32}
	case "double":
		return &types.Basic{Kind: types.Float64}
	case "string":
		return &types.String{}
	}
	c, ok := reg.Lookup(te.Name)
	if !ok {
		sink.Errorf(te.NamePos, "undeclared type %q", te.Name)
		return &types.Void{}
	}
	return c
}
