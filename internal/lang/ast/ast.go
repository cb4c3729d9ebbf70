// Package ast defines the typed syntax tree produced by internal/lang/parse.
// Each node participates in checking, CFG construction, and emission
// (spec.md §2, "Expression / statement AST"). The shape follows go/ast's
// conventions (Pos()-carrying nodes, go/token.Pos positions, a small
// interface per syntactic category) as used throughout the teacher's
// go/types/stmt.go, generalized from Go declarations to classes, fields,
// properties, indexers, and constructors.
package ast

import "go/token"

// Node is the root of every syntax-tree type.
type Node interface {
	Pos() token.Pos
}

// Modifier bits on classes and members (spec.md §3: "attributes
// (abstract/extern/public)").
type Modifier uint

const (
	ModPublic Modifier = 1 << iota
	ModProtected
	ModPrivate
	ModAbstract
	ModExtern
	ModStatic
	ModVirtual
	ModOverride
	ModConst
)

func (m Modifier) Has(f Modifier) bool { return m&f != 0 }

// ParamMode is a parameter's passing mode (spec.md §3 invariant d).
type ParamMode int

const (
	ModeIn ParamMode = iota
	ModeRef
	ModeOut
)

// TypeExpr is the syntactic (unresolved) spelling of a type: a class name,
// an array-of, or an owning-wrapper annotation. internal/types binds these
// to resolved Type values during the resolve pass.
type TypeExpr struct {
	NamePos token.Pos
	Name    string // "", "void", or a class name
	IsArray bool
	Elem    *TypeExpr // non-nil iff IsArray
	Owning  bool      // trailing '^' annotation
}

func (t *TypeExpr) Pos() token.Pos { return t.NamePos }

func (t *TypeExpr) String() string {
	if t == nil {
		return "<nil>"
	}
	s := t.Name
	if t.IsArray {
		s = t.Elem.String() + "[]"
	}
	if t.Owning {
		s += "^"
	}
	return s
}

// Param is a formal parameter.
type Param struct {
	NamePos token.Pos
	Name    string
	Type    *TypeExpr
	Mode    ParamMode
}

func (p *Param) Pos() token.Pos { return p.NamePos }

// File is one parsed source file: a sequence of class declarations plus
// the accumulated #include-style import list (spec.md §4.6 step 2).
type File struct {
	Name    string
	Imports []string
	Classes []*ClassDecl
}

// ClassDecl is a class declaration (spec.md §3 "Class").
type ClassDecl struct {
	NamePos     token.Pos
	Name        string
	Mods        Modifier
	Parent      string // "" means implicit root object class
	Fields      []*FieldDecl
	Consts      []*ConstFieldDecl
	Methods     []*MethodDecl
	Ctors       []*CtorDecl
	Props       []*PropertyDecl
	Indexers    []*IndexerDecl
}

func (c *ClassDecl) Pos() token.Pos { return c.NamePos }

type FieldDecl struct {
	NamePos token.Pos
	Name    string
	Type    *TypeExpr
	Mods    Modifier
}

func (f *FieldDecl) Pos() token.Pos { return f.NamePos }

type ConstFieldDecl struct {
	NamePos token.Pos
	Name    string
	Type    *TypeExpr
	Value   Expr
	Mods    Modifier
}

func (c *ConstFieldDecl) Pos() token.Pos { return c.NamePos }

type MethodDecl struct {
	NamePos token.Pos
	Name    string
	Mods    Modifier
	Params  []*Param
	Result  *TypeExpr // nil means void
	Body    *BlockStmt
}

func (m *MethodDecl) Pos() token.Pos { return m.NamePos }

// CtorDecl is a constructor declaration. ThisArgs/BaseArgs model
// `this(...)`/`base(...)` delegation (spec.md §4.6 "Constructor lowering").
type CtorDecl struct {
	NamePos  token.Pos
	Mods     Modifier
	Params   []*Param
	ThisArgs []Expr
	BaseArgs []Expr
	Body     *BlockStmt
}

func (c *CtorDecl) Pos() token.Pos { return c.NamePos }

// PropertyDecl is a pair of get/set method shells (spec.md §3 "Members").
type PropertyDecl struct {
	NamePos token.Pos
	Name    string
	Type    *TypeExpr
	Mods    Modifier
	Get     *BlockStmt // nil if no getter
	Set     *BlockStmt // nil if no setter; implicit parameter name "value"
}

func (p *PropertyDecl) Pos() token.Pos { return p.NamePos }

// IndexerDecl is a pair of get/set methods keyed by a single parameter.
type IndexerDecl struct {
	NamePos token.Pos
	Type    *TypeExpr
	Key     *Param
	Mods    Modifier
	Get     *BlockStmt
	Set     *BlockStmt
}

func (ix *IndexerDecl) Pos() token.Pos { return ix.NamePos }
