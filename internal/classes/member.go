// Package classes is the class registry and member table: classes,
// fields, methods, properties, indexers, constructors; inheritance; member
// lookup with accessibility and overload resolution (spec §2 "Class
// registry & member table", §4.1 "Overload resolution"). It plays the role
// the teacher's go/types package gives to *types.Scope and *types.Named's
// method set, generalized to single inheritance with access modifiers the
// teacher's target language (Go) does not have.
package classes

import (
	"go/token"

	"github.com/panaflexx/gel2/internal/cfg"
	"github.com/panaflexx/gel2/internal/exact"
	"github.com/panaflexx/gel2/internal/lang/ast"
	"github.com/panaflexx/gel2/internal/types"
)

// Kind discriminates a Member's syntactic category (spec §3 "Members").
type Kind int

const (
	KindField Kind = iota
	KindConstField
	KindStaticField
	KindMethod
	KindCtor
	KindProperty
	KindIndexer
)

// Param is a resolved formal parameter.
type Param struct {
	Name string
	Type types.Type
	Mode ast.ParamMode
}

// Member is the resolved counterpart of an ast member declaration: it
// carries its containing class, attributes, resolved type, and — for
// methods — a CFG root filled in by internal/check once the method body is
// checked (spec §3 "Members").
type Member struct {
	Kind  Kind
	Name  string
	Class *types.Class
	Mods  ast.Modifier
	Pos   token.Pos

	Type types.Type // field/property/indexer type, or method result type

	Params []Param // methods, constructors, indexers (len 1)

	IsOverride bool
	Overrides  *Member // the member this one overrides, if IsOverride

	// Decl is the originating syntax node, retained for checking and
	// emission (e.g. method/ctor bodies, property get/set blocks).
	Decl ast.Node

	// CFG is the method's control-flow graph, populated by internal/check
	// once the body has been checked (spec §3 "a CFG rooted at a
	// synthetic entry node plus a join node exit_ for all return points").
	CFG *cfg.Graph

	// Locals is every local internal/check declared while building CFG,
	// in declaration order, published alongside CFG so internal/emit can
	// ask internal/refcount.Analyzer.NeedsRefLocal about a specific
	// declaration instead of conservatively assuming it never needs a
	// runtime ref-count (spec §4.5).
	Locals []cfg.Local

	// ConstValue holds a const field's folded initializer, filled in by
	// internal/check once the field's expression has been evaluated.
	// Nil for every Kind other than KindConstField.
	ConstValue exact.Value
}

func (m *Member) IsPublic() bool    { return m.Mods.Has(ast.ModPublic) }
func (m *Member) IsProtected() bool { return m.Mods.Has(ast.ModProtected) }
func (m *Member) IsPrivate() bool   { return m.Mods.Has(ast.ModPrivate) }
func (m *Member) IsStatic() bool    { return m.Mods.Has(ast.ModStatic) }
func (m *Member) IsAbstract() bool  { return m.Mods.Has(ast.ModAbstract) }
