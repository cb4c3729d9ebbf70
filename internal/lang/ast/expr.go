package ast

import "go/token"

// Expr is implemented by every expression node.
type Expr interface {
	Node
	exprNode()
}

type Ident struct {
	NamePos token.Pos
	Name    string
}

func (e *Ident) Pos() token.Pos { return e.NamePos }
func (*Ident) exprNode()        {}

type BasicLitKind int

const (
	LitBool BasicLitKind = iota
	LitChar
	LitInt
	LitFloat
	LitString
	LitNull
)

type BasicLit struct {
	ValPos token.Pos
	Kind   BasicLitKind
	Value  string // raw lexeme, parsed lazily by internal/exact
}

func (e *BasicLit) Pos() token.Pos { return e.ValPos }
func (*BasicLit) exprNode()        {}

// ThisExpr is the implicit receiver in instance member bodies.
type ThisExpr struct {
	KwPos token.Pos
}

func (e *ThisExpr) Pos() token.Pos { return e.KwPos }
func (*ThisExpr) exprNode()        {}

// SelectorExpr is `X.Sel`, a field/property/method reference.
type SelectorExpr struct {
	X   Expr
	Sel string
	// SelPos is the position of Sel itself; X.Pos() is the expression start.
	SelPos token.Pos
}

func (e *SelectorExpr) Pos() token.Pos { return e.X.Pos() }
func (*SelectorExpr) exprNode()        {}

// IndexExpr is `X[Index]`, lowered to the indexer get/set pair.
type IndexExpr struct {
	X     Expr
	Index Expr
}

func (e *IndexExpr) Pos() token.Pos { return e.X.Pos() }
func (*IndexExpr) exprNode()        {}

// CallExpr is a method/function call; Fun is typically a SelectorExpr or
// Ident naming the callee.
type CallExpr struct {
	Fun    Expr
	Lparen token.Pos
	Args   []Expr
	// ArgModes parallels Args: ModeRef/ModeOut for an argument written with
	// an explicit ref/out keyword at the call site, ModeIn otherwise (spec
	// §3 invariant (d)/(e), call-boundary ref/out argument passing).
	ArgModes []ParamMode
}

func (e *CallExpr) Pos() token.Pos { return e.Fun.Pos() }
func (*CallExpr) exprNode()        {}

// NewExpr is `new T(args)` or, with a Pool argument, an arena-allocated
// construction (spec.md §4.6 "an arena-allocated constructor call for `new`
// expressions whose creator argument is a *pool*").
type NewExpr struct {
	NewPos token.Pos
	Type   *TypeExpr
	Pool   Expr // nil for ordinary heap allocation
	Args   []Expr
}

func (e *NewExpr) Pos() token.Pos { return e.NewPos }
func (*NewExpr) exprNode()        {}

// NewArrayExpr is `new T[n]`.
type NewArrayExpr struct {
	NewPos token.Pos
	Elem   *TypeExpr
	Size   Expr
}

func (e *NewArrayExpr) Pos() token.Pos { return e.NewPos }
func (*NewArrayExpr) exprNode()        {}

// TakeExpr is the `take` operator (spec.md GLOSSARY): moves out of an
// owning storage location, leaving null there.
type TakeExpr struct {
	KwPos token.Pos
	X     Expr
}

func (e *TakeExpr) Pos() token.Pos { return e.KwPos }
func (*TakeExpr) exprNode()        {}

type UnaryExpr struct {
	OpPos token.Pos
	Op    string
	X     Expr
}

func (e *UnaryExpr) Pos() token.Pos { return e.OpPos }
func (*UnaryExpr) exprNode()        {}

type BinaryExpr struct {
	X     Expr
	OpPos token.Pos
	Op    string
	Y     Expr
}

func (e *BinaryExpr) Pos() token.Pos { return e.X.Pos() }
func (*BinaryExpr) exprNode()        {}

// CondExpr is the `cond ? a : b` ternary (one of the CFG's short-circuit
// join points, spec.md §4.2).
type CondExpr struct {
	QPos token.Pos
	Cond Expr
	X    Expr
	Y    Expr
}

func (e *CondExpr) Pos() token.Pos { return e.QPos }
func (*CondExpr) exprNode()        {}

// CastExpr is an explicit `(T)x` conversion.
type CastExpr struct {
	LParen token.Pos
	Type   *TypeExpr
	X      Expr
}

func (e *CastExpr) Pos() token.Pos { return e.LParen }
func (*CastExpr) exprNode()        {}

// ParenExpr preserves source parenthesization for diagnostics only; it is
// transparent to checking.
type ParenExpr struct {
	LParen token.Pos
	X      Expr
}

func (e *ParenExpr) Pos() token.Pos { return e.LParen }
func (*ParenExpr) exprNode()        {}
