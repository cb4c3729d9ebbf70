package check

import (
	"github.com/panaflexx/gel2/internal/classes"
	"github.com/panaflexx/gel2/internal/exact"
	"github.com/panaflexx/gel2/internal/lang/ast"
	"github.com/panaflexx/gel2/internal/types"
)

// checkConstFields folds every const field's initializer via
// internal/exact, the way the teacher's go/types evaluates package-level
// constant declarations, and records the result on the Member, where
// emission prints it as the constant's initializer.
func (c *Checker) checkConstFields(cls *types.Class) {
	for _, m := range c.Reg.OwnMembers(cls) {
		if m.Kind != classes.KindConstField {
			continue
		}
		cf := m.Decl.(*ast.ConstFieldDecl)
		v, ok := evalConstExpr(cf.Value)
		if !ok {
			c.errorfPos(cf, "const field %q initializer is not a compile-time constant", m.Name)
			continue
		}
		if !constKindMatches(v.Kind(), m.Type) {
			c.errorfPos(cf, "const field %q initializer does not match declared type %s", m.Name, m.Type)
			continue
		}
		m.ConstValue = v
	}
}

func constKindMatches(k exact.Kind, t types.Type) bool {
	b, ok := t.(*types.Basic)
	if !ok {
		_, isString := t.(*types.String)
		return isString && k == exact.String
	}
	switch b.Kind {
	case types.Bool:
		return k == exact.Bool
	case types.Char:
		return k == exact.Char
	case types.Int:
		return k == exact.Int
	case types.Float32, types.Float64:
		return k == exact.Float || k == exact.Int
	}
	return false
}

// evalConstExpr folds the small subset of constant expressions the
// language allows in const-field initializers and switch case labels:
// literals, unary + and integer negation, and binary + - * / on them.
func evalConstExpr(e ast.Expr) (exact.Value, bool) {
	switch n := e.(type) {
	case *ast.ParenExpr:
		return evalConstExpr(n.X)
	case *ast.BasicLit:
		return evalBasicLit(n)
	case *ast.UnaryExpr:
		x, ok := evalConstExpr(n.X)
		if !ok {
			return nil, false
		}
		if n.Op == "-" {
			if iv, ok := exact.Int64Val(x); ok {
				return exact.MakeInt64(-iv), true
			}
		}
		return x, n.Op == "+"
	case *ast.BinaryExpr:
		x, ok := evalConstExpr(n.X)
		if !ok {
			return nil, false
		}
		y, ok := evalConstExpr(n.Y)
		if !ok {
			return nil, false
		}
		v, err := exact.BinaryOp(x, n.Op, y)
		if err != nil {
			return nil, false
		}
		return v, true
	}
	return nil, false
}

func evalBasicLit(n *ast.BasicLit) (exact.Value, bool) {
	switch n.Kind {
	case ast.LitBool:
		return exact.MakeBool(n.Value == "true"), true
	case ast.LitInt:
		v, err := exact.MakeFromLiteral(n.Value, exact.Int)
		return v, err == nil
	case ast.LitFloat:
		v, err := exact.MakeFromLiteral(n.Value, exact.Float)
		return v, err == nil
	case ast.LitString:
		return exact.MakeString(n.Value), true
	case ast.LitChar:
		if len(n.Value) > 0 {
			return exact.MakeChar(rune(n.Value[0])), true
		}
	}
	return nil, false
}
