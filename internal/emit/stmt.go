package emit

import (
	"bytes"
	"fmt"
	"go/token"
	"strings"

	"github.com/panaflexx/gel2/internal/check"
	"github.com/panaflexx/gel2/internal/lang/ast"
	"github.com/panaflexx/gel2/internal/types"
)

// lowerBlock prints b's statements at indent, one per line, the way
// ssa/print.go prints one instruction per line within a BasicBlock's
// disassembly.
func (e *Emitter) lowerBlock(b *ast.BlockStmt, indent int) {
	e.printf("%s{\n", tabs(indent))
	e.lowerStmts(b.List, indent+1)
	e.printf("%s}\n", tabs(indent))
}

// lowerStmts prints a bare statement sequence with no enclosing braces, for
// call sites (constructor/method bodies) that print their own braces around
// a member-function signature.
func (e *Emitter) lowerStmts(list []ast.Stmt, indent int) {
	for _, s := range list {
		e.lowerStmt(s, indent)
	}
}

func tabs(n int) string { return strings.Repeat("\t", n) }

func (e *Emitter) lowerStmt(s ast.Stmt, indent int) {
	t := tabs(indent)
	switch n := s.(type) {
	case *ast.BlockStmt:
		e.lowerBlock(n, indent)
	case *ast.ExprStmt:
		e.printf("%s%s;\n", t, e.lowerExpr(n.X))
	case *ast.DeclStmt:
		e.lowerDeclStmt(n, indent)
	case *ast.AssignStmt:
		e.printf("%s%s %s %s;\n", t, e.lowerExpr(n.Lhs), n.Op, e.lowerExpr(n.Rhs))
	case *ast.IncDecStmt:
		e.printf("%s%s%s;\n", t, e.lowerExpr(n.X), n.Op)
	case *ast.ReturnStmt:
		if n.Result == nil {
			e.printf("%sreturn;\n", t)
		} else {
			e.printf("%sreturn %s;\n", t, e.lowerExpr(n.Result))
		}
	case *ast.BranchStmt:
		if n.Kind == ast.Break {
			e.printf("%sbreak;\n", t)
		} else {
			e.printf("%scontinue;\n", t)
		}
	case *ast.IfStmt:
		e.lowerIfStmt(n, indent)
	case *ast.WhileStmt:
		e.printf("%swhile (%s)\n", t, e.lowerExpr(n.Cond))
		e.lowerBlock(n.Body, indent)
	case *ast.DoStmt:
		e.printf("%sdo\n", t)
		e.lowerBlock(n.Body, indent)
		e.printf("%swhile (%s);\n", t, e.lowerExpr(n.Cond))
	case *ast.ForStmt:
		e.lowerForStmt(n, indent)
	case *ast.ForeachStmt:
		e.lowerForeachStmt(n, indent)
	case *ast.SwitchStmt:
		e.lowerSwitchStmt(n, indent)
	}
}

// lowerDeclStmt prints each declared local's handle-qualified type, asking
// internal/refcount whether this specific declaration needs a runtime
// ref-count (spec §4.5) via the cfg.Local classes.Member.Locals publishes
// alongside the CFG (internal/check.checkBody's m.Locals assignment).
// -r/ForceRC overrides the analysis and forces the pessimistic handle.
func (e *Emitter) lowerDeclStmt(n *ast.DeclStmt, indent int) {
	t := tabs(indent)
	typ := check.ResolveType(e.reg, e.scratchSink(), n.Type)
	for i, name := range n.Names {
		needsRef := e.opts.ForceRC || e.needsRefForDecl(typ, n.NamePos[i])
		shape := LocalShape(e.reg, typ, needsRef, !e.opts.Unsafe)
		targetType := TargetType(typ, shape)
		if n.Inits[i] != nil {
			e.printf("%s%s %s = %s;\n", t, targetType, name, e.lowerExpr(n.Inits[i]))
		} else {
			e.printf("%s%s %s;\n", t, targetType, name)
		}
	}
}

// needsRefForDecl finds the cfg.Local e.curMember.Locals published for the
// declaration at pos and runs internal/refcount's CFG query over it. It
// returns false (the conservative default) whenever there's nothing to
// track: a value type with no destructible class, or no current member
// (e.g. a declaration checked but not reached through a def that sets
// e.curMember, which should not happen for any body-level declaration).
func (e *Emitter) needsRefForDecl(typ types.Type, pos token.Pos) bool {
	cls := destroyTrackedClass(typ)
	if cls == nil || e.curMember == nil || e.curMember.CFG == nil {
		return false
	}
	for _, l := range e.curMember.Locals {
		if l.LocalPos() != pos {
			continue
		}
		return e.rc.NeedsRefLocal(e.curMember.CFG, l, cls).NeedsRef
	}
	return false
}

func (e *Emitter) lowerIfStmt(n *ast.IfStmt, indent int) {
	t := tabs(indent)
	e.printf("%sif (%s)\n", t, e.lowerExpr(n.Cond))
	e.lowerBlock(n.Body, indent)
	if n.Else != nil {
		e.printf("%selse\n", t)
		if blk, ok := n.Else.(*ast.BlockStmt); ok {
			e.lowerBlock(blk, indent)
		} else {
			e.lowerStmt(n.Else, indent)
		}
	}
}

func (e *Emitter) lowerForStmt(n *ast.ForStmt, indent int) {
	t := tabs(indent)
	init, cond, post := "", "", ""
	if n.Init != nil {
		init = strings.TrimSuffix(strings.TrimSpace(e.renderInline(n.Init)), ";")
	}
	if n.Cond != nil {
		cond = e.lowerExpr(n.Cond)
	}
	if n.Post != nil {
		post = strings.TrimSuffix(strings.TrimSpace(e.renderInline(n.Post)), ";")
	}
	e.printf("%sfor (%s; %s; %s)\n", t, init, cond, post)
	e.lowerBlock(n.Body, indent)
}

// renderInline lowers a single simple statement (for-loop init/post
// clauses) without its own indentation or trailing newline.
func (e *Emitter) renderInline(s ast.Stmt) string {
	saved := e.buf
	e.buf = bytes.Buffer{}
	e.lowerStmt(s, 0)
	out := e.buf.String()
	e.buf = saved
	return out
}

// lowerForeachStmt synthesizes the indexed loop spec §4.2 describes:
// "evaluate collection once; declare iteration local; loop from 0 to
// Count-1 reading via indexer."
func (e *Emitter) lowerForeachStmt(n *ast.ForeachStmt, indent int) {
	t := tabs(indent)
	collVar := "$" + n.VarName + "$coll"
	idxVar := "$" + n.VarName + "$index"
	e.printf("%sauto& %s = %s;\n", t, collVar, e.lowerExpr(n.Coll))
	e.printf("%sfor (int32_t %s = 0; %s < %s.Count(); %s++) {\n", t, idxVar, idxVar, collVar, idxVar)
	e.printf("%s\tauto %s = %s.GetAt(%s);\n", t, n.VarName, collVar, idxVar)
	for _, st := range n.Body.List {
		e.lowerStmt(st, indent+1)
	}
	e.printf("%s}\n", t)
}

func (e *Emitter) lowerSwitchStmt(n *ast.SwitchStmt, indent int) {
	t := tabs(indent)
	e.printf("%sswitch (%s) {\n", t, e.lowerExpr(n.Tag))
	for _, cc := range n.Cases {
		if len(cc.Values) == 0 {
			e.printf("%sdefault:\n", t)
		} else {
			for _, v := range cc.Values {
				e.printf("%scase %s:\n", t, e.lowerExpr(v))
			}
		}
		for _, st := range cc.Body {
			e.lowerStmt(st, indent+1)
		}
	}
	e.printf("%s}\n", t)
}

func (e *Emitter) lowerExpr(x ast.Expr) string {
	switch n := x.(type) {
	case *ast.ParenExpr:
		return "(" + e.lowerExpr(n.X) + ")"
	case *ast.Ident:
		return n.Name
	case *ast.BasicLit:
		return lowerLit(n)
	case *ast.ThisExpr:
		return "this"
	case *ast.SelectorExpr:
		return e.lowerExpr(n.X) + "->" + n.Sel
	case *ast.IndexExpr:
		return fmt.Sprintf("%s.GetAt(%s)", e.lowerExpr(n.X), e.lowerExpr(n.Index))
	case *ast.CallExpr:
		return e.lowerCall(n)
	case *ast.NewExpr:
		return e.lowerNew(n)
	case *ast.NewArrayExpr:
		return fmt.Sprintf("gel::Array<%s>::New(%s)", typeExprName(n.Elem), e.lowerExpr(n.Size))
	case *ast.TakeExpr:
		return e.lowerExpr(n.X) + ".take()"
	case *ast.UnaryExpr:
		return n.Op + e.lowerExpr(n.X)
	case *ast.BinaryExpr:
		return fmt.Sprintf("%s %s %s", e.lowerExpr(n.X), n.Op, e.lowerExpr(n.Y))
	case *ast.CondExpr:
		return fmt.Sprintf("(%s ? %s : %s)", e.lowerExpr(n.Cond), e.lowerExpr(n.X), e.lowerExpr(n.Y))
	case *ast.CastExpr:
		return fmt.Sprintf("static_cast<%s>(%s)", typeExprName(n.Type), e.lowerExpr(n.X))
	}
	return "/* unhandled expr */"
}

func (e *Emitter) lowerCall(n *ast.CallExpr) string {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = e.lowerExpr(a)
	}
	switch fn := n.Fun.(type) {
	case *ast.SelectorExpr:
		return fmt.Sprintf("%s->%s(%s)", e.lowerExpr(fn.X), fn.Sel, strings.Join(args, ", "))
	case *ast.Ident:
		return fmt.Sprintf("%s(%s)", fn.Name, strings.Join(args, ", "))
	}
	return "/* unhandled call */"
}

func (e *Emitter) lowerNew(n *ast.NewExpr) string {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = e.lowerExpr(a)
	}
	name := typeExprName(n.Type)
	if n.Pool != nil {
		// spec §4.6 "an arena-allocated constructor call for new
		// expressions whose creator argument is a pool".
		return fmt.Sprintf("%s.Alloc<%s>(%s)", e.lowerExpr(n.Pool), name, strings.Join(args, ", "))
	}
	return fmt.Sprintf("new %s(%s)", name, strings.Join(args, ", "))
}

func lowerLit(n *ast.BasicLit) string {
	switch n.Kind {
	case ast.LitBool, ast.LitInt, ast.LitFloat:
		return n.Value
	case ast.LitChar:
		return "u'" + n.Value + "'"
	case ast.LitString:
		return fmt.Sprintf("%q", n.Value)
	case ast.LitNull:
		return "nullptr"
	}
	return n.Value
}

func typeExprName(te *ast.TypeExpr) string {
	if te == nil {
		return "void"
	}
	if te.IsArray {
		return fmt.Sprintf("gel::Array<%s>", typeExprName(te.Elem))
	}
	return te.Name
}
