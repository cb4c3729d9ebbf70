package emit

import (
	"strings"

	"github.com/panaflexx/gel2/internal/classes"
	"github.com/panaflexx/gel2/internal/lang/ast"
	"github.com/panaflexx/gel2/internal/types"
)

// ctorDecl returns m's syntax node, or an empty one for the implicit
// default constructor resolveClassMembers adds when a class declares none
// (spec §3 "resolve ... adds default constructors where absent"), which
// carries no Decl at all.
func ctorDecl(m *classes.Member) *ast.CtorDecl {
	if m.Decl == nil {
		return &ast.CtorDecl{}
	}
	return m.Decl.(*ast.CtorDecl)
}

// lowerBody lowers b under m's Locals/CFG (see Emitter.curMember), so a
// ref-count necessity query inside a constructor body resolves against the
// right constructor's analysis rather than conservatively defaulting off.
func lowerBody(e *Emitter, m *classes.Member, b *ast.BlockStmt) {
	if b == nil {
		return
	}
	e.curMember = m
	e.lowerStmts(b.List, 1)
	e.curMember = nil
}

// designatedCtor picks the constructor whose body is the real one (spec
// §4.6 "Constructor lowering": the target language's native constructor
// delegation is not expressive enough for this(...) chains). It is the
// first declared constructor with no this(...) delegation. Constructors
// with this(...) forward into a private _Construct helper carrying the
// designated constructor's parameter list and body; when the class has
// more than one constructor, the designated one forwards there too, and
// any other constructor without this(...) keeps its own body.
func designatedCtor(ctors []*classes.Member) *classes.Member {
	for _, m := range ctors {
		if len(ctorDecl(m).ThisArgs) == 0 {
			return m
		}
	}
	if len(ctors) > 0 {
		return ctors[0]
	}
	return nil
}

// emitCtorDecls is the constructor half of step 4's class declaration: one
// declaration per user constructor, plus private _Init and _Construct
// helpers when more than one constructor exists.
func (e *Emitter) emitCtorDecls(c *types.Class, ctors []*classes.Member, cur *access) {
	for _, m := range ctors {
		a := memberAccess(m)
		if a != *cur {
			e.printf("%s:\n", a.keyword())
			*cur = a
		}
		e.printf("\t%s(%s);\n", c.Name, e.paramList(m.Params))
	}
	if len(ctors) > 1 {
		if *cur != accessPrivate {
			e.printf("private:\n")
			*cur = accessPrivate
		}
		// spec §4.6 "if a class has more than one constructor, emit a
		// private _Init initializer method that all constructors call".
		e.printf("\tvoid _Init();\n")
		d := designatedCtor(ctors)
		e.printf("\tvoid _Construct(%s);\n", e.paramList(d.Params))
	}
}

// emitCtorDefs implements step 5's constructor bodies. base(...) lowers
// into the member-initializer list, which this target does support; the
// delegating this(...) form does not, so it lowers into a call to the
// private _Construct helper instead.
func (e *Emitter) emitCtorDefs(c *types.Class, ctors []*classes.Member) {
	if len(ctors) == 0 {
		return
	}
	d := designatedCtor(ctors)
	multi := len(ctors) > 1

	for _, m := range ctors {
		cd := ctorDecl(m)
		e.printf("%s::%s(%s)", c.Name, c.Name, e.paramList(m.Params))
		if len(cd.BaseArgs) > 0 {
			e.printf(" : %s(%s)", e.baseClassName(c), e.exprList(cd.BaseArgs))
		}
		e.printf(" {\n")
		switch {
		case multi && m == d:
			e.printf("\t_Construct(%s);\n", identList(d.Params))
		case len(cd.ThisArgs) > 0:
			e.printf("\t_Construct(%s);\n", e.exprList(cd.ThisArgs))
			lowerBody(e, m, cd.Body)
		default:
			if multi {
				e.printf("\t_Init();\n")
			}
			lowerBody(e, m, cd.Body)
		}
		e.printf("}\n\n")
	}

	if multi {
		e.emitInitDef(c)
		e.printf("void %s::_Construct(%s) {\n", c.Name, e.paramList(d.Params))
		e.printf("\t_Init();\n")
		lowerBody(e, d, ctorDecl(d).Body)
		e.printf("}\n\n")
	}
}

// emitInitDef prints _Init's body: an explicit default-initialization of
// every non-static field whose type has an observable zero value (spec
// §4.6's _Init "performs default field initialization"). Reference-shaped
// fields are left alone; their handle's own default constructor already
// leaves them null.
func (e *Emitter) emitInitDef(c *types.Class) {
	e.printf("void %s::_Init() {\n", c.Name)
	for _, m := range e.reg.OwnMembers(c) {
		if m.Kind != classes.KindField || m.IsStatic() {
			continue
		}
		if lit := defaultLiteral(m.Type); lit != "" {
			e.printf("\t%s = %s;\n", m.Name, lit)
		}
	}
	e.printf("}\n\n")
}

func defaultLiteral(t types.Type) string {
	b, ok := t.(*types.Basic)
	if !ok {
		return ""
	}
	switch b.Kind {
	case types.Bool:
		return "false"
	case types.Char, types.Int:
		return "0"
	case types.Float32, types.Float64:
		return "0.0"
	}
	return ""
}

func (e *Emitter) exprList(exprs []ast.Expr) string {
	parts := make([]string, len(exprs))
	for i, x := range exprs {
		parts[i] = e.lowerExpr(x)
	}
	return strings.Join(parts, ", ")
}

func identList(params []classes.Param) string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return strings.Join(names, ", ")
}
