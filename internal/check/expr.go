package check

import (
	"github.com/panaflexx/gel2/internal/cfg"
	"github.com/panaflexx/gel2/internal/classes"
	"github.com/panaflexx/gel2/internal/exact"
	"github.com/panaflexx/gel2/internal/lang/ast"
	"github.com/panaflexx/gel2/internal/types"
)

// tempCtx tells checkExpr whether the expression's own owning result (if
// any) is immediately consumed by its surrounding context — an
// assignment, initializer, return, or call argument (spec §4.1's
// ownership-transfer conversion contexts) — or whether it should be
// tracked as a temporary destroyed at the end of the enclosing statement
// (spec §4.2's final paragraph on temporaries).
type tempCtx int

const (
	ctxConsumeNone tempCtx = iota
	ctxConsumeOwning
)

type pendingTemp struct {
	cls      *types.Class
	consumed bool
}

func (c *Checker) beginTemps() int { return len(c.pendingTemps) }

// endTemps inserts a node destroying every temporary pushed since mark
// that was never consumed.
func (c *Checker) endTemps(mark int, pos ast.Node) {
	var leftover []*types.Class
	for _, pt := range c.pendingTemps[mark:] {
		if !pt.consumed {
			leftover = append(leftover, pt.cls)
		}
	}
	c.pendingTemps = c.pendingTemps[:mark]
	if len(leftover) > 0 {
		n := c.addNode()
		for _, cls := range leftover {
			n.AddDestroys(cls)
		}
	}
}

func (c *Checker) pushTemp(cls *types.Class) int {
	c.pendingTemps = append(c.pendingTemps, pendingTemp{cls: cls})
	return len(c.pendingTemps) - 1
}

func (c *Checker) consumeTemp(idx int) {
	if idx >= 0 && idx < len(c.pendingTemps) {
		c.pendingTemps[idx].consumed = true
	}
}

// checkExpr type-checks e, advancing the CFG cursor for any subexpression
// that calls a method (spec §4.2 "a node per call"), and returns e's
// resolved type. ctx tells it whether an owning result this expression
// itself produces is consumed by the caller.
func (c *Checker) checkExpr(e ast.Expr, ctx tempCtx) types.Type {
	t, idx := c.checkExprRaw(e)
	if ctx == ctxConsumeOwning {
		c.consumeTemp(idx)
	}
	return t
}

// checkExprRaw returns the expression's type and, if it just pushed an
// owning temporary, that temporary's pendingTemps index (else -1).
func (c *Checker) checkExprRaw(e ast.Expr) (types.Type, int) {
	switch n := e.(type) {
	case *ast.ParenExpr:
		return c.checkExprRaw(n.X)
	case *ast.Ident:
		return c.checkIdent(n), -1
	case *ast.BasicLit:
		return c.checkBasicLit(n), -1
	case *ast.ThisExpr:
		if c.thisType == nil {
			c.errorfPos(n, "'this' used outside of an instance member")
			return &types.Void{}, -1
		}
		return c.thisType, -1
	case *ast.SelectorExpr:
		return c.checkSelector(n), -1
	case *ast.IndexExpr:
		return c.checkIndex(n), -1
	case *ast.CallExpr:
		return c.checkCall(n)
	case *ast.NewExpr:
		return c.checkNew(n)
	case *ast.NewArrayExpr:
		return c.checkNewArray(n), -1
	case *ast.TakeExpr:
		return c.checkTake(n), -1
	case *ast.UnaryExpr:
		return c.checkUnary(n), -1
	case *ast.BinaryExpr:
		return c.checkBinary(n), -1
	case *ast.CondExpr:
		return c.checkCond(n), -1
	case *ast.CastExpr:
		return c.checkCast(n), -1
	default:
		c.internalf(e, "unhandled expression kind %T", e)
		return &types.Void{}, -1
	}
}

func (c *Checker) checkIdent(n *ast.Ident) types.Type {
	if l, found := c.top.lookup(n.Name); found {
		l.RecordUse(c.prev, n.NamePos)
		return l.Type
	}
	if c.curClass != nil {
		if m := c.lookupInstanceMember(c.curClass, n.Name); m != nil {
			return m.Type
		}
	}
	c.errorfPos(n, "undeclared identifier %q", n.Name)
	return &types.Void{}
}

func (c *Checker) checkBasicLit(n *ast.BasicLit) types.Type {
	switch n.Kind {
	case ast.LitBool:
		return &types.Basic{Kind: types.Bool}
	case ast.LitChar:
		return &types.Basic{Kind: types.Char}
	case ast.LitInt:
		return &types.Basic{Kind: types.Int}
	case ast.LitFloat:
		return &types.Basic{Kind: types.Float64}
	case ast.LitString:
		return &types.String{}
	case ast.LitNull:
		return &types.Null{}
	}
	c.internalf(n, "unhandled literal kind %d", n.Kind)
	return &types.Void{}
}

func (c *Checker) lookupInstanceMember(cls *types.Class, name string) *classes.Member {
	for _, m := range c.Reg.AllMembersNamed(cls, name) {
		if m.Kind == classes.KindField || m.Kind == classes.KindConstField || m.Kind == classes.KindProperty {
			return m
		}
	}
	return nil
}

func (c *Checker) checkSelector(n *ast.SelectorExpr) types.Type {
	xt := c.checkExpr(n.X, ctxConsumeNone)
	cls, ok := types.Base(xt).(*types.Class)
	if !ok {
		c.errorfPos(n, "cannot select %q on non-class type %s", n.Sel, xt)
		return &types.Void{}
	}
	m := c.lookupInstanceMember(cls, n.Sel)
	if m == nil {
		c.errorfPos(n, "class %q has no member %q", cls.Name, n.Sel)
		return &types.Void{}
	}
	if !accessible(c.curClass, cls, m) {
		c.errorfPos(n, "member %q of class %q is not accessible here", n.Sel, cls.Name)
	}
	return m.Type
}

// accessible implements spec §4.1's public/protected/private visibility
// rule used both here and in overload resolution's score().
func accessible(from, owner *types.Class, m *classes.Member) bool {
	if m.IsPublic() {
		return true
	}
	if m.IsPrivate() {
		return from == owner
	}
	if m.IsProtected() {
		return from != nil && from.IsSubclassOf(owner)
	}
	return true
}

func (c *Checker) checkIndex(n *ast.IndexExpr) types.Type {
	xt := c.checkExpr(n.X, ctxConsumeNone)
	it := c.checkExpr(n.Index, ctxConsumeNone)
	if arr, ok := types.Base(xt).(*types.Array); ok {
		if !isIntLike(it) {
			c.errorfPos(n.Index, "array index must be int, got %s", it)
		}
		return arr.Elem
	}
	if cls, ok := types.Base(xt).(*types.Class); ok {
		for _, m := range c.Reg.AllMembersNamed(cls, "this") {
			if m.Kind == classes.KindIndexer {
				return m.Type
			}
		}
	}
	c.errorfPos(n, "type %s is not indexable", xt)
	return &types.Void{}
}

func isIntLike(t types.Type) bool {
	b, ok := t.(*types.Basic)
	return ok && b.Kind == types.Int
}

// checkCall resolves the callee via spec §4.1's overload resolution and
// returns the call's result type, pushing a temporary if the result is
// owning (spec §4.2 "a node per call").
func (c *Checker) checkCall(n *ast.CallExpr) (types.Type, int) {
	var recv types.Type
	var name string
	switch fn := n.Fun.(type) {
	case *ast.SelectorExpr:
		recv = c.checkExpr(fn.X, ctxConsumeNone)
		name = fn.Sel
	case *ast.Ident:
		recv = c.thisType
		name = fn.Name
	default:
		c.errorfPos(n, "expression is not callable")
		return &types.Void{}, -1
	}

	argTypes := make([]types.Type, len(n.Args))
	for i, a := range n.Args {
		argTypes[i] = c.checkCallArg(n, i, a)
	}

	cls, ok := types.Base(recv).(*types.Class)
	if !ok {
		c.errorfPos(n, "cannot call %q on non-class type %s", name, recv)
		return &types.Void{}, -1
	}
	candidates := c.Reg.AllMembersNamed(cls, name)
	m, err := classes.Resolve(classes.ResolveContext{FromClass: c.curClass}, candidates, argTypes)
	if err != nil {
		c.errorfPos(n, "%s", err)
		return &types.Void{}, -1
	}

	node := c.addNode()
	node.SetCalls(m)
	c.checkArgModes(n, m, node)

	if types.IsOwning(m.Type) {
		if owningCls := owningClassOf(m.Type); owningCls != nil {
			return m.Type, c.pushTemp(owningCls)
		}
	}
	return m.Type, -1
}

// checkCallArg type-checks one call argument, honoring an explicit ref/out
// keyword (spec §3 invariant (d)/(e)). An out argument's target local is
// typically unassigned on the path reaching this call, so — unlike an
// ordinary argument — checking it must not record a read-use; checkArgModes
// marks it set instead, once the callee's resolved signature confirms the
// parameter really is out.
func (c *Checker) checkCallArg(n *ast.CallExpr, i int, a ast.Expr) types.Type {
	mode := ast.ModeIn
	if i < len(n.ArgModes) {
		mode = n.ArgModes[i]
	}
	switch mode {
	case ast.ModeOut:
		id, ok := a.(*ast.Ident)
		if !ok {
			c.errorfPos(a, "out argument must be a local variable")
			return &types.Void{}
		}
		l, found := c.top.lookup(id.Name)
		if !found {
			c.errorfPos(a, "undeclared identifier %q", id.Name)
			return &types.Void{}
		}
		return l.Type
	case ast.ModeRef:
		// Passed by reference, not consumed: no ownership transfer out of
		// the caller's temporary.
		return c.checkExpr(a, ctxConsumeNone)
	default:
		return c.checkExpr(a, ctxConsumeOwning)
	}
}

// checkArgModes consults m's resolved parameter modes against n's call-site
// ref/out keywords once overload resolution has picked m, and marks node as
// setting every out argument's target local (spec §3 invariant (d)/(e)).
func (c *Checker) checkArgModes(n *ast.CallExpr, m *classes.Member, node *cfg.Node) {
	for i, a := range n.Args {
		callMode := ast.ModeIn
		if i < len(n.ArgModes) {
			callMode = n.ArgModes[i]
		}
		paramMode := ast.ModeIn
		if i < len(m.Params) {
			paramMode = m.Params[i].Mode
		}
		if callMode != paramMode {
			c.errorfPos(a, "argument %d to %q must be passed with %s, not %s", i+1, m.Name, modeKeyword(paramMode), modeKeyword(callMode))
			continue
		}
		if paramMode != ast.ModeOut {
			continue
		}
		if id, ok := a.(*ast.Ident); ok {
			if l, found := c.top.lookup(id.Name); found {
				node.MarkSet(l)
				l.Mutable = true
			}
		}
	}
}

func modeKeyword(m ast.ParamMode) string {
	switch m {
	case ast.ModeRef:
		return "'ref'"
	case ast.ModeOut:
		return "'out'"
	}
	return "no keyword"
}

func (c *Checker) checkNew(n *ast.NewExpr) (types.Type, int) {
	t := ResolveType(c.Reg, c.Sink, n.Type)
	cls, ok := t.(*types.Class)
	if !ok {
		c.errorfPos(n, "'new' requires a class type")
		return &types.Void{}, -1
	}
	argTypes := make([]types.Type, len(n.Args))
	for i, a := range n.Args {
		argTypes[i] = c.checkExpr(a, ctxConsumeOwning)
	}
	if n.Pool != nil {
		c.checkExpr(n.Pool, ctxConsumeNone)
		// spec §4.6 "an arena-allocated constructor call for `new`
		// expressions whose creator argument is a pool": mark the class so
		// emission knows to generate its two-pass destroy hooks.
		cls.PoolDestroyNeeded = true
	}
	ctors := c.Reg.FindCtors(cls)
	if len(ctors) > 0 {
		if _, err := classes.Resolve(classes.ResolveContext{FromClass: c.curClass}, ctors, argTypes); err != nil {
			c.errorfPos(n, "%s", err)
		}
	} else if len(argTypes) > 0 {
		c.errorfPos(n, "class %q has no matching constructor", cls.Name)
	}
	result := types.Type(&types.Owning{Elem: cls})
	return result, c.pushTemp(cls)
}

func (c *Checker) checkNewArray(n *ast.NewArrayExpr) types.Type {
	sz := c.checkExpr(n.Size, ctxConsumeNone)
	if !isIntLike(sz) {
		c.errorfPos(n.Size, "array size must be int, got %s", sz)
	} else if cv, ok := evalConstExpr(n.Size); ok {
		if iv, ok := exact.Int64Val(cv); ok && iv < 0 {
			c.errorfPos(n.Size, "array size must not be negative")
		}
	}
	elem := ResolveType(c.Reg, c.Sink, n.Elem)
	return &types.Owning{Elem: &types.Array{Elem: elem}}
}

// checkTake implements the `take` operator (GLOSSARY): transfers
// ownership out of an owning local, marking the CFG node as having taken
// from it (spec §4.3 "any visited node whose Takes(local) is true").
func (c *Checker) checkTake(n *ast.TakeExpr) types.Type {
	id, ok := n.X.(*ast.Ident)
	if !ok {
		c.errorfPos(n, "'take' requires a local variable operand")
		return c.checkExpr(n.X, ctxConsumeNone)
	}
	l, found := c.top.lookup(id.Name)
	if !found {
		c.errorfPos(n, "undeclared identifier %q", id.Name)
		return &types.Void{}
	}
	if !types.IsOwning(l.Type) {
		c.errorfPos(n, "'take' requires an owning local, %q has type %s", id.Name, l.Type)
	}
	l.RecordUse(c.prev, n.KwPos)
	node := c.addNode()
	node.MarkTake(l)
	return l.Type
}

func (c *Checker) checkUnary(n *ast.UnaryExpr) types.Type {
	t := c.checkExpr(n.X, ctxConsumeNone)
	switch n.Op {
	case "!":
		if !isBoolLike(t) {
			c.errorfPos(n, "operator ! requires bool, got %s", t)
		}
		return &types.Basic{Kind: types.Bool}
	case "-":
		return t
	}
	return t
}

func (c *Checker) checkBinary(n *ast.BinaryExpr) types.Type {
	xt := c.checkExpr(n.X, ctxConsumeNone)
	switch n.Op {
	case "&&", "||":
		// Short-circuit: Y is only reached when X doesn't already decide
		// the result, so it needs its own CFG merge the same way
		// checkCond joins a ternary's two branches (spec §3 "short-circuit
		// operators" alongside if/?:/switch/loops).
		xOK := isBoolLike(xt)
		skip := c.prev
		yt := c.checkExpr(n.Y, ctxConsumeNone)
		join := cfg.NewJoiner()
		join.AddEdge(c.prev)
		join.AddEdge(skip)
		c.combine(join)
		if !xOK || !isBoolLike(yt) {
			c.errorfPos(n, "operator %s requires bool operands", n.Op)
		}
		return &types.Basic{Kind: types.Bool}
	case "==", "!=", "<", "<=", ">", ">=":
		yt := c.checkExpr(n.Y, ctxConsumeNone)
		if !types.Identical(xt, yt) && !types.CanConvert(yt, xt, types.CtxOther, false, false, nil) {
			c.errorfPos(n, "cannot compare %s with %s", xt, yt)
		}
		return &types.Basic{Kind: types.Bool}
	default: // + - * / %
		yt := c.checkExpr(n.Y, ctxConsumeNone)
		if _, sOK := types.Base(xt).(*types.String); sOK && n.Op == "+" {
			return &types.String{}
		}
		xb, xok := xt.(*types.Basic)
		yb, yok := yt.(*types.Basic)
		if !xok || !yok {
			c.errorfPos(n, "operator %s requires numeric operands, got %s and %s", n.Op, xt, yt)
			return xt
		}
		if yb.Kind > xb.Kind {
			return yb
		}
		return xb
	}
}

func (c *Checker) checkCond(n *ast.CondExpr) types.Type {
	ct := c.checkExpr(n.Cond, ctxConsumeNone)
	if !isBoolLike(ct) {
		c.errorfPos(n.Cond, "ternary condition must be bool, got %s", ct)
	}
	save := c.prev
	xt := c.checkExpr(n.X, ctxConsumeNone)
	join := cfg.NewJoiner()
	join.AddEdge(c.prev)

	c.prev = save
	yt := c.checkExpr(n.Y, ctxConsumeNone)
	join.AddEdge(c.prev)
	c.combine(join)

	if !types.Identical(xt, yt) && !types.CanConvert(yt, xt, types.CtxOther, false, false, nil) {
		c.errorfPos(n, "ternary branches have incompatible types %s and %s", xt, yt)
	}
	return xt
}

func (c *Checker) checkCast(n *ast.CastExpr) types.Type {
	xt := c.checkExpr(n.X, ctxConsumeNone)
	dst := ResolveType(c.Reg, c.Sink, n.Type)
	if !c.convertWithEffects(xt, dst, types.CtxOther, true) {
		c.errorfPos(n, "cannot cast %s to %s", xt, dst)
	}
	return dst
}
