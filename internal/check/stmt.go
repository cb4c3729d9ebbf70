package check

import (
	"github.com/panaflexx/gel2/internal/cfg"
	"github.com/panaflexx/gel2/internal/exact"
	"github.com/panaflexx/gel2/internal/lang/ast"
	"github.com/panaflexx/gel2/internal/types"
)

// addNode advances the cursor past a fresh Node, linking it to the
// current cursor (spec §4.2 "Adding a node links this.prev = prev and
// advances the cursor").
func (c *Checker) addNode() *cfg.Node {
	n := cfg.NewNode(c.prev)
	c.graph.Track(n)
	c.prev = n
	return n
}

// combine reduces a joiner per spec §9 and sets it as the cursor. A joiner
// that survives the reduction is tracked, so forward walks pass through it.
func (c *Checker) combine(j *cfg.Joiner) {
	c.prev = cfg.Combine(j)
	if c.prev == cfg.Vertex(j) {
		c.graph.Track(j)
	}
}

func (c *Checker) openScope() *scope {
	s := newScope(c.top)
	c.top = s
	return s
}

// closeScope pops the current scope, inserting a node whose NodeDestroys
// covers every owning local going out of scope (spec §3 "the variables
// going out of scope at a block end").
func (c *Checker) closeScope() {
	s := c.top
	var owning []*types.Class
	for _, l := range s.all() {
		if cls := owningClassOf(l.Type); cls != nil {
			owning = append(owning, cls)
		}
	}
	if len(owning) > 0 {
		n := c.addNode()
		for _, cls := range owning {
			n.AddDestroys(cls)
		}
	}
	c.top = s.parent
}

func owningClassOf(t types.Type) *types.Class {
	if !types.IsOwning(t) {
		return nil
	}
	switch b := types.Base(t).(type) {
	case *types.Class:
		return b
	case *types.Array:
		if cls, ok := b.Elem.(*types.Class); ok {
			return cls
		}
	}
	return nil
}

func (c *Checker) checkBlock(b *ast.BlockStmt) {
	c.openScope()
	for _, s := range b.List {
		c.checkStmt(s)
	}
	c.closeScope()
}

func (c *Checker) checkStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.BlockStmt:
		c.checkBlock(n)
	case *ast.ExprStmt:
		c.checkExprStmt(n.X)
	case *ast.DeclStmt:
		c.checkDeclStmt(n)
	case *ast.AssignStmt:
		c.checkAssignStmt(n)
	case *ast.IncDecStmt:
		c.checkIncDecStmt(n)
	case *ast.ReturnStmt:
		c.checkReturnStmt(n)
	case *ast.BranchStmt:
		c.checkBranchStmt(n)
	case *ast.IfStmt:
		c.checkIfStmt(n)
	case *ast.WhileStmt:
		c.checkWhileStmt(n)
	case *ast.DoStmt:
		c.checkDoStmt(n)
	case *ast.ForStmt:
		c.checkForStmt(n)
	case *ast.ForeachStmt:
		c.checkForeachStmt(n)
	case *ast.SwitchStmt:
		c.checkSwitchStmt(n)
	default:
		c.internalf(s, "unhandled statement kind %T", s)
	}
}

// checkExprStmt checks a top-level expression statement and inserts the
// temporaries node described in spec §4.2's last paragraph.
func (c *Checker) checkExprStmt(x ast.Expr) {
	mark := c.beginTemps()
	c.checkExpr(x, ctxConsumeNone)
	c.endTemps(mark, x)
}

func (c *Checker) checkDeclStmt(d *ast.DeclStmt) {
	t := ResolveType(c.Reg, c.Sink, d.Type)
	for i, name := range d.Names {
		l := &Local{Name: name, Type: t, Pos: d.NamePos[i]}
		c.declareLocal(c.top, l)
		init := d.Inits[i]
		if init == nil {
			// No initializer: declaring the local does not set it (spec
			// §4.3's use-before-init applies from here on).
			continue
		}
		mark := c.beginTemps()
		it := c.checkExpr(init, ctxConsumeOwning)
		c.endTemps(mark, init)
		if !c.convertWithEffects(it, t, types.CtxAssignVar, false) {
			c.errorfPos(init, "cannot initialize %q of type %s with value of type %s", name, t, it)
		}
		n := c.addNode()
		n.MarkSet(l)
	}
}

func (c *Checker) checkAssignStmt(a *ast.AssignStmt) {
	mark := c.beginTemps()
	rt := c.checkExpr(a.Rhs, ctxConsumeOwning)
	var lt types.Type
	if id, ok := a.Lhs.(*ast.Ident); ok && a.Op == "=" {
		// A plain assignment only writes its target local; checking it as an
		// expression would record a read-use before the value is set.
		if l, found := c.top.lookup(id.Name); found {
			lt = l.Type
		}
	}
	if lt == nil {
		lt = c.checkExpr(a.Lhs, ctxConsumeNone)
	}
	c.endTemps(mark, a.Rhs)

	if a.Op != "=" {
		// Compound assignment reads the current value too; spec §4.1's
		// conversion rules apply identically to the implied binary op's
		// result, which for this checker's purposes is lt itself.
		rt = lt
	}
	if !c.convertWithEffects(rt, lt, types.CtxAssignVar, false) {
		c.errorfPos(a, "cannot assign value of type %s to target of type %s", rt, lt)
	}

	if id, ok := a.Lhs.(*ast.Ident); ok {
		if l, found := c.top.lookup(id.Name); found {
			n := c.addNode()
			n.MarkSet(l)
			l.Mutable = true
			if cls := owningClassOf(l.Type); cls != nil {
				n.AddDestroys(cls) // overwriting an owning local destroys its previous value
			}
		}
	}
}

func (c *Checker) checkIncDecStmt(s *ast.IncDecStmt) {
	c.checkExpr(s.X, ctxConsumeNone)
	if id, ok := s.X.(*ast.Ident); ok {
		if l, found := c.top.lookup(id.Name); found {
			n := c.addNode()
			n.MarkSet(l)
			l.Mutable = true
		}
	}
}

func (c *Checker) checkReturnStmt(s *ast.ReturnStmt) {
	_, isVoid := c.resultType.(*types.Void)
	if s.Result == nil {
		if !isVoid {
			c.errorfPos(s, "missing return value")
		}
	} else {
		if isVoid {
			c.errorfPos(s, "method has no return value")
		}
		mark := c.beginTemps()
		rt := c.checkExpr(s.Result, ctxConsumeOwning)
		c.endTemps(mark, s.Result)
		if !isVoid && !c.convertWithEffects(rt, c.resultType, types.CtxAssignVar, false) {
			c.errorfPos(s.Result, "cannot return value of type %s as %s", rt, c.resultType)
		}
	}
	c.exitJoiner.AddEdge(c.prev)
	c.prev = cfg.Unreachable
}

func (c *Checker) checkBranchStmt(s *ast.BranchStmt) {
	if len(c.loops) == 0 {
		c.errorfPos(s, "break/continue outside of a loop")
		return
	}
	if s.Kind == ast.Break {
		// break targets the nearest enclosing loop OR switch.
		top := c.loops[len(c.loops)-1]
		top.breakJoiner.AddEdge(c.prev)
	} else {
		// continue always targets the nearest enclosing LOOP, skipping
		// over any switch frames in between.
		found := false
		for i := len(c.loops) - 1; i >= 0; i-- {
			if c.loops[i].continueJoiner != nil {
				c.loops[i].continueJoiner.AddEdge(c.prev)
				found = true
				break
			}
		}
		if !found {
			c.errorfPos(s, "continue outside of a loop")
		}
	}
	c.prev = cfg.Unreachable
}

func (c *Checker) checkIfStmt(s *ast.IfStmt) {
	ct := c.checkExpr(s.Cond, ctxConsumeNone)
	if !isBoolLike(ct) {
		c.errorfPos(s.Cond, "if condition must be bool, got %s", ct)
	}
	save := c.prev
	c.checkBlock(s.Body)
	join := cfg.NewJoiner()
	join.AddEdge(c.prev)

	c.prev = save
	if s.Else != nil {
		c.checkStmt(s.Else)
	}
	join.AddEdge(c.prev)
	c.combine(join)
}

func (c *Checker) checkWhileStmt(s *ast.WhileStmt) {
	entry := cfg.NewJoiner()
	entry.AddEdge(c.prev)
	c.combine(entry)

	ct := c.checkExpr(s.Cond, ctxConsumeNone)
	if !isBoolLike(ct) {
		c.errorfPos(s.Cond, "while condition must be bool, got %s", ct)
	}
	bodyStart := c.prev

	exit := cfg.NewJoiner()
	exit.AddEdge(c.prev) // false-condition edge

	c.loops = append(c.loops, loopCtx{continueJoiner: entry, breakJoiner: exit})
	c.prev = bodyStart
	c.checkBlock(s.Body)
	entry.AddEdge(c.prev) // fall-through back-edge
	c.loops = c.loops[:len(c.loops)-1]

	c.combine(exit)
}

func (c *Checker) checkDoStmt(s *ast.DoStmt) {
	// spec §4.2 "do: body first, then condition; the back-edge goes to a
	// pre-body joiner".
	preBody := cfg.NewJoiner()
	preBody.AddEdge(c.prev)
	c.combine(preBody)

	exit := cfg.NewJoiner()
	c.loops = append(c.loops, loopCtx{continueJoiner: preBody, breakJoiner: exit})
	c.checkBlock(s.Body)
	c.loops = c.loops[:len(c.loops)-1]

	ct := c.checkExpr(s.Cond, ctxConsumeNone)
	if !isBoolLike(ct) {
		c.errorfPos(s.Cond, "do-while condition must be bool, got %s", ct)
	}
	preBody.AddEdge(c.prev)
	exit.AddEdge(c.prev)
	c.combine(exit)
}

func (c *Checker) checkForStmt(s *ast.ForStmt) {
	c.openScope()
	if s.Init != nil {
		c.checkStmt(s.Init)
	}

	entry := cfg.NewJoiner()
	entry.AddEdge(c.prev)
	c.combine(entry)

	if s.Cond != nil {
		ct := c.checkExpr(s.Cond, ctxConsumeNone)
		if !isBoolLike(ct) {
			c.errorfPos(s.Cond, "for condition must be bool, got %s", ct)
		}
	}
	bodyStart := c.prev
	exit := cfg.NewJoiner()
	exit.AddEdge(c.prev)

	postTarget := cfg.NewJoiner() // continue jumps here, then falls into Post
	c.loops = append(c.loops, loopCtx{continueJoiner: postTarget, breakJoiner: exit})
	c.prev = bodyStart
	c.checkBlock(s.Body)
	postTarget.AddEdge(c.prev)
	c.loops = c.loops[:len(c.loops)-1]

	c.combine(postTarget)
	if s.Post != nil {
		c.checkStmt(s.Post)
	}
	entry.AddEdge(c.prev)

	c.combine(exit)
	c.closeScope()
}

// checkForeachStmt synthesizes "evaluate collection once; declare
// iteration local; loop from 0 to Count-1 reading via indexer" (spec
// §4.2 "foreach").
func (c *Checker) checkForeachStmt(s *ast.ForeachStmt) {
	c.openScope()
	collType := c.checkExpr(s.Coll, ctxConsumeNone)
	elemType := foreachElemType(collType)
	if s.VarType != nil {
		declared := ResolveType(c.Reg, c.Sink, s.VarType)
		if !types.CanConvert(elemType, declared, types.CtxOther, false, false, nil) {
			c.errorfPos(s, "foreach element type %s does not match collection element type %s", declared, elemType)
		}
		elemType = declared
	}
	idx := &Local{Name: "$" + s.VarName + "$index", Type: &types.Basic{Kind: types.Int}}
	c.declareLocal(c.top, idx)
	elem := &Local{Name: s.VarName, Type: elemType, Pos: s.VarPos}
	c.declareLocal(c.top, elem)

	init := c.addNode()
	init.MarkSet(idx)

	entry := cfg.NewJoiner()
	entry.AddEdge(c.prev)
	c.combine(entry)
	cond := c.addNode() // Count comparison, modeled opaquely
	_ = cond
	bodyStart := c.prev

	exit := cfg.NewJoiner()
	exit.AddEdge(c.prev)

	readElem := cfg.NewJoiner()
	c.loops = append(c.loops, loopCtx{continueJoiner: readElem, breakJoiner: exit})
	c.prev = bodyStart
	elemAssign := c.addNode()
	elemAssign.MarkSet(elem)
	c.checkBlock(s.Body)
	readElem.AddEdge(c.prev)
	c.loops = c.loops[:len(c.loops)-1]

	c.combine(readElem)
	incr := c.addNode()
	incr.MarkSet(idx)
	entry.AddEdge(c.prev)

	c.combine(exit)
	c.closeScope()
}

func foreachElemType(collType types.Type) types.Type {
	base := types.Base(collType)
	if arr, ok := base.(*types.Array); ok {
		return arr.Elem
	}
	return &types.Void{}
}

// checkSwitchStmt implements spec §4.2's switch: "each section starts
// from the pre-switch cursor; falling through from one section to the
// next is an error (each section must be terminated). The exit joiner
// receives break edges and (if no default) a direct fall-through edge
// from before the switch."
func (c *Checker) checkSwitchStmt(s *ast.SwitchStmt) {
	tagType := c.checkExpr(s.Tag, ctxConsumeNone)
	preSwitch := c.prev
	exit := cfg.NewJoiner()

	hasDefault := false
	var seen []exact.Value
	c.loops = append(c.loops, loopCtx{breakJoiner: exit, continueJoiner: nil})
	for _, cc := range s.Cases {
		if len(cc.Values) == 0 {
			hasDefault = true
		}
		for _, v := range cc.Values {
			vt := c.checkExpr(v, ctxConsumeNone)
			if !types.Identical(vt, tagType) && !types.CanConvert(vt, tagType, types.CtxOther, false, false, nil) {
				c.errorfPos(v, "case value of type %s does not match switch tag type %s", vt, tagType)
			}
			if cv, ok := evalConstExpr(v); ok {
				for _, other := range seen {
					if exact.Compare(cv, other) {
						c.errorfPos(v, "duplicate case value %s", cv)
					}
				}
				seen = append(seen, cv)
			}
		}
		c.prev = preSwitch
		c.openScope()
		for _, st := range cc.Body {
			c.checkStmt(st)
		}
		c.closeScope()
		if c.prev != cfg.Unreachable {
			c.errorfPos(cc, "missing break: case falls through to the next section")
		}
	}
	c.loops = c.loops[:len(c.loops)-1]
	if !hasDefault {
		exit.AddEdge(preSwitch)
	}
	c.combine(exit)
}

func isBoolLike(t types.Type) bool {
	b, ok := t.(*types.Basic)
	return ok && b.Kind == types.Bool
}
