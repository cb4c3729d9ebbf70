package check

import (
	"github.com/panaflexx/gel2/internal/cfg"
	"github.com/panaflexx/gel2/internal/classes"
	"github.com/panaflexx/gel2/internal/diag"
	"github.com/panaflexx/gel2/internal/lang/ast"
	"github.com/panaflexx/gel2/internal/logging"
	"github.com/panaflexx/gel2/internal/types"
)

// bailout is raised to indicate early termination out of a single
// method's check, mirroring the teacher's go/types checker's bailout
// panic/recover idiom. It never escapes CheckAllClasses.
type bailout struct{}

// loopCtx is the per-loop pair of joiners a break/continue statement
// targets (spec §4.2 "while/for: a loop-entry joiner collects the
// pre-loop cursor and back-edges from continue and fall-through; the exit
// joiner collects the false-condition edge and break edges").
type loopCtx struct {
	continueJoiner *cfg.Joiner
	breakJoiner    *cfg.Joiner
}

// Checker holds the state threaded through a single method's CFG
// construction and type checking — the cursor `prev` named in spec §4.2,
// the current lexical scope chain, and the loop/switch nesting needed to
// resolve break/continue targets.
type Checker struct {
	Reg  *classes.Registry
	Sink *diag.Sink
	Log  *logging.Logger

	graph      *cfg.Graph
	prev       cfg.Vertex
	top        *scope
	curMethod  *classes.Member
	curClass   *types.Class
	exitJoiner *cfg.Joiner
	loops      []loopCtx
	marker     cfg.Marker
	resultType types.Type
	thisType   types.Type
	allLocals  []*Local

	// pendingTemps tracks owning expression results not yet consumed by
	// their surrounding context, drained at each statement boundary by
	// beginTemps/endTemps (spec §4.2's "temporaries" paragraph).
	pendingTemps []pendingTemp
}

// declareLocal adds l to scope s and to the current method's flat local
// list (consulted after the whole body is walked, spec §4.3).
func (c *Checker) declareLocal(s *scope, l *Local) {
	s.declare(l)
	c.allLocals = append(c.allLocals, l)
}

func NewChecker(reg *classes.Registry, sink *diag.Sink, log *logging.Logger) *Checker {
	if log == nil {
		log = logging.Nop()
	}
	return &Checker{Reg: reg, Sink: sink, Log: log}
}

// errorfPos records a diagnostic without aborting the method check (spec
// §7 "checking continues past a failed member to collect more").
func (c *Checker) errorfPos(pos ast.Node, format string, args ...interface{}) {
	c.Sink.Errorf(pos.Pos(), format, args...)
}

func (c *Checker) internalf(pos ast.Node, format string, args ...interface{}) {
	err := c.Sink.Internalf(pos.Pos(), format, args...)
	panic(err)
}

// CheckAllClasses runs the check phase (spec §2 "a check pass walks each
// method building the CFG and performing per-expression type checks") over
// every method, constructor, and property/indexer accessor in the
// registry. Per-method failures (recorded via Sink) do not abort the
// overall pass (spec §7 "Propagation policy").
func (c *Checker) CheckAllClasses() {
	for _, cls := range c.Reg.All() {
		c.checkConstFields(cls)
		for _, m := range c.Reg.OwnMembers(cls) {
			c.checkMemberSafely(cls, m)
		}
	}
}

func (c *Checker) checkMemberSafely(cls *types.Class, m *classes.Member) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); ok {
				return
			}
			// Internal errors were already recorded via Sink.Internalf
			// before the panic; re-panicking here would crash the whole
			// driver run over one bad method, which spec §7 forbids for
			// category-1 diagnostics. Only category-3 (internal
			// invariant) errors reach here, and those ARE supposed to
			// abort — but per-run, not per-process, so recover and move
			// on to preserve "checking continues past a failed member".
		}
	}()
	c.checkMember(cls, m)
}

func (c *Checker) checkMember(cls *types.Class, m *classes.Member) {
	switch m.Kind {
	case classes.KindMethod:
		md, ok := m.Decl.(*ast.MethodDecl)
		if !ok || md.Body == nil {
			return // extern method: no body to check
		}
		c.checkBody(cls, m, m.Params, m.Type, md.Body)
	case classes.KindCtor:
		ct, ok := m.Decl.(*ast.CtorDecl)
		if !ok || ct.Body == nil {
			return
		}
		c.checkBody(cls, m, m.Params, &types.Void{}, ct.Body)
	case classes.KindProperty:
		pd := m.Decl.(*ast.PropertyDecl)
		if pd.Get != nil {
			c.checkBody(cls, m, nil, m.Type, pd.Get)
		}
		if pd.Set != nil {
			setParams := []classes.Param{{Name: "value", Type: m.Type}}
			c.checkBody(cls, m, setParams, &types.Void{}, pd.Set)
		}
	case classes.KindIndexer:
		ix := m.Decl.(*ast.IndexerDecl)
		if ix.Get != nil {
			c.checkBody(cls, m, m.Params, m.Type, ix.Get)
		}
		if ix.Set != nil {
			setParams := append(append([]classes.Param{}, m.Params...), classes.Param{Name: "value", Type: m.Type})
			c.checkBody(cls, m, setParams, &types.Void{}, ix.Set)
		}
	}
}

// checkBody constructs the CFG for one method-like body (spec §3 "a CFG
// rooted at a synthetic entry node plus a join node exit_ for all return
// points") and runs the definite-assignment / ownership-transfer pass
// once the body is fully walked.
func (c *Checker) checkBody(cls *types.Class, m *classes.Member, params []classes.Param, resultType types.Type, body *ast.BlockStmt) {
	c.graph = &cfg.Graph{}
	// entry's predecessor is Unreachable so that a backward walk past the
	// start of the method (no prior assignment exists) is detected the
	// same way as any other use-before-init (spec §4.3).
	entry := cfg.NewNode(cfg.Unreachable)
	c.graph.Track(entry)
	c.graph.Entry = entry
	c.prev = entry

	c.exitJoiner = cfg.NewJoiner()
	c.graph.Exit = c.exitJoiner
	c.loops = nil
	c.curMethod = m
	c.curClass = cls
	c.resultType = resultType
	c.thisType = cls

	c.top = newScope(nil)
	c.allLocals = nil
	c.pendingTemps = nil
	var outParams []*Local
	for _, p := range params {
		l := &Local{Name: p.Name, Type: p.Type, Mode: p.Mode, IsParam: true, Mutable: p.Mode != ast.ModeIn}
		c.declareLocal(c.top, l)
		if p.Mode == ast.ModeOut {
			outParams = append(outParams, l)
			continue
		}
		entry.MarkSet(l) // in/ref parameters arrive already initialized.
	}

	c.checkBlock(body)

	// c.prev is the fall-through cursor at the end of the body: Unreachable
	// iff every path already returned. A non-void method whose body can
	// still fall off the end is missing a return (spec §4.2).
	fallsThrough := c.prev != cfg.Unreachable
	c.exitJoiner.AddEdge(c.prev)
	m.CFG = c.graph
	m.Locals = toCFGLocals(c.allLocals)

	if _, isVoid := resultType.(*types.Void); !isVoid && fallsThrough {
		c.errorfPos(body, "missing return")
	}
	for _, op := range outParams {
		c.checkOutParamAssigned(op, cfg.Combine(c.exitJoiner), body.Pos())
	}
	c.checkLocalUses()
}

// checkLocalUses runs spec §4.3's backward walk from every recorded use
// of every local declared anywhere in the method.
func (c *Checker) checkLocalUses() {
	for _, l := range c.allLocals {
		if len(l.uses) > 0 {
			c.checkDefiniteAssignment(l, l.uses)
		}
	}
}
