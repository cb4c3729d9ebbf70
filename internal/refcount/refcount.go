// Package refcount implements the reference-count necessity analysis
// (spec §4.5): using the destruction sets from internal/destruct, decide
// for each local and each owned temporary expression whether a runtime
// ref-count wrapper is needed at emission. The per-entity bookkeeping
// (ownership class, transfer/consume bookkeeping) is shaped after the
// purple_go example's OwnershipContext — DefineOwned/TransferOwnership/
// ShouldFree-style state machine — generalized from that package's
// scope-stack model to this analysis's CFG-traversal model.
package refcount

import (
	"github.com/panaflexx/gel2/internal/cfg"
	"github.com/panaflexx/gel2/internal/classes"
	"github.com/panaflexx/gel2/internal/destruct"
	"github.com/panaflexx/gel2/internal/types"
)

// Need records the ref-count necessity verdict for one local or temporary
// occurrence, analogous to purple_go's OwnershipInfo record.
type Need struct {
	Name      string
	Type      *types.Class
	NeedsRef  bool
	Reason    string // short human-readable justification, echoed by -typeset
}

// Analyzer decides ref-count necessity using a destruct.Analyzer for
// CanDestroy queries.
type Analyzer struct {
	destr *destruct.Analyzer
	reg   *classes.Registry
	mk    cfg.Marker
}

func NewAnalyzer(destr *destruct.Analyzer, reg *classes.Registry) *Analyzer {
	return &Analyzer{destr: destr, reg: reg}
}

// CanDestroy reports whether v's execution can destroy t: either it calls
// a method whose method-destroys set contains t, or its own NodeDestroys
// does (spec §4.5 "CanDestroy(T) is true if the node's Calls method
// destroys T or its own NodeDestroys contains T").
func (a *Analyzer) CanDestroy(v cfg.Vertex, t *types.Class) bool {
	for _, d := range v.NodeDestroys() {
		if d == t || t.IsSubclassOf(d) || d.IsSubclassOf(t) {
			return true
		}
	}
	if callee, ok := v.Calls().(*classes.Member); ok && callee != nil {
		if a.destr.MethodDestroys(callee).Contains(t) {
			return true
		}
	}
	return false
}

// NeedsRefLocal implements spec §4.5's local-variable rule: "a ref-count
// is needed iff a CFG traversal forward from any assignment of the local
// reaches a node that CanDestroy(type(local)) before another assignment
// kills the current binding; a special case unconditionally flags
// variables of the root object type".
func (a *Analyzer) NeedsRefLocal(graph *cfg.Graph, local cfg.Local, t *types.Class) Need {
	n := Need{Name: local.LocalName(), Type: t}
	if a.reg.Object != nil && t == a.reg.Object {
		n.NeedsRef = true
		n.Reason = "root object type: string-through-object destruction is not otherwise modeled"
		return n
	}

	for _, assign := range graph.All {
		if !assign.Sets(local) {
			continue
		}
		found := false
		graph.WalkForward(&a.mk, assign, func(v cfg.Vertex) bool {
			if v != assign && v.Sets(local) {
				return false // another assignment kills the current binding
			}
			if a.CanDestroy(v, t) {
				found = true
				return false
			}
			return true
		})
		if found {
			n.NeedsRef = true
			n.Reason = "a later node may destroy this binding's type before it is reassigned"
			return n
		}
	}
	return n
}

// NeedsRefExpr implements spec §4.5's expression rule: "the expression's
// local variable (if any) is definitely assigned between start and end ...
// AND some CFG node between start and end CanDestroy(type(e))". For
// expressions with no underlying local, the first condition is vacuously
// true (local == nil here means exactly that).
func (a *Analyzer) NeedsRefExpr(graph *cfg.Graph, start, end cfg.Vertex, local cfg.Local, t *types.Class) Need {
	n := Need{Type: t}
	if local != nil {
		n.Name = local.LocalName()
	}

	localMayChange := local == nil // vacuously true with no underlying local
	destroyed := false
	graph.WalkForward(&a.mk, start, func(v cfg.Vertex) bool {
		if v == end {
			return false
		}
		if local != nil && v.Sets(local) {
			localMayChange = true
		}
		if a.CanDestroy(v, t) {
			destroyed = true
		}
		return true
	})

	if localMayChange && destroyed {
		n.NeedsRef = true
		n.Reason = "owning temporary may be destroyed before its use site"
	}
	return n
}
