// Package cfg implements the per-method control-flow graph threaded
// through checking (spec §3 "CFG", §4.2, §9 "CFG markers"). It mirrors the
// teacher's ssa package in spirit — a small node-kind set, marker-based DFS
// instead of per-node visited maps (ssa/lift.go's blockSet, generalized
// from basic blocks to single-predecessor Nodes and multi-predecessor
// Joiners) — but the node kinds and queries (Calls/Sets/Takes/NodeDestroys)
// are this language's own, not Go's.
package cfg

import (
	"go/token"

	"github.com/panaflexx/gel2/internal/types"
)

// Local is a local variable or parameter that Sets/Takes can name.
// internal/cfg only carries these opaquely; internal/check supplies them.
type Local interface {
	LocalName() string
	// LocalPos is the source position of the declaration, letting a
	// consumer outside internal/check (internal/emit) recover the exact
	// cfg.Local a classes.Member.Locals entry corresponds to for a given
	// ast.DeclStmt name.
	LocalPos() token.Pos
}

// Vertex is the common interface of Node and Joiner (spec §3 "two node
// kinds"). A CFG is a graph of Vertex values linked by Prev/Preds.
type Vertex interface {
	// Calls returns the member called at this vertex, or nil.
	Calls() interface{}
	// Sets reports whether this vertex assigns local.
	Sets(local Local) bool
	// Takes reports whether this vertex transfers ownership away from local.
	Takes(local Local) bool
	// NodeDestroys returns the set of types this vertex may destroy.
	NodeDestroys() []*types.Class

	marker() *int
	setMarker(v int)
}

// base holds the fields common to every concrete vertex kind.
type base struct {
	mark     int
	calls    interface{}
	sets     map[Local]bool
	takes    map[Local]bool
	destroys []*types.Class
}

func (b *base) Calls() interface{}  { return b.calls }
func (b *base) Sets(l Local) bool   { return b.sets[l] }
func (b *base) Takes(l Local) bool  { return b.takes[l] }
func (b *base) NodeDestroys() []*types.Class { return b.destroys }
func (b *base) marker() *int        { return &b.mark }
func (b *base) setMarker(v int)     { b.mark = v }

// MarkSet records l as assigned by this vertex.
func (b *base) MarkSet(l Local) {
	if b.sets == nil {
		b.sets = make(map[Local]bool)
	}
	b.sets[l] = true
}

// MarkTake records l as having ownership taken away at this vertex.
func (b *base) MarkTake(l Local) {
	if b.takes == nil {
		b.takes = make(map[Local]bool)
	}
	b.takes[l] = true
}

// AddDestroys records t as possibly destroyed at this vertex.
func (b *base) AddDestroys(t *types.Class) {
	b.destroys = append(b.destroys, t)
}

// SetCalls records the member this vertex calls.
func (b *base) SetCalls(m interface{}) { b.calls = m }

// Node is a single-predecessor program point (spec §3 "Node: single
// predecessor; models a program point whose execution order is fixed").
type Node struct {
	base
	Prev Vertex // nil only for the synthetic entry node
}

// Joiner is a multi-predecessor control-flow merge (spec §3 "Joiner").
// Combine (see Combine) reduces it once all its predecessors are known.
type Joiner struct {
	base
	Preds []Vertex
}

// AddEdge records a new predecessor into j.
func (j *Joiner) AddEdge(v Vertex) {
	if v == nil {
		return
	}
	j.Preds = append(j.Preds, v)
}

// Unreachable is the distinguished vertex representing a program point
// that can never be reached (spec §4.2 "break/continue: set the cursor to
// unreachable"; §9 "Reachability join reduction").
var Unreachable Vertex = &unreachableVertex{}

type unreachableVertex struct{ base }

// Combine implements spec §9's "Reachability join reduction": a joiner
// with zero incoming edges reduces to Unreachable; one edge reduces to a
// plain forwarder (the edge itself); more than one edge stays a Joiner.
// Downstream analyses rely on this: they never walk an empty joiner.
func Combine(j *Joiner) Vertex {
	switch len(j.Preds) {
	case 0:
		return Unreachable
	case 1:
		return j.Preds[0]
	default:
		return j
	}
}

// NewJoiner returns a fresh, empty joiner ready to accumulate edges.
func NewJoiner() *Joiner { return &Joiner{} }

// NewNode returns a new Node whose single predecessor is prev.
func NewNode(prev Vertex) *Node { return &Node{Prev: prev} }
