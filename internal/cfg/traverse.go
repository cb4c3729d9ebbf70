package cfg

// Marker is the monotonically increasing token described in spec §5 and
// §9 ("CFG markers"): each DFS bumps a package-level counter and stamps the
// vertices it visits, so a node's "visited in the current traversal" test
// is an O(1) integer comparison against the per-vertex mark field rather
// than a fresh per-pass map allocation.
type Marker struct{}

// counter is shared by every Marker, so no two traversals ever get the same
// token, even when different Markers walk the same vertices (Unreachable is
// common to all graphs, and the checker and the ref-count analyzer walk the
// same method graph).
var counter int

// Next bumps and returns a new traversal token.
func (m *Marker) Next() int {
	counter++
	return counter
}

func visit(v Vertex, tok int) bool {
	if v == nil || *v.marker() == tok {
		return false
	}
	v.setMarker(tok)
	return true
}

// predecessors returns the vertices that can reach v in one step.
func predecessors(v Vertex) []Vertex {
	switch n := v.(type) {
	case *Node:
		if n.Prev == nil {
			return nil
		}
		return []Vertex{n.Prev}
	case *Joiner:
		return n.Preds
	default:
		return nil
	}
}

// WalkBackward performs the backward marker-based DFS used by definite-
// assignment and ownership-transfer checking (spec §4.3: "walk the CFG
// backwards from every use, stopping at nodes that set the local"). onVisit
// is called once for every vertex encountered, starting with from itself,
// except Unreachable; if onVisit returns true, the walk continues into that
// vertex's predecessors. The walk reaching Unreachable is exactly spec
// §4.3's "use-before-init" condition; WalkBackward reports it by returning
// true.
func WalkBackward(mk *Marker, from Vertex, onVisit func(Vertex) (keepGoing bool)) (reachedUnreachable bool) {
	tok := mk.Next()
	var stack []Vertex
	stack = append(stack, from)
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !visit(v, tok) {
			continue
		}
		if v == Unreachable {
			reachedUnreachable = true
			continue
		}
		if !onVisit(v) {
			continue
		}
		stack = append(stack, predecessors(v)...)
	}
	return reachedUnreachable
}

// Graph collects every vertex created while building one method's CFG, so
// that forward traversal (needed by the reference-count necessity
// analysis, spec §4.5, which walks forward from an assignment) can be
// performed by inverting the backward predecessor edges on demand.
type Graph struct {
	Entry Vertex
	Exit  *Joiner
	All   []Vertex
}

// Track records v as part of the graph; callers append every Node they
// allocate during CFG construction, and every Joiner that Combine keeps.
func (g *Graph) Track(v Vertex) { g.All = append(g.All, v) }

// successors builds (once per call — callers should cache it for a given
// Graph snapshot) the forward adjacency implied by the backward edges.
func (g *Graph) successors() map[Vertex][]Vertex {
	succ := make(map[Vertex][]Vertex, len(g.All))
	for _, v := range g.All {
		for _, p := range predecessors(v) {
			succ[p] = append(succ[p], v)
		}
	}
	return succ
}

// WalkForward performs a forward marker-based DFS from `from`, used by
// the ref-count necessity analysis to ask "does some node reachable from
// this assignment destroy type T before the next assignment" (spec §4.5).
// onVisit returning false stops the walk from expanding past that vertex
// (the caller uses this to stop at the next assignment of the same
// local, mirroring the "before another assignment kills the current
// binding" rule).
func (g *Graph) WalkForward(mk *Marker, from Vertex, onVisit func(Vertex) (keepGoing bool)) {
	succ := g.successors()
	tok := mk.Next()
	var stack []Vertex
	stack = append(stack, from)
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !visit(v, tok) {
			continue
		}
		if !onVisit(v) {
			continue
		}
		stack = append(stack, succ[v]...)
	}
}
