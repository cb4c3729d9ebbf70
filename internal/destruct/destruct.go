// Package destruct computes the whole-program destruction-set analysis
// (spec §4.4): for each concrete class and each method, the set of types
// possibly destroyed, via a fixed point over the class graph and call
// graph. It is grounded on the teacher's pointer/gen.go worklist-based
// points-to analysis (a marker/queue-driven fixed point over a call graph)
// and ssa/lift.go's use of a bitset-like visited structure, generalized
// here to a prefix-free set of *types.Class instead of Go SSA values.
package destruct

import (
	"github.com/panaflexx/gel2/internal/classes"
	"github.com/panaflexx/gel2/internal/types"
)

// Set is a prefix-free collection of classes (spec §4.4: "subtyping
// collapsed via a prefix-free representation: adding a supertype absorbs
// subtypes already in the set; adding a subtype of something already
// present is a no-op").
type Set struct {
	classes map[*types.Class]bool
}

func NewSet() *Set { return &Set{classes: make(map[*types.Class]bool)} }

// Add inserts c, absorbing any subtypes of c already present and skipping
// the insert if a supertype of c is already present.
func (s *Set) Add(c *types.Class) {
	for existing := range s.classes {
		if c.IsSubclassOf(existing) {
			return // a supertype is already present; c adds nothing
		}
	}
	for existing := range s.classes {
		if existing.IsSubclassOf(c) {
			delete(s.classes, existing) // c absorbs this subtype
		}
	}
	s.classes[c] = true
}

// AddAll inserts every class in other into s.
func (s *Set) AddAll(other *Set) {
	if other == nil {
		return
	}
	for c := range other.classes {
		s.Add(c)
	}
}

// Contains reports whether c, or some supertype of c already collapsed
// into the set, is in the set — i.e. whether destroying an instance
// tracked by this set could destroy c.
func (s *Set) Contains(c *types.Class) bool {
	for existing := range s.classes {
		if c.IsSubclassOf(existing) {
			return true
		}
	}
	return false
}

// Classes returns the set's members (the collapsed, prefix-free list).
func (s *Set) Classes() []*types.Class {
	out := make([]*types.Class, 0, len(s.classes))
	for c := range s.classes {
		out = append(out, c)
	}
	return out
}

func (s *Set) Len() int { return len(s.classes) }

// Analyzer computes and memoizes type-destroys and method-destroys (spec
// §4.4: "Both computations are memoized per entity. Order is lazy:
// destruction sets are computed on demand during ref-count analysis and
// emission, after all CFGs are complete.").
type Analyzer struct {
	reg *classes.Registry

	typeDestroys   map[*types.Class]*Set
	methodDestroys map[*classes.Member]*Set
}

func NewAnalyzer(reg *classes.Registry) *Analyzer {
	return &Analyzer{
		reg:            reg,
		typeDestroys:   make(map[*types.Class]*Set),
		methodDestroys: make(map[*classes.Member]*Set),
	}
}

// TypeDestroys returns type-destroys(C): spec §4.4 "C itself, plus, for
// every non-static non-const field in C and all ancestors, the type's
// var-destroys; recursively, for each subclass of C".
func (a *Analyzer) TypeDestroys(c *types.Class) *Set {
	if s, ok := a.typeDestroys[c]; ok {
		return s
	}
	s := NewSet()
	a.typeDestroys[c] = s // break cycles: subclasses may recurse back into c
	s.Add(c)

	for cur := c; cur != nil; cur = cur.Parent {
		for _, m := range a.reg.OwnMembers(cur) {
			if m.Kind != classes.KindField || m.IsStatic() {
				continue // const/static fields and non-fields don't own a destructible instance
			}
			s.AddAll(a.varDestroys(m.Type))
		}
	}
	for _, sub := range c.Subclasses {
		s.AddAll(a.TypeDestroys(sub))
	}
	return s
}

// varDestroys(T) is type-destroys(base(T)) if T is Owning, otherwise empty
// (spec §4.4).
func (a *Analyzer) varDestroys(t types.Type) *Set {
	if !types.IsOwning(t) {
		return NewSet()
	}
	base := types.Base(t)
	switch bt := base.(type) {
	case *types.Class:
		return a.TypeDestroys(bt)
	case *types.Array:
		if cls, ok := bt.Elem.(*types.Class); ok {
			return a.TypeDestroys(cls)
		}
	}
	return NewSet()
}

// MethodDestroys returns method-destroys(M): spec §4.4 "(a) methods it
// directly calls (via Node.Calls), (b) all overrides of those callees
// ..., plus the union of NodeDestroys over every node in M's CFG. The
// search is pruned once the set contains the root object class."
func (a *Analyzer) MethodDestroys(m *classes.Member) *Set {
	if s, ok := a.methodDestroys[m]; ok {
		return s
	}
	s := NewSet()
	a.methodDestroys[m] = s // break mutual-recursion cycles
	if m.CFG == nil {
		return s
	}

	a.walkMethod(m, s, make(map[*classes.Member]bool))
	return s
}

// walkMethod is the marker-based DFS of spec §4.4: onStack plays the role
// of the traversal marker, guarding against infinite recursion through
// mutually recursive methods (a plain visited set suffices here since the
// "graph" being walked is the call graph, not a single method's CFG).
func (a *Analyzer) walkMethod(m *classes.Member, s *Set, onStack map[*classes.Member]bool) {
	if onStack[m] || m.CFG == nil {
		return
	}
	onStack[m] = true
	defer delete(onStack, m)

	for _, v := range m.CFG.All {
		for _, d := range v.NodeDestroys() {
			s.Add(d)
		}
		if callee, ok := v.Calls().(*classes.Member); ok && callee != nil {
			s.AddAll(a.transitiveDestroys(callee, onStack))
			for _, ov := range a.reg.OverridesOf(callee) {
				s.AddAll(a.transitiveDestroys(ov, onStack))
			}
		}
		if a.reg.Object != nil && s.Contains(a.reg.Object) {
			return // pruned: cannot grow further (spec §4.4)
		}
	}
}

// transitiveDestroys recurses into callee's own analysis, reusing the
// cycle-guard from the root call so mutually recursive methods terminate,
// and memoizing into the shared cache per spec §4.4.
func (a *Analyzer) transitiveDestroys(callee *classes.Member, onStack map[*classes.Member]bool) *Set {
	if onStack[callee] {
		return NewSet()
	}
	if cached, ok := a.methodDestroys[callee]; ok {
		return cached
	}
	sub := NewSet()
	a.methodDestroys[callee] = sub
	a.walkMethod(callee, sub, onStack)
	return sub
}
