package classes

import (
	"fmt"

	"github.com/panaflexx/gel2/internal/types"
)

// Registry is the process-wide class table (spec §5 "Shared mutable state
// is confined to a few process-wide singletons ... the class registry").
// One Registry is created per compilation run; nothing in it is accessed
// concurrently.
type Registry struct {
	byName    map[string]*types.Class
	members   map[*types.Class][]*Member // declaration order, own members only
	overrides map[*Member][]*Member      // base method -> its direct overrides

	Object *types.Class
	Array  *types.Class // built-in array class, parent of every Array-of-T (spec §3)
	String *types.Class // synthetic handle for string's member lookups (Speak/Length/etc)
}

// NewRegistry creates a registry seeded with the root object class and the
// other built-ins the checker assumes exist.
func NewRegistry() *Registry {
	r := &Registry{
		byName:    make(map[string]*types.Class),
		members:   make(map[*types.Class][]*Member),
		overrides: make(map[*Member][]*Member),
	}
	r.Object = r.declareBuiltin("object", nil)
	r.Array = r.declareBuiltin("array", r.Object)
	r.String = r.declareBuiltin("string", r.Object)
	types.ObjectClass = r.Object
	return r
}

func (r *Registry) declareBuiltin(name string, parent *types.Class) *types.Class {
	c := &types.Class{Name: name, Parent: parent, IsExtern: true, IsPublic: true}
	if parent != nil {
		parent.Subclasses = append(parent.Subclasses, c)
	}
	r.byName[name] = c
	return c
}

// Declare registers a new user class. parent may be nil, meaning the
// implicit root object class (spec §3 invariant c only exempts the root
// class itself from having a parent; every user class is parented, by
// default to Object).
func (r *Registry) Declare(name string, parentName string, abstract, extern, public bool) (*types.Class, error) {
	if _, dup := r.byName[name]; dup {
		return nil, fmt.Errorf("class %q declared more than once", name)
	}
	parent := r.Object
	if parentName != "" {
		p, ok := r.byName[parentName]
		if !ok {
			return nil, fmt.Errorf("class %q: unknown parent %q", name, parentName)
		}
		parent = p
	}
	c := &types.Class{Name: name, Parent: parent, IsAbstract: abstract, IsExtern: extern, IsPublic: public}
	parent.Subclasses = append(parent.Subclasses, c)
	r.byName[name] = c
	return c, nil
}

func (r *Registry) Lookup(name string) (*types.Class, bool) {
	c, ok := r.byName[name]
	return c, ok
}

// All returns every registered class, in registration order is not
// guaranteed; callers needing determinism should sort by name.
func (r *Registry) All() []*types.Class {
	out := make([]*types.Class, 0, len(r.byName))
	for _, c := range r.byName {
		out = append(out, c)
	}
	return out
}

// AddMember appends m to c's own member table.
func (r *Registry) AddMember(c *types.Class, m *Member) {
	m.Class = c
	r.members[c] = append(r.members[c], m)
	if m.IsOverride && m.Overrides != nil {
		r.overrides[m.Overrides] = append(r.overrides[m.Overrides], m)
	}
}

// OverridesOf returns every member that overrides m directly (spec §4.4
// "Method-destroys(M): ... (b) all overrides of those callees, because
// virtual dispatch").
func (r *Registry) OverridesOf(m *Member) []*Member {
	return r.overrides[m]
}

// OwnMembers returns the members declared directly on c (not inherited).
func (r *Registry) OwnMembers(c *types.Class) []*Member {
	return r.members[c]
}

// AllMembersNamed returns every member named `name` visible from c, walking
// the inheritance chain from c up to the root, most-derived first. This is
// the candidate set overload resolution scores (spec §4.1).
func (r *Registry) AllMembersNamed(c *types.Class, name string) []*Member {
	var out []*Member
	for cur := c; cur != nil; cur = cur.Parent {
		for _, m := range r.members[cur] {
			if m.Name == name {
				out = append(out, m)
			}
		}
	}
	return out
}

// FindCtors returns the constructors declared directly on c (constructors
// are never inherited).
func (r *Registry) FindCtors(c *types.Class) []*Member {
	var out []*Member
	for _, m := range r.members[c] {
		if m.Kind == KindCtor {
			out = append(out, m)
		}
	}
	return out
}
