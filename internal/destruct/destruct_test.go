package destruct

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panaflexx/gel2/internal/cfg"
	"github.com/panaflexx/gel2/internal/classes"
	"github.com/panaflexx/gel2/internal/types"
)

func TestSet_prefixFreeAbsorption(t *testing.T) {
	object := &types.Class{Name: "object"}
	animal := &types.Class{Name: "Animal", Parent: object}
	dog := &types.Class{Name: "Dog", Parent: animal}

	s := NewSet()
	s.Add(animal)
	s.Add(dog) // subtype of something already present: no-op
	assert.Equal(t, 1, s.Len())
	assert.True(t, s.Contains(dog))

	s.Add(object) // supertype: absorbs animal
	assert.Equal(t, 1, s.Len())
	assert.True(t, s.Contains(animal))
}

func newRegWithClasses(t *testing.T) (*classes.Registry, *types.Class, *types.Class) {
	t.Helper()
	r := classes.NewRegistry()
	t.Cleanup(func() { types.ObjectClass = nil })
	engine, err := r.Declare("Engine", "", false, false, true)
	require.NoError(t, err)
	car, err := r.Declare("Car", "", false, false, true)
	require.NoError(t, err)
	return r, engine, car
}

func TestTypeDestroys_includesOwningFieldTarget(t *testing.T) {
	r, engine, car := newRegWithClasses(t)
	owningEngine := &types.Owning{Elem: engine}
	r.AddMember(car, &classes.Member{Kind: classes.KindField, Name: "engine", Type: owningEngine})

	a := NewAnalyzer(r)
	set := a.TypeDestroys(car)
	assert.True(t, set.Contains(car))
	assert.True(t, set.Contains(engine))
}

func TestTypeDestroys_excludesNonOwningField(t *testing.T) {
	r, engine, car := newRegWithClasses(t)
	r.AddMember(car, &classes.Member{Kind: classes.KindField, Name: "spareRef", Type: engine})

	a := NewAnalyzer(r)
	set := a.TypeDestroys(car)
	assert.True(t, set.Contains(car))
	assert.False(t, set.Contains(engine))
}

func TestTypeDestroys_propagatesToSubclasses(t *testing.T) {
	r, _, car := newRegWithClasses(t)
	sportsCar, err := r.Declare("SportsCar", "Car", false, false, true)
	require.NoError(t, err)

	turbo, err := r.Declare("Turbo", "", false, false, true)
	require.NoError(t, err)
	r.AddMember(sportsCar, &classes.Member{Kind: classes.KindField, Name: "turbo", Type: &types.Owning{Elem: turbo}})

	a := NewAnalyzer(r)
	set := a.TypeDestroys(car)
	assert.True(t, set.Contains(turbo), "a destructor call on Car might dispatch to SportsCar's destructor at runtime")
}

func TestMethodDestroys_collectsNodeDestroysAndCallees(t *testing.T) {
	r, engine, car := newRegWithClasses(t)

	calleeGraph := &cfg.Graph{}
	n1 := cfg.NewNode(nil)
	n1.AddDestroys(engine)
	calleeGraph.Track(n1)
	callee := &classes.Member{Kind: classes.KindMethod, Name: "Scrap", Class: car, CFG: calleeGraph}

	callerGraph := &cfg.Graph{}
	call := cfg.NewNode(nil)
	call.SetCalls(callee)
	callerGraph.Track(call)
	caller := &classes.Member{Kind: classes.KindMethod, Name: "Retire", Class: car, CFG: callerGraph}

	a := NewAnalyzer(r)
	set := a.MethodDestroys(caller)
	assert.True(t, set.Contains(engine))
}

func TestMethodDestroys_includesOverridesOfCallee(t *testing.T) {
	r, _, car := newRegWithClasses(t)
	turbo, _ := r.Declare("Turbo", "", false, false, true)

	base := &classes.Member{Kind: classes.KindMethod, Name: "Speak", Class: car, CFG: &cfg.Graph{}}
	r.AddMember(car, base)

	overrideGraph := &cfg.Graph{}
	on := cfg.NewNode(nil)
	on.AddDestroys(turbo)
	overrideGraph.Track(on)
	override := &classes.Member{Kind: classes.KindMethod, Name: "Speak", Class: car, IsOverride: true, Overrides: base, CFG: overrideGraph}
	r.AddMember(car, override)

	callerGraph := &cfg.Graph{}
	call := cfg.NewNode(nil)
	call.SetCalls(base)
	callerGraph.Track(call)
	caller := &classes.Member{Kind: classes.KindMethod, Name: "Drive", Class: car, CFG: callerGraph}

	a := NewAnalyzer(r)
	set := a.MethodDestroys(caller)
	assert.True(t, set.Contains(turbo), "virtual dispatch means any override of the callee may run")
}

func TestMethodDestroys_mutualRecursionTerminates(t *testing.T) {
	r, _, car := newRegWithClasses(t)

	aGraph := &cfg.Graph{}
	bGraph := &cfg.Graph{}
	methodA := &classes.Member{Kind: classes.KindMethod, Name: "A", Class: car, CFG: aGraph}
	methodB := &classes.Member{Kind: classes.KindMethod, Name: "B", Class: car, CFG: bGraph}

	callB := cfg.NewNode(nil)
	callB.SetCalls(methodB)
	aGraph.Track(callB)

	callA := cfg.NewNode(nil)
	callA.SetCalls(methodA)
	bGraph.Track(callA)

	a := NewAnalyzer(r)
	require.NotPanics(t, func() {
		a.MethodDestroys(methodA)
	})
}
