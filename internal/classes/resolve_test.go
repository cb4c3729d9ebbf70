package classes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panaflexx/gel2/internal/lang/ast"
	"github.com/panaflexx/gel2/internal/types"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	t.Cleanup(func() { types.ObjectClass = nil })
	return r
}

func TestResolve_singleExactMatchWins(t *testing.T) {
	r := newTestRegistry(t)
	dog, err := r.Declare("Dog", "", false, false, true)
	require.NoError(t, err)

	intT := &types.Basic{Kind: types.Int}
	m := &Member{Kind: KindMethod, Name: "Bark", Params: []Param{{Name: "n", Type: intT}}, Mods: 0}
	r.AddMember(dog, m)

	got, err := Resolve(ResolveContext{FromClass: dog}, r.AllMembersNamed(dog, "Bark"), []types.Type{intT})
	require.NoError(t, err)
	assert.Same(t, m, got)
}

func TestResolve_arityMismatchExcluded(t *testing.T) {
	r := newTestRegistry(t)
	dog, _ := r.Declare("Dog", "", false, false, true)
	intT := &types.Basic{Kind: types.Int}
	m1 := &Member{Kind: KindMethod, Name: "Bark", Params: []Param{{Name: "n", Type: intT}}}
	r.AddMember(dog, m1)

	_, err := Resolve(ResolveContext{FromClass: dog}, r.AllMembersNamed(dog, "Bark"), []types.Type{intT, intT})
	assert.Error(t, err)
	assert.IsType(t, &ErrNoMatch{}, err)
}

func TestResolve_overloadPicksBestConversionScore(t *testing.T) {
	r := newTestRegistry(t)
	dog, _ := r.Declare("Dog", "", false, false, true)
	intT := &types.Basic{Kind: types.Int}
	floatT := &types.Basic{Kind: types.Float32}

	exact := &Member{Kind: KindMethod, Name: "Feed", Params: []Param{{Name: "n", Type: intT}}}
	widened := &Member{Kind: KindMethod, Name: "Feed", Params: []Param{{Name: "n", Type: floatT}}}
	r.AddMember(dog, exact)
	r.AddMember(dog, widened)

	got, err := Resolve(ResolveContext{FromClass: dog}, r.AllMembersNamed(dog, "Feed"), []types.Type{intT})
	require.NoError(t, err)
	assert.Same(t, exact, got)
}

func TestResolve_privateFromOutsideIsInaccessible(t *testing.T) {
	r := newTestRegistry(t)
	dog, _ := r.Declare("Dog", "", false, false, true)
	cat, _ := r.Declare("Cat", "", false, false, true)
	intT := &types.Basic{Kind: types.Int}

	priv := &Member{Kind: KindMethod, Name: "Feed", Mods: ast.ModPrivate, Params: []Param{{Name: "n", Type: intT}}}
	r.AddMember(dog, priv)

	// From outside the declaring class the private candidate still scores
	// 100 but remains the only applicable candidate, so it still wins —
	// inaccessibility only affects ranking among several candidates.
	got, err := Resolve(ResolveContext{FromClass: cat}, r.AllMembersNamed(dog, "Feed"), []types.Type{intT})
	require.NoError(t, err)
	assert.Same(t, priv, got)
}

func TestResolve_ambiguousTwoZeroScoreCandidates(t *testing.T) {
	r := newTestRegistry(t)
	dog, _ := r.Declare("Dog", "", false, false, true)
	intT := &types.Basic{Kind: types.Int}

	m1 := &Member{Kind: KindMethod, Name: "Feed", Params: []Param{{Name: "n", Type: intT}}}
	m2 := &Member{Kind: KindMethod, Name: "Feed", Params: []Param{{Name: "m", Type: intT}}}
	r.AddMember(dog, m1)
	r.AddMember(dog, m2)

	_, err := Resolve(ResolveContext{FromClass: dog}, r.AllMembersNamed(dog, "Feed"), []types.Type{intT})
	assert.IsType(t, &ErrAmbiguous{}, err)
}

func TestResolve_derivedClassShadowsBaseZeroScore(t *testing.T) {
	r := newTestRegistry(t)
	animal, _ := r.Declare("Animal", "", false, false, true)
	dog, _ := r.Declare("Dog", "Animal", false, false, true)
	intT := &types.Basic{Kind: types.Int}

	base := &Member{Kind: KindMethod, Name: "Feed", Params: []Param{{Name: "n", Type: intT}}}
	derived := &Member{Kind: KindMethod, Name: "Feed", Params: []Param{{Name: "n", Type: intT}}}
	r.AddMember(animal, base)
	r.AddMember(dog, derived)

	// AllMembersNamed returns most-derived first, so the search should
	// terminate at `derived` without even considering `base` a tie.
	got, err := Resolve(ResolveContext{FromClass: dog}, r.AllMembersNamed(dog, "Feed"), []types.Type{intT})
	require.NoError(t, err)
	assert.Same(t, derived, got)
}

func TestResolve_overridesExcludedByDefault(t *testing.T) {
	r := newTestRegistry(t)
	animal, _ := r.Declare("Animal", "", false, false, true)
	dog, _ := r.Declare("Dog", "Animal", false, false, true)

	base := &Member{Kind: KindMethod, Name: "Speak"}
	override := &Member{Kind: KindMethod, Name: "Speak", IsOverride: true, Overrides: base}
	r.AddMember(animal, base)
	r.AddMember(dog, override)

	got, err := Resolve(ResolveContext{FromClass: dog}, r.AllMembersNamed(dog, "Speak"), nil)
	require.NoError(t, err)
	assert.Same(t, base, got)
}
