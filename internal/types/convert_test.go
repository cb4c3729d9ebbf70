package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClasses() (object, animal, dog *Class) {
	object = &Class{Name: "object"}
	animal = &Class{Name: "Animal", Parent: object}
	dog = &Class{Name: "Dog", Parent: animal}
	object.Subclasses = []*Class{animal}
	animal.Subclasses = []*Class{dog}
	return
}

func TestIsSubtype(t *testing.T) {
	object, animal, dog := newTestClasses()
	require.True(t, IsSubtype(dog, animal))
	require.True(t, IsSubtype(dog, object))
	require.True(t, IsSubtype(animal, animal))
	require.False(t, IsSubtype(animal, dog))
	require.True(t, IsSubtype(&Null{}, dog))
}

func TestCanConvert_subtypeUpcast(t *testing.T) {
	_, animal, dog := newTestClasses()
	ok := CanConvert(dog, animal, CtxOther, false, false, nil)
	assert.True(t, ok)
}

func TestCanConvert_downcastRequiresExplicit(t *testing.T) {
	_, animal, dog := newTestClasses()
	assert.False(t, CanConvert(animal, dog, CtxOther, false, false, nil))
	assert.True(t, CanConvert(animal, dog, CtxOther, true, false, nil))
}

func TestCanConvert_numericWidening(t *testing.T) {
	intT := &Basic{Kind: Int}
	floatT := &Basic{Kind: Float32}
	doubleT := &Basic{Kind: Float64}
	assert.True(t, CanConvert(intT, floatT, CtxOther, false, false, nil))
	assert.True(t, CanConvert(intT, doubleT, CtxOther, false, false, nil))
	assert.True(t, CanConvert(floatT, doubleT, CtxOther, false, false, nil))
	assert.False(t, CanConvert(doubleT, intT, CtxOther, false, false, nil))
}

func TestCanConvert_boxingRequiresMethodArgCtx(t *testing.T) {
	ObjectClass = &Class{Name: "object"}
	defer func() { ObjectClass = nil }()
	intT := &Basic{Kind: Int}

	assert.False(t, CanConvert(intT, ObjectClass, CtxOther, false, false, nil))
	assert.True(t, CanConvert(intT, ObjectClass, CtxMethodArg, false, false, nil))
}

func TestCanConvert_stringAlwaysBoxableToObject(t *testing.T) {
	ObjectClass = &Class{Name: "object"}
	defer func() { ObjectClass = nil }()
	str := &String{}

	assert.True(t, CanConvert(str, ObjectClass, CtxOther, false, false, nil))
}

func TestCanConvert_owningToNonOwning(t *testing.T) {
	_, animal, _ := newTestClasses()
	owningAnimal := &Owning{Elem: animal}

	assert.False(t, CanConvert(owningAnimal, animal, CtxOther, false, false, nil))
	assert.True(t, CanConvert(owningAnimal, animal, CtxAssignVar, false, false, nil))
	assert.True(t, CanConvert(owningAnimal, animal, CtxMethodArg, false, false, nil))
}

func TestCanConvert_nonOwningToOwningRequiresBoxing(t *testing.T) {
	_, animal, _ := newTestClasses()
	owningAnimal := &Owning{Elem: animal}

	// A non-owning class reference can never become Owning by mere
	// assignment: only value types (boxing) make that ownership jump.
	assert.False(t, CanConvert(animal, owningAnimal, CtxMethodArg, false, false, nil))
}

func TestCanConvert_nullToOwning(t *testing.T) {
	_, animal, _ := newTestClasses()
	owningAnimal := &Owning{Elem: animal}
	assert.True(t, CanConvert(&Null{}, owningAnimal, CtxOther, false, false, nil))
}

func TestCanConvert_effectsMarkVirtualOnExplicit(t *testing.T) {
	_, animal, dog := newTestClasses()
	var eff Effects
	ok := CanConvert(animal, dog, CtxOther, true, false, &eff)
	require.True(t, ok)
	assert.True(t, eff.MarkSourceVirtual)
}

func TestCanConvert_effectsMarkDestVirtualOnOwningTarget(t *testing.T) {
	_, animal, dog := newTestClasses()
	owningDog := &Owning{Elem: dog}
	owningAnimal := &Owning{Elem: animal}
	var eff Effects
	ok := CanConvert(owningDog, owningAnimal, CtxAssignVar, false, false, &eff)
	require.True(t, ok)
	assert.True(t, eff.MarkDestVirtual)
}

func TestIdentical_arraysAndOwning(t *testing.T) {
	intT := &Basic{Kind: Int}
	a1 := &Array{Elem: intT}
	a2 := &Array{Elem: &Basic{Kind: Int}}
	assert.True(t, Identical(a1, a2))

	o1 := &Owning{Elem: a1}
	o2 := &Owning{Elem: a2}
	assert.True(t, Identical(o1, o2))
}
