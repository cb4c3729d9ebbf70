package emit

import (
	"fmt"

	"github.com/panaflexx/gel2/internal/classes"
	"github.com/panaflexx/gel2/internal/types"
)

// HandleShape is one of the five handle kinds spec §9's design notes
// describe as "a sum of {Owned(T), Borrow(T), Counted(T),
// OwnedOrCounted(T), BorrowOrCounted(T)}", distinguished by whether the
// runtime increments/decrements non-virtually or virtually (spec §6,
// "Handles use non-virtual increment/decrement for pointer and ref, virtual
// increment/decrement for the hybrid types").
type HandleShape int

const (
	// ShapeValue is a plain value type: no handle at all.
	ShapeValue HandleShape = iota
	// ShapeRaw is a non-owning, non-counted raw pointer.
	ShapeRaw
	// ShapeOwning is the owning smart handle (spec §4.6 "owning handle for
	// fields of T^").
	ShapeOwning
	// ShapeCounted is the plain ref-counted handle (spec §4.6 "ref-counted
	// handle for string fields and root-object fields").
	ShapeCounted
	// ShapeOwningOrCounted is the dual-handle object variant (spec §1):
	// owning by default, but able to answer to a ref count too, needed for
	// owning fields/locals of the root object type (spec §4.5's "a special
	// case unconditionally flags variables of the root object type").
	ShapeOwningOrCounted
	// ShapeRawOrCounted is "a non-owning reference-counting handle (safe
	// build only) for non-owning locals whose ref-count analysis demanded
	// it" (spec §4.6).
	ShapeRawOrCounted
)

// runtimeTemplate names the bundled runtime header's handle templates
// (spec §6: "owning-handle, non-owning-handle, ref-counted-handle,
// owning-or-refcounted-handle, pointer-or-refcounted-handle").
func (s HandleShape) runtimeTemplate() string {
	switch s {
	case ShapeRaw:
		return "gel::Handle"
	case ShapeOwning:
		return "gel::Owning"
	case ShapeCounted:
		return "gel::Counted"
	case ShapeOwningOrCounted:
		return "gel::OwningOrCounted"
	case ShapeRawOrCounted:
		return "gel::HandleOrCounted"
	}
	return ""
}

// FieldShape selects the handle shape for a field's declared type (spec
// §4.6's "Within a class, emission chooses" bullet list).
func FieldShape(reg *classes.Registry, t types.Type) HandleShape {
	if types.IsOwning(t) {
		if isRootObject(reg, types.Base(t)) {
			return ShapeOwningOrCounted
		}
		return ShapeOwning
	}
	if _, isString := t.(*types.String); isString {
		return ShapeCounted
	}
	if isRootObject(reg, t) {
		return ShapeCounted
	}
	if types.IsReference(t) {
		return ShapeRaw
	}
	return ShapeValue
}

// LocalShape selects the handle shape for a local variable or temporary
// (spec §4.5's effect on emission: "locals flagged needs-ref are spilled
// into a ref-counted smart-handle; owning locals always use an owning
// smart-handle; string-typed locals always use a ref-counted handle;
// everything else is a raw target pointer"). safety is false under -u
// (unsafe mode skips runtime ref-count checks, spec §6 "-u").
func LocalShape(reg *classes.Registry, t types.Type, needsRef, safety bool) HandleShape {
	if types.IsOwning(t) {
		if needsRef || isRootObject(reg, types.Base(t)) {
			return ShapeOwningOrCounted
		}
		return ShapeOwning
	}
	if _, isString := t.(*types.String); isString {
		return ShapeCounted
	}
	if !types.IsReference(t) {
		return ShapeValue
	}
	if needsRef && safety {
		return ShapeRawOrCounted
	}
	return ShapeRaw
}

func isRootObject(reg *classes.Registry, t types.Type) bool {
	c, ok := t.(*types.Class)
	return ok && reg.Object != nil && c == reg.Object
}

// destroyTrackedClass returns the class a ref-count necessity query should
// track for t: the class itself, or an array's element class, regardless
// of whether t is Owning (internal/refcount.NeedsRefLocal cares about what
// can destroy the referenced class, not who owns the reference — mirrors
// internal/check.owningClassOf but without the ownership requirement,
// since the raw/RawOrCounted case applies to non-owning reference locals
// too).
func destroyTrackedClass(t types.Type) *types.Class {
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

// TargetType renders t's C++-like spelling under shape s — the template
// instantiation for reference types wrapped in a handle, or the scalar
// target type for values.
func TargetType(t types.Type, s HandleShape) string {
	if s == ShapeValue {
		return scalarType(t)
	}
	inner := innerTypeName(types.Base(t))
	tmpl := s.runtimeTemplate()
	if tmpl == "" {
		return inner
	}
	return fmt.Sprintf("%s<%s>", tmpl, inner)
}

func scalarType(t types.Type) string {
	b, ok := t.(*types.Basic)
	if !ok {
		return "void"
	}
	switch b.Kind {
	case types.Bool:
		return "bool"
	case types.Char:
		return "char16_t"
	case types.Int:
		return "int32_t"
	case types.Float32:
		return "float"
	case types.Float64:
		return "double"
	}
	return "void"
}

func innerTypeName(t types.Type) string {
	switch x := t.(type) {
	case *types.Class:
		return x.Name
	case *types.Array:
		return fmt.Sprintf("gel::Array<%s>", innerTypeName(x.Elem))
	case *types.String:
		return "gel::String"
	}
	return "void"
}
