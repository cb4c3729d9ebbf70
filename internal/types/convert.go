package types

// Context is the third axis of CanConvert (spec §4.1 "ctx ∈ {other,
// assign-var, method-arg}").
type Context int

const (
	CtxOther Context = iota
	CtxAssignVar
	CtxMethodArg
)

// ObjectClass is the root object class, injected by the class registry at
// startup (internal/classes.NewRegistry wires this). Conversions crossing
// it are singled out in CanConvert per spec §4.1 ("crossing the root-object
// boundary forces object_inheritance_needed").
var ObjectClass *Class

// Effects records the side effects CanConvert has on the type lattice when
// a conversion is permitted (spec §4.1: "Any explicit conversion forces...",
// "Any conversion to an owning wrapper forces...", "Any conversion crossing
// the root-object boundary forces..."). The checker applies these after
// confirming the conversion succeeds.
type Effects struct {
	MarkSourceVirtual bool // source class becomes virtual_needed
	MarkDestVirtual   bool // destination base class becomes virtual_needed
	MarkObjectCross   *Class // non-root side needing object_inheritance_needed, or nil
}

// CanConvert implements spec §4.1's CanConvert(S, D, context, explicit,
// subtype_only): true iff both ownership compatibility and base-type
// compatibility succeed. eff, if non-nil, is populated with the
// side-effecting consequences of allowing the conversion.
func CanConvert(s, d Type, ctx Context, explicit, subtypeOnly bool, eff *Effects) bool {
	if !ownershipOK(s, d, ctx) {
		return false
	}
	if !baseTypeOK(s, d, explicit, subtypeOnly, eff) {
		return false
	}
	if eff != nil {
		if explicit {
			if sc, ok := Base(s).(*Class); ok {
				eff.MarkSourceVirtual = true
				_ = sc
			}
		}
		if IsOwning(d) {
			if dc, ok := Base(d).(*Class); ok {
				eff.MarkDestVirtual = true
				_ = dc
			}
		}
		if ObjectClass != nil {
			sIsRoot := Base(s) == Type(ObjectClass)
			dIsRoot := Base(d) == Type(ObjectClass)
			if sIsRoot != dIsRoot {
				if !sIsRoot {
					if sc, ok := Base(s).(*Class); ok {
						eff.MarkObjectCross = sc
					}
				} else if dc, ok := Base(d).(*Class); ok {
					eff.MarkObjectCross = dc
				}
			}
		}
	}
	return true
}

// ownershipOK implements the ownership-compatibility table in spec §4.1.
func ownershipOK(s, d Type, ctx Context) bool {
	sOwning, dOwning := IsOwning(s), IsOwning(d)
	if _, isNull := s.(*Null); isNull {
		return true // "null | ok | ok"
	}
	switch {
	case !sOwning && !dOwning:
		return true // "non-owning | non-owning | ok"
	case !sOwning && dOwning:
		// ok only if S is a value type being boxed AND (ctx=method-arg OR S is string)
		_, isString := s.(*String)
		return IsValue(s) && (ctx == CtxMethodArg || isString)
	case sOwning && !dOwning:
		return ctx == CtxAssignVar || ctx == CtxMethodArg
	default: // sOwning && dOwning
		return true
	}
}

// baseTypeOK implements base-type compatibility: identity, then (if not
// subtype_only) implicit widenings and string<->object, then (if explicit)
// the reverse plus value<->object boxing.
func baseTypeOK(s, d Type, explicit, subtypeOnly bool, eff *Effects) bool {
	bs, bd := Base(s), Base(d)

	if Identical(bs, bd) {
		return true
	}
	if IsSubtype(bs, bd) {
		return true
	}

	if !subtypeOnly {
		if widensTo(bs, bd) {
			return true
		}
		if isStringObjectPair(bs, bd) {
			return true
		}
	}

	if explicit {
		if IsSubtype(bd, bs) {
			return true
		}
		if !subtypeOnly && widensTo(bd, bs) {
			return true
		}
		if isBoxingPair(bs, bd) {
			return true
		}
	}
	return false
}

// widensTo reports the implicit numeric widenings: int->float, int->double,
// float->double (spec §4.1).
func widensTo(s, d Type) bool {
	sb, sok := s.(*Basic)
	db, dok := d.(*Basic)
	if !sok || !dok {
		return false
	}
	switch {
	case sb.Kind == Int && (db.Kind == Float32 || db.Kind == Float64):
		return true
	case sb.Kind == Float32 && db.Kind == Float64:
		return true
	}
	return false
}

func isStringObjectPair(s, d Type) bool {
	_, sString := s.(*String)
	_, dString := d.(*String)
	sObj := ObjectClass != nil && s == Type(ObjectClass)
	dObj := ObjectClass != nil && d == Type(ObjectClass)
	return (sString && dObj) || (sObj && dString)
}

// isBoxingPair reports value<->object un/boxing, permitted only when
// explicit (spec §4.1 "value↔object (un/boxing)").
func isBoxingPair(s, d Type) bool {
	sObj := ObjectClass != nil && s == Type(ObjectClass)
	dObj := ObjectClass != nil && d == Type(ObjectClass)
	return (IsValue(s) && dObj) || (sObj && IsValue(d))
}
