package check

import "github.com/panaflexx/gel2/internal/types"

// convertWithEffects wraps types.CanConvert for call sites where the
// conversion, once found legal, actually takes effect (an assignment, an
// initializer, a return, an explicit cast) — as opposed to overload
// resolution's scoring pass, which tries many candidates and must not mark
// classes virtual just because one rejected candidate would have required
// it. Applies spec §4.1's "any explicit conversion forces the source class
// to be marked virtual_needed", "any conversion to an owning wrapper forces
// the destination base class to be marked virtual_needed", and "any
// conversion crossing the root-object boundary forces
// object_inheritance_needed on the non-root side".
func (c *Checker) convertWithEffects(s, d types.Type, ctx types.Context, explicit bool) bool {
	var eff types.Effects
	ok := types.CanConvert(s, d, ctx, explicit, false, &eff)
	if ok {
		applyEffects(s, d, &eff)
	}
	return ok
}

func applyEffects(s, d types.Type, eff *types.Effects) {
	if eff.MarkSourceVirtual {
		if sc, ok := types.Base(s).(*types.Class); ok {
			sc.VirtualNeeded = true
		}
	}
	if eff.MarkDestVirtual {
		if dc, ok := types.Base(d).(*types.Class); ok {
			dc.VirtualNeeded = true
		}
	}
	if eff.MarkObjectCross != nil {
		eff.MarkObjectCross.ObjectInheritanceNeed = true
	}
}
