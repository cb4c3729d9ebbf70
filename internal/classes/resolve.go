package classes

import (
	"fmt"

	"github.com/panaflexx/gel2/internal/types"
)

// ResolveContext carries the information overload resolution needs beyond
// the candidate list itself: the class from which the call site is
// lexically nested (to decide private-member accessibility) and whether
// override members should be considered (spec §4.1: "resolution always
// targets the declared, not overriding, member").
type ResolveContext struct {
	FromClass       *types.Class
	IncludeOverride bool
}

// ErrAmbiguous is returned when two zero-score candidates tie.
type ErrAmbiguous struct {
	Name string
}

func (e *ErrAmbiguous) Error() string { return fmt.Sprintf("ambiguous call to %q", e.Name) }

// ErrNoMatch is returned when no candidate scores low enough to call.
type ErrNoMatch struct {
	Name string
}

func (e *ErrNoMatch) Error() string { return fmt.Sprintf("no overload of %q matches the given arguments", e.Name) }

// score implements spec §4.1: "Each candidate gets a score
// 100·(1 if inaccessible)+n_mismatches." A mismatch is an argument whose
// type cannot convert (in method-arg context) to the candidate's
// corresponding parameter type. Arity mismatches make the candidate
// inapplicable outright (returned ok=false).
func score(ctx ResolveContext, m *Member, argTypes []types.Type) (s int, ok bool) {
	if m.IsOverride && !ctx.IncludeOverride {
		return 0, false
	}
	if len(m.Params) != len(argTypes) {
		return 0, false
	}
	if m.IsPrivate() && m.Class != ctx.FromClass {
		s += 100
	}
	for i, p := range m.Params {
		if !types.CanConvert(argTypes[i], p.Type, types.CtxMethodArg, false, false, nil) {
			s++
		}
	}
	return s, true
}

// Resolve performs spec §4.1's overload resolution: iterate candidates
// along the inheritance chain (most-derived first, as returned by
// AllMembersNamed), skipping inapplicable candidates; the search
// terminates as soon as a zero-score candidate is found and no other
// candidate at that same inheritance depth also scores zero.
func Resolve(ctx ResolveContext, candidates []*Member, argTypes []types.Type) (*Member, error) {
	type scored struct {
		m   *Member
		s   int
		cls *types.Class
	}
	var scoredCands []scored
	for _, m := range candidates {
		s, ok := score(ctx, m, argTypes)
		if !ok {
			continue
		}
		scoredCands = append(scoredCands, scored{m, s, m.Class})
	}
	if len(scoredCands) == 0 {
		name := "<unknown>"
		if len(candidates) > 0 {
			name = candidates[0].Name
		}
		return nil, &ErrNoMatch{Name: name}
	}

	// Group by inheritance depth implicitly preserved in input order
	// (AllMembersNamed walks most-derived first and all members of one
	// class are contiguous), so a zero-score run can be detected by
	// scanning for the first zero and checking its immediate neighbors
	// in the same class.
	best := scoredCands[0]
	bestIdx := 0
	for i, c := range scoredCands {
		if c.s < best.s {
			best = c
			bestIdx = i
		}
		if c.s == 0 {
			// Zero found: check whether any other candidate from the
			// SAME class also scores zero (a true tie at this depth).
			for j, other := range scoredCands {
				if j != i && other.cls == c.cls && other.s == 0 {
					return nil, &ErrAmbiguous{Name: c.m.Name}
				}
			}
			return c.m, nil
		}
	}
	_ = bestIdx
	// No zero-score candidate: lowest score wins if unique.
	count := 0
	for _, c := range scoredCands {
		if c.s == best.s {
			count++
		}
	}
	if count > 1 {
		return nil, &ErrAmbiguous{Name: best.m.Name}
	}
	return best.m, nil
}
