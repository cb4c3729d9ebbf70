package emit

import (
	"sort"
	"strings"

	"github.com/panaflexx/gel2/internal/classes"
	"github.com/panaflexx/gel2/internal/types"
)

// TypesetDump implements the -typeset diagnostic (spec §6): a textual dump
// of every class's type-destroys set and every method's method-destroys
// set, the way a developer decides whether the ref-count analysis is being
// too conservative.
func (e *Emitter) TypesetDump() string {
	var b strings.Builder
	for _, c := range classOrder(e.reg) {
		set := e.destr.TypeDestroys(c)
		b.WriteString(c.Name + ": destroys " + classNames(set.Classes()) + "\n")
		for _, m := range e.reg.OwnMembers(c) {
			if m.Kind != classes.KindMethod && m.Kind != classes.KindCtor {
				continue
			}
			ms := e.destr.MethodDestroys(m)
			b.WriteString("  " + c.Name + "." + m.Name + ": destroys " + classNames(ms.Classes()) + "\n")
		}
	}
	return b.String()
}

func classNames(cs []*types.Class) string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = c.Name
	}
	sort.Strings(names)
	if len(names) == 0 {
		return "(nothing)"
	}
	return strings.Join(names, ", ")
}
