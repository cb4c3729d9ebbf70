package check

import (
	"go/token"

	"github.com/panaflexx/gel2/internal/cfg"
	"github.com/panaflexx/gel2/internal/lang/ast"
)

// checkDefiniteAssignment implements spec §4.3: "walk the CFG backwards
// from every use, stopping at nodes that set the local; if the walk
// reaches unreachable, report use-before-init... any visited node whose
// Takes(local) is true is an error".
func (c *Checker) checkDefiniteAssignment(l *Local, uses []localUse) {
	isOutParam := l.IsParam && l.Mode == ast.ModeOut
	for _, u := range uses {
		var takeErr bool
		reached := cfg.WalkBackward(&c.marker, u.at, func(v cfg.Vertex) bool {
			if v.Takes(l) {
				takeErr = true
			}
			return !v.Sets(l)
		})
		if takeErr {
			c.Sink.Errorf(u.pos, "can't transfer ownership: %q has already had its value taken on this path", l.Name)
		}
		if reached {
			if isOutParam {
				c.Sink.Errorf(u.pos, "out parameter %q may not be assigned on all paths", l.Name)
			} else {
				c.Sink.Errorf(u.pos, "local %q may be used before it is assigned", l.Name)
			}
		}
	}
}

// checkOutParamAssigned runs the same walk rooted at the method's exit_
// joiner, spec §4.3's "For each out-parameter: the same walk starts from
// the method's exit_".
func (c *Checker) checkOutParamAssigned(l *Local, exit cfg.Vertex, pos token.Pos) {
	c.checkDefiniteAssignment(l, []localUse{{at: exit, pos: pos}})
}
