// Package check builds each method's control-flow graph while type
// checking its body (spec §2 "the check pass walks each method building
// the CFG and performing per-expression type checks", §4.2, §4.3). The
// checker struct below mirrors the shape of the teacher's go/types
// checker (a single struct threading ctxt/topScope/funclist through
// recursive descent, a bailout panic for early termination) generalized
// from Go's statement set to this language's (spec §4.2's if/while/do/
// for/foreach/switch/break/continue/return).
package check

import (
	"go/token"

	"github.com/panaflexx/gel2/internal/cfg"
	"github.com/panaflexx/gel2/internal/lang/ast"
	"github.com/panaflexx/gel2/internal/types"
)

// Local is one local variable or parameter (spec §3 "Locals and
// parameters"): name, resolved type, an initializer (optional), a mutable
// flag set if ever written after initialization, a needs-ref flag set
// later by internal/refcount, and every Name-node use.
type Local struct {
	Name     string
	Type     types.Type
	Mode     ast.ParamMode // ModeIn for ordinary locals
	IsParam  bool
	Pos      token.Pos
	Mutable  bool
	NeedsRef bool

	// uses parallels the source Name-node uses: the CFG vertex current at
	// the moment of each use and its source position, the starting point
	// for spec §4.3's backward walk.
	uses []localUse
}

type localUse struct {
	at  cfg.Vertex
	pos token.Pos
}

// toCFGLocals widens a method's flat local list to the opaque cfg.Local
// interface classes.Member publishes, so internal/emit can recover one
// without importing internal/check (which already imports internal/classes).
func toCFGLocals(locals []*Local) []cfg.Local {
	out := make([]cfg.Local, len(locals))
	for i, l := range locals {
		out[i] = l
	}
	return out
}

// LocalName satisfies internal/cfg.Local.
func (l *Local) LocalName() string { return l.Name }

// LocalPos satisfies internal/cfg.Local, letting internal/emit match a
// classes.Member.Locals entry back to the ast.DeclStmt name it came from.
func (l *Local) LocalPos() token.Pos { return l.Pos }

// RecordUse records that l was read at the CFG vertex current when the
// use was checked.
func (l *Local) RecordUse(at cfg.Vertex, pos token.Pos) {
	l.uses = append(l.uses, localUse{at: at, pos: pos})
}
