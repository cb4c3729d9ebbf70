package refcount

import (
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panaflexx/gel2/internal/cfg"
	"github.com/panaflexx/gel2/internal/classes"
	"github.com/panaflexx/gel2/internal/destruct"
	"github.com/panaflexx/gel2/internal/types"
)

type testLocal string

func (l testLocal) LocalName() string   { return string(l) }
func (l testLocal) LocalPos() token.Pos { return token.NoPos }

func newTestRegistry(t *testing.T) *classes.Registry {
	t.Helper()
	r := classes.NewRegistry()
	t.Cleanup(func() { types.ObjectClass = nil })
	return r
}

func TestNeedsRefLocal_flaggedWhenDestroyedBeforeReassignment(t *testing.T) {
	r := newTestRegistry(t)
	engine, err := r.Declare("Engine", "", false, false, true)
	require.NoError(t, err)

	g := &cfg.Graph{}
	x := testLocal("x")
	assign := cfg.NewNode(nil)
	assign.MarkSet(x)
	g.Track(assign)
	destroyer := cfg.NewNode(assign)
	destroyer.AddDestroys(engine)
	g.Track(destroyer)

	da := destruct.NewAnalyzer(r)
	ra := NewAnalyzer(da, r)
	need := ra.NeedsRefLocal(g, x, engine)
	assert.True(t, need.NeedsRef)
}

func TestNeedsRefLocal_notFlaggedWhenReassignedFirst(t *testing.T) {
	r := newTestRegistry(t)
	engine, err := r.Declare("Engine", "", false, false, true)
	require.NoError(t, err)

	g := &cfg.Graph{}
	x := testLocal("x")
	assign := cfg.NewNode(nil)
	assign.MarkSet(x)
	g.Track(assign)
	reassign := cfg.NewNode(assign)
	reassign.MarkSet(x)
	g.Track(reassign)
	destroyer := cfg.NewNode(reassign)
	destroyer.AddDestroys(engine)
	g.Track(destroyer)

	da := destruct.NewAnalyzer(r)
	ra := NewAnalyzer(da, r)
	need := ra.NeedsRefLocal(g, x, engine)
	assert.False(t, need.NeedsRef)
}

func TestNeedsRefLocal_rootObjectAlwaysFlagged(t *testing.T) {
	r := newTestRegistry(t)
	g := &cfg.Graph{}
	x := testLocal("x")

	da := destruct.NewAnalyzer(r)
	ra := NewAnalyzer(da, r)
	need := ra.NeedsRefLocal(g, x, r.Object)
	assert.True(t, need.NeedsRef)
}

func TestNeedsRefExpr_noLocalDestroyedBetweenStartAndEnd(t *testing.T) {
	r := newTestRegistry(t)
	engine, err := r.Declare("Engine", "", false, false, true)
	require.NoError(t, err)

	g := &cfg.Graph{}
	start := cfg.NewNode(nil)
	g.Track(start)
	mid := cfg.NewNode(start)
	mid.AddDestroys(engine)
	g.Track(mid)
	end := cfg.NewNode(mid)
	g.Track(end)

	da := destruct.NewAnalyzer(r)
	ra := NewAnalyzer(da, r)
	need := ra.NeedsRefExpr(g, start, end, nil, engine)
	assert.True(t, need.NeedsRef)
}

func TestNeedsRefExpr_notFlaggedWhenDestroyAfterEnd(t *testing.T) {
	r := newTestRegistry(t)
	engine, err := r.Declare("Engine", "", false, false, true)
	require.NoError(t, err)

	g := &cfg.Graph{}
	start := cfg.NewNode(nil)
	g.Track(start)
	end := cfg.NewNode(start)
	g.Track(end)
	after := cfg.NewNode(end)
	after.AddDestroys(engine)
	g.Track(after)

	da := destruct.NewAnalyzer(r)
	ra := NewAnalyzer(da, r)
	need := ra.NeedsRefExpr(g, start, end, nil, engine)
	assert.False(t, need.NeedsRef)
}
