package cfg

import (
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLocal string

func (l testLocal) LocalName() string   { return string(l) }
func (l testLocal) LocalPos() token.Pos { return token.NoPos }

func TestCombine_zeroEdgesIsUnreachable(t *testing.T) {
	j := NewJoiner()
	assert.Same(t, Unreachable, Combine(j))
}

func TestCombine_oneEdgeIsForwarder(t *testing.T) {
	j := NewJoiner()
	n := NewNode(nil)
	j.AddEdge(n)
	assert.Same(t, Vertex(n), Combine(j))
}

func TestCombine_twoEdgesStaysJoiner(t *testing.T) {
	j := NewJoiner()
	j.AddEdge(NewNode(nil))
	j.AddEdge(NewNode(nil))
	assert.Same(t, Vertex(j), Combine(j))
}

func TestWalkBackward_stopsAtAssignment(t *testing.T) {
	x := testLocal("x")
	entry := NewNode(nil)
	assign := NewNode(entry)
	assign.MarkSet(x)
	use := NewNode(assign)

	mk := &Marker{}
	var visited []Vertex
	reachedUnreachable := WalkBackward(mk, use, func(v Vertex) bool {
		visited = append(visited, v)
		return !v.Sets(x) // stop expanding once we hit the assignment
	})
	require.False(t, reachedUnreachable)
	assert.Equal(t, []Vertex{use, assign}, visited)
}

func TestWalkBackward_reachesUnreachableOnUninitializedUse(t *testing.T) {
	x := testLocal("x")
	use := NewNode(Unreachable)

	mk := &Marker{}
	reached := WalkBackward(mk, use, func(v Vertex) bool {
		return !v.Sets(x)
	})
	assert.True(t, reached)
}

func TestWalkForward_findsDestroyAfterAssignment(t *testing.T) {
	g := &Graph{}
	assign := NewNode(nil)
	g.Track(assign)
	mid := NewNode(assign)
	g.Track(mid)
	mid.AddDestroys(nil) // presence alone matters for this test
	after := NewNode(mid)
	g.Track(after)

	mk := &Marker{}
	var sawDestroy bool
	g.WalkForward(mk, assign, func(v Vertex) bool {
		if len(v.NodeDestroys()) > 0 {
			sawDestroy = true
		}
		return true
	})
	assert.True(t, sawDestroy)
}

func TestJoiner_addEdgeIgnoresNil(t *testing.T) {
	j := NewJoiner()
	j.AddEdge(nil)
	assert.Len(t, j.Preds, 0)
}
