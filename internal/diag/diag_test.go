package diag

import (
	"bytes"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSink_errorfRecordsAndSorts(t *testing.T) {
	fset := token.NewFileSet()
	f := fset.AddFile("a.gel", -1, 100)
	s := NewSink(fset)
	s.Errorf(f.Pos(50), "second")
	s.Errorf(f.Pos(10), "first")

	require.True(t, s.HasErrors())
	ds := s.Diagnostics()
	require.Len(t, ds, 2)
	assert.Equal(t, "first", ds[0].Message)
	assert.Equal(t, "second", ds[1].Message)
}

func TestSink_internalfWrapsError(t *testing.T) {
	fset := token.NewFileSet()
	f := fset.AddFile("a.gel", -1, 10)
	s := NewSink(fset)
	err := s.Internalf(f.Pos(0), "bad cast in %s", "emit")
	assert.ErrorContains(t, err, "bad cast in emit")
	assert.Len(t, s.Diagnostics(), 1)
	assert.Equal(t, SeverityInternal, s.Diagnostics()[0].Severity)
}

func TestSink_printWritesEveryDiagnostic(t *testing.T) {
	fset := token.NewFileSet()
	f := fset.AddFile("a.gel", -1, 10)
	s := NewSink(fset)
	s.Errorf(f.Pos(0), "boom")

	var buf bytes.Buffer
	s.Print(&buf)
	assert.Contains(t, buf.String(), "boom")
}

func TestExpectedErrors_parsesMarkers(t *testing.T) {
	src := []byte("void f() {\n  int x;\n  Print(x); // error \"may be used before it is assigned\"\n}\n")
	expected, err := ExpectedErrors("t.gel", src)
	require.NoError(t, err)
	require.Contains(t, expected, 3)
	assert.Equal(t, "may be used before it is assigned", expected[3])
}

func TestDiff_reportsMissingAndUnmatched(t *testing.T) {
	fset := token.NewFileSet()
	f := fset.AddFile("t.gel", -1, 200)
	s := NewSink(fset)
	// Line 3 in a small synthetic file: lines 2 and 3 start at offsets 10
	// and 20, so offset 40 is on line 3, which has no marker.
	f.AddLine(10)
	f.AddLine(20)
	s.Errorf(f.Pos(40), "may be used before it is assigned")

	expected := map[int]string{1: "may be used before"}
	rpt := Diff(s, "t.gel", expected)
	assert.False(t, rpt.OK)
	assert.Len(t, rpt.Unmatched, 1)
}

func TestDiff_matchesOnLineAndRegex(t *testing.T) {
	fset := token.NewFileSet()
	f := fset.AddFile("t.gel", -1, 200)
	ln2 := f.Pos(0)
	f.AddLine(1)
	s := NewSink(fset)
	s.Errorf(ln2, "may be used before it is assigned")
	_ = ln2

	pos := fset.Position(ln2)
	expected := map[int]string{pos.Line: "may be used before"}
	rpt := Diff(s, "t.gel", expected)
	assert.True(t, rpt.OK)
}
