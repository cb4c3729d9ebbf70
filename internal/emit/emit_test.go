package emit_test

import (
	"go/token"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panaflexx/gel2/internal/check"
	"github.com/panaflexx/gel2/internal/classes"
	"github.com/panaflexx/gel2/internal/destruct"
	"github.com/panaflexx/gel2/internal/diag"
	"github.com/panaflexx/gel2/internal/emit"
	"github.com/panaflexx/gel2/internal/lang/parse"
	"github.com/panaflexx/gel2/internal/refcount"
)

func mustEmit(t *testing.T, src string, opts emit.Options) (string, *classes.Registry) {
	t.Helper()
	fset := token.NewFileSet()
	file, errs := parse.ParseFile(fset, "test.gel", []byte(src))
	require.Empty(t, errs, "parse errors: %v", errs)

	sink := diag.NewSink(fset)
	reg := classes.NewRegistry()
	check.DeclareClasses(reg, sink, file)
	check.ResolveFile(reg, sink, file)
	require.False(t, sink.HasErrors(), "resolve errors: %v", sink.Diagnostics())

	check.NewChecker(reg, sink, nil).CheckAllClasses()
	require.False(t, sink.HasErrors(), "check errors: %v", sink.Diagnostics())

	destr := destruct.NewAnalyzer(reg)
	rc := refcount.NewAnalyzer(destr, reg)
	e := emit.New(reg, destr, rc, nil, opts)
	return e.Emit(), reg
}

func TestEmit_SimpleClass(t *testing.T) {
	src := `
class Counter {
    int value;
    public int Get() {
        return this.value;
    }
    public void Set(int v) {
        this.value = v;
    }
}
`
	out, _ := mustEmit(t, src, emit.Options{})
	assert.Contains(t, out, "class Counter : public gel::NonVirtualBase {")
	assert.Contains(t, out, "int32_t Get();")
	assert.Contains(t, out, "void Set(int32_t v);")
	assert.Contains(t, out, "int32_t Counter::Get() {")
	assert.Contains(t, out, "return this->value;")
	assert.Contains(t, out, "Counter::~Counter() {")
}

func TestEmit_FeatureMacros(t *testing.T) {
	src := `class Empty {}`
	out, _ := mustEmit(t, src, emit.Options{Unsafe: true, Debug: true})
	assert.Contains(t, out, "#define GEL_SAFETY 0")
	assert.Contains(t, out, "#define GEL_DEBUG 1")
}

func TestEmit_EntryPoint(t *testing.T) {
	src := `
class Program {
    public static void Main() {
    }
}
`
	out, _ := mustEmit(t, src, emit.Options{})
	assert.Contains(t, out, "int main(int argc, char** argv) {")
	assert.Contains(t, out, "Program::Main();")
}

func TestEmit_ExplicitConversionMarksVirtual(t *testing.T) {
	src := `
class Base {}
class Derived : Base {}
class User {
    public Derived Cast(Base b) {
        return (Derived)b;
    }
}
`
	out, reg := mustEmit(t, src, emit.Options{})
	base, ok := reg.Lookup("Base")
	require.True(t, ok)
	assert.True(t, base.VirtualNeeded, "explicit downcast should mark the source class virtual")
	assert.Contains(t, out, "virtual ~Base();")
}

func TestEmit_PoolAllocatedClassGetsDestroyHooks(t *testing.T) {
	src := `
class Node {}
class Pool {}
class Arena {
    public void Build(Pool p) {
        new Node() in p;
    }
}
`
	out, reg := mustEmit(t, src, emit.Options{})
	node, ok := reg.Lookup("Node")
	require.True(t, ok)
	assert.True(t, node.PoolDestroyNeeded)
	assert.Contains(t, out, "void Node::_DestroyPass1() {")
	assert.Contains(t, out, "void Node::_DestroyPass2() {")
}

func TestEmit_TypesetDumpMatchesGolden(t *testing.T) {
	src := `
class Leaf {}
class Node {
    Leaf^ leaf;
}
`
	fset := token.NewFileSet()
	file, errs := parse.ParseFile(fset, "test.gel", []byte(src))
	require.Empty(t, errs)

	sink := diag.NewSink(fset)
	reg := classes.NewRegistry()
	check.DeclareClasses(reg, sink, file)
	check.ResolveFile(reg, sink, file)
	require.False(t, sink.HasErrors())
	check.NewChecker(reg, sink, nil).CheckAllClasses()
	require.False(t, sink.HasErrors())

	destr := destruct.NewAnalyzer(reg)
	rc := refcount.NewAnalyzer(destr, reg)
	e := emit.New(reg, destr, rc, nil, emit.Options{})
	e.Emit()

	want := "Leaf: destroys Leaf\n" +
		"  Leaf.Leaf: destroys (nothing)\n" +
		"Node: destroys Leaf, Node\n" +
		"  Node.Node: destroys (nothing)\n"
	if diff := cmp.Diff(want, e.TypesetDump()); diff != "" {
		t.Errorf("TypesetDump() mismatch (-want +got):\n%s", diff)
	}
}

func TestEmit_DelegatingConstructor(t *testing.T) {
	src := `
class Point {
    int x;
    int y;
    public Point(int x, int y) {
        this.x = x;
        this.y = y;
    }
    public Point(int x) : this(x, 0) {
    }
}
`
	out, _ := mustEmit(t, src, emit.Options{})
	assert.Contains(t, out, "void Point::_Init() {")
	assert.Contains(t, out, "\tx = 0;\n")
	assert.Contains(t, out, "\ty = 0;\n")
	assert.Contains(t, out, "void Point::_Construct(int32_t x, int32_t y) {")
	assert.Contains(t, out, "_Construct(x, 0);")
}
