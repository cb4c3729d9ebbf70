package check

import (
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panaflexx/gel2/internal/classes"
	"github.com/panaflexx/gel2/internal/diag"
	"github.com/panaflexx/gel2/internal/lang/parse"
)

func mustCheck(t *testing.T, src string) (*diag.Sink, *classes.Registry) {
	t.Helper()
	fset := token.NewFileSet()
	file, errs := parse.ParseFile(fset, "test.gel", []byte(src))
	require.Empty(t, errs, "parse errors: %v", errs)

	sink := diag.NewSink(fset)
	reg := classes.NewRegistry()
	DeclareClasses(reg, sink, file)
	ResolveFile(reg, sink, file)
	require.False(t, sink.HasErrors(), "resolve errors: %v", sink.Diagnostics())

	NewChecker(reg, sink, nil).CheckAllClasses()
	return sink, reg
}

func TestChecker_SimpleMethodOK(t *testing.T) {
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
	sink, _ := mustCheck(t, src)
	assert.False(t, sink.HasErrors(), "%v", sink.Diagnostics())
}

func TestChecker_UseBeforeInit(t *testing.T) {
	src := `
class Example {
    public int Compute() {
        int x;
        return x;
    }
}
`
	sink, _ := mustCheck(t, src)
	require.True(t, sink.HasErrors())
	found := false
	for _, d := range sink.Diagnostics() {
		if containsSub(d.Message, "used before it is assigned") {
			found = true
		}
	}
	assert.True(t, found, "expected a use-before-init diagnostic, got %v", sink.Diagnostics())
}

func TestChecker_MissingReturn(t *testing.T) {
	src := `
class Example {
    public int Compute() {
        int x = 1;
    }
}
`
	sink, _ := mustCheck(t, src)
	require.True(t, sink.HasErrors())
	found := false
	for _, d := range sink.Diagnostics() {
		if containsSub(d.Message, "missing return") {
			found = true
		}
	}
	assert.True(t, found, "expected a missing-return diagnostic, got %v", sink.Diagnostics())
}

func TestChecker_IfBothBranchesAssignOK(t *testing.T) {
	src := `
class Example {
    public int Compute(bool flag) {
        int x;
        if (flag) {
            x = 1;
        } else {
            x = 2;
        }
        return x;
    }
}
`
	sink, _ := mustCheck(t, src)
	assert.False(t, sink.HasErrors(), "%v", sink.Diagnostics())
}

func TestChecker_IfOneBranchMissingAssignment(t *testing.T) {
	src := `
class Example {
    public int Compute(bool flag) {
        int x;
        if (flag) {
            x = 1;
        }
        return x;
    }
}
`
	sink, _ := mustCheck(t, src)
	require.True(t, sink.HasErrors())
}

func TestChecker_TakeTwiceIsAnError(t *testing.T) {
	src := `
class Widget {}

class Holder {
    public void Drop() {
        Widget^ w = new Widget();
        Widget^ a = take w;
        Widget^ b = take w;
    }
}
`
	sink, _ := mustCheck(t, src)
	require.True(t, sink.HasErrors())
	found := false
	for _, d := range sink.Diagnostics() {
		if containsSub(d.Message, "already had its value taken") {
			found = true
		}
	}
	assert.True(t, found, "expected a double-take diagnostic, got %v", sink.Diagnostics())
}

func TestChecker_WhileLoopOK(t *testing.T) {
	src := `
class Example {
    public int Sum(int n) {
        int total = 0;
        int i = 0;
        while (i < n) {
            total = total + i;
            i = i + 1;
        }
        return total;
    }
}
`
	sink, _ := mustCheck(t, src)
	assert.False(t, sink.HasErrors(), "%v", sink.Diagnostics())
}

func TestChecker_SwitchDuplicateCase(t *testing.T) {
	src := `
class Example {
    public int Classify(int x) {
        switch (x) {
        case 1:
            return 1;
        case 1:
            return 2;
        default:
            return 0;
        }
    }
}
`
	sink, _ := mustCheck(t, src)
	require.True(t, sink.HasErrors())
	found := false
	for _, d := range sink.Diagnostics() {
		if containsSub(d.Message, "duplicate case value") {
			found = true
		}
	}
	assert.True(t, found, "expected a duplicate-case diagnostic, got %v", sink.Diagnostics())
}

func TestChecker_OverrideVirtualDispatch(t *testing.T) {
	src := `
class Shape {
    public virtual int Area() {
        return 0;
    }
}
class Square : Shape {
    int side;
    public override int Area() {
        return this.side * this.side;
    }
}
`
	sink, reg := mustCheck(t, src)
	assert.False(t, sink.HasErrors(), "%v", sink.Diagnostics())

	sq, ok := reg.Lookup("Square")
	require.True(t, ok)
	var area *classes.Member
	for _, m := range reg.OwnMembers(sq) {
		if m.Name == "Area" {
			area = m
		}
	}
	require.NotNil(t, area)
	assert.True(t, area.IsOverride)
	require.NotNil(t, area.Overrides)
}

func TestChecker_OutArgumentAssignsLocal(t *testing.T) {
	src := `
class Example {
    public void Compute(out int result) {
        result = 42;
    }
    public int Use() {
        int x;
        this.Compute(out x);
        return x;
    }
}
`
	sink, _ := mustCheck(t, src)
	assert.False(t, sink.HasErrors(), "%v", sink.Diagnostics())
}

func TestChecker_MissingOutKeywordIsAnError(t *testing.T) {
	src := `
class Example {
    public void Compute(out int result) {
        result = 42;
    }
    public int Use() {
        int x = 0;
        this.Compute(x);
        return x;
    }
}
`
	sink, _ := mustCheck(t, src)
	require.True(t, sink.HasErrors())
	found := false
	for _, d := range sink.Diagnostics() {
		if containsSub(d.Message, "must be passed with") {
			found = true
		}
	}
	assert.True(t, found, "expected an argument-mode-mismatch diagnostic, got %v", sink.Diagnostics())
}

// TestChecker_ShortCircuitAndJoinsBeforeOutArgument exercises spec §3's
// short-circuit CFG merge: Compute's out argument only runs, and only sets
// x, on the path where flag is true, so reading x once the && has
// short-circuited past it must still be flagged.
func TestChecker_ShortCircuitAndJoinsBeforeOutArgument(t *testing.T) {
	src := `
class Example {
    public bool Compute(out int result) {
        result = 1;
        return true;
    }
    public int Use(bool flag) {
        int x;
        bool ok = flag && this.Compute(out x);
        return x;
    }
}
`
	sink, _ := mustCheck(t, src)
	require.True(t, sink.HasErrors())
	found := false
	for _, d := range sink.Diagnostics() {
		if containsSub(d.Message, "used before it is assigned") {
			found = true
		}
	}
	assert.True(t, found, "expected a use-before-init diagnostic on the short-circuited path, got %v", sink.Diagnostics())
}

func containsSub(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
