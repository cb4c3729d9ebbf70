// Package diag implements the compiler's source-location diagnostics
// (spec §7, category 1): a Sink collects Diagnostics tied to file:line
// positions; multiple diagnostics may be reported and checking continues
// past a failed member to collect more. It is grounded on the teacher's
// go/types/check_test.go harness (the /* ERROR "rx" */ comment-matching
// idiom) generalized from a golden-test tool into the compiler's own
// -e error-test mode (spec §6).
package diag

import (
	"fmt"
	"go/token"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
)

// Severity distinguishes a reported error from an internal-invariant
// assertion (spec §7 categories 1 and 3).
type Severity int

const (
	SeverityError Severity = iota
	SeverityInternal
)

// Diagnostic is one source-location diagnostic (spec §7: "Each diagnostic
// carries file and line").
type Diagnostic struct {
	Pos      token.Position
	Severity Severity
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Pos, d.Message)
}

// Sink accumulates diagnostics across an entire compilation run. It is the
// single mutable collector threaded through internal/check, internal/cfg
// consumers, and internal/emit (spec §7 "Propagation policy").
type Sink struct {
	fset *token.FileSet
	diags []Diagnostic
}

func NewSink(fset *token.FileSet) *Sink { return &Sink{fset: fset} }

// Errorf records a source-location diagnostic at pos (spec §7 category 1).
// Checking is expected to continue after calling this.
func (s *Sink) Errorf(pos token.Pos, format string, args ...interface{}) {
	s.diags = append(s.diags, Diagnostic{
		Pos:      s.fset.Position(pos),
		Severity: SeverityError,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Internalf records an internal-invariant violation (spec §7 category 3).
// Callers are expected to panic with this value immediately after
// (internal errors "are assertions: hitting one is a compiler bug and
// aborts").
func (s *Sink) Internalf(pos token.Pos, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	s.diags = append(s.diags, Diagnostic{
		Pos:      s.fset.Position(pos),
		Severity: SeverityInternal,
		Message:  msg,
	})
	return errors.Wrap(errInternal, msg)
}

var errInternal = errors.New("internal compiler error")

// HasErrors reports whether any diagnostic was recorded — the driver's
// overall success/failure signal (spec §7 "the driver returns non-success
// iff any diagnostic was printed").
func (s *Sink) HasErrors() bool { return len(s.diags) > 0 }

// Diagnostics returns all recorded diagnostics sorted by position, stable
// for deterministic -e diffing and deterministic printed output.
func (s *Sink) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(s.diags))
	copy(out, s.diags)
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i].Pos, out[j].Pos
		if pi.Filename != pj.Filename {
			return pi.Filename < pj.Filename
		}
		if pi.Line != pj.Line {
			return pi.Line < pj.Line
		}
		return pi.Column < pj.Column
	})
	return out
}

// Print writes every diagnostic to w, colorizing the severity tag when w
// is an interactive terminal (detected with mattn/go-isatty, colored with
// fatih/color); any other writer gets the same lines with plain tags.
func (s *Sink) Print(w io.Writer) {
	useColor := false
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		useColor = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	errTag := "error:"
	internalTag := "internal error:"
	if useColor {
		errTag = color.RedString("error:")
		internalTag = color.New(color.FgRed, color.Bold).Sprint("internal error:")
	}
	for _, d := range s.Diagnostics() {
		tag := errTag
		if d.Severity == SeverityInternal {
			tag = internalTag
		}
		fmt.Fprintf(w, "%s %s %s\n", d.Pos, tag, d.Message)
	}
}
