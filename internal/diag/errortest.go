package diag

import (
	"fmt"
	"go/token"
	"os"
	"regexp"
	"strings"
)

// errRx matches a `// error "rx"` marker comment (the quotes are optional).
// Adapted from go/types/check_test.go's errRx, lower-cased to match this
// language's own "// error" convention (spec §6 "-e error-test mode:
// expect lines marked // error to report errors").
var errRx = regexp.MustCompile(`// *error *"?([^"]*)"?`)

// ExpectedErrors scans src for `// error "rx"` markers and returns a map
// from source line number to the expected regular expression, mirroring
// check_test.go's errMap.
func ExpectedErrors(filename string, src []byte) (map[int]string, error) {
	fset := token.NewFileSet()
	f := fset.AddFile(filename, -1, len(src))
	expected := make(map[int]string)
	lineStart := 0
	lineNo := 1
	for i, b := range src {
		if b == '\n' || i == len(src)-1 {
			end := i
			if i == len(src)-1 && b != '\n' {
				end = i + 1
			}
			line := string(src[lineStart:end])
			if m := errRx.FindStringSubmatch(line); m != nil {
				expected[lineNo] = strings.TrimSpace(m[1])
			}
			lineStart = i + 1
			lineNo++
		}
	}
	_ = f
	return expected, nil
}

// Report is the outcome of comparing a Sink's diagnostics against a file's
// `// error` markers (spec §6 "-e ... emit a diff report at the end";
// spec §7 "the set of reported lines is compared against lines tagged
// with a comment marker and the diff is emitted").
type Report struct {
	Unmatched   []Diagnostic // reported but not expected, or regex didn't match
	Missing     []int        // expected lines with no matching diagnostic
	OK          bool
}

// Diff compares the sink's diagnostics for one file against its expected
// markers, line by line.
func Diff(s *Sink, filename string, expected map[int]string) Report {
	seen := make(map[int]bool)
	var rpt Report
	for _, d := range s.Diagnostics() {
		if d.Pos.Filename != filename {
			continue
		}
		rx, ok := expected[d.Pos.Line]
		if !ok {
			rpt.Unmatched = append(rpt.Unmatched, d)
			continue
		}
		re, err := regexp.Compile(rx)
		if err != nil || !re.MatchString(d.Message) {
			rpt.Unmatched = append(rpt.Unmatched, d)
			continue
		}
		seen[d.Pos.Line] = true
	}
	for line := range expected {
		if !seen[line] {
			rpt.Missing = append(rpt.Missing, line)
		}
	}
	rpt.OK = len(rpt.Unmatched) == 0 && len(rpt.Missing) == 0
	return rpt
}

// PrintReport writes a human-readable diff report to stderr, the -e mode
// output named in spec §6.
func (r Report) PrintReport() {
	for _, d := range r.Unmatched {
		fmt.Fprintf(os.Stderr, "unexpected: %s\n", d)
	}
	for _, line := range r.Missing {
		fmt.Fprintf(os.Stderr, "missing error at line %d\n", line)
	}
}
