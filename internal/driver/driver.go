// Package driver orchestrates one compilation run: parse, resolve, check,
// analyze, emit, optionally invoke the target toolchain (spec §5's
// strictly sequential pipeline). It is grounded on the teacher's
// go/types/check.go top-level check() function: a package-phase resolve
// followed by draining a worklist of member bodies followed by a final
// consistency pass, generalized here to the whole front-to-back pipeline
// rather than just type checking.
package driver

import (
	"fmt"
	"go/token"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/panaflexx/gel2/internal/check"
	"github.com/panaflexx/gel2/internal/classes"
	"github.com/panaflexx/gel2/internal/destruct"
	"github.com/panaflexx/gel2/internal/diag"
	"github.com/panaflexx/gel2/internal/emit"
	"github.com/panaflexx/gel2/internal/lang/ast"
	"github.com/panaflexx/gel2/internal/lang/parse"
	"github.com/panaflexx/gel2/internal/logging"
	"github.com/panaflexx/gel2/internal/refcount"
	"github.com/panaflexx/gel2/internal/toolchain"
)

// sourceExt is the language's own source extension; anything else named on
// the command line is passed straight to the target toolchain's include
// list (spec §6 "Source file recognition": files are imported when their
// extension matches the source language extension; files with the
// target's source extension are added to the verbatim include list").
const sourceExt = ".gel"

// Options mirrors spec §6's CLI surface, split from emit.Options (which
// only carries the flags that change emitted code) and toolchain.Options
// (which only carries the flags that change the forked compiler
// invocation).
type Options struct {
	Compile     bool   // -c
	Debug       bool   // -d
	ErrorTest   bool   // -e
	OutputName  string // -o name; "" means derive from the first source file
	Profile     bool   // -p
	ForceRC     bool   // -r
	Unsafe      bool   // -u
	Verbose     bool   // -v
	StopAfterCC bool   // -cpp: stop after emitting target source
	CRT         bool   // -crt
	Typeset     bool   // -typeset
	RuntimeDir  string // directory holding the bundled runtime header
}

// Result is everything a caller (cmd/gel2c, or a test) might want back
// from one run.
type Result struct {
	Diagnostics []diag.Diagnostic
	EmittedPath string // path of the generated target-language file, if emission ran
	TypesetDump string // -typeset output, if requested
	ErrorTest   *diag.Report
	Success     bool // spec §7 "the driver returns non-success iff any diagnostic was printed"
}

// Compile runs the full pipeline over sourcePaths (spec §5's sequential
// parse/resolve/check/analyze/emit/fork-and-wait), writing diagnostics and
// the -v toolchain echo to stderr and the generated source to outputName
// plus the target extension ".cc".
func Compile(sourcePaths []string, interpArgs []string, opts Options, stderr io.Writer, log *logging.Logger) (Result, error) {
	if log == nil {
		log = logging.Nop()
	}
	var gelSources, includeSources []string
	for _, p := range sourcePaths {
		if filepath.Ext(p) == sourceExt {
			gelSources = append(gelSources, p)
		} else {
			includeSources = append(includeSources, p)
		}
	}
	if len(gelSources) == 0 {
		return Result{}, fmt.Errorf("driver: no %s source files given", sourceExt)
	}

	outputName := opts.OutputName
	if outputName == "" {
		base := filepath.Base(gelSources[0])
		outputName = strings.TrimSuffix(base, filepath.Ext(base))
	}

	fset := token.NewFileSet()
	sink := diag.NewSink(fset)
	reg := classes.NewRegistry()

	log.Phase("parse")
	var files []*fileSrc
	for _, path := range gelSources {
		src, err := os.ReadFile(path)
		if err != nil {
			return Result{}, fmt.Errorf("driver: reading %s: %w", path, err)
		}
		file, errs := parse.ParseFile(fset, path, src)
		if len(errs) > 0 {
			for _, e := range errs {
				fmt.Fprintln(stderr, e)
			}
			return Result{Success: false}, nil
		}
		files = append(files, &fileSrc{path: path, src: src, file: file})
	}

	log.Phase("resolve")
	for _, f := range files {
		check.DeclareClasses(reg, sink, f.file)
	}
	for _, f := range files {
		check.ResolveFile(reg, sink, f.file)
	}

	log.Phase("check")
	if !sink.HasErrors() {
		check.NewChecker(reg, sink, log).CheckAllClasses()
	}

	result := Result{}
	if opts.ErrorTest {
		rpt := errorTestReport(sink, files)
		result.ErrorTest = &rpt
		result.Diagnostics = sink.Diagnostics()
		result.Success = rpt.OK
		if !rpt.OK {
			rpt.PrintReport()
		}
		return result, nil
	}

	sink.Print(stderr)
	result.Diagnostics = sink.Diagnostics()
	if sink.HasErrors() {
		// spec §9 open question: the reference implementation always
		// exits 0 after reporting diagnostics. Compile itself does not
		// fail the process; it just stops before emission.
		result.Success = false
		return result, nil
	}
	result.Success = true

	log.Phase("analyze")
	destr := destruct.NewAnalyzer(reg)
	rc := refcount.NewAnalyzer(destr, reg)

	e := emit.New(reg, destr, rc, includeSources, emit.Options{
		Debug:   opts.Debug,
		Unsafe:  opts.Unsafe,
		Profile: opts.Profile,
		ForceRC: opts.ForceRC,
		CRT:     opts.CRT,
	})

	if opts.Typeset {
		result.TypesetDump = e.TypesetDump()
	}

	log.Phase("emit")
	source := e.Emit()
	emittedPath := outputName + ".cc"
	if err := os.WriteFile(emittedPath, []byte(source), 0644); err != nil {
		return result, fmt.Errorf("driver: writing %s: %w", emittedPath, err)
	}
	result.EmittedPath = emittedPath

	if opts.StopAfterCC || !opts.Compile {
		return result, nil
	}

	log.Phase("toolchain")
	comp, err := toolchain.Find()
	if err != nil {
		return result, err
	}
	inv := comp.Build(emittedPath, outputName, opts.RuntimeDir, toolchain.Options{
		Compile: opts.Compile,
		Debug:   opts.Debug,
		CRT:     opts.CRT,
		Verbose: opts.Verbose,
	})
	var verboseOut *os.File
	if opts.Verbose {
		verboseOut = os.Stderr
	}
	if err := toolchain.Run(inv, opts.Verbose, verboseOut); err != nil {
		return result, err
	}
	_ = interpArgs // reserved for the generated binary's own argv, forked by the caller
	return result, nil
}

type fileSrc struct {
	path string
	src  []byte
	file *ast.File
}

// errorTestReport implements -e: each source file's own `// error` markers
// are diffed against the sink's diagnostics for that file, and the worst
// (non-OK) report wins so a single failing file fails the whole run while
// still reporting every file's mismatches to stderr via PrintReport.
func errorTestReport(sink *diag.Sink, files []*fileSrc) diag.Report {
	var combined diag.Report
	combined.OK = true
	for _, f := range files {
		expected, _ := diag.ExpectedErrors(f.path, f.src)
		rpt := diag.Diff(sink, f.path, expected)
		combined.Unmatched = append(combined.Unmatched, rpt.Unmatched...)
		combined.Missing = append(combined.Missing, rpt.Missing...)
		if !rpt.OK {
			combined.OK = false
		}
	}
	return combined
}
