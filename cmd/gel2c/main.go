// Command gel2c is the compiler's CLI entry point (spec §6).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/panaflexx/gel2/internal/driver"
	"github.com/panaflexx/gel2/internal/logging"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run implements spec §6's flag surface and exit-code policy (spec §9's
// open question): it returns 0 after reporting source diagnostics, 1 when
// driver.Compile returns an error or an -e run finds a mismatch, and 2 for
// a flag error or a missing source list.
func run(argv []string) int {
	fs := flag.NewFlagSet("gel2c", flag.ContinueOnError)
	var opts driver.Options
	fs.BoolVar(&opts.Compile, "c", false, "compile to native; otherwise interpret")
	fs.BoolVar(&opts.Debug, "d", false, "debug: disable optimization and link debug runtime")
	fs.BoolVar(&opts.ErrorTest, "e", false, "error-test mode: expect // error markers, emit a diff report")
	fs.StringVar(&opts.OutputName, "o", "", "output basename (default: first source basename without extension)")
	fs.BoolVar(&opts.Profile, "p", false, "enable ref-count profiling hooks")
	fs.BoolVar(&opts.ForceRC, "r", false, "pessimistically insert ref-counts everywhere")
	fs.BoolVar(&opts.Unsafe, "u", false, "unsafe mode: skip runtime ref-count checks")
	fs.BoolVar(&opts.Verbose, "v", false, "print the toolchain invocation")
	fs.BoolVar(&opts.StopAfterCC, "cpp", false, "stop after emitting target source")
	fs.BoolVar(&opts.CRT, "crt", false, "use the platform C runtime allocator")
	fs.BoolVar(&opts.Typeset, "typeset", false, "print computed destruction sets per method and class")
	fs.StringVar(&opts.RuntimeDir, "runtime-dir", defaultRuntimeDir(), "directory holding the bundled runtime header")

	if err := fs.Parse(argv); err != nil {
		return 2
	}

	sources, interp := splitSourcesAndArgs(fs.Args())
	if len(sources) == 0 {
		fmt.Fprintln(os.Stderr, "gel2c: no source files given")
		return 2
	}

	log := logging.New(logging.Config{Debug: opts.Debug, Verbose: opts.Verbose})

	result, err := driver.Compile(sources, interp, opts, os.Stderr, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gel2c: %v\n", err)
		return 1
	}
	if opts.Typeset && result.TypesetDump != "" {
		fmt.Print(result.TypesetDump)
	}
	if opts.ErrorTest && result.ErrorTest != nil && !result.ErrorTest.OK {
		return 1
	}
	return 0
}

// splitSourcesAndArgs implements spec §6's "a dash token `-` terminates
// the source-file list; remaining tokens become interpreter arguments."
func splitSourcesAndArgs(args []string) (sources, interp []string) {
	for i, a := range args {
		if a == "-" {
			return args[:i], args[i+1:]
		}
	}
	return args, nil
}

func defaultRuntimeDir() string {
	if dir := os.Getenv("GEL2_RUNTIME_DIR"); dir != "" {
		return dir
	}
	return "runtime"
}
