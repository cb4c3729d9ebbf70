// Package toolchain forks the host systems-language toolchain and waits
// (spec §5: "parse, resolve, check ..., analyze, emit, fork the target
// toolchain and wait"). It is grounded on the teacher's make.go-adjacent
// subprocess idiom found in the retrieval pack (exec.Command +
// exec.LookPath, stderr captured rather than streamed) rather than any
// file inside tmc-mirror-go.tools itself, which never shells out.
package toolchain

import (
	"fmt"
	"os"
	"os/exec"

	shellquote "github.com/kballard/go-shellquote"
)

// Options controls how the target toolchain is invoked (spec §6's
// -c/-d/-crt/-v flags, as far as they affect this package rather than
// internal/emit).
type Options struct {
	Compile bool // -c: compile to a native executable rather than just emitting source
	Debug   bool // -d: disable optimization, link debug runtime
	CRT     bool // -crt: link the platform C runtime allocator
	Verbose bool // -v: print the invocation before running it
}

// Compiler locates and drives the host C++ toolchain. Zero value is usable;
// Path is filled in by Find.
type Compiler struct {
	Path string // absolute path to the compiler executable, e.g. from exec.LookPath
}

// candidateNames is tried in order; CXX overrides both when set.
var candidateNames = []string{"c++", "g++", "clang++"}

// Find locates a usable C++ compiler, honoring $CXX first (mirrors the
// teacher's verifyGoVersion: LookPath, then fail loudly if absent).
func Find() (*Compiler, error) {
	if cxx := os.Getenv("CXX"); cxx != "" {
		if path, err := exec.LookPath(cxx); err == nil {
			return &Compiler{Path: path}, nil
		}
	}
	for _, name := range candidateNames {
		if path, err := exec.LookPath(name); err == nil {
			return &Compiler{Path: path}, nil
		}
	}
	return nil, fmt.Errorf("toolchain: no C++ compiler found (tried $CXX, %v)", candidateNames)
}

// Invocation is the fully-built command line for one compile, kept
// separate from running it so -v can print it before the fork (spec §6
// "-v print the toolchain invocation").
type Invocation struct {
	Path string
	Args []string
}

// String renders the invocation the way a shell would echo it, quoting
// arguments that need it.
func (inv Invocation) String() string {
	return shellquote.Join(append([]string{inv.Path}, inv.Args...)...)
}

// Build assembles the compiler invocation for one generated translation
// unit. runtimeDir points at the bundled runtime header's directory.
func (c *Compiler) Build(sourcePath, outputPath, runtimeDir string, opts Options) Invocation {
	args := []string{"-std=c++17", "-I", runtimeDir, sourcePath, "-o", outputPath}
	if opts.Debug {
		args = append(args, "-O0", "-g")
	} else {
		args = append(args, "-O2", "-DNDEBUG")
	}
	if !opts.CRT {
		args = append(args, "-DGEL_ALLOCATOR=GEL_ALLOCATOR_BUNDLED")
	}
	return Invocation{Path: c.Path, Args: args}
}

// Run forks the invocation and waits (spec §5's "fork the target toolchain
// and wait"). Stdout/stderr are not streamed live: stderr is captured to a
// temp file and, on failure, surfaced verbatim (spec §7 "Failures in the
// target toolchain invocation are captured (redirected to a temp file) and
// surfaced verbatim to the user"). w receives the echoed invocation when
// verbose is true.
func Run(inv Invocation, verbose bool, w *os.File) error {
	if verbose && w != nil {
		fmt.Fprintln(w, inv.String())
	}

	stderrFile, err := os.CreateTemp("", "gel2c-toolchain-stderr-*")
	if err != nil {
		return fmt.Errorf("toolchain: creating stderr capture file: %w", err)
	}
	stderrPath := stderrFile.Name()
	defer os.Remove(stderrPath)
	defer stderrFile.Close()

	cmd := exec.Command(inv.Path, inv.Args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = stderrFile

	runErr := cmd.Run()
	if runErr == nil {
		return nil
	}

	captured, readErr := os.ReadFile(stderrPath)
	if readErr != nil || len(captured) == 0 {
		return fmt.Errorf("toolchain invocation failed: %w", runErr)
	}
	return fmt.Errorf("toolchain invocation failed: %w\n%s", runErr, captured)
}
