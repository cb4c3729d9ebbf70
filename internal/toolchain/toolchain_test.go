package toolchain

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompiler_BuildDebugVsRelease(t *testing.T) {
	c := &Compiler{Path: "/usr/bin/c++"}

	dbg := c.Build("out.cc", "out", "/opt/gel/runtime", Options{Debug: true})
	assert.Contains(t, dbg.Args, "-O0")
	assert.Contains(t, dbg.Args, "-g")

	rel := c.Build("out.cc", "out", "/opt/gel/runtime", Options{})
	assert.Contains(t, rel.Args, "-O2")
	assert.NotContains(t, rel.Args, "-O0")
}

func TestInvocation_StringQuotesArgs(t *testing.T) {
	inv := Invocation{Path: "/usr/bin/c++", Args: []string{"-I", "/opt/gel runtime", "out.cc"}}
	s := inv.String()
	assert.Contains(t, s, "/usr/bin/c++")
	assert.Contains(t, s, "'/opt/gel runtime'")
}

func TestRun_CapturesStderrOnFailure(t *testing.T) {
	inv := Invocation{Path: "/bin/sh", Args: []string{"-c", "echo boom 1>&2; exit 1"}}
	err := Run(inv, false, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestRun_SucceedsSilently(t *testing.T) {
	inv := Invocation{Path: "/bin/sh", Args: []string{"-c", "exit 0"}}
	err := Run(inv, true, os.Stderr)
	require.NoError(t, err)
}
