package driver_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panaflexx/gel2/internal/driver"
)

func writeSrc(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))
	return path
}

func TestCompile_EmitsSourceOnCleanProgram(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	path := writeSrc(t, dir, "hello.gel", `
class Program {
    public static void Main() {
    }
}
`)
	var stderr bytes.Buffer
	res, err := driver.Compile([]string{path}, nil, driver.Options{StopAfterCC: true}, &stderr, nil)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Empty(t, stderr.String())
	require.NotEmpty(t, res.EmittedPath)

	out, err := os.ReadFile(res.EmittedPath)
	require.NoError(t, err)
	assert.Contains(t, string(out), "int main(int argc, char** argv) {")
	assert.Contains(t, string(out), "Program::Main();")
}

func TestCompile_ReportsDiagnosticsAndDoesNotEmit(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	path := writeSrc(t, dir, "bad.gel", `
class Example {
    public int Compute() {
        int x;
        return x;
    }
}
`)
	var stderr bytes.Buffer
	res, err := driver.Compile([]string{path}, nil, driver.Options{StopAfterCC: true}, &stderr, nil)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Empty(t, res.EmittedPath)
	assert.Contains(t, stderr.String(), "used before it is assigned")
}

func TestCompile_ErrorTestModeMatchesMarker(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	path := writeSrc(t, dir, "errs.gel", `
class Example {
    public int Compute() {
        int x;
        return x; // error "used before it is assigned"
    }
}
`)
	var stderr bytes.Buffer
	res, err := driver.Compile([]string{path}, nil, driver.Options{ErrorTest: true}, &stderr, nil)
	require.NoError(t, err)
	require.NotNil(t, res.ErrorTest)
	assert.True(t, res.ErrorTest.OK, "unmatched=%v missing=%v", res.ErrorTest.Unmatched, res.ErrorTest.Missing)
}

func TestCompile_OutputNameDefaultsToFirstSourceBasename(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	path := writeSrc(t, dir, "widget.gel", `class Widget {}`)
	var stderr bytes.Buffer
	res, err := driver.Compile([]string{path}, nil, driver.Options{StopAfterCC: true}, &stderr, nil)
	require.NoError(t, err)
	assert.Equal(t, "widget.cc", res.EmittedPath)
}
