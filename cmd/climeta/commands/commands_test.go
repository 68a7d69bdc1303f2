package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const specPath = "testdata/args.toml"

type result struct {
	stdout string
	stderr string
	err    error
}

// run executes climeta with a config file of its own, so settings of the
// machine running the tests do not leak in.
func run(t *testing.T, config string, args ...string) result {
	t.Helper()
	color.NoColor = true
	t.Setenv("HOME", t.TempDir())

	cfgPath := filepath.Join(t.TempDir(), "climeta.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(config), 0644))

	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := root.Execute()
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func exitCode(err error) int {
	var exit *ExitError
	if errors.As(err, &exit) {
		return exit.Code
	}
	return -1
}

func TestGenerateToStdout(t *testing.T) {
	res := run(t, "", "generate", specPath)
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "def parse_args(argv=None):")
	assert.NotContains(t, res.stdout, "Wrote")
}

func TestGenerateAllTargets(t *testing.T) {
	base := filepath.Join(t.TempDir(), "gen", "cli")
	res := run(t, "", "generate", "-l", "all", "-o", base+".out", specPath)
	require.NoError(t, res.err, res.stderr)

	for _, ext := range []string{".py", ".sh", ".c", ".h", ".cpp", ".hpp", ".mjs"} {
		assert.Contains(t, res.stdout, "Wrote "+base+ext+"\n")
		assert.FileExists(t, base+ext)
	}
}

func TestGenerateUsesConfig(t *testing.T) {
	base := filepath.Join(t.TempDir(), "cli")
	res := run(t, "lang = \"bash\"\noutput = \""+base+"\"\n", "generate", specPath)
	require.NoError(t, res.err, res.stderr)
	assert.Equal(t, "Wrote "+base+".sh\n", res.stdout)

	res = run(t, "lang = \"bash\"\n", "generate", "-l", "js-cla", specPath)
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "command-line-args")
}

func TestGenerateRejectsBadSpec(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[program]
name = "bad"

[[arguments]]
name = "input"
type = "flag"
`), 0644))

	res := run(t, "", "generate", "-l", "all", path)
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "1 error(s) in specification")
	assert.Equal(t, 1, strings.Count(res.stderr, "positional arguments cannot be flags"))
	assert.Contains(t, res.stderr, "error["+path+":arguments[1].type]")
	assert.Empty(t, res.stdout)
}

func TestGenerateUnknownTarget(t *testing.T) {
	res := run(t, "", "generate", "-l", "rust", specPath)
	require.Error(t, res.err)
	assert.Contains(t, errors.FlattenHints(res.err), "python")
}

func TestCheck(t *testing.T) {
	res := run(t, "", "check", specPath)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "No errors found.")

	path := filepath.Join(t.TempDir(), "repeated.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[program]
name = "p"

[[arguments]]
name = "--include"
type = "string"
multiple = true
`), 0644))

	res = run(t, "", "check", path)
	require.NoError(t, res.err)

	res = run(t, "", "check", "-l", "c-argparse", path)
	require.Error(t, res.err)
	assert.Contains(t, res.stderr, "c-argparse cannot collect repeated option --include")
}

func TestLint(t *testing.T) {
	res := run(t, "", "lint", specPath)
	require.NoError(t, res.err)
	assert.Equal(t, "No lint warnings.\n", res.stdout)

	path := filepath.Join(t.TempDir(), "lint.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[program]
name = "p"

[[arguments]]
name = "--quiet"
type = "flag"
`), 0644))
	res = run(t, "", "lint", path)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "warning[")
	assert.Contains(t, res.stdout, "2 warning(s) found.")
}

func TestFmtWrite(t *testing.T) {
	src, err := os.ReadFile(specPath)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "args.toml")
	require.NoError(t, os.WriteFile(path, src, 0644))

	printed := run(t, "", "fmt", path)
	require.NoError(t, printed.err)

	res := run(t, "", "fmt", "--write", path)
	require.NoError(t, res.err)
	assert.Equal(t, "Formatted "+path+"\n", res.stdout)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, printed.stdout, string(got))

	res = run(t, "", "fmt", "--write", path)
	require.NoError(t, res.err)
	assert.Empty(t, res.stdout)
}

func TestSimulate(t *testing.T) {
	res := run(t, "", "simulate", specPath, "in.txt", "--output", "out file", "-vi", "3")
	require.NoError(t, res.err, res.stderr)
	assert.Equal(t, strings.Join([]string{
		"input = in.txt",
		"output = 'out file'",
		"verbose = true",
		"enable = true",
		"int_ = 3",
		"float_ = 7.0",
	}, "\n")+"\n", res.stdout)

	res = run(t, "", "simulate", "--line", `in.txt --output "out file" -- -x`, specPath)
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "remaining = -x\n")
}

func TestSimulateFailureAndHelp(t *testing.T) {
	res := run(t, "", "simulate", specPath, "in.txt")
	assert.Equal(t, 1, exitCode(res.err))
	assert.True(t, strings.HasPrefix(res.stderr, "error: --output is required\nUsage: sample0"), res.stderr)
	assert.Empty(t, res.stdout)

	res = run(t, "", "simulate", specPath, "--help")
	require.NoError(t, res.err)
	assert.True(t, strings.HasPrefix(res.stdout, "Usage: sample0"), res.stdout)
	assert.NotContains(t, res.stdout, "input =")

	res = run(t, "", "simulate", "--line", "a", specPath, "b")
	assert.ErrorContains(t, res.err, "not both")
}

func TestScenarios(t *testing.T) {
	res := run(t, "", "scenarios", specPath)
	require.NoError(t, res.err)
	assert.True(t, strings.HasPrefix(res.stdout, "program: sample0\n"), res.stdout)

	out := filepath.Join(t.TempDir(), "scenarios.yaml")
	res = run(t, "", "scenarios", "-o", out, specPath)
	require.NoError(t, res.err)
	assert.FileExists(t, out)
}

func TestVerify(t *testing.T) {
	base := filepath.Join(t.TempDir(), "cli")

	res := run(t, "", "verify", "-l", "c-argparse", "-o", base, specPath)
	assert.Equal(t, 1, exitCode(res.err))
	assert.Contains(t, res.stdout, "0 up-to-date, 0 stale, 2 missing")

	require.NoError(t, run(t, "", "generate", "-l", "c-argparse", "-o", base, specPath).err)
	res = run(t, "", "verify", "-l", "c-argparse", "-o", base, specPath)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "2 up-to-date, 0 stale, 0 missing")

	f, err := os.OpenFile(base+".h", os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("/* edited */\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	res = run(t, "", "verify", "-l", "c-argparse", "-o", base, "--diff", specPath)
	assert.Equal(t, 1, exitCode(res.err))
	assert.Contains(t, res.stdout, "stale       "+base+".h")
	assert.Contains(t, res.stdout, "-/* edited */")

	res = run(t, "", "verify", specPath)
	assert.Contains(t, errors.FlattenHints(res.err), "--output")
}

func TestTargets(t *testing.T) {
	res := run(t, "", "targets")
	require.NoError(t, res.err)
	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "python"))
	assert.Contains(t, lines[2], "c-argparse")
	assert.Contains(t, lines[2], "repeated options: no")
}

func TestBadLogLevel(t *testing.T) {
	res := run(t, "", "--log-level", "loud", "targets")
	require.Error(t, res.err)
	assert.Contains(t, errors.FlattenHints(res.err), "debug")
}
