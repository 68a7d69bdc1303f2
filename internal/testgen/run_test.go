package testgen

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lhaig/climeta/internal/argspec"
	"github.com/lhaig/climeta/internal/argspec/argspectest"
	"github.com/lhaig/climeta/internal/bashbe"
	"github.com/lhaig/climeta/internal/emit"
	"github.com/lhaig/climeta/internal/pybe"
	"github.com/lhaig/climeta/internal/simulate"
)

// interpreter runs the artifact a backend generates.
type interpreter struct {
	target   string
	bin      string
	generate func(*argspec.Spec, string) ([]emit.Artifact, error)
}

var interpreters = []interpreter{
	{target: "python", bin: "python3", generate: pybe.Generate},
	{target: "bash", bin: "bash", generate: bashbe.Generate},
}

// extraArgv holds command lines the scenario builder does not produce,
// mostly negative numbers where a value or positional is expected.
var extraArgv = map[string][][]string{
	"shadowing": {
		{"-5"},
		{"--out", "-3", "-7"},
		{"-r", "-.5", "1"},
		{"--item", "p", "--item", "q", "2"},
		{"--value", "3"},
		{"--rest=x", "4", "--", "-1"},
	},
}

type result struct {
	exit   int
	stdout string
	stderr string
}

func execute(t *testing.T, bin, script string, argv []string) result {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin, append([]string{script}, argv...)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	res := result{stdout: stdout.String(), stderr: stderr.String()}
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		res.exit = exitErr.ExitCode()
	default:
		require.NoError(t, err)
	}
	return res
}

// parseDump reads the value listing printed by a generated program run
// without arguments of its own: "dest: value" lines, "dest:" followed by
// indented items for repeated options, then the remaining arguments.
func parseDump(stdout string) (map[string][]string, []string) {
	values := make(map[string][]string)
	remaining := []string{}
	current := ""
	for _, line := range strings.Split(strings.TrimSuffix(stdout, "\n"), "\n") {
		switch {
		case line == "Parsed arguments:":
		case strings.HasPrefix(line, "  "):
			if current == "remaining_args" {
				remaining = append(remaining, line[2:])
			} else {
				values[current] = append(values[current], line[2:])
			}
		case strings.HasSuffix(line, ":") && !strings.Contains(line, ": "):
			current = strings.TrimSuffix(line, ":")
			if current != "remaining_args" {
				values[current] = []string{}
			}
		default:
			dest, value, _ := strings.Cut(line, ": ")
			values[dest] = []string{value}
			current = ""
		}
	}
	return values, remaining
}

// normalize turns a printed value into the simulator's rendering of it;
// targets spell flags, hex ints and floats differently.
func normalize(t *testing.T, typ argspec.Type, text string) string {
	t.Helper()
	switch typ {
	case argspec.Flag:
		switch text {
		case "1", "True", "true":
			return argspec.Value{Type: typ, Bool: true}.String()
		case "0", "False", "false":
			return argspec.Value{Type: typ}.String()
		}
		t.Errorf("not a flag value: %q", text)
	case argspec.Int:
		n, err := strconv.ParseInt(text, 0, 64)
		require.NoError(t, err)
		return argspec.Value{Type: typ, Int: n}.String()
	case argspec.Float:
		f, err := strconv.ParseFloat(text, 64)
		require.NoError(t, err)
		return argspec.Value{Type: typ, Float: f}.String()
	}
	return text
}

func rendered(values []argspec.Value) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return out
}

func TestGeneratedProgramsAgreeWithSimulator(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping generated program runs in short mode")
	}
	docs := argspectest.Documents()
	docs["shadowing"] = argspectest.Shadowing()

	for _, in := range interpreters {
		t.Run(in.target, func(t *testing.T) {
			if _, err := exec.LookPath(in.bin); err != nil {
				t.Skipf("%s not found on PATH, skipping", in.bin)
			}
			for name, doc := range docs {
				t.Run(name, func(t *testing.T) {
					spec := argspectest.MustSpec(t, doc)
					arts, err := in.generate(spec, name)
					require.NoError(t, err)
					script := filepath.Join(t.TempDir(), name+arts[0].Ext)
					require.NoError(t, os.WriteFile(script, []byte(arts[0].Content), 0644))

					cases := Scenarios(spec)
					for i, argv := range extraArgv[name] {
						cases = append(cases, Scenario{Name: "extra #" + strconv.Itoa(i+1), Argv: argv})
					}
					for _, sc := range cases {
						t.Run(sc.Name, func(t *testing.T) {
							want := simulate.Run(spec, sc.Argv)
							got := execute(t, in.bin, script, sc.Argv)
							require.Equal(t, want.Exit, got.exit, "argv %q\nstdout:\n%s\nstderr:\n%s", sc.Argv, got.stdout, got.stderr)

							switch {
							case want.Failed():
								assert.True(t, strings.HasPrefix(got.stderr, "error: "), got.stderr)
								assert.Empty(t, got.stdout)
							case want.Help:
								assert.Equal(t, want.Stdout, got.stdout)
							default:
								values, remaining := parseDump(got.stdout)
								for _, d := range spec.Args {
									printed, ok := values[d.Dest]
									if !assert.True(t, ok, "%s not printed:\n%s", d.Dest, got.stdout) {
										continue
									}
									norm := make([]string, len(printed))
									for i, text := range printed {
										norm[i] = normalize(t, d.Type, text)
									}
									assert.Equal(t, rendered(want.Values[d.Dest]), norm, "dest %s", d.Dest)
								}
								assert.Equal(t, want.Remaining, remaining)
							}
						})
					}
				})
			}
		})
	}
}

func TestParseDump(t *testing.T) {
	values, remaining := parseDump("Parsed arguments:\noutput: \nlevel:\n  1\n  0x10\nverbose: 1\nremaining_args:\n  --verbose\n  \n")

	assert.Equal(t, map[string][]string{
		"output":  {""},
		"level":   {"1", "0x10"},
		"verbose": {"1"},
	}, values)
	assert.Equal(t, []string{"--verbose", ""}, remaining)
}
