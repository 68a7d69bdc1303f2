package checker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lhaig/climeta/internal/argspec"
	"github.com/lhaig/climeta/internal/argspec/argspectest"
	"github.com/lhaig/climeta/internal/backend"
	"github.com/lhaig/climeta/internal/diagnostic"
)

func doc(args ...argspec.Declaration) *argspec.Document {
	return &argspec.Document{Program: argspec.Program{Name: "prog"}, Arguments: args}
}

func errorsOf(res *CheckResult) []diagnostic.Diagnostic {
	return res.Diagnostics.Errors()
}

func hasError(res *CheckResult, arg int, key, substr string) bool {
	for _, d := range errorsOf(res) {
		if d.Arg == arg && d.Key == key && strings.Contains(d.Message, substr) {
			return true
		}
	}
	return false
}

func TestFixturesPass(t *testing.T) {
	for name, d := range argspectest.Documents() {
		t.Run(name, func(t *testing.T) {
			res := Check(d, "", Neutral)
			require.False(t, res.Diagnostics.HasErrors(), res.Diagnostics.Format(name))
			require.NotNil(t, res.Spec)
			assert.Len(t, res.Spec.Args, len(d.Arguments))
		})
	}
}

func TestNormalizationErrorsAreCollected(t *testing.T) {
	res := Check(doc(
		argspec.Declaration{Name: "-x", Type: "string"},
		argspec.Declaration{Name: "--ok", Type: "string"},
		argspec.Declaration{Name: "--n", Type: "number"},
		argspec.Declaration{Name: "--all", Type: "flag", Multiple: "true"},
		argspec.Declaration{Name: "--count", Type: "int", Default: argspectest.Str("ten")},
	), "", Neutral)

	assert.Nil(t, res.Spec)
	assert.Equal(t, 4, res.Diagnostics.ErrorCount())
	assert.True(t, hasError(res, 1, "name", "single -"))
	assert.True(t, hasError(res, 3, "type", "unknown argument type"))
	assert.True(t, hasError(res, 4, "multiple", "flags"))
	assert.True(t, hasError(res, 5, "default", "not an int"))

	hint := errorsOf(res)[0].Hint
	assert.Contains(t, hint, `"--x"`)
}

func TestKindRules(t *testing.T) {
	tests := []struct {
		name string
		decl argspec.Declaration
		key  string
		msg  string
	}{
		{"positional flag", argspec.Declaration{Name: "verbose", Type: "flag"}, "type", "cannot be flags"},
		{"positional multiple", argspec.Declaration{Name: "files", Type: "string", Multiple: "true"}, "multiple", "cannot be multiple"},
		{"positional short", argspec.Declaration{Name: "file", Short: "-f", Type: "string"}, "short", "cannot have a short alias"},
		{"required flag", argspec.Declaration{Name: "--force", Type: "flag", Required: "true"}, "required", "cannot be required"},
		{"int choices", argspec.Declaration{Name: "--n", Type: "int", Choices: argspectest.Str("1,2")}, "choices", "only supported for string"},
		{"empty choices", argspec.Declaration{Name: "--c", Type: "string", Choices: argspectest.Str(" , ")}, "choices", "are empty"},
		{"long short", argspec.Declaration{Name: "--out", Short: "-out", Type: "string"}, "short", "single letter"},
		{"bad name", argspec.Declaration{Name: "--a b", Type: "string", Dest: "ab"}, "name", "may only contain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Check(doc(tt.decl), "", Neutral)
			assert.Nil(t, res.Spec)
			assert.True(t, hasError(res, 1, tt.key, tt.msg), res.Diagnostics.Format("t"))
		})
	}
}

func TestDuplicates(t *testing.T) {
	res := Check(doc(
		argspec.Declaration{Name: "--out", Short: "-o", Type: "string"},
		argspec.Declaration{Name: "--out", Type: "string", Dest: "out2"},
		argspec.Declaration{Name: "--other", Short: "o", Type: "string"},
		argspec.Declaration{Name: "--copy", Type: "string", Dest: "out"},
	), "", Neutral)

	assert.True(t, hasError(res, 2, "name", "already used by arguments[1]"))
	assert.True(t, hasError(res, 3, "short", `short "-o" already used by arguments[1]`))
	assert.True(t, hasError(res, 4, "dest", `dest "out" already used by arguments[1]`))
}

func TestHelpIsReserved(t *testing.T) {
	res := Check(doc(
		argspec.Declaration{Name: "--help", Type: "flag"},
		argspec.Declaration{Name: "--host", Short: "-h", Type: "string"},
	), "", Neutral)

	assert.True(t, hasError(res, 1, "name", "reserved for the help option"))
	assert.True(t, hasError(res, 2, "short", "reserved for the help option"))
}

func TestDestMustBeIdentifier(t *testing.T) {
	res := Check(doc(argspec.Declaration{Name: "--dry-run", Type: "flag"}), "", Neutral)

	require.Len(t, errorsOf(res), 1)
	d := errorsOf(res)[0]
	assert.Equal(t, "dest", d.Key)
	assert.Equal(t, `set dest = "dry_run"`, d.Hint)

	res = Check(doc(argspec.Declaration{Name: "--dry-run", Type: "flag", Dest: "dry_run"}), "", Neutral)
	assert.False(t, res.Diagnostics.HasErrors())
}

func TestTargetKeywords(t *testing.T) {
	d := doc(argspec.Declaration{Name: "--class", Type: "string", Default: argspectest.Str("a")})

	res := CheckFor(d, &backend.PythonBackend{})
	assert.True(t, hasError(res, 1, "dest", `"class" is reserved by python`))
	assert.Equal(t, `set dest = "class_"`, errorsOf(res)[0].Hint)

	res = CheckFor(d, &backend.BashBackend{})
	assert.False(t, res.Diagnostics.HasErrors())
}

func TestSingleLetterLongNames(t *testing.T) {
	d := doc(argspec.Declaration{Name: "--n", Short: "-n", Type: "flag"})

	res := CheckFor(d, &backend.CppBackend{})
	assert.Nil(t, res.Spec)
	assert.True(t, hasError(res, 1, "name", "cpp-cxxopts reads the single-letter long name --n as a short alias"))

	for _, be := range []backend.Backend{&backend.PythonBackend{}, &backend.BashBackend{}, &backend.CBackend{}, &backend.JSBackend{}} {
		assert.False(t, CheckFor(d, be).Diagnostics.HasErrors(), be.Name())
	}
}

func TestBashAcceptsDestsNamedLikeItsVariables(t *testing.T) {
	res := CheckFor(argspectest.Shadowing(), &backend.BashBackend{})
	assert.False(t, res.Diagnostics.HasErrors(), res.Diagnostics.Format("shadowing"))
	require.NotNil(t, res.Spec)

	res = CheckFor(doc(argspec.Declaration{Name: "--cli-rest", Type: "string", Dest: "_cli_rest"}), &backend.BashBackend{})
	assert.True(t, hasError(res, 1, "dest", `"_cli_rest" is reserved by bash`))
}

func TestTargetWithoutRepeatedOptions(t *testing.T) {
	res := CheckFor(argspectest.Repeated(), &backend.CBackend{})
	assert.Nil(t, res.Spec)
	assert.Equal(t, 3, res.Diagnostics.ErrorCount())
	assert.True(t, hasError(res, 1, "multiple", "c-argparse cannot collect repeated option --include"))

	res = CheckFor(argspectest.Repeated(), &backend.CppBackend{})
	assert.NotNil(t, res.Spec)
}

func TestEmptyProgramName(t *testing.T) {
	d := argspectest.Scenario()
	d.Program.Name = " "
	res := Check(d, "", Neutral)
	assert.True(t, hasError(res, 0, "name", "program name is empty"))
}

func TestSuggestDest(t *testing.T) {
	assert.Equal(t, "dry_run", suggestDest("dry-run"))
	assert.Equal(t, "_2fa", suggestDest("2fa"))
	assert.Equal(t, "a_b", suggestDest("a.b"))
}

func TestScope(t *testing.T) {
	root := reservedScope()
	s := NewScope(root)

	require.NoError(t, s.Define(&Symbol{Name: "out", Kind: SymDest, Arg: 1}))
	require.NoError(t, s.Define(&Symbol{Name: "out", Kind: SymName, Arg: 1}))
	assert.Error(t, s.Define(&Symbol{Name: "out", Kind: SymDest, Arg: 2}))

	assert.NotNil(t, s.Resolve(SymShort, "-h"))
	assert.Nil(t, s.ResolveLocal(SymShort, "-h"))
	assert.Equal(t, "short", SymShort.String())
}
