package bashbe

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lhaig/climeta/internal/argspec/argspectest"
)

func generate(t *testing.T, name string) string {
	t.Helper()
	spec := argspectest.MustSpec(t, argspectest.Documents()[name])
	arts, err := Generate(spec, name)
	require.NoError(t, err)
	require.Len(t, arts, 1)
	assert.Equal(t, ".sh", arts[0].Ext)
	return arts[0].Content
}

func TestGenerateSample0(t *testing.T) {
	out := generate(t, "sample0")

	assert.True(t, strings.HasPrefix(out, "#!/usr/bin/env bash\n"))
	assert.Contains(t, out, "-v|--verbose) verbose=1 ;;")
	assert.Contains(t, out, `--output=*)`)
	assert.Contains(t, out, `need_value "$1" "$#" "${2-}"`)
	assert.Contains(t, out, `check_int "--int" "$2"`)
	assert.Contains(t, out, `float_="7.0"`)
	assert.Contains(t, out, "unset output")
	assert.Contains(t, out, `if [ -z "${output+set}" ]; then`)
	assert.Contains(t, out, `fail "--output is required"`)
}

func TestInvertedFlag(t *testing.T) {
	out := generate(t, "scenario")

	assert.Contains(t, out, "--disable) enable=1 ;;  # stored inverted")
	assert.Contains(t, out, "enable=0  # stored inverted")
	assert.Contains(t, out, "enable=$((1 - enable))")
	assert.Contains(t, out, "verbose=0\n")
	assert.NotContains(t, out, "verbose=$((1 - verbose))")

	invert := strings.Index(out, "enable=$((1 - enable))")
	parse := strings.Index(out, `    parse_args "$@"`)
	validate := strings.Index(out, "    validate_args\n")
	assert.Less(t, parse, invert)
	assert.Less(t, invert, validate)
}

func TestValueTakingShortsConsumeRestOfCluster(t *testing.T) {
	out := generate(t, "sample0")

	assert.Contains(t, out, "i|f)")
	assert.Contains(t, out, `[ "$_cli_i" -lt "${#_cli_arg}" ] && _cli_new_args+=("${_cli_rest#=}")`)
	assert.Contains(t, out, `if [[ "$_cli_arg" =~ $_cli_number_re ]]; then _cli_new_args+=("$_cli_arg"); shift; continue; fi`)
	assert.Contains(t, out, `if [[ "$1" == -?* ]] && ! [[ "$1" =~ $_cli_number_re ]]; then fail "unknown option: $1"; fi`)
}

func TestChoices(t *testing.T) {
	out := generate(t, "langs")

	required := strings.Index(out, `fail "--lang is required"`)
	choices := strings.Index(out, `case "$lang" in`)
	require.GreaterOrEqual(t, required, 0)
	assert.Less(t, required, choices)
	assert.Contains(t, out, `"python"|"bash") ;;`)
	assert.Contains(t, out, `*) fail "--lang must be one of: python, bash (got '$lang')" ;;`)
}

func TestPositionalArity(t *testing.T) {
	out := generate(t, "langs")

	assert.Contains(t, out, `0) input="$1" ;;`)
	assert.Contains(t, out, `*) fail "expecting 1 positional argument(s)" ;;`)
	assert.Contains(t, out, `if [ "$_cli_positional_count" -ne 1 ]; then`)
}

func TestRepeatedOptions(t *testing.T) {
	out := generate(t, "repeated")

	assert.Contains(t, out, `include=("a" "b")`)
	assert.Contains(t, out, `level=("1" "16")`)
	assert.Contains(t, out, `if [ "$_cli_given_include" -eq 0 ]; then`)
	assert.Contains(t, out, `include+=("$2")`)
	assert.Contains(t, out, `for _cli_value in "${mode[@]}"; do`)
	assert.Contains(t, out, `for _cli_item in "${include[@]}"; do printf '  %s\n' "$_cli_item"; done`)
}

func TestUsageGoesToStderrOnError(t *testing.T) {
	out := generate(t, "sample0")

	assert.Contains(t, out, `[ "$1" -ne 0 ] && _cli_out=2`)
	assert.Contains(t, out, `} >&"$_cli_out"`)
	assert.Contains(t, out, `printf '%s\n' "Usage: sample0 [options] input [-- args...]"`)
	assert.Contains(t, out, "-h|--help) usage 0 ;;")
}

func TestDestsDoNotShadowWorkingVariables(t *testing.T) {
	spec := argspectest.MustSpec(t, argspectest.Shadowing())
	arts, err := Generate(spec, "shadowing")
	require.NoError(t, err)
	out := arts[0].Content

	assert.Contains(t, out, "local _cli_arg _cli_i _cli_ch _cli_rest\n")
	assert.Contains(t, out, `rest="none"`)
	assert.Contains(t, out, `out="0"`)
	assert.Contains(t, out, `for _cli_item in "${item[@]}"; do`)
	assert.Contains(t, out, "_cli_given_item=0")
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		assert.False(t, strings.HasPrefix(line, "local ") && !strings.Contains(line, "_cli_"), "unprefixed local: %s", line)
		assert.False(t, strings.HasPrefix(line, "for ") && !strings.HasPrefix(line, "for _cli_"), "unprefixed loop variable: %s", line)
	}
}

func TestKeywordsHoldWorkingVariables(t *testing.T) {
	out := generate(t, "repeated")
	for _, kw := range Keywords {
		if strings.HasPrefix(kw, "_cli_") {
			assert.Contains(t, out, kw, "keyword %s is not used by the script", kw)
		}
	}
	assert.NotContains(t, Keywords, "rest")
}

func TestDoubleQuoting(t *testing.T) {
	in := "a \"b\" $HOME `x` \\"
	want := "\"a \\\"b\\\" \\$HOME \\`x\\` \\\\\""
	assert.Equal(t, want, dq(in))
}
