package cbe

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lhaig/climeta/internal/argspec"
	"github.com/lhaig/climeta/internal/argspec/argspectest"
)

func generate(t *testing.T, name, base string) (source, header string) {
	t.Helper()
	spec := argspectest.MustSpec(t, argspectest.Documents()[name])
	arts, err := Generate(spec, base)
	require.NoError(t, err)
	require.Len(t, arts, 2)
	assert.Equal(t, ".c", arts[0].Ext)
	assert.Equal(t, ".h", arts[1].Ext)
	return arts[0].Content, arts[1].Content
}

func TestGenerateSample0(t *testing.T) {
	src, hdr := generate(t, "sample0", "out/sample0")

	assert.True(t, strings.HasPrefix(src, "#include \"sample0.h\"\n#include \"argparse.h\"\n"))
	assert.Contains(t, src, "opts->input = NULL;")
	assert.Contains(t, src, "opts->output = NULL;")
	assert.Contains(t, src, "opts->int_ = INT_MIN;")
	assert.Contains(t, src, "opts->float_ = 7.0;")
	assert.Contains(t, src, `OPT_STRING('\0', "output", &opts->output, "output file path (required)", NULL, 0, 0),`)
	assert.Contains(t, src, `OPT_BOOLEAN('v', "verbose", &opts->verbose, "enable verbose mode (default false)", NULL, 0, OPT_NONEG),`)
	assert.Contains(t, src, `OPT_INTEGER('i', "int", &opts->int_, "just an integer number (required)", NULL, 0, 0),`)
	assert.Contains(t, src, `OPT_FLOAT('f', "float", &opts->float_, "just a float number (default 7.0)", NULL, 0, 0),`)

	assert.Contains(t, hdr, "#ifndef SAMPLE0_H")
	assert.Contains(t, hdr, "    const char * output;")
	assert.Contains(t, hdr, "    float float_;")
	assert.Contains(t, hdr, "    const char **remaining_args;")
	assert.Contains(t, hdr, "void parse_options(int argc, const char **argv, Options *opts);")
}

func TestFloatSentinelUsesIsnan(t *testing.T) {
	spec := argspectest.MustSpec(t, &argspec.Document{
		Program: argspec.Program{Name: "ratio"},
		Arguments: []argspec.Declaration{
			{Name: "--output", Type: "string"},
			{Name: "--int", Type: "int", Dest: "int_"},
			{Name: "--float", Type: "float", Dest: "float_"},
		},
	})

	arts, err := Generate(spec, "")
	require.NoError(t, err)
	src := arts[0].Content
	assert.Contains(t, src, "opts->float_ = NAN;")
	assert.Contains(t, src, "if (isnan(opts->float_)) {")
	assert.NotContains(t, src, "== NAN")
	assert.Contains(t, src, "if (opts->int_ == INT_MIN) {")
	assert.Contains(t, src, "if (opts->output == NULL) {")
}

func TestFlagsAreNormalized(t *testing.T) {
	src, _ := generate(t, "scenario", "scenario")

	assert.Contains(t, src, "opts->enable = 0; // stored inverted")
	assert.Contains(t, src, "opts->verbose = opts->verbose != 0;")
	assert.Contains(t, src, "opts->enable = opts->enable == 0; // stored inverted")
}

func TestFlagCommentOnlyWithFlags(t *testing.T) {
	src, _ := generate(t, "scenario", "scenario")
	assert.Contains(t, src, "// argparse counts flag occurrences")

	src, _ = generate(t, "langs", "langs")
	assert.NotContains(t, src, "// argparse counts flag occurrences")
}

func TestTrailingArgumentsAreSplitBeforeParsing(t *testing.T) {
	src, _ := generate(t, "scenario", "scenario")

	split := strings.Index(src, `if (strcmp(argv[i], "--") == 0) {`)
	parse := strings.Index(src, "int count = argparse_parse(&argparse, dashdash, argv);")
	require.GreaterOrEqual(t, split, 0)
	assert.Less(t, split, parse)
	assert.Contains(t, src, "opts->remaining_count = argc - i - 1;")
}

func TestPositionalArityAndOrder(t *testing.T) {
	src, _ := generate(t, "langs", "langs")

	arity := strings.Index(src, "if (count != 1) {")
	required := strings.Index(src, `fail(&argparse, "--lang is required");`)
	choices := strings.Index(src, "if (!set_includes(valid, opts->lang)) {")
	require.GreaterOrEqual(t, arity, 0)
	assert.Less(t, arity, required)
	assert.Less(t, required, choices)
	assert.Contains(t, src, `fail(&argparse, "expecting 1 positional argument(s)");`)
	assert.Contains(t, src, `const char *valid[] = {"python", "bash", NULL};`)
	assert.Contains(t, src, `fail_choice(&argparse, "--lang must be one of: python, bash", opts->lang);`)
	assert.Contains(t, src, "opts->input = argv[0];")
}

func TestMultipleIsRejected(t *testing.T) {
	spec := argspectest.MustSpec(t, argspectest.Repeated())
	_, err := Generate(spec, "repeated")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMultiple))
}

func TestBaseDefaultsToProgramName(t *testing.T) {
	src, hdr := generate(t, "langs", "")
	assert.Contains(t, src, `#include "langs.h"`)
	assert.Contains(t, hdr, "#define LANGS_H")
}

func TestSentinelTableCoversValueTypes(t *testing.T) {
	assert.True(t, Sentinels.Covers())
}
