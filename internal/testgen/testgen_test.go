package testgen

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lhaig/climeta/internal/argspec/argspectest"
	"github.com/lhaig/climeta/internal/simulate"
)

func byName(t *testing.T, scenarios []Scenario, name string) Scenario {
	t.Helper()
	for _, s := range scenarios {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("no scenario %q", name)
	return Scenario{}
}

func TestScenariosForScenarioFixture(t *testing.T) {
	spec := argspectest.MustSpec(t, argspectest.Scenario())
	scenarios := Scenarios(spec)

	def := byName(t, scenarios, "defaults")
	assert.Equal(t, []string{"--output", "output-value", "input-value"}, def.Argv)
	assert.Zero(t, def.Expect.Exit)
	assert.Equal(t, map[string]string{
		"input": "input-value", "output": "output-value", "verbose": "false", "enable": "true",
	}, def.Expect.Values)

	disable := byName(t, scenarios, "flag --disable")
	assert.Equal(t, "false", disable.Expect.Values["enable"])
	assert.Equal(t, "true", byName(t, scenarios, "flag -v").Expect.Values["verbose"])

	omit := byName(t, scenarios, "omit --output")
	assert.Equal(t, simulate.ExitFailure, omit.Expect.Exit)
	assert.Equal(t, simulate.Required, omit.Expect.Kind)

	assert.Equal(t, simulate.PositionalArity, byName(t, scenarios, "too few positionals").Expect.Kind)
	assert.Equal(t, simulate.PositionalArity, byName(t, scenarios, "too many positionals").Expect.Kind)
	assert.Equal(t, simulate.UnknownOption, byName(t, scenarios, "unknown option").Expect.Kind)
	assert.Equal(t, simulate.MissingValue, byName(t, scenarios, "missing value --output").Expect.Kind)
	assert.True(t, byName(t, scenarios, "help").Expect.Help)

	rest := byName(t, scenarios, "remaining arguments")
	assert.Equal(t, []string{"a", "--verbose", "--"}, rest.Expect.Remaining)
	assert.Equal(t, "false", rest.Expect.Values["verbose"])
}

func TestValueScenarios(t *testing.T) {
	spec := argspectest.MustSpec(t, argspectest.Sample0())
	scenarios := Scenarios(spec)

	neg := byName(t, scenarios, `--int "-1"`)
	assert.Contains(t, neg.Argv, "--int=-1")
	assert.Equal(t, "-1", neg.Expect.Values["int_"])

	hex := byName(t, scenarios, `--int "0x10"`)
	assert.Equal(t, "16", hex.Expect.Values["int_"])

	bad := byName(t, scenarios, `--float invalid "x"`)
	assert.Equal(t, simulate.InvalidValue, bad.Expect.Kind)

	short := byName(t, scenarios, `-i "1"`)
	assert.Zero(t, short.Expect.Exit)
}

func TestChoiceScenarios(t *testing.T) {
	spec := argspectest.MustSpec(t, argspectest.Langs())
	scenarios := Scenarios(spec)

	for _, c := range []string{"python", "bash"} {
		s := byName(t, scenarios, `--lang "`+c+`"`)
		assert.Zero(t, s.Expect.Exit, c)
		assert.Equal(t, c, s.Expect.Values["lang"])
	}
	bad := byName(t, scenarios, `--lang invalid "not-a-choice"`)
	assert.Equal(t, simulate.Choice, bad.Expect.Kind)
	assert.Contains(t, bad.Expect.Message, "python, bash")
}

func TestRepeatScenario(t *testing.T) {
	spec := argspectest.MustSpec(t, argspectest.Repeated())
	s := byName(t, Scenarios(spec), "repeat --level")
	assert.Equal(t, []string{"--level", "0", "--level", "2147483647"}, s.Argv)
	assert.Equal(t, "0 2147483647", s.Expect.Values["level"])
}

func TestNotAChoice(t *testing.T) {
	assert.Equal(t, "not-a-choice", notAChoice([]string{"a"}))
	assert.Equal(t, "not-a-choice--", notAChoice([]string{"not-a-choice", "not-a-choice-"}))
}

func TestEncodeIsDeterministic(t *testing.T) {
	spec := argspectest.MustSpec(t, argspectest.Sample0())

	var first, second bytes.Buffer
	require.NoError(t, Encode(&first, spec))
	require.NoError(t, Encode(&second, spec))
	assert.Equal(t, first.String(), second.String())
	assert.Contains(t, first.String(), "program: sample0\n")

	suite, err := Decode(&first)
	require.NoError(t, err)
	assert.Equal(t, Scenarios(spec), suite.Scenarios)
}
