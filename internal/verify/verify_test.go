package verify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lhaig/climeta/internal/emit"
)

func TestVerifyStatuses(t *testing.T) {
	base := filepath.Join(t.TempDir(), "cli")
	require.NoError(t, os.WriteFile(base+".c", []byte("int x;\n"), 0644))
	require.NoError(t, os.WriteFile(base+".h", []byte("old\nsame\n"), 0644))

	arts := []emit.Artifact{
		{Ext: ".c", Content: "int x;\n"},
		{Ext: ".h", Content: "new\nsame\n"},
		{Ext: ".txt", Content: "absent\n"},
	}
	results, err := Verify("c-argparse", arts, base)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, UpToDate, results[0].Status)
	assert.Empty(t, results[0].Diff)
	assert.Equal(t, Stale, results[1].Status)
	assert.Contains(t, results[1].Diff, "-old\n")
	assert.Contains(t, results[1].Diff, "+new\n")
	assert.Contains(t, results[1].Diff, "--- "+base+".h")
	assert.Equal(t, Missing, results[2].Status)
	assert.Equal(t, "c-argparse", results[2].Target)

	var r Report
	r.Add(results...)
	assert.False(t, r.AllUpToDate())
	out := r.Format(true)
	assert.Contains(t, out, "stale       "+base+".h\n")
	assert.Contains(t, out, "1 up-to-date, 1 stale, 1 missing\n")
	assert.Contains(t, out, "+new")
	assert.NotContains(t, r.Format(false), "+new")
}

func TestEmptyReportIsNotUpToDate(t *testing.T) {
	var r Report
	assert.False(t, r.AllUpToDate())
	r.Add(&VerifyResult{Status: UpToDate})
	assert.True(t, r.AllUpToDate())
}
