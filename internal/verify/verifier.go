// Package verify compares freshly generated artifacts with the files already
// on disk, so a build can fail when checked-in parsers drift from their
// specification.
package verify

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/lhaig/climeta/internal/emit"
)

// Status of one artifact.
const (
	UpToDate = "up-to-date"
	Stale    = "stale"
	Missing  = "missing"
)

// VerifyResult holds the result of verifying a single artifact
type VerifyResult struct {
	Target string
	Path   string
	Status string
	Diff   string // unified diff from the file on disk to the expected content
}

// Verify compares each artifact with base+ext on disk.
func Verify(target string, arts []emit.Artifact, base string) ([]*VerifyResult, error) {
	var results []*VerifyResult
	for _, a := range arts {
		path := base + a.Ext
		res := &VerifyResult{Target: target, Path: path}
		current, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			res.Status = Missing
		case err != nil:
			return nil, errors.Wrapf(err, "reading %s", path)
		case string(current) == a.Content:
			res.Status = UpToDate
		default:
			res.Status = Stale
			diff, err := Diff(path, string(current), a.Content)
			if err != nil {
				return nil, err
			}
			res.Diff = diff
		}
		results = append(results, res)
	}
	return results, nil
}

// Diff renders a unified diff between the file content on disk and the
// content it should have.
func Diff(path, current, expected string) (string, error) {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(current),
		B:        difflib.SplitLines(expected),
		FromFile: path,
		ToFile:   path + " (generated)",
		Context:  3,
	})
	if err != nil {
		return "", errors.Wrap(err, "computing diff")
	}
	return diff, nil
}
