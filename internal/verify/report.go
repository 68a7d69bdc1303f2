package verify

import (
	"fmt"
	"strings"
)

// Report aggregates the results of one or more targets.
type Report struct {
	Results []*VerifyResult
}

// Add appends results.
func (r *Report) Add(results ...*VerifyResult) {
	r.Results = append(r.Results, results...)
}

// AllUpToDate returns true if every artifact matches.
func (r *Report) AllUpToDate() bool {
	for _, res := range r.Results {
		if res.Status != UpToDate {
			return false
		}
	}
	return len(r.Results) > 0
}

// Count returns the number of results with status.
func (r *Report) Count(status string) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// Format renders one line per artifact, followed by the diffs when
// withDiff is set.
//
//	up-to-date  sample0.py
//	stale       sample0.c
//	missing     sample0.h
func (r *Report) Format(withDiff bool) string {
	var sb strings.Builder
	for _, res := range r.Results {
		sb.WriteString(fmt.Sprintf("%-11s %s\n", res.Status, res.Path))
	}
	if withDiff {
		for _, res := range r.Results {
			if res.Diff != "" {
				sb.WriteString("\n")
				sb.WriteString(res.Diff)
			}
		}
	}
	sb.WriteString(fmt.Sprintf("%d up-to-date, %d stale, %d missing\n",
		r.Count(UpToDate), r.Count(Stale), r.Count(Missing)))
	return sb.String()
}
