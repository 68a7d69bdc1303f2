// Package compiler drives generation: it checks a specification document
// against the chosen targets and runs their backends.
package compiler

import (
	"context"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/lhaig/climeta/internal/argspec"
	"github.com/lhaig/climeta/internal/backend"
	"github.com/lhaig/climeta/internal/checker"
	"github.com/lhaig/climeta/internal/diagnostic"
	"github.com/lhaig/climeta/internal/emit"
)

// Result holds the output of a compilation for one target
type Result struct {
	Target      string
	Diagnostics *diagnostic.Diagnostics
	Artifacts   []emit.Artifact
}

// Compile checks doc for target and generates its artifacts. The error is
// reserved for configuration problems such as an unknown target; problems in
// the document are reported through Result.Diagnostics.
func Compile(doc *argspec.Document, target, base string) (*Result, error) {
	be, err := getBackend(target)
	if err != nil {
		return nil, err
	}
	return compileWith(doc, be, base)
}

func compileWith(doc *argspec.Document, be backend.Backend, base string) (*Result, error) {
	check := checker.CheckFor(doc, be)
	res := &Result{Target: be.Name(), Diagnostics: check.Diagnostics}
	if check.Spec == nil {
		return res, nil
	}
	arts, err := be.Generate(check.Spec, base)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", be.Name())
	}
	res.Artifacts = arts
	return res, nil
}

// CompileAll compiles doc for target, which may be AllTargets. Backends run
// concurrently; results come back in documentation order.
func CompileAll(ctx context.Context, doc *argspec.Document, target, base string) ([]*Result, error) {
	bes, err := resolveTargets(target)
	if err != nil {
		return nil, err
	}

	results := make([]*Result, len(bes))
	g, ctx := errgroup.WithContext(ctx)
	for i, be := range bes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := compileWith(doc, be, base)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Check runs the target-independent checks only (no codegen).
func Check(doc *argspec.Document) *checker.CheckResult {
	return checker.Check(doc, "", checker.Neutral)
}

// CheckTarget runs the checks for target, which may be AllTargets.
func CheckTarget(doc *argspec.Document, target string) (*diagnostic.Diagnostics, error) {
	bes, err := resolveTargets(target)
	if err != nil {
		return nil, err
	}
	if len(bes) > 1 {
		diag := Check(doc).Diagnostics
		for _, be := range bes {
			targetDiag := checker.CheckFor(doc, be).Diagnostics
			for _, d := range targetDiag.All() {
				if !contains(diag, d) {
					diag.Add(d)
				}
			}
		}
		return diag, nil
	}
	return checker.CheckFor(doc, bes[0]).Diagnostics, nil
}

// MergeDiagnostics combines the diagnostics of several results, reporting a
// problem shared by every target once.
func MergeDiagnostics(results []*Result) *diagnostic.Diagnostics {
	diag := diagnostic.New()
	for _, res := range results {
		for _, d := range res.Diagnostics.All() {
			if !contains(diag, d) {
				diag.Add(d)
			}
		}
	}
	return diag
}

func contains(diag *diagnostic.Diagnostics, d diagnostic.Diagnostic) bool {
	for _, have := range diag.All() {
		if have == d {
			return true
		}
	}
	return false
}
