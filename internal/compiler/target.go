package compiler

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/lhaig/climeta/internal/backend"
	"github.com/lhaig/climeta/internal/emit"
	"github.com/lhaig/climeta/internal/logger"
)

// AllTargets selects every backend.
const AllTargets = "all"

// ErrUnknownTarget is returned for a target key no backend answers to.
var ErrUnknownTarget = errors.New("unknown target")

// TargetNames returns the target keys in documentation order.
func TargetNames() []string {
	var names []string
	for _, be := range backend.All() {
		names = append(names, be.Name())
	}
	return names
}

// getBackend returns the appropriate backend for the given target
func getBackend(target string) (backend.Backend, error) {
	for _, be := range backend.All() {
		if be.Name() == target {
			return be, nil
		}
	}
	return nil, errors.WithHintf(errors.Wrapf(ErrUnknownTarget, "%q", target),
		"use one of %s or %s", strings.Join(TargetNames(), ", "), AllTargets)
}

// resolveTargets expands AllTargets and validates every key.
func resolveTargets(target string) ([]backend.Backend, error) {
	if target == AllTargets {
		return backend.All(), nil
	}
	be, err := getBackend(target)
	if err != nil {
		return nil, err
	}
	return []backend.Backend{be}, nil
}

// getFileExtensions returns the artifact extensions for the given target
func getFileExtensions(target string) []string {
	be, err := getBackend(target)
	if err != nil {
		return nil
	}
	return be.Capabilities().Extensions
}

// OutputBase turns an --output value into a base name: the extension is
// dropped, and "" or "-" select standard output.
func OutputBase(output string) string {
	if output == "" || output == "-" {
		return ""
	}
	return strings.TrimSuffix(output, filepath.Ext(output))
}

// OutputPaths lists the files a target writes for base.
func OutputPaths(target, base string) []string {
	var paths []string
	for _, ext := range getFileExtensions(target) {
		paths = append(paths, base+ext)
	}
	return paths
}

// WriteArtifacts writes each artifact to base+ext, or to stdout one after the
// other when base is empty. It returns the paths written.
func WriteArtifacts(arts []emit.Artifact, base string, stdout io.Writer) ([]string, error) {
	if base == "" {
		for _, a := range arts {
			if _, err := io.WriteString(stdout, a.Content); err != nil {
				return nil, errors.Wrap(err, "writing to stdout")
			}
		}
		return nil, nil
	}

	if dir := filepath.Dir(base); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrap(err, "failed to create output dir")
		}
	}

	var paths []string
	for _, a := range arts {
		path := base + a.Ext
		if err := os.WriteFile(path, []byte(a.Content), 0644); err != nil {
			return paths, errors.Wrap(err, "failed to write output file")
		}
		logger.Logger.Debugw("wrote artifact", "path", path, "bytes", len(a.Content))
		paths = append(paths, path)
	}
	return paths, nil
}

// EmitResults writes every result, in order. Nothing is written when any
// result carries errors; the error then names every failing target.
func EmitResults(results []*Result, base string, stdout io.Writer) ([]string, error) {
	var failed []string
	for _, res := range results {
		if res.Diagnostics.HasErrors() {
			failed = append(failed, res.Target+": "+strconv.Itoa(res.Diagnostics.ErrorCount())+" error(s) in specification")
		}
	}
	if len(failed) > 0 {
		return nil, errors.WithHint(errors.Newf("%s", strings.Join(failed, "; ")), "no files were written")
	}

	var written []string
	for _, res := range results {
		paths, err := WriteArtifacts(res.Artifacts, base, stdout)
		written = append(written, paths...)
		if err != nil {
			return written, errors.Wrapf(err, "%s", res.Target)
		}
		logger.Logger.Infow("generated", "target", res.Target, "files", paths)
	}
	return written, nil
}
