package backend

import (
	"github.com/lhaig/climeta/internal/argspec"
	"github.com/lhaig/climeta/internal/emit"
	"github.com/lhaig/climeta/internal/jsbe"
)

// JSBackend wraps the jsbe as a Backend implementation.
type JSBackend struct{}

// Name returns the backend name.
func (b *JSBackend) Name() string {
	return "js-cla"
}

// Capabilities returns the limits of command-line-args.
func (b *JSBackend) Capabilities() Capabilities {
	return Capabilities{Multiple: true, Keywords: jsbe.Keywords, Extensions: []string{".mjs"}}
}

// Generate produces a JavaScript module.
func (b *JSBackend) Generate(spec *argspec.Spec, base string) ([]emit.Artifact, error) {
	return jsbe.Generate(spec, base)
}
