package backend

import (
	"github.com/lhaig/climeta/internal/argspec"
	"github.com/lhaig/climeta/internal/cbe"
	"github.com/lhaig/climeta/internal/emit"
)

// CBackend wraps the cbe as a Backend implementation.
type CBackend struct{}

// Name returns the backend name.
func (b *CBackend) Name() string {
	return "c-argparse"
}

// Capabilities returns the limits of cofyc/argparse, which has no way to
// collect repeated options.
func (b *CBackend) Capabilities() Capabilities {
	return Capabilities{Multiple: false, Keywords: cbe.Keywords, Extensions: []string{".c", ".h"}}
}

// Generate produces a C source and header.
func (b *CBackend) Generate(spec *argspec.Spec, base string) ([]emit.Artifact, error) {
	return cbe.Generate(spec, base)
}
