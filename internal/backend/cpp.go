package backend

import (
	"github.com/lhaig/climeta/internal/argspec"
	"github.com/lhaig/climeta/internal/cppbe"
	"github.com/lhaig/climeta/internal/emit"
)

// CppBackend wraps the cppbe as a Backend implementation.
type CppBackend struct{}

// Name returns the backend name.
func (b *CppBackend) Name() string {
	return "cpp-cxxopts"
}

// Capabilities returns the limits of cxxopts.
func (b *CppBackend) Capabilities() Capabilities {
	return Capabilities{Multiple: true, Keywords: cppbe.Keywords, Extensions: []string{".cpp", ".hpp"}, LongNameMin: 2}
}

// Generate produces a C++ source and header.
func (b *CppBackend) Generate(spec *argspec.Spec, base string) ([]emit.Artifact, error) {
	return cppbe.Generate(spec, base)
}
