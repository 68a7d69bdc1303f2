package backend

import (
	"github.com/lhaig/climeta/internal/argspec"
	"github.com/lhaig/climeta/internal/emit"
	"github.com/lhaig/climeta/internal/pybe"
)

// PythonBackend wraps the pybe as a Backend implementation.
type PythonBackend struct{}

// Name returns the backend name.
func (b *PythonBackend) Name() string {
	return "python"
}

// Capabilities returns the limits of argparse.
func (b *PythonBackend) Capabilities() Capabilities {
	return Capabilities{Multiple: true, Keywords: pybe.Keywords, Extensions: []string{".py"}}
}

// Generate produces a Python module.
func (b *PythonBackend) Generate(spec *argspec.Spec, base string) ([]emit.Artifact, error) {
	return pybe.Generate(spec, base)
}
