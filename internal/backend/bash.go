package backend

import (
	"github.com/lhaig/climeta/internal/argspec"
	"github.com/lhaig/climeta/internal/bashbe"
	"github.com/lhaig/climeta/internal/emit"
)

// BashBackend wraps the bashbe as a Backend implementation.
type BashBackend struct{}

// Name returns the backend name.
func (b *BashBackend) Name() string {
	return "bash"
}

// Capabilities returns the limits of the generated bash script.
func (b *BashBackend) Capabilities() Capabilities {
	return Capabilities{Multiple: true, Keywords: bashbe.Keywords, Extensions: []string{".sh"}}
}

// Generate produces a bash script.
func (b *BashBackend) Generate(spec *argspec.Spec, base string) ([]emit.Artifact, error) {
	return bashbe.Generate(spec, base)
}
