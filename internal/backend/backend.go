package backend

import (
	"github.com/lhaig/climeta/internal/argspec"
	"github.com/lhaig/climeta/internal/emit"
)

// Capabilities describes what a target can express, so unsupported
// specifications are rejected before generation.
type Capabilities struct {
	// Multiple reports whether repeated options can be collected.
	Multiple bool
	// Keywords cannot be used as dest names.
	Keywords []string
	// Extensions lists the artifact extensions, in output order.
	Extensions []string
	// LongNameMin is the shortest long option name the target accepts;
	// zero means any.
	LongNameMin int
}

// Backend is the interface that all code generation backends implement.
type Backend interface {
	// Name returns the target key (e.g., "python", "c-argparse")
	Name() string
	// Capabilities returns the limits of the target.
	Capabilities() Capabilities
	// Generate produces the artifacts for a normalized specification. base
	// names the output files and may be empty.
	Generate(spec *argspec.Spec, base string) ([]emit.Artifact, error)
}

// All returns one instance of every backend in documentation order.
func All() []Backend {
	return []Backend{
		&PythonBackend{},
		&BashBackend{},
		&CBackend{},
		&CppBackend{},
		&JSBackend{},
	}
}
