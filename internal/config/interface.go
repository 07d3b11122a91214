package config

import (
	"context"

	"github.com/vk/depends/internal/framespec"
)

// Loader is the interface for a format-specific manifest loader.
type Loader interface {
	// Load reads every manifest found under paths and translates them into
	// the format-agnostic model.
	Load(ctx context.Context, paths ...string) (*Model, error)
}

// Template renders one command line of a manifest kind. A template that
// renders to an empty slice means no command.
type Template interface {
	Render(ctx context.Context, scope *Scope) ([]string, error)
}

// Scope is what a command template may reference.
type Scope struct {
	// Attributes holds the substituted attribute values by name.
	Attributes map[string]string
	// Inputs and Outputs hold slot filenames by property name. Unbound
	// inputs map to empty slots.
	Inputs  map[string]map[string]string
	Outputs map[string]map[string]string
	// Range is the node's item range, nil when none is set.
	Range *framespec.Range
	// Frame is the frame being rendered by a split execution, nil otherwise.
	Frame *int
}
