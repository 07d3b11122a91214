package registry

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/vk/depends/internal/node"
	"github.com/vk/depends/internal/packet"
	"github.com/vk/depends/internal/plan"
)

// Module is the interface that all core modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the kinds, packet types and recipes of one application
// instance.
type Registry struct {
	types   *packet.Types
	kinds   map[string]node.Kind
	recipes map[string]plan.Recipe
}

// New creates a registry knowing only the built-in packet types.
func New() *Registry {
	return &Registry{
		types:   packet.NewTypes(),
		kinds:   make(map[string]node.Kind),
		recipes: make(map[string]plan.Recipe),
	}
}

// Types returns the packet type registry.
func (r *Registry) Types() *packet.Types {
	return r.types
}

// RegisterKind registers a node kind under its name.
func (r *Registry) RegisterKind(k node.Kind) {
	if _, exists := r.kinds[k.Name()]; exists {
		panic(fmt.Sprintf("kind with name '%s' already registered", k.Name()))
	}
	slog.Debug("Registering kind.", "name", k.Name())
	r.kinds[k.Name()] = k
}

// RegisterRecipe registers an output recipe under its name.
func (r *Registry) RegisterRecipe(rc plan.Recipe) {
	if _, exists := r.recipes[rc.Name()]; exists {
		panic(fmt.Sprintf("recipe with name '%s' already registered", rc.Name()))
	}
	slog.Debug("Registering recipe.", "name", rc.Name())
	r.recipes[rc.Name()] = rc
}

// RegisterPacketType registers a packet type shipped with a module.
func (r *Registry) RegisterPacketType(t packet.Type) {
	if err := r.types.Register(t); err != nil {
		panic(fmt.Sprintf("packet type '%s': %v", t.Name, err))
	}
	slog.Debug("Registering packet type.", "name", t.Name)
}

// Kind returns the kind registered under name.
func (r *Registry) Kind(name string) (node.Kind, bool) {
	k, ok := r.kinds[name]
	return k, ok
}

// KindNames returns every registered kind name, sorted.
func (r *Registry) KindNames() []string {
	names := make([]string, 0, len(r.kinds))
	for name := range r.kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Recipe(name string) (plan.Recipe, bool) {
	rc, ok := r.recipes[name]
	return rc, ok
}

func (r *Registry) RecipeNames() []string {
	names := make([]string, 0, len(r.recipes))
	for name := range r.recipes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
