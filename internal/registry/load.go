package registry

import (
	"context"
	"fmt"

	"github.com/vk/depends/internal/config"
	"github.com/vk/depends/internal/ctxlog"
	"github.com/vk/depends/internal/packet"
)

// PopulateFromModel registers the packet types and kinds declared in the
// loaded manifests. Unlike module registration, conflicts here are user
// errors and are returned.
func (r *Registry) PopulateFromModel(ctx context.Context, model *config.Model) error {
	logger := ctxlog.FromContext(ctx)

	for _, p := range model.Packets {
		err := r.types.Register(packet.Type{
			Name:        p.Name,
			Parent:      p.Parent,
			Slots:       p.Slots,
			Description: p.Description,
		})
		if err != nil {
			return fmt.Errorf("packet type %q: %w", p.Name, err)
		}
		logger.Debug("Registered packet type from manifest.", "name", p.Name, "parent", p.Parent)
	}

	for _, def := range model.Kinds {
		if _, exists := r.kinds[def.Name]; exists {
			return fmt.Errorf("kind %q declared in %s is already registered", def.Name, def.Source)
		}
		r.kinds[def.Name] = &manifestKind{def: def, types: r.types}
		logger.Debug("Registered kind from manifest.", "name", def.Name, "source", def.Source)
	}

	logger.Info("Registry loaded successfully.", "packets", len(model.Packets), "kinds", len(model.Kinds))
	return nil
}
