package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/depends/internal/ctxlog"
	"github.com/vk/depends/internal/node"
)

// ValidateRegistry checks every kind against the packet type registry and
// against itself. All problems are reported together.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, name := range r.KindNames() {
		k := r.kinds[name]
		if node.CleanName(name) != name {
			errs = append(errs, fmt.Sprintf("kind '%s': name holds characters a node name may not", name))
		}

		inputs := make(map[string]node.InputDef)
		for _, in := range k.Inputs() {
			if _, dup := inputs[in.Name]; dup {
				errs = append(errs, fmt.Sprintf("kind '%s': input '%s' is declared twice", name, in.Name))
			}
			inputs[in.Name] = in
			if _, ok := r.types.Lookup(in.Type); !ok {
				errs = append(errs, fmt.Sprintf("kind '%s', input '%s': unknown packet type '%s'", name, in.Name, in.Type))
			}
		}

		outputs := make(map[string]bool)
		for _, out := range k.Outputs() {
			if outputs[out.Name] {
				errs = append(errs, fmt.Sprintf("kind '%s': output '%s' is declared twice", name, out.Name))
			}
			outputs[out.Name] = true
			if _, ok := r.types.Lookup(out.Type); !ok {
				errs = append(errs, fmt.Sprintf("kind '%s', output '%s': unknown packet type '%s'", name, out.Name, out.Type))
			}
			if out.From == "" {
				continue
			}
			in, ok := inputs[out.From]
			if !ok {
				errs = append(errs, fmt.Sprintf("kind '%s', output '%s': derived from undeclared input '%s'", name, out.Name, out.From))
				continue
			}
			if !r.types.IsA(in.Type, out.Type) && !r.types.IsA(out.Type, in.Type) {
				errs = append(errs, fmt.Sprintf("kind '%s', output '%s': type '%s' is unrelated to input '%s' of type '%s'",
					name, out.Name, out.Type, in.Name, in.Type))
			}
		}

		attrs := make(map[string]bool)
		for _, a := range k.Attributes() {
			if attrs[a.Name] {
				errs = append(errs, fmt.Sprintf("kind '%s': attribute '%s' is declared twice", name, a.Name))
			}
			attrs[a.Name] = true
		}

		if k.PerItem() && len(k.Inputs()) == 0 {
			logger.Warn("Per-item kind has no inputs, its item range can only come from its outputs.", "kind", name)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	logger.Debug("Registry validation passed.", "kinds", len(r.kinds), "recipes", len(r.recipes))
	return nil
}
