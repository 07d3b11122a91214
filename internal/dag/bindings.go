package dag

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/vk/depends/internal/packet"
)

// Bind wires a provider output into a consumer input, replacing any previous
// binding of that input. The edge from provider to consumer is created when
// missing, so Bind fails like Connect on a cycle.
func (g *DAG) Bind(consumer uuid.UUID, input string, provider uuid.UUID, output string) error {
	cv, ok := g.vertices[consumer]
	if !ok {
		return fmt.Errorf("consumer %w: %s", ErrNodeNotFound, consumer)
	}
	pv, ok := g.vertices[provider]
	if !ok {
		return fmt.Errorf("provider %w: %s", ErrNodeNotFound, provider)
	}
	if _, err := cv.node.Input(input); err != nil {
		return err
	}
	if _, err := pv.node.Output(output); err != nil {
		return err
	}
	if !g.HasEdge(provider, consumer) {
		if err := g.Connect(provider, consumer); err != nil {
			return err
		}
	}
	g.bindings[inputKey{consumer, input}] = Binding{
		Provider: provider,
		Output:   output,
		Consumer: consumer,
		Input:    input,
	}
	return nil
}

// Unbind clears the binding of a consumer input. The edge is kept.
func (g *DAG) Unbind(consumer uuid.UUID, input string) {
	delete(g.bindings, inputKey{consumer, input})
}

// BindingOf returns the binding feeding a consumer input.
func (g *DAG) BindingOf(consumer uuid.UUID, input string) (Binding, bool) {
	b, ok := g.bindings[inputKey{consumer, input}]
	return b, ok
}

// InputLocation returns the location string of whatever feeds the input,
// or "" when it is unbound.
func (g *DAG) InputLocation(consumer uuid.UUID, input string) string {
	b, ok := g.BindingOf(consumer, input)
	if !ok {
		return ""
	}
	return packet.Location(b.Provider, b.Output)
}

// BindingsFrom returns the bindings reading any output of provider, ordered
// by consumer then by the consumer's input declaration order.
func (g *DAG) BindingsFrom(provider uuid.UUID) []Binding {
	var out []Binding
	for _, c := range g.Consumers(provider) {
		for _, in := range c.Inputs() {
			if b, ok := g.bindings[inputKey{c.ID(), in.Name}]; ok && b.Provider == provider {
				out = append(out, b)
			}
		}
	}
	return out
}

// BindingsTo returns the bindings of a consumer in input declaration order.
func (g *DAG) BindingsTo(consumer uuid.UUID) []Binding {
	v, ok := g.vertices[consumer]
	if !ok {
		return nil
	}
	var out []Binding
	for _, in := range v.node.Inputs() {
		if b, ok := g.bindings[inputKey{consumer, in.Name}]; ok {
			out = append(out, b)
		}
	}
	return out
}

// BindingsOn returns the bindings carried by the edge provider -> consumer.
func (g *DAG) BindingsOn(provider, consumer uuid.UUID) []Binding {
	var out []Binding
	for _, b := range g.BindingsTo(consumer) {
		if b.Provider == provider {
			out = append(out, b)
		}
	}
	return out
}
