// Package workflow applies user edits to a workflow graph and propagates
// their consequences: downstream ranges are resynced, bindings that no
// longer type-check are cleared and results that may be outdated are
// flagged stale.
package workflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vk/depends/internal/ctxlog"
	"github.com/vk/depends/internal/dag"
	"github.com/vk/depends/internal/node"
	"github.com/vk/depends/internal/packet"
	"github.com/vk/depends/internal/plan"
)

// Workflow is an editing session over one graph.
type Workflow struct {
	g *dag.DAG
	p *plan.Planner
}

func New(g *dag.DAG) *Workflow {
	return &Workflow{g: g, p: plan.New(g)}
}

func (w *Workflow) Graph() *dag.DAG        { return w.g }
func (w *Workflow) Planner() *plan.Planner { return w.p }

// CreateNode adds a node of kind under a unique name derived from name, or
// from the kind name when name is empty. New nodes are not stale.
func (w *Workflow) CreateNode(ctx context.Context, kind node.Kind, name string) (*node.Node, error) {
	if name == "" {
		name = kind.Name()
	}
	n := node.New(kind, w.g.SafeName(name), w.g.Types())
	if err := w.g.AddNode(n, false); err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Node created.", "node", n.Name(), "kind", kind.Name())
	return n, nil
}

// Rename gives n a new unique name.
func (w *Workflow) Rename(n *node.Node, name string) error {
	return w.g.Rename(n.ID(), name)
}

// Connect adds a structural edge.
func (w *Workflow) Connect(provider, consumer *node.Node) error {
	return w.g.Connect(provider.ID(), consumer.ID())
}

// Disconnect removes the edge provider -> consumer. Inputs of consumer bound
// through the edge are cleared first and the change cascades downstream.
func (w *Workflow) Disconnect(ctx context.Context, provider, consumer *node.Node) error {
	if !w.g.HasEdge(provider.ID(), consumer.ID()) {
		return fmt.Errorf("%w: %s -> %s", dag.ErrEdgeNotFound, provider.Name(), consumer.Name())
	}
	for _, b := range w.g.BindingsOn(provider.ID(), consumer.ID()) {
		if err := w.clearInput(ctx, consumer, b.Input); err != nil {
			return err
		}
	}
	return w.g.Disconnect(provider.ID(), consumer.ID())
}

// RemoveNodes deletes nodes, clearing the inputs that read from them.
func (w *Workflow) RemoveNodes(ctx context.Context, nodes ...*node.Node) error {
	for _, n := range nodes {
		for _, c := range w.g.Consumers(n.ID()) {
			if err := w.Disconnect(ctx, n, c); err != nil {
				return err
			}
		}
		if err := w.g.RemoveNode(n.ID()); err != nil {
			return err
		}
		ctxlog.FromContext(ctx).Debug("Node removed.", "node", n.Name())
	}
	return nil
}

// SetInput binds an input to the output named by location, or clears it
// when location is empty. The edge carrying the binding is created if
// needed.
func (w *Workflow) SetInput(ctx context.Context, n *node.Node, input, location string) error {
	if location == "" {
		if err := w.clearInput(ctx, n, input); err != nil {
			return err
		}
		w.MarkImpactedStale(n)
		return nil
	}
	id, output, err := packet.ParseLocation(location)
	if err != nil {
		return err
	}
	if err := w.g.Bind(n.ID(), input, id, output); err != nil {
		return err
	}
	if err := w.inputChanged(ctx, n, input); err != nil {
		return err
	}
	w.MarkImpactedStale(n)
	return nil
}

// Link binds consumer.input to provider.output.
func (w *Workflow) Link(ctx context.Context, provider *node.Node, output string, consumer *node.Node, input string) error {
	return w.SetInput(ctx, consumer, input, packet.Location(provider.ID(), output))
}

// SetInputRange edits an input range. The output derived from the input
// follows it.
func (w *Workflow) SetInputRange(ctx context.Context, n *node.Node, input string, r *node.Range) error {
	if err := n.SetInputRange(input, r); err != nil {
		return err
	}
	out := n.AffectedOutput(input)
	if out == nil {
		return nil
	}
	if err := n.SetOutputRange(out.Name, r); err != nil {
		return err
	}
	return w.outputChanged(ctx, n, out.Name)
}

// SetOutputValue edits the filename of an output slot. The node itself is
// considered up to date afterwards while its dependents may be stale.
func (w *Workflow) SetOutputValue(ctx context.Context, n *node.Node, output, slot, value string) error {
	if err := n.SetOutputValue(output, slot, value); err != nil {
		return err
	}
	w.g.SetStale(n.ID(), false)
	if err := w.outputChanged(ctx, n, output); err != nil {
		return err
	}
	w.MarkImpactedStale(n)
	return nil
}

// SetOutputRange edits an output range. Staleness is left untouched.
func (w *Workflow) SetOutputRange(ctx context.Context, n *node.Node, output string, r *node.Range) error {
	if err := n.SetOutputRange(output, r); err != nil {
		return err
	}
	return w.outputChanged(ctx, n, output)
}

// SetAttribute edits an attribute value.
func (w *Workflow) SetAttribute(n *node.Node, name, value string) error {
	if err := n.SetAttributeValue(name, value); err != nil {
		return err
	}
	w.MarkImpactedStale(n)
	return nil
}

func (w *Workflow) SetAttributeRange(n *node.Node, name string, r *node.Range) error {
	return n.SetAttributeRange(name, r)
}

// MarkImpactedStale flags every node affected by n whose results are on
// disk. It returns the nodes it flagged.
func (w *Workflow) MarkImpactedStale(n *node.Node) []*node.Node {
	var marked []*node.Node
	for _, x := range w.p.ImpactOf(n) {
		if w.hasData(x) {
			w.g.SetStale(x.ID(), true)
			marked = append(marked, x)
		}
	}
	return marked
}

// ClearStale resets the stale flag of nodes.
func (w *Workflow) ClearStale(nodes ...*node.Node) {
	for _, n := range nodes {
		w.g.SetStale(n.ID(), false)
	}
}

// hasData reports whether any output of n is present on disk.
func (w *Workflow) hasData(n *node.Node) bool {
	for _, out := range n.Outputs() {
		pk, err := w.p.OutputPacket(n, out.Name)
		if err == nil && pk.DataPresent() {
			return true
		}
	}
	return false
}

// Execute plans target and hands the result to the recipe in opts.
func (w *Workflow) Execute(ctx context.Context, target *node.Node, opts plan.Options) (*plan.Plan, error) {
	return w.p.Build(ctx, target, opts)
}

// inputChanged resyncs an input's range, and that of the output derived
// from it, to the packet now bound, then cascades the output change.
func (w *Workflow) inputChanged(ctx context.Context, n *node.Node, input string) error {
	ctxlog.FromContext(ctx).Debug("Input changed.", "node", n.Name(), "input", input)
	in, err := n.Input(input)
	if err != nil {
		return err
	}
	out := n.AffectedOutput(input)

	if b, ok := w.g.BindingOf(n.ID(), input); ok {
		provider, _ := w.g.Node(b.Provider)
		typ, err := w.p.ResolvedOutputType(provider, b.Output)
		if err != nil {
			return err
		}
		if w.g.Types().IsA(typ, in.Type) {
			pout, err := provider.Output(b.Output)
			if err != nil {
				return err
			}
			in.Range = cloneRange(pout.Range)
			if out != nil {
				out.Range = cloneRange(pout.Range)
			}
		}
	}

	if out == nil {
		return nil
	}
	return w.outputChanged(ctx, n, out.Name)
}

// outputChanged visits every input bound to the output: inputs that no
// longer accept the resolved type are cleared, the others are resynced.
func (w *Workflow) outputChanged(ctx context.Context, n *node.Node, output string) error {
	typ, err := w.p.ResolvedOutputType(n, output)
	if err != nil {
		return err
	}
	for _, b := range w.g.BindingsFrom(n.ID()) {
		if b.Output != output {
			continue
		}
		consumer, _ := w.g.Node(b.Consumer)
		in, err := consumer.Input(b.Input)
		if err != nil {
			return err
		}
		if !w.g.Types().IsA(typ, in.Type) {
			ctxlog.FromContext(ctx).Debug("Clearing incompatible input.", "node", consumer.Name(), "input", in.Name, "type", typ)
			if err := w.clearInput(ctx, consumer, b.Input); err != nil {
				return err
			}
			continue
		}
		if err := w.inputChanged(ctx, consumer, b.Input); err != nil {
			return err
		}
	}
	return nil
}

func (w *Workflow) clearInput(ctx context.Context, n *node.Node, input string) error {
	w.g.Unbind(n.ID(), input)
	if err := n.SetInputRange(input, nil); err != nil {
		return err
	}
	return w.inputChanged(ctx, n, input)
}

func cloneRange(r *node.Range) *node.Range {
	if r == nil {
		return nil
	}
	cp := *r
	return &cp
}

func ids(nodes []*node.Node) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID())
	}
	return out
}
