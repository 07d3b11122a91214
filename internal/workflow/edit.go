package workflow

import (
	"context"
	"fmt"

	"github.com/vk/depends/internal/ctxlog"
	"github.com/vk/depends/internal/dag"
	"github.com/vk/depends/internal/framespec"
	"github.com/vk/depends/internal/node"
)

// Shake pulls n out of its chain. Its providers are connected to its
// consumers, inputs reading an output derived from one of n's inputs are
// rebound to whatever fed that input, and n is left unconnected.
func (w *Workflow) Shake(ctx context.Context, n *node.Node) error {
	providers := w.g.Providers(n.ID())
	consumers := w.g.Consumers(n.ID())

	for _, p := range providers {
		for _, c := range consumers {
			if w.g.HasEdge(p.ID(), c.ID()) {
				continue
			}
			if err := w.g.Connect(p.ID(), c.ID()); err != nil {
				return err
			}
		}
	}

	for _, b := range w.g.BindingsFrom(n.ID()) {
		in := n.AffectingInput(b.Output)
		if in == nil {
			continue
		}
		upstream, ok := w.g.BindingOf(n.ID(), in.Name)
		if !ok {
			continue
		}
		if err := w.g.Bind(b.Consumer, b.Input, upstream.Provider, upstream.Output); err != nil {
			return err
		}
		consumer, _ := w.g.Node(b.Consumer)
		if err := w.inputChanged(ctx, consumer, b.Input); err != nil {
			return err
		}
	}

	for _, c := range consumers {
		if err := w.Disconnect(ctx, n, c); err != nil {
			return err
		}
	}
	for _, p := range providers {
		if err := w.g.Disconnect(p.ID(), n.ID()); err != nil {
			return err
		}
	}
	for _, in := range n.Inputs() {
		in.Range = nil
	}
	ctxlog.FromContext(ctx).Debug("Node shaken out.", "node", n.Name())
	return nil
}

// Duplicate copies nodes under "<name>_Dupe" style names. Copies keep their
// settings but none of the connections.
func (w *Workflow) Duplicate(ctx context.Context, nodes ...*node.Node) ([]*node.Node, error) {
	var out []*node.Node
	for _, n := range nodes {
		dup := n.Duplicate(w.g.SafeName(n.Name() + "_Dupe"))
		for _, in := range dup.Inputs() {
			in.Range = nil
		}
		if err := w.g.AddNode(dup, false); err != nil {
			return nil, err
		}
		ctxlog.FromContext(ctx).Debug("Node duplicated.", "node", n.Name(), "copy", dup.Name())
		out = append(out, dup)
	}
	return out, nil
}

// VersionUp bumps the version number in every output filename of nodes.
func (w *Workflow) VersionUp(ctx context.Context, nodes ...*node.Node) error {
	for _, n := range nodes {
		for _, out := range n.Outputs() {
			for _, slot := range out.Slots {
				if v := out.Values[slot]; v != "" {
					out.Values[slot] = framespec.NextVersion(v)
				}
			}
			if err := w.outputChanged(ctx, n, out.Name); err != nil {
				return err
			}
		}
		w.g.SetStale(n.ID(), false)
		w.MarkImpactedStale(n)
	}
	return nil
}

// Group puts nodes in a new, automatically named group.
func (w *Workflow) Group(nodes ...*node.Node) (string, error) {
	name := w.g.UniqueGroupName()
	if err := w.g.AddGroup(name, ids(nodes)); err != nil {
		return "", err
	}
	return name, nil
}

// Ungroup removes the group made of exactly nodes.
func (w *Workflow) Ungroup(nodes ...*node.Node) error {
	grp, ok := w.g.GroupWithNodes(ids(nodes))
	if !ok {
		return fmt.Errorf("%w: no group holds exactly the %d given nodes", dag.ErrGroupNotFound, len(nodes))
	}
	return w.g.RemoveGroup(grp.Name)
}
