// Package plan resolves what a node needs, validates a workflow and turns it
// into an ordered list of labelled commands for a recipe to consume.
package plan

import (
	"fmt"

	"github.com/vk/depends/internal/dag"
	"github.com/vk/depends/internal/node"
	"github.com/vk/depends/internal/packet"
)

// Planner answers dependency questions about one workflow graph. It holds
// no state of its own, so it always reflects the current graph.
type Planner struct {
	g *dag.DAG
}

func New(g *dag.DAG) *Planner {
	return &Planner{g: g}
}

// ResolvedOutputType returns the concrete packet type an output carries.
// When the declared type has subtypes and the output is derived from a bound
// input, the output takes on the type resolved upstream, as long as it is
// still a member of the declared family.
func (p *Planner) ResolvedOutputType(n *node.Node, output string) (string, error) {
	out, err := n.Output(output)
	if err != nil {
		return "", err
	}
	types := p.g.Types()
	if len(types.Subtypes(out.Type)) == 0 {
		return out.Type, nil
	}
	in := n.AffectingInput(output)
	if in == nil {
		return out.Type, nil
	}
	b, ok := p.g.BindingOf(n.ID(), in.Name)
	if !ok {
		return out.Type, nil
	}
	provider, ok := p.g.Node(b.Provider)
	if !ok {
		return out.Type, nil
	}
	resolved, err := p.ResolvedOutputType(provider, b.Output)
	if err != nil {
		return "", err
	}
	if !types.IsA(resolved, out.Type) {
		return out.Type, nil
	}
	return resolved, nil
}

// OutputPacket builds the data packet an output currently describes.
func (p *Planner) OutputPacket(n *node.Node, output string) (*packet.DataPacket, error) {
	typ, err := p.ResolvedOutputType(n, output)
	if err != nil {
		return nil, err
	}
	out, err := n.Output(output)
	if err != nil {
		return nil, err
	}
	r, err := n.OutputRange(output)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", n.Name(), output, err)
	}
	slots := p.g.Types().Slots(typ)
	files := make(map[string]string, len(slots))
	for _, s := range slots {
		files[s] = n.Substitute(out.Values[s])
	}
	return &packet.DataPacket{
		Type:      typ,
		Source:    n,
		Output:    output,
		Filenames: files,
		Range:     r,
	}, nil
}

// InputPacket returns the packet bound to an input, or nil when the input
// is not bound.
func (p *Planner) InputPacket(n *node.Node, input string) (*packet.DataPacket, error) {
	b, ok := p.g.BindingOf(n.ID(), input)
	if !ok {
		return nil, nil
	}
	provider, ok := p.g.Node(b.Provider)
	if !ok {
		return nil, fmt.Errorf("%w: provider of %s.%s", dag.ErrNodeNotFound, n.Name(), input)
	}
	return p.OutputPacket(provider, b.Output)
}

// InputPackets returns the packets of every bound input of n.
func (p *Planner) InputPackets(n *node.Node) (node.Packets, error) {
	pks := make(node.Packets)
	for _, in := range n.Inputs() {
		pk, err := p.InputPacket(n, in.Name)
		if err != nil {
			return nil, err
		}
		if pk != nil {
			pks[in.Name] = pk
		}
	}
	return pks, nil
}
