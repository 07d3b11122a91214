package plan

import (
	"github.com/google/uuid"
	"github.com/vk/depends/internal/node"
	"github.com/vk/depends/internal/packet"
)

// upstream returns the packets feeding n, in input declaration order. With
// onlyUnfulfilled set, packets whose files are all on disk are left out.
func (p *Planner) upstream(n *node.Node, onlyUnfulfilled bool) ([]*packet.DataPacket, error) {
	var out []*packet.DataPacket
	for _, b := range p.g.BindingsTo(n.ID()) {
		pk, err := p.InputPacket(n, b.Input)
		if err != nil {
			return nil, err
		}
		if onlyUnfulfilled && pk.DataPresent() {
			continue
		}
		out = append(out, pk)
	}
	return out, nil
}

// OrderedDependencies returns the nodes that must run for target to run,
// providers first. A provider whose output is already on disk stops the
// walk when onlyUnfulfilled is set. The target itself ends the list when
// includeTarget is set.
func (p *Planner) OrderedDependencies(target *node.Node, includeTarget, onlyUnfulfilled bool) ([]*node.Node, error) {
	queued := make(map[uuid.UUID]bool)
	var queue []*node.Node
	enqueue := func(pks []*packet.DataPacket) {
		for _, pk := range pks {
			id := pk.Source.ID()
			if queued[id] {
				continue
			}
			if n, ok := p.g.Node(id); ok {
				queued[id] = true
				queue = append(queue, n)
			}
		}
	}

	required, err := p.upstream(target, onlyUnfulfilled)
	if err != nil {
		return nil, err
	}
	enqueue(required)
	for i := 0; i < len(queue); i++ {
		pks, err := p.upstream(queue[i], onlyUnfulfilled)
		if err != nil {
			return nil, err
		}
		enqueue(pks)
	}

	// Emit the discovered set in post-order from the target so that every
	// provider precedes its consumers, diamonds included.
	var ordered []*node.Node
	visited := make(map[uuid.UUID]bool)
	var visit func(n *node.Node)
	visit = func(n *node.Node) {
		for _, b := range p.g.BindingsTo(n.ID()) {
			if !queued[b.Provider] || visited[b.Provider] {
				continue
			}
			visited[b.Provider] = true
			provider, _ := p.g.Node(b.Provider)
			visit(provider)
			ordered = append(ordered, provider)
		}
	}
	visit(target)

	if includeTarget {
		ordered = append(ordered, target)
	}
	return ordered, nil
}

// ImpactOf returns every node reading, directly or transitively, any output
// of n. These are the nodes whose results change when n changes.
func (p *Planner) ImpactOf(n *node.Node) []*node.Node {
	seen := make(map[uuid.UUID]bool)
	queue := []uuid.UUID{n.ID()}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, b := range p.g.BindingsFrom(id) {
			if !seen[b.Consumer] {
				seen[b.Consumer] = true
				queue = append(queue, b.Consumer)
			}
		}
	}
	var out []*node.Node
	for _, cand := range p.g.Nodes() {
		if seen[cand.ID()] {
			out = append(out, cand)
		}
	}
	return out
}
