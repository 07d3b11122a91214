package dag

import (
	"github.com/google/uuid"
	"github.com/vk/depends/internal/node"
)

// SetStale flags whether the on-disk results of a node may be outdated.
func (g *DAG) SetStale(id uuid.UUID, stale bool) {
	if v, ok := g.vertices[id]; ok {
		v.stale = stale
	}
}

// Stale reports the stale flag of a node.
func (g *DAG) Stale(id uuid.UUID) bool {
	v, ok := g.vertices[id]
	return ok && v.stale
}

// StaleNodes returns every stale node in insertion order.
func (g *DAG) StaleNodes() []*node.Node {
	var out []*node.Node
	for _, id := range g.order {
		if v := g.vertices[id]; v.stale {
			out = append(out, v.node)
		}
	}
	return out
}
