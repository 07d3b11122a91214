package dag

import (
	"errors"
	"fmt"

	"github.com/gammazero/toposort"
	"github.com/google/uuid"
	"github.com/vk/depends/internal/node"
	"github.com/vk/depends/internal/packet"
	"github.com/vk/depends/internal/variables"
)

var (
	ErrNodeNotFound = errors.New("dag: node not found")
	ErrNodeExists   = errors.New("dag: node already in graph")
	ErrNameTaken    = errors.New("dag: node name already in use")
	ErrSelfEdge     = errors.New("dag: self-referential edge not allowed")
	ErrEdgeExists   = errors.New("dag: edge already exists")
	ErrEdgeNotFound = errors.New("dag: edge not found")
	ErrCycle        = errors.New("dag: cycle detected, graph is not acyclic")
)

// New creates an empty workflow with its own variable table.
func New(types *packet.Types) *DAG {
	return &DAG{
		vertices: make(map[uuid.UUID]*vertex),
		bindings: make(map[inputKey]Binding),
		vars:     variables.New(),
		types:    types,
	}
}

// Vars returns the workflow's variable table.
func (g *DAG) Vars() *variables.Table { return g.vars }

// SetVars replaces the workflow's variable table and rebinds every node to
// it.
func (g *DAG) SetVars(vars *variables.Table) {
	g.vars = vars
	for _, v := range g.vertices {
		v.node.SetVars(vars)
	}
}

// Types returns the packet type registry nodes were built against.
func (g *DAG) Types() *packet.Types { return g.types }

// Replace swaps the whole content of g for that of other. It is used to
// commit a graph built on the side.
func (g *DAG) Replace(other *DAG) {
	*g = *other
}

// AddNode inserts n. Its name must be unique within the graph.
func (g *DAG) AddNode(n *node.Node, stale bool) error {
	if _, ok := g.vertices[n.ID()]; ok {
		return fmt.Errorf("%w: %s", ErrNodeExists, n.ID())
	}
	if _, ok := g.NodeNamed(n.Name()); ok {
		return fmt.Errorf("%w: %q", ErrNameTaken, n.Name())
	}
	n.SetVars(g.vars)
	g.vertices[n.ID()] = &vertex{
		node:       n,
		stale:      stale,
		deps:       make(map[uuid.UUID]*vertex),
		dependents: make(map[uuid.UUID]*vertex),
	}
	g.order = append(g.order, n.ID())
	return nil
}

// RemoveNode deletes a node together with its edges, bindings and group
// memberships.
func (g *DAG) RemoveNode(id uuid.UUID) error {
	v, ok := g.vertices[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	for depID := range v.deps {
		g.removeEdge(depID, id)
	}
	for depID := range v.dependents {
		g.removeEdge(id, depID)
	}
	g.removeFromGroups(id)
	delete(g.vertices, id)
	for i, oid := range g.order {
		if oid == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	return nil
}

// Node returns the node with the given identifier.
func (g *DAG) Node(id uuid.UUID) (*node.Node, bool) {
	v, ok := g.vertices[id]
	if !ok {
		return nil, false
	}
	return v.node, true
}

// NodeNamed returns the node with the given name.
func (g *DAG) NodeNamed(name string) (*node.Node, bool) {
	for _, id := range g.order {
		if n := g.vertices[id].node; n.Name() == name {
			return n, true
		}
	}
	return nil, false
}

// Nodes returns every node in insertion order.
func (g *DAG) Nodes() []*node.Node {
	out := make([]*node.Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.vertices[id].node)
	}
	return out
}

// Rename gives a node a new, unique name.
func (g *DAG) Rename(id uuid.UUID, name string) error {
	v, ok := g.vertices[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	clean := node.CleanName(name)
	if other, ok := g.NodeNamed(clean); ok && other.ID() != id {
		return fmt.Errorf("%w: %q", ErrNameTaken, clean)
	}
	v.node.SetName(clean)
	return nil
}

// Connect adds an edge from provider to consumer. The edge is rejected, and
// the graph left untouched, if it would introduce a cycle anywhere.
func (g *DAG) Connect(provider, consumer uuid.UUID) error {
	if provider == consumer {
		return fmt.Errorf("%w: %s", ErrSelfEdge, provider)
	}
	from, ok := g.vertices[provider]
	if !ok {
		return fmt.Errorf("source %w: %s", ErrNodeNotFound, provider)
	}
	to, ok := g.vertices[consumer]
	if !ok {
		return fmt.Errorf("destination %w: %s", ErrNodeNotFound, consumer)
	}
	if _, ok := to.deps[provider]; ok {
		return fmt.Errorf("%w: %s -> %s", ErrEdgeExists, from.node.Name(), to.node.Name())
	}

	to.deps[provider] = from
	from.dependents[consumer] = to

	if err := g.DetectCycles(); err != nil {
		delete(to.deps, provider)
		delete(from.dependents, consumer)
		return fmt.Errorf("connecting %s -> %s: %w", from.node.Name(), to.node.Name(), err)
	}
	return nil
}

// Disconnect removes the edge from provider to consumer and every binding
// carried by it.
func (g *DAG) Disconnect(provider, consumer uuid.UUID) error {
	if !g.HasEdge(provider, consumer) {
		return fmt.Errorf("%w: %s -> %s", ErrEdgeNotFound, provider, consumer)
	}
	g.removeEdge(provider, consumer)
	return nil
}

func (g *DAG) removeEdge(provider, consumer uuid.UUID) {
	from, to := g.vertices[provider], g.vertices[consumer]
	delete(to.deps, provider)
	delete(from.dependents, consumer)
	for key, b := range g.bindings {
		if b.Provider == provider && b.Consumer == consumer {
			delete(g.bindings, key)
		}
	}
}

// HasEdge reports whether consumer directly depends on provider.
func (g *DAG) HasEdge(provider, consumer uuid.UUID) bool {
	to, ok := g.vertices[consumer]
	if !ok {
		return false
	}
	_, ok = to.deps[provider]
	return ok
}

// Edges returns every edge, ordered by the insertion order of their
// endpoints.
func (g *DAG) Edges() []Edge {
	var edges []Edge
	for _, from := range g.order {
		v := g.vertices[from]
		for _, to := range g.order {
			if _, ok := v.dependents[to]; ok {
				edges = append(edges, Edge{From: from, To: to})
			}
		}
	}
	return edges
}

// Providers returns the direct providers of a node.
func (g *DAG) Providers(id uuid.UUID) []*node.Node {
	v, ok := g.vertices[id]
	if !ok {
		return nil
	}
	return g.ordered(v.deps)
}

// Consumers returns the direct consumers of a node.
func (g *DAG) Consumers(id uuid.UUID) []*node.Node {
	v, ok := g.vertices[id]
	if !ok {
		return nil
	}
	return g.ordered(v.dependents)
}

// AllProviders returns every node the given node transitively depends on.
func (g *DAG) AllProviders(id uuid.UUID) []*node.Node {
	return g.reach(id, func(v *vertex) map[uuid.UUID]*vertex { return v.deps })
}

// AllConsumers returns every node transitively depending on the given node.
func (g *DAG) AllConsumers(id uuid.UUID) []*node.Node {
	return g.reach(id, func(v *vertex) map[uuid.UUID]*vertex { return v.dependents })
}

func (g *DAG) reach(id uuid.UUID, next func(*vertex) map[uuid.UUID]*vertex) []*node.Node {
	start, ok := g.vertices[id]
	if !ok {
		return nil
	}
	seen := make(map[uuid.UUID]*vertex)
	stack := []*vertex{start}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for nid, nv := range next(v) {
			if _, ok := seen[nid]; !ok {
				seen[nid] = nv
				stack = append(stack, nv)
			}
		}
	}
	return g.ordered(seen)
}

// ordered lists the nodes of set in graph insertion order.
func (g *DAG) ordered(set map[uuid.UUID]*vertex) []*node.Node {
	out := make([]*node.Node, 0, len(set))
	for _, id := range g.order {
		if v, ok := set[id]; ok {
			out = append(out, v.node)
		}
	}
	return out
}

// DetectCycles checks the graph for any cycles. It returns a non-nil error
// if a cycle is found, naming the first node involved in the detected cycle.
func (g *DAG) DetectCycles() error {
	// Classic depth-first search with three sets of nodes:
	// permanent: nodes that have been fully visited and are not part of a cycle.
	// temporary: nodes currently in the recursion stack for the current traversal.
	// unvisited: all other nodes.
	permanent := make(map[uuid.UUID]bool)
	temporary := make(map[uuid.UUID]bool)

	var visit func(v *vertex) error
	visit = func(v *vertex) error {
		id := v.node.ID()
		if permanent[id] {
			return nil
		}
		if temporary[id] {
			return fmt.Errorf("%w: involving node '%s'", ErrCycle, v.node.Name())
		}

		temporary[id] = true
		for _, dependent := range v.dependents {
			if err := visit(dependent); err != nil {
				return err
			}
		}
		delete(temporary, id)
		permanent[id] = true

		return nil
	}

	for _, id := range g.order {
		if err := visit(g.vertices[id]); err != nil {
			return err
		}
	}
	return nil
}

// TopologicalOrder returns every node, providers before consumers.
func (g *DAG) TopologicalOrder() ([]*node.Node, error) {
	edges := g.Edges()
	out := make([]*node.Node, 0, len(g.order))
	for _, id := range g.order {
		if v := g.vertices[id]; len(v.deps) == 0 && len(v.dependents) == 0 {
			out = append(out, v.node)
		}
	}
	if len(edges) == 0 {
		return out, nil
	}

	tedges := make([]toposort.Edge, 0, len(edges))
	for _, e := range edges {
		tedges = append(tedges, toposort.Edge{e.From, e.To})
	}
	sorted, err := toposort.Toposort(tedges)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCycle, err)
	}
	for _, id := range sorted {
		out = append(out, g.vertices[id.(uuid.UUID)].node)
	}
	return out, nil
}
