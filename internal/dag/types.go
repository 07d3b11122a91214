package dag

import (
	"github.com/google/uuid"
	"github.com/vk/depends/internal/node"
	"github.com/vk/depends/internal/packet"
	"github.com/vk/depends/internal/variables"
)

// DAG is a workflow: nodes, the edges between them, the bindings that wire
// outputs into inputs, staleness and groups. It also owns the workflow's
// variable table. A DAG is not safe for concurrent use; callers serialize
// access.
type DAG struct {
	// vertices stores every node keyed by its identifier.
	vertices map[uuid.UUID]*vertex
	// order keeps node insertion order so that listings are stable.
	order []uuid.UUID
	// bindings maps each bound input to the output feeding it.
	bindings map[inputKey]Binding
	groups   []*Group

	vars  *variables.Table
	types *packet.Types
}

// vertex wraps a node with its adjacency.
type vertex struct {
	node  *node.Node
	stale bool
	// deps holds the providers of this node (predecessors).
	deps map[uuid.UUID]*vertex
	// dependents holds the consumers of this node (successors).
	dependents map[uuid.UUID]*vertex
}

type inputKey struct {
	consumer uuid.UUID
	input    string
}

// Edge is a structural dependency: To cannot run before From.
type Edge struct {
	From uuid.UUID
	To   uuid.UUID
}

// Binding records that a consumer input reads the packet of a provider
// output. Every binding rides on an edge from provider to consumer.
type Binding struct {
	Provider uuid.UUID
	Output   string
	Consumer uuid.UUID
	Input    string
}

// Group is a named set of nodes whose per-frame commands are interleaved.
type Group struct {
	Name  string
	Nodes []uuid.UUID
}
