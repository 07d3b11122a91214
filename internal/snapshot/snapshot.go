package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/vk/depends/internal/ctxlog"
	"github.com/vk/depends/internal/dag"
	"github.com/vk/depends/internal/node"
	"github.com/vk/depends/internal/packet"
)

var ErrUnknownKind = errors.New("snapshot: node kind is not registered")

// KindSource resolves the kind names stored in snapshots.
type KindSource interface {
	Kind(name string) (node.Kind, bool)
}

// Take captures the current state of g.
func Take(g *dag.DAG) *Snapshot {
	s := &Snapshot{
		Nodes:     []Node{},
		Edges:     []Edge{},
		Groups:    []Group{},
		Variables: []Variable{},
	}
	for _, n := range g.Nodes() {
		sn := Node{
			Name:       n.Name(),
			Type:       n.KindName(),
			UUID:       n.ID().String(),
			Stale:      staleFlag(g.Stale(n.ID())),
			Inputs:     []Property{},
			Outputs:    []Output{},
			Attributes: []Property{},
		}
		for _, in := range n.Inputs() {
			sn.Inputs = append(sn.Inputs, Property{
				Name:  in.Name,
				Value: g.InputLocation(n.ID(), in.Name),
				Range: fromRange(in.Range),
			})
		}
		for _, out := range n.Outputs() {
			values := make(map[string]string, len(out.Values))
			for k, v := range out.Values {
				values[k] = v
			}
			sn.Outputs = append(sn.Outputs, Output{Name: out.Name, Value: values, Range: fromRange(out.Range)})
		}
		for _, a := range n.Attributes() {
			sn.Attributes = append(sn.Attributes, Property{Name: a.Name, Value: a.Value, Range: fromRange(a.Range)})
		}
		s.Nodes = append(s.Nodes, sn)
	}
	for _, e := range g.Edges() {
		s.Edges = append(s.Edges, Edge{From: e.From.String(), To: e.To.String()})
	}
	for _, grp := range g.Groups() {
		sg := Group{Name: grp.Name}
		for _, id := range grp.Nodes {
			sg.Nodes = append(sg.Nodes, id.String())
		}
		s.Groups = append(s.Groups, sg)
	}
	for _, v := range g.Vars().Changeable() {
		s.Variables = append(s.Variables, Variable{Name: v.Name, Value: v.Value})
	}
	return s
}

// Restore replaces the content of g with s. The new graph is built on the
// side and swapped in only once complete, so g is untouched on error.
// Read-only variables of g survive the restore.
func Restore(ctx context.Context, g *dag.DAG, s *Snapshot, kinds KindSource) error {
	logger := ctxlog.FromContext(ctx)
	fresh := dag.New(g.Types())
	fresh.SetVars(g.Vars().CloneReadOnly())

	for _, v := range s.Variables {
		if err := fresh.Vars().Set(v.Name, v.Value, false); err != nil {
			logger.Warn("Skipping saved variable.", "name", v.Name, "error", err)
		}
	}

	for _, sn := range s.Nodes {
		n, err := restoreNode(ctx, fresh, sn, kinds)
		if err != nil {
			return err
		}
		if err := fresh.AddNode(n, sn.Stale == "True"); err != nil {
			return fmt.Errorf("restoring node %s: %w", sn.Name, err)
		}
	}

	for _, e := range s.Edges {
		from, err := parseID(e.From)
		if err != nil {
			return err
		}
		to, err := parseID(e.To)
		if err != nil {
			return err
		}
		if err := fresh.Connect(from, to); err != nil {
			return fmt.Errorf("restoring edge: %w", err)
		}
	}

	// Bindings ride on the edges restored above.
	for _, sn := range s.Nodes {
		id, _ := parseID(sn.UUID)
		for _, in := range sn.Inputs {
			if in.Value == "" {
				continue
			}
			provider, output, err := packet.ParseLocation(in.Value)
			if err != nil {
				return fmt.Errorf("restoring input %s.%s: %w", sn.Name, in.Name, err)
			}
			if err := fresh.Bind(id, in.Name, provider, output); err != nil {
				return fmt.Errorf("restoring input %s.%s: %w", sn.Name, in.Name, err)
			}
		}
	}

	for _, sg := range s.Groups {
		var members []uuid.UUID
		for _, str := range sg.Nodes {
			id, err := parseID(str)
			if err != nil {
				return err
			}
			members = append(members, id)
		}
		if err := fresh.LoadGroup(sg.Name, members); err != nil {
			return fmt.Errorf("restoring group %s: %w", sg.Name, err)
		}
	}

	g.Replace(fresh)
	logger.Debug("Snapshot restored.", "nodes", len(s.Nodes), "edges", len(s.Edges), "groups", len(s.Groups))
	return nil
}

func restoreNode(ctx context.Context, g *dag.DAG, sn Node, kinds KindSource) (*node.Node, error) {
	logger := ctxlog.FromContext(ctx)
	kind, ok := kinds.Kind(sn.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %q (node %s)", ErrUnknownKind, sn.Type, sn.Name)
	}
	id, err := parseID(sn.UUID)
	if err != nil {
		return nil, err
	}
	n := node.NewWithID(kind, sn.Name, id, g.Types())

	for _, p := range sn.Inputs {
		if err := n.SetInputRange(p.Name, toRange(p.Range)); err != nil {
			logger.Warn("Skipping unknown input.", "node", sn.Name, "input", p.Name)
		}
	}
	for _, o := range sn.Outputs {
		if err := n.SetOutputRange(o.Name, toRange(o.Range)); err != nil {
			logger.Warn("Skipping unknown output.", "node", sn.Name, "output", o.Name)
			continue
		}
		for slot, v := range o.Value {
			if err := n.SetOutputValue(o.Name, slot, v); err != nil {
				logger.Warn("Skipping unknown output slot.", "node", sn.Name, "output", o.Name, "slot", slot)
			}
		}
	}
	for _, p := range sn.Attributes {
		if err := n.SetAttributeValue(p.Name, p.Value); err != nil {
			logger.Warn("Skipping unknown attribute.", "node", sn.Name, "attribute", p.Name)
			continue
		}
		_ = n.SetAttributeRange(p.Name, toRange(p.Range))
	}
	return n, nil
}

// Diff lists the names of nodes and the edges that differ between two
// snapshots: first those only in b or changed in b, then those only in a or
// changed in a.
func Diff(a, b *Snapshot) (nodes []string, edges []Edge) {
	for _, n := range b.Nodes {
		if !containsNode(a.Nodes, n) {
			nodes = append(nodes, n.Name)
		}
	}
	for _, n := range a.Nodes {
		if !containsNode(b.Nodes, n) {
			nodes = append(nodes, n.Name)
		}
	}
	for _, e := range b.Edges {
		if !containsEdge(a.Edges, e) {
			edges = append(edges, e)
		}
	}
	for _, e := range a.Edges {
		if !containsEdge(b.Edges, e) {
			edges = append(edges, e)
		}
	}
	return nodes, edges
}

func containsNode(list []Node, n Node) bool {
	for _, m := range list {
		if cmp.Equal(m, n, cmpopts.EquateEmpty()) {
			return true
		}
	}
	return false
}

func containsEdge(list []Edge, e Edge) bool {
	for _, m := range list {
		if m == e {
			return true
		}
	}
	return false
}

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: uuid %q: %v", ErrMalformed, s, err)
	}
	return id, nil
}

func fromRange(r *node.Range) *Range {
	if r == nil {
		return nil
	}
	return &Range{r.Start, r.End}
}

func toRange(r *Range) *node.Range {
	if r == nil {
		return nil
	}
	return &node.Range{Start: r[0], End: r[1]}
}

func staleFlag(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
