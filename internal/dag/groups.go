package dag

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrGroupExists    = errors.New("dag: group already exists")
	ErrGroupNotFound  = errors.New("dag: group not found")
	ErrEmptyGroup     = errors.New("dag: group has no nodes")
	ErrAlreadyGrouped = errors.New("dag: node already belongs to a group")
	ErrNotPerItem     = errors.New("dag: node kind cannot run per item")
)

// AddGroup creates a group. Every member must be able to run per item and
// may not already belong to another group.
func (g *DAG) AddGroup(name string, ids []uuid.UUID) error {
	if err := g.checkNewGroup(name, ids); err != nil {
		return err
	}
	for _, id := range ids {
		n := g.vertices[id].node
		if !n.Kind().PerItem() {
			return fmt.Errorf("%w: %s (%s)", ErrNotPerItem, n.Name(), n.KindName())
		}
		if other, ok := g.GroupOf(id); ok {
			return fmt.Errorf("%w: %s is in %s", ErrAlreadyGrouped, n.Name(), other.Name)
		}
	}
	g.groups = append(g.groups, &Group{Name: name, Nodes: append([]uuid.UUID(nil), ids...)})
	return nil
}

// LoadGroup creates a group checking only that its members exist. It is
// meant for restoring persisted workflows, which planning validates later.
func (g *DAG) LoadGroup(name string, ids []uuid.UUID) error {
	if err := g.checkNewGroup(name, ids); err != nil {
		return err
	}
	g.groups = append(g.groups, &Group{Name: name, Nodes: append([]uuid.UUID(nil), ids...)})
	return nil
}

func (g *DAG) checkNewGroup(name string, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: %q", ErrEmptyGroup, name)
	}
	if _, ok := g.Group(name); ok {
		return fmt.Errorf("%w: %q", ErrGroupExists, name)
	}
	if existing, ok := g.GroupWithNodes(ids); ok {
		return fmt.Errorf("%w: same nodes as %q", ErrGroupExists, existing.Name)
	}
	for _, id := range ids {
		if _, ok := g.vertices[id]; !ok {
			return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
		}
	}
	return nil
}

// RemoveGroup deletes a group. Its nodes are left in the graph.
func (g *DAG) RemoveGroup(name string) error {
	for i, grp := range g.groups {
		if grp.Name == name {
			g.groups = append(g.groups[:i], g.groups[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrGroupNotFound, name)
}

// Group returns the group with the given name.
func (g *DAG) Group(name string) (Group, bool) {
	for _, grp := range g.groups {
		if grp.Name == name {
			return copyGroup(grp), true
		}
	}
	return Group{}, false
}

// GroupWithNodes returns the group holding exactly the given nodes.
func (g *DAG) GroupWithNodes(ids []uuid.UUID) (Group, bool) {
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	for _, grp := range g.groups {
		if len(grp.Nodes) != len(want) {
			continue
		}
		match := true
		for _, id := range grp.Nodes {
			if !want[id] {
				match = false
				break
			}
		}
		if match {
			return copyGroup(grp), true
		}
	}
	return Group{}, false
}

// GroupOf returns the first group a node belongs to.
func (g *DAG) GroupOf(id uuid.UUID) (Group, bool) {
	for _, grp := range g.groups {
		for _, m := range grp.Nodes {
			if m == id {
				return copyGroup(grp), true
			}
		}
	}
	return Group{}, false
}

// GroupCount returns how many groups a node belongs to.
func (g *DAG) GroupCount(id uuid.UUID) int {
	count := 0
	for _, grp := range g.groups {
		for _, m := range grp.Nodes {
			if m == id {
				count++
				break
			}
		}
	}
	return count
}

// Groups returns every group in creation order.
func (g *DAG) Groups() []Group {
	out := make([]Group, 0, len(g.groups))
	for _, grp := range g.groups {
		out = append(out, copyGroup(grp))
	}
	return out
}

func (g *DAG) removeFromGroups(id uuid.UUID) {
	kept := g.groups[:0]
	for _, grp := range g.groups {
		members := grp.Nodes[:0]
		for _, m := range grp.Nodes {
			if m != id {
				members = append(members, m)
			}
		}
		grp.Nodes = members
		if len(members) > 0 {
			kept = append(kept, grp)
		}
	}
	g.groups = kept
}

func copyGroup(grp *Group) Group {
	return Group{Name: grp.Name, Nodes: append([]uuid.UUID(nil), grp.Nodes...)}
}
