package plan

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vk/depends/internal/ctxlog"
	"github.com/vk/depends/internal/node"
)

// Step is one labelled command of a plan.
type Step struct {
	Label   string
	Command node.Command
}

// Plan is the outcome of planning a target.
type Plan struct {
	Target *node.Node
	// Order lists the nodes planned, providers first, target last.
	Order []*node.Node
	Steps []Step
}

// Recipe turns a plan into something runnable, a shell script for example.
// The engine never runs commands itself.
type Recipe interface {
	Name() string
	Generate(ctx context.Context, steps []Step, destination string, runNow bool) error
}

// Options control Build.
type Options struct {
	// Recipe receives the steps once planning succeeds. Nil skips emission.
	Recipe      Recipe
	Destination string
	RunNow      bool
}

type phase int

const (
	phasePre phase = iota
	phaseMain
	phasePost
)

// batch holds the commands of one phase of one node. A merged group batch
// has no node and lists the group members instead.
type batch struct {
	node     *node.Node
	members  []*node.Node
	label    string
	phase    phase
	commands []node.Command
}

// Build plans target: it orders the unfulfilled dependencies, validates
// them, collects each node's commands, interleaves groups and hands the
// result to the recipe.
func (p *Planner) Build(ctx context.Context, target *node.Node, opts Options) (*Plan, error) {
	ctx = ctxlog.With(ctx, "target", target.Name())
	logger := ctxlog.FromContext(ctx)

	order, err := p.OrderedDependencies(target, true, true)
	if err != nil {
		return nil, fmt.Errorf("resolving dependencies of %s: %w", target.Name(), err)
	}
	if err := p.Validate(ctx, order); err != nil {
		return nil, err
	}

	var batches []batch
	for _, n := range order {
		nb, err := p.nodeBatches(n)
		if err != nil {
			return nil, err
		}
		batches = append(batches, nb...)
	}
	batches = p.interleave(batches)

	plan := &Plan{Target: target, Order: order}
	for _, b := range batches {
		for _, cmd := range b.commands {
			if len(cmd) > 0 {
				plan.Steps = append(plan.Steps, Step{Label: b.label, Command: cmd})
			}
		}
	}
	logger.Debug("Plan built.", "nodes", len(order), "steps", len(plan.Steps))

	if opts.Recipe != nil {
		logger.Debug("Handing plan to recipe.", "recipe", opts.Recipe.Name(), "destination", opts.Destination)
		if err := opts.Recipe.Generate(ctx, plan.Steps, opts.Destination, opts.RunNow); err != nil {
			return nil, fmt.Errorf("recipe %s: %w", opts.Recipe.Name(), err)
		}
	}
	return plan, nil
}

func (p *Planner) nodeBatches(n *node.Node) ([]batch, error) {
	in, err := p.InputPackets(n)
	if err != nil {
		return nil, err
	}
	kind := n.Kind()
	var out []batch

	pre, err := kind.PreProcess(n, in)
	if err != nil {
		return nil, fmt.Errorf("%s pre-processing: %w", n.Name(), err)
	}
	if len(pre) > 0 {
		out = append(out, batch{node: n, label: n.Name() + " [Pre-execution]", phase: phasePre, commands: []node.Command{pre}})
	}

	split := p.g.GroupCount(n.ID()) > 0
	cmds, err := kind.Execute(n, in, split)
	if err != nil {
		return nil, fmt.Errorf("%s execution: %w", n.Name(), err)
	}
	out = append(out, batch{node: n, label: n.Name(), phase: phaseMain, commands: cmds})

	post, err := kind.PostProcess(n, in)
	if err != nil {
		return nil, fmt.Errorf("%s post-processing: %w", n.Name(), err)
	}
	if len(post) > 0 {
		out = append(out, batch{node: n, label: n.Name() + " [Post-execution]", phase: phasePost, commands: []node.Command{post}})
	}
	return out, nil
}

// interleave replaces the execute batches of each group's members by a
// single batch running item 1 of every member, then item 2, and so on. The
// merged batch takes the place of the last member's execute batch. Member
// pre batches run before it and member post batches right after it. A
// non-member planned between two members is moved behind the group when it
// reads from a member.
func (p *Planner) interleave(batches []batch) []batch {
	for _, grp := range p.g.Groups() {
		members := make(map[uuid.UUID]bool, len(grp.Nodes))
		for _, id := range grp.Nodes {
			members[id] = true
		}
		isMember := func(b batch) bool { return b.node != nil && members[b.node.ID()] }

		first, last := -1, -1
		var lists [][]node.Command
		var nodes []*node.Node
		for i, b := range batches {
			if isMember(b) && b.phase == phaseMain {
				if first < 0 {
					first = i
				}
				last = i
				lists = append(lists, b.commands)
				nodes = append(nodes, b.node)
			}
		}
		if first < 0 {
			continue
		}

		var before, posts, after []batch
		for i, b := range batches {
			switch {
			case isMember(b) && b.phase == phaseMain:
			case isMember(b) && b.phase == phasePost:
				posts = append(posts, b)
			case isMember(b):
				before = append(before, b)
			case i < first:
				before = append(before, b)
			case i > last || p.readsFrom(b, members):
				after = append(after, b)
			default:
				before = append(before, b)
			}
		}

		merged := batch{members: nodes, label: grp.Name, phase: phaseMain, commands: roundRobin(lists)}
		out := make([]batch, 0, len(batches))
		out = append(out, before...)
		out = append(out, merged)
		out = append(out, posts...)
		out = append(out, after...)
		batches = out
	}
	return batches
}

// readsFrom reports whether the node, or any member of a merged batch,
// transitively depends on one of ids.
func (p *Planner) readsFrom(b batch, ids map[uuid.UUID]bool) bool {
	nodes := b.members
	if b.node != nil {
		nodes = []*node.Node{b.node}
	}
	for _, n := range nodes {
		for _, prov := range p.g.AllProviders(n.ID()) {
			if ids[prov.ID()] {
				return true
			}
		}
	}
	return false
}

func roundRobin(lists [][]node.Command) []node.Command {
	longest := 0
	for _, l := range lists {
		longest = max(longest, len(l))
	}
	var out []node.Command
	for i := 0; i < longest; i++ {
		for _, l := range lists {
			if i < len(l) {
				out = append(out, l[i])
			}
		}
	}
	return out
}
