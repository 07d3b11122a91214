package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vk/depends/internal/ctxlog"
	"github.com/vk/depends/internal/node"
	"github.com/vk/depends/internal/plan"
	"github.com/vk/depends/internal/workflow"
)

// ErrNothingToPlan is returned when a workflow has no node to plan.
var ErrNothingToPlan = errors.New("app: workflow has no nodes")

// Run opens the configured workflow and plans the configured target, or
// every node nothing consumes when no target is set. Plans are handed to
// the configured recipe.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	recipe, ok := a.registry.Recipe(a.config.Recipe)
	if !ok {
		return fmt.Errorf("unknown recipe %q, available: %s", a.config.Recipe, strings.Join(a.registry.RecipeNames(), ", "))
	}

	w, err := a.OpenWorkflow(ctx, a.config.WorkflowPath)
	if err != nil {
		return err
	}

	targets, err := a.targets(w)
	if err != nil {
		return err
	}

	opts := plan.Options{
		Recipe:      recipe,
		Destination: a.config.Destination,
		RunNow:      a.config.RunNow,
	}
	for _, target := range targets {
		a.logger.Info("Planning node.", "node", target.Name(), "recipe", recipe.Name())
		p, err := w.Execute(ctx, target, opts)
		if err != nil {
			return fmt.Errorf("planning %s failed: %w", target.Name(), err)
		}
		if len(p.Steps) == 0 {
			a.logger.Info("Node is up to date, nothing to do.", "node", target.Name())
		}
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// targets resolves the nodes to plan, providers first.
func (a *App) targets(w *workflow.Workflow) ([]*node.Node, error) {
	g := w.Graph()
	if a.config.Target != "" {
		n, ok := g.NodeNamed(a.config.Target)
		if !ok {
			return nil, fmt.Errorf("node %q not found in workflow", a.config.Target)
		}
		return []*node.Node{n}, nil
	}

	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, err
	}
	var sinks []*node.Node
	for _, n := range order {
		if len(g.Consumers(n.ID())) == 0 {
			sinks = append(sinks, n)
		}
	}
	if len(sinks) == 0 {
		return nil, ErrNothingToPlan
	}
	return sinks, nil
}
