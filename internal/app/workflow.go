package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/vk/depends/internal/ctxlog"
	"github.com/vk/depends/internal/dag"
	"github.com/vk/depends/internal/snapshot"
	"github.com/vk/depends/internal/workflow"
)

// Read-only variables every session starts with.
const (
	VarDependsDir  = "DEPENDS_DIR"
	VarWorkflowDir = "WORKFLOW_DIR"
)

// OpenWorkflow loads the snapshot at path into a new session. The session
// knows where the binary and the workflow live through read-only variables;
// configured variables fill in whatever the snapshot leaves undefined.
func (a *App) OpenWorkflow(ctx context.Context, path string) (*workflow.Workflow, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Opening workflow.", "path", path)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workflow: %w", err)
	}
	defer f.Close()

	s, err := snapshot.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode workflow %s: %w", path, err)
	}

	g := dag.New(a.registry.Types())
	if err := a.sessionVariables(g, path); err != nil {
		return nil, err
	}
	if err := snapshot.Restore(ctx, g, s, a.registry); err != nil {
		return nil, fmt.Errorf("failed to restore workflow %s: %w", path, err)
	}

	names := make([]string, 0, len(a.config.Variables))
	for name := range a.config.Variables {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if g.Vars().Defined(name) {
			continue
		}
		if err := g.Vars().Set(name, a.config.Variables[name], false); err != nil {
			return nil, err
		}
	}

	logger.Info("Workflow opened.", "path", path, "nodes", len(g.Nodes()))
	return workflow.New(g), nil
}

func (a *App) sessionVariables(g *dag.DAG, path string) error {
	workflowDir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return err
	}
	dependsDir := workflowDir
	if exe, err := os.Executable(); err == nil {
		dependsDir = filepath.Dir(exe)
	}
	if err := g.Vars().Set(VarDependsDir, dependsDir, true); err != nil {
		return err
	}
	return g.Vars().Set(VarWorkflowDir, workflowDir, true)
}
