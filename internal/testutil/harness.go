package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/depends/internal/app"
	"github.com/vk/depends/internal/dag"
	"github.com/vk/depends/internal/hcl"
	"github.com/vk/depends/internal/registry"
	"github.com/vk/depends/internal/snapshot"
	"github.com/vk/depends/internal/workflow"
	"github.com/vk/depends/modules/print"
)

// Scenario describes one integration run.
type Scenario struct {
	// Files are written under the test directory. Paths ending in .hcl
	// below manifests/ are loaded as manifests.
	Files map[string]string
	// Build populates the workflow that gets saved and then planned.
	Build func(b *Builder)
	// Target names the node to plan. Empty plans every sink.
	Target string
	// Modules registered on top of the print recipe, which is always
	// present and writes to HarnessResult.Plan.
	Modules []registry.Module
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	Dir       string
	Plan      string
	LogOutput string
	Err       error
	App       *app.App
}

// RunIntegrationTest provides a standardized harness for running integration tests
// using a default background context.
func RunIntegrationTest(t *testing.T, sc Scenario) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, sc)
}

// RunIntegrationTestWithContext writes the scenario files, starts an app on
// them, saves the workflow built by the scenario and plans it.
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, sc Scenario) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	manifests := filepath.Join(tmpDir, "manifests")
	require.NoError(t, os.MkdirAll(manifests, 0o755))
	for name, content := range sc.Files {
		path := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	cfg := app.DefaultConfig()
	cfg.Log.Level = "debug"
	cfg.Manifests = []string{manifests}
	cfg.WorkflowPath = filepath.Join(tmpDir, "workflow.json")
	cfg.Target = sc.Target

	logBuffer := &app.SafeBuffer{}
	planBuffer := &bytes.Buffer{}
	result := &HarnessResult{Dir: tmpDir}
	modules := append([]registry.Module{&print.Module{Out: planBuffer}}, sc.Modules...)

	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				if os.Getenv("DEPENDS_TEST_LOGS") == "true" {
					t.Logf("--- HARNESS RECOVERED PANIC ---\n%q", fmt.Sprintf("%v", r))
				}
				panicErr = r
			}
		}()
		result.App = app.NewApp(logBuffer, cfg, hcl.NewLoader(), modules...)
	}()
	if panicErr != nil {
		result.LogOutput = logBuffer.String()
		result.Err = fmt.Errorf("application startup panicked | %v", panicErr)
		return result
	}

	reg := result.App.Registry()
	b := &Builder{t: t, ctx: ctx, Dir: tmpDir, Registry: reg, Workflow: workflow.New(dag.New(reg.Types()))}
	if sc.Build != nil {
		sc.Build(b)
	}
	f, err := os.Create(cfg.WorkflowPath)
	require.NoError(t, err)
	require.NoError(t, snapshot.Encode(f, snapshot.Take(b.Workflow.Graph())))
	require.NoError(t, f.Close())

	result.Err = result.App.Run(ctx)
	result.Plan = planBuffer.String()
	result.LogOutput = logBuffer.String()

	if os.Getenv("DEPENDS_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), result.LogOutput)
	}
	return result
}
