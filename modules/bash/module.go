// Package bash provides the "bash" recipe, which writes a plan to a bash
// script.
package bash

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/vk/depends/internal/ctxlog"
	"github.com/vk/depends/internal/plan"
	"github.com/vk/depends/internal/registry"

	prnt "github.com/vk/depends/modules/print"
)

const RecipeName = "bash"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Recipe writes a script to the destination. A destination naming a
// directory gets a new uniquely named script inside it.
type Recipe struct{}

func (Recipe) Name() string { return RecipeName }

func (Recipe) Generate(ctx context.Context, steps []plan.Step, destination string, runNow bool) error {
	logger := ctxlog.FromContext(ctx)

	f, err := create(destination)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "#!/bin/bash")
	fmt.Fprintln(w)
	if err := prnt.WriteSteps(w, steps); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing %s: %w", f.Name(), err)
	}
	if err := f.Chmod(0o755); err != nil {
		return err
	}

	logger.Info("Shell script written.", "path", f.Name(), "steps", len(steps))
	if runNow {
		logger.Warn("Plans are never run by depends, run the script yourself.", "path", f.Name())
	}
	return f.Close()
}

func create(destination string) (*os.File, error) {
	if destination == "" {
		destination = os.TempDir()
	}
	info, err := os.Stat(destination)
	if err == nil && info.IsDir() {
		return os.CreateTemp(destination, "bashExecutionRecipe_*.sh")
	}
	return os.Create(destination)
}

// Register registers the recipe with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRecipe(Recipe{})
}
