package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/depends/internal/config"
	"github.com/vk/depends/internal/ctxlog"
	"github.com/vk/depends/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	config   *Config
}

// NewApp is the constructor for the main application. It loads the
// manifests, registers the modules and checks the resulting registry.
// Modules default to the built-in set. A registry that cannot be built is a
// mismatch between code and manifests, so NewApp panics.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) *App {
	logger := newLogger(cfg.Log.Level, cfg.Log.Format, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, cfg.Manifests...)
	if err != nil {
		panic(fmt.Errorf("failed to load manifests: %w", err))
	}
	logger.Debug("Manifests loaded.", "packets", len(model.Packets), "kinds", len(model.Kinds))

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules))

	if err := reg.PopulateFromModel(ctx, model); err != nil {
		panic(err)
	}
	reg.AddReadKinds()

	if err := reg.ValidateRegistry(ctx); err != nil {
		panic(err)
	}
	logger.Debug("Registry validation passed.", "kinds", len(reg.KindNames()), "recipes", len(reg.RecipeNames()))

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		config:   cfg,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}
