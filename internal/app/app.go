package app

import (
	"io"
	"log/slog"

	"github.com/analytica/atomflow/internal/atom"
	"github.com/analytica/atomflow/internal/engine"
	"github.com/analytica/atomflow/internal/pipelinestore"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle: an isolated logger, the atom registry populated from modules,
// the engine facade over it, and the store of loaded pipeline definitions.
type App struct {
	outW   io.Writer
	logW   io.Writer
	logger *slog.Logger
	engine *engine.Engine
	store  *pipelinestore.Store
}

// NewApp is the constructor for the main application. Result output goes to
// outW; logs go to logW so piping results stays clean. When no modules are
// passed, the compiled-in core set is registered.
func NewApp(outW, logW io.Writer, cfg *Config, modules ...atom.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("logger configured")

	reg := atom.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		// Registration failures here are programmer errors (duplicate or
		// malformed specs); MustRegister inside the modules panics, and the
		// entrypoint reports it as a fatal startup error.
		mod.Register(reg)
	}
	logger.Debug("atom modules registered", "count", len(modules))

	return &App{
		outW:   outW,
		logW:   logW,
		logger: logger,
		engine: engine.New(reg),
		store:  pipelinestore.New(),
	}
}

// Engine returns the app's engine facade. This is primarily for testing.
func (a *App) Engine() *engine.Engine {
	return a.engine
}

// Store returns the app's pipeline store. This is primarily for testing.
func (a *App) Store() *pipelinestore.Store {
	return a.store
}
