package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/analytica/atomflow/internal/ast"
	"github.com/analytica/atomflow/internal/ctxlog"
	"github.com/analytica/atomflow/internal/executor"
	"github.com/analytica/atomflow/internal/parser"
)

// Run executes the configured command. Output goes to the app's writer;
// a non-nil error means a non-zero exit.
func (a *App) Run(ctx context.Context, cfg *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	switch cfg.Command {
	case CommandAtoms:
		return a.runAtoms(cfg)
	case CommandValidate:
		return a.runValidate(ctx, cfg)
	case CommandParse:
		return a.runParse(ctx, cfg)
	case CommandRun:
		return a.runExecute(ctx, cfg)
	default:
		return fmt.Errorf("unknown command %q", cfg.Command)
	}
}

// runAtoms prints the registered vocabulary, the same listing pipeline
// authoring UIs consume.
func (a *App) runAtoms(cfg *Config) error {
	return a.write(cfg, a.engine.ListAtoms())
}

// validationReport is the per-source outcome of a validation pass.
type validationReport struct {
	Origin   string         `json:"origin" yaml:"origin"`
	Valid    bool           `json:"valid" yaml:"valid"`
	Errors   []parser.Issue `json:"errors" yaml:"errors"`
	Warnings []parser.Issue `json:"warnings" yaml:"warnings"`
}

// runValidate checks every source without executing anything. Invalid
// sources are reported in full and turn into a non-zero exit.
func (a *App) runValidate(ctx context.Context, cfg *Config) error {
	sources, err := collectSources(cfg)
	if err != nil {
		return err
	}

	reports := make([]validationReport, 0, len(sources))
	invalid := 0
	for _, src := range sources {
		_, issues := a.engine.ParseAll(src.text)
		if issues.HasErrors() {
			invalid++
		}
		reports = append(reports, validationReport{
			Origin:   src.origin,
			Valid:    !issues.HasErrors(),
			Errors:   issues.Errors,
			Warnings: issues.Warnings,
		})
	}
	if err := a.write(cfg, reports); err != nil {
		return err
	}
	if invalid > 0 {
		return fmt.Errorf("%d of %d source(s) failed validation", invalid, len(sources))
	}
	return nil
}

// runParse prints the serialized AST of every loaded pipeline.
func (a *App) runParse(ctx context.Context, cfg *Config) error {
	if err := a.load(ctx, cfg); err != nil {
		return err
	}
	defs := make(map[string]*ast.Pipeline, a.store.Len())
	for _, name := range a.store.Names() {
		def, _ := a.store.Get(name)
		key := name
		if key == "" {
			key = "(anonymous)"
		}
		defs[key] = def
	}
	return a.write(cfg, defs)
}

// runExecute loads, selects, and runs one pipeline, then prints the
// execution result. A run that ended with status error exits non-zero,
// after the full result has been written.
func (a *App) runExecute(ctx context.Context, cfg *Config) error {
	if err := a.load(ctx, cfg); err != nil {
		return err
	}

	def, err := a.selectPipeline(cfg)
	if err != nil {
		return err
	}
	input, err := loadInput(cfg.InputPath)
	if err != nil {
		return err
	}
	overrides, err := parseOverrides(cfg.Vars)
	if err != nil {
		return err
	}

	result := a.engine.Execute(ctx, def, input, overrides, cfg.Domain)
	if err := a.write(cfg, result); err != nil {
		return err
	}
	if result.Status == executor.StatusError {
		return fmt.Errorf("pipeline aborted with %d error(s)", len(result.Errors))
	}
	return nil
}

func (a *App) load(ctx context.Context, cfg *Config) error {
	sources, err := collectSources(cfg)
	if err != nil {
		return err
	}
	return a.loadPipelines(ctx, sources)
}

func (a *App) selectPipeline(cfg *Config) (*ast.Pipeline, error) {
	if cfg.PipelineName != "" {
		def, ok := a.store.Get(cfg.PipelineName)
		if !ok {
			return nil, fmt.Errorf("no pipeline named %q (loaded: %v)", cfg.PipelineName, a.store.Names())
		}
		return def, nil
	}
	return a.store.Single()
}

// write renders v to the output writer in the configured format.
func (a *App) write(cfg *Config, v any) error {
	var (
		out []byte
		err error
	)
	if cfg.Output == "yaml" {
		out, err = yaml.Marshal(v)
	} else {
		out, err = json.MarshalIndent(v, "", "  ")
		out = append(out, '\n')
	}
	if err != nil {
		return fmt.Errorf("rendering output: %w", err)
	}
	_, err = io.WriteString(a.outW, string(out))
	return err
}
