// Package engine is the embedding boundary: parse, validate, and execute
// pipelines against one registry. The API layer and the CLI both sit on
// top of this package and nothing else.
package engine

import (
	"context"
	"sync"

	"github.com/zclconf/go-cty/cty"

	"github.com/analytica/atomflow/internal/ast"
	"github.com/analytica/atomflow/internal/atom"
	"github.com/analytica/atomflow/internal/executor"
	"github.com/analytica/atomflow/internal/parser"
)

// Engine binds a registry to a parser and an executor. Safe for concurrent
// use once built; the first execution seals the registry against further
// registration.
type Engine struct {
	reg      *atom.Registry
	parser   *parser.Parser
	exec     *executor.Executor
	sealOnce sync.Once
}

// New creates an engine over the given registry.
func New(reg *atom.Registry) *Engine {
	return &Engine{
		reg:    reg,
		parser: parser.New(reg),
		exec:   executor.New(reg),
	}
}

// Registry returns the engine's registry for module registration at
// startup.
func (e *Engine) Registry() *atom.Registry { return e.reg }

// Parse parses a single pipeline from DSL source.
func (e *Engine) Parse(src string) (*ast.Pipeline, *parser.Issues) {
	return e.parser.Parse(src)
}

// ParseAll parses every pipeline in a multi-pipeline source, keyed by name.
func (e *Engine) ParseAll(src string) (map[string]*ast.Pipeline, *parser.Issues) {
	return e.parser.ParseAll(src)
}

// ValidationResult is the outcome of a validation-only pass.
type ValidationResult struct {
	Valid    bool           `json:"valid" yaml:"valid"`
	Errors   []parser.Issue `json:"errors" yaml:"errors"`
	Warnings []parser.Issue `json:"warnings" yaml:"warnings"`
}

// Validate checks DSL source without executing anything. Multi-pipeline
// sources are accepted the same way loading them would.
func (e *Engine) Validate(src string) *ValidationResult {
	_, issues := e.parser.ParseAll(src)
	return &ValidationResult{
		Valid:    !issues.HasErrors(),
		Errors:   issues.Errors,
		Warnings: issues.Warnings,
	}
}

// Execute runs an already-parsed definition. The registry is sealed before
// the first run so handler lookups stay lock-free.
func (e *Engine) Execute(ctx context.Context, def *ast.Pipeline, input cty.Value, vars map[string]cty.Value, domain string) *executor.Result {
	e.sealOnce.Do(e.reg.Seal)
	return e.exec.Execute(ctx, def, input, vars, domain)
}

// ExecuteDSL parses and runs DSL source in one call. Parse errors come back
// as a Go error; execution failures are reported in the result.
func (e *Engine) ExecuteDSL(ctx context.Context, src string, input cty.Value, vars map[string]cty.Value, domain string) (*executor.Result, error) {
	def, issues := e.parser.Parse(src)
	if err := issues.Err(); err != nil {
		return nil, err
	}
	return e.Execute(ctx, def, input, vars, domain), nil
}

// ListAtoms returns the registered vocabulary as type to sorted actions,
// the shape pipeline-authoring pickers consume.
func (e *Engine) ListAtoms() map[string][]string {
	return e.reg.ListAtoms()
}

// Describe returns the full parameter specification of one atom.
func (e *Engine) Describe(atomType, action string) (atom.Spec, bool) {
	entry, ok := e.reg.Lookup(atomType, action)
	if !ok {
		return atom.Spec{}, false
	}
	return entry.Spec, true
}
