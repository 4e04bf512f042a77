package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/analytica/atomflow/internal/ctxlog"
	"github.com/analytica/atomflow/internal/fsutil"
	"github.com/analytica/atomflow/internal/parser"
	"github.com/analytica/atomflow/internal/value"
)

// pipelineExtension is the file suffix of stored pipeline sources.
const pipelineExtension = ".dsl"

// namedSource pairs DSL text with where it came from, for error messages.
type namedSource struct {
	origin string
	text   string
}

// collectSources resolves the configured pipeline input into DSL texts:
// the inline source, a single file, or every pipeline file under a
// directory.
func collectSources(cfg *Config) ([]namedSource, error) {
	if cfg.Source != "" {
		return []namedSource{{origin: "inline", text: cfg.Source}}, nil
	}

	info, err := os.Stat(cfg.PipelinePath)
	if err != nil {
		return nil, fmt.Errorf("pipeline path: %w", err)
	}

	paths := []string{cfg.PipelinePath}
	if info.IsDir() {
		paths, err = fsutil.FindFilesByExtension(cfg.PipelinePath, pipelineExtension)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", cfg.PipelinePath, err)
		}
		if len(paths) == 0 {
			return nil, fmt.Errorf("no %s files under %s", pipelineExtension, cfg.PipelinePath)
		}
		sort.Strings(paths)
	}

	sources := make([]namedSource, 0, len(paths))
	for _, path := range paths {
		text, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		sources = append(sources, namedSource{origin: path, text: string(text)})
	}
	return sources, nil
}

// loadPipelines parses every source and fills the app's store. All parse
// problems across all sources are reported together; warnings are logged
// and do not fail the load.
func (a *App) loadPipelines(ctx context.Context, sources []namedSource) error {
	logger := ctxlog.FromContext(ctx)
	var problems []string
	for _, src := range sources {
		defs, issues := a.engine.ParseAll(src.text)
		for _, w := range issues.Warnings {
			logger.Warn("pipeline warning", "origin", src.origin, "line", w.Line, "message", w.Message)
		}
		for _, e := range issues.Errors {
			problems = append(problems, fmt.Sprintf("%s: %s", src.origin, e))
		}
		if issues.HasErrors() {
			continue
		}
		for _, def := range defs {
			if err := a.store.Put(def); err != nil {
				problems = append(problems, fmt.Sprintf("%s: %v", src.origin, err))
			}
		}
	}
	if len(problems) > 0 {
		sort.Strings(problems)
		return fmt.Errorf("failed to load pipelines:\n  %s", strings.Join(problems, "\n  "))
	}
	logger.Debug("pipelines loaded", "count", a.store.Len())
	return nil
}

// loadInput reads the initial data value from a JSON file. No path means a
// null input.
func loadInput(path string) (cty.Value, error) {
	if path == "" {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cty.NilVal, fmt.Errorf("reading input: %w", err)
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return cty.NilVal, fmt.Errorf("input %s is not valid JSON: %w", path, err)
	}
	v, err := value.FromGo(data)
	if err != nil {
		return cty.NilVal, fmt.Errorf("input %s: %w", path, err)
	}
	return v, nil
}

// parseOverrides turns `-var name=literal` values into resolved variable
// overrides. Each value is a DSL literal, so strings need quotes on the
// command line but bare words pass through as strings too.
func parseOverrides(raw map[string]string) (map[string]cty.Value, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]cty.Value, len(raw))
	for name, lit := range raw {
		v, err := parser.ParseLiteral(lit)
		if err != nil {
			return nil, fmt.Errorf("variable %s: %w", name, err)
		}
		resolved, err := v.Resolve(nil)
		if err != nil {
			return nil, fmt.Errorf("variable %s: %w", name, err)
		}
		out[name] = resolved
	}
	return out, nil
}
