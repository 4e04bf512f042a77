// Package data provides the data source atoms: seeding a pipeline from its
// input value, loading a named dataset through a host-registered loader, and
// describing an external fetch.
package data

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/analytica/atomflow/internal/atom"
	"github.com/analytica/atomflow/internal/ctxlog"
	"github.com/analytica/atomflow/internal/run"
)

// Loader materializes a named dataset. The part of the source string after
// the `scheme:` prefix is passed through verbatim.
type Loader func(ctx context.Context, ref string) (cty.Value, error)

// Module implements atom.Module for this package. Loaders maps source
// schemes ("db", "file", ...) to host-supplied loader functions; data.load
// dispatches on the scheme.
type Module struct {
	Loaders map[string]Loader
}

// Register registers the data atoms.
func (m *Module) Register(r *atom.Registry) {
	r.MustRegister(atom.Spec{
		Type:        "data",
		Action:      "from_input",
		Description: "Use the value the pipeline was invoked with.",
	}, m.onFromInput)

	r.MustRegister(atom.Spec{
		Type:        "data",
		Action:      "load",
		Description: "Load a named dataset, e.g. source=\"db:budget_2024\".",
		Params: []atom.ParamSpec{
			atom.Required("source", cty.String, "Dataset reference as scheme:name."),
		},
	}, m.onLoad)

	r.MustRegister(atom.Spec{
		Type:        "data",
		Action:      "fetch",
		Description: "Describe an external fetch for the host to perform.",
		Params: []atom.ParamSpec{
			atom.Required("url", cty.String, "URL to fetch."),
			atom.Optional("method", cty.String, cty.StringVal("GET"), "HTTP method."),
		},
	}, m.onFetch)
}

// onFromInput is deliberately a no-op: the run context already carries the
// caller's input as the current value.
func (m *Module) onFromInput(ctx context.Context, rc *run.Context, args *atom.Args) (cty.Value, error) {
	ctxlog.FromContext(ctx).Debug("data.from_input", "type", rc.Value.Type().FriendlyName())
	return rc.Value, nil
}

func (m *Module) onLoad(ctx context.Context, rc *run.Context, args *atom.Args) (cty.Value, error) {
	source := args.String("source")
	scheme, ref := splitSource(source)
	loader, ok := m.Loaders[scheme]
	if !ok {
		return cty.NilVal, fmt.Errorf("no loader registered for source %q (known: %s)", source, knownSchemes(m.Loaders))
	}
	loaded, err := loader(ctx, ref)
	if err != nil {
		return cty.NilVal, fmt.Errorf("loading %q: %w", source, err)
	}
	rc.Logf("loaded dataset %q", source)
	return loaded, nil
}

// onFetch returns a request descriptor instead of performing I/O. The engine
// stays free of network concerns; a host that wants live fetches registers a
// loader and uses data.load.
func (m *Module) onFetch(ctx context.Context, rc *run.Context, args *atom.Args) (cty.Value, error) {
	return cty.ObjectVal(map[string]cty.Value{
		"url":     cty.StringVal(args.String("url")),
		"method":  cty.StringVal(strings.ToUpper(args.String("method"))),
		"fetched": cty.False,
	}), nil
}

func splitSource(source string) (scheme, ref string) {
	if i := strings.Index(source, ":"); i >= 0 {
		return source[:i], source[i+1:]
	}
	return source, ""
}

func knownSchemes(loaders map[string]Loader) string {
	if len(loaders) == 0 {
		return "none"
	}
	schemes := make([]string, 0, len(loaders))
	for s := range loaders {
		schemes = append(schemes, s)
	}
	sort.Strings(schemes)
	return strings.Join(schemes, ", ")
}
