// Package view provides the view atoms. They are side-channel producers:
// each appends a rendering descriptor to the run context and hands the
// threaded value back untouched, so a pipeline can compute a result and
// describe its presentation at the same time.
package view

import (
	"context"

	"github.com/zclconf/go-cty/cty"

	"github.com/analytica/atomflow/internal/atom"
	"github.com/analytica/atomflow/internal/run"
	"github.com/analytica/atomflow/internal/value"
)

// Module implements atom.Module for this package.
type Module struct{}

// commonParams are shared by every view atom. Both data_path spellings are
// accepted; data_path is canonical.
func commonParams(extra ...atom.ParamSpec) []atom.ParamSpec {
	common := []atom.ParamSpec{
		atom.Optional("title", cty.String, cty.StringVal(""), "Display title."),
		atom.Optional("data_path", cty.String, cty.StringVal(""), "Dotted path scoping the rendered data; the whole value when empty."),
		atom.Optional("dataPath", cty.String, cty.StringVal(""), "Alias of data_path."),
	}
	return append(extra, common...)
}

// Register registers the view atoms.
func (m *Module) Register(r *atom.Registry) {
	r.MustRegister(atom.Spec{
		Type:        "view",
		Action:      "chart",
		Description: "Render the data as a chart.",
		Params: commonParams(
			atom.OneOfStringsDefault("type", []string{"bar", "line", "pie", "area"}, "bar", "Chart style."),
			atom.Optional("x", cty.String, cty.StringVal(""), "Field for the x axis."),
			atom.Optional("y", cty.String, cty.StringVal(""), "Field for the y axis."),
		),
	}, handler("chart", func(args *atom.Args, fields map[string]any) {
		fields["chart_type"] = args.String("type")
		fields["x"] = args.String("x")
		fields["y"] = args.String("y")
	}))

	r.MustRegister(atom.Spec{
		Type:        "view",
		Action:      "table",
		Description: "Render the data as a table.",
		Params: commonParams(
			atom.Optional("columns", cty.List(cty.String), cty.NullVal(cty.List(cty.String)), "Columns to show; all fields when absent."),
		),
	}, handler("table", func(args *atom.Args, fields map[string]any) {
		if cols := args.Strings("columns"); cols != nil {
			fields["columns"] = cols
		}
	}))

	r.MustRegister(atom.Spec{
		Type:        "view",
		Action:      "card",
		Description: "Render a single value as a card.",
		Params: commonParams(
			atom.Required("value", cty.String, "Field holding the card's value."),
			atom.Optional("format", cty.String, cty.StringVal(""), "Display format, e.g. currency."),
			atom.Optional("icon", cty.String, cty.StringVal(""), "Icon name."),
		),
	}, handler("card", func(args *atom.Args, fields map[string]any) {
		fields["value_field"] = args.String("value")
		fields["format"] = args.String("format")
		fields["icon"] = args.String("icon")
	}))

	r.MustRegister(atom.Spec{
		Type:        "view",
		Action:      "kpi",
		Description: "Render a value against a target.",
		Params: commonParams(
			atom.Required("value", cty.String, "Field holding the measured value."),
			atom.Optional("target", cty.Number, cty.NullVal(cty.Number), "Target to compare against."),
			atom.Optional("format", cty.String, cty.StringVal(""), "Display format."),
		),
	}, handler("kpi", func(args *atom.Args, fields map[string]any) {
		fields["value_field"] = args.String("value")
		fields["format"] = args.String("format")
		if args.Has("target") {
			fields["target"] = args.Float("target")
		}
	}))

	r.MustRegister(atom.Spec{
		Type:        "view",
		Action:      "grid",
		Description: "Arrange the following views in a grid.",
		Params: commonParams(
			atom.Optional("columns", cty.Number, cty.NumberIntVal(2), "Number of grid columns."),
		),
	}, handler("grid", func(args *atom.Args, fields map[string]any) {
		fields["columns"] = args.Int("columns")
	}))

	r.MustRegister(atom.Spec{
		Type:        "view",
		Action:      "dashboard",
		Description: "Group the run's views into a dashboard.",
		Params: commonParams(
			atom.Optional("layout", cty.String, cty.StringVal("stack"), "Dashboard layout."),
		),
	}, handler("dashboard", func(args *atom.Args, fields map[string]any) {
		fields["layout"] = args.String("layout")
	}))

	r.MustRegister(atom.Spec{
		Type:        "view",
		Action:      "text",
		Description: "Render a block of text.",
		Params: commonParams(
			atom.Required("content", cty.String, "Text to render."),
			atom.Optional("style", cty.String, cty.StringVal("body"), "Text style."),
		),
	}, handler("text", func(args *atom.Args, fields map[string]any) {
		fields["content"] = args.String("content")
		fields["style"] = args.String("style")
	}))

	r.MustRegister(atom.Spec{
		Type:        "view",
		Action:      "list",
		Description: "Render the rows as a list.",
		Params: commonParams(
			atom.Required("primary", cty.String, "Field for the primary line."),
			atom.Optional("secondary", cty.String, cty.StringVal(""), "Field for the secondary line."),
		),
	}, handler("list", func(args *atom.Args, fields map[string]any) {
		fields["primary"] = args.String("primary")
		fields["secondary"] = args.String("secondary")
	}))
}

// handler builds a view atom handler: it scopes the data, lets the
// type-specific function fill in its fields, appends the descriptor, and
// returns the value it received. View handlers never replace the threaded
// value.
func handler(viewType string, fill func(args *atom.Args, fields map[string]any)) atom.Handler {
	return func(ctx context.Context, rc *run.Context, args *atom.Args) (cty.Value, error) {
		scoped, err := rc.ValueAt(dataPath(args))
		if err != nil {
			return cty.NilVal, err
		}

		fields := map[string]any{"data": value.ToGo(scoped)}
		fill(args, fields)
		spec := rc.AppendView(run.ViewSpec{
			Type:   viewType,
			Title:  args.String("title"),
			Fields: fields,
		})
		rc.Logf("emitted view %s", spec.ID)
		return rc.Value, nil
	}
}

func dataPath(args *atom.Args) string {
	if p := args.String("data_path"); p != "" {
		return p
	}
	return args.String("dataPath")
}
