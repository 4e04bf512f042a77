// Package report provides the reporting atoms. Rendering and delivery are
// host concerns; the atoms emit descriptors carrying the report payload.
package report

import (
	"context"
	"time"

	"github.com/zclconf/go-cty/cty"

	"github.com/analytica/atomflow/internal/atom"
	"github.com/analytica/atomflow/internal/run"
)

// Module implements atom.Module for this package.
type Module struct{}

// Register registers the report atoms.
func (m *Module) Register(r *atom.Registry) {
	r.MustRegister(atom.Spec{
		Type:        "report",
		Action:      "generate",
		Description: "Wrap the current value into a report descriptor.",
		Params: []atom.ParamSpec{
			atom.OneOfStringsDefault("format", []string{"pdf", "html", "markdown"}, "pdf", "Output format."),
			atom.Optional("title", cty.String, cty.StringVal("Report"), "Report title."),
		},
	}, onGenerate)

	r.MustRegister(atom.Spec{
		Type:        "report",
		Action:      "send",
		Description: "Describe a report delivery for the host to perform.",
		Params: []atom.ParamSpec{
			atom.Required("to", cty.List(cty.String), "Recipient addresses."),
			atom.Optional("subject", cty.String, cty.StringVal(""), "Delivery subject line."),
		},
	}, onSend)
}

func onGenerate(ctx context.Context, rc *run.Context, args *atom.Args) (cty.Value, error) {
	report := cty.ObjectVal(map[string]cty.Value{
		"format":       cty.StringVal(args.String("format")),
		"title":        cty.StringVal(args.String("title")),
		"generated_at": cty.StringVal(time.Now().UTC().Format(time.RFC3339)),
		"data":         rc.Value,
	})
	rc.Logf("generated %s report %q", args.String("format"), args.String("title"))
	return report, nil
}

func onSend(ctx context.Context, rc *run.Context, args *atom.Args) (cty.Value, error) {
	to := args.Strings("to")
	recipientsVal := cty.EmptyTupleVal
	if len(to) > 0 {
		recipients := make([]cty.Value, len(to))
		for i, addr := range to {
			recipients[i] = cty.StringVal(addr)
		}
		recipientsVal = cty.TupleVal(recipients)
	}
	rc.Logf("report queued for %d recipient(s)", len(to))
	return cty.ObjectVal(map[string]cty.Value{
		"to":        recipientsVal,
		"subject":   cty.StringVal(args.String("subject")),
		"queued_at": cty.StringVal(time.Now().UTC().Format(time.RFC3339)),
		"report":    rc.Value,
	}), nil
}
