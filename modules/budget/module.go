// Package budget provides the budget analysis atoms: planned-versus-actual
// variance and category rollups.
package budget

import (
	"context"
	"sort"

	"github.com/spf13/cast"
	"github.com/zclconf/go-cty/cty"

	"github.com/analytica/atomflow/internal/atom"
	"github.com/analytica/atomflow/internal/rows"
	"github.com/analytica/atomflow/internal/run"
	"github.com/analytica/atomflow/internal/value"
)

// Module implements atom.Module for this package.
type Module struct{}

// Register registers the budget atoms.
func (m *Module) Register(r *atom.Registry) {
	r.MustRegister(atom.Spec{
		Type:        "budget",
		Action:      "variance",
		Description: "Annotate every row with planned-versus-actual variance.",
		Params: []atom.ParamSpec{
			atom.Optional("planned", cty.String, cty.StringVal("planned"), "Field holding the planned amount."),
			atom.Optional("actual", cty.String, cty.StringVal("actual"), "Field holding the actual amount."),
		},
	}, onVariance)

	r.MustRegister(atom.Spec{
		Type:        "budget",
		Action:      "categorize",
		Description: "Roll rows up into per-category counts and totals.",
		Params: []atom.ParamSpec{
			atom.Required("by", cty.String, "Field holding the category."),
			atom.Optional("amount", cty.String, cty.StringVal("amount"), "Field summed per category."),
		},
	}, onCategorize)
}

func onVariance(ctx context.Context, rc *run.Context, args *atom.Args) (cty.Value, error) {
	recs, err := rows.FromValue(rc.Value)
	if err != nil {
		return cty.NilVal, err
	}
	plannedField := args.String("planned")
	actualField := args.String("actual")

	planned, err := rows.Floats(recs, plannedField)
	if err != nil {
		return cty.NilVal, err
	}
	actual, err := rows.Floats(recs, actualField)
	if err != nil {
		return cty.NilVal, err
	}

	out := make([]map[string]any, len(recs))
	for i, rec := range recs {
		annotated := make(map[string]any, len(rec)+2)
		for k, v := range rec {
			annotated[k] = v
		}
		variance := actual[i] - planned[i]
		annotated["variance"] = variance
		if planned[i] != 0 {
			annotated["variance_pct"] = variance / planned[i] * 100
		} else {
			annotated["variance_pct"] = nil
		}
		out[i] = annotated
	}
	return rows.ToValue(out)
}

func onCategorize(ctx context.Context, rc *run.Context, args *atom.Args) (cty.Value, error) {
	recs, err := rows.FromValue(rc.Value)
	if err != nil {
		return cty.NilVal, err
	}
	by := args.String("by")
	amountField := args.String("amount")

	type bucket struct {
		count int
		total float64
	}
	buckets := make(map[string]*bucket)
	var order []string
	for _, rec := range recs {
		category := cast.ToString(rec[by])
		b, ok := buckets[category]
		if !ok {
			b = &bucket{}
			buckets[category] = b
			order = append(order, category)
		}
		b.count++
		b.total += cast.ToFloat64(rec[amountField])
	}
	sort.Strings(order)

	out := make([]any, len(order))
	for i, category := range order {
		b := buckets[category]
		out[i] = map[string]any{
			"category": category,
			"count":    int64(b.count),
			"total":    b.total,
		}
	}
	rc.Logf("categorized %d rows into %d categories", len(recs), len(order))
	return value.FromGo(out)
}
