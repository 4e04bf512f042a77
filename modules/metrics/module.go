// Package metrics provides the aggregation atoms. Each collapses a list of
// records into a number (or an object of numbers for metrics.calculate).
package metrics

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/zclconf/go-cty/cty"

	"github.com/analytica/atomflow/internal/atom"
	"github.com/analytica/atomflow/internal/rows"
	"github.com/analytica/atomflow/internal/run"
	"github.com/analytica/atomflow/internal/value"
)

// Module implements atom.Module for this package.
type Module struct{}

// Register registers the metrics atoms.
func (m *Module) Register(r *atom.Registry) {
	for _, action := range []string{"sum", "avg", "min", "max"} {
		action := action
		r.MustRegister(atom.Spec{
			Type:        "metrics",
			Action:      action,
			Description: fmt.Sprintf("Compute the %s of one numeric field.", action),
			Params: []atom.ParamSpec{
				atom.Required("field", cty.String, "Field to aggregate."),
			},
		}, func(ctx context.Context, rc *run.Context, args *atom.Args) (cty.Value, error) {
			return aggregateField(rc, action, args.String("field"))
		})
	}

	r.MustRegister(atom.Spec{
		Type:        "metrics",
		Action:      "count",
		Description: "Count the rows of the current value.",
	}, onCount)

	r.MustRegister(atom.Spec{
		Type:        "metrics",
		Action:      "percentile",
		Description: "Compute a percentile of one numeric field.",
		Params: []atom.ParamSpec{
			atom.Required("field", cty.String, "Field to aggregate."),
			atom.Required("p", cty.Number, "Percentile between 0 and 100."),
		},
	}, onPercentile)

	r.MustRegister(atom.Spec{
		Type:        "metrics",
		Action:      "calculate",
		Description: "Compute several aggregates of one field at once.",
		Params: []atom.ParamSpec{
			atom.Required("metrics", cty.List(cty.String), "Aggregates to compute (sum, avg, min, max, count)."),
			atom.Required("field", cty.String, "Field to aggregate."),
		},
	}, onCalculate)
}

func aggregateField(rc *run.Context, metric, field string) (cty.Value, error) {
	recs, err := rows.FromValue(rc.Value)
	if err != nil {
		return cty.NilVal, err
	}
	vals, err := rows.Floats(recs, field)
	if err != nil {
		return cty.NilVal, err
	}
	out, err := aggregate(metric, vals)
	if err != nil {
		return cty.NilVal, err
	}
	return cty.NumberFloatVal(out), nil
}

func aggregate(metric string, vals []float64) (float64, error) {
	if len(vals) == 0 && metric != "sum" && metric != "count" {
		return 0, fmt.Errorf("cannot compute %s of zero rows", metric)
	}
	switch metric {
	case "count":
		return float64(len(vals)), nil
	case "sum":
		var total float64
		for _, v := range vals {
			total += v
		}
		return total, nil
	case "avg":
		var total float64
		for _, v := range vals {
			total += v
		}
		return total / float64(len(vals)), nil
	case "min":
		out := vals[0]
		for _, v := range vals[1:] {
			out = math.Min(out, v)
		}
		return out, nil
	case "max":
		out := vals[0]
		for _, v := range vals[1:] {
			out = math.Max(out, v)
		}
		return out, nil
	default:
		return 0, fmt.Errorf("unknown metric %q", metric)
	}
}

func onCount(ctx context.Context, rc *run.Context, args *atom.Args) (cty.Value, error) {
	data := value.ToGo(rc.Value)
	switch x := data.(type) {
	case nil:
		return cty.NumberIntVal(0), nil
	case []any:
		return cty.NumberIntVal(int64(len(x))), nil
	default:
		return cty.NumberIntVal(1), nil
	}
}

func onPercentile(ctx context.Context, rc *run.Context, args *atom.Args) (cty.Value, error) {
	p := args.Float("p")
	if p < 0 || p > 100 {
		return cty.NilVal, fmt.Errorf("percentile must be between 0 and 100, got %v", p)
	}
	recs, err := rows.FromValue(rc.Value)
	if err != nil {
		return cty.NilVal, err
	}
	vals, err := rows.Floats(recs, args.String("field"))
	if err != nil {
		return cty.NilVal, err
	}
	if len(vals) == 0 {
		return cty.NilVal, fmt.Errorf("cannot compute a percentile of zero rows")
	}
	return cty.NumberFloatVal(percentile(vals, p)), nil
}

// percentile uses linear interpolation between closest ranks.
func percentile(vals []float64, p float64) float64 {
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

func onCalculate(ctx context.Context, rc *run.Context, args *atom.Args) (cty.Value, error) {
	recs, err := rows.FromValue(rc.Value)
	if err != nil {
		return cty.NilVal, err
	}
	vals, err := rows.Floats(recs, args.String("field"))
	if err != nil {
		return cty.NilVal, err
	}
	out := make(map[string]cty.Value)
	for _, metric := range args.Strings("metrics") {
		agg, err := aggregate(metric, vals)
		if err != nil {
			return cty.NilVal, err
		}
		out[metric] = cty.NumberFloatVal(agg)
	}
	if len(out) == 0 {
		return cty.NilVal, fmt.Errorf("metrics list is empty")
	}
	return cty.ObjectVal(out), nil
}
