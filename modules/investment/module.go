// Package investment provides the investment analysis atoms. Cash flow
// inputs are a list of numbers or a list of records carrying a cash flow
// field; the first period is period zero (the initial outlay, usually
// negative).
package investment

import (
	"context"
	"fmt"
	"math"

	"github.com/zclconf/go-cty/cty"

	"github.com/analytica/atomflow/internal/atom"
	"github.com/analytica/atomflow/internal/rows"
	"github.com/analytica/atomflow/internal/run"
)

// Module implements atom.Module for this package.
type Module struct{}

var cashflowParam = atom.Optional("field", cty.String, cty.StringVal("cashflow"),
	"Field holding the cash flow when rows are records.")

// Register registers the investment atoms.
func (m *Module) Register(r *atom.Registry) {
	r.MustRegister(atom.Spec{
		Type:        "investment",
		Action:      "roi",
		Description: "Return on investment from a cash flow series.",
		Params:      []atom.ParamSpec{cashflowParam},
	}, onROI)

	r.MustRegister(atom.Spec{
		Type:        "investment",
		Action:      "npv",
		Description: "Net present value of a cash flow series.",
		Params: []atom.ParamSpec{
			atom.Required("rate", cty.Number, "Discount rate per period, e.g. 0.1."),
			cashflowParam,
		},
	}, onNPV)

	r.MustRegister(atom.Spec{
		Type:        "investment",
		Action:      "payback",
		Description: "Periods until cumulative cash flow turns non-negative.",
		Params:      []atom.ParamSpec{cashflowParam},
	}, onPayback)

	r.MustRegister(atom.Spec{
		Type:        "investment",
		Action:      "analyze",
		Description: "ROI, NPV, IRR, and payback in one pass.",
		Params: []atom.ParamSpec{
			atom.Optional("rate", cty.Number, cty.NumberFloatVal(0.1), "Discount rate per period."),
			cashflowParam,
		},
	}, onAnalyze)
}

func cashflows(rc *run.Context, args *atom.Args) ([]float64, error) {
	flows, err := rows.Numbers(rc.Value, args.String("field"))
	if err != nil {
		return nil, err
	}
	if len(flows) == 0 {
		return nil, fmt.Errorf("cash flow series is empty")
	}
	return flows, nil
}

func onROI(ctx context.Context, rc *run.Context, args *atom.Args) (cty.Value, error) {
	flows, err := cashflows(rc, args)
	if err != nil {
		return cty.NilVal, err
	}
	r, err := roi(flows)
	if err != nil {
		return cty.NilVal, err
	}
	return cty.ObjectVal(map[string]cty.Value{
		"roi_pct": cty.NumberFloatVal(r),
	}), nil
}

// roi treats negative flows as invested capital and positive flows as
// returns: (returns - invested) / invested, as a percentage.
func roi(flows []float64) (float64, error) {
	var invested, returned float64
	for _, f := range flows {
		if f < 0 {
			invested += -f
		} else {
			returned += f
		}
	}
	if invested == 0 {
		return 0, fmt.Errorf("no invested capital in cash flow series")
	}
	return (returned - invested) / invested * 100, nil
}

func onNPV(ctx context.Context, rc *run.Context, args *atom.Args) (cty.Value, error) {
	flows, err := cashflows(rc, args)
	if err != nil {
		return cty.NilVal, err
	}
	return cty.ObjectVal(map[string]cty.Value{
		"npv":  cty.NumberFloatVal(npv(args.Float("rate"), flows)),
		"rate": cty.NumberFloatVal(args.Float("rate")),
	}), nil
}

func npv(rate float64, flows []float64) float64 {
	var total float64
	for t, f := range flows {
		total += f / math.Pow(1+rate, float64(t))
	}
	return total
}

func onPayback(ctx context.Context, rc *run.Context, args *atom.Args) (cty.Value, error) {
	flows, err := cashflows(rc, args)
	if err != nil {
		return cty.NilVal, err
	}
	period, recovered := payback(flows)
	if !recovered {
		return cty.ObjectVal(map[string]cty.Value{
			"payback_period": cty.NullVal(cty.Number),
			"recovered":      cty.False,
		}), nil
	}
	return cty.ObjectVal(map[string]cty.Value{
		"payback_period": cty.NumberIntVal(int64(period)),
		"recovered":      cty.True,
	}), nil
}

func payback(flows []float64) (int, bool) {
	var cumulative float64
	for t, f := range flows {
		cumulative += f
		if cumulative >= 0 {
			return t, true
		}
	}
	return 0, false
}

func onAnalyze(ctx context.Context, rc *run.Context, args *atom.Args) (cty.Value, error) {
	flows, err := cashflows(rc, args)
	if err != nil {
		return cty.NilVal, err
	}
	rate := args.Float("rate")

	out := map[string]cty.Value{
		"npv":  cty.NumberFloatVal(npv(rate, flows)),
		"rate": cty.NumberFloatVal(rate),
	}
	if r, err := roi(flows); err == nil {
		out["roi_pct"] = cty.NumberFloatVal(r)
	} else {
		out["roi_pct"] = cty.NullVal(cty.Number)
	}
	if period, recovered := payback(flows); recovered {
		out["payback_period"] = cty.NumberIntVal(int64(period))
	} else {
		out["payback_period"] = cty.NullVal(cty.Number)
	}
	if r, ok := irr(flows); ok {
		out["irr"] = cty.NumberFloatVal(r)
	} else {
		out["irr"] = cty.NullVal(cty.Number)
	}
	return cty.ObjectVal(out), nil
}

// irr finds the rate where NPV crosses zero by bisection over (-0.99, 10).
// Series whose NPV does not change sign on that interval have no usable
// root and report none.
func irr(flows []float64) (float64, bool) {
	lo, hi := -0.99, 10.0
	flo, fhi := npv(lo, flows), npv(hi, flows)
	if flo*fhi > 0 {
		return 0, false
	}
	for i := 0; i < 200; i++ {
		mid := (lo + hi) / 2
		fmid := npv(mid, flows)
		if math.Abs(fmid) < 1e-9 {
			return mid, true
		}
		if flo*fmid < 0 {
			hi = mid
		} else {
			lo, flo = mid, fmid
		}
	}
	return (lo + hi) / 2, true
}
