// Package forecast provides the forecasting atoms: least-squares trend
// fitting, linear extrapolation, and residual-based confidence bounds.
package forecast

import (
	"context"
	"fmt"
	"math"

	"github.com/zclconf/go-cty/cty"

	"github.com/analytica/atomflow/internal/atom"
	"github.com/analytica/atomflow/internal/rows"
	"github.com/analytica/atomflow/internal/run"
	"github.com/analytica/atomflow/internal/value"
)

// Module implements atom.Module for this package.
type Module struct{}

var seriesParam = atom.Optional("field", cty.String, cty.StringVal("value"),
	"Field holding the observation when rows are records.")

// Register registers the forecast atoms.
func (m *Module) Register(r *atom.Registry) {
	r.MustRegister(atom.Spec{
		Type:        "forecast",
		Action:      "trend",
		Description: "Fit a least-squares line through the series.",
		Params:      []atom.ParamSpec{seriesParam},
	}, onTrend)

	r.MustRegister(atom.Spec{
		Type:        "forecast",
		Action:      "predict",
		Description: "Extrapolate the fitted line for future periods.",
		Params: []atom.ParamSpec{
			atom.Required("periods", cty.Number, "Number of future periods."),
			seriesParam,
		},
	}, onPredict)

	r.MustRegister(atom.Spec{
		Type:        "forecast",
		Action:      "confidence",
		Description: "Residual-based confidence band around the fitted line.",
		Params: []atom.ParamSpec{
			atom.Optional("level", cty.Number, cty.NumberFloatVal(0.95), "Confidence level: 0.90, 0.95, or 0.99."),
			seriesParam,
		},
	}, onConfidence)
}

func series(rc *run.Context, args *atom.Args) ([]float64, error) {
	obs, err := rows.Numbers(rc.Value, args.String("field"))
	if err != nil {
		return nil, err
	}
	if len(obs) < 2 {
		return nil, fmt.Errorf("need at least 2 observations, got %d", len(obs))
	}
	return obs, nil
}

// fit computes the least-squares line y = slope*t + intercept over t = 0..n-1.
func fit(obs []float64) (slope, intercept float64) {
	n := float64(len(obs))
	var sumT, sumY, sumTY, sumTT float64
	for t, y := range obs {
		ft := float64(t)
		sumT += ft
		sumY += y
		sumTY += ft * y
		sumTT += ft * ft
	}
	denom := n*sumTT - sumT*sumT
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumTY - sumT*sumY) / denom
	intercept = (sumY - slope*sumT) / n
	return slope, intercept
}

func onTrend(ctx context.Context, rc *run.Context, args *atom.Args) (cty.Value, error) {
	obs, err := series(rc, args)
	if err != nil {
		return cty.NilVal, err
	}
	slope, intercept := fit(obs)

	direction := "flat"
	switch {
	case slope > 0:
		direction = "up"
	case slope < 0:
		direction = "down"
	}
	return cty.ObjectVal(map[string]cty.Value{
		"slope":     cty.NumberFloatVal(slope),
		"intercept": cty.NumberFloatVal(intercept),
		"direction": cty.StringVal(direction),
	}), nil
}

func onPredict(ctx context.Context, rc *run.Context, args *atom.Args) (cty.Value, error) {
	periods := args.Int("periods")
	if periods < 1 {
		return cty.NilVal, fmt.Errorf("periods must be at least 1, got %d", periods)
	}
	obs, err := series(rc, args)
	if err != nil {
		return cty.NilVal, err
	}
	slope, intercept := fit(obs)

	out := make([]any, periods)
	for i := 0; i < periods; i++ {
		t := len(obs) + i
		out[i] = map[string]any{
			"period":    int64(t),
			"predicted": slope*float64(t) + intercept,
		}
	}
	return value.FromGo(out)
}

// zScores covers the levels the original surface offered.
var zScores = map[float64]float64{
	0.90: 1.645,
	0.95: 1.960,
	0.99: 2.576,
}

func onConfidence(ctx context.Context, rc *run.Context, args *atom.Args) (cty.Value, error) {
	level := args.Float("level")
	z, ok := zScores[level]
	if !ok {
		return cty.NilVal, fmt.Errorf("unsupported confidence level %v (use 0.90, 0.95, or 0.99)", level)
	}
	obs, err := series(rc, args)
	if err != nil {
		return cty.NilVal, err
	}
	slope, intercept := fit(obs)

	var sumSq float64
	for t, y := range obs {
		r := y - (slope*float64(t) + intercept)
		sumSq += r * r
	}
	stddev := math.Sqrt(sumSq / float64(len(obs)))
	margin := z * stddev
	next := slope*float64(len(obs)) + intercept

	return cty.ObjectVal(map[string]cty.Value{
		"level":  cty.NumberFloatVal(level),
		"margin": cty.NumberFloatVal(margin),
		"next":   cty.NumberFloatVal(next),
		"lower":  cty.NumberFloatVal(next - margin),
		"upper":  cty.NumberFloatVal(next + margin),
	}), nil
}
