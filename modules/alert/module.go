// Package alert provides the alerting atoms. Delivery itself is a host
// concern; alert.send produces a dispatch descriptor the host's channel
// integrations consume.
package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cast"
	"github.com/zclconf/go-cty/cty"

	"github.com/analytica/atomflow/internal/atom"
	"github.com/analytica/atomflow/internal/run"
	"github.com/analytica/atomflow/internal/value"
)

// Module implements atom.Module for this package.
type Module struct{}

// Register registers the alert atoms.
func (m *Module) Register(r *atom.Registry) {
	r.MustRegister(atom.Spec{
		Type:        "alert",
		Action:      "threshold",
		Description: "Compare a field of the current value against a threshold.",
		Params: []atom.ParamSpec{
			atom.Required("field", cty.String, "Field to inspect; the value itself when it is a bare number."),
			atom.OneOfStrings("operator", []string{"gt", "gte", "lt", "lte", "eq"}, "Comparison operator."),
			atom.Required("value", cty.Number, "Threshold value."),
		},
	}, onThreshold)

	r.MustRegister(atom.Spec{
		Type:        "alert",
		Action:      "send",
		Description: "Describe an alert dispatch for the host to deliver.",
		Params: []atom.ParamSpec{
			atom.OneOfStrings("channel", []string{"email", "slack", "webhook", "sms"}, "Delivery channel."),
			atom.Optional("message", cty.String, cty.StringVal(""), "Alert message."),
			atom.Optional("to", cty.String, cty.StringVal(""), "Channel-specific recipient."),
		},
	}, onSend)
}

func onThreshold(ctx context.Context, rc *run.Context, args *atom.Args) (cty.Value, error) {
	field := args.String("field")
	threshold := args.Float("value")
	operator := args.String("operator")

	var actual float64
	if rc.Value.Type() == cty.Number {
		actual, _ = rc.Value.AsBigFloat().Float64()
	} else {
		scoped, err := rc.ValueAt(field)
		if err != nil {
			return cty.NilVal, err
		}
		actual, err = cast.ToFloat64E(value.ToGo(scoped))
		if err != nil {
			return cty.NilVal, fmt.Errorf("field %q: %v", field, err)
		}
	}

	var triggered bool
	switch operator {
	case "gt":
		triggered = actual > threshold
	case "gte":
		triggered = actual >= threshold
	case "lt":
		triggered = actual < threshold
	case "lte":
		triggered = actual <= threshold
	case "eq":
		triggered = actual == threshold
	}

	if triggered {
		rc.Logf("alert threshold hit: %s %s %v (actual %v)", field, operator, threshold, actual)
	}
	return cty.ObjectVal(map[string]cty.Value{
		"triggered": cty.BoolVal(triggered),
		"field":     cty.StringVal(field),
		"operator":  cty.StringVal(operator),
		"threshold": cty.NumberFloatVal(threshold),
		"actual":    cty.NumberFloatVal(actual),
	}), nil
}

func onSend(ctx context.Context, rc *run.Context, args *atom.Args) (cty.Value, error) {
	descriptor := cty.ObjectVal(map[string]cty.Value{
		"channel":   cty.StringVal(args.String("channel")),
		"message":   cty.StringVal(args.String("message")),
		"to":        cty.StringVal(args.String("to")),
		"queued_at": cty.StringVal(time.Now().UTC().Format(time.RFC3339)),
		"payload":   rc.Value,
	})
	rc.Logf("alert queued for %s", args.String("channel"))
	return descriptor, nil
}
