// Package testutil provides shared helpers for engine tests: a registry of
// small, predictable test atoms and a harness for end-to-end runs.
package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/zclconf/go-cty/cty"

	"github.com/analytica/atomflow/internal/atom"
	"github.com/analytica/atomflow/internal/run"
)

// NewRegistry builds a registry holding the test atom vocabulary.
func NewRegistry(t *testing.T) *atom.Registry {
	t.Helper()
	r := atom.New()
	RegisterTestAtoms(r)
	return r
}

// TestModule registers the test atoms through the same module interface the
// real atom packages use.
type TestModule struct{}

// Register implements atom.Module.
func (m *TestModule) Register(r *atom.Registry) {
	RegisterTestAtoms(r)
}

// RegisterTestAtoms populates r with the test vocabulary:
//
//	test.identity            returns the current value unchanged
//	test.set(value)          replaces the current value
//	test.fail(message)       always errors
//	test.panic               always panics
//	test.view(title)         appends one view, value untouched
//	test.tuned(field, ...)   declares required/optional/one-of params
func RegisterTestAtoms(r *atom.Registry) {
	r.MustRegister(atom.Spec{
		Type:        "test",
		Action:      "identity",
		Description: "Pass the current value through.",
	}, func(ctx context.Context, rc *run.Context, args *atom.Args) (cty.Value, error) {
		return rc.Value, nil
	})

	r.MustRegister(atom.Spec{
		Type:        "test",
		Action:      "set",
		Description: "Replace the current value.",
		Params: []atom.ParamSpec{
			atom.Required("value", cty.DynamicPseudoType, "New value."),
		},
	}, func(ctx context.Context, rc *run.Context, args *atom.Args) (cty.Value, error) {
		v, _ := args.Get("value")
		return v, nil
	})

	r.MustRegister(atom.Spec{
		Type:        "test",
		Action:      "fail",
		Description: "Always fail.",
		Params: []atom.ParamSpec{
			atom.Optional("message", cty.String, cty.StringVal("handler failed"), "Error message."),
		},
	}, func(ctx context.Context, rc *run.Context, args *atom.Args) (cty.Value, error) {
		return cty.NilVal, errors.New(args.String("message"))
	})

	r.MustRegister(atom.Spec{
		Type:        "test",
		Action:      "panic",
		Description: "Always panic.",
	}, func(ctx context.Context, rc *run.Context, args *atom.Args) (cty.Value, error) {
		panic("test.panic invoked")
	})

	r.MustRegister(atom.Spec{
		Type:        "test",
		Action:      "view",
		Description: "Append one view.",
		Params: []atom.ParamSpec{
			atom.Optional("title", cty.String, cty.StringVal(""), "View title."),
		},
	}, func(ctx context.Context, rc *run.Context, args *atom.Args) (cty.Value, error) {
		rc.AppendView(run.ViewSpec{Type: "card", Title: args.String("title")})
		return rc.Value, nil
	})

	r.MustRegister(atom.Spec{
		Type:        "test",
		Action:      "tuned",
		Description: "Exercise every parameter kind.",
		Params: []atom.ParamSpec{
			atom.Required("field", cty.String, "A required string."),
			atom.Optional("limit", cty.Number, cty.NumberIntVal(10), "An optional number."),
			atom.OneOfStrings("mode", []string{"fast", "slow"}, "An enumerated string."),
		},
	}, func(ctx context.Context, rc *run.Context, args *atom.Args) (cty.Value, error) {
		return cty.ObjectVal(map[string]cty.Value{
			"field": cty.StringVal(args.String("field")),
			"limit": cty.NumberIntVal(int64(args.Int("limit"))),
			"mode":  cty.StringVal(args.String("mode")),
		}), nil
	})
}
