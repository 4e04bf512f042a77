// Package condition evaluates step guard expressions. Guards use HCL
// expression syntax and see the run's current value as `value`, the domain
// tag as `domain`, and every pipeline variable by name, e.g.
// `value.total > threshold` or `domain == "planbudzetu.pl"`.
package condition

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/analytica/atomflow/internal/run"
)

// Eval parses and evaluates a guard expression against the run context. A
// guard that cannot be parsed, cannot be evaluated, or does not yield a
// boolean is an error; the executor applies the step's on-error policy.
func Eval(src string, rc *run.Context) (bool, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(src), "condition", hcl.InitialPos)
	if diags.HasErrors() {
		return false, fmt.Errorf("invalid condition %q: %s", src, diags.Error())
	}

	vars := make(map[string]cty.Value, len(rc.Variables)+2)
	for name, v := range rc.Variables {
		vars[name] = v
	}
	// The current value and domain always win over same-named variables.
	vars["value"] = rc.Value
	vars["domain"] = cty.StringVal(rc.Domain)

	result, diags := expr.Value(&hcl.EvalContext{Variables: vars})
	if diags.HasErrors() {
		return false, fmt.Errorf("condition %q: %s", src, diags.Error())
	}
	if result.IsNull() || !result.IsKnown() {
		return false, fmt.Errorf("condition %q did not produce a value", src)
	}
	b, err := convert.Convert(result, cty.Bool)
	if err != nil {
		return false, fmt.Errorf("condition %q is not boolean: %v", src, err)
	}
	return b.True(), nil
}
