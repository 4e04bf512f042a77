package atom

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/analytica/atomflow/internal/value"
)

// ResolvedParam is one parameter after variable resolution, in call order.
type ResolvedParam struct {
	Name  string
	Value cty.Value
}

// Args carries a handler's bound arguments: positional arguments mapped
// onto required parameter names, optional defaults applied, and every value
// validated against the atom's spec.
type Args struct {
	om *orderedmap.OrderedMap[string, cty.Value]
}

// BindArgs maps resolved call parameters onto the atom's declared spec.
// The first positional argument (`_arg0`) fills the first required
// parameter in declaration order, the second the second, and so on;
// positionals with no required slot left are dropped (the parser warns
// about them). Missing required parameters, enum mismatches, and type
// mismatches are reported together in one error.
func BindArgs(spec *Spec, params []ResolvedParam) (*Args, error) {
	om := orderedmap.New[string, cty.Value]()
	var positional []ResolvedParam
	for _, p := range params {
		if strings.HasPrefix(p.Name, "_arg") {
			positional = append(positional, p)
		} else {
			om.Set(p.Name, p.Value)
		}
	}
	sort.SliceStable(positional, func(i, j int) bool {
		return positionalIndex(positional[i].Name) < positionalIndex(positional[j].Name)
	})

	required := spec.RequiredParams()
	for i, p := range positional {
		if i >= len(required) {
			break
		}
		name := required[i].Name
		if _, taken := om.Get(name); !taken {
			om.Set(name, p.Value)
		}
	}

	var problems []string
	for _, ps := range spec.Params {
		got, present := om.Get(ps.Name)
		switch ps.Kind {
		case KindRequired:
			if !present || got.IsNull() {
				problems = append(problems, fmt.Sprintf("required parameter %q is missing", ps.Name))
				continue
			}
			if err := checkType(got, ps.Type); err != nil {
				problems = append(problems, fmt.Sprintf("parameter %q: %v", ps.Name, err))
			}
		case KindOptional:
			if !present {
				def := ps.Default
				if def == cty.NilVal {
					def = cty.NullVal(cty.DynamicPseudoType)
				}
				om.Set(ps.Name, def)
				continue
			}
			if !got.IsNull() {
				if err := checkType(got, ps.Type); err != nil {
					problems = append(problems, fmt.Sprintf("parameter %q: %v", ps.Name, err))
				}
			}
		case KindOneOf:
			if !present || got.IsNull() {
				if ps.Default != cty.NilVal {
					om.Set(ps.Name, ps.Default)
					continue
				}
				problems = append(problems, fmt.Sprintf("required parameter %q is missing", ps.Name))
				continue
			}
			if !oneOfMatches(got, ps.Allowed) {
				problems = append(problems, fmt.Sprintf("parameter %q must be one of %s", ps.Name, renderAllowed(ps.Allowed)))
			}
		}
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("%s.%s: %s", spec.Type, spec.Action, strings.Join(problems, "; "))
	}
	return &Args{om: om}, nil
}

func positionalIndex(name string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(name, "_arg"))
	if err != nil {
		return 0
	}
	return n
}

func checkType(v cty.Value, ty cty.Type) error {
	if ty == cty.NilType || ty == cty.DynamicPseudoType {
		return nil
	}
	if _, err := convert.Convert(v, ty); err != nil {
		return fmt.Errorf("expected %s, got %s", ty.FriendlyName(), v.Type().FriendlyName())
	}
	return nil
}

func oneOfMatches(v cty.Value, allowed []cty.Value) bool {
	for _, a := range allowed {
		if v.RawEquals(a) {
			return true
		}
	}
	return false
}

func renderAllowed(allowed []cty.Value) string {
	parts := make([]string, len(allowed))
	for i, a := range allowed {
		parts[i] = value.Lit(a).String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Get returns the bound cty value for name.
func (a *Args) Get(name string) (cty.Value, bool) {
	v, ok := a.om.Get(name)
	if ok && v.IsNull() {
		return v, false
	}
	return v, ok
}

// Has reports whether name is bound to a non-null value.
func (a *Args) Has(name string) bool {
	_, ok := a.Get(name)
	return ok
}

// Each visits bound arguments in call order, skipping unmapped positionals.
func (a *Args) Each(fn func(name string, v cty.Value)) {
	for pair := a.om.Oldest(); pair != nil; pair = pair.Next() {
		if strings.HasPrefix(pair.Key, "_arg") {
			continue
		}
		fn(pair.Key, pair.Value)
	}
}

// Go returns the argument as plain Go data, or nil when absent.
func (a *Args) Go(name string) any {
	v, ok := a.Get(name)
	if !ok {
		return nil
	}
	return value.ToGo(v)
}

// String returns the argument coerced to a string, or "" when absent.
func (a *Args) String(name string) string {
	return cast.ToString(a.Go(name))
}

// Float returns the argument coerced to a float64, or 0 when absent.
func (a *Args) Float(name string) float64 {
	return cast.ToFloat64(a.Go(name))
}

// Int returns the argument coerced to an int, or 0 when absent.
func (a *Args) Int(name string) int {
	return cast.ToInt(a.Go(name))
}

// Bool returns the argument coerced to a bool, or false when absent.
func (a *Args) Bool(name string) bool {
	return cast.ToBool(a.Go(name))
}

// Strings returns the argument coerced to a string slice, or nil.
func (a *Args) Strings(name string) []string {
	v := a.Go(name)
	if v == nil {
		return nil
	}
	out, err := cast.ToStringSliceE(v)
	if err != nil {
		return nil
	}
	return out
}
