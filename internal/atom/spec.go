package atom

import (
	"github.com/zclconf/go-cty/cty"
)

// ParamKind distinguishes how a declared parameter is validated.
type ParamKind int

const (
	// KindRequired parameters must be present after positional mapping.
	KindRequired ParamKind = iota
	// KindOptional parameters fall back to their declared default.
	KindOptional
	// KindOneOf parameters must match one of the allowed values.
	KindOneOf
)

// ParamSpec declares one accepted parameter. Declaration order matters: the
// first positional argument fills the first required parameter, the second
// positional the second required one, and so on.
type ParamSpec struct {
	Name        string
	Kind        ParamKind
	Type        cty.Type
	Default     cty.Value
	Allowed     []cty.Value
	Description string
}

// Required declares a mandatory parameter of the given type. Use
// cty.DynamicPseudoType to accept any value.
func Required(name string, ty cty.Type, description string) ParamSpec {
	return ParamSpec{Name: name, Kind: KindRequired, Type: ty, Description: description}
}

// Optional declares a parameter with a default applied when absent.
func Optional(name string, ty cty.Type, def cty.Value, description string) ParamSpec {
	return ParamSpec{Name: name, Kind: KindOptional, Type: ty, Default: def, Description: description}
}

// OneOf declares a parameter constrained to an enumerated value set. Without
// a default the parameter must be present.
func OneOf(name string, allowed []cty.Value, description string) ParamSpec {
	return ParamSpec{Name: name, Kind: KindOneOf, Allowed: allowed, Description: description}
}

// OneOfStrings is OneOf over string values.
func OneOfStrings(name string, allowed []string, description string) ParamSpec {
	vals := make([]cty.Value, len(allowed))
	for i, s := range allowed {
		vals[i] = cty.StringVal(s)
	}
	return OneOf(name, vals, description)
}

// OneOfStringsDefault is OneOfStrings with a fallback applied when the
// parameter is absent, making it optional.
func OneOfStringsDefault(name string, allowed []string, def, description string) ParamSpec {
	ps := OneOfStrings(name, allowed, description)
	ps.Default = cty.StringVal(def)
	return ps
}

// Spec declares a registered atom: its identity, parameters, and docs.
type Spec struct {
	Type        string
	Action      string
	Params      []ParamSpec
	Description string
}

// Param looks up a declared parameter by name.
func (s *Spec) Param(name string) (ParamSpec, bool) {
	for _, p := range s.Params {
		if p.Name == name {
			return p, true
		}
	}
	return ParamSpec{}, false
}

// RequiredParams returns the required parameters in declaration order.
func (s *Spec) RequiredParams() []ParamSpec {
	var out []ParamSpec
	for _, p := range s.Params {
		if p.Kind == KindRequired {
			out = append(out, p)
		}
	}
	return out
}
