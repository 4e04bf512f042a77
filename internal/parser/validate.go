package parser

import (
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/analytica/atomflow/internal/ast"
	"github.com/analytica/atomflow/internal/atom"
	"github.com/analytica/atomflow/internal/value"
)

// validateCall checks one atom call against the registry. Unknown atoms and
// missing or mistyped required parameters are errors; parameters the spec
// does not declare are warnings, keeping the surface forward-compatible
// with handlers that accept open-ended extra options.
func (s *state) validateCall(call *ast.AtomCall, off, line int) {
	entry, ok := s.reg.Lookup(call.Type, call.Action)
	if !ok {
		s.issues.errorf(off, line, "unknown atom: %s.%s", call.Type, call.Action)
		return
	}
	spec := &entry.Spec

	var positionals int
	named := make(map[string]value.Value)
	call.Params.Each(func(name string, v value.Value) {
		if strings.HasPrefix(name, "_arg") {
			positionals++
		} else {
			named[name] = v
		}
	})

	required := spec.RequiredParams()
	if positionals > len(required) {
		s.issues.warnf(off, line, "%s.%s: %d positional argument(s) beyond the %d declared required parameter(s)",
			call.Type, call.Action, positionals-len(required), len(required))
	}

	// Positional arguments fill required parameters in declaration order.
	filled := make(map[string]bool, positionals)
	for i := 0; i < positionals && i < len(required); i++ {
		filled[required[i].Name] = true
	}

	for _, ps := range spec.Params {
		v, present := named[ps.Name]
		switch ps.Kind {
		case atom.KindRequired, atom.KindOneOf:
			if !present && !filled[ps.Name] {
				if ps.Kind == atom.KindOneOf && ps.Default != cty.NilVal {
					continue
				}
				s.issues.errorf(off, line, "%s.%s: missing required parameter %q", call.Type, call.Action, ps.Name)
				continue
			}
		case atom.KindOptional:
			if !present {
				continue
			}
		}
		if !present {
			continue
		}
		s.checkParamValue(call, &ps, v, off, line)
	}

	// Positionally-filled parameters get the same literal checks.
	i := 0
	call.Params.Each(func(name string, v value.Value) {
		if !strings.HasPrefix(name, "_arg") || i >= len(required) {
			return
		}
		ps := required[i]
		i++
		if _, alsoNamed := named[ps.Name]; alsoNamed {
			return
		}
		s.checkParamValue(call, &ps, v, off, line)
	})

	for name := range named {
		if _, declared := spec.Param(name); !declared {
			s.issues.warnf(off, line, "%s.%s: unknown parameter %q", call.Type, call.Action, name)
		}
	}
}

// checkParamValue performs the literal-value checks that are possible
// before execution. Values containing variable references resolve at run
// time and are skipped here.
func (s *state) checkParamValue(call *ast.AtomCall, ps *atom.ParamSpec, v value.Value, off, line int) {
	if containsRef(v) {
		return
	}
	ty := v.Type()
	switch ps.Kind {
	case atom.KindOneOf:
		lit, err := v.Resolve(nil)
		if err != nil {
			return
		}
		for _, allowed := range ps.Allowed {
			if lit.RawEquals(allowed) {
				return
			}
		}
		s.issues.errorf(off, line, "%s.%s: parameter %q must be one of %s, got %s",
			call.Type, call.Action, ps.Name, renderAllowedValues(ps.Allowed), v.String())
	default:
		if ps.Type == cty.NilType || ps.Type.Equals(cty.DynamicPseudoType) {
			return
		}
		if ty.Equals(ps.Type) {
			return
		}
		// The value is a pure literal, so the conversion can be attempted
		// outright; cty's conversions are lenient by type alone (any string
		// "may" convert to number) and only fail on the concrete value.
		lit, err := v.Resolve(nil)
		if err != nil {
			return
		}
		if _, err := convert.Convert(lit, ps.Type); err != nil {
			s.issues.errorf(off, line, "%s.%s: parameter %q expects %s, got %s",
				call.Type, call.Action, ps.Name, ps.Type.FriendlyName(), ty.FriendlyName())
		}
	}
}

func containsRef(v value.Value) bool {
	switch v.Kind() {
	case value.KindRef:
		return true
	case value.KindArray:
		for _, e := range v.Elems() {
			if containsRef(e) {
				return true
			}
		}
	case value.KindObject:
		for _, f := range v.Fields() {
			if containsRef(f.Value) {
				return true
			}
		}
	}
	return false
}

func renderAllowedValues(allowed []cty.Value) string {
	parts := make([]string, len(allowed))
	for i, a := range allowed {
		parts[i] = value.Lit(a).String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
