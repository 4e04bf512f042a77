package value

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Kind discriminates the variants of a Value.
type Kind int

const (
	KindLiteral Kind = iota
	KindRef
	KindArray
	KindObject
)

// Value is one parameter or variable value inside a pipeline definition.
// The zero Value is the null literal.
type Value struct {
	kind   Kind
	lit    cty.Value
	ref    string
	elems  []Value
	fields []Field
}

// Field is a single named entry of an object value. Declaration order is
// preserved for serialization.
type Field struct {
	Name  string
	Value Value
}

// UnresolvedVariableError reports a `$name` reference with no binding in the
// run's variable map.
type UnresolvedVariableError struct {
	Name string
}

func (e *UnresolvedVariableError) Error() string {
	return fmt.Sprintf("undefined variable: $%s", e.Name)
}

// Null returns the null literal.
func Null() Value {
	return Value{kind: KindLiteral, lit: cty.NullVal(cty.DynamicPseudoType)}
}

// String returns a string literal.
func String(s string) Value {
	return Value{kind: KindLiteral, lit: cty.StringVal(s)}
}

// Bool returns a boolean literal.
func Bool(b bool) Value {
	return Value{kind: KindLiteral, lit: cty.BoolVal(b)}
}

// Number returns a numeric literal from a float.
func Number(f float64) Value {
	return Value{kind: KindLiteral, lit: cty.NumberFloatVal(f)}
}

// Int returns a numeric literal from an integer.
func Int(i int64) Value {
	return Value{kind: KindLiteral, lit: cty.NumberIntVal(i)}
}

// NumberText parses a decimal number literal exactly as written in source.
func NumberText(text string) (Value, error) {
	if _, err := strconv.ParseFloat(text, 64); err != nil {
		return Value{}, fmt.Errorf("invalid number literal %q", text)
	}
	return Value{kind: KindLiteral, lit: cty.MustParseNumberVal(text)}, nil
}

// Ref returns an unresolved `$name` variable reference.
func Ref(name string) Value {
	return Value{kind: KindRef, ref: name}
}

// Array returns an array value preserving element order.
func Array(elems ...Value) Value {
	return Value{kind: KindArray, elems: elems}
}

// Object returns an object value preserving field order.
func Object(fields ...Field) Value {
	return Value{kind: KindObject, fields: fields}
}

// Lit wraps an already-materialized cty value as a literal.
func Lit(v cty.Value) Value {
	if v == cty.NilVal {
		return Null()
	}
	return Value{kind: KindLiteral, lit: v}
}

// Kind reports the variant of the value.
func (v Value) Kind() Kind { return v.kind }

// IsRef reports whether the value is an unresolved variable reference.
func (v Value) IsRef() bool { return v.kind == KindRef }

// RefName returns the referenced variable name for KindRef values.
func (v Value) RefName() string { return v.ref }

// Elems returns the elements of a KindArray value.
func (v Value) Elems() []Value { return v.elems }

// Fields returns the ordered fields of a KindObject value.
func (v Value) Fields() []Field { return v.fields }

// Literal returns the backing cty value of a KindLiteral value.
func (v Value) Literal() cty.Value {
	if v.kind == KindLiteral && v.lit == cty.NilVal {
		return cty.NullVal(cty.DynamicPseudoType)
	}
	return v.lit
}

// Type reports the cty type the value will resolve to, with
// cty.DynamicPseudoType standing in wherever a variable reference makes the
// type unknowable before execution.
func (v Value) Type() cty.Type {
	switch v.kind {
	case KindRef:
		return cty.DynamicPseudoType
	case KindArray:
		types := make([]cty.Type, len(v.elems))
		for i, e := range v.elems {
			types[i] = e.Type()
		}
		return cty.Tuple(types)
	case KindObject:
		attrs := make(map[string]cty.Type, len(v.fields))
		for _, f := range v.fields {
			attrs[f.Name] = f.Value.Type()
		}
		return cty.Object(attrs)
	default:
		return v.Literal().Type()
	}
}

// Resolve materializes the value against the run's variable map. Refs look
// up by name; arrays and objects resolve element-wise.
func (v Value) Resolve(vars map[string]cty.Value) (cty.Value, error) {
	switch v.kind {
	case KindRef:
		bound, ok := vars[v.ref]
		if !ok {
			return cty.NilVal, &UnresolvedVariableError{Name: v.ref}
		}
		return bound, nil
	case KindArray:
		if len(v.elems) == 0 {
			return cty.EmptyTupleVal, nil
		}
		out := make([]cty.Value, len(v.elems))
		for i, e := range v.elems {
			r, err := e.Resolve(vars)
			if err != nil {
				return cty.NilVal, err
			}
			out[i] = r
		}
		return cty.TupleVal(out), nil
	case KindObject:
		if len(v.fields) == 0 {
			return cty.EmptyObjectVal, nil
		}
		out := make(map[string]cty.Value, len(v.fields))
		for _, f := range v.fields {
			r, err := f.Value.Resolve(vars)
			if err != nil {
				return cty.NilVal, err
			}
			out[f.Name] = r
		}
		return cty.ObjectVal(out), nil
	default:
		return v.Literal(), nil
	}
}

// Equal reports structural equality. Literal leaves compare with RawEquals,
// so 2 and 2.0 are the same number but "2" is not.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindRef:
		return v.ref == other.ref
	case KindArray:
		if len(v.elems) != len(other.elems) {
			return false
		}
		for i := range v.elems {
			if !v.elems[i].Equal(other.elems[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.fields) != len(other.fields) {
			return false
		}
		for i := range v.fields {
			if v.fields[i].Name != other.fields[i].Name ||
				!v.fields[i].Value.Equal(other.fields[i].Value) {
				return false
			}
		}
		return true
	default:
		return v.Literal().RawEquals(other.Literal())
	}
}

// String renders the value in DSL literal syntax.
func (v Value) String() string {
	switch v.kind {
	case KindRef:
		return "$" + v.ref
	case KindArray:
		parts := make([]string, len(v.elems))
		for i, e := range v.elems {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindObject:
		parts := make([]string, len(v.fields))
		for i, f := range v.fields {
			parts[i] = f.Name + ": " + f.Value.String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return renderLiteral(v.Literal())
	}
}

func renderLiteral(v cty.Value) string {
	if v.IsNull() {
		return "null"
	}
	switch v.Type() {
	case cty.String:
		return strconv.Quote(v.AsString())
	case cty.Bool:
		if v.True() {
			return "true"
		}
		return "false"
	case cty.Number:
		return v.AsBigFloat().Text('f', -1)
	default:
		// Non-primitive literals only arise from builder-supplied cty
		// values; render through the structural form.
		return renderComposite(v)
	}
}

func renderComposite(v cty.Value) string {
	ty := v.Type()
	switch {
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		var parts []string
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			parts = append(parts, renderLiteral(ev))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case ty.IsObjectType() || ty.IsMapType():
		var parts []string
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			parts = append(parts, k.AsString()+": "+renderLiteral(ev))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return "null"
	}
}
