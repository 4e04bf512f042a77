// Package rows converts the pipeline's threaded value to and from tabular
// Go data. Most business atoms operate on a list of records; this package
// centralizes the coercion so handlers stay small.
package rows

import (
	"fmt"

	"github.com/spf13/cast"
	"github.com/zclconf/go-cty/cty"

	"github.com/analytica/atomflow/internal/value"
)

// FromValue interprets the value as a list of records. A single record is
// promoted to a one-row list so aggregations work on scalars of the right
// shape.
func FromValue(v cty.Value) ([]map[string]any, error) {
	data := value.ToGo(v)
	switch x := data.(type) {
	case nil:
		return nil, nil
	case []any:
		out := make([]map[string]any, 0, len(x))
		for i, e := range x {
			rec, ok := e.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("row %d is %T, expected a record", i, e)
			}
			out = append(out, rec)
		}
		return out, nil
	case map[string]any:
		return []map[string]any{x}, nil
	default:
		return nil, fmt.Errorf("value is %T, expected a list of records", data)
	}
}

// ToValue converts records back into the pipeline's value form.
func ToValue(recs []map[string]any) (cty.Value, error) {
	out := make([]any, len(recs))
	for i, r := range recs {
		out[i] = r
	}
	return value.FromGo(out)
}

// Floats extracts the named field from every record as a float64. Records
// missing the field are an error so a typo'd field name fails loudly instead
// of aggregating zeros.
func Floats(recs []map[string]any, field string) ([]float64, error) {
	out := make([]float64, len(recs))
	for i, r := range recs {
		raw, ok := r[field]
		if !ok {
			return nil, fmt.Errorf("row %d has no field %q", i, field)
		}
		f, err := cast.ToFloat64E(raw)
		if err != nil {
			return nil, fmt.Errorf("row %d field %q: %v", i, field, err)
		}
		out[i] = f
	}
	return out, nil
}

// Numbers interprets the value as a flat series of numbers: either a list
// of numbers or a list of records carrying the named field.
func Numbers(v cty.Value, field string) ([]float64, error) {
	data := value.ToGo(v)
	list, ok := data.([]any)
	if !ok {
		return nil, fmt.Errorf("value is %T, expected a list", data)
	}
	out := make([]float64, len(list))
	for i, e := range list {
		if rec, isRec := e.(map[string]any); isRec {
			raw, has := rec[field]
			if !has {
				return nil, fmt.Errorf("row %d has no field %q", i, field)
			}
			e = raw
		}
		f, err := cast.ToFloat64E(e)
		if err != nil {
			return nil, fmt.Errorf("element %d: %v", i, err)
		}
		out[i] = f
	}
	return out, nil
}
