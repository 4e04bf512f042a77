// Package transform provides the row transformation atoms: filter, sort,
// limit, select, and rename. They all treat the threaded value as a list of
// records and return a new list; the input is never mutated.
package transform

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cast"
	"github.com/zclconf/go-cty/cty"

	"github.com/analytica/atomflow/internal/atom"
	"github.com/analytica/atomflow/internal/rows"
	"github.com/analytica/atomflow/internal/run"
)

// Module implements atom.Module for this package.
type Module struct{}

// Register registers the transform atoms.
func (m *Module) Register(r *atom.Registry) {
	// filter takes open-ended `field` / `field__op` conditions, so it
	// declares no parameters; the parser warns on unknown names and the
	// handler reads them all.
	r.MustRegister(atom.Spec{
		Type:        "transform",
		Action:      "filter",
		Description: "Keep rows matching every field or field__op condition (eq, ne, gt, gte, lt, lte, contains).",
	}, onFilter)

	r.MustRegister(atom.Spec{
		Type:        "transform",
		Action:      "sort",
		Description: "Sort rows by one field.",
		Params: []atom.ParamSpec{
			atom.Required("by", cty.String, "Field to sort by."),
			atom.Optional("order", cty.String, cty.StringVal("asc"), "asc or desc."),
		},
	}, onSort)

	r.MustRegister(atom.Spec{
		Type:        "transform",
		Action:      "limit",
		Description: "Keep the first n rows.",
		Params: []atom.ParamSpec{
			atom.Required("n", cty.Number, "Maximum number of rows."),
		},
	}, onLimit)

	r.MustRegister(atom.Spec{
		Type:        "transform",
		Action:      "select",
		Description: "Keep only the named fields of every row.",
		Params: []atom.ParamSpec{
			atom.Required("fields", cty.List(cty.String), "Fields to keep."),
		},
	}, onSelect)

	// rename takes open-ended old=new pairs, same shape as filter.
	r.MustRegister(atom.Spec{
		Type:        "transform",
		Action:      "rename",
		Description: "Rename row fields, one old=\"new\" pair per argument.",
	}, onRename)
}

func onFilter(ctx context.Context, rc *run.Context, args *atom.Args) (cty.Value, error) {
	recs, err := rows.FromValue(rc.Value)
	if err != nil {
		return cty.NilVal, err
	}

	type cond struct {
		field, op string
		want      cty.Value
	}
	var conds []cond
	args.Each(func(name string, v cty.Value) {
		field, op := name, "eq"
		if i := strings.Index(name, "__"); i > 0 {
			field, op = name[:i], name[i+2:]
		}
		conds = append(conds, cond{field: field, op: op, want: v})
	})

	var kept []map[string]any
	for _, rec := range recs {
		match := true
		for _, c := range conds {
			ok, err := compare(rec[c.field], c.op, c.want)
			if err != nil {
				return cty.NilVal, fmt.Errorf("condition %s__%s: %w", c.field, c.op, err)
			}
			if !ok {
				match = false
				break
			}
		}
		if match {
			kept = append(kept, rec)
		}
	}
	rc.Logf("filter kept %d of %d rows", len(kept), len(recs))
	return rows.ToValue(kept)
}

func compare(got any, op string, want cty.Value) (bool, error) {
	switch op {
	case "eq", "ne":
		equal := looselyEqual(got, want)
		if op == "ne" {
			return !equal, nil
		}
		return equal, nil
	case "contains":
		return strings.Contains(cast.ToString(got), wantString(want)), nil
	case "gt", "gte", "lt", "lte":
		g, err := cast.ToFloat64E(got)
		if err != nil {
			return false, err
		}
		w, err := cast.ToFloat64E(wantGo(want))
		if err != nil {
			return false, err
		}
		switch op {
		case "gt":
			return g > w, nil
		case "gte":
			return g >= w, nil
		case "lt":
			return g < w, nil
		default:
			return g <= w, nil
		}
	default:
		return false, fmt.Errorf("unknown operator %q", op)
	}
}

func looselyEqual(got any, want cty.Value) bool {
	if want.Type() == cty.Number {
		g, err := cast.ToFloat64E(got)
		if err != nil {
			return false
		}
		w, _ := want.AsBigFloat().Float64()
		return g == w
	}
	return cast.ToString(got) == wantString(want)
}

func wantString(want cty.Value) string {
	return cast.ToString(wantGo(want))
}

func wantGo(want cty.Value) any {
	if want.IsNull() {
		return nil
	}
	switch want.Type() {
	case cty.String:
		return want.AsString()
	case cty.Bool:
		return want.True()
	case cty.Number:
		f, _ := want.AsBigFloat().Float64()
		return f
	default:
		return nil
	}
}

func onSort(ctx context.Context, rc *run.Context, args *atom.Args) (cty.Value, error) {
	recs, err := rows.FromValue(rc.Value)
	if err != nil {
		return cty.NilVal, err
	}
	by := args.String("by")
	order := args.String("order")
	if order != "asc" && order != "desc" {
		return cty.NilVal, fmt.Errorf("order must be asc or desc, got %q", order)
	}

	sorted := make([]map[string]any, len(recs))
	copy(sorted, recs)
	sort.SliceStable(sorted, func(i, j int) bool {
		less := lessValues(sorted[i][by], sorted[j][by])
		if order == "desc" {
			return !less && !sameValues(sorted[i][by], sorted[j][by])
		}
		return less
	})
	return rows.ToValue(sorted)
}

func lessValues(a, b any) bool {
	af, aerr := cast.ToFloat64E(a)
	bf, berr := cast.ToFloat64E(b)
	if aerr == nil && berr == nil {
		return af < bf
	}
	return cast.ToString(a) < cast.ToString(b)
}

func sameValues(a, b any) bool {
	return !lessValues(a, b) && !lessValues(b, a)
}

func onLimit(ctx context.Context, rc *run.Context, args *atom.Args) (cty.Value, error) {
	recs, err := rows.FromValue(rc.Value)
	if err != nil {
		return cty.NilVal, err
	}
	n := args.Int("n")
	if n < 0 {
		return cty.NilVal, fmt.Errorf("n must be non-negative, got %d", n)
	}
	if n < len(recs) {
		recs = recs[:n]
	}
	return rows.ToValue(recs)
}

func onSelect(ctx context.Context, rc *run.Context, args *atom.Args) (cty.Value, error) {
	recs, err := rows.FromValue(rc.Value)
	if err != nil {
		return cty.NilVal, err
	}
	fields := args.Strings("fields")

	out := make([]map[string]any, len(recs))
	for i, rec := range recs {
		slim := make(map[string]any, len(fields))
		for _, f := range fields {
			if v, ok := rec[f]; ok {
				slim[f] = v
			}
		}
		out[i] = slim
	}
	return rows.ToValue(out)
}

func onRename(ctx context.Context, rc *run.Context, args *atom.Args) (cty.Value, error) {
	recs, err := rows.FromValue(rc.Value)
	if err != nil {
		return cty.NilVal, err
	}
	mapping := make(map[string]string)
	args.Each(func(oldName string, v cty.Value) {
		if v.Type() == cty.String && !v.IsNull() {
			mapping[oldName] = v.AsString()
		}
	})

	out := make([]map[string]any, len(recs))
	for i, rec := range recs {
		renamed := make(map[string]any, len(rec))
		for k, v := range rec {
			if newName, ok := mapping[k]; ok {
				k = newName
			}
			renamed[k] = v
		}
		out[i] = renamed
	}
	return rows.ToValue(out)
}
