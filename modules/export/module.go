// Package export provides the export atoms, turning the threaded value into
// a serialized string for downstream delivery.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cast"
	"github.com/zclconf/go-cty/cty"

	"github.com/analytica/atomflow/internal/atom"
	"github.com/analytica/atomflow/internal/rows"
	"github.com/analytica/atomflow/internal/run"
	"github.com/analytica/atomflow/internal/value"
)

// Module implements atom.Module for this package.
type Module struct{}

// Register registers the export atoms.
func (m *Module) Register(r *atom.Registry) {
	r.MustRegister(atom.Spec{
		Type:        "export",
		Action:      "to_json",
		Description: "Serialize the current value as JSON text.",
		Params: []atom.ParamSpec{
			atom.Optional("pretty", cty.Bool, cty.False, "Indent the output."),
		},
	}, onToJSON)

	r.MustRegister(atom.Spec{
		Type:        "export",
		Action:      "to_csv",
		Description: "Serialize the current rows as CSV text.",
		Params: []atom.ParamSpec{
			atom.Optional("fields", cty.List(cty.String), cty.NullVal(cty.List(cty.String)), "Column order; sorted field names when absent."),
		},
	}, onToCSV)
}

func onToJSON(ctx context.Context, rc *run.Context, args *atom.Args) (cty.Value, error) {
	data := value.ToGo(rc.Value)
	var (
		out []byte
		err error
	)
	if args.Bool("pretty") {
		out, err = json.MarshalIndent(data, "", "  ")
	} else {
		out, err = json.Marshal(data)
	}
	if err != nil {
		return cty.NilVal, fmt.Errorf("encoding JSON: %w", err)
	}
	return cty.StringVal(string(out)), nil
}

func onToCSV(ctx context.Context, rc *run.Context, args *atom.Args) (cty.Value, error) {
	recs, err := rows.FromValue(rc.Value)
	if err != nil {
		return cty.NilVal, err
	}

	header := args.Strings("fields")
	if header == nil {
		seen := make(map[string]bool)
		for _, rec := range recs {
			for k := range rec {
				if !seen[k] {
					seen[k] = true
					header = append(header, k)
				}
			}
		}
		sort.Strings(header)
	}
	if len(header) == 0 {
		return cty.NilVal, fmt.Errorf("no fields to export")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return cty.NilVal, err
	}
	record := make([]string, len(header))
	for _, rec := range recs {
		for i, field := range header {
			record[i] = cast.ToString(rec[field])
		}
		if err := w.Write(record); err != nil {
			return cty.NilVal, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return cty.NilVal, err
	}
	return cty.StringVal(buf.String()), nil
}
