package export_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/analytica/atomflow/internal/atom"
	"github.com/analytica/atomflow/internal/engine"
	"github.com/analytica/atomflow/internal/executor"
	"github.com/analytica/atomflow/internal/value"
	"github.com/analytica/atomflow/modules/export"
)

func runDSL(t *testing.T, src string, input any) *executor.Result {
	t.Helper()
	reg := atom.New()
	(&export.Module{}).Register(reg)
	in, err := value.FromGo(input)
	require.NoError(t, err)
	res, err := engine.New(reg).ExecuteDSL(context.Background(), src, in, nil, "")
	require.NoError(t, err)
	return res
}

func text(t *testing.T, res *executor.Result) string {
	t.Helper()
	s, ok := value.ToGo(res.Value).(string)
	require.True(t, ok, "value is %T", value.ToGo(res.Value))
	return s
}

func TestToJSON(t *testing.T) {
	t.Parallel()

	input := []any{map[string]any{"name": "rent", "amount": 1200}}

	t.Run("compact by default", func(t *testing.T) {
		t.Parallel()
		res := runDSL(t, `export.to_json()`, input)
		require.Equal(t, executor.StatusSuccess, res.Status, "errors: %v", res.Errors)
		assert.Equal(t, `[{"amount":1200,"name":"rent"}]`, text(t, res))
	})

	t.Run("pretty", func(t *testing.T) {
		t.Parallel()
		res := runDSL(t, `export.to_json(pretty=true)`, input)
		out := text(t, res)
		assert.Contains(t, out, "\n  ")

		var decoded []map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &decoded))
		assert.Equal(t, "rent", decoded[0]["name"])
	})

	t.Run("scalar value", func(t *testing.T) {
		t.Parallel()
		res := runDSL(t, `export.to_json()`, 42)
		assert.Equal(t, "42", text(t, res))
	})
}

func TestToCSV(t *testing.T) {
	t.Parallel()

	input := []any{
		map[string]any{"name": "rent", "amount": 1200, "category": "facilities"},
		map[string]any{"name": "ads", "amount": 900, "category": "marketing"},
	}

	t.Run("sorted field names by default", func(t *testing.T) {
		t.Parallel()
		res := runDSL(t, `export.to_csv()`, input)
		require.Equal(t, executor.StatusSuccess, res.Status, "errors: %v", res.Errors)
		assert.Equal(t, "amount,category,name\n1200,facilities,rent\n900,marketing,ads\n", text(t, res))
	})

	t.Run("explicit field order", func(t *testing.T) {
		t.Parallel()
		res := runDSL(t, `export.to_csv(fields=["name", "amount"])`, input)
		assert.Equal(t, "name,amount\nrent,1200\nads,900\n", text(t, res))
	})

	t.Run("missing fields come out empty", func(t *testing.T) {
		t.Parallel()
		res := runDSL(t, `export.to_csv(fields=["name", "notes"])`, input)
		assert.Equal(t, "name,notes\nrent,\nads,\n", text(t, res))
	})

	t.Run("quoting", func(t *testing.T) {
		t.Parallel()
		res := runDSL(t, `export.to_csv(fields=["name"])`, []any{
			map[string]any{"name": `coffee, "premium"`},
		})
		assert.Equal(t, "name\n\"coffee, \"\"premium\"\"\"\n", text(t, res))
	})

	t.Run("empty input has no fields", func(t *testing.T) {
		t.Parallel()
		res := runDSL(t, `export.to_csv()`, []any{})
		assert.Equal(t, executor.StatusError, res.Status)
		require.Len(t, res.Errors, 1)
		assert.Contains(t, res.Errors[0].Message, "no fields to export")
	})

	t.Run("non-tabular value fails", func(t *testing.T) {
		t.Parallel()
		res := runDSL(t, `export.to_csv()`, "a string")
		assert.Equal(t, executor.StatusError, res.Status)
	})
}
