package run

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestNewContext_Defaults(t *testing.T) {
	t.Parallel()

	rc := NewContext(cty.NilVal, nil, "")

	assert.True(t, rc.Value.IsNull())
	assert.NotNil(t, rc.Variables)
	assert.Empty(t, rc.Views())
	assert.Empty(t, rc.Logs())
	assert.Empty(t, rc.Errors())
}

func TestContext_AppendViewAssignsSequentialIDs(t *testing.T) {
	t.Parallel()

	rc := NewContext(cty.NilVal, nil, "")

	first := rc.AppendView(ViewSpec{Type: "chart"})
	second := rc.AppendView(ViewSpec{Type: "card"})
	third := rc.AppendView(ViewSpec{Type: "chart"})

	assert.Equal(t, "chart_1", first.ID)
	assert.Equal(t, "card_2", second.ID)
	assert.Equal(t, "chart_3", third.ID)

	views := rc.Views()
	require.Len(t, views, 3)
	assert.Equal(t, []string{"chart_1", "card_2", "chart_3"},
		[]string{views[0].ID, views[1].ID, views[2].ID})
}

func TestContext_AddErrorAlsoLogs(t *testing.T) {
	t.Parallel()

	rc := NewContext(cty.NilVal, nil, "")
	rc.AddError(StepError{StepIndex: 2, Atom: "metrics.sum", Message: "no rows"})

	require.Len(t, rc.Errors(), 1)
	assert.Equal(t, "step 2 (metrics.sum): no rows", rc.Errors()[0].Error())
	require.Len(t, rc.Logs(), 1)
	assert.Contains(t, rc.Logs()[0], "metrics.sum")
}

func TestContext_ValueAt(t *testing.T) {
	t.Parallel()

	rc := NewContext(cty.ObjectVal(map[string]cty.Value{
		"totals": cty.ObjectVal(map[string]cty.Value{
			"revenue": cty.NumberIntVal(1200),
		}),
		"rows": cty.ListVal([]cty.Value{cty.NumberIntVal(1)}),
	}), nil, "")

	t.Run("empty path returns whole value", func(t *testing.T) {
		t.Parallel()
		v, err := rc.ValueAt("")
		require.NoError(t, err)
		assert.True(t, v.RawEquals(rc.Value))
	})

	t.Run("nested field", func(t *testing.T) {
		t.Parallel()
		v, err := rc.ValueAt("totals.revenue")
		require.NoError(t, err)
		assert.True(t, v.RawEquals(cty.NumberIntVal(1200)))
	})

	t.Run("map value", func(t *testing.T) {
		t.Parallel()
		mapped := NewContext(cty.MapVal(map[string]cty.Value{
			"a": cty.StringVal("x"),
		}), nil, "")
		v, err := mapped.ValueAt("a")
		require.NoError(t, err)
		assert.True(t, v.RawEquals(cty.StringVal("x")))
	})

	t.Run("missing field", func(t *testing.T) {
		t.Parallel()
		_, err := rc.ValueAt("totals.profit")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `no field "profit"`)
	})

	t.Run("descending into a list", func(t *testing.T) {
		t.Parallel()
		_, err := rc.ValueAt("rows.first")
		assert.Error(t, err)
	})

	t.Run("null value", func(t *testing.T) {
		t.Parallel()
		nullCtx := NewContext(cty.NilVal, nil, "")
		_, err := nullCtx.ValueAt("anything")
		assert.Error(t, err)
	})
}
