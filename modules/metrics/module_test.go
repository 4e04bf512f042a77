package metrics_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/analytica/atomflow/internal/atom"
	"github.com/analytica/atomflow/internal/engine"
	"github.com/analytica/atomflow/internal/executor"
	"github.com/analytica/atomflow/internal/value"
	"github.com/analytica/atomflow/modules/metrics"
)

func runDSL(t *testing.T, src string, input any) *executor.Result {
	t.Helper()
	reg := atom.New()
	(&metrics.Module{}).Register(reg)
	in, err := value.FromGo(input)
	require.NoError(t, err)
	res, err := engine.New(reg).ExecuteDSL(context.Background(), src, in, nil, "")
	require.NoError(t, err)
	return res
}

func rowsOf(amounts ...any) []any {
	out := make([]any, len(amounts))
	for i, a := range amounts {
		out[i] = map[string]any{"amount": a}
	}
	return out
}

func TestAggregates(t *testing.T) {
	t.Parallel()

	input := rowsOf(10, 20, 5)

	testCases := []struct {
		src  string
		want any
	}{
		{`metrics.sum("amount")`, int64(35)},
		{`metrics.avg("amount")`, float64(35) / 3},
		{`metrics.min("amount")`, int64(5)},
		{`metrics.max("amount")`, int64(20)},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.src, func(t *testing.T) {
			t.Parallel()
			res := runDSL(t, tc.src, input)
			require.Equal(t, executor.StatusSuccess, res.Status, "errors: %v", res.Errors)
			assert.Equal(t, tc.want, value.ToGo(res.Value))
		})
	}
}

func TestSum_ZeroRowsIsZero(t *testing.T) {
	t.Parallel()

	res := runDSL(t, `metrics.sum("amount")`, []any{})
	require.Equal(t, executor.StatusSuccess, res.Status, "errors: %v", res.Errors)
	assert.Equal(t, int64(0), value.ToGo(res.Value))
}

func TestAvg_ZeroRowsFails(t *testing.T) {
	t.Parallel()

	res := runDSL(t, `metrics.avg("amount")`, []any{})
	assert.Equal(t, executor.StatusError, res.Status)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, "zero rows")
}

func TestSum_MissingFieldFails(t *testing.T) {
	t.Parallel()

	res := runDSL(t, `metrics.sum("missing")`, rowsOf(10))
	assert.Equal(t, executor.StatusError, res.Status)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, `no field "missing"`)
}

func TestCount(t *testing.T) {
	t.Parallel()

	t.Run("list", func(t *testing.T) {
		t.Parallel()
		res := runDSL(t, `metrics.count()`, rowsOf(1, 2, 3))
		assert.Equal(t, int64(3), value.ToGo(res.Value))
	})

	t.Run("scalar counts as one", func(t *testing.T) {
		t.Parallel()
		res := runDSL(t, `metrics.count()`, 42)
		assert.Equal(t, int64(1), value.ToGo(res.Value))
	})

	t.Run("null counts as zero", func(t *testing.T) {
		t.Parallel()
		reg := atom.New()
		(&metrics.Module{}).Register(reg)
		res, err := engine.New(reg).ExecuteDSL(context.Background(), `metrics.count()`, cty.NilVal, nil, "")
		require.NoError(t, err)
		assert.Equal(t, int64(0), value.ToGo(res.Value))
	})
}

func TestPercentile(t *testing.T) {
	t.Parallel()

	input := rowsOf(10, 20, 30, 40)

	t.Run("median interpolates", func(t *testing.T) {
		t.Parallel()
		res := runDSL(t, `metrics.percentile("amount", p=50)`, input)
		require.Equal(t, executor.StatusSuccess, res.Status, "errors: %v", res.Errors)
		assert.Equal(t, int64(25), value.ToGo(res.Value))
	})

	t.Run("endpoints", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, int64(10), value.ToGo(runDSL(t, `metrics.percentile("amount", p=0)`, input).Value))
		assert.Equal(t, int64(40), value.ToGo(runDSL(t, `metrics.percentile("amount", p=100)`, input).Value))
	})

	t.Run("out of range", func(t *testing.T) {
		t.Parallel()
		res := runDSL(t, `metrics.percentile("amount", p=101)`, input)
		assert.Equal(t, executor.StatusError, res.Status)
	})
}

func TestCalculate(t *testing.T) {
	t.Parallel()

	res := runDSL(t, `metrics.calculate(metrics=["sum", "avg", "count"], field="amount")`, rowsOf(10, 20))
	require.Equal(t, executor.StatusSuccess, res.Status, "errors: %v", res.Errors)

	out, ok := value.ToGo(res.Value).(map[string]any)
	require.True(t, ok)
	assert.Equal(t, int64(30), out["sum"])
	assert.Equal(t, int64(15), out["avg"])
	assert.Equal(t, int64(2), out["count"])
}

func TestCalculate_UnknownMetricFails(t *testing.T) {
	t.Parallel()

	res := runDSL(t, `metrics.calculate(metrics=["median"], field="amount")`, rowsOf(1))
	assert.Equal(t, executor.StatusError, res.Status)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, `unknown metric "median"`)
}
