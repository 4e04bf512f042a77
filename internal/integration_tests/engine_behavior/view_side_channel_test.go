package integration_tests

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/analytica/atomflow/internal/app"
)

// TestEngine_ViewsAreASideChannel verifies that view atoms accumulate
// descriptors without disturbing the data flowing between computation steps.
func TestEngine_ViewsAreASideChannel(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// A view sits in the middle of the chain; the metrics step after it must
	// still see the row list, not the view descriptor.
	source := `data.from_input()` +
		` | view.table(title="Raw rows")` +
		` | metrics.calculate(metrics=["sum", "count"], field="amount")` +
		` | view.kpi(value="sum", target=2000, title="Total spend", data_path="")` +
		` | view.card(value="count", title="Row count")`

	appConfig, err := app.NewConfig(app.Config{Command: app.CommandRun, Source: source})
	require.NoError(t, err)
	testApp, outBuffer, _ := app.SetupAppTest(t, appConfig)
	appConfig.InputPath = writeTempFile(t, "input.json", `[{"amount": 1200}, {"amount": 300}]`)

	// --- Act ---
	runErr := testApp.Run(context.Background(), appConfig)

	// --- Assert ---
	require.NoError(t, runErr)

	var result struct {
		Status string `json:"status"`
		Value  map[string]any
		Views  []struct {
			ID     string         `json:"id"`
			Type   string         `json:"type"`
			Title  string         `json:"title"`
			Fields map[string]any `json:"fields"`
		} `json:"views"`
	}
	require.NoError(t, json.Unmarshal([]byte(outBuffer.String()), &result),
		"output was: %s", outBuffer.String())

	assert.Equal(t, "success", result.Status)
	assert.Equal(t, float64(1500), result.Value["sum"])
	assert.Equal(t, float64(2), result.Value["count"])

	// Views arrive in emission order with run-scoped ids.
	require.Len(t, result.Views, 3)
	assert.Equal(t, "table_1", result.Views[0].ID)
	assert.Equal(t, "kpi_2", result.Views[1].ID)
	assert.Equal(t, "card_3", result.Views[2].ID)

	// The table captured the rows as they were at its step, not the final
	// aggregate.
	tableData, ok := result.Views[0].Fields["data"].([]any)
	require.True(t, ok)
	assert.Len(t, tableData, 2)

	kpi := result.Views[1]
	assert.Equal(t, "Total spend", kpi.Title)
	assert.Equal(t, float64(2000), kpi.Fields["target"])
	kpiData, ok := kpi.Fields["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1500), kpiData["sum"])
}

// TestEngine_ViewsAccumulateWithoutExplicitChartType runs a card/chart pair
// where the chart names only its axes; the chart style falls back to bar
// and both views accumulate with the value untouched.
func TestEngine_ViewsAccumulateWithoutExplicitChartType(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	source := `data.from_input() | view.card(value="x") | view.chart(x="x", y="x")`
	appConfig, err := app.NewConfig(app.Config{Command: app.CommandRun, Source: source})
	require.NoError(t, err)
	testApp, outBuffer, _ := app.SetupAppTest(t, appConfig)
	appConfig.InputPath = writeTempFile(t, "input.json", `{"x": 5}`)

	// --- Act ---
	runErr := testApp.Run(context.Background(), appConfig)

	// --- Assert ---
	require.NoError(t, runErr)

	var result struct {
		Status string         `json:"status"`
		Value  map[string]any `json:"value"`
		Views  []struct {
			ID     string         `json:"id"`
			Fields map[string]any `json:"fields"`
		} `json:"views"`
	}
	require.NoError(t, json.Unmarshal([]byte(outBuffer.String()), &result),
		"output was: %s", outBuffer.String())

	assert.Equal(t, "success", result.Status)
	assert.Equal(t, map[string]any{"x": float64(5)}, result.Value)

	require.Len(t, result.Views, 2)
	assert.Equal(t, "card_1", result.Views[0].ID)
	assert.Equal(t, "chart_2", result.Views[1].ID)
	assert.Equal(t, "bar", result.Views[1].Fields["chart_type"])
}
