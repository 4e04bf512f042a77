package integration_tests

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/analytica/atomflow/internal/app"
)

// TestEngine_BudgetAnalysisEndToEnd exercises a realistic analysis chain
// with the full core module set: filter, categorize, and chart in one run.
func TestEngine_BudgetAnalysisEndToEnd(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	source := `data.from_input()` +
		` | transform.filter(amount__gte=100)` +
		` | budget.categorize(by="category")` +
		` | view.chart(type="bar", x="category", y="total", title="Spend by category")`

	appConfig, err := app.NewConfig(app.Config{
		Command: app.CommandRun,
		Source:  source,
	})
	require.NoError(t, err)

	testApp, outBuffer, _ := app.SetupAppTest(t, appConfig)

	input := `[
		{"category": "facilities", "amount": 1200},
		{"category": "facilities", "amount": 50},
		{"category": "marketing", "amount": 900},
		{"category": "equipment", "amount": 4500}
	]`
	appConfig.InputPath = writeTempFile(t, "input.json", input)

	// --- Act ---
	runErr := testApp.Run(context.Background(), appConfig)

	// --- Assert ---
	require.NoError(t, runErr)

	var result struct {
		Status string `json:"status"`
		Value  []struct {
			Category string  `json:"category"`
			Count    int     `json:"count"`
			Total    float64 `json:"total"`
		} `json:"value"`
		Views []struct {
			ID     string         `json:"id"`
			Type   string         `json:"type"`
			Title  string         `json:"title"`
			Fields map[string]any `json:"fields"`
		} `json:"views"`
		Executed []string `json:"executed"`
	}
	require.NoError(t, json.Unmarshal([]byte(outBuffer.String()), &result),
		"output was: %s", outBuffer.String())

	assert.Equal(t, "success", result.Status)
	assert.Equal(t, []string{
		"data.from_input", "transform.filter", "budget.categorize", "view.chart",
	}, result.Executed)

	// The 50 facilities row is filtered out before categorization.
	require.Len(t, result.Value, 3)
	assert.Equal(t, "equipment", result.Value[0].Category)
	assert.Equal(t, float64(4500), result.Value[0].Total)
	assert.Equal(t, "facilities", result.Value[1].Category)
	assert.Equal(t, 1, result.Value[1].Count)

	require.Len(t, result.Views, 1)
	assert.Equal(t, "chart_1", result.Views[0].ID)
	assert.Equal(t, "Spend by category", result.Views[0].Title)
	assert.Equal(t, "bar", result.Views[0].Fields["chart_type"])
}

// TestEngine_DomainScopedRuns verifies the same definition behaves
// differently per tenant domain through condition guards.
func TestEngine_DomainScopedRuns(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// Conditions have no DSL text surface, so this test drives the engine
	// through the builder.
	run := func(domain string) (string, []string) {
		t.Helper()
		res := runBuilderPipeline(t, domain)
		views := make([]string, len(res.Views))
		for i, v := range res.Views {
			views[i] = v.Title
		}
		return string(res.Status), views
	}

	// --- Act ---
	status, views := run("planbudzetu.pl")
	otherStatus, otherViews := run("other.example")

	// --- Assert ---
	assert.Equal(t, "success", status)
	assert.Equal(t, []string{"Budget overview"}, views)

	assert.Equal(t, "success", otherStatus)
	assert.Empty(t, otherViews, "the guarded view must not run for other tenants")
}
