package integration_tests

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/analytica/atomflow/internal/atom"
	"github.com/analytica/atomflow/internal/builder"
	"github.com/analytica/atomflow/internal/engine"
	"github.com/analytica/atomflow/internal/executor"
	"github.com/analytica/atomflow/modules/metrics"
	"github.com/analytica/atomflow/modules/view"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// runBuilderPipeline executes a per-tenant definition: a total plus a view
// that only the planbudzetu.pl tenant should see.
func runBuilderPipeline(t *testing.T, domain string) *executor.Result {
	t.Helper()

	reg := atom.New()
	(&metrics.Module{}).Register(reg)
	(&view.Module{}).Register(reg)

	def := builder.New().
		Name("tenant_overview").
		Metrics().Sum("amount").
		View().Card("total", builder.Named("title", "Budget overview")).
		When(`domain == "planbudzetu.pl"`).
		Definition()

	input := cty.TupleVal([]cty.Value{
		cty.ObjectVal(map[string]cty.Value{"amount": cty.NumberIntVal(700)}),
		cty.ObjectVal(map[string]cty.Value{"amount": cty.NumberIntVal(300)}),
	})
	return engine.New(reg).Execute(context.Background(), def, input, nil, domain)
}
