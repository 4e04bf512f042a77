package integration_tests

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/analytica/atomflow/internal/app"
	"github.com/analytica/atomflow/internal/cli"
)

// TestCLI_ParsedConfigDrivesAFullRun wires the flag parser to the app and
// executes a pipeline file end to end, the way main() does.
func TestCLI_ParsedConfigDrivesAFullRun(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	tempDir := t.TempDir()
	pipelinePath := filepath.Join(tempDir, "spend.dsl")
	pipelineDSL := "@pipeline spend:\n" +
		"  $cap = 3\n" +
		"  transform.sort(by=\"amount\", order=\"desc\") | transform.limit($cap) | metrics.sum(\"amount\")\n"
	require.NoError(t, os.WriteFile(pipelinePath, []byte(pipelineDSL), 0600))

	inputPath := filepath.Join(tempDir, "input.json")
	inputJSON := `[{"amount": 5}, {"amount": 40}, {"amount": 30}, {"amount": 20}]`
	require.NoError(t, os.WriteFile(inputPath, []byte(inputJSON), 0600))

	outW := &bytes.Buffer{}
	appConfig, shouldExit, err := cli.Parse([]string{
		"run", "-p", pipelinePath, "-input", inputPath, "-var", "cap=2",
	}, outW)
	require.NoError(t, err)
	require.False(t, shouldExit)

	testApp, outBuffer, _ := app.SetupAppTest(t, appConfig)

	// --- Act ---
	runErr := testApp.Run(context.Background(), appConfig)

	// --- Assert ---
	require.NoError(t, runErr)

	var result struct {
		Status string `json:"status"`
		Value  any    `json:"value"`
	}
	require.NoError(t, json.Unmarshal([]byte(outBuffer.String()), &result),
		"output was: %s", outBuffer.String())
	assert.Equal(t, "success", result.Status)

	// The -var override caps the run at the top 2 amounts: 40 + 30.
	assert.Equal(t, float64(70), result.Value)
}

// TestCLI_UnknownFlagIsAnExitError verifies flag errors carry exit code 2.
func TestCLI_UnknownFlagIsAnExitError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	outW := &bytes.Buffer{}

	// --- Act ---
	_, _, err := cli.Parse([]string{"run", "--no-such-flag"}, outW)

	// --- Assert ---
	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}
