package cli_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/analytica/atomflow/internal/app"
	"github.com/analytica/atomflow/internal/cli"
)

func TestParse_RunCommand(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	cfg, shouldExit, err := cli.Parse([]string{"run", "-e", `metrics.count()`}, &out)

	require.NoError(t, err)
	assert.False(t, shouldExit)
	require.NotNil(t, cfg)
	assert.Equal(t, app.CommandRun, cfg.Command)
	assert.Equal(t, `metrics.count()`, cfg.Source)
	assert.Equal(t, "json", cfg.Output)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestParse_AllFlags(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	cfg, _, err := cli.Parse([]string{
		"run",
		"-p", "pipelines/",
		"-name", "monthly",
		"-input", "input.json",
		"-var", "year=2024",
		"-var", `region="eu"`,
		"-domain", "planbudzetu.pl",
		"-output", "yaml",
		"-log-format", "json",
		"-log-level", "debug",
	}, &out)

	require.NoError(t, err)
	assert.Equal(t, "pipelines/", cfg.PipelinePath)
	assert.Equal(t, "monthly", cfg.PipelineName)
	assert.Equal(t, "input.json", cfg.InputPath)
	assert.Equal(t, map[string]string{"year": "2024", "region": `"eu"`}, cfg.Vars)
	assert.Equal(t, "planbudzetu.pl", cfg.Domain)
	assert.Equal(t, "yaml", cfg.Output)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestParse_PositionalPipelinePath(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	cfg, _, err := cli.Parse([]string{"validate", "budget.dsl"}, &out)
	require.NoError(t, err)
	assert.Equal(t, app.CommandValidate, cfg.Command)
	assert.Equal(t, "budget.dsl", cfg.PipelinePath)
}

func TestParse_HelpRequests(t *testing.T) {
	t.Parallel()

	for _, args := range [][]string{nil, {"help"}, {"-h"}, {"--help"}} {
		var out bytes.Buffer
		cfg, shouldExit, err := cli.Parse(args, &out)

		require.NoError(t, err)
		assert.True(t, shouldExit)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "analytics pipeline DSL engine")
		assert.Contains(t, out.String(), "Commands:")
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		args    []string
		message string
	}{
		{"unknown command", []string{"deploy", "-e", "x"}, `unknown command "deploy"`},
		{"run without source", []string{"run"}, "needs a pipeline path or inline source"},
		{"path and inline together", []string{"run", "-p", "a.dsl", "-e", "x"}, "mutually exclusive"},
		{"bad var syntax", []string{"run", "-e", "x", "-var", "noequals"}, `expected name=literal`},
		{"bad output", []string{"run", "-e", "x", "-output", "xml"}, `unknown output format "xml"`},
		{"bad log format", []string{"run", "-e", "x", "-log-format", "csv"}, "invalid log-format"},
		{"bad log level", []string{"run", "-e", "x", "-log-level", "loud"}, "invalid log-level"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			cfg, shouldExit, err := cli.Parse(tc.args, &out)

			assert.Nil(t, cfg)
			assert.False(t, shouldExit)
			require.Error(t, err)

			var exitErr *cli.ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.message)
		})
	}
}

func TestParse_AtomsNeedsNoSource(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	cfg, shouldExit, err := cli.Parse([]string{"atoms"}, &out)
	require.NoError(t, err)
	assert.False(t, shouldExit)
	assert.Equal(t, app.CommandAtoms, cfg.Command)
}
