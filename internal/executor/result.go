package executor

import (
	"encoding/json"

	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"

	"github.com/analytica/atomflow/internal/ast"
	"github.com/analytica/atomflow/internal/run"
	"github.com/analytica/atomflow/internal/value"
)

// Status summarizes how a run ended.
type Status string

const (
	// StatusSuccess means every step that ran completed.
	StatusSuccess Status = "success"
	// StatusPartial means at least one step failed under a skip or
	// continue policy and the run carried on.
	StatusPartial Status = "partial"
	// StatusError means a step failed under the stop policy and the run
	// aborted.
	StatusError Status = "error"
)

// Result is the complete outcome of one run. Execute always returns one;
// failures are carried in Status and Errors rather than a Go error, so a
// caller gets logs, views, and the partial value even for aborted runs.
type Result struct {
	ExecutionID     string
	Status          Status
	Value           cty.Value
	Views           []run.ViewSpec
	Logs            []string
	Errors          []run.StepError
	Executed        []ast.AtomRef
	ExecutionTimeMS int64
}

type serializedResult struct {
	ExecutionID     string          `json:"execution_id" yaml:"execution_id"`
	Status          Status          `json:"status" yaml:"status"`
	Value           any             `json:"value" yaml:"value"`
	Views           []run.ViewSpec  `json:"views" yaml:"views"`
	Logs            []string        `json:"logs" yaml:"logs"`
	Errors          []run.StepError `json:"errors" yaml:"errors"`
	Executed        []string        `json:"executed" yaml:"executed"`
	ExecutionTimeMS int64           `json:"execution_time_ms" yaml:"execution_time_ms"`
}

func (r *Result) serialized() serializedResult {
	executed := make([]string, len(r.Executed))
	for i, ref := range r.Executed {
		executed[i] = ref.String()
	}
	return serializedResult{
		ExecutionID:     r.ExecutionID,
		Status:          r.Status,
		Value:           value.ToGo(r.Value),
		Views:           r.Views,
		Logs:            r.Logs,
		Errors:          r.Errors,
		Executed:        executed,
		ExecutionTimeMS: r.ExecutionTimeMS,
	}
}

// MarshalJSON renders the result with the threaded value as plain JSON data.
func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.serialized())
}

// MarshalYAML renders the result the same way for YAML encoders.
func (r *Result) MarshalYAML() (any, error) {
	return r.serialized(), nil
}

// YAML renders the result as a YAML document.
func (r *Result) YAML() (string, error) {
	out, err := yaml.Marshal(r.serialized())
	if err != nil {
		return "", err
	}
	return string(out), nil
}
