// Package executor runs pipeline definitions sequentially against a sealed
// atom registry. A definition never changes during a run; all mutable state
// lives in the per-run context.
package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zclconf/go-cty/cty"

	"github.com/analytica/atomflow/internal/ast"
	"github.com/analytica/atomflow/internal/atom"
	"github.com/analytica/atomflow/internal/condition"
	"github.com/analytica/atomflow/internal/ctxlog"
	"github.com/analytica/atomflow/internal/run"
	"github.com/analytica/atomflow/internal/value"
)

// Executor executes pipeline definitions. It is safe for concurrent use;
// the registry is the only shared state and is read-only after sealing.
type Executor struct {
	reg *atom.Registry
}

// New creates an executor over the given registry.
func New(reg *atom.Registry) *Executor {
	return &Executor{reg: reg}
}

func newExecutionID() string {
	return fmt.Sprintf("exec_%s_%s",
		time.Now().UTC().Format("20060102150405"), uuid.NewString()[:8])
}

// Execute runs the definition against the input value. Overrides take
// precedence over the pipeline's declared variables. Execute never returns
// a Go error: failures are reported through the result's status and error
// list so callers always get the logs, views, and partial value.
func (e *Executor) Execute(ctx context.Context, def *ast.Pipeline, input cty.Value, overrides map[string]cty.Value, domain string) *Result {
	start := time.Now()
	logger := ctxlog.FromContext(ctx)

	result := &Result{ExecutionID: newExecutionID(), Status: StatusSuccess}
	rc := run.NewContext(input, resolveVariables(def, overrides), domain)

	name := def.Name
	if name == "" {
		name = "pipeline"
	}
	rc.Logf("starting pipeline: %s", name)
	logger.Debug("pipeline run starting",
		"execution_id", result.ExecutionID, "pipeline", name, "steps", len(def.Steps))

	for i, step := range def.Steps {
		if err := ctx.Err(); err != nil {
			rc.AddError(run.StepError{
				StepIndex: i,
				Atom:      step.Atom.Ref().String(),
				Message:   "execution cancelled: " + err.Error(),
			})
			result.Status = StatusError
			break
		}
		if !e.runStep(ctx, i, step, rc, result) {
			result.Status = StatusError
			break
		}
	}

	result.Value = rc.Value
	result.ExecutionTimeMS = time.Since(start).Milliseconds()
	rc.Logf("pipeline completed in %dms", result.ExecutionTimeMS)

	result.Views = rc.Views()
	result.Logs = rc.Logs()
	result.Errors = rc.Errors()
	if result.Status == StatusSuccess && len(result.Errors) > 0 {
		result.Status = StatusPartial
	}

	logger.Debug("pipeline run finished",
		"execution_id", result.ExecutionID, "status", result.Status,
		"duration_ms", result.ExecutionTimeMS, "errors", len(result.Errors))
	return result
}

// runStep executes one step and reports whether the run should continue.
// Failures are recorded on the context; the step's policy decides whether
// they abort the run.
func (e *Executor) runStep(ctx context.Context, idx int, step ast.Step, rc *run.Context, result *Result) bool {
	ref := step.Atom.Ref()

	if step.Condition != "" {
		ok, err := condition.Eval(step.Condition, rc)
		if err != nil {
			return e.stepFailed(idx, step, rc, result, err)
		}
		if !ok {
			rc.Logf("skipping %s: condition %q is false", ref, step.Condition)
			return true
		}
	}

	rc.Logf("executing: %s", step.Atom.String())

	out, err := e.invoke(ctx, step.Atom, rc, result)
	if err != nil {
		return e.stepFailed(idx, step, rc, result, err)
	}
	if out != cty.NilVal {
		rc.Value = out
	}
	return true
}

// invoke resolves the call's arguments and runs the handler, converting a
// handler panic into an error at the step boundary.
func (e *Executor) invoke(ctx context.Context, call ast.AtomCall, rc *run.Context, result *Result) (out cty.Value, err error) {
	entry, ok := e.reg.Lookup(call.Type, call.Action)
	if !ok {
		return cty.NilVal, fmt.Errorf("unknown atom: %s", call.Ref())
	}

	resolved := make([]atom.ResolvedParam, 0, call.Params.Len())
	var resolveErr error
	call.Params.Each(func(name string, v value.Value) {
		if resolveErr != nil {
			return
		}
		cv, rerr := v.Resolve(rc.Variables)
		if rerr != nil {
			resolveErr = rerr
			return
		}
		resolved = append(resolved, atom.ResolvedParam{Name: name, Value: cv})
	})
	if resolveErr != nil {
		return cty.NilVal, resolveErr
	}

	args, err := atom.BindArgs(&entry.Spec, resolved)
	if err != nil {
		return cty.NilVal, err
	}

	defer func() {
		if r := recover(); r != nil {
			out = cty.NilVal
			err = fmt.Errorf("%s panicked: %v", call.Ref(), r)
		}
	}()
	result.Executed = append(result.Executed, call.Ref())
	return entry.Handler(ctx, rc, args)
}

// stepFailed records the failure and applies the step's error policy.
// Stop aborts the run; skip keeps the current value and moves on; continue
// moves on with a null value.
func (e *Executor) stepFailed(idx int, step ast.Step, rc *run.Context, result *Result, err error) bool {
	rc.AddError(run.StepError{
		StepIndex: idx,
		Atom:      step.Atom.Ref().String(),
		Message:   err.Error(),
	})
	switch step.OnError {
	case ast.OnErrorSkip:
		rc.Logf("skipping failed step %s", step.Atom.Ref())
		return true
	case ast.OnErrorContinue:
		rc.Logf("continuing past failed step %s with null value", step.Atom.Ref())
		rc.Value = cty.NullVal(cty.DynamicPseudoType)
		return true
	default:
		return false
	}
}

// resolveVariables builds the run's variable map. Declared variables
// resolve in declaration order, so later declarations may reference earlier
// ones; overrides always win over declarations.
func resolveVariables(def *ast.Pipeline, overrides map[string]cty.Value) map[string]cty.Value {
	vars := make(map[string]cty.Value, def.Variables.Len()+len(overrides))
	def.Variables.Each(func(name string, v value.Value) {
		if _, overridden := overrides[name]; overridden {
			return
		}
		cv, err := v.Resolve(vars)
		if err != nil {
			// An unresolvable declaration stays unbound; the step that
			// reads it reports the undefined variable.
			return
		}
		vars[name] = cv
	})
	for name, v := range overrides {
		vars[name] = v
	}
	return vars
}
