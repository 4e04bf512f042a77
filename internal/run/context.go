// Package run holds the mutable state of a single pipeline execution: the
// threaded data value, resolved variables, the append-only view list, and
// the log/error accumulators. One Context exists per run and is never shared
// across runs.
package run

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// StepError records one failed step.
type StepError struct {
	StepIndex int    `json:"step_index" yaml:"step_index"`
	Atom      string `json:"atom" yaml:"atom"`
	Message   string `json:"message" yaml:"message"`
}

func (e StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %s", e.StepIndex, e.Atom, e.Message)
}

// Context is threaded through the steps of one run.
type Context struct {
	Value     cty.Value
	Variables map[string]cty.Value
	Domain    string

	views   []ViewSpec
	logs    []string
	errors  []StepError
	viewSeq int
}

// NewContext builds a fresh context for one run.
func NewContext(input cty.Value, variables map[string]cty.Value, domain string) *Context {
	if input == cty.NilVal {
		input = cty.NullVal(cty.DynamicPseudoType)
	}
	if variables == nil {
		variables = make(map[string]cty.Value)
	}
	return &Context{Value: input, Variables: variables, Domain: domain}
}

// Logf appends a formatted entry to the run's log.
func (c *Context) Logf(format string, args ...any) {
	c.logs = append(c.logs, fmt.Sprintf(format, args...))
}

// Logs returns the accumulated log entries in order.
func (c *Context) Logs() []string { return c.logs }

// AddError records a step failure.
func (c *Context) AddError(e StepError) {
	c.errors = append(c.errors, e)
	c.Logf("error in %s: %s", e.Atom, e.Message)
}

// Errors returns the accumulated step errors in order.
func (c *Context) Errors() []StepError { return c.errors }

// AppendView adds a rendering descriptor to the side-channel and assigns it
// a run-scoped id. Views can only ever be appended; no atom may remove or
// alter a prior one.
func (c *Context) AppendView(v ViewSpec) ViewSpec {
	c.viewSeq++
	v.ID = fmt.Sprintf("%s_%d", v.Type, c.viewSeq)
	c.views = append(c.views, v)
	return v
}

// Views returns the accumulated view descriptors in order.
func (c *Context) Views() []ViewSpec { return c.views }

// ValueAt scopes into the current value via a dotted field path, e.g.
// "totals.revenue". An empty path returns the whole value.
func (c *Context) ValueAt(path string) (cty.Value, error) {
	if path == "" {
		return c.Value, nil
	}
	v := c.Value
	for _, field := range strings.Split(path, ".") {
		if v.IsNull() {
			return cty.NilVal, fmt.Errorf("data path %q: value is null", path)
		}
		ty := v.Type()
		switch {
		case ty.IsObjectType():
			if !ty.HasAttribute(field) {
				return cty.NilVal, fmt.Errorf("data path %q: no field %q", path, field)
			}
			v = v.GetAttr(field)
		case ty.IsMapType():
			key := cty.StringVal(field)
			if !v.HasIndex(key).True() {
				return cty.NilVal, fmt.Errorf("data path %q: no field %q", path, field)
			}
			v = v.Index(key)
		default:
			return cty.NilVal, fmt.Errorf("data path %q: cannot descend into %s", path, ty.FriendlyName())
		}
	}
	return v, nil
}
