// Package ast holds the parsed pipeline definition: an optional name, an
// ordered variable-declaration map, and the ordered list of atom-call steps.
// Definitions are immutable once built and may be executed repeatedly.
package ast

import (
	"fmt"
	"strings"

	"github.com/analytica/atomflow/internal/value"
)

// OnErrorPolicy directs the executor when a step's handler fails.
type OnErrorPolicy string

const (
	// OnErrorStop aborts the run immediately. This is the default.
	OnErrorStop OnErrorPolicy = "stop"
	// OnErrorSkip records the error and continues with the value unchanged.
	OnErrorSkip OnErrorPolicy = "skip"
	// OnErrorContinue records the error, nulls the value, and continues.
	OnErrorContinue OnErrorPolicy = "continue"
)

// ParseOnErrorPolicy maps the serialized policy name back to a policy.
func ParseOnErrorPolicy(s string) (OnErrorPolicy, error) {
	switch OnErrorPolicy(s) {
	case OnErrorStop, OnErrorSkip, OnErrorContinue:
		return OnErrorPolicy(s), nil
	case "":
		return OnErrorStop, nil
	}
	return "", fmt.Errorf("unknown on_error policy %q", s)
}

// AtomRef identifies a registered operation by its (type, action) pair.
type AtomRef struct {
	Type   string `json:"type" yaml:"type"`
	Action string `json:"action" yaml:"action"`
}

func (r AtomRef) String() string {
	return r.Type + "." + r.Action
}

// AtomCall is a single invocation of a registered atom. Params preserve
// argument order; positional arguments are stored under `_arg0`, `_arg1`, …
// and mapped onto required parameters when the handler's arguments are
// bound.
type AtomCall struct {
	Type   string     `json:"type" yaml:"type"`
	Action string     `json:"action" yaml:"action"`
	Params *value.Map `json:"params" yaml:"params"`
}

// Ref returns the call's (type, action) identity.
func (c *AtomCall) Ref() AtomRef {
	return AtomRef{Type: c.Type, Action: c.Action}
}

// String renders the call in DSL syntax, with positional arguments bare and
// named arguments as `key=value`.
func (c *AtomCall) String() string {
	var parts []string
	c.Params.Each(func(name string, v value.Value) {
		if strings.HasPrefix(name, "_arg") {
			parts = append(parts, v.String())
		} else {
			parts = append(parts, name+"="+v.String())
		}
	})
	return fmt.Sprintf("%s.%s(%s)", c.Type, c.Action, strings.Join(parts, ", "))
}

// Step is one pipeline stage: an atom call with an optional guard condition
// and an error policy. Condition and policy have no DSL text surface; they
// are set through the builder or the serialized AST.
type Step struct {
	Atom      AtomCall      `json:"atom" yaml:"atom"`
	Condition string        `json:"condition,omitempty" yaml:"condition,omitempty"`
	OnError   OnErrorPolicy `json:"on_error" yaml:"on_error"`
}

// Pipeline is a complete parsed definition. Step order is execution order;
// variable declaration order is preserved for serialization only.
type Pipeline struct {
	Name      string     `json:"name,omitempty" yaml:"name,omitempty"`
	Variables *value.Map `json:"variables" yaml:"variables"`
	Steps     []Step     `json:"steps" yaml:"steps"`
}

// Equal reports definitional equality: same name, same variables in the
// same order, and the same steps with equal parameter values.
func (p *Pipeline) Equal(other *Pipeline) bool {
	if p.Name != other.Name || len(p.Steps) != len(other.Steps) {
		return false
	}
	if !p.Variables.Equal(other.Variables) {
		return false
	}
	for i := range p.Steps {
		a, b := &p.Steps[i], &other.Steps[i]
		if a.Atom.Type != b.Atom.Type || a.Atom.Action != b.Atom.Action {
			return false
		}
		if a.Condition != b.Condition || a.OnError != b.OnError {
			return false
		}
		if !a.Atom.Params.Equal(b.Atom.Params) {
			return false
		}
	}
	return true
}
