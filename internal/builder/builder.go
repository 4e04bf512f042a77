// Package builder is the programmatic mirror of the DSL text surface. A
// definition assembled here parses back to an equal definition when fed
// through the parser, with the exception of conditions and error policies,
// which have no text form.
package builder

import (
	"fmt"

	"github.com/analytica/atomflow/internal/ast"
	"github.com/analytica/atomflow/internal/value"
)

// Arg is one call argument, either named or positional.
type Arg struct {
	name string
	val  value.Value
}

// Named returns a named argument.
func Named(name string, v any) Arg {
	return Arg{name: name, val: toValue(v)}
}

// Pos returns a positional argument. Positional arguments fill the atom's
// required parameters in declaration order.
func Pos(v any) Arg {
	return Arg{val: toValue(v)}
}

// Ref returns a named argument whose value is a `$name` variable reference.
func Ref(name, variable string) Arg {
	return Arg{name: name, val: value.Ref(variable)}
}

// Builder assembles a pipeline definition step by step. Methods return the
// builder for chaining; per-type groups expose the atom vocabulary.
type Builder struct {
	name  string
	vars  *value.Map
	steps []ast.Step
}

// New creates an empty builder.
func New() *Builder {
	return &Builder{vars: value.NewMap()}
}

// Name sets the pipeline name.
func (b *Builder) Name(name string) *Builder {
	b.name = name
	return b
}

// Var declares a pipeline variable. Later declarations of the same name
// win, matching the parser.
func (b *Builder) Var(name string, v any) *Builder {
	b.vars.Set(name, toValue(v))
	return b
}

// Step appends a call to any atom. The typed groups cover the built-in
// vocabulary; Step is the escape hatch for everything else.
func (b *Builder) Step(atomType, action string, args ...Arg) *Builder {
	params := value.NewMap()
	pos := 0
	for _, a := range args {
		name := a.name
		if name == "" {
			name = fmt.Sprintf("_arg%d", pos)
			pos++
		}
		params.Set(name, a.val)
	}
	b.steps = append(b.steps, ast.Step{
		Atom:    ast.AtomCall{Type: atomType, Action: action, Params: params},
		OnError: ast.OnErrorStop,
	})
	return b
}

// OnError sets the error policy of the most recent step.
func (b *Builder) OnError(policy ast.OnErrorPolicy) *Builder {
	if n := len(b.steps); n > 0 {
		b.steps[n-1].OnError = policy
	}
	return b
}

// When guards the most recent step with a condition expression evaluated
// against the run's variables and current value.
func (b *Builder) When(condition string) *Builder {
	if n := len(b.steps); n > 0 {
		b.steps[n-1].Condition = condition
	}
	return b
}

// Definition materializes the assembled pipeline.
func (b *Builder) Definition() *ast.Pipeline {
	steps := make([]ast.Step, len(b.steps))
	copy(steps, b.steps)
	return &ast.Pipeline{
		Name:      b.name,
		Variables: b.vars.Clone(),
		Steps:     steps,
	}
}

// Text renders the assembled pipeline as DSL source.
func (b *Builder) Text() string {
	return b.Definition().DSL()
}

// toValue lifts a plain Go value into the definition's value model.
// Unsupported types are a programmer error and panic, the same way the
// registry panics on a malformed spec at startup.
func toValue(v any) value.Value {
	if vv, ok := v.(value.Value); ok {
		return vv
	}
	out, err := value.FromGoValue(v)
	if err != nil {
		panic(fmt.Sprintf("builder: %v", err))
	}
	return out
}
