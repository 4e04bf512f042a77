package ast

import (
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/analytica/atomflow/internal/value"
)

// DSL renders the definition back to normalized pipeline text. Anonymous
// definitions render as a single pipe chain; named ones as a `@pipeline`
// block with variable declarations on their own lines. Conditions and error
// policies are not representable in text form and are omitted.
func (p *Pipeline) DSL() string {
	var calls []string
	for i := range p.Steps {
		calls = append(calls, p.Steps[i].Atom.String())
	}
	chain := strings.Join(calls, " | ")

	if p.Name == "" && p.Variables.Len() == 0 {
		return chain
	}

	var b strings.Builder
	indent := ""
	if p.Name != "" {
		b.WriteString("@pipeline " + p.Name + ":\n")
		indent = "  "
	}
	p.Variables.Each(func(name string, v value.Value) {
		b.WriteString(indent + "$" + name + " = " + v.String() + "\n")
	})
	b.WriteString(indent + chain)
	return b.String()
}

// serialized is the wire shape consumed by introspection tooling.
type serialized struct {
	Name          string     `json:"name,omitempty" yaml:"name,omitempty"`
	Variables     *value.Map `json:"variables" yaml:"variables"`
	Steps         []Step     `json:"steps" yaml:"steps"`
	DSLNormalized string     `json:"dsl_normalized" yaml:"dsl_normalized"`
}

// MarshalJSON emits the definition with its renormalized text form attached.
func (p *Pipeline) MarshalJSON() ([]byte, error) {
	return json.Marshal(serialized{
		Name:          p.Name,
		Variables:     p.Variables,
		Steps:         p.Steps,
		DSLNormalized: p.DSL(),
	})
}

// MarshalYAML renders the definition the same way for YAML encoders.
func (p *Pipeline) MarshalYAML() (any, error) {
	return serialized{
		Name:          p.Name,
		Variables:     p.Variables,
		Steps:         p.Steps,
		DSLNormalized: p.DSL(),
	}, nil
}

// YAML renders the definition as a YAML document.
func (p *Pipeline) YAML() ([]byte, error) {
	return yaml.Marshal(p)
}
