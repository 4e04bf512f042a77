// Package value defines the literal value model shared by the DSL parser,
// the fluent builder, and the executor.
//
// A Value is a small tagged union: a leaf literal (backed by cty.Value), a
// `$name` variable reference, an array, or an object with ordered fields.
// Values stay unresolved inside a parsed pipeline definition; the executor
// resolves them against the run's variable map to obtain plain cty values
// right before an atom handler is invoked.
package value
