package run

// ViewSpec describes one renderable unit produced by a `view.*` atom. The
// engine treats Fields as opaque; the frontend renderer interprets them per
// Type (axis mappings for charts, column specs for tables, and so on).
type ViewSpec struct {
	ID     string         `json:"id" yaml:"id"`
	Type   string         `json:"type" yaml:"type"`
	Title  string         `json:"title,omitempty" yaml:"title,omitempty"`
	Fields map[string]any `json:"fields,omitempty" yaml:"fields,omitempty"`
}
