package builder

// The typed groups below cover the built-in atom vocabulary. Each method
// appends one step and hands the builder back for chaining; trailing
// extra arguments carry the atom's optional parameters.

// Data exposes the data source atoms.
func (b *Builder) Data() DataGroup { return DataGroup{b} }

// Transform exposes the row transformation atoms.
func (b *Builder) Transform() TransformGroup { return TransformGroup{b} }

// Metrics exposes the aggregation atoms.
func (b *Builder) Metrics() MetricsGroup { return MetricsGroup{b} }

// Report exposes the report atoms.
func (b *Builder) Report() ReportGroup { return ReportGroup{b} }

// Alert exposes the alert atoms.
func (b *Builder) Alert() AlertGroup { return AlertGroup{b} }

// Budget exposes the budget atoms.
func (b *Builder) Budget() BudgetGroup { return BudgetGroup{b} }

// Investment exposes the investment analysis atoms.
func (b *Builder) Investment() InvestmentGroup { return InvestmentGroup{b} }

// Forecast exposes the forecasting atoms.
func (b *Builder) Forecast() ForecastGroup { return ForecastGroup{b} }

// Export exposes the export atoms.
func (b *Builder) Export() ExportGroup { return ExportGroup{b} }

// View exposes the view atoms, which emit render specifications on the
// side channel without replacing the flowing value.
func (b *Builder) View() ViewGroup { return ViewGroup{b} }

type DataGroup struct{ b *Builder }

func (g DataGroup) FromInput() *Builder {
	return g.b.Step("data", "from_input")
}

func (g DataGroup) Load(source string, extra ...Arg) *Builder {
	return g.b.Step("data", "load", append([]Arg{Named("source", source)}, extra...)...)
}

func (g DataGroup) Fetch(url string, extra ...Arg) *Builder {
	return g.b.Step("data", "fetch", append([]Arg{Named("url", url)}, extra...)...)
}

type TransformGroup struct{ b *Builder }

// Filter keeps rows matching every condition. Condition names follow the
// `field` or `field__op` convention (eq, ne, gt, gte, lt, lte, contains).
func (g TransformGroup) Filter(conditions ...Arg) *Builder {
	return g.b.Step("transform", "filter", conditions...)
}

func (g TransformGroup) Sort(by string, order string) *Builder {
	return g.b.Step("transform", "sort", Named("by", by), Named("order", order))
}

func (g TransformGroup) Limit(n int) *Builder {
	return g.b.Step("transform", "limit", Named("n", n))
}

func (g TransformGroup) Select(fields ...string) *Builder {
	return g.b.Step("transform", "select", Named("fields", fields))
}

// Rename maps old field names to new ones, one Named arg per field.
func (g TransformGroup) Rename(mapping ...Arg) *Builder {
	return g.b.Step("transform", "rename", mapping...)
}

type MetricsGroup struct{ b *Builder }

func (g MetricsGroup) Sum(field string) *Builder {
	return g.b.Step("metrics", "sum", Named("field", field))
}

func (g MetricsGroup) Avg(field string) *Builder {
	return g.b.Step("metrics", "avg", Named("field", field))
}

func (g MetricsGroup) Count() *Builder {
	return g.b.Step("metrics", "count")
}

func (g MetricsGroup) Min(field string) *Builder {
	return g.b.Step("metrics", "min", Named("field", field))
}

func (g MetricsGroup) Max(field string) *Builder {
	return g.b.Step("metrics", "max", Named("field", field))
}

func (g MetricsGroup) Percentile(field string, p float64) *Builder {
	return g.b.Step("metrics", "percentile", Named("field", field), Named("p", p))
}

func (g MetricsGroup) Calculate(metrics []string, field string) *Builder {
	return g.b.Step("metrics", "calculate", Named("metrics", metrics), Named("field", field))
}

type ReportGroup struct{ b *Builder }

func (g ReportGroup) Generate(format string, extra ...Arg) *Builder {
	return g.b.Step("report", "generate", append([]Arg{Named("format", format)}, extra...)...)
}

func (g ReportGroup) Send(to []string, extra ...Arg) *Builder {
	return g.b.Step("report", "send", append([]Arg{Named("to", to)}, extra...)...)
}

type AlertGroup struct{ b *Builder }

func (g AlertGroup) Threshold(field, operator string, value float64) *Builder {
	return g.b.Step("alert", "threshold",
		Named("field", field), Named("operator", operator), Named("value", value))
}

func (g AlertGroup) Send(channel string, extra ...Arg) *Builder {
	return g.b.Step("alert", "send", append([]Arg{Named("channel", channel)}, extra...)...)
}

type BudgetGroup struct{ b *Builder }

func (g BudgetGroup) Variance() *Builder {
	return g.b.Step("budget", "variance")
}

func (g BudgetGroup) Categorize(by string) *Builder {
	return g.b.Step("budget", "categorize", Named("by", by))
}

type InvestmentGroup struct{ b *Builder }

func (g InvestmentGroup) Analyze(extra ...Arg) *Builder {
	return g.b.Step("investment", "analyze", extra...)
}

func (g InvestmentGroup) ROI() *Builder {
	return g.b.Step("investment", "roi")
}

func (g InvestmentGroup) NPV(rate float64) *Builder {
	return g.b.Step("investment", "npv", Named("rate", rate))
}

func (g InvestmentGroup) Payback() *Builder {
	return g.b.Step("investment", "payback")
}

type ForecastGroup struct{ b *Builder }

func (g ForecastGroup) Trend() *Builder {
	return g.b.Step("forecast", "trend")
}

func (g ForecastGroup) Predict(periods int) *Builder {
	return g.b.Step("forecast", "predict", Named("periods", periods))
}

func (g ForecastGroup) Confidence(level float64) *Builder {
	return g.b.Step("forecast", "confidence", Named("level", level))
}

type ExportGroup struct{ b *Builder }

func (g ExportGroup) ToJSON(extra ...Arg) *Builder {
	return g.b.Step("export", "to_json", extra...)
}

func (g ExportGroup) ToCSV(extra ...Arg) *Builder {
	return g.b.Step("export", "to_csv", extra...)
}

type ViewGroup struct{ b *Builder }

func (g ViewGroup) Chart(chartType string, extra ...Arg) *Builder {
	return g.b.Step("view", "chart", append([]Arg{Named("type", chartType)}, extra...)...)
}

func (g ViewGroup) Table(extra ...Arg) *Builder {
	return g.b.Step("view", "table", extra...)
}

func (g ViewGroup) Card(valueField string, extra ...Arg) *Builder {
	return g.b.Step("view", "card", append([]Arg{Named("value", valueField)}, extra...)...)
}

func (g ViewGroup) KPI(valueField string, extra ...Arg) *Builder {
	return g.b.Step("view", "kpi", append([]Arg{Named("value", valueField)}, extra...)...)
}

func (g ViewGroup) Grid(columns int, extra ...Arg) *Builder {
	return g.b.Step("view", "grid", append([]Arg{Named("columns", columns)}, extra...)...)
}

func (g ViewGroup) Dashboard(layout string, extra ...Arg) *Builder {
	return g.b.Step("view", "dashboard", append([]Arg{Named("layout", layout)}, extra...)...)
}

func (g ViewGroup) Text(content string, extra ...Arg) *Builder {
	return g.b.Step("view", "text", append([]Arg{Named("content", content)}, extra...)...)
}

func (g ViewGroup) List(primaryField string, extra ...Arg) *Builder {
	return g.b.Step("view", "list", append([]Arg{Named("primary", primaryField)}, extra...)...)
}
