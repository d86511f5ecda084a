package model

// ChartSpec is a library-agnostic description of a chart
type ChartSpec struct {
	ChartType string        `json:"chartType"` // requested token: bar, line, donut, ...
	Kind      string        `json:"kind"`      // bar, line, pie, heatmap
	Title     string        `json:"title"`
	XAxis     string        `json:"xAxis,omitempty"`
	YAxis     string        `json:"yAxis,omitempty"`
	Legend    string        `json:"legend,omitempty"`
	BarMode   string        `json:"barMode,omitempty"` // group or stack
	Markers   bool          `json:"markers,omitempty"`
	TextAuto  bool          `json:"textAuto,omitempty"`
	Hole      float64       `json:"hole,omitempty"`
	Series    []ChartSeries `json:"series,omitempty"`
	Heatmap   *HeatmapGrid  `json:"heatmap,omitempty"`
	Bindings  ChartBindings `json:"bindings"`
}

// ChartBindings records which source column feeds each visual channel
type ChartBindings struct {
	X     string `json:"x,omitempty"`
	Y     string `json:"y,omitempty"`
	Color string `json:"color,omitempty"`
	Names string `json:"names,omitempty"`
}

// ChartSeries represents a data series in a chart
type ChartSeries struct {
	Name string       `json:"name"`
	Data []ChartPoint `json:"data"`
}

// ChartPoint represents a single data point
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// HeatmapGrid is a pivoted Y x X matrix; nil cells have no data
type HeatmapGrid struct {
	XLabels    []string     `json:"xLabels"`
	YLabels    []string     `json:"yLabels"`
	Values     [][]*float64 `json:"values"`
	ColorLabel string       `json:"colorLabel"`
	ColorScale string       `json:"colorScale"`
}
