package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/vkadam-18/LVDI-2D/internal/model"
)

var (
	// ErrUnsupportedChart is returned when a chart type does not fit the table's dimensionality
	ErrUnsupportedChart = errors.New("unsupported chart type")
	// ErrDimensionCount is returned when a table has no dimension columns or more than two
	ErrDimensionCount = errors.New("unexpected dimension count")
)

// chartExcludeMarkers are substrings of columns that never serve as chart dimensions
var chartExcludeMarkers = []string{
	"2023", "2024", "2025",
	"Avg Rate", "Count", "Matter", "Timekeeper",
	"index", "Unnamed",
	"Dimension Type", "Dimension1 Type", "Dimension2 Type",
}

// versionSuffixes are stripped from measure names in titles
var versionSuffixes = []string{" Jun", " Sep"}

// ChartDimensions returns the label columns used as chart axes
func ChartDimensions(columns []string, measureCol string) []string {
	var dims []string
	for _, c := range columns {
		if c == measureCol || containsAny(c, chartExcludeMarkers) {
			continue
		}
		dims = append(dims, c)
	}
	return dims
}

// BuildChart produces a chart specification for a table and measure column
func BuildChart(table *model.Table, measureCol, chartType string) (*model.ChartSpec, error) {
	dims := ChartDimensions(table.Columns, measureCol)

	measureName := measureCol
	for _, suffix := range versionSuffixes {
		measureName = strings.ReplaceAll(measureName, suffix, "")
	}

	switch len(dims) {
	case 1:
		return build1DChart(table, dims[0], measureCol, measureName, chartType)
	case 2:
		return build2DChart(table, dims, measureCol, measureName, chartType)
	default:
		return nil, fmt.Errorf("%w: expected 1 or 2 dimensions, found %d. Available dimensions: %s",
			ErrDimensionCount, len(dims), formatList(dims))
	}
}

func build1DChart(table *model.Table, dim, measureCol, measureName, chartType string) (*model.ChartSpec, error) {
	dimIdx := table.ColumnIndex(dim)
	measureIdx := table.ColumnIndex(measureCol)
	xLabel := strings.ReplaceAll(dim, "Dimension Value", "Category")

	spec := &model.ChartSpec{ChartType: chartType}
	switch chartType {
	case model.ChartBar:
		spec.Kind = "bar"
		spec.Title = measureName
		spec.TextAuto = true
		spec.XAxis = xLabel
		spec.YAxis = measureName
		spec.Bindings = model.ChartBindings{X: dim, Y: measureCol}
	case model.ChartLine:
		spec.Kind = "line"
		spec.Title = measureName + " Trend"
		spec.Markers = true
		spec.XAxis = xLabel
		spec.YAxis = measureName
		spec.Bindings = model.ChartBindings{X: dim, Y: measureCol}
	case model.ChartDonut:
		spec.Kind = "pie"
		spec.Title = measureName + " Distribution"
		spec.Hole = 0.4
		spec.Bindings = model.ChartBindings{Names: dim, Y: measureCol}
	default:
		return nil, fmt.Errorf("%w: '%s' for 1D data", ErrUnsupportedChart, chartType)
	}

	spec.Series = []model.ChartSeries{{Name: measureName, Data: points(table, dimIdx, measureIdx)}}
	return spec, nil
}

func build2DChart(table *model.Table, dims []string, measureCol, measureName, chartType string) (*model.ChartSpec, error) {
	dim1Idx := table.ColumnIndex(dims[0])
	dim2Idx := table.ColumnIndex(dims[1])
	measureIdx := table.ColumnIndex(measureCol)

	dim1Label := strings.ReplaceAll(strings.ReplaceAll(dims[0], "Dimension1 Value", "Dimension 1"), "Dimension Value", "Category")
	dim2Label := strings.ReplaceAll(strings.ReplaceAll(dims[1], "Dimension2 Value", "Dimension 2"), "Dimension Value", "Category")

	spec := &model.ChartSpec{
		ChartType: chartType,
		XAxis:     dim1Label,
		YAxis:     measureName,
		Legend:    dim2Label,
		Bindings:  model.ChartBindings{X: dims[0], Y: measureCol, Color: dims[1]},
	}

	switch chartType {
	case model.ChartBar, model.ChartStackedBar, model.ChartGroupedBar:
		spec.Kind = "bar"
		spec.TextAuto = true
		spec.BarMode = "group"
		spec.Title = measureName
		if chartType == model.ChartStackedBar {
			spec.BarMode = "stack"
			spec.Title = measureName + " (Stacked)"
		} else if chartType == model.ChartGroupedBar {
			spec.Title = measureName + " (Grouped)"
		}
		spec.Series = seriesByColor(table, dim1Idx, dim2Idx, measureIdx)
	case model.ChartLine:
		spec.Kind = "line"
		spec.Markers = true
		spec.Title = measureName + " Trend"
		spec.Series = seriesByColor(table, dim1Idx, dim2Idx, measureIdx)
	case model.ChartHeatmap:
		spec.Kind = "heatmap"
		spec.Title = measureName + " Heatmap"
		spec.YAxis = dim2Label
		spec.Legend = ""
		spec.Heatmap = pivotMean(table, dim1Idx, dim2Idx, measureIdx)
		spec.Heatmap.ColorLabel = measureName
	case model.ChartDonut:
		spec.Kind = "pie"
		spec.Title = measureName + " Distribution"
		spec.Hole = 0.4
		spec.XAxis, spec.YAxis, spec.Legend = "", "", ""
		spec.Bindings = model.ChartBindings{Names: dims[0], Y: measureCol}
		spec.Series = []model.ChartSeries{{Name: measureName, Data: sumByLabel(table, dim1Idx, measureIdx)}}
	default:
		return nil, fmt.Errorf("%w: '%s' for 2D data", ErrUnsupportedChart, chartType)
	}

	return spec, nil
}

// points reads (label, value) pairs in row order, skipping non-numeric cells
func points(table *model.Table, labelIdx, valueIdx int) []model.ChartPoint {
	out := make([]model.ChartPoint, 0, table.Len())
	for i := range table.Rows {
		if v, ok := table.Number(i, valueIdx); ok {
			out = append(out, model.ChartPoint{Label: table.Cell(i, labelIdx), Value: v})
		}
	}
	return out
}

// seriesByColor splits rows into one series per dimension-2 value, in first-seen order
func seriesByColor(table *model.Table, xIdx, colorIdx, valueIdx int) []model.ChartSeries {
	var series []model.ChartSeries
	index := make(map[string]int)
	for i := range table.Rows {
		v, ok := table.Number(i, valueIdx)
		if !ok {
			continue
		}
		name := table.Cell(i, colorIdx)
		pos, seen := index[name]
		if !seen {
			pos = len(series)
			index[name] = pos
			series = append(series, model.ChartSeries{Name: name})
		}
		series[pos].Data = append(series[pos].Data, model.ChartPoint{Label: table.Cell(i, xIdx), Value: v})
	}
	return series
}

// sumByLabel totals values per label, sorted by label
func sumByLabel(table *model.Table, labelIdx, valueIdx int) []model.ChartPoint {
	sums := make(map[string]float64)
	for i := range table.Rows {
		if v, ok := table.Number(i, valueIdx); ok {
			sums[table.Cell(i, labelIdx)] += v
		}
	}

	labels := make([]string, 0, len(sums))
	for l := range sums {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	out := make([]model.ChartPoint, 0, len(labels))
	for _, l := range labels {
		out = append(out, model.ChartPoint{Label: l, Value: sums[l]})
	}
	return out
}

// pivotMean builds a dimension2 x dimension1 grid averaging duplicate cells
func pivotMean(table *model.Table, xIdx, yIdx, valueIdx int) *model.HeatmapGrid {
	type acc struct {
		sum float64
		n   int
	}
	cells := make(map[[2]string]*acc)
	xSet := make(map[string]struct{})
	ySet := make(map[string]struct{})

	for i := range table.Rows {
		v, ok := table.Number(i, valueIdx)
		if !ok {
			continue
		}
		x, y := table.Cell(i, xIdx), table.Cell(i, yIdx)
		xSet[x] = struct{}{}
		ySet[y] = struct{}{}
		key := [2]string{x, y}
		if cells[key] == nil {
			cells[key] = &acc{}
		}
		cells[key].sum += v
		cells[key].n++
	}

	grid := &model.HeatmapGrid{
		XLabels:    sortedKeys(xSet),
		YLabels:    sortedKeys(ySet),
		ColorScale: "Blues",
	}
	grid.Values = make([][]*float64, len(grid.YLabels))
	for yi, y := range grid.YLabels {
		row := make([]*float64, len(grid.XLabels))
		for xi, x := range grid.XLabels {
			if c := cells[[2]string{x, y}]; c != nil {
				mean := c.sum / float64(c.n)
				row[xi] = &mean
			}
		}
		grid.Values[yi] = row
	}
	return grid
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
