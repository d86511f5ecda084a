package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkadam-18/LVDI-2D/internal/model"
)

func TestChartDimensions(t *testing.T) {
	assert.Equal(t, []string{"Dimension Value"}, ChartDimensions(industryTable().Columns, "2024 Avg Rate Jun"))
	assert.Equal(t, []string{"Dimension1 Value", "Dimension2 Value"}, ChartDimensions(practiceRoleTable().Columns, "2023 Timekeeper Count Jun"))
	assert.Equal(t, []string{"Role"}, ChartDimensions([]string{"index", "Unnamed: 0", "Role", "Avg Rate"}, ""))
}

func TestBuildChart1D(t *testing.T) {
	table := industryTable()

	bar, err := BuildChart(table, "2024 Avg Rate Jun", model.ChartBar)
	require.NoError(t, err)
	assert.Equal(t, "bar", bar.Kind)
	assert.Equal(t, "2024 Avg Rate", bar.Title)
	assert.Equal(t, "Category", bar.XAxis)
	assert.Equal(t, "2024 Avg Rate", bar.YAxis)
	assert.True(t, bar.TextAuto)
	assert.Equal(t, model.ChartBindings{X: "Dimension Value", Y: "2024 Avg Rate Jun"}, bar.Bindings)
	require.Len(t, bar.Series, 1)
	assert.Equal(t, []model.ChartPoint{
		{Label: "Technology", Value: 1000},
		{Label: "Health Care", Value: 850.5},
		{Label: "Financial Services", Value: 1100},
	}, bar.Series[0].Data)

	line, err := BuildChart(table, "2024 Avg Rate Jun", model.ChartLine)
	require.NoError(t, err)
	assert.Equal(t, "2024 Avg Rate Trend", line.Title)
	assert.True(t, line.Markers)

	donut, err := BuildChart(table, "2024 Avg Rate Jun", model.ChartDonut)
	require.NoError(t, err)
	assert.Equal(t, "pie", donut.Kind)
	assert.Equal(t, 0.4, donut.Hole)
	assert.Equal(t, "2024 Avg Rate Distribution", donut.Title)
	assert.Equal(t, "Dimension Value", donut.Bindings.Names)
}

func TestBuildChart1DUnsupported(t *testing.T) {
	for _, chart := range []string{model.ChartHeatmap, model.ChartStackedBar, model.ChartGroupedBar, "scatter"} {
		t.Run(chart, func(t *testing.T) {
			_, err := BuildChart(industryTable(), "2024 Avg Rate Jun", chart)
			assert.ErrorIs(t, err, ErrUnsupportedChart)
		})
	}
}

func TestBuildChart2D(t *testing.T) {
	table := practiceRoleTable()
	measure := "2023 Timekeeper Count Jun"

	stacked, err := BuildChart(table, measure, model.ChartStackedBar)
	require.NoError(t, err)
	assert.Equal(t, "stack", stacked.BarMode)
	assert.Equal(t, "2023 Timekeeper Count (Stacked)", stacked.Title)
	assert.Equal(t, "Dimension 1", stacked.XAxis)
	assert.Equal(t, "Dimension 2", stacked.Legend)
	assert.Equal(t, "Dimension2 Value", stacked.Bindings.Color)
	require.Len(t, stacked.Series, 2)
	assert.Equal(t, "Partner", stacked.Series[0].Name)
	assert.Equal(t, []model.ChartPoint{{Label: "Corporate", Value: 10}, {Label: "Litigation", Value: 30}}, stacked.Series[0].Data)
	assert.Equal(t, "Associate", stacked.Series[1].Name)

	grouped, err := BuildChart(table, measure, model.ChartGroupedBar)
	require.NoError(t, err)
	assert.Equal(t, "group", grouped.BarMode)
	assert.Equal(t, "2023 Timekeeper Count (Grouped)", grouped.Title)

	bar, err := BuildChart(table, measure, model.ChartBar)
	require.NoError(t, err)
	assert.Equal(t, "group", bar.BarMode)
	assert.Equal(t, "2023 Timekeeper Count", bar.Title)

	line, err := BuildChart(table, measure, model.ChartLine)
	require.NoError(t, err)
	assert.Equal(t, "line", line.Kind)
	assert.Len(t, line.Series, 2)
}

func TestBuildChartHeatmap(t *testing.T) {
	table := practiceRoleTable()
	// duplicate cell is averaged
	table.Rows = append(table.Rows, []string{"Practice Area", "Corporate", "Role", "Associate", "40"})

	spec, err := BuildChart(table, "2023 Timekeeper Count Jun", model.ChartHeatmap)
	require.NoError(t, err)
	require.NotNil(t, spec.Heatmap)

	grid := spec.Heatmap
	assert.Equal(t, "2023 Timekeeper Count Heatmap", spec.Title)
	assert.Equal(t, []string{"Corporate", "Litigation"}, grid.XLabels)
	assert.Equal(t, []string{"Associate", "Partner"}, grid.YLabels)
	assert.Equal(t, "Blues", grid.ColorScale)
	assert.Equal(t, "2023 Timekeeper Count", grid.ColorLabel)
	require.NotNil(t, grid.Values[0][0])
	assert.Equal(t, 30.0, *grid.Values[0][0])
	assert.Equal(t, 30.0, *grid.Values[1][1])
}

func TestBuildChartDonut2D(t *testing.T) {
	spec, err := BuildChart(practiceRoleTable(), "2023 Timekeeper Count Jun", model.ChartDonut)
	require.NoError(t, err)
	assert.Equal(t, "pie", spec.Kind)
	assert.Equal(t, []model.ChartPoint{{Label: "Corporate", Value: 30}, {Label: "Litigation", Value: 70}}, spec.Series[0].Data)
}

func TestBuildChartErrors(t *testing.T) {
	_, err := BuildChart(practiceRoleTable(), "2023 Timekeeper Count Jun", "scatter")
	assert.ErrorIs(t, err, ErrUnsupportedChart)

	three := &model.Table{Columns: []string{"A", "B", "C", "2023 Avg Rate Jun"}}
	_, err = BuildChart(three, "2023 Avg Rate Jun", model.ChartBar)
	assert.ErrorIs(t, err, ErrDimensionCount)

	none := &model.Table{Columns: []string{"2023 Avg Rate Jun"}}
	_, err = BuildChart(none, "2023 Avg Rate Jun", model.ChartBar)
	assert.ErrorIs(t, err, ErrDimensionCount)
}
