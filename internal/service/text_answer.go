package service

import (
	"fmt"
	"strings"

	"github.com/vkadam-18/LVDI-2D/internal/model"
	"github.com/vkadam-18/LVDI-2D/internal/utils"
)

const sampleValueLimit = 5

func warning(format string, args ...any) model.TextAnswer {
	return model.TextAnswer{Text: "⚠️ " + fmt.Sprintf(format, args...), Warning: true}
}

// GenerateTextAnswer answers a question against a 1D table. Every failure
// is returned as a warning answer, never as an error.
func GenerateTextAnswer(table *model.Table, intent *model.Intent, version string) model.TextAnswer {
	if intent.Year == "" || intent.Metric == "" {
		return warning("Please specify year and metric.")
	}

	dimCol, ok := findValueColumn(table.Columns)
	if !ok {
		return warning("No dimension column found. Available columns: %s", formatList(table.Columns))
	}
	dimName := table.Columns[dimCol]

	filtered := table
	var applied []string
	for _, fv := range intent.FilterValues.Active() {
		matched, ok := utils.BestMatch(filtered.Values(dimCol), fv.Value)
		if !ok {
			return warning("No data found for `%s` in %s. Available values include: %s",
				fv.Value, dimName, formatList(filtered.UniqueValues(dimCol, sampleValueLimit)))
		}
		filtered = filtered.Where(dimCol, matched)
		applied = append(applied, matched)
	}

	if filtered.Len() == 0 {
		return warning("No data found for the selected filters.")
	}

	measureCol := ResolveMeasureColumn(filtered.Columns, intent.Year, intent.Metric, version)
	if measureCol == "" {
		return warning("Measure `%s %s` not available. Available columns: %s",
			intent.Year, intent.Metric, formatList(yearColumns(table.Columns)))
	}

	return formatAnswer(filtered, measureCol, intent, applied, version)
}

// GenerateTextAnswer2D answers a question against a 2D table. Each filter
// binds to dimension 1 when it matches there, else to dimension 2; filters
// matching neither are ignored.
func GenerateTextAnswer2D(table *model.Table, intent *model.Intent, version string) model.TextAnswer {
	if intent.Year == "" || intent.Metric == "" {
		return warning("Please specify year and metric.")
	}

	dimCols := findValueColumns2D(table.Columns)
	if len(dimCols) < 2 {
		return warning("Expected 2 dimension columns, found %d. Columns: %s", len(dimCols), formatList(table.Columns))
	}

	filtered := table
	var applied []string
	for _, fv := range intent.FilterValues.Active() {
		for _, col := range dimCols {
			if matched, ok := utils.BestMatch(filtered.Values(col), fv.Value); ok {
				filtered = filtered.Where(col, matched)
				applied = append(applied, matched)
				break
			}
		}
	}

	if filtered.Len() == 0 {
		return warning("No matching data found for the specified filters.")
	}

	measureCol := ResolveMeasureColumn(filtered.Columns, intent.Year, intent.Metric, version)
	if measureCol == "" {
		return warning("`%s %s` not available. Available columns: %s",
			intent.Year, intent.Metric, formatList(yearColumns(table.Columns)))
	}

	return formatAnswer(filtered, measureCol, intent, applied, version)
}

func formatAnswer(filtered *model.Table, measureCol string, intent *model.Intent, applied []string, version string) model.TextAnswer {
	mean, ok := columnMean(filtered, filtered.ColumnIndex(measureCol))
	if !ok {
		return warning("No numeric values in `%s` for the selected filters.", measureCol)
	}
	value := formatNumber(round2(mean))

	if len(applied) > 0 {
		return model.TextAnswer{Text: fmt.Sprintf("📊 **%s %s** for **%s** (%s) is **%s**.",
			intent.Year, intent.Metric, strings.Join(applied, " × "), version, value)}
	}
	return model.TextAnswer{Text: fmt.Sprintf("📊 **%s %s** overall average (%s) is **%s**.",
		intent.Year, intent.Metric, version, value)}
}
