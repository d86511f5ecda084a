package service

import (
	"fmt"
	"strings"

	"github.com/vkadam-18/LVDI-2D/internal/model"
)

// MeasureColumnName is the canonical "<year> <metric> <version>" column name
func MeasureColumnName(year, metric, version string) string {
	return fmt.Sprintf("%s %s %s", year, metric, version)
}

// ResolveMeasureColumn finds the column holding a measure. The exact
// canonical name wins; otherwise the first column containing the year
// and the metric (case-insensitive) is used. Returns "" when neither exists.
func ResolveMeasureColumn(columns []string, year, metric, version string) string {
	if year == "" || metric == "" {
		return ""
	}

	expected := MeasureColumnName(year, metric, version)
	for _, c := range columns {
		if c == expected {
			return c
		}
	}

	metricLower := strings.ToLower(metric)
	for _, c := range columns {
		if strings.Contains(c, year) && strings.Contains(strings.ToLower(c), metricLower) {
			return c
		}
	}

	return ""
}

// yearColumns lists the columns mentioning any known year
func yearColumns(columns []string) []string {
	out := []string{}
	for _, c := range columns {
		if containsAny(c, model.Years) {
			out = append(out, c)
		}
	}
	return out
}
