package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vkadam-18/LVDI-2D/internal/model"
)

// measureMarkers identify numeric columns; matched case-sensitively
var measureMarkers = []string{"2023", "2024", "2025", "Avg Rate", "Count", "Matter"}

// metadataMarkers identify structural columns; matched on the lower-cased name
var metadataMarkers = []string{"dimension type", "dimension1 type", "dimension2 type", "type", "index", "unnamed"}

// isValueCandidate reports whether a column can hold dimension labels
func isValueCandidate(col string) bool {
	if containsAny(strings.ToLower(col), metadataMarkers) {
		return false
	}
	return !containsAny(col, measureMarkers)
}

// findValueColumn picks the 1D label column: a "Dimension Value" column
// if present, else the first non-metadata non-measure column
func findValueColumn(columns []string) (int, bool) {
	for i, c := range columns {
		if strings.Contains(c, "Dimension Value") {
			return i, true
		}
	}
	for i, c := range columns {
		if isValueCandidate(c) {
			return i, true
		}
	}
	return -1, false
}

// findValueColumns2D picks the two label columns of a 2D table
func findValueColumns2D(columns []string) []int {
	var found []int
	for _, n := range []int{1, 2} {
		for i, c := range columns {
			if strings.Contains(c, fmt.Sprintf("Dimension%d Value", n)) || strings.Contains(c, fmt.Sprintf("Dimension %d Value", n)) {
				found = append(found, i)
				break
			}
		}
	}
	if len(found) == 2 {
		return found
	}

	found = found[:0]
	for i, c := range columns {
		if !isValueCandidate(c) {
			continue
		}
		found = append(found, i)
		if len(found) == 2 {
			break
		}
	}
	return found
}

// columnMean averages the numeric cells of a column, skipping blanks
func columnMean(t *model.Table, col int) (float64, bool) {
	var sum float64
	n := 0
	for i := range t.Rows {
		if v, ok := t.Number(i, col); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// round2 rounds to two decimals on the exact binary value, so 2.675
// (stored as 2.67499...) becomes 2.67
func round2(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	if err != nil {
		return v
	}
	return r
}

// formatNumber prints a float the way a float literal reads: 250.5, 300.0
func formatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// formatList renders values as ['a', 'b'] for warnings
func formatList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + strings.ReplaceAll(v, "'", `\'`) + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
