package service

import (
	"sort"
	"strings"

	"github.com/vkadam-18/LVDI-2D/internal/model"
)

// chartRule sets the chart type when any keyword appears. Rules run in
// order and later matches overwrite earlier ones.
type chartRule struct {
	keywords []string
	chart    string
}

var chartRules = []chartRule{
	{keywords: []string{"plot", "chart", "graph", "show"}, chart: model.ChartBar},
	{keywords: []string{"pie", "donut"}, chart: model.ChartDonut},
	{keywords: []string{"line"}, chart: model.ChartLine},
	{keywords: []string{"heat"}, chart: model.ChartHeatmap},
	{keywords: []string{"stack"}, chart: model.ChartStackedBar},
}

// dimensionPhrase maps a query phrase to a dimension key
type dimensionPhrase struct {
	phrase string
	key    string
}

var dimensionPhrases = []dimensionPhrase{
	{"detailed practice area", "detailed_practice_area"},
	{"practice area", "practice_area"},
	{"practice", "practice_area"},
	{"years of experience", "years_of_experience"},
	{"experience", "years_of_experience"},
	{"amlaw bucket", "amlaw_bucket"},
	{"amlaw", "amlaw_bucket"},
	{"firm size", "firm_size"},
	{"matter type", "matter_type"},
	{"industry", "industry"},
	{"role", "role"},
	{"city", "city"},
	{"country", "country"},
}

// sortedDimensionPhrases is dimensionPhrases longest first, ties in declaration order
var sortedDimensionPhrases = func() []dimensionPhrase {
	out := make([]dimensionPhrase, len(dimensionPhrases))
	copy(out, dimensionPhrases)
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].phrase) > len(out[j].phrase)
	})
	return out
}()

// metricRule picks a metric when its predicate holds; first match wins
type metricRule struct {
	name   string
	metric string
	match  func(q string) bool
}

var metricRules = []metricRule{
	{
		name:   "matter count",
		metric: model.MetricMatterCount,
		match: func(q string) bool {
			return strings.Contains(q, "matter count") ||
				(strings.Contains(q, "matter") && strings.Contains(q, "count"))
		},
	},
	{
		// any other "count" query defaults to timekeepers
		name:   "timekeeper count",
		metric: model.MetricTimekeeperCount,
		match: func(q string) bool {
			return strings.Contains(q, "timekeeper") ||
				(!strings.Contains(q, "timekeeper") && strings.Contains(q, "count"))
		},
	},
	{
		name:   "avg rate",
		metric: model.MetricAvgRate,
		match:  func(string) bool { return true },
	},
}

// DetectIntent reads chart type, dimensions, year and metric from a query by keyword.
// It is pure and case-insensitive.
func DetectIntent(query string) *model.RuleIntent {
	q := strings.ToLower(query)

	return &model.RuleIntent{
		Chart:      detectChart(q),
		Dimensions: detectDimensions(q),
		Year:       detectYear(q),
		Metric:     detectMetric(q),
	}
}

func detectChart(q string) string {
	chart := ""
	for _, rule := range chartRules {
		if containsAny(q, rule.keywords) {
			chart = rule.chart
		}
	}
	return chart
}

func detectYear(q string) string {
	for _, y := range model.Years {
		if strings.Contains(q, y) {
			return y
		}
	}
	return ""
}

// detectDimensions returns at most two keys in discovery order. A phrase that
// is part of an already matched longer phrase is not counted again, so
// "detailed practice area" never also yields practice_area.
func detectDimensions(q string) []string {
	dims := make([]string, 0, 2)
	var matched []string

	for _, p := range sortedDimensionPhrases {
		if !strings.Contains(q, p.phrase) || insideMatched(p.phrase, matched) {
			continue
		}
		matched = append(matched, p.phrase)
		if !contains(dims, p.key) {
			dims = append(dims, p.key)
		}
		if len(dims) == 2 {
			break
		}
	}
	return dims
}

func detectMetric(q string) string {
	for _, rule := range metricRules {
		if rule.match(q) {
			return rule.metric
		}
	}
	return model.MetricAvgRate
}

func insideMatched(phrase string, matched []string) bool {
	for _, m := range matched {
		if strings.Contains(m, phrase) {
			return true
		}
	}
	return false
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
