package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vkadam-18/LVDI-2D/internal/model"
)

func TestDetectIntent(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  model.RuleIntent
	}{
		{
			name:  "Bar chart by industry",
			query: "Show avg rate by industry for 2024",
			want:  model.RuleIntent{Chart: model.ChartBar, Dimensions: []string{"industry"}, Year: "2024", Metric: model.MetricAvgRate},
		},
		{
			name:  "Pie overrides chart keyword",
			query: "Pie chart of timekeeper count by role",
			want:  model.RuleIntent{Chart: model.ChartDonut, Dimensions: []string{"role"}, Metric: model.MetricTimekeeperCount},
		},
		{
			name:  "Line with matter count",
			query: "line chart matter count by city in 2025",
			want:  model.RuleIntent{Chart: model.ChartLine, Dimensions: []string{"city"}, Year: "2025", Metric: model.MetricMatterCount},
		},
		{
			name:  "Heatmap with two dimensions, longest phrase first",
			query: "heatmap of industry and practice area",
			want:  model.RuleIntent{Chart: model.ChartHeatmap, Dimensions: []string{"practice_area", "industry"}, Metric: model.MetricAvgRate},
		},
		{
			name:  "Stack wins over pie",
			query: "pie or stack plot",
			want:  model.RuleIntent{Chart: model.ChartStackedBar, Dimensions: []string{}, Metric: model.MetricAvgRate},
		},
		{
			name:  "No chart",
			query: "What is the rate for New York?",
			want:  model.RuleIntent{Dimensions: []string{}, Metric: model.MetricAvgRate},
		},
		{
			name:  "Bare count defaults to timekeepers",
			query: "count by firm size",
			want:  model.RuleIntent{Dimensions: []string{"firm_size"}, Metric: model.MetricTimekeeperCount},
		},
		{
			name:  "First listed year wins",
			query: "rates 2025 vs 2023",
			want:  model.RuleIntent{Dimensions: []string{}, Year: "2023", Metric: model.MetricAvgRate},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectIntent(tt.query)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestDetectIntentDimensions(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "Detailed practice area beats its substrings", query: "detailed practice area rates", want: []string{"detailed_practice_area"}},
		{name: "Detailed and plain practice area together", query: "detailed practice area and practice area", want: []string{"detailed_practice_area"}},
		{name: "Same key deduplicated", query: "years of experience and experience", want: []string{"years_of_experience"}},
		{name: "Short alias", query: "amlaw rates", want: []string{"amlaw_bucket"}},
		{name: "Capped at two", query: "industry role city country", want: []string{"industry", "country"}},
		{name: "Case-insensitive", query: "By FIRM SIZE and MATTER TYPE", want: []string{"matter_type", "firm_size"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectIntent(tt.query)
			assert.Equal(t, tt.want, got.Dimensions)
			assert.LessOrEqual(t, len(got.Dimensions), 2)
		})
	}
}

func TestDetectMetricPriority(t *testing.T) {
	assert.Equal(t, model.MetricMatterCount, detectMetric("timekeeper matter count"))
	assert.Equal(t, model.MetricMatterCount, detectMetric("count of matter"))
	assert.Equal(t, model.MetricTimekeeperCount, detectMetric("timekeeper rates"))
	assert.Equal(t, model.MetricTimekeeperCount, detectMetric("headcount"))
	assert.Equal(t, model.MetricAvgRate, detectMetric("average rate"))
}
