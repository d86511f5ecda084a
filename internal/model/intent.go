package model

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Chart types produced by the rule-based detector
const (
	ChartBar        = "bar"
	ChartDonut      = "donut"
	ChartLine       = "line"
	ChartHeatmap    = "heatmap"
	ChartStackedBar = "stacked_bar"
	ChartGroupedBar = "grouped_bar"
)

// Metric names as they appear in measure column names
const (
	MetricAvgRate         = "Avg Rate"
	MetricTimekeeperCount = "Timekeeper Count"
	MetricMatterCount     = "Matter Count"
)

// Years holds the fixed set of data years, in detection order
var Years = []string{"2023", "2024", "2025"}

// Metrics holds every supported metric name
var Metrics = []string{MetricAvgRate, MetricTimekeeperCount, MetricMatterCount}

// DimensionKeys is the catalog of 1D tables, one per dimension
var DimensionKeys = []string{
	"industry",
	"practice_area",
	"detailed_practice_area",
	"amlaw_bucket",
	"firm_size",
	"role",
	"years_of_experience",
	"city",
	"country",
	"matter_type",
}

// NormalizeVersion capitalizes a version name: "jun" -> "Jun"
func NormalizeVersion(version string) string {
	version = strings.TrimSpace(version)
	if version == "" {
		return ""
	}
	return strings.ToUpper(version[:1]) + strings.ToLower(version[1:])
}

// RuleIntent is the result of the keyword-based detector
type RuleIntent struct {
	Chart      string   `json:"chart,omitempty"` // empty when no chart was requested
	Dimensions []string `json:"dimensions"`
	Year       string   `json:"year,omitempty"`
	Metric     string   `json:"metric"`
}

// WantsChart reports whether the query asked for a visual
func (r *RuleIntent) WantsChart() bool {
	return r.Chart != ""
}

// Intent is the normalized result of the model-based resolver
type Intent struct {
	Dimensions   []string     `json:"dimensions"`
	Year         string       `json:"year,omitempty"`
	Metric       string       `json:"metric,omitempty"`
	FilterValues FilterValues `json:"filter_values,omitempty"`
}

// FilterValue binds a raw filter string to a dimension key.
// Value is empty when the model returned null.
type FilterValue struct {
	Dimension string `json:"dimension"`
	Value     string `json:"value"`
}

// FilterValues keeps filters in the order the model emitted them
type FilterValues []FilterValue

// Active returns only the filters carrying a non-empty value
func (f FilterValues) Active() FilterValues {
	active := make(FilterValues, 0, len(f))
	for _, fv := range f {
		if fv.Value != "" {
			active = append(active, fv)
		}
	}
	return active
}

// Get returns the value for a dimension key
func (f FilterValues) Get(dimension string) (string, bool) {
	for _, fv := range f {
		if fv.Dimension == dimension {
			return fv.Value, true
		}
	}
	return "", false
}

// MarshalJSON writes filters as an object in their original order; empty values become null
func (f FilterValues) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, fv := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(fv.Dimension)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if fv.Value == "" {
			buf.WriteString("null")
			continue
		}
		val, err := json.Marshal(fv.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a filter object keeping key order.
// Anything other than an object decodes to no filters.
func (f *FilterValues) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		*f = nil
		return nil
	}

	out := FilterValues{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		out = append(out, FilterValue{Dimension: key, Value: rawScalar(raw)})
	}
	*f = out
	return nil
}

// rawScalar turns a JSON value into filter text: strings unquoted, null blank, anything else verbatim
func rawScalar(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "null" || trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return trimmed
}
