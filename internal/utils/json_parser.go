package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
)

var (
	// ErrExtraction means the model output held no {...} span at all
	ErrExtraction = errors.New("no JSON object found")
	// ErrParse means a span was found but it is not valid JSON
	ErrParse = errors.New("invalid JSON")
)

var (
	jsonFence  = regexp.MustCompile("(?i)```json")
	plainFence = regexp.MustCompile("```")
	// Greedy: first '{' to last '}'. Not a balanced scan, so trailing prose
	// containing braces corrupts the span.
	objectSpan = regexp.MustCompile(`\{[\s\S]*\}`)
)

// StripCodeFences removes ```json and ``` markers anywhere in the text
func StripCodeFences(text string) string {
	text = jsonFence.ReplaceAllString(text, "")
	return plainFence.ReplaceAllString(text, "")
}

// ExtractJSONSpan returns the greedy brace span of model output without parsing it
func ExtractJSONSpan(text string) (string, error) {
	if text == "" {
		return "", fmt.Errorf("%w: empty model response", ErrExtraction)
	}

	span := objectSpan.FindString(StripCodeFences(text))
	if span == "" {
		return "", fmt.Errorf("%w in response: %s", ErrExtraction, truncateString(text, 100))
	}
	return span, nil
}

// ExtractJSON pulls the JSON object out of free-form model output and
// returns its fields undecoded, keys stripped of stray quotes.
// Handles:
// - JSON wrapped in markdown code blocks (```json ... ```)
// - JSON with surrounding text
//
// With repair set, a span that fails to parse goes through RepairJSONSpan once.
func ExtractJSON(text string, repair bool) (map[string]json.RawMessage, error) {
	span, err := ExtractJSONSpan(text)
	if err != nil {
		return nil, err
	}

	fields, err := decodeObject(span)
	if err != nil && repair {
		repaired, rerr := RepairJSONSpan(span)
		if rerr != nil {
			return nil, rerr
		}
		fields, err = decodeObject(repaired)
	}
	return fields, err
}

// decodeObject parses a JSON object into raw fields with cleaned keys
func decodeObject(span string) (map[string]json.RawMessage, error) {
	var rawFields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(span), &rawFields); err != nil {
		return nil, fmt.Errorf("%w returned: %s: %v", ErrParse, truncateString(span, 100), err)
	}
	if rawFields == nil {
		return nil, fmt.Errorf("%w: not a JSON object", ErrParse)
	}

	fields := make(map[string]json.RawMessage, len(rawFields))
	for k, v := range rawFields {
		fields[StripQuotes(k)] = v
	}
	return fields, nil
}

// RepairJSONSpan fixes common model mistakes inside an already-extracted span:
// trailing commas, single quotes, unquoted keys, unclosed objects.
// It never re-scans the original text.
func RepairJSONSpan(span string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(span)
	if err != nil {
		return "", fmt.Errorf("%w: repair failed: %v", ErrParse, err)
	}
	if !ValidateJSON(repaired) {
		return "", fmt.Errorf("%w: repair produced invalid output", ErrParse)
	}
	return repaired, nil
}

// ValidateJSON checks if a string is valid JSON
func ValidateJSON(input string) bool {
	var js interface{}
	return json.Unmarshal([]byte(input), &js) == nil
}

// StripQuotes removes stray quotation characters some models leave inside keys
func StripQuotes(key string) string {
	return strings.TrimSpace(strings.ReplaceAll(key, `"`, ""))
}

// truncateString truncates a string to maxLen characters
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
