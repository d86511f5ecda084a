package service

import (
	"fmt"
	"strings"

	"github.com/vkadam-18/LVDI-2D/internal/model"
)

// questionPlaceholder is the single substitution point of the intent prompt
const questionPlaceholder = "{question}"

// twoDExamples are sample 2D keys listed in the prompt; any pair of 1D keys is valid
var twoDExamples = []string{
	"industry_x_practice_area",
	"industry_x_city",
	"practice_area_x_city",
	"practice_area_x_role",
	"amlaw_bucket_x_industry",
}

const promptExamples = `Examples:

Q: "What's the average rate for technology industry in 2024?"
{
  "table": "industry",
  "year": "2024",
  "metric": "Avg Rate",
  "filters": {
    "industry": "technology"
  }
}

Q: "Show me timekeeper count for corporate practice area and litigation role in 2023"
{
  "table": "practice_area_x_role",
  "year": "2023",
  "metric": "Timekeeper Count",
  "filters": {
    "practice_area": "corporate",
    "role": "litigation"
  }
}

Q: "What's the rate for New York city?"
{
  "table": "city",
  "year": null,
  "metric": "Avg Rate",
  "filters": {
    "city": "New York"
  }
}
`

// TextIntentTemplate is the intent prompt with the catalog filled in and
// the question left as a placeholder
var TextIntentTemplate = buildTextIntentTemplate(model.DimensionKeys, model.Metrics, model.Years)

func buildTextIntentTemplate(dimensions, metrics, years []string) string {
	var b strings.Builder

	b.WriteString("You are a data assistant for a legal analytics system.\n\n")
	b.WriteString("Return ONLY valid JSON. No explanation, no markdown.\n\n")

	b.WriteString("Available 1D tables (single dimension):\n")
	writeBullets(&b, dimensions)

	b.WriteString("\nAvailable 2D tables (two dimensions, format: dim1" + model.TableKeySeparator + "dim2):\n")
	writeBullets(&b, twoDExamples)
	b.WriteString("- etc. (any combination of two 1D dimensions)\n")

	b.WriteString("\nAvailable Metrics:\n")
	writeBullets(&b, metrics)

	b.WriteString("\nAvailable Years:\n")
	writeBullets(&b, years)

	b.WriteString(`
INSTRUCTIONS:
1. Identify which dimension(s) the user is asking about
2. If ONE dimension: use the 1D table name
3. If TWO dimensions: use format "dim1_x_dim2" (e.g., "industry_x_practice_area")
4. Extract any specific filter values the user mentions
5. Identify the year and metric

User question:
`)
	b.WriteString(questionPlaceholder)
	b.WriteString("\n\nReturn JSON in this exact format:\n")
	fmt.Fprintf(&b, `{
  "table": "table_name",
  "year": "YYYY",
  "metric": "%s",
  "filters": {
    "dimension_name": "filter_value or null"
  }
}

`, strings.Join(metrics, " or "))
	b.WriteString(promptExamples)

	return b.String()
}

func writeBullets(b *strings.Builder, items []string) {
	for _, item := range items {
		b.WriteString("- ")
		b.WriteString(item)
		b.WriteString("\n")
	}
}

// BuildIntentPrompt substitutes the question into the template
func BuildIntentPrompt(question string) string {
	return strings.Replace(TextIntentTemplate, questionPlaceholder, question, 1)
}
