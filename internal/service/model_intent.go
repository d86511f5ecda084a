package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vkadam-18/LVDI-2D/internal/model"
	"github.com/vkadam-18/LVDI-2D/internal/utils"
)

// IntentResolver asks the text-generation service to read a query into an Intent
type IntentResolver struct {
	client     ModelClient
	repairJSON bool
	metrics    *Metrics
	logger     *zap.Logger
}

// NewIntentResolver creates a resolver. With repairJSON set, a malformed
// object is passed through json-repair before giving up.
func NewIntentResolver(client ModelClient, repairJSON bool, metrics *Metrics, logger *zap.Logger) *IntentResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntentResolver{
		client:     client,
		repairJSON: repairJSON,
		metrics:    metrics,
		logger:     logger,
	}
}

// Enabled reports whether a model is available
func (r *IntentResolver) Enabled() bool {
	return r.client != nil && r.client.IsEnabled()
}

// Resolve sends the intent prompt and parses the reply.
// It returns the raw model text alongside the intent for logging.
func (r *IntentResolver) Resolve(ctx context.Context, query string) (*model.Intent, string, error) {
	if !r.Enabled() {
		return nil, "", ErrModelDisabled
	}

	start := time.Now()
	raw, err := r.client.Generate(ctx, BuildIntentPrompt(query))
	r.metrics.observeModel(time.Since(start))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrModelRequest, err)
	}

	intent, err := ParseModelIntent(raw, r.repairJSON)
	if err != nil {
		r.logger.Warn("Failed to parse model intent", zap.String("raw", raw), zap.Error(err))
		return nil, raw, err
	}
	return intent, raw, nil
}

// ResolveStream is Resolve with model output chunks forwarded to callback
func (r *IntentResolver) ResolveStream(ctx context.Context, query string, callback func(thinking, content string) error) (*model.Intent, string, error) {
	if !r.Enabled() {
		return nil, "", ErrModelDisabled
	}

	start := time.Now()
	raw, err := r.client.GenerateStream(ctx, BuildIntentPrompt(query), callback)
	r.metrics.observeModel(time.Since(start))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrModelRequest, err)
	}

	intent, err := ParseModelIntent(raw, r.repairJSON)
	if err != nil {
		r.logger.Warn("Failed to parse streamed model intent", zap.String("raw", raw), zap.Error(err))
		return nil, raw, err
	}
	return intent, raw, nil
}

// ParseModelIntent extracts the JSON object from model text and normalizes it:
// keys lose stray quotes, "table" becomes dimensions, "filters" becomes filter values.
func ParseModelIntent(raw string, repair bool) (*model.Intent, error) {
	fields, err := utils.ExtractJSON(raw, repair)
	if err != nil {
		return nil, err
	}

	intent := &model.Intent{
		Dimensions: splitTableKey(rawString(fields["table"])),
		Year:       rawString(fields["year"]),
		Metric:     rawString(fields["metric"]),
	}

	if filters, ok := fields["filters"]; ok {
		if err := json.Unmarshal(filters, &intent.FilterValues); err != nil {
			return nil, fmt.Errorf("%w: filters: %v", utils.ErrParse, err)
		}
	}

	return intent, nil
}

// splitTableKey turns "a_x_b" into [a b] and "a" into [a]
func splitTableKey(table string) []string {
	if table == "" {
		return []string{}
	}
	if !strings.Contains(table, model.TableKeySeparator) {
		return []string{table}
	}
	parts := strings.Split(table, model.TableKeySeparator)
	dims := make([]string, 0, len(parts))
	for _, p := range parts {
		dims = append(dims, strings.TrimSpace(p))
	}
	return dims
}

// rawString reads a scalar field: strings unquoted, null or missing blank, numbers verbatim
func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "null" {
		return ""
	}
	return trimmed
}

// IsModelOutputError reports whether err is a model-output contract violation
func IsModelOutputError(err error) bool {
	return errors.Is(err, utils.ErrExtraction) || errors.Is(err, utils.ErrParse)
}
