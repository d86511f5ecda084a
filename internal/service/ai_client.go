package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/vkadam-18/LVDI-2D/internal/config"
)

var (
	// ErrModelDisabled is returned when no text-generation service is configured
	ErrModelDisabled = errors.New("model client is not enabled")
	// ErrModelRequest wraps transport and provider failures
	ErrModelRequest = errors.New("model request failed")
)

// intentTemperature is the sampling temperature of every model call.
// Intent extraction wants the least varied output, so it is not configurable.
const intentTemperature = 0.0

// ModelClient is the interface for text-generation providers.
// It takes a prompt and returns free text; callers extract JSON themselves.
type ModelClient interface {
	// Generate sends a prompt and returns the full response text
	Generate(ctx context.Context, prompt string) (string, error)

	// GenerateStream sends a prompt with streaming support.
	// The callback receives (thinkingContent, regularContent) for each chunk.
	GenerateStream(ctx context.Context, prompt string, callback func(thinking, content string) error) (string, error)

	// IsEnabled returns whether the client is configured and ready
	IsEnabled() bool
}

// Embedder turns text into a vector for the intent cache
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbeddingsEnabled() bool
}

// StreamChunk represents a generic streaming response chunk
type StreamChunk struct {
	// Regular content (always present in streaming)
	Content string

	// Thinking/reasoning content (provider-specific)
	ThinkingContent string

	// Role (assistant, user, system)
	Role string

	// Whether this is the final chunk
	Done bool
}

// NewModelClient builds the client for the configured provider.
// Missing credentials yield a disabled client rather than an error.
func NewModelClient(ctx context.Context, cfg config.ModelConfig, creds config.Credentials, logger *zap.Logger) (ModelClient, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Provider {
	case ProviderAzure, ProviderOpenAI, "":
		return NewOpenAIClient(cfg, creds, logger), nil
	case ProviderGemini:
		return NewGeminiClient(ctx, cfg, creds, logger)
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}

// Ensure clients implement the interfaces
var (
	_ ModelClient = (*OpenAIClient)(nil)
	_ Embedder    = (*OpenAIClient)(nil)
	_ ModelClient = (*GeminiClient)(nil)
	_ Embedder    = (*GeminiClient)(nil)
)
