package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/vkadam-18/LVDI-2D/internal/config"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiClient talks to Google's Gemini models through the GenAI SDK.
// The deployment name selects the model; the endpoint is unused.
type GeminiClient struct {
	client         *genai.Client
	model          string
	embeddingModel string
	maxTokens      int32
	logger         *zap.Logger
}

// NewGeminiClient creates a client. Without an API key the client is returned disabled.
func NewGeminiClient(ctx context.Context, cfg config.ModelConfig, creds config.Credentials, logger *zap.Logger) (*GeminiClient, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	model := creds.DeploymentName
	if model == "" {
		model = defaultGeminiModel
	}

	c := &GeminiClient{
		model:          model,
		embeddingModel: cfg.EmbeddingModel,
		maxTokens:      int32(cfg.MaxTokens),
		logger:         logger,
	}
	if creds.APIKey == "" {
		return c, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  creds.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	c.client = client

	logger.Info("🔧 Gemini client ready", zap.String("model", model))
	return c, nil
}

// IsEnabled returns whether the client is configured and ready
func (c *GeminiClient) IsEnabled() bool {
	return c.client != nil
}

// EmbeddingsEnabled reports whether an embedding model is configured
func (c *GeminiClient) EmbeddingsEnabled() bool {
	return c.IsEnabled() && c.embeddingModel != ""
}

func (c *GeminiClient) contentConfig() *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(intentTemperature)),
	}
	if c.maxTokens > 0 {
		cfg.MaxOutputTokens = c.maxTokens
	}
	return cfg
}

// Generate sends the prompt and returns the response text
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.IsEnabled() {
		return "", ErrModelDisabled
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), c.contentConfig())
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}

	return result.Text(), nil
}

// GenerateStream streams the response; Gemini thought parts go to the thinking channel
func (c *GeminiClient) GenerateStream(ctx context.Context, prompt string, callback func(thinking, content string) error) (string, error) {
	if !c.IsEnabled() {
		return "", ErrModelDisabled
	}

	var full strings.Builder
	for resp, err := range c.client.Models.GenerateContentStream(ctx, c.model, genai.Text(prompt), c.contentConfig()) {
		if err != nil {
			return "", fmt.Errorf("streaming error: %w", err)
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			continue
		}
		for _, part := range resp.Candidates[0].Content.Parts {
			if part == nil || part.Text == "" {
				continue
			}
			if part.Thought {
				if err := callback(part.Text, ""); err != nil {
					return "", err
				}
				continue
			}
			full.WriteString(part.Text)
			if err := callback("", part.Text); err != nil {
				return "", err
			}
		}
	}

	return full.String(), nil
}

// Embed creates an embedding for one text
func (c *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if !c.EmbeddingsEnabled() {
		return nil, ErrModelDisabled
	}

	result, err := c.client.Models.EmbedContent(ctx, c.embeddingModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("gemini embedding failed: %w", err)
	}
	if len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("no embedding in response")
	}

	return result.Embeddings[0].Values, nil
}
