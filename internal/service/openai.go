package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vkadam-18/LVDI-2D/internal/config"
)

// Model providers
const (
	ProviderAzure  = "azure"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

const defaultAzureAPIVersion = "2024-02-01"

// StreamChunkParser is the interface for provider-specific chunk parsing
type StreamChunkParser interface {
	ParseChunk(data []byte) (*StreamChunk, error)
}

// OpenAIClient handles Azure OpenAI and OpenAI-compatible API interactions
type OpenAIClient struct {
	config      config.ModelConfig
	creds       config.Credentials
	httpClient  *http.Client
	chunkParser StreamChunkParser
	logger      *zap.Logger
}

// NewOpenAIClient creates a new client with auto-detection of the stream format
func NewOpenAIClient(cfg config.ModelConfig, creds config.Credentials, logger *zap.Logger) *OpenAIClient {
	if logger == nil {
		logger = zap.NewNop()
	}

	var parser StreamChunkParser
	if IsReasoningProvider(creds.Endpoint) {
		parser = &ReasoningStreamChunkParser{}
		logger.Info("🔧 Detected reasoning-capable provider", zap.String("endpoint", creds.Endpoint))
	} else {
		parser = &OpenAIStreamChunkParser{}
	}

	if cfg.Provider == ProviderAzure && creds.APIVersion == "" {
		creds.APIVersion = defaultAzureAPIVersion
	}

	return &OpenAIClient{
		config:      cfg,
		creds:       creds,
		chunkParser: parser,
		logger:      logger,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}
}

// IsEnabled returns whether the client is configured and ready
func (c *OpenAIClient) IsEnabled() bool {
	return c.creds.Complete()
}

// EmbeddingsEnabled reports whether an embedding deployment is configured
func (c *OpenAIClient) EmbeddingsEnabled() bool {
	return c.IsEnabled() && c.config.EmbeddingModel != ""
}

// ChatCompletionRequest represents a chat completion request
type ChatCompletionRequest struct {
	Model       string        `json:"model,omitempty"`
	Messages    []ChatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream,omitempty"`
}

// ChatMessage represents a single message in the conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionResponse represents the API response
type ChatCompletionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int         `json:"index"`
		Message      ChatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// StreamCallback is called for each chunk in streaming mode
type StreamCallback func(chunk *StreamChunk) error

// EmbeddingRequest represents an embedding request
type EmbeddingRequest struct {
	Model          string   `json:"model,omitempty"`
	Input          []string `json:"input"`
	EncodingFormat string   `json:"encoding_format,omitempty"`
}

// EmbeddingResponse represents the embedding API response
type EmbeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Model string `json:"model"`
	Usage struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

// endpointURL builds the request URL for an operation ("chat/completions", "embeddings")
func (c *OpenAIClient) endpointURL(deployment, operation string) string {
	base := strings.TrimRight(c.creds.Endpoint, "/")
	if c.config.Provider == ProviderAzure {
		return fmt.Sprintf("%s/openai/deployments/%s/%s?api-version=%s",
			base, url.PathEscape(deployment), operation, url.QueryEscape(c.creds.APIVersion))
	}
	return fmt.Sprintf("%s/%s", base, operation)
}

func (c *OpenAIClient) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.config.Provider == ProviderAzure {
		req.Header.Set("api-key", c.creds.APIKey)
		return
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.creds.APIKey))
}

// newChatRequest applies configured defaults. Temperature is always sent, pinned to zero.
func (c *OpenAIClient) newChatRequest(prompt string) ChatCompletionRequest {
	temperature := intentTemperature
	req := ChatCompletionRequest{
		Messages:    []ChatMessage{{Role: "user", Content: prompt}},
		Temperature: &temperature,
		MaxTokens:   c.config.MaxTokens,
	}
	if c.config.Provider != ProviderAzure {
		req.Model = c.creds.DeploymentName
	}
	return req
}

// ChatCompletion performs a chat completion request
func (c *OpenAIClient) ChatCompletion(ctx context.Context, req ChatCompletionRequest) (*ChatCompletionResponse, error) {
	if !c.IsEnabled() {
		return nil, ErrModelDisabled
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpointURL(c.creds.DeploymentName, "chat/completions"), bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &result, nil
}

// ChatCompletionStream performs a streaming chat completion request
func (c *OpenAIClient) ChatCompletionStream(ctx context.Context, req ChatCompletionRequest, callback StreamCallback) error {
	if !c.IsEnabled() {
		return ErrModelDisabled
	}

	req.Stream = true

	reqBody, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpointURL(c.creds.DeploymentName, "chat/completions"), bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(httpReq)
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	// Process streaming response
	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("failed to read stream: %w", err)
		}
		eof := err == io.EOF

		line = bytes.TrimSpace(line)
		if bytes.HasPrefix(line, []byte("data:")) {
			data := bytes.TrimSpace(bytes.TrimPrefix(line, []byte("data:")))

			if bytes.Equal(data, []byte("[DONE]")) {
				break
			}

			chunk, err := c.chunkParser.ParseChunk(data)
			if err != nil {
				c.logger.Warn("Failed to parse stream chunk", zap.Error(err))
			} else if err := callback(chunk); err != nil {
				return fmt.Errorf("callback error: %w", err)
			}
		}

		if eof {
			break
		}
	}

	return nil
}

// Generate sends the prompt as a single user message
func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.ChatCompletion(ctx, c.newChatRequest(prompt))
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in model response")
	}

	c.logger.Debug("Model completion",
		zap.String("model", resp.Model),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)

	return resp.Choices[0].Message.Content, nil
}

// GenerateStream streams the completion and returns the accumulated content
func (c *OpenAIClient) GenerateStream(ctx context.Context, prompt string, callback func(thinking, content string) error) (string, error) {
	var fullContent strings.Builder
	chunkCount := 0

	err := c.ChatCompletionStream(ctx, c.newChatRequest(prompt), func(chunk *StreamChunk) error {
		chunkCount++

		if chunk.ThinkingContent != "" {
			if err := callback(chunk.ThinkingContent, ""); err != nil {
				return err
			}
		}

		if chunk.Content != "" {
			fullContent.WriteString(chunk.Content)
			if err := callback("", chunk.Content); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return "", fmt.Errorf("streaming error: %w", err)
	}

	c.logger.Debug("Streaming completed",
		zap.Int("chunks", chunkCount),
		zap.Int("content_length", fullContent.Len()),
	)

	return fullContent.String(), nil
}

// Embed creates an embedding for one text
func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if !c.EmbeddingsEnabled() {
		return nil, ErrModelDisabled
	}

	req := EmbeddingRequest{
		Input:          []string{text},
		EncodingFormat: "float",
	}
	if c.config.Provider != ProviderAzure {
		req.Model = c.config.EmbeddingModel
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpointURL(c.config.EmbeddingModel, "embeddings"), bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var result EmbeddingResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(result.Data) == 0 {
		return nil, fmt.Errorf("no embedding in response")
	}

	return result.Data[0].Embedding, nil
}
