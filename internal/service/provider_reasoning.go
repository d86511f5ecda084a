package service

import (
	"encoding/json"
	"strings"
)

// ReasoningStreamChunkParser parses chunks from providers that stream
// reasoning_content next to the answer (DeepSeek-style models)
type ReasoningStreamChunkParser struct{}

// ParseChunk converts a reasoning chunk to a generic StreamChunk
func (p *ReasoningStreamChunkParser) ParseChunk(data []byte) (*StreamChunk, error) {
	var rawChunk struct {
		Choices []struct {
			Delta struct {
				Role             string  `json:"role,omitempty"`
				Content          string  `json:"content,omitempty"`
				ReasoningContent *string `json:"reasoning_content,omitempty"`
			} `json:"delta"`
			FinishReason *string `json:"finish_reason,omitempty"`
		} `json:"choices"`
	}

	if err := json.Unmarshal(data, &rawChunk); err != nil {
		return nil, err
	}

	chunk := &StreamChunk{}
	if len(rawChunk.Choices) > 0 {
		choice := rawChunk.Choices[0]
		chunk.Role = choice.Delta.Role
		chunk.Content = choice.Delta.Content
		if choice.Delta.ReasoningContent != nil {
			chunk.ThinkingContent = *choice.Delta.ReasoningContent
		}
		chunk.Done = choice.FinishReason != nil && *choice.FinishReason != ""
	}

	return chunk, nil
}

// IsReasoningProvider checks whether the endpoint streams reasoning content
func IsReasoningProvider(endpoint string) bool {
	return strings.Contains(endpoint, "integrate.api.nvidia.com") || strings.Contains(endpoint, "api.deepseek.com")
}
