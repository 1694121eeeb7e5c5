// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/teradata-labs/arena/pkg/llm"
	llmtypes "github.com/teradata-labs/arena/pkg/llm/types"
)

// Global singleton rate limiter shared across all Ollama clients
var (
	globalRateLimiter     *llm.RateLimiter
	globalRateLimiterOnce sync.Once
)

// Client implements the LLMProvider interface for Ollama.
type Client struct {
	endpoint    string
	model       string
	httpClient  *http.Client
	maxTokens   int
	temperature float64
	rateLimiter *llm.RateLimiter
}

// Config holds configuration for the Ollama client.
type Config struct {
	Endpoint          string        // Default: http://localhost:11434
	Model             string        // Required: e.g., llama3.1, mistral, qwen2.5
	MaxTokens         int           // Default: model-aware (4096 for 7B/8B, 6144 for 13B-32B, 8192 for 70B+)
	Temperature       float64       // Default: 0.8
	Timeout           time.Duration // Default: 120s
	RateLimiterConfig llm.RateLimiterConfig
}

// getDefaultMaxTokens returns intelligent max_tokens based on model name.
// Smaller models (7B-8B) benefit from shorter outputs, while larger models can handle more.
func getDefaultMaxTokens(model string) int {
	modelLower := strings.ToLower(model)

	// Large models (70B+ parameters) - full capacity
	if strings.Contains(modelLower, "70b") || strings.Contains(modelLower, "72b") ||
		strings.Contains(modelLower, "405b") ||
		strings.Contains(modelLower, "claude") || strings.Contains(modelLower, "gpt-4") {
		return 8192 // 8K for large models
	}

	// Medium models (13B-32B parameters) - balanced outputs
	if strings.Contains(modelLower, "13b") || strings.Contains(modelLower, "14b") ||
		strings.Contains(modelLower, "20b") || strings.Contains(modelLower, "32b") {
		return 6144 // 6K for medium models
	}

	// Small models (7B-8B parameters) or unknown - conservative default
	// This includes: llama3.1:8b, qwen2.5:7b, gemma, phi, and base names without size
	return 4096 // 4K for small models (safe default)
}

// NewClient creates a new Ollama client.
func NewClient(cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "llama3.1"
	}
	if cfg.MaxTokens == 0 {
		// Use model-aware default instead of fixed 4096
		cfg.MaxTokens = getDefaultMaxTokens(cfg.Model)
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.8
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}

	// Initialize rate limiter if enabled
	var rateLimiter *llm.RateLimiter
	if cfg.RateLimiterConfig.Enabled {
		rateLimiter = getOrCreateGlobalRateLimiter(cfg.RateLimiterConfig)
	}

	return &Client{
		endpoint:    cfg.Endpoint,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		rateLimiter: rateLimiter,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// getOrCreateGlobalRateLimiter returns the global rate limiter, creating it if necessary.
func getOrCreateGlobalRateLimiter(config llm.RateLimiterConfig) *llm.RateLimiter {
	globalRateLimiterOnce.Do(func() {
		globalRateLimiter = llm.NewRateLimiter(config)
	})
	return globalRateLimiter
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "ollama"
}

// Model returns the model identifier.
func (c *Client) Model() string {
	return c.model
}

// Chat sends a conversation to Ollama and returns the response.
func (c *Client) Chat(ctx context.Context, messages []llmtypes.Message) (*llmtypes.LLMResponse, error) {
	// Convert messages to Ollama format
	apiMessages := c.convertMessages(messages)

	// Build request
	req := chatRequest{
		Model:    c.model,
		Messages: apiMessages,
		Stream:   false,
		Options: map[string]interface{}{
			"temperature": c.temperature,
			"num_predict": c.maxTokens,
		},
	}

	// Call API
	resp, err := c.callAPI(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("ollama API call failed: %w", err)
	}

	// Convert response
	return c.convertResponse(resp), nil
}

// convertMessages converts debate messages to Ollama format.
// Ollama accepts system messages inline, so roles pass through unchanged.
func (c *Client) convertMessages(messages []llmtypes.Message) []ollamaMessage {
	var apiMessages []ollamaMessage

	for _, msg := range messages {
		switch msg.Role {
		case llmtypes.RoleSystem, llmtypes.RoleUser, llmtypes.RoleAssistant:
			apiMessages = append(apiMessages, ollamaMessage{
				Role:    msg.Role,
				Content: msg.Content,
			})
		}
	}

	return apiMessages
}

// convertResponse converts Ollama response to debate format.
func (c *Client) convertResponse(resp *chatResponse) *llmtypes.LLMResponse {
	return &llmtypes.LLMResponse{
		Content:    resp.Message.Content,
		StopReason: "stop",
		Usage: llmtypes.Usage{
			InputTokens:  resp.PromptEvalCount,
			OutputTokens: resp.EvalCount,
			TotalTokens:  resp.PromptEvalCount + resp.EvalCount,
			CostUSD:      0, // Ollama is free (local)
		},
		Metadata: map[string]interface{}{
			"model":         resp.Model,
			"eval_duration": resp.EvalDuration,
		},
	}
}

// callAPI makes the HTTP request to Ollama.
func (c *Client) callAPI(ctx context.Context, req chatRequest) (*chatResponse, error) {
	// Marshal request
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	// Create HTTP request
	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.endpoint+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	// Send request with rate limiting if enabled
	var httpResp *http.Response
	if c.rateLimiter != nil {
		result, err := c.rateLimiter.Do(ctx, func(ctx context.Context) (interface{}, error) {
			return c.httpClient.Do(httpReq)
		})
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}
		httpResp = result.(*http.Response)
	} else {
		var err error
		httpResp, err = c.httpClient.Do(httpReq)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}
	}
	defer httpResp.Body.Close()

	// Read response
	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// Check status
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", httpResp.StatusCode, string(respBody))
	}

	// Parse response
	var resp chatResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &resp, nil
}

// Ollama API types

type chatRequest struct {
	Model    string                 `json:"model"`
	Messages []ollamaMessage        `json:"messages"`
	Stream   bool                   `json:"stream"`
	Options  map[string]interface{} `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Model           string        `json:"model"`
	CreatedAt       string        `json:"created_at"`
	Message         ollamaMessage `json:"message"`
	Done            bool          `json:"done"`
	TotalDuration   int64         `json:"total_duration"`
	LoadDuration    int64         `json:"load_duration"`
	PromptEvalCount int           `json:"prompt_eval_count"`
	EvalCount       int           `json:"eval_count"`
	EvalDuration    int64         `json:"eval_duration"`
}

// Ensure Client implements LLMProvider interface.
var _ llmtypes.LLMProvider = (*Client)(nil)
