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
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/teradata-labs/arena/pkg/llm"
	llmtypes "github.com/teradata-labs/arena/pkg/llm/types"
)

const (
	// DefaultAnthropicModel is the default Claude model
	DefaultAnthropicModel = "claude-sonnet-4-5-20250929"
	// DefaultAnthropicEndpoint is the default Anthropic API endpoint
	DefaultAnthropicEndpoint = "https://api.anthropic.com/v1/messages"
	// DefaultMaxTokens is the default maximum tokens per request
	DefaultMaxTokens = 4096
	// DefaultTemperature is the default LLM temperature
	DefaultTemperature = 1.0
	// DefaultTimeout is the default HTTP timeout
	DefaultTimeout = 60 * time.Second
)

// Global singleton rate limiter shared across all Anthropic clients
var (
	globalRateLimiter     *llm.RateLimiter
	globalRateLimiterOnce sync.Once
)

// DefaultAnthropicRateLimiterConfig returns safe defaults for Anthropic's API.
//
// Anthropic rate limits by tier (as of 2026):
//   - Free / Tier 1: 50 RPM, 30K–100K ITPM
//   - Tier 2:        1000 RPM, 2M ITPM
//   - Tier 3+:       5000+ RPM
//
// These defaults target Tier 1 (the most common). Users on higher tiers should
// increase requests_per_second and tokens_per_minute in arena.yaml.
func DefaultAnthropicRateLimiterConfig() llm.RateLimiterConfig {
	return llm.RateLimiterConfig{
		Enabled:           true,
		RequestsPerSecond: 0.7,                    // ~42 RPM — safely under Tier 1 50 RPM limit
		TokensPerMinute:   80000,                  // 80% of Tier 1 100K ITPM (30K on free)
		BurstCapacity:     3,                      // Conservative burst for debater/judge/analyzer traffic
		MinDelay:          800 * time.Millisecond, // ~1.25 RPS ceiling; prevents burst overshoots
		MaxRetries:        5,
		RetryBackoff:      2 * time.Second, // Longer initial backoff for Anthropic 429s
		QueueTimeout:      5 * time.Minute,
	}
}

// Client implements the LLMProvider interface for Anthropic's Claude API.
type Client struct {
	apiKey      string
	model       string
	endpoint    string
	httpClient  *http.Client
	maxTokens   int
	temperature float64
	rateLimiter *llm.RateLimiter
}

// Config holds configuration for the Anthropic client.
type Config struct {
	APIKey            string
	Model             string // Default: claude-sonnet-4-5-20250929
	Endpoint          string // Default: https://api.anthropic.com/v1/messages
	Timeout           time.Duration
	MaxTokens         int     // Default: 4096
	Temperature       float64 // Default: 1.0
	RateLimiterConfig llm.RateLimiterConfig
}

// NewClient creates a new Anthropic client.
func NewClient(config Config) *Client {
	if config.Model == "" {
		// Check environment variable first, then use default
		if envModel := os.Getenv("ANTHROPIC_DEFAULT_MODEL"); envModel != "" {
			config.Model = envModel
		} else {
			config.Model = DefaultAnthropicModel
		}
	}
	if config.Endpoint == "" {
		// Check environment variable first, then use default
		if envEndpoint := os.Getenv("ANTHROPIC_API_ENDPOINT"); envEndpoint != "" {
			config.Endpoint = envEndpoint
		} else {
			config.Endpoint = DefaultAnthropicEndpoint
		}
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = DefaultMaxTokens
	}
	if config.Temperature == 0 {
		config.Temperature = DefaultTemperature
	}

	// Initialize rate limiter if enabled
	var rateLimiter *llm.RateLimiter
	if config.RateLimiterConfig.Enabled {
		rateLimiter = getOrCreateGlobalRateLimiter(config.RateLimiterConfig)
	}

	return &Client{
		apiKey:      config.APIKey,
		model:       config.Model,
		endpoint:    config.Endpoint,
		maxTokens:   config.MaxTokens,
		temperature: config.Temperature,
		rateLimiter: rateLimiter,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// getOrCreateGlobalRateLimiter returns the global rate limiter, creating it if necessary.
// Caller-supplied non-zero fields override DefaultAnthropicRateLimiterConfig values.
func getOrCreateGlobalRateLimiter(config llm.RateLimiterConfig) *llm.RateLimiter {
	globalRateLimiterOnce.Do(func() {
		// Start from Anthropic-specific defaults, then apply caller overrides.
		// This ensures we don't blindly fall through to DefaultRateLimiterConfig()
		// (which is tuned for Bedrock and allows 2 RPS — exceeding Anthropic Tier 1).
		merged := DefaultAnthropicRateLimiterConfig()
		merged.Enabled = config.Enabled
		if config.Logger != nil {
			merged.Logger = config.Logger
		}
		if config.RequestsPerSecond > 0 {
			merged.RequestsPerSecond = config.RequestsPerSecond
		}
		if config.TokensPerMinute > 0 {
			merged.TokensPerMinute = config.TokensPerMinute
		}
		if config.BurstCapacity > 0 {
			merged.BurstCapacity = config.BurstCapacity
		}
		if config.MinDelay > 0 {
			merged.MinDelay = config.MinDelay
		}
		if config.MaxRetries > 0 {
			merged.MaxRetries = config.MaxRetries
		}
		if config.RetryBackoff > 0 {
			merged.RetryBackoff = config.RetryBackoff
		}
		if config.QueueTimeout > 0 {
			merged.QueueTimeout = config.QueueTimeout
		}
		globalRateLimiter = llm.NewRateLimiter(merged)
	})
	return globalRateLimiter
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "anthropic"
}

// Model returns the model identifier.
func (c *Client) Model() string {
	return c.model
}

// Chat sends a conversation to Claude and returns the response.
func (c *Client) Chat(ctx context.Context, messages []llmtypes.Message) (*llmtypes.LLMResponse, error) {
	// Extract system messages and convert to Anthropic format
	systemPrompt, apiMessages := c.convertMessages(messages)

	// Build request
	req := &MessagesRequest{
		Model:       c.model,
		Messages:    apiMessages,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	// Add system prompt blocks if present (Anthropic Messages API requires separate system field)
	if len(systemPrompt) > 0 {
		req.System = systemPrompt
	}

	// Call API
	resp, err := c.callAPI(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("API call failed: %w", err)
	}

	// Convert response
	llmResp := c.convertResponse(resp)

	// Record token usage for rate limiter metrics
	if c.rateLimiter != nil {
		c.rateLimiter.RecordTokenUsage(int64(llmResp.Usage.TotalTokens))
	}

	return llmResp, nil
}

// convertMessages converts debate messages to Anthropic format.
// Returns the system prompt blocks (with cache_control) and the API messages.
// System messages are extracted and combined, as Anthropic Messages API requires
// them to be sent as a separate "system" field, not in the messages array.
func (c *Client) convertMessages(messages []llmtypes.Message) ([]TextBlockParam, []Message) {
	var systemPrompts []string
	var apiMessages []Message

	for _, msg := range messages {
		switch msg.Role {
		case llmtypes.RoleSystem:
			// Extract system messages - they'll be combined and sent separately
			if msg.Content != "" {
				systemPrompts = append(systemPrompts, msg.Content)
			}

		case llmtypes.RoleUser, llmtypes.RoleAssistant:
			apiMessages = append(apiMessages, Message{
				Role: msg.Role,
				Content: []ContentBlock{
					{Type: "text", Text: msg.Content},
				},
			})
		}
	}

	// Combine all system prompts and wrap in a TextBlockParam with cache_control.
	// Placing cache_control on the system block caches it for ~5 minutes.
	// For Anthropic, cached tokens don't count against the ITPM rate limit.
	if len(systemPrompts) == 0 {
		return nil, apiMessages
	}
	systemText := strings.Join(systemPrompts, "\n\n")
	systemBlocks := []TextBlockParam{
		{
			Type:         "text",
			Text:         systemText,
			CacheControl: &CacheControl{Type: "ephemeral"},
		},
	}
	return systemBlocks, apiMessages
}

// convertResponse converts Anthropic response to debate format.
func (c *Client) convertResponse(resp *MessagesResponse) *llmtypes.LLMResponse {
	llmResp := &llmtypes.LLMResponse{
		StopReason: resp.StopReason,
		Usage: llmtypes.Usage{
			InputTokens:              resp.Usage.InputTokens,
			OutputTokens:             resp.Usage.OutputTokens,
			TotalTokens:              resp.Usage.InputTokens + resp.Usage.OutputTokens,
			CostUSD:                  c.calculateCost(resp.Usage.InputTokens, resp.Usage.OutputTokens, resp.Usage.CacheReadInputTokens, resp.Usage.CacheCreationInputTokens),
			CacheReadInputTokens:     resp.Usage.CacheReadInputTokens,
			CacheCreationInputTokens: resp.Usage.CacheCreationInputTokens,
		},
		Metadata: map[string]interface{}{
			"model":       resp.Model,
			"stop_reason": resp.StopReason,
		},
	}

	// Extract text content
	for _, block := range resp.Content {
		if block.Type == "text" {
			llmResp.Content += block.Text
		}
	}

	return llmResp
}

// calculateCost estimates the cost in USD based on token usage.
// Cache pricing: cache_creation at 1.25x input, cache_read at 0.10x input.
func (c *Client) calculateCost(inputTokens, outputTokens, cacheReadTokens, cacheCreationTokens int) float64 {
	// Claude Sonnet pricing:
	// Input: $3 per million tokens
	// Output: $15 per million tokens
	// Cache write (creation): $3.75 per million tokens (1.25x input)
	// Cache read: $0.30 per million tokens (0.10x input)
	inputCost := float64(inputTokens) * 3.0 / 1_000_000
	outputCost := float64(outputTokens) * 15.0 / 1_000_000
	cacheWriteCost := float64(cacheCreationTokens) * 3.75 / 1_000_000
	cacheReadCost := float64(cacheReadTokens) * 0.30 / 1_000_000
	return inputCost + outputCost + cacheWriteCost + cacheReadCost
}

// callAPI makes the HTTP request to Anthropic's API.
func (c *Client) callAPI(ctx context.Context, req *MessagesRequest) (*MessagesResponse, error) {
	// Marshal request
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	// Send request with rate limiting if enabled.
	// The lambda creates a fresh HTTP request on each attempt so the request body
	// can be re-read on a 429 retry. A 429 response is converted to an error so
	// the rate limiter's exponential-backoff retry logic fires automatically.
	buildAPIReq := func(ctx context.Context) (*http.Request, error) {
		r, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		r.Header.Set("Content-Type", "application/json")
		r.Header.Set("x-api-key", c.apiKey)
		r.Header.Set("anthropic-version", "2023-06-01")
		// Enable prompt caching beta — cached tokens don't count against Anthropic's ITPM rate limit
		r.Header.Set("anthropic-beta", "prompt-caching-2024-07-31")
		return r, nil
	}
	var httpResp *http.Response
	if c.rateLimiter != nil {
		result, err := c.rateLimiter.Do(ctx, func(ctx context.Context) (interface{}, error) {
			req, err := buildAPIReq(ctx)
			if err != nil {
				return nil, err
			}
			resp, err := c.httpClient.Do(req)
			if err != nil {
				return nil, err
			}
			// Convert 429 to a retryable error so the rate limiter backs off and retries.
			if resp.StatusCode == http.StatusTooManyRequests {
				respBody, _ := io.ReadAll(resp.Body)
				_ = resp.Body.Close()
				return nil, fmt.Errorf("API error (status 429): %s", string(respBody))
			}
			return resp, nil
		})
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}
		httpResp = result.(*http.Response)
	} else {
		req, err := buildAPIReq(ctx)
		if err != nil {
			return nil, err
		}
		httpResp, err = c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}
	}
	defer func() { _ = httpResp.Body.Close() }()

	// Read response
	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// Check status code
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", httpResp.StatusCode, string(respBody))
	}

	// Parse response
	var resp MessagesResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &resp, nil
}

// Ensure Client implements LLMProvider interface.
var _ llmtypes.LLMProvider = (*Client)(nil)
