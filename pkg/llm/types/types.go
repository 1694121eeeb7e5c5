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
// Package types defines the provider-neutral LLM message and response types.
package types

import (
	"context"
	"time"
)

// Message roles understood by all providers.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single message in the conversation.
type Message struct {
	// Role is the message sender (system, user, assistant)
	Role string

	// Content is the message text
	Content string

	// Timestamp when the message was created
	Timestamp time.Time
}

// Usage tracks LLM token usage and costs.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
	CostUSD      float64

	// Prompt caching metrics (Anthropic and Bedrock only)
	CacheReadInputTokens     int
	CacheCreationInputTokens int
}

// LLMResponse represents a response from the LLM.
type LLMResponse struct {
	// Content is the text response
	Content string

	// StopReason indicates why the LLM stopped
	StopReason string

	// Usage tracks token usage
	Usage Usage

	// Metadata contains provider-specific metadata
	Metadata map[string]interface{}
}

// LLMProvider defines the interface for LLM providers.
// This allows pluggable LLM backends (Anthropic, Bedrock, Ollama, etc.).
//
// System messages may appear anywhere in the messages slice; providers whose
// APIs carry the system prompt out of band (Anthropic, Bedrock) extract and
// combine them before dispatch.
type LLMProvider interface {
	// Chat sends a conversation to the LLM and returns the response
	Chat(ctx context.Context, messages []Message) (*LLMResponse, error)

	// Name returns the provider name
	Name() string

	// Model returns the model identifier
	Model() string
}
