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
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	llmtypes "github.com/teradata-labs/arena/pkg/llm/types"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		expected *Client
	}{
		{
			name:   "default config",
			config: Config{},
			expected: &Client{
				endpoint:    "http://localhost:11434",
				model:       "llama3.1",
				maxTokens:   4096,
				temperature: 0.8,
			},
		},
		{
			name: "custom config",
			config: Config{
				Endpoint:    "http://custom:8080",
				Model:       "mistral",
				MaxTokens:   2048,
				Temperature: 0.5,
				Timeout:     30 * time.Second,
			},
			expected: &Client{
				endpoint:    "http://custom:8080",
				model:       "mistral",
				maxTokens:   2048,
				temperature: 0.5,
			},
		},
		{
			name: "large model gets bigger default budget",
			config: Config{
				Model: "llama3.1:70b",
			},
			expected: &Client{
				endpoint:    "http://localhost:11434",
				model:       "llama3.1:70b",
				maxTokens:   8192,
				temperature: 0.8,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(tt.config)
			assert.Equal(t, tt.expected.endpoint, client.endpoint)
			assert.Equal(t, tt.expected.model, client.model)
			assert.Equal(t, tt.expected.maxTokens, client.maxTokens)
			assert.Equal(t, tt.expected.temperature, client.temperature)
			assert.NotNil(t, client.httpClient)
		})
	}
}

func TestClient_NameAndModel(t *testing.T) {
	client := NewClient(Config{Model: "qwen2.5"})
	assert.Equal(t, "ollama", client.Name())
	assert.Equal(t, "qwen2.5", client.Model())
}

func TestClient_Chat_SimpleText(t *testing.T) {
	// Create mock server
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		// Verify request
		var req chatRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		require.NoError(t, err)

		assert.Equal(t, "llama3.1", req.Model)
		assert.False(t, req.Stream)
		assert.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)
		assert.Equal(t, "Hello!", req.Messages[0].Content)

		// Return mock response
		resp := chatResponse{
			Model:     "llama3.1",
			CreatedAt: "2026-01-01T00:00:00Z",
			Message: ollamaMessage{
				Role:    "assistant",
				Content: "Hello! How can I help you today?",
			},
			Done:            true,
			TotalDuration:   1000000000,
			LoadDuration:    500000000,
			PromptEvalCount: 10,
			EvalCount:       15,
			EvalDuration:    200000000,
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	// Create client with mock server
	client := NewClient(Config{
		Endpoint: server.URL,
		Model:    "llama3.1",
	})

	// Test chat
	ctx := context.Background()
	messages := []llmtypes.Message{
		{Role: "user", Content: "Hello!"},
	}

	resp, err := client.Chat(ctx, messages)
	require.NoError(t, err)
	assert.Equal(t, "Hello! How can I help you today?", resp.Content)
	assert.Equal(t, "stop", resp.StopReason)
	assert.Equal(t, 10, resp.Usage.InputTokens)
	assert.Equal(t, 15, resp.Usage.OutputTokens)
	assert.Equal(t, 25, resp.Usage.TotalTokens)
	assert.Equal(t, 0.0, resp.Usage.CostUSD) // Ollama is free
}

func TestClient_Chat_SystemMessagePassthrough(t *testing.T) {
	// Ollama accepts system messages inline, unlike Anthropic/Bedrock
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		require.NoError(t, err)

		require.Len(t, req.Messages, 3)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "You are a debater arguing in favor.", req.Messages[0].Content)
		assert.Equal(t, "user", req.Messages[1].Role)
		assert.Equal(t, "assistant", req.Messages[2].Role)

		resp := chatResponse{
			Model:   "llama3.1",
			Message: ollamaMessage{Role: "assistant", Content: "My opening argument."},
			Done:    true,
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(Config{Endpoint: server.URL, Model: "llama3.1"})

	messages := []llmtypes.Message{
		{Role: "system", Content: "You are a debater arguing in favor."},
		{Role: "user", Content: "Present your opening argument."},
		{Role: "assistant", Content: "I believe that..."},
	}

	resp, err := client.Chat(context.Background(), messages)
	require.NoError(t, err)
	assert.Equal(t, "My opening argument.", resp.Content)
}

func TestClient_Chat_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "model not found"}`))
	}))
	defer server.Close()

	client := NewClient(Config{Endpoint: server.URL, Model: "missing-model"})

	_, err := client.Chat(context.Background(), []llmtypes.Message{
		{Role: "user", Content: "Hello"},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.Contains(t, err.Error(), "model not found")
}

func TestClient_Chat_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	client := NewClient(Config{Endpoint: server.URL, Model: "llama3.1"})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Chat(ctx, []llmtypes.Message{
		{Role: "user", Content: "Hello"},
	})

	require.Error(t, err)
}

func TestGetDefaultMaxTokens(t *testing.T) {
	tests := []struct {
		model    string
		expected int
	}{
		{"llama3.1", 4096},
		{"llama3.1:8b", 4096},
		{"qwen2.5:14b", 6144},
		{"qwen2.5:32b", 6144},
		{"llama3.1:70b", 8192},
		{"qwen2.5:72b", 8192},
		{"unknown-model", 4096},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			assert.Equal(t, tt.expected, getDefaultMaxTokens(tt.model))
		})
	}
}
