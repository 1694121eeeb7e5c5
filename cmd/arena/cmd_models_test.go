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
package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teradata-labs/arena/pkg/llm/factory"
	"github.com/teradata-labs/arena/pkg/observability"
)

func TestPrintModels(t *testing.T) {
	var buf bytes.Buffer
	printModels(&buf, []factory.ModelInfo{
		{
			ID:                 "claude-sonnet-4-5-20250929",
			Name:               "Claude Sonnet 4.5",
			Provider:           "anthropic",
			ContextWindow:      200000,
			CostPer1MInputUSD:  3.0,
			CostPer1MOutputUSD: 15.0,
			Available:          false,
		},
		{ID: "qwen2.5", Name: "Qwen 2.5 (Ollama)", Provider: "ollama", ContextWindow: 128000, Available: true},
		{ID: "llama3.1", Name: "Llama 3.1 (Ollama)", Provider: "ollama", ContextWindow: 128000, Available: true},
	})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "PROVIDER")

	// Sorted by provider, then model ID.
	assert.Contains(t, lines[1], "claude-sonnet-4-5-20250929")
	assert.Contains(t, lines[2], "llama3.1")
	assert.Contains(t, lines[3], "qwen2.5")

	assert.Contains(t, lines[1], "$3.00/$15.00")
	assert.Contains(t, lines[1], "200K")
	assert.Contains(t, lines[2], "free")
	assert.Contains(t, lines[2], "✓")
}

func TestModelsCommandWiring(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	providerFactory := newProviderFactory(testRunConfig(t), observability.NewNoOpTracer())
	models := factory.NewModelRegistry().GetAvailableModels(providerFactory)
	require.NotEmpty(t, models)

	// Ollama defaults make it always available; anthropic needs a key.
	byProvider := map[string]bool{}
	for _, m := range models {
		byProvider[m.Provider] = m.Available
	}
	assert.True(t, byProvider["ollama"])
	assert.False(t, byProvider["anthropic"])
}

func TestFormatContextWindow(t *testing.T) {
	assert.Equal(t, "200K", formatContextWindow(200000))
	assert.Equal(t, "128K", formatContextWindow(128000))
	assert.Equal(t, "999", formatContextWindow(999))
	assert.Equal(t, "1500", formatContextWindow(1500))
}

func TestFormatModelCost(t *testing.T) {
	assert.Equal(t, "free", formatModelCost(factory.ModelInfo{}))
	assert.Equal(t, "$0.80/$4.00", formatModelCost(factory.ModelInfo{
		CostPer1MInputUSD:  0.8,
		CostPer1MOutputUSD: 4.0,
	}))
}
