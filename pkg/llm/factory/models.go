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
package factory

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ModelInfo describes a model available through one of the supported providers.
type ModelInfo struct {
	ID                 string
	Name               string
	Provider           string
	Capabilities       []string
	ContextWindow      int
	CostPer1MInputUSD  float64
	CostPer1MOutputUSD float64
	Available          bool
}

// ModelRegistry holds information about all supported models across providers.
type ModelRegistry struct {
	models map[string][]ModelInfo
}

// NewModelRegistry creates a new model registry with all supported models.
func NewModelRegistry() *ModelRegistry {
	return &ModelRegistry{
		models: map[string][]ModelInfo{
			"anthropic": {
				{
					ID:                 "claude-sonnet-4-5-20250929",
					Name:               "Claude Sonnet 4.5",
					Provider:           "anthropic",
					Capabilities:       []string{"text", "vision", "tool-use"},
					ContextWindow:      200000,
					CostPer1MInputUSD:  3.0,
					CostPer1MOutputUSD: 15.0,
				},
				{
					ID:                 "claude-haiku-4-5-20251001",
					Name:               "Claude Haiku 4.5",
					Provider:           "anthropic",
					Capabilities:       []string{"text", "vision", "tool-use"},
					ContextWindow:      200000,
					CostPer1MInputUSD:  0.8,
					CostPer1MOutputUSD: 4.0,
				},
				{
					ID:                 "claude-opus-4-1-20250805",
					Name:               "Claude Opus 4.1",
					Provider:           "anthropic",
					Capabilities:       []string{"text", "vision", "tool-use"},
					ContextWindow:      200000,
					CostPer1MInputUSD:  15.0,
					CostPer1MOutputUSD: 75.0,
				},
			},
			"bedrock": {
				{
					ID:                 "us.anthropic.claude-sonnet-4-5-20250929-v1:0",
					Name:               "Claude Sonnet 4.5 (Bedrock)",
					Provider:           "bedrock",
					Capabilities:       []string{"text", "vision", "tool-use"},
					ContextWindow:      200000,
					CostPer1MInputUSD:  3.0,
					CostPer1MOutputUSD: 15.0,
				},
				{
					ID:                 "us.anthropic.claude-opus-4-5-20251101-v1:0",
					Name:               "Claude Opus 4.5 (Bedrock)",
					Provider:           "bedrock",
					Capabilities:       []string{"text", "vision", "tool-use"},
					ContextWindow:      200000,
					CostPer1MInputUSD:  15.0,
					CostPer1MOutputUSD: 75.0,
				},
				{
					ID:                 "us.anthropic.claude-haiku-4-5-20251001-v1:0",
					Name:               "Claude Haiku 4.5 (Bedrock)",
					Provider:           "bedrock",
					Capabilities:       []string{"text", "vision", "tool-use"},
					ContextWindow:      200000,
					CostPer1MInputUSD:  0.8,
					CostPer1MOutputUSD: 4.0,
				},
			},
			"ollama": {
				{
					ID:                 "llama3.1",
					Name:               "Llama 3.1 (Ollama)",
					Provider:           "ollama",
					Capabilities:       []string{"text", "tool-use"},
					ContextWindow:      128000,
					CostPer1MInputUSD:  0.0,
					CostPer1MOutputUSD: 0.0,
				},
				{
					ID:                 "llama3.2",
					Name:               "Llama 3.2 (Ollama)",
					Provider:           "ollama",
					Capabilities:       []string{"text", "tool-use"},
					ContextWindow:      128000,
					CostPer1MInputUSD:  0.0,
					CostPer1MOutputUSD: 0.0,
				},
				{
					ID:                 "qwen2.5",
					Name:               "Qwen 2.5 (Ollama)",
					Provider:           "ollama",
					Capabilities:       []string{"text", "tool-use"},
					ContextWindow:      128000,
					CostPer1MInputUSD:  0.0,
					CostPer1MOutputUSD: 0.0,
				},
			},
		},
	}
}

// GetModelsForProvider returns all models for a specific provider.
func (r *ModelRegistry) GetModelsForProvider(provider string) []ModelInfo {
	models := r.models[provider]
	if models == nil {
		return nil
	}

	// Return copies to prevent modification
	result := make([]ModelInfo, len(models))
	copy(result, models)
	return result
}

// GetAllModels returns all models from all providers.
func (r *ModelRegistry) GetAllModels() []ModelInfo {
	var all []ModelInfo
	for _, models := range r.models {
		all = append(all, models...)
	}
	return all
}

// GetAvailableModels returns all models, marking those whose provider is
// actually configured (credentials present) as available.
func (r *ModelRegistry) GetAvailableModels(factory *ProviderFactory) []ModelInfo {
	var result []ModelInfo

	for provider, models := range r.models {
		available := factory.IsProviderAvailable(provider)
		for _, m := range models {
			m.Available = available
			result = append(result, m)
		}
	}

	return result
}

// ollamaTagsResponse mirrors the /api/tags response from the Ollama daemon.
type ollamaTagsResponse struct {
	Models []ollamaModelEntry `json:"models"`
}

type ollamaModelEntry struct {
	Name  string `json:"name"`
	Model string `json:"model"`
	Size  int64  `json:"size"`
}

// DiscoverOllamaModels replaces the static Ollama entries with the models
// actually installed on the local daemon. Static defaults are kept when the
// daemon is unreachable or reports no models.
func (r *ModelRegistry) DiscoverOllamaModels(endpoint string) error {
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(strings.TrimSuffix(endpoint, "/") + "/api/tags")
	if err != nil {
		return fmt.Errorf("failed to reach ollama at %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	var tags ollamaTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return fmt.Errorf("failed to decode ollama tags: %w", err)
	}

	// Keep static defaults when the daemon reports nothing
	if len(tags.Models) == 0 {
		return nil
	}

	discovered := make([]ModelInfo, 0, len(tags.Models))
	for _, m := range tags.Models {
		discovered = append(discovered, ModelInfo{
			ID:            m.Name,
			Name:          formatOllamaDisplayName(m.Name),
			Provider:      "ollama",
			Capabilities:  []string{"text"},
			ContextWindow: 128000,
			Available:     true,
		})
	}
	r.models["ollama"] = discovered

	return nil
}

// formatOllamaDisplayName renders an Ollama model tag as a human-readable name.
// "qwen3-coder:30b" becomes "Qwen3 coder 30B (Ollama)".
func formatOllamaDisplayName(id string) string {
	name := id
	tag := ""
	if idx := strings.Index(id, ":"); idx >= 0 {
		name = id[:idx]
		tag = id[idx+1:]
	}

	name = strings.ReplaceAll(name, "-", " ")
	if name != "" {
		name = strings.ToUpper(name[:1]) + name[1:]
	}

	if tag != "" && tag != "latest" {
		name += " " + strings.ToUpper(tag)
	}

	return name + " (Ollama)"
}
