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
	"fmt"
	"os"
	"time"

	"github.com/teradata-labs/arena/pkg/llm"
	"github.com/teradata-labs/arena/pkg/llm/anthropic"
	"github.com/teradata-labs/arena/pkg/llm/bedrock"
	"github.com/teradata-labs/arena/pkg/llm/ollama"
	llmtypes "github.com/teradata-labs/arena/pkg/llm/types"
	"github.com/teradata-labs/arena/pkg/observability"
)

// ProviderFactory creates LLM providers dynamically based on configuration.
// A debate needs up to four providers (two debaters, a judge and a summarizer),
// typically sharing one transport configuration but with per-role models and
// temperatures.
type ProviderFactory struct {
	// Current configuration
	config FactoryConfig
}

// FactoryConfig holds configuration for creating LLM providers.
type FactoryConfig struct {
	// Default provider to use
	DefaultProvider string
	DefaultModel    string

	// Anthropic configuration
	AnthropicAPIKey string
	AnthropicModel  string

	// Bedrock configuration
	BedrockRegion          string
	BedrockAccessKeyID     string
	BedrockSecretAccessKey string
	BedrockSessionToken    string
	BedrockProfile         string
	BedrockModelID         string

	// Ollama configuration
	OllamaEndpoint string
	OllamaModel    string

	// Common settings
	MaxTokens int
	Timeout   int // seconds

	// Rate limiting applied to created providers. All providers of the
	// same type share a global rate limiter regardless of role.
	RateLimit llm.RateLimiterConfig

	// Tracer instruments created providers when set
	Tracer observability.Tracer
}

// NewProviderFactory creates a new provider factory.
func NewProviderFactory(config FactoryConfig) *ProviderFactory {
	// Set defaults
	if config.MaxTokens == 0 {
		config.MaxTokens = 4096
	}
	if config.Timeout == 0 {
		config.Timeout = 120
	}

	return &ProviderFactory{
		config: config,
	}
}

// CreateProvider creates an LLM provider for the specified provider type and model.
func (f *ProviderFactory) CreateProvider(provider, model string, temperature float64) (llmtypes.LLMProvider, error) {
	// Use defaults if not specified
	if provider == "" {
		provider = f.config.DefaultProvider
	}
	if model == "" {
		model = f.config.DefaultModel
	}

	switch provider {
	case "anthropic":
		return f.createAnthropicProvider(model, temperature)
	case "bedrock":
		return f.createBedrockProvider(model, temperature)
	case "ollama":
		return f.createOllamaProvider(model, temperature)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

// CreateForRole creates the provider for a debate role and wraps it with
// instrumentation when a tracer is configured. The role label (debater_a,
// debater_b, judge, summarizer) flows into span attributes and metrics.
func (f *ProviderFactory) CreateForRole(role, provider, model string, temperature float64) (llmtypes.LLMProvider, error) {
	p, err := f.CreateProvider(provider, model, temperature)
	if err != nil {
		return nil, err
	}

	if f.config.Tracer != nil {
		return llm.NewInstrumentedProvider(p, f.config.Tracer, role), nil
	}
	return p, nil
}

func (f *ProviderFactory) createAnthropicProvider(model string, temperature float64) (llmtypes.LLMProvider, error) {
	apiKey := f.config.AnthropicAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key not configured (set llm.anthropic_api_key or ANTHROPIC_API_KEY)")
	}

	if model == "" {
		model = f.config.AnthropicModel
	}
	if model == "" {
		model = "claude-sonnet-4-5-20250929"
	}

	return anthropic.NewClient(anthropic.Config{
		APIKey:            apiKey,
		Model:             model,
		MaxTokens:         f.config.MaxTokens,
		Temperature:       temperature,
		Timeout:           time.Duration(f.config.Timeout) * time.Second,
		RateLimiterConfig: f.config.RateLimit,
	}), nil
}

func (f *ProviderFactory) createBedrockProvider(model string, temperature float64) (llmtypes.LLMProvider, error) {
	if model == "" {
		model = f.config.BedrockModelID
	}
	if model == "" {
		model = "us.anthropic.claude-sonnet-4-5-20250929-v1:0"
	}

	region := f.config.BedrockRegion
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	if region == "" {
		region = "us-west-2"
	}

	return bedrock.NewClient(bedrock.Config{
		Region:            region,
		AccessKeyID:       f.config.BedrockAccessKeyID,
		SecretAccessKey:   f.config.BedrockSecretAccessKey,
		SessionToken:      f.config.BedrockSessionToken,
		Profile:           f.config.BedrockProfile,
		ModelID:           model,
		MaxTokens:         f.config.MaxTokens,
		Temperature:       temperature,
		RateLimiterConfig: f.config.RateLimit,
	})
}

func (f *ProviderFactory) createOllamaProvider(model string, temperature float64) (llmtypes.LLMProvider, error) {
	endpoint := f.config.OllamaEndpoint
	if endpoint == "" {
		endpoint = os.Getenv("OLLAMA_ENDPOINT")
	}
	if endpoint == "" {
		endpoint = "http://localhost:11434"
	}

	if model == "" {
		model = f.config.OllamaModel
	}
	if model == "" {
		model = "llama3.1"
	}

	return ollama.NewClient(ollama.Config{
		Endpoint:          endpoint,
		Model:             model,
		MaxTokens:         f.config.MaxTokens,
		Temperature:       temperature,
		Timeout:           time.Duration(f.config.Timeout) * time.Second,
		RateLimiterConfig: f.config.RateLimit,
	}), nil
}

// IsProviderAvailable checks if a provider is available (credentials/config present).
func (f *ProviderFactory) IsProviderAvailable(provider string) bool {
	_, err := f.CreateProvider(provider, "", 0)
	return err == nil
}
