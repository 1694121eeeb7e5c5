// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package config loads and validates arena configuration from YAML files,
// environment variables, CLI flags, and the system keyring.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/zalando/go-keyring"
)

const (
	// ServiceName for keyring storage
	ServiceName = "arena"
	// DefaultConfigFileName is the name of the config file
	DefaultConfigFileName = "arena"
)

// Config holds all configuration for a debate run.
// Priority: CLI flags > config file > env vars > defaults
type Config struct {
	// DataDir is the arena data directory (computed from ARENA_DATA_DIR env var or ~/.arena).
	// This field is set during config initialization and is read-only.
	// It is not loaded from the config file - use ARENA_DATA_DIR environment variable to override.
	DataDir string `mapstructure:"-"`

	// Debate loop configuration
	Debate DebateConfig `mapstructure:"debate"`

	// Checkpoint (judge + summarizer) configuration
	Checkpoint CheckpointConfig `mapstructure:"checkpoint"`

	// Per-role model configuration
	Models ModelsConfig `mapstructure:"models"`

	// LLM provider configuration, shared by every role
	LLM LLMConfig `mapstructure:"llm"`

	// Transcript output configuration
	Output OutputConfig `mapstructure:"output"`

	// Run history storage configuration
	History HistoryConfig `mapstructure:"history"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`
}

// DebateConfig holds debate loop configuration.
type DebateConfig struct {
	// Topic is the debate topic. May be overridden with 'arena run --topic';
	// a run cannot start without one.
	Topic string `mapstructure:"topic"`

	// MaxTurns is the turn ceiling for the debate loop.
	MaxTurns int `mapstructure:"max_turns"`

	// ResponseLanguage is appended to every persona so debaters, judge, and
	// summarizer all answer in the same language.
	ResponseLanguage string `mapstructure:"response_language"`

	// TurnDelaySeconds is the pacing pause between debater turns (0 disables it).
	TurnDelaySeconds int `mapstructure:"turn_delay_seconds"`
}

// CheckpointConfig holds periodic checkpoint configuration.
type CheckpointConfig struct {
	// Enabled turns judge/summarizer checkpoints on or off.
	Enabled bool `mapstructure:"enabled"`

	// IntervalTurns is the number of turns between checkpoints.
	IntervalTurns int `mapstructure:"interval_turns"`

	// ViolationLimit is the cumulative violation count that forces a verdict.
	ViolationLimit int `mapstructure:"violation_limit"`
}

// ModelsConfig holds per-role model configuration.
type ModelsConfig struct {
	DebaterA   ModelConfig      `mapstructure:"debater_a"`
	DebaterB   ModelConfig      `mapstructure:"debater_b"`
	Judge      JudgeModelConfig `mapstructure:"judge"`
	Summarizer SummarizerConfig `mapstructure:"summarizer"`
}

// ModelConfig holds model settings for a single debater role.
type ModelConfig struct {
	// Name is the model identifier. Empty uses the provider's default model.
	Name string `mapstructure:"name"`

	// Temperature for this role's generations.
	Temperature float64 `mapstructure:"temperature"`

	// SystemPrompt is the persona text. Empty uses the built-in persona for
	// the role. The placeholder {topic} is replaced with the debate topic.
	SystemPrompt string `mapstructure:"system_prompt"`
}

// JudgeModelConfig holds model settings for the judge role.
type JudgeModelConfig struct {
	Name         string  `mapstructure:"name"`
	Temperature  float64 `mapstructure:"temperature"`
	SystemPrompt string  `mapstructure:"system_prompt"`

	// EvaluationPrompt overrides the built-in prompt used at periodic checkpoints.
	EvaluationPrompt string `mapstructure:"evaluation_prompt"`

	// ForcedVerdictPrompt overrides the built-in prompt used when termination
	// has already been decided and a definitive verdict is required.
	ForcedVerdictPrompt string `mapstructure:"forced_verdict_prompt"`
}

// SummarizerConfig holds model settings for the summarizer role.
// The whole section is optional; when Name is empty the judge's model and
// temperature are used instead.
type SummarizerConfig struct {
	Name        string  `mapstructure:"name"`
	Temperature float64 `mapstructure:"temperature"`
}

// LLMConfig holds LLM provider configuration.
type LLMConfig struct {
	Provider string `mapstructure:"provider"` // anthropic, bedrock, ollama

	// Anthropic-specific
	AnthropicAPIKey string `mapstructure:"anthropic_api_key"` // From CLI/env/keyring only
	AnthropicModel  string `mapstructure:"anthropic_model"`

	// Bedrock-specific
	BedrockRegion          string `mapstructure:"bedrock_region"`
	BedrockAccessKeyID     string `mapstructure:"bedrock_access_key_id"`     // From CLI/env/keyring only
	BedrockSecretAccessKey string `mapstructure:"bedrock_secret_access_key"` // From CLI/env/keyring only
	BedrockSessionToken    string `mapstructure:"bedrock_session_token"`     // From CLI/env/keyring only
	BedrockProfile         string `mapstructure:"bedrock_profile"`
	BedrockModelID         string `mapstructure:"bedrock_model_id"`

	// Ollama-specific
	OllamaEndpoint string `mapstructure:"ollama_endpoint"`
	OllamaModel    string `mapstructure:"ollama_model"`

	// Common generation parameters
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Timeout     int     `mapstructure:"timeout_seconds"`
}

// OutputConfig holds transcript output configuration.
type OutputConfig struct {
	// File is the transcript output path. Empty disables file output.
	// The file is truncated at run start and appended to line by line.
	File string `mapstructure:"file"`

	// Console controls whether transcript lines are printed to stdout.
	Console bool `mapstructure:"console"`
}

// HistoryConfig holds run history storage configuration.
type HistoryConfig struct {
	// Enabled turns sqlite persistence of finished runs on or off.
	Enabled bool `mapstructure:"enabled"`

	// Path is the sqlite database path.
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text, json
	File   string `mapstructure:"file"`   // File path for log output (optional, defaults to stderr)
}

// LoadConfig loads configuration from multiple sources with proper priority:
// 1. Command line flags (highest priority)
// 2. Config file
// 3. Environment variables
// 4. Defaults (lowest priority)
func LoadConfig(cfgFile string) (*Config, error) {
	// Set defaults
	setDefaults()

	// Setup config file
	if cfgFile != "" {
		// Use config file from flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in standard locations
		// Config search paths (in order of priority)
		viper.AddConfigPath(GetArenaDataDir())     // Arena data directory (respects ARENA_DATA_DIR)
		viper.AddConfigPath(".")                   // Current directory
		viper.AddConfigPath("/etc/arena/")         // System-wide
		viper.SetConfigName(DefaultConfigFileName) // arena.yaml
		viper.SetConfigType("yaml")
	}

	// Read config file (if it exists)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error occurred, or an
			// explicitly requested file is missing
			return nil, fmt.Errorf("error reading config file %s: %w", viper.ConfigFileUsed(), err)
		}
		// Config file not found; using defaults + env vars + flags
	}

	// Bind environment variables (ARENA_DEBATE_MAX_TURNS -> debate.max_turns)
	viper.SetEnvPrefix("ARENA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Unmarshal config
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Set DataDir from environment or default
	// This must be done after unmarshal since it's not loaded from config file
	config.DataDir = GetArenaDataDir()

	// Load secrets from keyring if not provided via CLI/env
	// Non-fatal: keyring might not be available - user can provide secrets via CLI/env
	_ = loadSecretsFromKeyring(&config)

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults() {
	// Debate defaults
	viper.SetDefault("debate.topic", "")
	viper.SetDefault("debate.max_turns", 10)
	viper.SetDefault("debate.response_language", "English")
	viper.SetDefault("debate.turn_delay_seconds", 1)

	// Checkpoint defaults
	viper.SetDefault("checkpoint.enabled", true)
	viper.SetDefault("checkpoint.interval_turns", 5)
	viper.SetDefault("checkpoint.violation_limit", 3)

	// Role defaults. Empty model names fall back to the provider's default model;
	// empty system prompts fall back to the built-in personas.
	viper.SetDefault("models.debater_a.temperature", 0.7)
	viper.SetDefault("models.debater_b.temperature", 0.7)
	viper.SetDefault("models.judge.temperature", 0.2)
	viper.SetDefault("models.summarizer.temperature", 0.1)

	// LLM defaults (ollama so a debate runs locally without any credentials)
	viper.SetDefault("llm.provider", "ollama")
	viper.SetDefault("llm.anthropic_model", "claude-sonnet-4-5-20250929")
	viper.SetDefault("llm.bedrock_region", "us-west-2")
	viper.SetDefault("llm.bedrock_model_id", "us.anthropic.claude-sonnet-4-5-20250929-v1:0") // Cross-region inference profile
	viper.SetDefault("llm.ollama_endpoint", "http://localhost:11434")
	viper.SetDefault("llm.ollama_model", "llama3.1:8b")
	viper.SetDefault("llm.temperature", 1.0)
	viper.SetDefault("llm.max_tokens", 4096)
	viper.SetDefault("llm.timeout_seconds", 120)

	// Output defaults
	viper.SetDefault("output.file", "")
	viper.SetDefault("output.console", true)

	// History defaults (use arena data directory)
	viper.SetDefault("history.enabled", true)
	viper.SetDefault("history.path", filepath.Join(GetArenaDataDir(), "arena.db"))

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")
}

// SummarizerModel returns the model name and temperature for the summarizer
// role. When no summarizer model is configured, the judge's model and
// temperature are used.
func (c *Config) SummarizerModel() (string, float64) {
	if c.Models.Summarizer.Name == "" {
		return c.Models.Judge.Name, c.Models.Judge.Temperature
	}
	return c.Models.Summarizer.Name, c.Models.Summarizer.Temperature
}

// SecretMapping defines how to load a secret from keyring into the config.
// The key is the keyring key name, and the setter is a function that applies the value to the config.
type SecretMapping struct {
	KeyringKey string
	Setter     func(*Config, string)
	IsSet      func(*Config) bool // Returns true if the value is already set (skip keyring lookup)
}

// GetSecretMappings returns all secret mappings for the application.
// Developers can extend this by adding new SecretMapping entries.
func GetSecretMappings() []SecretMapping {
	return []SecretMapping{
		{
			KeyringKey: "anthropic_api_key",
			Setter:     func(c *Config, val string) { c.LLM.AnthropicAPIKey = val },
			IsSet:      func(c *Config) bool { return c.LLM.AnthropicAPIKey != "" },
		},
		{
			KeyringKey: "bedrock_access_key_id",
			Setter:     func(c *Config, val string) { c.LLM.BedrockAccessKeyID = val },
			IsSet:      func(c *Config) bool { return c.LLM.BedrockAccessKeyID != "" },
		},
		{
			KeyringKey: "bedrock_secret_access_key",
			Setter:     func(c *Config, val string) { c.LLM.BedrockSecretAccessKey = val },
			IsSet:      func(c *Config) bool { return c.LLM.BedrockSecretAccessKey != "" },
		},
		{
			KeyringKey: "bedrock_session_token",
			Setter:     func(c *Config, val string) { c.LLM.BedrockSessionToken = val },
			IsSet:      func(c *Config) bool { return c.LLM.BedrockSessionToken != "" },
		},
	}
}

// loadSecretsFromKeyring loads API keys from system keyring using the secret mappings.
// This is extensible - just add more entries to GetSecretMappings().
func loadSecretsFromKeyring(config *Config) error {
	for _, mapping := range GetSecretMappings() {
		// Skip if value is already set (from CLI/env/config file)
		if mapping.IsSet(config) {
			continue
		}

		// Try to load from keyring
		value, err := GetSecretFromKeyring(mapping.KeyringKey)
		if err == nil && value != "" {
			mapping.Setter(config, value)
		}
		// Non-fatal: if keyring doesn't have the key, just continue
	}

	return nil
}

// GetSecretFromKeyring retrieves a secret from the system keyring.
func GetSecretFromKeyring(key string) (string, error) {
	return keyring.Get(ServiceName, key)
}

// SaveSecretToKeyring saves a secret to the system keyring.
func SaveSecretToKeyring(key, value string) error {
	return keyring.Set(ServiceName, key, value)
}

// DeleteSecretFromKeyring removes a secret from the system keyring.
func DeleteSecretFromKeyring(key string) error {
	return keyring.Delete(ServiceName, key)
}

// ListAvailableSecretKeys returns all known secret keys that can be stored in the keyring.
// Useful for CLI commands that need to show available options.
func ListAvailableSecretKeys() []string {
	mappings := GetSecretMappings()
	keys := make([]string, len(mappings))
	for i, mapping := range mappings {
		keys[i] = mapping.KeyringKey
	}
	return keys
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	// Validate debate config
	if c.Debate.MaxTurns < 1 {
		return fmt.Errorf("debate.max_turns must be at least 1, got %d", c.Debate.MaxTurns)
	}

	// Validate checkpoint config
	if c.Checkpoint.Enabled {
		if c.Checkpoint.IntervalTurns < 1 {
			return fmt.Errorf("checkpoint.interval_turns must be at least 1, got %d", c.Checkpoint.IntervalTurns)
		}
		if c.Checkpoint.ViolationLimit < 1 {
			return fmt.Errorf("checkpoint.violation_limit must be at least 1, got %d", c.Checkpoint.ViolationLimit)
		}
	}

	// Validate LLM config
	if c.LLM.Provider == "" {
		return fmt.Errorf("llm.provider is required")
	}

	switch c.LLM.Provider {
	case "anthropic":
		if c.LLM.AnthropicAPIKey == "" {
			return fmt.Errorf("anthropic API key is required (set via ARENA_LLM_ANTHROPIC_API_KEY or save to keyring with 'arena config set-key anthropic_api_key')")
		}

	case "bedrock":
		if c.LLM.BedrockRegion == "" {
			return fmt.Errorf("bedrock region is required (set llm.bedrock_region in config or ARENA_LLM_BEDROCK_REGION env var)")
		}
		// Note: We don't require explicit credentials here because:
		// - User might be using AWS profile (BedrockProfile)
		// - User might be using IAM role (default credentials chain)
		// - User might be using environment variables (AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY)
		// The Bedrock client will handle auth validation at runtime

	case "ollama":
		if c.LLM.OllamaEndpoint == "" {
			return fmt.Errorf("ollama endpoint is required (set llm.ollama_endpoint in config)")
		}
		if c.LLM.OllamaModel == "" {
			return fmt.Errorf("ollama model is required (set llm.ollama_model in config)")
		}

	default:
		return fmt.Errorf("unsupported LLM provider: %s (must be anthropic, bedrock, or ollama)", c.LLM.Provider)
	}

	// Validate history config
	if c.History.Enabled && c.History.Path == "" {
		return fmt.Errorf("history.path is required when history is enabled")
	}

	return nil
}

// GenerateExampleConfig generates an example configuration file.
func GenerateExampleConfig() string {
	return `# Arena Debate Configuration
# Priority: CLI flags > config file > environment variables > defaults

debate:
  # The debate topic. May also be passed with 'arena run --topic "..."'.
  topic: ""
  max_turns: 10
  response_language: English
  turn_delay_seconds: 1

checkpoint:
  enabled: true
  interval_turns: 5    # Consult judge and summarizer every N turns
  violation_limit: 3   # Force a verdict after this many repeated-argument violations

models:
  debater_a:
    # name: llama3.1:8b  # Empty uses the provider default model
    temperature: 0.7
    # system_prompt: |
    #   You are Debater A, arguing in favor of: {topic}
  debater_b:
    temperature: 0.7
  judge:
    temperature: 0.2
    # evaluation_prompt and forced_verdict_prompt override the built-in judge prompts
  summarizer:
    # Optional section; falls back to the judge model when omitted
    temperature: 0.1

llm:
  # Provider options: anthropic, bedrock, ollama
  provider: ollama

  # Ollama configuration (local inference)
  ollama_endpoint: http://localhost:11434
  ollama_model: llama3.1:8b

  # Anthropic configuration
  anthropic_model: claude-sonnet-4-5-20250929
  # anthropic_api_key: set via keyring (arena config set-key anthropic_api_key)

  # AWS Bedrock configuration
  bedrock_region: us-west-2
  bedrock_model_id: us.anthropic.claude-sonnet-4-5-20250929-v1:0
  # bedrock_profile: default  # Use AWS profile instead of explicit credentials
  # bedrock_access_key_id: set via keyring or env (ARENA_LLM_BEDROCK_ACCESS_KEY_ID)
  # bedrock_secret_access_key: set via keyring or env (ARENA_LLM_BEDROCK_SECRET_ACCESS_KEY)
  # bedrock_session_token: set via keyring or env (ARENA_LLM_BEDROCK_SESSION_TOKEN)

  # Common generation parameters (apply to all providers)
  temperature: 1.0
  max_tokens: 4096
  timeout_seconds: 120

output:
  # file: ./debate.txt  # Transcript file (truncated at run start)
  console: true

history:
  enabled: true
  # path: ~/.arena/arena.db

logging:
  level: info  # debug, info, warn, error
  format: text # text, json

# Note: Secrets should NEVER be committed to config files.
# Use the keyring for secure storage:
#   arena config set-key anthropic_api_key
#   arena config set-key bedrock_access_key_id
#   arena config set-key bedrock_secret_access_key
`
}
