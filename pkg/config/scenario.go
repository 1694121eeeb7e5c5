// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a declarative debate definition loaded from a YAML file.
// It bundles a topic with optional per-role overrides so a match can be
// replayed with identical settings.
type Scenario struct {
	Topic            string `yaml:"topic"`
	ResponseLanguage string `yaml:"response_language"`
	MaxTurns         int    `yaml:"max_turns"`

	DebaterA *ScenarioRole `yaml:"debater_a"`
	DebaterB *ScenarioRole `yaml:"debater_b"`
	Judge    *ScenarioRole `yaml:"judge"`

	Checkpoint *ScenarioCheckpoint `yaml:"checkpoint"`

	// Output is the transcript file path for this scenario.
	Output string `yaml:"output"`
}

// ScenarioRole overrides a single role's model settings. Zero-valued fields
// keep the values from the main configuration.
type ScenarioRole struct {
	Name         string   `yaml:"name"`
	Temperature  *float64 `yaml:"temperature"`
	SystemPrompt string   `yaml:"system_prompt"`
}

// ScenarioCheckpoint overrides checkpoint settings for one scenario.
type ScenarioCheckpoint struct {
	Enabled        *bool `yaml:"enabled"`
	IntervalTurns  int   `yaml:"interval_turns"`
	ViolationLimit int   `yaml:"violation_limit"`
}

// LoadScenario loads a scenario from a YAML file. Environment variables in
// the file are expanded before parsing.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-supplied scenario path
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file %s: %w", path, err)
	}

	// Expand environment variables
	dataStr := expandEnvVars(string(data))

	var scenario Scenario
	if err := yaml.Unmarshal([]byte(dataStr), &scenario); err != nil {
		return nil, fmt.Errorf("failed to parse scenario YAML: %w", err)
	}

	if scenario.Topic == "" {
		return nil, fmt.Errorf("invalid scenario %s: topic is required", path)
	}

	return &scenario, nil
}

// Apply merges the scenario's overrides into the configuration.
func (s *Scenario) Apply(cfg *Config) {
	cfg.Debate.Topic = s.Topic
	if s.ResponseLanguage != "" {
		cfg.Debate.ResponseLanguage = s.ResponseLanguage
	}
	if s.MaxTurns > 0 {
		cfg.Debate.MaxTurns = s.MaxTurns
	}
	if s.Output != "" {
		cfg.Output.File = s.Output
	}

	applyRole(s.DebaterA, &cfg.Models.DebaterA)
	applyRole(s.DebaterB, &cfg.Models.DebaterB)

	if s.Judge != nil {
		if s.Judge.Name != "" {
			cfg.Models.Judge.Name = s.Judge.Name
		}
		if s.Judge.Temperature != nil {
			cfg.Models.Judge.Temperature = *s.Judge.Temperature
		}
		if s.Judge.SystemPrompt != "" {
			cfg.Models.Judge.SystemPrompt = s.Judge.SystemPrompt
		}
	}

	if s.Checkpoint != nil {
		if s.Checkpoint.Enabled != nil {
			cfg.Checkpoint.Enabled = *s.Checkpoint.Enabled
		}
		if s.Checkpoint.IntervalTurns > 0 {
			cfg.Checkpoint.IntervalTurns = s.Checkpoint.IntervalTurns
		}
		if s.Checkpoint.ViolationLimit > 0 {
			cfg.Checkpoint.ViolationLimit = s.Checkpoint.ViolationLimit
		}
	}
}

// applyRole merges one role override into the target model config.
func applyRole(role *ScenarioRole, target *ModelConfig) {
	if role == nil {
		return
	}
	if role.Name != "" {
		target.Name = role.Name
	}
	if role.Temperature != nil {
		target.Temperature = *role.Temperature
	}
	if role.SystemPrompt != "" {
		target.SystemPrompt = role.SystemPrompt
	}
}

// expandEnvVars expands environment variables in YAML content
func expandEnvVars(s string) string {
	return os.Expand(s, func(key string) string {
		return os.Getenv(key)
	})
}
