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
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/teradata-labs/arena/internal/version"
	arenaconfig "github.com/teradata-labs/arena/pkg/config"
)

var (
	cfgFile string
	config  *arenaconfig.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:     "arena",
	Short:   "Arena - Moderated adversarial debates between LLM agents",
	Long:    `Arena pits two LLM debaters against each other on a topic while a judge decides when the exchange should end and a summarizer detects exhausted arguments and injects restrictions to keep the debate moving.`,
	Version: version.Get(),
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $ARENA_DATA_DIR/arena.yaml)")

	// LLM flags
	rootCmd.PersistentFlags().String("llm-provider", "ollama", "LLM provider (anthropic, bedrock, ollama)")
	rootCmd.PersistentFlags().String("anthropic-key", "", "Anthropic API key (or use keyring/env)")
	rootCmd.PersistentFlags().String("anthropic-model", "claude-sonnet-4-5-20250929", "Anthropic model")
	rootCmd.PersistentFlags().String("ollama-endpoint", "http://localhost:11434", "Ollama endpoint URL")
	rootCmd.PersistentFlags().String("ollama-model", "llama3.1:8b", "Ollama model")
	rootCmd.PersistentFlags().Float64("temperature", 1.0, "LLM temperature")
	rootCmd.PersistentFlags().Int("max-tokens", 4096, "Maximum tokens per request")

	// Database flags
	// GetArenaDataDir respects ARENA_DATA_DIR environment variable
	defaultDBPath := filepath.Join(arenaconfig.GetArenaDataDir(), "arena.db")
	rootCmd.PersistentFlags().String("db", defaultDBPath, "SQLite run history path")

	// Logging flags
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text, json)")

	// Bind flags to viper
	_ = viper.BindPFlag("llm.provider", rootCmd.PersistentFlags().Lookup("llm-provider"))
	_ = viper.BindPFlag("llm.anthropic_api_key", rootCmd.PersistentFlags().Lookup("anthropic-key"))
	_ = viper.BindPFlag("llm.anthropic_model", rootCmd.PersistentFlags().Lookup("anthropic-model"))
	_ = viper.BindPFlag("llm.ollama_endpoint", rootCmd.PersistentFlags().Lookup("ollama-endpoint"))
	_ = viper.BindPFlag("llm.ollama_model", rootCmd.PersistentFlags().Lookup("ollama-model"))
	_ = viper.BindPFlag("llm.temperature", rootCmd.PersistentFlags().Lookup("temperature"))
	_ = viper.BindPFlag("llm.max_tokens", rootCmd.PersistentFlags().Lookup("max-tokens"))

	_ = viper.BindPFlag("history.path", rootCmd.PersistentFlags().Lookup("db"))

	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	var err error
	config, err = arenaconfig.LoadConfig(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
}
