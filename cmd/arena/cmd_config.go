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
	arenaconfig "github.com/teradata-labs/arena/pkg/config"
	"github.com/zalando/go-keyring"
	"golang.org/x/term"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage arena configuration",
	Long:  `Manage configuration files and secrets for arena.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate example configuration file",
	Long:  `Generate an example arena.yaml configuration file in ~/.arena/`,
	Run:   runConfigInit,
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key [key-name]",
	Short: "Save API key to system keyring",
	Long: `Save an API key to the system keyring securely.

The key will be stored in your system's secure credential storage
(Keychain on macOS, Credential Manager on Windows, Secret Service on Linux).

Run 'arena config list-keys' to see available key names.`,
	Args: cobra.ExactArgs(1),
	Run:  runConfigSetKey,
}

var configGetKeyCmd = &cobra.Command{
	Use:   "get-key [key-name]",
	Short: "Retrieve API key from system keyring",
	Long:  `Retrieve an API key from the system keyring (for verification).`,
	Args:  cobra.ExactArgs(1),
	Run:   runConfigGetKey,
}

var configDeleteKeyCmd = &cobra.Command{
	Use:   "delete-key [key-name]",
	Short: "Delete API key from system keyring",
	Long:  `Remove an API key from the system keyring.`,
	Args:  cobra.ExactArgs(1),
	Run:   runConfigDeleteKey,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration (merged from all sources).`,
	Run:   runConfigShow,
}

var configListKeysCmd = &cobra.Command{
	Use:   "list-keys",
	Short: "List available secret keys",
	Long:  `List all available secret keys that can be stored in the keyring.`,
	Run:   runConfigListKeys,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the current configuration",
	Long:  `Validate the merged configuration without starting a debate.`,
	Run:   runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetKeyCmd)
	configCmd.AddCommand(configGetKeyCmd)
	configCmd.AddCommand(configDeleteKeyCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configListKeysCmd)
	configCmd.AddCommand(configValidateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	configDir := arenaconfig.GetArenaDataDir()
	configPath := filepath.Join(configDir, "arena.yaml")

	// Create directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0750); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating config directory: %v\n", err)
		os.Exit(1)
	}

	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Config file already exists: %s\n", configPath)
		fmt.Print("Overwrite? (y/N): ")
		var response string
		_, _ = fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Aborted.")
			return
		}
	}

	if err := os.WriteFile(configPath, []byte(arenaconfig.GenerateExampleConfig()), 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing config file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Config file created: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Pick an LLM provider in the config (default: ollama, free local inference):")
	fmt.Println("   ollama serve")
	fmt.Println("   ollama pull llama3.1:8b")
	fmt.Println("   For Anthropic: arena config set-key anthropic_api_key")
	fmt.Println("   For Bedrock:   aws configure, or arena config set-key bedrock_access_key_id")
	fmt.Println("2. Run a debate:")
	fmt.Println(`   arena run "Cats are better pets than dogs"`)
}

func runConfigSetKey(cmd *cobra.Command, args []string) {
	keyName := args[0]

	// Validate key name using extensible mapping
	availableKeys := arenaconfig.ListAvailableSecretKeys()
	validKeys := make(map[string]bool)
	for _, k := range availableKeys {
		validKeys[k] = true
	}

	if !validKeys[keyName] {
		fmt.Fprintf(os.Stderr, "Invalid key name: %s\n", keyName)
		fmt.Fprintf(os.Stderr, "Available keys:\n")
		for _, k := range availableKeys {
			fmt.Fprintf(os.Stderr, "  - %s\n", k)
		}
		os.Exit(1)
	}

	// Read secret from stdin (without echo)
	fmt.Printf("Enter %s (input hidden): ", keyName)
	secretBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println() // New line after hidden input
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}

	secret := string(secretBytes)
	if secret == "" {
		fmt.Fprintf(os.Stderr, "Secret cannot be empty\n")
		os.Exit(1)
	}

	// Save to keyring
	if err := keyring.Set(arenaconfig.ServiceName, keyName, secret); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving to keyring: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Saved %s to system keyring\n", keyName)
}

func runConfigGetKey(cmd *cobra.Command, args []string) {
	keyName := args[0]

	secret, err := keyring.Get(arenaconfig.ServiceName, keyName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving key: %v\n", err)
		fmt.Fprintf(os.Stderr, "Key not found in keyring. Set it with: arena config set-key %s\n", keyName)
		os.Exit(1)
	}

	// Show partially masked
	masked := maskSecret(secret)
	fmt.Printf("%s: %s\n", keyName, masked)
}

func runConfigDeleteKey(cmd *cobra.Command, args []string) {
	keyName := args[0]

	if err := keyring.Delete(arenaconfig.ServiceName, keyName); err != nil {
		fmt.Fprintf(os.Stderr, "Error deleting key: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Deleted %s from system keyring\n", keyName)
}

func runConfigShow(cmd *cobra.Command, args []string) {
	fmt.Println("Current Configuration:")
	fmt.Println("======================")
	fmt.Println()

	fmt.Println("Debate:")
	if config.Debate.Topic != "" {
		fmt.Printf("  Topic: %s\n", config.Debate.Topic)
	} else {
		fmt.Printf("  Topic: (not set)\n")
	}
	fmt.Printf("  Max Turns: %d\n", config.Debate.MaxTurns)
	fmt.Printf("  Response Language: %s\n", config.Debate.ResponseLanguage)
	fmt.Printf("  Turn Delay: %ds\n", config.Debate.TurnDelaySeconds)
	fmt.Println()

	fmt.Println("Checkpoint:")
	fmt.Printf("  Enabled: %t\n", config.Checkpoint.Enabled)
	if config.Checkpoint.Enabled {
		fmt.Printf("  Interval Turns: %d\n", config.Checkpoint.IntervalTurns)
		fmt.Printf("  Violation Limit: %d\n", config.Checkpoint.ViolationLimit)
	}
	fmt.Println()

	fmt.Println("LLM:")
	fmt.Printf("  Provider: %s\n", config.LLM.Provider)
	switch config.LLM.Provider {
	case "anthropic":
		fmt.Printf("  Model: %s\n", config.LLM.AnthropicModel)
		if config.LLM.AnthropicAPIKey != "" {
			fmt.Printf("  API Key: %s\n", maskSecret(config.LLM.AnthropicAPIKey))
		} else {
			fmt.Printf("  API Key: (not set)\n")
		}
	case "bedrock":
		fmt.Printf("  Model: %s\n", config.LLM.BedrockModelID)
		fmt.Printf("  Region: %s\n", config.LLM.BedrockRegion)
		if config.LLM.BedrockProfile != "" {
			fmt.Printf("  Profile: %s\n", config.LLM.BedrockProfile)
		}
	case "ollama":
		fmt.Printf("  Model: %s\n", config.LLM.OllamaModel)
		fmt.Printf("  Endpoint: %s\n", config.LLM.OllamaEndpoint)
	}
	fmt.Printf("  Temperature: %.1f\n", config.LLM.Temperature)
	fmt.Printf("  Max Tokens: %d\n", config.LLM.MaxTokens)
	fmt.Println()

	fmt.Println("Models:")
	fmt.Printf("  Debater A: %s (temperature %.1f)\n", modelOrDefault(config.Models.DebaterA.Name), config.Models.DebaterA.Temperature)
	fmt.Printf("  Debater B: %s (temperature %.1f)\n", modelOrDefault(config.Models.DebaterB.Name), config.Models.DebaterB.Temperature)
	fmt.Printf("  Judge: %s (temperature %.1f)\n", modelOrDefault(config.Models.Judge.Name), config.Models.Judge.Temperature)
	summarizerModel, summarizerTemp := config.SummarizerModel()
	fmt.Printf("  Summarizer: %s (temperature %.1f)\n", modelOrDefault(summarizerModel), summarizerTemp)
	fmt.Println()

	fmt.Println("Output:")
	fmt.Printf("  Console: %t\n", config.Output.Console)
	if config.Output.File != "" {
		fmt.Printf("  File: %s\n", config.Output.File)
	} else {
		fmt.Printf("  File: (disabled)\n")
	}
	fmt.Println()

	fmt.Println("History:")
	fmt.Printf("  Enabled: %t\n", config.History.Enabled)
	if config.History.Enabled {
		fmt.Printf("  Path: %s\n", config.History.Path)
	}
	fmt.Println()

	fmt.Println("Logging:")
	fmt.Printf("  Level: %s\n", config.Logging.Level)
	fmt.Printf("  Format: %s\n", config.Logging.Format)
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	if err := config.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✓ Configuration is valid")
}

func runConfigListKeys(cmd *cobra.Command, args []string) {
	keys := arenaconfig.ListAvailableSecretKeys()
	fmt.Println("Available secret keys:")
	fmt.Println("======================")
	for _, key := range keys {
		fmt.Printf("  - %s\n", key)
	}
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  arena config set-key <key-name>")
	fmt.Println("  arena config get-key <key-name>")
	fmt.Println("  arena config delete-key <key-name>")
}

// maskSecret masks a secret for display.
func maskSecret(s string) string {
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// modelOrDefault labels an empty per-role model name.
func modelOrDefault(name string) string {
	if name == "" {
		return "(provider default)"
	}
	return name
}
