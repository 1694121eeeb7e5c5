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
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/teradata-labs/arena/internal/log"
	arenaconfig "github.com/teradata-labs/arena/pkg/config"
	"github.com/teradata-labs/arena/pkg/debate"
	"github.com/teradata-labs/arena/pkg/history"
	"github.com/teradata-labs/arena/pkg/llm"
	"github.com/teradata-labs/arena/pkg/llm/factory"
	"github.com/teradata-labs/arena/pkg/observability"
	"go.uber.org/zap"
)

var runScenarioFile string

var runCmd = &cobra.Command{
	Use:   "run [topic]",
	Short: "Run a debate",
	Long: `Run a moderated debate between two LLM agents.

The topic comes from the positional argument, the --topic flag, a scenario
file, or the config file (in that order of priority). The run ends when the
judge rules the debate over, the summarizer's termination policy fires, or
the turn ceiling is reached.

Examples:
  arena run "Cats are better pets than dogs"
  arena run --scenario examples/scenario.yaml
  arena run --topic "Remote work beats the office" --max-turns 6 --output debate.txt
  arena run "Tabs or spaces" --checkpoints=false`,
	Args: cobra.MaximumNArgs(1),
	Run:  runDebate,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runScenarioFile, "scenario", "", "scenario YAML file with topic and role overrides")
	runCmd.Flags().String("topic", "", "debate topic (overrides config file)")
	runCmd.Flags().String("output", "", "transcript output file (truncated at run start)")
	runCmd.Flags().Int("max-turns", 10, "maximum number of debate turns")
	runCmd.Flags().Int("interval", 5, "turns between judge/summarizer checkpoints")
	runCmd.Flags().Int("violation-limit", 3, "cumulative violations that force a verdict")
	runCmd.Flags().Bool("checkpoints", true, "enable judge/summarizer checkpoints")
	runCmd.Flags().Bool("history", true, "save the finished run to the history database")
	runCmd.Flags().String("language", "", "response language for all roles")

	_ = viper.BindPFlag("debate.topic", runCmd.Flags().Lookup("topic"))
	_ = viper.BindPFlag("debate.max_turns", runCmd.Flags().Lookup("max-turns"))
	_ = viper.BindPFlag("debate.response_language", runCmd.Flags().Lookup("language"))
	_ = viper.BindPFlag("checkpoint.interval_turns", runCmd.Flags().Lookup("interval"))
	_ = viper.BindPFlag("checkpoint.violation_limit", runCmd.Flags().Lookup("violation-limit"))
	_ = viper.BindPFlag("checkpoint.enabled", runCmd.Flags().Lookup("checkpoints"))
	_ = viper.BindPFlag("output.file", runCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("history.enabled", runCmd.Flags().Lookup("history"))
}

func runDebate(cmd *cobra.Command, args []string) {
	cfg := config

	// Scenario file overrides config
	if runScenarioFile != "" {
		scenario, err := arenaconfig.LoadScenario(runScenarioFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ Failed to load scenario: %v\n", err)
			os.Exit(1)
		}
		scenario.Apply(cfg)
	}

	// Positional argument wins over everything
	if len(args) > 0 {
		cfg.Debate.Topic = args[0]
	}
	if cfg.Debate.Topic == "" {
		fmt.Fprintln(os.Stderr, "❌ A debate topic is required (argument, --topic, --scenario, or debate.topic in config)")
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.File); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to configure logging: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	logger := log.Logger()

	tracer := observability.NewNoOpTracer()
	orchestrator, fileSink, err := buildDebate(cfg, tracer, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	if fileSink != nil {
		defer fileSink.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := orchestrator.Execute(ctx, debate.RunConfig{
		Topic:     cfg.Debate.Topic,
		MaxTurns:  cfg.Debate.MaxTurns,
		TurnDelay: time.Duration(cfg.Debate.TurnDelaySeconds) * time.Second,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Debate failed: %v\n", err)
		os.Exit(1)
	}

	saveRun(cfg, result, logger)
}

// newProviderFactory builds the provider factory from the llm config block.
func newProviderFactory(cfg *arenaconfig.Config, tracer observability.Tracer) *factory.ProviderFactory {
	return factory.NewProviderFactory(factory.FactoryConfig{
		DefaultProvider:        cfg.LLM.Provider,
		AnthropicAPIKey:        cfg.LLM.AnthropicAPIKey,
		AnthropicModel:         cfg.LLM.AnthropicModel,
		BedrockRegion:          cfg.LLM.BedrockRegion,
		BedrockAccessKeyID:     cfg.LLM.BedrockAccessKeyID,
		BedrockSecretAccessKey: cfg.LLM.BedrockSecretAccessKey,
		BedrockSessionToken:    cfg.LLM.BedrockSessionToken,
		BedrockProfile:         cfg.LLM.BedrockProfile,
		BedrockModelID:         cfg.LLM.BedrockModelID,
		OllamaEndpoint:         cfg.LLM.OllamaEndpoint,
		OllamaModel:            cfg.LLM.OllamaModel,
		MaxTokens:              cfg.LLM.MaxTokens,
		Timeout:                cfg.LLM.Timeout,
		RateLimit:              llm.DefaultRateLimiterConfig(),
		Tracer:                 tracer,
	})
}

// buildDebate wires sessions, judge, summarizer, coordinator, and sinks from
// the configuration. The returned file sink is nil when file output is off.
func buildDebate(cfg *arenaconfig.Config, tracer observability.Tracer, logger *zap.Logger) (*debate.TurnOrchestrator, *debate.FileSink, error) {
	providerFactory := newProviderFactory(cfg, tracer)

	language := cfg.Debate.ResponseLanguage
	topic := cfg.Debate.Topic

	providerA, err := providerFactory.CreateForRole(debate.DebaterA, cfg.LLM.Provider, cfg.Models.DebaterA.Name, cfg.Models.DebaterA.Temperature)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s provider: %w", debate.DebaterA, err)
	}
	providerB, err := providerFactory.CreateForRole(debate.DebaterB, cfg.LLM.Provider, cfg.Models.DebaterB.Name, cfg.Models.DebaterB.Temperature)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s provider: %w", debate.DebaterB, err)
	}

	personaA := cfg.Models.DebaterA.SystemPrompt
	if personaA == "" {
		personaA = debate.DefaultPersonaA
	}
	personaB := cfg.Models.DebaterB.SystemPrompt
	if personaB == "" {
		personaB = debate.DefaultPersonaB
	}
	sessionA := debate.NewAgentSessionWithLogger(debate.DebaterA, debate.RenderPersona(personaA, topic, language), providerA, logger)
	sessionB := debate.NewAgentSessionWithLogger(debate.DebaterB, debate.RenderPersona(personaB, topic, language), providerB, logger)

	var coordinator *debate.CheckpointCoordinator
	if cfg.Checkpoint.Enabled {
		judgeProvider, err := providerFactory.CreateForRole("judge", cfg.LLM.Provider, cfg.Models.Judge.Name, cfg.Models.Judge.Temperature)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create judge provider: %w", err)
		}
		summarizerModel, summarizerTemp := cfg.SummarizerModel()
		summarizerProvider, err := providerFactory.CreateForRole("summarizer", cfg.LLM.Provider, summarizerModel, summarizerTemp)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create summarizer provider: %w", err)
		}

		judge := debate.NewAdjudicatorWithObservability(judgeProvider, debate.AdjudicatorConfig{
			Language:            language,
			SystemPrompt:        cfg.Models.Judge.SystemPrompt,
			EvaluationPrompt:    cfg.Models.Judge.EvaluationPrompt,
			ForcedVerdictPrompt: cfg.Models.Judge.ForcedVerdictPrompt,
		}, tracer, logger)
		analyzer := debate.NewAnalyzerWithObservability(summarizerProvider, language, tracer, logger)

		coordinator = debate.NewCheckpointCoordinatorWithObservability(
			judge, analyzer, sessionA, sessionB,
			cfg.Checkpoint.IntervalTurns, cfg.Checkpoint.ViolationLimit,
			tracer, logger)
	}

	var sinks []debate.Sink
	if cfg.Output.Console {
		sinks = append(sinks, debate.NewConsoleSink())
	}
	var fileSink *debate.FileSink
	if cfg.Output.File != "" {
		fileSink, err = debate.NewFileSink(cfg.Output.File, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open transcript file: %w", err)
		}
		sinks = append(sinks, fileSink)
	}

	orchestrator := debate.NewTurnOrchestratorWithObservability(
		sessionA, sessionB, coordinator,
		debate.NewMultiSink(sinks...), tracer, logger)
	return orchestrator, fileSink, nil
}

// saveRun persists the finished run. Failures are warnings; the debate
// already completed.
func saveRun(cfg *arenaconfig.Config, result *debate.RunResult, logger *zap.Logger) {
	if !cfg.History.Enabled {
		return
	}

	store, err := history.NewStore(cfg.History.Path)
	if err != nil {
		logger.Warn("Run history unavailable", zap.Error(err))
		return
	}
	defer store.Close()

	if err := store.Save(context.Background(), result, cfg.Debate.MaxTurns); err != nil {
		logger.Warn("Failed to save run history", zap.Error(err))
		return
	}
	fmt.Printf("\n✓ Run saved: arena history show %s\n", result.RunID)
}
