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
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"github.com/teradata-labs/arena/pkg/llm/factory"
	"github.com/teradata-labs/arena/pkg/observability"
)

var modelsNoDiscover bool

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models usable for debates",
	Long: `List the models known for each provider.

Providers whose credentials are configured are marked available. The static
Ollama entries are replaced with the models actually installed on the
configured daemon, unless --no-discover is set or the daemon is unreachable.

Examples:
  arena models
  arena models --no-discover
  arena models --llm-provider ollama --ollama-endpoint http://gpu-box:11434`,
	Run: runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)

	modelsCmd.Flags().BoolVar(&modelsNoDiscover, "no-discover", false, "skip live Ollama model discovery")
}

func runModels(cmd *cobra.Command, args []string) {
	registry := factory.NewModelRegistry()

	if !modelsNoDiscover {
		if err := registry.DiscoverOllamaModels(config.LLM.OllamaEndpoint); err != nil {
			fmt.Fprintf(os.Stderr, "⚠️  Ollama discovery failed, showing static defaults: %v\n", err)
		}
	}

	providerFactory := newProviderFactory(config, observability.NewNoOpTracer())
	printModels(os.Stdout, registry.GetAvailableModels(providerFactory))
}

// printModels renders the model table grouped by provider.
func printModels(w io.Writer, models []factory.ModelInfo) {
	sort.Slice(models, func(i, j int) bool {
		if models[i].Provider != models[j].Provider {
			return models[i].Provider < models[j].Provider
		}
		return models[i].ID < models[j].ID
	})

	fmt.Fprintf(w, "%-10s %-48s %-30s %-8s %-14s %s\n", "PROVIDER", "MODEL ID", "NAME", "CONTEXT", "COST IN/OUT", "AVAILABLE")
	for _, m := range models {
		available := "-"
		if m.Available {
			available = "✓"
		}
		fmt.Fprintf(w, "%-10s %-48s %-30s %-8s %-14s %s\n",
			m.Provider, m.ID, m.Name, formatContextWindow(m.ContextWindow), formatModelCost(m), available)
	}
}

// formatContextWindow renders 200000 as "200K".
func formatContextWindow(n int) string {
	if n >= 1000 && n%1000 == 0 {
		return fmt.Sprintf("%dK", n/1000)
	}
	return fmt.Sprintf("%d", n)
}

// formatModelCost renders the per-1M-token prices, or "free" for local models.
func formatModelCost(m factory.ModelInfo) string {
	if m.CostPer1MInputUSD == 0 && m.CostPer1MOutputUSD == 0 {
		return "free"
	}
	return fmt.Sprintf("$%.2f/$%.2f", m.CostPer1MInputUSD, m.CostPer1MOutputUSD)
}
