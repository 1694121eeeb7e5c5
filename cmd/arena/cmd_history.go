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
	"time"

	"github.com/spf13/cobra"
	"github.com/teradata-labs/arena/pkg/debate"
	"github.com/teradata-labs/arena/pkg/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse stored debate runs",
	Long: `List and inspect debates stored in the run history database.

Examples:
  # List recent runs
  arena history list

  # Show a run with its full transcript
  arena history show debate-abc123

  # Delete a run
  arena history delete debate-abc123`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored runs",
	Run:   runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run with its transcript",
	Args:  cobra.ExactArgs(1),
	Run:   runHistoryShow,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a stored run",
	Args:  cobra.ExactArgs(1),
	Run:   runHistoryDelete,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)

	historyListCmd.Flags().IntVar(&historyLimit, "limit", 10, "Maximum number of results")
}

// openHistoryStore opens the store at the configured path (the --db flag or
// history.path).
func openHistoryStore() *history.Store {
	store, err := history.NewStore(config.History.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to open history database: %v\n", err)
		os.Exit(1)
	}
	return store
}

func runHistoryList(cmd *cobra.Command, args []string) {
	store := openHistoryStore()
	defer store.Close()

	records, err := store.List(context.Background(), historyLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to list runs: %v\n", err)
		os.Exit(1)
	}

	if len(records) == 0 {
		fmt.Println("No stored runs. Start one with: arena run \"<topic>\"")
		return
	}

	fmt.Printf("%-20s %-19s %-6s %-10s %s\n", "RUN ID", "STARTED", "TURNS", "WINNER", "TOPIC")
	for _, rec := range records {
		winner := rec.Winner
		if winner == "" {
			winner = "-"
		}
		started := time.Unix(rec.StartedAt, 0).Format("2006-01-02 15:04:05")
		fmt.Printf("%-20s %-19s %-6d %-10s %s\n", rec.ID, started, rec.TurnsExecuted, winner, truncateTopic(rec.Topic, 50))
	}
}

func runHistoryShow(cmd *cobra.Command, args []string) {
	store := openHistoryStore()
	defer store.Close()

	rec, err := store.Get(context.Background(), args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Run: %s\n", rec.ID)
	fmt.Printf("Topic: %s\n", rec.Topic)
	fmt.Printf("Started: %s\n", time.Unix(rec.StartedAt, 0).Format(time.RFC3339))
	fmt.Printf("Duration: %s\n", time.Duration(rec.DurationMS)*time.Millisecond)
	fmt.Printf("Turns: %d/%d\n", rec.TurnsExecuted, rec.MaxTurns)
	if rec.NaturalCompletion {
		fmt.Println("Outcome: turn limit reached (no winner)")
	} else {
		winner := rec.Winner
		if winner == "" || winner == debate.WinnerDraw {
			winner = "Draw"
		} else {
			winner = debate.DisplayName(winner)
		}
		fmt.Printf("Outcome: %s — %s\n", winner, rec.EndReason)
	}
	fmt.Printf("Checkpoints: %d (A) / %d (B)\n", rec.CheckpointsA, rec.CheckpointsB)
	fmt.Printf("Exhausted argument lines: %d\n", rec.ExhaustedCount)
	fmt.Printf("Rule violations: %d\n", rec.TotalViolations)
	fmt.Printf("Tokens: %d in / %d out\n", rec.InputTokens, rec.OutputTokens)

	fmt.Println("\nTranscript:")
	fmt.Println("===========")
	lastTurn := 0
	for _, msg := range rec.Messages {
		if msg.Turn != lastTurn {
			fmt.Printf("\n--- Turn %d ---\n", msg.Turn)
			lastTurn = msg.Turn
		}
		fmt.Printf("%s: %s\n", debate.DisplayName(msg.Speaker), msg.Text)
	}
}

func runHistoryDelete(cmd *cobra.Command, args []string) {
	store := openHistoryStore()
	defer store.Close()

	if err := store.Delete(context.Background(), args[0]); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Deleted run %s\n", args[0])
}

// truncateTopic shortens a topic for the list view.
func truncateTopic(topic string, n int) string {
	runes := []rune(topic)
	if len(runes) <= n {
		return topic
	}
	return string(runes[:n-3]) + "..."
}
