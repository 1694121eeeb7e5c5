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

// Package history persists finished debate runs to SQLite so they can be
// listed and replayed after the process exits.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/teradata-labs/arena/pkg/debate"

	_ "github.com/teradata-labs/arena/internal/sqlitedriver" // registers "sqlite3"
)

// Store provides persistent run storage using SQLite.
type Store struct {
	db     *sql.DB
	dbPath string
}

// RunRecord is one stored debate run. Messages is populated by Get only.
type RunRecord struct {
	ID                string
	Topic             string
	StartedAt         int64
	DurationMS        int64
	TurnsExecuted     int
	MaxTurns          int
	NaturalCompletion bool
	Winner            string
	EndReason         string
	CheckpointsA      int
	CheckpointsB      int
	ExhaustedCount    int
	TotalViolations   int
	InputTokens       int
	OutputTokens      int
	Messages          []MessageRecord
}

// MessageRecord is one transcript entry of a stored run.
type MessageRecord struct {
	Seq     int
	Turn    int
	Speaker string
	Text    string
}

// NewStore opens (creating if necessary) the run database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}

	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &Store{
		db:     db,
		dbPath: dbPath,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates database tables if they don't exist
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		topic TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		turns_executed INTEGER NOT NULL,
		max_turns INTEGER NOT NULL,
		natural_completion INTEGER NOT NULL,
		winner TEXT,
		end_reason TEXT,
		checkpoints_a INTEGER NOT NULL,
		checkpoints_b INTEGER NOT NULL,
		exhausted_count INTEGER NOT NULL,
		total_violations INTEGER NOT NULL,
		input_tokens INTEGER NOT NULL,
		output_tokens INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);

	CREATE TABLE IF NOT EXISTS run_messages (
		run_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		turn INTEGER NOT NULL,
		speaker TEXT NOT NULL,
		text TEXT NOT NULL,
		PRIMARY KEY (run_id, seq),
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_run_messages_run_id ON run_messages(run_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Save stores a finished run together with its full transcript.
func (s *Store) Save(ctx context.Context, result *debate.RunResult, maxTurns int) error {
	if result == nil {
		return fmt.Errorf("result cannot be nil")
	}
	if result.RunID == "" {
		return fmt.Errorf("run ID cannot be empty")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO runs (
			id, topic, started_at, duration_ms, turns_executed, max_turns,
			natural_completion, winner, end_reason, checkpoints_a, checkpoints_b,
			exhausted_count, total_violations, input_tokens, output_tokens
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.ExecContext(ctx, query,
		result.RunID, result.Topic, result.StartedAt.Unix(), result.Duration.Milliseconds(),
		result.TurnsExecuted, maxTurns, boolToInt(result.NaturalCompletion),
		result.Winner(), result.EndReason, result.CheckpointsA, result.CheckpointsB,
		result.ExhaustedCount, result.TotalViolations, result.InputTokens, result.OutputTokens)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	msgQuery := `
		INSERT INTO run_messages (run_id, seq, turn, speaker, text)
		VALUES (?, ?, ?, ?, ?)
	`
	for i, entry := range result.Transcript {
		if _, err := tx.ExecContext(ctx, msgQuery, result.RunID, i, entry.Turn, entry.Speaker, entry.Text); err != nil {
			return fmt.Errorf("failed to insert transcript entry %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// List returns the most recent runs, newest first, without transcripts.
// A limit of 0 or less returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `
		SELECT id, topic, started_at, duration_ms, turns_executed, max_turns,
		       natural_completion, winner, end_reason, checkpoints_a, checkpoints_b,
		       exhausted_count, total_violations, input_tokens, output_tokens
		FROM runs
		ORDER BY started_at DESC, id DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// Get returns one run with its transcript, or an error when the run is
// unknown.
func (s *Store) Get(ctx context.Context, runID string) (*RunRecord, error) {
	if runID == "" {
		return nil, fmt.Errorf("run ID cannot be empty")
	}

	query := `
		SELECT id, topic, started_at, duration_ms, turns_executed, max_turns,
		       natural_completion, winner, end_reason, checkpoints_a, checkpoints_b,
		       exhausted_count, total_violations, input_tokens, output_tokens
		FROM runs
		WHERE id = ?
	`
	row := s.db.QueryRowContext(ctx, query, runID)
	rec, err := scanRun(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("run not found: %s", runID)
		}
		return nil, err
	}

	msgQuery := `
		SELECT seq, turn, speaker, text
		FROM run_messages
		WHERE run_id = ?
		ORDER BY seq
	`
	rows, err := s.db.QueryContext(ctx, msgQuery, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transcript: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m MessageRecord
		if err := rows.Scan(&m.Seq, &m.Turn, &m.Speaker, &m.Text); err != nil {
			return nil, fmt.Errorf("failed to scan transcript entry: %w", err)
		}
		rec.Messages = append(rec.Messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete removes a run and its transcript.
func (s *Store) Delete(ctx context.Context, runID string) error {
	if runID == "" {
		return fmt.Errorf("run ID cannot be empty")
	}

	// ON DELETE CASCADE is not enforced without PRAGMA foreign_keys, so
	// delete the transcript explicitly.
	if _, err := s.db.ExecContext(ctx, `DELETE FROM run_messages WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("failed to delete transcript: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, runID)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run not found: %s", runID)
	}
	return nil
}

// Close closes the SQLite database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*RunRecord, error) {
	var rec RunRecord
	var natural int
	var winner, endReason sql.NullString

	err := row.Scan(
		&rec.ID, &rec.Topic, &rec.StartedAt, &rec.DurationMS,
		&rec.TurnsExecuted, &rec.MaxTurns, &natural, &winner, &endReason,
		&rec.CheckpointsA, &rec.CheckpointsB, &rec.ExhaustedCount,
		&rec.TotalViolations, &rec.InputTokens, &rec.OutputTokens,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	rec.NaturalCompletion = natural != 0
	rec.Winner = winner.String
	rec.EndReason = endReason.String
	return &rec, nil
}

// boolToInt converts bool to int for SQLite storage
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
