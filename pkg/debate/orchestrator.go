// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package debate implements the adversarial debate engine. Two model-backed
// debaters argue a topic in strict alternation while a judge and a summarizer
// review the exchange at fixed checkpoints, tightening argument restrictions
// and ending the run when the termination policy fires.
package debate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/teradata-labs/arena/pkg/observability"
	"go.uber.org/zap"
)

// RunConfig holds per-run debate parameters.
type RunConfig struct {
	// Topic is the proposition under debate.
	Topic string

	// MaxTurns caps the number of full turns (one A plus one B response).
	MaxTurns int

	// TurnDelay is an optional pause between the two responses of a turn.
	// It exists for pacing live output and rate limiting only; zero
	// disables it.
	TurnDelay time.Duration
}

// RunResult captures everything a finished debate produced.
type RunResult struct {
	RunID             string
	Topic             string
	TurnsExecuted     int
	NaturalCompletion bool
	Verdict           *Verdict
	EndReason         string
	CheckpointsA      int
	CheckpointsB      int
	ExhaustedCount    int
	TotalViolations   int
	InputTokens       int
	OutputTokens      int
	StartedAt         time.Time
	Duration          time.Duration
	Transcript        []Entry
}

// Winner returns the verdict winner, or empty when the debate ended
// naturally without one.
func (r *RunResult) Winner() string {
	if r.Verdict == nil {
		return ""
	}
	return r.Verdict.Winner
}

// TurnOrchestrator drives the alternating turn loop between two debater
// sessions and hands control to the checkpoint coordinator on schedule.
type TurnOrchestrator struct {
	sessionA    *AgentSession
	sessionB    *AgentSession
	coordinator *CheckpointCoordinator
	sink        Sink
	tracer      observability.Tracer
	logger      *zap.Logger
}

// NewTurnOrchestrator creates an orchestrator over the two sessions. A nil
// coordinator disables checkpoints entirely; a nil sink discards live output.
func NewTurnOrchestrator(sessionA, sessionB *AgentSession, coordinator *CheckpointCoordinator, sink Sink) *TurnOrchestrator {
	return NewTurnOrchestratorWithObservability(sessionA, sessionB, coordinator, sink, observability.NewNoOpTracer(), zap.NewNop())
}

// NewTurnOrchestratorWithObservability creates an orchestrator with tracing
// and logging.
func NewTurnOrchestratorWithObservability(sessionA, sessionB *AgentSession, coordinator *CheckpointCoordinator, sink Sink, tracer observability.Tracer, logger *zap.Logger) *TurnOrchestrator {
	return &TurnOrchestrator{
		sessionA:    sessionA,
		sessionB:    sessionB,
		coordinator: coordinator,
		sink:        sink,
		tracer:      tracer,
		logger:      logger,
	}
}

// Execute runs the debate to completion and returns the result. The loop
// never aborts on a failed model call; only context cancellation or invalid
// configuration produce an error.
func (o *TurnOrchestrator) Execute(ctx context.Context, cfg RunConfig) (*RunResult, error) {
	if cfg.Topic == "" {
		return nil, fmt.Errorf("debate requires a topic")
	}
	if cfg.MaxTurns < 1 {
		return nil, fmt.Errorf("debate requires at least 1 turn, got %d", cfg.MaxTurns)
	}

	runID := fmt.Sprintf("debate-%s", uuid.New().String()[:8])

	ctx, span := o.tracer.StartSpan(ctx, observability.SpanDebateExecution)
	defer o.tracer.EndSpan(span)
	span.SetAttribute("run.id", runID)
	span.SetAttribute(observability.AttrDebateTopic, cfg.Topic)
	span.SetAttribute(observability.AttrDebateMaxTurns, cfg.MaxTurns)
	span.SetAttribute("debate.checkpoints_enabled", o.coordinator != nil)

	o.logger.Info("Starting debate execution",
		zap.String("run_id", runID),
		zap.String("topic", cfg.Topic),
		zap.Int("max_turns", cfg.MaxTurns),
		zap.Bool("checkpoints_enabled", o.coordinator != nil))

	result := &RunResult{
		RunID:     runID,
		Topic:     cfg.Topic,
		StartedAt: time.Now(),
	}
	transcript := NewTranscript()

	o.emit(fmt.Sprintf("\n=== STARTING DEBATE: %s ===\n", cfg.Topic))

	lastMessage := openingMessage(cfg.Topic)
	for turn := 1; turn <= cfg.MaxTurns; turn++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("debate canceled at turn %d: %w", turn, err)
		}

		turnCtx, turnSpan := o.tracer.StartSpan(ctx, fmt.Sprintf("%s.%d", observability.SpanDebateTurn, turn))
		turnSpan.SetAttribute(observability.AttrDebateTurn, turn)
		turnSpan.SetAttribute(observability.AttrDebateMaxTurns, cfg.MaxTurns)

		o.emit(fmt.Sprintf("\n--- Turn %d/%d ---", turn, cfg.MaxTurns))
		o.logger.Info("Starting debate turn",
			zap.String("run_id", runID),
			zap.Int("turn", turn),
			zap.Int("max_turns", cfg.MaxTurns))

		responseA := o.sessionA.Run(turnCtx, lastMessage)
		o.emit(fmt.Sprintf("%s: %s", DisplayName(o.sessionA.Name()), responseA))
		transcript.Append(o.sessionA.Name(), responseA, turn)
		lastMessage = responseA

		if err := o.pause(turnCtx, cfg.TurnDelay); err != nil {
			o.tracer.EndSpan(turnSpan)
			return nil, fmt.Errorf("debate canceled at turn %d: %w", turn, err)
		}

		responseB := o.sessionB.Run(turnCtx, lastMessage)
		o.emit(fmt.Sprintf("%s: %s", DisplayName(o.sessionB.Name()), responseB))
		transcript.Append(o.sessionB.Name(), responseB, turn)
		lastMessage = responseB

		result.TurnsExecuted = turn
		o.tracer.EndSpan(turnSpan)

		if o.coordinator != nil && o.coordinator.Due(turn) {
			o.emit(fmt.Sprintf("\n[Checkpoint] Reviewing debate at turn %d...", turn))
			ended, verdict := o.coordinator.Run(ctx, turn, cfg.Topic, transcript)
			if ended {
				if verdict.Reason == "" {
					verdict.Reason = "Debate ended by judge ruling"
				}
				result.Verdict = verdict
				result.EndReason = verdict.Reason
				o.emit(fmt.Sprintf("\n[Judge] The debate ends. Winner: %s", winnerLabel(verdict.Winner)))
				o.emit(fmt.Sprintf("[Judge] Reason: %s", verdict.Reason))
				break
			}
		}
	}

	if result.Verdict == nil {
		result.NaturalCompletion = true
		result.EndReason = fmt.Sprintf("Turn limit reached (%d turns)", cfg.MaxTurns)
	}

	o.emit("\n=== DEBATE FINISHED ===")
	o.finishResult(result, transcript)
	o.emitStatistics(result, cfg)

	span.SetAttribute("debate.turns_executed", result.TurnsExecuted)
	span.SetAttribute("debate.natural_completion", result.NaturalCompletion)
	span.SetAttribute(observability.AttrEndReason, result.EndReason)
	o.tracer.RecordMetric(observability.MetricDebateTurns, float64(result.TurnsExecuted), nil)
	o.tracer.RecordMetric(observability.MetricDebateDuration, result.Duration.Seconds(), nil)

	o.logger.Info("Debate completed",
		zap.String("run_id", runID),
		zap.Int("turns_executed", result.TurnsExecuted),
		zap.Bool("natural_completion", result.NaturalCompletion),
		zap.String("end_reason", result.EndReason),
		zap.Duration("duration", result.Duration))

	return result, nil
}

// finishResult fills the aggregate fields once the loop is over.
func (o *TurnOrchestrator) finishResult(result *RunResult, transcript *Transcript) {
	result.Duration = time.Since(result.StartedAt)
	result.Transcript = transcript.Entries()
	result.CheckpointsA = o.sessionA.CheckpointCount()
	result.CheckpointsB = o.sessionB.CheckpointCount()

	inA, outA := o.sessionA.TokenUsage()
	inB, outB := o.sessionB.TokenUsage()
	result.InputTokens = inA + inB
	result.OutputTokens = outA + outB

	if o.coordinator != nil {
		summary := o.coordinator.Summary()
		result.ExhaustedCount = len(summary.ExhaustedArguments)
		result.TotalViolations = summary.TotalViolations
	}
}

func (o *TurnOrchestrator) emitStatistics(result *RunResult, cfg RunConfig) {
	o.emit("\n=== FINAL STATISTICS ===")
	o.emit(fmt.Sprintf("Turns executed: %d/%d", result.TurnsExecuted, cfg.MaxTurns))
	o.emit(fmt.Sprintf("%s checkpoints: %d", DisplayName(o.sessionA.Name()), result.CheckpointsA))
	o.emit(fmt.Sprintf("%s checkpoints: %d", DisplayName(o.sessionB.Name()), result.CheckpointsB))
	o.emit(fmt.Sprintf("Exhausted argument lines: %d", result.ExhaustedCount))
	o.emit(fmt.Sprintf("Rule violations: %d", result.TotalViolations))
	o.emit(fmt.Sprintf("Tokens: %d in / %d out", result.InputTokens, result.OutputTokens))
	o.emit(fmt.Sprintf("Duration: %s", result.Duration.Round(time.Millisecond)))
	if result.Verdict != nil {
		o.emit(fmt.Sprintf("Winner: %s", winnerLabel(result.Verdict.Winner)))
	}
	o.emit(fmt.Sprintf("End reason: %s", result.EndReason))
}

// pause sleeps for the configured delay, waking early on cancellation.
func (o *TurnOrchestrator) pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func (o *TurnOrchestrator) emit(line string) {
	if o.sink != nil {
		o.sink.Line(line)
	}
}

// winnerLabel renders a winner identifier for live output.
func winnerLabel(winner string) string {
	switch winner {
	case "", WinnerDraw:
		return "Draw"
	default:
		return DisplayName(winner)
	}
}
