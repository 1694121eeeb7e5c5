// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package debate

import (
	"context"
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/teradata-labs/arena/pkg/observability"
	"go.uber.org/zap"
)

// judgeWindowEntries is how much recent transcript the judge reviews.
const judgeWindowEntries = 10

// CheckpointCoordinator pauses the debate every intervalTurns turns to
// consult the judge and the summarizer, apply restriction changes to both
// sessions, and enforce the termination policy.
type CheckpointCoordinator struct {
	judge          *Adjudicator
	analyzer       *Analyzer
	tracker        *RestrictionTracker
	sessionA       *AgentSession
	sessionB       *AgentSession
	intervalTurns  int
	violationLimit int

	restrictions string
	forcedEnd    bool
	endReason    string

	tracer observability.Tracer
	logger *zap.Logger
}

// NewCheckpointCoordinator creates a coordinator over the two sessions.
func NewCheckpointCoordinator(judge *Adjudicator, analyzer *Analyzer, sessionA, sessionB *AgentSession, intervalTurns, violationLimit int) *CheckpointCoordinator {
	return NewCheckpointCoordinatorWithObservability(judge, analyzer, sessionA, sessionB, intervalTurns, violationLimit, observability.NewNoOpTracer(), zap.NewNop())
}

// NewCheckpointCoordinatorWithObservability creates a coordinator with
// tracing and logging.
func NewCheckpointCoordinatorWithObservability(judge *Adjudicator, analyzer *Analyzer, sessionA, sessionB *AgentSession, intervalTurns, violationLimit int, tracer observability.Tracer, logger *zap.Logger) *CheckpointCoordinator {
	if intervalTurns < 1 {
		intervalTurns = 1
	}
	return &CheckpointCoordinator{
		judge:          judge,
		analyzer:       analyzer,
		tracker:        NewRestrictionTracker(),
		sessionA:       sessionA,
		sessionB:       sessionB,
		intervalTurns:  intervalTurns,
		violationLimit: violationLimit,
		tracer:         tracer,
		logger:         logger,
	}
}

// Due reports whether a checkpoint fires after the given turn.
func (c *CheckpointCoordinator) Due(turn int) bool {
	return turn%c.intervalTurns == 0
}

// Restrictions returns the currently active restriction text.
func (c *CheckpointCoordinator) Restrictions() string {
	return c.restrictions
}

// Summary returns a copy of the cumulative debate summary.
func (c *CheckpointCoordinator) Summary() Summary {
	return c.tracker.Summary()
}

// ForcedEnd reports whether the termination policy ended the run.
func (c *CheckpointCoordinator) ForcedEnd() bool {
	return c.forcedEnd
}

// EndReason returns the recorded termination reason, if any.
func (c *CheckpointCoordinator) EndReason() string {
	return c.endReason
}

// Run executes one checkpoint: judge first, then summarizer analysis,
// restriction application, and the termination policy. Returns true with a
// definitive verdict when the debate must end, false with nil otherwise.
func (c *CheckpointCoordinator) Run(ctx context.Context, turn int, topic string, transcript *Transcript) (bool, *Verdict) {
	ctx, span := c.tracer.StartSpan(ctx, observability.SpanDebateCheckpoint)
	defer c.tracer.EndSpan(span)
	defer c.tracer.RecordMetric(observability.MetricDebateCheckpoints, 1, nil)
	span.SetAttribute(observability.AttrCheckpointTurn, turn)

	c.logger.Info("Checkpoint starting",
		zap.Int("turn", turn),
		zap.Int("interval_turns", c.intervalTurns))

	// Judge first: an end ruling short-circuits the whole checkpoint.
	verdict, err := c.judge.Evaluate(ctx, transcript.Window(judgeWindowEntries), topic)
	if err != nil {
		c.logger.Warn("Judge evaluation failed, debate continues", zap.Error(err))
	} else if verdict.Decision == DecisionEnd {
		c.endReason = verdict.Reason
		span.SetAttribute(observability.AttrJudgeVerdict, verdict.Decision)
		span.SetAttribute(observability.AttrJudgeWinner, verdict.Winner)
		c.logger.Info("Judge ended the debate",
			zap.Int("turn", turn),
			zap.String("winner", verdict.Winner),
			zap.String("reason", verdict.Reason))
		return true, verdict
	}

	// Summarizer pass over a window covering everything since the previous
	// checkpoint plus one exchange of slack.
	window := transcript.Window(2*c.intervalTurns + 2)
	analysis, err := c.analyzer.Analyze(ctx, window, topic, c.restrictions)
	if err != nil {
		c.logger.Warn("Analysis failed, prior restrictions retained", zap.Error(err))
	} else {
		c.tracker.Update(analysis)
	}

	c.applyRestrictions(topic, transcript)

	// Termination policy: the summarizer's own recommendation, or the
	// cumulative violation budget.
	summary := c.tracker.Summary()
	span.SetAttribute(observability.AttrCheckpointViolations, summary.TotalViolations)

	shouldEnd := analysis != nil && analysis.ShouldEnd
	reason := ""
	if analysis != nil {
		reason = analysis.EndReason
	}
	if summary.TotalViolations >= c.violationLimit {
		shouldEnd = true
		reason = fmt.Sprintf("Debate terminated: %d rule violations detected (repeated exhausted arguments)", summary.TotalViolations)
		c.tracer.RecordMetric(observability.MetricDebateViolations, float64(summary.TotalViolations), nil)
	}
	if !shouldEnd {
		return false, nil
	}

	if reason == "" {
		reason = synthesizeEndReason(summary.ExhaustedArguments)
	}
	c.forcedEnd = true
	c.endReason = reason
	span.SetAttribute(observability.AttrEndReason, reason)
	c.logger.Info("Termination policy triggered, requesting forced verdict",
		zap.Int("turn", turn),
		zap.Int("total_violations", summary.TotalViolations),
		zap.String("reason", reason))

	forced := c.judge.ForcedVerdict(ctx, transcript.Window(judgeWindowEntries), topic, reason)
	return true, forced
}

// applyRestrictions diffs the freshly rendered restriction text against the
// active text and, on change, rebuilds both sessions. Each session resumes
// from the opponent's most recent message so turn-taking order survives the
// reset. Identical text applies nothing.
func (c *CheckpointCoordinator) applyRestrictions(topic string, transcript *Transcript) {
	next := c.tracker.RestrictionText()
	if next == c.restrictions {
		return
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(c.restrictions, next, false)
	c.logger.Debug("Restriction text changed",
		zap.String("diff", dmp.DiffPrettyText(diffs)))

	lastA, _ := transcript.LastBySpeaker(c.sessionA.Name())
	lastB, _ := transcript.LastBySpeaker(c.sessionB.Name())
	keyPoints := c.tracker.Summary().KeyPoints

	c.sessionA.ResetWithRestrictions(next, contextSummary(topic, StanceInFavor, keyPoints), lastB)
	c.sessionB.ResetWithRestrictions(next, contextSummary(topic, StanceAgainst, keyPoints), lastA)
	c.restrictions = next

	c.tracer.RecordMetric(observability.MetricDebateResets, 2, nil)
	c.logger.Info("Sessions rebuilt with updated restrictions",
		zap.Int("restriction_chars", len(next)),
		zap.Int("session_a_checkpoints", c.sessionA.CheckpointCount()),
		zap.Int("session_b_checkpoints", c.sessionB.CheckpointCount()))
}

// synthesizeEndReason builds a termination reason from the leading exhausted
// arguments when the analysis supplied none.
func synthesizeEndReason(exhausted []string) string {
	if len(exhausted) == 0 {
		return "Debate terminated: analysis recommended ending"
	}
	if len(exhausted) > 5 {
		exhausted = exhausted[:5]
	}
	return fmt.Sprintf("Debate terminated: argument lines exhausted (%s)", strings.Join(exhausted, "; "))
}
