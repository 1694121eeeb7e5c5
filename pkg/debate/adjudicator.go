// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package debate

import (
	"context"
	"fmt"
	"strings"
	"time"

	llmtypes "github.com/teradata-labs/arena/pkg/llm/types"
	"github.com/teradata-labs/arena/pkg/observability"
	"go.uber.org/zap"
)

// Verdict decisions and the neutral winner.
const (
	DecisionContinue = "continue"
	DecisionEnd      = "end"
	WinnerDraw       = "draw"
)

// Verdict is the judge's ruling over a transcript window.
type Verdict struct {
	Decision string `json:"decision"`
	Winner   string `json:"winner"`
	Reason   string `json:"reason"`
}

// AdjudicatorConfig carries the judge's prompt overrides. Empty fields fall
// back to the built-in prompts.
type AdjudicatorConfig struct {
	Language            string
	SystemPrompt        string
	EvaluationPrompt    string
	ForcedVerdictPrompt string
}

// Adjudicator drives the judge model in normal and forced-verdict modes.
type Adjudicator struct {
	provider            llmtypes.LLMProvider
	language            string
	systemPrompt        string
	evaluationPrompt    string
	forcedVerdictPrompt string
	tracer              observability.Tracer
	logger              *zap.Logger
}

// NewAdjudicator creates a judge, filling unset prompts from the defaults.
func NewAdjudicator(provider llmtypes.LLMProvider, cfg AdjudicatorConfig) *Adjudicator {
	return NewAdjudicatorWithObservability(provider, cfg, observability.NewNoOpTracer(), zap.NewNop())
}

// NewAdjudicatorWithObservability creates a judge with tracing and logging.
func NewAdjudicatorWithObservability(provider llmtypes.LLMProvider, cfg AdjudicatorConfig, tracer observability.Tracer, logger *zap.Logger) *Adjudicator {
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultJudgePersona
	}
	if cfg.EvaluationPrompt == "" {
		cfg.EvaluationPrompt = DefaultEvaluationPrompt
	}
	if cfg.ForcedVerdictPrompt == "" {
		cfg.ForcedVerdictPrompt = DefaultForcedVerdictPrompt
	}
	return &Adjudicator{
		provider:            provider,
		language:            cfg.Language,
		systemPrompt:        cfg.SystemPrompt,
		evaluationPrompt:    cfg.EvaluationPrompt,
		forcedVerdictPrompt: cfg.ForcedVerdictPrompt,
		tracer:              tracer,
		logger:              logger,
	}
}

// Evaluate asks the judge whether the recent exchange warrants ending the
// debate. Returns a nil verdict with an error when the model fails or its
// response carries no extractable verdict; callers treat that as
// "continue".
func (j *Adjudicator) Evaluate(ctx context.Context, window []Entry, topic string) (*Verdict, error) {
	_, span := j.tracer.StartSpan(ctx, observability.SpanJudgeEvaluation)
	defer j.tracer.EndSpan(span)
	span.SetAttribute(observability.AttrDebateTopic, topic)

	prompt := renderTemplate(j.evaluationPrompt, map[string]string{
		"topic":      topic,
		"transcript": formatWindow(window),
		"language":   j.language,
	})

	verdict, err := j.requestVerdict(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttribute(observability.AttrJudgeVerdict, verdict.Decision)
	span.SetAttribute(observability.AttrJudgeWinner, verdict.Winner)
	j.logger.Debug("Judge evaluation completed",
		zap.String("decision", verdict.Decision),
		zap.String("winner", verdict.Winner))
	return verdict, nil
}

// ForcedVerdict demands a definitive ruling once termination has already
// been decided. It never returns nil: when the model fails or returns
// garbage, the verdict is synthesized as an ended draw carrying the known
// termination reason.
func (j *Adjudicator) ForcedVerdict(ctx context.Context, window []Entry, topic, reason string) *Verdict {
	_, span := j.tracer.StartSpan(ctx, observability.SpanJudgeVerdict)
	defer j.tracer.EndSpan(span)
	span.SetAttribute(observability.AttrDebateTopic, topic)
	span.SetAttribute(observability.AttrEndReason, reason)

	prompt := renderTemplate(j.forcedVerdictPrompt, map[string]string{
		"topic":      topic,
		"transcript": formatWindow(window),
		"reason":     reason,
		"language":   j.language,
	})

	verdict, err := j.requestVerdict(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		j.logger.Warn("Forced verdict unavailable from model, declaring a draw",
			zap.Error(err))
		return &Verdict{Decision: DecisionEnd, Winner: WinnerDraw, Reason: reason}
	}

	// Termination is already committed; the model cannot reopen the debate.
	verdict.Decision = DecisionEnd
	if verdict.Reason == "" {
		verdict.Reason = reason
	}

	span.SetAttribute(observability.AttrJudgeWinner, verdict.Winner)
	j.logger.Info("Forced verdict delivered",
		zap.String("winner", verdict.Winner),
		zap.String("reason", verdict.Reason))
	return verdict
}

// requestVerdict sends one judge prompt and parses the verdict JSON.
func (j *Adjudicator) requestVerdict(ctx context.Context, prompt string) (*Verdict, error) {
	messages := []llmtypes.Message{
		{Role: llmtypes.RoleSystem, Content: j.systemPrompt, Timestamp: time.Now()},
		{Role: llmtypes.RoleUser, Content: prompt, Timestamp: time.Now()},
	}

	resp, err := j.provider.Chat(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("judge model call failed: %w", err)
	}

	var verdict Verdict
	if err := extractJSON(resp.Content, &verdict); err != nil {
		return nil, fmt.Errorf("judge verdict parse failed: %w", err)
	}
	return normalizeVerdict(&verdict)
}

// normalizeVerdict lowercases and validates the model's decision and winner
// fields. An unknown decision is a parse failure; an unknown winner falls
// back to a draw.
func normalizeVerdict(v *Verdict) (*Verdict, error) {
	v.Decision = strings.ToLower(strings.TrimSpace(v.Decision))
	v.Winner = strings.ToLower(strings.TrimSpace(v.Winner))
	if v.Decision != DecisionContinue && v.Decision != DecisionEnd {
		return nil, fmt.Errorf("judge returned unknown decision %q", v.Decision)
	}
	if v.Winner != DebaterA && v.Winner != DebaterB {
		v.Winner = WinnerDraw
	}
	return v, nil
}
