// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package debate

import (
	"context"
	"fmt"
	"time"

	llmtypes "github.com/teradata-labs/arena/pkg/llm/types"
	"github.com/teradata-labs/arena/pkg/observability"
	"go.uber.org/zap"
)

// Analysis is the structured judgment the summarizer model returns for a
// transcript window. Field names mirror the JSON contract in the analysis
// prompt; missing fields keep their zero values.
type Analysis struct {
	DebaterAArguments  []string         `json:"debater_a_arguments"`
	DebaterBArguments  []string         `json:"debater_b_arguments"`
	RefutedArguments   RefutedArguments `json:"refuted_arguments"`
	StalemateTopics    []string         `json:"stalemate_topics"`
	ExhaustedLines     []string         `json:"exhausted_lines"`
	KeyPoints          []string         `json:"key_points"`
	ViolationsDetected int              `json:"violations_detected"`
	CurrentFocus       string           `json:"current_focus"`
	ShouldEnd          bool             `json:"should_end"`
	EndReason          string           `json:"end_reason"`
}

// RefutedArguments lists refuted argument descriptions per debater.
type RefutedArguments struct {
	DebaterA []string `json:"debater_a"`
	DebaterB []string `json:"debater_b"`
}

// Analyzer drives the summarizer model over transcript windows.
type Analyzer struct {
	provider llmtypes.LLMProvider
	language string
	tracer   observability.Tracer
	logger   *zap.Logger
}

// NewAnalyzer creates an analyzer whose descriptions are written in the
// given language.
func NewAnalyzer(provider llmtypes.LLMProvider, language string) *Analyzer {
	return NewAnalyzerWithObservability(provider, language, observability.NewNoOpTracer(), zap.NewNop())
}

// NewAnalyzerWithObservability creates an analyzer with tracing and logging.
func NewAnalyzerWithObservability(provider llmtypes.LLMProvider, language string, tracer observability.Tracer, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		provider: provider,
		language: language,
		tracer:   tracer,
		logger:   logger,
	}
}

// Analyze asks the summarizer model for a structured judgment of the window.
//
// When previous restrictions exist they are framed ahead of the transcript
// so the model can detect repeat offenses. Returns an error when the model
// call fails or no JSON can be extracted; the caller keeps its prior
// cumulative state and treats the checkpoint as "continue".
func (a *Analyzer) Analyze(ctx context.Context, window []Entry, topic, previousRestrictions string) (*Analysis, error) {
	_, span := a.tracer.StartSpan(ctx, observability.SpanAnalysisExtraction)
	defer a.tracer.EndSpan(span)
	span.SetAttribute(observability.AttrDebateTopic, topic)
	span.SetAttribute("analysis.window_entries", len(window))

	transcript := formatWindow(window)
	if previousRestrictions != "" {
		transcript = fmt.Sprintf("[Previous restrictions given to debaters:\n%s]\n\n%s", previousRestrictions, transcript)
	}

	prompt := renderTemplate(analysisPrompt, map[string]string{
		"topic":      topic,
		"transcript": transcript,
		"language":   a.language,
	})

	messages := []llmtypes.Message{
		{Role: llmtypes.RoleSystem, Content: analysisSystemPrompt, Timestamp: time.Now()},
		{Role: llmtypes.RoleUser, Content: prompt, Timestamp: time.Now()},
	}

	resp, err := a.provider.Chat(ctx, messages)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("analysis model call failed: %w", err)
	}

	var analysis Analysis
	if err := extractJSON(resp.Content, &analysis); err != nil {
		span.RecordError(err)
		a.logger.Warn("Analysis response was not parseable, prior state retained",
			zap.Error(err))
		return nil, fmt.Errorf("analysis parse failed: %w", err)
	}

	span.SetAttribute("analysis.violations_detected", analysis.ViolationsDetected)
	span.SetAttribute("analysis.should_end", analysis.ShouldEnd)
	a.logger.Debug("Analysis completed",
		zap.Int("exhausted_lines", len(analysis.ExhaustedLines)),
		zap.Int("violations_detected", analysis.ViolationsDetected),
		zap.Bool("should_end", analysis.ShouldEnd),
		zap.String("current_focus", analysis.CurrentFocus))

	return &analysis, nil
}
