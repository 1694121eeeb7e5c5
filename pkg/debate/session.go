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

	"github.com/teradata-labs/arena/internal/tokens"
	llmtypes "github.com/teradata-labs/arena/pkg/llm/types"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Debater identifiers. These appear as verdict winners, refutation-map keys,
// and configuration keys.
const (
	DebaterA = "debater_a"
	DebaterB = "debater_b"
)

// DisplayName renders a debater identifier for transcript output,
// e.g. "debater_a" becomes "Debater A".
func DisplayName(id string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(id, "_", " "))
}

// AgentSession holds one debater's persona and ordered conversation memory.
// The first message is always the current persona as a system-role entry.
type AgentSession struct {
	name            string
	basePersona     string
	currentPersona  string
	messages        []llmtypes.Message
	checkpointCount int
	provider        llmtypes.LLMProvider
	counter         *tokens.Counter
	inputTokens     int
	outputTokens    int
	logger          *zap.Logger
}

// NewAgentSession creates a session seeded with the persona as its system
// message.
func NewAgentSession(name, persona string, provider llmtypes.LLMProvider) *AgentSession {
	return NewAgentSessionWithLogger(name, persona, provider, zap.NewNop())
}

// NewAgentSessionWithLogger creates a session with a custom logger.
func NewAgentSessionWithLogger(name, persona string, provider llmtypes.LLMProvider, logger *zap.Logger) *AgentSession {
	s := &AgentSession{
		name:           name,
		basePersona:    persona,
		currentPersona: persona,
		provider:       provider,
		counter:        tokens.GetCounter(),
		logger:         logger,
	}
	s.Reset()
	return s
}

// Name returns the session's display name as it appears in the transcript.
func (s *AgentSession) Name() string {
	return s.name
}

// CheckpointCount reports how many times the session has been rebuilt at a
// checkpoint.
func (s *AgentSession) CheckpointCount() int {
	return s.checkpointCount
}

// Messages returns a copy of the session's conversation memory.
func (s *AgentSession) Messages() []llmtypes.Message {
	out := make([]llmtypes.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// TokenUsage returns the accumulated input and output token counts.
func (s *AgentSession) TokenUsage() (inputTokens, outputTokens int) {
	return s.inputTokens, s.outputTokens
}

// Run sends the opponent's message to the model and returns the reply.
//
// The call is fail-soft: on model failure the returned text is an inline
// error marker that simply becomes part of the debate, and the session
// stays usable for the next turn. The failed input remains in history.
func (s *AgentSession) Run(ctx context.Context, input string) string {
	s.messages = append(s.messages, llmtypes.Message{
		Role:      llmtypes.RoleUser,
		Content:   input,
		Timestamp: time.Now(),
	})

	resp, err := s.provider.Chat(ctx, s.messages)
	if err != nil {
		s.logger.Warn("Model call failed, continuing with error marker",
			zap.String("session", s.name),
			zap.Error(err))
		return fmt.Sprintf("[Error generating response: %v]", err)
	}

	s.recordUsage(resp)
	s.messages = append(s.messages, llmtypes.Message{
		Role:      llmtypes.RoleAssistant,
		Content:   resp.Content,
		Timestamp: time.Now(),
	})
	return resp.Content
}

// recordUsage accumulates token counts, estimating with the local counter
// when the provider reports no usage. Must be called before the assistant
// reply is appended so the estimate covers exactly the request sent.
func (s *AgentSession) recordUsage(resp *llmtypes.LLMResponse) {
	in, out := resp.Usage.InputTokens, resp.Usage.OutputTokens
	if in == 0 {
		contents := make([]string, 0, len(s.messages))
		for _, m := range s.messages {
			contents = append(contents, m.Content)
		}
		in = s.counter.EstimateHistoryTokens(contents)
	}
	if out == 0 {
		out = s.counter.CountTokens(resp.Content)
	}
	s.inputTokens += in
	s.outputTokens += out
}

// Reset clears conversation memory back to the current persona alone.
func (s *AgentSession) Reset() {
	s.messages = []llmtypes.Message{{
		Role:      llmtypes.RoleSystem,
		Content:   s.currentPersona,
		Timestamp: time.Now(),
	}}
}

// ResetWithRestrictions rebuilds the persona and reinitializes memory.
//
// The new persona concatenates, in fixed order: the context summary, the
// immutable base persona, then the restriction text. When continuation is
// non-empty it is appended as a user-role entry so the session resumes
// mid-conversation instead of cold. Every call increments the checkpoint
// count.
func (s *AgentSession) ResetWithRestrictions(restrictions, contextSummary, continuation string) {
	var sb strings.Builder
	if contextSummary != "" {
		sb.WriteString(contextSummary)
		sb.WriteString("\n\n")
	}
	sb.WriteString(s.basePersona)
	if restrictions != "" {
		sb.WriteString("\n")
		sb.WriteString(restrictions)
	}
	s.currentPersona = sb.String()
	s.Reset()

	if continuation != "" {
		s.messages = append(s.messages, llmtypes.Message{
			Role:      llmtypes.RoleUser,
			Content:   continuation,
			Timestamp: time.Now(),
		})
	}
	s.checkpointCount++

	s.logger.Debug("Session rebuilt",
		zap.String("session", s.name),
		zap.Int("checkpoint_count", s.checkpointCount),
		zap.Int("persona_chars", len(s.currentPersona)),
		zap.Bool("has_continuation", continuation != ""))
}
