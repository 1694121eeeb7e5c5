// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package debate

import (
	"context"
	"strings"

	llmtypes "github.com/teradata-labs/arena/pkg/llm/types"
)

// mockProvider replays queued responses and records every request it sees.
// Once the queue is drained the last response repeats; an empty queue yields
// a fixed placeholder.
type mockProvider struct {
	responses []string
	err       error
	noUsage   bool
	calls     [][]llmtypes.Message
	next      int
}

func (m *mockProvider) Chat(_ context.Context, messages []llmtypes.Message) (*llmtypes.LLMResponse, error) {
	copied := make([]llmtypes.Message, len(messages))
	copy(copied, messages)
	m.calls = append(m.calls, copied)

	if m.err != nil {
		return nil, m.err
	}

	content := "mock response"
	if len(m.responses) > 0 {
		if m.next < len(m.responses) {
			content = m.responses[m.next]
			m.next++
		} else {
			content = m.responses[len(m.responses)-1]
		}
	}

	resp := &llmtypes.LLMResponse{
		Content:    content,
		StopReason: "end_turn",
	}
	if !m.noUsage {
		resp.Usage = llmtypes.Usage{
			InputTokens:  100,
			OutputTokens: 50,
			TotalTokens:  150,
			CostUSD:      0.001,
		}
	}
	return resp, nil
}

func (m *mockProvider) Name() string  { return "mock-llm" }
func (m *mockProvider) Model() string { return "mock-model-v1" }

// lastCall returns the most recent request the mock received.
func (m *mockProvider) lastCall() []llmtypes.Message {
	if len(m.calls) == 0 {
		return nil
	}
	return m.calls[len(m.calls)-1]
}

// captureSink collects emitted lines for assertions.
type captureSink struct {
	lines []string
}

func (s *captureSink) Line(text string) {
	s.lines = append(s.lines, text)
}

func (s *captureSink) joined() string {
	return strings.Join(s.lines, "\n")
}
