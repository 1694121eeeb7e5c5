// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package debate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	llmtypes "github.com/teradata-labs/arena/pkg/llm/types"
)

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Debater A", DisplayName(DebaterA))
	assert.Equal(t, "Debater B", DisplayName(DebaterB))
	assert.Equal(t, "Judge", DisplayName("judge"))
}

func TestAgentSession_Run(t *testing.T) {
	provider := &mockProvider{responses: []string{"hello there"}}
	session := NewAgentSession(DebaterA, "You argue in favor.", provider)

	reply := session.Run(context.Background(), "present your opening")

	assert.Equal(t, "hello there", reply)
	messages := session.Messages()
	require.Len(t, messages, 3)
	assert.Equal(t, llmtypes.RoleSystem, messages[0].Role)
	assert.Equal(t, "You argue in favor.", messages[0].Content)
	assert.Equal(t, llmtypes.RoleUser, messages[1].Role)
	assert.Equal(t, "present your opening", messages[1].Content)
	assert.Equal(t, llmtypes.RoleAssistant, messages[2].Role)
	assert.Equal(t, "hello there", messages[2].Content)
}

func TestAgentSession_RunFailSoft(t *testing.T) {
	provider := &mockProvider{err: errors.New("model exploded")}
	session := NewAgentSession(DebaterA, "persona", provider)

	reply := session.Run(context.Background(), "go")

	assert.Equal(t, "[Error generating response: model exploded]", reply)

	// The failed input stays in history; no assistant entry was added.
	messages := session.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, llmtypes.RoleUser, messages[1].Role)

	// The session recovers once the model does.
	provider.err = nil
	provider.responses = []string{"recovered"}
	assert.Equal(t, "recovered", session.Run(context.Background(), "again"))
	assert.Len(t, session.Messages(), 4)
}

func TestAgentSession_Reset(t *testing.T) {
	provider := &mockProvider{responses: []string{"reply"}}
	session := NewAgentSession(DebaterA, "persona", provider)
	session.Run(context.Background(), "input")
	require.Len(t, session.Messages(), 3)

	session.Reset()

	messages := session.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, llmtypes.RoleSystem, messages[0].Role)
	assert.Equal(t, "persona", messages[0].Content)
	assert.Equal(t, 0, session.CheckpointCount())
}

func TestAgentSession_ResetWithRestrictions(t *testing.T) {
	provider := &mockProvider{}
	session := NewAgentSession(DebaterA, "BASE PERSONA", provider)
	session.Run(context.Background(), "input")

	session.ResetWithRestrictions("RESTRICTION BLOCK", "CONTEXT SUMMARY", "opponent's last message")

	messages := session.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, llmtypes.RoleSystem, messages[0].Role)

	// Persona order is context summary, base persona, restrictions.
	persona := messages[0].Content
	ctxIdx := strings.Index(persona, "CONTEXT SUMMARY")
	baseIdx := strings.Index(persona, "BASE PERSONA")
	restrIdx := strings.Index(persona, "RESTRICTION BLOCK")
	require.NotEqual(t, -1, ctxIdx)
	require.NotEqual(t, -1, baseIdx)
	require.NotEqual(t, -1, restrIdx)
	assert.Less(t, ctxIdx, baseIdx)
	assert.Less(t, baseIdx, restrIdx)

	assert.Equal(t, llmtypes.RoleUser, messages[1].Role)
	assert.Equal(t, "opponent's last message", messages[1].Content)
	assert.Equal(t, 1, session.CheckpointCount())
}

func TestAgentSession_ResetWithRestrictionsEmptyParts(t *testing.T) {
	provider := &mockProvider{}
	session := NewAgentSession(DebaterB, "BASE PERSONA", provider)

	session.ResetWithRestrictions("", "", "")

	messages := session.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "BASE PERSONA", messages[0].Content)
	assert.Equal(t, 1, session.CheckpointCount())

	session.ResetWithRestrictions("", "", "")
	assert.Equal(t, 2, session.CheckpointCount())
}

func TestAgentSession_TokenUsage(t *testing.T) {
	provider := &mockProvider{responses: []string{"r1", "r2"}}
	session := NewAgentSession(DebaterA, "persona", provider)

	session.Run(context.Background(), "first")
	session.Run(context.Background(), "second")

	in, out := session.TokenUsage()
	assert.Equal(t, 200, in)
	assert.Equal(t, 100, out)
}

func TestAgentSession_TokenUsageEstimatedWhenMissing(t *testing.T) {
	provider := &mockProvider{responses: []string{"some reply"}, noUsage: true}
	session := NewAgentSession(DebaterA, "persona", provider)

	session.Run(context.Background(), "input")

	in, out := session.TokenUsage()
	assert.Greater(t, in, 0)
	assert.Greater(t, out, 0)
}
