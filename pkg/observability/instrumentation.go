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
package observability

// Standard span names for consistency across arena.
// Use these constants instead of hardcoding strings.
const (
	// LLM spans
	SpanLLMCompletion = "llm.completion"

	// Debate orchestration spans
	SpanDebateExecution  = "debate.run"
	SpanDebateTurn       = "debate.turn"
	SpanDebateCheckpoint = "debate.checkpoint"

	// Judge spans
	SpanJudgeEvaluation = "judge.evaluation"
	SpanJudgeVerdict    = "judge.final_verdict"

	// Analysis spans
	SpanAnalysisExtraction = "analysis.extraction"

	// History spans
	SpanHistorySave = "history.save"
)

// Standard metric names for consistency.
const (
	// LLM metrics
	MetricLLMCalls        = "llm.calls.total"
	MetricLLMLatency      = "llm.latency"
	MetricLLMTokensInput  = "llm.tokens.input"  // #nosec G101 -- not a credential, just metric name
	MetricLLMTokensOutput = "llm.tokens.output" // #nosec G101 -- not a credential, just metric name
	MetricLLMCost         = "llm.cost"
	MetricLLMErrors       = "llm.errors.total"

	// Debate metrics
	MetricDebateTurns       = "debate.turns.total"
	MetricDebateViolations  = "debate.violations.total"
	MetricDebateCheckpoints = "debate.checkpoints.total"
	MetricDebateResets      = "debate.session_resets.total"
	MetricDebateDuration    = "debate.duration"
)

// Standard attribute names for consistency.
// Use these constants for span and event attributes.
const (
	// Session/trace context
	AttrSessionID = "session.id"
	AttrTraceID   = "trace.id"
	AttrSpanID    = "span.id"

	// LLM attributes
	AttrLLMProvider    = "llm.provider"
	AttrLLMModel       = "llm.model"
	AttrLLMTemperature = "llm.temperature"
	AttrLLMMaxTokens   = "llm.max_tokens" // #nosec G101 -- not a credential, just attribute name

	// Debate attributes
	AttrDebateTopic    = "debate.topic"
	AttrDebateTurn     = "debate.turn"
	AttrDebateMaxTurns = "debate.max_turns"
	AttrDebateRole     = "debate.role"
	AttrEndReason      = "debate.end_reason"

	// Checkpoint attributes
	AttrCheckpointTurn       = "checkpoint.turn"
	AttrCheckpointViolations = "checkpoint.violations.total"

	// Judge attributes
	AttrJudgeVerdict = "judge.verdict"
	AttrJudgeWinner  = "judge.winner"

	// Error attributes
	AttrErrorType    = "error.type"
	AttrErrorMessage = "error.message"
	AttrErrorStack   = "error.stack"
)
