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
package llm

import (
	"context"
	"fmt"
	"time"

	llmtypes "github.com/teradata-labs/arena/pkg/llm/types"
	"github.com/teradata-labs/arena/pkg/observability"
)

// InstrumentedProvider wraps any LLMProvider with observability instrumentation.
// It captures detailed traces and metrics for every LLM call, including:
// - Request details (message counts per role)
// - Token usage and cost tracking
// - Latency measurements
// - Error tracking
//
// This wrapper is transparent and can wrap any LLMProvider implementation.
// Metrics are labeled with the debate role (debater_a, debater_b, judge,
// summarizer) so cost and latency can be attributed per participant.
type InstrumentedProvider struct {
	// provider is the underlying LLM provider
	provider llmtypes.LLMProvider

	// tracer is used for creating spans
	tracer observability.Tracer

	// role identifies the debate participant this provider serves
	role string
}

// NewInstrumentedProvider creates a new instrumented LLM provider for a debate role.
func NewInstrumentedProvider(provider llmtypes.LLMProvider, tracer observability.Tracer, role string) *InstrumentedProvider {
	return &InstrumentedProvider{
		provider: provider,
		tracer:   tracer,
		role:     role,
	}
}

// Name returns the underlying provider name.
func (p *InstrumentedProvider) Name() string {
	return p.provider.Name()
}

// Model returns the underlying model identifier.
func (p *InstrumentedProvider) Model() string {
	return p.provider.Model()
}

// metricLabels returns the standard labels attached to every metric.
func (p *InstrumentedProvider) metricLabels() map[string]string {
	return map[string]string{
		observability.AttrLLMProvider: p.provider.Name(),
		observability.AttrLLMModel:    p.provider.Model(),
		observability.AttrDebateRole:  p.role,
	}
}

// Chat sends a conversation to the LLM and captures detailed observability data.
func (p *InstrumentedProvider) Chat(ctx context.Context, messages []llmtypes.Message) (*llmtypes.LLMResponse, error) {
	// Start span
	_, span := p.tracer.StartSpan(ctx, observability.SpanLLMCompletion)
	defer p.tracer.EndSpan(span)

	// Start timing
	start := time.Now()

	// Set span attributes - basic info
	span.SetAttribute(observability.AttrLLMProvider, p.provider.Name())
	span.SetAttribute(observability.AttrLLMModel, p.provider.Model())
	span.SetAttribute(observability.AttrDebateRole, p.role)

	// Capture request details
	span.SetAttribute("llm.messages.count", len(messages))

	// Record event: LLM call started
	span.AddEvent("llm.call.started", map[string]interface{}{
		"provider": p.provider.Name(),
		"model":    p.provider.Model(),
		"role":     p.role,
		"messages": len(messages),
	})

	// Call the underlying provider (use original ctx, not spanCtx)
	resp, err := p.provider.Chat(ctx, messages)

	// Calculate duration
	duration := time.Since(start)

	// Handle error case
	if err != nil {
		span.Status = observability.Status{
			Code:    observability.StatusError,
			Message: err.Error(),
		}
		span.SetAttribute(observability.AttrErrorType, fmt.Sprintf("%T", err))
		span.SetAttribute(observability.AttrErrorMessage, err.Error())

		// Record error event
		span.AddEvent("llm.call.failed", map[string]interface{}{
			"error":       err.Error(),
			"duration_ms": duration.Milliseconds(),
		})

		// Emit error metric
		errLabels := p.metricLabels()
		errLabels[observability.AttrErrorType] = fmt.Sprintf("%T", err)
		p.tracer.RecordMetric(observability.MetricLLMErrors, 1, errLabels)

		return nil, err
	}

	// Success - capture response details
	span.Status = observability.Status{
		Code:    observability.StatusOK,
		Message: "",
	}

	// Capture usage metrics
	span.SetAttribute("llm.tokens.input", resp.Usage.InputTokens)
	span.SetAttribute("llm.tokens.output", resp.Usage.OutputTokens)
	span.SetAttribute("llm.tokens.total", resp.Usage.TotalTokens)
	span.SetAttribute("llm.cost.usd", resp.Usage.CostUSD)
	span.SetAttribute("llm.stop_reason", resp.StopReason)
	span.SetAttribute("llm.duration_ms", duration.Milliseconds())

	// Capture content length (for analysis)
	span.SetAttribute("llm.content.length", len(resp.Content))

	// Record success event
	span.AddEvent("llm.call.completed", map[string]interface{}{
		"duration_ms":   duration.Milliseconds(),
		"input_tokens":  resp.Usage.InputTokens,
		"output_tokens": resp.Usage.OutputTokens,
		"cost_usd":      resp.Usage.CostUSD,
		"stop_reason":   resp.StopReason,
	})

	// Emit metrics
	p.tracer.RecordMetric(observability.MetricLLMCalls, 1, p.metricLabels())
	p.tracer.RecordMetric(observability.MetricLLMLatency, float64(duration.Milliseconds()), p.metricLabels())
	p.tracer.RecordMetric(observability.MetricLLMTokensInput, float64(resp.Usage.InputTokens), p.metricLabels())
	p.tracer.RecordMetric(observability.MetricLLMTokensOutput, float64(resp.Usage.OutputTokens), p.metricLabels())
	p.tracer.RecordMetric(observability.MetricLLMCost, resp.Usage.CostUSD, p.metricLabels())

	return resp, nil
}

// Ensure InstrumentedProvider implements LLMProvider interface
var _ llmtypes.LLMProvider = (*InstrumentedProvider)(nil)
