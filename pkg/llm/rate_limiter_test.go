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
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func TestNewRateLimiter(t *testing.T) {
	config := DefaultRateLimiterConfig()
	config.Logger = zaptest.NewLogger(t)

	rl := NewRateLimiter(config)
	require.NotNil(t, rl)
	defer rl.Close()

	assert.Equal(t, config.RequestsPerSecond, rl.refillRate)
	assert.Equal(t, float64(config.BurstCapacity), rl.maxTokens)
	assert.Equal(t, float64(config.BurstCapacity), rl.tokens)
}

func TestRateLimiter_Do_Success(t *testing.T) {
	config := DefaultRateLimiterConfig()
	config.Logger = zaptest.NewLogger(t)
	config.RequestsPerSecond = 10 // Fast for testing

	rl := NewRateLimiter(config)
	defer rl.Close()

	callCount := 0
	result, err := rl.Do(context.Background(), func(ctx context.Context) (interface{}, error) {
		callCount++
		return "success", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "success", result)
	assert.Equal(t, 1, callCount)

	metrics := rl.GetMetrics()
	assert.Equal(t, int64(1), metrics.TotalRequests)
	assert.Equal(t, int64(0), metrics.ThrottledRequests)
}

func TestRateLimiter_Do_ThrottlingRetry(t *testing.T) {
	config := DefaultRateLimiterConfig()
	config.Logger = zaptest.NewLogger(t)
	config.RequestsPerSecond = 10
	config.MaxRetries = 3
	config.RetryBackoff = 10 * time.Millisecond // Fast for testing

	rl := NewRateLimiter(config)
	defer rl.Close()

	callCount := 0
	result, err := rl.Do(context.Background(), func(ctx context.Context) (interface{}, error) {
		callCount++
		if callCount < 3 {
			return nil, errors.New("ThrottlingException: Too many tokens")
		}
		return "success", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "success", result)
	assert.Equal(t, 3, callCount) // Called 3 times (2 failures + 1 success)

	metrics := rl.GetMetrics()
	assert.Equal(t, int64(3), metrics.TotalRequests)
	assert.Equal(t, int64(2), metrics.ThrottledRequests)
}

func TestRateLimiter_Do_ThrottlingExhausted(t *testing.T) {
	config := DefaultRateLimiterConfig()
	config.Logger = zaptest.NewLogger(t)
	config.RequestsPerSecond = 10
	config.MaxRetries = 2
	config.RetryBackoff = 10 * time.Millisecond

	rl := NewRateLimiter(config)
	defer rl.Close()

	callCount := 0
	result, err := rl.Do(context.Background(), func(ctx context.Context) (interface{}, error) {
		callCount++
		return nil, errors.New("HTTP 429: rate limit exceeded")
	})

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "failed after 3 retries")
	assert.Equal(t, 3, callCount) // MaxRetries=2 means 3 total attempts

	metrics := rl.GetMetrics()
	assert.Equal(t, int64(3), metrics.TotalRequests)
	assert.Equal(t, int64(3), metrics.ThrottledRequests)
}

func TestRateLimiter_Do_Disabled(t *testing.T) {
	config := DefaultRateLimiterConfig()
	config.Enabled = false
	config.Logger = zaptest.NewLogger(t)

	rl := NewRateLimiter(config)
	defer rl.Close()

	callCount := 0
	result, err := rl.Do(context.Background(), func(ctx context.Context) (interface{}, error) {
		callCount++
		return "direct", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "direct", result)
	assert.Equal(t, 1, callCount)

	// Metrics should not be updated when disabled
	metrics := rl.GetMetrics()
	assert.Equal(t, int64(0), metrics.TotalRequests)
}

func TestRateLimiter_Do_ContextCancellation(t *testing.T) {
	config := DefaultRateLimiterConfig()
	config.Logger = zaptest.NewLogger(t)
	config.RequestsPerSecond = 1 // Slow to test cancellation

	rl := NewRateLimiter(config)
	defer rl.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	result, err := rl.Do(ctx, func(ctx context.Context) (interface{}, error) {
		return "should not execute", nil
	})

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, context.Canceled, err)
}

func TestRateLimiter_ConcurrentRequests(t *testing.T) {
	config := DefaultRateLimiterConfig()
	config.Logger = zaptest.NewLogger(t)
	config.RequestsPerSecond = 20 // Fast for testing
	config.BurstCapacity = 20

	rl := NewRateLimiter(config)
	defer rl.Close()

	const numRequests = 50
	var successCount int64
	var wg sync.WaitGroup

	for i := 0; i < numRequests; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			result, err := rl.Do(context.Background(), func(ctx context.Context) (interface{}, error) {
				return fmt.Sprintf("request-%d", id), nil
			})

			if err == nil && result != nil {
				atomic.AddInt64(&successCount, 1)
			}
		}(i)
	}

	wg.Wait()

	assert.Equal(t, int64(numRequests), successCount)

	metrics := rl.GetMetrics()
	assert.Equal(t, int64(numRequests), metrics.TotalRequests)
	assert.Equal(t, int64(0), metrics.DroppedRequests)
}

func TestRateLimiter_TokenBucketRefill(t *testing.T) {
	config := DefaultRateLimiterConfig()
	config.Logger = zaptest.NewLogger(t)
	config.RequestsPerSecond = 10 // 10 requests/sec = 1 token every 100ms
	config.BurstCapacity = 2

	rl := NewRateLimiter(config)
	defer rl.Close()

	// Consume burst capacity (2 tokens)
	for i := 0; i < 2; i++ {
		_, err := rl.Do(context.Background(), func(ctx context.Context) (interface{}, error) {
			return "ok", nil
		})
		require.NoError(t, err)
	}

	// Tokens exhausted - next request should wait
	start := time.Now()
	_, err := rl.Do(context.Background(), func(ctx context.Context) (interface{}, error) {
		return "ok", nil
	})
	elapsed := time.Since(start)

	require.NoError(t, err)
	// Should have waited at least 100ms for token refill
	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
}

func TestRateLimiter_RecordTokenUsage(t *testing.T) {
	config := DefaultRateLimiterConfig()
	config.Logger = zaptest.NewLogger(t)

	rl := NewRateLimiter(config)
	defer rl.Close()

	// Record token usage
	rl.RecordTokenUsage(1000)
	rl.RecordTokenUsage(2000)
	rl.RecordTokenUsage(3000)

	// Check total
	total := rl.GetTokenUsageLastMinute()
	assert.Equal(t, int64(6000), total)

	// Check metrics
	metrics := rl.GetMetrics()
	assert.Equal(t, int64(6000), metrics.TokensConsumed)
}

func TestRateLimiter_TokenUsageWindow(t *testing.T) {
	config := DefaultRateLimiterConfig()
	config.Logger = zaptest.NewLogger(t)

	rl := NewRateLimiter(config)
	defer rl.Close()

	// Record token usage with old timestamp (simulate old entry)
	rl.tokenWindowMu.Lock()
	rl.tokenWindow = append(rl.tokenWindow, tokenUsage{
		timestamp: time.Now().Add(-2 * time.Minute), // Older than 1 minute
		tokens:    5000,
	})
	rl.tokenWindowMu.Unlock()

	// Record recent usage
	rl.RecordTokenUsage(1000)

	// Should only count recent usage (old entry pruned)
	total := rl.GetTokenUsageLastMinute()
	assert.Equal(t, int64(1000), total)
}

func TestIsThrottlingError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "HTTP 429 error",
			err:      errors.New("HTTP 429: Too Many Requests"),
			expected: true,
		},
		{
			name:     "ThrottlingException",
			err:      errors.New("ThrottlingException: Too many tokens"),
			expected: true,
		},
		{
			name:     "TooManyRequests",
			err:      errors.New("TooManyRequests: rate limit exceeded"),
			expected: true,
		},
		{
			name:     "rate limit keyword",
			err:      errors.New("API rate limit exceeded"),
			expected: true,
		},
		{
			name:     "throttle keyword",
			err:      errors.New("Request throttled by provider"),
			expected: true,
		},
		{
			name:     "other error",
			err:      errors.New("connection timeout"),
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := isThrottlingError(tt.err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestRateLimiter_MinDelay(t *testing.T) {
	config := DefaultRateLimiterConfig()
	config.Logger = zaptest.NewLogger(t)
	config.RequestsPerSecond = 100           // Very fast
	config.MinDelay = 100 * time.Millisecond // Enforce minimum delay

	rl := NewRateLimiter(config)
	defer rl.Close()

	start := time.Now()

	// Execute 2 requests
	for i := 0; i < 2; i++ {
		_, err := rl.Do(context.Background(), func(ctx context.Context) (interface{}, error) {
			return "ok", nil
		})
		require.NoError(t, err)
	}

	elapsed := time.Since(start)

	// Should have enforced minimum delay between requests
	// 2 requests = 1 delay period (200ms minimum)
	assert.GreaterOrEqual(t, elapsed, 200*time.Millisecond)
}

func TestRateLimiter_ExponentialBackoff(t *testing.T) {
	config := DefaultRateLimiterConfig()
	config.Logger = zaptest.NewLogger(t)
	config.MaxRetries = 3
	config.RetryBackoff = 50 * time.Millisecond

	rl := NewRateLimiter(config)
	defer rl.Close()

	callTimes := make([]time.Time, 0)
	_, err := rl.Do(context.Background(), func(ctx context.Context) (interface{}, error) {
		callTimes = append(callTimes, time.Now())
		return nil, errors.New("ThrottlingException")
	})

	require.Error(t, err)
	require.Len(t, callTimes, 4) // 1 initial + 3 retries

	// Verify exponential backoff: ~50ms, ~100ms, ~200ms
	delay1 := callTimes[1].Sub(callTimes[0])
	delay2 := callTimes[2].Sub(callTimes[1])
	delay3 := callTimes[3].Sub(callTimes[2])

	assert.GreaterOrEqual(t, delay1, 50*time.Millisecond)
	assert.GreaterOrEqual(t, delay2, 100*time.Millisecond)
	assert.GreaterOrEqual(t, delay3, 200*time.Millisecond)

	// Verify exponential growth
	assert.Greater(t, delay2, delay1)
	assert.Greater(t, delay3, delay2)
}

func TestRateLimiter_RaceConditions(t *testing.T) {
	// This test is designed to catch race conditions with -race detector
	config := DefaultRateLimiterConfig()
	config.Logger = zaptest.NewLogger(t)
	config.RequestsPerSecond = 50

	rl := NewRateLimiter(config)
	defer rl.Close()

	var wg sync.WaitGroup
	const numGoroutines = 20
	const requestsPerGoroutine = 10

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for j := 0; j < requestsPerGoroutine; j++ {
				_, _ = rl.Do(context.Background(), func(ctx context.Context) (interface{}, error) {
					return "ok", nil
				})

				// Record token usage
				rl.RecordTokenUsage(int64(100 + j))

				// Get metrics
				_ = rl.GetMetrics()

				// Get token usage
				_ = rl.GetTokenUsageLastMinute()
			}
		}()
	}

	wg.Wait()
}

func TestRateLimiter_Close(t *testing.T) {
	config := DefaultRateLimiterConfig()
	config.Logger = zaptest.NewLogger(t)

	rl := NewRateLimiter(config)

	// Close should complete without error
	err := rl.Close()
	assert.NoError(t, err)

	// Subsequent calls should fail gracefully
	result, err := rl.Do(context.Background(), func(ctx context.Context) (interface{}, error) {
		return "should not execute", nil
	})

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "stopped")
}

func BenchmarkRateLimiter_Do(b *testing.B) {
	config := DefaultRateLimiterConfig()
	config.Logger = zap.NewNop()
	config.RequestsPerSecond = 1000 // Very fast for benchmarking
	config.MinDelay = 0

	rl := NewRateLimiter(config)
	defer rl.Close()

	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = rl.Do(ctx, func(ctx context.Context) (interface{}, error) {
			return "ok", nil
		})
	}
}
