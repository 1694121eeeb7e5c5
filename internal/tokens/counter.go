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
// Package tokens provides token counting for LLM context management.
package tokens

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// Counter provides accurate token counting for LLM context management.
// Uses tiktoken with cl100k_base encoding (Claude-compatible approximation).
type Counter struct {
	encoder *tiktoken.Tiktoken
	mu      sync.Mutex
}

var (
	globalCounter   *Counter
	counterInitOnce sync.Once
)

// GetCounter returns a singleton token counter instance.
func GetCounter() *Counter {
	counterInitOnce.Do(func() {
		// Use cl100k_base encoding (GPT-4/Claude compatible)
		// This is a good approximation for Claude models
		encoding := "cl100k_base"
		tkm, err := tiktoken.GetEncoding(encoding)
		if err != nil {
			// Fallback: use approximate counting if tiktoken fails
			globalCounter = &Counter{encoder: nil}
			return
		}
		globalCounter = &Counter{encoder: tkm}
	})
	return globalCounter
}

// CountTokens returns the accurate token count for a given text.
func (c *Counter) CountTokens(text string) int {
	if c.encoder == nil {
		// Fallback to char-based estimation if encoder not available
		return len(text) / 4
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	toks := c.encoder.Encode(text, nil, nil)
	return len(toks)
}

// CountTokensMultiple counts tokens across multiple text segments.
func (c *Counter) CountTokensMultiple(texts ...string) int {
	total := 0
	for _, text := range texts {
		total += c.CountTokens(text)
	}
	return total
}

// EstimateHistoryTokens estimates the token count of a conversation history.
// Includes formatting overhead for message structure.
func (c *Counter) EstimateHistoryTokens(contents []string) int {
	// Message overhead: role + formatting (~10 tokens per message)
	return 10*len(contents) + c.CountTokensMultiple(contents...)
}
