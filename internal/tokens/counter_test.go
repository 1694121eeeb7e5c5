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
package tokens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCounter_Singleton(t *testing.T) {
	assert.Same(t, GetCounter(), GetCounter())
}

func TestCountTokens(t *testing.T) {
	c := GetCounter()

	assert.Equal(t, 0, c.CountTokens(""))
	assert.Greater(t, c.CountTokens("The quick brown fox jumps over the lazy dog."), 0)
}

func TestCountTokens_FallbackEstimation(t *testing.T) {
	c := &Counter{encoder: nil}

	assert.Equal(t, 3, c.CountTokens("twelve chars"))
	assert.Equal(t, 0, c.CountTokens("abc"))
}

func TestCountTokensMultiple(t *testing.T) {
	c := GetCounter()

	a := c.CountTokens("opening argument")
	b := c.CountTokens("a rebuttal that runs somewhat longer")
	require.Greater(t, a, 0)
	require.Greater(t, b, 0)

	assert.Equal(t, a+b, c.CountTokensMultiple("opening argument", "a rebuttal that runs somewhat longer"))
	assert.Equal(t, 0, c.CountTokensMultiple())
}

func TestEstimateHistoryTokens(t *testing.T) {
	c := GetCounter()
	contents := []string{"persona text", "first message", "first reply"}

	// Per-message overhead on top of the raw counts.
	want := 10*len(contents) + c.CountTokensMultiple(contents...)
	assert.Equal(t, want, c.EstimateHistoryTokens(contents))

	assert.Equal(t, 0, c.EstimateHistoryTokens(nil))
}
