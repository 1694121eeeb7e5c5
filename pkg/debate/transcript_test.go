// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package debate

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestTranscript_AppendAndEntries(t *testing.T) {
	tr := NewTranscript()
	assert.Equal(t, 0, tr.Len())

	tr.Append(DebaterA, "opening", 1)
	tr.Append(DebaterB, "rebuttal", 1)
	tr.Append(DebaterA, "counter", 2)

	assert.Equal(t, 3, tr.Len())
	entries := tr.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, Entry{Speaker: DebaterA, Text: "opening", Turn: 1}, entries[0])
	assert.Equal(t, Entry{Speaker: DebaterB, Text: "rebuttal", Turn: 1}, entries[1])
	assert.Equal(t, Entry{Speaker: DebaterA, Text: "counter", Turn: 2}, entries[2])

	// The returned slice is a copy.
	entries[0].Text = "mutated"
	assert.Equal(t, "opening", tr.Entries()[0].Text)
}

func TestTranscript_Window(t *testing.T) {
	tr := NewTranscript()
	tr.Append(DebaterA, "a1", 1)
	tr.Append(DebaterB, "b1", 1)
	tr.Append(DebaterA, "a2", 2)
	tr.Append(DebaterB, "b2", 2)

	tests := []struct {
		name string
		k    int
		want []string
	}{
		{"zero yields nothing", 0, nil},
		{"negative yields nothing", -3, nil},
		{"last two entries", 2, []string{"a2", "b2"}},
		{"clamped to transcript length", 10, []string{"a1", "b1", "a2", "b2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			window := tr.Window(tt.k)
			if tt.want == nil {
				assert.Nil(t, window)
				return
			}
			texts := make([]string, 0, len(window))
			for _, e := range window {
				texts = append(texts, e.Text)
			}
			assert.Equal(t, tt.want, texts)
		})
	}
}

func TestTranscript_LastBySpeaker(t *testing.T) {
	tr := NewTranscript()

	_, ok := tr.LastBySpeaker(DebaterA)
	assert.False(t, ok)

	tr.Append(DebaterA, "a1", 1)
	tr.Append(DebaterB, "b1", 1)
	tr.Append(DebaterA, "a2", 2)

	text, ok := tr.LastBySpeaker(DebaterA)
	assert.True(t, ok)
	assert.Equal(t, "a2", text)

	text, ok = tr.LastBySpeaker(DebaterB)
	assert.True(t, ok)
	assert.Equal(t, "b1", text)

	_, ok = tr.LastBySpeaker("moderator")
	assert.False(t, ok)
}

func TestFormatWindow_TruncatesLongMessages(t *testing.T) {
	long := strings.Repeat("x", 600)
	entries := []Entry{
		{Speaker: DebaterA, Text: long, Turn: 1},
		{Speaker: DebaterB, Text: "short", Turn: 1},
	}

	rendered := formatWindow(entries)

	assert.Contains(t, rendered, strings.Repeat("x", 500)+"...")
	assert.NotContains(t, rendered, strings.Repeat("x", 501))
	assert.Contains(t, rendered, DebaterB+": short")
	assert.Len(t, strings.Split(rendered, "\n\n"), 2)
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "hello", truncateText("hello", 500))
	assert.Equal(t, strings.Repeat("x", 500), truncateText(strings.Repeat("x", 500), 500))

	// Truncation counts runes, not bytes.
	got := truncateText(strings.Repeat("é", 501), 500)
	assert.Equal(t, strings.Repeat("é", 500)+"...", got)
}

func TestFileSink_TruncatesAndAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debate.txt")
	require.NoError(t, os.WriteFile(path, []byte("stale content from a previous run\n"), 0o644))

	sink, err := NewFileSink(path, nil)
	require.NoError(t, err)

	sink.Line("first")
	sink.Line("second")
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", string(data))
}

func TestFileSink_BadPathFails(t *testing.T) {
	_, err := NewFileSink(filepath.Join(t.TempDir(), "missing", "debate.txt"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not initialize output file")
}

func TestFileSink_WriteFailureLogsWarning(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)

	sink, err := NewFileSink(filepath.Join(t.TempDir(), "debate.txt"), zap.New(core))
	require.NoError(t, err)
	require.NoError(t, sink.Close())

	// Writing after close must warn, not panic or stop the caller.
	sink.Line("lost line")

	assert.Equal(t, 1, logs.FilterMessage("Failed to write to file").Len())
}

func TestMultiSink_FansOut(t *testing.T) {
	first := &captureSink{}
	second := &captureSink{}

	sink := NewMultiSink(first, second)
	sink.Line("hello")
	sink.Line("world")

	assert.Equal(t, []string{"hello", "world"}, first.lines)
	assert.Equal(t, []string{"hello", "world"}, second.lines)
}

func TestConsoleSink_WritesLines(t *testing.T) {
	var buf bytes.Buffer
	sink := &ConsoleSink{w: &buf}

	sink.Line("one")
	sink.Line("two")

	assert.Equal(t, "one\ntwo\n", buf.String())
}
