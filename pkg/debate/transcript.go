// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package debate

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
)

// Entry is a single utterance in the debate transcript.
type Entry struct {
	Speaker string
	Text    string
	Turn    int
}

// Transcript is the append-only record of everything said during a run.
// Entries are never edited or reordered once appended.
type Transcript struct {
	entries []Entry
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{entries: make([]Entry, 0)}
}

// Append records an utterance.
func (t *Transcript) Append(speaker, text string, turn int) {
	t.entries = append(t.entries, Entry{Speaker: speaker, Text: text, Turn: turn})
}

// Len returns the number of entries recorded so far.
func (t *Transcript) Len() int {
	return len(t.entries)
}

// Entries returns a copy of all recorded entries in order.
func (t *Transcript) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Window returns a copy of the most recent k entries, or all of them when k
// exceeds the transcript length.
func (t *Transcript) Window(k int) []Entry {
	if k <= 0 {
		return nil
	}
	if k > len(t.entries) {
		k = len(t.entries)
	}
	out := make([]Entry, k)
	copy(out, t.entries[len(t.entries)-k:])
	return out
}

// LastBySpeaker scans backward for the most recent entry from the given
// speaker. The second return value reports whether one was found.
func (t *Transcript) LastBySpeaker(speaker string) (string, bool) {
	for i := len(t.entries) - 1; i >= 0; i-- {
		if t.entries[i].Speaker == speaker {
			return t.entries[i].Text, true
		}
	}
	return "", false
}

// maxMessageChars bounds each transcript message included in a model prompt.
const maxMessageChars = 500

// truncateText cuts text to at most n characters, appending "..." when cut.
func truncateText(text string, n int) string {
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	return string(r[:n]) + "..."
}

// formatWindow renders transcript entries for inclusion in a model prompt.
// Long messages are truncated to bound prompt size.
func formatWindow(entries []Entry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s: %s", e.Speaker, truncateText(e.Text, maxMessageChars)))
	}
	return strings.Join(lines, "\n\n")
}

// Sink receives rendered transcript lines. Implementations must absorb
// write failures: transcript output never stops a debate.
type Sink interface {
	Line(text string)
}

// ConsoleSink writes transcript lines to a writer, one per call.
type ConsoleSink struct {
	w io.Writer
}

// NewConsoleSink creates a sink writing to stdout.
func NewConsoleSink() *ConsoleSink {
	return &ConsoleSink{w: os.Stdout}
}

// Line writes the text followed by a newline.
func (s *ConsoleSink) Line(text string) {
	fmt.Fprintln(s.w, text)
}

// FileSink appends transcript lines to a file. The file is truncated when
// the sink is created so every run starts a fresh transcript. Write
// failures are logged as warnings and the run continues.
type FileSink struct {
	path   string
	file   *os.File
	logger *zap.Logger
}

// NewFileSink creates a file sink, truncating any existing file at path.
func NewFileSink(path string, logger *zap.Logger) (*FileSink, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644) // #nosec G304 -- user-supplied output path
	if err != nil {
		return nil, fmt.Errorf("could not initialize output file %s: %w", path, err)
	}
	return &FileSink{path: path, file: f, logger: logger}, nil
}

// Line appends the text and a trailing newline to the file.
func (s *FileSink) Line(text string) {
	if _, err := s.file.WriteString(text + "\n"); err != nil {
		s.logger.Warn("Failed to write to file",
			zap.String("path", s.path),
			zap.Error(err))
	}
}

// Close releases the underlying file handle.
func (s *FileSink) Close() error {
	return s.file.Close()
}

// MultiSink fans each line out to several sinks.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink combines several sinks into one.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// Line forwards the text to every sink.
func (s *MultiSink) Line(text string) {
	for _, sink := range s.sinks {
		sink.Line(text)
	}
}
