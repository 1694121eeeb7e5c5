// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package debate

import (
	"fmt"
	"sort"
	"strings"
)

// maxKeyPoints bounds the rolling key-point list.
const maxKeyPoints = 5

// Summary is the cumulative, deduplicated record of debate progress.
// List fields never contain duplicate values, KeyPoints holds at most the
// five most recent entries, and TotalViolations never decreases.
type Summary struct {
	ExhaustedArguments []string
	RefutedArguments   map[string][]string
	StalemateTopics    []string
	KeyPoints          []string
	CurrentFocus       string
	TotalViolations    int
}

// RestrictionTracker merges analysis passes into a cumulative Summary and
// renders the restriction block injected into debater personas.
type RestrictionTracker struct {
	summary Summary
}

// NewRestrictionTracker creates an empty tracker.
func NewRestrictionTracker() *RestrictionTracker {
	return &RestrictionTracker{summary: newSummary()}
}

func newSummary() Summary {
	return Summary{
		ExhaustedArguments: make([]string, 0),
		RefutedArguments:   make(map[string][]string),
		StalemateTopics:    make([]string, 0),
		KeyPoints:          make([]string, 0),
	}
}

// Update merges a single analysis pass into the cumulative summary.
func (t *RestrictionTracker) Update(analysis *Analysis) {
	if analysis == nil {
		return
	}

	for _, arg := range analysis.ExhaustedLines {
		t.summary.ExhaustedArguments = appendUnique(t.summary.ExhaustedArguments, arg)
	}

	for _, arg := range analysis.RefutedArguments.DebaterA {
		if arg != "" {
			t.summary.RefutedArguments[DebaterA] = appendUnique(t.summary.RefutedArguments[DebaterA], arg)
		}
	}
	for _, arg := range analysis.RefutedArguments.DebaterB {
		if arg != "" {
			t.summary.RefutedArguments[DebaterB] = appendUnique(t.summary.RefutedArguments[DebaterB], arg)
		}
	}

	for _, topic := range analysis.StalemateTopics {
		t.summary.StalemateTopics = appendUnique(t.summary.StalemateTopics, topic)
	}

	for _, point := range analysis.KeyPoints {
		if point != "" {
			t.summary.KeyPoints = append(t.summary.KeyPoints, point)
		}
	}
	if n := len(t.summary.KeyPoints); n > maxKeyPoints {
		t.summary.KeyPoints = t.summary.KeyPoints[n-maxKeyPoints:]
	}

	if analysis.CurrentFocus != "" {
		t.summary.CurrentFocus = analysis.CurrentFocus
	}

	if analysis.ViolationsDetected > 0 {
		t.summary.TotalViolations += analysis.ViolationsDetected
	}
}

// RestrictionText renders the cumulative summary as the restriction block
// injected into debater personas, or the empty string when the summary has
// no content. Output is deterministic so callers can compare successive
// renderings by value to detect "no change".
func (t *RestrictionTracker) RestrictionText() string {
	s := &t.summary
	var lines []string

	if len(s.ExhaustedArguments) > 0 {
		lines = append(lines, "FORBIDDEN ARGUMENT LINES (already exhausted):")
		for _, arg := range s.ExhaustedArguments {
			lines = append(lines, "  - "+arg)
		}
	}

	if len(s.RefutedArguments) > 0 {
		lines = append(lines, "\nREFUTED ARGUMENTS (do not use these):")
		for _, debater := range sortedKeys(s.RefutedArguments) {
			args := s.RefutedArguments[debater]
			if len(args) == 0 {
				continue
			}
			lines = append(lines, "  "+debater+":")
			for _, arg := range args {
				lines = append(lines, "    - "+arg)
			}
		}
	}

	if len(s.StalemateTopics) > 0 {
		lines = append(lines, "\nSTALEMATE TOPICS (both sides failed to make progress):")
		for _, topic := range s.StalemateTopics {
			lines = append(lines, "  - "+topic)
		}
	}

	if len(s.KeyPoints) > 0 {
		lines = append(lines, "\nDEBATE SUMMARY SO FAR:")
		for _, point := range s.KeyPoints {
			lines = append(lines, "  - "+point)
		}
	}

	if len(lines) == 0 {
		return ""
	}

	return fmt.Sprintf(`
=== DEBATE PROGRESS RESTRICTIONS ===
%s

CRITICAL: You MUST NOT repeat any exhausted, refuted, or stalemate arguments.
You must bring NEW perspectives or evidence. If you have no new arguments,
acknowledge it honestly.
=================================
`, strings.Join(lines, "\n"))
}

// Summary returns a copy of the cumulative summary.
func (t *RestrictionTracker) Summary() Summary {
	out := t.summary
	out.ExhaustedArguments = append([]string(nil), t.summary.ExhaustedArguments...)
	out.StalemateTopics = append([]string(nil), t.summary.StalemateTopics...)
	out.KeyPoints = append([]string(nil), t.summary.KeyPoints...)
	out.RefutedArguments = make(map[string][]string, len(t.summary.RefutedArguments))
	for debater, args := range t.summary.RefutedArguments {
		out.RefutedArguments[debater] = append([]string(nil), args...)
	}
	return out
}

// Reset discards all accumulated state.
func (t *RestrictionTracker) Reset() {
	t.summary = newSummary()
}

// appendUnique appends value to list when non-empty and not already present.
func appendUnique(list []string, value string) []string {
	if value == "" {
		return list
	}
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
