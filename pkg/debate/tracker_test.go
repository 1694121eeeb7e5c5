// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package debate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestrictionTracker_DeduplicatesAcrossUpdates(t *testing.T) {
	tracker := NewRestrictionTracker()

	tracker.Update(&Analysis{
		ExhaustedLines:  []string{"economic cost argument", "safety argument"},
		StalemateTopics: []string{"regulation"},
	})
	tracker.Update(&Analysis{
		ExhaustedLines:  []string{"economic cost argument", "novel argument"},
		StalemateTopics: []string{"regulation"},
	})

	summary := tracker.Summary()
	assert.Equal(t, []string{"economic cost argument", "safety argument", "novel argument"}, summary.ExhaustedArguments)
	assert.Equal(t, []string{"regulation"}, summary.StalemateTopics)
}

func TestRestrictionTracker_RefutedArgumentsMergePerDebater(t *testing.T) {
	tracker := NewRestrictionTracker()

	tracker.Update(&Analysis{
		RefutedArguments: RefutedArguments{DebaterA: []string{"productivity claim"}},
	})
	tracker.Update(&Analysis{
		RefutedArguments: RefutedArguments{
			DebaterA: []string{"productivity claim", "adoption claim"},
			DebaterB: []string{"hallucination claim"},
		},
	})

	summary := tracker.Summary()
	assert.Equal(t, []string{"productivity claim", "adoption claim"}, summary.RefutedArguments[DebaterA])
	assert.Equal(t, []string{"hallucination claim"}, summary.RefutedArguments[DebaterB])
}

func TestRestrictionTracker_KeyPointsKeepLastFive(t *testing.T) {
	tracker := NewRestrictionTracker()

	tracker.Update(&Analysis{KeyPoints: []string{"p1", "p2", "p3"}})
	tracker.Update(&Analysis{KeyPoints: []string{"p4", "p5", "p6"}})

	assert.Equal(t, []string{"p2", "p3", "p4", "p5", "p6"}, tracker.Summary().KeyPoints)
}

func TestRestrictionTracker_ViolationsNeverDecrease(t *testing.T) {
	tracker := NewRestrictionTracker()

	tracker.Update(&Analysis{ViolationsDetected: 2})
	tracker.Update(&Analysis{ViolationsDetected: 0})
	assert.Equal(t, 2, tracker.Summary().TotalViolations)

	tracker.Update(&Analysis{ViolationsDetected: 2})
	assert.Equal(t, 4, tracker.Summary().TotalViolations)

	// Adversarial negative counts are ignored.
	tracker.Update(&Analysis{ViolationsDetected: -3})
	assert.Equal(t, 4, tracker.Summary().TotalViolations)
}

func TestRestrictionTracker_CurrentFocusKeepsLatest(t *testing.T) {
	tracker := NewRestrictionTracker()

	tracker.Update(&Analysis{CurrentFocus: "costs"})
	tracker.Update(&Analysis{})
	assert.Equal(t, "costs", tracker.Summary().CurrentFocus)

	tracker.Update(&Analysis{CurrentFocus: "ethics"})
	assert.Equal(t, "ethics", tracker.Summary().CurrentFocus)
}

func TestRestrictionTracker_RestrictionTextEmpty(t *testing.T) {
	tracker := NewRestrictionTracker()
	assert.Equal(t, "", tracker.RestrictionText())

	// Violations and focus alone produce no restriction lines.
	tracker.Update(&Analysis{ViolationsDetected: 3, CurrentFocus: "costs"})
	assert.Equal(t, "", tracker.RestrictionText())
}

func TestRestrictionTracker_RestrictionTextSections(t *testing.T) {
	tracker := NewRestrictionTracker()
	tracker.Update(&Analysis{
		ExhaustedLines: []string{"jobs argument"},
		RefutedArguments: RefutedArguments{
			DebaterB: []string{"hallucination claim"},
			DebaterA: []string{"productivity claim"},
		},
		StalemateTopics: []string{"privacy"},
		KeyPoints:       []string{"B conceded on costs"},
	})

	text := tracker.RestrictionText()

	assert.Contains(t, text, "=== DEBATE PROGRESS RESTRICTIONS ===")
	assert.Contains(t, text, "CRITICAL: You MUST NOT repeat any exhausted, refuted, or stalemate arguments.")

	forbidden := strings.Index(text, "FORBIDDEN ARGUMENT LINES (already exhausted):")
	refuted := strings.Index(text, "REFUTED ARGUMENTS (do not use these):")
	stalemate := strings.Index(text, "STALEMATE TOPICS (both sides failed to make progress):")
	recap := strings.Index(text, "DEBATE SUMMARY SO FAR:")
	require.NotEqual(t, -1, forbidden)
	require.NotEqual(t, -1, refuted)
	require.NotEqual(t, -1, stalemate)
	require.NotEqual(t, -1, recap)
	assert.Less(t, forbidden, refuted)
	assert.Less(t, refuted, stalemate)
	assert.Less(t, stalemate, recap)

	assert.Contains(t, text, "  - jobs argument")
	assert.Contains(t, text, "  "+DebaterA+":")
	assert.Contains(t, text, "    - productivity claim")
	assert.Contains(t, text, "  - privacy")
	assert.Contains(t, text, "  - B conceded on costs")

	// Refuted sections are ordered by debater identifier.
	assert.Less(t, strings.Index(text, "  "+DebaterA+":"), strings.Index(text, "  "+DebaterB+":"))

	// Rendering is deterministic so value comparison detects "no change".
	assert.Equal(t, text, tracker.RestrictionText())
}

func TestRestrictionTracker_EmptyRefutedArgumentsSkipped(t *testing.T) {
	tracker := NewRestrictionTracker()
	tracker.Update(&Analysis{
		ExhaustedLines:   []string{"jobs argument"},
		RefutedArguments: RefutedArguments{DebaterA: []string{""}},
	})

	assert.NotContains(t, tracker.RestrictionText(), "REFUTED ARGUMENTS")
}

func TestRestrictionTracker_UpdateNilIsNoOp(t *testing.T) {
	tracker := NewRestrictionTracker()
	tracker.Update(nil)

	assert.Equal(t, "", tracker.RestrictionText())
	assert.Equal(t, 0, tracker.Summary().TotalViolations)
}

func TestRestrictionTracker_Reset(t *testing.T) {
	tracker := NewRestrictionTracker()
	tracker.Update(&Analysis{ExhaustedLines: []string{"x"}, ViolationsDetected: 5})
	require.NotEmpty(t, tracker.RestrictionText())

	tracker.Reset()

	assert.Equal(t, "", tracker.RestrictionText())
	assert.Equal(t, 0, tracker.Summary().TotalViolations)
}

func TestRestrictionTracker_SummaryIsACopy(t *testing.T) {
	tracker := NewRestrictionTracker()
	tracker.Update(&Analysis{
		ExhaustedLines:   []string{"x"},
		RefutedArguments: RefutedArguments{DebaterA: []string{"claim"}},
	})

	summary := tracker.Summary()
	summary.ExhaustedArguments[0] = "mutated"
	summary.RefutedArguments[DebaterA][0] = "mutated"

	fresh := tracker.Summary()
	assert.Equal(t, "x", fresh.ExhaustedArguments[0])
	assert.Equal(t, "claim", fresh.RefutedArguments[DebaterA][0])
}
