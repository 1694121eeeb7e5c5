// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package debate

import (
	"fmt"
	"strings"
)

// Stances assigned to the two debaters.
const (
	StanceInFavor = "in favor"
	StanceAgainst = "against"
)

// DefaultPersonaA is the built-in persona for the affirmative debater.
// The {topic} placeholder is substituted at session creation.
const DefaultPersonaA = `You are Debater A in a formal debate. You argue IN FAVOR of the topic: {topic}.

Defend your position with concrete arguments and evidence. Rebut your opponent's points directly before adding new material. Stay respectful but firm. Keep each response focused and under 200 words.`

// DefaultPersonaB is the built-in persona for the opposing debater.
const DefaultPersonaB = `You are Debater B in a formal debate. You argue AGAINST the topic: {topic}.

Challenge your opponent's claims with concrete counter-arguments and evidence. Rebut their points directly before adding new material. Stay respectful but firm. Keep each response focused and under 200 words.`

// DefaultJudgePersona frames the judge model's role.
const DefaultJudgePersona = "You are an impartial debate judge. You evaluate arguments on logic and evidence alone, never on style or verbosity. You output only valid JSON."

// DefaultEvaluationPrompt asks the judge whether the debate should continue.
// Placeholders: {topic}, {transcript}, {language}.
const DefaultEvaluationPrompt = `You are judging a debate on the topic: {topic}

Recent exchange:
{transcript}

Decide whether the debate should continue or end now. End it only if the
debaters have reached agreement, or one side holds a clear and irrefutable
advantage, or the exchange has collapsed into repetition.

Respond with ONLY a valid JSON object (no markdown, no extra text):
{
    "decision": "continue",
    "winner": "draw",
    "reason": ""
}

- "decision" must be "continue" or "end"
- "winner" must be "debater_a", "debater_b", or "draw" (only meaningful when ending)
- "reason" briefly explains the decision
- Write the reason in {language}
`

// DefaultForcedVerdictPrompt demands a definitive verdict once termination
// has already been decided. Placeholders: {topic}, {transcript}, {reason},
// {language}.
const DefaultForcedVerdictPrompt = `The debate on the topic "{topic}" has been terminated.

Termination reason: {reason}

Final exchange:
{transcript}

You must now deliver a definitive verdict. Weigh the complete exchange and
pick the debater whose case held up best, or declare a draw.

Respond with ONLY a valid JSON object (no markdown, no extra text):
{
    "decision": "end",
    "winner": "draw",
    "reason": ""
}

- "winner" must be "debater_a", "debater_b", or "draw"
- "reason" briefly justifies the verdict
- Write the reason in {language}
`

// analysisSystemPrompt pins the summarizer to strict JSON output.
const analysisSystemPrompt = "You are a precise debate analyst. Output only valid JSON."

// analysisPrompt is the summarizer request template. Placeholders: {topic},
// {transcript}, {language}.
const analysisPrompt = `You are a debate analyst. Analyze the following debate transcript and provide a structured JSON analysis.

Your task:
1. Identify ALL distinct arguments made by each debater
2. Determine which arguments have been REFUTED (opponent provided irrefutable counter-evidence)
3. Identify STALEMATES (same argument repeated 2+ times without progress)
4. Detect if any debater is repeating previously refuted arguments (violation)

Respond with ONLY a valid JSON object (no markdown, no extra text):
{
    "debater_a_arguments": ["arg1", "arg2"],
    "debater_b_arguments": ["arg1", "arg2"],
    "refuted_arguments": {
        "debater_a": ["refuted arg by A"],
        "debater_b": ["refuted arg by B"]
    },
    "stalemate_topics": ["topic stuck in loop"],
    "exhausted_lines": ["argument lines that should not be used anymore"],
    "key_points": ["important developments in the debate"],
    "violations_detected": 0,
    "current_focus": "what the debate is currently about",
    "should_end": false,
    "end_reason": ""
}

IMPORTANT:
- Be concise in argument descriptions (max 15 words each)
- "refuted" means the opponent provided evidence/logic that completely dismantles the argument
- "stalemate" means the same point was argued back and forth without new evidence
- "violations_detected" = number of times a debater repeated a previously exhausted argument
- "should_end" = true if debate has devolved into pure repetition or one side has clearly won
- Write descriptions in {language}

Topic: {topic}

Transcript:
{transcript}
`

// RenderPersona substitutes the topic placeholder and appends the response
// language instruction when one is configured.
func RenderPersona(template, topic, language string) string {
	p := strings.ReplaceAll(template, "{topic}", topic)
	if language != "" {
		p += fmt.Sprintf("\n\nAlways respond in %s.", language)
	}
	return p
}

// renderTemplate substitutes {name} placeholders in a prompt template.
func renderTemplate(template string, vars map[string]string) string {
	out := template
	for name, value := range vars {
		out = strings.ReplaceAll(out, "{"+name+"}", value)
	}
	return out
}

// openingMessage seeds debater A's first turn.
func openingMessage(topic string) string {
	return fmt.Sprintf("The topic is: %s. Please present your opening argument.", topic)
}

// contextSummary builds the continuity block that leads a rebuilt persona
// after a checkpoint reset.
func contextSummary(topic, stance string, keyPoints []string) string {
	var sb strings.Builder
	sb.WriteString("=== DEBATE CONTEXT ===\n")
	sb.WriteString(fmt.Sprintf("The debate on %q is in progress. You are arguing %s.\n", topic, stance))
	if len(keyPoints) > 0 {
		sb.WriteString("Recent developments:\n")
		for _, point := range keyPoints {
			sb.WriteString("  - " + point + "\n")
		}
	}
	sb.WriteString("Continue the debate from where it stands. Do not restart or repeat your opening.\n")
	sb.WriteString("======================")
	return sb.String()
}
