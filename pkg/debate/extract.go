// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package debate

import (
	"encoding/json"
	"fmt"
	"strings"
)

// extractJSON recovers a JSON object from raw model output.
//
// Models regularly wrap JSON in markdown fences or surround it with prose.
// Extraction runs in two stages: strip the first fenced code block when one
// is present, then attempt a direct parse, retrying on the substring between
// the first '{' and the last '}'. Anything still unparseable is an error and
// callers keep their prior state.
func extractJSON(raw string, v interface{}) error {
	s := strings.TrimSpace(raw)

	// Stage 1: markdown fences. An unterminated fence leaves s untouched.
	if idx := strings.Index(s, "```json"); idx != -1 {
		start := idx + len("```json")
		if end := strings.Index(s[start:], "```"); end != -1 {
			s = strings.TrimSpace(s[start : start+end])
		}
	} else if idx := strings.Index(s, "```"); idx != -1 {
		start := idx + 3
		if end := strings.Index(s[start:], "```"); end != -1 {
			s = strings.TrimSpace(s[start : start+end])
		}
	}

	// Stage 2: direct parse, then the outermost brace span.
	if err := json.Unmarshal([]byte(s), v); err == nil {
		return nil
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return fmt.Errorf("no JSON object found in model response")
	}
	if err := json.Unmarshal([]byte(s[start:end+1]), v); err != nil {
		return fmt.Errorf("response is not valid JSON: %w", err)
	}
	return nil
}
