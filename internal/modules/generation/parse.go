package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/readaloud/core/internal/modules/reading"
)

// unmarshalModelJSON decodes a model response that is supposed to be bare
// JSON but may arrive wrapped in code fences or surrounded by prose.
func unmarshalModelJSON(raw string, out interface{}) error {
	cleaned := stripCodeFences(raw)

	if err := json.Unmarshal([]byte(cleaned), out); err == nil {
		return nil
	}

	if fragment := extractJSONFragment(cleaned); fragment != "" {
		if err := json.Unmarshal([]byte(fragment), out); err == nil {
			return nil
		}
	}

	return fmt.Errorf("invalid JSON response from model")
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// extractJSONFragment finds the first balanced JSON object or array in s.
func extractJSONFragment(s string) string {
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return ""
	}

	open := s[start]
	var close byte = '}'
	if open == '[' {
		close = ']'
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == open:
			depth++
		case c == close:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// parseTranscript validates the dual-script transcription payload. The
// reading form falls back to the display form rather than failing the run.
func parseTranscript(raw string) (reading.Transcript, error) {
	var out reading.Transcript
	if err := unmarshalModelJSON(raw, &out); err != nil {
		return reading.Transcript{}, err
	}

	out.DisplayScript = strings.TrimSpace(out.DisplayScript)
	out.ReadingScript = strings.TrimSpace(out.ReadingScript)
	if out.DisplayScript == "" {
		return reading.Transcript{}, fmt.Errorf("transcription returned an empty display script")
	}
	if out.ReadingScript == "" {
		out.ReadingScript = out.DisplayScript
	}
	return out, nil
}
