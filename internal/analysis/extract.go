package analysis

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var (
	objectPattern = regexp.MustCompile(`(?s)\{.*\}`)
	fencePattern  = regexp.MustCompile("```json\n|```\n|```")
)

// extractJSON decodes a JSON object from model output, which may wrap it in
// prose or markdown fences.
func extractJSON(text string, v any) error {
	if json.Unmarshal([]byte(text), v) == nil {
		return nil
	}
	if m := objectPattern.FindString(text); m != "" {
		if json.Unmarshal([]byte(m), v) == nil {
			return nil
		}
	}
	cleaned := strings.TrimSpace(fencePattern.ReplaceAllString(text, ""))
	if json.Unmarshal([]byte(cleaned), v) == nil {
		return nil
	}
	return errors.New("could not extract valid JSON from model output")
}
