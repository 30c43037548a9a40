package analyses

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	jsonFencePattern   = regexp.MustCompile("(?is)```json\\s*(.*?)```")
	anyFencePattern    = regexp.MustCompile("(?s)```[A-Za-z0-9_-]*\\s*(.*?)```")
	outerBracesPattern = regexp.MustCompile(`(?s)\{.*\}`)
)

// ExtractJSON isolates the JSON object candidate in a model response.
// Order: a json-labelled fence, any fence, the greedy outermost braces, the whole text.
// The candidate is then trimmed to start at the first '{' and end at the last '}'.
func ExtractJSON(raw string) string {
	candidate := raw
	if m := jsonFencePattern.FindStringSubmatch(raw); m != nil {
		candidate = m[1]
	} else if m := anyFencePattern.FindStringSubmatch(raw); m != nil {
		candidate = m[1]
	} else if m := outerBracesPattern.FindString(raw); m != "" {
		candidate = m
	}

	candidate = strings.TrimSpace(candidate)
	if !strings.HasPrefix(candidate, "{") {
		if idx := strings.Index(candidate, "{"); idx >= 0 {
			candidate = candidate[idx:]
		}
	}
	if !strings.HasSuffix(candidate, "}") {
		if idx := strings.LastIndex(candidate, "}"); idx >= 0 {
			candidate = candidate[:idx+1]
		}
	}
	return candidate
}

// DecodeResponse extracts and decodes the JSON object in raw.
// It returns the decoded object and the candidate text it came from.
func DecodeResponse(raw string) (map[string]any, string, error) {
	candidate := ExtractJSON(raw)
	if candidate == "" {
		return nil, candidate, &ParseError{Candidate: candidate}
	}
	var parsed map[string]any
	if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
		return nil, candidate, &ParseError{Candidate: truncate(candidate, 200), Err: err}
	}
	if parsed == nil {
		return nil, candidate, &ParseError{Candidate: candidate}
	}
	return parsed, candidate, nil
}

// ParseAnalysisResponse decodes a model response and repairs it into a complete AnalysisResult.
// Only an undecodable response is an error; missing or mistyped fields are defaulted.
func ParseAnalysisResponse(raw string) (AnalysisResult, error) {
	parsed, _, err := DecodeResponse(raw)
	if err != nil {
		return AnalysisResult{}, err
	}
	return Validate(parsed), nil
}

func truncate(s string, maxRunes int) string {
	r := []rune(s)
	if len(r) <= maxRunes {
		return s
	}
	return string(r[:maxRunes]) + "..."
}
