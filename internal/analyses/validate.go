package analyses

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const (
	defaultInsightText        = "The analysis did not return specific insights for this resume."
	defaultRecommendationTitle = "Review your resume"
	defaultRecommendationText  = "The analysis did not return specific recommendations. Check that the resume text was extracted correctly and try again."
)

// Validate builds a structurally complete AnalysisResult from a decoded model object.
// Well-typed fields are taken as-is; anything missing or mistyped gets its default.
// Scores are not clamped.
func Validate(parsed map[string]any) AnalysisResult {
	out := AnalysisResult{
		OverallScore:     intField(parsed, "overallScore"),
		Sections:         make(map[string]SectionScore, len(SectionKeys)),
		DetectedKeywords: []string{},
	}

	sections, _ := parsed["sections"].(map[string]any)
	for _, key := range SectionKeys {
		section, _ := sections[key].(map[string]any)
		out.Sections[key] = SectionScore{Score: intField(section, "score")}
	}

	ats, _ := parsed["atsScores"].(map[string]any)
	out.ATSScores = ATSScores{
		Readability: intField(ats, "readability"),
		Keywords:    intField(ats, "keywords"),
		Formatting:  intField(ats, "formatting"),
	}

	out.KeyInsights = insightList(parsed["keyInsights"])
	if len(out.KeyInsights) == 0 {
		out.KeyInsights = []Insight{{Type: InsightNegative, Text: defaultInsightText}}
	}

	out.Recommendations = recommendationList(parsed["recommendations"])
	if len(out.Recommendations) == 0 {
		out.Recommendations = []Recommendation{{
			Category:    CategoryOther,
			Title:       defaultRecommendationTitle,
			Description: defaultRecommendationText,
		}}
	}

	if kws, ok := parsed["detectedKeywords"].([]any); ok {
		for _, kw := range kws {
			if s, ok := kw.(string); ok {
				out.DetectedKeywords = append(out.DetectedKeywords, s)
			}
		}
	}
	return out
}

// intField reads a JSON number or numeric string, rounding to the nearest integer.
func intField(obj map[string]any, key string) int {
	if obj == nil {
		return 0
	}
	switch v := obj[key].(type) {
	case float64:
		return roundInt(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return roundInt(f)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return roundInt(f)
	default:
		return 0
	}
}

func roundInt(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(math.Round(f))
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

// insightList keeps object entries in order; non-object entries are skipped.
func insightList(value any) []Insight {
	items, ok := value.([]any)
	if !ok {
		return nil
	}
	out := make([]Insight, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, Insight{Type: stringField(obj, "type"), Text: stringField(obj, "text")})
	}
	return out
}

func recommendationList(value any) []Recommendation {
	items, ok := value.([]any)
	if !ok {
		return nil
	}
	out := make([]Recommendation, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, Recommendation{
			Category:    stringField(obj, "category"),
			Title:       stringField(obj, "title"),
			Description: stringField(obj, "description"),
			Examples:    examplesField(obj["examples"]),
		})
	}
	return out
}

// examplesField accepts a string or a list of strings joined by newlines.
func examplesField(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []any:
		parts := make([]string, 0, len(v))
		for _, p := range v {
			if s, ok := p.(string); ok && strings.TrimSpace(s) != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "\n")
	default:
		return ""
	}
}
