package analyses

import (
	"encoding/json"
	"errors"
	"os"
	"reflect"
	"strings"
	"testing"
)

func loadFixture(t *testing.T, path string) []byte {
	t.Helper()
	payload, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture %s: %v", path, err)
	}
	return payload
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "json fence", raw: "intro\n```json\n{\"a\":1}\n```\noutro", want: `{"a":1}`},
		{name: "json fence uppercase", raw: "```JSON {\"a\":1} ```", want: `{"a":1}`},
		{name: "json fence wins over earlier plain fence", raw: "```\nnot this\n```\n```json\n{\"a\":2}\n```", want: `{"a":2}`},
		{name: "plain fence", raw: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "fence with prose inside", raw: "```\nResult: {\"a\":1} done\n```", want: `{"a":1}`},
		{name: "bare object in prose", raw: "Sure! {\"a\":{\"b\":2}} Hope this helps.", want: `{"a":{"b":2}}`},
		{name: "greedy outermost braces", raw: `{"a":1} and {"b":2}`, want: `{"a":1} and {"b":2}`},
		{name: "no braces", raw: "  no json here  ", want: "no json here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSON(tt.raw); got != tt.want {
				t.Fatalf("ExtractJSON = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseAnalysisResponseErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "prose only", raw: "I cannot analyze this resume."},
		{name: "empty", raw: ""},
		{name: "truncated object", raw: `{"overallScore": 72, "sections": {`},
		{name: "two objects", raw: `{"a":1} and {"b":2}`},
		{name: "array", raw: `[1,2,3]`},
		{name: "null", raw: "null"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAnalysisResponse(tt.raw)
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected ParseError, got %v", err)
			}
			if !IsParseFailure(err) {
				t.Fatalf("expected IsParseFailure")
			}
		})
	}
}

func TestParseAnalysisResponseFencedPartial(t *testing.T) {
	raw := string(loadFixture(t, "testdata/fenced_partial_response.txt"))

	result, err := ParseAnalysisResponse(raw)
	if err != nil {
		t.Fatalf("ParseAnalysisResponse: %v", err)
	}
	if result.OverallScore != 72 {
		t.Fatalf("overallScore = %d, want 72", result.OverallScore)
	}
	if got := result.Sections[SectionContent].Score; got != 80 {
		t.Fatalf("content score = %d, want 80", got)
	}
	if got, ok := result.Sections[SectionFormatting]; !ok || got.Score != 0 {
		t.Fatalf("formatting section = %+v (present %v), want score 0", got, ok)
	}
	if len(result.KeyInsights) != 1 || !strings.Contains(result.KeyInsights[0].Text, "Acme") {
		t.Fatalf("unexpected insights %+v", result.KeyInsights)
	}
	if len(result.Recommendations) != 1 || result.Recommendations[0].Category != CategoryOther {
		t.Fatalf("expected one default recommendation, got %+v", result.Recommendations)
	}
	if strings.Join(result.DetectedKeywords, ",") != "Go,PostgreSQL,Go" {
		t.Fatalf("keywords not preserved: %v", result.DetectedKeywords)
	}
}

func TestParseAnalysisResponseTrailingSentence(t *testing.T) {
	raw := `{"overallScore": 55} I hope this analysis is useful`
	result, err := ParseAnalysisResponse(raw)
	if err != nil {
		t.Fatalf("ParseAnalysisResponse: %v", err)
	}
	if result.OverallScore != 55 {
		t.Fatalf("overallScore = %d, want 55", result.OverallScore)
	}
}

func TestParseAnalysisResponseFencedRoundTrip(t *testing.T) {
	full := AnalysisResult{
		OverallScore: 81,
		Sections: map[string]SectionScore{
			SectionContent:    {Score: 85},
			SectionFormatting: {Score: 70},
			SectionKeywords:   {Score: 64},
			SectionRelevance:  {Score: 92},
		},
		KeyInsights: []Insight{{Type: InsightPositive, Text: "Quantified impact on the billing migration."}},
		Recommendations: []Recommendation{
			{Category: CategoryKeywords, Title: "Name the CI system", Description: "List the build tools you used.", Examples: "GitHub Actions"},
		},
		ATSScores:        ATSScores{Readability: 88, Keywords: 61, Formatting: 74},
		DetectedKeywords: []string{"Go", "PostgreSQL", "Kubernetes"},
	}
	zeroScores := Validate(map[string]any{})

	tests := []struct {
		name   string
		result AnalysisResult
	}{
		{name: "full result", result: full},
		{name: "sample result", result: SampleResult()},
		{name: "zero scores", result: zeroScores},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := json.Marshal(tt.result)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			raw := "Here is the analysis you asked for:\n```json\n" + string(payload) + "\n```\nLet me know if you need more detail."

			got, err := ParseAnalysisResponse(raw)
			if err != nil {
				t.Fatalf("ParseAnalysisResponse: %v", err)
			}
			if got.OverallScore != tt.result.OverallScore {
				t.Fatalf("overallScore = %d, want %d", got.OverallScore, tt.result.OverallScore)
			}
			if !reflect.DeepEqual(got.Sections, tt.result.Sections) {
				t.Fatalf("sections = %+v, want %+v", got.Sections, tt.result.Sections)
			}
			if got.ATSScores != tt.result.ATSScores {
				t.Fatalf("atsScores = %+v, want %+v", got.ATSScores, tt.result.ATSScores)
			}
		})
	}
}
