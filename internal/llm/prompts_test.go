package llm

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestBuildAnalysisPromptEmbedsResumeAndSchema(t *testing.T) {
	prompt := BuildAnalysisPrompt("Name: Jane Doe\nEXPERIENCE: Acme Corp")

	for _, want := range []string{
		"Name: Jane Doe",
		`"overallScore"`,
		`"sections"`,
		`"keyInsights"`,
		`"recommendations"`,
		`"atsScores"`,
		`"detectedKeywords"`,
		"0-100",
		"actually present",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}

func TestBuildAnalysisPromptTruncatesResume(t *testing.T) {
	long := strings.Repeat("a", MaxPromptResumeChars) + "TAIL-MARKER"
	prompt := BuildAnalysisPrompt(long)
	if strings.Contains(prompt, "TAIL-MARKER") {
		t.Fatalf("expected resume text to be truncated")
	}
	if !strings.Contains(prompt, strings.Repeat("a", MaxPromptResumeChars)) {
		t.Fatalf("expected the first %d characters to be kept", MaxPromptResumeChars)
	}
}

func TestTruncateRunesKeepsValidUTF8(t *testing.T) {
	s := strings.Repeat("é", 10)
	got := truncateRunes(s, 4)
	if !utf8.ValidString(got) {
		t.Fatalf("truncated string is not valid utf8: %q", got)
	}
	if utf8.RuneCountInString(got) != 4 {
		t.Fatalf("expected 4 runes, got %d", utf8.RuneCountInString(got))
	}
	if truncateRunes("short", 10) != "short" {
		t.Fatalf("short strings must be unchanged")
	}
}

func TestFieldInstruction(t *testing.T) {
	tests := []struct {
		field string
		want  string
	}{
		{field: "summary", want: instructionSummary},
		{field: "ProfessionalSummary", want: instructionSummary},
		{field: "position", want: instructionTitle},
		{field: "jobTitle", want: instructionTitle},
		{field: "experience.description", want: instructionExperience},
		{field: "Description", want: instructionExperience},
		{field: "education.description", want: instructionEducation},
		{field: "degreeDescription", want: instructionEducation},
		{field: "hobbies", want: instructionGeneric},
	}
	for _, tt := range tests {
		if got := FieldInstruction(tt.field); got != tt.want {
			t.Fatalf("FieldInstruction(%q) = %q, want %q", tt.field, got, tt.want)
		}
	}
}

func TestBuildFieldImprovementPromptDirectives(t *testing.T) {
	prompt := BuildFieldImprovementPrompt("summary", "I am a hard worker.")
	if !strings.HasPrefix(prompt, instructionSummary) {
		t.Fatalf("expected summary instruction first, got %q", prompt)
	}
	for _, want := range []string{"I am a hard worker.", "Return only the improved text", "quotation marks", "same length"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}
