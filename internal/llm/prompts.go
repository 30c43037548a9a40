package llm

import (
	"embed"
	"strings"
	"text/template"
)

// MaxPromptResumeChars caps how much resume text is embedded in an analysis prompt.
const MaxPromptResumeChars = 12000

var (
	//go:embed prompts/*.tmpl
	promptFiles embed.FS

	promptTemplates = template.Must(template.ParseFS(promptFiles, "prompts/*.tmpl"))
)

const (
	instructionSummary    = "Rewrite this professional summary so it is concise, confident and specific. Lead with the candidate's seniority and core expertise, mention concrete strengths that are already stated, and remove filler phrases."
	instructionTitle      = "Rewrite this job title so it is clear, conventional and professional, matching how the role is commonly named in industry. Do not inflate the seniority."
	instructionExperience = "Rewrite this work experience description using strong action verbs and results-oriented phrasing. Keep every fact that is already stated, quantify impact only where numbers are already given, and do not invent new achievements."
	instructionEducation  = "Rewrite this education description so it is concise and professional, highlighting relevant coursework, honors or projects that are already mentioned."
	instructionGeneric    = "Make this text more professional, clear and concise while keeping its meaning."
)

var educationMarkers = []string{"education", "degree", "school", "university", "course"}

// BuildAnalysisPrompt returns the instruction for a full resume analysis. Only
// the first MaxPromptResumeChars characters of resumeText are included.
func BuildAnalysisPrompt(resumeText string) string {
	var b strings.Builder
	data := struct{ ResumeText string }{ResumeText: truncateRunes(resumeText, MaxPromptResumeChars)}
	if err := promptTemplates.ExecuteTemplate(&b, "analysis.tmpl", data); err != nil {
		// templates are parsed at init; execution only fails on writer errors
		panic(err)
	}
	return b.String()
}

// BuildFieldImprovementPrompt returns the instruction for rewriting a single
// resume field. The template is chosen by a case-insensitive match on fieldName.
func BuildFieldImprovementPrompt(fieldName, content string) string {
	var b strings.Builder
	data := struct {
		Instruction string
		FieldName   string
		Content     string
	}{
		Instruction: FieldInstruction(fieldName),
		FieldName:   fieldName,
		Content:     content,
	}
	if err := promptTemplates.ExecuteTemplate(&b, "field.tmpl", data); err != nil {
		panic(err)
	}
	return b.String()
}

// FieldInstruction picks the rewrite instruction for a field name.
func FieldInstruction(fieldName string) string {
	name := strings.ToLower(fieldName)
	switch {
	case strings.Contains(name, "summary"):
		return instructionSummary
	case strings.Contains(name, "position"), strings.Contains(name, "title"):
		return instructionTitle
	case strings.Contains(name, "description"):
		for _, marker := range educationMarkers {
			if strings.Contains(name, marker) {
				return instructionEducation
			}
		}
		return instructionExperience
	default:
		return instructionGeneric
	}
}

func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	count := 0
	for i := range s {
		if count == max {
			return s[:i]
		}
		count++
	}
	return s
}
