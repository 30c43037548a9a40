package analyses

const sampleNotice = "Sample data: the AI service quota was exceeded, so this is not an analysis of your resume."

// SampleResult returns the fixed placeholder shown when the model quota is exhausted.
// It is never persisted and callers must flag it with Outcome.IsSample.
func SampleResult() AnalysisResult {
	return AnalysisResult{
		OverallScore: 70,
		Sections: map[string]SectionScore{
			SectionContent:    {Score: 72},
			SectionFormatting: {Score: 68},
			SectionKeywords:   {Score: 65},
			SectionRelevance:  {Score: 75},
		},
		KeyInsights: []Insight{
			{Type: InsightWarning, Text: sampleNotice},
			{Type: InsightPositive, Text: "Example: clear section headings make the resume easy to scan."},
			{Type: InsightNegative, Text: "Example: several bullet points describe duties rather than results."},
		},
		Recommendations: []Recommendation{
			{
				Category:    CategoryOther,
				Title:       "Try again later",
				Description: sampleNotice + " Submit the resume again once the quota resets.",
			},
			{
				Category:    CategoryContent,
				Title:       "Example: quantify achievements",
				Description: "Add numbers that show the impact of your work.",
				Examples:    "Reduced report generation time by 40% by rewriting the export job.",
			},
		},
		ATSScores: ATSScores{
			Readability: 70,
			Keywords:    62,
			Formatting:  74,
		},
		DetectedKeywords: []string{},
	}
}
