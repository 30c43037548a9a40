package analyses

// Section keys always present in AnalysisResult.Sections.
const (
	SectionContent    = "content"
	SectionFormatting = "formatting"
	SectionKeywords   = "keywords"
	SectionRelevance  = "relevance"
)

// SectionKeys lists the required section keys in display order.
var SectionKeys = []string{SectionContent, SectionFormatting, SectionKeywords, SectionRelevance}

const (
	InsightPositive = "positive"
	InsightWarning  = "warning"
	InsightNegative = "negative"
)

const (
	CategoryContent    = "content"
	CategoryKeywords   = "keywords"
	CategoryFormatting = "formatting"
	CategoryOther      = "other"
)

// AnalysisResult is the structured critique produced for one resume.
type AnalysisResult struct {
	OverallScore     int                     `json:"overallScore"`
	Sections         map[string]SectionScore `json:"sections"`
	KeyInsights      []Insight               `json:"keyInsights"`
	Recommendations  []Recommendation        `json:"recommendations"`
	ATSScores        ATSScores               `json:"atsScores"`
	DetectedKeywords []string                `json:"detectedKeywords"`
}

type SectionScore struct {
	Score int `json:"score"`
}

type Insight struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type Recommendation struct {
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Examples    string `json:"examples,omitempty"`
}

type ATSScores struct {
	Readability int `json:"readability"`
	Keywords    int `json:"keywords"`
	Formatting  int `json:"formatting"`
}

// SavedAnalysis is one persisted history entry.
type SavedAnalysis struct {
	ID           string         `json:"id"`
	Timestamp    int64          `json:"timestamp"`
	Filename     string         `json:"filename"`
	OverallScore int            `json:"overallScore"`
	Results      AnalysisResult `json:"results"`
}

// Outcome is what Service.Analyze hands back to callers.
// IsSample marks the placeholder result substituted on quota errors.
type Outcome struct {
	Result     AnalysisResult `json:"result"`
	IsSample   bool           `json:"isSample"`
	Degraded   bool           `json:"degraded"`
	SavedID    string         `json:"savedId,omitempty"`
	TextLength int            `json:"textLength"`
}
