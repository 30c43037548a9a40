package analyses

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shobhitgupta26/resumeai2-sub000/internal/extract"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/llm"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/shared/metrics"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/shared/telemetry"
)

// History is the part of the result store the service writes to.
type History interface {
	Save(ctx context.Context, result AnalysisResult, filename string) (SavedAnalysis, error)
}

// Service runs the analysis chain: recover text, prompt, generate, parse, save.
type Service struct {
	LLM      llm.Client
	History  History
	Provider string
	Model    string
}

// AnalyzeInput is one analysis request.
// Raw is unprocessed file content run through text recovery.
// Text, when set, is already-extracted text and only gets cleaned.
type AnalyzeInput struct {
	Raw       string
	IsPDFLike bool
	Text      string
	Filename  string
	Save      bool
}

// Analyze runs one sequential analysis. A quota error from the model yields
// the sample result with IsSample set and a nil error; every other failure is
// returned as *AnalysisError.
func (s *Service) Analyze(ctx context.Context, in AnalyzeInput) (Outcome, error) {
	if s.LLM == nil {
		return Outcome{}, &AnalysisError{Code: ErrorCodeInternal, Message: "missing llm client"}
	}
	startedAt := time.Now()
	requestID := RequestIDFromContext(ctx)
	metrics.IncAnalysisStarted()

	text := in.Text
	if strings.TrimSpace(text) == "" {
		text = extract.RecoverText(in.Raw, in.IsPDFLike)
	}
	text = extract.Clean(text)
	if text == "" {
		return Outcome{}, s.fail(ctx, startedAt, &AnalysisError{Code: ErrorCodeExtraction, Message: "extract text", Err: ErrEmptyText})
	}
	degraded := extract.IsDegraded(text)
	if degraded {
		metrics.IncAnalysisDegraded()
		telemetry.Warn("analysis.degraded_input", map[string]any{
			"request_id":  requestID,
			"filename":    in.Filename,
			"text_length": len([]rune(text)),
		})
	}

	prompt := llm.BuildAnalysisPrompt(text)
	raw, err := s.LLM.Generate(ctx, prompt, llm.AnalysisGeneration)
	if err != nil {
		if llm.IsQuotaExceeded(err) {
			metrics.IncAnalysisSample()
			telemetry.Warn("analysis.sample_substituted", map[string]any{
				"request_id": requestID,
				"provider":   s.Provider,
				"error":      sanitizeError(err),
			})
			return Outcome{
				Result:     SampleResult(),
				IsSample:   true,
				Degraded:   degraded,
				TextLength: len([]rune(text)),
			}, nil
		}
		return Outcome{}, s.fail(ctx, startedAt, &AnalysisError{Code: ErrorCodeLLM, Message: "llm generate", Err: err})
	}

	parsed, candidate, err := DecodeResponse(raw)
	if err != nil {
		return Outcome{}, s.fail(ctx, startedAt, &AnalysisError{Code: ErrorCodeLLMParse, Message: "llm output parse", Err: err})
	}
	if violations := SchemaViolations([]byte(candidate)); len(violations) > 0 {
		metrics.IncAnalysisRepaired()
		telemetry.Info("analysis.output_repaired", map[string]any{
			"request_id": requestID,
			"violations": violations,
		})
	}
	result := Validate(parsed)

	outcome := Outcome{
		Result:     result,
		Degraded:   degraded,
		TextLength: len([]rune(text)),
	}
	if in.Save && s.History != nil {
		saved, err := s.History.Save(ctx, result, in.Filename)
		if err != nil {
			return Outcome{}, s.fail(ctx, startedAt, &AnalysisError{Code: ErrorCodeStorage, Message: "save analysis", Err: err})
		}
		outcome.SavedID = saved.ID
	}

	elapsed := durationMs(startedAt)
	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDurationMs(elapsed)
	telemetry.Info("analysis.completed", map[string]any{
		"request_id":    requestID,
		"provider":      s.Provider,
		"model":         s.Model,
		"filename":      in.Filename,
		"overall_score": result.OverallScore,
		"degraded":      degraded,
		"saved_id":      outcome.SavedID,
		"duration_ms":   elapsed,
	})
	return outcome, nil
}

// ImproveField asks the model to rewrite one resume field and returns the bare text.
func (s *Service) ImproveField(ctx context.Context, fieldName, content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", &AnalysisError{Code: ErrorCodeValidation, Message: "content is required"}
	}
	if s.LLM == nil {
		return "", &AnalysisError{Code: ErrorCodeInternal, Message: "missing llm client"}
	}
	metrics.IncImproveField()

	prompt := llm.BuildFieldImprovementPrompt(fieldName, content)
	raw, err := s.LLM.Generate(ctx, prompt, llm.ImprovementGeneration)
	if err != nil {
		telemetry.Error("improve_field.failed", map[string]any{
			"request_id": RequestIDFromContext(ctx),
			"field":      fieldName,
			"quota":      llm.IsQuotaExceeded(err),
			"error":      sanitizeError(err),
		})
		return "", &AnalysisError{Code: ErrorCodeLLM, Message: "llm generate", Err: err}
	}
	improved := trimQuotes(raw)
	if improved == "" {
		return "", &AnalysisError{Code: ErrorCodeLLMParse, Message: "model returned empty text"}
	}
	return improved, nil
}

func (s *Service) fail(ctx context.Context, startedAt time.Time, err *AnalysisError) error {
	elapsed := durationMs(startedAt)
	metrics.IncAnalysisFailed()
	metrics.ObserveAnalysisDurationMs(elapsed)
	telemetry.Error("analysis.failed", map[string]any{
		"request_id":  RequestIDFromContext(ctx),
		"provider":    s.Provider,
		"code":        err.Code,
		"error":       sanitizeError(err),
		"duration_ms": elapsed,
	})
	return err
}

// trimQuotes strips whitespace and one layer of matching surrounding quotes.
func trimQuotes(s string) string {
	s = strings.TrimSpace(s)
	pairs := [][2]string{{`"`, `"`}, {"'", "'"}, {"“", "”"}, {"‘", "’"}, {"`", "`"}}
	for _, p := range pairs {
		if len(s) >= len(p[0])+len(p[1]) && strings.HasPrefix(s, p[0]) && strings.HasSuffix(s, p[1]) {
			return strings.TrimSpace(s[len(p[0]) : len(s)-len(p[1])])
		}
	}
	return s
}

func durationMs(startedAt time.Time) float64 {
	return float64(time.Since(startedAt).Microseconds()) / 1000.0
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return msg
}

// IsParseFailure reports whether err came from an undecodable model response.
func IsParseFailure(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
