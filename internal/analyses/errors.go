package analyses

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrEmptyText             = errors.New("no resume text to analyze")
	ErrJobQueueNotConfigured = errors.New("job queue not configured")
)

const (
	ErrorCodeValidation = "VALIDATION_ERROR"
	ErrorCodeLLM        = "LLM_ERROR"
	ErrorCodeLLMParse   = "LLM_PARSE_ERROR"
	ErrorCodeStorage    = "STORAGE_ERROR"
	ErrorCodeExtraction = "EXTRACTION_ERROR"
	ErrorCodeInternal   = "INTERNAL_ERROR"
)

// ParseError reports a model response with no decodable JSON object.
type ParseError struct {
	Candidate string
	Err       error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return "model response contained no JSON object"
	}
	return fmt.Sprintf("model response contained no JSON object: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// AnalysisError is the classified failure surfaced by Service.
type AnalysisError struct {
	Code    string
	Message string
	Err     error
}

func (e *AnalysisError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// ErrorCode returns the code of an AnalysisError in err's chain, or INTERNAL_ERROR.
func ErrorCode(err error) string {
	var ae *AnalysisError
	if errors.As(err, &ae) && ae.Code != "" {
		return ae.Code
	}
	return ErrorCodeInternal
}
