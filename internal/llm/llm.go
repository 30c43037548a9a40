package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Client abstracts generative model providers. Generate performs exactly one
// request and returns the raw model text; it never retries.
type Client interface {
	Generate(ctx context.Context, prompt string, cfg GenerationConfig) (string, error)
}

// GenerationConfig holds the sampling parameters sent with a request.
type GenerationConfig struct {
	Temperature     float32 `json:"temperature"`
	TopK            int32   `json:"topK"`
	TopP            float32 `json:"topP"`
	MaxOutputTokens int32   `json:"maxOutputTokens"`
	// JSONResponse asks providers that support it for a JSON MIME type.
	JSONResponse bool `json:"-"`
}

var (
	// AnalysisGeneration is used for full resume analyses.
	AnalysisGeneration = GenerationConfig{
		Temperature:     0.2,
		TopK:            40,
		TopP:            0.95,
		MaxOutputTokens: 8192,
		JSONResponse:    true,
	}
	// ImprovementGeneration is used for single-field rewrites.
	ImprovementGeneration = GenerationConfig{
		Temperature:     0.7,
		TopK:            40,
		TopP:            0.95,
		MaxOutputTokens: 1024,
	}
)

// ErrNotImplemented is returned by the placeholder client.
var ErrNotImplemented = errors.New("LLM not configured")

// InferenceError reports a failed or malformed call to a model endpoint.
type InferenceError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *InferenceError) Error() string {
	var b strings.Builder
	b.WriteString(e.Provider)
	if e.StatusCode > 0 {
		fmt.Fprintf(&b, " http status %d", e.StatusCode)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

func (e *InferenceError) Unwrap() error { return e.Err }

var quotaMarkers = []string{"quota", "resource_exhausted", "rate limit", "ratelimit", "too many requests"}

// IsQuotaExceeded reports whether err is an InferenceError caused by a quota
// or rate limit on the provider side.
func IsQuotaExceeded(err error) bool {
	var inf *InferenceError
	if !errors.As(err, &inf) {
		return false
	}
	if inf.StatusCode == http.StatusTooManyRequests {
		return true
	}
	msg := strings.ToLower(inf.Message)
	for _, marker := range quotaMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// PlaceholderClient stands in when no provider credentials are configured.
type PlaceholderClient struct{}

// Generate returns ErrNotImplemented.
func (PlaceholderClient) Generate(ctx context.Context, prompt string, cfg GenerationConfig) (string, error) {
	_ = ctx
	_ = prompt
	_ = cfg
	return "", ErrNotImplemented
}
