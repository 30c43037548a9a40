package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestIsQuotaExceeded(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "quota message", err: &InferenceError{Provider: "gemini", StatusCode: 400, Message: "You exceeded your current quota"}, want: true},
		{name: "resource exhausted", err: &InferenceError{Provider: "gemini", Message: "RESOURCE_EXHAUSTED"}, want: true},
		{name: "429 status", err: &InferenceError{Provider: "openai", StatusCode: http.StatusTooManyRequests, Message: "slow down"}, want: true},
		{name: "wrapped", err: fmt.Errorf("analyze: %w", &InferenceError{Message: "quota exceeded"}), want: true},
		{name: "other inference", err: &InferenceError{Provider: "gemini", StatusCode: 500, Message: "internal"}, want: false},
		{name: "plain error mentioning quota", err: errors.New("quota"), want: false},
		{name: "nil", err: nil, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsQuotaExceeded(tt.err); got != tt.want {
				t.Fatalf("IsQuotaExceeded = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInferenceErrorMessage(t *testing.T) {
	err := &InferenceError{Provider: "gemini", StatusCode: 403, Message: "API key not valid"}
	if got := err.Error(); got != "gemini http status 403: API key not valid" {
		t.Fatalf("unexpected message: %s", got)
	}
	noStatus := &InferenceError{Provider: "gemini", Message: "response missing candidates"}
	if got := noStatus.Error(); got != "gemini: response missing candidates" {
		t.Fatalf("unexpected message: %s", got)
	}
}

func TestPlaceholderClient(t *testing.T) {
	_, err := PlaceholderClient{}.Generate(context.Background(), "p", AnalysisGeneration)
	if !errors.Is(err, ErrNotImplemented) {
		t.Fatalf("expected ErrNotImplemented, got %v", err)
	}
}
