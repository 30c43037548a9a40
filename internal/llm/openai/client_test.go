package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shobhitgupta26/resumeai2-sub000/internal/llm"
)

func TestIsGPT5(t *testing.T) {
	tests := []struct {
		name  string
		model string
		want  bool
	}{
		{name: "gpt5", model: "gpt-5", want: true},
		{name: "gpt5 variant", model: "gpt-5-mini", want: true},
		{name: "gpt5 uppercase", model: " GPT-5o ", want: true},
		{name: "gpt4", model: "gpt-4o", want: false},
		{name: "empty", model: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isGPT5(tt.model); got != tt.want {
				t.Fatalf("isGPT5(%q) = %v, want %v", tt.model, got, tt.want)
			}
		})
	}
}

func withServer(t *testing.T, h http.HandlerFunc) {
	t.Helper()
	server := httptest.NewServer(h)
	oldURL := apiURL
	apiURL = server.URL
	t.Cleanup(func() {
		apiURL = oldURL
		server.Close()
	})
}

func TestGenerateSendsSampling(t *testing.T) {
	var body map[string]any
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":" {\"overallScore\":50} "}}],"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`))
	})

	client, err := NewClient("test-key", "gpt-4o-mini", time.Second)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	text, err := client.Generate(context.Background(), "prompt", llm.AnalysisGeneration)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != `{"overallScore":50}` {
		t.Fatalf("unexpected text %q", text)
	}
	if _, ok := body["temperature"]; !ok {
		t.Fatalf("expected temperature in request")
	}
	if _, ok := body["top_p"]; !ok {
		t.Fatalf("expected top_p in request")
	}
	format, _ := body["response_format"].(map[string]any)
	if format["type"] != "json_object" {
		t.Fatalf("expected json_object response format, got %v", body["response_format"])
	}
}

func TestGenerateOmitsSamplingForGPT5(t *testing.T) {
	var body map[string]any
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Better summary"}}]}`))
	})

	client, err := NewClient("test-key", "gpt-5-mini", time.Second)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.Generate(context.Background(), "prompt", llm.ImprovementGeneration); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, ok := body["temperature"]; ok {
		t.Fatalf("expected temperature to be omitted for gpt-5")
	}
	if _, ok := body["response_format"]; ok {
		t.Fatalf("expected no response_format for plain text generation")
	}
}

func TestGenerateRateLimited(t *testing.T) {
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"requests"}}`))
	})

	client, _ := NewClient("test-key", "gpt-4o", time.Second)
	_, err := client.Generate(context.Background(), "prompt", llm.AnalysisGeneration)
	var inf *llm.InferenceError
	if !errors.As(err, &inf) {
		t.Fatalf("expected InferenceError, got %v", err)
	}
	if inf.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("unexpected status %d", inf.StatusCode)
	}
	if !llm.IsQuotaExceeded(err) {
		t.Fatalf("expected quota classification")
	}
}

func TestGenerateEmptyChoices(t *testing.T) {
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	client, _ := NewClient("test-key", "gpt-4o", time.Second)
	_, err := client.Generate(context.Background(), "prompt", llm.AnalysisGeneration)
	var inf *llm.InferenceError
	if !errors.As(err, &inf) {
		t.Fatalf("expected InferenceError, got %v", err)
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient("key", "", 0); err == nil {
		t.Fatalf("expected model error")
	}
	if _, err := NewClient("", "gpt-4o", 0); err == nil {
		t.Fatalf("expected key error")
	}
}
