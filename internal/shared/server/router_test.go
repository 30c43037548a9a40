package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shobhitgupta26/resumeai2-sub000/internal/analyses"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/history"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/llm"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/shared/config"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/shared/server/middleware"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/shared/telemetry"
)

type stubLLM struct{ resp string }

func (s stubLLM) Generate(ctx context.Context, prompt string, cfg llm.GenerationConfig) (string, error) {
	return s.resp, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	restore := telemetry.SetOutput(io.Discard)
	t.Cleanup(restore)

	store := history.NewListStore(history.NewMemoryBackend())
	svc := &analyses.Service{LLM: stubLLM{resp: `{"overallScore":81}`}, History: store}
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	return NewRouter(RouterDeps{
		Config:          config.Config{Env: "dev", CORSAllowOrigin: []string{"http://localhost:5173"}},
		AnalysisHandler: analyses.NewHandler(svc, nil, nil),
		HistoryHandler:  history.NewHandler(store),
		Limiter:         middleware.NewRateLimiter(func() time.Time { return now }),
	})
}

func TestRouterHealthAndMetrics(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok":true`) {
		t.Fatalf("unexpected health response %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header")
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "analysis_started_total") {
		t.Fatalf("unexpected metrics response %d", w.Code)
	}
}

func TestRouterAnalyzeThenHistory(t *testing.T) {
	r := newTestRouter(t)

	body := `{"text":"Jane Doe\nBackend engineer, Go and PostgreSQL","filename":"jane.txt","save":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("analyze expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var out analyses.Outcome
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode outcome: %v", err)
	}
	if out.Result.OverallScore != 81 || out.SavedID == "" {
		t.Fatalf("unexpected outcome %+v", out)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/history/"+out.SavedID, nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "jane.txt") {
		t.Fatalf("history get failed %d %s", w.Code, w.Body.String())
	}
}

func TestRouterRateLimitsAnalysis(t *testing.T) {
	r := newTestRouter(t)

	var last int
	for i := 0; i < 6; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses", strings.NewReader(`{"text":"Jane Doe resume"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		last = w.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected sixth analysis to be throttled, got %d", last)
	}
}

func TestAddr(t *testing.T) {
	tests := map[string]string{"": ":8080", "9000": ":9000", ":7000": ":7000"}
	for in, want := range tests {
		if got := Addr(in); got != want {
			t.Fatalf("Addr(%q) = %q, want %q", in, got, want)
		}
	}
}
