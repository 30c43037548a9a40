package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shobhitgupta26/resumeai2-sub000/internal/llm"
)

const (
	providerName   = "gemini"
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-1.5-flash"
)

// Client implements llm.Client against the generateContent REST endpoint.
// The API key travels as the "key" query parameter.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at a different endpoint root.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if strings.TrimSpace(base) != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// NewClient constructs a Gemini REST client.
func NewClient(apiKey, model string, timeout time.Duration, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	c := &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature      float32 `json:"temperature"`
	TopK             int32   `json:"topK,omitempty"`
	TopP             float32 `json:"topP,omitempty"`
	MaxOutputTokens  int32   `json:"maxOutputTokens,omitempty"`
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content      *content `json:"content"`
		FinishReason string   `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// Generate sends one generateContent request and returns
// candidates[0].content.parts[0].text.
func (c *Client) Generate(ctx context.Context, prompt string, cfg llm.GenerationConfig) (string, error) {
	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     cfg.Temperature,
			TopK:            cfg.TopK,
			TopP:            cfg.TopP,
			MaxOutputTokens: cfg.MaxOutputTokens,
		},
	}
	if cfg.JSONResponse {
		reqBody.GenerationConfig.ResponseMIMEType = "application/json"
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, url.PathEscape(c.model), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", &llm.InferenceError{Provider: providerName, Message: "request timeout", Err: err}
		}
		return "", &llm.InferenceError{Provider: providerName, Message: redactKey(err.Error(), c.apiKey), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &llm.InferenceError{Provider: providerName, StatusCode: resp.StatusCode, Message: "read response body", Err: err}
	}

	var parsed generateResponse
	decodeErr := json.Unmarshal(body, &parsed)
	if parsed.Error != nil && parsed.Error.Message != "" {
		return "", &llm.InferenceError{Provider: providerName, StatusCode: resp.StatusCode, Message: parsed.Error.Message}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &llm.InferenceError{Provider: providerName, StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	if decodeErr != nil {
		return "", &llm.InferenceError{Provider: providerName, StatusCode: resp.StatusCode, Message: "response parse: " + decodeErr.Error(), Err: decodeErr}
	}
	if len(parsed.Candidates) == 0 {
		return "", &llm.InferenceError{Provider: providerName, StatusCode: resp.StatusCode, Message: "response missing candidates"}
	}
	first := parsed.Candidates[0]
	if first.Content == nil || len(first.Content.Parts) == 0 {
		msg := "response missing content"
		if first.FinishReason != "" {
			msg += " (finishReason " + first.FinishReason + ")"
		}
		return "", &llm.InferenceError{Provider: providerName, StatusCode: resp.StatusCode, Message: msg}
	}
	text := first.Content.Parts[0].Text
	if strings.TrimSpace(text) == "" {
		return "", &llm.InferenceError{Provider: providerName, StatusCode: resp.StatusCode, Message: "response empty text"}
	}
	return text, nil
}

// redactKey keeps the API key out of transport errors, which embed the URL.
func redactKey(msg, key string) string {
	if key == "" {
		return msg
	}
	msg = strings.ReplaceAll(msg, url.QueryEscape(key), "REDACTED")
	return strings.ReplaceAll(msg, key, "REDACTED")
}

var _ llm.Client = (*Client)(nil)
