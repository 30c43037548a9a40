package genaisdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/shobhitgupta26/resumeai2-sub000/internal/llm"
)

const (
	providerName = "gemini-sdk"
	defaultModel = "gemini-1.5-flash"
)

// Client implements llm.Client on top of the Google generative AI SDK.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient creates an SDK-backed Gemini client. Call Close when done.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Client{client: client, model: model}, nil
}

// Generate sends the prompt once and returns the text of the first candidate.
func (c *Client) Generate(ctx context.Context, prompt string, cfg llm.GenerationConfig) (string, error) {
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(cfg.Temperature)
	if cfg.TopP > 0 {
		model.SetTopP(cfg.TopP)
	}
	if cfg.TopK > 0 {
		model.SetTopK(cfg.TopK)
	}
	if cfg.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(cfg.MaxOutputTokens)
	}
	if cfg.JSONResponse {
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", toInferenceError(err)
	}
	return textFromResponse(resp)
}

// Close releases resources held by the SDK client.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func toInferenceError(err error) error {
	inf := &llm.InferenceError{Provider: providerName, Message: err.Error(), Err: err}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		inf.StatusCode = apiErr.Code
		if apiErr.Message != "" {
			inf.Message = apiErr.Message
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		inf.Message = "request timeout"
	}
	if inf.StatusCode == 0 && strings.Contains(strings.ToLower(inf.Message), "resourceexhausted") {
		inf.StatusCode = http.StatusTooManyRequests
	}
	return inf
}

func textFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", &llm.InferenceError{Provider: providerName, Message: "response missing candidates"}
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", &llm.InferenceError{Provider: providerName, Message: "response missing content"}
	}
	var parts []string
	for _, p := range candidate.Content.Parts {
		if text, ok := p.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 || strings.TrimSpace(strings.Join(parts, "")) == "" {
		return "", &llm.InferenceError{Provider: providerName, Message: "response empty text"}
	}
	return strings.Join(parts, ""), nil
}

var _ llm.Client = (*Client)(nil)
