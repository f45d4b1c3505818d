// Package openai is the chat-completions engine. It also backs any
// OpenAI-compatible endpoint via an overridable base URL.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"resty.dev/v3"

	"solvesnap/api/internal/llm"
	"solvesnap/api/internal/util"
)

const defaultBaseURL = "https://api.openai.com/v1"

type Engine struct {
	httpClient       *resty.Client
	model            string
	maxRetryAttempts uint
}

func New(apiKey, model string) *Engine {
	return NewWithBaseURL(apiKey, model, defaultBaseURL)
}

func NewWithBaseURL(apiKey, model, baseURL string) *Engine {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeader("Authorization", "Bearer "+apiKey)
	client.SetHeader("Content-Type", "application/json")
	client.SetTimeout(180 * time.Second)

	return &Engine{
		httpClient:       client,
		model:            strings.TrimSpace(model),
		maxRetryAttempts: 2,
	}
}

func (e *Engine) Close() error { return e.httpClient.Close() }

func (e *Engine) Name() string     { return "gpt" }
func (e *Engine) GetModel() string { return e.model }

type ChatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
}

// ChatMessage content is either a plain string or a []ContentPart for
// vision-capable requests.
type ChatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type ChatCompletionResponse struct {
	Choices []Choice `json:"choices"`
}

type Choice struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

// isRetryableError matches 5xx, 429 and network-level failures.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "i/o timeout") {
		return true
	}
	if strings.Contains(errStr, "response error 5") {
		return true
	}
	if strings.Contains(errStr, "response error 429") {
		return true
	}
	return false
}

func (e *Engine) GenerateSolution(ctx context.Context, in llm.SolveInput) (string, error) {
	var result string
	if err := retry.Do(
		func() error {
			answer, err := e.generate(ctx, in)
			if err != nil {
				if !isRetryableError(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			result = answer
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(e.maxRetryAttempts+1),
		retry.DelayType(retry.BackOffDelay),
	); err != nil {
		return "", err
	}
	return result, nil
}

func (e *Engine) generate(ctx context.Context, in llm.SolveInput) (string, error) {
	userContent := any(llm.SolutionUserPrompt(in))
	if in.HasImage() {
		dataURL, err := util.NormalizeImageDataURL(in.ImageDataURL)
		if err != nil {
			return "", fmt.Errorf("openai solve: bad image: %w", err)
		}
		userContent = []ContentPart{
			{Type: "text", Text: llm.SolutionUserPrompt(in)},
			{Type: "image_url", ImageURL: &ImageURL{URL: dataURL, Detail: "high"}},
		}
	}

	requestBody := ChatCompletionRequest{
		Model: e.model,
		Messages: []ChatMessage{
			{Role: "system", Content: llm.SolutionSystemPrompt(in.Language)},
			{Role: "user", Content: userContent},
		},
	}

	var out ChatCompletionResponse
	response, err := e.httpClient.R().
		SetContext(ctx).
		SetBody(requestBody).
		SetResult(&out).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("httpClient.Post > %w", err)
	}
	if response.IsError() {
		return "", fmt.Errorf("response error %d: %s", response.StatusCode(), strings.TrimSpace(response.String()))
	}
	if len(out.Choices) == 0 {
		return "", errors.New("openai solve: empty response")
	}
	return util.StripCodeFences(out.Choices[0].Message.Content), nil
}
