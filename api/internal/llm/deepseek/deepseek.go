// Package deepseek is a text-only engine over the OpenAI-compatible DeepSeek
// chat API.
package deepseek

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"resty.dev/v3"

	"solvesnap/api/internal/llm"
	"solvesnap/api/internal/util"
)

const defaultBaseURL = "https://api.deepseek.com/v1"

type Engine struct {
	httpClient *resty.Client
	model      string
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

	return &Engine{httpClient: client, model: strings.TrimSpace(model)}
}

func (e *Engine) Close() error { return e.httpClient.Close() }

func (e *Engine) Name() string     { return "deepseek" }
func (e *Engine) GetModel() string { return e.model }

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (e *Engine) GenerateSolution(ctx context.Context, in llm.SolveInput) (string, error) {
	if in.HasImage() {
		return "", errors.New("deepseek does not support image input; use 'gemini' or 'gpt'")
	}
	requestBody := chatRequest{
		Model: e.model,
		Messages: []chatMessage{
			{Role: "system", Content: llm.SolutionSystemPrompt(in.Language)},
			{Role: "user", Content: llm.SolutionUserPrompt(in)},
		},
	}

	var out chatResponse
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
		return "", errors.New("deepseek solve: empty response")
	}
	return util.StripCodeFences(out.Choices[0].Message.Content), nil
}
