// Package llm defines the engine boundary to the generative-AI providers and
// the prompt convention shared by all of them.
package llm

import (
	"context"
	"errors"
	"strings"
)

// SolveInput is one homework question bound for an engine. At least one of
// Question or ImageDataURL must be set.
type SolveInput struct {
	Question     string `json:"question"`
	ImageDataURL string `json:"image_data_url"` // "data:<mime>;base64,..." or bare base64
	Language     string `json:"language"`
}

func (in SolveInput) HasQuestion() bool {
	return strings.TrimSpace(in.Question) != ""
}

func (in SolveInput) HasImage() bool {
	return strings.TrimSpace(in.ImageDataURL) != ""
}

// Engine produces a raw markdown answer for one question. Implementations do
// their own transport retries; a returned error is terminal for the request.
type Engine interface {
	Name() string
	GetModel() string
	GenerateSolution(ctx context.Context, in SolveInput) (string, error)
}

type Engines struct {
	Gemini   Engine
	OpenAI   Engine
	Deepseek Engine

	// Default is the engine used when the request does not name one.
	Default string
}

func (e *Engines) GetEngine(llmName string) (Engine, error) {
	name := strings.ToLower(strings.TrimSpace(llmName))
	if name == "" {
		name = strings.ToLower(strings.TrimSpace(e.Default))
	}
	if name == "" {
		name = "gemini"
	}
	switch name {
	case "gemini":
		return e.Gemini, nil
	case "gpt", "openai":
		return e.OpenAI, nil
	case "deepseek":
		return e.Deepseek, nil
	default:
		return nil, errors.New("unknown llm_name; use 'gemini', 'gpt' or 'deepseek'")
	}
}
