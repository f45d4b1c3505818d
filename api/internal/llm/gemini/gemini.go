package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"solvesnap/api/internal/llm"
	"solvesnap/api/internal/util"
)

type Engine struct {
	APIKey string
	Model  string
}

func New(apiKey, model string) *Engine {
	return &Engine{
		APIKey: strings.TrimSpace(apiKey),
		Model:  strings.TrimSpace(model),
	}
}

func (e *Engine) Name() string     { return "gemini" }
func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) GenerateSolution(ctx context.Context, in llm.SolveInput) (string, error) {
	if e.APIKey == "" {
		return "", errors.New("GEMINI_API_KEY is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(e.APIKey))
	if err != nil {
		return "", err
	}
	defer cl.Close()

	m := cl.GenerativeModel(e.Model)
	if m == nil {
		return "", fmt.Errorf("gemini: model is nil")
	}
	m.GenerationConfig = genai.GenerationConfig{
		Temperature: ptrFloat32(0),
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(llm.SolutionSystemPrompt(in.Language))},
	}

	parts := []genai.Part{genai.Text(llm.SolutionUserPrompt(in))}
	if in.HasImage() {
		imgBytes, mimeFromDataURL, err := util.DecodeBase64MaybeDataURL(in.ImageDataURL)
		if err != nil {
			return "", fmt.Errorf("gemini solve: bad image: %w", err)
		}
		parts = append(parts, &genai.Blob{
			MIMEType: util.PickMIME("", mimeFromDataURL, imgBytes),
			Data:     imgBytes,
		})
	}

	// Retries cover 5xx and other transient upstream failures.
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		resp, err := m.GenerateContent(ctx, parts...)
		if err != nil {
			lastErr = err
			time.Sleep(time.Duration(attempt) * 300 * time.Millisecond)
			continue
		}
		txt := firstText(resp)
		if txt == "" {
			return "", fmt.Errorf("gemini solve: empty response")
		}
		return util.StripCodeFences(txt), nil
	}
	return "", lastErr
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		var b strings.Builder
		for _, p := range cand.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if s := strings.TrimSpace(b.String()); s != "" {
			return s
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
