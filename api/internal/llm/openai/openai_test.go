package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solvesnap/api/internal/llm"
)

func mockResponse(content string) ChatCompletionResponse {
	var out ChatCompletionResponse
	var choice Choice
	choice.Message.Content = content
	choice.FinishReason = "stop"
	out.Choices = []Choice{choice}
	return out
}

func TestEngine_GenerateSolution(t *testing.T) {
	imageB64 := base64.StdEncoding.EncodeToString([]byte{0xFF, 0xD8, 0xFF, 0x00})

	tests := []struct {
		name              string
		input             llm.SolveInput
		mockServerHandler func(t *testing.T, w http.ResponseWriter, r *http.Request)

		want            string
		wantError       bool
		wantErrorString string
	}{
		{
			name:  "text question",
			input: llm.SolveInput{Question: "What is 2+2?", Language: "English"},
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/chat/completions", r.URL.Path)

				var reqBody ChatCompletionRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
				assert.Equal(t, "gpt-4o-mini", reqBody.Model)
				require.Len(t, reqBody.Messages, 2)
				assert.Equal(t, "system", reqBody.Messages[0].Role)
				assert.Contains(t, reqBody.Messages[0].Content, "## Solution Steps")
				assert.Contains(t, reqBody.Messages[1].Content, "What is 2+2?")

				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(mockResponse("## Solution Steps\n### Step 1: Add\n2+2=4\n## Final Answer\n4"))
			},
			want: "## Solution Steps\n### Step 1: Add\n2+2=4\n## Final Answer\n4",
		},
		{
			name:  "image question uses content parts",
			input: llm.SolveInput{ImageDataURL: imageB64},
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				var reqBody map[string]any
				require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
				messages := reqBody["messages"].([]any)
				user := messages[1].(map[string]any)
				parts := user["content"].([]any)
				require.Len(t, parts, 2)
				imagePart := parts[1].(map[string]any)
				assert.Equal(t, "image_url", imagePart["type"])
				url := imagePart["image_url"].(map[string]any)["url"].(string)
				assert.Contains(t, url, "data:image/jpeg;base64,")

				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(mockResponse("ok"))
			},
			want: "ok",
		},
		{
			name:  "code fences are stripped",
			input: llm.SolveInput{Question: "q"},
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(mockResponse("```markdown\n## Final Answer\n7\n```"))
			},
			want: "## Final Answer\n7",
		},
		{
			name:  "upstream client error is not retried",
			input: llm.SolveInput{Question: "q"},
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"error":"bad key"}`, http.StatusUnauthorized)
			},
			wantError:       true,
			wantErrorString: "response error 401",
		},
		{
			name:  "empty choices",
			input: llm.SolveInput{Question: "q"},
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(ChatCompletionResponse{})
			},
			wantError:       true,
			wantErrorString: "empty response",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tc.mockServerHandler(t, w, r)
			}))
			defer server.Close()

			engine := NewWithBaseURL("test-key", "gpt-4o-mini", server.URL)
			defer func() { _ = engine.Close() }()

			got, err := engine.GenerateSolution(context.Background(), tc.input)
			if tc.wantError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErrorString)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEngine_GenerateSolution_RetriesServerErrors(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "upstream hiccup", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(mockResponse("recovered"))
	}))
	defer server.Close()

	engine := NewWithBaseURL("test-key", "gpt-4o-mini", server.URL)
	defer func() { _ = engine.Close() }()

	got, err := engine.GenerateSolution(context.Background(), llm.SolveInput{Question: "q"})
	require.NoError(t, err)
	assert.Equal(t, "recovered", got)
	assert.Equal(t, 2, calls)
}

func TestEngine_Identity(t *testing.T) {
	engine := New("key", "gpt-4o-mini")
	assert.Equal(t, "gpt", engine.Name())
	assert.Equal(t, "gpt-4o-mini", engine.GetModel())
}
