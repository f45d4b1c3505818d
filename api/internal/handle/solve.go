package handle

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"solvesnap/api/internal/llm"
	"solvesnap/api/internal/session"
	"solvesnap/api/internal/solution"
	"solvesnap/api/internal/store"
)

type SolveRequest struct {
	LLMName   string `json:"llm_name"`
	SessionID string `json:"session_id"`
	llm.SolveInput
}

type SolveResponse struct {
	Engine    string           `json:"engine"`
	Model     string           `json:"model"`
	RawAnswer string           `json:"raw_answer"`
	Result    *solution.Result `json:"result"`
	Cached    bool             `json:"cached"`
	SessionID string           `json:"session_id"`
}

func (h *Handle) Solve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	var req SolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if !req.HasQuestion() && !req.HasImage() {
		http.Error(w, "question or image_data_url is required", http.StatusBadRequest)
		return
	}

	engine, err := h.engs.GetEngine(req.LLMName)
	if err != nil {
		http.Error(w, "solve error: "+err.Error(), http.StatusBadRequest)
		return
	}

	sess := h.sessions.GetOrStart(req.SessionID)
	sess.Begin()
	time.Sleep(h.sessions.AnalyzingDelay())
	_ = sess.Transition(session.StateSolving)

	ctx, cancel := context.WithTimeout(r.Context(), 180*time.Second)
	defer cancel()

	raw, cached, err := h.rawAnswer(ctx, engine, req.SolveInput)
	if err != nil {
		_ = sess.Transition(session.StateError)
		h.log.Warn("solve failed",
			zap.String("engine", engine.Name()),
			zap.String("model", engine.GetModel()),
			zap.Error(err))
		http.Error(w, "solve error: "+err.Error(), http.StatusBadGateway)
		return
	}
	_ = sess.Transition(session.StateCompleted)

	writeJSON(w, http.StatusOK, SolveResponse{
		Engine:    engine.Name(),
		Model:     engine.GetModel(),
		RawAnswer: raw,
		Result:    solution.Parse(raw),
		Cached:    cached,
		SessionID: sess.ID,
	})
}

// rawAnswer consults the cache before asking the engine. Cache errors are
// never fatal; the engine answer wins.
func (h *Handle) rawAnswer(ctx context.Context, engine llm.Engine, in llm.SolveInput) (string, bool, error) {
	hash := store.QueryHash(engine.Name(), engine.GetModel(), in.Language, in.Question, in.ImageDataURL)

	if h.repo != nil {
		if row, err := h.repo.FindByHash(ctx, hash, engine.Name(), engine.GetModel(), h.cacheMaxAge); err == nil {
			return row.RawAnswer, true, nil
		}
	}

	raw, err := engine.GenerateSolution(ctx, in)
	if err != nil {
		return "", false, err
	}

	if h.repo != nil {
		row := store.SolutionRow{
			QueryHash: hash,
			Engine:    engine.Name(),
			Model:     engine.GetModel(),
			Language:  in.Language,
			Question:  in.Question,
			RawAnswer: raw,
		}
		if err := h.repo.Upsert(ctx, row); err != nil {
			h.log.Warn("cache upsert failed", zap.Error(err))
		}
	}
	return raw, false, nil
}
