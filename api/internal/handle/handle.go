package handle

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"solvesnap/api/internal/llm"
	"solvesnap/api/internal/session"
	"solvesnap/api/internal/store"
)

type Handle struct {
	engs     *llm.Engines
	repo     *store.SolutionRepo // nil when the answer cache is disabled
	sessions *session.Manager
	log      *zap.Logger

	cacheMaxAge time.Duration
}

func New(engs *llm.Engines, repo *store.SolutionRepo, sessions *session.Manager, cacheMaxAge time.Duration, log *zap.Logger) *Handle {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handle{
		engs:        engs,
		repo:        repo,
		sessions:    sessions,
		cacheMaxAge: cacheMaxAge,
		log:         log,
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
