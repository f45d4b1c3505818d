package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"go.uber.org/zap"

	"solvesnap/api/internal/config"
	"solvesnap/api/internal/handle"
	"solvesnap/api/internal/httpserver"
	"solvesnap/api/internal/llm"
	"solvesnap/api/internal/llm/deepseek"
	"solvesnap/api/internal/llm/gemini"
	"solvesnap/api/internal/llm/openai"
	"solvesnap/api/internal/session"
	"solvesnap/api/internal/store"
	"solvesnap/api/internal/web"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load(os.Getenv("SOLVESNAP_CONFIG"))
	if err != nil {
		log.Fatal("config load failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Postgres answer cache (optional) ---
	var db *sql.DB
	var repo *store.SolutionRepo
	if dsn := cfg.Database.URL; dsn != "" {
		db, err = sql.Open("pgx", dsn)
		if err != nil {
			log.Fatal("sql.Open failed", zap.Error(err))
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(1 * time.Hour)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := db.PingContext(pingCtx); err != nil {
			cancel()
			log.Fatal("db ping failed", zap.Error(err))
		}
		cancel()

		repo = store.NewSolutionRepo(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatal("db schema failed", zap.Error(err))
		}
		log.Info("answer cache enabled")
		go purgeLoop(ctx, repo, cfg.Cache.MaxAge, cfg.Cache.PurgeInterval, log)
	} else {
		log.Info("no DATABASE_URL, answer cache disabled")
	}

	engines := &llm.Engines{
		Gemini:   gemini.New(cfg.Gemini.APIKey, cfg.Gemini.Model),
		OpenAI:   openai.NewWithBaseURL(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL),
		Deepseek: deepseek.NewWithBaseURL(cfg.Deepseek.APIKey, cfg.Deepseek.Model, cfg.Deepseek.BaseURL),
		Default:  cfg.DefaultEngine,
	}
	sessions := session.NewManager(cfg.AnalyzingDelay)
	h := handle.New(engines, repo, sessions, cfg.Cache.MaxAge, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if db != nil {
			pingCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(pingCtx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("db: not ok\n" + err.Error()))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/v1/solve", h.Solve)
	mux.HandleFunc("/v1/parse", h.Parse)
	mux.Handle("/", web.Handler())

	if err := httpserver.Run(ctx, "0.0.0.0:"+cfg.Port, mux, log); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}

// purgeLoop keeps the answer cache from growing without bound.
func purgeLoop(ctx context.Context, repo *store.SolutionRepo, maxAge, interval time.Duration, log *zap.Logger) {
	if maxAge <= 0 || interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := repo.PurgeOlderThan(ctx, maxAge)
			if err != nil {
				log.Warn("cache purge failed", zap.Error(err))
				continue
			}
			if n > 0 {
				log.Info("cache purged", zap.Int64("rows", n))
			}
		}
	}
}
