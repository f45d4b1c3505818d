package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"go.uber.org/zap"

	"solvesnap/api/internal/config"
	"solvesnap/api/internal/llm"
	"solvesnap/api/internal/llm/deepseek"
	"solvesnap/api/internal/llm/gemini"
	"solvesnap/api/internal/llm/openai"
	"solvesnap/api/internal/store"
	"solvesnap/api/internal/telegram"
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
	if cfg.Telegram.BotToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var repo *store.SolutionRepo
	if dsn := cfg.Database.URL; dsn != "" {
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			log.Fatal("sql.Open failed", zap.Error(err))
		}
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
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		log.Fatal("telegram auth failed", zap.Error(err))
	}
	log.Info("bot authorized", zap.String("username", bot.Self.UserName))

	router := &telegram.Router{
		Bot: bot,
		Engines: &llm.Engines{
			Gemini:   gemini.New(cfg.Gemini.APIKey, cfg.Gemini.Model),
			OpenAI:   openai.NewWithBaseURL(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL),
			Deepseek: deepseek.NewWithBaseURL(cfg.Deepseek.APIKey, cfg.Deepseek.Model, cfg.Deepseek.BaseURL),
			Default:  cfg.DefaultEngine,
		},
		Repo:            repo,
		Log:             log,
		DefaultLanguage: cfg.DefaultLanguage,
		CacheMaxAge:     cfg.Cache.MaxAge,
	}

	// Liveness probe for container schedulers.
	go func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		srv := &http.Server{Addr: "0.0.0.0:" + cfg.Port, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn("healthz server failed", zap.Error(err))
		}
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)
	log.Info("listening for updates")

	for {
		select {
		case <-ctx.Done():
			bot.StopReceivingUpdates()
			log.Info("shutting down")
			return
		case upd := <-updates:
			go router.HandleUpdate(upd)
		}
	}
}
