// Package telegram is the bot front end. Questions arrive as plain text or as
// a photo of the task; both go through the same solve pipeline as the HTTP
// API.
package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"solvesnap/api/internal/llm"
	"solvesnap/api/internal/solution"
	"solvesnap/api/internal/store"
)

const solveTimeout = 180 * time.Second

type Router struct {
	Bot     *tgbotapi.BotAPI
	Engines *llm.Engines
	Repo    *store.SolutionRepo // nil when the answer cache is disabled
	Log     *zap.Logger

	DefaultLanguage string
	CacheMaxAge     time.Duration

	engineChoice sync.Map // chatID -> engine name
	langChoice   sync.Map // chatID -> language
}

func (r *Router) HandleUpdate(upd tgbotapi.Update) {
	if upd.Message == nil {
		return
	}
	msg := upd.Message
	switch {
	case msg.IsCommand():
		r.handleCommand(msg)
	case len(msg.Photo) > 0:
		r.acceptPhoto(msg)
	case strings.TrimSpace(msg.Text) != "":
		r.acceptText(msg)
	}
}

func (r *Router) handleCommand(msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	switch msg.Command() {
	case "start":
		r.send(cid, "Send me a homework question as text or a photo of the task.\nCommands: /engine, /language")
	case "engine":
		arg := strings.ToLower(strings.TrimSpace(msg.CommandArguments()))
		if arg == "" {
			r.send(cid, "Current engine: "+r.engineFor(cid)+
				"\nUsage:\n/engine gemini\n/engine gpt\n/engine deepseek")
			return
		}
		if _, err := r.Engines.GetEngine(arg); err != nil {
			r.send(cid, "Unknown engine. Available: gemini | gpt | deepseek")
			return
		}
		r.engineChoice.Store(cid, arg)
		r.send(cid, "Ok, switching to: "+arg)
	case "language":
		arg := strings.TrimSpace(msg.CommandArguments())
		if arg == "" {
			r.send(cid, "Current language: "+r.languageFor(cid)+"\nUsage: /language German")
			return
		}
		r.langChoice.Store(cid, arg)
		r.send(cid, "Ok, answering in: "+arg)
	default:
		r.send(cid, "Unknown command")
	}
}

func (r *Router) acceptText(msg *tgbotapi.Message) {
	r.solve(msg.Chat.ID, llm.SolveInput{
		Question: msg.Text,
		Language: r.languageFor(msg.Chat.ID),
	})
}

func (r *Router) solve(cid int64, in llm.SolveInput) {
	engine, err := r.Engines.GetEngine(r.engineFor(cid))
	if err != nil {
		r.sendError(cid, err)
		return
	}
	r.send(cid, "Got it, working on the solution…")

	ctx, cancel := context.WithTimeout(context.Background(), solveTimeout)
	defer cancel()

	raw, cached, err := r.rawAnswer(ctx, engine, in)
	if err != nil {
		r.Log.Warn("solve failed", zap.Int64("chat_id", cid), zap.Error(err))
		r.sendError(cid, err)
		return
	}
	if cached {
		r.Log.Info("answer served from cache", zap.Int64("chat_id", cid))
	}
	r.send(cid, FormatResult(solution.Parse(raw), raw))
}

func (r *Router) rawAnswer(ctx context.Context, engine llm.Engine, in llm.SolveInput) (string, bool, error) {
	hash := store.QueryHash(engine.Name(), engine.GetModel(), in.Language, in.Question, in.ImageDataURL)
	if r.Repo != nil {
		if row, err := r.Repo.FindByHash(ctx, hash, engine.Name(), engine.GetModel(), r.CacheMaxAge); err == nil {
			return row.RawAnswer, true, nil
		}
	}
	raw, err := engine.GenerateSolution(ctx, in)
	if err != nil {
		return "", false, err
	}
	if r.Repo != nil {
		row := store.SolutionRow{
			QueryHash: hash,
			Engine:    engine.Name(),
			Model:     engine.GetModel(),
			Language:  in.Language,
			Question:  in.Question,
			RawAnswer: raw,
		}
		if err := r.Repo.Upsert(ctx, row); err != nil {
			r.Log.Warn("cache upsert failed", zap.Error(err))
		}
	}
	return raw, false, nil
}

func (r *Router) engineFor(cid int64) string {
	if v, ok := r.engineChoice.Load(cid); ok {
		return v.(string)
	}
	return r.Engines.Default
}

func (r *Router) languageFor(cid int64) string {
	if v, ok := r.langChoice.Load(cid); ok {
		return v.(string)
	}
	if r.DefaultLanguage != "" {
		return r.DefaultLanguage
	}
	return "English"
}

func (r *Router) send(cid int64, text string) {
	if len(text) > 3900 {
		text = text[:3900] + "…"
	}
	if _, err := r.Bot.Send(tgbotapi.NewMessage(cid, text)); err != nil {
		r.Log.Warn("telegram send failed", zap.Int64("chat_id", cid), zap.Error(err))
	}
}

func (r *Router) sendError(cid int64, err error) {
	r.send(cid, "⚠️ "+err.Error())
}

func download(httpc *http.Client, url string) ([]byte, error) {
	resp, err := httpc.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(b))
	}
	return io.ReadAll(resp.Body)
}
