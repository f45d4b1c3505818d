package telegram

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"solvesnap/api/internal/llm"
	"solvesnap/api/internal/util"
)

var httpc = &http.Client{Timeout: 60 * time.Second}

// acceptPhoto downloads the largest rendition of the photo and feeds it into
// the solve pipeline as a data URL. The photo caption, when present, is used
// as the question text.
func (r *Router) acceptPhoto(msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	ph := msg.Photo[len(msg.Photo)-1]

	file, err := r.Bot.GetFile(tgbotapi.FileConfig{FileID: ph.FileID})
	if err != nil {
		r.sendError(cid, fmt.Errorf("could not fetch the photo: %w", err))
		return
	}
	url := fmt.Sprintf("https://api.telegram.org/file/bot%s/%s", r.Bot.Token, file.FilePath)
	imgBytes, err := download(httpc, url)
	if err != nil {
		r.sendError(cid, fmt.Errorf("could not download the photo: %w", err))
		return
	}

	dataURL := util.MakeDataURL(util.SniffMimeHTTP(imgBytes), base64.StdEncoding.EncodeToString(imgBytes))
	r.solve(cid, llm.SolveInput{
		Question:     strings.TrimSpace(msg.Caption),
		ImageDataURL: dataURL,
		Language:     r.languageFor(cid),
	})
}
