// Package usage reports the per-chat request quota.
package usage

import (
	"context"
	"fmt"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/avolkov/osg-linebot-go/internal/bot"
	"github.com/avolkov/osg-linebot-go/internal/ctxutil"
	"github.com/avolkov/osg-linebot-go/internal/lineutil"
	"github.com/avolkov/osg-linebot-go/internal/logger"
	"github.com/avolkov/osg-linebot-go/internal/ratelimit"
)

// ModuleName identifies this module in postbacks and logs.
const ModuleName = "usage"

var (
	usageKeywords = []string{"лимит", "квота", "usage", "quota", "/usage"}

	usageRegex = bot.BuildKeywordRegex(usageKeywords)
)

// Handler reports how many requests the current chat has left.
type Handler struct {
	limiter *ratelimit.KeyedLimiter
	burst   float64
	logger  *logger.Logger
}

// NewHandler creates the usage handler. burst is the configured bucket
// size of the limiter, shown as the quota ceiling.
func NewHandler(limiter *ratelimit.KeyedLimiter, burst float64, log *logger.Logger) *Handler {
	return &Handler{
		limiter: limiter,
		burst:   burst,
		logger:  log.WithModule(ModuleName),
	}
}

// Name returns the module name.
func (h *Handler) Name() string {
	return ModuleName
}

// CanHandle returns true if the text is one of the usage keywords.
func (h *Handler) CanHandle(text string) bool {
	return usageRegex.MatchString(text)
}

// HandleMessage reports the remaining request quota for this chat.
func (h *Handler) HandleMessage(ctx context.Context, text string) []messaging_api.MessageInterface {
	chatID := ctxutil.GetChatID(ctx)
	if chatID == "" || h.limiter == nil {
		return []messaging_api.MessageInterface{
			lineutil.NewTextMessage("Лимиты запросов не настроены."),
		}
	}

	available := h.limiter.GetAvailable(chatID)

	reply := fmt.Sprintf(
		"⏱ Лимит запросов\nДоступно сейчас: %d из %d\nСчётчик пополняется автоматически.",
		int(available), int(h.burst),
	)

	return []messaging_api.MessageInterface{lineutil.NewTextMessage(reply)}
}

// HandlePostback is unused: this module has no buttons.
func (h *Handler) HandlePostback(ctx context.Context, data string) []messaging_api.MessageInterface {
	return nil
}
