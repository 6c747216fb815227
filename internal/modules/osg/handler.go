// Package osg implements the shelf-life calculator module. The user
// sends an assembly date in free form and gets back the resolved
// delivery date and the earliest permissible production date.
package osg

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/avolkov/osg-linebot-go/internal/bot"
	"github.com/avolkov/osg-linebot-go/internal/dateparse"
	"github.com/avolkov/osg-linebot-go/internal/lineutil"
	"github.com/avolkov/osg-linebot-go/internal/logger"
	"github.com/avolkov/osg-linebot-go/internal/metrics"
	"github.com/avolkov/osg-linebot-go/internal/shelflife"
)

// ModuleName identifies this module in postbacks and logs.
const ModuleName = "osg"

// multiDateSeparators hint that the user pasted several dates at once.
var multiDateSeparators = []string{",", ";", "\n"}

// commandKeywords trigger the explicit command form «осг <дата>».
var (
	commandKeywords = []string{"осг", "osg"}
	commandRegex    = bot.BuildKeywordRegex(commandKeywords)
)

// Handler handles shelf-life date calculations.
type Handler struct {
	params       shelflife.Params
	pickupZone   *time.Location
	deliveryZone *time.Location
	logger       *logger.Logger
	metrics      *metrics.Metrics
	now          func() time.Time
}

// NewHandler creates the shelf-life calculator handler.
func NewHandler(params shelflife.Params, pickupZone, deliveryZone *time.Location, log *logger.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		params:       params,
		pickupZone:   pickupZone,
		deliveryZone: deliveryZone,
		logger:       log.WithModule(ModuleName),
		metrics:      m,
		now:          time.Now,
	}
}

// Name returns the module name.
func (h *Handler) Name() string {
	return ModuleName
}

// CanHandle returns true for the explicit «осг <дата>» form, any text
// that parses as a date, or several dates pasted at once.
func (h *Handler) CanHandle(text string) bool {
	if commandRegex.MatchString(text) {
		return true
	}
	if h.hasMultipleDates(text) {
		return true
	}
	_, err := dateparse.Parse(text, h.now().In(h.pickupZone))
	return err == nil
}

// HandleMessage computes the delivery and production dates for the
// given assembly date.
func (h *Handler) HandleMessage(ctx context.Context, text string) []messaging_api.MessageInterface {
	if keyword := bot.MatchKeyword(commandRegex, text); keyword != "" {
		text = bot.ExtractSearchTerm(text, keyword)
	}

	if h.hasMultipleDates(text) {
		return []messaging_api.MessageInterface{
			lineutil.NewTextMessage("Пожалуйста, отправляй одну дату за раз."),
		}
	}

	now := h.now().In(h.pickupZone)

	pickup, err := dateparse.Parse(text, now)
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordLookup("message", "unrecognized")
		}
		return []messaging_api.MessageInterface{
			lineutil.NewTextMessage("Не распознала дату 🤔\nПримеры: 2025-11-10, 10.11.2025, «в пн», «через 3 дня»."),
		}
	}

	delivery := shelflife.ResolveDelivery(pickup, h.pickupZone, h.deliveryZone)
	minProd := shelflife.MinProductionDate(delivery, h.params)

	if h.metrics != nil {
		h.metrics.RecordLookup("message", "success")
	}

	h.logger.WithFields(map[string]any{
		"pickup":   dateparse.Format(pickup),
		"delivery": dateparse.Format(delivery),
		"min_prod": dateparse.Format(minProd),
	}).Debug("calculated production date")

	reply := fmt.Sprintf(
		"📦 Сборка (Аша, UTC+5): %s\n"+
			"🚚 Доставка (Москва, UTC+3): %s\n"+
			"🧾 Производство — не раньше %s (ОСГ ≥ %s%% + %d дн)",
		dateparse.FormatWithWeekday(pickup),
		dateparse.FormatWithWeekday(delivery),
		dateparse.Format(minProd),
		h.params.TargetPercent.String(),
		h.params.SafetyBufferDays,
	)

	msg := lineutil.NewTextMessageWithQuickReply(reply,
		lineutil.QuickReplyItem{Action: lineutil.NewMessageAction("сегодня", "сегодня")},
		lineutil.QuickReplyItem{Action: lineutil.NewMessageAction("завтра", "завтра")},
		lineutil.QuickReplyItem{Action: lineutil.NewMessageAction("послезавтра", "послезавтра")},
		lineutil.QuickReplyItem{Action: lineutil.NewMessageAction("в пн", "в пн")},
	)

	return []messaging_api.MessageInterface{msg}
}

// HandlePostback is unused: this module has no buttons of its own.
func (h *Handler) HandlePostback(ctx context.Context, data string) []messaging_api.MessageInterface {
	return nil
}

func (h *Handler) hasMultipleDates(text string) bool {
	for _, sep := range multiDateSeparators {
		if strings.Contains(text, sep) {
			return true
		}
	}
	return false
}
