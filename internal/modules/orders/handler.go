// Package orders implements the spreadsheet-backed order lookup module.
// Users request the cached order list, pick an order from carousel
// buttons, and get the earliest permissible production date for it.
package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/avolkov/osg-linebot-go/internal/bot"
	"github.com/avolkov/osg-linebot-go/internal/dateparse"
	apperrors "github.com/avolkov/osg-linebot-go/internal/errors"
	"github.com/avolkov/osg-linebot-go/internal/lineutil"
	"github.com/avolkov/osg-linebot-go/internal/logger"
	"github.com/avolkov/osg-linebot-go/internal/metrics"
	ordercache "github.com/avolkov/osg-linebot-go/internal/orders"
	"github.com/avolkov/osg-linebot-go/internal/sheets"
	"github.com/avolkov/osg-linebot-go/internal/shelflife"
)

// ModuleName identifies this module in postbacks and logs.
const ModuleName = "orders"

// actionPick is the postback action for choosing an order.
const actionPick = "pick"

// actionsPerColumn is how many order buttons fit into one carousel column.
const actionsPerColumn = 3

var (
	listKeywords   = []string{"заказы", "заказ", "orders", "/orders"}
	reloadKeywords = []string{"обновить", "reload", "/reload"}
	debugKeywords  = []string{"диагностика", "debug", "/debug"}

	listRegex   = bot.BuildKeywordRegex(listKeywords)
	reloadRegex = bot.BuildKeywordRegex(reloadKeywords)
	debugRegex  = bot.BuildKeywordRegex(debugKeywords)
)

// Handler handles order list, reload and lookup requests.
type Handler struct {
	cache      *ordercache.Cache
	refresher  *ordercache.Refresher
	sheets     *sheets.Client
	params     shelflife.Params
	loc        *time.Location
	maxButtons int
	logger     *logger.Logger
	metrics    *metrics.Metrics
}

// NewHandler creates the order lookup handler. loc is the timezone used
// for displaying snapshot freshness.
func NewHandler(cache *ordercache.Cache, refresher *ordercache.Refresher, sheetsClient *sheets.Client, params shelflife.Params, loc *time.Location, maxButtons int, log *logger.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		cache:      cache,
		refresher:  refresher,
		sheets:     sheetsClient,
		params:     params,
		loc:        loc,
		maxButtons: maxButtons,
		logger:     log.WithModule(ModuleName),
		metrics:    m,
	}
}

// Name returns the module name.
func (h *Handler) Name() string {
	return ModuleName
}

// CanHandle returns true if the text is one of the order keywords.
func (h *Handler) CanHandle(text string) bool {
	return listRegex.MatchString(text) || reloadRegex.MatchString(text) || debugRegex.MatchString(text)
}

// HandleMessage routes the order keywords.
func (h *Handler) HandleMessage(ctx context.Context, text string) []messaging_api.MessageInterface {
	switch {
	case reloadRegex.MatchString(text):
		return h.handleReload(ctx)
	case debugRegex.MatchString(text):
		return h.handleDebug(ctx)
	case listRegex.MatchString(text):
		return h.handleList(ctx)
	}
	return nil
}

// HandlePostback handles order selection buttons. The module prefix has
// already been stripped, so data looks like "pick$<orderNo>".
func (h *Handler) HandlePostback(ctx context.Context, data string) []messaging_api.MessageInterface {
	action, param, ok := strings.Cut(data, bot.PostbackSplitChar)
	if !ok || action != actionPick || param == "" {
		return nil
	}

	order, found := h.cache.Lookup(param)
	if !found {
		if h.metrics != nil {
			h.metrics.RecordLookup("postback", "miss")
		}
		return []messaging_api.MessageInterface{
			lineutil.NewTextMessage("Заказ не найден. Обновите список: /reload."),
		}
	}

	if h.metrics != nil {
		h.metrics.RecordLookup("postback", "success")
	}

	minProd := shelflife.MinProductionDate(order.DeliveryDate, h.params)

	var b strings.Builder
	fmt.Fprintf(&b, "📦 Заказ: %s\n", order.OrderNo)
	if contractor := strings.TrimSpace(order.Contractor); contractor != "" {
		fmt.Fprintf(&b, "🏢 Контрагент: %s\n", contractor)
	}
	fmt.Fprintf(&b, "📅 Дата доставки: %s\n", dateparse.FormatWithWeekday(order.DeliveryDate))
	fmt.Fprintf(&b, "🎯 Требуемый ОСГ: ≥ %s%%\n", h.params.TargetPercent.String())
	fmt.Fprintf(&b, "🏭 Производство — не раньше: %s\n", dateparse.Format(minProd))
	fmt.Fprintf(&b, "ℹ️ Параметры: СГ=%d дней, буфер=%d дн.", h.params.ShelfLifeDays, h.params.SafetyBufferDays)

	return []messaging_api.MessageInterface{lineutil.NewTextMessage(b.String())}
}

func (h *Handler) handleList(ctx context.Context) []messaging_api.MessageInterface {
	all := h.cache.All()
	if len(all) == 0 {
		h.logger.WithError(apperrors.ErrCacheEmpty).Debug("Order list requested before first load")
		return []messaging_api.MessageInterface{
			lineutil.NewTextMessage("Кэш пуст. Сначала выполните /reload."),
		}
	}

	shown := all
	if len(shown) > h.maxButtons {
		shown = shown[:h.maxButtons]
	}

	columns := make([]lineutil.CarouselColumn, 0, (len(shown)+actionsPerColumn-1)/actionsPerColumn)
	for start := 0; start < len(shown); start += actionsPerColumn {
		end := start + actionsPerColumn
		if end > len(shown) {
			end = len(shown)
		}

		actions := make([]lineutil.Action, 0, end-start)
		for _, order := range shown[start:end] {
			label := order.Label()
			data := ModuleName + bot.PostbackSplitChar + actionPick + bot.PostbackSplitChar + order.OrderNo
			actions = append(actions, lineutil.NewPostbackActionWithDisplayText(label, label, data))
		}

		columns = append(columns, lineutil.CarouselColumn{
			Title:   "📦 Заказы",
			Text:    fmt.Sprintf("Заказы %d–%d из %d", start+1, end, len(all)),
			Actions: actions,
		})
	}

	header := fmt.Sprintf("Выберите заказ (%d в кэше).\n%s",
		len(all), lineutil.FormatFreshness(h.cache.FetchedAt(), h.loc))

	return []messaging_api.MessageInterface{
		lineutil.NewTextMessage(header),
		lineutil.NewCarouselTemplate("Список заказов", columns),
	}
}

func (h *Handler) handleReload(ctx context.Context) []messaging_api.MessageInterface {
	count, err := h.refresher.Refresh(ctx)
	if err != nil {
		h.logger.WithError(err).Error("manual reload failed")
		return []messaging_api.MessageInterface{
			lineutil.NewTextMessage("⚠️ Ошибка при загрузке данных. Попробуйте позже."),
		}
	}

	return []messaging_api.MessageInterface{
		lineutil.NewTextMessage(fmt.Sprintf("✅ Загружено %d заказов из Google Sheets.", count)),
	}
}

func (h *Handler) handleDebug(ctx context.Context) []messaging_api.MessageInterface {
	var b strings.Builder

	desc, err := h.sheets.Describe(ctx)
	if err != nil {
		fmt.Fprintf(&b, "⚠️ Таблица недоступна: %v\n", err)
	} else {
		b.WriteString(desc)
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "В кэше: %d заказов\n", h.cache.Len())
	b.WriteString(lineutil.FormatFreshness(h.cache.FetchedAt(), h.loc))

	return []messaging_api.MessageInterface{lineutil.NewTextMessage(b.String())}
}
