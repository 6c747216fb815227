package bot

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/avolkov/osg-linebot-go/internal/ctxutil"
	"github.com/avolkov/osg-linebot-go/internal/lineutil"
	"github.com/avolkov/osg-linebot-go/internal/logger"
	"github.com/avolkov/osg-linebot-go/internal/ratelimit"
)

// helpKeywords are the keywords that trigger the help message
var helpKeywords = []string{"помощь", "справка", "help", "/help", "/start", "старт"}

// maxIncomingTextLength is the LINE API limit for text message content.
const maxIncomingTextLength = 20000

// Processor handles the core logic of processing LINE events.
// It orchestrates rate limiting, sanitization and dispatching to handlers.
type Processor struct {
	registry    *Registry
	userLimiter *ratelimit.KeyedLimiter
	logger      *logger.Logger

	webhookTimeout time.Duration
}

// ProcessorConfig holds configuration for creating a new Processor.
type ProcessorConfig struct {
	Registry       *Registry
	UserLimiter    *ratelimit.KeyedLimiter
	Logger         *logger.Logger
	WebhookTimeout time.Duration
}

// NewProcessor creates a new event processor.
func NewProcessor(cfg ProcessorConfig) *Processor {
	return &Processor{
		registry:       cfg.Registry,
		userLimiter:    cfg.UserLimiter,
		logger:         cfg.Logger,
		webhookTimeout: cfg.WebhookTimeout,
	}
}

// ProcessMessage handles a text message event.
func (p *Processor) ProcessMessage(ctx context.Context, event webhook.MessageEvent) ([]messaging_api.MessageInterface, error) {
	chatID := GetChatID(event.Source)
	userID := GetUserID(event.Source)

	// Inject context values for downstream handlers
	ctx = ctxutil.WithChatID(ctx, chatID)
	ctx = ctxutil.WithUserID(ctx, userID)

	// Only handle text messages
	if event.Message.GetType() != "text" {
		return nil, nil
	}

	textMsg, ok := event.Message.(webhook.TextMessageContent)
	if !ok {
		return nil, errors.New("failed to cast message to text")
	}

	text := textMsg.Text
	if len(text) == 0 {
		return nil, nil
	}
	if len(text) > maxIncomingTextLength {
		p.logger.WithField("length", len(text)).Warn("Text message too long")
		return []messaging_api.MessageInterface{
			lineutil.ErrorMessageWithDetail(fmt.Sprintf("Сообщение слишком длинное (больше %d символов). Сократите и попробуйте снова.", maxIncomingTextLength)),
		}, nil
	}

	// Sanitize input. Dates carry dots and slashes, so only whitespace
	// is normalized here.
	text = normalizeWhitespace(strings.TrimSpace(text))
	if len(text) == 0 {
		return nil, nil
	}

	// Quota is charged only for messages the bot could actually act on;
	// stickers, images and empty payloads return above without a token.
	if allowed, rateLimitMsg := p.checkUserRateLimit(event.Source, chatID); !allowed {
		return rateLimitMsg, nil
	}

	// Help keywords win over module dispatch
	if slices.ContainsFunc(helpKeywords, func(k string) bool {
		return strings.EqualFold(text, k)
	}) {
		return p.helpMessages(), nil
	}

	processCtx, cancel := context.WithTimeout(ctxutil.PreserveTracing(ctx), p.webhookTimeout)
	defer cancel()

	if msgs := p.registry.DispatchMessage(processCtx, text); len(msgs) > 0 {
		return msgs, nil
	}

	// Nothing matched. Stay silent in group chats; guide the user in
	// personal ones.
	if !IsPersonalChat(event.Source) {
		return nil, nil
	}
	return p.helpMessages(), nil
}

// ProcessPostback handles a postback event.
func (p *Processor) ProcessPostback(ctx context.Context, event webhook.PostbackEvent) ([]messaging_api.MessageInterface, error) {
	chatID := GetChatID(event.Source)
	userID := GetUserID(event.Source)

	ctx = ctxutil.WithChatID(ctx, chatID)
	ctx = ctxutil.WithUserID(ctx, userID)

	data := event.Postback.Data
	if len(data) == 0 {
		p.logger.Warn("Empty postback data")
		return nil, nil
	}
	if len(data) > lineutil.MaxPostbackData {
		p.logger.WithField("bytes", len(data)).Warn("Postback data too long")
		return []messaging_api.MessageInterface{
			lineutil.ErrorMessageWithDetail("Кнопка повреждена. Откройте список заказов заново."),
		}, nil
	}

	data = strings.TrimSpace(data)

	p.logger.WithField("data", data).Debug("Received postback")

	processCtx, cancel := context.WithTimeout(ctxutil.PreserveTracing(ctx), p.webhookTimeout)
	defer cancel()

	if msgs := p.registry.DispatchPostback(processCtx, data); len(msgs) > 0 {
		return msgs, nil
	}

	return []messaging_api.MessageInterface{
		lineutil.NewTextMessage("Кнопка устарела. Откройте список заказов заново."),
	}, nil
}

// ProcessFollow handles a follow event.
func (p *Processor) ProcessFollow(event webhook.FollowEvent) ([]messaging_api.MessageInterface, error) {
	p.logger.Info("New user followed the bot")

	messages := []messaging_api.MessageInterface{
		lineutil.NewTextMessage("Привет! Я считаю даты производства под требуемый остаточный срок годности."),
	}
	messages = append(messages, p.helpMessages()...)
	return messages, nil
}

// ProcessJoin handles the bot being added to a group or room.
func (p *Processor) ProcessJoin(event webhook.JoinEvent) ([]messaging_api.MessageInterface, error) {
	p.logger.Info("Bot joined a group chat")
	return p.helpMessages(), nil
}

// helpMessages returns the usage instructions with quick reply shortcuts.
func (p *Processor) helpMessages() []messaging_api.MessageInterface {
	help := "Что я умею:\n" +
		"• Пришлите дату отгрузки (например «10.11.2025», «завтра», «в пт») — посчитаю сборку, доставку и самую раннюю дату производства\n" +
		"• «заказы» — кнопки с заказами из таблицы\n" +
		"• «обновить» — перечитать таблицу\n" +
		"• «диагностика» — проверить подключение к таблице\n" +
		"• «помощь» — это сообщение"

	msg := lineutil.NewTextMessageWithQuickReply(help,
		lineutil.QuickReplyItem{Action: lineutil.NewMessageAction("сегодня", "сегодня")},
		lineutil.QuickReplyItem{Action: lineutil.NewMessageAction("завтра", "завтра")},
		lineutil.QuickReplyItem{Action: lineutil.NewMessageAction("заказы", "заказы")},
		lineutil.QuickReplyItem{Action: lineutil.NewMessageAction("обновить", "обновить")},
	)

	return []messaging_api.MessageInterface{msg}
}

// checkUserRateLimit checks if the chat has exceeded its rate limit.
func (p *Processor) checkUserRateLimit(source webhook.SourceInterface, chatID string) (bool, []messaging_api.MessageInterface) {
	if chatID == "" {
		return true, nil
	}

	if p.userLimiter.Allow(chatID) {
		return true, nil
	}

	logChatID := chatID
	if len(chatID) > 8 {
		logChatID = chatID[:8] + "..."
	}
	p.logger.WithField("chat_id", logChatID).Warn("User rate limit exceeded")

	// Groups get silently throttled to avoid spamming everyone
	if IsPersonalChat(source) {
		return false, []messaging_api.MessageInterface{
			lineutil.NewTextMessage("⏳ Слишком много запросов, попробуйте чуть позже."),
		}
	}

	return false, nil
}
