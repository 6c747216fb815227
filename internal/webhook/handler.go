// Package webhook receives LINE webhook callbacks, acknowledges them
// immediately and dispatches the events to the bot processor in the
// background.
package webhook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/avolkov/osg-linebot-go/internal/bot"
	"github.com/avolkov/osg-linebot-go/internal/ctxutil"
	"github.com/avolkov/osg-linebot-go/internal/lineutil"
	"github.com/avolkov/osg-linebot-go/internal/logger"
	"github.com/avolkov/osg-linebot-go/internal/metrics"
	"github.com/avolkov/osg-linebot-go/internal/ratelimit"
)

// Handler handles LINE webhook events.
type Handler struct {
	channelSecret string
	client        *messaging_api.MessagingApiAPI
	metrics       *metrics.Metrics
	logger        *logger.Logger
	processor     *bot.Processor
	rateLimiter   *ratelimit.Limiter
	wg            sync.WaitGroup

	maxMessagesPerReply int
	maxEventsPerWebhook int
	minReplyTokenLength int
}

// HandlerConfig holds configuration for creating a Handler.
type HandlerConfig struct {
	ChannelSecret string
	ChannelToken  string
	Metrics       *metrics.Metrics
	Logger        *logger.Logger
	Processor     *bot.Processor

	// GlobalRateRPS limits outgoing LINE API calls.
	GlobalRateRPS float64

	MaxMessagesPerReply int
	MaxEventsPerWebhook int
	MinReplyTokenLength int
}

// NewHandler creates a new webhook handler.
func NewHandler(cfg HandlerConfig) (*Handler, error) {
	client, err := messaging_api.NewMessagingApiAPI(cfg.ChannelToken)
	if err != nil {
		return nil, fmt.Errorf("create messaging API client: %w", err)
	}

	return &Handler{
		channelSecret:       cfg.ChannelSecret,
		client:              client,
		metrics:             cfg.Metrics,
		logger:              cfg.Logger,
		processor:           cfg.Processor,
		rateLimiter:         ratelimit.New(cfg.GlobalRateRPS, cfg.GlobalRateRPS),
		maxMessagesPerReply: cfg.MaxMessagesPerReply,
		maxEventsPerWebhook: cfg.MaxEventsPerWebhook,
		minReplyTokenLength: cfg.MinReplyTokenLength,
	}, nil
}

// Handle is the Gin handler for the webhook endpoint. It validates the
// signature, answers 200 right away and processes events asynchronously.
func (h *Handler) Handle(c *gin.Context) {
	cb, err := webhook.ParseRequest(h.channelSecret, c.Request)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			h.logger.Warn("Invalid webhook signature")
			c.Status(http.StatusBadRequest)
		} else {
			h.logger.WithError(err).Error("Failed to parse webhook request")
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.Status(http.StatusOK)

	start := time.Now()
	h.metrics.RecordWebhook("batch", "received", 0)

	if len(cb.Events) > h.maxEventsPerWebhook {
		h.logger.WithField("event_count", len(cb.Events)).
			WithField("limit", h.maxEventsPerWebhook).
			Warn("Too many events in webhook batch; truncating")
		cb.Events = cb.Events[:h.maxEventsPerWebhook]
	}

	// Copy events so processing never races the completed HTTP exchange.
	events := make([]webhook.EventInterface, len(cb.Events))
	copy(events, cb.Events)

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				h.logger.WithField("panic", r).Error("Panic in async event processing")
			}
		}()

		processingCtx := context.Background()
		for _, event := range events {
			h.processEvent(processingCtx, event, start)
		}
	}()
}

// processEvent handles a single webhook event.
func (h *Handler) processEvent(ctx context.Context, event webhook.EventInterface, webhookStart time.Time) {
	eventStart := time.Now()
	var messages []messaging_api.MessageInterface
	var eventType string
	var err error

	eventID, isRedelivery := extractEventMeta(event)
	if eventID != "" {
		ctx = ctxutil.WithRequestID(ctx, eventID)
	}

	log := h.logger
	if eventID != "" {
		log = log.WithRequestID(eventID)
	}
	if isRedelivery != nil {
		log = log.WithField("is_redelivery", *isRedelivery)
	}

	if h.shouldShowLoading(event) {
		if loadErr := h.showLoadingAnimation(event); loadErr != nil {
			log.WithError(loadErr).Warn("Failed to show loading animation")
		}
	}

	switch e := event.(type) {
	case webhook.MessageEvent:
		eventType = "message"
		messages, err = h.processor.ProcessMessage(ctx, e)
	case webhook.PostbackEvent:
		eventType = "postback"
		messages, err = h.processor.ProcessPostback(ctx, e)
	case webhook.FollowEvent:
		eventType = "follow"
		messages, err = h.processor.ProcessFollow(e)
	case webhook.JoinEvent:
		eventType = "join"
		messages, err = h.processor.ProcessJoin(e)
	default:
		log.WithField("event_type", fmt.Sprintf("%T", e)).Debug("Unsupported event type")
		return
	}

	duration := time.Since(eventStart)
	status := "success"
	if err != nil {
		status = "error"
		log.WithError(err).WithField("event_type", eventType).Error("Failed to handle event")

		// Groups stay silent on failures, personal chats get told.
		messages = nil
		if me, ok := event.(webhook.MessageEvent); ok && bot.IsPersonalChat(me.Source) {
			messages = []messaging_api.MessageInterface{lineutil.ErrorMessage()}
		}
	}
	h.metrics.RecordWebhook(eventType, status, duration.Seconds())

	if len(messages) > 0 {
		if len(messages) > h.maxMessagesPerReply {
			log.WithField("message_count", len(messages)).
				WithField("limit", h.maxMessagesPerReply).
				Warn("Message count exceeds limit; truncating")
			messages = messages[:h.maxMessagesPerReply]
		}

		replyToken := h.getReplyToken(event)
		if replyToken == "" {
			log.Debug("Empty reply token, skipping reply")
			return
		}
		if len(replyToken) < h.minReplyTokenLength {
			log.WithField("token_length", len(replyToken)).Debug("Invalid reply token format")
			return
		}

		if !h.rateLimiter.Allow() {
			log.Warn("Global rate limit exceeded; waiting")
			h.metrics.RecordRateLimiterDrop("global")
			if waitErr := h.rateLimiter.Wait(ctx); waitErr != nil {
				log.WithError(waitErr).Warn("Gave up waiting for rate limiter")
				return
			}
		}

		if _, err := h.client.ReplyMessage(
			&messaging_api.ReplyMessageRequest{
				ReplyToken: replyToken,
				Messages:   messages,
			},
		); err != nil {
			errMsg := err.Error()
			if strings.Contains(errMsg, "Invalid reply token") {
				log.WithError(err).Debug("Reply token already used or invalid")
			} else {
				log.WithError(err).Error("Failed to send reply")
			}
			h.metrics.RecordWebhook(eventType, "reply_error", time.Since(eventStart).Seconds())
		}
	}

	log.WithField("event_type", eventType).
		WithField("event_duration_ms", duration.Milliseconds()).
		WithField("batch_duration_ms", time.Since(webhookStart).Milliseconds()).
		Info("Event processed")
}

func extractEventMeta(event webhook.EventInterface) (string, *bool) {
	switch e := event.(type) {
	case webhook.MessageEvent:
		return e.WebhookEventId, redeliveryPtr(e.DeliveryContext)
	case webhook.PostbackEvent:
		return e.WebhookEventId, redeliveryPtr(e.DeliveryContext)
	case webhook.FollowEvent:
		return e.WebhookEventId, redeliveryPtr(e.DeliveryContext)
	case webhook.JoinEvent:
		return e.WebhookEventId, redeliveryPtr(e.DeliveryContext)
	default:
		return "", nil
	}
}

func redeliveryPtr(ctx *webhook.DeliveryContext) *bool {
	if ctx == nil {
		return nil
	}
	val := ctx.IsRedelivery
	return &val
}

// shouldShowLoading reports whether the loading animation makes sense
// for an event. Group text messages may go unanswered, so the animation
// is only shown in personal chats and for events that always reply.
func (h *Handler) shouldShowLoading(event webhook.EventInterface) bool {
	switch e := event.(type) {
	case webhook.MessageEvent:
		return bot.IsPersonalChat(e.Source)
	case webhook.PostbackEvent, webhook.FollowEvent, webhook.JoinEvent:
		return true
	default:
		return false
	}
}

// showLoadingAnimation shows the typing indicator in the chat.
func (h *Handler) showLoadingAnimation(event webhook.EventInterface) error {
	chatID := h.getChatID(event)
	if chatID == "" {
		return nil
	}

	// LINE API: loadingSeconds must be 5-60 and a multiple of 5.
	req := &messaging_api.ShowLoadingAnimationRequest{
		ChatId:         chatID,
		LoadingSeconds: 30,
	}

	if _, err := h.client.ShowLoadingAnimation(req); err != nil {
		return fmt.Errorf("failed to show loading animation: %w", err)
	}

	return nil
}

func (h *Handler) getReplyToken(event webhook.EventInterface) string {
	switch e := event.(type) {
	case webhook.MessageEvent:
		return e.ReplyToken
	case webhook.PostbackEvent:
		return e.ReplyToken
	case webhook.FollowEvent:
		return e.ReplyToken
	case webhook.JoinEvent:
		return e.ReplyToken
	default:
		return ""
	}
}

func (h *Handler) getChatID(event webhook.EventInterface) string {
	switch e := event.(type) {
	case webhook.MessageEvent:
		return bot.GetChatID(e.Source)
	case webhook.PostbackEvent:
		return bot.GetChatID(e.Source)
	case webhook.FollowEvent:
		return bot.GetChatID(e.Source)
	case webhook.JoinEvent:
		return bot.GetChatID(e.Source)
	default:
		return ""
	}
}

// Shutdown waits for in-flight event processing to finish or the
// context to expire.
func (h *Handler) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.wg.Wait()
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
