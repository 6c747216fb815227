package bot

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/avolkov/osg-linebot-go/internal/logger"
	"github.com/avolkov/osg-linebot-go/internal/metrics"
	"github.com/avolkov/osg-linebot-go/internal/ratelimit"
)

func testProcessor(t *testing.T, handlers ...Handler) *Processor {
	t.Helper()

	m := metrics.New(prometheus.NewRegistry())
	limiter := ratelimit.NewKeyedLimiter(ratelimit.KeyedConfig{
		Name:          "user",
		Burst:         100,
		RefillRate:    10,
		CleanupPeriod: time.Hour,
		Metrics:       m,
	})
	t.Cleanup(limiter.Stop)

	registry := NewRegistry()
	for _, h := range handlers {
		registry.Register(h)
	}

	return NewProcessor(ProcessorConfig{
		Registry:       registry,
		UserLimiter:    limiter,
		Logger:         logger.New("error"),
		WebhookTimeout: 5 * time.Second,
	})
}

func textEvent(text string) webhook.MessageEvent {
	return webhook.MessageEvent{
		Source:  webhook.UserSource{UserId: "U0123456789"},
		Message: webhook.TextMessageContent{Text: text},
	}
}

func messageText(t *testing.T, msg messaging_api.MessageInterface) string {
	t.Helper()
	textMsg, ok := msg.(*messaging_api.TextMessage)
	if !ok {
		t.Fatalf("message type = %T, want *TextMessage", msg)
	}
	return textMsg.Text
}

func TestProcessMessage_DispatchesToHandler(t *testing.T) {
	h := &stubHandler{name: "orders", canHandle: true}
	p := testProcessor(t, h)

	msgs, err := p.ProcessMessage(context.Background(), textEvent("заказы"))
	if err != nil {
		t.Fatalf("ProcessMessage() error = %v", err)
	}
	if !h.msgHandled {
		t.Error("handler was not invoked")
	}
	if len(msgs) != 1 {
		t.Errorf("got %d messages, want 1", len(msgs))
	}
}

func TestProcessMessage_HelpKeyword(t *testing.T) {
	h := &stubHandler{name: "orders", canHandle: true}
	p := testProcessor(t, h)

	msgs, err := p.ProcessMessage(context.Background(), textEvent("помощь"))
	if err != nil {
		t.Fatalf("ProcessMessage() error = %v", err)
	}
	if h.msgHandled {
		t.Error("help keyword should not reach module handlers")
	}
	if len(msgs) != 1 || !strings.Contains(messageText(t, msgs[0]), "Что я умею") {
		t.Errorf("unexpected help reply: %v", msgs)
	}
}

func TestProcessMessage_UnmatchedPersonalChatGetsHelp(t *testing.T) {
	p := testProcessor(t, &stubHandler{name: "orders", canHandle: false})

	msgs, err := p.ProcessMessage(context.Background(), textEvent("привет"))
	if err != nil {
		t.Fatalf("ProcessMessage() error = %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want help message", len(msgs))
	}
}

func TestProcessMessage_UnmatchedGroupChatStaysSilent(t *testing.T) {
	p := testProcessor(t, &stubHandler{name: "orders", canHandle: false})

	event := webhook.MessageEvent{
		Source:  webhook.GroupSource{GroupId: "G1", UserId: "U1"},
		Message: webhook.TextMessageContent{Text: "привет"},
	}

	msgs, err := p.ProcessMessage(context.Background(), event)
	if err != nil {
		t.Fatalf("ProcessMessage() error = %v", err)
	}
	if msgs != nil {
		t.Errorf("group chat should get no reply, got %v", msgs)
	}
}

func TestProcessMessage_IgnoresNonText(t *testing.T) {
	h := &stubHandler{name: "orders", canHandle: true}
	p := testProcessor(t, h)

	event := webhook.MessageEvent{
		Source:  webhook.UserSource{UserId: "U1"},
		Message: webhook.StickerMessageContent{},
	}

	msgs, err := p.ProcessMessage(context.Background(), event)
	if err != nil {
		t.Fatalf("ProcessMessage() error = %v", err)
	}
	if msgs != nil || h.msgHandled {
		t.Error("sticker message should be ignored")
	}
}

func TestProcessMessage_NonTextDoesNotConsumeQuota(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	limiter := ratelimit.NewKeyedLimiter(ratelimit.KeyedConfig{
		Name:          "user",
		Burst:         5,
		RefillRate:    0.001,
		CleanupPeriod: time.Hour,
		Metrics:       m,
	})
	defer limiter.Stop()

	p := NewProcessor(ProcessorConfig{
		Registry:       NewRegistry(),
		UserLimiter:    limiter,
		Logger:         logger.New("error"),
		WebhookTimeout: 5 * time.Second,
	})

	event := webhook.MessageEvent{
		Source:  webhook.UserSource{UserId: "U1"},
		Message: webhook.StickerMessageContent{},
	}
	for i := 0; i < 3; i++ {
		if _, err := p.ProcessMessage(context.Background(), event); err != nil {
			t.Fatalf("ProcessMessage() error = %v", err)
		}
	}

	if got := limiter.GetAvailable("U1"); got != 5 {
		t.Errorf("available tokens after stickers = %v, want 5", got)
	}
}

func TestProcessMessage_NormalizesWhitespace(t *testing.T) {
	var seen string
	h := &recordingHandler{name: "osg", record: &seen}
	p := testProcessor(t, h)

	if _, err := p.ProcessMessage(context.Background(), textEvent("  через   3   дня  ")); err != nil {
		t.Fatalf("ProcessMessage() error = %v", err)
	}
	if seen != "через 3 дня" {
		t.Errorf("handler saw %q, want normalized text", seen)
	}
}

func TestProcessMessage_RateLimited(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	limiter := ratelimit.NewKeyedLimiter(ratelimit.KeyedConfig{
		Name:          "user",
		Burst:         1,
		RefillRate:    0.001,
		CleanupPeriod: time.Hour,
		Metrics:       m,
	})
	defer limiter.Stop()

	registry := NewRegistry()
	h := &stubHandler{name: "orders", canHandle: true}
	registry.Register(h)

	p := NewProcessor(ProcessorConfig{
		Registry:       registry,
		UserLimiter:    limiter,
		Logger:         logger.New("error"),
		WebhookTimeout: 5 * time.Second,
	})

	if _, err := p.ProcessMessage(context.Background(), textEvent("заказы")); err != nil {
		t.Fatalf("first ProcessMessage() error = %v", err)
	}

	h.msgHandled = false
	msgs, err := p.ProcessMessage(context.Background(), textEvent("заказы"))
	if err != nil {
		t.Fatalf("second ProcessMessage() error = %v", err)
	}
	if h.msgHandled {
		t.Error("rate limited request should not reach handlers")
	}
	if len(msgs) != 1 || !strings.Contains(messageText(t, msgs[0]), "Слишком много") {
		t.Errorf("expected throttle reply, got %v", msgs)
	}
}

func TestProcessPostback_Dispatches(t *testing.T) {
	h := &stubHandler{name: "orders"}
	p := testProcessor(t, h)

	event := webhook.PostbackEvent{
		Source:   webhook.UserSource{UserId: "U1"},
		Postback: &webhook.PostbackContent{Data: "orders$pick$101"},
	}

	msgs, err := p.ProcessPostback(context.Background(), event)
	if err != nil {
		t.Fatalf("ProcessPostback() error = %v", err)
	}
	if h.lastData != "pick$101" {
		t.Errorf("handler received %q", h.lastData)
	}
	if len(msgs) != 1 {
		t.Errorf("got %d messages, want 1", len(msgs))
	}
}

func TestProcessPostback_UnknownPrefix(t *testing.T) {
	p := testProcessor(t, &stubHandler{name: "orders"})

	event := webhook.PostbackEvent{
		Source:   webhook.UserSource{UserId: "U1"},
		Postback: &webhook.PostbackContent{Data: "ghost$x"},
	}

	msgs, err := p.ProcessPostback(context.Background(), event)
	if err != nil {
		t.Fatalf("ProcessPostback() error = %v", err)
	}
	if len(msgs) != 1 || !strings.Contains(messageText(t, msgs[0]), "устарела") {
		t.Errorf("expected stale-button reply, got %v", msgs)
	}
}

func TestProcessFollow(t *testing.T) {
	p := testProcessor(t)

	msgs, err := p.ProcessFollow(webhook.FollowEvent{Source: webhook.UserSource{UserId: "U1"}})
	if err != nil {
		t.Fatalf("ProcessFollow() error = %v", err)
	}
	if len(msgs) < 2 {
		t.Errorf("got %d messages, want welcome + help", len(msgs))
	}
}

// recordingHandler records the text it receives.
type recordingHandler struct {
	name   string
	record *string
}

func (r *recordingHandler) Name() string              { return r.name }
func (r *recordingHandler) CanHandle(text string) bool { return true }

func (r *recordingHandler) HandleMessage(ctx context.Context, text string) []messaging_api.MessageInterface {
	*r.record = text
	return []messaging_api.MessageInterface{&messaging_api.TextMessage{Text: "ok"}}
}

func (r *recordingHandler) HandlePostback(ctx context.Context, data string) []messaging_api.MessageInterface {
	return nil
}
