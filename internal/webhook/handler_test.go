package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/osg-linebot-go/internal/bot"
	"github.com/avolkov/osg-linebot-go/internal/logger"
	"github.com/avolkov/osg-linebot-go/internal/metrics"
	"github.com/avolkov/osg-linebot-go/internal/ratelimit"
)

const testChannelSecret = "test-channel-secret"

func testHandler(t *testing.T) *Handler {
	t.Helper()

	log := logger.New("error")

	userLimiter := ratelimit.NewKeyedLimiter(ratelimit.KeyedConfig{
		Name:          "user",
		Burst:         100,
		RefillRate:    100,
		CleanupPeriod: time.Hour,
	})
	t.Cleanup(userLimiter.Stop)

	processor := bot.NewProcessor(bot.ProcessorConfig{
		Registry:       bot.NewRegistry(),
		UserLimiter:    userLimiter,
		Logger:         log,
		WebhookTimeout: 5 * time.Second,
	})

	h, err := NewHandler(HandlerConfig{
		ChannelSecret:       testChannelSecret,
		ChannelToken:        "test-channel-token",
		Metrics:             metrics.New(prometheus.NewRegistry()),
		Logger:              log,
		Processor:           processor,
		GlobalRateRPS:       100,
		MaxMessagesPerReply: 5,
		MaxEventsPerWebhook: 100,
		MinReplyTokenLength: 10,
	})
	require.NoError(t, err)
	return h
}

func signBody(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testChannelSecret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func performWebhook(t *testing.T, h *Handler, body []byte, signature string) *httptest.ResponseRecorder {
	t.Helper()

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	req := httptest.NewRequest(http.MethodPost, "/callback", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("X-Line-Signature", signature)
	}
	c.Request = req

	h.Handle(c)
	return w
}

func TestHandle_InvalidSignature(t *testing.T) {
	h := testHandler(t)

	body := []byte(`{"destination":"xxx","events":[]}`)
	w := performWebhook(t, h, body, "bogus-signature")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandle_MissingSignature(t *testing.T) {
	h := testHandler(t)

	body := []byte(`{"destination":"xxx","events":[]}`)
	w := performWebhook(t, h, body, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandle_EmptyEvents(t *testing.T) {
	h := testHandler(t)

	body := []byte(`{"destination":"xxx","events":[]}`)
	w := performWebhook(t, h, body, signBody(body))
	assert.Equal(t, http.StatusOK, w.Code)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, h.Shutdown(ctx))
}

func TestHandle_GroupMessageWithoutMatchIsSilent(t *testing.T) {
	h := testHandler(t)

	// No handlers registered and the chat is a group, so processing
	// finishes without any reply attempt.
	body := []byte(`{"destination":"xxx","events":[{` +
		`"type":"message","mode":"active","timestamp":1700000000000,` +
		`"webhookEventId":"01HTEST","deliveryContext":{"isRedelivery":false},` +
		`"replyToken":"0123456789abcdef",` +
		`"source":{"type":"group","groupId":"G1","userId":"U1"},` +
		`"message":{"type":"text","id":"1","quoteToken":"q","text":"nothing matches"}}]}`)

	w := performWebhook(t, h, body, signBody(body))
	assert.Equal(t, http.StatusOK, w.Code)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, h.Shutdown(ctx))
}

func TestShouldShowLoading(t *testing.T) {
	h := testHandler(t)

	personal := webhook.MessageEvent{Source: webhook.UserSource{UserId: "U1"}}
	assert.True(t, h.shouldShowLoading(personal))

	group := webhook.MessageEvent{Source: webhook.GroupSource{GroupId: "G1"}}
	assert.False(t, h.shouldShowLoading(group))

	assert.True(t, h.shouldShowLoading(webhook.PostbackEvent{}))
	assert.True(t, h.shouldShowLoading(webhook.FollowEvent{}))
}

func TestGetReplyToken(t *testing.T) {
	h := testHandler(t)

	assert.Equal(t, "tok1", h.getReplyToken(webhook.MessageEvent{ReplyToken: "tok1"}))
	assert.Equal(t, "tok2", h.getReplyToken(webhook.PostbackEvent{ReplyToken: "tok2"}))
	assert.Equal(t, "", h.getReplyToken(webhook.LeaveEvent{}))
}

func TestExtractEventMeta(t *testing.T) {
	redelivered := webhook.MessageEvent{
		WebhookEventId:  "W1",
		DeliveryContext: &webhook.DeliveryContext{IsRedelivery: true},
	}

	id, isRedelivery := extractEventMeta(redelivered)
	assert.Equal(t, "W1", id)
	require.NotNil(t, isRedelivery)
	assert.True(t, *isRedelivery)

	id, isRedelivery = extractEventMeta(webhook.LeaveEvent{})
	assert.Equal(t, "", id)
	assert.Nil(t, isRedelivery)
}
