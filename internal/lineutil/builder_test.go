package lineutil

import (
	"strings"
	"testing"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxRunes int
		want     string
	}{
		{"short_text", "привет", 10, "привет"},
		{"exact_length", "привет", 6, "привет"},
		{"truncated", "длинное сообщение", 10, "длинное..."},
		{"tiny_limit", "привет", 3, "при"},
		{"ascii", "hello world", 8, "hello..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateRunes(tt.text, tt.maxRunes); got != tt.want {
				t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tt.text, tt.maxRunes, got, tt.want)
			}
		})
	}
}

func TestNewTextMessage(t *testing.T) {
	msg := NewTextMessage("Привет")
	if msg.Text != "Привет" {
		t.Errorf("Text = %q", msg.Text)
	}

	long := strings.Repeat("я", 6000)
	msg = NewTextMessage(long)
	if n := len([]rune(msg.Text)); n > MaxTextMessageLength {
		t.Errorf("long message not truncated: %d runes", n)
	}
}

func TestNewCarouselTemplate(t *testing.T) {
	columns := make([]CarouselColumn, 12)
	for i := range columns {
		columns[i] = CarouselColumn{
			Title:   "Заказ",
			Text:    "текст",
			Actions: []Action{NewPostbackAction("выбрать", "orders$pick$101")},
		}
	}

	msg := NewCarouselTemplate("Заказы", columns)
	tmpl, ok := msg.(*messaging_api.TemplateMessage)
	if !ok {
		t.Fatalf("message type = %T", msg)
	}

	carousel, ok := tmpl.Template.(*messaging_api.CarouselTemplate)
	if !ok {
		t.Fatalf("template type = %T", tmpl.Template)
	}
	if len(carousel.Columns) != MaxCarouselColumnCount {
		t.Errorf("columns = %d, want capped at %d", len(carousel.Columns), MaxCarouselColumnCount)
	}
}

func TestNewQuickReply(t *testing.T) {
	items := make([]QuickReplyItem, 20)
	for i := range items {
		items[i] = QuickReplyItem{Action: NewMessageAction("сегодня", "сегодня")}
	}

	qr := NewQuickReply(items)
	if len(qr.Items) != MaxQuickReplyItemCount {
		t.Errorf("items = %d, want capped at %d", len(qr.Items), MaxQuickReplyItemCount)
	}
}

func TestNewTextMessageWithQuickReply(t *testing.T) {
	msg := NewTextMessageWithQuickReply("Выбери дату",
		QuickReplyItem{Action: NewMessageAction("сегодня", "сегодня")},
		QuickReplyItem{Action: NewMessageAction("завтра", "завтра")},
	)

	if msg.QuickReply == nil || len(msg.QuickReply.Items) != 2 {
		t.Fatalf("QuickReply = %+v", msg.QuickReply)
	}

	// No items means no quick reply block at all
	plain := NewTextMessageWithQuickReply("текст")
	if plain.QuickReply != nil {
		t.Error("QuickReply should be nil without items")
	}
}

func TestNewPostbackAction_TruncatesLabel(t *testing.T) {
	action := NewPostbackAction("очень длинное название кнопки заказа", "orders$pick$101")
	pb, ok := action.(*messaging_api.PostbackAction)
	if !ok {
		t.Fatalf("action type = %T", action)
	}
	if n := len([]rune(pb.Label)); n > MaxQuickReplyLabel {
		t.Errorf("label = %d runes, want <= %d", n, MaxQuickReplyLabel)
	}
	if pb.Data != "orders$pick$101" {
		t.Errorf("Data = %q", pb.Data)
	}
}

func TestFormatFreshness(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)

	if got := FormatFreshness(time.Time{}, loc); !strings.Contains(got, "не загружались") {
		t.Errorf("zero time freshness = %q", got)
	}

	fetched := time.Date(2025, 11, 10, 3, 30, 0, 0, time.UTC) // 08:30 local
	got := FormatFreshness(fetched, loc)
	if !strings.Contains(got, "10.11.2025 08:30") {
		t.Errorf("freshness = %q", got)
	}
}
