package lineutil

import (
	"fmt"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// FormatFreshness renders the snapshot age footer shown under order
// replies, e.g. "Данные из таблицы от 10.11.2025 08:30".
func FormatFreshness(fetchedAt time.Time, loc *time.Location) string {
	if fetchedAt.IsZero() {
		return "Данные ещё не загружались"
	}
	return fmt.Sprintf("Данные из таблицы от %s", fetchedAt.In(loc).Format("02.01.2006 15:04"))
}

// ErrorMessage creates a user-facing error reply.
func ErrorMessage() messaging_api.MessageInterface {
	return NewTextMessage("⚠️ Не получилось обработать запрос. Попробуйте ещё раз чуть позже.")
}

// ErrorMessageWithDetail creates an error reply with additional context.
func ErrorMessageWithDetail(userMessage string) messaging_api.MessageInterface {
	return NewTextMessage("⚠️ " + userMessage)
}
