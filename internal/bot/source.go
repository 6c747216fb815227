package bot

import "github.com/line/line-bot-sdk-go/v8/linebot/webhook"

// GetChatID maps a LINE event source to the key used for rate limiting
// and context tagging: the user ID in 1-on-1 chats, otherwise the group
// or room ID so everyone in a shared chat draws from one quota. Unknown
// source types map to "".
func GetChatID(source webhook.SourceInterface) string {
	switch s := source.(type) {
	case webhook.UserSource:
		return s.UserId
	case webhook.GroupSource:
		return s.GroupId
	case webhook.RoomSource:
		return s.RoomId
	default:
		return ""
	}
}

// GetUserID returns the sending user's ID whatever chat the event came
// from, or "" when the source carries none.
func GetUserID(source webhook.SourceInterface) string {
	switch s := source.(type) {
	case webhook.UserSource:
		return s.UserId
	case webhook.GroupSource:
		return s.UserId
	case webhook.RoomSource:
		return s.UserId
	default:
		return ""
	}
}

// IsPersonalChat reports whether the event came from a 1-on-1 chat.
// Unmatched input gets a reply and the loading animation only there;
// in groups and rooms the bot stays quiet unless addressed.
func IsPersonalChat(source webhook.SourceInterface) bool {
	_, ok := source.(webhook.UserSource)
	return ok
}
