// Package bot provides the handler interface and dispatch logic for LINE
// bot modules. Each module (osg, orders, usage) implements the Handler
// interface to process user messages and postback events.
package bot

import (
	"context"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// Handler defines the interface that all bot modules must implement.
type Handler interface {
	// Name returns the module identifier used as the postback prefix.
	Name() string

	// CanHandle checks if this handler can process the given text message.
	CanHandle(text string) bool

	// HandleMessage processes a text message and returns LINE message responses.
	// Returns a slice of LINE messages (max 5 messages per reply).
	HandleMessage(ctx context.Context, text string) []messaging_api.MessageInterface

	// HandlePostback processes a postback event (button clicks, carousel actions).
	// The data parameter is the payload with the module prefix already stripped.
	//
	// Postback format convention: "module$action$param1$param2..." using $
	// as delimiter, max 300 bytes per LINE API limit. There is no escaping
	// for $, so parameter values must not contain it.
	HandlePostback(ctx context.Context, data string) []messaging_api.MessageInterface
}
