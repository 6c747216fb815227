package lineutil

// LINE API Character Limits (Rune count)
// References: https://developers.line.biz/en/reference/messaging-api/
const (
	MaxTextMessageLength = 5000 // Text message max content length
	MaxAltTextLength     = 400  // Template message alt text length
	MaxPostbackData      = 300  // Postback action data length

	// Template Message Limits
	MaxTemplateTitleLength = 40 // Buttons/Carousel template title
	MaxCarouselColumnCount = 10 // Max columns in a carousel
	MaxTemplateActionCount = 4  // Max actions per template column
	MaxCarouselColumnText  = 60 // Carousel column text

	// Quick Reply Limits
	MaxQuickReplyItemCount = 13 // Max items in a quick reply
	MaxQuickReplyLabel     = 20 // Max label length for quick reply item
)
