package domain

import "time"

// NotificationType represents the kind of notification.
type NotificationType string

const (
	// NotificationTradeOffer is sent to the target item's owner when a right
	// swipe creates an offer on their item.
	NotificationTradeOffer NotificationType = "trade_offer"

	// NotificationMessage is sent when a chat message arrives in a
	// conversation about a trade.
	NotificationMessage NotificationType = "message"
)

// MessagePreviewMaxLen caps the message snippet embedded in a notification.
const MessagePreviewMaxLen = 50

// Notification is an inbox entry for a user. Payload fields are denormalized
// at creation time so rendering the inbox needs no further lookups; read
// state is the only mutation in scope.
type Notification struct {
	ID           string           `json:"id"`
	UserID       string           `json:"user_id"`
	Type         NotificationType `json:"type"`
	TradeOfferID string           `json:"trade_offer_id,omitempty"`
	Read         bool             `json:"read"`
	CreatedAt    time.Time        `json:"created_at"`

	// Denormalized trade offer snapshot
	AnchorItemTitle string `json:"anchor_item_title,omitempty"`
	AnchorItemImage string `json:"anchor_item_image,omitempty"`
	TargetItemTitle string `json:"target_item_title,omitempty"`
	TargetItemImage string `json:"target_item_image,omitempty"`
	SenderName      string `json:"sender_name,omitempty"`

	// Message notifications
	ConversationID string `json:"conversation_id,omitempty"`
	Preview        string `json:"preview,omitempty"`
}

// TruncatePreview shortens a message body for inbox display.
func TruncatePreview(text string) string {
	runes := []rune(text)
	if len(runes) <= MessagePreviewMaxLen {
		return text
	}
	return string(runes[:MessagePreviewMaxLen])
}
