// Package sse implements Server-Sent Events for pushing trade activity to
// connected clients. Barterly uses SSE for server-to-client notification
// delivery; everything else follows a request/response pattern.
package sse

import (
	"time"

	"github.com/barterly/barterly-server/internal/domain"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventNotificationCreated is pushed to the recipient when a new inbox
	// notification is created.
	EventNotificationCreated EventType = "notification.created"

	// EventOfferCreated is pushed to the target item's owner when a right
	// swipe creates a trade offer on their item.
	EventOfferCreated EventType = "offer.created"

	// EventOfferUpdated is pushed to the offering user when the recipient
	// accepts or declines their offer.
	EventOfferUpdated EventType = "offer.updated"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
// The Data field contains the event payload as a JSON object.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`

	// UserID filters delivery to one user's connections. Empty string means
	// broadcast to all connected clients.
	UserID string `json:"-"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// NewHeartbeatEvent creates a keepalive event.
func NewHeartbeatEvent() Event {
	now := time.Now()
	return Event{
		Type:      EventHeartbeat,
		Timestamp: now,
		Data:      HeartbeatEventData{ServerTime: now},
	}
}

// NewNotificationEvent creates an event carrying a full notification record,
// addressed to its recipient.
func NewNotificationEvent(notification *domain.Notification) Event {
	return Event{
		Type:      EventNotificationCreated,
		Timestamp: time.Now(),
		Data:      notification,
		UserID:    notification.UserID,
	}
}

// NewOfferCreatedEvent creates an event for the target item's owner.
func NewOfferCreatedEvent(offer *domain.TradeOffer) Event {
	return Event{
		Type:      EventOfferCreated,
		Timestamp: time.Now(),
		Data:      offer,
		UserID:    offer.TargetOwnerID,
	}
}

// NewOfferUpdatedEvent creates an event for the offering user after the
// recipient resolves the offer.
func NewOfferUpdatedEvent(offer *domain.TradeOffer) Event {
	return Event{
		Type:      EventOfferUpdated,
		Timestamp: time.Now(),
		Data:      offer,
		UserID:    offer.OfferingUserID,
	}
}
