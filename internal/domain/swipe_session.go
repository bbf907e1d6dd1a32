package domain

import "time"

// SwipeDirection is a user's decision on a candidate item.
type SwipeDirection string

const (
	// SwipeLeft passes on a candidate.
	SwipeLeft SwipeDirection = "left"

	// SwipeRight signals interest and converts into a trade offer.
	SwipeRight SwipeDirection = "right"
)

// Valid checks if the direction is valid.
func (d SwipeDirection) Valid() bool {
	return d == SwipeLeft || d == SwipeRight
}

// SwipeEntry is one recorded decision inside a session. Entries are
// append-only; an item id appears at most once per session.
type SwipeEntry struct {
	ItemID    string         `json:"item_id"`
	Direction SwipeDirection `json:"direction"`
	Timestamp time.Time      `json:"timestamp"`
}

// SwipeSession scopes "already seen" items to one (user, anchor item)
// pairing. Selecting a new anchor always creates a new session with an empty
// history; sessions are never deleted, only superseded.
type SwipeSession struct {
	ID             string       `json:"id"`
	UserID         string       `json:"user_id"`
	AnchorItemID   string       `json:"anchor_item_id"`
	CreatedAt      time.Time    `json:"created_at"`
	LastActivityAt time.Time    `json:"last_activity_at"`
	Swipes         []SwipeEntry `json:"swipes"`
}

// NewSwipeSession creates a fresh session for a user's anchor selection.
func NewSwipeSession(id, userID, anchorItemID string) *SwipeSession {
	now := time.Now()
	return &SwipeSession{
		ID:             id,
		UserID:         userID,
		AnchorItemID:   anchorItemID,
		CreatedAt:      now,
		LastActivityAt: now,
		Swipes:         []SwipeEntry{},
	}
}

// HasSwiped reports whether the session already contains a decision on itemID.
func (s *SwipeSession) HasSwiped(itemID string) bool {
	for _, entry := range s.Swipes {
		if entry.ItemID == itemID {
			return true
		}
	}
	return false
}

// RecordSwipe appends one entry and bumps LastActivityAt. The caller is
// responsible for the at-most-once-per-item invariant; this layer appends
// blindly.
func (s *SwipeSession) RecordSwipe(itemID string, direction SwipeDirection, at time.Time) SwipeEntry {
	entry := SwipeEntry{
		ItemID:    itemID,
		Direction: direction,
		Timestamp: at,
	}
	s.Swipes = append(s.Swipes, entry)
	s.LastActivityAt = at
	return entry
}

// SwipedItemIDs returns the exclusion set for pool building.
func (s *SwipeSession) SwipedItemIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(s.Swipes))
	for _, entry := range s.Swipes {
		ids[entry.ItemID] = struct{}{}
	}
	return ids
}
