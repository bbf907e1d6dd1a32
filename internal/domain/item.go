package domain

import "time"

// ItemStatus represents the lifecycle state of a listed item.
type ItemStatus string

const (
	// ItemStatusAvailable means the item can appear in swipe pools.
	ItemStatusAvailable ItemStatus = "available"

	// ItemStatusTraded means the item was exchanged through an accepted offer.
	ItemStatusTraded ItemStatus = "traded"

	// ItemStatusWithdrawn means the owner pulled the listing.
	ItemStatusWithdrawn ItemStatus = "withdrawn"
)

// Valid checks if the status is valid.
func (s ItemStatus) Valid() bool {
	switch s {
	case ItemStatusAvailable, ItemStatusTraded, ItemStatusWithdrawn:
		return true
	default:
		return false
	}
}

// Item is a listing a user offers for trade.
type Item struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"owner_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category,omitempty"`
	Condition   string     `json:"condition,omitempty"`
	ImagePath   string     `json:"image_path,omitempty"`
	Status      ItemStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewItem creates an available item listing.
func NewItem(id, ownerID, title string) *Item {
	now := time.Now()
	return &Item{
		ID:        id,
		OwnerID:   ownerID,
		Title:     title,
		Status:    ItemStatusAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Tradeable reports whether the item may enter a swipe pool.
func (i *Item) Tradeable() bool {
	return i.Status == ItemStatusAvailable
}
