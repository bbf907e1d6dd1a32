package service

import (
	"context"
	"log/slog"

	"github.com/barterly/barterly-server/internal/clock"
	"github.com/barterly/barterly-server/internal/domain"
	"github.com/barterly/barterly-server/internal/errors"
	"github.com/barterly/barterly-server/internal/id"
	"github.com/barterly/barterly-server/internal/retry"
	"github.com/barterly/barterly-server/internal/search"
	"github.com/barterly/barterly-server/internal/store"
	"github.com/barterly/barterly-server/internal/util"
)

// ItemService manages the item catalog: the listings users offer for trade.
type ItemService struct {
	store     *store.Store
	index     *search.ItemIndex
	clk       clock.Clock
	retryOpts retry.Options
	logger    *slog.Logger
}

// NewItemService creates an item service. The search index may be nil in
// tests; Search then returns an unavailable error.
func NewItemService(store *store.Store, index *search.ItemIndex, clk clock.Clock, logger *slog.Logger) *ItemService {
	return &ItemService{
		store:  store,
		index:  index,
		clk:    clk,
		logger: logger,
	}
}

// CreateItemParams holds the fields a user supplies for a new listing.
type CreateItemParams struct {
	Title       string
	Description string
	Category    string
	Condition   string
	ImagePath   string
}

// Create lists a new item for the owner.
func (s *ItemService) Create(ctx context.Context, ownerID string, params CreateItemParams) (*domain.Item, error) {
	if ownerID == "" {
		return nil, errors.Validation("owner id is required")
	}
	if params.Title == "" {
		return nil, errors.Validation("item title is required")
	}

	itemID, err := id.Generate("item")
	if err != nil {
		return nil, err
	}

	item := domain.NewItem(itemID, ownerID, params.Title)
	item.Description = params.Description
	item.Category = util.NormalizeCategorySlug(params.Category)
	item.Condition = params.Condition
	item.ImagePath = params.ImagePath
	item.CreatedAt = s.clk.Now()
	item.UpdatedAt = item.CreatedAt

	_, err = retry.Do(ctx, s.clk, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.store.CreateItem(ctx, item)
	}, s.retryOpts)
	if err != nil {
		return nil, err
	}

	s.logger.Info("item listed", "item_id", item.ID, "owner_id", ownerID)
	return item, nil
}

// Get returns one listing.
func (s *ItemService) Get(ctx context.Context, itemID string) (*domain.Item, error) {
	return retry.Do(ctx, s.clk, func(ctx context.Context) (*domain.Item, error) {
		return s.store.GetItem(ctx, itemID)
	}, s.retryOpts)
}

// ListByOwner returns a user's listings.
func (s *ItemService) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Item, error) {
	return retry.Do(ctx, s.clk, func(ctx context.Context) ([]*domain.Item, error) {
		return s.store.ListItemsByOwner(ctx, ownerID)
	}, s.retryOpts)
}

// UpdateItemParams holds the mutable fields of a listing. Nil pointers leave
// the field unchanged.
type UpdateItemParams struct {
	Title       *string
	Description *string
	Category    *string
	Condition   *string
	ImagePath   *string
}

// Update edits a listing. Only the owner may edit, and traded items are
// frozen.
func (s *ItemService) Update(ctx context.Context, itemID, userID string, params UpdateItemParams) (*domain.Item, error) {
	item, err := s.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != userID {
		return nil, errors.Forbiddenf("item %s belongs to another user", itemID)
	}
	if item.Status == domain.ItemStatusTraded {
		return nil, errors.Conflict("traded items cannot be edited")
	}

	if params.Title != nil {
		if *params.Title == "" {
			return nil, errors.Validation("item title cannot be empty")
		}
		item.Title = *params.Title
	}
	if params.Description != nil {
		item.Description = *params.Description
	}
	if params.Category != nil {
		item.Category = util.NormalizeCategorySlug(*params.Category)
	}
	if params.Condition != nil {
		item.Condition = *params.Condition
	}
	if params.ImagePath != nil {
		item.ImagePath = *params.ImagePath
	}
	item.UpdatedAt = s.clk.Now()

	_, err = retry.Do(ctx, s.clk, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.store.UpdateItem(ctx, item)
	}, s.retryOpts)
	if err != nil {
		return nil, err
	}

	return item, nil
}

// Withdraw pulls a listing from the marketplace. Withdrawn items never enter
// pools; existing swipe history referencing them is left as-is.
func (s *ItemService) Withdraw(ctx context.Context, itemID, userID string) (*domain.Item, error) {
	item, err := s.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != userID {
		return nil, errors.Forbiddenf("item %s belongs to another user", itemID)
	}
	if item.Status != domain.ItemStatusAvailable {
		return nil, errors.Conflictf("item %s is %s and cannot be withdrawn", itemID, item.Status)
	}

	item.Status = domain.ItemStatusWithdrawn
	item.UpdatedAt = s.clk.Now()

	_, err = retry.Do(ctx, s.clk, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.store.UpdateItem(ctx, item)
	}, s.retryOpts)
	if err != nil {
		return nil, err
	}

	return item, nil
}

// Search runs a full-text query over the catalog, excluding the searcher's
// own listings.
func (s *ItemService) Search(ctx context.Context, userID string, params search.SearchParams) (*search.SearchResult, error) {
	if s.index == nil {
		return nil, errors.Unavailable("search index is not configured")
	}
	params.ExcludeOwner = userID
	params.Category = util.NormalizeCategorySlug(params.Category)
	return s.index.Search(ctx, params)
}
