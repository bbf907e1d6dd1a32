package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/barterly/barterly-server/internal/domain"
	"github.com/barterly/barterly-server/internal/search"
	"github.com/barterly/barterly-server/internal/service"
)

func (s *Server) registerItemRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listItems",
		Method:      http.MethodGet,
		Path:        "/api/v1/items",
		Summary:     "List items",
		Description: "Returns the current user's listings",
		Tags:        []string{"Items"},
	}, s.handleListItems)

	huma.Register(s.api, huma.Operation{
		OperationID: "createItem",
		Method:      http.MethodPost,
		Path:        "/api/v1/items",
		Summary:     "Create item",
		Description: "Lists a new item for trade",
		Tags:        []string{"Items"},
	}, s.handleCreateItem)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchItems",
		Method:      http.MethodGet,
		Path:        "/api/v1/items/search",
		Summary:     "Search items",
		Description: "Full-text search over other users' available listings",
		Tags:        []string{"Items"},
	}, s.handleSearchItems)

	huma.Register(s.api, huma.Operation{
		OperationID: "getItem",
		Method:      http.MethodGet,
		Path:        "/api/v1/items/{id}",
		Summary:     "Get item",
		Description: "Returns an item by ID",
		Tags:        []string{"Items"},
	}, s.handleGetItem)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateItem",
		Method:      http.MethodPatch,
		Path:        "/api/v1/items/{id}",
		Summary:     "Update item",
		Description: "Updates an item; only the owner may edit and traded items are frozen",
		Tags:        []string{"Items"},
	}, s.handleUpdateItem)

	huma.Register(s.api, huma.Operation{
		OperationID: "withdrawItem",
		Method:      http.MethodPost,
		Path:        "/api/v1/items/{id}/withdraw",
		Summary:     "Withdraw item",
		Description: "Removes an available item from circulation",
		Tags:        []string{"Items"},
	}, s.handleWithdrawItem)
}

// === DTOs ===

// ItemResponse contains item data in API responses.
type ItemResponse struct {
	ID          string    `json:"id" doc:"Item ID"`
	OwnerID     string    `json:"owner_id" doc:"Owning user ID"`
	Title       string    `json:"title" doc:"Item title"`
	Description string    `json:"description,omitempty" doc:"Item description"`
	Category    string    `json:"category,omitempty" doc:"Category slug"`
	Condition   string    `json:"condition,omitempty" doc:"Condition"`
	ImagePath   string    `json:"image_path,omitempty" doc:"Primary image path"`
	Status      string    `json:"status" doc:"available, traded, or withdrawn"`
	CreatedAt   time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt   time.Time `json:"updated_at" doc:"Last update time"`
}

func toItemResponse(item *domain.Item) ItemResponse {
	return ItemResponse{
		ID:          item.ID,
		OwnerID:     item.OwnerID,
		Title:       item.Title,
		Description: item.Description,
		Category:    item.Category,
		Condition:   item.Condition,
		ImagePath:   item.ImagePath,
		Status:      string(item.Status),
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

// ListItemsInput contains parameters for listing the caller's items.
type ListItemsInput struct {
	UserID string `header:"X-User-ID"`
}

// ListItemsResponse contains the caller's listings.
type ListItemsResponse struct {
	Items []ItemResponse `json:"items" doc:"The caller's listings"`
}

// ListItemsOutput wraps the list items response for Huma.
type ListItemsOutput struct {
	Body ListItemsResponse
}

// CreateItemRequest is the request body for listing an item.
type CreateItemRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=120" doc:"Item title"`
	Description string `json:"description,omitempty" validate:"omitempty,max=2000" doc:"Item description"`
	Category    string `json:"category,omitempty" validate:"omitempty,max=50" doc:"Category slug"`
	Condition   string `json:"condition,omitempty" validate:"omitempty,max=30" doc:"Condition"`
	ImagePath   string `json:"image_path,omitempty" validate:"omitempty,max=500" doc:"Primary image path"`
}

// CreateItemInput wraps the create item request for Huma.
type CreateItemInput struct {
	UserID string `header:"X-User-ID"`
	Body   CreateItemRequest
}

// ItemOutput wraps a single item response for Huma.
type ItemOutput struct {
	Body ItemResponse
}

// GetItemInput contains parameters for getting an item.
type GetItemInput struct {
	UserID string `header:"X-User-ID"`
	ID     string `path:"id" doc:"Item ID"`
}

// UpdateItemRequest is the request body for editing a listing.
type UpdateItemRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1,max=120" doc:"Item title"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000" doc:"Item description"`
	Category    *string `json:"category,omitempty" validate:"omitempty,max=50" doc:"Category slug"`
	Condition   *string `json:"condition,omitempty" validate:"omitempty,max=30" doc:"Condition"`
	ImagePath   *string `json:"image_path,omitempty" validate:"omitempty,max=500" doc:"Primary image path"`
}

// UpdateItemInput wraps the update item request for Huma.
type UpdateItemInput struct {
	UserID string `header:"X-User-ID"`
	ID     string `path:"id" doc:"Item ID"`
	Body   UpdateItemRequest
}

// WithdrawItemInput contains parameters for withdrawing an item.
type WithdrawItemInput struct {
	UserID string `header:"X-User-ID"`
	ID     string `path:"id" doc:"Item ID"`
}

// SearchItemsInput contains parameters for searching listings.
type SearchItemsInput struct {
	UserID    string `header:"X-User-ID"`
	Query     string `query:"q" validate:"required,min=1,max=200" doc:"Search query"`
	Category  string `query:"category" validate:"omitempty,max=50" doc:"Category filter"`
	Condition string `query:"condition" validate:"omitempty,max=30" doc:"Condition filter"`
	Limit     int    `query:"limit" validate:"omitempty,gte=1,lte=100" doc:"Max results (default 20)"`
	Offset    int    `query:"offset" validate:"omitempty,gte=0" doc:"Pagination offset"`
}

// SearchItemsOutput wraps the search result for Huma.
type SearchItemsOutput struct {
	Body search.SearchResult
}

// === Handlers ===

func (s *Server) handleListItems(ctx context.Context, input *ListItemsInput) (*ListItemsOutput, error) {
	userID, err := s.identify(input.UserID)
	if err != nil {
		return nil, err
	}

	items, err := s.items.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]ItemResponse, len(items))
	for i, item := range items {
		resp[i] = toItemResponse(item)
	}

	return &ListItemsOutput{Body: ListItemsResponse{Items: resp}}, nil
}

func (s *Server) handleCreateItem(ctx context.Context, input *CreateItemInput) (*ItemOutput, error) {
	userID, err := s.identify(input.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.validate.Validate(input.Body); err != nil {
		return nil, err
	}

	item, err := s.items.Create(ctx, userID, service.CreateItemParams{
		Title:       input.Body.Title,
		Description: input.Body.Description,
		Category:    input.Body.Category,
		Condition:   input.Body.Condition,
		ImagePath:   input.Body.ImagePath,
	})
	if err != nil {
		return nil, err
	}

	return &ItemOutput{Body: toItemResponse(item)}, nil
}

func (s *Server) handleGetItem(ctx context.Context, input *GetItemInput) (*ItemOutput, error) {
	if _, err := s.identify(input.UserID); err != nil {
		return nil, err
	}

	item, err := s.items.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &ItemOutput{Body: toItemResponse(item)}, nil
}

func (s *Server) handleUpdateItem(ctx context.Context, input *UpdateItemInput) (*ItemOutput, error) {
	userID, err := s.identify(input.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.validate.Validate(input.Body); err != nil {
		return nil, err
	}

	item, err := s.items.Update(ctx, input.ID, userID, service.UpdateItemParams{
		Title:       input.Body.Title,
		Description: input.Body.Description,
		Category:    input.Body.Category,
		Condition:   input.Body.Condition,
		ImagePath:   input.Body.ImagePath,
	})
	if err != nil {
		return nil, err
	}

	return &ItemOutput{Body: toItemResponse(item)}, nil
}

func (s *Server) handleWithdrawItem(ctx context.Context, input *WithdrawItemInput) (*ItemOutput, error) {
	userID, err := s.identify(input.UserID)
	if err != nil {
		return nil, err
	}

	item, err := s.items.Withdraw(ctx, input.ID, userID)
	if err != nil {
		return nil, err
	}

	return &ItemOutput{Body: toItemResponse(item)}, nil
}

func (s *Server) handleSearchItems(ctx context.Context, input *SearchItemsInput) (*SearchItemsOutput, error) {
	userID, err := s.identify(input.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.validate.Validate(input); err != nil {
		return nil, err
	}

	params := search.DefaultSearchParams()
	params.Query = input.Query
	params.Category = input.Category
	params.Condition = input.Condition
	if input.Limit > 0 {
		params.Limit = input.Limit
	}
	params.Offset = input.Offset

	result, err := s.items.Search(ctx, userID, params)
	if err != nil {
		return nil, err
	}

	return &SearchItemsOutput{Body: *result}, nil
}
