package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/barterly/barterly-server/internal/domain"
)

// SearchParams configures an item search.
type SearchParams struct {
	Query string // User's search text

	// Filters
	Category      string // Exact category slug (empty = all)
	Condition     string // Exact condition (empty = all)
	ExcludeOwner  string // Drop listings owned by this user
	AvailableOnly bool   // Restrict to available listings

	// Pagination
	Limit  int
	Offset int
}

// DefaultSearchParams returns sensible defaults.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Limit:         20,
		Offset:        0,
		AvailableOnly: true,
	}
}

// SearchResult represents the search results.
type SearchResult struct {
	Query  string      `json:"query"`
	Total  uint64      `json:"total"`
	TookMs int64       `json:"took_ms"`
	Hits   []SearchHit `json:"hits"`
}

// SearchHit represents a single matching listing.
type SearchHit struct {
	ID         string            `json:"id"`
	Score      float64           `json:"score"`
	Title      string            `json:"title"`
	Category   string            `json:"category,omitempty"`
	Condition  string            `json:"condition,omitempty"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// Search executes an item search.
func (s *ItemIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	searchQuery := buildSearchQuery(params)

	searchRequest := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)

	searchRequest.Highlight = bleve.NewHighlight()
	searchRequest.Highlight.AddField("title")

	searchRequest.Fields = []string{"title", "category", "condition"}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		searchHit := SearchHit{
			ID:    hit.ID,
			Score: hit.Score,
		}
		if title, ok := hit.Fields["title"].(string); ok {
			searchHit.Title = title
		}
		if category, ok := hit.Fields["category"].(string); ok {
			searchHit.Category = category
		}
		if condition, ok := hit.Fields["condition"].(string); ok {
			searchHit.Condition = condition
		}

		if len(hit.Fragments) > 0 {
			searchHit.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					searchHit.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, searchHit)
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from params.
func buildSearchQuery(params SearchParams) query.Query {
	var queries []query.Query

	if params.Query != "" {
		textQueries := []query.Query{}

		// Title match with highest boost
		titleMatch := bleve.NewMatchQuery(params.Query)
		titleMatch.SetField("title")
		titleMatch.SetBoost(3.0)
		textQueries = append(textQueries, titleMatch)

		// Description match
		descMatch := bleve.NewMatchQuery(params.Query)
		descMatch.SetField("description")
		textQueries = append(textQueries, descMatch)

		// Fuzzy matching for typo tolerance on title
		fuzzyQuery := bleve.NewFuzzyQuery(params.Query)
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetField("title")
		fuzzyQuery.SetBoost(0.8)
		textQueries = append(textQueries, fuzzyQuery)

		// Prefix query for autocomplete (minimum 2 chars)
		if len(params.Query) >= 2 {
			prefixQuery := bleve.NewPrefixQuery(strings.ToLower(params.Query))
			prefixQuery.SetField("title")
			prefixQuery.SetBoost(0.5)
			textQueries = append(textQueries, prefixQuery)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	if params.Category != "" {
		categoryQuery := bleve.NewTermQuery(params.Category)
		categoryQuery.SetField("category")
		queries = append(queries, categoryQuery)
	}

	if params.Condition != "" {
		conditionQuery := bleve.NewTermQuery(params.Condition)
		conditionQuery.SetField("condition")
		queries = append(queries, conditionQuery)
	}

	if params.AvailableOnly {
		statusQuery := bleve.NewTermQuery(string(domain.ItemStatusAvailable))
		statusQuery.SetField("status")
		queries = append(queries, statusQuery)
	}

	if params.ExcludeOwner != "" {
		ownerQuery := bleve.NewTermQuery(params.ExcludeOwner)
		ownerQuery.SetField("owner_id")
		boolQuery := bleve.NewBooleanQuery()
		boolQuery.AddMustNot(ownerQuery)
		if len(queries) > 0 {
			boolQuery.AddMust(bleve.NewConjunctionQuery(queries...))
		} else {
			boolQuery.AddMust(bleve.NewMatchAllQuery())
		}
		return boolQuery
	}

	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	return bleve.NewConjunctionQuery(queries...)
}
