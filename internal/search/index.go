// Package search provides full-text item search using Bleve. Listings are
// indexed on write through the store's SearchIndexer hook and queried by the
// catalog API with fuzzy matching and category filtering.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/barterly/barterly-server/internal/domain"
)

// ItemIndex wraps a Bleve index over item listings.
//
// Thread safety: all public methods are safe for concurrent use. The mutex
// protects against index corruption during rebuild operations.
type ItemIndex struct {
	index  bleve.Index
	path   string
	logger *slog.Logger
	mu     sync.RWMutex // Protects index operations during rebuild
}

// Options configures the item index.
type Options struct {
	DataPath string       // Directory for index storage
	Logger   *slog.Logger // Logger for operations (uses stderr if nil)
}

// mappingVersion is incremented whenever the index mapping changes.
// This triggers an automatic rebuild on startup when the version doesn't match.
const mappingVersion = "1"

// NewItemIndex creates or opens an item search index. A corrupted index or an
// outdated mapping version is removed and recreated; the store is the source
// of truth, so rebuilding only costs a reindex pass.
func NewItemIndex(opts Options) (*ItemIndex, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	indexPath := filepath.Join(opts.DataPath, "items.bleve")
	versionPath := filepath.Join(opts.DataPath, "items.version")

	var index bleve.Index
	var err error
	needsRebuild := false

	indexExists := false
	if _, statErr := os.Stat(indexPath); statErr == nil {
		indexExists = true
	}

	if indexExists {
		existingVersion, readErr := os.ReadFile(versionPath)
		if readErr != nil {
			logger.Info("item index has no version file, will rebuild with current mapping",
				"new_version", mappingVersion,
			)
			needsRebuild = true
		} else if string(existingVersion) != mappingVersion {
			logger.Info("item index mapping version changed, will rebuild",
				"old_version", string(existingVersion),
				"new_version", mappingVersion,
			)
			needsRebuild = true
		}
	}

	if !needsRebuild && indexExists {
		index, err = bleve.Open(indexPath)
		if err != nil {
			logger.Warn("failed to open existing item index, will recreate",
				"path", indexPath,
				"error", err,
			)
			needsRebuild = true
		}
	}

	if needsRebuild {
		if removeErr := os.RemoveAll(indexPath); removeErr != nil {
			return nil, fmt.Errorf("remove old index: %w", removeErr)
		}
		index = nil
	}

	if index == nil {
		index, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
		if writeErr := os.WriteFile(versionPath, []byte(mappingVersion), 0644); writeErr != nil {
			logger.Warn("failed to write item index version file", "error", writeErr)
		}
		logger.Info("created new item index", "path", indexPath, "mapping_version", mappingVersion)
	} else {
		logger.Info("opened existing item index", "path", indexPath)
	}

	return &ItemIndex{
		index:  index,
		path:   indexPath,
		logger: logger,
	}, nil
}

// Close closes the index and releases resources.
func (s *ItemIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexItem indexes or reindexes one listing. Satisfies store.SearchIndexer.
func (s *ItemIndex) IndexItem(_ context.Context, item *domain.Item) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	// Convert to map so field names match the mapping (lowercase)
	return s.index.Index(item.ID, itemToMap(item))
}

// DeleteItem removes a listing from the index. Satisfies store.SearchIndexer.
func (s *ItemIndex) DeleteItem(_ context.Context, itemID string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(itemID)
}

// IndexItems indexes multiple listings in batches. Used by the seed command
// and rebuild path; faster than calling IndexItem in a loop.
func (s *ItemIndex) IndexItems(items []*domain.Item) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	const batchSize = 500

	for i := 0; i < len(items); i += batchSize {
		end := i + batchSize
		if end > len(items) {
			end = len(items)
		}

		batch := s.index.NewBatch()
		for _, item := range items[i:end] {
			if err := batch.Index(item.ID, itemToMap(item)); err != nil {
				return fmt.Errorf("batch index %s: %w", item.ID, err)
			}
		}

		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", i, end, err)
		}
	}

	return nil
}

// DocumentCount returns the total number of indexed listings.
func (s *ItemIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// itemToMap converts an item to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but our mapping
// uses lowercase names, so we convert explicitly.
func itemToMap(item *domain.Item) map[string]interface{} {
	return map[string]interface{}{
		"id":          item.ID,
		"owner_id":    item.OwnerID,
		"title":       item.Title,
		"description": item.Description,
		"category":    item.Category,
		"condition":   item.Condition,
		"status":      string(item.Status),
		"created_at":  item.CreatedAt.UnixMilli(),
	}
}
