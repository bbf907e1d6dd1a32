// Package store provides the Badger-backed document store for Barterly.
// Documents are JSON-encoded domain records addressed by prefixed keys;
// secondary lookups use key-only index entries maintained in the same
// transaction as the primary write.
//
// The store returns typed domain errors (internal/errors) so the retry layer
// and handlers can dispatch on error codes rather than message text.
package store

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/barterly/barterly-server/internal/domain"
	"github.com/barterly/barterly-server/internal/errors"
)

// SearchIndexer is the interface for keeping the item search index in sync.
// Store uses this to index writes without depending on search internals.
type SearchIndexer interface {
	IndexItem(ctx context.Context, item *domain.Item) error
	DeleteItem(ctx context.Context, itemID string) error
}

// NoopSearchIndexer is a no-op implementation for testing.
type NoopSearchIndexer struct{}

// IndexItem is a no-op.
func (NoopSearchIndexer) IndexItem(context.Context, *domain.Item) error { return nil }

// DeleteItem is a no-op.
func (NoopSearchIndexer) DeleteItem(context.Context, string) error { return nil }

// NewNoopSearchIndexer creates a new no-op search indexer for testing.
func NewNoopSearchIndexer() SearchIndexer {
	return NoopSearchIndexer{}
}

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	// Search indexer for keeping item search in sync with store changes.
	// Set via SetSearchIndexer after store creation to avoid circular dependencies.
	searchIndexer SearchIndexer
}

// New creates a new Store instance with the given database path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	store := &Store{
		db:            db,
		logger:        logger,
		searchIndexer: NoopSearchIndexer{},
	}

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return store, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// SetSearchIndexer sets the search indexer for keeping item search in sync.
// Set after store creation because the search service needs the store to exist.
func (s *Store) SetSearchIndexer(indexer SearchIndexer) {
	s.searchIndexer = indexer
}

// indexItem pushes an item write into the search index. Index failures are
// logged, not surfaced: search lag must never fail a store write.
func (s *Store) indexItem(ctx context.Context, item *domain.Item) {
	if s.searchIndexer == nil {
		return
	}
	if err := s.searchIndexer.IndexItem(ctx, item); err != nil && s.logger != nil {
		s.logger.Warn("failed to index item", "item_id", item.ID, "error", err)
	}
}

// Helper methods for database operations.

// get retrieves a value by key.
func (s *Store) get(key []byte, dest any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
}

// set stores a value by key.
func (s *Store) set(key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// exists checks if a key exists.
func (s *Store) exists(key []byte) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// storeErr maps an unexpected badger failure to a retryable typed error.
// Known conditions (key not found, already exists) are mapped at call sites.
func storeErr(err error, op string) error {
	return errors.Wrapf(err, errors.CodeUnavailable, "store %s failed", op)
}
