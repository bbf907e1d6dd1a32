package store

import (
	"context"
	"encoding/json/v2"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/barterly/barterly-server/internal/domain"
	"github.com/barterly/barterly-server/internal/errors"
)

// CreateItem stores a new item listing with owner and status indexes.
func (s *Store) CreateItem(ctx context.Context, item *domain.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(itemPrefix + item.ID)

	exists, err := s.exists(key)
	if err != nil {
		return storeErr(err, "check item exists")
	}
	if exists {
		return errors.AlreadyExists(fmt.Sprintf("item %s already exists", item.ID))
	}

	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, data); err != nil {
			return err
		}

		ownerKey := []byte(itemIdxOwnerPrefix + item.OwnerID + ":" + item.ID)
		if err := txn.Set(ownerKey, []byte{}); err != nil {
			return err
		}

		statusKey := []byte(itemIdxStatusPrefix + string(item.Status) + ":" + item.ID)
		return txn.Set(statusKey, []byte{})
	})
	if err != nil {
		return storeErr(err, "create item")
	}

	s.indexItem(ctx, item)
	return nil
}

// GetItem retrieves an item by ID.
func (s *Store) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var item domain.Item
	if err := s.get([]byte(itemPrefix+id), &item); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, errors.NotFoundf("item %s not found", id)
		}
		return nil, storeErr(err, "get item")
	}

	return &item, nil
}

// UpdateItem replaces an item record and moves its status index if the
// status changed.
func (s *Store) UpdateItem(ctx context.Context, item *domain.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	old, err := s.GetItem(ctx, item.ID)
	if err != nil {
		return err
	}

	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(itemPrefix+item.ID), data); err != nil {
			return err
		}

		if old.Status != item.Status {
			oldKey := []byte(itemIdxStatusPrefix + string(old.Status) + ":" + item.ID)
			if err := txn.Delete(oldKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			newKey := []byte(itemIdxStatusPrefix + string(item.Status) + ":" + item.ID)
			if err := txn.Set(newKey, []byte{}); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return storeErr(err, "update item")
	}

	s.indexItem(ctx, item)
	return nil
}

// ListItemsByOwner returns all items listed by a user, in id order.
func (s *Store) ListItemsByOwner(ctx context.Context, ownerID string) ([]*domain.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ids, err := s.collectIndexIDs(itemIdxOwnerPrefix + ownerID + ":")
	if err != nil {
		return nil, storeErr(err, "list items by owner")
	}

	return s.getItems(ctx, ids)
}

// ListAvailableItems returns up to limit available items in id order.
// Iteration order is key order, so repeated calls against an unchanged
// catalog return the same superset - pool filtering relies on this.
func (s *Store) ListAvailableItems(ctx context.Context, limit int) ([]*domain.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := itemIdxStatusPrefix + string(domain.ItemStatusAvailable) + ":"

	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false // Key-only index
		opts.Prefix = []byte(prefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			if limit > 0 && len(ids) >= limit {
				break
			}
			if id := idFromIndexKey(string(it.Item().Key())); id != "" {
				ids = append(ids, id)
			}
		}
		return nil
	})
	if err != nil {
		return nil, storeErr(err, "list available items")
	}

	return s.getItems(ctx, ids)
}

// collectIndexIDs gathers record ids under a key-only index prefix.
func (s *Store) collectIndexIDs(prefix string) ([]string, error) {
	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			if id := idFromIndexKey(string(it.Item().Key())); id != "" {
				ids = append(ids, id)
			}
		}
		return nil
	})
	return ids, err
}

// getItems resolves item ids to records, skipping ids whose record vanished
// between index scan and read.
func (s *Store) getItems(ctx context.Context, ids []string) ([]*domain.Item, error) {
	items := make([]*domain.Item, 0, len(ids))
	for _, id := range ids {
		item, err := s.GetItem(ctx, id)
		if err != nil {
			if errors.Is(err, errors.ErrNotFound) {
				continue
			}
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
