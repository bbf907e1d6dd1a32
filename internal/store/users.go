package store

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/barterly/barterly-server/internal/color"
	"github.com/barterly/barterly-server/internal/domain"
	"github.com/barterly/barterly-server/internal/errors"
)

// CreateUser stores a new user profile. Profiles without an avatar color get
// a deterministic one derived from the user ID.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if user.AvatarColor == "" {
		user.AvatarColor = color.ForUser(user.ID)
	}

	key := []byte(userPrefix + user.ID)

	exists, err := s.exists(key)
	if err != nil {
		return storeErr(err, "check user exists")
	}
	if exists {
		return errors.AlreadyExists(fmt.Sprintf("user %s already exists", user.ID))
	}

	if err := s.set(key, user); err != nil {
		return storeErr(err, "create user")
	}
	return nil
}

// GetUser retrieves a user profile by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var user domain.User
	if err := s.get([]byte(userPrefix+id), &user); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, errors.NotFoundf("user %s not found", id)
		}
		return nil, storeErr(err, "get user")
	}

	return &user, nil
}

// UpdateUser replaces a user profile.
func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := s.GetUser(ctx, user.ID); err != nil {
		return err
	}

	user.UpdatedAt = time.Now()
	if err := s.set([]byte(userPrefix+user.ID), user); err != nil {
		return storeErr(err, "update user")
	}
	return nil
}
