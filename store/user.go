package store

import (
	"context"
	"fmt"
)

// User represents a registered account.
type User struct {
	ID           int32
	UID          string
	Email        string
	Username     string
	PasswordHash string // bcrypt hash, never exposed over the API
	CreatedTs    int64
}

// FindUser is the find condition for users.
type FindUser struct {
	ID       *int32
	UID      *string
	Email    *string
	Username *string
}

func (s *Store) CreateUser(ctx context.Context, create *User) (*User, error) {
	user, err := s.driver.CreateUser(ctx, create)
	if err != nil {
		return nil, err
	}
	s.userCache.Set(ctx, userCacheKey(user.ID), user)
	return user, nil
}

// GetUser returns the single user matching the find condition, or nil.
func (s *Store) GetUser(ctx context.Context, find *FindUser) (*User, error) {
	if find.ID != nil {
		if v, ok := s.userCache.Get(ctx, userCacheKey(*find.ID)); ok {
			if user, ok := v.(*User); ok {
				return user, nil
			}
		}
	}

	list, err := s.driver.ListUsers(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}

	user := list[0]
	s.userCache.Set(ctx, userCacheKey(user.ID), user)
	return user, nil
}

func (s *Store) ListUsers(ctx context.Context, find *FindUser) ([]*User, error) {
	return s.driver.ListUsers(ctx, find)
}

func userCacheKey(id int32) string {
	return fmt.Sprintf("user:%d", id)
}
