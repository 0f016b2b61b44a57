package service

import (
	"context"

	"github.com/samber/lo"

	"github.com/chatify/backend/src/store"
)

// UserService exposes user directory reads.
type UserService struct {
	store *store.Store
}

// NewUserService creates a user service.
func NewUserService(s *store.Store) *UserService {
	return &UserService{store: s}
}

// List returns all registered users.
func (u *UserService) List(ctx context.Context) ([]UserRead, error) {
	users, err := u.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Map(users, func(usr store.User, _ int) UserRead { return toUserRead(usr) }), nil
}
