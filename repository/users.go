package repository

import (
	"context"
	"fmt"

	"github.com/jacentio/platewise/entity"
)

// CreateUser stores a new user.
func (r *Repository) CreateUser(ctx context.Context, in entity.UserInput) (*entity.User, error) {
	u, err := entity.NewUser(in, nil)
	if err != nil {
		return nil, err
	}
	item, err := entity.Marshal(u)
	if err != nil {
		return nil, err
	}
	if err := r.backend.Create(ctx, u, item); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// GetUser returns a user by id.
func (r *Repository) GetUser(ctx context.Context, id string) (*entity.User, error) {
	item, err := r.backend.Get(ctx, entity.Key(id))
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	u, err := entity.DecodeUser(item)
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return u, nil
}

// ListUsers returns one page of users, optionally filtered by a userName or
// userEmail prefix or by a created date range.
func (r *Repository) ListUsers(ctx context.Context, opts ListOptions) (*Page[entity.User], error) {
	return list(ctx, r, entity.TypeUser, opts, entity.DecodeUser)
}

// UpdateUser replaces a user's name and email.
func (r *Repository) UpdateUser(ctx context.Context, id string, in entity.UserInput) (*entity.User, error) {
	existing, err := r.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	u, err := entity.NewUser(in, existing)
	if err != nil {
		return nil, err
	}
	upd, err := entity.UpdateSet(u)
	if err != nil {
		return nil, err
	}

	item, err := r.backend.Update(ctx, u.GetKey(), upd)
	if err != nil {
		return nil, fmt.Errorf("update user %s: %w", id, err)
	}
	return entity.DecodeUser(item)
}

// DeleteUser deletes a user and all of their reviews, returning the user as
// it was. Each review is taken off its food item's totals.
func (r *Repository) DeleteUser(ctx context.Context, id string) (*entity.User, error) {
	old, err := r.deleteWithChildren(ctx, entity.TypeUser, id)
	if err != nil {
		return nil, fmt.Errorf("delete user %s: %w", id, err)
	}
	return entity.DecodeUser(old)
}
