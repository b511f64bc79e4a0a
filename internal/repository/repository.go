// Package repository contains data access layer abstractions.
// Implementations live in subpackages: postgres (database/sql), pgxstore
// (native pgx pool) and memory.
package repository

import (
	"context"
	"errors"

	"respondapi/internal/model"
)

// ErrNotFound is returned by every implementation when a row does not exist.
var ErrNotFound = errors.New("record not found")

// UserRepository defines persistence for users. No business logic here.
type UserRepository interface {
	// Create inserts a new user. The caller provides ID and CreatedAt.
	// Returns the stored user as read back from the store.
	Create(ctx context.Context, u *model.User) (*model.User, error)

	// FindByID returns a user by its ID or ErrNotFound.
	FindByID(ctx context.Context, id string) (*model.User, error)

	// List returns a page of users, oldest first, and the total row count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.User], error)

	// Delete removes a user by ID. It returns ErrNotFound if nothing was deleted.
	Delete(ctx context.Context, id string) error
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
