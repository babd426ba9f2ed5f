// Package repository persists user accounts.
package repository

import (
	"context"
	"errors"

	"corebank/backend/internal/user/domain"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when creating a user whose email is taken.
	ErrDuplicateEmail = errors.New("email already registered")
)

// Repository is the persistence boundary for user accounts.
type Repository interface {
	// GetByEmail looks up a user by exact email match. Case matters.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
}
