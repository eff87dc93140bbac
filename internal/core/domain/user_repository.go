package domain

import (
	"context"
	"time"
)

// UserRow represents a row of the user table. IDs are opaque tokens
// issued by the auth layer, not database-generated.
type UserRow struct {
	ID            string
	Name          string
	Email         string
	EmailVerified bool
	Image         *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// UserRepository defines the data-access contract for user records.
// Implementations live in internal/core/repository (Core layer).
type UserRepository interface {
	// Create inserts a new user. A duplicate email surfaces as the
	// storage engine's uniqueness violation, unmodified.
	Create(ctx context.Context, row *UserRow) error

	// GetByID returns the user with the given id.
	// Returns (nil, nil) when no user is found.
	GetByID(ctx context.Context, id string) (*UserRow, error)

	// GetByEmail returns the user with the given email.
	// Returns (nil, nil) when no user is found.
	GetByEmail(ctx context.Context, email string) (*UserRow, error)

	// Delete removes the user. The storage engine cascades to the
	// provider profile and nothing else; other dependents must be
	// deleted explicitly by the caller.
	Delete(ctx context.Context, id string) error
}
