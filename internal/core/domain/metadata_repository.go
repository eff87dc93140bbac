package domain

import (
	"context"

	"github.com/google/uuid"
)

// Role values stored in user_metadata.roles.
const (
	RoleUser     = "user"
	RoleProvider = "provider"
)

// UserMetadataRow represents a row of the user_metadata table. Exactly
// one row exists per user (unique user_id); roles is a non-empty set.
type UserMetadataRow struct {
	ID     uuid.UUID
	UserID string
	Roles  []string
	Locale *string
}

// UserMetadataRepository defines the data-access contract for user
// metadata.
type UserMetadataRepository interface {
	// Create inserts the metadata row for a user. Roles defaults to
	// {user} when empty. A second row for the same user surfaces as a
	// uniqueness violation.
	Create(ctx context.Context, userID string, roles []string) (*UserMetadataRow, error)

	// GetByUserID returns the user's metadata.
	// Returns (nil, nil) when no row is found.
	GetByUserID(ctx context.Context, userID string) (*UserMetadataRow, error)

	// AddRole adds a role to the user's role set if not already present.
	AddRole(ctx context.Context, userID, role string) error
}
