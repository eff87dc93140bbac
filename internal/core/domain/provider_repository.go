package domain

import (
	"context"

	"github.com/google/uuid"
)

// ProviderProfileRow represents a row of the service_provider table: a
// user's service-provider profile. At most one exists per user; deleting
// the user cascades to this row.
type ProviderProfileRow struct {
	ID          uuid.UUID
	UserID      string
	PhoneNumber *string
	FirstName   *string
	LastName    *string
	Bio         *string
}

// ProviderProfileRepository defines the data-access contract for
// provider profiles.
type ProviderProfileRepository interface {
	// Create inserts a provider profile and returns the generated id.
	// A second profile for the same user loses to the uniqueness
	// constraint; the violation propagates unmodified.
	Create(ctx context.Context, row *ProviderProfileRow) (uuid.UUID, error)

	// GetByUserID returns the user's provider profile.
	// Returns (nil, nil) when the user has none.
	GetByUserID(ctx context.Context, userID string) (*ProviderProfileRow, error)
}
