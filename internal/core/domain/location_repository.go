package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// LocationType mirrors the location_type enum. The storage engine's
// check constraint rejects rows whose geometry class does not match the
// declared type; nothing here re-validates that.
type LocationType string

const (
	LocationPoint        LocationType = "point"
	LocationPolygon      LocationType = "polygon"
	LocationMultiPolygon LocationType = "multipolygon"
)

// LocationRow represents a row of the location table. Geom is stored as
// PostGIS geometry with SRID 4326.
type LocationRow struct {
	ID          uuid.UUID
	Name        *string
	FullAddress *string
	House       *string
	Street      *string
	District    *string
	City        *string
	Region      *string
	Country     *string
	Type        LocationType
	Geom        orb.Geometry
}

// AddressRow represents a row of the address table, tying a user to a
// location.
type AddressRow struct {
	ID         uuid.UUID
	Title      *string
	UserID     string
	LocationID uuid.UUID
}

// LocationRepository defines the data-access contract for geocoded
// places.
type LocationRepository interface {
	// Create inserts a location and returns the generated id. A
	// type/geometry mismatch surfaces as the check-constraint violation,
	// unmodified.
	Create(ctx context.Context, row *LocationRow) (uuid.UUID, error)

	// GetByID returns the location with the given id.
	// Returns (nil, nil) when no row is found.
	GetByID(ctx context.Context, id uuid.UUID) (*LocationRow, error)
}

// AddressRepository defines the data-access contract for user addresses.
type AddressRepository interface {
	// Create inserts an address and returns the generated id.
	Create(ctx context.Context, row *AddressRow) (uuid.UUID, error)

	// ListByUser returns the user's addresses.
	ListByUser(ctx context.Context, userID string) ([]AddressRow, error)
}
