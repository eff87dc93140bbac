package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paulmach/orb/encoding/wkt"

	"github.com/servify/backend/internal/core/domain"
)

// PgxLocationRepository implements domain.LocationRepository using
// pgxpool. Geometry crosses the wire as WKT; the column keeps SRID 4326.
type PgxLocationRepository struct {
	pool *pgxpool.Pool
}

// NewLocationRepository creates a new PgxLocationRepository.
func NewLocationRepository(pool *pgxpool.Pool) *PgxLocationRepository {
	return &PgxLocationRepository{pool: pool}
}

// Create inserts a location and returns the generated id. The
// location_geo_type_check constraint decides whether the declared type
// matches the geometry; a mismatch propagates as the check violation.
func (r *PgxLocationRepository) Create(ctx context.Context, row *domain.LocationRow) (uuid.UUID, error) {
	query := `
		INSERT INTO location (name, full_address, house, street, district, city, region, country, type, geom)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, ST_GeomFromText($10, 4326))
		RETURNING id
	`

	var geom *string
	if row.Geom != nil {
		s := wkt.MarshalString(row.Geom)
		geom = &s
	}

	var id uuid.UUID
	err := r.pool.QueryRow(ctx, query,
		row.Name, row.FullAddress, row.House, row.Street, row.District,
		row.City, row.Region, row.Country, string(row.Type), geom,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// GetByID returns the location with the given id.
// Returns (nil, nil) when no row is found.
func (r *PgxLocationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.LocationRow, error) {
	query := `
		SELECT id, name, full_address, house, street, district, city, region, country, type, ST_AsText(geom)
		FROM location
		WHERE id = $1
	`

	var row domain.LocationRow
	var locType string
	var geom *string
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&row.ID, &row.Name, &row.FullAddress, &row.House, &row.Street, &row.District,
		&row.City, &row.Region, &row.Country, &locType, &geom,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	row.Type = domain.LocationType(locType)
	if geom != nil {
		g, err := wkt.Unmarshal(*geom)
		if err != nil {
			return nil, fmt.Errorf("decode geometry for location %s: %w", id, err)
		}
		row.Geom = g
	}

	return &row, nil
}

// PgxAddressRepository implements domain.AddressRepository using pgxpool.
type PgxAddressRepository struct {
	pool *pgxpool.Pool
}

// NewAddressRepository creates a new PgxAddressRepository.
func NewAddressRepository(pool *pgxpool.Pool) *PgxAddressRepository {
	return &PgxAddressRepository{pool: pool}
}

// Create inserts an address and returns the generated id.
func (r *PgxAddressRepository) Create(ctx context.Context, row *domain.AddressRow) (uuid.UUID, error) {
	query := `
		INSERT INTO address (title, user_id, location_id)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	var id uuid.UUID
	err := r.pool.QueryRow(ctx, query, row.Title, row.UserID, row.LocationID).Scan(&id)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// ListByUser returns the user's addresses.
func (r *PgxAddressRepository) ListByUser(ctx context.Context, userID string) ([]domain.AddressRow, error) {
	query := `SELECT id, title, user_id, location_id FROM address WHERE user_id = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var addresses []domain.AddressRow
	for rows.Next() {
		var a domain.AddressRow
		if err := rows.Scan(&a.ID, &a.Title, &a.UserID, &a.LocationID); err != nil {
			return nil, err
		}
		addresses = append(addresses, a)
	}
	return addresses, rows.Err()
}
