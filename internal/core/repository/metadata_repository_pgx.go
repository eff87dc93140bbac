package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/servify/backend/internal/core/domain"
)

// PgxUserMetadataRepository implements domain.UserMetadataRepository
// using pgxpool.
type PgxUserMetadataRepository struct {
	pool *pgxpool.Pool
}

// NewUserMetadataRepository creates a new PgxUserMetadataRepository.
func NewUserMetadataRepository(pool *pgxpool.Pool) *PgxUserMetadataRepository {
	return &PgxUserMetadataRepository{pool: pool}
}

// Create inserts the metadata row for a user. Roles defaults to {user}
// when empty.
func (r *PgxUserMetadataRepository) Create(ctx context.Context, userID string, roles []string) (*domain.UserMetadataRow, error) {
	if len(roles) == 0 {
		roles = []string{domain.RoleUser}
	}

	// The parameter arrives as text[] and is cast to the role enum array.
	query := `
		INSERT INTO user_metadata (user_id, roles)
		VALUES ($1, $2::text[]::role[])
		RETURNING id
	`

	row := &domain.UserMetadataRow{UserID: userID, Roles: roles}
	if err := r.pool.QueryRow(ctx, query, userID, roles).Scan(&row.ID); err != nil {
		return nil, err
	}
	return row, nil
}

// GetByUserID returns the user's metadata.
// Returns (nil, nil) when no row is found.
func (r *PgxUserMetadataRepository) GetByUserID(ctx context.Context, userID string) (*domain.UserMetadataRow, error) {
	query := `SELECT id, user_id, roles::text[], locale FROM user_metadata WHERE user_id = $1`

	var row domain.UserMetadataRow
	err := r.pool.QueryRow(ctx, query, userID).Scan(&row.ID, &row.UserID, &row.Roles, &row.Locale)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &row, nil
}

// AddRole adds a role to the user's role set if not already present.
func (r *PgxUserMetadataRepository) AddRole(ctx context.Context, userID, role string) error {
	query := `
		UPDATE user_metadata
		SET roles = array_append(roles, $2::role)
		WHERE user_id = $1 AND NOT ($2::role = ANY(roles))
	`
	_, err := r.pool.Exec(ctx, query, userID, role)
	return err
}
