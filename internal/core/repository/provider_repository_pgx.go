package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/servify/backend/internal/core/domain"
)

// PgxProviderProfileRepository implements domain.ProviderProfileRepository
// using pgxpool.
type PgxProviderProfileRepository struct {
	pool *pgxpool.Pool
}

// NewProviderProfileRepository creates a new PgxProviderProfileRepository.
func NewProviderProfileRepository(pool *pgxpool.Pool) *PgxProviderProfileRepository {
	return &PgxProviderProfileRepository{pool: pool}
}

// Create inserts a provider profile and returns the generated id. Two
// racing inserts for one user are decided by the unique constraint on
// user_id; the loser gets the violation unmodified.
func (r *PgxProviderProfileRepository) Create(ctx context.Context, row *domain.ProviderProfileRow) (uuid.UUID, error) {
	query := `
		INSERT INTO service_provider (user_id, phone_number, first_name, last_name, bio)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id uuid.UUID
	err := r.pool.QueryRow(ctx, query, row.UserID, row.PhoneNumber, row.FirstName, row.LastName, row.Bio).Scan(&id)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// GetByUserID returns the user's provider profile.
// Returns (nil, nil) when the user has none.
func (r *PgxProviderProfileRepository) GetByUserID(ctx context.Context, userID string) (*domain.ProviderProfileRow, error) {
	query := `
		SELECT id, user_id, phone_number, first_name, last_name, bio
		FROM service_provider
		WHERE user_id = $1
	`

	var row domain.ProviderProfileRow
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&row.ID, &row.UserID, &row.PhoneNumber, &row.FirstName, &row.LastName, &row.Bio,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &row, nil
}
