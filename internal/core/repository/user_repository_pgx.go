package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/servify/backend/internal/core/domain"
)

// PgxUserRepository implements domain.UserRepository using pgxpool.
type PgxUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PgxUserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PgxUserRepository {
	return &PgxUserRepository{pool: pool}
}

// Create inserts a new user.
func (r *PgxUserRepository) Create(ctx context.Context, row *domain.UserRow) error {
	query := `INSERT INTO "user" (id, name, email, email_verified, image) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, query, row.ID, row.Name, row.Email, row.EmailVerified, row.Image)
	return err
}

// GetByID returns the user with the given id.
// Returns (nil, nil) when no user is found.
func (r *PgxUserRepository) GetByID(ctx context.Context, id string) (*domain.UserRow, error) {
	query := `SELECT id, name, email, email_verified, image, created_at, updated_at FROM "user" WHERE id = $1`

	var row domain.UserRow
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&row.ID, &row.Name, &row.Email, &row.EmailVerified, &row.Image, &row.CreatedAt, &row.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &row, nil
}

// GetByEmail returns the user with the given email.
// Returns (nil, nil) when no user is found.
func (r *PgxUserRepository) GetByEmail(ctx context.Context, email string) (*domain.UserRow, error) {
	query := `SELECT id, name, email, email_verified, image, created_at, updated_at FROM "user" WHERE email = $1`

	var row domain.UserRow
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&row.ID, &row.Name, &row.Email, &row.EmailVerified, &row.Image, &row.CreatedAt, &row.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &row, nil
}

// Delete removes the user. Only the provider profile cascades.
func (r *PgxUserRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM "user" WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}
