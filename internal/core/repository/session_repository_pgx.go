package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/servify/backend/internal/core/domain"
)

// PgxSessionRepository implements domain.SessionRepository using pgxpool.
type PgxSessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new PgxSessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *PgxSessionRepository {
	return &PgxSessionRepository{pool: pool}
}

// Create inserts a new session.
func (r *PgxSessionRepository) Create(ctx context.Context, row *domain.SessionRow) error {
	query := `
		INSERT INTO session (id, token, user_id, expires_at, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query, row.ID, row.Token, row.UserID, row.ExpiresAt, row.IPAddress, row.UserAgent)
	return err
}

// GetWithUser looks up the session by token and returns it together with
// the owning user.
// Returns (nil, nil) when the token does not match any session.
func (r *PgxSessionRepository) GetWithUser(ctx context.Context, token string) (*domain.SessionUser, error) {
	query := `
		SELECT s.id, s.token, s.user_id, s.expires_at, s.ip_address, s.user_agent, s.created_at,
		       u.id, u.name, u.email, u.email_verified, u.image, u.created_at, u.updated_at
		FROM session s
		JOIN "user" u ON s.user_id = u.id
		WHERE s.token = $1
	`

	var row domain.SessionUser
	err := r.pool.QueryRow(ctx, query, token).Scan(
		&row.Session.ID, &row.Session.Token, &row.Session.UserID, &row.Session.ExpiresAt,
		&row.Session.IPAddress, &row.Session.UserAgent, &row.Session.CreatedAt,
		&row.User.ID, &row.User.Name, &row.User.Email, &row.User.EmailVerified,
		&row.User.Image, &row.User.CreatedAt, &row.User.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &row, nil
}

// DeleteByToken removes the session with the given token.
func (r *PgxSessionRepository) DeleteByToken(ctx context.Context, token string) error {
	query := `DELETE FROM session WHERE token = $1`
	_, err := r.pool.Exec(ctx, query, token)
	return err
}

// DeleteExpired removes sessions whose expiry has passed.
func (r *PgxSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM session WHERE expires_at < now()`
	tag, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
