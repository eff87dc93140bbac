package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/servify/backend/internal/core/domain"
)

// PgxAccountRepository implements domain.AccountRepository using pgxpool.
type PgxAccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new PgxAccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{pool: pool}
}

const accountColumns = `id, account_id, provider_id, user_id, access_token, refresh_token, id_token,
	access_token_expires_at, refresh_token_expires_at, scope, password`

func scanAccount(row pgx.Row) (*domain.AccountRow, error) {
	var a domain.AccountRow
	err := row.Scan(
		&a.ID, &a.AccountID, &a.ProviderID, &a.UserID, &a.AccessToken, &a.RefreshToken, &a.IDToken,
		&a.AccessTokenExpiresAt, &a.RefreshTokenExpiresAt, &a.Scope, &a.Password,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// Create inserts a new linked account.
func (r *PgxAccountRepository) Create(ctx context.Context, row *domain.AccountRow) error {
	query := `
		INSERT INTO account (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.pool.Exec(ctx, query,
		row.ID, row.AccountID, row.ProviderID, row.UserID, row.AccessToken, row.RefreshToken, row.IDToken,
		row.AccessTokenExpiresAt, row.RefreshTokenExpiresAt, row.Scope, row.Password,
	)
	return err
}

// GetByProviderAccount returns the account for the given provider and
// provider-side account id.
// Returns (nil, nil) when no account is found.
func (r *PgxAccountRepository) GetByProviderAccount(ctx context.Context, providerID, accountID string) (*domain.AccountRow, error) {
	query := `SELECT ` + accountColumns + ` FROM account WHERE provider_id = $1 AND account_id = $2`
	return scanAccount(r.pool.QueryRow(ctx, query, providerID, accountID))
}

// GetByUserAndProvider returns the user's account for one provider.
// Returns (nil, nil) when no account is found.
func (r *PgxAccountRepository) GetByUserAndProvider(ctx context.Context, userID, providerID string) (*domain.AccountRow, error) {
	query := `SELECT ` + accountColumns + ` FROM account WHERE user_id = $1 AND provider_id = $2`
	return scanAccount(r.pool.QueryRow(ctx, query, userID, providerID))
}

// ListByUser returns all accounts linked to the user.
func (r *PgxAccountRepository) ListByUser(ctx context.Context, userID string) ([]domain.AccountRow, error) {
	query := `SELECT ` + accountColumns + ` FROM account WHERE user_id = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.AccountRow
	for rows.Next() {
		var a domain.AccountRow
		if err := rows.Scan(
			&a.ID, &a.AccountID, &a.ProviderID, &a.UserID, &a.AccessToken, &a.RefreshToken, &a.IDToken,
			&a.AccessTokenExpiresAt, &a.RefreshTokenExpiresAt, &a.Scope, &a.Password,
		); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// UpdateTokens replaces the stored OAuth tokens after a refresh.
func (r *PgxAccountRepository) UpdateTokens(ctx context.Context, id string, accessToken, refreshToken *string, accessTokenExpiresAt *time.Time) error {
	query := `
		UPDATE account
		SET access_token = $2, refresh_token = COALESCE($3, refresh_token), access_token_expires_at = $4
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, id, accessToken, refreshToken, accessTokenExpiresAt)
	return err
}
