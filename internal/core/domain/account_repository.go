package domain

import (
	"context"
	"time"
)

// CredentialProviderID is the provider_id value used for password-based
// accounts, alongside the social provider names.
const CredentialProviderID = "credential"

// AccountRow represents a row of the account table: one external
// identity-provider account (or the password credential) linked to a
// user. Password is set only for credential accounts.
type AccountRow struct {
	ID                    string
	AccountID             string
	ProviderID            string
	UserID                string
	AccessToken           *string
	RefreshToken          *string
	IDToken               *string
	AccessTokenExpiresAt  *time.Time
	RefreshTokenExpiresAt *time.Time
	Scope                 *string
	Password              *string
}

// AccountRepository defines the data-access contract for linked accounts.
type AccountRepository interface {
	// Create inserts a new linked account.
	Create(ctx context.Context, row *AccountRow) error

	// GetByProviderAccount returns the account for the given provider and
	// provider-side account id.
	// Returns (nil, nil) when no account is found.
	GetByProviderAccount(ctx context.Context, providerID, accountID string) (*AccountRow, error)

	// GetByUserAndProvider returns the user's account for one provider.
	// Returns (nil, nil) when no account is found.
	GetByUserAndProvider(ctx context.Context, userID, providerID string) (*AccountRow, error)

	// ListByUser returns all accounts linked to the user.
	ListByUser(ctx context.Context, userID string) ([]AccountRow, error)

	// UpdateTokens replaces the stored OAuth tokens after a refresh.
	UpdateTokens(ctx context.Context, id string, accessToken, refreshToken *string, accessTokenExpiresAt *time.Time) error
}
