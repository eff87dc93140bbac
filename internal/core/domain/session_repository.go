package domain

import (
	"context"
	"time"
)

// SessionRow represents a row of the session table.
type SessionRow struct {
	ID        string
	Token     string
	UserID    string
	ExpiresAt time.Time
	IPAddress *string
	UserAgent *string
	CreatedAt time.Time
}

// SessionUser is a session joined with its owner, returned by session
// lookup queries.
type SessionUser struct {
	Session SessionRow
	User    UserRow
}

// SessionRepository defines the data-access contract for session
// operations.
type SessionRepository interface {
	// Create inserts a new session.
	Create(ctx context.Context, row *SessionRow) error

	// GetWithUser looks up the session by token and returns it together
	// with the owning user.
	// Returns (nil, nil) when the token does not match any session.
	GetWithUser(ctx context.Context, token string) (*SessionUser, error)

	// DeleteByToken removes the session with the given token. Deleting
	// an unknown token is not an error.
	DeleteByToken(ctx context.Context, token string) error

	// DeleteExpired removes sessions whose expiry has passed and returns
	// the number of rows deleted.
	DeleteExpired(ctx context.Context) (int64, error)
}
