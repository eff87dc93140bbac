package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/servify/backend/internal/core/domain"
)

// SessionCookie is the cookie carrying the session token for browser
// clients. Native clients send the token as a bearer credential instead.
const SessionCookie = "servify.session_token"

// sessionTTL is the lifetime of an issued session.
const sessionTTL = 30 * 24 * time.Hour

// Session is a resolved identity/authentication context.
type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	User      domain.UserRow
	Roles     []string
}

func newSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// IssueSession creates and persists a session for the user.
func (s *Service) IssueSession(ctx context.Context, userID string, ipAddress, userAgent *string) (*Session, error) {
	token, err := newSessionToken()
	if err != nil {
		return nil, err
	}

	row := &domain.SessionRow{
		ID:        uuid.NewString(),
		Token:     token,
		UserID:    userID,
		ExpiresAt: time.Now().Add(sessionTTL),
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
	if err := s.repos.Sessions.Create(ctx, row); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load session user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("session user %s: %w", userID, ErrSessionNotFound)
	}

	session := &Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: row.ExpiresAt,
		User:      *user,
	}
	s.attachRoles(ctx, session)
	return session, nil
}

// TokenFromHeaders extracts the session token from the request's header
// set: Authorization bearer credentials first, then the session cookie.
// Returns "" when neither is present.
func TokenFromHeaders(headers http.Header) string {
	if authz := headers.Get("Authorization"); authz != "" {
		if token, ok := strings.CutPrefix(authz, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}

	// http.Header does not parse cookies by itself; reuse the stdlib
	// parser via a throwaway request value.
	req := http.Request{Header: headers}
	if c, err := req.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// ResolveSession resolves the session behind the inbound request's
// headers. Returns (nil, nil) when no credentials are presented or the
// token is unknown; an expired session returns ErrSessionExpired. No side
// effects — memoization is the request layer's concern.
func (s *Service) ResolveSession(ctx context.Context, headers http.Header) (*Session, error) {
	token := TokenFromHeaders(headers)
	if token == "" {
		return nil, nil
	}

	row, err := s.repos.Sessions.GetWithUser(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	if row == nil {
		return nil, nil
	}
	if time.Now().After(row.Session.ExpiresAt) {
		return nil, fmt.Errorf("session expired at %v: %w", row.Session.ExpiresAt, ErrSessionExpired)
	}

	session := &Session{
		Token:     row.Session.Token,
		UserID:    row.Session.UserID,
		ExpiresAt: row.Session.ExpiresAt,
		User:      row.User,
	}
	s.attachRoles(ctx, session)
	return session, nil
}

// PruneExpiredSessions removes sessions whose expiry has passed and
// returns the number removed. Run at startup; expired tokens are already
// rejected by ResolveSession, this only reclaims the rows.
func (s *Service) PruneExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.repos.Sessions.DeleteExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("prune expired sessions: %w", err)
	}
	return n, nil
}

// SignOut invalidates the session with the given token. Unknown tokens
// are a no-op.
func (s *Service) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.repos.Sessions.DeleteByToken(ctx, token)
}

// attachRoles loads the user's role set, best-effort: a missing metadata
// row leaves Roles nil rather than failing the session.
func (s *Service) attachRoles(ctx context.Context, session *Session) {
	meta, err := s.repos.Metadata.GetByUserID(ctx, session.UserID)
	if err != nil || meta == nil {
		return
	}
	session.Roles = meta.Roles
}
