package auth

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servify/backend/internal/core/domain"
)

func TestTokenFromHeaders(t *testing.T) {
	tests := []struct {
		name    string
		headers http.Header
		want    string
	}{
		{
			name:    "bearer",
			headers: http.Header{"Authorization": {"Bearer tok-1"}},
			want:    "tok-1",
		},
		{
			name:    "cookie",
			headers: http.Header{"Cookie": {SessionCookie + "=tok-2"}},
			want:    "tok-2",
		},
		{
			name:    "bearer wins over cookie",
			headers: http.Header{"Authorization": {"Bearer tok-1"}, "Cookie": {SessionCookie + "=tok-2"}},
			want:    "tok-1",
		},
		{
			name:    "other scheme ignored",
			headers: http.Header{"Authorization": {"Basic dXNlcg=="}},
			want:    "",
		},
		{
			name:    "absent",
			headers: http.Header{},
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TokenFromHeaders(tt.headers))
		})
	}
}

func TestIssueAndResolveSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.users.Create(ctx, &domain.UserRow{ID: "user-1", Name: "u", Email: "u@servify.app"}))
	_, err := env.metadata.Create(ctx, "user-1", []string{domain.RoleUser, domain.RoleProvider})
	require.NoError(t, err)

	issued, err := env.service.IssueSession(ctx, "user-1", nil, nil)
	require.NoError(t, err)
	require.NotEmpty(t, issued.Token)
	assert.True(t, issued.ExpiresAt.After(time.Now()))

	headers := http.Header{"Authorization": {"Bearer " + issued.Token}}
	resolved, err := env.service.ResolveSession(ctx, headers)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, "user-1", resolved.UserID)
	assert.Equal(t, "u@servify.app", resolved.User.Email)
	assert.Equal(t, []string{domain.RoleUser, domain.RoleProvider}, resolved.Roles)
}

func TestResolveSessionAbsentCredentials(t *testing.T) {
	env := newTestEnv(t)

	session, err := env.service.ResolveSession(context.Background(), http.Header{})
	assert.NoError(t, err)
	assert.Nil(t, session)
	assert.Zero(t, env.sessions.lookups, "no lookup without credentials")
}

func TestResolveSessionUnknownToken(t *testing.T) {
	env := newTestEnv(t)

	headers := http.Header{"Authorization": {"Bearer nope"}}
	session, err := env.service.ResolveSession(context.Background(), headers)
	assert.NoError(t, err)
	assert.Nil(t, session)
}

func TestResolveSessionExpired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.users.Create(ctx, &domain.UserRow{ID: "user-1", Name: "u", Email: "u@servify.app"}))
	require.NoError(t, env.sessions.Create(ctx, &domain.SessionRow{
		ID: "s-1", Token: "stale", UserID: "user-1", ExpiresAt: time.Now().Add(-time.Minute),
	}))

	headers := http.Header{"Authorization": {"Bearer stale"}}
	_, err := env.service.ResolveSession(ctx, headers)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestSignOut(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.users.Create(ctx, &domain.UserRow{ID: "user-1", Name: "u", Email: "u@servify.app"}))
	issued, err := env.service.IssueSession(ctx, "user-1", nil, nil)
	require.NoError(t, err)

	require.NoError(t, env.service.SignOut(ctx, issued.Token))

	session, err := env.service.ResolveSession(ctx, http.Header{"Authorization": {"Bearer " + issued.Token}})
	assert.NoError(t, err)
	assert.Nil(t, session)

	// Unknown tokens are a no-op.
	assert.NoError(t, env.service.SignOut(ctx, "unknown"))
	assert.NoError(t, env.service.SignOut(ctx, ""))
}

func TestPruneExpiredSessions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.users.Create(ctx, &domain.UserRow{ID: "user-1", Name: "u", Email: "u@servify.app"}))
	live, err := env.service.IssueSession(ctx, "user-1", nil, nil)
	require.NoError(t, err)
	require.NoError(t, env.sessions.Create(ctx, &domain.SessionRow{
		ID: "s-stale", Token: "stale", UserID: "user-1", ExpiresAt: time.Now().Add(-time.Minute),
	}))

	pruned, err := env.service.PruneExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)

	// The live session survives the sweep.
	session, err := env.service.ResolveSession(ctx, http.Header{"Authorization": {"Bearer " + live.Token}})
	require.NoError(t, err)
	assert.NotNil(t, session)
}
