package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/servify/backend/internal/core/domain"
)

func testConfig() Config {
	return Config{
		BaseURL:       "https://preview.servify.app",
		ProductionURL: "https://servify.app",
		Secret:        "test-secret",
		Providers:     testProviders(),
	}
}

type testEnv struct {
	service  *Service
	users    *fakeUsers
	sessions *fakeSessions
	accounts *fakeAccounts
	metadata *fakeMetadata
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	users := newFakeUsers()
	sessions := newFakeSessions(users)
	accounts := &fakeAccounts{}
	metadata := newFakeMetadata()

	service, err := New(testConfig(), Repositories{
		Users:    users,
		Sessions: sessions,
		Accounts: accounts,
		Metadata: metadata,
	})
	require.NoError(t, err)

	return &testEnv{service: service, users: users, sessions: sessions, accounts: accounts, metadata: metadata}
}

func TestNewFailsWithoutSecretBeforeAnythingElse(t *testing.T) {
	cfg := testConfig()
	cfg.Secret = ""

	// Zero repositories: a missing secret must fail before any
	// dependency is touched.
	service, err := New(cfg, Repositories{})
	assert.Nil(t, service)
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestNewFailsOnMissingProviderCredentials(t *testing.T) {
	cfg := testConfig()
	discord := cfg.Providers[ProviderDiscord]
	discord.ClientSecret = ""
	cfg.Providers[ProviderDiscord] = discord

	_, err := New(cfg, Repositories{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "discord")
}

func TestTrustedOriginsAllowList(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t,
		[]string{"https://servify.app", "servify://", "https://appleid.apple.com"},
		env.service.TrustedOrigins())

	assert.True(t, env.service.IsTrustedOrigin("https://servify.app"))
	assert.True(t, env.service.IsTrustedOrigin("https://appleid.apple.com"))
	assert.True(t, env.service.IsTrustedOrigin("servify://login"), "app scheme trusts all app URLs")
	assert.True(t, env.service.IsTrustedOrigin("https://preview.servify.app"), "current deployment base URL")
	assert.False(t, env.service.IsTrustedOrigin("https://evil.example"))
	assert.False(t, env.service.IsTrustedOrigin(""))
}

func TestProxyRedirectRewritesToProductionCallback(t *testing.T) {
	env := newTestEnv(t)

	// Any trusted origin lands on the canonical production callback.
	for _, origin := range []string{"", "https://servify.app", "servify://login", "https://preview.servify.app"} {
		got, err := env.service.ProxyRedirect(origin, ProviderDiscord)
		require.NoError(t, err, "origin %q", origin)
		assert.Equal(t, "https://servify.app/api/auth/callback/discord", got)
	}

	_, err := env.service.ProxyRedirect("https://evil.example", ProviderDiscord)
	assert.ErrorIs(t, err, ErrUntrustedOrigin)
}

func TestSignInURLRejectsDisabledProvider(t *testing.T) {
	env := newTestEnv(t)

	// Google is wired with credentials but disabled.
	_, err := env.service.SignInURL(ProviderGoogle, "", "state-1")
	assert.ErrorIs(t, err, ErrProviderDisabled)

	url, err := env.service.SignInURL(ProviderDiscord, "", "state-1")
	require.NoError(t, err)
	assert.Contains(t, url, "https://discord.com/oauth2/authorize")
	assert.Contains(t, url, "state=state-1")
	assert.Contains(t, url, "callback%2Fdiscord")
}

func callbackEnv(t *testing.T, identity *Identity) *testEnv {
	env := newTestEnv(t)
	env.service.exchanger = &stubExchanger{token: &oauth2.Token{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		Expiry:       time.Now().Add(time.Hour),
	}}
	env.service.identity = &stubIdentity{identity: identity}
	return env
}

func TestHandleCallbackCreatesUserAndLinksAccount(t *testing.T) {
	env := callbackEnv(t, &Identity{
		ProviderAccountID: "discord-123",
		Email:             "new@servify.app",
		Name:              "newuser",
		EmailVerified:     true,
	})

	session, err := env.service.HandleCallback(context.Background(), CallbackRequest{
		Provider: ProviderDiscord,
		Code:     "code-1",
	})
	require.NoError(t, err)
	require.NotNil(t, session)

	user, err := env.users.GetByEmail(context.Background(), "new@servify.app")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, user.ID, session.UserID)

	// The new user gets the default role set.
	meta, err := env.metadata.GetByUserID(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, []string{domain.RoleUser}, meta.Roles)
	assert.Equal(t, []string{domain.RoleUser}, session.Roles)

	require.Len(t, env.accounts.rows, 1)
	assert.Equal(t, "discord-123", env.accounts.rows[0].AccountID)
	assert.Equal(t, "discord", env.accounts.rows[0].ProviderID)
}

func TestHandleCallbackRemovesUserWhenMetadataInsertFails(t *testing.T) {
	env := callbackEnv(t, &Identity{
		ProviderAccountID: "discord-123",
		Email:             "new@servify.app",
		Name:              "newuser",
	})
	env.metadata.createErr = errors.New("insert failed")

	_, err := env.service.HandleCallback(context.Background(), CallbackRequest{
		Provider: ProviderDiscord,
		Code:     "code-1",
	})
	require.Error(t, err)

	// No half-created user survives the failed callback.
	user, err := env.users.GetByEmail(context.Background(), "new@servify.app")
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.Empty(t, env.accounts.rows)
}

func TestHandleCallbackReusesExistingAccount(t *testing.T) {
	env := callbackEnv(t, &Identity{ProviderAccountID: "discord-123", Email: "known@servify.app", Name: "known"})

	first, err := env.service.HandleCallback(context.Background(), CallbackRequest{Provider: ProviderDiscord, Code: "c1"})
	require.NoError(t, err)

	second, err := env.service.HandleCallback(context.Background(), CallbackRequest{Provider: ProviderDiscord, Code: "c2"})
	require.NoError(t, err)

	assert.Equal(t, first.UserID, second.UserID)
	assert.Len(t, env.accounts.rows, 1, "no duplicate account rows")
	assert.Len(t, env.users.rows, 1)
}

func TestHandleCallbackLinksToCurrentSessionDespiteDifferentEmail(t *testing.T) {
	env := callbackEnv(t, &Identity{
		ProviderAccountID: "discord-999",
		Email:             "other-email@elsewhere.example",
		Name:              "elsewhere",
	})

	// Existing signed-in user with a different email.
	require.NoError(t, env.users.Create(context.Background(), &domain.UserRow{
		ID: "user-1", Name: "existing", Email: "existing@servify.app",
	}))
	current := &Session{UserID: "user-1"}

	session, err := env.service.HandleCallback(context.Background(), CallbackRequest{
		Provider: ProviderDiscord,
		Code:     "c1",
		Current:  current,
	})
	require.NoError(t, err)

	// Linked to the signed-in user even though the emails differ.
	assert.Equal(t, "user-1", session.UserID)
	require.Len(t, env.accounts.rows, 1)
	assert.Equal(t, "user-1", env.accounts.rows[0].UserID)
	assert.Len(t, env.users.rows, 1, "no second user created")
}

func TestHandleCallbackRejectsDisabledProvider(t *testing.T) {
	env := callbackEnv(t, &Identity{ProviderAccountID: "g-1", Email: "g@servify.app"})

	_, err := env.service.HandleCallback(context.Background(), CallbackRequest{Provider: ProviderGoogle, Code: "c1"})
	assert.ErrorIs(t, err, ErrProviderDisabled)
}
