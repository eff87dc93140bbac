package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/servify/backend/internal/core/domain"
)

// Config is the validated configuration of the identity adapter. It is
// built once at startup from the environment; New rejects incomplete
// values before constructing anything.
type Config struct {
	AppName       string
	BaseURL       string
	ProductionURL string
	Secret        string
	Providers     Providers
}

// Repositories groups the persistence dependencies of the adapter.
type Repositories struct {
	Users    domain.UserRepository
	Sessions domain.SessionRepository
	Accounts domain.AccountRepository
	Metadata domain.UserMetadataRepository
}

// Service is the identity/session service. Constructed once at process
// start and read-only afterwards; per-request state lives in the request
// context, never here.
type Service struct {
	cfg   Config
	repos Repositories

	exchanger TokenExchanger
	identity  IdentityFetcher
}

// New constructs the identity service. The secret and every wired
// provider's credentials are validated up front: configuration errors are
// startup failures, and no session or provider object exists until they
// pass.
func New(cfg Config, repos Repositories) (*Service, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}
	if cfg.BaseURL == "" || cfg.ProductionURL == "" {
		return nil, fmt.Errorf("auth config: base and production URLs are required")
	}
	if err := cfg.Providers.Validate(); err != nil {
		return nil, fmt.Errorf("auth config: %w", err)
	}
	if cfg.AppName == "" {
		cfg.AppName = "Servify"
	}

	return &Service{
		cfg:       cfg,
		repos:     repos,
		exchanger: oauth2Exchanger{},
		identity:  httpIdentityFetcher{},
	}, nil
}

// Providers exposes the provider map for feature-flag checks.
func (s *Service) Providers() Providers {
	return s.cfg.Providers
}

// SignInURL returns the provider's authorization URL for a login attempt
// arriving from the given origin. Disabled providers are wired but reject
// logins; the redirect URI is always the canonical production callback.
func (s *Service) SignInURL(provider ProviderName, origin, state string) (string, error) {
	if !s.cfg.Providers.Enabled(provider) {
		return "", fmt.Errorf("sign-in via %s: %w", provider, ErrProviderDisabled)
	}

	redirect, err := s.ProxyRedirect(origin, provider)
	if err != nil {
		return "", fmt.Errorf("sign-in via %s: %w", provider, err)
	}

	oauthCfg, err := s.cfg.Providers.OAuth2Config(provider, redirect)
	if err != nil {
		return "", err
	}

	var opts []oauth2.AuthCodeOption
	if prompt := s.cfg.Providers[provider].Prompt; prompt != "" {
		opts = append(opts, oauth2.SetAuthURLParam("prompt", prompt))
	}
	return oauthCfg.AuthCodeURL(state, opts...), nil
}

// CallbackRequest carries the request-scoped inputs of an OAuth callback.
type CallbackRequest struct {
	Provider ProviderName
	Code     string
	Origin   string

	// Current is the already-resolved session when the login happens
	// while signed in; the new account links to that user.
	Current *Session

	IPAddress *string
	UserAgent *string
}

// HandleCallback completes a provider login: code exchange, identity
// fetch, account upsert/linking and session issuance. Account linking is
// enabled and deliberately permits linking accounts whose emails differ.
func (s *Service) HandleCallback(ctx context.Context, req CallbackRequest) (*Session, error) {
	if !s.cfg.Providers.Enabled(req.Provider) {
		return nil, fmt.Errorf("callback via %s: %w", req.Provider, ErrProviderDisabled)
	}

	redirect, err := s.ProxyRedirect(req.Origin, req.Provider)
	if err != nil {
		return nil, fmt.Errorf("callback via %s: %w", req.Provider, err)
	}
	oauthCfg, err := s.cfg.Providers.OAuth2Config(req.Provider, redirect)
	if err != nil {
		return nil, err
	}

	token, err := s.exchanger.Exchange(ctx, oauthCfg, req.Code)
	if err != nil {
		return nil, fmt.Errorf("exchange code with %s: %w", req.Provider, err)
	}

	identity, err := s.identity.Fetch(ctx, req.Provider, oauthCfg, token)
	if err != nil {
		return nil, err
	}

	userID, err := s.upsertAccount(ctx, req.Provider, identity, token, req.Current)
	if err != nil {
		return nil, err
	}

	return s.IssueSession(ctx, userID, req.IPAddress, req.UserAgent)
}

// upsertAccount resolves the internal user behind a provider identity,
// creating user, metadata and account rows as needed.
func (s *Service) upsertAccount(ctx context.Context, provider ProviderName, identity *Identity, token *oauth2.Token, current *Session) (string, error) {
	existing, err := s.repos.Accounts.GetByProviderAccount(ctx, string(provider), identity.ProviderAccountID)
	if err != nil {
		return "", fmt.Errorf("look up account: %w", err)
	}
	if existing != nil {
		if err := s.repos.Accounts.UpdateTokens(ctx, existing.ID, optString(token.AccessToken), optString(token.RefreshToken), optTime(token.Expiry)); err != nil {
			log.Warn().Err(err).Str("provider", string(provider)).Msg("Failed to refresh stored tokens")
		}
		return existing.UserID, nil
	}

	var userID string
	switch {
	case current != nil:
		// Signed-in user linking another provider. AllowDifferentEmails:
		// the provider account's email need not match the user's.
		userID = current.UserID
	default:
		user, err := s.findOrCreateUser(ctx, identity)
		if err != nil {
			return "", err
		}
		userID = user
	}

	account := &domain.AccountRow{
		ID:                   uuid.NewString(),
		AccountID:            identity.ProviderAccountID,
		ProviderID:           string(provider),
		UserID:               userID,
		AccessToken:          optString(token.AccessToken),
		RefreshToken:         optString(token.RefreshToken),
		AccessTokenExpiresAt: optTime(token.Expiry),
	}
	if idToken, ok := token.Extra("id_token").(string); ok && idToken != "" {
		account.IDToken = &idToken
	}
	if err := s.repos.Accounts.Create(ctx, account); err != nil {
		return "", fmt.Errorf("link %s account: %w", provider, err)
	}

	log.Info().Str("provider", string(provider)).Str("user_id", userID).Msg("Account linked")
	return userID, nil
}

func (s *Service) findOrCreateUser(ctx context.Context, identity *Identity) (string, error) {
	if identity.Email != "" {
		user, err := s.repos.Users.GetByEmail(ctx, identity.Email)
		if err != nil {
			return "", fmt.Errorf("look up user by email: %w", err)
		}
		if user != nil {
			return user.ID, nil
		}
	}

	row := &domain.UserRow{
		ID:            uuid.NewString(),
		Name:          identity.Name,
		Email:         identity.Email,
		EmailVerified: identity.EmailVerified,
		Image:         identity.Image,
	}
	if err := s.repos.Users.Create(ctx, row); err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}
	if _, err := s.repos.Metadata.Create(ctx, row.ID, []string{domain.RoleUser}); err != nil {
		// The user row has no dependents yet; remove it rather than
		// leaving a half-created user behind.
		if delErr := s.repos.Users.Delete(ctx, row.ID); delErr != nil {
			log.Warn().Err(delErr).Str("user_id", row.ID).Msg("Failed to remove half-created user")
		}
		return "", fmt.Errorf("create user metadata: %w", err)
	}

	log.Info().Str("user_id", row.ID).Msg("User created")
	return row.ID, nil
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
