package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

// Identity is the provider-side view of a logged-in user, normalized
// across providers.
type Identity struct {
	ProviderAccountID string
	Email             string
	Name              string
	EmailVerified     bool
	Image             *string
}

// IdentityFetcher resolves the provider-side identity behind an exchanged
// OAuth token. Implemented over each provider's userinfo surface; swapped
// for a stub in tests.
type IdentityFetcher interface {
	Fetch(ctx context.Context, provider ProviderName, cfg *oauth2.Config, token *oauth2.Token) (*Identity, error)
}

// TokenExchanger performs the authorization-code exchange. The default
// delegates to x/oauth2; tests substitute a stub.
type TokenExchanger interface {
	Exchange(ctx context.Context, cfg *oauth2.Config, code string) (*oauth2.Token, error)
}

type oauth2Exchanger struct{}

func (oauth2Exchanger) Exchange(ctx context.Context, cfg *oauth2.Config, code string) (*oauth2.Token, error) {
	return cfg.Exchange(ctx, code)
}

const (
	discordUserURL = "https://discord.com/api/users/@me"
	googleUserURL  = "https://openidconnect.googleapis.com/v1/userinfo"
)

type httpIdentityFetcher struct{}

func (httpIdentityFetcher) Fetch(ctx context.Context, provider ProviderName, cfg *oauth2.Config, token *oauth2.Token) (*Identity, error) {
	switch provider {
	case ProviderDiscord:
		return fetchDiscordIdentity(ctx, cfg, token)
	case ProviderGoogle:
		return fetchGoogleIdentity(ctx, cfg, token)
	case ProviderApple:
		return appleIdentityFromIDToken(token)
	default:
		return nil, fmt.Errorf("no identity source for provider %q", provider)
	}
}

func fetchJSON(ctx context.Context, cfg *oauth2.Config, token *oauth2.Token, url string, out any) error {
	client := cfg.Client(ctx, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("userinfo request to %s: status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func fetchDiscordIdentity(ctx context.Context, cfg *oauth2.Config, token *oauth2.Token) (*Identity, error) {
	var body struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Verified bool   `json:"verified"`
		Avatar   string `json:"avatar"`
	}
	if err := fetchJSON(ctx, cfg, token, discordUserURL, &body); err != nil {
		return nil, fmt.Errorf("fetch discord identity: %w", err)
	}

	identity := &Identity{
		ProviderAccountID: body.ID,
		Email:             body.Email,
		Name:              body.Username,
		EmailVerified:     body.Verified,
	}
	if body.Avatar != "" {
		url := fmt.Sprintf("https://cdn.discordapp.com/avatars/%s/%s.png", body.ID, body.Avatar)
		identity.Image = &url
	}
	return identity, nil
}

func fetchGoogleIdentity(ctx context.Context, cfg *oauth2.Config, token *oauth2.Token) (*Identity, error) {
	var body struct {
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := fetchJSON(ctx, cfg, token, googleUserURL, &body); err != nil {
		return nil, fmt.Errorf("fetch google identity: %w", err)
	}

	identity := &Identity{
		ProviderAccountID: body.Sub,
		Email:             body.Email,
		Name:              body.Name,
		EmailVerified:     body.EmailVerified,
	}
	if body.Picture != "" {
		picture := body.Picture
		identity.Image = &picture
	}
	return identity, nil
}

// appleIdentityFromIDToken reads the id_token claims Apple returns from
// its token endpoint. The token arrives over TLS directly from Apple in
// the code exchange, so the claims are read without a local signature
// check.
func appleIdentityFromIDToken(token *oauth2.Token) (*Identity, error) {
	raw, _ := token.Extra("id_token").(string)
	if raw == "" {
		return nil, fmt.Errorf("apple token response has no id_token")
	}

	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("malformed apple id_token")
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("decode apple id_token payload: %w", err)
	}

	var claims struct {
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified any    `json:"email_verified"` // Apple sends bool or "true"
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("parse apple id_token claims: %w", err)
	}
	if claims.Sub == "" {
		return nil, fmt.Errorf("apple id_token has no subject")
	}

	verified := false
	switch v := claims.EmailVerified.(type) {
	case bool:
		verified = v
	case string:
		verified = v == "true"
	}

	return &Identity{
		ProviderAccountID: claims.Sub,
		Email:             claims.Email,
		Name:              claims.Email,
		EmailVerified:     verified,
	}, nil
}
