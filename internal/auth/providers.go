// Package auth configures social-login providers and issues/resolves
// sessions. OAuth token exchange itself is delegated to golang.org/x/oauth2;
// this package only wires provider endpoints, credentials, redirect
// handling and the account-linking policy around it.
package auth

import (
	"fmt"
	"sort"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ProviderName identifies a social-login provider. The name is also the
// provider_id stored on account rows and the last path segment of the
// OAuth callback URL.
type ProviderName string

const (
	ProviderDiscord ProviderName = "discord"
	ProviderApple   ProviderName = "apple"
	ProviderGoogle  ProviderName = "google"
)

// ProviderConfig is one provider's tagged configuration record. A
// provider is wired regardless of Enabled; only enabled providers accept
// login attempts, but credentials must be present either way.
type ProviderConfig struct {
	Enabled      bool
	ClientID     string
	ClientSecret string

	// AppBundleIdentifier is required for Apple native-app flows and
	// meaningless for other providers.
	AppBundleIdentifier string

	Scopes []string

	// Prompt is passed through as the OAuth prompt parameter when set.
	Prompt string
}

// Providers maps provider names to their configuration records.
type Providers map[ProviderName]ProviderConfig

// Enabled reports whether the named provider accepts login attempts.
// Pure function over the map: unknown providers are simply disabled.
func (p Providers) Enabled(name ProviderName) bool {
	cfg, ok := p[name]
	return ok && cfg.Enabled
}

// EnabledProviders returns the enabled provider names in stable order.
func (p Providers) EnabledProviders() []ProviderName {
	var names []ProviderName
	for name, cfg := range p {
		if cfg.Enabled {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Validate checks that every wired provider carries full credentials,
// enabled or not. Disabled providers stay inert but misconfigured ones
// must fail startup.
func (p Providers) Validate() error {
	for name, cfg := range p {
		if cfg.ClientID == "" {
			return fmt.Errorf("provider %s: missing client id", name)
		}
		if cfg.ClientSecret == "" {
			return fmt.Errorf("provider %s: missing client secret", name)
		}
		if name == ProviderApple && cfg.AppBundleIdentifier == "" {
			return fmt.Errorf("provider %s: missing app bundle identifier", name)
		}
	}
	return nil
}

var (
	discordEndpoint = oauth2.Endpoint{
		AuthURL:  "https://discord.com/oauth2/authorize",
		TokenURL: "https://discord.com/api/oauth2/token",
	}
	appleEndpoint = oauth2.Endpoint{
		AuthURL:  "https://appleid.apple.com/auth/authorize",
		TokenURL: "https://appleid.apple.com/auth/token",
	}
)

func endpointFor(name ProviderName) (oauth2.Endpoint, error) {
	switch name {
	case ProviderDiscord:
		return discordEndpoint, nil
	case ProviderApple:
		return appleEndpoint, nil
	case ProviderGoogle:
		return google.Endpoint, nil
	default:
		return oauth2.Endpoint{}, fmt.Errorf("unknown provider %q", name)
	}
}

func defaultScopes(name ProviderName) []string {
	switch name {
	case ProviderDiscord:
		return []string{"identify", "email"}
	case ProviderApple:
		return []string{"email", "name"}
	case ProviderGoogle:
		return []string{"openid", "email", "profile"}
	default:
		return nil
	}
}

// OAuth2Config builds the x/oauth2 configuration for one provider with
// the given redirect URL.
func (p Providers) OAuth2Config(name ProviderName, redirectURL string) (*oauth2.Config, error) {
	cfg, ok := p[name]
	if !ok {
		return nil, fmt.Errorf("provider %q is not configured", name)
	}
	endpoint, err := endpointFor(name)
	if err != nil {
		return nil, err
	}
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = defaultScopes(name)
	}
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     endpoint,
		RedirectURL:  redirectURL,
		Scopes:       scopes,
	}, nil
}
