package auth

import "strings"

// AppScheme is the custom URI scheme used by the native mobile app. It is
// a trusted origin so app-initiated login redirects are accepted.
const AppScheme = "servify://"

// appleOrigin must be trusted for Apple's in-browser redirect flow, which
// posts back from appleid.apple.com.
const appleOrigin = "https://appleid.apple.com"

// TrustedOrigins returns the explicit allow-list: the production URL, the
// app scheme and Apple's origin.
func (s *Service) TrustedOrigins() []string {
	return []string{s.cfg.ProductionURL, AppScheme, appleOrigin}
}

// IsTrustedOrigin reports whether the given origin may participate in the
// login redirect flow. The base URL of the current deployment is always
// trusted so preview deployments can initiate logins.
func (s *Service) IsTrustedOrigin(origin string) bool {
	if origin == "" {
		return false
	}
	if origin == s.cfg.BaseURL {
		return true
	}
	for _, trusted := range s.TrustedOrigins() {
		if origin == trusted {
			return true
		}
		// A scheme entry like "servify://" trusts every URL under it.
		if strings.HasSuffix(trusted, "://") && strings.HasPrefix(origin, trusted) {
			return true
		}
	}
	return false
}

// CallbackURL returns the canonical callback for one provider. The shape
// <productionURL>/api/auth/callback/<provider> is fixed: provider apps are
// registered against the production URL only.
func (s *Service) CallbackURL(provider ProviderName) string {
	return strings.TrimSuffix(s.cfg.ProductionURL, "/") + "/api/auth/callback/" + string(provider)
}

// ProxyRedirect rewrites a login request arriving at any trusted origin
// to the canonical production callback. This keeps provider-registered
// redirect URIs stable across preview, staging and production deployments
// that each expose a different base URL.
func (s *Service) ProxyRedirect(origin string, provider ProviderName) (string, error) {
	if origin != "" && !s.IsTrustedOrigin(origin) {
		return "", ErrUntrustedOrigin
	}
	return s.CallbackURL(provider), nil
}
