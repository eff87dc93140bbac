package auth

import "errors"

// Sentinel errors for the identity adapter. Wrapped with
// fmt.Errorf("%w") where context helps.
var (
	// ErrMissingSecret indicates the shared session secret is absent.
	// Construction fails before any provider or session object exists.
	ErrMissingSecret = errors.New("missing auth secret")

	// ErrProviderDisabled indicates a login attempt against a wired but
	// disabled provider.
	ErrProviderDisabled = errors.New("provider disabled")

	// ErrUntrustedOrigin indicates a redirect request from an origin
	// outside the allow-list.
	ErrUntrustedOrigin = errors.New("untrusted origin")

	// ErrSessionNotFound indicates the presented token matches no session.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired indicates the session's expiry has passed.
	ErrSessionExpired = errors.New("session expired")
)
