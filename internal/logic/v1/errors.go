// Package v1 provides account and profile business logic for API
// version 1.
//
// Error handling: sentinel errors represent common failures and are
// wrapped with context using fmt.Errorf("%w") when returned from
// business logic methods. Handlers check them with errors.Is and map
// them to HTTP statuses. Storage-engine constraint violations
// (uniqueness, foreign key, geometry check) are NOT translated here —
// they propagate unmodified to the caller.
package v1

import "errors"

// Sentinel errors for account operations.
var (
	// ErrInvalidCredentials indicates the provided credentials are incorrect.
	// HTTP Status: 401 Unauthorized
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound indicates the user does not exist in the system.
	// HTTP Status: 401 Unauthorized (don't reveal user existence)
	ErrUserNotFound = errors.New("user not found")

	// ErrUserExists indicates the email is already registered.
	// HTTP Status: 409 Conflict
	ErrUserExists = errors.New("user already exists")

	// ErrNoCredentialAccount indicates the user signed up via a social
	// provider and has no password to check.
	// HTTP Status: 401 Unauthorized
	ErrNoCredentialAccount = errors.New("no credential account")
)
