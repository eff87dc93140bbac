package v1

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"github.com/servify/backend/internal/auth"
	"github.com/servify/backend/internal/core/domain"
	"github.com/servify/backend/middleware"
)

// AccountService implements account and profile business rules. It
// depends on repository interfaces and the identity service (injected via
// constructor) and MUST NOT access the database or SQL directly.
type AccountService struct {
	users     domain.UserRepository
	accounts  domain.AccountRepository
	metadata  domain.UserMetadataRepository
	providers domain.ProviderProfileRepository
	locations domain.LocationRepository
	addresses domain.AddressRepository
	identity  *auth.Service
}

// NewAccountService creates a new AccountService with the given
// dependencies.
func NewAccountService(
	users domain.UserRepository,
	accounts domain.AccountRepository,
	metadata domain.UserMetadataRepository,
	providers domain.ProviderProfileRepository,
	locations domain.LocationRepository,
	addresses domain.AddressRepository,
	identity *auth.Service,
) *AccountService {
	return &AccountService{
		users:     users,
		accounts:  accounts,
		metadata:  metadata,
		providers: providers,
		locations: locations,
		addresses: addresses,
		identity:  identity,
	}
}

// RegisterRequest carries a password sign-up.
type RegisterRequest struct {
	Name      string
	Email     string
	Password  string
	IPAddress *string
	UserAgent *string
}

// LoginRequest carries a password sign-in.
type LoginRequest struct {
	Email     string
	Password  string
	IPAddress *string
	UserAgent *string
}

// Register handles password sign-up: creates the user, its metadata row,
// a credential account holding the bcrypt hash, and an initial session.
func (s *AccountService) Register(ctx context.Context, req RegisterRequest) (*auth.Session, error) {
	ctx, span := middleware.StartSpan(ctx, "account.register", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	existing, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if existing != nil {
		span.SetAttributes(attribute.Bool("registration.success", false))
		return nil, fmt.Errorf("register %q: %w", req.Email, ErrUserExists)
	}

	user := &domain.UserRow{
		ID:    uuid.NewString(),
		Name:  req.Name,
		Email: req.Email,
	}
	if err := s.users.Create(ctx, user); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("insert user: %w", err)
	}
	if _, err := s.metadata.Create(ctx, user.ID, []string{domain.RoleUser}); err != nil {
		span.RecordError(err)
		// The user row has no dependents yet; remove it so the email is
		// not burned by a half-created registration.
		if delErr := s.users.Delete(ctx, user.ID); delErr != nil {
			span.RecordError(delErr)
		}
		return nil, fmt.Errorf("insert user metadata: %w", err)
	}

	hash := string(passwordHash)
	account := &domain.AccountRow{
		ID:         uuid.NewString(),
		AccountID:  user.ID,
		ProviderID: domain.CredentialProviderID,
		UserID:     user.ID,
		Password:   &hash,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("insert credential account: %w", err)
	}

	session, err := s.identity.IssueSession(ctx, user.ID, req.IPAddress, req.UserAgent)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("user.id", user.ID),
		attribute.Bool("registration.success", true),
	)
	span.AddEvent("user.registered")

	return session, nil
}

// Login handles password sign-in.
func (s *AccountService) Login(ctx context.Context, req LoginRequest) (*auth.Session, error) {
	ctx, span := middleware.StartSpan(ctx, "account.login", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query user: %w", err)
	}
	if user == nil {
		span.AddEvent("authentication.failed")
		return nil, fmt.Errorf("authenticate %q: %w", req.Email, ErrUserNotFound)
	}

	account, err := s.accounts.GetByUserAndProvider(ctx, user.ID, domain.CredentialProviderID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query credential account: %w", err)
	}
	if account == nil || account.Password == nil {
		span.AddEvent("authentication.failed")
		return nil, fmt.Errorf("authenticate %q: %w", req.Email, ErrNoCredentialAccount)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*account.Password), []byte(req.Password)); err != nil {
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		return nil, fmt.Errorf("authenticate %q: %w", req.Email, ErrInvalidCredentials)
	}

	session, err := s.identity.IssueSession(ctx, user.ID, req.IPAddress, req.UserAgent)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("user.id", user.ID),
		attribute.Bool("auth.success", true),
	)
	span.AddEvent("user.authenticated")

	return session, nil
}

// LinkedAccount is one identity-provider link of a user, stripped of
// token material.
type LinkedAccount struct {
	Provider  string
	AccountID string
}

// ListLinkedAccounts returns the user's linked accounts. Tokens and
// password hashes never leave this layer.
func (s *AccountService) ListLinkedAccounts(ctx context.Context, userID string) ([]LinkedAccount, error) {
	rows, err := s.accounts.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	linked := make([]LinkedAccount, 0, len(rows))
	for _, row := range rows {
		linked = append(linked, LinkedAccount{Provider: row.ProviderID, AccountID: row.AccountID})
	}
	return linked, nil
}

// ProviderProfileInput carries the fields of a new provider profile.
type ProviderProfileInput struct {
	PhoneNumber *string
	FirstName   *string
	LastName    *string
	Bio         *string
}

// BecomeProvider creates the user's provider profile and grants the
// provider role. At most one profile exists per user; two racing calls
// are decided by the storage engine's uniqueness constraint and the
// loser's violation propagates unmodified.
func (s *AccountService) BecomeProvider(ctx context.Context, userID string, input ProviderProfileInput) (uuid.UUID, error) {
	ctx, span := middleware.StartSpan(ctx, "account.become_provider", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("user.id", userID),
	))
	defer span.End()

	id, err := s.providers.Create(ctx, &domain.ProviderProfileRow{
		UserID:      userID,
		PhoneNumber: input.PhoneNumber,
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Bio:         input.Bio,
	})
	if err != nil {
		span.RecordError(err)
		return uuid.Nil, fmt.Errorf("create provider profile: %w", err)
	}

	if err := s.metadata.AddRole(ctx, userID, domain.RoleProvider); err != nil {
		span.RecordError(err)
		return uuid.Nil, fmt.Errorf("grant provider role: %w", err)
	}

	span.AddEvent("provider.created")
	return id, nil
}

// AddressInput carries a new address with its location.
type AddressInput struct {
	Title    *string
	Location domain.LocationRow
}

// AddAddress creates the location and the address pointing at it. A
// location whose declared type does not match its geometry class is
// rejected by the storage engine's check constraint; the violation
// propagates unmodified.
func (s *AccountService) AddAddress(ctx context.Context, userID string, input AddressInput) (uuid.UUID, error) {
	ctx, span := middleware.StartSpan(ctx, "account.add_address", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("user.id", userID),
	))
	defer span.End()

	locationID, err := s.locations.Create(ctx, &input.Location)
	if err != nil {
		span.RecordError(err)
		return uuid.Nil, fmt.Errorf("create location: %w", err)
	}

	addressID, err := s.addresses.Create(ctx, &domain.AddressRow{
		Title:      input.Title,
		UserID:     userID,
		LocationID: locationID,
	})
	if err != nil {
		span.RecordError(err)
		return uuid.Nil, fmt.Errorf("create address: %w", err)
	}

	span.AddEvent("address.created")
	return addressID, nil
}

// AddressDetail is an address joined with its location.
type AddressDetail struct {
	Address  domain.AddressRow
	Location *domain.LocationRow
}

// ListAddresses returns the user's addresses, each with its location.
func (s *AccountService) ListAddresses(ctx context.Context, userID string) ([]AddressDetail, error) {
	rows, err := s.addresses.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}

	details := make([]AddressDetail, 0, len(rows))
	for _, row := range rows {
		location, err := s.locations.GetByID(ctx, row.LocationID)
		if err != nil {
			return nil, fmt.Errorf("load location %s: %w", row.LocationID, err)
		}
		details = append(details, AddressDetail{Address: row, Location: location})
	}
	return details, nil
}
