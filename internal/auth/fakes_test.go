package auth

import (
	"context"
	"time"

	"golang.org/x/oauth2"

	"github.com/servify/backend/internal/core/domain"
)

// In-memory repository fakes shared by the auth tests.

type fakeUsers struct {
	rows map[string]*domain.UserRow
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{rows: map[string]*domain.UserRow{}}
}

func (f *fakeUsers) Create(_ context.Context, row *domain.UserRow) error {
	cp := *row
	f.rows[row.ID] = &cp
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*domain.UserRow, error) {
	if row, ok := f.rows[id]; ok {
		cp := *row
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*domain.UserRow, error) {
	for _, row := range f.rows {
		if row.Email == email {
			cp := *row
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) Delete(_ context.Context, id string) error {
	delete(f.rows, id)
	return nil
}

type fakeSessions struct {
	users   *fakeUsers
	rows    map[string]*domain.SessionRow // by token
	lookups int
}

func newFakeSessions(users *fakeUsers) *fakeSessions {
	return &fakeSessions{users: users, rows: map[string]*domain.SessionRow{}}
}

func (f *fakeSessions) Create(_ context.Context, row *domain.SessionRow) error {
	cp := *row
	f.rows[row.Token] = &cp
	return nil
}

func (f *fakeSessions) GetWithUser(_ context.Context, token string) (*domain.SessionUser, error) {
	f.lookups++
	row, ok := f.rows[token]
	if !ok {
		return nil, nil
	}
	user, ok := f.users.rows[row.UserID]
	if !ok {
		return nil, nil
	}
	return &domain.SessionUser{Session: *row, User: *user}, nil
}

func (f *fakeSessions) DeleteByToken(_ context.Context, token string) error {
	delete(f.rows, token)
	return nil
}

func (f *fakeSessions) DeleteExpired(_ context.Context) (int64, error) {
	var n int64
	for token, row := range f.rows {
		if time.Now().After(row.ExpiresAt) {
			delete(f.rows, token)
			n++
		}
	}
	return n, nil
}

type fakeAccounts struct {
	rows []domain.AccountRow
}

func (f *fakeAccounts) Create(_ context.Context, row *domain.AccountRow) error {
	f.rows = append(f.rows, *row)
	return nil
}

func (f *fakeAccounts) GetByProviderAccount(_ context.Context, providerID, accountID string) (*domain.AccountRow, error) {
	for i := range f.rows {
		if f.rows[i].ProviderID == providerID && f.rows[i].AccountID == accountID {
			cp := f.rows[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeAccounts) GetByUserAndProvider(_ context.Context, userID, providerID string) (*domain.AccountRow, error) {
	for i := range f.rows {
		if f.rows[i].UserID == userID && f.rows[i].ProviderID == providerID {
			cp := f.rows[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeAccounts) ListByUser(_ context.Context, userID string) ([]domain.AccountRow, error) {
	var out []domain.AccountRow
	for _, row := range f.rows {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeAccounts) UpdateTokens(_ context.Context, id string, accessToken, refreshToken *string, accessTokenExpiresAt *time.Time) error {
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows[i].AccessToken = accessToken
			if refreshToken != nil {
				f.rows[i].RefreshToken = refreshToken
			}
			f.rows[i].AccessTokenExpiresAt = accessTokenExpiresAt
		}
	}
	return nil
}

type fakeMetadata struct {
	rows      map[string]*domain.UserMetadataRow // by user id
	createErr error
}

func newFakeMetadata() *fakeMetadata {
	return &fakeMetadata{rows: map[string]*domain.UserMetadataRow{}}
}

func (f *fakeMetadata) Create(_ context.Context, userID string, roles []string) (*domain.UserMetadataRow, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if len(roles) == 0 {
		roles = []string{domain.RoleUser}
	}
	row := &domain.UserMetadataRow{UserID: userID, Roles: roles}
	f.rows[userID] = row
	return row, nil
}

func (f *fakeMetadata) GetByUserID(_ context.Context, userID string) (*domain.UserMetadataRow, error) {
	if row, ok := f.rows[userID]; ok {
		cp := *row
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeMetadata) AddRole(_ context.Context, userID, role string) error {
	row, ok := f.rows[userID]
	if !ok {
		return nil
	}
	for _, r := range row.Roles {
		if r == role {
			return nil
		}
	}
	row.Roles = append(row.Roles, role)
	return nil
}

// Stubbed OAuth collaborators.

type stubExchanger struct {
	token *oauth2.Token
	err   error
	calls int
}

func (s *stubExchanger) Exchange(context.Context, *oauth2.Config, string) (*oauth2.Token, error) {
	s.calls++
	return s.token, s.err
}

type stubIdentity struct {
	identity *Identity
	err      error
}

func (s *stubIdentity) Fetch(context.Context, ProviderName, *oauth2.Config, *oauth2.Token) (*Identity, error) {
	return s.identity, s.err
}
