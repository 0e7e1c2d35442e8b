package core

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"

	"github.com/eline/driftline/internal/hubspot"
)

// ---------- Mock DB ----------

// mockDB implements the DB interface for testing.
type mockDB struct {
	mock.Mock
}

func (m *mockDB) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgconn.CommandTag), args.Error(1)
}

func (m *mockDB) Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error) {
	args := m.Called(ctx, sql, arguments)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Rows), args.Error(1)
}

func (m *mockDB) QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgx.Row)
}

// ---------- Mock Row ----------

// mockRow implements pgx.Row for testing.
type mockRow struct {
	scanFunc func(dest ...any) error
}

func (m *mockRow) Scan(dest ...any) error {
	return m.scanFunc(dest...)
}

// ---------- Mock Provider ----------

// mockProvider implements the ProviderClient interface for testing.
type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) ExchangeCode(ctx context.Context, code string) (*hubspot.TokenResponse, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*hubspot.TokenResponse), args.Error(1)
}

func (m *mockProvider) Refresh(ctx context.Context, refreshToken string) (*hubspot.TokenResponse, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*hubspot.TokenResponse), args.Error(1)
}

func (m *mockProvider) AccountInfo(ctx context.Context, accessToken string) (*hubspot.AccountInfo, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*hubspot.AccountInfo), args.Error(1)
}

func (m *mockProvider) CreateContact(ctx context.Context, accessToken string, props hubspot.ContactProperties) (*hubspot.Contact, error) {
	args := m.Called(ctx, accessToken, props)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*hubspot.Contact), args.Error(1)
}

func (m *mockProvider) AuthorizeURL(redirectURL string) string {
	args := m.Called(redirectURL)
	return args.String(0)
}
