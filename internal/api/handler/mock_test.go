package handler

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"

	"github.com/eline/driftline/internal/hubspot"
)

// handlerMockDB implements core.DB for handler tests.
type handlerMockDB struct {
	mock.Mock
}

func (m *handlerMockDB) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgconn.CommandTag), args.Error(1)
}

func (m *handlerMockDB) Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error) {
	args := m.Called(ctx, sql, arguments)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Rows), args.Error(1)
}

func (m *handlerMockDB) QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgx.Row)
}

// handlerMockRow implements pgx.Row for handler tests.
type handlerMockRow struct {
	scanFunc func(dest ...any) error
}

func (m *handlerMockRow) Scan(dest ...any) error {
	return m.scanFunc(dest...)
}

// mockProvider implements core.ProviderClient for handler tests.
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
