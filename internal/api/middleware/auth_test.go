package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eline/driftline/internal/core"
	"github.com/eline/driftline/internal/model"
)

// stubDB satisfies core.DB for constructing services whose DB methods
// are never reached in these tests.
type stubDB struct{}

func (stubDB) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (stubDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}
func (stubDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

const testSecret = "test-secret-that-is-long-enough-for-hmac"

func newAuthService() *core.AuthService {
	return core.NewAuthService(stubDB{}, testSecret, "site-api")
}

func TestAuth_MissingHeader(t *testing.T) {
	handler := Auth(newAuthService())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing authorization header")
}

func TestAuth_InvalidFormat(t *testing.T) {
	handler := Auth(newAuthService())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid authorization format")
}

func TestAuth_InvalidToken(t *testing.T) {
	handler := Auth(newAuthService())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	r.Header.Set("Authorization", "Bearer not-a-valid-jwt")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_ValidToken(t *testing.T) {
	svc := newAuthService()
	token, err := svc.IssueToken(&model.User{ID: "test-user-1", Email: "jane@example.com"})
	require.NoError(t, err)

	var got *model.JWTClaims
	handler := Auth(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetClaims(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "test-user-1", got.Sub)
	assert.Equal(t, "jane@example.com", got.Email)
}

func TestGetClaims_Absent(t *testing.T) {
	assert.Nil(t, GetClaims(context.Background()))
}
