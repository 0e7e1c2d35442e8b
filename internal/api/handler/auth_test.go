package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/eline/driftline/internal/core"
)

const testSecret = "handler-test-secret-long-enough-for-hmac"
const testIssuer = "driftline-test"

func newAuthService(db *handlerMockDB) *core.AuthService {
	return core.NewAuthService(db, testSecret, testIssuer)
}

// ---------- Signup ----------

func TestAuthSignup_Success(t *testing.T) {
	db := &handlerMockDB{}
	h := NewAuth(newAuthService(db))

	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/auth/signup", map[string]any{
		"email":        "ada@example.com",
		"password":     "correct-horse",
		"display_name": "Ada",
	})

	h.Signup(rec, r)

	require.Equal(t, http.StatusCreated, rec.Code)
	var body struct {
		Token string         `json:"token"`
		User  map[string]any `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Token)
	assert.Equal(t, "ada@example.com", body.User["email"])
	assert.NotContains(t, rec.Body.String(), "password")
	db.AssertExpectations(t)
}

func TestAuthSignup_InvalidJSON(t *testing.T) {
	h := NewAuth(newAuthService(&handlerMockDB{}))
	rec := httptest.NewRecorder()
	r := newRequestRaw(http.MethodPost, "/auth/signup", "{bad json")

	h.Signup(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeErrorResponse(rec)
	assert.Contains(t, body["error"], "invalid JSON")
}

func TestAuthSignup_MissingFields(t *testing.T) {
	h := NewAuth(newAuthService(&handlerMockDB{}))
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/auth/signup", map[string]any{})

	h.Signup(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeErrorResponse(rec)
	assert.Contains(t, body["error"], "validation error")
}

func TestAuthSignup_ShortPassword(t *testing.T) {
	h := NewAuth(newAuthService(&handlerMockDB{}))
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/auth/signup", map[string]any{
		"email":        "ada@example.com",
		"password":     "short",
		"display_name": "Ada",
	})

	h.Signup(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthSignup_EmailTaken(t *testing.T) {
	db := &handlerMockDB{}
	h := NewAuth(newAuthService(db))

	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.CommandTag{}, &pgconn.PgError{Code: "23505"})

	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/auth/signup", map[string]any{
		"email":        "ada@example.com",
		"password":     "correct-horse",
		"display_name": "Ada",
	})

	h.Signup(rec, r)

	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decodeErrorResponse(rec)
	assert.Contains(t, body["error"], "already registered")
}

// ---------- Login ----------

func TestAuthLogin_Success(t *testing.T) {
	db := &handlerMockDB{}
	svc := newAuthService(db)
	h := NewAuth(svc)

	// Register through the handler to obtain a real stored hash.
	var hash string
	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Run(func(args mock.Arguments) {
			hash = args.Get(2).([]any)[2].(string)
		}).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	rec := httptest.NewRecorder()
	h.Signup(rec, newRequest(http.MethodPost, "/auth/signup", map[string]any{
		"email":        "ada@example.com",
		"password":     "correct-horse",
		"display_name": "Ada",
	}))
	require.Equal(t, http.StatusCreated, rec.Code)

	now := time.Now()
	row := &handlerMockRow{scanFunc: func(dest ...any) error {
		*(dest[0].(*string)) = "user-1"
		*(dest[1].(*string)) = "ada@example.com"
		*(dest[2].(*string)) = hash
		*(dest[3].(*string)) = "Ada"
		*(dest[4].(**string)) = nil
		*(dest[5].(*time.Time)) = now
		*(dest[6].(*time.Time)) = now
		return nil
	}}
	db.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(row)

	rec = httptest.NewRecorder()
	h.Login(rec, newRequest(http.MethodPost, "/auth/login", map[string]any{
		"email":    "ada@example.com",
		"password": "correct-horse",
	}))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	claims, err := svc.ValidateToken(body.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Sub)
	assert.Equal(t, "ada@example.com", claims.Email)
}

func TestAuthLogin_WrongPassword(t *testing.T) {
	db := &handlerMockDB{}
	h := NewAuth(newAuthService(db))

	var hash string
	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Run(func(args mock.Arguments) {
			hash = args.Get(2).([]any)[2].(string)
		}).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	rec := httptest.NewRecorder()
	h.Signup(rec, newRequest(http.MethodPost, "/auth/signup", map[string]any{
		"email":        "ada@example.com",
		"password":     "correct-horse",
		"display_name": "Ada",
	}))
	require.Equal(t, http.StatusCreated, rec.Code)

	now := time.Now()
	row := &handlerMockRow{scanFunc: func(dest ...any) error {
		*(dest[0].(*string)) = "user-1"
		*(dest[1].(*string)) = "ada@example.com"
		*(dest[2].(*string)) = hash
		*(dest[3].(*string)) = "Ada"
		*(dest[4].(**string)) = nil
		*(dest[5].(*time.Time)) = now
		*(dest[6].(*time.Time)) = now
		return nil
	}}
	db.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(row)

	rec = httptest.NewRecorder()
	h.Login(rec, newRequest(http.MethodPost, "/auth/login", map[string]any{
		"email":    "ada@example.com",
		"password": "wrong",
	}))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeErrorResponse(rec)
	assert.Contains(t, body["error"], "invalid credentials")
}

func TestAuthLogin_UnknownEmail(t *testing.T) {
	db := &handlerMockDB{}
	h := NewAuth(newAuthService(db))

	row := &handlerMockRow{scanFunc: func(dest ...any) error {
		return pgx.ErrNoRows
	}}
	db.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(row)

	rec := httptest.NewRecorder()
	h.Login(rec, newRequest(http.MethodPost, "/auth/login", map[string]any{
		"email":    "nobody@example.com",
		"password": "whatever",
	}))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeErrorResponse(rec)
	assert.Contains(t, body["error"], "invalid credentials")
}

func TestAuthLogin_InvalidJSON(t *testing.T) {
	h := NewAuth(newAuthService(&handlerMockDB{}))
	rec := httptest.NewRecorder()
	r := newRequestRaw(http.MethodPost, "/auth/login", "{bad")

	h.Login(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
