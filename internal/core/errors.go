package core

import (
	"errors"
	"fmt"
)

// Sentinel errors the API layer maps to HTTP status codes.
var (
	// ErrUnauthenticated means no user identity accompanied the request.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrInvalidCredentials is returned by login for a bad email/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailTaken is returned by signup when the email is already registered.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidState covers every way a state token can fail redemption.
	// The variants below wrap it; callers match on ErrInvalidState and
	// present one uniform failure, logs keep the specific cause.
	ErrInvalidState = errors.New("invalid state token")

	ErrStateNotFound = fmt.Errorf("%w: not found", ErrInvalidState)
	ErrStateUsed     = fmt.Errorf("%w: already used", ErrInvalidState)
	ErrStateExpired  = fmt.Errorf("%w: expired", ErrInvalidState)

	// ErrExchangeFailed means the provider rejected or failed the code exchange.
	ErrExchangeFailed = errors.New("code exchange failed")

	// ErrRefreshFailed means the provider rejected or failed a token refresh.
	ErrRefreshFailed = errors.New("token refresh failed")

	// ErrNoToken means the user has no stored HubSpot connection.
	ErrNoToken = errors.New("no hubspot token")

	// ErrNoRefreshToken means the stored access token is stale and there is
	// no refresh token to renew it with.
	ErrNoRefreshToken = errors.New("no refresh token")
)

// MissingParameterError names a required request parameter that was absent.
type MissingParameterError struct {
	Name string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing parameter: %s", e.Name)
}
