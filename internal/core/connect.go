package core

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/eline/driftline/internal/hubspot"
)

// ProviderClient is the slice of the HubSpot client the services and
// the API handlers need.
type ProviderClient interface {
	ExchangeCode(ctx context.Context, code string) (*hubspot.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*hubspot.TokenResponse, error)
	AccountInfo(ctx context.Context, accessToken string) (*hubspot.AccountInfo, error)
	CreateContact(ctx context.Context, accessToken string, props hubspot.ContactProperties) (*hubspot.Contact, error)
	AuthorizeURL(redirectURL string) string
}

// ConnectService drives the HubSpot connect flows: authorize hands the
// browser a state token, finalize redeems it and completes the code
// exchange, legacy covers clients from before the state handshake.
type ConnectService struct {
	states *StateService
	tokens *TokenService
	client ProviderClient
	logger zerolog.Logger
}

func NewConnectService(states *StateService, tokens *TokenService, client ProviderClient, logger zerolog.Logger) *ConnectService {
	return &ConnectService{
		states: states,
		tokens: tokens,
		client: client,
		logger: logger,
	}
}

// ConnectResult is the outcome of a completed code exchange.
type ConnectResult struct {
	UserID   string
	PortalID int64 // zero when the account lookup failed
}

// Authorize issues a state token for userID and returns returnURL with
// the state appended to its query string.
func (s *ConnectService) Authorize(ctx context.Context, userID, returnURL string) (string, error) {
	if userID == "" {
		return "", ErrUnauthenticated
	}
	if returnURL == "" {
		return "", &MissingParameterError{Name: "returnUrl"}
	}

	u, err := url.Parse(returnURL)
	if err != nil {
		return "", fmt.Errorf("parse return url: %w", err)
	}

	state, err := s.states.Issue(ctx, userID)
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("state", state)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Finalize redeems the state token and exchanges the code. Both
// parameters are checked before the state is consumed or any network
// call is made, so a malformed callback burns nothing.
func (s *ConnectService) Finalize(ctx context.Context, code, state string) (*ConnectResult, error) {
	if code == "" {
		return nil, &MissingParameterError{Name: "code"}
	}
	if state == "" {
		return nil, &MissingParameterError{Name: "state"}
	}

	userID, err := s.states.Consume(ctx, state)
	if err != nil {
		return nil, err
	}

	return s.exchange(ctx, userID, code)
}

// LegacyOutcome is the result of the legacy connect path: either a
// redirect to the provider's authorization page or a completed exchange.
type LegacyOutcome struct {
	RedirectURL string
	Result      *ConnectResult
}

// Legacy handles connect requests that carry no step parameter. With a
// code it exchanges immediately using the session identity and skips
// state validation entirely; this pre-handshake path is kept for older
// clients and offers no cross-site request forgery protection. Without
// a code it sends the caller to the provider's authorization page.
func (s *ConnectService) Legacy(ctx context.Context, userID, code, returnURL string) (*LegacyOutcome, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	if code == "" {
		if returnURL == "" {
			return nil, &MissingParameterError{Name: "returnUrl"}
		}
		return &LegacyOutcome{RedirectURL: s.client.AuthorizeURL(returnURL)}, nil
	}

	s.logger.Warn().Str("user_id", userID).Msg("legacy hubspot connect without state validation")

	result, err := s.exchange(ctx, userID, code)
	if err != nil {
		return nil, err
	}
	return &LegacyOutcome{Result: result}, nil
}

func (s *ConnectService) exchange(ctx context.Context, userID, code string) (*ConnectResult, error) {
	tok, err := s.client.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}

	var refresh *string
	if tok.RefreshToken != "" {
		refresh = &tok.RefreshToken
	}
	expiresAt := time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)

	if err := s.tokens.Upsert(ctx, userID, tok.AccessToken, refresh, &expiresAt); err != nil {
		return nil, err
	}

	result := &ConnectResult{UserID: userID}

	// Account metadata is display-only; failing to fetch it never fails
	// the connect.
	info, err := s.client.AccountInfo(ctx, tok.AccessToken)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("fetch hubspot account info")
		return result, nil
	}
	result.PortalID = info.PortalID

	return result, nil
}
