package core

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"
)

// freshnessMargin is subtracted from the stored expiry when deciding
// whether an access token is still usable. A token inside the margin is
// treated as stale and refreshed before it is handed out.
const freshnessMargin = 5 * time.Minute

// TokenManager hands out access tokens that are guaranteed fresh for at
// least freshnessMargin, refreshing through the provider when needed.
type TokenManager struct {
	tokens *TokenService
	client ProviderClient
	group  singleflight.Group
}

func NewTokenManager(tokens *TokenService, client ProviderClient) *TokenManager {
	return &TokenManager{tokens: tokens, client: client}
}

// GetValidAccessToken returns a usable access token for userID. A fresh
// stored token is returned without any network traffic. A stale one
// triggers exactly one refresh, deduplicated across concurrent callers
// per user; the renewed set is persisted before the token is returned.
// A failed refresh leaves the stored record untouched.
func (m *TokenManager) GetValidAccessToken(ctx context.Context, userID string) (string, error) {
	rec, err := m.tokens.Read(ctx, userID)
	if err != nil {
		return "", err
	}
	if rec.AccessToken == "" {
		return "", ErrNoToken
	}

	if fresh(rec.ExpiresAt) {
		return rec.AccessToken, nil
	}

	if rec.RefreshToken == nil || *rec.RefreshToken == "" {
		return "", ErrNoRefreshToken
	}

	token, err, _ := m.group.Do(userID, func() (any, error) {
		return m.refresh(ctx, userID, *rec.RefreshToken)
	})
	if err != nil {
		return "", err
	}
	return token.(string), nil
}

func (m *TokenManager) refresh(ctx context.Context, userID, refreshToken string) (string, error) {
	tok, err := m.client.Refresh(ctx, refreshToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}

	var newRefresh *string
	if tok.RefreshToken != "" {
		newRefresh = &tok.RefreshToken
	}
	expiresAt := time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)

	if err := m.tokens.Upsert(ctx, userID, tok.AccessToken, newRefresh, &expiresAt); err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

// fresh reports whether expiresAt leaves at least freshnessMargin of
// validity. A missing expiry counts as stale.
func fresh(expiresAt *time.Time) bool {
	if expiresAt == nil {
		return false
	}
	return time.Now().Before(expiresAt.Add(-freshnessMargin))
}
