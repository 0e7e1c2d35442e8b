package model

import "time"

// OAuthState is a single-use CSRF token binding a HubSpot callback to the
// user who started the connect flow. Consumed at most once, never accepted
// after ExpiresAt.
type OAuthState struct {
	Token     string     `json:"token"`
	UserID    string     `json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	Used      bool       `json:"used"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
}

// HubSpotToken is the stored provider credential set for one user.
// A nil ExpiresAt means freshness is unknown and the access token is
// treated as stale.
type HubSpotToken struct {
	UserID       string     `json:"user_id"`
	AccessToken  string     `json:"-"`
	RefreshToken *string    `json:"-"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
