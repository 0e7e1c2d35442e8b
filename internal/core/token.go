package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/eline/driftline/internal/model"
)

type TokenService struct {
	db DB
}

func NewTokenService(db DB) *TokenService {
	return &TokenService{db: db}
}

// Upsert stores the HubSpot token set for a user. A nil refreshToken or
// expiresAt preserves whatever the existing row holds, so a refresh
// response that omits a new refresh token never clobbers the stored one.
func (s *TokenService) Upsert(ctx context.Context, userID, accessToken string, refreshToken *string, expiresAt *time.Time) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO hubspot_tokens (user_id, access_token, refresh_token, expires_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, now(), now())
		 ON CONFLICT (user_id) DO UPDATE SET
		    access_token = EXCLUDED.access_token,
		    refresh_token = COALESCE(EXCLUDED.refresh_token, hubspot_tokens.refresh_token),
		    expires_at = COALESCE(EXCLUDED.expires_at, hubspot_tokens.expires_at),
		    updated_at = now()`,
		userID, accessToken, refreshToken, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("upsert hubspot token: %w", err)
	}
	return nil
}

// Read returns the stored token set for a user, or ErrNoToken.
func (s *TokenService) Read(ctx context.Context, userID string) (*model.HubSpotToken, error) {
	var t model.HubSpotToken
	err := s.db.QueryRow(ctx,
		`SELECT user_id, access_token, refresh_token, expires_at, created_at, updated_at
		 FROM hubspot_tokens WHERE user_id = $1`, userID,
	).Scan(&t.UserID, &t.AccessToken, &t.RefreshToken, &t.ExpiresAt, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoToken
	}
	if err != nil {
		return nil, fmt.Errorf("read hubspot token: %w", err)
	}
	return &t, nil
}

// Delete removes a user's stored token set.
func (s *TokenService) Delete(ctx context.Context, userID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM hubspot_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete hubspot token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoToken
	}
	return nil
}
