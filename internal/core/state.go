package core

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// stateTTL is how long an issued state token stays redeemable.
const stateTTL = 10 * time.Minute

// SweepInterval is how often the background sweeper purges dead state tokens.
const SweepInterval = 10 * time.Minute

type StateService struct {
	db DB
}

func NewStateService(db DB) *StateService {
	return &StateService{db: db}
}

// Issue creates a single-use state token bound to userID. The token is
// 32 bytes of crypto/rand output, base64url-encoded without padding.
func (s *StateService) Issue(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", ErrUnauthenticated
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate state token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(raw)

	now := time.Now()
	_, err := s.db.Exec(ctx,
		`INSERT INTO hubspot_oauth_states (token, user_id, created_at, expires_at)
		 VALUES ($1, $2, $3, $4)`,
		token, userID, now, now.Add(stateTTL),
	)
	if err != nil {
		return "", fmt.Errorf("store state token: %w", err)
	}

	return token, nil
}

// Consume redeems a state token and returns the user it was issued to.
// The conditional update makes redemption atomic: exactly one of any
// number of concurrent callers wins, the rest get ErrStateUsed or
// ErrStateExpired. An expired token reports ErrStateExpired even when
// it was also used.
func (s *StateService) Consume(ctx context.Context, token string) (string, error) {
	var userID string
	err := s.db.QueryRow(ctx,
		`UPDATE hubspot_oauth_states SET used = true, used_at = now()
		 WHERE token = $1 AND used = false AND expires_at > now()
		 RETURNING user_id`, token,
	).Scan(&userID)
	if err == nil {
		return userID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("consume state token: %w", err)
	}

	// The update matched nothing; look at the row to classify the loss.
	var used bool
	var expiresAt time.Time
	err = s.db.QueryRow(ctx,
		`SELECT used, expires_at FROM hubspot_oauth_states WHERE token = $1`, token,
	).Scan(&used, &expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrStateNotFound
	}
	if err != nil {
		return "", fmt.Errorf("inspect state token: %w", err)
	}

	if time.Now().After(expiresAt) {
		return "", ErrStateExpired
	}
	if used {
		return "", ErrStateUsed
	}
	// Unused and unexpired by our clock means the update lost against
	// the database clock at the expiry boundary.
	return "", ErrStateExpired
}

// Sweep deletes used state tokens and tokens expired for more than an
// hour, returning the number of rows removed. Unexpired unused tokens
// are never touched.
func (s *StateService) Sweep(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM hubspot_oauth_states
		 WHERE used = true OR expires_at < now() - interval '1 hour'`,
	)
	if err != nil {
		return 0, fmt.Errorf("sweep state tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
