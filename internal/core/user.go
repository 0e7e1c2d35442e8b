package core

import (
	"context"
	"fmt"

	"github.com/eline/driftline/internal/model"
)

type UserService struct {
	db DB
}

func NewUserService(db DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := s.db.QueryRow(ctx,
		`SELECT id, email, password_hash, display_name, company, created_at, updated_at
		 FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.Company, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return &u, nil
}

// UpdateProfile updates the non-nil fields and returns the updated user.
func (s *UserService) UpdateProfile(ctx context.Context, id string, displayName, company *string) (*model.User, error) {
	_, err := s.db.Exec(ctx,
		`UPDATE users SET
		    display_name = COALESCE($1, display_name),
		    company = COALESCE($2, company),
		    updated_at = now()
		 WHERE id = $3`,
		displayName, company, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update user %s: %w", id, err)
	}
	return s.GetByID(ctx, id)
}
