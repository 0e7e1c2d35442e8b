package core

import (
	"github.com/rs/zerolog"
)

type Services struct {
	Auth    *AuthService
	User    *UserService
	State   *StateService
	Token   *TokenService
	Manager *TokenManager
	Connect *ConnectService
}

func NewServices(db DB, client ProviderClient, jwtSecret, jwtIssuer string, logger zerolog.Logger) *Services {
	states := NewStateService(db)
	tokens := NewTokenService(db)

	return &Services{
		Auth:    NewAuthService(db, jwtSecret, jwtIssuer),
		User:    NewUserService(db),
		State:   states,
		Token:   tokens,
		Manager: NewTokenManager(tokens, client),
		Connect: NewConnectService(states, tokens, client, logger),
	}
}
