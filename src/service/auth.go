package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/chatify/backend/src/auth"
	"github.com/chatify/backend/src/store"
)

// AuthService handles signup and login. Both return a fresh access
// token on success.
type AuthService struct {
	store  *store.Store
	tokens *auth.TokenService
	logger zerolog.Logger
}

// NewAuthService creates an auth service.
func NewAuthService(s *store.Store, tokens *auth.TokenService, logger zerolog.Logger) *AuthService {
	return &AuthService{
		store:  s,
		tokens: tokens,
		logger: logger.With().Str("component", "auth-service").Logger(),
	}
}

// Signup registers a new account and returns an access token for it.
func (a *AuthService) Signup(ctx context.Context, req auth.SignupRequest) (Token, error) {
	if err := auth.ValidateSignup(req); err != nil {
		return Token{}, err
	}

	exists, err := a.store.UserExists(ctx, req.Email, req.Nickname)
	if err != nil {
		return Token{}, err
	}
	if exists {
		return Token{}, ErrUserExists
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return Token{}, err
	}

	now := time.Now().UTC()
	user := store.User{
		ID:           uuid.New(),
		Email:        req.Email,
		Nickname:     req.Nickname,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.store.CreateUser(ctx, user); err != nil {
		return Token{}, err
	}

	a.logger.Info().Str("user_id", user.ID.String()).Msg("user registered")
	return a.issueToken(user.ID)
}

// Login authenticates by email or nickname plus password.
func (a *AuthService) Login(ctx context.Context, req auth.LoginRequest) (Token, error) {
	if err := auth.ValidateLogin(req); err != nil {
		return Token{}, err
	}

	user, found, err := a.store.UserByLogin(ctx, req.Login)
	if err != nil {
		return Token{}, err
	}
	if !found {
		return Token{}, ErrInvalidLogin
	}

	ok, err := auth.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil || !ok {
		return Token{}, ErrInvalidLogin
	}
	return a.issueToken(user.ID)
}

func (a *AuthService) issueToken(userID uuid.UUID) (Token, error) {
	signed, err := a.tokens.Generate(userID)
	if err != nil {
		return Token{}, err
	}
	return Token{AccessToken: signed, TokenType: "bearer"}, nil
}
