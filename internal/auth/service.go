package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-ircd/internal/store"
)

var (
	// ErrInvalidCredentials is returned when username/password don't match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountExists is returned when registering an existing username.
	ErrAccountExists = errors.New("account already exists")
	// ErrInvalidUsername is returned when username doesn't meet constraints.
	ErrInvalidUsername = errors.New("invalid username")
	// ErrInvalidPassword is returned when password doesn't meet constraints.
	ErrInvalidPassword = errors.New("invalid password")
)

// Service provides operator account operations. It backs both the OPER
// command and the admin API login.
type Service struct {
	store     store.AccountStore
	jwtConfig *JWTConfig
	log       *zerolog.Logger
}

// NewService creates a new authentication service.
func NewService(accounts store.AccountStore, jwtConfig *JWTConfig, logger *zerolog.Logger) *Service {
	return &Service{
		store:     accounts,
		jwtConfig: jwtConfig,
		log:       logger,
	}
}

// CreateAccount creates a new operator account with a hashed password.
func (s *Service) CreateAccount(ctx context.Context, username, password string) (*store.Account, error) {
	username = strings.TrimSpace(username)
	if len(username) < 3 || len(username) > 32 {
		return nil, ErrInvalidUsername
	}
	if len(password) < 6 {
		return nil, ErrInvalidPassword
	}

	if existing, err := s.store.GetAccountByUsername(ctx, username); err == nil && existing != nil {
		return nil, ErrAccountExists
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	acc, err := s.store.CreateAccount(ctx, username, hashed)
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return acc, nil
}

// Verify checks a username/password pair. It is the credential check behind
// the OPER command, so it reports only success or failure.
func (s *Service) Verify(username, password string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	acc, err := s.store.GetAccountByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log.Warn().Err(err).Str("username", username).Msg("account lookup failed")
		}
		return false
	}
	if err := ComparePassword(acc.PasswordHash, password); err != nil {
		return false
	}
	if err := s.store.TouchLogin(ctx, acc.ID); err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("failed to record login")
	}
	return true
}

// Login validates credentials and returns a JWT token for the admin API.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	acc, err := s.store.GetAccountByUsername(ctx, username)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if err := ComparePassword(acc.PasswordHash, password); err != nil {
		return "", ErrInvalidCredentials
	}

	if err := s.store.TouchLogin(ctx, acc.ID); err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("failed to record login")
	}

	token, err := GenerateToken(s.jwtConfig, acc.ID, acc.Username)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return token, nil
}

// ValidateToken validates a JWT token and returns the claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	return ValidateToken(s.jwtConfig, tokenString)
}
