package auth

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/artem13815/career/pkg/apperr"
)

const minPasswordLen = 8

// AuthUseCase describes authentication/registration behavior.
type AuthUseCase interface {
	Register(ctx context.Context, email, password string) (AuthResult, error)
	Login(ctx context.Context, email, password string) (AuthResult, error)
}

type AuthResult struct {
	User  User
	Token string
}

type authService struct {
	repo   UserRepository
	tokens TokenGenerator
	cost   int
}

// NewAuthService returns default implementation of AuthUseCase.
func NewAuthService(repo UserRepository, tokens TokenGenerator) AuthUseCase {
	return &authService{repo: repo, tokens: tokens, cost: bcrypt.DefaultCost}
}

func (s *authService) Register(ctx context.Context, email, password string) (AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return AuthResult{}, apperr.Validation("invalid email")
	}
	if len(password) < minPasswordLen {
		return AuthResult{}, apperr.Validation("password must be at least %d characters", minPasswordLen)
	}

	// If user exists, fail fast (best-effort check)
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return AuthResult{}, ErrUserAlreadyExists
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return AuthResult{}, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return AuthResult{}, err
	}

	user := User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(passwordHash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return AuthResult{}, err
	}
	token, err := s.tokens.Generate(ctx, user)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{User: user, Token: token}, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return AuthResult{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return AuthResult{}, ErrInvalidCredentials
	}
	token, err := s.tokens.Generate(ctx, user)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{User: user, Token: token}, nil
}
