package auth

import (
	"context"

	"github.com/artem13815/career/pkg/apperr"
)

// Common errors used by repository/use cases
var (
	ErrNotFound           = apperr.NotFound("user")
	ErrUserAlreadyExists  = apperr.Conflict("user already exists")
	ErrInvalidCredentials = apperr.Authentication("invalid credentials")
)

// UserRepository abstracts persistence concerns from the domain layer.
type UserRepository interface {
	Create(ctx context.Context, user User) error
	GetByEmail(ctx context.Context, email string) (User, error)
}
