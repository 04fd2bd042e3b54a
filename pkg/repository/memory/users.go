package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/artem13815/career/pkg/auth"
)

type Users struct {
	mu      sync.RWMutex
	byEmail map[string]auth.User
}

var _ auth.UserRepository = (*Users)(nil)

func NewUsers() *Users {
	return &Users{byEmail: map[string]auth.User{}}
}

func (r *Users) Create(_ context.Context, user auth.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(user.Email)
	if _, ok := r.byEmail[key]; ok {
		return auth.ErrUserAlreadyExists
	}
	user.Email = key
	r.byEmail[key] = user
	return nil
}

func (r *Users) GetByEmail(_ context.Context, email string) (auth.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return auth.User{}, auth.ErrNotFound
	}
	return u, nil
}
