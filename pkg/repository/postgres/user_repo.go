package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artem13815/career/pkg/auth"
)

// UserRepository implements auth.UserRepository backed by PostgreSQL (pgx).
type UserRepository struct {
	pool *pgxpool.Pool
}

var _ auth.UserRepository = (*UserRepository)(nil)

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, user auth.User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, created_at, is_admin)
		VALUES ($1, $2, $3, $4, $5)
	`, user.ID, strings.ToLower(user.Email), user.PasswordHash, user.CreatedAt, user.IsAdmin)
	if err != nil {
		if isUniqueViolation(err) {
			return auth.ErrUserAlreadyExists
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (auth.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, created_at, is_admin
		FROM users WHERE email = $1
	`, strings.ToLower(email))
	var user auth.User
	var createdAt time.Time
	if err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &createdAt, &user.IsAdmin); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.User{}, auth.ErrNotFound
		}
		return auth.User{}, err
	}
	user.CreatedAt = createdAt.UTC()
	return user, nil
}
