package jwt

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/artem13815/career/pkg/auth"
)

type Generator struct {
	secret   []byte
	issuer   string
	provider string
	ttl      time.Duration
}

// NewGenerator signs HS256 tokens. provider names the identity source and
// ends up in the token so legacy document keys can be derived from it.
func NewGenerator(secret, issuer, provider string, ttl time.Duration) *Generator {
	return &Generator{secret: []byte(secret), issuer: issuer, provider: provider, ttl: ttl}
}

// Claims carries the standard claims plus the admin flag and identity provider.
type Claims struct {
	jwt.RegisteredClaims
	IsAdmin  bool   `json:"is_admin"`
	Provider string `json:"provider,omitempty"`
}

func (g *Generator) Generate(ctx context.Context, user auth.User) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.issuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
		},
		IsAdmin:  user.IsAdmin,
		Provider: g.provider,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(g.secret)
}
