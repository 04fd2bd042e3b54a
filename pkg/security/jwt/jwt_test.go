package jwt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/career/pkg/auth"
)

func newApp() *fiber.App {
	app := fiber.New()
	app.Use(NewAuthMiddleware("secret", "career", "local"))
	app.Get("/me", func(c *fiber.Ctx) error {
		admin, _ := c.Locals("isAdmin").(bool)
		return c.JSON(fiber.Map{"userId": c.Locals("userId"), "provider": c.Locals("provider"), "admin": admin})
	})
	return app
}

func TestMiddlewareAcceptsIssuedToken(t *testing.T) {
	user := auth.User{ID: uuid.New(), IsAdmin: true}
	tok, err := NewGenerator("secret", "career", "google", time.Hour).Generate(context.Background(), user)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := newApp().Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMiddlewareRejects(t *testing.T) {
	wrongIssuer, err := NewGenerator("secret", "other", "", time.Hour).Generate(context.Background(), auth.User{ID: uuid.New()})
	require.NoError(t, err)
	wrongSecret, err := NewGenerator("nope", "career", "", time.Hour).Generate(context.Background(), auth.User{ID: uuid.New()})
	require.NoError(t, err)
	expired, err := NewGenerator("secret", "career", "", -time.Minute).Generate(context.Background(), auth.User{ID: uuid.New()})
	require.NoError(t, err)

	for name, header := range map[string]string{
		"missing":      "",
		"garbage":      "Bearer abc",
		"issuer":       "Bearer " + wrongIssuer,
		"secret":       "Bearer " + wrongSecret,
		"expired":      "Bearer " + expired,
		"empty bearer": "Bearer ",
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			resp, err := newApp().Test(req)
			require.NoError(t, err)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}
