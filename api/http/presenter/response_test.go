package presenter

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/career/pkg/apperr"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperr.Validation("bad"), http.StatusBadRequest},
		{apperr.Authentication("who"), http.StatusUnauthorized},
		{apperr.NotFound("step"), http.StatusNotFound},
		{apperr.Conflict("busy"), http.StatusConflict},
		{apperr.UpstreamFormat("x", nil), http.StatusBadGateway},
		{apperr.TransientUpstream(errors.New("429")), http.StatusServiceUnavailable},
		{fiber.ErrMethodNotAllowed, http.StatusMethodNotAllowed},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusOf(tc.err), tc.err.Error())
	}
}

func TestFailHidesInternalDetails(t *testing.T) {
	app := fiber.New()
	app.Get("/internal", func(c *fiber.Ctx) error { return Fail(c, errors.New("pq: password leaked")) })
	app.Get("/format", func(c *fiber.Ctx) error {
		return Fail(c, apperr.UpstreamFormat("raw model text", errors.New("unexpected token")))
	})
	app.Get("/missing", func(c *fiber.Ctx) error { return Fail(c, apperr.NotFound("analysis")) })

	body := func(path string) (int, string) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		defer resp.Body.Close()
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(raw)
	}

	code, got := body("/internal")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.JSONEq(t, `{"message":"internal error"}`, got)

	code, got = body("/format")
	assert.Equal(t, http.StatusBadGateway, code)
	assert.JSONEq(t, `{"message":"AI response could not be parsed"}`, got)

	code, got = body("/missing")
	assert.Equal(t, http.StatusNotFound, code)
	assert.JSONEq(t, `{"message":"analysis not found"}`, got)
}
