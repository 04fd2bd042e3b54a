package middleware

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/career/pkg/logger"
)

// InternalTokenHeader carries the shared secret of worker-only endpoints.
const InternalTokenHeader = "X-Internal-Token"

// AccessLog logs one line per request. It must run after the requestid middleware.
func AccessLog(log *logger.Logger) fiber.Handler {
	log = log.With("component", "HTTP")
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = http.StatusInternalServerError
			}
		}
		kv := []any{
			"request_id", c.Locals("requestid"),
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if uid, ok := c.Locals("userId").(string); ok {
			kv = append(kv, "user_id", uid)
		}
		if status >= http.StatusInternalServerError {
			log.Warn("http request", kv...)
		} else {
			log.Info("http request", kv...)
		}
		return err
	}
}

// InternalToken guards endpoints that only the job runner may call. An empty
// token disables them.
func InternalToken(token string) fiber.Handler {
	expected := []byte(token)
	return func(c *fiber.Ctx) error {
		if len(expected) == 0 {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"message": "not found"})
		}
		got := []byte(c.Get(InternalTokenHeader))
		if subtle.ConstantTimeCompare(got, expected) != 1 {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": "invalid internal token"})
		}
		return c.Next()
	}
}
