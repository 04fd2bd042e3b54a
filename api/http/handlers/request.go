package handlers

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/artem13815/career/pkg/apperr"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// bind parses the JSON body into dst and runs struct validation.
func bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return apperr.Validation("invalid JSON payload")
	}
	if err := validate.Struct(dst); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fe := verrs[0]
			return apperr.Validation("field %s failed %s validation", fe.Field(), fe.Tag())
		}
		return apperr.Validation("invalid payload")
	}
	return nil
}

// currentUser reads the subject set by the JWT middleware.
func currentUser(c *fiber.Ctx) (uuid.UUID, error) {
	raw, _ := c.Locals("userId").(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Authentication("unauthenticated")
	}
	return id, nil
}

func parseID(raw, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, apperr.Validation("%s must be a UUID", name)
	}
	return id, nil
}
