package presenter

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/career/pkg/apperr"
)

type ErrorResponse struct {
	Message string `json:"message"`
}

func JSON(c *fiber.Ctx, status int, v any) error {
	return c.Status(status).JSON(v)
}

func Error(c *fiber.Ctx, status int, message string) error {
	return JSON(c, status, ErrorResponse{Message: message})
}

// StatusOf maps an error kind to its HTTP status.
func StatusOf(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindAuthentication:
		return http.StatusUnauthorized
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindUpstreamFormat:
		// the upstream call succeeded but returned garbage; not the client's fault
		return http.StatusBadGateway
	case apperr.KindTransientUpstream:
		return http.StatusServiceUnavailable
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return http.StatusInternalServerError
}

// Fail writes err as an ErrorResponse. Internal errors never leak their text.
func Fail(c *fiber.Ctx, err error) error {
	status := StatusOf(err)
	switch apperr.KindOf(err) {
	case apperr.KindUpstreamFormat:
		return Error(c, status, "AI response could not be parsed")
	case apperr.KindInternal:
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return Error(c, status, fe.Message)
		}
		return Error(c, status, "internal error")
	}
	return Error(c, status, apperr.PublicMessage(err))
}
