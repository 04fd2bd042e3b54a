package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/career/pkg/apperr"
)

const (
	defaultPageSize = 20
	// maxPageSize caps list pages; every analysis carries its full roadmap.
	maxPageSize = 50
)

// pageParams reads ?limit and ?offset. Missing values take defaults, a limit
// above maxPageSize is clamped, and anything unparsable or negative is a
// validation error.
func pageParams(c *fiber.Ctx) (limit, offset int, err error) {
	limit = defaultPageSize
	if v := c.Query("limit"); v != "" {
		n, convErr := strconv.Atoi(v)
		if convErr != nil || n < 1 {
			return 0, 0, apperr.Validation("limit must be a positive integer")
		}
		limit = min(n, maxPageSize)
	}
	if v := c.Query("offset"); v != "" {
		n, convErr := strconv.Atoi(v)
		if convErr != nil || n < 0 {
			return 0, 0, apperr.Validation("offset must be a non-negative integer")
		}
		offset = n
	}
	return limit, offset, nil
}
