package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/career/api/http/presenter"
	"github.com/artem13815/career/pkg/apperr"
	"github.com/artem13815/career/pkg/talent"
)

type ProfileHandler struct {
	profiles talent.UseCase
}

func NewProfileHandler(profiles talent.UseCase) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Get returns the caller's talent profile.
// @Summary  Get talent profile
// @Tags     profile
// @Produce  json
// @Security BearerAuth
// @Success  200 {object} talent.Profile
// @Failure  401 {object} presenter.ErrorResponse
// @Failure  404 {object} presenter.ErrorResponse
// @Router   /profile [get]
func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return presenter.Fail(c, err)
	}
	p, err := h.profiles.Get(c.UserContext(), userID)
	if err != nil {
		return presenter.Fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, p)
}

// Put creates or replaces the caller's talent profile.
// @Summary  Save talent profile
// @Tags     profile
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    input body talent.Input true "profile"
// @Success  200 {object} talent.Profile
// @Failure  400 {object} presenter.ErrorResponse
// @Router   /profile [put]
func (h *ProfileHandler) Put(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return presenter.Fail(c, err)
	}
	var in talent.Input
	if err := bind(c, &in); err != nil {
		return presenter.Fail(c, err)
	}
	p, err := h.profiles.Save(c.UserContext(), userID, in)
	if err != nil {
		return presenter.Fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, p)
}

// Merge applies an AI-produced proposal with merge semantics: empty values are
// ignored, arrays are unioned and scalars overwrite.
// @Summary  Merge AI proposal into profile
// @Tags     profile
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    input body map[string]any true "proposal"
// @Success  200 {object} talent.Profile
// @Failure  400 {object} presenter.ErrorResponse
// @Router   /profile/ai-merge [patch]
func (h *ProfileHandler) Merge(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return presenter.Fail(c, err)
	}
	var proposal map[string]any
	if err := c.BodyParser(&proposal); err != nil || proposal == nil {
		return presenter.Fail(c, apperr.Validation("invalid JSON payload"))
	}
	p, err := h.profiles.ApplyProposal(c.UserContext(), userID, proposal)
	if err != nil {
		return presenter.Fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, p)
}
