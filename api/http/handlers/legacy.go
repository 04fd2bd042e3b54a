package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/artem13815/career/api/http/presenter"
	"github.com/artem13815/career/pkg/apperr"
	"github.com/artem13815/career/pkg/legacy"
)

type ProfileDocuments interface {
	Get(ctx context.Context, userID uuid.UUID) (map[string]any, error)
	Update(ctx context.Context, userID uuid.UUID, incoming map[string]any) (map[string]any, error)
}

type LearningPlans interface {
	Get(ctx context.Context, userID uuid.UUID) (legacy.Plan, error)
	StepDetail(ctx context.Context, userID uuid.UUID, stage int) (legacy.StepDetail, error)
}

// LegacyHandler serves the document-store variant of profile and learning plan.
type LegacyHandler struct {
	profiles ProfileDocuments
	plans    LearningPlans
}

func NewLegacyHandler(profiles ProfileDocuments, plans LearningPlans) *LegacyHandler {
	return &LegacyHandler{profiles: profiles, plans: plans}
}

// Profile returns the career-profiles document.
// @Summary  Legacy profile document
// @Tags     legacy
// @Produce  json
// @Security BearerAuth
// @Success  200 {object} map[string]any
// @Failure  404 {object} presenter.ErrorResponse
// @Router   /legacy/profile [get]
func (h *LegacyHandler) Profile(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return presenter.Fail(c, err)
	}
	doc, err := h.profiles.Get(c.UserContext(), userID)
	if err != nil {
		return presenter.Fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, doc)
}

// MergeProfile merges the body into the career-profiles document.
// @Summary  Merge into legacy profile document
// @Tags     legacy
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    input body map[string]any true "fields"
// @Success  200 {object} map[string]any
// @Failure  400 {object} presenter.ErrorResponse
// @Router   /legacy/profile [patch]
func (h *LegacyHandler) MergeProfile(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return presenter.Fail(c, err)
	}
	var incoming map[string]any
	if err := c.BodyParser(&incoming); err != nil || incoming == nil {
		return presenter.Fail(c, apperr.Validation("invalid JSON payload"))
	}
	doc, err := h.profiles.Update(c.UserContext(), userID, incoming)
	if err != nil {
		return presenter.Fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, doc)
}

// LearningPlan returns the learning-plans document.
// @Summary  Legacy learning plan
// @Tags     legacy
// @Produce  json
// @Security BearerAuth
// @Success  200 {object} legacy.Plan
// @Failure  404 {object} presenter.ErrorResponse
// @Router   /legacy/learning-plan [get]
func (h *LegacyHandler) LearningPlan(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return presenter.Fail(c, err)
	}
	plan, err := h.plans.Get(c.UserContext(), userID)
	if err != nil {
		return presenter.Fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, plan)
}

// StepDetail returns cached markdown, or 202 while it is being generated.
// @Summary  Legacy learning plan stage detail
// @Tags     legacy
// @Produce  json
// @Security BearerAuth
// @Param    stage query int true "stage number"
// @Success  200 {object} map[string]string
// @Success  202 {object} map[string]string
// @Failure  404 {object} presenter.ErrorResponse
// @Router   /legacy/learning-plan/step-detail [get]
func (h *LegacyHandler) StepDetail(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return presenter.Fail(c, err)
	}
	stage, err := strconv.Atoi(c.Query("stage"))
	if err != nil || stage < 1 {
		return presenter.Fail(c, apperr.Validation("stage must be a positive integer"))
	}
	detail, err := h.plans.StepDetail(c.UserContext(), userID, stage)
	if err != nil {
		return presenter.Fail(c, err)
	}
	if detail.Pending {
		return presenter.JSON(c, http.StatusAccepted, fiber.Map{"status": "pending"})
	}
	return presenter.JSON(c, http.StatusOK, fiber.Map{"content": detail.Content})
}
