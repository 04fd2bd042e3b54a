package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/artem13815/career/api/http/presenter"
	"github.com/artem13815/career/pkg/diagnosis"
)

// DiagnosisRunner is diagnosis.UseCase plus the detached execute phase.
type DiagnosisRunner interface {
	diagnosis.UseCase
	Execute(ctx context.Context, analysisID uuid.UUID) error
}

type DiagnosisHandler struct {
	svc DiagnosisRunner
}

func NewDiagnosisHandler(svc DiagnosisRunner) *DiagnosisHandler {
	return &DiagnosisHandler{svc: svc}
}

// Start creates a diagnosis and returns its id; the result is polled.
// @Summary  Start career diagnosis
// @Tags     diagnosis
// @Produce  json
// @Security BearerAuth
// @Success  202 {object} map[string]string
// @Failure  404 {object} presenter.ErrorResponse
// @Router   /diagnosis/start [post]
func (h *DiagnosisHandler) Start(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return presenter.Fail(c, err)
	}
	a, err := h.svc.Start(c.UserContext(), userID)
	if err != nil {
		return presenter.Fail(c, err)
	}
	return presenter.JSON(c, http.StatusAccepted, fiber.Map{"analysisId": a.ID})
}

// List returns the caller's diagnoses, newest first.
// @Summary  List diagnoses
// @Tags     diagnosis
// @Produce  json
// @Security BearerAuth
// @Param    limit  query int false "page size (default 20, at most 50)"
// @Param    offset query int false "offset"
// @Success  200 {array} diagnosis.Analysis
// @Failure  400 {object} presenter.ErrorResponse
// @Router   /diagnosis [get]
func (h *DiagnosisHandler) List(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return presenter.Fail(c, err)
	}
	limit, offset, err := pageParams(c)
	if err != nil {
		return presenter.Fail(c, err)
	}
	items, err := h.svc.List(c.UserContext(), userID, limit, offset)
	if err != nil {
		return presenter.Fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, items)
}

// Get returns one diagnosis with its roadmap. Poll until the status is terminal.
// @Summary  Get diagnosis
// @Tags     diagnosis
// @Produce  json
// @Security BearerAuth
// @Param    id path string true "analysis id"
// @Success  200 {object} diagnosis.Analysis
// @Failure  404 {object} presenter.ErrorResponse
// @Router   /diagnosis/{id} [get]
func (h *DiagnosisHandler) Get(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return presenter.Fail(c, err)
	}
	id, err := parseID(c.Params("id"), "id")
	if err != nil {
		return presenter.Fail(c, err)
	}
	a, err := h.svc.Get(c.UserContext(), userID, id)
	if err != nil {
		return presenter.Fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, a)
}

// StepDetail returns the study guide of a roadmap step, generating it on
// first request.
// @Summary  Roadmap step detail
// @Tags     diagnosis
// @Produce  json
// @Security BearerAuth
// @Param    stepId query string true "step id"
// @Success  200 {object} map[string]string
// @Failure  404 {object} presenter.ErrorResponse
// @Failure  502 {object} presenter.ErrorResponse
// @Router   /diagnosis/step-detail [get]
func (h *DiagnosisHandler) StepDetail(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return presenter.Fail(c, err)
	}
	stepID, err := parseID(c.Query("stepId"), "stepId")
	if err != nil {
		return presenter.Fail(c, err)
	}
	content, err := h.svc.StepDetail(c.UserContext(), userID, stepID)
	if err != nil {
		return presenter.Fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, fiber.Map{"content": content})
}

type stepProgressRequest struct {
	Completed *bool `json:"completed" validate:"required"`
}

// SetStepCompleted marks a roadmap step done or not done.
// @Summary  Update step progress
// @Tags     diagnosis
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    stepId path string true "step id"
// @Param    input body stepProgressRequest true "progress"
// @Success  200 {object} diagnosis.Step
// @Failure  404 {object} presenter.ErrorResponse
// @Router   /diagnosis/steps/{stepId} [patch]
func (h *DiagnosisHandler) SetStepCompleted(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return presenter.Fail(c, err)
	}
	stepID, err := parseID(c.Params("stepId"), "stepId")
	if err != nil {
		return presenter.Fail(c, err)
	}
	var req stepProgressRequest
	if err := bind(c, &req); err != nil {
		return presenter.Fail(c, err)
	}
	st, err := h.svc.SetStepCompleted(c.UserContext(), userID, stepID, *req.Completed)
	if err != nil {
		return presenter.Fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, st)
}

type analysisRef struct {
	AnalysisID string `json:"analysisId" validate:"required,uuid"`
}

// Execute runs the slow phase. Only the job runner calls it.
// @Summary  Execute diagnosis (internal)
// @Tags     diagnosis
// @Accept   json
// @Param    X-Internal-Token header string true "internal token"
// @Param    input body analysisRef true "analysis"
// @Success  200
// @Router   /diagnosis/execute [post]
func (h *DiagnosisHandler) Execute(c *fiber.Ctx) error {
	var req analysisRef
	if err := bind(c, &req); err != nil {
		return presenter.Fail(c, err)
	}
	id, _ := uuid.Parse(req.AnalysisID)
	if err := h.svc.Execute(c.UserContext(), id); err != nil {
		return presenter.Fail(c, err)
	}
	return c.SendStatus(http.StatusOK)
}
