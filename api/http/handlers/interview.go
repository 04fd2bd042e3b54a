package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/artem13815/career/api/http/presenter"
	"github.com/artem13815/career/pkg/interview"
)

// InterviewSessions is the conversational part of the interview.
type InterviewSessions interface {
	History(ctx context.Context, userID uuid.UUID) ([]interview.Message, error)
	PostMessage(ctx context.Context, userID uuid.UUID, text string) (interview.Reply, error)
	Reset(ctx context.Context, userID uuid.UUID) error
}

// SkillExtraction is the asynchronous skill extraction of a finished interview.
type SkillExtraction interface {
	Start(ctx context.Context, userID, interviewID uuid.UUID) error
	Execute(ctx context.Context, interviewID uuid.UUID) error
	Status(ctx context.Context, userID, interviewID uuid.UUID) (interview.StatusView, error)
	ListSkills(ctx context.Context, userID, interviewID uuid.UUID) ([]interview.ExtractedSkill, error)
	DeleteSkill(ctx context.Context, userID, interviewID, skillID uuid.UUID) error
	ConfirmSkills(ctx context.Context, userID, interviewID uuid.UUID, in []interview.SkillInput) ([]interview.ExtractedSkill, error)
}

type InterviewHandler struct {
	sessions   InterviewSessions
	extraction SkillExtraction
}

func NewInterviewHandler(sessions InterviewSessions, extraction SkillExtraction) *InterviewHandler {
	return &InterviewHandler{sessions: sessions, extraction: extraction}
}

// History returns the transcript of the open interview.
// @Summary  Interview history
// @Tags     interview
// @Produce  json
// @Security BearerAuth
// @Success  200 {object} map[string]any
// @Failure  401 {object} presenter.ErrorResponse
// @Router   /interview/history [get]
func (h *InterviewHandler) History(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return presenter.Fail(c, err)
	}
	entries, err := h.sessions.History(c.UserContext(), userID)
	if err != nil {
		return presenter.Fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, fiber.Map{"entries": entries})
}

type messageRequest struct {
	Message string `json:"message"`
}

// Message posts the user's answer and returns the interviewer's next turn.
// A 502 means the model answered but its reply was unusable. The answer and
// the raw reply are both kept in the transcript, so the client reloads
// history and carries on instead of resending.
// @Summary  Send interview answer
// @Tags     interview
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    input body messageRequest true "answer"
// @Success  201 {object} map[string]any
// @Failure  400 {object} presenter.ErrorResponse
// @Failure  404 {object} presenter.ErrorResponse
// @Failure  409 {object} presenter.ErrorResponse
// @Failure  502 {object} presenter.ErrorResponse "AI reply could not be parsed; the answer is stored, reload history instead of resending"
// @Failure  503 {object} presenter.ErrorResponse "AI provider temporarily unavailable; safe to retry"
// @Router   /interview/message [post]
func (h *InterviewHandler) Message(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return presenter.Fail(c, err)
	}
	var req messageRequest
	if err := bind(c, &req); err != nil {
		return presenter.Fail(c, err)
	}
	reply, err := h.sessions.PostMessage(c.UserContext(), userID, req.Message)
	if err != nil {
		return presenter.Fail(c, err)
	}
	return presenter.JSON(c, http.StatusCreated, fiber.Map{
		"id":          reply.Message.ID,
		"role":        reply.Message.Role,
		"content":     reply.Message.Content,
		"interviewId": reply.InterviewID,
		"isFinished":  reply.IsFinished,
	})
}

// Reset archives the open interview.
// @Summary  Reset interview
// @Tags     interview
// @Produce  json
// @Security BearerAuth
// @Success  200 {object} map[string]bool
// @Router   /interview [delete]
func (h *InterviewHandler) Reset(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return presenter.Fail(c, err)
	}
	if err := h.sessions.Reset(c.UserContext(), userID); err != nil {
		return presenter.Fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, fiber.Map{"success": true})
}

type interviewRef struct {
	InterviewID string `json:"interviewId" validate:"required,uuid"`
}

// StartExtraction flips extraction to PROCESSING and returns immediately.
// @Summary  Start skill extraction
// @Tags     extraction
// @Accept   json
// @Security BearerAuth
// @Param    input body interviewRef true "interview"
// @Success  202
// @Failure  400 {object} presenter.ErrorResponse
// @Failure  404 {object} presenter.ErrorResponse
// @Router   /interview/extract/start [post]
func (h *InterviewHandler) StartExtraction(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return presenter.Fail(c, err)
	}
	var req interviewRef
	if err := bind(c, &req); err != nil {
		return presenter.Fail(c, err)
	}
	id, _ := uuid.Parse(req.InterviewID)
	if err := h.extraction.Start(c.UserContext(), userID, id); err != nil {
		return presenter.Fail(c, err)
	}
	return c.SendStatus(http.StatusAccepted)
}

// ExecuteExtraction runs the slow phase. Only the job runner calls it.
// @Summary  Execute skill extraction (internal)
// @Tags     extraction
// @Accept   json
// @Param    X-Internal-Token header string true "internal token"
// @Param    input body interviewRef true "interview"
// @Success  200
// @Router   /interview/extract/execute [post]
func (h *InterviewHandler) ExecuteExtraction(c *fiber.Ctx) error {
	var req interviewRef
	if err := bind(c, &req); err != nil {
		return presenter.Fail(c, err)
	}
	id, _ := uuid.Parse(req.InterviewID)
	if err := h.extraction.Execute(c.UserContext(), id); err != nil {
		return presenter.Fail(c, err)
	}
	return c.SendStatus(http.StatusOK)
}

// ExtractionStatus is polled by the client until extraction leaves PROCESSING.
// @Summary  Skill extraction status
// @Tags     extraction
// @Produce  json
// @Security BearerAuth
// @Param    interviewId query string true "interview id"
// @Success  200 {object} interview.StatusView
// @Failure  404 {object} presenter.ErrorResponse
// @Router   /interview/extract/status [get]
func (h *InterviewHandler) ExtractionStatus(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return presenter.Fail(c, err)
	}
	id, err := parseID(c.Query("interviewId"), "interviewId")
	if err != nil {
		return presenter.Fail(c, err)
	}
	st, err := h.extraction.Status(c.UserContext(), userID, id)
	if err != nil {
		return presenter.Fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, st)
}

// Skills lists the skills extracted from an interview.
// @Summary  Extracted skills
// @Tags     extraction
// @Produce  json
// @Security BearerAuth
// @Param    id path string true "interview id"
// @Success  200 {array} interview.ExtractedSkill
// @Failure  404 {object} presenter.ErrorResponse
// @Router   /interview/{id}/skills [get]
func (h *InterviewHandler) Skills(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return presenter.Fail(c, err)
	}
	id, err := parseID(c.Params("id"), "id")
	if err != nil {
		return presenter.Fail(c, err)
	}
	skills, err := h.extraction.ListSkills(c.UserContext(), userID, id)
	if err != nil {
		return presenter.Fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, skills)
}

type confirmSkillsRequest struct {
	Skills []interview.SkillInput `json:"skills" validate:"max=200,dive"`
}

// ConfirmSkills replaces the extracted skills with the user's edited list and
// merges the names into the talent profile.
// @Summary  Confirm extracted skills
// @Tags     extraction
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id path string true "interview id"
// @Param    input body confirmSkillsRequest true "skills"
// @Success  200 {array} interview.ExtractedSkill
// @Failure  400 {object} presenter.ErrorResponse
// @Failure  404 {object} presenter.ErrorResponse
// @Router   /interview/{id}/skills [put]
func (h *InterviewHandler) ConfirmSkills(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return presenter.Fail(c, err)
	}
	id, err := parseID(c.Params("id"), "id")
	if err != nil {
		return presenter.Fail(c, err)
	}
	var req confirmSkillsRequest
	if err := bind(c, &req); err != nil {
		return presenter.Fail(c, err)
	}
	skills, err := h.extraction.ConfirmSkills(c.UserContext(), userID, id, req.Skills)
	if err != nil {
		return presenter.Fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, skills)
}

// DeleteSkill removes one extracted skill.
// @Summary  Delete extracted skill
// @Tags     extraction
// @Security BearerAuth
// @Param    id path string true "interview id"
// @Param    skillId path string true "skill id"
// @Success  204
// @Failure  404 {object} presenter.ErrorResponse
// @Router   /interview/{id}/skills/{skillId} [delete]
func (h *InterviewHandler) DeleteSkill(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return presenter.Fail(c, err)
	}
	id, err := parseID(c.Params("id"), "id")
	if err != nil {
		return presenter.Fail(c, err)
	}
	skillID, err := parseID(c.Params("skillId"), "skillId")
	if err != nil {
		return presenter.Fail(c, err)
	}
	if err := h.extraction.DeleteSkill(c.UserContext(), userID, id, skillID); err != nil {
		return presenter.Fail(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}
