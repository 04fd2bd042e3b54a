package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/career/api/http/presenter"
	"github.com/artem13815/career/pkg/auth"
)

type AuthHandler struct {
	useCase auth.AuthUseCase
}

func NewAuthHandler(useCase auth.AuthUseCase) *AuthHandler {
	return &AuthHandler{useCase: useCase}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

// Register handles user registration.
// @Summary Register user
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body registerRequest true "registration payload"
// @Success 201 {object} map[string]any
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 409 {object} presenter.ErrorResponse
// @Router  /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := bind(c, &req); err != nil {
		return presenter.Fail(c, err)
	}

	result, err := h.useCase.Register(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return presenter.Fail(c, err)
	}

	return presenter.JSON(c, http.StatusCreated, fiber.Map{
		"id":        result.User.ID.String(),
		"email":     result.User.Email,
		"createdAt": result.User.CreatedAt,
		"token":     result.Token,
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login handles user login.
// @Summary Login
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body loginRequest true "login payload"
// @Success 200 {object} map[string]any
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Router  /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return presenter.Fail(c, err)
	}

	result, err := h.useCase.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return presenter.Fail(c, err)
	}

	return presenter.JSON(c, http.StatusOK, fiber.Map{
		"id":    result.User.ID.String(),
		"email": result.User.Email,
		"token": result.Token,
	})
}
