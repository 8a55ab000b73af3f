package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"todo-planner/internal/logger"
	"todo-planner/internal/model"
	"todo-planner/internal/service"
	"todo-planner/internal/validation"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	creds, err := h.credentials(c)
	if err != nil {
		return respondError(c, err)
	}
	result, err := h.auth.SignUp(c.UserContext(), creds)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	creds, err := h.credentials(c)
	if err != nil {
		return respondError(c, err)
	}
	result, err := h.auth.Login(c.UserContext(), creds)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := h.auth.Me(c.UserContext(), claimsFrom(c).UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.auth.Logout(c.UserContext(), claimsFrom(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

func (h *AuthHandler) credentials(c *fiber.Ctx) (model.Credentials, error) {
	var creds model.Credentials
	if err := c.BodyParser(&creds); err != nil {
		logger.WarnContext(c.UserContext(), "Invalid request body", "error", err)
		return creds, fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	creds.Email = strings.TrimSpace(creds.Email)
	if err := validation.Credentials(creds); err != nil {
		return creds, err
	}
	return creds, nil
}
