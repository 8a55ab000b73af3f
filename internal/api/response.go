package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"todo-planner/internal/client"
	"todo-planner/internal/logger"
	"todo-planner/internal/service"
	"todo-planner/internal/validation"
)

const internalMessage = "An internal server error occurred"

func errorResponse(c *fiber.Ctx, status int, code, message string, details []validation.FieldError) error {
	return c.Status(status).JSON(client.ErrorBody{
		Error:      message,
		Code:       code,
		StatusCode: status,
		Details:    details,
	})
}

// respondError maps service errors onto the error envelope. Anything
// unrecognized is logged and reported as a 500.
func respondError(c *fiber.Ctx, err error) error {
	if verrs, ok := validation.AsErrors(err); ok {
		return errorResponse(c, fiber.StatusBadRequest, client.CodeValidation, verrs.Error(), verrs)
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fiberError(c, fe)
	}

	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		return errorResponse(c, fiber.StatusNotFound, client.CodeNotFound, "Task not found", nil)
	case errors.Is(err, service.ErrEmailExists):
		return errorResponse(c, fiber.StatusConflict, client.CodeEmailExists, "Email already registered", nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		return errorResponse(c, fiber.StatusUnauthorized, client.CodeInvalidCredentials, "Invalid email or password", nil)
	case errors.Is(err, service.ErrTokenExpired):
		return errorResponse(c, fiber.StatusUnauthorized, client.CodeTokenExpired, "Authentication token has expired", nil)
	case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrTokenRevoked):
		return errorResponse(c, fiber.StatusUnauthorized, client.CodeInvalidToken, "Invalid authentication token", nil)
	}

	logger.ErrorContext(c.UserContext(), "Unhandled error", "path", c.Path(), "error", err)
	return errorResponse(c, fiber.StatusInternalServerError, client.CodeInternal, internalMessage, nil)
}

func fiberError(c *fiber.Ctx, fe *fiber.Error) error {
	code := client.CodeInvalidInput
	switch {
	case fe.Code == fiber.StatusUnauthorized:
		code = client.CodeUnauthorized
	case fe.Code == fiber.StatusNotFound:
		code = client.CodeNotFound
	case fe.Code >= fiber.StatusInternalServerError:
		code = client.CodeInternal
		logger.ErrorContext(c.UserContext(), "Request failed", "path", c.Path(), "error", fe)
	}
	return errorResponse(c, fe.Code, code, fe.Message, nil)
}

// ErrorHandler renders errors that escape handlers, such as unknown routes
// or recovered panics, in the same envelope.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		return respondError(c, err)
	}
}
