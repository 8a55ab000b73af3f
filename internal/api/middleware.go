package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"todo-planner/internal/client"
	"todo-planner/internal/logger"
	"todo-planner/internal/service"
)

const (
	RequestIDHeader = "X-Request-ID"

	localsRequestID = "request_id"
	localsClaims    = "claims"
)

// RequestID assigns every request an id, reusing the client's when sent.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDHeader, requestID)
		c.SetUserContext(logger.ContextWithRequestID(c.UserContext(), requestID))
		c.Locals(localsRequestID, requestID)
		return c.Next()
	}
}

// Logger logs the start and completion of every request.
func Logger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		logger.DebugContext(c.UserContext(), "Request started",
			"method", c.Method(),
			"path", c.Path(),
			"ip", c.IP(),
		)

		err := c.Next()
		if err != nil {
			// Render now so the logged status is the one sent.
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
			err = nil
		}

		status := c.Response().StatusCode()
		logFunc := logger.InfoContext
		switch {
		case status >= 500:
			logFunc = logger.ErrorContext
		case status >= 400:
			logFunc = logger.WarnContext
		}
		logFunc(c.UserContext(), "Request completed",
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", time.Since(start).String(),
			"bytes", len(c.Response().Body()),
		)
		return err
	}
}

// Protected rejects requests without a valid bearer token and stores the
// token claims for the handlers.
func Protected(auth *service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return errorResponse(c, fiber.StatusUnauthorized, client.CodeUnauthorized, "Authentication required", nil)
		}

		claims, err := auth.ParseToken(c.UserContext(), token)
		if err != nil {
			logger.WarnContext(c.UserContext(), "Token validation failed", "error", err)
			return respondError(c, err)
		}

		c.Locals(localsClaims, claims)
		return c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func claimsFrom(c *fiber.Ctx) service.Claims {
	claims, _ := c.Locals(localsClaims).(service.Claims)
	return claims
}
