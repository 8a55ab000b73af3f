package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"todo-planner/internal/client"
	"todo-planner/internal/logger"
	"todo-planner/internal/model"
	"todo-planner/internal/service"
)

type TaskHandler struct {
	tasks *service.TaskService
}

func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

func (h *TaskHandler) List(c *fiber.Ctx) error {
	tasks, err := h.tasks.List(c.UserContext(), claimsFrom(c).UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tasks)
}

// Calendar lists tasks due between start_date and end_date, both
// YYYY-MM-DD and inclusive. Either bound may be omitted.
func (h *TaskHandler) Calendar(c *fiber.Ctx) error {
	start, err := parseDay(c.Query("start_date"))
	if err != nil {
		return badRequest(c, "start_date must be YYYY-MM-DD")
	}
	end, err := parseDay(c.Query("end_date"))
	if err != nil {
		return badRequest(c, "end_date must be YYYY-MM-DD")
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return badRequest(c, "end_date must not be before start_date")
	}

	tasks, err := h.tasks.Calendar(c.UserContext(), claimsFrom(c).UserID, start, end)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tasks)
}

func (h *TaskHandler) Get(c *fiber.Ctx) error {
	id, err := taskID(c)
	if err != nil {
		return respondError(c, err)
	}
	task, err := h.tasks.Get(c.UserContext(), claimsFrom(c).UserID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(task)
}

func (h *TaskHandler) Create(c *fiber.Ctx) error {
	var in model.CreateTaskInput
	if err := c.BodyParser(&in); err != nil {
		logger.WarnContext(c.UserContext(), "Invalid request body", "error", err)
		return badRequest(c, "Invalid request body")
	}
	task, err := h.tasks.Create(c.UserContext(), claimsFrom(c).UserID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

func (h *TaskHandler) Update(c *fiber.Ctx) error {
	id, err := taskID(c)
	if err != nil {
		return respondError(c, err)
	}
	var in model.UpdateTaskInput
	if err := c.BodyParser(&in); err != nil {
		logger.WarnContext(c.UserContext(), "Invalid request body", "error", err)
		return badRequest(c, "Invalid request body")
	}
	if in.Empty() {
		return badRequest(c, "No fields to update")
	}
	task, err := h.tasks.Update(c.UserContext(), claimsFrom(c).UserID, id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(task)
}

func (h *TaskHandler) Delete(c *fiber.Ctx) error {
	id, err := taskID(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.tasks.Delete(c.UserContext(), claimsFrom(c).UserID, id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func taskID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid task ID")
	}
	return id, nil
}

func parseDay(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(client.DateLayout, raw)
}

func badRequest(c *fiber.Ctx, message string) error {
	return errorResponse(c, fiber.StatusBadRequest, client.CodeInvalidInput, message, nil)
}
