package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"todo-planner/internal/logger"
	"todo-planner/internal/model"
	"todo-planner/internal/repository"
	"todo-planner/internal/validation"
)

var ErrTaskNotFound = errors.New("task not found")

// TaskService wraps task-related business logic. Every call is scoped to
// the authenticated user.
type TaskService struct {
	taskRepo *repository.TaskRepository
}

func NewTaskService(taskRepo *repository.TaskRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo}
}

func (s *TaskService) List(ctx context.Context, userID uuid.UUID) ([]model.Task, error) {
	return s.taskRepo.ListByUser(ctx, userID)
}

func (s *TaskService) Get(ctx context.Context, userID, taskID uuid.UUID) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, userID, taskID)
	if err != nil {
		return nil, taskErr(err)
	}
	return task, nil
}

// Calendar lists tasks due on the days start through end inclusive. A zero
// bound is open.
func (s *TaskService) Calendar(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]model.Task, error) {
	var to time.Time
	if !end.IsZero() {
		to = end.AddDate(0, 0, 1)
	}
	return s.taskRepo.ListDueBetween(ctx, userID, utc(start), utc(to))
}

func (s *TaskService) Create(ctx context.Context, userID uuid.UUID, in model.CreateTaskInput) (*model.Task, error) {
	in, err := validation.CreateTask(in)
	if err != nil {
		return nil, err
	}

	task := model.Task{
		UserID:            userID,
		Title:             in.Title,
		Description:       in.Description,
		DueDate:           utcPtr(in.DueDate),
		RecurrencePattern: in.RecurrencePattern,
		RecurrenceEndDate: utcPtr(in.RecurrenceEndDate),
	}
	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "Task created", "task_id", task.ID, "user_id", userID)
	return &task, nil
}

// Update applies the non-nil fields of in. An empty description clears it.
func (s *TaskService) Update(ctx context.Context, userID, taskID uuid.UUID, in model.UpdateTaskInput) (*model.Task, error) {
	in, err := validation.UpdateTask(in)
	if err != nil {
		return nil, err
	}

	task, err := s.taskRepo.FindByID(ctx, userID, taskID)
	if err != nil {
		return nil, taskErr(err)
	}

	if in.Title != nil {
		task.Title = *in.Title
	}
	if in.Description != nil {
		if *in.Description == "" {
			task.Description = nil
		} else {
			task.Description = in.Description
		}
	}
	if in.IsCompleted != nil {
		task.IsCompleted = *in.IsCompleted
	}
	if in.DueDate != nil {
		task.DueDate = utcPtr(in.DueDate)
	}
	if in.RecurrencePattern != nil {
		task.RecurrencePattern = in.RecurrencePattern
	}
	if in.RecurrenceEndDate != nil {
		task.RecurrenceEndDate = utcPtr(in.RecurrenceEndDate)
	}

	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "Task updated", "task_id", task.ID, "user_id", userID)
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	if err := s.taskRepo.Delete(ctx, userID, taskID); err != nil {
		return taskErr(err)
	}
	logger.InfoContext(ctx, "Task deleted", "task_id", taskID, "user_id", userID)
	return nil
}

func taskErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTaskNotFound
	}
	return fmt.Errorf("task: %w", err)
}

func utc(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
