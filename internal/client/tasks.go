package client

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"todo-planner/internal/model"
)

// DateLayout is the day format used by the calendar query.
const DateLayout = "2006-01-02"

func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks", nil, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) GetTask(ctx context.Context, id uuid.UUID) (model.Task, error) {
	var task model.Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks/"+id.String(), nil, nil, &task); err != nil {
		return model.Task{}, err
	}
	return task, nil
}

// CalendarTasks lists tasks due between start and end, both days inclusive.
// A zero bound is left open.
func (c *Client) CalendarTasks(ctx context.Context, start, end time.Time) ([]model.Task, error) {
	query := url.Values{}
	if !start.IsZero() {
		query.Set("start_date", start.Format(DateLayout))
	}
	if !end.IsZero() {
		query.Set("end_date", end.Format(DateLayout))
	}
	var tasks []model.Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks/calendar", query, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, in model.CreateTaskInput) (model.Task, error) {
	var task model.Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", nil, in, &task); err != nil {
		return model.Task{}, err
	}
	return task, nil
}

func (c *Client) UpdateTask(ctx context.Context, id uuid.UUID, in model.UpdateTaskInput) (model.Task, error) {
	var task model.Task
	if err := c.do(ctx, http.MethodPut, "/api/tasks/"+id.String(), nil, in, &task); err != nil {
		return model.Task{}, err
	}
	return task, nil
}

func (c *Client) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+id.String(), nil, nil, nil)
}
