// Package store keeps the client-side list of tasks for one session and
// mediates every write to the API.
package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"todo-planner/internal/client"
	"todo-planner/internal/model"
	"todo-planner/internal/validation"
)

// ErrTaskNotFound is returned for operations on a task that is not in the
// local list.
var ErrTaskNotFound = errors.New("task not found")

// API is the part of the REST client the store depends on.
type API interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
	CreateTask(ctx context.Context, in model.CreateTaskInput) (model.Task, error)
	UpdateTask(ctx context.Context, id uuid.UUID, in model.UpdateTaskInput) (model.Task, error)
	DeleteTask(ctx context.Context, id uuid.UUID) error
}

// State is a snapshot of the store. Tasks is a copy owned by the caller.
type State struct {
	Tasks     []model.Task
	IsLoading bool
	Err       error
	Selected  *model.Task
	// Version changes whenever Tasks changes.
	Version uint64
}

type Store struct {
	api    API
	logger *slog.Logger

	mu         sync.Mutex
	tasks      []model.Task
	loading    int
	fetchSeq   uint64
	lastErr    error
	selectedID uuid.UUID
	version    uint64
	inflight   map[uuid.UUID]int
	closed     bool
}

type Option func(*Store)

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func New(api API, opts ...Option) *Store {
	s := &Store{
		api:      api,
		logger:   slog.Default().With("component", "task_store"),
		tasks:    []model.Task{},
		inflight: make(map[uuid.UUID]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchAll replaces the list with the server's. The previous error is
// cleared when the fetch starts; a failure is kept in State().Err and the
// cached list is left as it was.
func (s *Store) FetchAll(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.loading++
	s.fetchSeq++
	seq := s.fetchSeq
	s.lastErr = nil
	s.mu.Unlock()

	tasks, err := s.api.ListTasks(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading--
	if s.closed || seq != s.fetchSeq {
		return
	}
	if err != nil {
		s.lastErr = err
		s.logger.WarnContext(ctx, "Failed to fetch tasks", "error", err)
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	s.tasks = tasks
	s.lastErr = nil
	s.version++
}

// Create sends a new task and appends the server's copy on success.
func (s *Store) Create(ctx context.Context, in model.CreateTaskInput) (model.Task, error) {
	in, err := validation.CreateTask(in)
	if err != nil {
		return model.Task{}, client.ValidationError(err)
	}

	task, err := s.api.CreateTask(ctx, in)
	if err != nil {
		return model.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return task, nil
	}
	s.tasks = append(s.tasks, task)
	s.version++
	return task, nil
}

// Update sends a partial update and replaces the local task with the
// server's copy on success.
func (s *Store) Update(ctx context.Context, id uuid.UUID, in model.UpdateTaskInput) (model.Task, error) {
	in, err := validation.UpdateTask(in)
	if err != nil {
		return model.Task{}, client.ValidationError(err)
	}

	task, err := s.api.UpdateTask(ctx, id, in)
	if err != nil {
		return model.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return task, nil
	}
	s.replace(task)
	return task, nil
}

// Delete removes the task once the server confirms.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.api.DeleteTask(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	if i := s.indexOf(id); i >= 0 {
		s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
		s.version++
	}
	if s.selectedID == id {
		s.selectedID = uuid.Nil
	}
	return nil
}

// ToggleCompletion flips the task locally before the request is sent. On
// failure the completion flag is restored to the value this call captured.
// On success the server's copy is applied unless a later toggle of the
// same task is still in flight.
func (s *Store) ToggleCompletion(ctx context.Context, id uuid.UUID) (model.Task, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return model.Task{}, ErrTaskNotFound
	}
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return model.Task{}, ErrTaskNotFound
	}
	prev := s.tasks[i]
	next := prev
	next.IsCompleted = !prev.IsCompleted
	s.tasks[i] = next
	s.inflight[id]++
	s.version++
	s.mu.Unlock()

	completed := next.IsCompleted
	task, err := s.api.UpdateTask(ctx, id, model.UpdateTaskInput{IsCompleted: &completed})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight[id]--
	pending := s.inflight[id]
	if pending == 0 {
		delete(s.inflight, id)
	}
	if s.closed {
		if err != nil {
			return model.Task{}, err
		}
		return task, nil
	}

	if err != nil {
		// Only the completion flag is restored; other fields may already
		// hold a newer server copy.
		if j := s.indexOf(id); j >= 0 && s.tasks[j].IsCompleted != prev.IsCompleted {
			s.tasks[j].IsCompleted = prev.IsCompleted
			s.version++
		}
		s.logger.WarnContext(ctx, "Toggle failed, restored task", "task_id", id, "error", err)
		return model.Task{}, err
	}

	if pending == 0 {
		s.replace(task)
	}
	return task, nil
}

// Select marks a task as selected. Unknown ids are ignored.
func (s *Store) Select(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(id) >= 0 {
		s.selectedID = id
	}
}

func (s *Store) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedID = uuid.Nil
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{
		Tasks:     s.snapshot(),
		IsLoading: s.loading > 0,
		Err:       s.lastErr,
		Version:   s.version,
	}
	if i := s.indexOf(s.selectedID); i >= 0 && s.selectedID != uuid.Nil {
		selected := s.tasks[i]
		st.Selected = &selected
	}
	return st
}

// Tasks returns a copy of the current list.
func (s *Store) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Find returns the local copy of a task.
func (s *Store) Find(id uuid.UUID) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.tasks[i], true
	}
	return model.Task{}, false
}

func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Close detaches the store. Results of requests still in flight are
// discarded.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *Store) snapshot() []model.Task {
	out := make([]model.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *Store) indexOf(id uuid.UUID) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) replace(task model.Task) {
	if i := s.indexOf(task.ID); i >= 0 {
		s.tasks[i] = task
		s.version++
	}
}
