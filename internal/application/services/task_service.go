package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/taskmaster/tasklist/internal/domain/entities"
	"github.com/taskmaster/tasklist/internal/infrastructure/logger"
	"github.com/taskmaster/tasklist/internal/ports"
)

var (
	// ErrValidation is returned when a request is missing a required field
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when no task has the requested id
	ErrNotFound = errors.New("task not found")
	// ErrStorage wraps failures reading or writing the task store
	ErrStorage = errors.New("task storage failure")
)

// TaskService handles task list operations. Every operation re-reads the
// full collection; mutations hold mu across load, mutate and save.
type TaskService struct {
	store  ports.TaskStore
	logger *logger.Logger
	newID  func() string

	mu sync.Mutex
}

// NewTaskService creates a new task service
func NewTaskService(store ports.TaskStore, logger *logger.Logger) *TaskService {
	return &TaskService{
		store:  store,
		logger: logger,
		newID:  uuid.NewString,
	}
}

var _ ports.TaskService = (*TaskService)(nil)

// ListTasks returns the whole collection in insertion order
func (s *TaskService) ListTasks(ctx context.Context) ([]entities.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx)
}

// GetTask returns a single task by id
func (s *TaskService) GetTask(ctx context.Context, id string) (*entities.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	i := indexOf(tasks, id)
	if i < 0 {
		return nil, fmt.Errorf("get task %s: %w", id, ErrNotFound)
	}

	task := tasks[i]
	return &task, nil
}

// CreateTask appends a new task with a fresh id
func (s *TaskService) CreateTask(ctx context.Context, req ports.CreateTaskRequest) (*entities.Task, error) {
	if req.Text == "" {
		return nil, fmt.Errorf("text is required: %w", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	id := s.newID()
	for indexOf(tasks, id) >= 0 {
		id = s.newID()
	}

	task := entities.NewTask(id, req.Text, req.Details, req.Status)
	tasks = append(tasks, *task)

	if err := s.save(ctx, tasks); err != nil {
		return nil, err
	}

	s.logger.LogTaskAction("create", task.ID, map[string]interface{}{"status": task.Status})

	return task, nil
}

// UpdateTask overwrites the fields present in req on an existing task
func (s *TaskService) UpdateTask(ctx context.Context, id string, req ports.UpdateTaskRequest) (*entities.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	i := indexOf(tasks, id)
	if i < 0 {
		return nil, fmt.Errorf("update task %s: %w", id, ErrNotFound)
	}

	if req.Text != nil && *req.Text == "" {
		return nil, fmt.Errorf("text must not be empty: %w", ErrValidation)
	}

	tasks[i].Apply(req.Text, req.Details, req.Status)

	if err := s.save(ctx, tasks); err != nil {
		return nil, err
	}

	s.logger.LogTaskAction("update", id, map[string]interface{}{"status": tasks[i].Status})

	task := tasks[i]
	return &task, nil
}

// DeleteTask removes the task with the given id
func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.load(ctx)
	if err != nil {
		return err
	}

	remaining := make([]entities.Task, 0, len(tasks))
	for _, task := range tasks {
		if task.ID != id {
			remaining = append(remaining, task)
		}
	}

	if len(remaining) == len(tasks) {
		return fmt.Errorf("delete task %s: %w", id, ErrNotFound)
	}

	if err := s.save(ctx, remaining); err != nil {
		return err
	}

	s.logger.LogTaskAction("delete", id, nil)

	return nil
}

func (s *TaskService) load(ctx context.Context) ([]entities.Task, error) {
	tasks, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if tasks == nil {
		tasks = []entities.Task{}
	}
	return tasks, nil
}

func (s *TaskService) save(ctx context.Context, tasks []entities.Task) error {
	if err := s.store.Save(ctx, tasks); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return nil
}

func indexOf(tasks []entities.Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}
