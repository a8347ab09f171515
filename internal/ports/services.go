package ports

import (
	"context"

	"github.com/taskmaster/tasklist/internal/domain/entities"
)

// TaskService interface for task list operations
type TaskService interface {
	ListTasks(ctx context.Context) ([]entities.Task, error)
	GetTask(ctx context.Context, id string) (*entities.Task, error)
	CreateTask(ctx context.Context, req CreateTaskRequest) (*entities.Task, error)
	UpdateTask(ctx context.Context, id string, req UpdateTaskRequest) (*entities.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// Request types

type CreateTaskRequest struct {
	Text    string  `json:"text" validate:"required"`
	Details *string `json:"details"`
	Status  *string `json:"status"`
}

// UpdateTaskRequest carries a partial update; nil fields are left untouched
type UpdateTaskRequest struct {
	Status  *string `json:"status"`
	Text    *string `json:"text"`
	Details *string `json:"details"`
}
