package ports

import (
	"context"

	"github.com/taskmaster/tasklist/internal/domain/entities"
)

// TaskStore defines the interface for whole-collection task persistence.
// Load returns the full collection in insertion order; Save replaces it.
type TaskStore interface {
	Load(ctx context.Context) ([]entities.Task, error)
	Save(ctx context.Context, tasks []entities.Task) error
}

// Initializer is implemented by stores that must create their backing
// document or schema before the first request
type Initializer interface {
	Init(ctx context.Context) error
}
