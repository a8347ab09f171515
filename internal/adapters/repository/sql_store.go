package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/taskmaster/tasklist/internal/domain/entities"
	"github.com/taskmaster/tasklist/internal/infrastructure/database"
	"github.com/taskmaster/tasklist/internal/ports"
)

// SQLStore keeps the task list in the tasks table, ordered by seq.
// Save rewrites the whole table in one transaction.
type SQLStore struct {
	db *database.DB
}

// NewSQLStore creates a new SQL-backed task store
func NewSQLStore(db *database.DB) *SQLStore {
	return &SQLStore{db: db}
}

var (
	_ ports.TaskStore   = (*SQLStore)(nil)
	_ ports.Initializer = (*SQLStore)(nil)
)

// Init applies pending migrations
func (s *SQLStore) Init(ctx context.Context) error {
	if _, err := s.db.Migrate("up"); err != nil {
		return fmt.Errorf("init task table: %w", err)
	}
	return nil
}

func (s *SQLStore) Load(ctx context.Context) ([]entities.Task, error) {
	query := `SELECT id, text, details, status FROM tasks ORDER BY seq`

	tasks := []entities.Task{}
	if err := s.db.DB.SelectContext(ctx, &tasks, query); err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}

	return tasks, nil
}

func (s *SQLStore) Save(ctx context.Context, tasks []entities.Task) error {
	return s.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
			return fmt.Errorf("clear tasks: %w", err)
		}

		insert := tx.Rebind(`INSERT INTO tasks (id, seq, text, details, status) VALUES (?, ?, ?, ?, ?)`)
		for i, task := range tasks {
			if _, err := tx.ExecContext(ctx, insert, task.ID, i, task.Text, task.Details, task.Status); err != nil {
				return fmt.Errorf("insert task %s: %w", task.ID, err)
			}
		}

		return nil
	})
}
