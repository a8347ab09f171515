package repository

import (
	"fmt"

	"github.com/taskmaster/tasklist/internal/infrastructure/config"
	"github.com/taskmaster/tasklist/internal/infrastructure/database"
	"github.com/taskmaster/tasklist/internal/infrastructure/logger"
	"github.com/taskmaster/tasklist/internal/ports"
)

// Opened is a task store together with the resources backing it.
// DB is nil for the json driver.
type Opened struct {
	Store ports.TaskStore
	DB    *database.DB
}

// Close releases the database connection, if any
func (o *Opened) Close() error {
	if o.DB == nil {
		return nil
	}
	return o.DB.Close()
}

// Open builds the store selected by cfg.Store.Driver
func Open(cfg *config.Config, log *logger.Logger) (*Opened, error) {
	if !cfg.Store.IsSQL() {
		return &Opened{Store: NewJSONStore(cfg.Store.Path, log)}, nil
	}

	db, err := database.New(cfg.Store.Driver, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}

	return &Opened{Store: NewSQLStore(db), DB: db}, nil
}
