package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/taskmaster/tasklist/internal/domain/entities"
	"github.com/taskmaster/tasklist/internal/infrastructure/logger"
	"github.com/taskmaster/tasklist/internal/ports"
)

const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "text"],
    "properties": {
      "id": {"type": "string", "minLength": 1},
      "text": {"type": "string"},
      "details": {"type": ["string", "null"]},
      "status": {"type": ["string", "null"]}
    }
  }
}`

var compiledDocumentSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("tasks.schema.json", strings.NewReader(documentSchema)); err != nil {
		panic(fmt.Sprintf("add task document schema: %v", err))
	}
	return compiler.MustCompile("tasks.schema.json")
}

// JSONStore persists the task list as a single pretty-printed JSON array
type JSONStore struct {
	path   string
	logger *logger.Logger
	now    func() time.Time
}

// NewJSONStore creates a store backed by the file at path
func NewJSONStore(path string, logger *logger.Logger) *JSONStore {
	return &JSONStore{
		path:   path,
		logger: logger.WithComponent("json_store"),
		now:    time.Now,
	}
}

var (
	_ ports.TaskStore   = (*JSONStore)(nil)
	_ ports.Initializer = (*JSONStore)(nil)
)

// Path returns the location of the backing document
func (s *JSONStore) Path() string {
	return s.path
}

// Init creates an empty document if none exists yet
func (s *JSONStore) Init(ctx context.Context) error {
	_, err := os.Stat(s.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat task store: %w", err)
	}

	s.logger.Infow("Creating empty task store", "path", s.path)
	return s.Save(ctx, nil)
}

// Load reads the whole collection. A missing document is created empty;
// an unreadable one is quarantined and treated as empty.
func (s *JSONStore) Load(ctx context.Context) ([]entities.Task, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := s.Init(ctx); err != nil {
			return nil, err
		}
		return []entities.Task{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read task store: %w", err)
	}

	tasks, err := decodeDocument(data)
	if err != nil {
		s.quarantine(err)
		return []entities.Task{}, nil
	}

	return tasks, nil
}

// Save replaces the document with the given collection
func (s *JSONStore) Save(ctx context.Context, tasks []entities.Task) error {
	if tasks == nil {
		tasks = []entities.Task{}
	}

	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal task store: %w", err)
	}
	data = append(data, '\n')

	if err := writeFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("write task store: %w", err)
	}

	return nil
}

func (s *JSONStore) quarantine(cause error) {
	target := fmt.Sprintf("%s.corrupt-%s", s.path, s.now().UTC().Format("20060102T150405.000000000"))

	if err := os.Rename(s.path, target); err != nil {
		s.logger.Errorw("Task store is unreadable and could not be quarantined; treating as empty",
			"path", s.path,
			"cause", cause.Error(),
			"error", err.Error(),
		)
		return
	}

	s.logger.Warnw("Task store is unreadable; quarantined and starting empty",
		"path", s.path,
		"quarantine_path", target,
		"cause", cause.Error(),
	)
}

func decodeDocument(data []byte) ([]entities.Task, error) {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse task store: %w", err)
	}

	if err := compiledDocumentSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("task store does not match schema: %w", err)
	}

	var tasks []entities.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("decode task store: %w", err)
	}

	seen := make(map[string]struct{}, len(tasks))
	for i := range tasks {
		if _, dup := seen[tasks[i].ID]; dup {
			return nil, fmt.Errorf("duplicate task id %q", tasks[i].ID)
		}
		seen[tasks[i].ID] = struct{}{}
		tasks[i].Normalize()
	}

	return tasks, nil
}

// writeFileAtomic writes to a temp file in the target directory and
// renames it into place so readers never see a partial document
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
