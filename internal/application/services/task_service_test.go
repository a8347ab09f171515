package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/tasklist/internal/adapters/repository"
	"github.com/taskmaster/tasklist/internal/domain/entities"
	"github.com/taskmaster/tasklist/internal/infrastructure/logger"
	"github.com/taskmaster/tasklist/internal/ports"
)

// countingStore wraps a store and counts saves
type countingStore struct {
	ports.TaskStore
	saves   int
	loadErr error
	saveErr error
}

func (c *countingStore) Load(ctx context.Context) ([]entities.Task, error) {
	if c.loadErr != nil {
		return nil, c.loadErr
	}
	return c.TaskStore.Load(ctx)
}

func (c *countingStore) Save(ctx context.Context, tasks []entities.Task) error {
	if c.saveErr != nil {
		return c.saveErr
	}
	c.saves++
	return c.TaskStore.Save(ctx, tasks)
}

func setupService(t *testing.T) (*TaskService, *countingStore, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tasks.json")
	store := &countingStore{TaskStore: repository.NewJSONStore(path, logger.NewNop())}
	return NewTaskService(store, logger.NewNop()), store, path
}

func strPtr(s string) *string { return &s }

func TestTaskService_FirstListOnEmptyStore(t *testing.T) {
	svc, _, path := setupService(t)

	tasks, err := svc.ListTasks(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)

	_, err = os.Stat(path)
	assert.NoError(t, err, "store document is created")
}

func TestTaskService_CreateAppliesDefaults(t *testing.T) {
	svc, _, _ := setupService(t)

	task, err := svc.CreateTask(context.Background(), ports.CreateTaskRequest{Text: "buy milk"})
	require.NoError(t, err)

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "buy milk", task.Text)
	assert.Equal(t, "", task.Details)
	assert.Equal(t, "todo", task.Status)
}

func TestTaskService_CreateKeepsSuppliedFields(t *testing.T) {
	svc, _, _ := setupService(t)

	task, err := svc.CreateTask(context.Background(), ports.CreateTaskRequest{
		Text:    "ship release",
		Details: strPtr("v1.2"),
		Status:  strPtr("waiting-on-review"),
	})
	require.NoError(t, err)
	assert.Equal(t, "v1.2", task.Details)
	assert.Equal(t, "waiting-on-review", task.Status)
}

func TestTaskService_CreateIssuesUniqueIDs(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 25; i++ {
		task, err := svc.CreateTask(ctx, ports.CreateTaskRequest{Text: fmt.Sprintf("task %d", i)})
		require.NoError(t, err)
		require.NotEmpty(t, task.ID)
		assert.False(t, seen[task.ID], "id %s issued twice", task.ID)
		seen[task.ID] = true
	}
}

func TestTaskService_CreateRegeneratesCollidingID(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	ids := []string{"same", "same", "other"}
	svc.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	first, err := svc.CreateTask(ctx, ports.CreateTaskRequest{Text: "a"})
	require.NoError(t, err)
	second, err := svc.CreateTask(ctx, ports.CreateTaskRequest{Text: "b"})
	require.NoError(t, err)

	assert.Equal(t, "same", first.ID)
	assert.Equal(t, "other", second.ID)
}

func TestTaskService_CreateWithoutTextFails(t *testing.T) {
	svc, store, _ := setupService(t)
	ctx := context.Background()

	before, err := svc.ListTasks(ctx)
	require.NoError(t, err)

	_, err = svc.CreateTask(ctx, ports.CreateTaskRequest{Text: "", Details: strPtr("no label")})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, 0, store.saves)

	after, err := svc.ListTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestTaskService_CreateThenListContainsTask(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	existing, err := svc.CreateTask(ctx, ports.CreateTaskRequest{Text: "existing"})
	require.NoError(t, err)

	before, err := svc.ListTasks(ctx)
	require.NoError(t, err)

	created, err := svc.CreateTask(ctx, ports.CreateTaskRequest{Text: "new one"})
	require.NoError(t, err)

	after, err := svc.ListTasks(ctx)
	require.NoError(t, err)

	require.Len(t, after, len(before)+1)
	assert.Equal(t, existing.ID, after[0].ID, "insertion order preserved")
	assert.Equal(t, *created, after[len(after)-1])

	matches := 0
	for _, task := range after {
		if task.ID == created.ID {
			matches++
		}
	}
	assert.Equal(t, 1, matches)
}

func TestTaskService_GetTask(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, ports.CreateTaskRequest{Text: "find me"})
	require.NoError(t, err)

	found, err := svc.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, found)

	_, err = svc.GetTask(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTaskService_PartialUpdatePreservesOtherFields(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, ports.CreateTaskRequest{Text: "a", Details: strPtr("b")})
	require.NoError(t, err)
	require.Equal(t, "todo", created.Status)

	updated, err := svc.UpdateTask(ctx, created.ID, ports.UpdateTaskRequest{Status: strPtr("done")})
	require.NoError(t, err)

	assert.Equal(t, entities.Task{ID: created.ID, Text: "a", Details: "b", Status: "done"}, *updated)

	stored, err := svc.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, stored)
}

func TestTaskService_UpdateAllFields(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, ports.CreateTaskRequest{Text: "a"})
	require.NoError(t, err)

	updated, err := svc.UpdateTask(ctx, created.ID, ports.UpdateTaskRequest{
		Text:    strPtr("renamed"),
		Details: strPtr("more"),
		Status:  strPtr("in-progress"),
	})
	require.NoError(t, err)
	assert.Equal(t, entities.Task{ID: created.ID, Text: "renamed", Details: "more", Status: "in-progress"}, *updated)
}

func TestTaskService_StatusTransitionsAreUnrestricted(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, ports.CreateTaskRequest{Text: "a"})
	require.NoError(t, err)

	for _, status := range []string{"done", "todo", "done", "anything-goes"} {
		updated, err := svc.UpdateTask(ctx, created.ID, ports.UpdateTaskRequest{Status: strPtr(status)})
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
	}
}

func TestTaskService_UpdateUnknownIDFails(t *testing.T) {
	svc, store, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.CreateTask(ctx, ports.CreateTaskRequest{Text: "a"})
	require.NoError(t, err)
	savesBefore := store.saves

	before, err := svc.ListTasks(ctx)
	require.NoError(t, err)

	_, err = svc.UpdateTask(ctx, "nope", ports.UpdateTaskRequest{Status: strPtr("done")})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, savesBefore, store.saves)

	after, err := svc.ListTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestTaskService_UpdateRejectsEmptyText(t *testing.T) {
	svc, store, _ := setupService(t)
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, ports.CreateTaskRequest{Text: "a"})
	require.NoError(t, err)
	savesBefore := store.saves

	_, err = svc.UpdateTask(ctx, created.ID, ports.UpdateTaskRequest{Text: strPtr("")})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, savesBefore, store.saves)

	_, err = svc.UpdateTask(ctx, "missing", ports.UpdateTaskRequest{Text: strPtr("")})
	assert.ErrorIs(t, err, ErrNotFound, "unknown id is reported before validation")
}

func TestTaskService_DeleteRemovesExactlyOne(t *testing.T) {
	svc, store, _ := setupService(t)
	ctx := context.Background()

	keep, err := svc.CreateTask(ctx, ports.CreateTaskRequest{Text: "keep"})
	require.NoError(t, err)
	drop, err := svc.CreateTask(ctx, ports.CreateTaskRequest{Text: "drop"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTask(ctx, drop.ID))

	tasks, err := svc.ListTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []entities.Task{*keep}, tasks)

	savesBefore := store.saves
	err = svc.DeleteTask(ctx, drop.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, savesBefore, store.saves)
}

func TestTaskService_StorageErrors(t *testing.T) {
	svc, store, _ := setupService(t)
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, ports.CreateTaskRequest{Text: "a"})
	require.NoError(t, err)

	diskErr := errors.New("permission denied")

	store.saveErr = diskErr
	_, err = svc.CreateTask(ctx, ports.CreateTaskRequest{Text: "b"})
	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, diskErr)
	_, err = svc.UpdateTask(ctx, created.ID, ports.UpdateTaskRequest{Status: strPtr("done")})
	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, svc.DeleteTask(ctx, created.ID), ErrStorage)

	store.loadErr = diskErr
	_, err = svc.ListTasks(ctx)
	assert.ErrorIs(t, err, ErrStorage)
	_, err = svc.GetTask(ctx, created.ID)
	assert.ErrorIs(t, err, ErrStorage)
}

func TestTaskService_ConcurrentCreatesAreNotLost(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.CreateTask(ctx, ports.CreateTaskRequest{Text: fmt.Sprintf("task %d", i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	tasks, err := svc.ListTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, workers)
}
