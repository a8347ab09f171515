package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/tasklist/internal/domain/entities"
	"github.com/taskmaster/tasklist/internal/infrastructure/logger"
)

func newJSONStore(t *testing.T) *JSONStore {
	t.Helper()
	return NewJSONStore(filepath.Join(t.TempDir(), "tasks.json"), logger.NewNop())
}

func TestJSONStore_LoadMissingCreatesEmptyDocument(t *testing.T) {
	store := newJSONStore(t)
	ctx := context.Background()

	tasks, err := store.Load(ctx)
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestJSONStore_InitKeepsExistingDocument(t *testing.T) {
	store := newJSONStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, []entities.Task{{ID: "1", Text: "a", Status: "todo"}}))
	require.NoError(t, store.Init(ctx))

	tasks, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestJSONStore_InitCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "nested", "tasks.json")
	store := NewJSONStore(path, logger.NewNop())

	require.NoError(t, store.Init(context.Background()))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestJSONStore_RoundTripPreservesOrderAndFields(t *testing.T) {
	store := newJSONStore(t)
	ctx := context.Background()

	original := []entities.Task{
		{ID: "b", Text: "second letter", Details: "", Status: "todo"},
		{ID: "a", Text: "first letter", Details: "some details", Status: "in-progress"},
		{ID: "c", Text: "third", Details: "x", Status: "done"},
	}
	require.NoError(t, store.Save(ctx, original))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, original, loaded)

	require.NoError(t, store.Save(ctx, loaded))
	again, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, original, again)
}

func TestJSONStore_SaveIsPrettyPrinted(t *testing.T) {
	store := newJSONStore(t)

	require.NoError(t, store.Save(context.Background(), []entities.Task{{ID: "1", Text: "a", Status: "todo"}}))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, "[\n  {\n    \"id\": \"1\",\n    \"text\": \"a\",\n    \"details\": \"\",\n    \"status\": \"todo\"\n  }\n]\n", string(data))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestJSONStore_LoadFillsMissingOptionalFields(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want entities.Task
	}{
		{
			name: "absent",
			doc:  `[{"id":"1","text":"hand written"}]`,
			want: entities.Task{ID: "1", Text: "hand written", Details: "", Status: entities.DefaultStatus},
		},
		{
			name: "null details",
			doc:  `[{"id":"1","text":"keep me","details":null,"status":"todo"}]`,
			want: entities.Task{ID: "1", Text: "keep me", Details: "", Status: "todo"},
		},
		{
			name: "null status",
			doc:  `[{"id":"1","text":"keep me","details":"d","status":null}]`,
			want: entities.Task{ID: "1", Text: "keep me", Details: "d", Status: entities.DefaultStatus},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newJSONStore(t)
			require.NoError(t, os.WriteFile(store.Path(), []byte(tt.doc), 0o644))

			tasks, err := store.Load(context.Background())
			require.NoError(t, err)
			require.Len(t, tasks, 1)
			assert.Equal(t, tt.want, tasks[0])

			_, err = os.Stat(store.Path())
			assert.NoError(t, err, "document must stay in place")
		})
	}
}

func TestJSONStore_CorruptDocumentIsQuarantined(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "invalid json", content: `[{"id": "1", "text": `},
		{name: "empty file", content: ``},
		{name: "object instead of array", content: `{"tasks": []}`},
		{name: "missing id", content: `[{"text": "a"}]`},
		{name: "wrong field type", content: `[{"id": "1", "text": 42}]`},
		{name: "duplicate ids", content: `[{"id": "1", "text": "a"}, {"id": "1", "text": "b"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newJSONStore(t)
			store.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
			require.NoError(t, os.WriteFile(store.Path(), []byte(tt.content), 0o644))

			tasks, err := store.Load(context.Background())
			require.NoError(t, err)
			assert.Empty(t, tasks)

			quarantined := store.Path() + ".corrupt-20240501T120000.000000000"
			data, err := os.ReadFile(quarantined)
			require.NoError(t, err, "corrupt document is preserved")
			assert.Equal(t, tt.content, string(data))

			_, err = os.Stat(store.Path())
			assert.True(t, os.IsNotExist(err), "original path is freed")
		})
	}
}

func TestJSONStore_ReadErrorPropagates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.json")
	require.NoError(t, os.Mkdir(path, 0o755))

	store := NewJSONStore(path, logger.NewNop())

	_, err := store.Load(context.Background())
	assert.Error(t, err)

	err = store.Save(context.Background(), nil)
	assert.Error(t, err)
}
