package history

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shobhitgupta26/resumeai2-sub000/internal/shared/storage/object/local"
)

func exerciseBackend(t *testing.T, backend Backend) {
	t.Helper()
	ctx := context.Background()

	_, err := backend.Load(ctx, StorageKey)
	require.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, backend.Put(ctx, StorageKey, []byte(`[]`)))
	require.NoError(t, backend.Put(ctx, StorageKey, []byte(`[{"id":"a"}]`)))

	got, err := backend.Load(ctx, StorageKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"a"}]`, string(got))
}

func TestMemoryBackend(t *testing.T) {
	exerciseBackend(t, NewMemoryBackend())
}

func TestMemoryBackendCopiesData(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	data := []byte(`[1]`)
	require.NoError(t, b.Put(ctx, "k", data))
	data[1] = '2'

	got, err := b.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(got))
}

func TestFileBackend(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "history")
	exerciseBackend(t, NewFileBackend(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
	assert.Equal(t, StorageKey+".json", entries[0].Name())
}

func TestFileBackendRejectsTraversal(t *testing.T) {
	b := NewFileBackend(t.TempDir())
	err := b.Put(context.Background(), "../escape", []byte("x"))
	assert.Error(t, err)
}

func TestObjectBackend(t *testing.T) {
	store := local.New(t.TempDir())
	exerciseBackend(t, NewObjectBackend(store))
}

func TestListStoreOverFileBackend(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first := NewListStore(NewFileBackend(dir))
	saved, err := first.Save(ctx, result(77), "cv.docx")
	require.NoError(t, err)

	reopened := NewListStore(NewFileBackend(dir))
	got, err := reopened.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, 77, got.OverallScore)
	assert.Equal(t, "cv.docx", got.Filename)
}

type fakeRedis struct {
	values map[string]string
	err    error
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	switch v := value.(type) {
	case []byte:
		f.values[key] = string(v)
	case string:
		f.values[key] = v
	}
	return redis.NewStatusResult("OK", nil)
}

func TestRedisBackend(t *testing.T) {
	client := &fakeRedis{values: map[string]string{}}
	exerciseBackend(t, &RedisBackend{Client: client, Prefix: "resumeai:"})

	_, ok := client.values["resumeai:"+StorageKey]
	assert.True(t, ok, "key must be namespaced by prefix")
}

func TestRedisBackendErrors(t *testing.T) {
	boom := errors.New("connection refused")
	b := &RedisBackend{Client: &fakeRedis{err: boom}}
	ctx := context.Background()

	_, err := b.Load(ctx, StorageKey)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrKeyNotFound)
	assert.ErrorIs(t, b.Put(ctx, StorageKey, []byte("[]")), boom)
}

func TestNewRedisBackendBadURL(t *testing.T) {
	_, _, err := NewRedisBackend(context.Background(), "not-a-redis-url")
	assert.Error(t, err)
}
