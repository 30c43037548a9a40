package history

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shobhitgupta26/resumeai2-sub000/internal/analyses"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/shared/telemetry"
)

func newTestListStore(backend Backend) *ListStore {
	s := NewListStore(backend)
	clock := time.UnixMilli(1_700_000_000_000)
	seq := 0
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	s.newID = func(now time.Time) string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}
	return s
}

func result(score int) analyses.AnalysisResult {
	r := analyses.Validate(map[string]any{})
	r.OverallScore = score
	return r
}

func TestListStoreSaveListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestListStore(NewMemoryBackend())

	first, err := s.Save(ctx, result(50), "first.pdf")
	require.NoError(t, err)
	second, err := s.Save(ctx, result(80), "second.pdf")
	require.NoError(t, err)

	assert.Equal(t, "id-1", first.ID)
	assert.Equal(t, 80, second.OverallScore)
	assert.Greater(t, second.Timestamp, first.Timestamp)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, []string{"id-2", "id-1"}, []string{list[0].ID, list[1].ID})
	assert.Equal(t, "second.pdf", list[0].Filename)
	assert.Equal(t, 80, list[0].Results.OverallScore)
}

func TestListStoreListEmpty(t *testing.T) {
	s := newTestListStore(NewMemoryBackend())
	list, err := s.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestListStoreDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	s := newTestListStore(backend)

	a, err := s.Save(ctx, result(10), "a")
	require.NoError(t, err)
	b, err := s.Save(ctx, result(20), "b")
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, a.ID))
	before, err := backend.Load(ctx, StorageKey)
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, a.ID))
	require.NoError(t, s.Delete(ctx, "never-existed"))
	after, err := backend.Load(ctx, StorageKey)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)
}

func TestListStoreGet(t *testing.T) {
	ctx := context.Background()
	s := newTestListStore(NewMemoryBackend())
	saved, err := s.Save(ctx, result(64), "resume.pdf")
	require.NoError(t, err)

	got, err := s.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved, got)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListStoreCorruptListTreatedAsEmpty(t *testing.T) {
	var logs strings.Builder
	restore := telemetry.SetOutput(&logs)
	defer restore()

	ctx := context.Background()
	backend := NewMemoryBackend()
	require.NoError(t, backend.Put(ctx, StorageKey, []byte("{not a list")))
	s := newTestListStore(backend)

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Contains(t, logs.String(), "history.corrupt_list")

	_, err = s.Save(ctx, result(1), "fresh")
	require.NoError(t, err)
	list, err = s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestListStoreNullPayload(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	require.NoError(t, backend.Put(ctx, StorageKey, []byte("null")))
	list, err := newTestListStore(backend).List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)
}

type failingBackend struct{ err error }

func (f failingBackend) Load(ctx context.Context, key string) ([]byte, error) { return nil, f.err }
func (f failingBackend) Put(ctx context.Context, key string, data []byte) error {
	return f.err
}

func TestListStoreBackendErrors(t *testing.T) {
	restore := telemetry.SetOutput(io.Discard)
	defer restore()

	boom := errors.New("backend down")
	s := newTestListStore(failingBackend{err: boom})
	ctx := context.Background()

	_, err := s.Save(ctx, result(1), "x")
	assert.ErrorIs(t, err, boom)
	_, err = s.List(ctx)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, s.Delete(ctx, "x"), boom)
	_, err = s.Get(ctx, "x")
	assert.ErrorIs(t, err, boom)
}

func TestListStoreSortsExternallyWrittenEntries(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	payload := `[{"id":"old","timestamp":100,"filename":"o","overallScore":1,"results":{}},{"id":"new","timestamp":200,"filename":"n","overallScore":2,"results":{}}]`
	require.NoError(t, backend.Put(ctx, StorageKey, []byte(payload)))

	list, err := newTestListStore(backend).List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].ID)
}

func TestListStoreConcurrentSavesInProcess(t *testing.T) {
	ctx := context.Background()
	s := NewListStore(NewMemoryBackend())

	const n = 20
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func(i int) {
			_, err := s.Save(ctx, result(i), fmt.Sprintf("r%d", i))
			errs <- err
		}(i)
	}
	for i := 0; i < n; i++ {
		require.NoError(t, <-errs)
	}
	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, n)
}

func TestNewID(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	id := NewID(now)
	assert.True(t, strings.HasPrefix(id, "loyw3v28"), id)
	assert.Len(t, id, len("loyw3v28")+9)
	assert.NotEqual(t, id, NewID(now))
}
