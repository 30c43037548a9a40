package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shobhitgupta26/resumeai2-sub000/internal/analyses"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/shared/telemetry"
)

// ListStore keeps the whole history as one JSON list under StorageKey.
// Every mutation reads the full list, changes it and writes it back.
// The mutex serializes writers in this process only; two processes sharing
// a backend can still lose an update.
type ListStore struct {
	Backend Backend
	Key     string

	mu    sync.Mutex
	now   func() time.Time
	newID func(time.Time) string
}

// NewListStore constructs a ListStore over backend.
func NewListStore(backend Backend) *ListStore {
	return &ListStore{Backend: backend, Key: StorageKey, now: time.Now, newID: NewID}
}

// Save prepends a new entry stamped with the current time.
func (s *ListStore) Save(ctx context.Context, result analyses.AnalysisResult, filename string) (analyses.SavedAnalysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		return analyses.SavedAnalysis{}, err
	}
	now := s.now()
	entry := analyses.SavedAnalysis{
		ID:           s.newID(now),
		Timestamp:    now.UnixMilli(),
		Filename:     filename,
		OverallScore: result.OverallScore,
		Results:      result,
	}
	list = append([]analyses.SavedAnalysis{entry}, list...)
	if err := s.write(ctx, list); err != nil {
		return analyses.SavedAnalysis{}, err
	}
	return entry, nil
}

// List returns every entry ordered by timestamp, newest first.
func (s *ListStore) List(ctx context.Context) ([]analyses.SavedAnalysis, error) {
	list, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Timestamp > list[j].Timestamp
	})
	return list, nil
}

// Delete filters the entry out of the list. Absent ids leave the list untouched.
func (s *ListStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		return err
	}
	kept := list[:0]
	for _, entry := range list {
		if entry.ID != id {
			kept = append(kept, entry)
		}
	}
	if len(kept) == len(list) {
		return nil
	}
	return s.write(ctx, kept)
}

// Get returns the entry with id or ErrNotFound.
func (s *ListStore) Get(ctx context.Context, id string) (analyses.SavedAnalysis, error) {
	list, err := s.load(ctx)
	if err != nil {
		return analyses.SavedAnalysis{}, err
	}
	for _, entry := range list {
		if entry.ID == id {
			return entry, nil
		}
	}
	return analyses.SavedAnalysis{}, ErrNotFound
}

// load reads the stored list. A missing key is an empty history and a
// corrupt payload is logged and treated as empty.
func (s *ListStore) load(ctx context.Context) ([]analyses.SavedAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.Backend.Load(ctx, s.Key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return []analyses.SavedAnalysis{}, nil
		}
		return nil, fmt.Errorf("load history: %w", err)
	}
	var list []analyses.SavedAnalysis
	if err := json.Unmarshal(data, &list); err != nil {
		telemetry.Warn("history.corrupt_list", map[string]any{
			"key":   s.Key,
			"bytes": len(data),
			"error": err.Error(),
		})
		return []analyses.SavedAnalysis{}, nil
	}
	if list == nil {
		list = []analyses.SavedAnalysis{}
	}
	return list, nil
}

func (s *ListStore) write(ctx context.Context, list []analyses.SavedAnalysis) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := s.Backend.Put(ctx, s.Key, data); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}

var _ Store = (*ListStore)(nil)
