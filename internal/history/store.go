package history

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shobhitgupta26/resumeai2-sub000/internal/analyses"
)

// StorageKey is the well-known key the serialized history list lives under.
const StorageKey = "resume-analyses"

var (
	// ErrNotFound is returned by Get when no entry has the id.
	ErrNotFound = errors.New("saved analysis not found")
	// ErrKeyNotFound is returned by a Backend when the key has never been written.
	ErrKeyNotFound = errors.New("key not found")
)

// Store persists completed analyses.
type Store interface {
	Save(ctx context.Context, result analyses.AnalysisResult, filename string) (analyses.SavedAnalysis, error)
	// List returns every entry, most recent first.
	List(ctx context.Context) ([]analyses.SavedAnalysis, error)
	// Delete removes the entry; deleting an absent id is not an error.
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (analyses.SavedAnalysis, error)
}

// Backend is a byte-oriented key value store holding whole serialized lists.
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
}

// NewID returns a base-36 millisecond timestamp joined to a 9 character random suffix.
// Uniqueness is probabilistic, not guaranteed.
func NewID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return strconv.FormatInt(now.UnixMilli(), 36) + suffix
}
