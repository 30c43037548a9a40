package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shobhitgupta26/resumeai2-sub000/internal/analyses"
)

// PGStore implements Store with one saved_analyses row per entry.
type PGStore struct {
	DB *sql.DB

	now   func() time.Time
	newID func(time.Time) string
}

// NewPGStore constructs a PGStore over an open database.
func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{DB: db, now: time.Now, newID: NewID}
}

// Save inserts a new entry.
func (s *PGStore) Save(ctx context.Context, result analyses.AnalysisResult, filename string) (analyses.SavedAnalysis, error) {
	const query = `
INSERT INTO saved_analyses (
    id,
    saved_at_ms,
    filename,
    overall_score,
    result
) VALUES ($1, $2, $3, $4, $5)`

	payload, err := json.Marshal(result)
	if err != nil {
		return analyses.SavedAnalysis{}, fmt.Errorf("encode result: %w", err)
	}
	now := s.now()
	entry := analyses.SavedAnalysis{
		ID:           s.newID(now),
		Timestamp:    now.UnixMilli(),
		Filename:     filename,
		OverallScore: result.OverallScore,
		Results:      result,
	}
	if _, err := s.DB.ExecContext(ctx, query, entry.ID, entry.Timestamp, entry.Filename, entry.OverallScore, payload); err != nil {
		return analyses.SavedAnalysis{}, err
	}
	return entry, nil
}

// List returns all entries newest first. Saves within the same millisecond
// are ordered by insertion sequence.
func (s *PGStore) List(ctx context.Context) ([]analyses.SavedAnalysis, error) {
	const query = `
SELECT id, saved_at_ms, filename, overall_score, result
FROM saved_analyses
ORDER BY saved_at_ms DESC, seq DESC`

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []analyses.SavedAnalysis{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the row if present.
func (s *PGStore) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM saved_analyses WHERE id = $1`
	_, err := s.DB.ExecContext(ctx, query, id)
	return err
}

// Get fetches one entry by id.
func (s *PGStore) Get(ctx context.Context, id string) (analyses.SavedAnalysis, error) {
	const query = `
SELECT id, saved_at_ms, filename, overall_score, result
FROM saved_analyses
WHERE id = $1`

	entry, err := scanEntry(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return analyses.SavedAnalysis{}, ErrNotFound
		}
		return analyses.SavedAnalysis{}, err
	}
	return entry, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (analyses.SavedAnalysis, error) {
	var entry analyses.SavedAnalysis
	var payload []byte
	if err := row.Scan(&entry.ID, &entry.Timestamp, &entry.Filename, &entry.OverallScore, &payload); err != nil {
		return analyses.SavedAnalysis{}, err
	}
	if err := json.Unmarshal(payload, &entry.Results); err != nil {
		return analyses.SavedAnalysis{}, fmt.Errorf("decode result for %s: %w", entry.ID, err)
	}
	return entry, nil
}

var _ Store = (*PGStore)(nil)
