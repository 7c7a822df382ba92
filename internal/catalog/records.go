package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status describes the outcome of one normalization attempt.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Record is one journal row: a single probe-and-normalize attempt for one
// raw item.
type Record struct {
	ID         string
	Entity     string
	SourcePath string
	Kind       string
	OutputPath string
	Entries    int
	Status     Status
	Error      string
	CreatedAt  time.Time
}

// EntitySummary aggregates journal rows per entity.
type EntitySummary struct {
	Entity       string
	Completed    int64
	Skipped      int64
	Failed       int64
	LastActivity time.Time
}

// Append inserts a record, assigning an ID and timestamp when unset.
func (s *Store) Append(ctx context.Context, rec Record) (Record, error) {
	if s == nil || s.db == nil {
		return rec, fmt.Errorf("catalog store unavailable")
	}
	if strings.TrimSpace(rec.ID) == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if rec.Status == "" {
		rec.Status = StatusCompleted
	}

	_, err := s.execWithRetry(ctx,
		`INSERT INTO normalizations (id, entity, source_path, kind, output_path, entries, status, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Entity, rec.SourcePath, rec.Kind, rec.OutputPath, rec.Entries,
		string(rec.Status), rec.Error, rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return rec, fmt.Errorf("append record: %w", err)
	}
	return rec, nil
}

// Recent returns the newest records, optionally filtered to one entity.
// A non-positive limit defaults to 50.
func (s *Store) Recent(ctx context.Context, entity string, limit int) ([]Record, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("catalog store unavailable")
	}
	if limit <= 0 {
		limit = 50
	}
	ctx = ensureContext(ctx)

	query := `SELECT id, entity, source_path, kind, output_path, entries, status, error, created_at
		  FROM normalizations`
	args := make([]any, 0, 2)
	if strings.TrimSpace(entity) != "" {
		query += " WHERE entity = ?"
		args = append(args, entity)
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec     Record
			status  string
			created string
		)
		if err := rows.Scan(&rec.ID, &rec.Entity, &rec.SourcePath, &rec.Kind, &rec.OutputPath,
			&rec.Entries, &status, &rec.Error, &created); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.Status = Status(status)
		if ts, parseErr := time.Parse(time.RFC3339Nano, created); parseErr == nil {
			rec.CreatedAt = ts
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Summary aggregates outcomes per entity, newest activity first.
func (s *Store) Summary(ctx context.Context) ([]EntitySummary, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("catalog store unavailable")
	}
	ctx = ensureContext(ctx)

	rows, err := s.db.QueryContext(ctx,
		`SELECT entity,
			SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END),
			SUM(CASE WHEN status = 'skipped' THEN 1 ELSE 0 END),
			SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END),
			MAX(created_at)
		 FROM normalizations
		 GROUP BY entity
		 ORDER BY MAX(created_at) DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query summary: %w", err)
	}
	defer rows.Close()

	var summaries []EntitySummary
	for rows.Next() {
		var (
			summary EntitySummary
			last    string
		)
		if err := rows.Scan(&summary.Entity, &summary.Completed, &summary.Skipped, &summary.Failed, &last); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		if ts, parseErr := time.Parse(time.RFC3339Nano, last); parseErr == nil {
			summary.LastActivity = ts
		}
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

// Clear removes every journal row and reports how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("catalog store unavailable")
	}
	res, err := s.execWithRetry(ctx, "DELETE FROM normalizations")
	if err != nil {
		return 0, fmt.Errorf("clear records: %w", err)
	}
	return res.RowsAffected()
}
