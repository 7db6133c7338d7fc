package repository

import (
	"context"

	"github.com/logtide/logtide/internal/model"
)

// CompiledQuery is the conjunction of storage-level predicates produced by
// the query engine. Zero-value fields impose no constraint. ContentLike is
// the raw substring for the content pre-filter; the repository is
// responsible for escaping it for its own containment mechanism.
type CompiledQuery struct {
	Source      string
	Level       string
	TraceID     string
	StartDate   string
	EndDate     string
	ContentLike string
	Limit       int
}

// RawResult is the outcome of an escape-hatch statement: rows for reads,
// an affected-row count for writes.
type RawResult struct {
	Rows         []map[string]interface{} `json:"rows,omitempty"`
	RowsAffected int64                    `json:"rows_affected"`
	IsRead       bool                     `json:"-"`
}

type LogRepository interface {
	Insert(ctx context.Context, rec model.LogRecord) error
	InsertBatch(ctx context.Context, recs []model.LogRecord) error
	Query(ctx context.Context, q CompiledQuery) ([]model.StoredLogRecord, error)
	RawQuery(ctx context.Context, stmt string) (*RawResult, error)
	DeleteOlderThan(ctx context.Context, cutoff string) (int64, error)
	Close() error
}
