package service

import (
	"context"

	"github.com/logtide/logtide/internal/model"
	"github.com/logtide/logtide/internal/repository"
)

type LogServiceInterface interface {
	IngestLine(ctx context.Context, source, line string) error
	IngestBatch(ctx context.Context, source string, lines []string) (int, error)
	Query(ctx context.Context, filters model.QueryFilters) ([]model.StoredLogRecord, error)
	RawQuery(ctx context.Context, stmt string) (*repository.RawResult, error)
}
