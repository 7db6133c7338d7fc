package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/logtide/logtide/internal/cache"
	"github.com/logtide/logtide/internal/codec"
	"github.com/logtide/logtide/internal/commons"
	"github.com/logtide/logtide/internal/model"
	"github.com/logtide/logtide/internal/repository"
)

// fallbackSource labels records whose batch envelope carried no source.
const fallbackSource = "unknown"

type LogService struct {
	repo  repository.LogRepository
	cache cache.Cache
}

func NewLogService(repo repository.LogRepository, cache cache.Cache) *LogService {
	return &LogService{
		repo:  repo,
		cache: cache,
	}
}

// IngestLine decodes one wire line and persists it.
func (s *LogService) IngestLine(ctx context.Context, source, line string) error {
	rec, err := codec.Decode(line, defaultSource(source))
	if err != nil {
		return err
	}
	return s.repo.Insert(ctx, rec)
}

// IngestBatch decodes every line before touching storage, so a single
// malformed line rejects the whole batch and nothing is persisted. The
// decoded records then go down as one transactional insert.
func (s *LogService) IngestBatch(ctx context.Context, source string, lines []string) (int, error) {
	recs := make([]model.LogRecord, 0, len(lines))
	for _, line := range lines {
		rec, err := codec.Decode(line, defaultSource(source))
		if err != nil {
			return 0, err
		}
		recs = append(recs, rec)
	}

	if err := s.repo.InsertBatch(ctx, recs); err != nil {
		return 0, err
	}
	return len(recs), nil
}

// Query compiles the filters into a storage query and, when a content
// regex is present, post-filters the candidates in memory. The storage
// stage only sees the pattern as a literal substring pre-filter; the
// precise match happens here. A pattern that does not compile skips the
// regex stage entirely rather than failing the request.
func (s *LogService) Query(ctx context.Context, filters model.QueryFilters) ([]model.StoredLogRecord, error) {
	key := queryCacheKey(filters)
	if cached, err := s.cache.Get(ctx, key); err == nil {
		var results []model.StoredLogRecord
		if json.Unmarshal([]byte(cached), &results) == nil {
			return results, nil
		}
	}

	compiled := repository.CompiledQuery{
		Source:      filters.Source,
		Level:       filters.Level,
		TraceID:     filters.TraceID,
		StartDate:   filters.StartDate,
		EndDate:     filters.EndDate,
		ContentLike: filters.ContentRegex,
		Limit:       filters.Limit,
	}

	results, err := s.repo.Query(ctx, compiled)
	if err != nil {
		return nil, err
	}

	if filters.ContentRegex != "" {
		if re, err := regexp.Compile(filters.ContentRegex); err == nil {
			matched := make([]model.StoredLogRecord, 0, len(results))
			for _, rec := range results {
				if re.MatchString(rec.Content) {
					matched = append(matched, rec)
				}
			}
			results = matched
		}
		// an invalid pattern falls through with the pre-filter results
	}

	if data, err := json.Marshal(results); err == nil {
		s.cache.Set(ctx, key, string(data), commons.QueryCacheExpiration)
	}

	return results, nil
}

// RawQuery hands an arbitrary statement to the storage engine. Exposing
// this outside a trusted surface is the caller's decision to gate.
func (s *LogService) RawQuery(ctx context.Context, stmt string) (*repository.RawResult, error) {
	return s.repo.RawQuery(ctx, stmt)
}

func defaultSource(source string) string {
	if source == "" {
		return fallbackSource
	}
	return source
}

func queryCacheKey(f model.QueryFilters) string {
	return fmt.Sprintf("query:%s|%s|%s|%s|%s|%s|%d",
		f.Source, f.Level, f.TraceID, f.StartDate, f.EndDate, f.ContentRegex, f.Limit)
}
