package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/logtide/logtide/internal/model"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS logs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	source TEXT NOT NULL,
	date TEXT NOT NULL,
	time TEXT NOT NULL,
	level TEXT NOT NULL,
	trace_id TEXT,
	content TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_logs_source ON logs(source);
CREATE INDEX IF NOT EXISTS idx_logs_date ON logs(date);
CREATE INDEX IF NOT EXISTS idx_logs_level ON logs(level);
CREATE INDEX IF NOT EXISTS idx_logs_trace_id ON logs(trace_id);
CREATE INDEX IF NOT EXISTS idx_logs_created_at ON logs(created_at);
`

const insertQuery = `
	INSERT INTO logs (source, date, time, level, trace_id, content)
	VALUES (?, ?, ?, ?, ?, ?)
`

const selectColumns = `id, source, date, time, level, trace_id, content, created_at`

// SQLiteLogRepository is the durable log store: one append-only table with
// lookup indexes on the filterable columns, backed by an embedded SQLite
// database under the configured data directory.
type SQLiteLogRepository struct {
	db *sql.DB
}

func NewSQLiteLogRepository(dataDir string) (*SQLiteLogRepository, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, "logs.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL keeps readers from blocking behind batch inserts
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteLogRepository{db: db}, nil
}

func (r *SQLiteLogRepository) Insert(ctx context.Context, rec model.LogRecord) error {
	_, err := r.db.ExecContext(ctx, insertQuery,
		rec.Source, rec.Date, rec.Time, rec.Level, nullable(rec.TraceID), rec.Content,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrStorageFailure, err)
	}
	return nil
}

// InsertBatch inserts all records in one transaction: either every record
// becomes visible or none does.
func (r *SQLiteLogRepository) InsertBatch(ctx context.Context, recs []model.LogRecord) error {
	if len(recs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrStorageFailure, err)
	}

	stmt, err := tx.PrepareContext(ctx, insertQuery)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("%w: %v", model.ErrStorageFailure, err)
	}
	defer stmt.Close()

	for _, rec := range recs {
		if _, err := stmt.ExecContext(ctx,
			rec.Source, rec.Date, rec.Time, rec.Level, nullable(rec.TraceID), rec.Content,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("%w: %v", model.ErrStorageFailure, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", model.ErrStorageFailure, err)
	}
	return nil
}

// Query runs the compiled filter conjunction, newest date/time first.
func (r *SQLiteLogRepository) Query(ctx context.Context, q CompiledQuery) ([]model.StoredLogRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM logs WHERE 1=1`
	var params []interface{}

	if q.Source != "" {
		query += " AND source = ?"
		params = append(params, q.Source)
	}
	if q.Level != "" {
		query += " AND level = ?"
		params = append(params, q.Level)
	}
	if q.TraceID != "" {
		query += " AND trace_id = ?"
		params = append(params, q.TraceID)
	}
	if q.StartDate != "" {
		query += " AND date >= ?"
		params = append(params, q.StartDate)
	}
	if q.EndDate != "" {
		query += " AND date <= ?"
		params = append(params, q.EndDate)
	}
	if q.ContentLike != "" {
		query += ` AND content LIKE ? ESCAPE '\'`
		params = append(params, "%"+escapeLike(q.ContentLike)+"%")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	query += " ORDER BY date DESC, time DESC LIMIT ?"
	params = append(params, limit)

	rows, err := r.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrStorageFailure, err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// RawQuery executes an arbitrary statement. Reads return the rows as
// generic column maps; anything else returns the affected-row count.
// There is deliberately no sanitization here: this is the escape hatch,
// and restricting access to it is the caller's job.
func (r *SQLiteLogRepository) RawQuery(ctx context.Context, stmt string) (*RawResult, error) {
	if isReadStatement(stmt) {
		rows, err := r.db.QueryContext(ctx, stmt)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrStorageFailure, err)
		}
		defer rows.Close()

		out, err := scanGenericRows(rows)
		if err != nil {
			return nil, err
		}
		return &RawResult{Rows: out, IsRead: true}, nil
	}

	res, err := r.db.ExecContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrStorageFailure, err)
	}
	affected, _ := res.RowsAffected()
	return &RawResult{RowsAffected: affected}, nil
}

// DeleteOlderThan removes every record whose client date sorts strictly
// before the cutoff. Lexicographic comparison on YYYY-MM-DD strings matches
// calendar order.
func (r *SQLiteLogRepository) DeleteOlderThan(ctx context.Context, cutoff string) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM logs WHERE date < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", model.ErrStorageFailure, err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", model.ErrStorageFailure, err)
	}
	return deleted, nil
}

func (r *SQLiteLogRepository) Close() error {
	return r.db.Close()
}

// DefaultQueryLimit caps a query when the caller does not supply a limit.
const DefaultQueryLimit = 1000

func isReadStatement(stmt string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(stmt)), "SELECT")
}

// escapeLike makes the pre-filter substring match literally: without this a
// % or _ in the pattern would widen the LIKE and a backslash would be taken
// as the escape character, either of which could drop rows the in-memory
// regex stage would have matched.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func scanRecords(rows *sql.Rows) ([]model.StoredLogRecord, error) {
	records := []model.StoredLogRecord{}
	for rows.Next() {
		var rec model.StoredLogRecord
		var traceID sql.NullString
		var createdAt string

		err := rows.Scan(&rec.ID, &rec.Source, &rec.Date, &rec.Time, &rec.Level, &traceID, &rec.Content, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrStorageFailure, err)
		}

		if traceID.Valid {
			rec.TraceID = traceID.String
		}
		rec.CreatedAt, err = time.Parse("2006-01-02 15:04:05", createdAt)
		if err != nil {
			return nil, fmt.Errorf("%w: unexpected created_at %q: %v", model.ErrStorageFailure, createdAt, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrStorageFailure, err)
	}
	return records, nil
}

func scanGenericRows(rows *sql.Rows) ([]map[string]interface{}, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrStorageFailure, err)
	}

	out := []map[string]interface{}{}
	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrStorageFailure, err)
		}

		row := make(map[string]interface{}, len(cols))
		for i, col := range cols {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[col] = v
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrStorageFailure, err)
	}
	return out, nil
}
