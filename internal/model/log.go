package model

import (
	"errors"
	"time"
)

// LogRecord is one observation emitted by a client. Date and time are
// client-clock strings in YYYY-MM-DD and HH:MM:SS form; they are carried
// as-is and never re-interpreted server-side.
type LogRecord struct {
	Source  string `json:"source"`
	Date    string `json:"date"`
	Time    string `json:"time"`
	Level   string `json:"level"`
	TraceID string `json:"trace_id"`
	Content string `json:"content"`
}

// StoredLogRecord is a LogRecord after ingestion: the store assigns an
// identifier and its own created_at timestamp, independent of the client
// clock.
type StoredLogRecord struct {
	ID        int64     `json:"id"`
	Source    string    `json:"source"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Level     string    `json:"level"`
	TraceID   string    `json:"trace_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// QueryFilters holds the caller-supplied constraints for a log query.
// Empty fields impose no constraint; present fields are ANDed together.
type QueryFilters struct {
	Source       string
	Level        string
	TraceID      string
	StartDate    string
	EndDate      string
	ContentRegex string
	Limit        int
}

var (
	// ErrMalformedRecord means a submitted line did not decode into the
	// five tab-separated fields of the wire format.
	ErrMalformedRecord = errors.New("invalid log format")

	// ErrStorageFailure wraps errors coming out of the underlying engine.
	ErrStorageFailure = errors.New("storage failure")
)
