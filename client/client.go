// Package client is the Go SDK for a logtide server: an in-memory buffer
// of encoded log lines that flushes as a batch when it reaches the
// configured size, on a periodic tick, and on Close. Delivery is
// at-least-once: a failed batch goes back to the front of the buffer and
// is retried on the next flush, with no backoff and no bound on buffer
// growth while the endpoint stays unreachable.
package client

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/logtide/logtide/internal/codec"
)

const (
	defaultBatchCount    = 1
	defaultFlushInterval = 5 * time.Second
	defaultSource        = "go-app"
	sendTimeout          = 30 * time.Second
)

type Logger struct {
	source        string
	transport     Transport
	batchCount    int
	flushInterval time.Duration
	now           func() time.Time

	mu     sync.Mutex
	buffer []string

	wg        sync.WaitGroup
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

type Option func(*Logger)

// WithBatchCount sets how many records accumulate before an automatic
// flush. Values below one are ignored.
func WithBatchCount(n int) Option {
	return func(l *Logger) {
		if n > 0 {
			l.batchCount = n
		}
	}
}

func WithFlushInterval(d time.Duration) Option {
	return func(l *Logger) {
		if d > 0 {
			l.flushInterval = d
		}
	}
}

// WithTransport replaces the HTTP transport, mainly for tests and
// alternative delivery paths.
func WithTransport(t Transport) Option {
	return func(l *Logger) {
		l.transport = t
	}
}

// WithClock overrides the timestamp source for the encoded lines.
func WithClock(now func() time.Time) Option {
	return func(l *Logger) {
		if now != nil {
			l.now = now
		}
	}
}

// New creates a Logger shipping to the given endpoint under the given
// source label and starts its periodic flush.
func New(endpoint, source string, opts ...Option) *Logger {
	l := &Logger{
		source:        source,
		batchCount:    defaultBatchCount,
		flushInterval: defaultFlushInterval,
		now:           time.Now,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}

	for _, opt := range opts {
		opt(l)
	}

	if l.source == "" {
		l.source = defaultSource
	}
	if l.transport == nil {
		l.transport = NewHTTPTransport(endpoint)
	}

	go l.autoFlush()

	return l
}

// Record encodes one entry with the current client clock and buffers it.
// It never blocks on the network: when the buffer reaches the batch
// threshold the flush runs on its own goroutine.
func (l *Logger) Record(level, traceID, content string) {
	now := l.now()
	line := codec.Encode(
		now.Format("2006-01-02"),
		now.Format("15:04:05"),
		level, traceID, content,
	)

	l.mu.Lock()
	l.buffer = append(l.buffer, line)
	full := len(l.buffer) >= l.batchCount
	l.mu.Unlock()

	if full {
		l.wg.Add(1)
		go func() {
			defer l.wg.Done()
			l.Flush()
		}()
	}
}

// Flush drains the whole buffer and sends it as one batch. On failure the
// batch is put back in front of anything recorded since, so a later retry
// retransmits in the original order. Concurrent flushes drain disjoint
// batches; the swap under the lock makes double-draining impossible.
func (l *Logger) Flush() {
	l.mu.Lock()
	if len(l.buffer) == 0 {
		l.mu.Unlock()
		return
	}
	batch := l.buffer
	l.buffer = nil
	l.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := l.transport.Send(ctx, l.source, batch); err != nil {
		log.Printf("logtide: failed to send %d lines, requeueing: %v", len(batch), err)

		l.mu.Lock()
		requeued := make([]string, 0, len(batch)+len(l.buffer))
		requeued = append(requeued, batch...)
		requeued = append(requeued, l.buffer...)
		l.buffer = requeued
		l.mu.Unlock()
	}
}

// Close stops the periodic flush, waits for threshold-triggered sends in
// flight, and performs one final synchronous flush. Idempotent.
func (l *Logger) Close() {
	l.closeOnce.Do(func() {
		close(l.stop)
		<-l.done
		l.wg.Wait()
		l.Flush()
	})
}

func (l *Logger) autoFlush() {
	defer close(l.done)

	ticker := time.NewTicker(l.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.Flush()
		}
	}
}
