// Package analytics captures every user interaction and pipeline event —
// research runs, expert votes, selections, deliveries, and preference
// changes — into durable storage for historical analysis. Writes are
// fire-and-forget: a slow or unavailable analytics database must never
// block or fail the briefing pipeline that produced the event.
package analytics

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// execer is the subset of *db.Pool that Writer needs, narrowed to an
// interface so tests can exercise the queue/drain logic against a fake
// without a live Postgres connection.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var schemaSQL = []string{
	`CREATE TABLE IF NOT EXISTS analytics_events (
		id BIGSERIAL PRIMARY KEY,
		user_id TEXT NOT NULL,
		request_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		payload JSONB NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS analytics_events_user_idx ON analytics_events (user_id, recorded_at)`,
	`CREATE INDEX IF NOT EXISTS analytics_events_request_idx ON analytics_events (request_id)`,
}

// Migrate creates the analytics schema if it doesn't already exist.
func Migrate(ctx context.Context, pool execer) error {
	for _, stmt := range schemaSQL {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Event is one recordable analytics touchpoint.
type Event struct {
	UserID    string
	RequestID string
	EventType string
	Payload   []byte // JSON-encoded
}

// Writer batches Events onto a bounded channel and drains them to
// Postgres from a single background goroutine, so a burst of pipeline
// activity never opens one connection per event. Events are dropped
// (and logged) when the queue is full rather than blocking the caller.
type Writer struct {
	pool   execer
	log    *slog.Logger
	events chan Event
	done   chan struct{}
}

// NewWriter starts a Writer with the given queue depth. Call Close to
// drain remaining events and stop the background goroutine.
func NewWriter(pool execer, logger *slog.Logger, queueDepth int) *Writer {
	w := &Writer{
		pool:   pool,
		log:    logger,
		events: make(chan Event, queueDepth),
		done:   make(chan struct{}),
	}
	go w.run()
	return w
}

// Record enqueues an event without blocking; if the queue is full, the
// event is dropped and a warning is logged rather than back-pressuring
// the caller.
func (w *Writer) Record(e Event) {
	select {
	case w.events <- e:
	default:
		w.log.Warn("analytics queue full, dropping event", "event_type", e.EventType, "user_id", e.UserID)
	}
}

func (w *Writer) run() {
	defer close(w.done)
	for e := range w.events {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_, err := w.pool.Exec(ctx,
			`INSERT INTO analytics_events (user_id, request_id, event_type, payload) VALUES ($1, $2, $3, $4)`,
			e.UserID, e.RequestID, e.EventType, e.Payload)
		cancel()
		if err != nil {
			w.log.Warn("analytics write failed", "event_type", e.EventType, "error", err)
		}
	}
}

// Close stops accepting new events and waits for the queue to drain.
func (w *Writer) Close() {
	close(w.events)
	<-w.done
}

// CleanupOldRecords deletes analytics_events older than retentionDays,
// returning the number of rows removed.
func CleanupOldRecords(ctx context.Context, pool execer, retentionDays int) (int64, error) {
	tag, err := pool.Exec(ctx,
		`DELETE FROM analytics_events WHERE recorded_at < now() - ($1 || ' days')::interval`,
		retentionDays)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
