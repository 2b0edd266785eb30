// Package observability records generation-level events to SQLite.
//
// The event log is strictly optional: a nil *EventLog is a valid no-op
// receiver, and a failing store is logged via slog without ever blocking
// or failing the engine.
package observability

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/shimware/skel/idgen"
)

// Schema creates the event table. Pass to dbopen.WithSchema when opening
// the observability database.
const Schema = `
CREATE TABLE IF NOT EXISTS generation_events (
	event_id    TEXT PRIMARY KEY,
	component   TEXT NOT NULL,
	cache_key   TEXT NOT NULL DEFAULT '',
	source_mode TEXT NOT NULL DEFAULT '',
	outcome     TEXT NOT NULL,
	primitives  INTEGER NOT NULL DEFAULT 0,
	truncated   INTEGER NOT NULL DEFAULT 0,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	error       TEXT NOT NULL DEFAULT '',
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_generation_events_component
	ON generation_events(component, created_at);
`

// Outcome values for generation events.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeFallback = "fallback"
	OutcomeCacheHit = "cache_hit"
)

// GenerationEvent is one recorded generation attempt.
type GenerationEvent struct {
	Component  string
	CacheKey   string
	SourceMode string // "live" or "static"
	Outcome    string
	Primitives int
	Truncated  bool
	DurationMs int64
	Error      string
}

// StoredEvent is a GenerationEvent as read back from the log.
type StoredEvent struct {
	EventID   string `json:"event_id"`
	CreatedAt int64  `json:"created_at"` // epoch milliseconds
	GenerationEvent
}

// EventLog persists generation events.
type EventLog struct {
	db     *sql.DB
	newID  idgen.Generator
	logger *slog.Logger
}

// Option configures an EventLog.
type Option func(*EventLog)

// WithIDGenerator sets a custom ID generator for event IDs.
func WithIDGenerator(gen idgen.Generator) Option {
	return func(l *EventLog) { l.newID = gen }
}

// NewEventLog creates an event log over db. The Schema must already be
// applied (dbopen.WithSchema).
func NewEventLog(db *sql.DB, logger *slog.Logger, opts ...Option) *EventLog {
	if logger == nil {
		logger = slog.Default()
	}
	l := &EventLog{
		db:     db,
		newID:  idgen.Prefixed("evt_", idgen.Default),
		logger: logger,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Record writes one event. Errors are logged, never propagated: a broken
// observability store must not break spec generation.
func (l *EventLog) Record(ctx context.Context, ev GenerationEvent) {
	if l == nil || l.db == nil {
		return
	}
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO generation_events
			(event_id, component, cache_key, source_mode, outcome,
			 primitives, truncated, duration_ms, error, created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		l.newID(), ev.Component, ev.CacheKey, ev.SourceMode, ev.Outcome,
		ev.Primitives, boolInt(ev.Truncated), ev.DurationMs, ev.Error,
		time.Now().UnixMilli(),
	)
	if err != nil {
		l.logger.Error("observability: record event failed", "component", ev.Component, "error", err)
	}
}

// Recent returns the newest events, most recent first.
func (l *EventLog) Recent(ctx context.Context, limit int) ([]StoredEvent, error) {
	if l == nil || l.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := l.db.QueryContext(ctx, `
		SELECT event_id, component, cache_key, source_mode, outcome,
		       primitives, truncated, duration_ms, error, created_at
		FROM generation_events
		ORDER BY created_at DESC, event_id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredEvent
	for rows.Next() {
		var ev StoredEvent
		var truncated int
		if err := rows.Scan(
			&ev.EventID, &ev.Component, &ev.CacheKey, &ev.SourceMode, &ev.Outcome,
			&ev.Primitives, &truncated, &ev.DurationMs, &ev.Error, &ev.CreatedAt,
		); err != nil {
			return nil, err
		}
		ev.Truncated = truncated != 0
		out = append(out, ev)
	}
	return out, rows.Err()
}

// CountByOutcome aggregates event totals per outcome.
func (l *EventLog) CountByOutcome(ctx context.Context) (map[string]int64, error) {
	if l == nil || l.db == nil {
		return map[string]int64{}, nil
	}
	rows, err := l.db.QueryContext(ctx, `
		SELECT outcome, COUNT(*) FROM generation_events GROUP BY outcome`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var outcome string
		var n int64
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, err
		}
		out[outcome] = n
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
