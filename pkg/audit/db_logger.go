package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS audit_events (
	id          UUID PRIMARY KEY,
	timestamp   TIMESTAMP WITH TIME ZONE NOT NULL,
	event_type  VARCHAR(100) NOT NULL,
	status      VARCHAR(20) NOT NULL,
	subject     VARCHAR(255),
	slug        VARCHAR(64) NOT NULL,
	request_id  VARCHAR(100),
	message     TEXT,
	metadata    JSONB
);
CREATE INDEX IF NOT EXISTS idx_audit_events_timestamp ON audit_events(timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_audit_events_slug ON audit_events(slug);
`

// DBLogger implements audit logging to PostgreSQL
type DBLogger struct {
	db *sql.DB
}

// NewDBLogger creates a database audit logger, creating its table if needed
func NewDBLogger(ctx context.Context, db *sql.DB) (*DBLogger, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		return nil, fmt.Errorf("failed to ensure audit_events table: %w", err)
	}
	return &DBLogger{db: db}, nil
}

// Log inserts event
func (l *DBLogger) Log(ctx context.Context, event *Event) error {
	var metadata []byte
	if len(event.Metadata) > 0 {
		var err error
		metadata, err = json.Marshal(event.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
	}

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO audit_events (
			id, timestamp, event_type, status, subject, slug, request_id, message, metadata
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		event.ID, event.Timestamp, string(event.Type), string(event.Status),
		nullString(event.Subject), event.Slug, nullString(event.RequestID), event.Message, metadata,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}
	return nil
}

// Recent returns the newest events for slug, newest first
func (l *DBLogger) Recent(ctx context.Context, slug string, limit int) ([]*Event, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, timestamp, event_type, status, COALESCE(subject, ''), slug,
		       COALESCE(request_id, ''), COALESCE(message, ''), metadata
		FROM audit_events
		WHERE slug = $1
		ORDER BY timestamp DESC
		LIMIT $2`, slug, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var (
			e        Event
			metadata []byte
		)
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Type, &e.Status, &e.Subject, &e.Slug,
			&e.RequestID, &e.Message, &metadata); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode audit metadata: %w", err)
			}
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}

// Close is a no-op; the connection pool is owned by the caller
func (l *DBLogger) Close() error {
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
