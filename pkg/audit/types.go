package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rifkidocs/headless-firebase-sub000/pkg/contextkeys"
)

// EventType represents the type of audit event
type EventType string

const (
	EventCollectionCreated      EventType = "collection.created"
	EventCollectionDeleted      EventType = "collection.deleted"
	EventCollectionDeleteFailed EventType = "collection.delete_failed"
)

// EventStatus represents the outcome of an audited action
type EventStatus string

const (
	// StatusSuccess: the action completed cleanly
	StatusSuccess EventStatus = "success"
	// StatusWarning: the action completed, but some media assets may survive
	StatusWarning EventStatus = "warning"
	// StatusFailure: the action was rejected or failed
	StatusFailure EventStatus = "failure"
)

// Event is one audit record
type Event struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Type      EventType      `json:"event_type"`
	Status    EventStatus    `json:"status"`
	Subject   string         `json:"subject,omitempty"`
	Slug      string         `json:"slug"`
	RequestID string         `json:"request_id,omitempty"`
	Message   string         `json:"message,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewEvent creates an event stamped with an id, the current time and the
// request id found on ctx
func NewEvent(ctx context.Context, eventType EventType, status EventStatus, slug string) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Type:      eventType,
		Status:    status,
		Slug:      slug,
		RequestID: contextkeys.GetRequestID(ctx),
		Metadata:  map[string]any{},
	}
}
