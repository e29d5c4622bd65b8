package ports

import (
	"context"
	"time"
)

// GenerationEventInput is the DTO handed to the audit pipeline after a
// /speak call finishes.
type GenerationEventInput struct {
	UID       string
	Day       string
	Decision  string
	Mode      string
	Voice     string
	Mood      string
	Succeeded bool
	Failure   string
	Remaining int
	Timestamp time.Time
}

// EventService records generation audit events.
type EventService interface {
	Record(ctx context.Context, event GenerationEventInput) error
}

// EventSink accepts audit events without blocking the caller.
type EventSink interface {
	Enqueue(event GenerationEventInput)
}
