package ports

import (
	"context"

	"github.com/voxgate/tts-gateway/internal/core/domain"
)

// EventRepository persists generation audit events.
type EventRepository interface {
	InsertEvent(ctx context.Context, event *domain.GenerationEvent) error
}
