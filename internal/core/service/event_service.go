package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/voxgate/tts-gateway/internal/core/domain"
	"github.com/voxgate/tts-gateway/internal/core/ports"
)

type eventService struct {
	eventRepo ports.EventRepository
	log       zerolog.Logger
}

// NewEventService returns an EventService that writes the audit trail.
func NewEventService(eventRepo ports.EventRepository, log zerolog.Logger) ports.EventService {
	return &eventService{eventRepo: eventRepo, log: log}
}

// Record converts the input into a GenerationEvent and persists it.
func (s *eventService) Record(ctx context.Context, in ports.GenerationEventInput) error {
	event := &domain.GenerationEvent{
		ID:        uuid.NewString(),
		UID:       in.UID,
		Day:       in.Day,
		Decision:  domain.Decision(in.Decision),
		Mode:      domain.InputMode(in.Mode),
		Voice:     in.Voice,
		Mood:      domain.Mood(in.Mood),
		Succeeded: in.Succeeded,
		Failure:   in.Failure,
		Remaining: in.Remaining,
		Timestamp: in.Timestamp,
	}

	if err := s.eventRepo.InsertEvent(ctx, event); err != nil {
		return fmt.Errorf("record event: %w", err)
	}

	s.log.Debug().
		Str("uid", in.UID).
		Str("decision", in.Decision).
		Bool("succeeded", in.Succeeded).
		Msg("generation event recorded")
	return nil
}
