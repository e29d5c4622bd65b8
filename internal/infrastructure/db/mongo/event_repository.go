package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/voxgate/tts-gateway/internal/core/domain"
	"github.com/voxgate/tts-gateway/internal/core/ports"
)

// EventRepository implements ports.EventRepository using MongoDB.
type EventRepository struct {
	coll *mongo.Collection
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *mongo.Database) ports.EventRepository {
	return &EventRepository{coll: db.Collection(collectionEvents)}
}

// InsertEvent persists a generation event to the generation_events audit collection.
func (r *EventRepository) InsertEvent(ctx context.Context, event *domain.GenerationEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, eventDocument(event)); err != nil {
		return fmt.Errorf("insert generation event: %w", err)
	}
	return nil
}

func eventDocument(event *domain.GenerationEvent) bson.M {
	doc := bson.M{
		"_id":          event.ID,
		"uid":          event.UID,
		"day":          event.Day,
		"decision":     string(event.Decision),
		"succeeded":    event.Succeeded,
		"remaining":    event.Remaining,
		"timestamp":    event.Timestamp.UTC(),
		"processed_at": time.Now().UTC(),
	}
	// deny events never reach synthesis
	if event.Mode != "" {
		doc["mode"] = string(event.Mode)
		doc["voice"] = event.Voice
	}
	if event.Mood != "" {
		doc["mood"] = string(event.Mood)
	}
	if event.Failure != "" {
		doc["failure"] = event.Failure
	}
	return doc
}
