package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/voxgate/tts-gateway/internal/core/domain"
	"github.com/voxgate/tts-gateway/internal/core/ports"
)

// maxUpsertAttempts bounds retries when two first-of-day upserts race on
// the unique (uid, day) index; the loser retries and finds the winner's row.
const maxUpsertAttempts = 3

// UsageRepository implements ports.UsageRepository on the usage_records
// collection.
type UsageRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewUsageRepository(db *mongo.Database) *UsageRepository {
	return &UsageRepository{coll: db.Collection(collectionUsage), now: time.Now}
}

// Consume performs the read, the quota comparison and the conditional
// increment in a single findAndModify. The record for (uid, day) is created
// if absent, even when quota is 0.
func (r *UsageRepository) Consume(ctx context.Context, uid, day string, quota int) (ports.ConsumeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"uid": uid, "day": day}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.Before)

	var err error
	for attempt := 0; attempt < maxUpsertAttempts; attempt++ {
		var before domain.UsageRecord
		err = r.coll.FindOneAndUpdate(ctx, filter, consumePipeline(quota, r.now().UTC()), opts).Decode(&before)
		switch {
		case err == nil:
			return ports.ConsumeResult{CountBefore: before.Count, Consumed: before.Count < quota}, nil
		case errors.Is(err, mongo.ErrNoDocuments):
			// upsert inserted a fresh record
			return ports.ConsumeResult{CountBefore: 0, Consumed: quota > 0}, nil
		case mongo.IsDuplicateKeyError(err):
			continue
		default:
			return ports.ConsumeResult{}, fmt.Errorf("consume usage: %w", err)
		}
	}
	return ports.ConsumeResult{}, fmt.Errorf("consume usage after %d attempts: %w", maxUpsertAttempts, err)
}

// consumePipeline builds the update: count becomes count+1 when below quota
// and is left unchanged otherwise. A missing count is treated as 0.
func consumePipeline(quota int, now time.Time) mongo.Pipeline {
	current := bson.D{{Key: "$ifNull", Value: bson.A{"$count", 0}}}
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "count", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$lt", Value: bson.A{current, quota}}},
				bson.D{{Key: "$add", Value: bson.A{current, 1}}},
				current,
			}}}},
			{Key: "created_at", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$created_at", now}}}},
			{Key: "updated_at", Value: now},
		}}},
	}
}

// Count returns today's count without creating a record.
func (r *UsageRepository) Count(ctx context.Context, uid, day string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rec domain.UsageRecord
	err := r.coll.FindOne(ctx, bson.M{"uid": uid, "day": day}).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, fmt.Errorf("count usage: %w", err)
	}
	return rec.Count, nil
}
