package ports

import (
	"context"
)

// ConsumeResult describes the effect of a single Consume call.
type ConsumeResult struct {
	// CountBefore is the record's count before this call (0 for a new record).
	CountBefore int
	// Consumed is true when this call incremented the count.
	Consumed bool
}

// CountAfter is the persisted count once the call has been applied.
func (r ConsumeResult) CountAfter() int {
	if r.Consumed {
		return r.CountBefore + 1
	}
	return r.CountBefore
}

// UsageRepository stores the per-(uid, day) generation counters.
type UsageRepository interface {
	// Consume creates the (uid, day) record if missing and increments its
	// count by one iff the count is below quota, as one atomic write.
	Consume(ctx context.Context, uid, day string, quota int) (ConsumeResult, error)
	// Count returns the count for (uid, day), or 0 when no record exists.
	Count(ctx context.Context, uid, day string) (int, error)
}
