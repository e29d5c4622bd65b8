package domain

import "time"

// dayLayout is the calendar-day key format stored on usage records.
const dayLayout = "2006-01-02"

// UsageRecord counts the generations a user consumed on one calendar day.
// There is at most one record per (UID, Day).
type UsageRecord struct {
	UID       string    `json:"uid" bson:"uid"`
	Day       string    `json:"day" bson:"day"`
	Count     int       `json:"count" bson:"count"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// DayKey formats t as the calendar day in t's location.
func DayKey(t time.Time) string {
	return t.Format(dayLayout)
}

// Decision is the outcome of an admission check.
type Decision string

const (
	// DecisionAdmit consumed one unit of quota.
	DecisionAdmit Decision = "admit"
	// DecisionBypass admitted the call on ad proof without consuming quota.
	DecisionBypass Decision = "bypass"
	// DecisionDeny rejected the call because the quota is exhausted.
	DecisionDeny Decision = "deny"
)

// Admission reports what the gatekeeper decided and the accounting around it.
type Admission struct {
	Decision       Decision
	Day            string
	Plan           Plan
	Quota          int
	Count          int // count after the decision was applied
	RemainingAfter int
}

// Admitted reports whether downstream calls may proceed.
func (a Admission) Admitted() bool {
	return a.Decision == DecisionAdmit || a.Decision == DecisionBypass
}
