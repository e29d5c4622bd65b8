package domain

import "time"

// Plan is the subscription tier that determines a user's daily quota.
type Plan string

const (
	PlanFree     Plan = "free"
	PlanAdvanced Plan = "advanced"
	PlanPremium  Plan = "premium"
)

// User is an account identified by the uid issued by the external identity
// provider. Plan is the only field that changes after creation.
type User struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	Plan      Plan      `json:"plan_type"`
	CreatedAt time.Time `json:"created_at"`
}
