package ports

import (
	"context"

	"github.com/voxgate/tts-gateway/internal/core/domain"
)

// UserStatus is today's accounting view of a user.
type UserStatus struct {
	UID              string
	Plan             string
	GenerationsToday int
	DailyLimit       int
}

// UserService covers registration, status lookup and plan changes.
type UserService interface {
	// Register creates the user. created is false when the uid already existed.
	Register(ctx context.Context, uid, email string) (created bool, err error)
	Status(ctx context.Context, uid string) (*UserStatus, error)
	// VerifyPurchase moves an existing user to plan. Purchase proof is trusted.
	VerifyPurchase(ctx context.Context, uid, plan string) (*domain.User, error)
}
