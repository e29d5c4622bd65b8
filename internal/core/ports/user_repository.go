package ports

import (
	"context"

	"github.com/voxgate/tts-gateway/internal/core/domain"
)

// UserRepository defines persistence for user accounts.
type UserRepository interface {
	// Create inserts the user. Returns domain.ErrUserExists when the uid or
	// email is already taken.
	Create(ctx context.Context, user *domain.User) error
	FindByUID(ctx context.Context, uid string) (*domain.User, error)
	// UpdatePlan changes the plan of an existing user.
	UpdatePlan(ctx context.Context, uid string, plan domain.Plan) error
}
