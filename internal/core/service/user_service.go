package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/voxgate/tts-gateway/internal/core/domain"
	"github.com/voxgate/tts-gateway/internal/core/ports"
)

// UserService implements registration, status and plan upgrades.
type UserService struct {
	users  ports.UserRepository
	usage  ports.UsageRepository
	plans  domain.PlanCatalog
	clock  Clock
	logger zerolog.Logger
}

func NewUserService(
	users ports.UserRepository,
	usage ports.UsageRepository,
	plans domain.PlanCatalog,
	clock Clock,
	logger zerolog.Logger,
) *UserService {
	if clock == nil {
		clock = time.Now
	}
	return &UserService{users: users, usage: usage, plans: plans, clock: clock, logger: logger}
}

// Register creates a free-plan user. Registering an existing uid is a no-op
// that reports created=false.
func (s *UserService) Register(ctx context.Context, uid, email string) (bool, error) {
	uid, email = strings.TrimSpace(uid), strings.TrimSpace(email)
	if uid == "" || email == "" {
		return false, fmt.Errorf("%w: uid and email are required", domain.ErrValidation)
	}

	if _, err := s.users.FindByUID(ctx, uid); err == nil {
		return false, nil
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return false, fmt.Errorf("register: %w", err)
	}

	user := &domain.User{
		UID:       uid,
		Email:     email,
		Plan:      domain.PlanFree,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			// Lost a race with a concurrent registration of the same uid.
			if _, findErr := s.users.FindByUID(ctx, uid); findErr == nil {
				return false, nil
			}
		}
		s.logger.Error().Err(err).Str("uid", uid).Msg("failed to create user")
		return false, fmt.Errorf("register: %w", err)
	}

	s.logger.Info().Str("uid", uid).Msg("user registered")
	return true, nil
}

// Status returns the user's plan, today's usage and daily limit.
func (s *UserService) Status(ctx context.Context, uid string) (*ports.UserStatus, error) {
	user, err := s.users.FindByUID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	count, err := s.usage.Count(ctx, uid, domain.DayKey(s.clock()))
	if err != nil {
		return nil, fmt.Errorf("status: count usage: %w", err)
	}

	return &ports.UserStatus{
		UID:              user.UID,
		Plan:             string(user.Plan),
		GenerationsToday: count,
		DailyLimit:       s.plans.Quota(user.Plan),
	}, nil
}

// VerifyPurchase moves the user to plan. The store receipt is trusted; only
// the user's existence and the plan name are checked.
func (s *UserService) VerifyPurchase(ctx context.Context, uid, plan string) (*domain.User, error) {
	p := domain.Plan(strings.TrimSpace(plan))
	if uid == "" || !s.plans.Has(p) {
		return nil, domain.ErrInvalidPlan
	}

	user, err := s.users.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidPlan
		}
		return nil, fmt.Errorf("verify purchase: %w", err)
	}

	if err := s.users.UpdatePlan(ctx, uid, p); err != nil {
		return nil, fmt.Errorf("verify purchase: %w", err)
	}
	user.Plan = p

	s.logger.Info().Str("uid", uid).Str("plan", string(p)).Msg("plan updated")
	return user, nil
}
