package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/voxgate/tts-gateway/internal/infrastructure/metrics"
	"github.com/voxgate/tts-gateway/internal/core/domain"
	"github.com/voxgate/tts-gateway/internal/core/ports"
)

// Clock returns the current time in the zone whose calendar day resets usage.
type Clock func() time.Time

// Gatekeeper decides whether a generation may proceed and accounts for it
// in the usage store.
type Gatekeeper struct {
	users ports.UserRepository
	usage ports.UsageRepository
	plans domain.PlanCatalog
	clock Clock
	log   zerolog.Logger
}

// NewGatekeeper returns a Gatekeeper. A nil clock uses the process-local time.
func NewGatekeeper(
	users ports.UserRepository,
	usage ports.UsageRepository,
	plans domain.PlanCatalog,
	clock Clock,
	log zerolog.Logger,
) *Gatekeeper {
	if clock == nil {
		clock = time.Now
	}
	return &Gatekeeper{users: users, usage: usage, plans: plans, clock: clock, log: log}
}

// Admit resolves the user's quota and consumes one unit of today's allowance
// when any is left. Without remaining quota the call is admitted as a bypass
// if adProofPresent, and denied with domain.ErrQuotaExhausted otherwise.
// Today's usage record is written exactly once in every branch.
func (g *Gatekeeper) Admit(ctx context.Context, uid string, adProofPresent bool) (domain.Admission, error) {
	user, err := g.users.FindByUID(ctx, uid)
	if err != nil {
		return domain.Admission{}, fmt.Errorf("admit: %w", err)
	}

	quota := g.plans.Quota(user.Plan)
	day := domain.DayKey(g.clock())

	res, err := g.usage.Consume(ctx, uid, day, quota)
	if err != nil {
		return domain.Admission{}, fmt.Errorf("admit: consume usage: %w", err)
	}

	adm := domain.Admission{
		Day:            day,
		Plan:           user.Plan,
		Quota:          quota,
		Count:          res.CountAfter(),
		RemainingAfter: quota - res.CountAfter(),
	}

	switch {
	case res.Consumed:
		adm.Decision = domain.DecisionAdmit
	case adProofPresent:
		adm.Decision = domain.DecisionBypass
	default:
		adm.Decision = domain.DecisionDeny
	}

	metrics.AdmissionsTotal.WithLabelValues(string(adm.Decision), string(user.Plan)).Inc()
	g.log.Debug().
		Str("uid", uid).
		Str("day", day).
		Str("decision", string(adm.Decision)).
		Int("count", adm.Count).
		Int("quota", quota).
		Msg("admission decided")

	if adm.Decision == domain.DecisionDeny {
		return adm, domain.ErrQuotaExhausted
	}
	return adm, nil
}

// Today returns the usage day key for the current time.
func (g *Gatekeeper) Today() string {
	return domain.DayKey(g.clock())
}
