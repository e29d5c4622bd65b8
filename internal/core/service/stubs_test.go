package service

import (
	"context"
	"sync"
	"time"

	"github.com/voxgate/tts-gateway/internal/core/domain"
	"github.com/voxgate/tts-gateway/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu        sync.Mutex
	byUID     map[string]*domain.User
	findErr   error
	createErr error
	creates   int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byUID: make(map[string]*domain.User)}
}

func (r *stubUserRepo) seed(uid string, plan domain.Plan) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUID[uid] = &domain.User{UID: uid, Email: uid + "@example.com", Plan: plan, CreatedAt: time.Now().UTC()}
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.byUID[u.UID]; ok {
		return domain.ErrUserExists
	}
	clone := *u
	r.byUID[u.UID] = &clone
	r.creates++
	return nil
}

func (r *stubUserRepo) FindByUID(_ context.Context, uid string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.byUID[uid]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) UpdatePlan(_ context.Context, uid string, plan domain.Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byUID[uid]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Plan = plan
	return nil
}

// stubUsageRepo mirrors the atomic conditional upsert of the Mongo repository.
type stubUsageRepo struct {
	mu         sync.Mutex
	counts     map[string]int
	writes     int
	consumeErr error
}

func newStubUsageRepo() *stubUsageRepo {
	return &stubUsageRepo{counts: make(map[string]int)}
}

func (r *stubUsageRepo) Consume(_ context.Context, uid, day string, quota int) (ports.ConsumeResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.consumeErr != nil {
		return ports.ConsumeResult{}, r.consumeErr
	}
	key := uid + "|" + day
	before := r.counts[key]
	r.writes++
	if before < quota {
		r.counts[key] = before + 1
		return ports.ConsumeResult{CountBefore: before, Consumed: true}, nil
	}
	r.counts[key] = before
	return ports.ConsumeResult{CountBefore: before}, nil
}

func (r *stubUsageRepo) Count(_ context.Context, uid, day string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[uid+"|"+day], nil
}

func (r *stubUsageRepo) exists(uid, day string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.counts[uid+"|"+day]
	return ok
}

// ---------------------------------------------------------------------------
// Provider stubs
// ---------------------------------------------------------------------------

type stubEnricher struct {
	markup string
	err    error
	calls  int
}

func (e *stubEnricher) Enrich(_ context.Context, text string) (string, error) {
	e.calls++
	if e.err != nil {
		return "", e.err
	}
	return e.markup, nil
}

type stubSynth struct {
	audio []byte
	err   error
	reqs  []ports.SynthesisRequest
}

func (s *stubSynth) Synthesize(_ context.Context, req ports.SynthesisRequest) ([]byte, error) {
	s.reqs = append(s.reqs, req)
	if s.err != nil {
		return nil, s.err
	}
	return s.audio, nil
}

type stubSink struct {
	events []ports.GenerationEventInput
}

func (s *stubSink) Enqueue(e ports.GenerationEventInput) {
	s.events = append(s.events, e)
}

func fixedClock() time.Time {
	return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
}

const testDay = "2026-03-14"
