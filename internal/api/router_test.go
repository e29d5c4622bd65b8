package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/voxgate/tts-gateway/internal/core/domain"
	"github.com/voxgate/tts-gateway/internal/core/ports"
	"github.com/voxgate/tts-gateway/internal/core/service"
	"github.com/voxgate/tts-gateway/internal/infrastructure/provider/gemini"
	"github.com/voxgate/tts-gateway/internal/infrastructure/provider/googletts"
)

// --- in-memory repositories ---

type memUsers struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func (r *memUsers) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.UID]; ok {
		return domain.ErrUserExists
	}
	r.users[u.UID] = *u
	return nil
}

func (r *memUsers) FindByUID(_ context.Context, uid string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[uid]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *memUsers) UpdatePlan(_ context.Context, uid string, plan domain.Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[uid]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Plan = plan
	r.users[uid] = u
	return nil
}

type memUsage struct {
	mu     sync.Mutex
	counts map[string]int
}

func (r *memUsage) Consume(_ context.Context, uid, day string, quota int) (ports.ConsumeResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	before := r.counts[uid+"|"+day]
	if before < quota {
		r.counts[uid+"|"+day] = before + 1
		return ports.ConsumeResult{CountBefore: before, Consumed: true}, nil
	}
	r.counts[uid+"|"+day] = before
	return ports.ConsumeResult{CountBefore: before}, nil
}

func (r *memUsage) Count(_ context.Context, uid, day string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[uid+"|"+day], nil
}

// --- fake providers ---

type fakeTTS struct {
	mu       sync.Mutex
	status   int
	errBody  string
	requests []map[string]map[string]any
}

func (f *fakeTTS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body map[string]map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)
	f.mu.Lock()
	f.requests = append(f.requests, body)
	status, errBody := f.status, f.errBody
	f.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, errBody)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{
		"audioContent": base64.StdEncoding.EncodeToString([]byte("ID3-fake-mp3")),
	})
}

func (f *fakeTTS) last() map[string]map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

type testEnv struct {
	e     *echo.Echo
	usage *memUsage
	tts   *fakeTTS
}

func newTestEnv(t *testing.T, geminiHandler http.HandlerFunc, jwtSecret string) *testEnv {
	t.Helper()
	log := zerolog.Nop()
	clock := func() time.Time { return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC) }

	tts := &fakeTTS{}
	ttsSrv := httptest.NewServer(tts)
	t.Cleanup(ttsSrv.Close)

	var enricher ports.Enricher
	if geminiHandler != nil {
		gemSrv := httptest.NewServer(geminiHandler)
		t.Cleanup(gemSrv.Close)
		enricher = gemini.New("k", gemini.WithBaseURL(gemSrv.URL))
	}

	users := &memUsers{users: map[string]domain.User{}}
	usage := &memUsage{counts: map[string]int{}}
	plans := domain.DefaultPlanCatalog()

	gate := service.NewGatekeeper(users, usage, plans, clock, log)
	speech := service.NewSpeechService(gate, enricher,
		googletts.New("k", googletts.WithBaseURL(ttsSrv.URL)), nil,
		service.SpeechOptions{EnrichmentEnabled: true}, log)

	reg := prometheus.NewRegistry()
	e := NewRouter(RouterConfig{
		Users:      service.NewUserService(users, usage, plans, clock, log),
		Speech:     speech,
		JWTSecret:  jwtSecret,
		Logger:     log,
		Registerer: reg,
		Gatherer:   reg,
	})
	return &testEnv{e: e, usage: usage, tts: tts}
}

func (env *testEnv) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) register(t *testing.T, uid string) {
	t.Helper()
	rec := env.do(http.MethodPost, "/register", fmt.Sprintf(`{"uid":%q,"email":"%s@example.com"}`, uid, uid))
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d %s", uid, rec.Code, rec.Body.String())
	}
}

func (env *testEnv) status(t *testing.T, uid string) map[string]any {
	t.Helper()
	rec := env.do(http.MethodGet, "/get-user-status/"+uid, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %s: expected 200, got %d", uid, rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return body
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return body
}

func geminiReply(markup string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": markup}}}}},
		})
	}
}

func TestRouter_FreeQuotaThenDenied(t *testing.T) {
	env := newTestEnv(t, geminiReply("<speak>hi</speak>"), "")
	env.register(t, "u1")

	for _, want := range []string{"2", "1", "0"} {
		rec := env.do(http.MethodPost, "/speak", `{"uid":"u1","text":"hi"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
		}
		if got := rec.Header().Get("X-Remaining-Credits"); got != want {
			t.Errorf("expected X-Remaining-Credits %s, got %s", want, got)
		}
		if rec.Header().Get(echo.HeaderContentType) != "audio/mpeg" || rec.Body.String() != "ID3-fake-mp3" {
			t.Errorf("unexpected audio response %q", rec.Body.String())
		}
	}

	rec := env.do(http.MethodPost, "/speak", `{"uid":"u1","text":"hi"}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if msg := errorBody(t, rec).Error; msg != "Daily limit reached. Watch an ad for more." {
		t.Errorf("unexpected message %q", msg)
	}
	if len(env.tts.requests) != 3 {
		t.Errorf("denied call reached the provider: %d requests", len(env.tts.requests))
	}
}

func TestRouter_AdProofBypassesExhaustedQuota(t *testing.T) {
	env := newTestEnv(t, geminiReply("<speak>hi</speak>"), "")
	env.register(t, "u1")
	for i := 0; i < 3; i++ {
		env.do(http.MethodPost, "/speak", `{"uid":"u1","text":"hi"}`)
	}

	rec := env.do(http.MethodPost, "/speak", `{"uid":"u1","text":"hi","ad_proof_token":"x"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("X-Remaining-Credits"); got != "0" {
		t.Errorf("expected X-Remaining-Credits 0, got %s", got)
	}
	if st := env.status(t, "u1"); st["generations_today"] != 3.0 {
		t.Errorf("bypass changed the count: %v", st)
	}
}

func TestRouter_UpstreamErrorKeepsConsumedCredit(t *testing.T) {
	env := newTestEnv(t, geminiReply("<speak>hi</speak>"), "")
	env.register(t, "u1")
	env.tts.status = http.StatusBadRequest
	env.tts.errBody = `{"error":{"code":400,"message":"Invalid voice"}}`

	rec := env.do(http.MethodPost, "/speak", `{"uid":"u1","text":"hi","voice":"xx-XX-Bad"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	body := errorBody(t, rec)
	if body.Error != "Google API error" || body.Details != env.tts.errBody {
		t.Errorf("unexpected body %+v", body)
	}
	if st := env.status(t, "u1"); st["generations_today"] != 1.0 {
		t.Errorf("expected consumed credit to remain, got %v", st)
	}
}

func TestRouter_VerifyPurchaseRaisesLimit(t *testing.T) {
	env := newTestEnv(t, nil, "")
	env.register(t, "u1")

	if st := env.status(t, "u1"); st["daily_limit"] != 3.0 || st["plan_type"] != "free" {
		t.Fatalf("unexpected initial status %v", st)
	}
	rec := env.do(http.MethodPost, "/verify-purchase", `{"uid":"u1","plan_type":"advanced"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	if st := env.status(t, "u1"); st["daily_limit"] != 100.0 || st["plan_type"] != "advanced" {
		t.Errorf("unexpected status after purchase %v", st)
	}

	for _, body := range []string{`{"uid":"u1","plan_type":"gold"}`, `{"uid":"ghost","plan_type":"premium"}`} {
		rec := env.do(http.MethodPost, "/verify-purchase", body)
		if rec.Code != http.StatusBadRequest || errorBody(t, rec).Error != "Purchase verification failed" {
			t.Errorf("%s: expected 400 rejection, got %d %s", body, rec.Code, rec.Body.String())
		}
	}
}

func TestRouter_EnrichmentAndMoodModes(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}, "")
	env.register(t, "u1")

	env.do(http.MethodPost, "/speak", `{"uid":"u1","text":"hello"}`)
	req := env.tts.last()
	if req["input"]["ssml"] != "<speak>hello</speak>" {
		t.Errorf("expected fallback envelope, got %v", req["input"])
	}
	if req["voice"]["name"] != domain.DefaultVoice || req["voice"]["languageCode"] != "en-US" {
		t.Errorf("unexpected voice %v", req["voice"])
	}

	env.do(http.MethodPost, "/speak", `{"uid":"u1","text":"grr","mood":"angry"}`)
	req = env.tts.last()
	if req["input"]["text"] != "grr" || req["audioConfig"]["speakingRate"] != 1.1 || req["audioConfig"]["pitch"] != -2.0 {
		t.Errorf("unexpected mood request %v", req)
	}
}

func TestRouter_RegisterAndLookupErrors(t *testing.T) {
	env := newTestEnv(t, nil, "")
	env.register(t, "u1")

	rec := env.do(http.MethodPost, "/register", `{"uid":"u1","email":"u1@example.com"}`)
	if rec.Code != http.StatusOK {
		t.Errorf("re-register: expected 200, got %d", rec.Code)
	}
	if rec := env.do(http.MethodPost, "/register", `{"uid":"u2"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("missing email: expected 400, got %d", rec.Code)
	}
	if rec := env.do(http.MethodGet, "/get-user-status/ghost", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown user status: expected 404, got %d", rec.Code)
	}
	if rec := env.do(http.MethodPost, "/speak", `{"uid":"ghost","text":"hi"}`); rec.Code != http.StatusNotFound {
		t.Errorf("unknown user speak: expected 404, got %d", rec.Code)
	}
	if rec := env.do(http.MethodPost, "/speak", `{"text":"hi"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("missing uid: expected 400, got %d", rec.Code)
	}
	if len(env.usage.counts) != 0 {
		t.Errorf("rejected requests touched usage: %v", env.usage.counts)
	}
}

func TestRouter_PurchaseRequiresBillingRole(t *testing.T) {
	env := newTestEnv(t, nil, "s3cret")
	env.register(t, "u1")
	body := `{"uid":"u1","plan_type":"premium"}`

	if rec := env.do(http.MethodPost, "/verify-purchase", body); rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: expected 401, got %d", rec.Code)
	}

	sign := func(role string) string {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "store", "role": role, "exp": time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte("s3cret"))
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return "Bearer " + tok
	}

	if rec := env.do(http.MethodPost, "/verify-purchase", body, "Authorization", sign("viewer")); rec.Code != http.StatusForbidden {
		t.Errorf("wrong role: expected 403, got %d", rec.Code)
	}
	if rec := env.do(http.MethodPost, "/verify-purchase", body, "Authorization", sign("billing")); rec.Code != http.StatusOK {
		t.Errorf("billing role: expected 200, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_OperationalEndpoints(t *testing.T) {
	env := newTestEnv(t, nil, "")

	if rec := env.do(http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Errorf("health: expected 200, got %d", rec.Code)
	}
	if rec := env.do(http.MethodGet, "/health/ready", ""); rec.Code != http.StatusOK {
		t.Errorf("ready: expected 200, got %d", rec.Code)
	}
	rec := env.do(http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "voxgate_http_requests_total") {
		t.Errorf("metrics: expected http request counters, got %d", rec.Code)
	}
	rec = env.do(http.MethodGet, "/swagger/doc.json", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "/speak") {
		t.Errorf("swagger: expected the OpenAPI document, got %d", rec.Code)
	}
	if rec := env.do(http.MethodGet, "/nope", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown route: expected 404, got %d", rec.Code)
	}
}
