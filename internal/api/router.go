package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/voxgate/tts-gateway/internal/api/handler"
	"github.com/voxgate/tts-gateway/internal/api/middleware"
	"github.com/voxgate/tts-gateway/internal/core/ports"

	_ "github.com/voxgate/tts-gateway/docs"
)

// roleBilling is the token role allowed to change plans.
const roleBilling = "billing"

// RouterConfig carries the services and infrastructure the HTTP layer needs.
type RouterConfig struct {
	Users  ports.UserService
	Speech ports.SpeechService

	// Readiness probes keyed by dependency name, e.g. "mongodb" and "redis".
	Readiness map[string]handler.Pinger

	// JWTSecret guards /verify-purchase when non-empty.
	JWTSecret string
	Logger    zerolog.Logger

	// Registerer and Gatherer back the HTTP metrics middleware and /metrics.
	// Both nil disables them.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(cfg.Logger))
	if cfg.Registerer != nil {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Namespace:  "voxgate",
			Subsystem:  "http",
			Registerer: cfg.Registerer,
			Skipper: func(c echo.Context) bool {
				return c.Path() == "/metrics"
			},
		}))
	}

	// --- Users ---
	userHandler := handler.NewUserHandler(cfg.Users)
	e.POST("/register", userHandler.Register)
	e.GET("/get-user-status/:uid", userHandler.Status)

	purchaseMW := []echo.MiddlewareFunc{}
	if cfg.JWTSecret != "" {
		purchaseMW = append(purchaseMW, middleware.Auth(cfg.JWTSecret), middleware.RBAC(roleBilling))
	}
	e.POST("/verify-purchase", userHandler.VerifyPurchase, purchaseMW...)

	// --- Speech ---
	speechHandler := handler.NewSpeechHandler(cfg.Speech)
	e.POST("/speak", speechHandler.Speak)

	// --- Health probes (no auth required) ---
	readiness := cfg.Readiness
	if readiness == nil {
		readiness = map[string]handler.Pinger{}
	}
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewReadinessHandler(readiness).Readiness)

	// --- Observability ---
	if cfg.Gatherer != nil {
		e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
			Gatherer: cfg.Gatherer,
		}))
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
