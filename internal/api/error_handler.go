package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/voxgate/tts-gateway/internal/core/domain"
)

const (
	msgQuotaExhausted = "Daily limit reached. Watch an ad for more."
	msgUpstream       = "Google API error"
	msgInternal       = "An unexpected server error occurred"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Passes the provider's error body through for upstream failures.
//   - Logs unexpected errors internally without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, auth middleware, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	var upstream *domain.UpstreamError
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, errorResponse{Error: "User not found"}
	case errors.Is(err, domain.ErrInvalidPlan):
		return http.StatusBadRequest, errorResponse{Error: "Purchase verification failed"}
	case errors.Is(err, domain.ErrQuotaExhausted):
		return http.StatusTooManyRequests, errorResponse{Error: msgQuotaExhausted}
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, errorResponse{Error: "User already exists"}
	case errors.As(err, &upstream):
		log.Warn().
			Str("provider", upstream.Provider).
			Int("upstream_status", upstream.StatusCode).
			Str("path", c.Path()).
			Msg("upstream provider error")
		return http.StatusInternalServerError, errorResponse{Error: msgUpstream, Details: upstream.Body}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: msgInternal}
}
