package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation     = errors.New("validation failed")
	ErrUserNotFound   = errors.New("user not found")
	ErrUserExists     = errors.New("user already exists")
	ErrInvalidPlan    = errors.New("purchase verification failed")
	ErrQuotaExhausted = errors.New("daily limit reached")
	ErrInternal       = errors.New("internal error")
)

// UpstreamError is returned when the synthesis provider answers with an
// error status. Body holds the provider's error payload as received.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}
