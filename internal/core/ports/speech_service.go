package ports

import (
	"context"

	"github.com/voxgate/tts-gateway/internal/core/domain"
)

// SpeakInput carries a /speak request from the transport layer.
type SpeakInput struct {
	UID          string
	Text         string
	Voice        string // optional, defaults to domain.DefaultVoice
	Mood         string // optional; selects plain-text mode with a prosody preset
	AdProofToken string // optional; non-empty means the caller watched an ad
}

// SpeakResult is the synthesized audio plus the caller's remaining credits.
type SpeakResult struct {
	Audio          []byte
	Decision       domain.Decision
	RemainingAfter int
}

// SpeechService runs the gatekeeper and the synthesis pipeline.
type SpeechService interface {
	Speak(ctx context.Context, in SpeakInput) (*SpeakResult, error)
}

// Admitter decides whether a generation may proceed and accounts for it.
type Admitter interface {
	Admit(ctx context.Context, uid string, adProofPresent bool) (domain.Admission, error)
}
