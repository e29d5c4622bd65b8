package ports

import (
	"context"

	"github.com/voxgate/tts-gateway/internal/core/domain"
)

// Enricher turns plain text into emotionally annotated SSML. Any error
// means the caller should fall back to domain.WrapSpeak.
type Enricher interface {
	Enrich(ctx context.Context, text string) (string, error)
}

// SynthesisRequest is one call to the speech provider.
type SynthesisRequest struct {
	Content string
	Mode    domain.InputMode
	Voice   string
	// Prosody is nil when Content is SSML; the markup carries intent instead.
	Prosody *domain.Prosody
}

// Synthesizer converts text or SSML into MP3 audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, req SynthesisRequest) ([]byte, error)
}

// MarkupCache stores previously enriched SSML keyed by the source text.
type MarkupCache interface {
	Get(ctx context.Context, text string) (markup string, found bool, err error)
	Put(ctx context.Context, text, markup string) error
}
