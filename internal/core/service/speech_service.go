package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/voxgate/tts-gateway/internal/infrastructure/metrics"
	"github.com/voxgate/tts-gateway/internal/core/domain"
	"github.com/voxgate/tts-gateway/internal/core/ports"
)

// SpeechOptions tunes how requests are turned into provider calls.
type SpeechOptions struct {
	// EnrichmentEnabled sends mood-less requests through the Enricher as SSML.
	// When false they are sent as plain text with the default prosody.
	EnrichmentEnabled bool
	DefaultVoice      string
}

// SpeechService orchestrates admission, enrichment and synthesis.
type SpeechService struct {
	gate     ports.Admitter
	enricher ports.Enricher
	synth    ports.Synthesizer
	events   ports.EventSink
	opts     SpeechOptions
	log      zerolog.Logger
}

// NewSpeechService returns a SpeechService. enricher and events may be nil.
func NewSpeechService(
	gate ports.Admitter,
	enricher ports.Enricher,
	synth ports.Synthesizer,
	events ports.EventSink,
	opts SpeechOptions,
	log zerolog.Logger,
) *SpeechService {
	if opts.DefaultVoice == "" {
		opts.DefaultVoice = domain.DefaultVoice
	}
	return &SpeechService{
		gate:     gate,
		enricher: enricher,
		synth:    synth,
		events:   events,
		opts:     opts,
		log:      log,
	}
}

// Speak admits the caller and, if admitted, synthesizes the text. A consumed
// quota unit is kept even when synthesis fails.
func (s *SpeechService) Speak(ctx context.Context, in ports.SpeakInput) (*ports.SpeakResult, error) {
	if strings.TrimSpace(in.UID) == "" {
		return nil, fmt.Errorf("%w: uid is required", domain.ErrValidation)
	}

	adm, err := s.gate.Admit(ctx, in.UID, in.AdProofToken != "")
	if err != nil {
		if errors.Is(err, domain.ErrQuotaExhausted) {
			s.record(in, adm, "", "", err)
		}
		return nil, err
	}

	req := s.buildRequest(ctx, in)

	start := time.Now()
	audio, err := s.synth.Synthesize(ctx, req)
	metrics.SynthesisDuration.WithLabelValues(string(req.Mode)).Observe(time.Since(start).Seconds())

	s.record(in, adm, req.Mode, req.Voice, err)

	if err != nil {
		var upstream *domain.UpstreamError
		kind := "internal"
		if errors.As(err, &upstream) {
			kind = "upstream"
		}
		metrics.SynthesisErrorsTotal.WithLabelValues(kind).Inc()
		s.log.Error().Err(err).
			Str("uid", in.UID).
			Str("decision", string(adm.Decision)).
			Msg("synthesis failed")
		return nil, fmt.Errorf("speak: %w", err)
	}

	return &ports.SpeakResult{
		Audio:          audio,
		Decision:       adm.Decision,
		RemainingAfter: adm.RemainingAfter,
	}, nil
}

// buildRequest picks the input mode. A mood selects plain text with that
// mood's prosody; otherwise the text is enriched into SSML without prosody.
func (s *SpeechService) buildRequest(ctx context.Context, in ports.SpeakInput) ports.SynthesisRequest {
	voice := strings.TrimSpace(in.Voice)
	if voice == "" {
		voice = s.opts.DefaultVoice
	}
	mood := strings.ToLower(strings.TrimSpace(in.Mood))

	switch {
	case mood != "":
		p := domain.PresetFor(domain.Mood(mood))
		return ports.SynthesisRequest{Content: in.Text, Mode: domain.InputText, Voice: voice, Prosody: &p}
	case s.opts.EnrichmentEnabled:
		return ports.SynthesisRequest{Content: s.enrich(ctx, in.Text), Mode: domain.InputSSML, Voice: voice}
	default:
		p := domain.PresetFor(domain.MoodDefault)
		return ports.SynthesisRequest{Content: in.Text, Mode: domain.InputText, Voice: voice, Prosody: &p}
	}
}

// enrich maps every enrichment failure to the bare envelope around text.
func (s *SpeechService) enrich(ctx context.Context, text string) string {
	if s.enricher == nil {
		metrics.EnrichmentFallbackTotal.WithLabelValues("unconfigured").Inc()
		return domain.WrapSpeak(text)
	}

	markup, err := s.enricher.Enrich(ctx, text)
	if err != nil {
		metrics.EnrichmentFallbackTotal.WithLabelValues("error").Inc()
		s.log.Warn().Err(err).Msg("enrichment failed, using plain envelope")
		return domain.WrapSpeak(text)
	}
	if !domain.IsSpeakEnvelope(markup) {
		metrics.EnrichmentFallbackTotal.WithLabelValues("malformed").Inc()
		s.log.Warn().Msg("enrichment returned malformed markup, using plain envelope")
		return domain.WrapSpeak(text)
	}
	return markup
}

func (s *SpeechService) record(in ports.SpeakInput, adm domain.Admission, mode domain.InputMode, voice string, err error) {
	if s.events == nil {
		return
	}
	ev := ports.GenerationEventInput{
		UID:       in.UID,
		Day:       adm.Day,
		Decision:  string(adm.Decision),
		Mode:      string(mode),
		Voice:     voice,
		Mood:      in.Mood,
		Succeeded: err == nil,
		Remaining: adm.RemainingAfter,
		Timestamp: time.Now().UTC(),
	}
	if err != nil {
		ev.Failure = err.Error()
	}
	s.events.Enqueue(ev)
}
