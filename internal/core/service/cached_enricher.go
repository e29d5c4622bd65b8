package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/voxgate/tts-gateway/internal/infrastructure/metrics"
	"github.com/voxgate/tts-gateway/internal/core/domain"
	"github.com/voxgate/tts-gateway/internal/core/ports"
)

// cachedEnricher serves repeated texts from a MarkupCache. Cache failures
// never fail the enrichment; the wrapped Enricher is called instead.
type cachedEnricher struct {
	next  ports.Enricher
	cache ports.MarkupCache
	log   zerolog.Logger
}

// NewCachedEnricher wraps next with cache. Only well-formed markup is stored.
func NewCachedEnricher(next ports.Enricher, cache ports.MarkupCache, log zerolog.Logger) ports.Enricher {
	return &cachedEnricher{next: next, cache: cache, log: log}
}

func (e *cachedEnricher) Enrich(ctx context.Context, text string) (string, error) {
	markup, found, err := e.cache.Get(ctx, text)
	switch {
	case err != nil:
		metrics.MarkupCacheTotal.WithLabelValues("error").Inc()
		e.log.Warn().Err(err).Msg("markup cache lookup failed, calling enricher")
	case found:
		metrics.MarkupCacheTotal.WithLabelValues("hit").Inc()
		return markup, nil
	default:
		metrics.MarkupCacheTotal.WithLabelValues("miss").Inc()
	}

	markup, err = e.next.Enrich(ctx, text)
	if err != nil {
		return "", err
	}
	if domain.IsSpeakEnvelope(markup) {
		if putErr := e.cache.Put(ctx, text, markup); putErr != nil {
			e.log.Warn().Err(putErr).Msg("failed to store enriched markup")
		}
	}
	return markup, nil
}
