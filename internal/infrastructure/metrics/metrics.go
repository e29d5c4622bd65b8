// Package metrics defines and registers all custom Prometheus metrics for the
// voxgate TTS gateway. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry at package
// initialisation through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "voxgate"

// ── Gatekeeper metrics ───────────────────────────────────────────────────────

// AdmissionsTotal counts gatekeeper decisions.
// Labels:
//   - decision: "admit", "bypass" or "deny"
//   - plan: the user's plan at decision time
var AdmissionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "admissions_total",
		Help:      "Total number of admission decisions, by decision and plan.",
	},
	[]string{"decision", "plan"},
)

// ── Pipeline metrics ─────────────────────────────────────────────────────────

// EnrichmentFallbackTotal counts requests that used the bare <speak> envelope
// instead of model-generated SSML.
// Label:
//   - reason: "error", "malformed" or "unconfigured"
var EnrichmentFallbackTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "enrichment_fallback_total",
		Help:      "Total number of enrichment calls that fell back to the bare envelope.",
	},
	[]string{"reason"},
)

// MarkupCacheTotal counts markup cache lookups.
// Label:
//   - result: "hit", "miss" or "error"
var MarkupCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "markup_cache_total",
		Help:      "Total number of markup cache lookups, labelled by result.",
	},
	[]string{"result"},
)

// SynthesisErrorsTotal counts failed provider calls.
// Label:
//   - kind: "upstream" (provider error status) or "internal"
var SynthesisErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "synthesis_errors_total",
		Help:      "Total number of failed speech synthesis calls.",
	},
	[]string{"kind"},
)

// SynthesisDuration measures the provider round trip.
// Label:
//   - mode: "text" or "ssml"
var SynthesisDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "synthesis_duration_seconds",
		Help:      "Duration of speech synthesis provider calls.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"mode"},
)

// ── Audit metrics ────────────────────────────────────────────────────────────

// AuditQueueDepth tracks pending audit events per dispatcher worker.
// Label:
//   - worker_id: numeric worker index
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditDroppedTotal counts audit events discarded because a worker queue was full.
var AuditDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_dropped_total",
		Help:      "Total number of audit events dropped on a full worker queue.",
	},
)
