// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_messages_processed_total",
			Help: "Total number of messages processed, by outcome",
		},
		[]string{"outcome"},
	)

	MessagesThrottled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_messages_throttled_total",
			Help: "Total number of messages denied by the admission controller",
		},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "pipeline_stage_duration_seconds",
			Help: "Duration of each pipeline stage in seconds",
		},
		[]string{"stage"},
	)

	DegradedRetrievals = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_degraded_retrievals_total",
			Help: "Total number of messages answered in no-context mode",
		},
	)

	FallbackReplies = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_fallback_replies_total",
			Help: "Total number of fallback replies substituted, by reason",
		},
		[]string{"reason"},
	)

	GenerationAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pipeline_generation_attempts",
			Help:    "Number of generation attempts per message",
			Buckets: prometheus.LinearBuckets(1, 1, 5),
		},
	)

	RecorderQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pipeline_recorder_queue_depth",
			Help: "Number of interaction records waiting to be persisted",
		},
	)

	RecorderDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_recorder_dropped_total",
			Help: "Total number of interaction records dropped on queue overflow",
		},
	)
)
