package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pitchcheck_analyses_total",
			Help: "Total number of deck analyses by outcome",
		},
		[]string{"outcome"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pitchcheck_stage_duration_seconds",
			Help:    "Duration of pipeline stages in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"stage"},
	)

	LLMCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pitchcheck_llm_calls_total",
			Help: "Model calls by provider and outcome (ok, retry, error)",
		},
		[]string{"provider", "outcome"},
	)

	LLMCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pitchcheck_llm_call_duration_seconds",
			Help:    "Latency of individual model calls",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		},
		[]string{"provider"},
	)

	SearchCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pitchcheck_search_calls_total",
			Help: "Web search calls by outcome (ok, cache_hit, error)",
		},
		[]string{"outcome"},
	)

	DecodeOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pitchcheck_decode_outcomes_total",
			Help: "Structured decoding of model replies by caller and status",
		},
		[]string{"caller", "status"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pitchcheck_cache_lookups_total",
			Help: "Cache lookups by layer and result (hit, miss)",
		},
		[]string{"layer", "result"},
	)

	SourceChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pitchcheck_source_checks_total",
			Help: "Source URL liveness checks by result (live, dead, skipped, error)",
		},
		[]string{"result"},
	)
)
