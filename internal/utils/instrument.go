package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "leadreports"

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "code"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	Uploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploads_total",
		Help:      "Dataset uploads by outcome.",
	}, []string{"outcome"})

	RowsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rows_ingested_total",
		Help:      "Rows stored after normalization.",
	})

	NormalizationIssues = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "normalization_issues_total",
		Help:      "Diagnostics raised while normalizing uploads.",
	})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Sessions currently held in the cache.",
	})
)

// Upload outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeWarning     = "warning"
	OutcomeUnsupported = "unsupported"
	OutcomeEmpty       = "empty"
	OutcomeTooLarge    = "too_large"
	OutcomeMalformed   = "malformed"
	OutcomeError       = "error"
)
