// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_messages_sent_total",
			Help: "Total number of messages delivered by channel",
		},
		[]string{"channel"},
	)

	MessagesFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_messages_failed_total",
			Help: "Total number of messages that failed delivery",
		},
		[]string{"channel", "error_code"},
	)

	MessagesCancelled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_messages_cancelled_total",
			Help: "Total number of messages cancelled before delivery",
		},
		[]string{"channel"},
	)

	DispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "dispatch_job_duration_seconds",
			Help: "Time from submit until every message reached a terminal state",
		},
		[]string{"channel"},
	)

	JobsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dispatch_jobs_active",
			Help: "Number of jobs with at least one pending message",
		},
	)
)
