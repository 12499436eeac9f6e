package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProjectsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_projects_created_total",
			Help: "Total number of projects created at stage 7",
		},
	)

	PMAssignmentFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_pm_assignment_failures_total",
			Help: "Project creations rejected because no PM was available",
		},
	)

	StageTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_stage_transitions_total",
			Help: "Applied stage transitions by kind and target stage",
		},
		[]string{"kind", "to_stage"},
	)

	VersionConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_version_conflicts_total",
			Help: "Project writes rejected by the version check",
		},
		[]string{"operation"},
	)

	Estimates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_estimates_total",
			Help: "Estimates computed by result (ok, unavailable, error)",
		},
		[]string{"result"},
	)

	EstimateDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "storefront_estimate_duration_seconds",
			Help:    "Time to load cost standards and compute an estimate",
			Buckets: prometheus.DefBuckets,
		},
	)

	MessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_messages_sent_total",
			Help: "Chat messages stored by sender role",
		},
		[]string{"sender_role"},
	)

	StreamsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_message_streams_active",
			Help: "Open chat event streams",
		},
	)

	SideEffectFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_side_effect_failures_total",
			Help: "Best-effort follow-ups (announce, notify, event log) that failed",
		},
		[]string{"effect"},
	)
)
