package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	DomainsCreated       prometheus.Counter
	EndorsementsRecorded prometheus.Counter
	EndorsementsRemoved  prometheus.Counter
	ActivitiesRecorded   prometheus.Counter
	ActivitiesVerified   prometheus.Counter
	VerificationsAdded   prometheus.Counter
	VerificationsRevoked prometheus.Counter
	ScoreRecomputes      prometheus.Counter
	RecomputeDuration    prometheus.Histogram
	RequestDuration      *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		DomainsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vouch_domains_created_total",
			Help: "Total number of reputation domains registered",
		}),
		EndorsementsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vouch_endorsements_recorded_total",
			Help: "Total number of endorsements recorded (including re-endorsements)",
		}),
		EndorsementsRemoved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vouch_endorsements_removed_total",
			Help: "Total number of endorsements soft-deleted",
		}),
		ActivitiesRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vouch_activities_recorded_total",
			Help: "Total number of activities recorded",
		}),
		ActivitiesVerified: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vouch_activities_verified_total",
			Help: "Total number of activities flipped to verified",
		}),
		VerificationsAdded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vouch_verifications_added_total",
			Help: "Total number of verification credentials issued",
		}),
		VerificationsRevoked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vouch_verifications_revoked_total",
			Help: "Total number of verification credentials revoked",
		}),
		ScoreRecomputes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vouch_score_recomputes_total",
			Help: "Total number of reputation score recomputations",
		}),
		RecomputeDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vouch_score_recompute_duration_seconds",
			Help:    "Duration of score recomputation including persistence",
			Buckets: prometheus.DefBuckets,
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vouch_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}
