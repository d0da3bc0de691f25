package metrics

import "github.com/prometheus/client_golang/prometheus"

// Assignment outcomes.
const (
	OutcomeAssigned    = "assigned"
	OutcomeNoPartner   = "no_partner"
	OutcomeDuplicate   = "duplicate"
	OutcomeError       = "error"
	ReleaseReasonDone  = "delivered"
	ReleaseReasonAbort = "aborted"
)

// AssignmentMetrics counts assignment outcomes and capacity releases.
type AssignmentMetrics struct {
	outcomes *prometheus.CounterVec
	releases *prometheus.CounterVec
	clamped  prometheus.Counter
}

func NewAssignmentMetrics(reg prometheus.Registerer) *AssignmentMetrics {
	if reg == nil {
		return &AssignmentMetrics{}
	}
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "assignments_total",
		Help:      "Delivery assignment attempts by outcome.",
	}, []string{"outcome"})
	releases := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "capacity_releases_total",
		Help:      "Partner capacity releases by reason.",
	}, []string{"reason"})
	clamped := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "capacity_release_clamped_total",
		Help:      "Capacity releases that found the partner counter already at zero.",
	})
	reg.MustRegister(outcomes, releases, clamped)
	return &AssignmentMetrics{outcomes: outcomes, releases: releases, clamped: clamped}
}

func (m *AssignmentMetrics) IncOutcome(outcome string) {
	if m == nil || m.outcomes == nil {
		return
	}
	m.outcomes.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *AssignmentMetrics) IncRelease(reason string) {
	if m == nil || m.releases == nil {
		return
	}
	m.releases.WithLabelValues(normalizeLabel(reason)).Inc()
}

func (m *AssignmentMetrics) IncClamped() {
	if m == nil || m.clamped == nil {
		return
	}
	m.clamped.Inc()
}
