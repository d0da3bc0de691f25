package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCronJobMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)
	m.ObserveDuration("tracking-sweep", 250*time.Millisecond)
	m.IncSuccess("tracking-sweep")
	m.IncFailure("")

	mfs, err := reg.Gather()
	require.NoError(t, err)

	assertCounter(t, mfs, "deliveryhub_job_success_total", "job", "tracking-sweep", 1)
	assertCounter(t, mfs, "deliveryhub_job_failure_total", "job", "unknown", 1)

	sum, err := fetchHistogramSum(mfs, "deliveryhub_job_duration_seconds", "job", "tracking-sweep")
	require.NoError(t, err)
	assert.InDelta(t, 0.25, sum, 1e-9)
}

func TestAssignmentMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAssignmentMetrics(reg)
	m.IncOutcome(OutcomeAssigned)
	m.IncOutcome(OutcomeAssigned)
	m.IncOutcome(OutcomeNoPartner)
	m.IncRelease(ReleaseReasonDone)
	m.IncClamped()

	mfs, err := reg.Gather()
	require.NoError(t, err)

	assertCounter(t, mfs, "deliveryhub_assignments_total", "outcome", OutcomeAssigned, 2)
	assertCounter(t, mfs, "deliveryhub_assignments_total", "outcome", OutcomeNoPartner, 1)
	assertCounter(t, mfs, "deliveryhub_capacity_releases_total", "reason", ReleaseReasonDone, 1)
	mf := findMetricFamily(mfs, "deliveryhub_capacity_release_clamped_total")
	require.NotNil(t, mf)
	assert.InDelta(t, 1, mf.GetMetric()[0].GetCounter().GetValue(), 0)
}

func TestHubMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHubMetrics(reg)
	m.SetTracked(4)
	m.SetConnections(2)
	m.ObserveSend("partner-location", true)
	m.ObserveSend("partner-location", false)
	m.IncRemoved(RemovalRetention)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	assertCounter(t, mfs, "deliveryhub_tracking_messages_sent_total", "event", "partner-location", 1)
	assertCounter(t, mfs, "deliveryhub_tracking_records_removed_total", "reason", RemovalRetention, 1)
	tracked := findMetricFamily(mfs, "deliveryhub_tracked_deliveries")
	require.NotNil(t, tracked)
	assert.InDelta(t, 4, tracked.GetMetric()[0].GetGauge().GetValue(), 0)
	dropped := findMetricFamily(mfs, "deliveryhub_tracking_messages_dropped_total")
	require.NotNil(t, dropped)
	assert.InDelta(t, 1, dropped.GetMetric()[0].GetCounter().GetValue(), 0)
}

func TestNilRecordersAreNoOps(t *testing.T) {
	var cron *CronJobMetrics
	var assignment *AssignmentMetrics
	var hub *HubMetrics

	assert.NotPanics(t, func() {
		cron.IncSuccess("x")
		assignment.IncOutcome(OutcomeError)
		assignment.IncClamped()
		hub.ObserveSend("x", false)
		hub.SetTracked(1)
		NewHubMetrics(nil).IncStale()
	})
}

func assertCounter(t *testing.T, mfs []*dto.MetricFamily, name, label, value string, want float64) {
	t.Helper()
	got, err := fetchCounterValue(mfs, name, label, value)
	require.NoError(t, err)
	assert.InDelta(t, want, got, 0)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
