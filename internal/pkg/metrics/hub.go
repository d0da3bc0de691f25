package metrics

import "github.com/prometheus/client_golang/prometheus"

// Reasons a tracking record leaves the hub.
const (
	RemovalRetention = "retention"
	RemovalTerminal  = "terminal"
	RemovalSweep     = "sweep"
)

// HubMetrics describes the live tracking registry.
type HubMetrics struct {
	tracked     prometheus.Gauge
	connections prometheus.Gauge
	messages    *prometheus.CounterVec
	dropped     prometheus.Counter
	stale       prometheus.Counter
	staleStatus prometheus.Counter
	removed     *prometheus.CounterVec
}

func NewHubMetrics(reg prometheus.Registerer) *HubMetrics {
	if reg == nil {
		return &HubMetrics{}
	}
	m := &HubMetrics{
		tracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tracked_deliveries",
			Help:      "Deliveries currently held in the tracking registry.",
		}),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tracking_connections",
			Help:      "Open tracking connections.",
		}),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tracking_messages_sent_total",
			Help:      "Messages queued to tracking connections by event.",
		}, []string{"event"}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tracking_messages_dropped_total",
			Help:      "Messages dropped because a connection could not keep up.",
		}),
		stale: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tracking_stale_locations_total",
			Help:      "Location updates ignored because a newer reading was already stored.",
		}),
		staleStatus: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tracking_stale_statuses_total",
			Help:      "Status updates ignored because they were older than the stored status or the delivery was closed.",
		}),
		removed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tracking_records_removed_total",
			Help:      "Tracking records removed by reason.",
		}, []string{"reason"}),
	}
	reg.MustRegister(m.tracked, m.connections, m.messages, m.dropped, m.stale, m.staleStatus, m.removed)
	return m
}

func (m *HubMetrics) SetTracked(n int) {
	if m == nil || m.tracked == nil {
		return
	}
	m.tracked.Set(float64(n))
}

func (m *HubMetrics) SetConnections(n int) {
	if m == nil || m.connections == nil {
		return
	}
	m.connections.Set(float64(n))
}

// ObserveSend records one send attempt to a connection.
func (m *HubMetrics) ObserveSend(event string, delivered bool) {
	if m == nil || m.messages == nil {
		return
	}
	if !delivered {
		m.dropped.Inc()
		return
	}
	m.messages.WithLabelValues(normalizeLabel(event)).Inc()
}

func (m *HubMetrics) IncStale() {
	if m == nil || m.stale == nil {
		return
	}
	m.stale.Inc()
}

func (m *HubMetrics) IncStaleStatus() {
	if m == nil || m.staleStatus == nil {
		return
	}
	m.staleStatus.Inc()
}

func (m *HubMetrics) IncRemoved(reason string) {
	if m == nil || m.removed == nil {
		return
	}
	m.removed.WithLabelValues(normalizeLabel(reason)).Inc()
}
