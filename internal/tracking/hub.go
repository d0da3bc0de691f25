// Package tracking keeps the live, in-memory view of deliveries being followed by
// customers: the partner's latest position, the delivery status and who is watching.
//
// The Hub is a mirror of the database, never the source of truth. Records are
// created lazily by the first event that mentions a delivery and removed once
// nobody has watched them for the retention window, or immediately when the
// delivery reached a terminal status and nobody is watching. A delivery removed
// in a terminal status is remembered for the retention window so late events
// cannot bring it back with an older status.
//
// Locking: the registry lock is always taken before a record lock, and a record
// lock before the connection lock. A record flagged as removed is never mutated;
// callers holding a stale pointer look it up again.
package tracking

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"deliveryhub/internal/core/domain/model/delivery"
	"deliveryhub/internal/core/domain/model/kernel"
	"deliveryhub/internal/core/ports"
	"deliveryhub/internal/pkg/metrics"

	"github.com/rs/zerolog"
)

// DefaultRetention is how long a record without subscribers is kept.
const DefaultRetention = time.Hour

var (
	// ErrUnknownConnection is returned when an event names a connection that is not registered.
	ErrUnknownConnection = errors.New("unknown connection")
	// ErrDeliveryIDRequired is returned for events without a delivery id.
	ErrDeliveryIDRequired = errors.New("deliveryId is required")
	// ErrTimestampRequired is returned for location readings without a timestamp.
	ErrTimestampRequired = errors.New("timestamp is required")
)

// Conn is a client connection as seen by the hub. Send must not block: a slow
// client loses messages instead of stalling the broadcast.
type Conn interface {
	ID() string
	Send(msg Message) bool
}

// Timer is a scheduled cleanup that can be cancelled.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run after d.
type AfterFunc func(d time.Duration, f func()) Timer

// Options configures a Hub. Zero values fall back to defaults.
type Options struct {
	Retention time.Duration
	AfterFunc AfterFunc
	Now       func() time.Time
	Metrics   *metrics.HubMetrics
	Logger    zerolog.Logger
}

// Stats is a point-in-time summary of the hub.
type Stats struct {
	Tracked       int
	Connections   int
	Subscriptions int
}

// Hub fans tracking events out to the connections subscribed to a delivery.
type Hub struct {
	mu      sync.RWMutex
	records map[string]*record

	closed  map[string]closedDelivery

	connMu sync.RWMutex
	conns  map[string]*connection

	retention time.Duration
	afterFunc AfterFunc
	now       func() time.Time
	metrics   *metrics.HubMetrics
	logger    zerolog.Logger
}

type connection struct {
	conn   Conn
	topics map[string]struct{}
}

// closedDelivery is what the hub keeps of a delivery removed in a terminal status.
type closedDelivery struct {
	status   delivery.Status
	statusAt time.Time
	eta      *time.Time
	at       time.Time
}

type record struct {
	mu sync.Mutex

	id          string
	status      delivery.Status
	statusKnown bool
	statusAt    time.Time
	eta         *time.Time
	location    *ports.LocationReading
	subscribers map[string]Conn

	cleanup    Timer
	generation uint64
	emptySince time.Time

	removed atomic.Bool
}

func NewHub(opts Options) *Hub {
	h := &Hub{
		records:   make(map[string]*record),
		closed:    make(map[string]closedDelivery),
		conns:     make(map[string]*connection),
		retention: opts.Retention,
		afterFunc: opts.AfterFunc,
		now:       opts.Now,
		metrics:   opts.Metrics,
		logger:    opts.Logger.With().Str("component", "tracking-hub").Logger(),
	}
	if h.retention <= 0 {
		h.retention = DefaultRetention
	}
	if h.afterFunc == nil {
		h.afterFunc = func(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }
	}
	if h.now == nil {
		h.now = func() time.Time { return time.Now().UTC() }
	}
	return h
}

// OnConnect registers a connection. Registering the same id twice replaces the
// connection but keeps its subscriptions.
func (h *Hub) OnConnect(conn Conn) {
	h.connMu.Lock()
	if existing, ok := h.conns[conn.ID()]; ok {
		existing.conn = conn
	} else {
		h.conns[conn.ID()] = &connection{conn: conn, topics: make(map[string]struct{})}
	}
	n := len(h.conns)
	h.connMu.Unlock()

	h.metrics.SetConnections(n)
	h.logger.Debug().Str("connId", conn.ID()).Msg("connection registered")
}

// OnLocationUpdate stores a partner position and broadcasts it to the subscribers
// of the delivery. A reading older than the stored one is dropped.
func (h *Hub) OnLocationUpdate(connID, deliveryID string, location kernel.Location, timestamp time.Time) error {
	if deliveryID == "" {
		return ErrDeliveryIDRequired
	}
	if timestamp.IsZero() {
		return ErrTimestampRequired
	}
	if err := location.Validate(); err != nil {
		return err
	}

	r := h.acquire(deliveryID, createOpen)
	if r == nil {
		h.logger.Debug().Str("connId", connID).Str("deliveryId", deliveryID).Msg("location for closed delivery dropped")
		return nil
	}
	defer r.mu.Unlock()

	if r.location != nil && timestamp.Before(r.location.Timestamp) {
		h.metrics.IncStale()
		h.logger.Debug().
			Str("connId", connID).
			Str("deliveryId", deliveryID).
			Time("timestamp", timestamp).
			Time("stored", r.location.Timestamp).
			Msg("stale location dropped")
		return nil
	}

	r.location = &ports.LocationReading{Location: location, Timestamp: timestamp}
	h.broadcastLocked(r, locationMessage(r))
	return nil
}

// OnStatusUpdate mirrors a delivery status changed now. See OnStatusUpdateAt.
func (h *Hub) OnStatusUpdate(connID, deliveryID string, status delivery.Status, eta *time.Time) error {
	return h.OnStatusUpdateAt(connID, deliveryID, status, eta, time.Time{})
}

// OnStatusUpdateAt mirrors a delivery status that changed at changedAt and
// broadcasts it. eta replaces the stored estimate only when supplied. A terminal
// status with no subscribers removes the record at once.
//
// Updates can arrive out of commit order, so a status older than the stored one
// is dropped, and so is any other status once the delivery is closed. A zero
// changedAt means now.
func (h *Hub) OnStatusUpdateAt(connID, deliveryID string, status delivery.Status, eta *time.Time, changedAt time.Time) error {
	if deliveryID == "" {
		return ErrDeliveryIDRequired
	}
	if err := status.Validate(); err != nil {
		return err
	}
	if changedAt.IsZero() {
		changedAt = h.now()
	}

	r := h.acquire(deliveryID, createOpen)
	if r == nil {
		h.dropStatus(connID, deliveryID, status, "delivery closed")
		return nil
	}
	if r.statusKnown {
		reason := ""
		switch {
		case r.status.IsTerminal() && status != r.status:
			reason = "delivery closed"
		case changedAt.Before(r.statusAt):
			reason = "older than stored status"
		}
		if reason != "" {
			r.mu.Unlock()
			h.dropStatus(connID, deliveryID, status, reason)
			return nil
		}
	}

	r.status = status
	r.statusKnown = true
	r.statusAt = changedAt
	if eta != nil {
		t := *eta
		r.eta = &t
	}
	h.broadcastLocked(r, statusMessage(r))

	remove := status.IsTerminal() && len(r.subscribers) == 0
	if remove {
		h.markRemovedLocked(r)
	}
	r.mu.Unlock()

	if remove {
		h.detach(r, metrics.RemovalTerminal)
	}
	h.logger.Debug().Str("connId", connID).Str("deliveryId", deliveryID).Str("status", status.String()).Msg("status mirrored")
	return nil
}

func (h *Hub) dropStatus(connID, deliveryID string, status delivery.Status, reason string) {
	h.metrics.IncStaleStatus()
	h.logger.Debug().
		Str("connId", connID).
		Str("deliveryId", deliveryID).
		Str("status", status.String()).
		Str("reason", reason).
		Msg("stale status dropped")
}

// Subscribe adds the connection to the delivery's subscribers and replays the
// current status, and the last location if known, to that connection only.
func (h *Hub) Subscribe(connID, deliveryID string) error {
	if deliveryID == "" {
		return ErrDeliveryIDRequired
	}

	r := h.acquire(deliveryID, createAlways)
	defer r.mu.Unlock()

	h.connMu.Lock()
	c, ok := h.conns[connID]
	if ok {
		c.topics[deliveryID] = struct{}{}
	}
	h.connMu.Unlock()
	if !ok {
		return ErrUnknownConnection
	}

	r.subscribers[connID] = c.conn
	h.cancelCleanupLocked(r)

	h.sendLocked(c.conn, statusMessage(r))
	if r.location != nil {
		h.sendLocked(c.conn, locationMessage(r))
	}
	return nil
}

// Unsubscribe removes the connection from the delivery's subscribers.
func (h *Hub) Unsubscribe(connID, deliveryID string) {
	h.connMu.Lock()
	if c, ok := h.conns[connID]; ok {
		delete(c.topics, deliveryID)
	}
	h.connMu.Unlock()

	h.leave(connID, deliveryID)
}

// OnDisconnect unregisters the connection and unsubscribes it from every delivery.
func (h *Hub) OnDisconnect(connID string) {
	h.connMu.Lock()
	c, ok := h.conns[connID]
	delete(h.conns, connID)
	n := len(h.conns)
	h.connMu.Unlock()

	if !ok {
		return
	}
	h.metrics.SetConnections(n)

	for deliveryID := range c.topics {
		h.leave(connID, deliveryID)
	}
	h.logger.Debug().Str("connId", connID).Int("topics", len(c.topics)).Msg("connection closed")
}

// GetDeliveryStatus returns a copy of the tracking record.
func (h *Hub) GetDeliveryStatus(deliveryID string) (ports.TrackingSnapshot, bool) {
	r := h.acquire(deliveryID, lookupOnly)
	if r == nil {
		return ports.TrackingSnapshot{}, false
	}
	defer r.mu.Unlock()

	return snapshotLocked(r), true
}

// Prime seeds a record with persisted state without broadcasting. Live state
// wins unless it is older: the status is set if none was seen yet or the stored
// one changed before statusChangedAt, the estimate if none is stored, and the
// location if it is newer than the stored one.
func (h *Hub) Prime(
	deliveryID string,
	status delivery.Status,
	statusChangedAt time.Time,
	eta *time.Time,
	location *ports.LocationReading,
) error {
	if deliveryID == "" {
		return ErrDeliveryIDRequired
	}
	if err := status.Validate(); err != nil {
		return err
	}

	r := h.acquire(deliveryID, createAlways)
	defer r.mu.Unlock()

	if !r.statusKnown || (!r.status.IsTerminal() && r.statusAt.Before(statusChangedAt)) {
		r.status = status
		r.statusKnown = true
		r.statusAt = statusChangedAt
	}
	if r.eta == nil && eta != nil {
		t := *eta
		r.eta = &t
	}
	if location != nil && (r.location == nil || r.location.Timestamp.Before(location.Timestamp)) {
		l := *location
		r.location = &l
	}
	return nil
}

// BroadcastAll sends msg to every registered connection.
func (h *Hub) BroadcastAll(msg Message) {
	h.connMu.RLock()
	targets := make([]Conn, 0, len(h.conns))
	for _, c := range h.conns {
		targets = append(targets, c.conn)
	}
	h.connMu.RUnlock()

	for _, conn := range targets {
		h.metrics.ObserveSend(msg.Event, conn.Send(msg))
	}
}

// Sweep removes records that have had no subscribers for at least the retention
// window. It backs up the per-record timers and returns how many were removed.
func (h *Hub) Sweep(now time.Time) int {
	h.mu.RLock()
	candidates := make([]*record, 0, len(h.records))
	for _, r := range h.records {
		candidates = append(candidates, r)
	}
	h.mu.RUnlock()

	h.mu.Lock()
	for id, c := range h.closed {
		if now.Sub(c.at) >= h.retention {
			delete(h.closed, id)
		}
	}
	h.mu.Unlock()

	removed := 0
	for _, r := range candidates {
		r.mu.Lock()
		expired := !r.removed.Load() &&
			len(r.subscribers) == 0 &&
			!r.emptySince.IsZero() &&
			now.Sub(r.emptySince) >= h.retention
		if expired {
			h.markRemovedLocked(r)
		}
		r.mu.Unlock()

		if expired {
			h.detach(r, metrics.RemovalSweep)
			removed++
		}
	}
	return removed
}

func (h *Hub) Stats() Stats {
	h.mu.RLock()
	tracked := len(h.records)
	h.mu.RUnlock()

	h.connMu.RLock()
	defer h.connMu.RUnlock()

	stats := Stats{Tracked: tracked, Connections: len(h.conns)}
	for _, c := range h.conns {
		stats.Subscriptions += len(c.topics)
	}
	return stats
}

// Close cancels every pending cleanup. The hub must not be used afterwards.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, r := range h.records {
		r.mu.Lock()
		h.markRemovedLocked(r)
		r.mu.Unlock()
		delete(h.records, id)
	}
	clear(h.closed)
	h.metrics.SetTracked(0)
}

type acquireMode int

const (
	lookupOnly acquireMode = iota
	// createOpen creates a record unless the delivery was recently closed.
	createOpen
	// createAlways creates a record, seeded with the final status of a recently
	// closed delivery.
	createAlways
)

// acquire returns the record locked, creating it as mode allows. It returns nil
// when no live record exists and mode forbids creating one.
func (h *Hub) acquire(deliveryID string, mode acquireMode) *record {
	for {
		h.mu.RLock()
		r := h.records[deliveryID]
		h.mu.RUnlock()

		if r == nil || r.removed.Load() {
			r = h.lookupOrCreate(deliveryID, mode)
			if r == nil {
				return nil
			}
		}

		r.mu.Lock()
		if !r.removed.Load() {
			return r
		}
		r.mu.Unlock()
	}
}

func (h *Hub) lookupOrCreate(deliveryID string, mode acquireMode) *record {
	h.mu.Lock()
	defer h.mu.Unlock()

	r := h.records[deliveryID]
	if r != nil && r.removed.Load() {
		h.rememberClosedLocked(r)
		delete(h.records, deliveryID)
		r = nil
	}
	if r != nil || mode == lookupOnly {
		return r
	}

	closed, isClosed := h.closed[deliveryID]
	if isClosed && h.now().Sub(closed.at) >= h.retention {
		delete(h.closed, deliveryID)
		isClosed = false
	}
	if isClosed && mode == createOpen {
		return nil
	}

	r = &record{
		id:          deliveryID,
		status:      delivery.Assigned,
		subscribers: make(map[string]Conn),
	}
	if isClosed {
		r.status = closed.status
		r.statusKnown = true
		r.statusAt = closed.statusAt
		r.eta = closed.eta
		delete(h.closed, deliveryID)
	}
	// Not visible to other goroutines yet, so no record lock is needed.
	h.scheduleCleanupLocked(r)
	h.records[deliveryID] = r
	h.metrics.SetTracked(len(h.records))
	return r
}

func (h *Hub) leave(connID, deliveryID string) {
	r := h.acquire(deliveryID, lookupOnly)
	if r == nil {
		return
	}

	if _, ok := r.subscribers[connID]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.subscribers, connID)

	remove := false
	if len(r.subscribers) == 0 {
		if r.status.IsTerminal() {
			h.markRemovedLocked(r)
			remove = true
		} else {
			h.scheduleCleanupLocked(r)
		}
	}
	r.mu.Unlock()

	if remove {
		h.detach(r, metrics.RemovalTerminal)
	}
}

func (h *Hub) scheduleCleanupLocked(r *record) {
	if r.cleanup != nil {
		r.cleanup.Stop()
	}
	r.generation++
	generation := r.generation
	r.emptySince = h.now()
	r.cleanup = h.afterFunc(h.retention, func() { h.expire(r, generation) })
}

func (h *Hub) cancelCleanupLocked(r *record) {
	if r.cleanup != nil {
		r.cleanup.Stop()
		r.cleanup = nil
	}
	r.generation++
	r.emptySince = time.Time{}
}

// expire runs when a cleanup timer fires. A newer schedule or a new subscriber
// in the meantime cancels the removal.
func (h *Hub) expire(r *record, generation uint64) {
	r.mu.Lock()
	if r.removed.Load() || r.generation != generation || len(r.subscribers) > 0 {
		r.mu.Unlock()
		return
	}
	r.cleanup = nil
	h.markRemovedLocked(r)
	r.mu.Unlock()

	h.detach(r, metrics.RemovalRetention)
}

func (h *Hub) markRemovedLocked(r *record) {
	if r.cleanup != nil {
		r.cleanup.Stop()
		r.cleanup = nil
	}
	r.generation++
	r.removed.Store(true)
}

// detach runs after r was flagged as removed; r is no longer mutated, so its
// fields can be read without the record lock.
func (h *Hub) detach(r *record, reason string) {
	h.mu.Lock()
	if h.records[r.id] == r {
		delete(h.records, r.id)
		h.rememberClosedLocked(r)
	}
	n := len(h.records)
	h.mu.Unlock()

	h.metrics.SetTracked(n)
	h.metrics.IncRemoved(reason)
	h.logger.Debug().Str("deliveryId", r.id).Str("reason", reason).Msg("tracking record removed")
}

// rememberClosedLocked keeps the final state of a record removed in a terminal
// status. The registry lock must be held and r flagged as removed.
func (h *Hub) rememberClosedLocked(r *record) {
	if !r.statusKnown || !r.status.IsTerminal() {
		return
	}
	h.closed[r.id] = closedDelivery{status: r.status, statusAt: r.statusAt, eta: r.eta, at: h.now()}
}

func (h *Hub) broadcastLocked(r *record, msg Message) {
	for _, conn := range r.subscribers {
		h.sendLocked(conn, msg)
	}
}

func (h *Hub) sendLocked(conn Conn, msg Message) {
	delivered := conn.Send(msg)
	h.metrics.ObserveSend(msg.Event, delivered)
	if !delivered {
		h.logger.Warn().Str("connId", conn.ID()).Str("event", msg.Event).Msg("send buffer full, message dropped")
	}
}

func snapshotLocked(r *record) ports.TrackingSnapshot {
	s := ports.TrackingSnapshot{
		DeliveryID:  r.id,
		Status:      r.status,
		Subscribers: len(r.subscribers),
	}
	if r.eta != nil {
		t := *r.eta
		s.EstimatedDeliveryTime = &t
	}
	if r.location != nil {
		l := *r.location
		s.Location = &l
	}
	return s
}

func statusMessage(r *record) Message {
	payload := StatusPayload{DeliveryID: r.id, Status: r.status.String()}
	if r.eta != nil {
		t := *r.eta
		payload.EstimatedDeliveryTime = &t
	}
	return Message{Event: EventDeliveryStatus, Data: payload}
}

func locationMessage(r *record) Message {
	return Message{Event: EventPartnerLocation, Data: LocationPayload{
		DeliveryID: r.id,
		Lat:        r.location.Location.Lat(),
		Lng:        r.location.Location.Lng(),
		Timestamp:  r.location.Timestamp,
	}}
}
