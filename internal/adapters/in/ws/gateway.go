// Package ws carries the live tracking protocol over WebSocket. Partners push
// positions and status changes; customers subscribe to deliveries.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"deliveryhub/internal/core/application/usecases/commands"
	"deliveryhub/internal/core/application/usecases/queries"
	"deliveryhub/internal/core/domain/model/delivery"
	"deliveryhub/internal/core/domain/model/kernel"
	"deliveryhub/internal/core/ports"
	"deliveryhub/internal/pkg/errs"
	"deliveryhub/internal/tracking"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

type UpdateDeliveryStatusHandler interface {
	Handle(ctx context.Context, command commands.UpdateDeliveryStatusCommand) (*delivery.Delivery, error)
}

type GetDeliveryHandler interface {
	Handle(ctx context.Context, query queries.GetDeliveryQuery) (queries.GetDeliveryQueryResponse, error)
}

// Options tunes the connection keepalive and buffering.
type Options struct {
	SendBuffer     int
	WriteWait      time.Duration
	PongWait       time.Duration
	PingPeriod     time.Duration
	MaxMessageSize int64
	CheckOrigin    func(r *http.Request) bool
}

func (o Options) withDefaults() Options {
	if o.SendBuffer <= 0 {
		o.SendBuffer = 64
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 10 * time.Second
	}
	if o.PongWait <= 0 {
		o.PongWait = 60 * time.Second
	}
	if o.PingPeriod <= 0 || o.PingPeriod >= o.PongWait {
		o.PingPeriod = o.PongWait * 9 / 10
	}
	if o.MaxMessageSize <= 0 {
		o.MaxMessageSize = 4096
	}
	return o
}

// Gateway upgrades HTTP requests and routes inbound frames to the hub and the
// delivery use cases.
type Gateway struct {
	hub          *tracking.Hub
	updateStatus UpdateDeliveryStatusHandler
	getDelivery  GetDeliveryHandler
	validate     *validator.Validate
	upgrader     websocket.Upgrader
	opts         Options
	logger       zerolog.Logger

	mu      sync.Mutex
	clients map[string]*client
	closed  bool
}

func NewGateway(
	hub *tracking.Hub,
	updateStatus UpdateDeliveryStatusHandler,
	getDelivery GetDeliveryHandler,
	validate *validator.Validate,
	opts Options,
	logger zerolog.Logger,
) *Gateway {
	opts = opts.withDefaults()
	return &Gateway{
		hub:          hub,
		updateStatus: updateStatus,
		getDelivery:  getDelivery,
		validate:     validate,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     opts.CheckOrigin,
		},
		opts:    opts,
		logger:  logger.With().Str("component", "ws-gateway").Logger(),
		clients: make(map[string]*client),
	}
}

// ServeHTTP upgrades the connection and serves it until the peer goes away.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Debug().Err(err).Msg("upgrade failed")
		return
	}

	id := uuid.NewString()
	c := newClient(id, conn, g.opts, g.logger.With().Str("connId", id).Logger())
	if !g.track(c) {
		c.close()
		return
	}
	g.hub.OnConnect(c)
	go c.writePump()

	g.readPump(r.Context(), c)

	g.hub.OnDisconnect(id)
	g.untrack(id)
	c.close()
}

// Close sends a close frame to every open connection. New upgrades are refused.
func (g *Gateway) Close() {
	g.mu.Lock()
	g.closed = true
	clients := make([]*client, 0, len(g.clients))
	for _, c := range g.clients {
		clients = append(clients, c)
	}
	g.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}

// Connections returns the number of open connections.
func (g *Gateway) Connections() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.clients)
}

func (g *Gateway) track(c *client) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return false
	}
	g.clients[c.id] = c
	return true
}

func (g *Gateway) untrack(id string) {
	g.mu.Lock()
	delete(g.clients, id)
	g.mu.Unlock()
}

func (g *Gateway) readPump(ctx context.Context, c *client) {
	c.conn.SetReadLimit(g.opts.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(g.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(g.opts.PongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Debug().Err(err).Msg("connection closed unexpectedly")
			}
			return
		}

		var frame inboundFrame
		if err = json.Unmarshal(raw, &frame); err != nil || frame.Event == "" {
			c.logger.Warn().Err(err).Msg("malformed frame dropped")
			continue
		}

		if err = g.dispatch(ctx, c, frame); err != nil {
			message := err.Error()
			if errors.Is(err, commands.ErrStorageFailure) {
				c.logger.Error().Err(err).Str("event", frame.Event).Msg("inbound event failed")
				message = "internal error"
			} else {
				c.logger.Info().Err(err).Str("event", frame.Event).Msg("inbound event rejected")
			}
			c.Send(tracking.Message{Event: tracking.EventError, Data: tracking.ErrorPayload{
				Event:   frame.Event,
				Message: message,
			}})
		}
	}
}

func (g *Gateway) dispatch(ctx context.Context, c *client, frame inboundFrame) error {
	switch frame.Event {
	case tracking.EventLocationUpdate:
		var in locationUpdate
		if err := g.decode(frame.Data, &in); err != nil {
			return err
		}
		loc, err := kernel.NewLocation(*in.Lat, *in.Lng)
		if err != nil {
			return err
		}
		return g.hub.OnLocationUpdate(c.id, in.DeliveryID, loc, in.Timestamp)

	case tracking.EventDeliveryStatus:
		var in statusUpdate
		if err := g.decode(frame.Data, &in); err != nil {
			return err
		}
		return g.applyStatus(ctx, in)

	case tracking.EventTrackDelivery:
		var in trackRequest
		if err := g.decode(frame.Data, &in); err != nil {
			return err
		}
		g.prime(ctx, in.DeliveryID)
		return g.hub.Subscribe(c.id, in.DeliveryID)

	case tracking.EventStopTracking:
		var in trackRequest
		if err := g.decode(frame.Data, &in); err != nil {
			return err
		}
		g.hub.Unsubscribe(c.id, in.DeliveryID)
		return nil
	}

	return errors.New("unknown event")
}

func (g *Gateway) decode(data json.RawMessage, dest any) error {
	if len(data) == 0 {
		return errors.New("data is required")
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return errors.New("data is not valid json for this event")
	}
	return g.validate.Struct(dest)
}

// applyStatus persists the change. The hub hears about it from the committed
// event, so a rejected change never reaches viewers.
func (g *Gateway) applyStatus(ctx context.Context, in statusUpdate) error {
	id, err := kernel.UUIDFromString(in.DeliveryID)
	if err != nil {
		return errs.NewValueIsInvalidErrorWithCause("deliveryId", err)
	}

	var location *kernel.Location
	if in.Lat != nil && in.Lng != nil {
		loc, locErr := kernel.NewLocation(*in.Lat, *in.Lng)
		if locErr != nil {
			return locErr
		}
		location = &loc
	}

	cmd, err := commands.NewUpdateDeliveryStatusCommand(id, in.Status, location, in.EstimatedDeliveryTime)
	if err != nil {
		return err
	}
	_, err = g.updateStatus.Handle(ctx, cmd)
	return err
}

// prime seeds the hub with the stored state so the first replay is accurate even
// when no partner has reported since the service started. It reads past the
// cache; a cached view may predate the latest commit.
func (g *Gateway) prime(ctx context.Context, deliveryID string) {
	id, err := kernel.UUIDFromString(deliveryID)
	if err != nil {
		return
	}
	query, err := queries.NewGetDeliveryQuery(id)
	if err != nil {
		return
	}

	result, err := g.getDelivery.Handle(ctx, query.Consistent())
	if err != nil {
		if !errors.Is(err, errs.ErrObjectNotFound) {
			g.logger.Warn().Err(err).Str("deliveryId", deliveryID).Msg("stored delivery not loaded")
		}
		return
	}

	view := result.Delivery
	status, err := delivery.ParseStatus(view.Status)
	if err != nil {
		return
	}
	eta := view.EstimatedDeliveryTime

	var reading *ports.LocationReading
	if view.CurrentLocation != nil && view.LocationUpdatedAt != nil {
		if loc, locErr := kernel.NewLocation(view.CurrentLocation.Lat, view.CurrentLocation.Lng); locErr == nil {
			reading = &ports.LocationReading{Location: loc, Timestamp: *view.LocationUpdatedAt}
		}
	}

	if err = g.hub.Prime(deliveryID, status, view.StatusChangedAt, &eta, reading); err != nil {
		g.logger.Debug().Err(err).Str("deliveryId", deliveryID).Msg("hub not primed")
	}
}
