// Package http exposes the delivery use cases over REST.
package http

import (
	"context"
	"net/http"

	"deliveryhub/internal/core/application/usecases/commands"
	"deliveryhub/internal/core/application/usecases/queries"
	"deliveryhub/internal/core/domain/model/delivery"
	"deliveryhub/internal/core/domain/model/kernel"
	"deliveryhub/internal/core/ports"
	"deliveryhub/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

type AssignDeliveryHandler interface {
	Handle(ctx context.Context, command commands.AssignDeliveryCommand) (commands.AssignedDelivery, error)
}

type UpdateDeliveryStatusHandler interface {
	Handle(ctx context.Context, command commands.UpdateDeliveryStatusCommand) (*delivery.Delivery, error)
}

type GetDeliveryHandler interface {
	Handle(ctx context.Context, query queries.GetDeliveryQuery) (queries.GetDeliveryQueryResponse, error)
}

type GetPartnerActiveDeliveriesHandler interface {
	Handle(ctx context.Context, query queries.GetPartnerActiveDeliveriesQuery) ([]queries.DeliveryView, error)
}

// Server handles the REST API and coordinates between HTTP and the use cases.
type Server struct {
	// Command handlers
	assignDeliveryHandler       AssignDeliveryHandler
	updateDeliveryStatusHandler UpdateDeliveryStatusHandler

	// Query handlers
	getDeliveryHandler                GetDeliveryHandler
	getPartnerActiveDeliveriesHandler GetPartnerActiveDeliveriesHandler
}

func NewServer(
	assignDeliveryHandler AssignDeliveryHandler,
	updateDeliveryStatusHandler UpdateDeliveryStatusHandler,
	getDeliveryHandler GetDeliveryHandler,
	getPartnerActiveDeliveriesHandler GetPartnerActiveDeliveriesHandler,
) *Server {
	return &Server{
		assignDeliveryHandler:             assignDeliveryHandler,
		updateDeliveryStatusHandler:       updateDeliveryStatusHandler,
		getDeliveryHandler:                getDeliveryHandler,
		getPartnerActiveDeliveriesHandler: getPartnerActiveDeliveriesHandler,
	}
}

// Register mounts the API routes under /api/v1.
func (s *Server) Register(e *echo.Echo) {
	v1 := e.Group("/api/v1")
	v1.POST("/deliveries", s.CreateDelivery)
	v1.PATCH("/deliveries/:id/status", s.UpdateDeliveryStatus)
	v1.GET("/deliveries/:id", s.GetDelivery)
	v1.GET("/partners/:id/deliveries/active", s.GetPartnerActiveDeliveries)
}

// CreateDelivery godoc
//
//	@Summary		Assign a partner to a confirmed order
//	@Tags			deliveries
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateDeliveryRequest	true	"Confirmed order"
//	@Success		201		{object}	CreateDeliveryResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse	"NO_PARTNER_AVAILABLE or DELIVERY_EXISTS"
//	@Failure		503		{object}	ErrorResponse
//	@Router			/api/v1/deliveries [post]
func (s *Server) CreateDelivery(c echo.Context) error {
	var req CreateDeliveryRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	orderID, err := parseID("orderId", req.OrderID)
	if err != nil {
		return err
	}
	storeID, err := parseID("storeId", req.StoreID)
	if err != nil {
		return err
	}
	customer, err := delivery.NewCustomer(req.Customer.Name, req.Customer.Phone, req.Customer.Address)
	if err != nil {
		return err
	}

	cmd, err := commands.NewAssignDeliveryCommand(orderID, storeID, customer, req.Items, req.TotalAmount, req.EstimatedPickupTime)
	if err != nil {
		return err
	}

	assigned, err := s.assignDeliveryHandler.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}

	d := assigned.Delivery
	return c.JSON(http.StatusCreated, CreateDeliveryResponse{
		DeliveryID:            d.ID().String(),
		OrderID:               d.OrderID().String(),
		Status:                d.Status().String(),
		AssignedAt:            d.AssignedAt(),
		EstimatedPickupTime:   d.EstimatedPickupTime(),
		EstimatedDeliveryTime: d.EstimatedDeliveryTime(),
		Partner: PartnerResponse{
			ID:    assigned.Partner.ID().String(),
			Name:  assigned.Partner.Name(),
			Phone: assigned.Partner.Phone(),
		},
	})
}

// UpdateDeliveryStatus godoc
//
//	@Summary		Move a delivery to a new status
//	@Description	Forward skips are allowed except past PICKED_UP. Re-sending the current status is a no-op.
//	@Tags			deliveries
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Delivery id"
//	@Param			request	body		UpdateStatusRequest	true	"New status"
//	@Success		200		{object}	DeliveryStatusResponse
//	@Failure		400		{object}	ErrorResponse	"INVALID_STATUS"
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse	"INVALID_STATUS_TRANSITION"
//	@Failure		503		{object}	ErrorResponse	"STORAGE_FAILURE"
//	@Router			/api/v1/deliveries/{id}/status [patch]
func (s *Server) UpdateDeliveryStatus(c echo.Context) error {
	id, err := parseID("id", c.Param("id"))
	if err != nil {
		return err
	}

	var req UpdateStatusRequest
	if err = c.Bind(&req); err != nil {
		return err
	}
	if err = c.Validate(&req); err != nil {
		return err
	}

	var location *kernel.Location
	if req.Location != nil {
		loc, locErr := kernel.NewLocation(*req.Location.Lat, *req.Location.Lng)
		if locErr != nil {
			return locErr
		}
		location = &loc
	}

	cmd, err := commands.NewUpdateDeliveryStatusCommand(id, req.Status, location, req.EstimatedDeliveryTime)
	if err != nil {
		return err
	}

	d, err := s.updateDeliveryStatusHandler.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, DeliveryStatusResponse{
		DeliveryID:            d.ID().String(),
		Status:                d.Status().String(),
		StatusChangedAt:       d.StatusChangedAt(),
		EstimatedDeliveryTime: d.EstimatedDeliveryTime(),
		PickedUpAt:            d.PickedUpAt(),
		DeliveredAt:           d.DeliveredAt(),
		FailedAt:              d.FailedAt(),
		CancelledAt:           d.CancelledAt(),
	})
}

// GetDelivery godoc
//
//	@Summary	Get a delivery with its live tracking state
//	@Tags		deliveries
//	@Produce	json
//	@Param		id	path		string	true	"Delivery id"
//	@Success	200	{object}	GetDeliveryResponse
//	@Failure	400	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/v1/deliveries/{id} [get]
func (s *Server) GetDelivery(c echo.Context) error {
	id, err := parseID("id", c.Param("id"))
	if err != nil {
		return err
	}

	query, err := queries.NewGetDeliveryQuery(id)
	if err != nil {
		return err
	}

	result, err := s.getDeliveryHandler.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, GetDeliveryResponse{
		Delivery: result.Delivery,
		Tracking: toTrackingResponse(result.Tracking),
	})
}

// GetPartnerActiveDeliveries godoc
//
//	@Summary	List the deliveries a partner still has to finish
//	@Tags		partners
//	@Produce	json
//	@Param		id	path		string	true	"Partner id"
//	@Success	200	{array}		queries.DeliveryView
//	@Failure	400	{object}	ErrorResponse
//	@Router		/api/v1/partners/{id}/deliveries/active [get]
func (s *Server) GetPartnerActiveDeliveries(c echo.Context) error {
	id, err := parseID("id", c.Param("id"))
	if err != nil {
		return err
	}

	query, err := queries.NewGetPartnerActiveDeliveriesQuery(id)
	if err != nil {
		return err
	}

	views, err := s.getPartnerActiveDeliveriesHandler.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, views)
}

func parseID(name, value string) (kernel.UUID, error) {
	id, err := kernel.UUIDFromString(value)
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return id, nil
}

func toTrackingResponse(snapshot *ports.TrackingSnapshot) *TrackingResponse {
	if snapshot == nil {
		return nil
	}
	resp := &TrackingResponse{
		Status:                snapshot.Status.String(),
		EstimatedDeliveryTime: snapshot.EstimatedDeliveryTime,
		Subscribers:           snapshot.Subscribers,
	}
	if snapshot.Location != nil {
		resp.Location = &TrackingLocationResponse{
			Lat:       snapshot.Location.Location.Lat(),
			Lng:       snapshot.Location.Location.Lng(),
			Timestamp: snapshot.Location.Timestamp,
		}
	}
	return resp
}
