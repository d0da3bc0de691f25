// Package queries contains the read side of the delivery service. Handlers read
// straight from the database with SQL tuned for each view and never load aggregates.
package queries

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// LocationView is a position in a read model.
type LocationView struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DeliveryView is the persisted state of a delivery joined with its partner.
type DeliveryView struct {
	ID                    string          `json:"id"`
	OrderID               string          `json:"orderId"`
	StoreID               string          `json:"storeId"`
	PartnerID             string          `json:"partnerId"`
	PartnerName           string          `json:"partnerName"`
	PartnerPhone          string          `json:"partnerPhone"`
	CustomerName          string          `json:"customerName"`
	CustomerPhone         string          `json:"customerPhone"`
	CustomerAddress       string          `json:"customerAddress"`
	Items                 json.RawMessage `json:"items" swaggertype:"object"`
	TotalAmount           decimal.Decimal `json:"totalAmount" swaggertype:"string"`
	Status                string          `json:"status"`
	StatusChangedAt       time.Time       `json:"statusChangedAt"`
	AssignedAt            time.Time       `json:"assignedAt"`
	PickedUpAt            *time.Time      `json:"pickedUpAt,omitempty"`
	DeliveredAt           *time.Time      `json:"deliveredAt,omitempty"`
	FailedAt              *time.Time      `json:"failedAt,omitempty"`
	CancelledAt           *time.Time      `json:"cancelledAt,omitempty"`
	EstimatedPickupTime   time.Time       `json:"estimatedPickupTime"`
	EstimatedDeliveryTime time.Time       `json:"estimatedDeliveryTime"`
	CurrentLocation       *LocationView   `json:"currentLocation,omitempty"`
	LocationUpdatedAt     *time.Time      `json:"locationUpdatedAt,omitempty"`
}

// DeliveryCache keeps recently read delivery views. Implementations must treat a
// missing entry as (zero, false, nil).
type DeliveryCache interface {
	Get(ctx context.Context, deliveryID string) (DeliveryView, bool, error)
	Set(ctx context.Context, view DeliveryView) error
}

const deliveryViewColumns = `
	d.id,
	d.order_id,
	d.store_id,
	d.partner_id,
	p.name,
	p.phone,
	d.customer_name,
	d.customer_phone,
	d.customer_address,
	d.items,
	d.total_amount,
	d.status,
	d.status_changed_at,
	d.assigned_at,
	d.picked_up_at,
	d.delivered_at,
	d.failed_at,
	d.cancelled_at,
	d.estimated_pickup_time,
	d.estimated_delivery_time,
	d.current_lat,
	d.current_lng,
	d.location_updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeliveryView(row rowScanner) (DeliveryView, error) {
	var (
		view     DeliveryView
		items    string
		lat, lng *float64
	)

	if err := row.Scan(
		&view.ID,
		&view.OrderID,
		&view.StoreID,
		&view.PartnerID,
		&view.PartnerName,
		&view.PartnerPhone,
		&view.CustomerName,
		&view.CustomerPhone,
		&view.CustomerAddress,
		&items,
		&view.TotalAmount,
		&view.Status,
		&view.StatusChangedAt,
		&view.AssignedAt,
		&view.PickedUpAt,
		&view.DeliveredAt,
		&view.FailedAt,
		&view.CancelledAt,
		&view.EstimatedPickupTime,
		&view.EstimatedDeliveryTime,
		&lat,
		&lng,
		&view.LocationUpdatedAt,
	); err != nil {
		return DeliveryView{}, err
	}

	view.Items = json.RawMessage(items)
	if lat != nil && lng != nil {
		view.CurrentLocation = &LocationView{Lat: *lat, Lng: *lng}
	}
	return view, nil
}
