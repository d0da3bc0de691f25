// Package deliveryrepo maps Delivery aggregates to the deliveries table.
package deliveryrepo

import (
	"encoding/json"
	"time"

	"deliveryhub/internal/core/domain/model/delivery"
	"deliveryhub/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DeliveryDTO is the row layout of the deliveries table. order_id is unique: an
// order is delivered by exactly one delivery.
type DeliveryDTO struct {
	ID                    uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID               uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	StoreID               uuid.UUID       `gorm:"type:uuid;not null"`
	PartnerID             uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerName          string          `gorm:"type:varchar(255);not null"`
	CustomerPhone         string          `gorm:"type:varchar(32);not null"`
	CustomerAddress       string          `gorm:"type:text;not null"`
	Items                 string          `gorm:"type:text;not null"`
	TotalAmount           decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Status                string          `gorm:"type:varchar(32);not null;index"`
	AssignedAt            time.Time       `gorm:"not null"`
	StatusChangedAt       time.Time       `gorm:"not null"`
	PickedUpAt            *time.Time
	DeliveredAt           *time.Time
	FailedAt              *time.Time
	CancelledAt           *time.Time
	EstimatedPickupTime   time.Time `gorm:"not null"`
	EstimatedDeliveryTime time.Time `gorm:"not null"`
	CurrentLat            *float64
	CurrentLng            *float64
	LocationUpdatedAt     *time.Time
	CapacityReleased      bool `gorm:"not null;default:false"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (DeliveryDTO) TableName() string {
	return "deliveries"
}

func fromDomain(d *delivery.Delivery) DeliveryDTO {
	customer := d.Customer()
	dto := DeliveryDTO{
		ID:                    d.ID().Google(),
		OrderID:               d.OrderID().Google(),
		StoreID:               d.StoreID().Google(),
		PartnerID:             d.PartnerID().Google(),
		CustomerName:          customer.Name(),
		CustomerPhone:         customer.Phone(),
		CustomerAddress:       customer.Address(),
		Items:                 string(d.Items()),
		TotalAmount:           d.TotalAmount(),
		Status:                d.Status().String(),
		AssignedAt:            d.AssignedAt(),
		StatusChangedAt:       d.StatusChangedAt(),
		PickedUpAt:            d.PickedUpAt(),
		DeliveredAt:           d.DeliveredAt(),
		FailedAt:              d.FailedAt(),
		CancelledAt:           d.CancelledAt(),
		EstimatedPickupTime:   d.EstimatedPickupTime(),
		EstimatedDeliveryTime: d.EstimatedDeliveryTime(),
		LocationUpdatedAt:     d.LocationUpdatedAt(),
		CapacityReleased:      d.CapacityReleased(),
	}
	if loc := d.CurrentLocation(); loc != nil {
		lat, lng := loc.Lat(), loc.Lng()
		dto.CurrentLat = &lat
		dto.CurrentLng = &lng
	}
	return dto
}

func toDomain(dto DeliveryDTO) (*delivery.Delivery, error) {
	ids := make([]kernel.UUID, 0, 4)
	for _, raw := range []uuid.UUID{dto.ID, dto.OrderID, dto.StoreID, dto.PartnerID} {
		id, err := kernel.UUIDFromGoogle(raw)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	customer, err := delivery.NewCustomer(dto.CustomerName, dto.CustomerPhone, dto.CustomerAddress)
	if err != nil {
		return nil, err
	}

	status, err := delivery.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	var location *kernel.Location
	if dto.CurrentLat != nil && dto.CurrentLng != nil {
		loc, locErr := kernel.NewLocation(*dto.CurrentLat, *dto.CurrentLng)
		if locErr != nil {
			return nil, locErr
		}
		location = &loc
	}

	return delivery.RestoreDelivery(delivery.RestoreParams{
		NewParams: delivery.NewParams{
			ID:                  ids[0],
			OrderID:             ids[1],
			StoreID:             ids[2],
			PartnerID:           ids[3],
			Customer:            customer,
			Items:               json.RawMessage(dto.Items),
			TotalAmount:         dto.TotalAmount,
			EstimatedPickupTime: dto.EstimatedPickupTime,
			AssignedAt:          dto.AssignedAt,
		},
		Status:                status,
		StatusChangedAt:       dto.StatusChangedAt,
		PickedUpAt:            dto.PickedUpAt,
		DeliveredAt:           dto.DeliveredAt,
		FailedAt:              dto.FailedAt,
		CancelledAt:           dto.CancelledAt,
		EstimatedDeliveryTime: dto.EstimatedDeliveryTime,
		CurrentLocation:       location,
		LocationUpdatedAt:     dto.LocationUpdatedAt,
		CapacityReleased:      dto.CapacityReleased,
	})
}
