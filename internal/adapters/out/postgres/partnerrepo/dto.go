// Package partnerrepo maps delivery partners to the partners table.
package partnerrepo

import (
	"time"

	"deliveryhub/internal/core/domain/model/kernel"
	"deliveryhub/internal/core/domain/model/partner"

	"github.com/google/uuid"
)

// PartnerDTO is the row layout of the partners table.
type PartnerDTO struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name            string    `gorm:"type:varchar(255);not null"`
	Phone           string    `gorm:"type:varchar(32);not null"`
	IsActive        bool      `gorm:"not null;default:true"`
	IsAvailable     bool      `gorm:"not null;default:true"`
	CurrentOrders   int       `gorm:"type:int;not null;default:0"`
	TotalDeliveries int       `gorm:"type:int;not null;default:0"`
	LastLat         *float64
	LastLng         *float64
	LastLocationAt  *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (PartnerDTO) TableName() string {
	return "partners"
}

func fromDomain(p *partner.Partner) PartnerDTO {
	dto := PartnerDTO{
		ID:              p.ID().Google(),
		Name:            p.Name(),
		Phone:           p.Phone(),
		IsActive:        p.IsActive(),
		IsAvailable:     p.IsAvailable(),
		CurrentOrders:   p.CurrentOrders(),
		TotalDeliveries: p.TotalDeliveries(),
		LastLocationAt:  p.LastLocationAt(),
	}
	if loc := p.LastLocation(); loc != nil {
		lat, lng := loc.Lat(), loc.Lng()
		dto.LastLat = &lat
		dto.LastLng = &lng
	}
	return dto
}

func toDomain(dto PartnerDTO) (*partner.Partner, error) {
	id, err := kernel.UUIDFromGoogle(dto.ID)
	if err != nil {
		return nil, err
	}

	var location *kernel.Location
	if dto.LastLat != nil && dto.LastLng != nil {
		loc, locErr := kernel.NewLocation(*dto.LastLat, *dto.LastLng)
		if locErr != nil {
			return nil, locErr
		}
		location = &loc
	}

	return partner.RestorePartner(partner.RestoreParams{
		ID:              id,
		Name:            dto.Name,
		Phone:           dto.Phone,
		IsActive:        dto.IsActive,
		IsAvailable:     dto.IsAvailable,
		CurrentOrders:   dto.CurrentOrders,
		TotalDeliveries: dto.TotalDeliveries,
		LastLocation:    location,
		LastLocationAt:  dto.LastLocationAt,
	})
}
