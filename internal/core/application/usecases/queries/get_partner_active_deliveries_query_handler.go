package queries

import (
	"context"

	"deliveryhub/internal/core/domain/model/delivery"

	"gorm.io/gorm"
)

// GetPartnerActiveDeliveriesQueryHandler returns the non-terminal deliveries of a
// partner, oldest assignment first. An unknown partner yields an empty list.
type GetPartnerActiveDeliveriesQueryHandler struct {
	db *gorm.DB
}

func NewGetPartnerActiveDeliveriesQueryHandler(db *gorm.DB) GetPartnerActiveDeliveriesQueryHandler {
	return GetPartnerActiveDeliveriesQueryHandler{db: db}
}

func (h GetPartnerActiveDeliveriesQueryHandler) Handle(
	ctx context.Context,
	query GetPartnerActiveDeliveriesQuery,
) ([]DeliveryView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT `+deliveryViewColumns+`
		FROM deliveries d
		JOIN partners p ON p.id = d.partner_id
		WHERE d.partner_id = ?
		  AND d.status NOT IN (?)
		ORDER BY d.assigned_at, d.id
	`, query.PartnerID().String(), terminalStatuses()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	views := make([]DeliveryView, 0)
	for rows.Next() {
		view, scanErr := scanDeliveryView(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		views = append(views, view)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return views, nil
}

func terminalStatuses() []string {
	return []string{
		delivery.Delivered.String(),
		delivery.Failed.String(),
		delivery.Cancelled.String(),
	}
}
