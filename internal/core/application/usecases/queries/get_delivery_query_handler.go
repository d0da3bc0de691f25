package queries

import (
	"context"
	"database/sql"
	"errors"

	"deliveryhub/internal/core/ports"
	"deliveryhub/internal/pkg/errs"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// GetDeliveryQueryHandler reads a delivery through an optional cache and attaches
// the live tracking snapshot. Only the persisted part is cached; the snapshot is
// read from the hub on every call. Consistent queries skip the cache both ways.
type GetDeliveryQueryHandler struct {
	db       *gorm.DB
	cache    DeliveryCache
	tracking ports.TrackingReader
	logger   zerolog.Logger
}

// NewGetDeliveryQueryHandler wires the handler. cache and tracking may be nil.
func NewGetDeliveryQueryHandler(
	db *gorm.DB,
	cache DeliveryCache,
	tracking ports.TrackingReader,
	logger zerolog.Logger,
) GetDeliveryQueryHandler {
	return GetDeliveryQueryHandler{
		db:       db,
		cache:    cache,
		tracking: tracking,
		logger:   logger.With().Str("component", "get-delivery").Logger(),
	}
}

// Handle returns errs.ObjectNotFoundError when the delivery does not exist.
func (h GetDeliveryQueryHandler) Handle(ctx context.Context, query GetDeliveryQuery) (GetDeliveryQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetDeliveryQueryResponse{}, err
	}

	id := query.DeliveryID().String()
	var (
		view DeliveryView
		err  error
	)
	if query.IsConsistent() {
		view, err = h.load(ctx, id)
	} else {
		view, err = h.view(ctx, id)
	}
	if err != nil {
		return GetDeliveryQueryResponse{}, err
	}

	resp := GetDeliveryQueryResponse{Delivery: view}
	if h.tracking != nil {
		if snapshot, ok := h.tracking.GetDeliveryStatus(id); ok {
			resp.Tracking = &snapshot
		}
	}
	return resp, nil
}

func (h GetDeliveryQueryHandler) view(ctx context.Context, id string) (DeliveryView, error) {
	if h.cache != nil {
		view, ok, err := h.cache.Get(ctx, id)
		switch {
		case err != nil:
			h.logger.Warn().Err(err).Str("deliveryId", id).Msg("delivery cache read failed")
		case ok:
			return view, nil
		}
	}

	view, err := h.load(ctx, id)
	if err != nil {
		return DeliveryView{}, err
	}

	if h.cache != nil {
		if err = h.cache.Set(ctx, view); err != nil {
			h.logger.Warn().Err(err).Str("deliveryId", id).Msg("delivery cache write failed")
		}
	}
	return view, nil
}

func (h GetDeliveryQueryHandler) load(ctx context.Context, id string) (DeliveryView, error) {
	row := h.db.WithContext(ctx).Raw(`
		SELECT `+deliveryViewColumns+`
		FROM deliveries d
		JOIN partners p ON p.id = d.partner_id
		WHERE d.id = ?
	`, id).Row()

	view, err := scanDeliveryView(row)
	if errors.Is(err, sql.ErrNoRows) {
		return DeliveryView{}, errs.NewObjectNotFoundError("delivery", id)
	}
	return view, err
}
