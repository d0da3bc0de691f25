package queries

import (
	"errors"

	"deliveryhub/internal/core/domain/model/kernel"
	"deliveryhub/internal/core/ports"
	"deliveryhub/internal/pkg/errs"
	"deliveryhub/internal/pkg/guard"
)

var ErrGetDeliveryQueryIsNotConstructed = errors.New(
	"GetDeliveryQuery must be created via NewGetDeliveryQuery constructor",
)

// GetDeliveryQuery reads one delivery together with its live tracking state.
//
// Example:
//
//	query, err := queries.NewGetDeliveryQuery(deliveryID)
//	if err != nil {
//	    return err
//	}
//	resp, err := handler.Handle(ctx, query)
//	if resp.Tracking != nil {
//	    fmt.Println(resp.Tracking.Subscribers, "viewers")
//	}
type GetDeliveryQuery struct {
	deliveryID kernel.UUID
	consistent bool
	guard      guard.ConstructorGuard
}

func NewGetDeliveryQuery(deliveryID kernel.UUID) (GetDeliveryQuery, error) {
	if deliveryID.IsZero() {
		return GetDeliveryQuery{}, errs.NewValueIsRequiredError("deliveryID")
	}
	return GetDeliveryQuery{deliveryID: deliveryID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetDeliveryQuery) Validate() error {
	return q.guard.Validate(ErrGetDeliveryQueryIsNotConstructed)
}

func (q GetDeliveryQuery) DeliveryID() kernel.UUID {
	return q.deliveryID
}

// Consistent returns a copy that reads the database and skips the cache.
func (q GetDeliveryQuery) Consistent() GetDeliveryQuery {
	q.consistent = true
	return q
}

func (q GetDeliveryQuery) IsConsistent() bool {
	return q.consistent
}

// GetDeliveryQueryResponse pairs the stored delivery with the in-memory tracking
// record. Tracking is nil when nobody tracks the delivery right now.
type GetDeliveryQueryResponse struct {
	Delivery DeliveryView
	Tracking *ports.TrackingSnapshot
}
