package queries

import (
	"errors"

	"deliveryhub/internal/core/domain/model/kernel"
	"deliveryhub/internal/pkg/errs"
	"deliveryhub/internal/pkg/guard"
)

var ErrGetPartnerActiveDeliveriesQueryIsNotConstructed = errors.New(
	"GetPartnerActiveDeliveriesQuery must be created via NewGetPartnerActiveDeliveriesQuery constructor",
)

// GetPartnerActiveDeliveriesQuery lists the deliveries a partner still has to finish.
type GetPartnerActiveDeliveriesQuery struct {
	partnerID kernel.UUID
	guard     guard.ConstructorGuard
}

func NewGetPartnerActiveDeliveriesQuery(partnerID kernel.UUID) (GetPartnerActiveDeliveriesQuery, error) {
	if partnerID.IsZero() {
		return GetPartnerActiveDeliveriesQuery{}, errs.NewValueIsRequiredError("partnerID")
	}
	return GetPartnerActiveDeliveriesQuery{partnerID: partnerID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetPartnerActiveDeliveriesQuery) Validate() error {
	return q.guard.Validate(ErrGetPartnerActiveDeliveriesQueryIsNotConstructed)
}

func (q GetPartnerActiveDeliveriesQuery) PartnerID() kernel.UUID {
	return q.partnerID
}
