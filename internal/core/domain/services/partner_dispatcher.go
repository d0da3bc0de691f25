package services

import (
	"errors"

	"deliveryhub/internal/core/domain/model/partner"
)

// ErrNoPartnerAvailable is returned when none of the candidates can take another order.
// It is a recoverable outcome: the caller retries later or queues the order.
var ErrNoPartnerAvailable = errors.New("no delivery partner available")

// PartnerDispatcher picks the partner that will carry a new delivery.
//
// Selection is a first-eligible filter over the candidates in the order they were
// given: no distance, rating or load ranking is applied.
//
// Example usage:
//
//	dispatcher := services.NewPartnerDispatcher()
//	chosen, err := dispatcher.Dispatch(candidates)
//	if errors.Is(err, services.ErrNoPartnerAvailable) {
//	    // report "no partner" to the caller
//	}
type PartnerDispatcher struct{}

func NewPartnerDispatcher() PartnerDispatcher {
	return PartnerDispatcher{}
}

// Dispatch returns the first candidate able to take an order, with one slot of its
// capacity already taken in memory. The caller persists that reservation.
//
// Returns:
//   - the chosen partner
//   - ErrNoPartnerAvailable when no candidate is eligible
//   - a validation error when a candidate was not properly constructed
func (PartnerDispatcher) Dispatch(candidates []*partner.Partner) (*partner.Partner, error) {
	for _, p := range candidates {
		if err := p.Validate(); err != nil {
			return nil, err
		}

		if !p.CanTakeOrder() {
			continue
		}

		if err := p.TakeOrder(); err != nil {
			return nil, err
		}
		return p, nil
	}

	return nil, ErrNoPartnerAvailable
}
