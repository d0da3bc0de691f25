package commands

import (
	"context"
	"errors"
	"time"

	"deliveryhub/internal/core/domain/model/delivery"
	"deliveryhub/internal/core/domain/model/kernel"
	"deliveryhub/internal/core/domain/model/partner"
	"deliveryhub/internal/core/domain/services"
	"deliveryhub/internal/core/ports"
	"deliveryhub/internal/pkg/metrics"

	"github.com/rs/zerolog"
)

// candidateLimit bounds how many partner rows one lookup locks. When every
// candidate of a lookup fills up concurrently the lookup runs again, at most
// candidateRounds times in total.
const (
	candidateLimit  = 10
	candidateRounds = 3
)

// AssignedDelivery is the outcome of a successful assignment.
type AssignedDelivery struct {
	Delivery *delivery.Delivery
	Partner  *partner.Partner
}

// AssignDeliveryCommandHandler matches a confirmed order with the first eligible
// partner and creates the delivery.
//
// The partner's capacity reservation and the delivery row are written in one
// transaction. The reservation is a conditional increment, so two handlers racing
// for the last slot of a partner cannot both win; the loser moves on to the next
// candidate.
//
// Example:
//
//	handler := commands.NewAssignDeliveryCommandHandler(uowFactory, publisher, assignmentMetrics, log)
//	assigned, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, commands.ErrNoPartnerAvailable):
//	    // retry later or queue
//	case errors.Is(err, commands.ErrDeliveryAlreadyExists):
//	    // the order was already assigned
//	case err != nil:
//	    return err
//	}
type AssignDeliveryCommandHandler struct {
	uowFactory UoWFactory
	publisher  ports.DeliveryEventPublisher
	metrics    *metrics.AssignmentMetrics
	logger     zerolog.Logger
}

func NewAssignDeliveryCommandHandler(
	uowFactory UoWFactory,
	publisher ports.DeliveryEventPublisher,
	assignmentMetrics *metrics.AssignmentMetrics,
	logger zerolog.Logger,
) AssignDeliveryCommandHandler {
	return AssignDeliveryCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		metrics:    assignmentMetrics,
		logger:     logger.With().Str("component", "assign-delivery").Logger(),
	}
}

// Handle assigns a partner and returns the created delivery.
//
// Returns:
//   - ErrNoPartnerAvailable when no partner can take the order (nothing is written)
//   - ErrDeliveryAlreadyExists when the order already has a delivery
//   - an error wrapping ErrStorageFailure when persistence fails
//   - validation errors for a command built without its constructor
func (h AssignDeliveryCommandHandler) Handle(ctx context.Context, command AssignDeliveryCommand) (AssignedDelivery, error) {
	if err := command.Validate(); err != nil {
		return AssignedDelivery{}, err
	}

	assigned, err := h.assign(ctx, command)
	switch {
	case errors.Is(err, ErrNoPartnerAvailable):
		h.metrics.IncOutcome(metrics.OutcomeNoPartner)
		h.logger.Info().Str("orderId", command.OrderID().String()).Msg("no delivery partner available")
		return AssignedDelivery{}, err
	case errors.Is(err, ErrDeliveryAlreadyExists):
		h.metrics.IncOutcome(metrics.OutcomeDuplicate)
		return AssignedDelivery{}, err
	case err != nil:
		h.metrics.IncOutcome(metrics.OutcomeError)
		h.logger.Error().Err(err).Str("orderId", command.OrderID().String()).Msg("delivery assignment failed")
		return AssignedDelivery{}, err
	}

	h.metrics.IncOutcome(metrics.OutcomeAssigned)
	h.logger.Info().
		Str("deliveryId", assigned.Delivery.ID().String()).
		Str("orderId", command.OrderID().String()).
		Str("partnerId", assigned.Partner.ID().String()).
		Int("partnerOrders", assigned.Partner.CurrentOrders()).
		Msg("delivery assigned")

	h.publisher.DeliveryCreated(ctx, ports.DeliveryCreated{
		DeliveryID:            assigned.Delivery.ID(),
		OrderID:               assigned.Delivery.OrderID(),
		StoreID:               assigned.Delivery.StoreID(),
		PartnerID:             assigned.Partner.ID(),
		PartnerName:           assigned.Partner.Name(),
		PartnerPhone:          assigned.Partner.Phone(),
		Status:                assigned.Delivery.Status(),
		EstimatedDeliveryTime: assigned.Delivery.EstimatedDeliveryTime(),
		OccurredAt:            assigned.Delivery.AssignedAt(),
	})

	return assigned, nil
}

func (h AssignDeliveryCommandHandler) assign(ctx context.Context, command AssignDeliveryCommand) (AssignedDelivery, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return AssignedDelivery{}, storageFailure(err)
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	partners := uow.PartnerRepository()
	deliveries := uow.DeliveryRepository()

	chosen, err := h.choose(ctx, partners)
	if err != nil {
		return AssignedDelivery{}, err
	}

	d, err := delivery.NewDelivery(delivery.NewParams{
		ID:                  kernel.NewUUID(),
		OrderID:             command.OrderID(),
		StoreID:             command.StoreID(),
		PartnerID:           chosen.ID(),
		Customer:            command.Customer(),
		Items:               command.Items(),
		TotalAmount:         command.TotalAmount(),
		EstimatedPickupTime: command.EstimatedPickupTime(),
		AssignedAt:          time.Now().UTC(),
	})
	if err != nil {
		return AssignedDelivery{}, err
	}

	if err = deliveries.Add(ctx, d); err != nil {
		return AssignedDelivery{}, storageFailure(err)
	}

	if err = uow.Commit(ctx); err != nil {
		return AssignedDelivery{}, storageFailure(err)
	}

	return AssignedDelivery{Delivery: d, Partner: chosen}, nil
}

// choose reserves capacity on the first partner that still has it. A fresh
// lookup sees the rows committed since the last one, so partners beyond the
// first page are reached once the first page filled up.
func (h AssignDeliveryCommandHandler) choose(ctx context.Context, partners ports.PartnerRepository) (*partner.Partner, error) {
	for round := 1; ; round++ {
		candidates, err := partners.FindEligibleForUpdate(ctx, candidateLimit)
		if err != nil {
			return nil, storageFailure(err)
		}

		chosen, lost, err := h.reserve(ctx, partners, candidates)
		if err != nil {
			return nil, err
		}
		if chosen != nil {
			return chosen, nil
		}
		if lost == 0 || round == candidateRounds {
			return nil, ErrNoPartnerAvailable
		}
		h.logger.Debug().Int("lost", lost).Int("round", round).Msg("every candidate filled up concurrently, looking again")
	}
}

// reserve walks the candidates until one reservation sticks. It returns a nil
// partner and the number of lost reservations when none did.
func (h AssignDeliveryCommandHandler) reserve(
	ctx context.Context,
	partners ports.PartnerRepository,
	candidates []*partner.Partner,
) (*partner.Partner, int, error) {
	dispatcher := services.NewPartnerDispatcher()
	lost := 0

	for {
		chosen, err := dispatcher.Dispatch(candidates)
		if errors.Is(err, services.ErrNoPartnerAvailable) {
			return nil, lost, nil
		}
		if err != nil {
			return nil, lost, err
		}

		reserved, err := partners.ReserveCapacity(ctx, chosen.ID())
		if err != nil {
			return nil, lost, storageFailure(err)
		}
		if reserved {
			return chosen, lost, nil
		}

		h.logger.Debug().Str("partnerId", chosen.ID().String()).Msg("partner filled up concurrently, trying next")
		lost++
		candidates = without(candidates, chosen)
	}
}

func without(partners []*partner.Partner, p *partner.Partner) []*partner.Partner {
	rest := make([]*partner.Partner, 0, len(partners))
	for _, candidate := range partners {
		if !candidate.IsEqual(p) {
			rest = append(rest, candidate)
		}
	}
	return rest
}
