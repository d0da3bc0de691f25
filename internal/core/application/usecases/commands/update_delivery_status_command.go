package commands

import (
	"errors"
	"fmt"
	"time"

	"deliveryhub/internal/core/domain/model/delivery"
	"deliveryhub/internal/core/domain/model/kernel"
	"deliveryhub/internal/pkg/errs"
	"deliveryhub/internal/pkg/guard"
)

var ErrUpdateDeliveryStatusCommandIsNotConstructed = errors.New(
	"UpdateDeliveryStatusCommand must be created via NewUpdateDeliveryStatusCommand constructor",
)

// UpdateDeliveryStatusCommand moves a delivery to a new status, optionally with the
// partner's current position and a revised ETA.
//
// Example:
//
//	loc, _ := kernel.NewLocation(17.45, 78.39)
//	cmd, err := commands.NewUpdateDeliveryStatusCommand(deliveryID, "PICKED_UP", &loc, nil)
//	if errors.Is(err, commands.ErrInvalidStatusValue) {
//	    // reject the request, nothing was touched
//	}
type UpdateDeliveryStatusCommand struct { //nolint:recvcheck //using for validation
	deliveryID            kernel.UUID
	status                delivery.Status
	location              *kernel.Location
	estimatedDeliveryTime *time.Time

	guard guard.ConstructorGuard
}

// NewUpdateDeliveryStatusCommand parses the wire status. An unknown value returns an
// error wrapping ErrInvalidStatusValue.
func NewUpdateDeliveryStatusCommand(
	deliveryID kernel.UUID,
	status string,
	location *kernel.Location,
	estimatedDeliveryTime *time.Time,
) (UpdateDeliveryStatusCommand, error) {
	cmd := UpdateDeliveryStatusCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setDeliveryID(deliveryID),
		cmd.setStatus(status),
		cmd.setLocation(location),
		cmd.setEstimatedDeliveryTime(estimatedDeliveryTime),
	); err != nil {
		return UpdateDeliveryStatusCommand{}, err
	}

	return cmd, nil
}

func (c UpdateDeliveryStatusCommand) Validate() error {
	return c.guard.Validate(ErrUpdateDeliveryStatusCommandIsNotConstructed)
}

func (c UpdateDeliveryStatusCommand) DeliveryID() kernel.UUID {
	return c.deliveryID
}

func (c UpdateDeliveryStatusCommand) Status() delivery.Status {
	return c.status
}

// Location returns the reported position, nil when the update carried none.
func (c UpdateDeliveryStatusCommand) Location() *kernel.Location {
	return c.location
}

// EstimatedDeliveryTime returns the revised ETA, nil when unchanged.
func (c UpdateDeliveryStatusCommand) EstimatedDeliveryTime() *time.Time {
	return c.estimatedDeliveryTime
}

func (c *UpdateDeliveryStatusCommand) setDeliveryID(id kernel.UUID) error {
	if id.IsZero() {
		return errs.NewValueIsRequiredError("deliveryID")
	}

	c.deliveryID = id
	return nil
}

func (c *UpdateDeliveryStatusCommand) setStatus(raw string) error {
	status, err := delivery.ParseStatus(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidStatusValue, err)
	}

	c.status = status
	return nil
}

func (c *UpdateDeliveryStatusCommand) setLocation(location *kernel.Location) error {
	if location == nil {
		return nil
	}
	if err := location.Validate(); err != nil {
		return err
	}

	loc := *location
	c.location = &loc
	return nil
}

func (c *UpdateDeliveryStatusCommand) setEstimatedDeliveryTime(eta *time.Time) error {
	if eta == nil {
		return nil
	}
	if eta.IsZero() {
		return errs.NewValueIsRequiredError("estimatedDeliveryTime")
	}

	t := *eta
	c.estimatedDeliveryTime = &t
	return nil
}
