package commands

import (
	"encoding/json"
	"errors"
	"time"

	"deliveryhub/internal/core/domain/model/delivery"
	"deliveryhub/internal/core/domain/model/kernel"
	"deliveryhub/internal/pkg/errs"
	"deliveryhub/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrAssignDeliveryCommandIsNotConstructed = errors.New(
	"AssignDeliveryCommand must be created via NewAssignDeliveryCommand constructor",
)

// AssignDeliveryCommand asks for a partner to carry a confirmed order.
//
// Example:
//
//	customer, _ := delivery.NewCustomer("Asha", "+919000000002", "12 Jubilee Hills")
//	cmd, err := commands.NewAssignDeliveryCommand(orderID, storeID, customer, items,
//	    decimal.RequireFromString("349.50"), time.Now().Add(20*time.Minute))
//	if err != nil {
//	    return fmt.Errorf("invalid assignment request: %w", err)
//	}
//	assigned, err := handler.Handle(ctx, cmd)
type AssignDeliveryCommand struct { //nolint:recvcheck //using for validation
	orderID             kernel.UUID
	storeID             kernel.UUID
	customer            delivery.Customer
	items               json.RawMessage
	totalAmount         decimal.Decimal
	estimatedPickupTime time.Time

	guard guard.ConstructorGuard
}

func NewAssignDeliveryCommand(
	orderID kernel.UUID,
	storeID kernel.UUID,
	customer delivery.Customer,
	items json.RawMessage,
	totalAmount decimal.Decimal,
	estimatedPickupTime time.Time,
) (AssignDeliveryCommand, error) {
	cmd := AssignDeliveryCommand{
		items:       items,
		totalAmount: totalAmount,
		guard:       guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setStoreID(storeID),
		cmd.setCustomer(customer),
		cmd.setEstimatedPickupTime(estimatedPickupTime),
	); err != nil {
		return AssignDeliveryCommand{}, err
	}

	return cmd, nil
}

func (c AssignDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrAssignDeliveryCommandIsNotConstructed)
}

func (c AssignDeliveryCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c AssignDeliveryCommand) StoreID() kernel.UUID {
	return c.storeID
}

func (c AssignDeliveryCommand) Customer() delivery.Customer {
	return c.customer
}

// Items returns the order lines as opaque JSON.
func (c AssignDeliveryCommand) Items() json.RawMessage {
	return c.items
}

func (c AssignDeliveryCommand) TotalAmount() decimal.Decimal {
	return c.totalAmount
}

func (c AssignDeliveryCommand) EstimatedPickupTime() time.Time {
	return c.estimatedPickupTime
}

func (c *AssignDeliveryCommand) setOrderID(id kernel.UUID) error {
	if id.IsZero() {
		return errs.NewValueIsRequiredError("orderID")
	}

	c.orderID = id
	return nil
}

func (c *AssignDeliveryCommand) setStoreID(id kernel.UUID) error {
	if id.IsZero() {
		return errs.NewValueIsRequiredError("storeID")
	}

	c.storeID = id
	return nil
}

func (c *AssignDeliveryCommand) setCustomer(customer delivery.Customer) error {
	if err := customer.Validate(); err != nil {
		return err
	}

	c.customer = customer
	return nil
}

func (c *AssignDeliveryCommand) setEstimatedPickupTime(t time.Time) error {
	if t.IsZero() {
		return errs.NewValueIsRequiredError("estimatedPickupTime")
	}

	c.estimatedPickupTime = t
	return nil
}
