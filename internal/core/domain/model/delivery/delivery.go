package delivery

import (
	"encoding/json"
	"errors"
	"time"

	"deliveryhub/internal/core/domain/model/kernel"
	"deliveryhub/internal/pkg/errs"
	"deliveryhub/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

// EstimatedDeliveryBuffer is added to the estimated pickup time to get the
// estimated delivery time of a fresh delivery.
const EstimatedDeliveryBuffer = 30 * time.Minute

var (
	// ErrDeliveryIsNotConstructed is returned when using a Delivery literal.
	ErrDeliveryIsNotConstructed = errors.New("Delivery must be created via NewDelivery or RestoreDelivery")
	// ErrInvalidStatusTransition is returned when a status change breaks the lifecycle.
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	// ErrDeliveryIsClosed is returned when mutating a delivery in a terminal status.
	ErrDeliveryIsClosed = errors.New("delivery is closed")
)

// Delivery is the aggregate root binding an order to the partner carrying it.
//
// Invariants:
//   - exactly one partner per delivery
//   - status follows the Status state machine
//   - capacityReleased flips to true once and only once, on the first terminal status
type Delivery struct {
	id          kernel.UUID
	orderID     kernel.UUID
	storeID     kernel.UUID
	partnerID   kernel.UUID
	customer    Customer
	items       json.RawMessage
	totalAmount decimal.Decimal
	status      Status

	assignedAt      time.Time
	statusChangedAt time.Time
	pickedUpAt      *time.Time
	deliveredAt     *time.Time
	failedAt        *time.Time
	cancelledAt     *time.Time

	estimatedPickupTime   time.Time
	estimatedDeliveryTime time.Time

	currentLocation   *kernel.Location
	locationUpdatedAt *time.Time

	capacityReleased bool
	guard            guard.ConstructorGuard
}

// NewParams describes a delivery about to be assigned.
type NewParams struct {
	ID                  kernel.UUID
	OrderID             kernel.UUID
	StoreID             kernel.UUID
	PartnerID           kernel.UUID
	Customer            Customer
	Items               json.RawMessage
	TotalAmount         decimal.Decimal
	EstimatedPickupTime time.Time
	AssignedAt          time.Time
}

// NewDelivery creates a delivery in Assigned status.
//
// The estimated delivery time is EstimatedPickupTime + EstimatedDeliveryBuffer.
// Items are kept as opaque JSON; an empty value is stored as "[]".
//
// Example:
//
//	d, err := delivery.NewDelivery(delivery.NewParams{
//	    ID:                  kernel.NewUUID(),
//	    OrderID:             orderID,
//	    StoreID:             storeID,
//	    PartnerID:           p.ID(),
//	    Customer:            customer,
//	    TotalAmount:         decimal.RequireFromString("349.50"),
//	    EstimatedPickupTime: pickup,
//	    AssignedAt:          time.Now().UTC(),
//	})
func NewDelivery(params NewParams) (*Delivery, error) {
	d := &Delivery{
		status:          Assigned,
		assignedAt:      params.AssignedAt,
		statusChangedAt: params.AssignedAt,
		guard:           guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		d.setIDs(params.ID, params.OrderID, params.StoreID, params.PartnerID),
		d.setCustomer(params.Customer),
		d.setItems(params.Items),
		d.setTotalAmount(params.TotalAmount),
		d.setEstimatedPickupTime(params.EstimatedPickupTime),
		requireTime("assignedAt", params.AssignedAt),
	); err != nil {
		return nil, err
	}

	d.estimatedDeliveryTime = d.estimatedPickupTime.Add(EstimatedDeliveryBuffer)
	return d, nil
}

// RestoreParams carries the persisted state of a delivery.
type RestoreParams struct {
	NewParams

	Status                Status
	StatusChangedAt       time.Time
	PickedUpAt            *time.Time
	DeliveredAt           *time.Time
	FailedAt              *time.Time
	CancelledAt           *time.Time
	EstimatedDeliveryTime time.Time
	CurrentLocation       *kernel.Location
	LocationUpdatedAt     *time.Time
	CapacityReleased      bool
}

// RestoreDelivery rebuilds a delivery read from storage without applying creation defaults.
func RestoreDelivery(params RestoreParams) (*Delivery, error) {
	d := &Delivery{
		assignedAt:            params.AssignedAt,
		statusChangedAt:       params.StatusChangedAt,
		pickedUpAt:            params.PickedUpAt,
		deliveredAt:           params.DeliveredAt,
		failedAt:              params.FailedAt,
		cancelledAt:           params.CancelledAt,
		estimatedDeliveryTime: params.EstimatedDeliveryTime,
		currentLocation:       params.CurrentLocation,
		locationUpdatedAt:     params.LocationUpdatedAt,
		capacityReleased:      params.CapacityReleased,
		guard:                 guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		d.setIDs(params.ID, params.OrderID, params.StoreID, params.PartnerID),
		d.setCustomer(params.Customer),
		d.setItems(params.Items),
		d.setTotalAmount(params.TotalAmount),
		d.setEstimatedPickupTime(params.EstimatedPickupTime),
		params.Status.Validate(),
	); err != nil {
		return nil, err
	}

	d.status = params.Status
	return d, nil
}

func (d *Delivery) Validate() error {
	if d == nil {
		return ErrDeliveryIsNotConstructed
	}
	return d.guard.Validate(ErrDeliveryIsNotConstructed)
}

func (d *Delivery) IsEqual(other *Delivery) bool {
	return other != nil && d.id.IsEqual(other.id)
}

func (d *Delivery) ID() kernel.UUID { return d.id }
func (d *Delivery) OrderID() kernel.UUID { return d.orderID }
func (d *Delivery) StoreID() kernel.UUID { return d.storeID }
func (d *Delivery) PartnerID() kernel.UUID { return d.partnerID }
func (d *Delivery) Customer() Customer { return d.customer }
func (d *Delivery) Items() json.RawMessage { return d.items }
func (d *Delivery) TotalAmount() decimal.Decimal { return d.totalAmount }
func (d *Delivery) Status() Status { return d.status }
func (d *Delivery) AssignedAt() time.Time { return d.assignedAt }
func (d *Delivery) StatusChangedAt() time.Time { return d.statusChangedAt }
func (d *Delivery) PickedUpAt() *time.Time { return d.pickedUpAt }
func (d *Delivery) DeliveredAt() *time.Time { return d.deliveredAt }
func (d *Delivery) FailedAt() *time.Time { return d.failedAt }
func (d *Delivery) CancelledAt() *time.Time { return d.cancelledAt }
func (d *Delivery) EstimatedPickupTime() time.Time { return d.estimatedPickupTime }

func (d *Delivery) EstimatedDeliveryTime() time.Time { return d.estimatedDeliveryTime }

// CurrentLocation returns the last position recorded for the delivery, nil if none.
func (d *Delivery) CurrentLocation() *kernel.Location { return d.currentLocation }

func (d *Delivery) LocationUpdatedAt() *time.Time { return d.locationUpdatedAt }

// CapacityReleased reports whether the partner's slot for this delivery was already freed.
func (d *Delivery) CapacityReleased() bool { return d.capacityReleased }

// StatusChange describes the effect of ChangeStatus on the delivery and on the partner.
type StatusChange struct {
	From Status
	To   Status
	// Changed is false when the requested status equals the current one.
	Changed bool
	// ReleaseCapacity asks the caller to free the partner's slot.
	ReleaseCapacity bool
	// Completed asks the caller to count a successful delivery for the partner.
	Completed bool
}

// ChangeStatus moves the delivery to next and stamps the transition time.
//
// Re-applying the current status is a no-op with Changed == false, which keeps a
// retried DELIVERED from releasing capacity twice. Illegal moves return an error
// wrapping ErrInvalidStatusTransition and leave the delivery untouched.
//
// Example:
//
//	change, err := d.ChangeStatus(delivery.Delivered, time.Now().UTC())
//	if err != nil {
//	    return err
//	}
//	if change.ReleaseCapacity {
//	    // decrement partner.currentOrders in the same transaction
//	}
func (d *Delivery) ChangeStatus(next Status, at time.Time) (StatusChange, error) {
	change := StatusChange{From: d.status, To: next}

	if err := next.Validate(); err != nil {
		return change, err
	}
	if err := requireTime("status timestamp", at); err != nil {
		return change, err
	}
	if next == d.status {
		return change, nil
	}

	status, err := d.status.TransitionTo(next)
	if err != nil {
		return change, err
	}

	// statusChangedAt orders the changes of one delivery, so it strictly increases
	// even when clocks disagree.
	if !at.After(d.statusChangedAt) {
		at = d.statusChangedAt.Add(time.Microsecond)
	}

	d.status = status
	d.statusChangedAt = at
	change.Changed = true

	switch status {
	case PickedUp:
		d.pickedUpAt = &at
	case Delivered:
		d.deliveredAt = &at
	case Failed:
		d.failedAt = &at
	case Cancelled:
		d.cancelledAt = &at
	default:
	}

	if status.ReleasesCapacity() && !d.capacityReleased {
		d.capacityReleased = true
		change.ReleaseCapacity = true
		change.Completed = status == Delivered
	}

	return change, nil
}

// UpdateLocation records the partner position for this delivery.
func (d *Delivery) UpdateLocation(location kernel.Location, at time.Time) error {
	if d.status.IsTerminal() {
		return ErrDeliveryIsClosed
	}
	if err := errors.Join(location.Validate(), requireTime("location timestamp", at)); err != nil {
		return err
	}

	d.currentLocation = &location
	d.locationUpdatedAt = &at
	return nil
}

// SetEstimatedDeliveryTime overrides the ETA, typically with a value reported by the partner.
func (d *Delivery) SetEstimatedDeliveryTime(eta time.Time) error {
	if d.status.IsTerminal() {
		return ErrDeliveryIsClosed
	}
	if err := requireTime("estimatedDeliveryTime", eta); err != nil {
		return err
	}

	d.estimatedDeliveryTime = eta
	return nil
}

func (d *Delivery) setIDs(id, orderID, storeID, partnerID kernel.UUID) error {
	var problems []error
	for name, v := range map[string]kernel.UUID{
		"id": id, "orderID": orderID, "storeID": storeID, "partnerID": partnerID,
	} {
		if v.IsZero() {
			problems = append(problems, errs.NewValueIsRequiredError(name))
		}
	}
	if err := errors.Join(problems...); err != nil {
		return err
	}

	d.id, d.orderID, d.storeID, d.partnerID = id, orderID, storeID, partnerID
	return nil
}

func (d *Delivery) setCustomer(c Customer) error {
	if err := c.Validate(); err != nil {
		return err
	}

	d.customer = c
	return nil
}

func (d *Delivery) setItems(items json.RawMessage) error {
	if len(items) == 0 {
		d.items = json.RawMessage("[]")
		return nil
	}
	if !json.Valid(items) {
		return errs.NewValueIsInvalidErrorWithCause("items", errors.New("items must be valid JSON"))
	}

	d.items = append(json.RawMessage(nil), items...)
	return nil
}

func (d *Delivery) setTotalAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return errs.NewValueIsOutOfRangeError("totalAmount", amount.String(), "0", "unbounded")
	}

	d.totalAmount = amount
	return nil
}

func (d *Delivery) setEstimatedPickupTime(t time.Time) error {
	if err := requireTime("estimatedPickupTime", t); err != nil {
		return err
	}

	d.estimatedPickupTime = t
	return nil
}

func requireTime(name string, t time.Time) error {
	if t.IsZero() {
		return errs.NewValueIsRequiredError(name)
	}
	return nil
}
