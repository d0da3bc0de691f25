package partner

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"deliveryhub/internal/core/domain/model/kernel"
	"deliveryhub/internal/pkg/errs"
	"deliveryhub/internal/pkg/guard"
)

// MaxConcurrentOrders is the number of deliveries a partner may carry at the same time.
const MaxConcurrentOrders = 3

var (
	// ErrNameIsRequired is returned when a partner has an empty name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
	// ErrPhoneIsRequired is returned when a partner has an empty phone.
	ErrPhoneIsRequired = errs.NewValueIsRequiredError("phone")
	// ErrPartnerIsNotConstructed is returned when using a Partner literal.
	ErrPartnerIsNotConstructed = errors.New("Partner must be created via NewPartner or RestorePartner")
	// ErrPartnerUnavailable is returned when an inactive or unavailable partner is asked to take an order.
	ErrPartnerUnavailable = errors.New("partner is not accepting orders")
	// ErrPartnerAtCapacity is returned when a partner already carries MaxConcurrentOrders deliveries.
	ErrPartnerAtCapacity = errors.New("partner is at capacity")
)

// Partner is the delivery partner aggregate root.
//
// Business rules:
//   - currentOrders stays within [0, MaxConcurrentOrders]
//   - a partner takes a new order only when active, available and below the cap
//   - releasing capacity that was never taken is clamped at zero and reported to the caller
type Partner struct {
	id              kernel.UUID
	name            string
	phone           string
	isActive        bool
	isAvailable     bool
	currentOrders   int
	totalDeliveries int
	lastLocation    *kernel.Location
	lastLocationAt  *time.Time
	guard           guard.ConstructorGuard
}

// NewPartner creates an active, available partner without orders.
//
// Example:
//
//	p, err := partner.NewPartner(kernel.NewUUID(), "Ravi", "+919000000001")
func NewPartner(id kernel.UUID, name, phone string) (*Partner, error) {
	p := &Partner{
		isActive:    true,
		isAvailable: true,
		guard:       guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		p.setID(id),
		p.setName(name),
		p.setPhone(phone),
	); err != nil {
		return nil, err
	}

	return p, nil
}

// RestoreParams carries the persisted state of a partner.
type RestoreParams struct {
	ID              kernel.UUID
	Name            string
	Phone           string
	IsActive        bool
	IsAvailable     bool
	CurrentOrders   int
	TotalDeliveries int
	LastLocation    *kernel.Location
	LastLocationAt  *time.Time
}

// RestorePartner rebuilds a partner read from storage. Counters are validated so a
// corrupted row surfaces as an error instead of an aggregate breaking its invariants.
func RestorePartner(params RestoreParams) (*Partner, error) {
	p := &Partner{
		isActive:       params.IsActive,
		isAvailable:    params.IsAvailable,
		lastLocation:   params.LastLocation,
		lastLocationAt: params.LastLocationAt,
		guard:          guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		p.setID(params.ID),
		p.setName(params.Name),
		p.setPhone(params.Phone),
		p.setCurrentOrders(params.CurrentOrders),
		p.setTotalDeliveries(params.TotalDeliveries),
	); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *Partner) Validate() error {
	if p == nil {
		return ErrPartnerIsNotConstructed
	}
	return p.guard.Validate(ErrPartnerIsNotConstructed)
}

func (p *Partner) IsEqual(other *Partner) bool {
	return other != nil && p.id.IsEqual(other.id)
}

func (p *Partner) ID() kernel.UUID {
	return p.id
}

func (p *Partner) Name() string {
	return p.name
}

func (p *Partner) Phone() string {
	return p.phone
}

func (p *Partner) IsActive() bool {
	return p.isActive
}

func (p *Partner) IsAvailable() bool {
	return p.isAvailable
}

func (p *Partner) CurrentOrders() int {
	return p.currentOrders
}

func (p *Partner) TotalDeliveries() int {
	return p.totalDeliveries
}

// LastLocation returns the last reported position, nil until the partner reports one.
func (p *Partner) LastLocation() *kernel.Location {
	return p.lastLocation
}

func (p *Partner) LastLocationAt() *time.Time {
	return p.lastLocationAt
}

// CanTakeOrder reports whether the partner is eligible for a new delivery.
func (p *Partner) CanTakeOrder() bool {
	return p.isActive && p.isAvailable && p.currentOrders < MaxConcurrentOrders
}

// TakeOrder reserves one slot of capacity.
//
// Returns ErrPartnerUnavailable for inactive or unavailable partners and
// ErrPartnerAtCapacity when the cap is reached. The aggregate is unchanged on error.
func (p *Partner) TakeOrder() error {
	if !p.isActive || !p.isAvailable {
		return ErrPartnerUnavailable
	}
	if p.currentOrders >= MaxConcurrentOrders {
		return ErrPartnerAtCapacity
	}

	p.currentOrders++
	return nil
}

// ReleaseOrder frees one slot of capacity. It returns false when the counter was
// already zero, which means the stored counter drifted from the deliveries.
func (p *Partner) ReleaseOrder() bool {
	if p.currentOrders == 0 {
		return false
	}

	p.currentOrders--
	return true
}

// CompleteDelivery releases one slot and counts the delivery as done.
// The delivery is counted even when the release had to be clamped.
func (p *Partner) CompleteDelivery() bool {
	released := p.ReleaseOrder()
	p.totalDeliveries++
	return released
}

// UpdateLocation records the latest position reported by the partner.
func (p *Partner) UpdateLocation(location kernel.Location, at time.Time) error {
	if err := location.Validate(); err != nil {
		return err
	}
	if at.IsZero() {
		return errs.NewValueIsRequiredError("location timestamp")
	}

	p.lastLocation = &location
	p.lastLocationAt = &at
	return nil
}

func (p *Partner) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	p.id = id
	return nil
}

func (p *Partner) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameIsRequired
	}

	p.name = name
	return nil
}

func (p *Partner) setPhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ErrPhoneIsRequired
	}

	p.phone = phone
	return nil
}

func (p *Partner) setCurrentOrders(n int) error {
	if n < 0 || n > MaxConcurrentOrders {
		return errs.NewValueIsOutOfRangeErrorWithCause("currentOrders", n, 0, MaxConcurrentOrders,
			fmt.Errorf("partner %s has an invalid in-flight counter", p.id))
	}

	p.currentOrders = n
	return nil
}

func (p *Partner) setTotalDeliveries(n int) error {
	if n < 0 {
		return errs.NewValueIsOutOfRangeError("totalDeliveries", n, 0, "unbounded")
	}

	p.totalDeliveries = n
	return nil
}
