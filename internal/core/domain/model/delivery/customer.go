package delivery

import (
	"errors"
	"strings"

	"deliveryhub/internal/pkg/errs"
	"deliveryhub/internal/pkg/guard"
)

// ErrCustomerIsNotConstructed is returned when using a Customer literal.
var ErrCustomerIsNotConstructed = errs.NewValueIsRequiredError("customer must be created via NewCustomer")

// Customer is the recipient of a delivery as captured when the order was confirmed.
type Customer struct {
	name    string
	phone   string
	address string
	guard   guard.ConstructorGuard
}

func NewCustomer(name, phone, address string) (Customer, error) {
	c := Customer{
		name:    strings.TrimSpace(name),
		phone:   strings.TrimSpace(phone),
		address: strings.TrimSpace(address),
		guard:   guard.NewConstructorGuard(),
	}

	var problems []error
	if c.name == "" {
		problems = append(problems, errs.NewValueIsRequiredError("customer name"))
	}
	if c.phone == "" {
		problems = append(problems, errs.NewValueIsRequiredError("customer phone"))
	}
	if c.address == "" {
		problems = append(problems, errs.NewValueIsRequiredError("customer address"))
	}
	if err := errors.Join(problems...); err != nil {
		return Customer{}, err
	}

	return c, nil
}

func (c Customer) Validate() error {
	return c.guard.Validate(ErrCustomerIsNotConstructed)
}

func (c Customer) Name() string {
	return c.name
}

func (c Customer) Phone() string {
	return c.phone
}

func (c Customer) Address() string {
	return c.address
}
