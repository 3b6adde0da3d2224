package commands

import (
	"errors"
	"fmt"
	"strings"

	"shiptrack/internal/pkg/errs"
	"shiptrack/internal/pkg/guard"
)

var ErrCreateShipmentCommandIsNotConstructed = errors.New(
	"CreateShipmentCommand must be created via NewCreateShipmentCommand constructor",
)

// CreateShipmentCommand registers a new shipment. The shipment starts Pending with
// an empty history.
//
// Example:
//
//	cmd, err := NewCreateShipmentCommand(12.5, "40x30x20", "Electronics", "Main st. 1")
//	if err != nil {
//	    return fmt.Errorf("invalid shipment data: %w", err)
//	}
//	s, err := handler.Handle(ctx, cmd)
type CreateShipmentCommand struct { //nolint:recvcheck //using for validation
	weight      float64
	dimensions  string
	productType string
	address     string

	guard guard.ConstructorGuard
}

// NewCreateShipmentCommand validates that weight is positive and that the
// descriptive fields are present. All problems are reported together.
func NewCreateShipmentCommand(weight float64, dimensions, productType, address string) (CreateShipmentCommand, error) {
	cmd := CreateShipmentCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setWeight(weight),
		cmd.setRequired("dimensions", dimensions, &cmd.dimensions),
		cmd.setRequired("product_type", productType, &cmd.productType),
		cmd.setRequired("address", address, &cmd.address),
	); err != nil {
		return CreateShipmentCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateShipmentCommand) Validate() error {
	return c.guard.Validate(ErrCreateShipmentCommandIsNotConstructed)
}

func (c CreateShipmentCommand) Weight() float64     { return c.weight }
func (c CreateShipmentCommand) Dimensions() string  { return c.dimensions }
func (c CreateShipmentCommand) ProductType() string { return c.productType }
func (c CreateShipmentCommand) Address() string     { return c.address }

func (c *CreateShipmentCommand) setWeight(weight float64) error {
	if !(weight > 0) {
		return errs.NewValueIsInvalidErrorWithCause("weight", fmt.Errorf("%v is not greater than 0", weight))
	}
	c.weight = weight
	return nil
}

func (c *CreateShipmentCommand) setRequired(name, value string, dst *string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return errs.NewValueIsRequiredError(name)
	}
	*dst = value
	return nil
}
