package queries

import (
	"errors"
	"strings"

	"shiptrack/internal/core/domain/model/shipment"
	"shiptrack/internal/pkg/guard"
)

var ErrGetShipmentsQueryIsNotConstructed = errors.New(
	"GetShipmentsQuery must be created via NewGetShipmentsQuery constructor",
)

// GetShipmentsQuery lists shipments ordered by id, optionally filtered by status.
//
// Example:
//
//	all, _ := NewGetShipmentsQuery("")
//	pending, _ := NewGetShipmentsQuery("Pending")
type GetShipmentsQuery struct {
	status shipment.Status

	guard guard.ConstructorGuard
}

// NewGetShipmentsQuery accepts an empty status filter, meaning all shipments.
func NewGetShipmentsQuery(status string) (GetShipmentsQuery, error) {
	q := GetShipmentsQuery{guard: guard.NewConstructorGuard()}
	if strings.TrimSpace(status) == "" {
		return q, nil
	}

	parsed, err := shipment.ParseStatus(status)
	if err != nil {
		return GetShipmentsQuery{}, err
	}
	q.status = parsed
	return q, nil
}

func (q GetShipmentsQuery) Validate() error {
	return q.guard.Validate(ErrGetShipmentsQueryIsNotConstructed)
}

// Status is shipment.Unknown when no filter is set.
func (q GetShipmentsQuery) Status() shipment.Status { return q.status }
