package eventrepo

import (
	"context"

	"shiptrack/internal/adapters/out/postgres/pgerr"
	"shiptrack/internal/core/domain/model/kernel"
	"shiptrack/internal/core/domain/model/shipment"
	"shiptrack/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormStatusEventRepository implements ports.StatusEventRepository using GORM.
// Rows are only ever inserted.
type GormStatusEventRepository struct {
	db *gorm.DB
}

func NewGormStatusEventRepository(db *gorm.DB) *GormStatusEventRepository {
	return &GormStatusEventRepository{db: db}
}

// Append inserts ev. A row with the same shipment and sequence already present
// yields errs.VersionIsInvalidError.
func (r *GormStatusEventRepository) Append(ctx context.Context, ev shipment.StatusEvent) error {
	if err := ev.ShipmentID().Validate(); err != nil {
		return err
	}

	dto := fromDomain(ev)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if pgerr.IsUniqueViolation(err) {
			return errs.NewVersionIsInvalidErrorWithCause("sequence", err)
		}
		return err
	}
	return nil
}

// Last returns the event with the highest sequence; ok is false when the
// shipment has no history.
func (r *GormStatusEventRepository) Last(
	ctx context.Context,
	id kernel.ShipmentID,
) (ev shipment.StatusEvent, ok bool, err error) {
	var dtos []StatusEventDTO
	err = r.db.WithContext(ctx).
		Where("shipment_id = ?", id.Int64()).
		Order("sequence DESC").
		Limit(1).
		Find(&dtos).Error
	if err != nil || len(dtos) == 0 {
		return shipment.StatusEvent{}, false, err
	}

	ev, err = toDomain(dtos[0])
	if err != nil {
		return shipment.StatusEvent{}, false, err
	}
	return ev, true, nil
}

// History returns all events of the shipment in sequence order.
func (r *GormStatusEventRepository) History(ctx context.Context, id kernel.ShipmentID) ([]shipment.StatusEvent, error) {
	var dtos []StatusEventDTO
	err := r.db.WithContext(ctx).
		Where("shipment_id = ?", id.Int64()).
		Order("sequence").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	history := make([]shipment.StatusEvent, 0, len(dtos))
	for _, dto := range dtos {
		ev, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		history = append(history, ev)
	}
	return history, nil
}
