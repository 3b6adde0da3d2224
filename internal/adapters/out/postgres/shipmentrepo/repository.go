package shipmentrepo

import (
	"context"
	"errors"

	"shiptrack/internal/adapters/out/postgres/pgerr"
	"shiptrack/internal/core/domain/model/kernel"
	"shiptrack/internal/core/domain/model/shipment"
	"shiptrack/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormShipmentRepository implements ports.ShipmentRepository using GORM.
type GormShipmentRepository struct {
	db *gorm.DB
}

// NewGormShipmentRepository creates a repository bound to db, which is either
// the connection pool or an open transaction.
func NewGormShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

// NextID draws the next value of the shipments id sequence.
func (r *GormShipmentRepository) NextID(ctx context.Context) (kernel.ShipmentID, error) {
	var id int64
	if err := r.db.WithContext(ctx).Raw("SELECT nextval('shipments_id_seq')").Scan(&id).Error; err != nil {
		return 0, err
	}
	return kernel.NewShipmentID(id)
}

// Add inserts a new shipment. A duplicate id yields errs.VersionIsInvalidError.
func (r *GormShipmentRepository) Add(ctx context.Context, aggregate *shipment.Shipment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if pgerr.IsUniqueViolation(err) {
			return errs.NewVersionIsInvalidErrorWithCause("shipmentId", err)
		}
		return err
	}
	return nil
}

// Update overwrites every column of an existing shipment.
func (r *GormShipmentRepository) Update(ctx context.Context, aggregate *shipment.Shipment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&ShipmentDTO{}).
		Where("id = ?", dto.ID).
		Select("*").Omit("id").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("shipmentId", aggregate.ID().String())
	}
	return nil
}

// Get retrieves a shipment by id.
func (r *GormShipmentRepository) Get(ctx context.Context, id kernel.ShipmentID) (*shipment.Shipment, error) {
	return r.get(r.db.WithContext(ctx), id)
}

// GetForUpdate retrieves a shipment and locks its row until the surrounding
// transaction ends.
func (r *GormShipmentRepository) GetForUpdate(ctx context.Context, id kernel.ShipmentID) (*shipment.Shipment, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

// List returns shipments ordered by id; shipment.Unknown lists all of them.
func (r *GormShipmentRepository) List(ctx context.Context, status shipment.Status) ([]*shipment.Shipment, error) {
	query := r.db.WithContext(ctx).Order("id")
	if status != shipment.Unknown {
		query = query.Where("status = ?", int(status))
	}

	var dtos []ShipmentDTO
	if err := query.Find(&dtos).Error; err != nil {
		return nil, err
	}

	out := make([]*shipment.Shipment, 0, len(dtos))
	for _, dto := range dtos {
		s, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *GormShipmentRepository) get(db *gorm.DB, id kernel.ShipmentID) (*shipment.Shipment, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto ShipmentDTO
	if err := db.First(&dto, "id = ?", id.Int64()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("shipmentId", id.String())
		}
		return nil, err
	}
	return toDomain(dto)
}
