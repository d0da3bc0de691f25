package partnerrepo

import (
	"context"
	"errors"
	"time"

	"deliveryhub/internal/core/domain/model/kernel"
	"deliveryhub/internal/core/domain/model/partner"
	"deliveryhub/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPartnerRepository implements ports.PartnerRepository using GORM.
//
// Counter changes never go through a read-modify-write of the aggregate: they are
// single conditional UPDATE statements, so current_orders stays within
// [0, partner.MaxConcurrentOrders] whatever the interleaving of transactions.
type GormPartnerRepository struct {
	db *gorm.DB
}

func NewGormPartnerRepository(db *gorm.DB) *GormPartnerRepository {
	return &GormPartnerRepository{db: db}
}

// Add saves a new partner.
func (r *GormPartnerRepository) Add(ctx context.Context, aggregate *partner.Partner) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.NewObjectAlreadyExistsErrorWithCause("partner", aggregate.ID().String(), err)
		}
		return err
	}
	return nil
}

// Get retrieves a partner by ID.
func (r *GormPartnerRepository) Get(ctx context.Context, id kernel.UUID) (*partner.Partner, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto PartnerDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Google()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("partner", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// FindEligibleForUpdate locks up to limit partners able to take an order. Rows are
// locked in id order, so concurrent assignments queue behind each other instead of
// deadlocking, and a waiter re-checks the predicate once the row is released.
func (r *GormPartnerRepository) FindEligibleForUpdate(ctx context.Context, limit int) ([]*partner.Partner, error) {
	var dtos []PartnerDTO
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("is_active = ? AND is_available = ? AND current_orders < ?", true, true, partner.MaxConcurrentOrders).
		Order("id").
		Limit(limit).
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	partners := make([]*partner.Partner, 0, len(dtos))
	for _, dto := range dtos {
		p, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		partners = append(partners, p)
	}
	return partners, nil
}

// ReserveCapacity takes one slot if the partner is still eligible.
func (r *GormPartnerRepository) ReserveCapacity(ctx context.Context, id kernel.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&PartnerDTO{}).
		Where("id = ? AND is_active = ? AND is_available = ? AND current_orders < ?",
			id.Google(), true, true, partner.MaxConcurrentOrders).
		Updates(map[string]any{
			"current_orders": gorm.Expr("current_orders + 1"),
			"updated_at":     time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ReleaseCapacity frees one slot. When current_orders is already zero only the
// delivery counter moves and false is returned.
func (r *GormPartnerRepository) ReleaseCapacity(ctx context.Context, id kernel.UUID, completed bool) (bool, error) {
	delivered := 0
	if completed {
		delivered = 1
	}
	now := time.Now().UTC()

	result := r.db.WithContext(ctx).
		Model(&PartnerDTO{}).
		Where("id = ? AND current_orders > 0", id.Google()).
		Updates(map[string]any{
			"current_orders":   gorm.Expr("current_orders - 1"),
			"total_deliveries": gorm.Expr("total_deliveries + ?", delivered),
			"updated_at":       now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 1 {
		return true, nil
	}

	result = r.db.WithContext(ctx).
		Model(&PartnerDTO{}).
		Where("id = ?", id.Google()).
		Updates(map[string]any{
			"total_deliveries": gorm.Expr("total_deliveries + ?", delivered),
			"updated_at":       now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, errs.NewObjectNotFoundError("partner", id.String())
	}
	return false, nil
}

// UpdateLocation stores the last reported position of the partner.
func (r *GormPartnerRepository) UpdateLocation(
	ctx context.Context,
	id kernel.UUID,
	location kernel.Location,
	at time.Time,
) error {
	if err := location.Validate(); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&PartnerDTO{}).
		Where("id = ?", id.Google()).
		Updates(map[string]any{
			"last_lat":         location.Lat(),
			"last_lng":         location.Lng(),
			"last_location_at": at,
			"updated_at":       time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("partner", id.String())
	}
	return nil
}
