package implementation

import (
	"context"

	"customer-service-be/internal/entity"
	"customer-service-be/internal/mapper"
	"customer-service-be/internal/model"
	"customer-service-be/internal/repository/contract"
	"customer-service-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentEventRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PaymentEventMapper
}

func NewPaymentEventRepository(db *gorm.DB) contract.PaymentEventRepository {
	return &PaymentEventRepositoryImpl{
		db:     db,
		mapper: mapper.NewPaymentEventMapper(),
	}
}

func (r *PaymentEventRepositoryImpl) Create(ctx context.Context, event *entity.PaymentEvent) (bool, error) {
	m := r.mapper.ToModel(event)
	// providers retry notifications, the event id makes the insert idempotent
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "event_id"}}, DoNothing: true}).
		Create(m)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	*event = *r.mapper.ToEntity(m)
	return true, nil
}

func (r *PaymentEventRepositoryImpl) FindRecent(ctx context.Context, limit int) ([]*entity.PaymentEvent, error) {
	var models []*model.PaymentEvent
	query := applySpecifications(r.db.WithContext(ctx),
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit},
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.PaymentEvent, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}
