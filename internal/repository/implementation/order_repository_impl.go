package implementation

import (
	"context"
	"errors"

	"customer-service-be/internal/entity"
	"customer-service-be/internal/mapper"
	"customer-service-be/internal/model"
	"customer-service-be/internal/repository/contract"
	"customer-service-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CustomerRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.OrderMapper
}

func NewCustomerRepository(db *gorm.DB) contract.CustomerRepository {
	return &CustomerRepositoryImpl{
		db:     db,
		mapper: mapper.NewOrderMapper(),
	}
}

func applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *CustomerRepositoryImpl) Create(ctx context.Context, customer *entity.Customer) error {
	m := r.mapper.CustomerToModel(customer)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*customer = *r.mapper.CustomerToEntity(m)
	return nil
}

func (r *CustomerRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Customer, error) {
	var m model.Customer
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.CustomerToEntity(&m), nil
}

func (r *CustomerRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Customer, error) {
	var models []*model.Customer
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Customer, len(models))
	for i, m := range models {
		entities[i] = r.mapper.CustomerToEntity(m)
	}
	return entities, nil
}

type OrderRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.OrderMapper
}

func NewOrderRepository(db *gorm.DB) contract.OrderRepository {
	return &OrderRepositoryImpl{
		db:     db,
		mapper: mapper.NewOrderMapper(),
	}
}

func (r *OrderRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Order, error) {
	var m model.Order
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Order{}), specs...)
	err := query.
		Preload("Customer").
		Preload("Items.Product").
		Preload("Shipment").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.OrderToEntity(&m), nil
}

// FindAll preloads the customer only, enough for history and search rows
func (r *OrderRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Order, error) {
	var models []*model.Order
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Order{}), specs...)
	if err := query.Preload("Customer").Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Order, len(models))
	for i, m := range models {
		entities[i] = r.mapper.OrderToEntity(m)
	}
	return entities, nil
}

func (r *OrderRepositoryImpl) UpdatePaymentStatus(ctx context.Context, orderId uuid.UUID, status string) error {
	return r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", orderId).
		Update("payment_status", status).Error
}

type SupportTicketRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.OrderMapper
}

func NewSupportTicketRepository(db *gorm.DB) contract.SupportTicketRepository {
	return &SupportTicketRepositoryImpl{
		db:     db,
		mapper: mapper.NewOrderMapper(),
	}
}

func (r *SupportTicketRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SupportTicket, error) {
	var models []*model.SupportTicket
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.SupportTicket{}), specs...)
	err := query.
		Preload("Customer").
		Preload("Order").
		Order("support_tickets.created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	entities := make([]*entity.SupportTicket, len(models))
	for i, m := range models {
		entities[i] = r.mapper.TicketToEntity(m)
	}
	return entities, nil
}
