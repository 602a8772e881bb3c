package mapper

import (
	"encoding/json"

	"customer-service-be/internal/entity"
	"customer-service-be/internal/model"

	"gorm.io/datatypes"
)

type PaymentEventMapper struct{}

func NewPaymentEventMapper() *PaymentEventMapper {
	return &PaymentEventMapper{}
}

func (m *PaymentEventMapper) ToEntity(e *model.PaymentEvent) *entity.PaymentEvent {
	if e == nil {
		return nil
	}
	payload := map[string]interface{}{}
	if len(e.Payload) > 0 {
		_ = json.Unmarshal(e.Payload, &payload)
	}
	return &entity.PaymentEvent{
		Id:          e.Id,
		EventId:     e.EventId,
		EventType:   e.EventType,
		PaymentId:   e.PaymentId,
		UserId:      e.UserId,
		Status:      e.Status,
		GrossAmount: e.GrossAmount,
		Payload:     payload,
		CreatedAt:   e.CreatedAt,
	}
}

func (m *PaymentEventMapper) ToModel(e *entity.PaymentEvent) *model.PaymentEvent {
	if e == nil {
		return nil
	}
	payload, _ := json.Marshal(e.Payload)
	return &model.PaymentEvent{
		Id:          e.Id,
		EventId:     e.EventId,
		EventType:   e.EventType,
		PaymentId:   e.PaymentId,
		UserId:      e.UserId,
		Status:      e.Status,
		GrossAmount: e.GrossAmount,
		Payload:     datatypes.JSON(payload),
		CreatedAt:   e.CreatedAt,
	}
}
