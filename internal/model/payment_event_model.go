package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type PaymentEvent struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EventId     string         `gorm:"type:varchar(255);uniqueIndex;not null"` // provider notification id, used for dedup
	EventType   string         `gorm:"type:varchar(100);not null;index"`
	PaymentId   string         `gorm:"type:varchar(255);index"`
	UserId      string         `gorm:"type:varchar(255);index"`
	Status      string         `gorm:"type:varchar(50)"`
	GrossAmount string         `gorm:"type:varchar(50)"`
	Payload     datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt   time.Time      `gorm:"autoCreateTime;index"`
}

func (PaymentEvent) TableName() string {
	return "payment_events"
}
