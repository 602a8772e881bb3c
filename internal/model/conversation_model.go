package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type Conversation struct {
	Id        uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    string           `gorm:"type:varchar(255);not null;index"`
	SessionId string           `gorm:"type:varchar(255);not null;index"`
	Message   string           `gorm:"type:text;not null"`
	Response  string           `gorm:"type:text"`
	Sentiment datatypes.JSON   `gorm:"type:jsonb"`
	Embedding *pgvector.Vector `gorm:"type:vector(768)"` // NULL when the embedding provider failed
	CreatedAt time.Time        `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time        `gorm:"autoUpdateTime"`
}

func (Conversation) TableName() string {
	return "conversations"
}
