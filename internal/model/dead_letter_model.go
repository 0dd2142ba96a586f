package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type DeadLetter struct {
	Id              uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId       string         `gorm:"type:varchar(255);index"`
	OriginalPayload datatypes.JSON `gorm:"type:jsonb"`
	ErrorMessage    string         `gorm:"type:text;not null"`
	Timestamp       time.Time      `gorm:"not null;index"`
	CreatedAt       time.Time      `gorm:"autoCreateTime"`
}

func (DeadLetter) TableName() string {
	return "pipeline_dead_letters"
}
