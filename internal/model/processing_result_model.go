package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ProcessingResult struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId    string         `gorm:"type:varchar(255);not null;uniqueIndex"`
	SenderNumber string         `gorm:"type:varchar(32);not null;index"`
	PushName     string         `gorm:"type:varchar(255)"`
	Extracted    datatypes.JSON `gorm:"type:jsonb"`
	RawMessages  datatypes.JSON `gorm:"type:jsonb"`
	CombinedText string         `gorm:"type:text"`
	ProcessedAt  time.Time      `gorm:"not null;index"`
	Status       string         `gorm:"type:varchar(32);not null;index"`
	Error        string         `gorm:"type:text"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
}

func (ProcessingResult) TableName() string {
	return "processing_results"
}
