package entity

import (
	"time"

	"github.com/google/uuid"
)

type DeadLetter struct {
	Id              uuid.UUID `gorm:"type:uuid;primaryKey"`
	SessionId       string
	OriginalPayload []byte
	ErrorMessage    string
	Timestamp       time.Time
}
