package entity

import (
	"time"

	"whatsapp-tracking-be/pkg/correlate"
	"whatsapp-tracking-be/pkg/extract"

	"github.com/google/uuid"
)

const (
	StatusProcessed     = "processed"
	StatusLowConfidence = "low_confidence"
	StatusFailed        = "failed"
)

type ProcessingResult struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey"`
	SessionId    string
	SenderNumber string
	PushName     string
	Extracted    extract.Lead
	RawMessages  []correlate.Message
	CombinedText string
	ProcessedAt  time.Time
	Status       string
	Error        string
}
