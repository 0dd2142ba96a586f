package dto

import (
	"time"

	"whatsapp-tracking-be/pkg/correlate"
	"whatsapp-tracking-be/pkg/extract"
)

type ActiveSessionsResponse struct {
	Count    int                         `json:"count"`
	Sessions []correlate.SessionSnapshot `json:"sessions"`
}

type ProcessingResultResponse struct {
	SessionId    string              `json:"session_id"`
	SenderNumber string              `json:"sender_number"`
	PushName     string              `json:"push_name"`
	Extracted    extract.Lead        `json:"extracted"`
	RawMessages  []correlate.Message `json:"raw_messages"`
	CombinedText string              `json:"combined_text"`
	ProcessedAt  time.Time           `json:"processed_at"`
	Status       string              `json:"status"`
	Error        string              `json:"error,omitempty"`
}

type DeadLetterResponse struct {
	SessionId       string    `json:"session_id"`
	OriginalPayload string    `json:"original_payload"`
	ErrorMessage    string    `json:"error_message"`
	Timestamp       time.Time `json:"timestamp"`
}

type PipelineStatsResponse struct {
	ActiveSessions int   `json:"active_sessions"`
	Processed      int64 `json:"processed"`
	LowConfidence  int64 `json:"low_confidence"`
	Failed         int64 `json:"failed"`
	DeadLetters    int64 `json:"dead_letters"`
	PersistenceOn  bool  `json:"persistence_on"`
}
