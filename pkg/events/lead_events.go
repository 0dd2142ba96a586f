package events

import "time"

const (
	TypeLeadProcessed  = "LEAD_PROCESSED"
	TypeLeadDeadLetter = "LEAD_DEAD_LETTER"
)

// NewLeadProcessedEvent announces a finished lead for downstream services
// (CRM sync, analytics). Status is the terminal processing status, including
// low_confidence.
func NewLeadProcessedEvent(sessionId, senderNumber, status string, confidence float64) BaseEvent {
	return BaseEvent{
		Type: TypeLeadProcessed,
		Data: map[string]interface{}{
			"session_id":    sessionId,
			"sender_number": senderNumber,
			"status":        status,
			"confidence":    confidence,
		},
		OccurredAt: time.Now(),
	}
}

// NewLeadDeadLetterEvent announces a terminally failed session so operators
// can be paged from outside this process too.
func NewLeadDeadLetterEvent(sessionId, errorMessage string) BaseEvent {
	return BaseEvent{
		Type: TypeLeadDeadLetter,
		Data: map[string]interface{}{
			"session_id": sessionId,
			"error":      errorMessage,
		},
		OccurredAt: time.Now(),
	}
}
