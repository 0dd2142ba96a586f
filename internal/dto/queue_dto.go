package dto

import (
	"encoding/json"
	"time"
)

// DeadLetterMessage is the wire format on the dead-letter topic. The original
// payload rides along verbatim so operators can replay it.
type DeadLetterMessage struct {
	SessionId       string          `json:"session_id"`
	OriginalPayload json.RawMessage `json:"original_payload"`
	Error           string          `json:"error"`
	Timestamp       time.Time       `json:"timestamp"`
}
