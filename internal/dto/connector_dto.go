package dto

// InboundMessageRequest is the raw message contract with the transport
// connector. Timestamp is epoch milliseconds from the sender's device.
type InboundMessageRequest struct {
	Id           string `json:"id" validate:"required"`
	SenderId     string `json:"sender_id" validate:"required"`
	SenderNumber string `json:"sender_number" validate:"required"`
	PushName     string `json:"push_name"`
	Text         string `json:"text" validate:"required"`
	Timestamp    int64  `json:"timestamp" validate:"required"`
}

// RevokeMessageRequest reports a retraction observed by the connector.
type RevokeMessageRequest struct {
	SenderId  string `json:"sender_id" validate:"required"`
	MessageId string `json:"message_id" validate:"required"`
}

type AcceptedResponse struct {
	Accepted bool `json:"accepted"`
}
