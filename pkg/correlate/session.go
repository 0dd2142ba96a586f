package correlate

import (
	"fmt"
	"strings"
	"time"

	"whatsapp-tracking-be/pkg/classify"
)

// Message is one inbound WhatsApp message as relayed by the connector.
// Immutable once created; Id is unique per sender-side send.
type Message struct {
	Id           string `json:"id"`
	SenderId     string `json:"sender_id"`
	SenderNumber string `json:"sender_number"`
	PushName     string `json:"push_name"`
	Text         string `json:"text"`
	Timestamp    int64  `json:"timestamp"` // epoch millis
}

// SlotSet holds the lead fields observed so far. At most one value per slot;
// once filled a slot is never overwritten inside the same session.
type SlotSet struct {
	Name    string `json:"name,omitempty"`
	Mobile  string `json:"mobile,omitempty"`
	Address string `json:"address,omitempty"`
}

func (s *SlotSet) Filled(slot classify.Slot) bool {
	switch slot {
	case classify.SlotName:
		return s.Name != ""
	case classify.SlotMobile:
		return s.Mobile != ""
	case classify.SlotAddress:
		return s.Address != ""
	}
	return false
}

func (s *SlotSet) Set(slot classify.Slot, value string) {
	switch slot {
	case classify.SlotName:
		s.Name = value
	case classify.SlotMobile:
		s.Mobile = value
	case classify.SlotAddress:
		s.Address = value
	}
}

func (s *SlotSet) FilledCount() int {
	count := 0
	if s.Name != "" {
		count++
	}
	if s.Mobile != "" {
		count++
	}
	if s.Address != "" {
		count++
	}
	return count
}

// Session is the accumulating buffer of messages from one sender awaiting
// finalize. Owned exclusively by the Correlator; never empty while stored.
type Session struct {
	SenderId      string
	SenderNumber  string
	PushName      string
	Messages      []Message
	Slots         SlotSet
	StartedAt     time.Time
	LastMessageAt time.Time
}

// Id derives the session's public identifier. StartedAt is fixed at creation,
// so the id is stable for the session's whole lifetime.
func (s *Session) Id() string {
	return fmt.Sprintf("%s-%d", s.SenderId, s.StartedAt.UnixMilli())
}

// FinalizeReason records what closed a session.
type FinalizeReason string

const (
	FinalizeTimeout       FinalizeReason = "timeout"
	FinalizeMaxMessages   FinalizeReason = "max_messages"
	FinalizeSlotCollision FinalizeReason = "slot_collision"
	FinalizeFlush         FinalizeReason = "flush"
)

// FinalizedSession is the immutable snapshot taken when a session closes.
// Ownership passes to the queue; the Correlator keeps no reference.
type FinalizedSession struct {
	SessionId    string         `json:"session_id"`
	SenderId     string         `json:"sender_id"`
	SenderNumber string         `json:"sender_number"`
	PushName     string         `json:"push_name"`
	MessageCount int            `json:"message_count"`
	CombinedText string         `json:"combined_text"`
	Messages     []Message      `json:"messages"`
	Slots        SlotSet        `json:"slots"`
	StartedAt    time.Time      `json:"started_at"`
	CompletedAt  time.Time      `json:"completed_at"`
	DurationMs   int64          `json:"duration_ms"`
	Reason       FinalizeReason `json:"reason"`
}

func snapshot(s *Session, reason FinalizeReason, completedAt time.Time) *FinalizedSession {
	texts := make([]string, len(s.Messages))
	messages := make([]Message, len(s.Messages))
	for i, m := range s.Messages {
		texts[i] = m.Text
		messages[i] = m
	}

	return &FinalizedSession{
		SessionId:    s.Id(),
		SenderId:     s.SenderId,
		SenderNumber: s.SenderNumber,
		PushName:     s.PushName,
		MessageCount: len(messages),
		CombinedText: strings.Join(texts, "\n"),
		Messages:     messages,
		Slots:        s.Slots,
		StartedAt:    s.StartedAt,
		CompletedAt:  completedAt,
		DurationMs:   completedAt.Sub(s.StartedAt).Milliseconds(),
		Reason:       reason,
	}
}
