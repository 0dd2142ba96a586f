package correlate

import (
	"sync"
	"time"

	"whatsapp-tracking-be/internal/pkg/logger"
	"whatsapp-tracking-be/pkg/classify"
	"whatsapp-tracking-be/pkg/dedupe"
)

// Config controls session lifecycle timing and the lifecycle callbacks.
// Callbacks are invoked synchronously from whichever goroutine triggered the
// transition (an AddMessage caller or a fired timer), so finalize events for
// one sender always come out in finalize order.
type Config struct {
	// DefaultTimeout closes a session that never filled a slot.
	DefaultTimeout time.Duration

	// PartialSlotTimeout applies once at least one slot is filled.
	PartialSlotTimeout time.Duration

	// CompleteSlotTimeout applies once both name and mobile are filled;
	// the lead is essentially complete, no point waiting long.
	CompleteSlotTimeout time.Duration

	// MaxMessagesPerSession finalizes immediately when reached.
	MaxMessagesPerSession int

	OnSessionStarted   func(senderId string, session *Session)
	OnSessionFinalized func(record *FinalizedSession)
}

const (
	DefaultTimeout            = 120 * time.Second
	DefaultPartialSlotTimeout = 30 * time.Second
	DefaultCompleteTimeout    = 10 * time.Second
	DefaultMaxMessages        = 10
)

type entry struct {
	session *Session
	timer   *time.Timer
}

// Correlator groups messages per sender into sessions. One lock guards the
// table and both dedup caches; every mutation for a sender (add, revoke,
// timer fire, flush) runs under it, which is the serialization the adaptive
// timer rearming and the finalize idempotence guard depend on.
type Correlator struct {
	mu       sync.Mutex
	cfg      Config
	sessions map[string]*entry

	seenMessages      *dedupe.Cache
	finalizedSessions *dedupe.Cache

	logger logger.ILogger
}

func NewCorrelator(cfg Config, log logger.ILogger) *Correlator {
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = DefaultTimeout
	}
	if cfg.PartialSlotTimeout <= 0 {
		cfg.PartialSlotTimeout = DefaultPartialSlotTimeout
	}
	if cfg.CompleteSlotTimeout <= 0 {
		cfg.CompleteSlotTimeout = DefaultCompleteTimeout
	}
	if cfg.MaxMessagesPerSession <= 0 {
		cfg.MaxMessagesPerSession = DefaultMaxMessages
	}

	return &Correlator{
		cfg:               cfg,
		sessions:          make(map[string]*entry),
		seenMessages:      dedupe.NewCache(dedupe.DefaultMaxEntries),
		finalizedSessions: dedupe.NewCache(dedupe.DefaultMaxEntries),
		logger:            log,
	}
}

// AddMessage routes one inbound message into its sender's session, creating
// the session if needed. Duplicates and noise are dropped without touching
// any session state.
func (c *Correlator) AddMessage(msg Message) {
	if c.seenMessages.MarkSeen(msg.Id) {
		c.logger.Debug("Correlator", "Duplicate message dropped", map[string]interface{}{
			"message_id": msg.Id,
			"sender_id":  msg.SenderId,
		})
		return
	}

	if classify.IsNoise(msg.Text) {
		c.logger.Debug("Correlator", "Noise message dropped", map[string]interface{}{
			"message_id": msg.Id,
			"sender_id":  msg.SenderId,
		})
		return
	}

	slot := classify.IdentifySlot(msg.Text)

	c.mu.Lock()
	defer c.mu.Unlock()

	// Slot collision: the sender channel is being re-used by a new person
	// (aggregator scenario). Close the running session before this message
	// opens a fresh one.
	if e, ok := c.sessions[msg.SenderId]; ok && slot != classify.SlotUnknown && e.session.Slots.Filled(slot) {
		c.logger.Info("Correlator", "Slot collision, finalizing current session", map[string]interface{}{
			"sender_id": msg.SenderId,
			"slot":      slot.String(),
		})
		c.finalizeLocked(msg.SenderId, FinalizeSlotCollision)
	}

	e, ok := c.sessions[msg.SenderId]
	if !ok {
		now := time.Now()
		e = &entry{
			session: &Session{
				SenderId:     msg.SenderId,
				SenderNumber: msg.SenderNumber,
				PushName:     msg.PushName,
				StartedAt:    now,
			},
		}
		c.sessions[msg.SenderId] = e
		c.logger.Info("Correlator", "Session started", map[string]interface{}{
			"session_id": e.session.Id(),
			"sender_id":  msg.SenderId,
		})
		if c.cfg.OnSessionStarted != nil {
			c.cfg.OnSessionStarted(msg.SenderId, e.session)
		}
	}

	e.session.Messages = append(e.session.Messages, msg)
	e.session.LastMessageAt = time.Now()
	if slot != classify.SlotUnknown && !e.session.Slots.Filled(slot) {
		e.session.Slots.Set(slot, msg.Text)
	}

	if len(e.session.Messages) >= c.cfg.MaxMessagesPerSession {
		c.finalizeLocked(msg.SenderId, FinalizeMaxMessages)
		return
	}

	c.armTimerLocked(msg.SenderId, e)
}

// RemoveMessage handles a retraction reported by the connector. Missing
// sessions and unknown message ids are benign races, not errors. Slot values
// are not recomputed from the surviving messages; once observed, a slot
// stays filled even when the message that filled it is revoked.
func (c *Correlator) RemoveMessage(senderId, messageId string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.sessions[senderId]
	if !ok {
		return
	}

	for i, m := range e.session.Messages {
		if m.Id == messageId {
			e.session.Messages = append(e.session.Messages[:i], e.session.Messages[i+1:]...)
			break
		}
	}

	// An empty session may never sit in the store.
	if len(e.session.Messages) == 0 {
		if e.timer != nil {
			e.timer.Stop()
		}
		delete(c.sessions, senderId)
		c.logger.Info("Correlator", "Session emptied by revoke, removed", map[string]interface{}{
			"sender_id": senderId,
		})
	}
}

// FlushAll finalizes every active session and returns how many were emitted.
// Used for orderly shutdown.
func (c *Correlator) FlushAll() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	senderIds := make([]string, 0, len(c.sessions))
	for id := range c.sessions {
		senderIds = append(senderIds, id)
	}

	flushed := 0
	for _, id := range senderIds {
		if c.finalizeLocked(id, FinalizeFlush) {
			flushed++
		}
	}
	return flushed
}

// SessionSnapshot is a read-only view of one active session for inspection.
type SessionSnapshot struct {
	SessionId     string    `json:"session_id"`
	SenderId      string    `json:"sender_id"`
	SenderNumber  string    `json:"sender_number"`
	PushName      string    `json:"push_name"`
	MessageCount  int       `json:"message_count"`
	Slots         SlotSet   `json:"slots"`
	StartedAt     time.Time `json:"started_at"`
	LastMessageAt time.Time `json:"last_message_at"`
}

func (c *Correlator) ActiveSessions() []SessionSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshots := make([]SessionSnapshot, 0, len(c.sessions))
	for _, e := range c.sessions {
		s := e.session
		snapshots = append(snapshots, SessionSnapshot{
			SessionId:     s.Id(),
			SenderId:      s.SenderId,
			SenderNumber:  s.SenderNumber,
			PushName:      s.PushName,
			MessageCount:  len(s.Messages),
			Slots:         s.Slots,
			StartedAt:     s.StartedAt,
			LastMessageAt: s.LastMessageAt,
		})
	}
	return snapshots
}

func (c *Correlator) ActiveCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}

// armTimerLocked re-arms the sender's single finalize timer with the adaptive
// duration. The previous timer is always stopped first so only one can ever
// be outstanding per sender. Must be called with c.mu held.
func (c *Correlator) armTimerLocked(senderId string, e *entry) {
	timeout := c.cfg.DefaultTimeout
	slots := &e.session.Slots
	if slots.Filled(classify.SlotName) && slots.Filled(classify.SlotMobile) {
		timeout = c.cfg.CompleteSlotTimeout
	} else if slots.FilledCount() >= 1 {
		timeout = c.cfg.PartialSlotTimeout
	}

	if e.timer != nil {
		e.timer.Stop()
	}
	// Stop() cannot cancel a callback that already fired and is waiting on
	// c.mu, so the closure captures the session it was armed for and the
	// fire path re-checks it under the lock.
	sess := e.session
	e.timer = time.AfterFunc(timeout, func() {
		c.onTimeout(senderId, sess)
	})
}

func (c *Correlator) onTimeout(senderId string, sess *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// A stale fire: while this callback was blocked, the session it was
	// armed for was finalized (collision, max-count, flush) and possibly
	// replaced by a fresh one. Only the session's own timer may time it out.
	if e, ok := c.sessions[senderId]; !ok || e.session != sess {
		return
	}

	c.finalizeLocked(senderId, FinalizeTimeout)
}

// finalizeLocked closes the sender's session and hands the snapshot to the
// OnSessionFinalized callback. Idempotent per session id: a stale timer that
// fires after a count-threshold or collision finalize finds either no session
// or an already-recorded id and does nothing. Must be called with c.mu held.
// Reports whether a record was emitted.
func (c *Correlator) finalizeLocked(senderId string, reason FinalizeReason) bool {
	e, ok := c.sessions[senderId]
	if !ok || len(e.session.Messages) == 0 {
		return false
	}

	sessionId := e.session.Id()
	if c.finalizedSessions.MarkSeen(sessionId) {
		// Duplicate finalize trigger; drop the session without re-emitting.
		if e.timer != nil {
			e.timer.Stop()
		}
		delete(c.sessions, senderId)
		return false
	}

	if e.timer != nil {
		e.timer.Stop()
	}

	record := snapshot(e.session, reason, time.Now())
	delete(c.sessions, senderId)

	c.logger.Info("Correlator", "Session finalized", map[string]interface{}{
		"session_id":    sessionId,
		"sender_id":     senderId,
		"message_count": record.MessageCount,
		"reason":        string(reason),
	})

	if c.cfg.OnSessionFinalized != nil {
		c.cfg.OnSessionFinalized(record)
	}
	return true
}
