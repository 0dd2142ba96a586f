package correlate

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"whatsapp-tracking-be/internal/pkg/logger"
	"whatsapp-tracking-be/pkg/classify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu        sync.Mutex
	started   []string
	finalized []*FinalizedSession
}

func (r *recorder) onStarted(senderId string, _ *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, senderId)
}

func (r *recorder) onFinalized(rec *FinalizedSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finalized = append(r.finalized, rec)
}

func (r *recorder) records() []*FinalizedSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*FinalizedSession, len(r.finalized))
	copy(out, r.finalized)
	return out
}

func newTestCorrelator(rec *recorder, overrides ...func(*Config)) *Correlator {
	cfg := Config{
		DefaultTimeout:        time.Hour, // timers never fire unless a test wants them to
		PartialSlotTimeout:    time.Hour,
		CompleteSlotTimeout:   time.Hour,
		MaxMessagesPerSession: 10,
		OnSessionStarted:      rec.onStarted,
		OnSessionFinalized:    rec.onFinalized,
	}
	for _, o := range overrides {
		o(&cfg)
	}
	return NewCorrelator(cfg, logger.Nop{})
}

func msg(id, senderId, text string) Message {
	return Message{
		Id:           id,
		SenderId:     senderId,
		SenderNumber: "91" + senderId,
		PushName:     "Tester",
		Text:         text,
		Timestamp:    time.Now().UnixMilli(),
	}
}

func TestDuplicateMessageIsDroppedOnce(t *testing.T) {
	rec := &recorder{}
	c := newTestCorrelator(rec)

	c.AddMessage(msg("m1", "s1", "Rahul Sharma"))
	c.AddMessage(msg("m1", "s1", "Rahul Sharma"))

	snapshots := c.ActiveSessions()
	require.Len(t, snapshots, 1)
	assert.Equal(t, 1, snapshots[0].MessageCount)
}

func TestNoiseNeverCreatesSession(t *testing.T) {
	rec := &recorder{}
	c := newTestCorrelator(rec)

	c.AddMessage(msg("m1", "s1", "hi"))
	c.AddMessage(msg("m2", "s1", "Good Morning"))

	assert.Equal(t, 0, c.ActiveCount())
	assert.Empty(t, rec.started)

	// Noise interleaved with real content stays out of the record.
	c.AddMessage(msg("m3", "s1", "Rahul Sharma"))
	c.AddMessage(msg("m4", "s1", "ok"))
	c.FlushAll()

	records := rec.records()
	require.Len(t, records, 1)
	assert.Equal(t, 1, records[0].MessageCount)
	assert.Equal(t, "Rahul Sharma", records[0].CombinedText)
}

func TestSlotFillAndCombinedText(t *testing.T) {
	rec := &recorder{}
	c := newTestCorrelator(rec)

	c.AddMessage(msg("m1", "s1", "Rahul Sharma"))
	c.AddMessage(msg("m2", "s1", "9876543210"))
	c.AddMessage(msg("m3", "s1", "Flat 302 Green Heights Sector 12"))
	c.FlushAll()

	records := rec.records()
	require.Len(t, records, 1)
	r := records[0]
	assert.Equal(t, "Rahul Sharma", r.Slots.Name)
	assert.Equal(t, "9876543210", r.Slots.Mobile)
	assert.Equal(t, "Flat 302 Green Heights Sector 12", r.Slots.Address)
	assert.Equal(t, "Rahul Sharma\n9876543210\nFlat 302 Green Heights Sector 12", r.CombinedText)
	assert.Equal(t, 3, r.MessageCount)
	assert.Equal(t, FinalizeFlush, r.Reason)
}

func TestSlotCollisionStartsNewSession(t *testing.T) {
	rec := &recorder{}
	c := newTestCorrelator(rec)

	// First person fills name and mobile.
	c.AddMessage(msg("m1", "s1", "Rahul Sharma"))
	c.AddMessage(msg("m2", "s1", "9876543210"))
	// A second mobile on the same channel means a new person is typing.
	c.AddMessage(msg("m3", "s1", "9123456789"))

	records := rec.records()
	require.Len(t, records, 1, "collision must finalize the first session")
	assert.Equal(t, FinalizeSlotCollision, records[0].Reason)
	assert.Equal(t, 2, records[0].MessageCount)
	assert.Equal(t, "9876543210", records[0].Slots.Mobile)

	snapshots := c.ActiveSessions()
	require.Len(t, snapshots, 1)
	assert.Equal(t, 1, snapshots[0].MessageCount)
	assert.Equal(t, "9123456789", snapshots[0].Slots.Mobile)
	assert.NotEqual(t, records[0].SessionId, snapshots[0].SessionId)
}

func TestMaxMessagesFinalizesImmediately(t *testing.T) {
	rec := &recorder{}
	c := newTestCorrelator(rec, func(cfg *Config) { cfg.MaxMessagesPerSession = 3 })

	c.AddMessage(msg("m1", "s1", "need a new sim card"))
	c.AddMessage(msg("m2", "s1", "prepaid is fine also"))
	assert.Equal(t, 1, c.ActiveCount())

	c.AddMessage(msg("m3", "s1", "what plans do you offer sir"))

	records := rec.records()
	require.Len(t, records, 1)
	assert.Equal(t, FinalizeMaxMessages, records[0].Reason)
	assert.Equal(t, 3, records[0].MessageCount)
	assert.Equal(t, 0, c.ActiveCount())
}

func TestFlushAllEmitsEverySessionExactlyOnce(t *testing.T) {
	rec := &recorder{}
	c := newTestCorrelator(rec)

	for i := 0; i < 5; i++ {
		sender := fmt.Sprintf("s%d", i)
		c.AddMessage(msg("m-"+sender, sender, "interested in a broadband plan"))
	}

	flushed := c.FlushAll()
	assert.Equal(t, 5, flushed)
	assert.Equal(t, 0, c.ActiveCount())
	assert.Len(t, rec.records(), 5)

	// A second flush has nothing left to emit.
	assert.Equal(t, 0, c.FlushAll())
	assert.Len(t, rec.records(), 5)
}

func TestAdaptiveTimeoutShortensWithSlots(t *testing.T) {
	rec := &recorder{}
	c := newTestCorrelator(rec, func(cfg *Config) {
		cfg.DefaultTimeout = time.Hour
		cfg.PartialSlotTimeout = time.Hour
		cfg.CompleteSlotTimeout = 30 * time.Millisecond
	})

	c.AddMessage(msg("m1", "s1", "Rahul Sharma"))
	c.AddMessage(msg("m2", "s1", "9876543210"))

	// Name and mobile filled, so the short complete-slot timer is armed.
	assert.Eventually(t, func() bool {
		return len(rec.records()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, FinalizeTimeout, rec.records()[0].Reason)
	assert.Equal(t, 0, c.ActiveCount())
}

func TestTimerRearmOnEveryMessage(t *testing.T) {
	rec := &recorder{}
	c := newTestCorrelator(rec, func(cfg *Config) {
		cfg.DefaultTimeout = 60 * time.Millisecond
	})

	// Keep the session alive by re-arming before the timer can fire.
	for i := 0; i < 4; i++ {
		c.AddMessage(msg(fmt.Sprintf("m%d", i), "s1", fmt.Sprintf("more details coming %d", i)))
		time.Sleep(25 * time.Millisecond)
	}
	assert.Empty(t, rec.records(), "re-armed timer must not have fired mid-conversation")

	assert.Eventually(t, func() bool {
		return len(rec.records()) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestRevokeOnlyMessageRemovesSession(t *testing.T) {
	rec := &recorder{}
	c := newTestCorrelator(rec, func(cfg *Config) {
		cfg.DefaultTimeout = 30 * time.Millisecond
	})

	c.AddMessage(msg("m1", "s1", "need a new connection"))
	require.Equal(t, 1, c.ActiveCount())

	c.RemoveMessage("s1", "m1")
	assert.Equal(t, 0, c.ActiveCount())

	// The canceled timer must not resurrect anything.
	time.Sleep(80 * time.Millisecond)
	assert.Empty(t, rec.records())
}

func TestRevokeKeepsSlotsSticky(t *testing.T) {
	rec := &recorder{}
	c := newTestCorrelator(rec)

	c.AddMessage(msg("m1", "s1", "Rahul Sharma"))
	c.AddMessage(msg("m2", "s1", "visiting your store tomorrow morning"))
	c.RemoveMessage("s1", "m1")

	// The name slot stays filled even though its source message is gone.
	snapshots := c.ActiveSessions()
	require.Len(t, snapshots, 1)
	assert.Equal(t, 1, snapshots[0].MessageCount)
	assert.Equal(t, "Rahul Sharma", snapshots[0].Slots.Name)
}

func TestRevokeUnknownSessionIsNoop(t *testing.T) {
	rec := &recorder{}
	c := newTestCorrelator(rec)

	c.RemoveMessage("ghost", "m1")
	assert.Equal(t, 0, c.ActiveCount())
}

func TestDoubleFinalizeEmitsOnce(t *testing.T) {
	rec := &recorder{}
	c := newTestCorrelator(rec)

	c.AddMessage(msg("m1", "s1", "interested in the offer you sent"))

	c.mu.Lock()
	e := c.sessions["s1"]
	sess := e.session
	sessionId := sess.Id()
	c.mu.Unlock()

	c.onTimeout("s1", sess)
	// Simulate the stale second trigger racing in for the same session:
	// the session is gone from the table, so nothing is re-emitted.
	assert.True(t, c.finalizedSessions.Seen(sessionId))
	c.onTimeout("s1", sess)

	assert.Len(t, rec.records(), 1)
}

func TestStaleTimerDoesNotFinalizeReplacementSession(t *testing.T) {
	rec := &recorder{}
	c := newTestCorrelator(rec, func(cfg *Config) {
		cfg.CompleteSlotTimeout = 30 * time.Millisecond
	})

	// Name and mobile fill, arming the short complete-slot timer.
	c.AddMessage(msg("m1", "s1", "Rahul Sharma"))
	c.AddMessage(msg("m2", "s1", "9876543210"))

	// Hold the lock past the timer's expiry so its fired callback parks on
	// c.mu, then finalize the session and install a replacement exactly the
	// way the slot-collision path does.
	c.mu.Lock()
	time.Sleep(60 * time.Millisecond)

	c.finalizeLocked("s1", FinalizeSlotCollision)

	fresh := &Session{
		SenderId:     "s1",
		SenderNumber: "91s1",
		PushName:     "Tester",
		StartedAt:    time.Now(),
	}
	fresh.Messages = append(fresh.Messages, msg("m3", "s1", "9123456789"))
	fresh.Slots.Set(classify.SlotMobile, "9123456789")
	e := &entry{session: fresh}
	c.sessions["s1"] = e
	c.armTimerLocked("s1", e)
	freshId := fresh.Id()
	c.mu.Unlock()

	// The parked callback now acquires the lock. It was armed for the old
	// session; the replacement must survive it untouched.
	time.Sleep(50 * time.Millisecond)

	records := rec.records()
	require.Len(t, records, 1)
	assert.Equal(t, FinalizeSlotCollision, records[0].Reason)
	require.Equal(t, 1, c.ActiveCount())

	snapshots := c.ActiveSessions()
	require.Len(t, snapshots, 1)
	assert.Equal(t, freshId, snapshots[0].SessionId)
}

func TestConcurrentSendersStayIndependent(t *testing.T) {
	rec := &recorder{}
	c := newTestCorrelator(rec)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sender := fmt.Sprintf("s%d", i)
			c.AddMessage(msg(sender+"-a", sender, "Rahul Sharma"))
			c.AddMessage(msg(sender+"-b", sender, "please call me back today"))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, c.ActiveCount())
	assert.Equal(t, 20, c.FlushAll())
	assert.Len(t, rec.records(), 20)
}
