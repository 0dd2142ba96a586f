package queue

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"whatsapp-tracking-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderPreservedPerKey(t *testing.T) {
	q := New(4, logger.Nop{})
	defer q.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	received := make(map[string][]string)

	err := q.Subscribe(ctx, "TEST_TOPIC", func(_ context.Context, msg *message.Message) error {
		mu.Lock()
		defer mu.Unlock()
		key := msg.Metadata.Get(MetadataPartitionKey)
		received[key] = append(received[key], string(msg.Payload))
		return nil
	})
	require.NoError(t, err)

	keys := []string{"919876543210", "919123456789", "918888777666"}
	for i := 0; i < 10; i++ {
		for _, key := range keys {
			payload := fmt.Sprintf("%s-%d", key, i)
			require.NoError(t, q.Publish("TEST_TOPIC", key, []byte(payload)))
		}
	}

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		total := 0
		for _, items := range received {
			total += len(items)
		}
		return total == 30
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	for _, key := range keys {
		require.Len(t, received[key], 10)
		for i, payload := range received[key] {
			assert.Equal(t, fmt.Sprintf("%s-%d", key, i), payload, "items for one key must arrive in publish order")
		}
	}
}

func TestHandlerErrorDoesNotStopConsumption(t *testing.T) {
	q := New(1, logger.Nop{})
	defer q.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var seen []string

	err := q.Subscribe(ctx, "FLAKY_TOPIC", func(_ context.Context, msg *message.Message) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, string(msg.Payload))
		if string(msg.Payload) == "bad" {
			return fmt.Errorf("handler exploded")
		}
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, q.Publish("FLAKY_TOPIC", "k", []byte("good-1")))
	require.NoError(t, q.Publish("FLAKY_TOPIC", "k", []byte("bad")))
	require.NoError(t, q.Publish("FLAKY_TOPIC", "k", []byte("good-2")))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 3
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"good-1", "bad", "good-2"}, seen)
}

func TestDrainWaitsForInFlightItems(t *testing.T) {
	q := New(2, logger.Nop{})
	defer q.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var handled int64
	err := q.Subscribe(ctx, "SLOW_TOPIC", func(_ context.Context, _ *message.Message) error {
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt64(&handled, 1)
		return nil
	})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Publish("SLOW_TOPIC", fmt.Sprintf("k%d", i), []byte("payload")))
	}

	// Drain must not return until the slow handler has worked through
	// everything already published.
	require.True(t, q.Drain(2*time.Second))
	assert.EqualValues(t, 5, atomic.LoadInt64(&handled))
}

func TestEmptyKeyPinsToPartitionZero(t *testing.T) {
	q := New(4, logger.Nop{})
	defer q.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var order []string

	// Subscribing only to the physical partition-0 topic proves where the
	// unkeyed items land.
	messages, err := q.pubSub.Subscribe(ctx, partitionTopic("DEAD_LETTER", 0))
	require.NoError(t, err)
	go func() {
		for msg := range messages {
			mu.Lock()
			order = append(order, string(msg.Payload))
			mu.Unlock()
			msg.Ack()
		}
	}()

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Publish("DEAD_LETTER", "", []byte(fmt.Sprintf("dl-%d", i))))
	}

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 5
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"dl-0", "dl-1", "dl-2", "dl-3", "dl-4"}, order)
}
