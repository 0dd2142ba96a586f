package queue

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync/atomic"
	"time"

	"whatsapp-tracking-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// MetadataPartitionKey carries the original partition key on each message.
const MetadataPartitionKey = "partition_key"

// Handler processes one dequeued message. A returned error is logged and the
// message is still acknowledged: terminal failure routing (dead-letter) is
// the consumer's own responsibility, per the processing stage contract.
type Handler func(ctx context.Context, msg *message.Message) error

// Queue is a named, partitioned, ordered in-process delivery channel built on
// watermill's gochannel pub/sub. A topic with N partitions is fanned out over
// N physical topics ("TOPIC.0" .. "TOPIC.N-1"); items sharing a partition key
// always hash to the same physical topic and are consumed serially there,
// while different partitions run in parallel.
type Queue struct {
	pubSub     *gochannel.GoChannel
	partitions int
	logger     logger.ILogger

	// inFlight counts items published but not yet handled. Items published
	// to a topic nobody subscribes stay pending forever, so Drain only
	// converges when every topic has its consumer.
	inFlight int64
}

func New(partitions int, log logger.ILogger) *Queue {
	if partitions <= 0 {
		partitions = 1
	}

	pubSub := gochannel.NewGoChannel(
		gochannel.Config{
			// Buffered so a slow consumer on one partition does not block
			// the correlator's finalize path.
			OutputChannelBuffer: 64,
		},
		watermill.NewStdLogger(false, false),
	)

	return &Queue{
		pubSub:     pubSub,
		partitions: partitions,
		logger:     log,
	}
}

// Publish routes payload onto topic, using key to pick the partition. An
// empty key pins the item to partition 0, which is how single-partition
// topics (dead letter) are kept strictly ordered.
func (q *Queue) Publish(topic, key string, payload []byte) error {
	partition := 0
	if key != "" {
		partition = int(hash(key) % uint32(q.partitions))
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(MetadataPartitionKey, key)

	atomic.AddInt64(&q.inFlight, 1)
	if err := q.pubSub.Publish(partitionTopic(topic, partition), msg); err != nil {
		atomic.AddInt64(&q.inFlight, -1)
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

// Subscribe starts one consumer goroutine per partition of topic. Each
// goroutine handles its partition's messages strictly in order; handler
// errors are logged and never stop consumption.
func (q *Queue) Subscribe(ctx context.Context, topic string, handler Handler) error {
	for partition := 0; partition < q.partitions; partition++ {
		messages, err := q.pubSub.Subscribe(ctx, partitionTopic(topic, partition))
		if err != nil {
			return fmt.Errorf("subscribe to %s partition %d: %w", topic, partition, err)
		}

		go func(partition int, messages <-chan *message.Message) {
			for msg := range messages {
				if err := handler(ctx, msg); err != nil {
					q.logger.Error("Queue", "Handler failed", map[string]interface{}{
						"topic":     topic,
						"partition": partition,
						"error":     err.Error(),
					})
				}
				// Ack regardless: the handler has already routed failures
				// to a terminal sink, and re-delivery on an in-process
				// channel would just loop forever.
				msg.Ack()
				atomic.AddInt64(&q.inFlight, -1)
			}
		}(partition, messages)
	}
	return nil
}

// Drain blocks until every published item has been handled, or until
// timeout. Called during shutdown between the correlator flush and Close so
// the flushed sessions are not dropped on the floor. Reports whether the
// queue emptied in time.
func (q *Queue) Drain(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if atomic.LoadInt64(&q.inFlight) == 0 {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return atomic.LoadInt64(&q.inFlight) == 0
}

func (q *Queue) Close() error {
	return q.pubSub.Close()
}

func partitionTopic(topic string, partition int) string {
	return fmt.Sprintf("%s.%d", topic, partition)
}

func hash(key string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(key))
	return h.Sum32()
}
