package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"whatsapp-tracking-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	streamName    = "LEAD_EVENTS"
	subjectPrefix = "leads"
)

// eventEnvelope is the wire shape on the bus. Type rides inside the payload
// as well as in the subject so consumers that bind a wide subject filter can
// still dispatch without parsing subjects.
type eventEnvelope struct {
	Type       string                 `json:"type"`
	OccurredAt time.Time              `json:"occurred_at"`
	Data       map[string]interface{} `json:"data"`
}

// Publisher pushes pipeline events onto the shared NATS bus for downstream
// services (CRM sync, analytics, paging). This service only emits; consumers
// bind their own durable consumers against the LEAD_EVENTS stream.
type Publisher struct {
	nc *nats.Conn
	js jetstream.JetStream
}

func NewPublisher(url string) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Limits retention with a day of history: several independent consumers
	// read the same events, so work-queue semantics would be wrong here.
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      streamName,
		Subjects:  []string{subjectPrefix + ".>"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    24 * time.Hour,
	})
	if err != nil {
		// NATS may still be starting; publishing surfaces real failures.
		log.Printf("Warn: failed to ensure stream %s: %v", streamName, err)
	}

	return &Publisher{nc: nc, js: js}, nil
}

// Publish sends one event to its subject, e.g. LEAD_PROCESSED goes to
// "leads.lead_processed".
func (p *Publisher) Publish(ctx context.Context, event events.Event) error {
	data, err := marshalEnvelope(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	subject := eventSubject(event)
	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish event to subject %s: %w", subject, err)
	}

	return nil
}

// Close closes the NATS connection.
func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}

func eventSubject(event events.Event) string {
	return fmt.Sprintf("%s.%s", subjectPrefix, strings.ToLower(event.EventType()))
}

func marshalEnvelope(event events.Event) ([]byte, error) {
	return json.Marshal(eventEnvelope{
		Type:       event.EventType(),
		OccurredAt: event.Timestamp(),
		Data:       event.Payload(),
	})
}
