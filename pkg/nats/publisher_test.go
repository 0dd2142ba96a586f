package nats

import (
	"encoding/json"
	"testing"

	"whatsapp-tracking-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventSubject(t *testing.T) {
	processed := events.NewLeadProcessedEvent("s1-1700000000000", "919876543210", "processed", 0.9)
	assert.Equal(t, "leads.lead_processed", eventSubject(processed))

	deadLetter := events.NewLeadDeadLetterEvent("s1-1700000000000", "extractor unavailable")
	assert.Equal(t, "leads.lead_dead_letter", eventSubject(deadLetter))
}

func TestEnvelopeCarriesTypeAndPayload(t *testing.T) {
	evt := events.NewLeadProcessedEvent("s1-1700000000000", "919876543210", "processed", 0.9)

	data, err := marshalEnvelope(evt)
	require.NoError(t, err)

	var decoded eventEnvelope
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, events.TypeLeadProcessed, decoded.Type)
	assert.False(t, decoded.OccurredAt.IsZero())
	assert.Equal(t, "919876543210", decoded.Data["sender_number"])
	assert.Equal(t, 0.9, decoded.Data["confidence"])
}
