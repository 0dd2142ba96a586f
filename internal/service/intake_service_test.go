package service

import (
	"testing"
	"time"

	"whatsapp-tracking-be/internal/dto"
	"whatsapp-tracking-be/internal/pkg/logger"
	"whatsapp-tracking-be/pkg/correlate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIntakeCorrelator() *correlate.Correlator {
	return correlate.NewCorrelator(correlate.Config{
		DefaultTimeout:        time.Hour,
		PartialSlotTimeout:    time.Hour,
		CompleteSlotTimeout:   time.Hour,
		MaxMessagesPerSession: 10,
	}, logger.Nop{})
}

func inbound(id, senderNumber, text string) *dto.InboundMessageRequest {
	return &dto.InboundMessageRequest{
		Id:           id,
		SenderId:     senderNumber + "@s.whatsapp.net",
		SenderNumber: senderNumber,
		PushName:     "Tester",
		Text:         text,
		Timestamp:    time.Now().UnixMilli(),
	}
}

func TestHandleInboundReachesCorrelator(t *testing.T) {
	correlator := newIntakeCorrelator()
	svc := NewIntakeService(correlator, "", logger.Nop{})

	require.NoError(t, svc.HandleInbound(inbound("m1", "919876543210", "Rahul Sharma")))
	assert.Equal(t, 1, correlator.ActiveCount())
}

func TestAllowedSenderFiltersOthers(t *testing.T) {
	correlator := newIntakeCorrelator()
	svc := NewIntakeService(correlator, "919876543210", logger.Nop{})

	require.NoError(t, svc.HandleInbound(inbound("m1", "911111111111", "Rahul Sharma")))
	assert.Equal(t, 0, correlator.ActiveCount(), "foreign sender must be filtered before the correlator")

	require.NoError(t, svc.HandleInbound(inbound("m2", "919876543210", "Rahul Sharma")))
	assert.Equal(t, 1, correlator.ActiveCount())
}

func TestHandleRevokeRemovesMessage(t *testing.T) {
	correlator := newIntakeCorrelator()
	svc := NewIntakeService(correlator, "", logger.Nop{})

	msg := inbound("m1", "919876543210", "Rahul Sharma")
	require.NoError(t, svc.HandleInbound(msg))
	require.NoError(t, svc.HandleRevoke(&dto.RevokeMessageRequest{
		SenderId:  msg.SenderId,
		MessageId: "m1",
	}))
	assert.Equal(t, 0, correlator.ActiveCount())
}
