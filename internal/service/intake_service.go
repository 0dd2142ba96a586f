package service

import (
	"whatsapp-tracking-be/internal/dto"
	"whatsapp-tracking-be/internal/pkg/logger"
	"whatsapp-tracking-be/pkg/correlate"
)

// IIntakeService is the transport connector boundary: raw inbound messages
// and revocations come in here and nowhere else.
type IIntakeService interface {
	HandleInbound(req *dto.InboundMessageRequest) error
	HandleRevoke(req *dto.RevokeMessageRequest) error
}

type intakeService struct {
	correlator *correlate.Correlator

	// allowedSender, when set, restricts intake to one sender number. Used
	// in staging to point the connector at a test number.
	allowedSender string

	logger logger.ILogger
}

func NewIntakeService(correlator *correlate.Correlator, allowedSender string, log logger.ILogger) IIntakeService {
	return &intakeService{
		correlator:    correlator,
		allowedSender: allowedSender,
		logger:        log,
	}
}

func (s *intakeService) HandleInbound(req *dto.InboundMessageRequest) error {
	if s.allowedSender != "" && req.SenderNumber != s.allowedSender {
		s.logger.Debug("Intake", "Sender filtered", map[string]interface{}{
			"sender_number": req.SenderNumber,
		})
		return nil
	}

	s.correlator.AddMessage(correlate.Message{
		Id:           req.Id,
		SenderId:     req.SenderId,
		SenderNumber: req.SenderNumber,
		PushName:     req.PushName,
		Text:         req.Text,
		Timestamp:    req.Timestamp,
	})
	return nil
}

func (s *intakeService) HandleRevoke(req *dto.RevokeMessageRequest) error {
	s.correlator.RemoveMessage(req.SenderId, req.MessageId)
	return nil
}
