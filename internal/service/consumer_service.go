package service

import (
	"context"
	"encoding/json"

	"whatsapp-tracking-be/internal/dto"
	"whatsapp-tracking-be/internal/entity"
	"whatsapp-tracking-be/internal/pkg/logger"
	"whatsapp-tracking-be/internal/pkg/mailer"
	"whatsapp-tracking-be/internal/repository/contract"
	"whatsapp-tracking-be/internal/websocket"
	"whatsapp-tracking-be/pkg/correlate"
	"whatsapp-tracking-be/pkg/events"
	pktNats "whatsapp-tracking-be/pkg/nats"
	"whatsapp-tracking-be/pkg/queue"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Start(ctx context.Context) error
}

// consumerService wires the three queue topics to their handlers. Every
// handler is log-and-continue: a bad payload becomes a dead letter, a
// processing failure already produced one, and nothing here may take the
// process down.
type consumerService struct {
	queue             *queue.Queue
	sessionTopic      string
	resultTopic       string
	deadLetterTopic   string
	processingService IProcessingService
	publisher         IPipelinePublisher
	hub               *websocket.Hub
	eventPublisher    *pktNats.Publisher           // nil when NATS is not configured
	deadLetterRepo    contract.DeadLetterRepository // nil when persistence is disabled
	alertMailer       mailer.IAlertMailer           // nil when SMTP is not configured
	logger            logger.ILogger
}

func NewConsumerService(
	q *queue.Queue,
	sessionTopic, resultTopic, deadLetterTopic string,
	processingService IProcessingService,
	publisher IPipelinePublisher,
	hub *websocket.Hub,
	eventPublisher *pktNats.Publisher,
	deadLetterRepo contract.DeadLetterRepository,
	alertMailer mailer.IAlertMailer,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		queue:             q,
		sessionTopic:      sessionTopic,
		resultTopic:       resultTopic,
		deadLetterTopic:   deadLetterTopic,
		processingService: processingService,
		publisher:         publisher,
		hub:               hub,
		eventPublisher:    eventPublisher,
		deadLetterRepo:    deadLetterRepo,
		alertMailer:       alertMailer,
		logger:            log,
	}
}

func (cs *consumerService) Start(ctx context.Context) error {
	if err := cs.queue.Subscribe(ctx, cs.sessionTopic, cs.handleSession); err != nil {
		return err
	}
	if err := cs.queue.Subscribe(ctx, cs.resultTopic, cs.handleResult); err != nil {
		return err
	}
	if err := cs.queue.Subscribe(ctx, cs.deadLetterTopic, cs.handleDeadLetter); err != nil {
		return err
	}
	return nil
}

func (cs *consumerService) handleSession(ctx context.Context, msg *message.Message) error {
	var record correlate.FinalizedSession
	if err := json.Unmarshal(msg.Payload, &record); err != nil {
		cs.logger.Error("Consumer", "Malformed session payload", map[string]interface{}{
			"error": err.Error(),
		})
		// Malformed items go straight to the dead-letter sink; consumption
		// continues.
		if dlErr := cs.publisher.PublishDeadLetter("", msg.Payload, "malformed session payload: "+err.Error()); dlErr != nil {
			cs.logger.Error("Consumer", "Failed to dead-letter malformed payload", map[string]interface{}{
				"error": dlErr.Error(),
			})
		}
		return nil
	}

	// Process already persists the failed result and dead-letters the
	// original record; the returned error is informational here.
	_, err := cs.processingService.Process(ctx, &record)
	return err
}

func (cs *consumerService) handleResult(ctx context.Context, msg *message.Message) error {
	var result entity.ProcessingResult
	if err := json.Unmarshal(msg.Payload, &result); err != nil {
		cs.logger.Error("Consumer", "Malformed result payload", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	cs.hub.Broadcast("processing_result", dto.ProcessingResultResponse{
		SessionId:    result.SessionId,
		SenderNumber: result.SenderNumber,
		PushName:     result.PushName,
		Extracted:    result.Extracted,
		RawMessages:  result.RawMessages,
		CombinedText: result.CombinedText,
		ProcessedAt:  result.ProcessedAt,
		Status:       result.Status,
		Error:        result.Error,
	})

	if cs.eventPublisher != nil {
		evt := events.NewLeadProcessedEvent(result.SessionId, result.SenderNumber, result.Status, result.Extracted.Confidence)
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			cs.logger.Warn("Consumer", "Failed to publish LEAD_PROCESSED event", map[string]interface{}{
				"session_id": result.SessionId,
				"error":      err.Error(),
			})
		}
	}
	return nil
}

func (cs *consumerService) handleDeadLetter(ctx context.Context, msg *message.Message) error {
	var deadLetter dto.DeadLetterMessage
	if err := json.Unmarshal(msg.Payload, &deadLetter); err != nil {
		cs.logger.Error("Consumer", "Malformed dead-letter payload", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	if cs.deadLetterRepo != nil {
		record := &entity.DeadLetter{
			Id:              uuid.New(),
			SessionId:       deadLetter.SessionId,
			OriginalPayload: deadLetter.OriginalPayload,
			ErrorMessage:    deadLetter.Error,
			Timestamp:       deadLetter.Timestamp,
		}
		if err := cs.deadLetterRepo.Create(ctx, record); err != nil {
			cs.logger.Error("Consumer", "Failed to persist dead letter", map[string]interface{}{
				"session_id": deadLetter.SessionId,
				"error":      err.Error(),
			})
		}
	}

	if cs.eventPublisher != nil {
		evt := events.NewLeadDeadLetterEvent(deadLetter.SessionId, deadLetter.Error)
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			cs.logger.Warn("Consumer", "Failed to publish LEAD_DEAD_LETTER event", map[string]interface{}{
				"session_id": deadLetter.SessionId,
				"error":      err.Error(),
			})
		}
	}

	if cs.alertMailer != nil {
		// Mail is best effort and slow; keep it off the consumer goroutine.
		go func(dl dto.DeadLetterMessage) {
			if err := cs.alertMailer.SendDeadLetterAlert(dl.SessionId, dl.Error, dl.Timestamp); err != nil {
				cs.logger.Warn("Consumer", "Failed to send dead-letter alert", map[string]interface{}{
					"session_id": dl.SessionId,
					"error":      err.Error(),
				})
			}
		}(deadLetter)
	}

	cs.logger.Info("Consumer", "Dead letter recorded", map[string]interface{}{
		"session_id": deadLetter.SessionId,
		"error":      deadLetter.Error,
	})
	return nil
}
