package service

import (
	"encoding/json"
	"fmt"
	"time"

	"whatsapp-tracking-be/internal/dto"
	"whatsapp-tracking-be/internal/entity"
	"whatsapp-tracking-be/internal/pkg/logger"
	"whatsapp-tracking-be/pkg/correlate"
	"whatsapp-tracking-be/pkg/queue"
)

// IPipelinePublisher owns the JSON encoding and partition keying for the
// three pipeline topics. Sessions and results are keyed by sender number so
// one sender's items stay ordered; dead letters go unkeyed onto a single
// partition.
type IPipelinePublisher interface {
	PublishSession(record *correlate.FinalizedSession) error
	PublishResult(result *entity.ProcessingResult) error
	PublishDeadLetter(sessionId string, originalPayload []byte, errorMessage string) error
}

type pipelinePublisher struct {
	queue           *queue.Queue
	sessionTopic    string
	resultTopic     string
	deadLetterTopic string
	logger          logger.ILogger
}

func NewPipelinePublisher(q *queue.Queue, sessionTopic, resultTopic, deadLetterTopic string, log logger.ILogger) IPipelinePublisher {
	return &pipelinePublisher{
		queue:           q,
		sessionTopic:    sessionTopic,
		resultTopic:     resultTopic,
		deadLetterTopic: deadLetterTopic,
		logger:          log,
	}
}

func (p *pipelinePublisher) PublishSession(record *correlate.FinalizedSession) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal finalized session: %w", err)
	}
	return p.queue.Publish(p.sessionTopic, record.SenderNumber, payload)
}

func (p *pipelinePublisher) PublishResult(result *entity.ProcessingResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal processing result: %w", err)
	}
	return p.queue.Publish(p.resultTopic, result.SenderNumber, payload)
}

func (p *pipelinePublisher) PublishDeadLetter(sessionId string, originalPayload []byte, errorMessage string) error {
	// A malformed upstream payload may not be valid JSON; quote it so the
	// dead-letter envelope still marshals.
	raw := json.RawMessage(originalPayload)
	if !json.Valid(originalPayload) {
		raw, _ = json.Marshal(string(originalPayload))
	}

	msg := dto.DeadLetterMessage{
		SessionId:       sessionId,
		OriginalPayload: raw,
		Error:           errorMessage,
		Timestamp:       time.Now(),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal dead letter: %w", err)
	}
	// Empty key pins dead letters to one partition; ordering there is
	// irrelevant anyway, volume is low.
	return p.queue.Publish(p.deadLetterTopic, "", payload)
}
