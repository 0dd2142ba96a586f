package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"whatsapp-tracking-be/internal/entity"
	"whatsapp-tracking-be/internal/pkg/logger"
	"whatsapp-tracking-be/internal/repository/contract"
	"whatsapp-tracking-be/pkg/correlate"
	"whatsapp-tracking-be/pkg/extract"

	"github.com/google/uuid"
)

const (
	// LowConfidenceThreshold: below it a result is flagged, at or above it
	// the result counts as processed.
	LowConfidenceThreshold = 0.3

	defaultMaxAttempts = 3
	defaultBackoffBase = 1 * time.Second
)

type IProcessingService interface {
	Process(ctx context.Context, record *correlate.FinalizedSession) (*entity.ProcessingResult, error)
}

type processingService struct {
	extractor  extract.LeadExtractor
	resultRepo contract.ProcessingResultRepository // nil when persistence is disabled
	publisher  IPipelinePublisher
	logger     logger.ILogger

	maxAttempts int
	backoffBase time.Duration
}

func NewProcessingService(
	extractor extract.LeadExtractor,
	resultRepo contract.ProcessingResultRepository,
	publisher IPipelinePublisher,
	log logger.ILogger,
) IProcessingService {
	return &processingService{
		extractor:   extractor,
		resultRepo:  resultRepo,
		publisher:   publisher,
		logger:      log,
		maxAttempts: defaultMaxAttempts,
		backoffBase: defaultBackoffBase,
	}
}

// Process turns one finalized session into a ProcessingResult. The extraction
// call gets up to 3 full attempts with exponential backoff between them; the
// retry wait blocks this consumer's slot on purpose, holding per-partition
// ordering. Every path ends in a persisted result, and terminal failure also
// routes the original record to the dead-letter topic before the error is
// returned to the consumer loop.
func (s *processingService) Process(ctx context.Context, record *correlate.FinalizedSession) (*entity.ProcessingResult, error) {
	var lead *extract.Lead
	var lastErr error

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		lead, lastErr = s.extractor.Extract(ctx, record.CombinedText, record.PushName)
		if lastErr == nil {
			break
		}

		s.logger.Warn("Processing", "Extraction attempt failed", map[string]interface{}{
			"session_id": record.SessionId,
			"attempt":    attempt,
			"error":      lastErr.Error(),
		})

		if attempt < s.maxAttempts {
			// 2^attempt backoff units: 2, then 4.
			wait := s.backoffBase * time.Duration(1<<attempt)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				lastErr = fmt.Errorf("extraction aborted: %w", ctx.Err())
				return s.fail(ctx, record, lastErr)
			}
		}
	}

	if lastErr != nil {
		return s.fail(ctx, record, lastErr)
	}

	if lead.Mobile != nil {
		normalized := extract.NormalizeMobile(*lead.Mobile)
		lead.Mobile = &normalized
	}

	status := entity.StatusProcessed
	if lead.Confidence < LowConfidenceThreshold {
		status = entity.StatusLowConfidence
	}

	result := &entity.ProcessingResult{
		Id:           uuid.New(),
		SessionId:    record.SessionId,
		SenderNumber: record.SenderNumber,
		PushName:     record.PushName,
		Extracted:    *lead,
		RawMessages:  record.Messages,
		CombinedText: record.CombinedText,
		ProcessedAt:  time.Now(),
		Status:       status,
	}

	s.persist(ctx, result)

	if err := s.publisher.PublishResult(result); err != nil {
		s.logger.Error("Processing", "Failed to publish result", map[string]interface{}{
			"session_id": record.SessionId,
			"error":      err.Error(),
		})
	}

	s.logger.Info("Processing", "Session processed", map[string]interface{}{
		"session_id": record.SessionId,
		"status":     status,
		"confidence": lead.Confidence,
	})

	return result, nil
}

// fail builds the all-null failed result, persists it, dead-letters the
// original record, and hands the error back up to the consumer loop.
func (s *processingService) fail(ctx context.Context, record *correlate.FinalizedSession, cause error) (*entity.ProcessingResult, error) {
	result := &entity.ProcessingResult{
		Id:           uuid.New(),
		SessionId:    record.SessionId,
		SenderNumber: record.SenderNumber,
		PushName:     record.PushName,
		Extracted: extract.Lead{
			Confidence: 0,
			Notes:      cause.Error(),
		},
		RawMessages:  record.Messages,
		CombinedText: record.CombinedText,
		ProcessedAt:  time.Now(),
		Status:       entity.StatusFailed,
		Error:        cause.Error(),
	}

	s.persist(ctx, result)

	original, err := json.Marshal(record)
	if err != nil {
		original = []byte(fmt.Sprintf("%+v", record))
	}
	if err := s.publisher.PublishDeadLetter(record.SessionId, original, cause.Error()); err != nil {
		s.logger.Error("Processing", "Failed to publish dead letter", map[string]interface{}{
			"session_id": record.SessionId,
			"error":      err.Error(),
		})
	}

	s.logger.Error("Processing", "Extraction exhausted all attempts", map[string]interface{}{
		"session_id": record.SessionId,
		"error":      cause.Error(),
	})

	return result, fmt.Errorf("process session %s: %w", record.SessionId, cause)
}

func (s *processingService) persist(ctx context.Context, result *entity.ProcessingResult) {
	if s.resultRepo == nil {
		return
	}
	if err := s.resultRepo.Create(ctx, result); err != nil {
		s.logger.Error("Processing", "Failed to persist result", map[string]interface{}{
			"session_id": result.SessionId,
			"error":      err.Error(),
		})
	}
}
