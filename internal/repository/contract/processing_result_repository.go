package contract

import (
	"context"

	"whatsapp-tracking-be/internal/entity"
)

type ProcessingResultRepository interface {
	Create(ctx context.Context, result *entity.ProcessingResult) error
	FindBySessionId(ctx context.Context, sessionId string) (*entity.ProcessingResult, error)
	FindRecent(ctx context.Context, limit int) ([]*entity.ProcessingResult, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
}
