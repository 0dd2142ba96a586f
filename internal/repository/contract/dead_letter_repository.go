package contract

import (
	"context"

	"whatsapp-tracking-be/internal/entity"
)

type DeadLetterRepository interface {
	Create(ctx context.Context, deadLetter *entity.DeadLetter) error
	FindRecent(ctx context.Context, limit int) ([]*entity.DeadLetter, error)
	Count(ctx context.Context) (int64, error)
}
