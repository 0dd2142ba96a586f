package implementation

import (
	"context"
	"errors"

	"whatsapp-tracking-be/internal/entity"
	"whatsapp-tracking-be/internal/mapper"
	"whatsapp-tracking-be/internal/model"
	"whatsapp-tracking-be/internal/repository/contract"

	"gorm.io/gorm"
)

type ProcessingResultRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ProcessingResultMapper
}

func NewProcessingResultRepository(db *gorm.DB) contract.ProcessingResultRepository {
	return &ProcessingResultRepositoryImpl{
		db:     db,
		mapper: mapper.NewProcessingResultMapper(),
	}
}

func (r *ProcessingResultRepositoryImpl) Create(ctx context.Context, result *entity.ProcessingResult) error {
	m, err := r.mapper.ToModel(result)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*result = *r.mapper.ToEntity(m)
	return nil
}

func (r *ProcessingResultRepositoryImpl) FindBySessionId(ctx context.Context, sessionId string) (*entity.ProcessingResult, error) {
	var m model.ProcessingResult
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionId).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ProcessingResultRepositoryImpl) FindRecent(ctx context.Context, limit int) ([]*entity.ProcessingResult, error) {
	var models []*model.ProcessingResult
	err := r.db.WithContext(ctx).
		Order("processed_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ProcessingResultRepositoryImpl) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ProcessingResult{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}
