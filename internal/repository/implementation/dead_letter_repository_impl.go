package implementation

import (
	"context"

	"whatsapp-tracking-be/internal/entity"
	"whatsapp-tracking-be/internal/mapper"
	"whatsapp-tracking-be/internal/model"
	"whatsapp-tracking-be/internal/repository/contract"

	"gorm.io/gorm"
)

type DeadLetterRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DeadLetterMapper
}

func NewDeadLetterRepository(db *gorm.DB) contract.DeadLetterRepository {
	return &DeadLetterRepositoryImpl{
		db:     db,
		mapper: mapper.NewDeadLetterMapper(),
	}
}

func (r *DeadLetterRepositoryImpl) Create(ctx context.Context, deadLetter *entity.DeadLetter) error {
	m := r.mapper.ToModel(deadLetter)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*deadLetter = *r.mapper.ToEntity(m)
	return nil
}

func (r *DeadLetterRepositoryImpl) FindRecent(ctx context.Context, limit int) ([]*entity.DeadLetter, error) {
	var models []*model.DeadLetter
	err := r.db.WithContext(ctx).
		Order("timestamp DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *DeadLetterRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.DeadLetter{}).Count(&count).Error
	return count, err
}
