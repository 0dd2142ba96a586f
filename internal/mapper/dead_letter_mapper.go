package mapper

import (
	"whatsapp-tracking-be/internal/entity"
	"whatsapp-tracking-be/internal/model"

	"gorm.io/datatypes"
)

type DeadLetterMapper struct{}

func NewDeadLetterMapper() *DeadLetterMapper {
	return &DeadLetterMapper{}
}

func (m *DeadLetterMapper) ToEntity(d *model.DeadLetter) *entity.DeadLetter {
	if d == nil {
		return nil
	}
	return &entity.DeadLetter{
		Id:              d.Id,
		SessionId:       d.SessionId,
		OriginalPayload: []byte(d.OriginalPayload),
		ErrorMessage:    d.ErrorMessage,
		Timestamp:       d.Timestamp,
	}
}

func (m *DeadLetterMapper) ToModel(d *entity.DeadLetter) *model.DeadLetter {
	if d == nil {
		return nil
	}
	return &model.DeadLetter{
		Id:              d.Id,
		SessionId:       d.SessionId,
		OriginalPayload: datatypes.JSON(d.OriginalPayload),
		ErrorMessage:    d.ErrorMessage,
		Timestamp:       d.Timestamp,
	}
}

func (m *DeadLetterMapper) ToEntities(models []*model.DeadLetter) []*entity.DeadLetter {
	entities := make([]*entity.DeadLetter, 0, len(models))
	for _, d := range models {
		entities = append(entities, m.ToEntity(d))
	}
	return entities
}
