package mapper

import (
	"encoding/json"

	"whatsapp-tracking-be/internal/entity"
	"whatsapp-tracking-be/internal/model"
	"whatsapp-tracking-be/pkg/correlate"
	"whatsapp-tracking-be/pkg/extract"
)

type ProcessingResultMapper struct{}

func NewProcessingResultMapper() *ProcessingResultMapper {
	return &ProcessingResultMapper{}
}

func (m *ProcessingResultMapper) ToEntity(r *model.ProcessingResult) *entity.ProcessingResult {
	if r == nil {
		return nil
	}

	var extracted extract.Lead
	if len(r.Extracted) > 0 {
		// Column written by ToModel; a decode failure leaves zero values.
		_ = json.Unmarshal(r.Extracted, &extracted)
	}

	var rawMessages []correlate.Message
	if len(r.RawMessages) > 0 {
		_ = json.Unmarshal(r.RawMessages, &rawMessages)
	}

	return &entity.ProcessingResult{
		Id:           r.Id,
		SessionId:    r.SessionId,
		SenderNumber: r.SenderNumber,
		PushName:     r.PushName,
		Extracted:    extracted,
		RawMessages:  rawMessages,
		CombinedText: r.CombinedText,
		ProcessedAt:  r.ProcessedAt,
		Status:       r.Status,
		Error:        r.Error,
	}
}

func (m *ProcessingResultMapper) ToModel(r *entity.ProcessingResult) (*model.ProcessingResult, error) {
	if r == nil {
		return nil, nil
	}

	extracted, err := json.Marshal(r.Extracted)
	if err != nil {
		return nil, err
	}
	rawMessages, err := json.Marshal(r.RawMessages)
	if err != nil {
		return nil, err
	}

	return &model.ProcessingResult{
		Id:           r.Id,
		SessionId:    r.SessionId,
		SenderNumber: r.SenderNumber,
		PushName:     r.PushName,
		Extracted:    extracted,
		RawMessages:  rawMessages,
		CombinedText: r.CombinedText,
		ProcessedAt:  r.ProcessedAt,
		Status:       r.Status,
		Error:        r.Error,
	}, nil
}

func (m *ProcessingResultMapper) ToEntities(models []*model.ProcessingResult) []*entity.ProcessingResult {
	entities := make([]*entity.ProcessingResult, 0, len(models))
	for _, r := range models {
		entities = append(entities, m.ToEntity(r))
	}
	return entities
}
