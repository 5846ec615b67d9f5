package converter

import (
	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/google/uuid"
)

// ProviderConfigConverter преобразует ProviderConfig в модель кэша и обратно.
type ProviderConfigConverter struct{}

func (ProviderConfigConverter) ToRedisModel(entity *domain.ProviderConfig) *ProviderConfigRedisModel {
	return &ProviderConfigRedisModel{
		ID:           entity.ID.String(),
		Provider:     entity.Provider.String(),
		APIKey:       entity.APIKey,
		APISecret:    entity.APISecret,
		Settings:     entity.Settings,
		CreatedAt:    entity.CreatedAt,
		SupersededAt: entity.SupersededAt,
	}
}

func (ProviderConfigConverter) ToDomain(model *ProviderConfigRedisModel) (*domain.ProviderConfig, error) {
	id, err := uuid.Parse(model.ID)
	if err != nil {
		return nil, err
	}

	settings := model.Settings
	if settings == nil {
		settings = map[string]any{}
	}

	return &domain.ProviderConfig{
		ID:           id,
		Provider:     domain.Provider(model.Provider),
		APIKey:       model.APIKey,
		APISecret:    model.APISecret,
		Settings:     settings,
		IsActive:     true,
		CreatedAt:    model.CreatedAt,
		SupersededAt: model.SupersededAt,
	}, nil
}
