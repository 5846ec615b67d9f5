package converter

import (
	"encoding/json"
	"fmt"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/internal/usecase"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProviderConfigConverter преобразует ProviderConfig между domain и моделью PostgreSQL.
type ProviderConfigConverter struct{}

func (ProviderConfigConverter) ToModel(entity *domain.ProviderConfig) (*ProviderConfigModel, error) {
	settings, err := json.Marshal(entity.Settings)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	if entity.Settings == nil {
		settings = []byte("{}")
	}

	return &ProviderConfigModel{
		ID:           entity.ID.String(),
		Provider:     entity.Provider.String(),
		APIKey:       entity.APIKey,
		APISecret:    entity.APISecret,
		Settings:     settings,
		IsActive:     entity.IsActive,
		CreatedAt:    entity.CreatedAt,
		SupersededAt: entity.SupersededAt,
	}, nil
}

func (ProviderConfigConverter) ToEntity(model *ProviderConfigModel) (*domain.ProviderConfig, error) {
	id, err := uuid.Parse(model.ID)
	if err != nil {
		return nil, err
	}

	settings := map[string]any{}
	if len(model.Settings) > 0 {
		if err := json.Unmarshal(model.Settings, &settings); err != nil {
			return nil, fmt.Errorf("decode settings: %w", err)
		}
	}

	return &domain.ProviderConfig{
		ID:           id,
		Provider:     domain.Provider(model.Provider),
		APIKey:       model.APIKey,
		APISecret:    model.APISecret,
		Settings:     settings,
		IsActive:     model.IsActive,
		CreatedAt:    model.CreatedAt,
		SupersededAt: model.SupersededAt,
	}, nil
}

// CatalogConverter преобразует CatalogEntry и StorefrontProduct.
type CatalogConverter struct{}

func (CatalogConverter) ToModel(entity *domain.CatalogEntry) (*CatalogEntryModel, error) {
	p := entity.Product

	model := &CatalogEntryModel{
		ID:                  entity.ID.String(),
		StorefrontProductID: entity.StorefrontProductID.String(),
		Provider:            p.Provider.String(),
		ExternalID:          p.ExternalID,
		Title:               p.Title,
		Description:         p.Description,
		Price:               p.Price.StringFixed(2),
		SKU:                 p.SKU,
		Category:            string(p.Category),
		Tags:                nonNil(p.Tags),
		Images:              nonNil(p.Images),
		StockLevel:          p.StockLevel,
		ShippingTime:        p.ShippingTime,
		IsActive:            entity.IsActive,
		LastSyncedAt:        entity.LastSyncedAt,
		CreatedAt:           entity.CreatedAt,
		UpdatedAt:           entity.UpdatedAt,
	}
	if p.Weight != nil {
		w := p.Weight.String()
		model.Weight = &w
	}
	if p.Dimensions != nil {
		dims, err := json.Marshal(p.Dimensions)
		if err != nil {
			return nil, fmt.Errorf("encode dimensions: %w", err)
		}
		model.Dimensions = dims
	}
	if len(p.Variants) > 0 && json.Valid(p.Variants) {
		model.Variants = p.Variants
	}
	return model, nil
}

func (CatalogConverter) ToEntity(model *CatalogEntryModel) (*domain.CatalogEntry, error) {
	id, err := uuid.Parse(model.ID)
	if err != nil {
		return nil, err
	}
	storefrontID, err := uuid.Parse(model.StorefrontProductID)
	if err != nil {
		return nil, err
	}
	price, err := decimal.NewFromString(model.Price)
	if err != nil {
		return nil, fmt.Errorf("decode price: %w", err)
	}

	product := domain.SupplierProduct{
		Provider:     domain.Provider(model.Provider),
		ExternalID:   model.ExternalID,
		Title:        model.Title,
		Description:  model.Description,
		Price:        price,
		SKU:          model.SKU,
		Category:     domain.Category(model.Category),
		Tags:         model.Tags,
		Images:       model.Images,
		StockLevel:   model.StockLevel,
		ShippingTime: model.ShippingTime,
	}
	if model.Weight != nil {
		w, err := decimal.NewFromString(*model.Weight)
		if err != nil {
			return nil, fmt.Errorf("decode weight: %w", err)
		}
		product.Weight = &w
	}
	if len(model.Dimensions) > 0 {
		var dims domain.Dimensions
		if err := json.Unmarshal(model.Dimensions, &dims); err != nil {
			return nil, fmt.Errorf("decode dimensions: %w", err)
		}
		product.Dimensions = &dims
	}
	if len(model.Variants) > 0 {
		product.Variants = json.RawMessage(model.Variants)
	}

	return &domain.CatalogEntry{
		ID:                  id,
		StorefrontProductID: storefrontID,
		Product:             product,
		IsActive:            model.IsActive,
		LastSyncedAt:        model.LastSyncedAt,
		CreatedAt:           model.CreatedAt,
		UpdatedAt:           model.UpdatedAt,
	}, nil
}

func (CatalogConverter) StorefrontToModel(entity *domain.StorefrontProduct) *StorefrontProductModel {
	return &StorefrontProductModel{
		ID:               entity.ID.String(),
		Name:             entity.Name,
		Description:      entity.Description,
		Price:            entity.Price.StringFixed(2),
		Category:         string(entity.Category),
		Images:           nonNil(entity.Images),
		Stock:            entity.Stock,
		SourceProvider:   entity.SourceProvider.String(),
		SourceExternalID: entity.SourceExternalID,
		IsActive:         entity.IsActive,
		CreatedAt:        entity.CreatedAt,
		UpdatedAt:        entity.UpdatedAt,
	}
}

// SyncLogConverter преобразует SyncLogEntry.
type SyncLogConverter struct{}

func (SyncLogConverter) ToModel(entity *domain.SyncLogEntry) (*SyncLogModel, error) {
	details := entity.Errors
	if details == nil {
		details = []domain.SyncErrorDetail{}
	}
	errs, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("encode error details: %w", err)
	}

	model := &SyncLogModel{
		ID:         entity.ID.String(),
		Operation:  string(entity.Operation),
		Provider:   entity.Provider.String(),
		Outcome:    string(entity.Outcome),
		Processed:  entity.Processed,
		Updated:    entity.Updated,
		Failed:     entity.Failed,
		Errors:     errs,
		StartedAt:  entity.StartedAt,
		FinishedAt: entity.FinishedAt,
	}
	if entity.SnapshotKey != "" {
		model.SnapshotKey = &entity.SnapshotKey
	}
	return model, nil
}

func (SyncLogConverter) ToEntity(model *SyncLogModel) (*domain.SyncLogEntry, error) {
	id, err := uuid.Parse(model.ID)
	if err != nil {
		return nil, err
	}

	entry := &domain.SyncLogEntry{
		ID:         id,
		Operation:  domain.SyncOperation(model.Operation),
		Provider:   domain.Provider(model.Provider),
		Outcome:    domain.SyncOutcome(model.Outcome),
		Processed:  model.Processed,
		Updated:    model.Updated,
		Failed:     model.Failed,
		StartedAt:  model.StartedAt,
		FinishedAt: model.FinishedAt,
	}
	if model.SnapshotKey != nil {
		entry.SnapshotKey = *model.SnapshotKey
	}
	if len(model.Errors) > 0 {
		if err := json.Unmarshal(model.Errors, &entry.Errors); err != nil {
			return nil, fmt.Errorf("decode error details: %w", err)
		}
	}
	return entry, nil
}

// FulfillmentConverter преобразует FulfillmentRecord.
type FulfillmentConverter struct{}

func (FulfillmentConverter) ToModel(entity *domain.FulfillmentRecord) (*FulfillmentModel, error) {
	customer, err := json.Marshal(entity.Customer)
	if err != nil {
		return nil, fmt.Errorf("encode customer: %w", err)
	}
	address, err := json.Marshal(entity.ShippingAddress)
	if err != nil {
		return nil, fmt.Errorf("encode shipping address: %w", err)
	}

	model := &FulfillmentModel{
		ID:                entity.ID.String(),
		OrderID:           entity.OrderID,
		Provider:          entity.Provider.String(),
		ProductExternalID: entity.ProductExternalID,
		Customer:          customer,
		ShippingAddress:   address,
		Quantity:          entity.Quantity,
		Status:            string(entity.Status),
		TrackingNumber:    entity.TrackingNumber,
		CreatedAt:         entity.CreatedAt,
	}
	if entity.ExternalOrderID != "" {
		model.ExternalOrderID = &entity.ExternalOrderID
	}
	if entity.ErrorMessage != "" {
		model.ErrorMessage = &entity.ErrorMessage
	}
	if len(entity.RawResponse) > 0 && json.Valid(entity.RawResponse) {
		model.RawResponse = entity.RawResponse
	}
	return model, nil
}

func (FulfillmentConverter) ToEntity(model *FulfillmentModel) (*domain.FulfillmentRecord, error) {
	id, err := uuid.Parse(model.ID)
	if err != nil {
		return nil, err
	}

	record := &domain.FulfillmentRecord{
		ID:                id,
		OrderID:           model.OrderID,
		Provider:          domain.Provider(model.Provider),
		ProductExternalID: model.ProductExternalID,
		Quantity:          model.Quantity,
		Status:            domain.FulfillmentStatus(model.Status),
		TrackingNumber:    model.TrackingNumber,
		CreatedAt:         model.CreatedAt,
	}
	if model.ExternalOrderID != nil {
		record.ExternalOrderID = *model.ExternalOrderID
	}
	if model.ErrorMessage != nil {
		record.ErrorMessage = *model.ErrorMessage
	}
	if len(model.RawResponse) > 0 {
		record.RawResponse = json.RawMessage(model.RawResponse)
	}
	if err := json.Unmarshal(model.Customer, &record.Customer); err != nil {
		return nil, fmt.Errorf("decode customer: %w", err)
	}
	if err := json.Unmarshal(model.ShippingAddress, &record.ShippingAddress); err != nil {
		return nil, fmt.Errorf("decode shipping address: %w", err)
	}
	return record, nil
}

// OutboxEventConverter преобразует OutboxEvent между usecase и моделью PostgreSQL.
type OutboxEventConverter struct{}

func (OutboxEventConverter) ToModel(entity *usecase.OutboxEvent) *OutboxEventModel {
	return &OutboxEventModel{
		ID:          entity.ID,
		EventID:     entity.EventID.String(),
		EventType:   string(entity.EventType),
		AggregateID: entity.AggregateID,
		Payload:     entity.Payload,
		Status:      string(entity.Status),
		CreatedAt:   entity.CreatedAt,
		ProcessedAt: entity.ProcessedAt,
	}
}

func (OutboxEventConverter) ToEntity(model *OutboxEventModel) *usecase.OutboxEvent {
	// event_id пишется только из uuid.New(), ошибки разбора здесь не бывает
	eventID, _ := uuid.Parse(model.EventID)
	return &usecase.OutboxEvent{
		ID:          model.ID,
		EventID:     eventID,
		EventType:   usecase.OutboxEventType(model.EventType),
		AggregateID: model.AggregateID,
		Payload:     model.Payload,
		Status:      usecase.OutboxStatus(model.Status),
		CreatedAt:   model.CreatedAt,
		ProcessedAt: model.ProcessedAt,
	}
}

func (c OutboxEventConverter) ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent {
	out := make([]*usecase.OutboxEvent, 0, len(models))
	for _, m := range models {
		out = append(out, c.ToEntity(m))
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
