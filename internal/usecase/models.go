package usecase

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/pkg/secret"
	"github.com/google/uuid"
)

// CONFIGURATION

// ConfigureReq — запрос configure_api.
type ConfigureReq struct {
	Provider  string
	APIKey    string
	APISecret *string
	Settings  map[string]any
}

// ConfigView — внешнее представление записи журнала. Учётные данные всегда замаскированы.
type ConfigView struct {
	ID           uuid.UUID
	Provider     domain.Provider
	APIKey       string
	APISecret    *string
	Settings     map[string]any
	IsActive     bool
	CreatedAt    time.Time
	SupersededAt *time.Time
}

type ConfigHistoryReq struct {
	Provider *domain.Provider
	Limit    int
}

// CATALOG

// ImportProductsReq — запрос import_products. Category == nil — без фильтра.
type ImportProductsReq struct {
	Category *domain.Category
	Limit    int
}

// ImportProductsRes — итог импорта. Промежуточное состояние наружу не отдаётся.
type ImportProductsRes struct {
	Imported int
	Total    int
	Skipped  int
	Errors   int
	Products []domain.CatalogEntry
	Log      *domain.SyncLogEntry
}

type SyncInventoryRes struct {
	Processed int
	Updated   int
	Failed    int
	Log       *domain.SyncLogEntry
}

type SyncLogFilter struct {
	Operation *domain.SyncOperation
	Limit     int
}

// FULFILLMENT

type FulfillOrderReq struct {
	OrderID           string
	ProductExternalID string
	Customer          domain.Customer
	ShippingAddress   domain.ShippingAddress
	Quantity          int
}

type FulfillOrderRes struct {
	Record *domain.FulfillmentRecord
}

// INFRASTRUCTURE

// SupplierListing — разобранный листинг и сырой ответ поставщика (для архива).
type SupplierListing struct {
	Products []domain.SupplierProduct
	Raw      []byte
}

// OrderPlacement — принятый поставщиком заказ.
type OrderPlacement struct {
	Result domain.OrderResult
	Status int
	Raw    []byte
}

type WriteRawMessageReq struct {
	Key       string
	EventType OutboxEventType
	Payload   []byte
}

// MAPPERS

func NewWriteRawMessageReq(key string, eventType OutboxEventType, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		Key:       key,
		EventType: eventType,
		Payload:   payload,
	}
}

func NewConfigView(cfg *domain.ProviderConfig) *ConfigView {
	view := &ConfigView{
		ID:           cfg.ID,
		Provider:     cfg.Provider,
		APIKey:       secret.Mask,
		Settings:     maskSettings(cfg.Settings),
		IsActive:     cfg.IsActive,
		CreatedAt:    cfg.CreatedAt,
		SupersededAt: cfg.SupersededAt,
	}
	if cfg.APISecret != nil {
		masked := secret.Mask
		view.APISecret = &masked
	}
	return view
}

// sensitiveSettingMarkers — настройки с такими подстроками в ключе тоже маскируются.
var sensitiveSettingMarkers = []string{"secret", "token", "password", "key"}

func maskSettings(settings map[string]any) map[string]any {
	out := make(map[string]any, len(settings))
	for k, v := range settings {
		out[k] = v
		lower := strings.ToLower(k)
		for _, marker := range sensitiveSettingMarkers {
			if strings.Contains(lower, marker) {
				out[k] = secret.Mask
				break
			}
		}
	}
	return out
}

// rawJSON гарантирует валидный JSON для хранения сырого ответа.
func rawJSON(body []byte) json.RawMessage {
	if len(body) == 0 {
		return nil
	}
	if json.Valid(body) {
		return body
	}
	encoded, err := json.Marshal(string(body))
	if err != nil {
		return nil
	}
	return encoded
}
