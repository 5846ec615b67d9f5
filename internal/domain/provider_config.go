package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProviderConfig — запись журнала конфигураций поставщика.
// Активной может быть ровно одна запись; новая запись вытесняет прежнюю, но не удаляет её.
// В хранилище APIKey/APISecret лежат в зашифрованном виде.
type ProviderConfig struct {
	ID           uuid.UUID
	Provider     Provider
	APIKey       string
	APISecret    *string
	Settings     map[string]any
	IsActive     bool
	CreatedAt    time.Time
	SupersededAt *time.Time
}

// Setting возвращает строковое значение настройки.
func (c *ProviderConfig) Setting(key string) string {
	if c == nil || c.Settings == nil {
		return ""
	}
	if v, ok := c.Settings[key].(string); ok {
		return v
	}
	return ""
}
