package converter

import "time"

// ProviderConfigRedisModel — активная конфигурация в кэше. Учётные данные остаются зашифрованными.
type ProviderConfigRedisModel struct {
	ID           string         `json:"id"`
	Provider     string         `json:"provider"`
	APIKey       string         `json:"api_key"`
	APISecret    *string        `json:"api_secret,omitempty"`
	Settings     map[string]any `json:"settings"`
	CreatedAt    time.Time      `json:"created_at"`
	SupersededAt *time.Time     `json:"superseded_at,omitempty"`
}
