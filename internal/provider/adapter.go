// Package provider переводит запросы и ответы конкретных поставщиков в канонический вид и обратно.
// Адаптеры не хранят состояние и не возвращают ошибок на кривые данные: каждое поле
// деградирует до значения по умолчанию, чтобы один битый товар не ронял весь импорт.
package provider

import (
	"net/http"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
)

// DefaultLimit используется, если вызывающий не указал лимит.
const DefaultLimit = 50

// Credentials — расшифрованные учётные данные и настройки активной конфигурации.
type Credentials struct {
	APIKey    string
	APISecret string
	Settings  map[string]any
}

// Setting возвращает строковую настройку или пустую строку.
func (c Credentials) Setting(key string) string {
	return str(c.Settings[key])
}

// ListQuery описывает запрос листинга в терминах поставщика.
type ListQuery struct {
	// ExternalCategory пуст, если фильтра нет или категория не отображается на поставщика.
	ExternalCategory string
	Limit            int
}

// Adapter — набор возможностей одного поставщика.
type Adapter interface {
	Provider() domain.Provider
	DefaultBaseURL() string

	BuildListURL(baseURL string, q ListQuery, creds Credentials) string
	BuildStockURL(baseURL, externalID string, creds Credentials) string
	BuildOrderURL(baseURL string, creds Credentials) string
	BuildHeaders(creds Credentials) http.Header

	ParseProductList(raw []byte) []domain.SupplierProduct
	ParseStockResponse(raw []byte) int
	ParseOrderResult(raw []byte) domain.OrderResult
	EncodeOrderRequest(order domain.SupplierOrder, creds Credentials) []byte

	MapCategoryToExternal(category domain.Category) (string, bool)
	MapExternalToCategory(raw string) domain.Category
}

// Offline реализуют адаптеры, которые обслуживают запросы без сети.
// Клиент поставщика использует возвращённый транспорт вместо http.DefaultTransport.
type Offline interface {
	Transport(creds Credentials) http.RoundTripper
}
