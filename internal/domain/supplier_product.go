package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// UnlimitedStock — остаток для поставщиков, чья модель (print-on-demand) не ограничивает наличие.
const UnlimitedStock = 9999

// Dimensions — габариты товара, см.
type Dimensions struct {
	Length decimal.Decimal `json:"length"`
	Width  decimal.Decimal `json:"width"`
	Height decimal.Decimal `json:"height"`
}

// SupplierProduct — каноническое, не зависящее от поставщика представление товара.
// Уникален по паре (Provider, ExternalID).
type SupplierProduct struct {
	Provider     Provider
	ExternalID   string
	Title        string
	Description  string
	Price        decimal.Decimal // не отрицательная
	SKU          string
	Category     Category
	Tags         []string
	Images       []string // порядок важен, дубликатов нет
	StockLevel   int
	ShippingTime string
	Weight       *decimal.Decimal // кг
	Dimensions   *Dimensions
	Variants     json.RawMessage // передаются как есть
}

// Key возвращает внешний ключ товара.
func (p *SupplierProduct) Key() ExternalKey {
	return ExternalKey{Provider: p.Provider, ExternalID: p.ExternalID}
}

// ExternalKey — глобально уникальный ключ записи каталога.
type ExternalKey struct {
	Provider   Provider
	ExternalID string
}
