package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StorefrontProduct — денормализованное зеркало записи каталога в основной витрине.
type StorefrontProduct struct {
	ID               uuid.UUID
	Name             string
	Description      string
	Price            decimal.Decimal
	Category         Category
	Images           []string
	Stock            int
	SourceProvider   Provider
	SourceExternalID string
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        *time.Time
}

// NewStorefrontProduct строит зеркало записи каталога.
func NewStorefrontProduct(entry *CatalogEntry) *StorefrontProduct {
	p := entry.Product
	return &StorefrontProduct{
		ID:               entry.StorefrontProductID,
		Name:             p.Title,
		Description:      p.Description,
		Price:            p.Price,
		Category:         p.Category,
		Images:           p.Images,
		Stock:            p.StockLevel,
		SourceProvider:   p.Provider,
		SourceExternalID: p.ExternalID,
		IsActive:         true,
	}
}
