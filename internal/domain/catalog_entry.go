package domain

import (
	"time"

	"github.com/google/uuid"
)

// CatalogEntry — товар поставщика, материализованный в каталоге маркетплейса.
// Владеет денормализованной строкой-зеркалом в витрине (StorefrontProductID).
// Остаток меняет только сверка; удалений нет, только деактивация.
type CatalogEntry struct {
	ID                  uuid.UUID
	StorefrontProductID uuid.UUID
	Product             SupplierProduct
	IsActive            bool
	LastSyncedAt        *time.Time
	CreatedAt           time.Time
	UpdatedAt           *time.Time
}

func NewCatalogEntry(product SupplierProduct) *CatalogEntry {
	return &CatalogEntry{
		ID:                  uuid.New(),
		StorefrontProductID: uuid.New(),
		Product:             product,
		IsActive:            true,
	}
}
