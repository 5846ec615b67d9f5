package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/google/uuid"
)

type CatalogRepo struct {
	mu      sync.RWMutex
	entries map[domain.ExternalKey]*domain.CatalogEntry
	mirrors map[uuid.UUID]*domain.StorefrontProduct
}

func NewCatalogRepo() *CatalogRepo {
	return &CatalogRepo{
		entries: make(map[domain.ExternalKey]*domain.CatalogEntry),
		mirrors: make(map[uuid.UUID]*domain.StorefrontProduct),
	}
}

func (r *CatalogRepo) FindByExternalID(_ context.Context, key domain.ExternalKey) (*domain.CatalogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[key]
	if !ok {
		return nil, e.ErrNotFound
	}
	cp := *entry
	return &cp, nil
}

func (r *CatalogRepo) Insert(_ context.Context, entry *domain.CatalogEntry) (*domain.CatalogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := entry.Product.Key()
	if _, ok := r.entries[key]; ok {
		return nil, e.ErrAlreadyExists
	}

	cp := *entry
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	r.entries[key] = &cp

	out := cp
	return &out, nil
}

func (r *CatalogRepo) InsertStorefrontMirror(_ context.Context, product *domain.StorefrontProduct) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.mirrors[product.ID]; ok {
		return e.ErrAlreadyExists
	}
	cp := *product
	cp.Images = slices.Clone(product.Images)
	r.mirrors[product.ID] = &cp
	return nil
}

func (r *CatalogRepo) UpdateStock(_ context.Context, key domain.ExternalKey, stock int, syncedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[key]
	if !ok {
		return e.ErrNotFound
	}
	entry.Product.StockLevel = stock
	entry.LastSyncedAt = &syncedAt
	entry.UpdatedAt = &syncedAt

	if mirror, ok := r.mirrors[entry.StorefrontProductID]; ok {
		mirror.Stock = stock
		mirror.UpdatedAt = &syncedAt
	}
	return nil
}

func (r *CatalogRepo) ListActive(_ context.Context, provider domain.Provider) ([]domain.CatalogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.CatalogEntry, 0, len(r.entries))
	for key, entry := range r.entries {
		if key.Provider == provider && entry.IsActive {
			out = append(out, *entry)
		}
	}
	slices.SortFunc(out, func(a, b domain.CatalogEntry) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

// StorefrontProduct возвращает зеркало записи; для проверок в тестах.
func (r *CatalogRepo) StorefrontProduct(id uuid.UUID) (*domain.StorefrontProduct, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.mirrors[id]
	if !ok {
		return nil, false
	}
	cp := *p
	return &cp, true
}

// Len возвращает количество канонических записей.
func (r *CatalogRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
