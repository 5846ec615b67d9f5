package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
)

// ConfigRepository — журнал конфигураций поставщиков. Записи не удаляются.
type ConfigRepository interface {
	// Active возвращает единственную активную запись или e.ErrNotFound.
	Active(ctx context.Context) (*domain.ProviderConfig, error)
	// Supersede снимает флаг активности с текущей записи, если она есть.
	Supersede(ctx context.Context, at time.Time) error
	Insert(ctx context.Context, cfg *domain.ProviderConfig) (*domain.ProviderConfig, error)
	// History возвращает записи от новых к старым; при provider == nil по всем поставщикам.
	History(ctx context.Context, provider *domain.Provider, limit int) ([]domain.ProviderConfig, error)
}

// CatalogRepository — каноническая запись каталога и её зеркало в витрине.
type CatalogRepository interface {
	// FindByExternalID возвращает запись или e.ErrNotFound.
	FindByExternalID(ctx context.Context, key domain.ExternalKey) (*domain.CatalogEntry, error)
	// Insert возвращает e.ErrAlreadyExists, если ключ уже занят.
	Insert(ctx context.Context, entry *domain.CatalogEntry) (*domain.CatalogEntry, error)
	InsertStorefrontMirror(ctx context.Context, product *domain.StorefrontProduct) error
	// UpdateStock обновляет остаток в обеих строках и проставляет время синхронизации.
	UpdateStock(ctx context.Context, key domain.ExternalKey, stock int, syncedAt time.Time) error
	ListActive(ctx context.Context, provider domain.Provider) ([]domain.CatalogEntry, error)
}

type SyncLogRepository interface {
	Append(ctx context.Context, entry *domain.SyncLogEntry) error
	List(ctx context.Context, filter SyncLogFilter) ([]domain.SyncLogEntry, error)
}

type FulfillmentRepository interface {
	Insert(ctx context.Context, record *domain.FulfillmentRecord) (*domain.FulfillmentRecord, error)
	// FindByOrderID возвращает последнюю попытку по заказу или e.ErrNotFound.
	FindByOrderID(ctx context.Context, orderID string) (*domain.FulfillmentRecord, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
	// RequeueStale возвращает в pending события, застрявшие в processing дольше olderThan.
	RequeueStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

// ConfigCache хранит активную конфигурацию в зашифрованном виде. Промах: (nil, nil).
type ConfigCache interface {
	GetActive(ctx context.Context) (*domain.ProviderConfig, error)
	SetActive(ctx context.Context, cfg *domain.ProviderConfig) error
	InvalidateActive(ctx context.Context) error
}
