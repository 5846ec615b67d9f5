package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
)

// TxManager выполняет fn в одной транзакции хранилища.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// RunLock — single-flight для запусков импорта и сверки. Берёт его вызывающий, не ядро.
type RunLock interface {
	// Acquire возвращает e.ErrRunInProgress, если блокировка занята.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(ctx context.Context) error, err error)
}

type SnapshotStore interface {
	Put(ctx context.Context, snapshot *domain.Snapshot) (string, error)
}

type SecretSealer interface {
	Seal(plain string) (string, error)
	Open(sealed string) (string, error)
}

// SupplierFactory строит клиента поставщика по расшифрованной конфигурации.
type SupplierFactory interface {
	Supports(provider domain.Provider) bool
	New(cfg *domain.ProviderConfig) (SupplierClient, error)
}

type SupplierClient interface {
	Provider() domain.Provider
	FetchProducts(ctx context.Context, category *domain.Category, limit int) (*SupplierListing, error)
	StockLevel(ctx context.Context, externalID string) (int, error)
	// CreateOrder не повторяется. Отказ поставщика приходит как *domain.FulfillmentError.
	CreateOrder(ctx context.Context, order domain.SupplierOrder) (*OrderPlacement, error)
}

type MessageProducer interface {
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}

// EventEncoder кодирует события аудита для outbox.
type EventEncoder interface {
	EncodeSyncLog(entry *domain.SyncLogEntry) ([]byte, error)
	EncodeFulfillment(record *domain.FulfillmentRecord) ([]byte, error)
}

// RunObserver получает итоги запусков для метрик.
type RunObserver interface {
	ObserveRun(op domain.SyncOperation, provider domain.Provider, outcome domain.SyncOutcome, processed, failed int, elapsed time.Duration)
	ObserveFulfillment(provider domain.Provider, status domain.FulfillmentStatus)
}

type nopObserver struct{}

func (nopObserver) ObserveRun(domain.SyncOperation, domain.Provider, domain.SyncOutcome, int, int, time.Duration) {
}

func (nopObserver) ObserveFulfillment(domain.Provider, domain.FulfillmentStatus) {}
