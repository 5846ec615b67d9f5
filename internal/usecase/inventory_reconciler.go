package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/DRSN-tech/dropship-sync/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// InventoryReconciler обновляет остатки всех активных записей активного поставщика.
type InventoryReconciler struct {
	configs     ActiveConfigSource
	supplier    SupplierFactory
	catalog     CatalogRepository
	audit       *AuditWriter
	concurrency int
	observer    RunObserver
	logger      logger.Logger
}

func NewInventoryReconciler(
	configs ActiveConfigSource,
	supplier SupplierFactory,
	catalog CatalogRepository,
	audit *AuditWriter,
	concurrency int,
	observer RunObserver,
	logger logger.Logger,
) *InventoryReconciler {
	if concurrency <= 0 {
		concurrency = 1
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &InventoryReconciler{
		configs:     configs,
		supplier:    supplier,
		catalog:     catalog,
		audit:       audit,
		concurrency: concurrency,
		observer:    observer,
		logger:      logger,
	}
}

// Sync проходит по всем активным записям. Ошибка одной записи увеличивает счётчик и не останавливает проход.
func (r *InventoryReconciler) Sync(ctx context.Context) (*SyncInventoryRes, error) {
	const op = "InventoryReconciler.Sync"

	startedAt := time.Now().UTC()

	cfg, err := r.configs.Active(ctx)
	if err != nil {
		return nil, err
	}

	client, err := r.supplier.New(cfg)
	if err != nil {
		return nil, e.Fatal(e.ErrConfigurationMissing, e.Wrap(op, err))
	}

	entries, err := r.catalog.ListActive(ctx, cfg.Provider)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	run := newRunReport(domain.SyncOperationSync, cfg.Provider, startedAt)

	var (
		mu      sync.Mutex
		updated int
		failed  int
		g       errgroup.Group
	)
	g.SetLimit(r.concurrency)

	for _, entry := range entries {
		g.Go(func() error {
			itemErr := r.refresh(ctx, client, entry.Product.Key())

			mu.Lock()
			defer mu.Unlock()
			if itemErr != nil {
				failed++
				run.itemError(itemErr)
				return nil
			}
			updated++
			return nil
		})
	}
	_ = g.Wait()

	logEntry := run.finish(len(entries), failed)
	logEntry.Updated = updated
	if err := r.audit.SyncLog(ctx, logEntry); err != nil {
		r.logger.Errorf(e.Wrap(op, err), "Failed to record sync log. run_id: %s", logEntry.ID)
	}

	r.observer.ObserveRun(logEntry.Operation, logEntry.Provider, logEntry.Outcome, logEntry.Processed, logEntry.Failed, logEntry.FinishedAt.Sub(startedAt))
	r.logger.Infof("Inventory sync finished. provider: %s, processed: %d, updated: %d, failed: %d, outcome: %s",
		cfg.Provider, len(entries), updated, failed, logEntry.Outcome)

	return &SyncInventoryRes{
		Processed: len(entries),
		Updated:   updated,
		Failed:    failed,
		Log:       logEntry,
	}, nil
}

// refresh запрашивает остаток одной записи и записывает его в обе строки.
func (r *InventoryReconciler) refresh(ctx context.Context, client SupplierClient, key domain.ExternalKey) *e.ItemError {
	level, err := client.StockLevel(ctx, key.ExternalID)
	if err != nil {
		return e.Item(key.ExternalID, stageStock, err)
	}

	if err := r.catalog.UpdateStock(ctx, key, level, time.Now().UTC()); err != nil {
		return e.Item(key.ExternalID, stageUpdate, err)
	}
	return nil
}
