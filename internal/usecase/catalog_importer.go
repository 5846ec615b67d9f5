package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/DRSN-tech/dropship-sync/pkg/logger"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	stageFetch  = "fetch"
	stageLookup = "lookup"
	stageInsert = "insert"
	stageMirror = "mirror"
	stageStock  = "stock"
	stageUpdate = "update"
)

// ActiveConfigSource отдаёт активную расшифрованную конфигурацию.
type ActiveConfigSource interface {
	Active(ctx context.Context) (*domain.ProviderConfig, error)
}

// CatalogImporter выполняет аддитивный импорт листинга поставщика: существующие записи не трогаются.
type CatalogImporter struct {
	configs     ActiveConfigSource
	supplier    SupplierFactory
	catalog     CatalogRepository
	audit       *AuditWriter
	snapshots   SnapshotStore
	concurrency int
	observer    RunObserver
	logger      logger.Logger
}

func NewCatalogImporter(
	configs ActiveConfigSource,
	supplier SupplierFactory,
	catalog CatalogRepository,
	audit *AuditWriter,
	snapshots SnapshotStore,
	concurrency int,
	observer RunObserver,
	logger logger.Logger,
) *CatalogImporter {
	if concurrency <= 0 {
		concurrency = 1
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &CatalogImporter{
		configs:     configs,
		supplier:    supplier,
		catalog:     catalog,
		audit:       audit,
		snapshots:   snapshots,
		concurrency: concurrency,
		observer:    observer,
		logger:      logger,
	}
}

type importOutcome int

const (
	importInserted importOutcome = iota
	importSkipped
	importFailed
)

// Import: активная конфигурация -> листинг -> поштучная вставка новых записей -> одна запись аудита.
func (c *CatalogImporter) Import(ctx context.Context, req *ImportProductsReq) (*ImportProductsRes, error) {
	const op = "CatalogImporter.Import"

	startedAt := time.Now().UTC()

	cfg, err := c.configs.Active(ctx)
	if err != nil {
		return nil, err
	}

	client, err := c.supplier.New(cfg)
	if err != nil {
		return nil, e.Fatal(e.ErrConfigurationMissing, e.Wrap(op, err))
	}

	run := newRunReport(domain.SyncOperationImport, cfg.Provider, startedAt)

	listing, err := client.FetchProducts(ctx, req.Category, req.Limit)
	if err != nil {
		run.itemError(e.Item("", stageFetch, err))
		entry := run.finish(0, 0)
		entry.Outcome = domain.SyncOutcomeError
		c.record(ctx, entry)
		return nil, e.Fatal(e.ErrTransportFailure, e.Wrap(op, err))
	}

	run.snapshotKey = c.archive(ctx, run.id, cfg.Provider, listing.Raw)

	candidates, duplicates := dedupeCandidates(listing.Products)
	total := len(listing.Products)

	var (
		mu       sync.Mutex
		inserted = make([]domain.CatalogEntry, 0, len(candidates))
		skipped  = duplicates
		failed   int
		g        errgroup.Group
	)
	g.SetLimit(c.concurrency)

	for _, product := range candidates {
		g.Go(func() error {
			entry, outcome, errs := c.importOne(ctx, product)

			mu.Lock()
			defer mu.Unlock()
			switch outcome {
			case importInserted:
				inserted = append(inserted, *entry)
			case importSkipped:
				skipped++
			case importFailed:
				failed++
			}
			for _, itemErr := range errs {
				run.itemError(itemErr)
			}
			return nil
		})
	}
	_ = g.Wait()

	entry := run.finish(total, failed)
	entry.Updated = len(inserted)
	c.record(ctx, entry)

	c.observer.ObserveRun(entry.Operation, entry.Provider, entry.Outcome, entry.Processed, entry.Failed, entry.FinishedAt.Sub(startedAt))
	c.logger.Infof("Import finished. provider: %s, total: %d, imported: %d, skipped: %d, failed: %d, outcome: %s",
		cfg.Provider, total, len(inserted), skipped, failed, entry.Outcome)

	return &ImportProductsRes{
		Imported: len(inserted),
		Total:    total,
		Skipped:  skipped,
		Errors:   failed,
		Products: inserted,
		Log:      entry,
	}, nil
}

// importOne вставляет одну новую запись и её зеркало. Ошибка зеркала не считается провалом элемента.
func (c *CatalogImporter) importOne(ctx context.Context, product domain.SupplierProduct) (*domain.CatalogEntry, importOutcome, []*e.ItemError) {
	key := product.Key()

	_, err := c.catalog.FindByExternalID(ctx, key)
	switch {
	case err == nil:
		return nil, importSkipped, nil
	case !errors.Is(err, e.ErrNotFound):
		return nil, importFailed, []*e.ItemError{e.Item(key.ExternalID, stageLookup, err)}
	}

	entry := domain.NewCatalogEntry(product)
	entry.CreatedAt = time.Now().UTC()

	saved, err := c.catalog.Insert(ctx, entry)
	if errors.Is(err, e.ErrAlreadyExists) {
		return nil, importSkipped, nil
	}
	if err != nil {
		return nil, importFailed, []*e.ItemError{e.Item(key.ExternalID, stageInsert, err)}
	}

	if err := c.catalog.InsertStorefrontMirror(ctx, domain.NewStorefrontProduct(saved)); err != nil {
		c.logger.Warnf("Storefront mirror insert failed, canonical entry kept. external_id: %s, error: %v", key.ExternalID, err)
		return saved, importInserted, []*e.ItemError{e.Item(key.ExternalID, stageMirror, err)}
	}

	return saved, importInserted, nil
}

// archive сохраняет сырой листинг; ошибка архива на импорт не влияет.
func (c *CatalogImporter) archive(ctx context.Context, runID uuid.UUID, provider domain.Provider, raw []byte) string {
	const op = "CatalogImporter.archive"

	if c.snapshots == nil || len(raw) == 0 {
		return ""
	}

	objectKey := fmt.Sprintf("imports/%s/%s/%s.json", provider, time.Now().UTC().Format("2006-01-02"), runID)
	key, err := c.snapshots.Put(ctx, domain.NewSnapshot(objectKey, raw))
	if err != nil {
		c.logger.Warnf("Failed to archive supplier listing: %v", e.Wrap(op, err))
		return ""
	}
	return key
}

func (c *CatalogImporter) record(ctx context.Context, entry *domain.SyncLogEntry) {
	const op = "CatalogImporter.record"

	if err := c.audit.SyncLog(ctx, entry); err != nil {
		c.logger.Errorf(e.Wrap(op, err), "Failed to record sync log. run_id: %s", entry.ID)
	}
}

// dedupeCandidates оставляет первое вхождение каждого внешнего идентификатора.
func dedupeCandidates(products []domain.SupplierProduct) ([]domain.SupplierProduct, int) {
	seen := make(map[string]struct{}, len(products))
	out := make([]domain.SupplierProduct, 0, len(products))
	for _, p := range products {
		if _, ok := seen[p.ExternalID]; ok {
			continue
		}
		seen[p.ExternalID] = struct{}{}
		out = append(out, p)
	}
	return out, len(products) - len(out)
}
