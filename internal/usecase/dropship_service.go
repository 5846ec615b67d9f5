package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
)

const (
	defaultSyncLogLimit = 50
	maxSyncLogLimit     = 500
)

// DropshipService — точка входа для всех операций. Права проверяются до любого обращения к поставщику.
type DropshipService struct {
	configs      *ConfigUseCase
	importer     *CatalogImporter
	reconciler   *InventoryReconciler
	dispatcher   *FulfillmentDispatcher
	syncLogs     SyncLogRepository
	fulfillments FulfillmentRepository
}

func NewDropshipService(
	configs *ConfigUseCase,
	importer *CatalogImporter,
	reconciler *InventoryReconciler,
	dispatcher *FulfillmentDispatcher,
	syncLogs SyncLogRepository,
	fulfillments FulfillmentRepository,
) *DropshipService {
	return &DropshipService{
		configs:      configs,
		importer:     importer,
		reconciler:   reconciler,
		dispatcher:   dispatcher,
		syncLogs:     syncLogs,
		fulfillments: fulfillments,
	}
}

var _ DropshipUC = (*DropshipService)(nil)

func (s *DropshipService) ConfigureAPI(ctx context.Context, caller domain.Caller, req *ConfigureReq) (*ConfigView, error) {
	if err := authorize(caller); err != nil {
		return nil, err
	}
	return s.configs.Configure(ctx, req)
}

func (s *DropshipService) ConfigHistory(ctx context.Context, caller domain.Caller, req *ConfigHistoryReq) ([]ConfigView, error) {
	if err := authorize(caller); err != nil {
		return nil, err
	}
	return s.configs.History(ctx, req)
}

func (s *DropshipService) ImportProducts(ctx context.Context, caller domain.Caller, req *ImportProductsReq) (*ImportProductsRes, error) {
	if err := authorize(caller); err != nil {
		return nil, err
	}
	if req.Limit < 0 {
		return nil, e.Invalid("limit must be positive")
	}
	return s.importer.Import(ctx, req)
}

func (s *DropshipService) SyncInventory(ctx context.Context, caller domain.Caller) (*SyncInventoryRes, error) {
	if err := authorize(caller); err != nil {
		return nil, err
	}
	return s.reconciler.Sync(ctx)
}

func (s *DropshipService) FulfillOrder(ctx context.Context, caller domain.Caller, req *FulfillOrderReq) (*FulfillOrderRes, error) {
	if err := authorize(caller); err != nil {
		return nil, err
	}
	return s.dispatcher.Dispatch(ctx, req)
}

func (s *DropshipService) FulfillmentByOrder(ctx context.Context, caller domain.Caller, orderID string) (*domain.FulfillmentRecord, error) {
	const op = "DropshipService.FulfillmentByOrder"

	if err := authorize(caller); err != nil {
		return nil, err
	}
	if strings.TrimSpace(orderID) == "" {
		return nil, e.Invalid("order_id is required")
	}

	record, err := s.fulfillments.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	return record, nil
}

func (s *DropshipService) SyncLogs(ctx context.Context, caller domain.Caller, filter SyncLogFilter) ([]domain.SyncLogEntry, error) {
	const op = "DropshipService.SyncLogs"

	if err := authorize(caller); err != nil {
		return nil, err
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultSyncLogLimit
	}
	filter.Limit = min(filter.Limit, maxSyncLogLimit)

	entries, err := s.syncLogs.List(ctx, filter)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	return entries, nil
}

func authorize(caller domain.Caller) error {
	if !caller.IsAdmin() {
		return e.Fatal(e.ErrUnauthorized, fmt.Errorf("capability %q required", domain.CapabilityAdmin))
	}
	return nil
}
