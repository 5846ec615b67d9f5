package usecase

import (
	"context"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
)

// DropshipUC — операции интеграции с поставщиками. Каждая требует права администратора.
type DropshipUC interface {
	ConfigureAPI(ctx context.Context, caller domain.Caller, req *ConfigureReq) (*ConfigView, error)
	ConfigHistory(ctx context.Context, caller domain.Caller, req *ConfigHistoryReq) ([]ConfigView, error)
	ImportProducts(ctx context.Context, caller domain.Caller, req *ImportProductsReq) (*ImportProductsRes, error)
	SyncInventory(ctx context.Context, caller domain.Caller) (*SyncInventoryRes, error)
	FulfillOrder(ctx context.Context, caller domain.Caller, req *FulfillOrderReq) (*FulfillOrderRes, error)
	FulfillmentByOrder(ctx context.Context, caller domain.Caller, orderID string) (*domain.FulfillmentRecord, error)
	SyncLogs(ctx context.Context, caller domain.Caller, filter SyncLogFilter) ([]domain.SyncLogEntry, error)
}
