package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/DRSN-tech/dropship-sync/pkg/logger"
	"github.com/google/uuid"
)

// FulfillmentDispatcher передаёт заказ поставщику ровно один раз за вызов.
// Повторов нет; дубли по заказу отсекает вызывающий.
type FulfillmentDispatcher struct {
	configs  ActiveConfigSource
	supplier SupplierFactory
	audit    *AuditWriter
	observer RunObserver
	logger   logger.Logger
}

func NewFulfillmentDispatcher(
	configs ActiveConfigSource,
	supplier SupplierFactory,
	audit *AuditWriter,
	observer RunObserver,
	logger logger.Logger,
) *FulfillmentDispatcher {
	if observer == nil {
		observer = nopObserver{}
	}
	return &FulfillmentDispatcher{
		configs:  configs,
		supplier: supplier,
		audit:    audit,
		observer: observer,
		logger:   logger,
	}
}

// Dispatch пишет FulfillmentRecord и при успехе, и при отказе. Отказ возвращается вызывающему.
func (d *FulfillmentDispatcher) Dispatch(ctx context.Context, req *FulfillOrderReq) (*FulfillOrderRes, error) {
	const op = "FulfillmentDispatcher.Dispatch"

	if err := validateFulfillOrder(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	cfg, err := d.configs.Active(ctx)
	if err != nil {
		return nil, err
	}

	client, err := d.supplier.New(cfg)
	if err != nil {
		return nil, e.Fatal(e.ErrConfigurationMissing, e.Wrap(op, err))
	}

	record := &domain.FulfillmentRecord{
		ID:                uuid.New(),
		OrderID:           req.OrderID,
		Provider:          cfg.Provider,
		ProductExternalID: req.ProductExternalID,
		Customer:          req.Customer,
		ShippingAddress:   req.ShippingAddress,
		Quantity:          req.Quantity,
	}

	placement, orderErr := client.CreateOrder(ctx, domain.SupplierOrder{
		OrderID:           req.OrderID,
		ProductExternalID: req.ProductExternalID,
		Customer:          req.Customer,
		ShippingAddress:   req.ShippingAddress,
		Quantity:          req.Quantity,
	})
	record.CreatedAt = time.Now().UTC()

	if orderErr != nil {
		record.Status = domain.FulfillmentStatusFailed
		record.ErrorMessage = orderErr.Error()
		var fulfillmentErr *domain.FulfillmentError
		if errors.As(orderErr, &fulfillmentErr) {
			record.RawResponse = rawJSON(fulfillmentErr.Body)
		}

		if _, err := d.audit.Fulfillment(ctx, record); err != nil {
			d.logger.Errorf(e.Wrap(op, err), "Failed to record failed fulfillment. order_id: %s", req.OrderID)
		}
		d.observer.ObserveFulfillment(cfg.Provider, record.Status)
		d.logger.Warnf("Order forwarding failed. order_id: %s, provider: %s, error: %v", req.OrderID, cfg.Provider, orderErr)

		return nil, e.Wrap(op, orderErr)
	}

	record.Status = domain.FulfillmentStatusSent
	record.ExternalOrderID = placement.Result.ExternalOrderID
	record.TrackingNumber = placement.Result.TrackingNumber
	record.RawResponse = rawJSON(placement.Raw)

	saved, err := d.audit.Fulfillment(ctx, record)
	if err != nil {
		// Заказ у поставщика уже создан, результат отдаём в любом случае.
		d.logger.Errorf(e.Wrap(op, err), "Order placed but fulfillment record not persisted. order_id: %s, external_order_id: %s",
			req.OrderID, record.ExternalOrderID)
		saved = record
	}
	d.observer.ObserveFulfillment(cfg.Provider, record.Status)
	d.logger.Infof("Order forwarded. order_id: %s, provider: %s, external_order_id: %s", req.OrderID, cfg.Provider, record.ExternalOrderID)

	return &FulfillOrderRes{Record: saved}, nil
}

func validateFulfillOrder(req *FulfillOrderReq) error {
	switch {
	case strings.TrimSpace(req.OrderID) == "":
		return e.Invalid("order_id is required")
	case strings.TrimSpace(req.ProductExternalID) == "":
		return e.Invalid("product_external_id is required")
	case strings.TrimSpace(req.Customer.Name) == "":
		return e.Invalid("customer.name is required")
	case strings.TrimSpace(req.ShippingAddress.Country) == "":
		return e.Invalid("shipping_address.country is required")
	case req.Quantity < 1:
		return e.Invalid("quantity must be at least 1")
	}
	return nil
}
