package pgdb

import (
	"context"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/DRSN-tech/dropship-sync/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

const fulfillmentColumns = `
	id, order_id, external_order_id, provider, product_external_id, customer, shipping_address,
	quantity, status, tracking_number, error_message, raw_response, created_at`

// FulfillmentRepo — попытки передачи заказов поставщику, по одной строке на попытку.
type FulfillmentRepo struct {
	pool *pgxpool.Pool
	conv converter.FulfillmentConverter
}

func NewFulfillmentRepo(pool *pgxpool.Pool) *FulfillmentRepo {
	return &FulfillmentRepo{pool: pool}
}

func (f *FulfillmentRepo) Insert(ctx context.Context, record *domain.FulfillmentRecord) (*domain.FulfillmentRecord, error) {
	model, err := f.conv.ToModel(record)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		INSERT INTO dropship_fulfillments (` + fulfillmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + fulfillmentColumns

	saved, err := scanFulfillment(tr.Conn(ctx, f.pool).QueryRow(ctx, query,
		model.ID,
		model.OrderID,
		model.ExternalOrderID,
		model.Provider,
		model.ProductExternalID,
		model.Customer,
		model.ShippingAddress,
		model.Quantity,
		model.Status,
		model.TrackingNumber,
		model.ErrorMessage,
		model.RawResponse,
		model.CreatedAt,
	))
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return f.toEntity(saved)
}

// FindByOrderID возвращает последнюю попытку по заказу.
func (f *FulfillmentRepo) FindByOrderID(ctx context.Context, orderID string) (*domain.FulfillmentRecord, error) {
	query := `
		SELECT ` + fulfillmentColumns + `
		FROM dropship_fulfillments
		WHERE order_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	model, err := scanFulfillment(f.pool.QueryRow(ctx, query, orderID))
	if noRows(err) {
		return nil, e.ErrNotFound
	}
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return f.toEntity(model)
}

func (f *FulfillmentRepo) toEntity(model *converter.FulfillmentModel) (*domain.FulfillmentRecord, error) {
	record, err := f.conv.ToEntity(model)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	return record, nil
}

func scanFulfillment(row pgx.Row) (*converter.FulfillmentModel, error) {
	var m converter.FulfillmentModel
	err := row.Scan(
		&m.ID, &m.OrderID, &m.ExternalOrderID, &m.Provider, &m.ProductExternalID, &m.Customer, &m.ShippingAddress,
		&m.Quantity, &m.Status, &m.TrackingNumber, &m.ErrorMessage, &m.RawResponse, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
