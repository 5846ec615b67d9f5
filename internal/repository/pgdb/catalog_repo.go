package pgdb

import (
	"context"
	"time"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/DRSN-tech/dropship-sync/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

const catalogColumns = `
	id, storefront_product_id, provider, external_id, title, description, price::text, sku,
	category, tags, images, stock_level, shipping_time, weight::text, dimensions, variants,
	is_active, last_synced_at, created_at, updated_at`

// CatalogRepo — записи каталога (dropship_products) и их зеркала в витрине (products).
type CatalogRepo struct {
	pool *pgxpool.Pool
	conv converter.CatalogConverter
}

func NewCatalogRepo(pool *pgxpool.Pool) *CatalogRepo {
	return &CatalogRepo{pool: pool}
}

func (c *CatalogRepo) FindByExternalID(ctx context.Context, key domain.ExternalKey) (*domain.CatalogEntry, error) {
	query := `SELECT ` + catalogColumns + ` FROM dropship_products WHERE provider = $1 AND external_id = $2`

	model, err := scanCatalogEntry(tr.Conn(ctx, c.pool).QueryRow(ctx, query, key.Provider.String(), key.ExternalID))
	if noRows(err) {
		return nil, e.ErrNotFound
	}
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return c.toEntity(model)
}

// Insert добавляет запись. Если пара (provider, external_id) уже есть, возвращает ErrAlreadyExists.
func (c *CatalogRepo) Insert(ctx context.Context, entry *domain.CatalogEntry) (*domain.CatalogEntry, error) {
	model, err := c.conv.ToModel(entry)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		INSERT INTO dropship_products (
			id, storefront_product_id, provider, external_id, title, description, price, sku,
			category, tags, images, stock_level, shipping_time, weight, dimensions, variants,
			is_active, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8, $9, $10, $11, $12, $13, $14::numeric, $15, $16, $17, $18)
		ON CONFLICT (provider, external_id) DO NOTHING
		RETURNING ` + catalogColumns

	saved, err := scanCatalogEntry(tr.Conn(ctx, c.pool).QueryRow(ctx, query,
		model.ID,
		model.StorefrontProductID,
		model.Provider,
		model.ExternalID,
		model.Title,
		model.Description,
		model.Price,
		model.SKU,
		model.Category,
		model.Tags,
		model.Images,
		model.StockLevel,
		model.ShippingTime,
		model.Weight,
		model.Dimensions,
		model.Variants,
		model.IsActive,
		model.CreatedAt,
	))
	if noRows(err) {
		return nil, e.ErrAlreadyExists
	}
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return c.toEntity(saved)
}

// InsertStorefrontMirror создаёт денормализованную строку витрины.
func (c *CatalogRepo) InsertStorefrontMirror(ctx context.Context, product *domain.StorefrontProduct) error {
	model := c.conv.StorefrontToModel(product)

	query := `
		INSERT INTO products (
			id, name, description, price, category, images, stock,
			source_provider, source_external_id, is_active
		) VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8, $9, $10)
	`

	_, err := tr.Conn(ctx, c.pool).Exec(ctx, query,
		model.ID,
		model.Name,
		model.Description,
		model.Price,
		model.Category,
		model.Images,
		model.Stock,
		model.SourceProvider,
		model.SourceExternalID,
		model.IsActive,
	)
	if err != nil {
		if postgresDuplicate(err) {
			return e.Wrap(whereami.WhereAmI(), e.ErrAlreadyExists)
		}
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// UpdateStock одним запросом обновляет остаток в записи каталога и в её зеркале.
func (c *CatalogRepo) UpdateStock(ctx context.Context, key domain.ExternalKey, stock int, syncedAt time.Time) error {
	query := `
		WITH entry AS (
			UPDATE dropship_products
			SET stock_level = $3, last_synced_at = $4, updated_at = $4
			WHERE provider = $1 AND external_id = $2
			RETURNING storefront_product_id
		), mirror AS (
			UPDATE products
			SET stock = $3, updated_at = $4
			WHERE id IN (SELECT storefront_product_id FROM entry)
			RETURNING id
		)
		SELECT count(*) FROM entry
	`

	var updated int64
	if err := tr.Conn(ctx, c.pool).QueryRow(ctx, query, key.Provider.String(), key.ExternalID, stock, syncedAt).Scan(&updated); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if updated == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrNotFound)
	}

	return nil
}

func (c *CatalogRepo) ListActive(ctx context.Context, provider domain.Provider) ([]domain.CatalogEntry, error) {
	query := `
		SELECT ` + catalogColumns + `
		FROM dropship_products
		WHERE provider = $1 AND is_active
		ORDER BY created_at
	`

	rows, err := c.pool.Query(ctx, query, provider.String())
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]domain.CatalogEntry, 0)
	for rows.Next() {
		model, err := scanCatalogEntry(rows)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		entry, err := c.toEntity(model)
		if err != nil {
			return nil, err
		}
		result = append(result, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}

func (c *CatalogRepo) toEntity(model *converter.CatalogEntryModel) (*domain.CatalogEntry, error) {
	entry, err := c.conv.ToEntity(model)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	return entry, nil
}

func scanCatalogEntry(row pgx.Row) (*converter.CatalogEntryModel, error) {
	var m converter.CatalogEntryModel
	err := row.Scan(
		&m.ID, &m.StorefrontProductID, &m.Provider, &m.ExternalID, &m.Title, &m.Description, &m.Price, &m.SKU,
		&m.Category, &m.Tags, &m.Images, &m.StockLevel, &m.ShippingTime, &m.Weight, &m.Dimensions, &m.Variants,
		&m.IsActive, &m.LastSyncedAt, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
