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

const configColumns = `id, provider, api_key, api_secret, settings, is_active, created_at, superseded_at`

// ConfigRepo — журнал конфигураций поставщиков. Строки не удаляются.
type ConfigRepo struct {
	pool *pgxpool.Pool
	conv converter.ProviderConfigConverter
}

func NewConfigRepo(pool *pgxpool.Pool) *ConfigRepo {
	return &ConfigRepo{pool: pool}
}

func (c *ConfigRepo) Active(ctx context.Context) (*domain.ProviderConfig, error) {
	query := `SELECT ` + configColumns + ` FROM dropship_api_configs WHERE is_active LIMIT 1`

	model, err := scanConfig(tr.Conn(ctx, c.pool).QueryRow(ctx, query))
	if noRows(err) {
		return nil, e.ErrNotFound
	}
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return c.toEntity(model)
}

// Supersede снимает флаг активности с текущей записи. Вызывается в одной транзакции с Insert.
func (c *ConfigRepo) Supersede(ctx context.Context, at time.Time) error {
	query := `
		UPDATE dropship_api_configs
		SET is_active = false, superseded_at = $1
		WHERE is_active
	`

	if _, err := tr.Conn(ctx, c.pool).Exec(ctx, query, at); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	return nil
}

func (c *ConfigRepo) Insert(ctx context.Context, cfg *domain.ProviderConfig) (*domain.ProviderConfig, error) {
	model, err := c.conv.ToModel(cfg)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		INSERT INTO dropship_api_configs (` + configColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + configColumns

	saved, err := scanConfig(tr.Conn(ctx, c.pool).QueryRow(ctx, query,
		model.ID,
		model.Provider,
		model.APIKey,
		model.APISecret,
		model.Settings,
		model.IsActive,
		model.CreatedAt,
		model.SupersededAt,
	))
	if err != nil {
		if postgresDuplicate(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrAlreadyExists)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return c.toEntity(saved)
}

// History отдаёт записи журнала от новых к старым, опционально по одному поставщику.
func (c *ConfigRepo) History(ctx context.Context, provider *domain.Provider, limit int) ([]domain.ProviderConfig, error) {
	query := `
		SELECT ` + configColumns + `
		FROM dropship_api_configs
		WHERE ($1::text IS NULL OR provider = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`

	var filter *string
	if provider != nil {
		p := provider.String()
		filter = &p
	}

	rows, err := c.pool.Query(ctx, query, filter, limit)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]domain.ProviderConfig, 0, limit)
	for rows.Next() {
		model, err := scanConfig(rows)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		cfg, err := c.toEntity(model)
		if err != nil {
			return nil, err
		}
		result = append(result, *cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}

func (c *ConfigRepo) toEntity(model *converter.ProviderConfigModel) (*domain.ProviderConfig, error) {
	cfg, err := c.conv.ToEntity(model)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	return cfg, nil
}

func scanConfig(row pgx.Row) (*converter.ProviderConfigModel, error) {
	var m converter.ProviderConfigModel
	err := row.Scan(
		&m.ID, &m.Provider, &m.APIKey, &m.APISecret, &m.Settings,
		&m.IsActive, &m.CreatedAt, &m.SupersededAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
