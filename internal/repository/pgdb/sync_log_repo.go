package pgdb

import (
	"context"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/dropship-sync/internal/usecase"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/DRSN-tech/dropship-sync/pkg/tr"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

const syncLogColumns = `id, operation, provider, outcome, processed, updated, failed, errors, snapshot_key, started_at, finished_at`

// SyncLogRepo — неизменяемый журнал запусков импорта и сверки.
type SyncLogRepo struct {
	pool *pgxpool.Pool
	conv converter.SyncLogConverter
}

func NewSyncLogRepo(pool *pgxpool.Pool) *SyncLogRepo {
	return &SyncLogRepo{pool: pool}
}

func (s *SyncLogRepo) Append(ctx context.Context, entry *domain.SyncLogEntry) error {
	model, err := s.conv.ToModel(entry)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		INSERT INTO dropship_sync_logs (` + syncLogColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = tr.Conn(ctx, s.pool).Exec(ctx, query,
		model.ID,
		model.Operation,
		model.Provider,
		model.Outcome,
		model.Processed,
		model.Updated,
		model.Failed,
		model.Errors,
		model.SnapshotKey,
		model.StartedAt,
		model.FinishedAt,
	)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// List возвращает записи от новых к старым.
func (s *SyncLogRepo) List(ctx context.Context, filter usecase.SyncLogFilter) ([]domain.SyncLogEntry, error) {
	query := `
		SELECT ` + syncLogColumns + `
		FROM dropship_sync_logs
		WHERE ($1::text IS NULL OR operation = $1)
		ORDER BY finished_at DESC
		LIMIT $2
	`

	var operation *string
	if filter.Operation != nil {
		op := string(*filter.Operation)
		operation = &op
	}

	rows, err := s.pool.Query(ctx, query, operation, filter.Limit)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]domain.SyncLogEntry, 0, filter.Limit)
	for rows.Next() {
		var m converter.SyncLogModel
		if err := rows.Scan(
			&m.ID, &m.Operation, &m.Provider, &m.Outcome, &m.Processed, &m.Updated, &m.Failed,
			&m.Errors, &m.SnapshotKey, &m.StartedAt, &m.FinishedAt,
		); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		entry, err := s.conv.ToEntity(&m)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		result = append(result, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}
