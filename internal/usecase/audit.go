package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/google/uuid"
)

// auditTimeout ограничивает запись аудита, отвязанную от контекста запроса.
const auditTimeout = 10 * time.Second

// AuditWriter пишет запись аудита вместе с событием outbox в одной транзакции.
type AuditWriter struct {
	syncLogs     SyncLogRepository
	fulfillments FulfillmentRepository
	outbox       OutboxRepository
	encoder      EventEncoder
	tx           TxManager
}

func NewAuditWriter(
	syncLogs SyncLogRepository,
	fulfillments FulfillmentRepository,
	outbox OutboxRepository,
	encoder EventEncoder,
	tx TxManager,
) *AuditWriter {
	return &AuditWriter{
		syncLogs:     syncLogs,
		fulfillments: fulfillments,
		outbox:       outbox,
		encoder:      encoder,
		tx:           tx,
	}
}

// SyncLog сохраняет неизменяемую запись запуска.
func (a *AuditWriter) SyncLog(ctx context.Context, entry *domain.SyncLogEntry) error {
	const op = "AuditWriter.SyncLog"

	ctx, cancel := detach(ctx)
	defer cancel()

	payload, err := a.encoder.EncodeSyncLog(entry)
	if err != nil {
		return e.Wrap(op, err)
	}

	err = a.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := a.syncLogs.Append(ctx, entry); err != nil {
			return err
		}
		_, err := a.outbox.Create(ctx, NewOutboxEvent(EventSyncLogRecorded, entry.ID.String(), payload))
		return err
	})
	if err != nil {
		return e.Wrap(op, err)
	}
	return nil
}

// Fulfillment сохраняет попытку передачи заказа.
func (a *AuditWriter) Fulfillment(ctx context.Context, record *domain.FulfillmentRecord) (*domain.FulfillmentRecord, error) {
	const op = "AuditWriter.Fulfillment"

	ctx, cancel := detach(ctx)
	defer cancel()

	payload, err := a.encoder.EncodeFulfillment(record)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	var saved *domain.FulfillmentRecord
	err = a.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if saved, err = a.fulfillments.Insert(ctx, record); err != nil {
			return err
		}
		_, err = a.outbox.Create(ctx, NewOutboxEvent(EventFulfillmentRecorded, record.OrderID, payload))
		return err
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	return saved, nil
}

// detach: запись аудита не отменяется вместе с запросом.
func detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
}

// runReport собирает итоги одного запуска импорта или сверки.
type runReport struct {
	id          uuid.UUID
	operation   domain.SyncOperation
	provider    domain.Provider
	startedAt   time.Time
	snapshotKey string
	errors      []domain.SyncErrorDetail
}

func newRunReport(operation domain.SyncOperation, provider domain.Provider, startedAt time.Time) *runReport {
	return &runReport{
		id:        uuid.New(),
		operation: operation,
		provider:  provider,
		startedAt: startedAt,
	}
}

func (r *runReport) itemError(err *e.ItemError) {
	r.errors = append(r.errors, domain.SyncErrorDetail{
		ExternalID: err.Key,
		Stage:      err.Stage,
		Message:    err.Err.Error(),
	})
}

func (r *runReport) finish(processed, failed int) *domain.SyncLogEntry {
	return &domain.SyncLogEntry{
		ID:          r.id,
		Operation:   r.operation,
		Provider:    r.provider,
		Outcome:     domain.ClassifyOutcome(processed, failed),
		Processed:   processed,
		Failed:      failed,
		Errors:      r.errors,
		SnapshotKey: r.snapshotKey,
		StartedAt:   r.startedAt,
		FinishedAt:  time.Now().UTC(),
	}
}
