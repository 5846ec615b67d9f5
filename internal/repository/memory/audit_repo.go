package memory

import (
	"context"
	"sync"
	"time"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/internal/usecase"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
)

type SyncLogRepo struct {
	mu      sync.RWMutex
	entries []domain.SyncLogEntry
}

func NewSyncLogRepo() *SyncLogRepo {
	return &SyncLogRepo{}
}

func (r *SyncLogRepo) Append(_ context.Context, entry *domain.SyncLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.entries {
		if existing.ID == entry.ID {
			return e.ErrAlreadyExists
		}
	}
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *SyncLogRepo) List(_ context.Context, filter usecase.SyncLogFilter) ([]domain.SyncLogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.SyncLogEntry, 0, len(r.entries))
	for i := len(r.entries) - 1; i >= 0; i-- {
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
		if filter.Operation != nil && r.entries[i].Operation != *filter.Operation {
			continue
		}
		out = append(out, r.entries[i])
	}
	return out, nil
}

type FulfillmentRepo struct {
	mu      sync.RWMutex
	records []domain.FulfillmentRecord
}

func NewFulfillmentRepo() *FulfillmentRepo {
	return &FulfillmentRepo{}
}

func (r *FulfillmentRepo) Insert(_ context.Context, record *domain.FulfillmentRecord) (*domain.FulfillmentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = append(r.records, *record)
	cp := *record
	return &cp, nil
}

func (r *FulfillmentRepo) FindByOrderID(_ context.Context, orderID string) (*domain.FulfillmentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].OrderID == orderID {
			cp := r.records[i]
			return &cp, nil
		}
	}
	return nil, e.ErrNotFound
}

// ByOrderID возвращает все попытки по заказу в порядке записи.
func (r *FulfillmentRepo) ByOrderID(orderID string) []domain.FulfillmentRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.FulfillmentRecord
	for _, rec := range r.records {
		if rec.OrderID == orderID {
			out = append(out, rec)
		}
	}
	return out
}

// OutboxRepo копит события; в режиме памяти воркер Kafka не запускается.
type OutboxRepo struct {
	mu         sync.Mutex
	nextID     int64
	events     []*usecase.OutboxEvent
	processing map[int64]time.Time
}

func NewOutboxRepo() *OutboxRepo {
	return &OutboxRepo{processing: make(map[int64]time.Time)}
}

func (r *OutboxRepo) Create(_ context.Context, event *usecase.OutboxEvent) (*usecase.OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	cp := *event
	cp.ID = r.nextID
	r.events = append(r.events, &cp)

	out := cp
	return &out, nil
}

func (r *OutboxRepo) GetAndMarkAsProcessing(_ context.Context, limit int) ([]*usecase.OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*usecase.OutboxEvent
	for _, ev := range r.events {
		if len(out) >= limit {
			break
		}
		if ev.Status == usecase.Pending {
			ev.Status = usecase.Processing
			r.processing[ev.ID] = time.Now()
			cp := *ev
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *OutboxRepo) MarkAsProcessed(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ev := range r.events {
		if ev.ID == id && ev.Status == usecase.Processing {
			now := time.Now().UTC()
			ev.Status = usecase.Processed
			ev.ProcessedAt = &now
			delete(r.processing, id)
		}
	}
	return nil
}

func (r *OutboxRepo) RequeueStale(_ context.Context, olderThan time.Duration) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	deadline := time.Now().Add(-olderThan)
	for _, ev := range r.events {
		started, ok := r.processing[ev.ID]
		if ev.Status == usecase.Processing && ok && !started.After(deadline) {
			ev.Status = usecase.Pending
			delete(r.processing, ev.ID)
			n++
		}
	}
	return n, nil
}

// Events возвращает копию всех событий.
func (r *OutboxRepo) Events() []usecase.OutboxEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]usecase.OutboxEvent, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, *ev)
	}
	return out
}
