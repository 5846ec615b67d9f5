package memory

import (
	"context"
	"sync"
	"time"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
)

// TxManager выполняет fn без транзакции: хранилища в памяти пишут сразу.
type TxManager struct{}

func (TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// RunLock работает только в пределах одного процесса.
type RunLock struct {
	mu    sync.Mutex
	held  map[string]time.Time
	nowFn func() time.Time
}

func NewRunLock() *RunLock {
	return &RunLock{held: make(map[string]time.Time), nowFn: time.Now}
}

func (l *RunLock) Acquire(_ context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFn()
	if until, ok := l.held[key]; ok && now.Before(until) {
		return nil, e.ErrRunInProgress
	}
	until := now.Add(ttl)
	l.held[key] = until

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.held[key].Equal(until) {
			delete(l.held, key)
		}
		return nil
	}, nil
}

type SnapshotStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{objects: make(map[string][]byte)}
}

func (s *SnapshotStore) Put(_ context.Context, snapshot *domain.Snapshot) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.objects[snapshot.ObjectKey] = append([]byte(nil), snapshot.Bytes...)
	return snapshot.ObjectKey, nil
}

func (s *SnapshotStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.objects[key]
	return b, ok
}
