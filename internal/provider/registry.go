package provider

import (
	"fmt"
	"sort"
	"sync"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
)

// Registry хранит адаптеры по идентификатору поставщика.
// Новый поставщик добавляется регистрацией ещё одной реализации Adapter.
type Registry struct {
	mu       sync.RWMutex
	adapters map[domain.Provider]Adapter
}

func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[domain.Provider]Adapter, len(adapters))}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// DefaultRegistry содержит всех поддерживаемых поставщиков и синтетический mock.
func DefaultRegistry() *Registry {
	return NewRegistry(
		NewPrintfulAdapter(),
		NewPrintifyAdapter(),
		NewCJDropshippingAdapter(),
		NewMockAdapter(),
	)
}

// Register добавляет или заменяет адаптер.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.Provider()] = a
}

// Get возвращает адаптер поставщика или e.ErrUnknownProvider.
func (r *Registry) Get(p domain.Provider) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.adapters[p]
	if !ok {
		return nil, fmt.Errorf("%w: %q", e.ErrUnknownProvider, p)
	}
	return a, nil
}

// Has сообщает, зарегистрирован ли поставщик.
func (r *Registry) Has(p domain.Provider) bool {
	_, err := r.Get(p)
	return err == nil
}

// Providers возвращает отсортированный список зарегистрированных поставщиков.
func (r *Registry) Providers() []domain.Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Provider, 0, len(r.adapters))
	for p := range r.adapters {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
