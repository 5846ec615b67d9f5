// Package memory содержит хранилища в памяти процесса для STORAGE_DRIVER=memory и тестов.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
)

type ConfigRepo struct {
	mu      sync.RWMutex
	configs []domain.ProviderConfig // в порядке вставки
}

func NewConfigRepo() *ConfigRepo {
	return &ConfigRepo{}
}

func (r *ConfigRepo) Active(_ context.Context) (*domain.ProviderConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := len(r.configs) - 1; i >= 0; i-- {
		if r.configs[i].IsActive {
			return cloneConfig(r.configs[i]), nil
		}
	}
	return nil, e.ErrNotFound
}

func (r *ConfigRepo) Supersede(_ context.Context, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.configs {
		if r.configs[i].IsActive {
			r.configs[i].IsActive = false
			r.configs[i].SupersededAt = &at
		}
	}
	return nil
}

func (r *ConfigRepo) Insert(_ context.Context, cfg *domain.ProviderConfig) (*domain.ProviderConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.configs {
		if existing.ID == cfg.ID {
			return nil, e.ErrAlreadyExists
		}
		if cfg.IsActive && existing.IsActive {
			return nil, e.Wrap("ConfigRepo.Insert", e.ErrAlreadyExists)
		}
	}
	r.configs = append(r.configs, *cloneConfig(*cfg))
	return cloneConfig(*cfg), nil
}

func (r *ConfigRepo) History(_ context.Context, provider *domain.Provider, limit int) ([]domain.ProviderConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.ProviderConfig, 0, min(limit, len(r.configs)))
	for i := len(r.configs) - 1; i >= 0 && len(out) < limit; i-- {
		if provider != nil && r.configs[i].Provider != *provider {
			continue
		}
		out = append(out, *cloneConfig(r.configs[i]))
	}
	return out, nil
}

func cloneConfig(cfg domain.ProviderConfig) *domain.ProviderConfig {
	cfg.Settings = maps.Clone(cfg.Settings)
	if cfg.APISecret != nil {
		s := *cfg.APISecret
		cfg.APISecret = &s
	}
	if cfg.SupersededAt != nil {
		t := *cfg.SupersededAt
		cfg.SupersededAt = &t
	}
	return &cfg
}

// ConfigCache в памяти не нужен: репозиторий и так в памяти. Всегда промах.
type ConfigCache struct{}

func (ConfigCache) GetActive(context.Context) (*domain.ProviderConfig, error) { return nil, nil }

func (ConfigCache) SetActive(context.Context, *domain.ProviderConfig) error { return nil }

func (ConfigCache) InvalidateActive(context.Context) error { return nil }
