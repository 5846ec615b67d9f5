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

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// ConfigUseCase ведёт журнал конфигураций поставщиков с единственной активной записью.
type ConfigUseCase struct {
	repo     ConfigRepository
	cache    ConfigCache
	sealer   SecretSealer
	supplier SupplierFactory
	tx       TxManager
	logger   logger.Logger
}

func NewConfigUC(
	repo ConfigRepository,
	cache ConfigCache,
	sealer SecretSealer,
	supplier SupplierFactory,
	tx TxManager,
	logger logger.Logger,
) *ConfigUseCase {
	return &ConfigUseCase{
		repo:     repo,
		cache:    cache,
		sealer:   sealer,
		supplier: supplier,
		tx:       tx,
		logger:   logger,
	}
}

// Configure добавляет новую запись и делает её активной; прежняя активная запись вытесняется, но остаётся в журнале.
func (c *ConfigUseCase) Configure(ctx context.Context, req *ConfigureReq) (*ConfigView, error) {
	const op = "ConfigUseCase.Configure"

	provider, err := c.validate(req)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	cfg := &domain.ProviderConfig{
		ID:        uuid.New(),
		Provider:  provider,
		Settings:  req.Settings,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	if cfg.Settings == nil {
		cfg.Settings = map[string]any{}
	}

	if cfg.APIKey, err = c.sealer.Seal(req.APIKey); err != nil {
		return nil, e.Wrap(op, err)
	}
	if req.APISecret != nil && *req.APISecret != "" {
		sealed, err := c.sealer.Seal(*req.APISecret)
		if err != nil {
			return nil, e.Wrap(op, err)
		}
		cfg.APISecret = &sealed
	}

	var saved *domain.ProviderConfig
	err = c.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := c.repo.Supersede(ctx, cfg.CreatedAt); err != nil {
			return err
		}
		saved, err = c.repo.Insert(ctx, cfg)
		return err
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if err := c.cache.InvalidateActive(ctx); err != nil {
		c.logger.Warnf("Failed to invalidate active config cache: %v", e.Wrap(op, err))
	}

	c.logger.Infof("Provider configuration activated. provider: %s, config_id: %s", saved.Provider, saved.ID)
	return NewConfigView(saved), nil
}

// Active возвращает активную конфигурацию с расшифрованными учётными данными.
// Только для внутреннего использования: наружу конфигурация отдаётся через ConfigView.
func (c *ConfigUseCase) Active(ctx context.Context) (*domain.ProviderConfig, error) {
	const op = "ConfigUseCase.Active"

	sealed, err := c.cache.GetActive(ctx)
	if err != nil {
		c.logger.Warnf("Active config cache read failed: %v", e.Wrap(op, err))
	}

	if sealed == nil {
		sealed, err = c.repo.Active(ctx)
		if errors.Is(err, e.ErrNotFound) {
			return nil, e.Fatal(e.ErrConfigurationMissing, err)
		}
		if err != nil {
			return nil, e.Wrap(op, err)
		}

		if err := c.cache.SetActive(ctx, sealed); err != nil {
			c.logger.Warnf("Failed to cache active config: %v", e.Wrap(op, err))
		}
	}

	return c.open(sealed)
}

// History возвращает журнал от новых записей к старым.
func (c *ConfigUseCase) History(ctx context.Context, req *ConfigHistoryReq) ([]ConfigView, error) {
	const op = "ConfigUseCase.History"

	limit := req.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	limit = min(limit, maxHistoryLimit)

	configs, err := c.repo.History(ctx, req.Provider, limit)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	views := make([]ConfigView, 0, len(configs))
	for i := range configs {
		views = append(views, *NewConfigView(&configs[i]))
	}
	return views, nil
}

func (c *ConfigUseCase) open(sealed *domain.ProviderConfig) (*domain.ProviderConfig, error) {
	const op = "ConfigUseCase.open"

	plain := *sealed
	key, err := c.sealer.Open(sealed.APIKey)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	plain.APIKey = key

	if sealed.APISecret != nil {
		s, err := c.sealer.Open(*sealed.APISecret)
		if err != nil {
			return nil, e.Wrap(op, err)
		}
		plain.APISecret = &s
	}
	return &plain, nil
}

func (c *ConfigUseCase) validate(req *ConfigureReq) (domain.Provider, error) {
	provider := domain.NormalizeProvider(req.Provider)
	if provider == "" {
		return "", e.Invalid("provider is required")
	}
	if !c.supplier.Supports(provider) {
		return "", e.Invalid("%s: %s", e.ErrUnknownProvider, provider)
	}
	if strings.TrimSpace(req.APIKey) == "" {
		return "", e.Invalid("api_key is required")
	}
	return provider, nil
}
