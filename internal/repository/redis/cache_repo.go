package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/DRSN-tech/dropship-sync/internal/cfg"
	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/internal/repository/redis/converter"
	"github.com/DRSN-tech/dropship-sync/pkg/clients"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/DRSN-tech/dropship-sync/pkg/logger"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

const activeConfigKey = "dropship:config:active"

// CacheRepo кэширует активную конфигурацию поставщика.
// Промах и битое значение не считаются ошибкой: вызывающий идёт в базу.
type CacheRepo struct {
	client *clients.RedisClient
	conv   converter.ProviderConfigConverter
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewCacheRepo(client *clients.RedisClient, cfg *cfg.RedisCfg, logger logger.Logger) *CacheRepo {
	return &CacheRepo{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

func (c *CacheRepo) GetActive(ctx context.Context) (*domain.ProviderConfig, error) {
	data, err := c.client.Client.Get(ctx, activeConfigKey).Bytes()
	if errors.Is(err, r.Nil) {
		return nil, nil // cache miss
	}
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	var model converter.ProviderConfigRedisModel
	if err := json.Unmarshal(data, &model); err != nil {
		c.logger.Warnf("Redis unmarshal failed, dropping cached config: %v", e.Wrap(whereami.WhereAmI(), err))
		c.drop(ctx)
		return nil, nil
	}

	cfg, err := c.conv.ToDomain(&model)
	if err != nil {
		c.logger.Warnf("Cached config is malformed: %v", e.Wrap(whereami.WhereAmI(), err))
		c.drop(ctx)
		return nil, nil
	}

	return cfg, nil
}

func (c *CacheRepo) SetActive(ctx context.Context, cfg *domain.ProviderConfig) error {
	data, err := json.Marshal(c.conv.ToRedisModel(cfg))
	if err != nil {
		return fmt.Errorf("%s: marshal config: %w", whereami.WhereAmI(), err)
	}

	if err := c.client.Client.Set(ctx, activeConfigKey, data, c.cfg.ConfigTTL).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	return nil
}

func (c *CacheRepo) InvalidateActive(ctx context.Context) error {
	if err := c.client.Client.Del(ctx, activeConfigKey).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	return nil
}

func (c *CacheRepo) drop(ctx context.Context) {
	if err := c.client.Client.Del(context.WithoutCancel(ctx), activeConfigKey).Err(); err != nil {
		c.logger.Warnf("Redis del failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}
}
