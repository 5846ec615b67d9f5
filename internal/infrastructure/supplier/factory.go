package supplier

import (
	"net/http"
	"sync"
	"time"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/internal/provider"
	"github.com/DRSN-tech/dropship-sync/internal/usecase"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/DRSN-tech/dropship-sync/pkg/logger"
	"golang.org/x/time/rate"
)

// Options задаёт общие для всех клиентов параметры транспорта.
type Options struct {
	Timeout     time.Duration
	RateLimit   float64 // запросов в секунду на поставщика
	RateBurst   int
	MaxRetries  int
	BackoffBase time.Duration
	BackoffMax  time.Duration
}

// Factory строит клиентов поставщиков. Лимитер частоты общий для всех клиентов одного поставщика.
type Factory struct {
	registry *provider.Registry
	opts     Options
	observer RequestObserver
	logger   logger.Logger

	mu       sync.Mutex
	limiters map[domain.Provider]*rate.Limiter
}

var _ usecase.SupplierFactory = (*Factory)(nil)

func NewFactory(registry *provider.Registry, opts Options, observer RequestObserver, logger logger.Logger) *Factory {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = 1
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = 200 * time.Millisecond
	}
	if opts.BackoffMax <= 0 {
		opts.BackoffMax = 5 * time.Second
	}
	if observer == nil {
		observer = nopObserver{}
	}

	return &Factory{
		registry: registry,
		opts:     opts,
		observer: observer,
		logger:   logger,
		limiters: make(map[domain.Provider]*rate.Limiter),
	}
}

func (f *Factory) Supports(p domain.Provider) bool {
	return f.registry.Has(p)
}

// New привязывает клиента к адаптеру поставщика и расшифрованным учётным данным.
// settings.base_url переопределяет адрес API по умолчанию.
func (f *Factory) New(cfg *domain.ProviderConfig) (usecase.SupplierClient, error) {
	client, err := f.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (f *Factory) NewClient(cfg *domain.ProviderConfig) (*Client, error) {
	const op = "Factory.NewClient"

	adapter, err := f.registry.Get(cfg.Provider)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	creds := provider.Credentials{APIKey: cfg.APIKey, Settings: cfg.Settings}
	if cfg.APISecret != nil {
		creds.APISecret = *cfg.APISecret
	}

	baseURL := adapter.DefaultBaseURL()
	if override := creds.Setting("base_url"); override != "" {
		baseURL = override
	}

	httpClient := &http.Client{}
	if offline, ok := adapter.(provider.Offline); ok {
		httpClient.Transport = offline.Transport(creds)
	}

	return &Client{
		adapter:     adapter,
		creds:       creds,
		baseURL:     baseURL,
		http:        httpClient,
		limiter:     f.limiter(cfg.Provider),
		timeout:     f.opts.Timeout,
		maxRetries:  f.opts.MaxRetries,
		backoffBase: f.opts.BackoffBase,
		backoffMax:  f.opts.BackoffMax,
		observer:    f.observer,
		logger:      f.logger.With("provider", cfg.Provider.String()),
	}, nil
}

func (f *Factory) limiter(p domain.Provider) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()

	l, ok := f.limiters[p]
	if !ok {
		l = rate.NewLimiter(rate.Limit(f.opts.RateLimit), f.opts.RateBurst)
		f.limiters[p] = l
	}
	return l
}

type nopObserver struct{}

func (nopObserver) ObserveSupplierRequest(domain.Provider, string, int, time.Duration) {}
