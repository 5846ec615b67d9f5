package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/internal/infrastructure/kafka"
	"github.com/DRSN-tech/dropship-sync/internal/infrastructure/supplier"
	"github.com/DRSN-tech/dropship-sync/internal/provider"
	"github.com/DRSN-tech/dropship-sync/internal/repository/memory"
	"github.com/DRSN-tech/dropship-sync/internal/usecase"
	"github.com/DRSN-tech/dropship-sync/pkg/logger"
	"github.com/DRSN-tech/dropship-sync/pkg/secret"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	admin    = domain.Caller{Subject: "ops", Capabilities: []string{domain.CapabilityAdmin}}
	customer = domain.Caller{Subject: "shopper", Capabilities: []string{"orders.read"}}
)

type testEnv struct {
	svc          *usecase.DropshipService
	configs      *usecase.ConfigUseCase
	catalog      *memory.CatalogRepo
	syncLogs     *memory.SyncLogRepo
	fulfillments *memory.FulfillmentRepo
	outbox       *memory.OutboxRepo
	snapshots    *memory.SnapshotStore
}

type envOption func(*envDeps)

type envDeps struct {
	factory      usecase.SupplierFactory
	catalog      usecase.CatalogRepository
	syncLogs     usecase.SyncLogRepository
	fulfillments usecase.FulfillmentRepository
}

func withFactory(f usecase.SupplierFactory) envOption {
	return func(d *envDeps) { d.factory = f }
}

func withCatalog(c usecase.CatalogRepository) envOption {
	return func(d *envDeps) { d.catalog = c }
}

func withSyncLogs(r usecase.SyncLogRepository) envOption {
	return func(d *envDeps) { d.syncLogs = r }
}

func withFulfillments(r usecase.FulfillmentRepository) envOption {
	return func(d *envDeps) { d.fulfillments = r }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	sealer, err := secret.NewSealer(secret.GenerateKey())
	require.NoError(t, err)

	log := logger.NewNop()
	env := &testEnv{
		catalog:      memory.NewCatalogRepo(),
		syncLogs:     memory.NewSyncLogRepo(),
		fulfillments: memory.NewFulfillmentRepo(),
		outbox:       memory.NewOutboxRepo(),
		snapshots:    memory.NewSnapshotStore(),
	}

	deps := &envDeps{
		factory: supplier.NewFactory(provider.DefaultRegistry(), supplier.Options{
			Timeout:     time.Second,
			RateLimit:   1000,
			RateBurst:   100,
			MaxRetries:  1,
			BackoffBase: time.Millisecond,
			BackoffMax:  time.Millisecond,
		}, nil, log),
		catalog:      env.catalog,
		syncLogs:     env.syncLogs,
		fulfillments: env.fulfillments,
	}
	for _, opt := range opts {
		opt(deps)
	}

	tx := memory.TxManager{}
	audit := usecase.NewAuditWriter(deps.syncLogs, deps.fulfillments, env.outbox, kafka.EventEncoder{}, tx)
	env.configs = usecase.NewConfigUC(memory.NewConfigRepo(), memory.ConfigCache{}, sealer, deps.factory, tx, log)

	env.svc = usecase.NewDropshipService(
		env.configs,
		usecase.NewCatalogImporter(env.configs, deps.factory, deps.catalog, audit, env.snapshots, 4, nil, log),
		usecase.NewInventoryReconciler(env.configs, deps.factory, deps.catalog, audit, 4, nil, log),
		usecase.NewFulfillmentDispatcher(env.configs, deps.factory, audit, nil, log),
		deps.syncLogs,
		deps.fulfillments,
	)
	return env
}

func (env *testEnv) configureMock(t *testing.T, settings map[string]any) {
	t.Helper()

	_, err := env.svc.ConfigureAPI(context.Background(), admin, &usecase.ConfigureReq{
		Provider: "mock",
		APIKey:   "mock-key",
		Settings: settings,
	})
	require.NoError(t, err)
}

func (env *testEnv) assertLogInvariants(t *testing.T) {
	t.Helper()

	logs, err := env.syncLogs.List(context.Background(), usecase.SyncLogFilter{})
	require.NoError(t, err)
	for _, l := range logs {
		assert.LessOrEqual(t, l.Updated+l.Failed, l.Processed, "run %s", l.ID)
		if l.Failed == 0 && l.Outcome != domain.SyncOutcomeError {
			assert.Equal(t, domain.SyncOutcomeSuccess, l.Outcome)
		}
	}
}

type supplierFactoryMock struct {
	mock.Mock
}

func (m *supplierFactoryMock) Supports(p domain.Provider) bool {
	return m.Called(p).Bool(0)
}

func (m *supplierFactoryMock) New(cfg *domain.ProviderConfig) (usecase.SupplierClient, error) {
	args := m.Called(cfg)
	client, _ := args.Get(0).(usecase.SupplierClient)
	return client, args.Error(1)
}

type supplierClientMock struct {
	mock.Mock
}

func (m *supplierClientMock) Provider() domain.Provider {
	return m.Called().Get(0).(domain.Provider)
}

func (m *supplierClientMock) FetchProducts(ctx context.Context, category *domain.Category, limit int) (*usecase.SupplierListing, error) {
	args := m.Called(ctx, category, limit)
	listing, _ := args.Get(0).(*usecase.SupplierListing)
	return listing, args.Error(1)
}

func (m *supplierClientMock) StockLevel(ctx context.Context, externalID string) (int, error) {
	args := m.Called(ctx, externalID)
	return args.Int(0), args.Error(1)
}

func (m *supplierClientMock) CreateOrder(ctx context.Context, order domain.SupplierOrder) (*usecase.OrderPlacement, error) {
	args := m.Called(ctx, order)
	placement, _ := args.Get(0).(*usecase.OrderPlacement)
	return placement, args.Error(1)
}

// mirrorFailingCatalog — каталог в памяти, у которого не пишется зеркало витрины.
type mirrorFailingCatalog struct {
	*memory.CatalogRepo
	mock.Mock
}

func (c *mirrorFailingCatalog) InsertStorefrontMirror(ctx context.Context, product *domain.StorefrontProduct) error {
	if err := c.Called(product.SourceExternalID).Error(0); err != nil {
		return err
	}
	return c.CatalogRepo.InsertStorefrontMirror(ctx, product)
}

// ctxSyncLogs и ctxFulfillments отказывают в записи по отменённому контексту, как pgx.
type ctxSyncLogs struct {
	*memory.SyncLogRepo
}

func (r ctxSyncLogs) Append(ctx context.Context, entry *domain.SyncLogEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.SyncLogRepo.Append(ctx, entry)
}

type ctxFulfillments struct {
	*memory.FulfillmentRepo
}

func (r ctxFulfillments) Insert(ctx context.Context, record *domain.FulfillmentRecord) (*domain.FulfillmentRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.FulfillmentRepo.Insert(ctx, record)
}

// insertFailingCatalog — каталог в памяти, у которого не проходит вставка канонической записи.
type insertFailingCatalog struct {
	*memory.CatalogRepo
	mock.Mock
}

func (c *insertFailingCatalog) Insert(ctx context.Context, entry *domain.CatalogEntry) (*domain.CatalogEntry, error) {
	if err := c.Called(entry.Product.ExternalID).Error(0); err != nil {
		return nil, err
	}
	return c.CatalogRepo.Insert(ctx, entry)
}
