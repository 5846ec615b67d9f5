package usecase_test

import (
	"context"
	"testing"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/internal/usecase"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/DRSN-tech/dropship-sync/pkg/secret"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureAPI_SecondConfigSupersedesFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.svc.ConfigureAPI(ctx, admin, &usecase.ConfigureReq{Provider: "mock", APIKey: "key-one"})
	require.NoError(t, err)
	apiSecret := "s3cr3t"
	second, err := env.svc.ConfigureAPI(ctx, admin, &usecase.ConfigureReq{
		Provider:  " MOCK ",
		APIKey:    "key-two",
		APISecret: &apiSecret,
		Settings:  map[string]any{"region": "eu", "webhook_token": "abc"},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ProviderMock, second.Provider)
	assert.Equal(t, secret.Mask, second.APIKey)
	require.NotNil(t, second.APISecret)
	assert.Equal(t, secret.Mask, *second.APISecret)
	assert.Equal(t, "eu", second.Settings["region"])
	assert.Equal(t, secret.Mask, second.Settings["webhook_token"])

	active, err := env.configs.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)
	assert.Equal(t, "key-two", active.APIKey)
	require.NotNil(t, active.APISecret)
	assert.Equal(t, "s3cr3t", *active.APISecret)

	history, err := env.svc.ConfigHistory(ctx, admin, &usecase.ConfigHistoryReq{})
	require.NoError(t, err)
	require.Len(t, history, 2)

	assert.Equal(t, second.ID, history[0].ID)
	assert.True(t, history[0].IsActive)
	assert.Nil(t, history[0].SupersededAt)

	assert.Equal(t, first.ID, history[1].ID)
	assert.False(t, history[1].IsActive)
	assert.NotNil(t, history[1].SupersededAt)
	for _, view := range history {
		assert.Equal(t, secret.Mask, view.APIKey)
	}
}

func TestConfigureAPI_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  usecase.ConfigureReq
	}{
		{name: "empty provider", req: usecase.ConfigureReq{APIKey: "k"}},
		{name: "unknown provider", req: usecase.ConfigureReq{Provider: "aliexpress", APIKey: "k"}},
		{name: "empty api key", req: usecase.ConfigureReq{Provider: "printful", APIKey: "  "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			_, err := env.svc.ConfigureAPI(context.Background(), admin, &tt.req)
			require.ErrorIs(t, err, e.ErrInvalidRequest)

			history, err := env.svc.ConfigHistory(context.Background(), admin, &usecase.ConfigHistoryReq{})
			require.NoError(t, err)
			assert.Empty(t, history)
		})
	}
}

func TestConfigHistory_FilterByProvider(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.ConfigureAPI(ctx, admin, &usecase.ConfigureReq{Provider: "printful", APIKey: "pf"})
	require.NoError(t, err)
	_, err = env.svc.ConfigureAPI(ctx, admin, &usecase.ConfigureReq{Provider: "mock", APIKey: "mk"})
	require.NoError(t, err)

	printful := domain.ProviderPrintful
	history, err := env.svc.ConfigHistory(ctx, admin, &usecase.ConfigHistoryReq{Provider: &printful})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.ProviderPrintful, history[0].Provider)
	assert.False(t, history[0].IsActive)
}

func TestActive_NoConfiguration(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.configs.Active(context.Background())
	require.ErrorIs(t, err, e.ErrConfigurationMissing)

	var fatal *e.FatalError
	assert.ErrorAs(t, err, &fatal)
}

func TestService_RejectsCallerWithoutAdminCapability(t *testing.T) {
	factory := &supplierFactoryMock{}
	env := newTestEnv(t, withFactory(factory))
	ctx := context.Background()

	calls := map[string]func() error{
		"configure": func() error {
			_, err := env.svc.ConfigureAPI(ctx, customer, &usecase.ConfigureReq{Provider: "mock", APIKey: "k"})
			return err
		},
		"history": func() error {
			_, err := env.svc.ConfigHistory(ctx, customer, &usecase.ConfigHistoryReq{})
			return err
		},
		"import": func() error {
			_, err := env.svc.ImportProducts(ctx, customer, &usecase.ImportProductsReq{Limit: 5})
			return err
		},
		"sync": func() error {
			_, err := env.svc.SyncInventory(ctx, customer)
			return err
		},
		"fulfill": func() error {
			_, err := env.svc.FulfillOrder(ctx, customer, &usecase.FulfillOrderReq{OrderID: "o-1"})
			return err
		},
		"fulfillment lookup": func() error {
			_, err := env.svc.FulfillmentByOrder(ctx, customer, "o-1")
			return err
		},
		"sync logs": func() error {
			_, err := env.svc.SyncLogs(ctx, customer, usecase.SyncLogFilter{})
			return err
		},
		"anonymous": func() error {
			_, err := env.svc.ImportProducts(ctx, domain.Caller{}, &usecase.ImportProductsReq{})
			return err
		},
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			err := call()
			require.ErrorIs(t, err, e.ErrUnauthorized)
			assert.NotErrorIs(t, err, e.ErrInvalidRequest)
		})
	}

	factory.AssertNotCalled(t, "New")
	factory.AssertNotCalled(t, "Supports")
	logs, err := env.syncLogs.List(ctx, usecase.SyncLogFilter{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, logs)
	assert.Empty(t, env.outbox.Events())
}
