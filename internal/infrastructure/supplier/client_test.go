package supplier

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/internal/provider"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/DRSN-tech/dropship-sync/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFactory() *Factory {
	return NewFactory(provider.DefaultRegistry(), Options{
		Timeout:     200 * time.Millisecond,
		RateLimit:   1000,
		RateBurst:   100,
		MaxRetries:  2,
		BackoffBase: time.Millisecond,
		BackoffMax:  2 * time.Millisecond,
	}, nil, logger.NewNop())
}

func printfulClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	client, err := testFactory().NewClient(&domain.ProviderConfig{
		Provider: domain.ProviderPrintful,
		APIKey:   "secret-key",
		Settings: map[string]any{"base_url": baseURL},
	})
	require.NoError(t, err)
	return client
}

func TestClient_FetchProducts(t *testing.T) {
	var gotQuery, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"code":200,"result":[{"id":1,"title":"Tee","retail_price":"$19.99 USD"}]}`))
	}))
	defer srv.Close()

	client := printfulClient(t, srv.URL)

	apparel := domain.CategoryApparel
	listing, err := client.FetchProducts(context.Background(), &apparel, 0)
	require.NoError(t, err)
	require.Len(t, listing.Products, 1)
	assert.Equal(t, "19.99", listing.Products[0].Price.String())
	assert.NotEmpty(t, listing.Raw)
	assert.Equal(t, "category_id=24&limit=50", gotQuery)
	assert.Equal(t, "Bearer secret-key", gotAuth)

	general := domain.CategoryGeneral
	_, err = client.ListProducts(context.Background(), &general, 5)
	require.NoError(t, err)
	assert.Equal(t, "limit=5", gotQuery, "unmapped category must be omitted")
}

func TestClient_ReadRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"result":{"product":{"is_discontinued":false}}}`))
	}))
	defer srv.Close()

	level, err := printfulClient(t, srv.URL).StockLevel(context.Background(), "71")
	require.NoError(t, err)
	assert.Equal(t, domain.UnlimitedStock, level)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_ReadDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := printfulClient(t, srv.URL).FetchProducts(context.Background(), nil, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, e.ErrTransportFailure)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_GetStockSwallowsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := printfulClient(t, srv.URL)
	assert.Equal(t, 0, client.GetStock(context.Background(), "71"))

	_, err := client.StockLevel(context.Background(), "71")
	assert.ErrorIs(t, err, e.ErrTransportFailure)
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	client := printfulClient(t, srv.URL)
	client.maxRetries = 0

	start := time.Now()
	_, err := client.StockLevel(context.Background(), "71")
	assert.ErrorIs(t, err, e.ErrTransportFailure)
	assert.Less(t, time.Since(start), 900*time.Millisecond)
}

func TestClient_CreateOrderIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	}))
	defer srv.Close()

	_, err := printfulClient(t, srv.URL).CreateOrder(context.Background(), domain.SupplierOrder{OrderID: "o-1", Quantity: 1})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())

	var fe *domain.FulfillmentError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusInternalServerError, fe.Status)
	assert.JSONEq(t, `{"error":"boom"}`, string(fe.Body))
	assert.ErrorIs(t, err, e.ErrTransportFailure)
	assert.NotContains(t, err.Error(), "secret-key")
}

func TestClient_CreateOrderRejectedInBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":400,"error":{"message":"invalid address"}}`))
	}))
	defer srv.Close()

	_, err := printfulClient(t, srv.URL).CreateOrder(context.Background(), domain.SupplierOrder{OrderID: "o-2", Quantity: 1})

	var fe *domain.FulfillmentError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusOK, fe.Status)
	assert.Equal(t, "invalid address", fe.Message)
}

func TestClient_CreateOrderUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	_, err := printfulClient(t, baseURL).CreateOrder(context.Background(), domain.SupplierOrder{OrderID: "o-4", Quantity: 1})
	require.ErrorIs(t, err, e.ErrTransportFailure)

	var rejection *domain.FulfillmentError
	require.True(t, errors.As(err, &rejection))
	assert.Zero(t, rejection.Status)
	assert.NotContains(t, rejection.Message, e.ErrTransportFailure.Error())
	assert.Equal(t, 1, strings.Count(err.Error(), e.ErrTransportFailure.Error()), err.Error())
}

func TestClient_CreateOrderSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)
		_, _ = w.Write([]byte(`{"code":200,"result":{"id":99,"shipments":[{"tracking_number":"TN-9"}]}}`))
	}))
	defer srv.Close()

	placement, err := printfulClient(t, srv.URL).CreateOrder(context.Background(), domain.SupplierOrder{OrderID: "o-3", Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, "99", placement.Result.ExternalOrderID)
	require.NotNil(t, placement.Result.TrackingNumber)
	assert.Equal(t, "TN-9", *placement.Result.TrackingNumber)
}

func TestFactory_MockProviderWorksOffline(t *testing.T) {
	f := testFactory()
	assert.True(t, f.Supports(domain.ProviderMock))
	assert.False(t, f.Supports("acme"))

	client, err := f.New(&domain.ProviderConfig{Provider: domain.ProviderMock, APIKey: "k"})
	require.NoError(t, err)

	listing, err := client.FetchProducts(context.Background(), nil, 20)
	require.NoError(t, err)
	assert.Len(t, listing.Products, 20)

	_, err = f.New(&domain.ProviderConfig{Provider: "acme"})
	assert.ErrorIs(t, err, e.ErrUnknownProvider)
}
