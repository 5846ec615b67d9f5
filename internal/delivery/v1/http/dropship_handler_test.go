package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	v1Http "github.com/DRSN-tech/dropship-sync/internal/delivery/v1/http"
	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/internal/repository/memory"
	"github.com/DRSN-tech/dropship-sync/internal/usecase"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/DRSN-tech/dropship-sync/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "test-secret"
	testIssuer = "marketplace-auth"
)

type dropshipUCMock struct {
	mock.Mock
}

func (m *dropshipUCMock) ConfigureAPI(ctx context.Context, caller domain.Caller, req *usecase.ConfigureReq) (*usecase.ConfigView, error) {
	args := m.Called(ctx, caller, req)
	view, _ := args.Get(0).(*usecase.ConfigView)
	return view, args.Error(1)
}

func (m *dropshipUCMock) ConfigHistory(ctx context.Context, caller domain.Caller, req *usecase.ConfigHistoryReq) ([]usecase.ConfigView, error) {
	args := m.Called(ctx, caller, req)
	views, _ := args.Get(0).([]usecase.ConfigView)
	return views, args.Error(1)
}

func (m *dropshipUCMock) ImportProducts(ctx context.Context, caller domain.Caller, req *usecase.ImportProductsReq) (*usecase.ImportProductsRes, error) {
	args := m.Called(ctx, caller, req)
	res, _ := args.Get(0).(*usecase.ImportProductsRes)
	return res, args.Error(1)
}

func (m *dropshipUCMock) SyncInventory(ctx context.Context, caller domain.Caller) (*usecase.SyncInventoryRes, error) {
	args := m.Called(ctx, caller)
	res, _ := args.Get(0).(*usecase.SyncInventoryRes)
	return res, args.Error(1)
}

func (m *dropshipUCMock) FulfillOrder(ctx context.Context, caller domain.Caller, req *usecase.FulfillOrderReq) (*usecase.FulfillOrderRes, error) {
	args := m.Called(ctx, caller, req)
	res, _ := args.Get(0).(*usecase.FulfillOrderRes)
	return res, args.Error(1)
}

func (m *dropshipUCMock) FulfillmentByOrder(ctx context.Context, caller domain.Caller, orderID string) (*domain.FulfillmentRecord, error) {
	args := m.Called(ctx, caller, orderID)
	rec, _ := args.Get(0).(*domain.FulfillmentRecord)
	return rec, args.Error(1)
}

func (m *dropshipUCMock) SyncLogs(ctx context.Context, caller domain.Caller, filter usecase.SyncLogFilter) ([]domain.SyncLogEntry, error) {
	args := m.Called(ctx, caller, filter)
	entries, _ := args.Get(0).([]domain.SyncLogEntry)
	return entries, args.Error(1)
}

type recorderStub struct {
	routes []string
}

func (r *recorderStub) RecordRequest(method, route string, status int, _ time.Duration) {
	r.routes = append(r.routes, fmt.Sprintf("%s %s %d", method, route, status))
}

type harness struct {
	uc       *dropshipUCMock
	lock     *memory.RunLock
	recorder *recorderStub
	handler  http.Handler
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{uc: &dropshipUCMock{}, lock: memory.NewRunLock(), recorder: &recorderStub{}}
	log := logger.NewNop()

	r := chi.NewRouter()
	v1Http.NewRouter(r, v1Http.NewAuthenticator(testSecret, testIssuer, log), h.recorder, log).
		Init(h.uc, h.lock, time.Minute, http.NotFoundHandler())
	h.handler = r

	t.Cleanup(func() { h.uc.AssertExpectations(t) })
	return h
}

func token(t *testing.T, secret string, capabilities ...string) string {
	t.Helper()

	claims := v1Http.Claims{
		Capabilities: capabilities,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-42",
			Issuer:    testIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func adminToken(t *testing.T) string {
	return token(t, testSecret, domain.CapabilityAdmin)
}

func (h *harness) do(t *testing.T, method, path, bearer string, body any) (*httptest.ResponseRecorder, v1Http.Envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	var env v1Http.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func isAdmin(c domain.Caller) bool { return c.IsAdmin() }

func TestAuth_RejectsMissingAndForgedTokens(t *testing.T) {
	h := newHarness(t)

	rec, env := h.do(t, http.MethodPost, "/api/v1/dropship/sync", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, http.StatusUnauthorized, env.Error.Code)

	rec, _ = h.do(t, http.MethodPost, "/api/v1/dropship/sync", token(t, "other-secret", domain.CapabilityAdmin), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	h.uc.AssertNotCalled(t, "SyncInventory", mock.Anything, mock.Anything)
}

func TestAuth_CallerWithoutCapabilityGets403(t *testing.T) {
	h := newHarness(t)
	h.uc.On("SyncInventory", mock.Anything, mock.MatchedBy(func(c domain.Caller) bool { return !c.IsAdmin() && c.Subject == "user-42" })).
		Return(nil, e.Fatal(e.ErrUnauthorized, fmt.Errorf("capability required"))).Once()

	rec, env := h.do(t, http.MethodPost, "/api/v1/dropship/sync", token(t, testSecret, "orders.read"), nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, e.ErrUnauthorized.Error(), env.Error.Message)
}

func TestImport_Success(t *testing.T) {
	h := newHarness(t)
	apparel := domain.CategoryApparel
	h.uc.On("ImportProducts", mock.Anything, mock.MatchedBy(isAdmin), &usecase.ImportProductsReq{Category: &apparel, Limit: 5}).
		Return(&usecase.ImportProductsRes{
			Imported: 1,
			Total:    1,
			Products: []domain.CatalogEntry{*domain.NewCatalogEntry(domain.SupplierProduct{Provider: domain.ProviderMock, ExternalID: "MOCK-0001", Title: "Tee"})},
			Log:      &domain.SyncLogEntry{ID: uuid.New(), Operation: domain.SyncOperationImport, Outcome: domain.SyncOutcomeSuccess, Processed: 1, Updated: 1},
		}, nil).Once()

	rec, env := h.do(t, http.MethodPost, "/api/v1/dropship/import", adminToken(t), map[string]any{"category": "apparel", "limit": 5})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, env.Success)
	data := env.Data.(map[string]any)
	assert.EqualValues(t, 1, data["imported"])
	products := data["products"].([]any)
	require.Len(t, products, 1)
	assert.Equal(t, "MOCK-0001", products[0].(map[string]any)["external_id"])
	assert.Equal(t, []any{}, data["log"].(map[string]any)["errors"])

	assert.Contains(t, h.recorder.routes, "POST /api/v1/dropship/import 200")
}

func TestImport_EmptyBodyUsesDefaults(t *testing.T) {
	h := newHarness(t)
	h.uc.On("ImportProducts", mock.Anything, mock.Anything, &usecase.ImportProductsReq{}).
		Return(&usecase.ImportProductsRes{}, nil).Once()

	rec, _ := h.do(t, http.MethodPost, "/api/v1/dropship/import", adminToken(t), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestImport_UnknownCategoryIsRejected(t *testing.T) {
	h := newHarness(t)

	rec, env := h.do(t, http.MethodPost, "/api/v1/dropship/import", adminToken(t), map[string]any{"category": "weapons"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Error.Message, "unknown category")
	h.uc.AssertNotCalled(t, "ImportProducts", mock.Anything, mock.Anything, mock.Anything)
}

func TestImport_RunInProgress(t *testing.T) {
	h := newHarness(t)
	release, err := h.lock.Acquire(context.Background(), string(domain.SyncOperationImport), time.Minute)
	require.NoError(t, err)
	defer release(context.Background())

	rec, env := h.do(t, http.MethodPost, "/api/v1/dropship/import", adminToken(t), nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, e.ErrRunInProgress.Error(), env.Error.Message)
	h.uc.AssertNotCalled(t, "ImportProducts", mock.Anything, mock.Anything, mock.Anything)
}

func TestSync_LockReleasedAfterRun(t *testing.T) {
	h := newHarness(t)
	h.uc.On("SyncInventory", mock.Anything, mock.Anything).
		Return(&usecase.SyncInventoryRes{Processed: 3, Updated: 2, Failed: 1}, nil).Twice()

	for range 2 {
		rec, env := h.do(t, http.MethodPost, "/api/v1/dropship/sync", adminToken(t), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.EqualValues(t, 1, env.Data.(map[string]any)["failed"])
	}
}

func TestErrors_StatusMapping(t *testing.T) {
	h := newHarness(t)
	h.uc.On("SyncInventory", mock.Anything, mock.Anything).
		Return(nil, e.Fatal(e.ErrConfigurationMissing, e.ErrNotFound)).Once()

	rec, _ := h.do(t, http.MethodPost, "/api/v1/dropship/sync", adminToken(t), nil)
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
}

func TestFulfill_AlreadySentIsConflict(t *testing.T) {
	h := newHarness(t)
	h.uc.On("FulfillmentByOrder", mock.Anything, mock.Anything, "ORD-1").
		Return(&domain.FulfillmentRecord{OrderID: "ORD-1", Status: domain.FulfillmentStatusSent}, nil).Once()

	rec, env := h.do(t, http.MethodPost, "/api/v1/dropship/fulfill", adminToken(t), fulfillBody("ORD-1"))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, e.ErrOrderAlreadyFulfilled.Error(), env.Error.Message)
	h.uc.AssertNotCalled(t, "FulfillOrder", mock.Anything, mock.Anything, mock.Anything)
}

func TestFulfill_RetryAfterFailedAttempt(t *testing.T) {
	h := newHarness(t)
	tracking := "TRK123"
	h.uc.On("FulfillmentByOrder", mock.Anything, mock.Anything, "ORD-2").
		Return(&domain.FulfillmentRecord{OrderID: "ORD-2", Status: domain.FulfillmentStatusFailed}, nil).Once()
	h.uc.On("FulfillOrder", mock.Anything, mock.Anything, mock.MatchedBy(func(req *usecase.FulfillOrderReq) bool {
		return req.OrderID == "ORD-2" && req.Quantity == 2 && req.ShippingAddress.Country == "US"
	})).Return(&usecase.FulfillOrderRes{Record: &domain.FulfillmentRecord{
		ID:              uuid.New(),
		OrderID:         "ORD-2",
		ExternalOrderID: "MO-1",
		Provider:        domain.ProviderMock,
		Status:          domain.FulfillmentStatusSent,
		TrackingNumber:  &tracking,
	}}, nil).Once()

	rec, env := h.do(t, http.MethodPost, "/api/v1/dropship/fulfill", adminToken(t), fulfillBody("ORD-2"))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	data := env.Data.(map[string]any)
	assert.Equal(t, "MO-1", data["external_order_id"])
	assert.Equal(t, "TRK123", data["tracking_number"])
}

func TestFulfill_SupplierRejectionIs502(t *testing.T) {
	h := newHarness(t)
	h.uc.On("FulfillmentByOrder", mock.Anything, mock.Anything, "ORD-3").
		Return(nil, e.Wrap("FulfillmentRepo.FindByOrderID", e.ErrNotFound)).Once()
	h.uc.On("FulfillOrder", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &domain.FulfillmentError{Provider: domain.ProviderMock, Status: 502, Message: "warehouse rejected the order"}).Once()

	rec, env := h.do(t, http.MethodPost, "/api/v1/dropship/fulfill", adminToken(t), fulfillBody("ORD-3"))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "supplier mock rejected the order with status 502", env.Error.Message)
}

func TestImport_TransportFailureHidesInternals(t *testing.T) {
	h := newHarness(t)
	chain := e.Wrap("CatalogImporter.Import", e.Wrap("Client.FetchProducts",
		fmt.Errorf("%w: status 503: <html>upstream maintenance page</html>", e.ErrTransportFailure)))
	h.uc.On("ImportProducts", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, e.Fatal(e.ErrTransportFailure, chain)).Once()

	rec, env := h.do(t, http.MethodPost, "/api/v1/dropship/import", adminToken(t), `{"limit":5}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, e.ErrTransportFailure.Error(), env.Error.Message)
	assert.NotContains(t, rec.Body.String(), "CatalogImporter")
	assert.NotContains(t, rec.Body.String(), "maintenance")
}

func TestFulfillmentByOrder_NotFound(t *testing.T) {
	h := newHarness(t)
	h.uc.On("FulfillmentByOrder", mock.Anything, mock.Anything, "ORD-404").Return(nil, e.ErrNotFound).Once()

	rec, _ := h.do(t, http.MethodGet, "/api/v1/dropship/fulfillments/ORD-404", adminToken(t), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConfigure_MasksCredentials(t *testing.T) {
	h := newHarness(t)
	masked := "***"
	h.uc.On("ConfigureAPI", mock.Anything, mock.Anything, mock.MatchedBy(func(req *usecase.ConfigureReq) bool {
		return req.Provider == "printful" && req.APIKey == "pk_live"
	})).Return(&usecase.ConfigView{
		ID:        uuid.New(),
		Provider:  domain.ProviderPrintful,
		APIKey:    masked,
		APISecret: &masked,
		IsActive:  true,
	}, nil).Once()

	rec, env := h.do(t, http.MethodPost, "/api/v1/dropship/config", adminToken(t), map[string]any{
		"provider": "printful", "api_key": "pk_live", "api_secret": "s3cr3t",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "pk_live")
	assert.NotContains(t, rec.Body.String(), "s3cr3t")
	assert.Equal(t, "***", env.Data.(map[string]any)["api_key"])
}

func TestConfigure_MalformedBody(t *testing.T) {
	h := newHarness(t)

	rec, _ := h.do(t, http.MethodPost, "/api/v1/dropship/config", adminToken(t), `{"provider":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = h.do(t, http.MethodPost, "/api/v1/dropship/config", adminToken(t), `{"provider":"mock","unexpected":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConfigHistory_ProviderFilter(t *testing.T) {
	h := newHarness(t)
	printify := domain.ProviderPrintify
	h.uc.On("ConfigHistory", mock.Anything, mock.Anything, &usecase.ConfigHistoryReq{Provider: &printify, Limit: 3}).
		Return([]usecase.ConfigView{{ID: uuid.New(), Provider: printify, APIKey: "***"}}, nil).Once()

	rec, env := h.do(t, http.MethodGet, "/api/v1/dropship/config/history?provider=Printify&limit=3", adminToken(t), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, env.Data.([]any), 1)
}

func TestSyncLogs_Filter(t *testing.T) {
	h := newHarness(t)
	op := domain.SyncOperationSync
	h.uc.On("SyncLogs", mock.Anything, mock.Anything, usecase.SyncLogFilter{Operation: &op, Limit: 10}).
		Return([]domain.SyncLogEntry{{ID: uuid.New(), Operation: op, Outcome: domain.SyncOutcomePartial}}, nil).Once()

	rec, env := h.do(t, http.MethodGet, "/api/v1/dropship/sync-logs?operation=sync&limit=10", adminToken(t), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, env.Data.([]any), 1)

	rec, _ = h.do(t, http.MethodGet, "/api/v1/dropship/sync-logs?operation=delete", adminToken(t), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = h.do(t, http.MethodGet, "/api/v1/dropship/sync-logs?limit=ten", adminToken(t), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestActions_Dispatch(t *testing.T) {
	h := newHarness(t)
	h.uc.On("ImportProducts", mock.Anything, mock.Anything, &usecase.ImportProductsReq{Limit: 20}).
		Return(&usecase.ImportProductsRes{Imported: 20, Total: 20}, nil).Once()

	rec, env := h.do(t, http.MethodPost, "/api/v1/dropship/actions", adminToken(t), map[string]any{
		"action":  "import",
		"payload": map[string]any{"limit": 20},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 20, env.Data.(map[string]any)["total"])

	rec, env = h.do(t, http.MethodPost, "/api/v1/dropship/actions", adminToken(t), map[string]any{"action": "refund"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Error.Message, e.ErrUnknownAction.Error())
}

func TestHealthz(t *testing.T) {
	h := newHarness(t)

	rec, env := h.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
}

func TestToHTTPResponse(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unauthenticated", e.ErrUnauthenticated, http.StatusUnauthorized},
		{"unauthorized", e.Fatal(e.ErrUnauthorized, nil), http.StatusForbidden},
		{"config missing", e.Fatal(e.ErrConfigurationMissing, nil), http.StatusPreconditionFailed},
		{"invalid", e.Invalid("quantity must be positive"), http.StatusBadRequest},
		{"unknown provider", e.Wrap("ConfigUseCase.Configure", e.ErrUnknownProvider), http.StatusBadRequest},
		{"transport", e.Fatal(e.ErrTransportFailure, fmt.Errorf("dial tcp: refused")), http.StatusBadGateway},
		{"parse", e.Fatal(e.ErrParseFailure, nil), http.StatusBadGateway},
		{"in progress", e.ErrRunInProgress, http.StatusConflict},
		{"not found", e.ErrNotFound, http.StatusNotFound},
		{"internal", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, msg := v1Http.ToHTTPResponse(tt.err)
			assert.Equal(t, tt.want, code)
			assert.NotEmpty(t, msg)
		})
	}
}

func fulfillBody(orderID string) map[string]any {
	return map[string]any{
		"order_id":            orderID,
		"product_external_id": "MOCK-0001",
		"quantity":            2,
		"customer":            map[string]any{"name": "Ada Lovelace", "email": "ada@example.com"},
		"shipping_address": map[string]any{
			"line1": "1 Main St", "city": "Springfield", "postal_code": "12345", "country": "US",
		},
	}
}
