package provider

import (
	"bytes"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
)

const (
	mockBaseURL     = "mock://supplier"
	mockCatalogSize = 500
)

// mockLabels: подписи категорий в формате синтетического поставщика.
var mockLabels = map[domain.Category]string{
	domain.CategoryApparel:     "Apparel",
	domain.CategoryAccessories: "Accessories",
	domain.CategoryHomeLiving:  "Home & Living",
	domain.CategoryElectronics: "Gadgets",
	domain.CategoryBeauty:      "Beauty",
	domain.CategoryToys:        "Toys",
	domain.CategorySports:      "Outdoor",
	domain.CategoryJewelry:     "Jewelry",
	domain.CategoryPets:        "Pets",
}

// MockAdapter — детерминированный синтетический поставщик для тестов и демо.
// Сеть не нужна: клиент получает транспорт через Transport.
type MockAdapter struct {
	categories categoryTable
}

func NewMockAdapter() *MockAdapter {
	return &MockAdapter{categories: newCategoryTable(mockLabels, nil)}
}

func (a *MockAdapter) Provider() domain.Provider { return domain.ProviderMock }

func (a *MockAdapter) DefaultBaseURL() string { return mockBaseURL }

func (a *MockAdapter) BuildListURL(baseURL string, q ListQuery, _ Credentials) string {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(q.Limit))
	if q.ExternalCategory != "" {
		params.Set("category", q.ExternalCategory)
	}
	return baseURL + "/products?" + params.Encode()
}

func (a *MockAdapter) BuildStockURL(baseURL, externalID string, _ Credentials) string {
	return baseURL + "/products/" + url.PathEscape(externalID) + "/stock"
}

func (a *MockAdapter) BuildOrderURL(baseURL string, _ Credentials) string {
	return baseURL + "/orders"
}

func (a *MockAdapter) BuildHeaders(creds Credentials) http.Header {
	h := http.Header{}
	h.Set("X-Mock-Key", creds.APIKey)
	h.Set("Content-Type", "application/json")
	return h
}

// ParseProductList разбирает {"items":[...]}.
func (a *MockAdapter) ParseProductList(raw []byte) []domain.SupplierProduct {
	items := parseObject(raw).list("items")
	out := make([]domain.SupplierProduct, 0, len(items))
	for _, item := range items {
		id := item.str("id")
		if id == "" {
			continue
		}
		out = append(out, domain.SupplierProduct{
			Provider:     domain.ProviderMock,
			ExternalID:   id,
			Title:        item.str("name"),
			Description:  item.str("summary"),
			Price:        ParsePrice(item.value("price")),
			SKU:          item.str("sku"),
			Category:     a.MapExternalToCategory(item.str("category")),
			Tags:         normalizeTags(item.strings("tags")),
			Images:       DedupeImages(item.strings("images")),
			StockLevel:   ParseStock(item.value("stock"), 0),
			ShippingTime: firstNonEmpty(item.str("ships_in"), "5-10 business days"),
			Weight:       ParseDecimal(item.value("weight_kg")),
			Variants:     item.raw("variants"),
		})
	}
	return out
}

func (a *MockAdapter) ParseStockResponse(raw []byte) int {
	return ParseStock(parseObject(raw).value("available"), 0)
}

func (a *MockAdapter) ParseOrderResult(raw []byte) domain.OrderResult {
	order := parseObject(raw).obj("order")
	id := order.str("id")
	if id == "" {
		return domain.OrderResult{Rejected: true, Message: "order id missing in supplier response"}
	}
	res := domain.OrderResult{ExternalOrderID: id}
	if tn := order.str("tracking"); tn != "" {
		res.TrackingNumber = &tn
	}
	return res
}

type mockOrder struct {
	Reference string `json:"reference"`
	Item      string `json:"item"`
	Quantity  int    `json:"quantity"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Country   string `json:"country"`
	City      string `json:"city"`
	Zip       string `json:"zip"`
	Street    string `json:"street"`
}

func (a *MockAdapter) EncodeOrderRequest(order domain.SupplierOrder, _ Credentials) []byte {
	first, last := SplitName(order.Customer.Name)
	return mustJSON(mockOrder{
		Reference: order.OrderID,
		Item:      order.ProductExternalID,
		Quantity:  order.Quantity,
		FirstName: first,
		LastName:  last,
		Country:   order.ShippingAddress.Country,
		City:      order.ShippingAddress.City,
		Zip:       order.ShippingAddress.PostalCode,
		Street:    order.ShippingAddress.Line1,
	})
}

func (a *MockAdapter) MapCategoryToExternal(category domain.Category) (string, bool) {
	return a.categories.external(category)
}

func (a *MockAdapter) MapExternalToCategory(raw string) domain.Category {
	return a.categories.internal(raw)
}

// Transport отдаёт обработчик синтетического API.
// Настройки: при fail_orders заказы отвечают 502, остатки из fail_stock_ids отвечают 500.
func (a *MockAdapter) Transport(creds Credentials) http.RoundTripper {
	return &mockTransport{
		failOrders:   mockFlag(creds.Settings["fail_orders"]),
		failStockIDs: mockIDs(creds.Settings["fail_stock_ids"]),
	}
}

type mockTransport struct {
	failOrders   bool
	failStockIDs []string
}

func (t *mockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var payload []byte
	if req.Body != nil {
		payload, _ = io.ReadAll(req.Body)
		_ = req.Body.Close()
	}
	if err := req.Context().Err(); err != nil {
		return nil, err
	}

	path := strings.TrimSuffix(req.URL.Path, "/")
	switch {
	case req.Method == http.MethodGet && path == "/products":
		return mockResponse(req, http.StatusOK, mockListing(req.URL.Query()))
	case req.Method == http.MethodGet && strings.HasPrefix(path, "/products/") && strings.HasSuffix(path, "/stock"):
		id := strings.TrimSuffix(strings.TrimPrefix(path, "/products/"), "/stock")
		if slices.Contains(t.failStockIDs, id) {
			return mockResponse(req, http.StatusInternalServerError, map[string]string{"error": "stock service unavailable"})
		}
		return mockResponse(req, http.StatusOK, map[string]any{"id": id, "available": mockStock(id)})
	case req.Method == http.MethodPost && path == "/orders":
		if t.failOrders {
			return mockResponse(req, http.StatusBadGateway, map[string]string{"error": "warehouse rejected the order"})
		}
		return mockResponse(req, http.StatusCreated, map[string]any{
			"order": map[string]string{
				"id":       fmt.Sprintf("MO-%08d", mockHash(string(payload))%100000000),
				"tracking": fmt.Sprintf("TRK%010d", mockHash("tracking:"+string(payload))),
			},
		})
	default:
		return mockResponse(req, http.StatusNotFound, map[string]string{"error": "not found"})
	}
}

func mockListing(q url.Values) map[string]any {
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit <= 0 {
		limit = DefaultLimit
	}
	limit = min(limit, mockCatalogSize)

	only := q.Get("category")

	categories := make([]string, 0, len(mockLabels))
	for _, c := range domain.Categories() {
		if label, ok := mockLabels[c]; ok {
			categories = append(categories, label)
		}
	}

	items := make([]map[string]any, 0, limit)
	for i := 1; len(items) < limit && i <= mockCatalogSize*len(categories); i++ {
		label := categories[i%len(categories)]
		if only != "" && label != only {
			continue
		}
		id := fmt.Sprintf("MOCK-%04d", i)
		image := fmt.Sprintf("https://cdn.mock.example/%s/front.jpg", id)
		items = append(items, map[string]any{
			"id":        id,
			"name":      fmt.Sprintf("Mock %s item #%d", label, i),
			"summary":   "Synthetic product for integration testing",
			"price":     fmt.Sprintf("$%d.99 USD", 5+i%90),
			"sku":       fmt.Sprintf("SKU-%04d", i),
			"category":  label,
			"tags":      []string{"mock", strings.ToLower(label)},
			"images":    []string{image, image, fmt.Sprintf("https://cdn.mock.example/%s/back.jpg", id)},
			"stock":     mockStock(id),
			"weight_kg": fmt.Sprintf("0.%d", 1+i%9),
			"variants":  []map[string]any{{"size": "M", "sku": fmt.Sprintf("SKU-%04d-M", i)}},
		})
	}

	return map[string]any{"items": items, "count": len(items)}
}

func mockStock(id string) int {
	return int(mockHash(id) % 200)
}

func mockHash(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}

func mockResponse(req *http.Request, status int, body any) (*http.Response, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	return &http.Response{
		StatusCode:    status,
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        http.Header{"Content-Type": []string{"application/json"}},
		Body:          io.NopCloser(bytes.NewReader(raw)),
		ContentLength: int64(len(raw)),
		Request:       req,
	}, nil
}

func mockFlag(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		b, _ := strconv.ParseBool(val)
		return b
	default:
		return false
	}
}

func mockIDs(v any) []string {
	switch val := v.(type) {
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s := str(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		var out []string
		for _, id := range strings.Split(val, ",") {
			if id = strings.TrimSpace(id); id != "" {
				out = append(out, id)
			}
		}
		return out
	default:
		return nil
	}
}
