package provider

import (
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testOrder = domain.SupplierOrder{
	OrderID:           "ord-1",
	ProductExternalID: "ext-9",
	Customer:          domain.Customer{Name: "Ada King Lovelace", Email: "ada@example.com"},
	ShippingAddress: domain.ShippingAddress{
		Line1: "1 Main St", City: "London", PostalCode: "N1", Country: "GB",
	},
	Quantity: 2,
}

func TestPrintful_ParseProductList(t *testing.T) {
	raw := []byte(`{"code":200,"result":[
		{"id":71,"title":"Tee","description":"soft","main_category_id":24,"retail_price":"$19.99 USD","sku":"PF-71",
		 "image":"a.jpg","files":[{"preview_url":"a.jpg"},{"preview_url":"b.jpg"}],"weight_kg":"0.2",
		 "dimensions":{"length":30,"width":20,"height":1},"variants":[{"id":1}]},
		{"id":72,"title":"Mug","type_name":"Mug","retail_price":"abc"},
		{"title":"no id"}
	]}`)

	products := NewPrintfulAdapter().ParseProductList(raw)
	require.Len(t, products, 2)

	tee := products[0]
	assert.Equal(t, domain.ProviderPrintful, tee.Provider)
	assert.Equal(t, "71", tee.ExternalID)
	assert.Equal(t, "19.99", tee.Price.String())
	assert.Equal(t, domain.CategoryApparel, tee.Category)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, tee.Images)
	assert.Equal(t, domain.UnlimitedStock, tee.StockLevel)
	require.NotNil(t, tee.Weight)
	assert.Equal(t, "0.2", tee.Weight.String())
	require.NotNil(t, tee.Dimensions)
	assert.JSONEq(t, `[{"id":1}]`, string(tee.Variants))

	mug := products[1]
	assert.True(t, mug.Price.IsZero())
	assert.Equal(t, domain.CategoryHomeLiving, mug.Category)
	assert.Equal(t, printfulDefaultShipping, mug.ShippingTime)
	assert.Nil(t, mug.Dimensions)
}

func TestPrintful_Requests(t *testing.T) {
	a := NewPrintfulAdapter()
	creds := Credentials{APIKey: "k", Settings: map[string]any{"store_id": "77"}}

	ext, ok := a.MapCategoryToExternal(domain.CategoryApparel)
	require.True(t, ok)
	u, err := url.Parse(a.BuildListURL("https://x", ListQuery{ExternalCategory: ext, Limit: 5}, creds))
	require.NoError(t, err)
	assert.Equal(t, "/products", u.Path)
	assert.Equal(t, "5", u.Query().Get("limit"))
	assert.Equal(t, "24", u.Query().Get("category_id"))

	h := a.BuildHeaders(creds)
	assert.Equal(t, "Bearer k", h.Get("Authorization"))
	assert.Equal(t, "77", h.Get("X-PF-Store-Id"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(a.EncodeOrderRequest(testOrder, creds), &body))
	recipient := body["recipient"].(map[string]any)
	assert.Equal(t, "Ada King Lovelace", recipient["name"])
	assert.Equal(t, "GB", recipient["country_code"])
}

func TestPrintful_Stock(t *testing.T) {
	a := NewPrintfulAdapter()
	assert.Equal(t, 0, a.ParseStockResponse([]byte(`{"result":{"product":{"is_discontinued":true}}}`)))
	assert.Equal(t, domain.UnlimitedStock, a.ParseStockResponse([]byte(`{"result":{"product":{},"variants":[{"in_stock":false},{"in_stock":true}]}}`)))
	assert.Equal(t, 0, a.ParseStockResponse([]byte(`{"result":{"variants":[{"in_stock":false}]}}`)))
	assert.Equal(t, domain.UnlimitedStock, a.ParseStockResponse([]byte(`{"result":{}}`)))
}

func TestPrintful_ParseOrderResult(t *testing.T) {
	a := NewPrintfulAdapter()

	res := a.ParseOrderResult([]byte(`{"code":200,"result":{"id":13,"shipments":[{"tracking_number":""},{"tracking_number":"TN1"}]}}`))
	assert.False(t, res.Rejected)
	assert.Equal(t, "13", res.ExternalOrderID)
	require.NotNil(t, res.TrackingNumber)
	assert.Equal(t, "TN1", *res.TrackingNumber)

	res = a.ParseOrderResult([]byte(`{"code":400,"error":{"message":"bad address"}}`))
	assert.True(t, res.Rejected)
	assert.Equal(t, "bad address", res.Message)
}

func TestPrintify_ParseProductList(t *testing.T) {
	raw := []byte(`{"data":[{"id":"5d39","title":"Hoodie","tags":["Hoodies","Winter"],
		"images":[{"src":"h1.png"},{"src":"h1.png"},{"src":"h2.png"}],
		"variants":[{"price":4599,"sku":"","is_enabled":true,"grams":450},{"price":2999,"sku":"PY-1","is_enabled":false},{"price":3999,"sku":"PY-2"}]}]}`)

	products := NewPrintifyAdapter().ParseProductList(raw)
	require.Len(t, products, 1)

	p := products[0]
	assert.Equal(t, "39.99", p.Price.String())
	assert.Equal(t, "PY-1", p.SKU)
	assert.Equal(t, domain.CategoryApparel, p.Category)
	assert.Equal(t, []string{"h1.png", "h2.png"}, p.Images)
	assert.Equal(t, domain.UnlimitedStock, p.StockLevel)
	require.NotNil(t, p.Weight)
	assert.Equal(t, "0.45", p.Weight.String())
}

func TestPrintify_OrderSplitsName(t *testing.T) {
	a := NewPrintifyAdapter()
	creds := Credentials{APIKey: "k", Settings: map[string]any{"shop_id": "123"}}

	assert.Equal(t, "https://x/shops/123/orders.json", a.BuildOrderURL("https://x", creds))
	_, ok := a.MapCategoryToExternal(domain.CategoryApparel)
	assert.False(t, ok)

	var body struct {
		AddressTo struct {
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
		} `json:"address_to"`
	}
	require.NoError(t, json.Unmarshal(a.EncodeOrderRequest(testOrder, creds), &body))
	assert.Equal(t, "Ada", body.AddressTo.FirstName)
	assert.Equal(t, "King Lovelace", body.AddressTo.LastName)

	single := testOrder
	single.Customer.Name = "Cher"
	require.NoError(t, json.Unmarshal(a.EncodeOrderRequest(single, creds), &body))
	assert.Equal(t, "Cher", body.AddressTo.FirstName)
	assert.Empty(t, body.AddressTo.LastName)

	res := a.ParseOrderResult([]byte(`{"id":"abc"}`))
	assert.Equal(t, "abc", res.ExternalOrderID)
	assert.Nil(t, res.TrackingNumber)
}

func TestCJ_ParseProductList(t *testing.T) {
	raw := []byte(`{"code":200,"data":{"list":[
		{"pid":"P1","productNameEn":"Lamp","sellPrice":"9.66 -- 12.10","categoryName":"Home Improvement",
		 "productImage":"l.jpg","productImageSet":["l.jpg","l2.jpg"],"productWeight":"350","warehouseInventoryNum":"12"},
		{"pid":"P2","productName":"Thing","sellPrice":null,"categoryName":"???"}
	]}}`)

	products := NewCJDropshippingAdapter().ParseProductList(raw)
	require.Len(t, products, 2)

	lamp := products[0]
	assert.Equal(t, "9.66", lamp.Price.String())
	assert.Equal(t, domain.CategoryHomeLiving, lamp.Category)
	assert.Equal(t, []string{"l.jpg", "l2.jpg"}, lamp.Images)
	assert.Equal(t, 12, lamp.StockLevel)
	require.NotNil(t, lamp.Weight)
	assert.Equal(t, "0.35", lamp.Weight.String())

	thing := products[1]
	assert.Equal(t, "Thing", thing.Title)
	assert.True(t, thing.Price.IsZero())
	assert.Equal(t, domain.CategoryGeneral, thing.Category)
	assert.Equal(t, 0, thing.StockLevel)
	assert.Equal(t, cjDefaultShipping, thing.ShippingTime)
}

func TestCJ_StockAndOrders(t *testing.T) {
	a := NewCJDropshippingAdapter()

	assert.Equal(t, 15, a.ParseStockResponse([]byte(`{"data":[{"storageNum":10},{"storageNum":"5"},{"storageNum":-3}]}`)))
	assert.Equal(t, 12, a.ParseStockResponse([]byte(`{"data":[{"storageNum":12},{"storageNum":"-3"}]}`)))
	assert.Equal(t, math.MaxInt32, a.ParseStockResponse([]byte(`{"data":[{"storageNum":2000000000},{"storageNum":2000000000}]}`)))

	res := a.ParseOrderResult([]byte(`{"code":200,"result":true,"data":{"orderId":"CJ-1","trackNumber":"YT1"}}`))
	assert.False(t, res.Rejected)
	assert.Equal(t, "CJ-1", res.ExternalOrderID)
	require.NotNil(t, res.TrackingNumber)

	res = a.ParseOrderResult([]byte(`{"code":1600100,"result":false,"message":"Insufficient balance"}`))
	assert.True(t, res.Rejected)
	assert.Equal(t, "Insufficient balance", res.Message)

	var body map[string]any
	require.NoError(t, json.Unmarshal(a.EncodeOrderRequest(testOrder, Credentials{}), &body))
	assert.Equal(t, "Ada King Lovelace", body["shippingCustomerName"])
	assert.Equal(t, cjDefaultLogistics, body["logisticName"])

	assert.Equal(t, "token", a.BuildHeaders(Credentials{APIKey: "token"}).Get("CJ-Access-Token"))
}

func mockDo(t *testing.T, rt http.RoundTripper, method, rawURL, body string) (int, []byte) {
	t.Helper()

	req, err := http.NewRequest(method, rawURL, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func TestMock_ListingIsDeterministic(t *testing.T) {
	a := NewMockAdapter()
	rt := a.Transport(Credentials{})
	listURL := a.BuildListURL(a.DefaultBaseURL(), ListQuery{Limit: 20}, Credentials{})

	status, first := mockDo(t, rt, http.MethodGet, listURL, "")
	require.Equal(t, http.StatusOK, status)
	_, second := mockDo(t, rt, http.MethodGet, listURL, "")
	assert.Equal(t, first, second)

	products := a.ParseProductList(first)
	require.Len(t, products, 20)
	for _, p := range products {
		assert.Len(t, p.Images, 2, "duplicate image must be dropped")
		assert.True(t, p.Price.IsPositive())
		assert.NotEqual(t, domain.CategoryGeneral, p.Category)
	}
}

func TestMock_CategoryFilter(t *testing.T) {
	a := NewMockAdapter()
	ext, ok := a.MapCategoryToExternal(domain.CategoryPets)
	require.True(t, ok)

	_, raw := mockDo(t, a.Transport(Credentials{}), http.MethodGet,
		a.BuildListURL(a.DefaultBaseURL(), ListQuery{ExternalCategory: ext, Limit: 7}, Credentials{}), "")

	products := a.ParseProductList(raw)
	require.Len(t, products, 7)
	for _, p := range products {
		assert.Equal(t, domain.CategoryPets, p.Category)
	}

	_, ok = a.MapCategoryToExternal(domain.CategoryGeneral)
	assert.False(t, ok)
}

func TestMock_FailureInjection(t *testing.T) {
	a := NewMockAdapter()
	creds := Credentials{Settings: map[string]any{"fail_orders": true, "fail_stock_ids": "MOCK-0002, MOCK-0003"}}
	rt := a.Transport(creds)

	status, raw := mockDo(t, rt, http.MethodGet, a.BuildStockURL(a.DefaultBaseURL(), "MOCK-0001", creds), "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, mockStock("MOCK-0001"), a.ParseStockResponse(raw))

	status, _ = mockDo(t, rt, http.MethodGet, a.BuildStockURL(a.DefaultBaseURL(), "MOCK-0003", creds), "")
	assert.Equal(t, http.StatusInternalServerError, status)

	status, _ = mockDo(t, rt, http.MethodPost, a.BuildOrderURL(a.DefaultBaseURL(), creds), string(a.EncodeOrderRequest(testOrder, creds)))
	assert.Equal(t, http.StatusBadGateway, status)

	status, raw = mockDo(t, a.Transport(Credentials{}), http.MethodPost, a.BuildOrderURL(a.DefaultBaseURL(), creds), string(a.EncodeOrderRequest(testOrder, creds)))
	assert.Equal(t, http.StatusCreated, status)
	res := a.ParseOrderResult(raw)
	assert.False(t, res.Rejected)
	assert.True(t, strings.HasPrefix(res.ExternalOrderID, "MO-"))
	require.NotNil(t, res.TrackingNumber)
}
