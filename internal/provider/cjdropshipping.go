package provider

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
)

const (
	cjDefaultShipping  = "7-15 business days"
	cjDefaultLogistics = "CJPacket Ordinary"
)

// CJDropshippingAdapter — оптовый поставщик с реальными остатками на складах.
type CJDropshippingAdapter struct {
	categories categoryTable
}

func NewCJDropshippingAdapter() *CJDropshippingAdapter {
	return &CJDropshippingAdapter{
		categories: newCategoryTable(
			map[domain.Category]string{
				domain.CategoryApparel:     "2415A90C-5D7B-4CC7-BA8C-C0949F9FF5D8",
				domain.CategoryAccessories: "A50A92FA-BCB3-4716-9BD9-BEC629BEE735",
				domain.CategoryHomeLiving:  "52FC6CA5-669B-4D0B-B1AC-415675931399",
				domain.CategoryElectronics: "E9FDC79A-8365-4CD5-8C4E-B5A5B4F3B2F6",
				domain.CategoryBeauty:      "5E656DFB-9BAE-44DD-A755-40AFA2E0E686",
				domain.CategoryToys:        "2C7D4A0B-1AB2-41EC-8F9E-13DC31B1C902",
				domain.CategorySports:      "4B397425-26C1-4D0A-B2D5-7A3D2C1A0B2E",
				domain.CategoryJewelry:     "B8302697-CF47-4211-9BD0-FFE2C6B7E3A1",
				domain.CategoryPets:        "81A0C3E4-0F2E-4A53-A7A8-3C1C3F1B8E5D",
			},
			map[string]domain.Category{
				"Women's Clothing":         domain.CategoryApparel,
				"Men's Clothing":           domain.CategoryApparel,
				"Bags & Shoes":             domain.CategoryAccessories,
				"Jewelry & Watches":        domain.CategoryJewelry,
				"Home, Garden & Furniture": domain.CategoryHomeLiving,
				"Home Improvement":         domain.CategoryHomeLiving,
				"Consumer Electronics":     domain.CategoryElectronics,
				"Phones & Accessories":     domain.CategoryElectronics,
				"Computer & Office":        domain.CategoryElectronics,
				"Health, Beauty & Hair":    domain.CategoryBeauty,
				"Toys, Kids & Babies":      domain.CategoryToys,
				"Sports & Outdoors":        domain.CategorySports,
				"Pet Supplies":             domain.CategoryPets,
			},
		),
	}
}

func (a *CJDropshippingAdapter) Provider() domain.Provider { return domain.ProviderCJDropshipping }

func (a *CJDropshippingAdapter) DefaultBaseURL() string {
	return "https://developers.cjdropshipping.com/api2.0/v1"
}

func (a *CJDropshippingAdapter) BuildListURL(baseURL string, q ListQuery, _ Credentials) string {
	params := url.Values{}
	params.Set("pageNum", "1")
	params.Set("pageSize", strconv.Itoa(q.Limit))
	if q.ExternalCategory != "" {
		params.Set("categoryId", q.ExternalCategory)
	}
	return baseURL + "/product/list?" + params.Encode()
}

func (a *CJDropshippingAdapter) BuildStockURL(baseURL, externalID string, _ Credentials) string {
	params := url.Values{}
	params.Set("vid", externalID)
	return baseURL + "/product/stock/queryByVid?" + params.Encode()
}

func (a *CJDropshippingAdapter) BuildOrderURL(baseURL string, _ Credentials) string {
	return baseURL + "/shopping/order/createOrder"
}

func (a *CJDropshippingAdapter) BuildHeaders(creds Credentials) http.Header {
	h := http.Header{}
	h.Set("CJ-Access-Token", creds.APIKey)
	h.Set("Content-Type", "application/json")
	return h
}

// ParseProductList разбирает {"code":200,"data":{"list":[...]}}.
// sellPrice бывает диапазоном "9.66 -- 12.10", берётся нижняя граница.
func (a *CJDropshippingAdapter) ParseProductList(raw []byte) []domain.SupplierProduct {
	items := parseObject(raw).obj("data").list("list")
	out := make([]domain.SupplierProduct, 0, len(items))
	for _, item := range items {
		id := firstNonEmpty(item.str("pid"), item.str("vid"))
		if id == "" {
			continue
		}

		images := append([]string{item.str("productImage")}, item.strings("productImageSet")...)

		category := a.MapExternalToCategory(item.str("categoryName"))
		if category == domain.CategoryGeneral {
			category = a.MapExternalToCategory(item.str("categoryId"))
		}

		weight := ParseDecimal(item.value("productWeight"))
		if weight != nil {
			kg := weight.Shift(-3)
			weight = &kg
		}

		out = append(out, domain.SupplierProduct{
			Provider:     domain.ProviderCJDropshipping,
			ExternalID:   id,
			Title:        firstNonEmpty(item.str("productNameEn"), item.str("productName")),
			Description:  item.str("description"),
			Price:        ParsePrice(item.value("sellPrice")),
			SKU:          item.str("productSku"),
			Category:     category,
			Tags:         normalizeTags(item.strings("productKeyEn")),
			Images:       DedupeImages(images),
			StockLevel:   ParseStock(item.value("warehouseInventoryNum"), 0),
			ShippingTime: firstNonEmpty(item.str("deliveryTime"), cjDefaultShipping),
			Weight:       weight,
			Variants:     item.raw("variants"),
		})
	}
	return out
}

// ParseStockResponse суммирует остатки по складам: {"data":[{"storageNum":..}]}.
func (a *CJDropshippingAdapter) ParseStockResponse(raw []byte) int {
	var total int64
	for _, wh := range parseObject(raw).list("data") {
		total += int64(ParseStock(wh.value("storageNum"), 0))
	}
	return clampStock(total)
}

// ParseOrderResult: CJ отвечает 200 даже на отказ; отказ определяется по code/result в теле.
func (a *CJDropshippingAdapter) ParseOrderResult(raw []byte) domain.OrderResult {
	body := parseObject(raw)
	message := firstNonEmpty(body.str("message"), "supplier rejected the order")
	if code := body.str("code"); code != "" && code != "200" {
		return domain.OrderResult{Rejected: true, Message: message}
	}
	if ok, present := body.boolean("result"); present && !ok {
		return domain.OrderResult{Rejected: true, Message: message}
	}

	data := body.obj("data")
	res := domain.OrderResult{ExternalOrderID: data.str("orderId")}
	if res.ExternalOrderID == "" {
		return domain.OrderResult{Rejected: true, Message: "order id missing in supplier response"}
	}
	if tn := data.str("trackNumber"); tn != "" {
		res.TrackingNumber = &tn
	}
	return res
}

type cjProduct struct {
	Vid      string `json:"vid"`
	Quantity int    `json:"quantity"`
}

type cjOrder struct {
	OrderNumber          string      `json:"orderNumber"`
	ShippingCountryCode  string      `json:"shippingCountryCode"`
	ShippingProvince     string      `json:"shippingProvince,omitempty"`
	ShippingCity         string      `json:"shippingCity"`
	ShippingAddress      string      `json:"shippingAddress"`
	ShippingAddress2     string      `json:"shippingAddress2,omitempty"`
	ShippingZip          string      `json:"shippingZip"`
	ShippingCustomerName string      `json:"shippingCustomerName"`
	ShippingPhone        string      `json:"shippingPhone,omitempty"`
	Email                string      `json:"email,omitempty"`
	LogisticName         string      `json:"logisticName"`
	FromCountryCode      string      `json:"fromCountryCode"`
	Products             []cjProduct `json:"products"`
}

func (a *CJDropshippingAdapter) EncodeOrderRequest(order domain.SupplierOrder, creds Credentials) []byte {
	addr := order.ShippingAddress
	return mustJSON(cjOrder{
		OrderNumber:          order.OrderID,
		ShippingCountryCode:  addr.Country,
		ShippingProvince:     addr.Region,
		ShippingCity:         addr.City,
		ShippingAddress:      addr.Line1,
		ShippingAddress2:     addr.Line2,
		ShippingZip:          addr.PostalCode,
		ShippingCustomerName: order.Customer.Name,
		ShippingPhone:        order.Customer.Phone,
		Email:                order.Customer.Email,
		LogisticName:         firstNonEmpty(creds.Setting("logistic_name"), cjDefaultLogistics),
		FromCountryCode:      firstNonEmpty(creds.Setting("from_country"), "CN"),
		Products:             []cjProduct{{Vid: order.ProductExternalID, Quantity: order.Quantity}},
	})
}

func (a *CJDropshippingAdapter) MapCategoryToExternal(category domain.Category) (string, bool) {
	return a.categories.external(category)
}

func (a *CJDropshippingAdapter) MapExternalToCategory(raw string) domain.Category {
	return a.categories.internal(raw)
}
