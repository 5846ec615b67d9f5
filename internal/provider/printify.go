package provider

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/shopspring/decimal"
)

const printifyDefaultShipping = "4-8 business days"

// PrintifyAdapter работает в рамках магазина (settings.shop_id).
// Фильтра по категории у листинга нет, категория выводится из тегов.
type PrintifyAdapter struct {
	categories categoryTable
}

func NewPrintifyAdapter() *PrintifyAdapter {
	return &PrintifyAdapter{
		categories: newCategoryTable(
			nil,
			map[string]domain.Category{
				"T-shirts":       domain.CategoryApparel,
				"Hoodies":        domain.CategoryApparel,
				"Sweatshirts":    domain.CategoryApparel,
				"Apparel":        domain.CategoryApparel,
				"Accessories":    domain.CategoryAccessories,
				"Bags":           domain.CategoryAccessories,
				"Hats":           domain.CategoryAccessories,
				"Home & Living":  domain.CategoryHomeLiving,
				"Mugs":           domain.CategoryHomeLiving,
				"Home Decor":     domain.CategoryHomeLiving,
				"Phone Cases":    domain.CategoryElectronics,
				"Tech":           domain.CategoryElectronics,
				"Jewelry":        domain.CategoryJewelry,
				"Pets":           domain.CategoryPets,
				"Sports":         domain.CategorySports,
				"Toys & Games":   domain.CategoryToys,
				"Beauty":         domain.CategoryBeauty,
				"Kids' Clothing": domain.CategoryApparel,
			},
		),
	}
}

func (a *PrintifyAdapter) Provider() domain.Provider { return domain.ProviderPrintify }

func (a *PrintifyAdapter) DefaultBaseURL() string { return "https://api.printify.com/v1" }

func (a *PrintifyAdapter) shopURL(baseURL string, creds Credentials) string {
	return baseURL + "/shops/" + url.PathEscape(creds.Setting("shop_id"))
}

func (a *PrintifyAdapter) BuildListURL(baseURL string, q ListQuery, creds Credentials) string {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(q.Limit))
	return a.shopURL(baseURL, creds) + "/products.json?" + params.Encode()
}

func (a *PrintifyAdapter) BuildStockURL(baseURL, externalID string, creds Credentials) string {
	return a.shopURL(baseURL, creds) + "/products/" + url.PathEscape(externalID) + ".json"
}

func (a *PrintifyAdapter) BuildOrderURL(baseURL string, creds Credentials) string {
	return a.shopURL(baseURL, creds) + "/orders.json"
}

func (a *PrintifyAdapter) BuildHeaders(creds Credentials) http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+creds.APIKey)
	h.Set("Content-Type", "application/json")
	h.Set("User-Agent", "dropship-sync")
	return h
}

// ParseProductList разбирает {"data":[...]}. Цены вариантов приходят в центах;
// берётся минимальная цена среди включённых вариантов.
func (a *PrintifyAdapter) ParseProductList(raw []byte) []domain.SupplierProduct {
	items := parseObject(raw).list("data")
	out := make([]domain.SupplierProduct, 0, len(items))
	for _, item := range items {
		id := item.str("id")
		if id == "" {
			continue
		}

		images := make([]string, 0, 4)
		for _, img := range item.list("images") {
			images = append(images, img.str("src"))
		}

		tags := normalizeTags(item.strings("tags"))
		variants := item.list("variants")

		out = append(out, domain.SupplierProduct{
			Provider:     domain.ProviderPrintify,
			ExternalID:   id,
			Title:        item.str("title"),
			Description:  item.str("description"),
			Price:        printifyPrice(variants),
			SKU:          printifySKU(variants),
			Category:     a.categoryFromTags(tags),
			Tags:         tags,
			Images:       DedupeImages(images),
			StockLevel:   printifyStock(variants),
			ShippingTime: printifyDefaultShipping,
			Weight:       printifyWeight(variants),
			Variants:     item.raw("variants"),
		})
	}
	return out
}

func (a *PrintifyAdapter) categoryFromTags(tags []string) domain.Category {
	for _, t := range tags {
		if c := a.categories.internal(t); c != domain.CategoryGeneral {
			return c
		}
	}
	return domain.CategoryGeneral
}

func printifyPrice(variants []object) decimal.Decimal {
	var best *decimal.Decimal
	for _, v := range variants {
		if enabled, ok := v.boolean("is_enabled"); ok && !enabled {
			continue
		}
		cents, ok := parseDecimalValue(v.value("price"))
		if !ok || cents.IsNegative() {
			continue
		}
		price := cents.Shift(-2)
		if best == nil || price.LessThan(*best) {
			best = &price
		}
	}
	if best == nil {
		return decimal.Zero
	}
	return best.Round(2)
}

func printifySKU(variants []object) string {
	for _, v := range variants {
		if sku := v.str("sku"); sku != "" {
			return sku
		}
	}
	return ""
}

// printifyWeight: вес варианта в граммах.
func printifyWeight(variants []object) *decimal.Decimal {
	for _, v := range variants {
		if grams := ParseDecimal(v.value("grams")); grams != nil {
			kg := grams.Shift(-3)
			return &kg
		}
	}
	return nil
}

// printifyStock: print-on-demand, остаток не ограничен, пока есть доступный вариант.
// Без вариантов в ответе тоже не ограничен.
func printifyStock(variants []object) int {
	if len(variants) == 0 {
		return domain.UnlimitedStock
	}
	for _, v := range variants {
		available, ok := v.boolean("is_available")
		enabled, hasEnabled := v.boolean("is_enabled")
		if (!ok || available) && (!hasEnabled || enabled) {
			return domain.UnlimitedStock
		}
	}
	return 0
}

func (a *PrintifyAdapter) ParseStockResponse(raw []byte) int {
	return printifyStock(parseObject(raw).list("variants"))
}

// ParseOrderResult: Printify не выдаёт трек-номер при создании заказа.
func (a *PrintifyAdapter) ParseOrderResult(raw []byte) domain.OrderResult {
	body := parseObject(raw)
	id := body.str("id")
	if id == "" {
		msg := firstNonEmpty(body.str("message"), body.str("error"), "order id missing in supplier response")
		return domain.OrderResult{Rejected: true, Message: msg}
	}
	return domain.OrderResult{ExternalOrderID: id}
}

type printifyAddress struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Country   string `json:"country"`
	Region    string `json:"region,omitempty"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city"`
	Zip       string `json:"zip"`
}

type printifyLineItem struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id,omitempty"`
	Quantity  int    `json:"quantity"`
}

type printifyOrder struct {
	ExternalID       string             `json:"external_id"`
	Label            string             `json:"label"`
	LineItems        []printifyLineItem `json:"line_items"`
	ShippingMethod   int                `json:"shipping_method"`
	SendNotification bool               `json:"send_shipping_notification"`
	AddressTo        printifyAddress    `json:"address_to"`
}

// EncodeOrderRequest: Printify требует раздельные имя и фамилию.
func (a *PrintifyAdapter) EncodeOrderRequest(order domain.SupplierOrder, creds Credentials) []byte {
	first, last := SplitName(order.Customer.Name)
	addr := order.ShippingAddress
	return mustJSON(printifyOrder{
		ExternalID: order.OrderID,
		Label:      order.OrderID,
		LineItems: []printifyLineItem{{
			ProductID: order.ProductExternalID,
			VariantID: creds.Setting("variant_id"),
			Quantity:  order.Quantity,
		}},
		ShippingMethod: 1,
		AddressTo: printifyAddress{
			FirstName: first,
			LastName:  last,
			Email:     order.Customer.Email,
			Phone:     order.Customer.Phone,
			Country:   addr.Country,
			Region:    addr.Region,
			Address1:  addr.Line1,
			Address2:  addr.Line2,
			City:      addr.City,
			Zip:       addr.PostalCode,
		},
	})
}

// MapCategoryToExternal: фильтра по категории у Printify нет, отображение всегда отсутствует.
func (a *PrintifyAdapter) MapCategoryToExternal(domain.Category) (string, bool) {
	return "", false
}

func (a *PrintifyAdapter) MapExternalToCategory(raw string) domain.Category {
	return a.categories.internal(raw)
}
