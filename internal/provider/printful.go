package provider

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
)

const printfulDefaultShipping = "3-7 business days"

// PrintfulAdapter — print-on-demand поставщик; остаток по умолчанию не ограничен.
type PrintfulAdapter struct {
	categories categoryTable
}

func NewPrintfulAdapter() *PrintfulAdapter {
	return &PrintfulAdapter{
		categories: newCategoryTable(
			map[domain.Category]string{
				domain.CategoryApparel:     "24",
				domain.CategoryAccessories: "4",
				domain.CategoryHomeLiving:  "5",
				domain.CategoryJewelry:     "186",
				domain.CategoryPets:        "263",
			},
			map[string]domain.Category{
				"T-Shirt":     domain.CategoryApparel,
				"Hoodie":      domain.CategoryApparel,
				"Sweatshirt":  domain.CategoryApparel,
				"Hat":         domain.CategoryAccessories,
				"Bag":         domain.CategoryAccessories,
				"Phone Case":  domain.CategoryElectronics,
				"Mug":         domain.CategoryHomeLiving,
				"Poster":      domain.CategoryHomeLiving,
				"Canvas":      domain.CategoryHomeLiving,
				"Necklace":    domain.CategoryJewelry,
				"Pet Bowl":    domain.CategoryPets,
				"Sports Bra":  domain.CategorySports,
				"Sticker":     domain.CategoryToys,
				"Lip Balm":    domain.CategoryBeauty,
				"Men's Wear":  domain.CategoryApparel,
				"Home Living": domain.CategoryHomeLiving,
			},
		),
	}
}

func (a *PrintfulAdapter) Provider() domain.Provider { return domain.ProviderPrintful }

func (a *PrintfulAdapter) DefaultBaseURL() string { return "https://api.printful.com" }

func (a *PrintfulAdapter) BuildListURL(baseURL string, q ListQuery, _ Credentials) string {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(q.Limit))
	if q.ExternalCategory != "" {
		params.Set("category_id", q.ExternalCategory)
	}
	return baseURL + "/products?" + params.Encode()
}

func (a *PrintfulAdapter) BuildStockURL(baseURL, externalID string, _ Credentials) string {
	return baseURL + "/products/" + url.PathEscape(externalID)
}

func (a *PrintfulAdapter) BuildOrderURL(baseURL string, creds Credentials) string {
	if creds.Setting("auto_confirm") == "true" {
		return baseURL + "/orders?confirm=true"
	}
	return baseURL + "/orders"
}

func (a *PrintfulAdapter) BuildHeaders(creds Credentials) http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+creds.APIKey)
	h.Set("Content-Type", "application/json")
	if storeID := creds.Setting("store_id"); storeID != "" {
		h.Set("X-PF-Store-Id", storeID)
	}
	return h
}

// ParseProductList разбирает {"code":200,"result":[...]}.
func (a *PrintfulAdapter) ParseProductList(raw []byte) []domain.SupplierProduct {
	items := parseObject(raw).list("result")
	out := make([]domain.SupplierProduct, 0, len(items))
	for _, item := range items {
		id := item.str("id")
		if id == "" {
			continue
		}

		images := []string{item.str("image")}
		for _, f := range item.list("files") {
			images = append(images, f.str("preview_url"))
		}

		category := a.MapExternalToCategory(item.str("main_category_id"))
		if category == domain.CategoryGeneral {
			category = a.MapExternalToCategory(item.str("type_name"))
		}

		shipping := item.str("shipping_time")
		if shipping == "" {
			shipping = printfulDefaultShipping
		}

		dims := item.obj("dimensions")
		out = append(out, domain.SupplierProduct{
			Provider:     domain.ProviderPrintful,
			ExternalID:   id,
			Title:        item.str("title"),
			Description:  item.str("description"),
			Price:        ParsePrice(item.value("retail_price")),
			SKU:          item.str("sku"),
			Category:     category,
			Tags:         normalizeTags(item.strings("tags")),
			Images:       DedupeImages(images),
			StockLevel:   ParseStock(item.value("stock"), domain.UnlimitedStock),
			ShippingTime: shipping,
			Weight:       ParseDecimal(item.value("weight_kg")),
			Dimensions:   parseDimensions(dims),
			Variants:     item.raw("variants"),
		})
	}
	return out
}

// ParseStockResponse: у снятого с производства товара 0, иначе остаток не ограничен,
// пока хотя бы один вариант в наличии.
func (a *PrintfulAdapter) ParseStockResponse(raw []byte) int {
	result := parseObject(raw).obj("result")
	if discontinued, ok := result.obj("product").boolean("is_discontinued"); ok && discontinued {
		return 0
	}

	variants := result.list("variants")
	if len(variants) == 0 {
		return ParseStock(result.value("stock"), domain.UnlimitedStock)
	}
	for _, v := range variants {
		if inStock, ok := v.boolean("in_stock"); !ok || inStock {
			return domain.UnlimitedStock
		}
	}
	return 0
}

func (a *PrintfulAdapter) ParseOrderResult(raw []byte) domain.OrderResult {
	body := parseObject(raw)
	if code := body.str("code"); code != "" && code != "200" {
		return domain.OrderResult{Rejected: true, Message: firstNonEmpty(body.obj("error").str("message"), body.str("result"))}
	}

	result := body.obj("result")
	res := domain.OrderResult{ExternalOrderID: result.str("id")}
	if res.ExternalOrderID == "" {
		return domain.OrderResult{Rejected: true, Message: "order id missing in supplier response"}
	}
	for _, s := range result.list("shipments") {
		if tn := s.str("tracking_number"); tn != "" {
			res.TrackingNumber = &tn
			break
		}
	}
	return res
}

type printfulRecipient struct {
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address1    string `json:"address1"`
	Address2    string `json:"address2,omitempty"`
	City        string `json:"city"`
	StateCode   string `json:"state_code,omitempty"`
	CountryCode string `json:"country_code"`
	Zip         string `json:"zip"`
}

type printfulItem struct {
	ExternalVariantID string `json:"external_variant_id"`
	Quantity          int    `json:"quantity"`
}

type printfulOrder struct {
	ExternalID string            `json:"external_id"`
	Recipient  printfulRecipient `json:"recipient"`
	Items      []printfulItem    `json:"items"`
}

// EncodeOrderRequest: Printful принимает полное имя одной строкой.
func (a *PrintfulAdapter) EncodeOrderRequest(order domain.SupplierOrder, _ Credentials) []byte {
	addr := order.ShippingAddress
	return mustJSON(printfulOrder{
		ExternalID: order.OrderID,
		Recipient: printfulRecipient{
			Name:        order.Customer.Name,
			Email:       order.Customer.Email,
			Phone:       order.Customer.Phone,
			Address1:    addr.Line1,
			Address2:    addr.Line2,
			City:        addr.City,
			StateCode:   addr.Region,
			CountryCode: addr.Country,
			Zip:         addr.PostalCode,
		},
		Items: []printfulItem{{ExternalVariantID: order.ProductExternalID, Quantity: order.Quantity}},
	})
}

func (a *PrintfulAdapter) MapCategoryToExternal(category domain.Category) (string, bool) {
	return a.categories.external(category)
}

func (a *PrintfulAdapter) MapExternalToCategory(raw string) domain.Category {
	return a.categories.internal(raw)
}

func parseDimensions(o object) *domain.Dimensions {
	l, w, h := ParseDecimal(o.value("length")), ParseDecimal(o.value("width")), ParseDecimal(o.value("height"))
	if l == nil || w == nil || h == nil {
		return nil
	}
	return &domain.Dimensions{Length: *l, Width: *w, Height: *h}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
