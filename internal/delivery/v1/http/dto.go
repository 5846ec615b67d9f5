package http

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/internal/usecase"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/shopspring/decimal"
)

// REQUESTS

type ConfigureRequest struct {
	Provider  string         `json:"provider" example:"printful"`
	APIKey    string         `json:"api_key" example:"pk_live_xxx"`
	APISecret *string        `json:"api_secret,omitempty"`
	Settings  map[string]any `json:"settings,omitempty"`
}

func (r *ConfigureRequest) toUC() *usecase.ConfigureReq {
	return &usecase.ConfigureReq{
		Provider:  r.Provider,
		APIKey:    r.APIKey,
		APISecret: r.APISecret,
		Settings:  r.Settings,
	}
}

type ImportRequest struct {
	Category *string `json:"category,omitempty" example:"apparel"`
	Limit    int     `json:"limit,omitempty" example:"50"`
}

func (r *ImportRequest) toUC() (*usecase.ImportProductsReq, error) {
	req := &usecase.ImportProductsReq{Limit: r.Limit}
	if r.Category != nil && strings.TrimSpace(*r.Category) != "" {
		category, ok := domain.ParseCategory(strings.TrimSpace(*r.Category))
		if !ok {
			return nil, e.Invalid("unknown category %q", *r.Category)
		}
		req.Category = &category
	}
	return req, nil
}

type FulfillRequest struct {
	OrderID           string                 `json:"order_id" example:"ORD-1001"`
	ProductExternalID string                 `json:"product_external_id" example:"MOCK-0001"`
	Customer          domain.Customer        `json:"customer"`
	ShippingAddress   domain.ShippingAddress `json:"shipping_address"`
	Quantity          int                    `json:"quantity" example:"1"`
}

func (r *FulfillRequest) toUC() *usecase.FulfillOrderReq {
	return &usecase.FulfillOrderReq{
		OrderID:           r.OrderID,
		ProductExternalID: r.ProductExternalID,
		Customer:          r.Customer,
		ShippingAddress:   r.ShippingAddress,
		Quantity:          r.Quantity,
	}
}

// ActionRequest — единая точка входа: action = configure | import | sync | fulfill.
type ActionRequest struct {
	Action  string          `json:"action" example:"import"`
	Payload json.RawMessage `json:"payload,omitempty" swaggertype:"object"`
}

// RESPONSES

type ConfigResponse struct {
	ID           string         `json:"id"`
	Provider     string         `json:"provider"`
	APIKey       string         `json:"api_key"`
	APISecret    *string        `json:"api_secret,omitempty"`
	Settings     map[string]any `json:"settings"`
	IsActive     bool           `json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	SupersededAt *time.Time     `json:"superseded_at,omitempty"`
}

func newConfigResponse(v *usecase.ConfigView) ConfigResponse {
	return ConfigResponse{
		ID:           v.ID.String(),
		Provider:     v.Provider.String(),
		APIKey:       v.APIKey,
		APISecret:    v.APISecret,
		Settings:     v.Settings,
		IsActive:     v.IsActive,
		CreatedAt:    v.CreatedAt,
		SupersededAt: v.SupersededAt,
	}
}

type CatalogEntryResponse struct {
	ID                  string             `json:"id"`
	StorefrontProductID string             `json:"storefront_product_id"`
	Provider            string             `json:"provider"`
	ExternalID          string             `json:"external_id"`
	Title               string             `json:"title"`
	Description         string             `json:"description,omitempty"`
	Price               decimal.Decimal    `json:"price" swaggertype:"string"`
	SKU                 string             `json:"sku,omitempty"`
	Category            string             `json:"category"`
	Tags                []string           `json:"tags,omitempty"`
	Images              []string           `json:"images,omitempty"`
	StockLevel          int                `json:"stock_level"`
	ShippingTime        string             `json:"shipping_time,omitempty"`
	Weight              *decimal.Decimal   `json:"weight,omitempty" swaggertype:"string"`
	Dimensions          *domain.Dimensions `json:"dimensions,omitempty"`
	Variants            json.RawMessage    `json:"variants,omitempty" swaggertype:"object"`
	IsActive            bool               `json:"is_active"`
	LastSyncedAt        *time.Time         `json:"last_synced_at,omitempty"`
	CreatedAt           time.Time          `json:"created_at"`
}

func newCatalogEntryResponse(entry domain.CatalogEntry) CatalogEntryResponse {
	p := entry.Product
	return CatalogEntryResponse{
		ID:                  entry.ID.String(),
		StorefrontProductID: entry.StorefrontProductID.String(),
		Provider:            p.Provider.String(),
		ExternalID:          p.ExternalID,
		Title:               p.Title,
		Description:         p.Description,
		Price:               p.Price,
		SKU:                 p.SKU,
		Category:            string(p.Category),
		Tags:                p.Tags,
		Images:              p.Images,
		StockLevel:          p.StockLevel,
		ShippingTime:        p.ShippingTime,
		Weight:              p.Weight,
		Dimensions:          p.Dimensions,
		Variants:            p.Variants,
		IsActive:            entry.IsActive,
		LastSyncedAt:        entry.LastSyncedAt,
		CreatedAt:           entry.CreatedAt,
	}
}

type SyncLogResponse struct {
	ID          string                   `json:"id"`
	Operation   string                   `json:"operation"`
	Provider    string                   `json:"provider"`
	Outcome     string                   `json:"outcome"`
	Processed   int                      `json:"processed"`
	Updated     int                      `json:"updated"`
	Failed      int                      `json:"failed"`
	Errors      []domain.SyncErrorDetail `json:"errors"`
	SnapshotKey string                   `json:"snapshot_key,omitempty"`
	StartedAt   time.Time                `json:"started_at"`
	FinishedAt  time.Time                `json:"finished_at"`
}

func newSyncLogResponse(entry *domain.SyncLogEntry) *SyncLogResponse {
	if entry == nil {
		return nil
	}
	errs := entry.Errors
	if errs == nil {
		errs = []domain.SyncErrorDetail{}
	}
	return &SyncLogResponse{
		ID:          entry.ID.String(),
		Operation:   string(entry.Operation),
		Provider:    entry.Provider.String(),
		Outcome:     string(entry.Outcome),
		Processed:   entry.Processed,
		Updated:     entry.Updated,
		Failed:      entry.Failed,
		Errors:      errs,
		SnapshotKey: entry.SnapshotKey,
		StartedAt:   entry.StartedAt,
		FinishedAt:  entry.FinishedAt,
	}
}

type ImportResponse struct {
	Imported int                    `json:"imported"`
	Total    int                    `json:"total"`
	Skipped  int                    `json:"skipped"`
	Errors   int                    `json:"errors"`
	Products []CatalogEntryResponse `json:"products"`
	Log      *SyncLogResponse       `json:"log,omitempty"`
}

func newImportResponse(res *usecase.ImportProductsRes) ImportResponse {
	products := make([]CatalogEntryResponse, 0, len(res.Products))
	for _, p := range res.Products {
		products = append(products, newCatalogEntryResponse(p))
	}
	return ImportResponse{
		Imported: res.Imported,
		Total:    res.Total,
		Skipped:  res.Skipped,
		Errors:   res.Errors,
		Products: products,
		Log:      newSyncLogResponse(res.Log),
	}
}

type SyncResponse struct {
	Processed int              `json:"processed"`
	Updated   int              `json:"updated"`
	Failed    int              `json:"failed"`
	Log       *SyncLogResponse `json:"log,omitempty"`
}

func newSyncResponse(res *usecase.SyncInventoryRes) SyncResponse {
	return SyncResponse{
		Processed: res.Processed,
		Updated:   res.Updated,
		Failed:    res.Failed,
		Log:       newSyncLogResponse(res.Log),
	}
}

type FulfillmentResponse struct {
	ID                string                 `json:"id"`
	OrderID           string                 `json:"order_id"`
	ExternalOrderID   string                 `json:"external_order_id,omitempty"`
	Provider          string                 `json:"provider"`
	ProductExternalID string                 `json:"product_external_id"`
	Customer          domain.Customer        `json:"customer"`
	ShippingAddress   domain.ShippingAddress `json:"shipping_address"`
	Quantity          int                    `json:"quantity"`
	Status            string                 `json:"status"`
	TrackingNumber    *string                `json:"tracking_number,omitempty"`
	ErrorMessage      string                 `json:"error_message,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
}

func newFulfillmentResponse(r *domain.FulfillmentRecord) FulfillmentResponse {
	return FulfillmentResponse{
		ID:                r.ID.String(),
		OrderID:           r.OrderID,
		ExternalOrderID:   r.ExternalOrderID,
		Provider:          r.Provider.String(),
		ProductExternalID: r.ProductExternalID,
		Customer:          r.Customer,
		ShippingAddress:   r.ShippingAddress,
		Quantity:          r.Quantity,
		Status:            string(r.Status),
		TrackingNumber:    r.TrackingNumber,
		ErrorMessage:      r.ErrorMessage,
		CreatedAt:         r.CreatedAt,
	}
}
